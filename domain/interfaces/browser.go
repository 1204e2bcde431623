package interfaces

import (
	"browser_library/domain/entities"
	"context"
	"time"
)

// Engine defines the operations keyword groups perform on the external
// browser automation engine
type Engine interface {
	// OpenBrowser launches a browser with a fresh context and page
	OpenBrowser(ctx context.Context, opts entities.BrowserOptions) error

	// CloseBrowser closes the current browser, keeping the engine running
	CloseBrowser(ctx context.Context) error

	// GoTo navigates the current page to a URL
	GoTo(ctx context.Context, url string) error

	// GoBack navigates back in history
	GoBack(ctx context.Context) error

	// GoForward navigates forward in history
	GoForward(ctx context.Context) error

	// Title returns the current page title
	Title(ctx context.Context) (string, error)

	// URL returns the current page URL
	URL(ctx context.Context) (string, error)

	// TextContent returns the text of the element matching selector
	TextContent(ctx context.Context, selector string) (string, error)

	// IsVisible checks if the element matching selector is visible
	IsVisible(ctx context.Context, selector string) (bool, error)

	// IsChecked checks if the checkbox matching selector is checked
	IsChecked(ctx context.Context, selector string) (bool, error)

	// Click clicks on an element by selector
	Click(ctx context.Context, selector string, opts entities.ClickOptions) error

	// Fill replaces the value of an input element
	Fill(ctx context.Context, selector string, text string) error

	// Type types text key by key with a delay between keystrokes
	Type(ctx context.Context, selector string, text string, delay time.Duration) error

	// Press presses keys on an element one after another
	Press(ctx context.Context, selector string, keys []string) error

	// SetChecked checks or unchecks a checkbox
	SetChecked(ctx context.Context, selector string, checked bool) error

	// SelectOptions selects options of a select element by value or label
	SelectOptions(ctx context.Context, selector string, values []string) ([]string, error)

	// Focus focuses an element
	Focus(ctx context.Context, selector string) error

	// Hover moves the mouse over an element
	Hover(ctx context.Context, selector string) error

	// WaitForElement waits until the element reaches state or timeout passes
	WaitForElement(ctx context.Context, selector string, state entities.ElementState, timeout time.Duration) error

	// Screenshot writes a screenshot of the current page to path
	Screenshot(ctx context.Context, path string) error

	// SetTimeout sets the default timeout of engine operations
	SetTimeout(ctx context.Context, timeout time.Duration) error

	// Cookies returns the cookies of the current browser context
	Cookies(ctx context.Context) ([]entities.Cookie, error)

	// AddCookies adds cookies to the current browser context
	AddCookies(ctx context.Context, cookies []entities.Cookie) error

	// ClearCookies deletes all cookies of the current browser context
	ClearCookies(ctx context.Context) error

	// Close shuts the engine down
	Close() error
}

// EngineFactory constructs an engine session for an output directory
type EngineFactory func(outputDir string) (Engine, error)

// EngineHandle is the engine session shared by all keyword groups. It is
// opened once with the output directory and closed at teardown.
type EngineHandle interface {
	Engine

	// Open starts the engine for outputDir
	Open(outputDir string) error
}
