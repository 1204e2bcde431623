package browser

import (
	"browser_library/domain/entities"
	"browser_library/domain/interfaces"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Options configures an engine controller
type Options struct {
	Timeout        time.Duration
	InstallDrivers bool
	DriverPath     string
	ChromeBinary   string
	DriverPort     int
}

const (
	defaultTimeout    = 10 * time.Second
	defaultWidth      = 1280
	defaultHeight     = 720
	defaultDriverPort = 9515
)

type playwrightController struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	context    playwright.BrowserContext
	page       playwright.Page
	pages      []playwright.Page
	pagesMutex sync.Mutex
	timeout    time.Duration
	outputDir  string
	logger     *logrus.Logger
}

// NewPlaywrightController - starts the Playwright driver. Browsers are
// launched later by OpenBrowser.
func NewPlaywrightController(opts Options, outputDir string, logger *logrus.Logger) (interfaces.Engine, error) {
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if opts.InstallDrivers {
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger.WithField("output_dir", outputDir).Info("Playwright engine started")

	return &playwrightController{
		pw:        pw,
		timeout:   timeout,
		outputDir: outputDir,
		logger:    logger,
	}, nil
}

// PlaywrightFactory - returns an engine factory building Playwright controllers
func PlaywrightFactory(opts Options, logger *logrus.Logger) interfaces.EngineFactory {
	return func(outputDir string) (interfaces.Engine, error) {
		return NewPlaywrightController(opts, outputDir, logger)
	}
}

// OpenBrowser - launches a browser with a fresh context and page
func (b *playwrightController) OpenBrowser(ctx context.Context, opts entities.BrowserOptions) error {
	browserType, err := b.browserType(opts.Browser)
	if err != nil {
		return err
	}

	if b.browser != nil {
		if err := b.CloseBrowser(ctx); err != nil {
			b.logger.Warnf("Failed to close previous browser: %v", err)
		}
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  width,
			Height: height,
		},
		AcceptDownloads: playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		return fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(milliseconds(b.timeout))

	b.pagesMutex.Lock()
	b.browser = browser
	b.context = context
	b.page = page
	b.pages = []playwright.Page{page}
	b.pagesMutex.Unlock()

	b.trackPage(page)
	context.OnPage(func(newPage playwright.Page) {
		b.adoptPage(newPage)
		b.trackPage(newPage)
	})

	b.logger.WithFields(logrus.Fields{
		"browser":  opts.Browser,
		"headless": opts.Headless,
	}).Info("Browser opened")
	return nil
}

// adoptPage - makes a page opened by the site the active page. Runs on the
// Playwright event goroutine, so the timeout is read under the pages lock.
func (b *playwrightController) adoptPage(page playwright.Page) {
	b.pagesMutex.Lock()
	defer b.pagesMutex.Unlock()

	b.pages = append(b.pages, page)
	b.page = page
	page.SetDefaultTimeout(milliseconds(b.timeout))
}

// trackPage - accepts dialogs and keeps the active page valid when a page closes
func (b *playwrightController) trackPage(page playwright.Page) {
	page.OnDialog(func(dialog playwright.Dialog) {
		dialog.Accept()
	})

	page.OnClose(func(closedPage playwright.Page) {
		b.pagesMutex.Lock()
		defer b.pagesMutex.Unlock()

		for i, p := range b.pages {
			if p == closedPage {
				b.pages = append(b.pages[:i], b.pages[i+1:]...)
				break
			}
		}

		if b.page == closedPage {
			b.page = nil
			if len(b.pages) > 0 {
				b.page = b.pages[len(b.pages)-1]
			}
		}
	})
}

func (b *playwrightController) browserType(name string) (playwright.BrowserType, error) {
	switch strings.ToLower(name) {
	case "", entities.BrowserChrome, entities.BrowserChromium:
		return b.pw.Chromium, nil
	case entities.BrowserFirefox:
		return b.pw.Firefox, nil
	case entities.BrowserWebKit:
		return b.pw.WebKit, nil
	default:
		return nil, fmt.Errorf("%w: %s", entities.ErrUnsupportedBrowser, name)
	}
}

// CloseBrowser - closes the current context and browser
func (b *playwrightController) CloseBrowser(ctx context.Context) error {
	b.pagesMutex.Lock()
	browser, context := b.browser, b.context
	b.browser, b.context, b.page, b.pages = nil, nil, nil, nil
	b.pagesMutex.Unlock()

	if browser == nil {
		return nil
	}

	var closeErr error
	if context != nil {
		if err := context.Close(); err != nil && !isClosedError(err) {
			closeErr = multierr.Append(closeErr, fmt.Errorf("failed to close context: %w", err))
		}
	}
	if err := browser.Close(); err != nil && !isClosedError(err) {
		closeErr = multierr.Append(closeErr, fmt.Errorf("failed to close browser: %w", err))
	}
	return closeErr
}

// currentPage - returns the active page
func (b *playwrightController) currentPage() (playwright.Page, error) {
	b.pagesMutex.Lock()
	defer b.pagesMutex.Unlock()

	if b.page == nil {
		return nil, entities.ErrNoBrowser
	}
	return b.page, nil
}

// locator - returns a locator on the active page
func (b *playwrightController) locator(selector string) (playwright.Locator, error) {
	page, err := b.currentPage()
	if err != nil {
		return nil, err
	}
	return page.Locator(selector), nil
}

// GoTo - navigates to the specified URL
func (b *playwrightController) GoTo(ctx context.Context, url string) error {
	page, err := b.currentPage()
	if err != nil {
		return err
	}

	if _, err := page.Goto(url); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// GoBack - navigates back in history
func (b *playwrightController) GoBack(ctx context.Context) error {
	page, err := b.currentPage()
	if err != nil {
		return err
	}
	_, err = page.GoBack()
	return err
}

// GoForward - navigates forward in history
func (b *playwrightController) GoForward(ctx context.Context) error {
	page, err := b.currentPage()
	if err != nil {
		return err
	}
	_, err = page.GoForward()
	return err
}

// Title - returns the current page title
func (b *playwrightController) Title(ctx context.Context) (string, error) {
	page, err := b.currentPage()
	if err != nil {
		return "", err
	}
	return page.Title()
}

// URL - returns the current page URL
func (b *playwrightController) URL(ctx context.Context) (string, error) {
	page, err := b.currentPage()
	if err != nil {
		return "", err
	}
	return page.URL(), nil
}

// TextContent - returns the text content of an element
func (b *playwrightController) TextContent(ctx context.Context, selector string) (string, error) {
	locator, err := b.locator(selector)
	if err != nil {
		return "", err
	}
	text, err := locator.TextContent()
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", selector, err)
	}
	return text, nil
}

// IsVisible - checks if an element is visible
func (b *playwrightController) IsVisible(ctx context.Context, selector string) (bool, error) {
	locator, err := b.locator(selector)
	if err != nil {
		return false, err
	}
	return locator.IsVisible()
}

// IsChecked - checks if a checkbox is checked
func (b *playwrightController) IsChecked(ctx context.Context, selector string) (bool, error) {
	locator, err := b.locator(selector)
	if err != nil {
		return false, err
	}
	return locator.IsChecked()
}

// Click - clicks on an element
func (b *playwrightController) Click(ctx context.Context, selector string, opts entities.ClickOptions) error {
	locator, err := b.locator(selector)
	if err != nil {
		return err
	}

	clickOpts := playwright.LocatorClickOptions{}
	if opts.Button != "" {
		button := playwright.MouseButton(opts.Button)
		clickOpts.Button = &button
	}
	if opts.ClickCount > 0 {
		clickOpts.ClickCount = playwright.Int(opts.ClickCount)
	}

	if err := locator.Click(clickOpts); err != nil {
		return fmt.Errorf("click on %s failed: %w", selector, err)
	}
	return nil
}

// Fill - replaces the value of an input field
func (b *playwrightController) Fill(ctx context.Context, selector string, text string) error {
	locator, err := b.locator(selector)
	if err != nil {
		return err
	}
	if err := locator.Fill(text); err != nil {
		return fmt.Errorf("fill of %s failed: %w", selector, err)
	}
	return nil
}

// Type - types text key by key
func (b *playwrightController) Type(ctx context.Context, selector string, text string, delay time.Duration) error {
	locator, err := b.locator(selector)
	if err != nil {
		return err
	}

	opts := playwright.LocatorPressSequentiallyOptions{}
	if delay > 0 {
		opts.Delay = playwright.Float(milliseconds(delay))
	}
	if err := locator.PressSequentially(text, opts); err != nil {
		return fmt.Errorf("typing into %s failed: %w", selector, err)
	}
	return nil
}

// Press - presses keys on an element
func (b *playwrightController) Press(ctx context.Context, selector string, keys []string) error {
	locator, err := b.locator(selector)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := locator.Press(key); err != nil {
			return fmt.Errorf("pressing %s on %s failed: %w", key, selector, err)
		}
	}
	return nil
}

// SetChecked - checks or unchecks a checkbox
func (b *playwrightController) SetChecked(ctx context.Context, selector string, checked bool) error {
	locator, err := b.locator(selector)
	if err != nil {
		return err
	}
	if checked {
		return locator.Check()
	}
	return locator.Uncheck()
}

// SelectOptions - selects options by value, falling back to labels
func (b *playwrightController) SelectOptions(ctx context.Context, selector string, values []string) ([]string, error) {
	locator, err := b.locator(selector)
	if err != nil {
		return nil, err
	}

	selected, err := locator.SelectOption(playwright.SelectOptionValues{Values: &values})
	if err == nil && len(selected) > 0 {
		return selected, nil
	}

	selected, labelErr := locator.SelectOption(playwright.SelectOptionValues{Labels: &values})
	if labelErr != nil {
		return nil, fmt.Errorf("select on %s failed: %w", selector, multierr.Append(err, labelErr))
	}
	return selected, nil
}

// Focus - focuses an element
func (b *playwrightController) Focus(ctx context.Context, selector string) error {
	locator, err := b.locator(selector)
	if err != nil {
		return err
	}
	return locator.Focus()
}

// Hover - hovers over an element
func (b *playwrightController) Hover(ctx context.Context, selector string) error {
	locator, err := b.locator(selector)
	if err != nil {
		return err
	}
	return locator.Hover()
}

// WaitForElement - waits for an element to reach a state
func (b *playwrightController) WaitForElement(ctx context.Context, selector string, state entities.ElementState, timeout time.Duration) error {
	locator, err := b.locator(selector)
	if err != nil {
		return err
	}

	waitState := playwright.WaitForSelectorState(state)
	opts := playwright.LocatorWaitForOptions{State: &waitState}
	if timeout > 0 {
		opts.Timeout = playwright.Float(milliseconds(timeout))
	}

	if err := locator.WaitFor(opts); err != nil {
		return fmt.Errorf("element '%s' did not become %s: %w", selector, state, err)
	}
	return nil
}

// Screenshot - takes a screenshot of the current page
func (b *playwrightController) Screenshot(ctx context.Context, path string) error {
	page, err := b.currentPage()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	_, err = page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	})
	return err
}

// SetTimeout - sets the default timeout of the active and future pages
func (b *playwrightController) SetTimeout(ctx context.Context, timeout time.Duration) error {
	b.pagesMutex.Lock()
	defer b.pagesMutex.Unlock()

	b.timeout = timeout
	for _, p := range b.pages {
		p.SetDefaultTimeout(milliseconds(timeout))
	}
	return nil
}

// Cookies - returns the cookies of the browser context
func (b *playwrightController) Cookies(ctx context.Context) ([]entities.Cookie, error) {
	browserContext, err := b.browserContext()
	if err != nil {
		return nil, err
	}

	cookies, err := browserContext.Cookies()
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	result := make([]entities.Cookie, 0, len(cookies))
	for _, c := range cookies {
		cookie := entities.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			cookie.SameSite = string(*c.SameSite)
		}
		result = append(result, cookie)
	}
	return result, nil
}

// AddCookies - adds cookies to the browser context
func (b *playwrightController) AddCookies(ctx context.Context, cookies []entities.Cookie) error {
	browserContext, err := b.browserContext()
	if err != nil {
		return err
	}

	optional := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		oc := playwright.OptionalCookie{
			Name:  c.Name,
			Value: c.Value,
		}
		if c.URL != "" {
			oc.URL = playwright.String(c.URL)
		}
		if c.Domain != "" {
			oc.Domain = playwright.String(c.Domain)
		}
		if c.Path != "" {
			oc.Path = playwright.String(c.Path)
		}
		if c.Expires > 0 {
			oc.Expires = playwright.Float(c.Expires)
		}
		if c.HTTPOnly {
			oc.HttpOnly = playwright.Bool(true)
		}
		if c.Secure {
			oc.Secure = playwright.Bool(true)
		}
		if c.SameSite != "" {
			sameSite := playwright.SameSiteAttribute(c.SameSite)
			oc.SameSite = &sameSite
		}
		optional = append(optional, oc)
	}

	if err := browserContext.AddCookies(optional); err != nil {
		return fmt.Errorf("failed to add cookies: %w", err)
	}
	return nil
}

// ClearCookies - deletes all cookies of the browser context
func (b *playwrightController) ClearCookies(ctx context.Context) error {
	browserContext, err := b.browserContext()
	if err != nil {
		return err
	}
	return browserContext.ClearCookies()
}

func (b *playwrightController) browserContext() (playwright.BrowserContext, error) {
	b.pagesMutex.Lock()
	defer b.pagesMutex.Unlock()

	if b.context == nil {
		return nil, entities.ErrNoBrowser
	}
	return b.context, nil
}

// Close - closes the browser and stops Playwright
func (b *playwrightController) Close() error {
	closeErr := b.CloseBrowser(context.Background())

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			closeErr = multierr.Append(closeErr, fmt.Errorf("failed to stop playwright: %w", err))
		}
		b.pw = nil
	}

	b.logger.Info("Playwright engine stopped")
	return closeErr
}

// isClosedError - reports errors raised for targets that are already gone
func isClosedError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
