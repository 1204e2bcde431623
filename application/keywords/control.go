package keywords

import (
	"browser_library/domain/entities"
	"browser_library/domain/interfaces"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ControlConfig holds the defaults of the Control group
type ControlConfig struct {
	OutputDir string
	Headless  bool
	Timeout   time.Duration
}

// Control manages the browser, navigation, cookies and screenshots
type Control struct {
	engine  interfaces.Engine
	guard   interfaces.NavigationGuard
	storage interfaces.Storage
	config  ControlConfig
	logger  *logrus.Logger

	mu      sync.Mutex
	timeout time.Duration
}

// NewControl - creates the Control keyword group. guard and storage may be nil.
func NewControl(engine interfaces.Engine, guard interfaces.NavigationGuard, storage interfaces.Storage, config ControlConfig, logger *logrus.Logger) *Control {
	return &Control{
		engine:  engine,
		guard:   guard,
		storage: storage,
		config:  config,
		timeout: config.Timeout,
		logger:  logger,
	}
}

func (c *Control) Name() string {
	return GroupControl
}

func (c *Control) Keywords() []entities.Keyword {
	return []entities.Keyword{
		define(GroupControl, "Open Browser", "Opens a new browser (chrome, firefox or webkit) and navigates to url when given.", c.openBrowser,
			entities.Optional("url", nil), entities.Optional("browser", entities.BrowserChrome), entities.Optional("headless", c.config.Headless)),
		define(GroupControl, "Close Browser", "Closes the current browser.", c.closeBrowser),
		define(GroupControl, "Go To", "Navigates the current page to url.", c.goTo,
			entities.Required("url")),
		define(GroupControl, "Go Back", "Navigates back in history.", c.goBack),
		define(GroupControl, "Go Forward", "Navigates forward in history.", c.goForward),
		define(GroupControl, "Set Timeout", "Sets the default timeout of browser operations. Returns the previous timeout.", c.setTimeout,
			entities.Required("timeout")),
		define(GroupControl, "Take Page Screenshot", "Takes a screenshot of the current page and returns its path. Without path the file is written to the output directory.", c.takeScreenshot,
			entities.Optional("path", nil)),
		define(GroupControl, "Get Cookies", "Returns the cookies of the current browser context.", c.getCookies),
		define(GroupControl, "Add Cookie", "Adds a cookie to the current browser context. Without url and domain the current page URL is used.", c.addCookie,
			entities.Required("name"), entities.Required("value"),
			entities.Optional("url", nil), entities.Optional("domain", nil), entities.Optional("path", nil),
			entities.Optional("expires", nil), entities.Optional("httpOnly", false), entities.Optional("secure", false),
			entities.Optional("sameSite", nil)),
		define(GroupControl, "Delete All Cookies", "Deletes all cookies of the current browser context.", c.deleteAllCookies),
		define(GroupControl, "Save Browser State", "Saves the cookies of the current browser context. Returns the number of cookies saved.", c.saveState),
		define(GroupControl, "Restore Browser State", "Adds previously saved cookies to the current browser context. Returns the number of cookies restored.", c.restoreState),
		define(GroupControl, "Wait For Elements State", "Waits until the element is attached, detached, visible or hidden.", c.waitForElementsState,
			entities.Required("selector"), entities.Optional("state", string(entities.ElementVisible)), entities.Optional("timeout", nil)),
	}
}

// checkNavigation - applies the navigation guard, if any
func (c *Control) checkNavigation(ctx context.Context, url string) error {
	if c.guard == nil {
		return nil
	}
	return c.guard.CheckNavigation(ctx, url)
}

func (c *Control) openBrowser(ctx context.Context, args entities.Arguments) (interface{}, error) {
	name, err := oneOf("browser", args.String("browser"),
		entities.BrowserChrome, entities.BrowserChromium, entities.BrowserFirefox, entities.BrowserWebKit)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnsupportedBrowser, args.String("browser"))
	}
	if name == entities.BrowserChromium {
		name = entities.BrowserChrome
	}

	headless, err := args.Bool("headless")
	if err != nil {
		return nil, err
	}

	url, hasURL := args.OptionalString("url")
	if hasURL {
		if err := c.checkNavigation(ctx, url); err != nil {
			return nil, err
		}
	}

	c.logger.WithFields(logrus.Fields{
		"browser":  name,
		"headless": headless,
	}).Info("Opening browser")

	if err := c.engine.OpenBrowser(ctx, entities.BrowserOptions{Browser: name, Headless: headless}); err != nil {
		return nil, err
	}
	if timeout := c.currentTimeout(); timeout > 0 {
		if err := c.engine.SetTimeout(ctx, timeout); err != nil {
			return nil, err
		}
	}
	if hasURL {
		if err := c.engine.GoTo(ctx, url); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (c *Control) closeBrowser(ctx context.Context, args entities.Arguments) (interface{}, error) {
	return nil, c.engine.CloseBrowser(ctx)
}

func (c *Control) goTo(ctx context.Context, args entities.Arguments) (interface{}, error) {
	url := args.String("url")
	if err := c.checkNavigation(ctx, url); err != nil {
		return nil, err
	}
	c.logger.Infof("Navigating to %s", url)
	return nil, c.engine.GoTo(ctx, url)
}

func (c *Control) goBack(ctx context.Context, args entities.Arguments) (interface{}, error) {
	return nil, c.engine.GoBack(ctx)
}

func (c *Control) goForward(ctx context.Context, args entities.Arguments) (interface{}, error) {
	return nil, c.engine.GoForward(ctx)
}

func (c *Control) setTimeout(ctx context.Context, args entities.Arguments) (interface{}, error) {
	timeout, err := args.Duration("timeout")
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive", entities.ErrInvalidArguments)
	}
	if err := c.engine.SetTimeout(ctx, timeout); err != nil {
		return nil, err
	}
	c.mu.Lock()
	previous := c.timeout
	c.timeout = timeout
	c.mu.Unlock()
	return previous.String(), nil
}

func (c *Control) currentTimeout() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeout
}

// screenshotPath - resolves the file a screenshot is written to
func (c *Control) screenshotPath(path string, ok bool) string {
	if !ok || path == "" {
		return filepath.Join(c.config.OutputDir, fmt.Sprintf("screenshot-%s.png", uuid.NewString()))
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.config.OutputDir, path)
	}
	if filepath.Ext(path) == "" {
		path += ".png"
	}
	return path
}

func (c *Control) takeScreenshot(ctx context.Context, args entities.Arguments) (interface{}, error) {
	path := c.screenshotPath(args.OptionalString("path"))
	if err := c.engine.Screenshot(ctx, path); err != nil {
		return nil, err
	}
	c.logger.Infof("Screenshot saved to %s", path)
	return path, nil
}

func (c *Control) getCookies(ctx context.Context, args entities.Arguments) (interface{}, error) {
	return c.engine.Cookies(ctx)
}

func (c *Control) addCookie(ctx context.Context, args entities.Arguments) (interface{}, error) {
	cookie := entities.Cookie{
		Name:  args.String("name"),
		Value: args.String("value"),
	}
	cookie.URL, _ = args.OptionalString("url")
	cookie.Domain, _ = args.OptionalString("domain")
	cookie.Path, _ = args.OptionalString("path")
	if s, ok := args.OptionalString("sameSite"); ok {
		sameSite, err := oneOf("sameSite", s, "strict", "lax", "none")
		if err != nil {
			return nil, err
		}
		cookie.SameSite = strings.ToUpper(sameSite[:1]) + sameSite[1:]
	}

	var err error
	if args.Has("expires") {
		if cookie.Expires, err = args.Float("expires"); err != nil {
			return nil, err
		}
	}
	if cookie.HTTPOnly, err = args.Bool("httpOnly"); err != nil {
		return nil, err
	}
	if cookie.Secure, err = args.Bool("secure"); err != nil {
		return nil, err
	}

	if cookie.URL == "" && cookie.Domain == "" {
		url, err := c.engine.URL(ctx)
		if err != nil {
			return nil, err
		}
		cookie.URL = url
	}
	if cookie.Domain != "" && cookie.Path == "" {
		cookie.Path = "/"
	}

	c.logger.Debugf("Adding cookie %s", cookie.Name)
	return nil, c.engine.AddCookies(ctx, []entities.Cookie{cookie})
}

func (c *Control) deleteAllCookies(ctx context.Context, args entities.Arguments) (interface{}, error) {
	return nil, c.engine.ClearCookies(ctx)
}

func (c *Control) requireStorage() error {
	if c.storage == nil {
		return fmt.Errorf("browser state storage is not configured")
	}
	return nil
}

func (c *Control) saveState(ctx context.Context, args entities.Arguments) (interface{}, error) {
	if err := c.requireStorage(); err != nil {
		return nil, err
	}
	cookies, err := c.engine.Cookies(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.storage.SaveState(cookies); err != nil {
		return nil, fmt.Errorf("failed to save browser state: %w", err)
	}
	c.logger.Infof("Saved %d cookies", len(cookies))
	return len(cookies), nil
}

func (c *Control) restoreState(ctx context.Context, args entities.Arguments) (interface{}, error) {
	if err := c.requireStorage(); err != nil {
		return nil, err
	}
	cookies, err := c.storage.LoadState()
	if err != nil {
		return nil, fmt.Errorf("failed to load browser state: %w", err)
	}
	if len(cookies) == 0 {
		return 0, nil
	}
	if err := c.engine.AddCookies(ctx, cookies); err != nil {
		return nil, err
	}
	c.logger.Infof("Restored %d cookies", len(cookies))
	return len(cookies), nil
}

func (c *Control) waitForElementsState(ctx context.Context, args entities.Arguments) (interface{}, error) {
	state, err := oneOf("state", args.String("state"),
		string(entities.ElementAttached), string(entities.ElementDetached),
		string(entities.ElementVisible), string(entities.ElementHidden))
	if err != nil {
		return nil, err
	}
	timeout := c.currentTimeout()
	if args.Has("timeout") {
		if timeout, err = args.Duration("timeout"); err != nil {
			return nil, err
		}
	}
	return nil, c.engine.WaitForElement(ctx, args.String("selector"), entities.ElementState(state), timeout)
}
