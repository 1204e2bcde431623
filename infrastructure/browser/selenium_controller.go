package browser

import (
	"browser_library/domain/entities"
	"browser_library/domain/interfaces"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"go.uber.org/multierr"
)

// SeleniumController drives Chrome through ChromeDriver
type SeleniumController struct {
	wd           selenium.WebDriver
	service      *selenium.Service
	port         int
	chromeBinary string
	timeout      time.Duration
	outputDir    string
	logger       *logrus.Logger
}

var _ interfaces.Engine = (*SeleniumController)(nil)

// seleniumKeys maps key names used in Press Keys to WebDriver key codes
var seleniumKeys = map[string]string{
	"enter":      selenium.EnterKey,
	"tab":        selenium.TabKey,
	"escape":     selenium.EscapeKey,
	"backspace":  selenium.BackspaceKey,
	"delete":     selenium.DeleteKey,
	"space":      selenium.SpaceKey,
	"arrowup":    selenium.UpArrowKey,
	"arrowdown":  selenium.DownArrowKey,
	"arrowleft":  selenium.LeftArrowKey,
	"arrowright": selenium.RightArrowKey,
	"home":       selenium.HomeKey,
	"end":        selenium.EndKey,
	"pageup":     selenium.PageUpKey,
	"pagedown":   selenium.PageDownKey,
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found. Please install it or set BROWSER_DRIVER_PATH environment variable")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// NewSeleniumController - starts ChromeDriver. The browser session is
// created by OpenBrowser.
func NewSeleniumController(opts Options, outputDir string, logger *logrus.Logger) (*SeleniumController, error) {
	driverPath, err := findChromeDriver(opts.DriverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	chromeBinary := findChromeBinary(opts.ChromeBinary)
	if chromeBinary != "" {
		logger.Infof("Using Chrome binary at: %s", chromeBinary)
	}

	port := opts.DriverPort
	if port <= 0 {
		port = defaultDriverPort
	}

	service, err := selenium.NewChromeDriverService(driverPath, port)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &SeleniumController{
		service:      service,
		port:         port,
		chromeBinary: chromeBinary,
		timeout:      timeout,
		outputDir:    outputDir,
		logger:       logger,
	}, nil
}

// SeleniumFactory - returns an engine factory building Selenium controllers
func SeleniumFactory(opts Options, logger *logrus.Logger) interfaces.EngineFactory {
	return func(outputDir string) (interfaces.Engine, error) {
		controller, err := NewSeleniumController(opts, outputDir, logger)
		if err != nil {
			return nil, err
		}
		return controller, nil
	}
}

// OpenBrowser - creates a WebDriver session
func (s *SeleniumController) OpenBrowser(ctx context.Context, opts entities.BrowserOptions) error {
	switch strings.ToLower(opts.Browser) {
	case "", entities.BrowserChrome, entities.BrowserChromium:
	default:
		return fmt.Errorf("%w: %s (selenium engine drives chrome only)", entities.ErrUnsupportedBrowser, opts.Browser)
	}

	if s.wd != nil {
		if err := s.CloseBrowser(ctx); err != nil {
			s.logger.Warnf("Failed to close previous browser: %v", err)
		}
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	chromeCaps := chrome.Capabilities{
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			fmt.Sprintf("--window-size=%d,%d", width, height),
		},
	}
	if opts.Headless {
		chromeCaps.Args = append(chromeCaps.Args, "--headless=new")
	}
	if s.chromeBinary != "" {
		chromeCaps.Path = s.chromeBinary
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", s.port))
	if err != nil {
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH environment variable. Error: %w", err)
		}
		return fmt.Errorf("failed to create webdriver: %w", err)
	}

	s.wd = wd
	if err := s.applyTimeout(); err != nil {
		s.logger.Warnf("Failed to apply timeout: %v", err)
	}

	s.logger.WithField("headless", opts.Headless).Info("Browser opened")
	return nil
}

// CloseBrowser - quits the WebDriver session
func (s *SeleniumController) CloseBrowser(ctx context.Context) error {
	if s.wd == nil {
		return nil
	}
	wd := s.wd
	s.wd = nil
	return wd.Quit()
}

func (s *SeleniumController) driver() (selenium.WebDriver, error) {
	if s.wd == nil {
		return nil, entities.ErrNoBrowser
	}
	return s.wd, nil
}

// seleniumLocator - picks the lookup strategy for an engine-native prefix
func seleniumLocator(selector string) (string, string) {
	switch {
	case strings.HasPrefix(selector, "xpath="):
		return selenium.ByXPATH, strings.TrimSpace(strings.TrimPrefix(selector, "xpath="))
	case strings.HasPrefix(selector, "css="):
		return selenium.ByCSSSelector, strings.TrimSpace(strings.TrimPrefix(selector, "css="))
	case strings.HasPrefix(selector, "//"):
		return selenium.ByXPATH, selector
	default:
		return selenium.ByCSSSelector, selector
	}
}

// findElement - finds the element matching selector
func (s *SeleniumController) findElement(selector string) (selenium.WebElement, error) {
	wd, err := s.driver()
	if err != nil {
		return nil, err
	}
	by, value := seleniumLocator(selector)
	element, err := wd.FindElement(by, value)
	if err != nil {
		return nil, fmt.Errorf("element not found with selector %s: %w", selector, err)
	}
	return element, nil
}

// GoTo - navigates browser to specified URL
func (s *SeleniumController) GoTo(ctx context.Context, url string) error {
	wd, err := s.driver()
	if err != nil {
		return err
	}
	s.logger.Debugf("Navigating to: %s", url)
	return wd.Get(url)
}

// GoBack - navigates back in history
func (s *SeleniumController) GoBack(ctx context.Context) error {
	wd, err := s.driver()
	if err != nil {
		return err
	}
	return wd.Back()
}

// GoForward - navigates forward in history
func (s *SeleniumController) GoForward(ctx context.Context) error {
	wd, err := s.driver()
	if err != nil {
		return err
	}
	return wd.Forward()
}

// Title - returns current page title
func (s *SeleniumController) Title(ctx context.Context) (string, error) {
	wd, err := s.driver()
	if err != nil {
		return "", err
	}
	return wd.Title()
}

// URL - returns current page URL
func (s *SeleniumController) URL(ctx context.Context) (string, error) {
	wd, err := s.driver()
	if err != nil {
		return "", err
	}
	return wd.CurrentURL()
}

// TextContent - returns the text of an element
func (s *SeleniumController) TextContent(ctx context.Context, selector string) (string, error) {
	element, err := s.findElement(selector)
	if err != nil {
		return "", err
	}
	return element.Text()
}

// IsVisible - checks if element is visible on page
func (s *SeleniumController) IsVisible(ctx context.Context, selector string) (bool, error) {
	if _, err := s.driver(); err != nil {
		return false, err
	}
	element, err := s.findElement(selector)
	if err != nil {
		return false, nil
	}
	return element.IsDisplayed()
}

// IsChecked - checks if a checkbox is selected
func (s *SeleniumController) IsChecked(ctx context.Context, selector string) (bool, error) {
	element, err := s.findElement(selector)
	if err != nil {
		return false, err
	}
	return element.IsSelected()
}

// Click - clicks on element identified by selector
func (s *SeleniumController) Click(ctx context.Context, selector string, opts entities.ClickOptions) error {
	if opts.Button != "" && opts.Button != "left" {
		return fmt.Errorf("selenium engine supports left button clicks only, got %s", opts.Button)
	}

	element, err := s.findElement(selector)
	if err != nil {
		return err
	}

	// Scroll element into view using JavaScript for better reliability
	script := `arguments[0].scrollIntoView({ block: 'center' }); return true;`
	if _, err := s.wd.ExecuteScript(script, []interface{}{element}); err != nil {
		s.logger.Warnf("Failed to scroll to element: %v", err)
	}

	count := opts.ClickCount
	if count <= 0 {
		count = 1
	}
	for i := 0; i < count; i++ {
		if err := element.Click(); err != nil {
			return fmt.Errorf("click on %s failed: %w", selector, err)
		}
	}
	return nil
}

// Fill - replaces the value of an input field
func (s *SeleniumController) Fill(ctx context.Context, selector string, text string) error {
	element, err := s.findElement(selector)
	if err != nil {
		return err
	}
	if err := element.Clear(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", selector, err)
	}
	if text == "" {
		return nil
	}
	return element.SendKeys(text)
}

// Type - types text into input field key by key
func (s *SeleniumController) Type(ctx context.Context, selector string, text string, delay time.Duration) error {
	element, err := s.findElement(selector)
	if err != nil {
		return err
	}

	for _, char := range text {
		if err := element.SendKeys(string(char)); err != nil {
			return fmt.Errorf("failed to type character: %w", err)
		}
		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil
}

// Press - presses keys on an element
func (s *SeleniumController) Press(ctx context.Context, selector string, keys []string) error {
	element, err := s.findElement(selector)
	if err != nil {
		return err
	}
	for _, key := range keys {
		code, ok := seleniumKeys[strings.ToLower(key)]
		if !ok {
			code = key
		}
		if err := element.SendKeys(code); err != nil {
			return fmt.Errorf("pressing %s on %s failed: %w", key, selector, err)
		}
	}
	return nil
}

// SetChecked - checks or unchecks a checkbox
func (s *SeleniumController) SetChecked(ctx context.Context, selector string, checked bool) error {
	element, err := s.findElement(selector)
	if err != nil {
		return err
	}
	selected, err := element.IsSelected()
	if err != nil {
		return err
	}
	if selected == checked {
		return nil
	}
	return element.Click()
}

// SelectOptions - selects options by value, falling back to visible text
func (s *SeleniumController) SelectOptions(ctx context.Context, selector string, values []string) ([]string, error) {
	element, err := s.findElement(selector)
	if err != nil {
		return nil, err
	}

	selected := make([]string, 0, len(values))
	for _, v := range values {
		option, err := element.FindElement(selenium.ByCSSSelector, fmt.Sprintf("option[value=%q]", v))
		if err != nil {
			option, err = element.FindElement(selenium.ByXPATH, fmt.Sprintf(".//option[normalize-space(.)=%q]", v))
			if err != nil {
				return nil, fmt.Errorf("option %s not found in %s: %w", v, selector, err)
			}
		}
		if err := option.Click(); err != nil {
			return nil, err
		}
		value, err := option.GetAttribute("value")
		if err != nil {
			value = v
		}
		selected = append(selected, value)
	}
	return selected, nil
}

// Focus - focuses an element
func (s *SeleniumController) Focus(ctx context.Context, selector string) error {
	element, err := s.findElement(selector)
	if err != nil {
		return err
	}
	_, err = s.wd.ExecuteScript(`arguments[0].focus(); return true;`, []interface{}{element})
	return err
}

// Hover - moves the mouse over an element
func (s *SeleniumController) Hover(ctx context.Context, selector string) error {
	element, err := s.findElement(selector)
	if err != nil {
		return err
	}
	return element.MoveTo(0, 0)
}

// WaitForElement - polls until the element reaches state
func (s *SeleniumController) WaitForElement(ctx context.Context, selector string, state entities.ElementState, timeout time.Duration) error {
	wd, err := s.driver()
	if err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = s.timeout
	}

	by, value := seleniumLocator(selector)
	condition := func(wd selenium.WebDriver) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		element, err := wd.FindElement(by, value)
		found := err == nil
		switch state {
		case entities.ElementAttached:
			return found, nil
		case entities.ElementDetached:
			return !found, nil
		case entities.ElementHidden:
			if !found {
				return true, nil
			}
			displayed, err := element.IsDisplayed()
			return err == nil && !displayed, nil
		default:
			if !found {
				return false, nil
			}
			displayed, err := element.IsDisplayed()
			return err == nil && displayed, nil
		}
	}

	if err := wd.WaitWithTimeout(condition, timeout); err != nil {
		return fmt.Errorf("element '%s' did not become %s: %w", selector, state, err)
	}
	return nil
}

// Screenshot - writes a screenshot of the current page
func (s *SeleniumController) Screenshot(ctx context.Context, path string) error {
	wd, err := s.driver()
	if err != nil {
		return err
	}
	data, err := wd.Screenshot()
	if err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// SetTimeout - sets implicit wait and page load timeouts
func (s *SeleniumController) SetTimeout(ctx context.Context, timeout time.Duration) error {
	s.timeout = timeout
	if s.wd == nil {
		return nil
	}
	return s.applyTimeout()
}

func (s *SeleniumController) applyTimeout() error {
	return multierr.Append(
		s.wd.SetImplicitWaitTimeout(s.timeout),
		s.wd.SetPageLoadTimeout(s.timeout),
	)
}

// Cookies - returns the cookies of the session
func (s *SeleniumController) Cookies(ctx context.Context) ([]entities.Cookie, error) {
	wd, err := s.driver()
	if err != nil {
		return nil, err
	}
	cookies, err := wd.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	result := make([]entities.Cookie, 0, len(cookies))
	for _, c := range cookies {
		result = append(result, entities.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Domain:  c.Domain,
			Path:    c.Path,
			Expires: float64(c.Expiry),
			Secure:  c.Secure,
		})
	}
	return result, nil
}

// AddCookies - adds cookies to the session
func (s *SeleniumController) AddCookies(ctx context.Context, cookies []entities.Cookie) error {
	wd, err := s.driver()
	if err != nil {
		return err
	}
	for _, c := range cookies {
		cookie := &selenium.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
			Secure: c.Secure,
		}
		if c.Expires > 0 {
			cookie.Expiry = uint(c.Expires)
		}
		if err := wd.AddCookie(cookie); err != nil {
			return fmt.Errorf("failed to add cookie %s: %w", c.Name, err)
		}
	}
	return nil
}

// ClearCookies - deletes all cookies of the session
func (s *SeleniumController) ClearCookies(ctx context.Context) error {
	wd, err := s.driver()
	if err != nil {
		return err
	}
	return wd.DeleteAllCookies()
}

// Close - closes browser and stops ChromeDriver service
func (s *SeleniumController) Close() error {
	var closeErr error
	if s.wd != nil {
		closeErr = multierr.Append(closeErr, s.wd.Quit())
		s.wd = nil
	}
	if s.service != nil {
		closeErr = multierr.Append(closeErr, s.service.Stop())
		s.service = nil
	}
	return closeErr
}
