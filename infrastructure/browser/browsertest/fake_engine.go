// Package browsertest provides an in-memory engine for tests.
package browsertest

import (
	"browser_library/domain/entities"
	"browser_library/domain/interfaces"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Call is one recorded engine invocation
type Call struct {
	Method string
	Args   []interface{}
}

// FakeEngine records calls and serves page state from its fields. Set an
// entry in Errors, keyed by method name, to make that method fail.
type FakeEngine struct {
	mu sync.Mutex

	Calls   []Call
	Errors  map[string]error
	Opened  bool
	Closed  bool
	Options entities.BrowserOptions

	PageTitle string
	PageURL   string
	History   []string
	Texts     map[string]string
	Values    map[string]string
	Visible   map[string]bool
	Checked   map[string]bool
	Focused   string
	Timeout   time.Duration
	Jar       []entities.Cookie

	// WriteScreenshots makes Screenshot create the target file
	WriteScreenshots bool
	// OnScreenshot runs before Screenshot returns
	OnScreenshot func(path string) error
}

var _ interfaces.Engine = (*FakeEngine)(nil)

// NewFakeEngine - creates an empty fake engine
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		Errors:  map[string]error{},
		Texts:   map[string]string{},
		Values:  map[string]string{},
		Visible: map[string]bool{},
		Checked: map[string]bool{},
	}
}

// Factory - returns an engine factory always handing out f
func (f *FakeEngine) Factory() interfaces.EngineFactory {
	return func(outputDir string) (interfaces.Engine, error) {
		return f, nil
	}
}

// CallsTo - returns recorded calls of method
func (f *FakeEngine) CallsTo(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeEngine) record(method string, args ...interface{}) error {
	f.Calls = append(f.Calls, Call{Method: method, Args: args})
	if err := f.Errors[method]; err != nil {
		return err
	}
	return nil
}

func (f *FakeEngine) requireBrowser() error {
	if !f.Opened {
		return entities.ErrNoBrowser
	}
	return nil
}

func (f *FakeEngine) OpenBrowser(ctx context.Context, opts entities.BrowserOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("OpenBrowser", opts); err != nil {
		return err
	}
	f.Opened = true
	f.Options = opts
	if f.PageURL == "" {
		f.PageURL = "about:blank"
	}
	return nil
}

func (f *FakeEngine) CloseBrowser(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CloseBrowser"); err != nil {
		return err
	}
	f.Opened = false
	return nil
}

func (f *FakeEngine) GoTo(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GoTo", url); err != nil {
		return err
	}
	if err := f.requireBrowser(); err != nil {
		return err
	}
	f.History = append(f.History, f.PageURL)
	f.PageURL = url
	return nil
}

func (f *FakeEngine) GoBack(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GoBack"); err != nil {
		return err
	}
	if n := len(f.History); n > 0 {
		f.PageURL = f.History[n-1]
		f.History = f.History[:n-1]
	}
	return f.requireBrowser()
}

func (f *FakeEngine) GoForward(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GoForward"); err != nil {
		return err
	}
	return f.requireBrowser()
}

func (f *FakeEngine) Title(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Title"); err != nil {
		return "", err
	}
	return f.PageTitle, f.requireBrowser()
}

func (f *FakeEngine) URL(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("URL"); err != nil {
		return "", err
	}
	return f.PageURL, f.requireBrowser()
}

func (f *FakeEngine) TextContent(ctx context.Context, selector string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("TextContent", selector); err != nil {
		return "", err
	}
	if v, ok := f.Values[selector]; ok {
		return v, nil
	}
	text, ok := f.Texts[selector]
	if !ok {
		return "", fmt.Errorf("no element matches %s", selector)
	}
	return text, nil
}

func (f *FakeEngine) IsVisible(ctx context.Context, selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("IsVisible", selector); err != nil {
		return false, err
	}
	return f.Visible[selector], nil
}

func (f *FakeEngine) IsChecked(ctx context.Context, selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("IsChecked", selector); err != nil {
		return false, err
	}
	return f.Checked[selector], nil
}

func (f *FakeEngine) Click(ctx context.Context, selector string, opts entities.ClickOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("Click", selector, opts)
}

func (f *FakeEngine) Fill(ctx context.Context, selector string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Fill", selector, text); err != nil {
		return err
	}
	f.Values[selector] = text
	return nil
}

func (f *FakeEngine) Type(ctx context.Context, selector string, text string, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Type", selector, text, delay); err != nil {
		return err
	}
	f.Values[selector] += text
	return nil
}

func (f *FakeEngine) Press(ctx context.Context, selector string, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("Press", selector, keys)
}

func (f *FakeEngine) SetChecked(ctx context.Context, selector string, checked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetChecked", selector, checked); err != nil {
		return err
	}
	f.Checked[selector] = checked
	return nil
}

func (f *FakeEngine) SelectOptions(ctx context.Context, selector string, values []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SelectOptions", selector, values); err != nil {
		return nil, err
	}
	return append([]string(nil), values...), nil
}

func (f *FakeEngine) Focus(ctx context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Focus", selector); err != nil {
		return err
	}
	f.Focused = selector
	return nil
}

func (f *FakeEngine) Hover(ctx context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("Hover", selector)
}

func (f *FakeEngine) WaitForElement(ctx context.Context, selector string, state entities.ElementState, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("WaitForElement", selector, state, timeout)
}

func (f *FakeEngine) Screenshot(ctx context.Context, path string) error {
	f.mu.Lock()
	hook := f.OnScreenshot
	err := f.record("Screenshot", path)
	write := f.WriteScreenshots
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if hook != nil {
		if err := hook(path); err != nil {
			return err
		}
	}
	if !write {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("png"), 0644)
}

func (f *FakeEngine) SetTimeout(ctx context.Context, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetTimeout", timeout); err != nil {
		return err
	}
	f.Timeout = timeout
	return nil
}

func (f *FakeEngine) Cookies(ctx context.Context) ([]entities.Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Cookies"); err != nil {
		return nil, err
	}
	return append([]entities.Cookie(nil), f.Jar...), nil
}

func (f *FakeEngine) AddCookies(ctx context.Context, cookies []entities.Cookie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AddCookies", cookies); err != nil {
		return err
	}
	for _, c := range cookies {
		if c.Name == "" || (c.URL == "" && c.Domain == "") {
			return fmt.Errorf("cookie %q needs a url or a domain", c.Name)
		}
	}
	f.Jar = append(f.Jar, cookies...)
	return nil
}

func (f *FakeEngine) ClearCookies(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ClearCookies"); err != nil {
		return err
	}
	f.Jar = nil
	return nil
}

func (f *FakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Close"); err != nil {
		return err
	}
	f.Closed = true
	f.Opened = false
	return nil
}

// Methods - returns the recorded method names in order
func (f *FakeEngine) Methods() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		names = append(names, c.Method)
	}
	return strings.Join(names, ",")
}
