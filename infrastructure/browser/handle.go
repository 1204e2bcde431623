package browser

import (
	"browser_library/domain/entities"
	"browser_library/domain/interfaces"
	"context"
	"fmt"
	"sync"
	"time"
)

// State is the lifecycle state of a Handle
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Handle is the single engine session of a library instance. It opens the
// engine once, serializes every call to it and refuses calls after Close.
type Handle struct {
	mu        sync.Mutex
	state     State
	factory   interfaces.EngineFactory
	engine    interfaces.Engine
	outputDir string
}

var _ interfaces.EngineHandle = (*Handle)(nil)

// NewHandle - creates an uninitialized handle
func NewHandle(factory interfaces.EngineFactory) *Handle {
	return &Handle{factory: factory}
}

// Open - starts the engine for outputDir; allowed exactly once
func (h *Handle) Open(outputDir string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case StateActive:
		return fmt.Errorf("engine handle already open")
	case StateClosed:
		return entities.ErrHandleClosed
	}

	engine, err := h.factory(outputDir)
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	h.engine = engine
	h.outputDir = outputDir
	h.state = StateActive
	return nil
}

// State - returns the current lifecycle state
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// OutputDir - returns the output directory the engine was opened with
func (h *Handle) OutputDir() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outputDir
}

// Close - closes the engine. Closing an already closed handle is a no-op.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.state
	h.state = StateClosed
	if prev != StateActive {
		return nil
	}

	engine := h.engine
	h.engine = nil
	if err := engine.Close(); err != nil {
		return fmt.Errorf("failed to close engine: %w", err)
	}
	return nil
}

// do runs fn against the engine while holding the handle lock
func (h *Handle) do(ctx context.Context, fn func(interfaces.Engine) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case StateUninitialized:
		return entities.ErrHandleNotOpen
	case StateClosed:
		return entities.ErrHandleClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(h.engine)
}

func (h *Handle) OpenBrowser(ctx context.Context, opts entities.BrowserOptions) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.OpenBrowser(ctx, opts) })
}

func (h *Handle) CloseBrowser(ctx context.Context) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.CloseBrowser(ctx) })
}

func (h *Handle) GoTo(ctx context.Context, url string) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.GoTo(ctx, url) })
}

func (h *Handle) GoBack(ctx context.Context) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.GoBack(ctx) })
}

func (h *Handle) GoForward(ctx context.Context) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.GoForward(ctx) })
}

func (h *Handle) Title(ctx context.Context) (title string, err error) {
	err = h.do(ctx, func(e interfaces.Engine) error {
		title, err = e.Title(ctx)
		return err
	})
	return title, err
}

func (h *Handle) URL(ctx context.Context) (url string, err error) {
	err = h.do(ctx, func(e interfaces.Engine) error {
		url, err = e.URL(ctx)
		return err
	})
	return url, err
}

func (h *Handle) TextContent(ctx context.Context, selector string) (text string, err error) {
	err = h.do(ctx, func(e interfaces.Engine) error {
		text, err = e.TextContent(ctx, selector)
		return err
	})
	return text, err
}

func (h *Handle) IsVisible(ctx context.Context, selector string) (visible bool, err error) {
	err = h.do(ctx, func(e interfaces.Engine) error {
		visible, err = e.IsVisible(ctx, selector)
		return err
	})
	return visible, err
}

func (h *Handle) IsChecked(ctx context.Context, selector string) (checked bool, err error) {
	err = h.do(ctx, func(e interfaces.Engine) error {
		checked, err = e.IsChecked(ctx, selector)
		return err
	})
	return checked, err
}

func (h *Handle) Click(ctx context.Context, selector string, opts entities.ClickOptions) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.Click(ctx, selector, opts) })
}

func (h *Handle) Fill(ctx context.Context, selector string, text string) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.Fill(ctx, selector, text) })
}

func (h *Handle) Type(ctx context.Context, selector string, text string, delay time.Duration) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.Type(ctx, selector, text, delay) })
}

func (h *Handle) Press(ctx context.Context, selector string, keys []string) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.Press(ctx, selector, keys) })
}

func (h *Handle) SetChecked(ctx context.Context, selector string, checked bool) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.SetChecked(ctx, selector, checked) })
}

func (h *Handle) SelectOptions(ctx context.Context, selector string, values []string) (selected []string, err error) {
	err = h.do(ctx, func(e interfaces.Engine) error {
		selected, err = e.SelectOptions(ctx, selector, values)
		return err
	})
	return selected, err
}

func (h *Handle) Focus(ctx context.Context, selector string) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.Focus(ctx, selector) })
}

func (h *Handle) Hover(ctx context.Context, selector string) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.Hover(ctx, selector) })
}

func (h *Handle) WaitForElement(ctx context.Context, selector string, state entities.ElementState, timeout time.Duration) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.WaitForElement(ctx, selector, state, timeout) })
}

func (h *Handle) Screenshot(ctx context.Context, path string) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.Screenshot(ctx, path) })
}

func (h *Handle) SetTimeout(ctx context.Context, timeout time.Duration) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.SetTimeout(ctx, timeout) })
}

func (h *Handle) Cookies(ctx context.Context) (cookies []entities.Cookie, err error) {
	err = h.do(ctx, func(e interfaces.Engine) error {
		cookies, err = e.Cookies(ctx)
		return err
	})
	return cookies, err
}

func (h *Handle) AddCookies(ctx context.Context, cookies []entities.Cookie) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.AddCookies(ctx, cookies) })
}

func (h *Handle) ClearCookies(ctx context.Context) error {
	return h.do(ctx, func(e interfaces.Engine) error { return e.ClearCookies(ctx) })
}
