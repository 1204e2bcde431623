package browser

import (
	"browser_library/domain/entities"
	"browser_library/domain/interfaces"
	"browser_library/infrastructure/browser/browsertest"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleLifecycle(t *testing.T) {
	engine := browsertest.NewFakeEngine()
	var openedWith string
	h := NewHandle(func(outputDir string) (interfaces.Engine, error) {
		openedWith = outputDir
		return engine, nil
	})
	ctx := context.Background()

	assert.Equal(t, StateUninitialized, h.State())
	_, err := h.Title(ctx)
	assert.ErrorIs(t, err, entities.ErrHandleNotOpen)

	require.NoError(t, h.Open("/tmp/out"))
	assert.Equal(t, StateActive, h.State())
	assert.Equal(t, "/tmp/out", openedWith)
	assert.Equal(t, "/tmp/out", h.OutputDir())

	require.NoError(t, h.OpenBrowser(ctx, entities.BrowserOptions{Browser: "chrome"}))
	require.NoError(t, h.GoTo(ctx, "https://example.com"))
	url, err := h.URL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", url)

	require.NoError(t, h.Close())
	assert.Equal(t, StateClosed, h.State())
	assert.True(t, engine.Closed)

	_, err = h.URL(ctx)
	assert.ErrorIs(t, err, entities.ErrHandleClosed)
	assert.ErrorIs(t, h.Click(ctx, "#a", entities.ClickOptions{}), entities.ErrHandleClosed)

	// second close is a no-op
	assert.NoError(t, h.Close())
	assert.Len(t, engine.CallsTo("Close"), 1)

	assert.ErrorIs(t, h.Open("/tmp/out"), entities.ErrHandleClosed)
}

func TestHandleOpenTwice(t *testing.T) {
	h := NewHandle(browsertest.NewFakeEngine().Factory())
	require.NoError(t, h.Open(t.TempDir()))
	assert.Error(t, h.Open(t.TempDir()))
	assert.Equal(t, StateActive, h.State())
}

func TestHandleFactoryError(t *testing.T) {
	boom := errors.New("driver missing")
	h := NewHandle(func(string) (interfaces.Engine, error) { return nil, boom })

	err := h.Open(t.TempDir())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateUninitialized, h.State())
}

func TestHandleCloseBeforeOpen(t *testing.T) {
	h := NewHandle(browsertest.NewFakeEngine().Factory())
	assert.NoError(t, h.Close())
	assert.Equal(t, StateClosed, h.State())
	assert.ErrorIs(t, h.GoBack(context.Background()), entities.ErrHandleClosed)
}

func TestHandleCancelledContext(t *testing.T) {
	engine := browsertest.NewFakeEngine()
	h := NewHandle(engine.Factory())
	require.NoError(t, h.Open(t.TempDir()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.GoTo(ctx, "https://example.com"), context.Canceled)
	assert.Empty(t, engine.CallsTo("GoTo"))
}

func TestHandleConcurrentCalls(t *testing.T) {
	engine := browsertest.NewFakeEngine()
	h := NewHandle(engine.Factory())
	require.NoError(t, h.Open(t.TempDir()))
	ctx := context.Background()
	require.NoError(t, h.OpenBrowser(ctx, entities.BrowserOptions{}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = h.Title(ctx)
		}()
	}
	wg.Wait()
	assert.Len(t, engine.CallsTo("Title"), 20)
}

func TestSeleniumLocator(t *testing.T) {
	for _, tc := range []struct {
		in, by, value string
	}{
		{"#login", "css selector", "#login"},
		{"css=div.item", "css selector", "div.item"},
		{"xpath=//a[@id='x']", "xpath", "//a[@id='x']"},
		{"//button", "xpath", "//button"},
	} {
		by, value := seleniumLocator(tc.in)
		assert.Equal(t, tc.by, by, tc.in)
		assert.Equal(t, tc.value, value, tc.in)
	}
}
