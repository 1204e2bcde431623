package terminal

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"browser_library/application/library"
	"browser_library/domain/entities"
	"browser_library/infrastructure/browser"
	"browser_library/infrastructure/browser/browsertest"
	"browser_library/infrastructure/host"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCells(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"Get Title", []string{"Get Title"}},
		{"Go To    https://example.com", []string{"Go To", "https://example.com"}},
		{"Input Text | #user | alice smith", []string{"Input Text", "#user", "alice smith"}},
		{"Press Keys\t#q\tEnter", []string{"Press Keys", "#q", "Enter"}},
		{"  Click  #btn  clickCount=2  ", []string{"Click", "#btn", "clickCount=2"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitCells(tt.line), tt.line)
	}
}

func TestBuildCall(t *testing.T) {
	kw := entities.Keyword{Args: []entities.Arg{
		entities.Required("selector"),
		entities.Optional("button", "left"),
		entities.Optional("clickCount", 1),
	}}

	args, kwargs := BuildCall(kw, []string{"a[href='x=y']", "clickCount=2", "other=1"})
	assert.Equal(t, []interface{}{"a[href='x=y']", "other=1"}, args)
	assert.Equal(t, map[string]interface{}{"clickCount": "2"}, kwargs)
}

func TestConsoleSession(t *testing.T) {
	logger, _ := test.NewNullLogger()
	engine := browsertest.NewFakeEngine()
	engine.PageTitle = "Example Domain"
	vars := host.NewVariables(t.TempDir())

	lib, err := library.New(library.Options{
		Handle: browser.NewHandle(engine.Factory()),
		Host:   vars,
		Logger: logger,
	})
	require.NoError(t, err)
	defer lib.Close()

	input := strings.Join([]string{
		"test Console Smoke",
		"Open Browser  url=https://example.com  headless=True",
		"Get Title",
		"Title Should Be  Wrong",
		"Fly To Moon",
		"quit",
		"Get Title",
	}, "\n") + "\n"

	var out bytes.Buffer
	console := NewTerminalInterface(lib, vars, logger, strings.NewReader(input), &out)
	require.NoError(t, console.Run(context.Background()))

	name, ok := vars.Get("TEST NAME")
	require.True(t, ok)
	assert.Equal(t, "Console Smoke", name)

	assert.Equal(t, entities.BrowserOptions{Browser: "chrome", Headless: true}, engine.Options)
	assert.Equal(t, "https://example.com", engine.PageURL)

	output := out.String()
	assert.Contains(t, output, "PASS: Example Domain")
	assert.Contains(t, output, "FAIL [assertion]: Title 'Example Domain' should have been 'Wrong'")
	assert.Contains(t, output, "FAIL [unknown_keyword]")
	assert.Len(t, engine.CallsTo("Title"), 2, "lines after quit are not run")

	shots := engine.CallsTo("Screenshot")
	require.Len(t, shots, 1)
	assert.Contains(t, shots[0].Args[0], "Console_Smoke_FAILURE_SCREENSHOT")
}

func TestConsoleStopsAtEOF(t *testing.T) {
	logger, _ := test.NewNullLogger()
	lib, err := library.New(library.Options{
		Handle: browser.NewHandle(browsertest.NewFakeEngine().Factory()),
		Host:   host.NewVariables(t.TempDir()),
		Logger: logger,
	})
	require.NoError(t, err)
	defer lib.Close()

	var out bytes.Buffer
	console := NewTerminalInterface(lib, host.NewVariables(""), logger, strings.NewReader("keywords"), &out)
	assert.NoError(t, console.Run(context.Background()))
	assert.Contains(t, out.String(), "Control    Take Page Screenshot  path=None")
}

func newConsoleLibrary(t *testing.T, engine *browsertest.FakeEngine, vars *host.Variables) *library.Library {
	t.Helper()
	logger, _ := test.NewNullLogger()
	lib, err := library.New(library.Options{
		Handle: browser.NewHandle(engine.Factory()),
		Host:   vars,
		Logger: logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func TestConsoleStopsOnCancelledContext(t *testing.T) {
	logger, _ := test.NewNullLogger()
	vars := host.NewVariables(t.TempDir())
	lib := newConsoleLibrary(t, browsertest.NewFakeEngine(), vars)

	in, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })

	var out bytes.Buffer
	console := NewTerminalInterface(lib, vars, logger, in, &out)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- console.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("console kept waiting for input after the context was cancelled")
	}
	assert.Contains(t, out.String(), "До свидания!")
}

func TestConsoleDefaultTestName(t *testing.T) {
	logger, _ := test.NewNullLogger()
	engine := browsertest.NewFakeEngine()
	vars := host.NewVariables(t.TempDir())
	lib := newConsoleLibrary(t, engine, vars)

	input := "Open Browser\nTitle Should Be  Wrong\n"
	var out bytes.Buffer
	console := NewTerminalInterface(lib, vars, logger, strings.NewReader(input), &out)
	require.NoError(t, console.Run(context.Background()))

	name, err := vars.CurrentTestName()
	require.NoError(t, err)
	assert.Equal(t, "Console", name)

	shots := engine.CallsTo("Screenshot")
	require.Len(t, shots, 1)
	assert.Contains(t, shots[0].Args[0], "Console_FAILURE_SCREENSHOT")
}
