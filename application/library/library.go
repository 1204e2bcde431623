// Package library is the keyword library the host talks to: it owns the
// engine handle, the keyword registry and the failure hook.
package library

import (
	"browser_library/application/keywords"
	"browser_library/domain/entities"
	"browser_library/domain/interfaces"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Options wires a Library
type Options struct {
	Handle  interfaces.EngineHandle
	Host    interfaces.HostContext
	Guard   interfaces.NavigationGuard
	Storage interfaces.StorageFactory
	// Runner runs the screenshot keyword on failure. Defaults to the library.
	Runner interfaces.KeywordRunner
	// Groups are registered after the built-in groups
	Groups   []interfaces.KeywordGroup
	Headless bool
	Timeout  time.Duration
	Logger   *logrus.Logger
}

// Library dispatches host keyword calls to the Validation, Control and
// Input groups
type Library struct {
	dispatcher *Dispatcher
	handle     interfaces.EngineHandle
	storage    interfaces.Storage
	outputDir  string
	logger     *logrus.Logger

	mu      sync.Mutex
	history []entities.KeywordRecord
	closed  bool
}

// New - resolves the output directory, opens the engine handle and builds
// the keyword registry
func New(opts Options) (*Library, error) {
	if opts.Handle == nil || opts.Host == nil {
		return nil, fmt.Errorf("library needs an engine handle and a host context")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	outputDir, err := opts.Host.CurrentOutputDir()
	if err == nil {
		outputDir, err = filepath.Abs(outputDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	if err := opts.Handle.Open(outputDir); err != nil {
		return nil, err
	}

	lib := &Library{
		handle:    opts.Handle,
		outputDir: outputDir,
		logger:    logger,
	}

	if opts.Storage != nil {
		if lib.storage, err = opts.Storage(outputDir); err != nil {
			return nil, multierr.Append(fmt.Errorf("failed to open storage: %w", err), opts.Handle.Close())
		}
	}

	groups := []interfaces.KeywordGroup{
		keywords.NewValidation(opts.Handle, logger),
		keywords.NewControl(opts.Handle, opts.Guard, lib.storage, keywords.ControlConfig{
			OutputDir: outputDir,
			Headless:  opts.Headless,
			Timeout:   opts.Timeout,
		}, logger),
		keywords.NewInput(opts.Handle, logger),
	}
	groups = append(groups, opts.Groups...)

	runner := opts.Runner
	if runner == nil {
		runner = interfaces.KeywordRunnerFunc(func(ctx context.Context, name string, args ...interface{}) (interface{}, error) {
			return lib.RunKeyword(ctx, name, args, nil)
		})
	}
	hook := NewFailureHook(opts.Host, runner, logger)

	if lib.dispatcher, err = NewDispatcher(groups, hook, logger); err != nil {
		return nil, multierr.Append(err, opts.Handle.Close())
	}

	logger.WithField("output_dir", outputDir).Infof("Library ready with %d keywords", len(lib.dispatcher.KeywordNames()))
	return lib, nil
}

// KeywordNames - returns keyword names in registration order
func (l *Library) KeywordNames() []string {
	return l.dispatcher.KeywordNames()
}

// Keyword - returns the descriptor of a keyword
func (l *Library) Keyword(name string) (entities.Keyword, bool) {
	return l.dispatcher.Keyword(name)
}

// OutputDir - returns the output directory the engine was opened with
func (l *Library) OutputDir() string {
	return l.outputDir
}

// RunKeyword - runs a keyword and records it in the history
func (l *Library) RunKeyword(ctx context.Context, name string, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	record := entities.KeywordRecord{
		ID:        uuid.NewString(),
		Name:      name,
		StartedAt: time.Now(),
	}
	if kw, ok := l.dispatcher.Keyword(name); ok {
		record.Name = kw.Name
	}

	result, hookResult, err := l.dispatcher.dispatch(ctx, name, args, kwargs)

	record.Duration = time.Since(record.StartedAt)
	record.Status = entities.StatusPass
	if err != nil {
		record.Status = entities.StatusFail
		record.ErrorKind = entities.ErrorKind(err)
		record.Message = err.Error()
	}
	if hookResult != nil && hookResult.Succeeded() {
		record.Screenshot = hookResult.Path
	}

	l.mu.Lock()
	l.history = append(l.history, record)
	l.mu.Unlock()

	return result, err
}

// History - returns the keywords run so far
func (l *Library) History() []entities.KeywordRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]entities.KeywordRecord(nil), l.history...)
}

// Close - writes the keyword history and closes the engine handle.
// Only the first call does anything.
func (l *Library) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	history := append([]entities.KeywordRecord(nil), l.history...)
	l.mu.Unlock()

	var closeErr error
	if l.storage != nil && len(history) > 0 {
		closeErr = l.saveHistory(history)
	}
	closeErr = multierr.Append(closeErr, l.handle.Close())

	l.logger.Info("Library closed")
	return closeErr
}

// saveHistory - appends history to the journal of earlier runs in the same
// output directory. An unreadable journal is left untouched.
func (l *Library) saveHistory(history []entities.KeywordRecord) error {
	previous, err := l.storage.LoadHistory()
	if err != nil {
		return fmt.Errorf("failed to load keyword history: %w", err)
	}

	merged := append(previous, history...)
	if err := l.storage.SaveHistory(merged); err != nil {
		return fmt.Errorf("failed to save keyword history: %w", err)
	}
	l.logger.Debugf("Saved %d keyword records (%d from earlier runs)", len(merged), len(previous))
	return nil
}
