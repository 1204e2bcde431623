package library

import (
	"browser_library/domain/entities"
	"browser_library/domain/interfaces"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// ScreenshotKeyword is run through the host when an assertion fails
	ScreenshotKeyword = "take page screenshot"

	failureScreenshotSuffix = "_FAILURE_SCREENSHOT"
)

type failurePhaseKey struct{}

// FailureScreenshotPath - builds the screenshot path of a failing test
func FailureScreenshotPath(outputDir, testName string) string {
	name := strings.ReplaceAll(testName, " ", "_") + failureScreenshotSuffix
	return filepath.ToSlash(filepath.Join(outputDir, name))
}

// FailureHook takes a screenshot through the host when an assertion fails.
// Its own failures are logged and reported in the result, never returned.
type FailureHook struct {
	host   interfaces.HostContext
	runner interfaces.KeywordRunner
	logger *logrus.Logger
}

// NewFailureHook - creates failure hook
func NewFailureHook(host interfaces.HostContext, runner interfaces.KeywordRunner, logger *logrus.Logger) *FailureHook {
	return &FailureHook{
		host:   host,
		runner: runner,
		logger: logger,
	}
}

// acquire - enters the failure handling phase for ctx. ok is false when ctx
// is already inside it; the phase ends with the returned context.
func acquire(ctx context.Context) (context.Context, bool) {
	if inFailureHandling(ctx) {
		return ctx, false
	}
	return context.WithValue(ctx, failurePhaseKey{}, true), true
}

func inFailureHandling(ctx context.Context) bool {
	held, _ := ctx.Value(failurePhaseKey{}).(bool)
	return held
}

// OnAssertionFailure - runs the screenshot keyword for the current test
func (h *FailureHook) OnAssertionFailure(ctx context.Context) (result entities.HookResult) {
	result.Keyword = ScreenshotKeyword

	ctx, ok := acquire(ctx)
	if !ok {
		result.Skipped = true
		h.logger.Debug("Assertion failed while handling a failure, screenshot skipped")
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("panic: %v", r)
		}
		if result.Err != nil {
			h.logger.Errorf("Keyword '%s' could not be run on failure: %v", ScreenshotKeyword, result.Err)
		}
	}()

	path, err := h.screenshotPath()
	if err != nil {
		result.Err = err
		return result
	}
	result.Path = path

	if h.runner == nil {
		result.Err = fmt.Errorf("no keyword runner configured")
		return result
	}

	h.logger.Infof("Running keyword '%s' on failure: %s", ScreenshotKeyword, path)
	if _, err := h.runner.RunKeyword(ctx, ScreenshotKeyword, path); err != nil {
		result.Err = err
	}
	return result
}

// screenshotPath - queries the host for the output directory and test name
func (h *FailureHook) screenshotPath() (string, error) {
	outputDir, err := h.host.CurrentOutputDir()
	if err != nil {
		return "", fmt.Errorf("failed to read output directory: %w", err)
	}
	if outputDir, err = filepath.Abs(outputDir); err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	testName, err := h.host.CurrentTestName()
	if err != nil {
		return "", fmt.Errorf("failed to read test name: %w", err)
	}
	return FailureScreenshotPath(outputDir, testName), nil
}
