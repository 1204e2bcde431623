package interfaces

import "context"

// HostContext exposes the host's runtime variables
type HostContext interface {
	// CurrentOutputDir returns the host's output directory (${OUTPUTDIR})
	CurrentOutputDir() (string, error)

	// CurrentTestName returns the name of the running test (${TEST NAME})
	CurrentTestName() (string, error)
}

// KeywordRunner runs a keyword through the host
type KeywordRunner interface {
	RunKeyword(ctx context.Context, name string, args ...interface{}) (interface{}, error)
}

// KeywordRunnerFunc adapts a function to KeywordRunner
type KeywordRunnerFunc func(ctx context.Context, name string, args ...interface{}) (interface{}, error)

// RunKeyword calls f
func (f KeywordRunnerFunc) RunKeyword(ctx context.Context, name string, args ...interface{}) (interface{}, error) {
	return f(ctx, name, args...)
}
