// Package host keeps the runtime variables a test host exposes to the library.
package host

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

const (
	OutputDirVariable = "OUTPUTDIR"
	TestNameVariable  = "TEST NAME"
)

// Variables is a host variable table. Names match the host's way:
// "${TEST NAME}", "TEST NAME" and "test_name" are the same variable.
type Variables struct {
	mu               sync.RWMutex
	values           map[string]string
	defaultOutputDir string
}

// NewVariables - creates variable table falling back to defaultOutputDir
// while ${OUTPUTDIR} is unset
func NewVariables(defaultOutputDir string) *Variables {
	return &Variables{
		values:           make(map[string]string),
		defaultOutputDir: defaultOutputDir,
	}
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "${") && strings.HasSuffix(name, "}") {
		name = name[2 : len(name)-1]
	}
	name = strings.ToLower(name)
	return strings.NewReplacer(" ", "", "_", "").Replace(name)
}

// Set - sets a variable
func (v *Variables) Set(name, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[normalizeName(name)] = value
}

// SetAll - sets every variable of values
func (v *Variables) SetAll(values map[string]string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for name, value := range values {
		v.values[normalizeName(name)] = value
	}
}

// Unset - removes a variable
func (v *Variables) Unset(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.values, normalizeName(name))
}

// Get - returns a variable and whether it is set
func (v *Variables) Get(name string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	value, ok := v.values[normalizeName(name)]
	return value, ok
}

// CurrentOutputDir - returns ${OUTPUTDIR} as an absolute path
func (v *Variables) CurrentOutputDir() (string, error) {
	dir, ok := v.Get(OutputDirVariable)
	if !ok || dir == "" {
		dir = v.defaultOutputDir
	}
	if dir == "" {
		return "", fmt.Errorf("variable '${%s}' not found", OutputDirVariable)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory %s: %w", dir, err)
	}
	return abs, nil
}

func (v *Variables) CurrentTestName() (string, error) {
	name, ok := v.Get(TestNameVariable)
	if !ok {
		return "", fmt.Errorf("variable '${%s}' not found", TestNameVariable)
	}
	return name, nil
}
