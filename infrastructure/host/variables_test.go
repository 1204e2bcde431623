package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariables(t *testing.T) {
	vars := NewVariables("/default/out")

	dir, err := vars.CurrentOutputDir()
	require.NoError(t, err)
	assert.Equal(t, "/default/out", dir)

	_, err = vars.CurrentTestName()
	assert.Error(t, err)

	vars.SetAll(map[string]string{
		"${OUTPUTDIR}": "/out",
		"test_name":    "My Test",
	})

	dir, err = vars.CurrentOutputDir()
	require.NoError(t, err)
	assert.Equal(t, "/out", dir)

	name, err := vars.CurrentTestName()
	require.NoError(t, err)
	assert.Equal(t, "My Test", name)

	value, ok := vars.Get("${TEST NAME}")
	assert.True(t, ok)
	assert.Equal(t, "My Test", value)

	vars.Unset("TEST NAME")
	_, ok = vars.Get("test name")
	assert.False(t, ok)
}

func TestVariablesWithoutOutputDir(t *testing.T) {
	_, err := NewVariables("").CurrentOutputDir()
	assert.EqualError(t, err, "variable '${OUTPUTDIR}' not found")
}

func TestVariablesResolveRelativeOutputDir(t *testing.T) {
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(prev) })
	cwd, err := os.Getwd()
	require.NoError(t, err)

	vars := NewVariables("output")
	dir, err := vars.CurrentOutputDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "output"), dir)

	vars.Set(OutputDirVariable, "results/run1")
	dir, err = vars.CurrentOutputDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "results", "run1"), dir)
}
