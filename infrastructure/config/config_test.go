package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEnv = []string{
	envConfigFile, envMode, envListenAddr, envOutputDir, envLogLevel, envLogJSON,
	envEngine, envHeadless, envTimeout, envInstallDrivers, envDriverPath, envChromeBinary,
	envBlockedHosts,
}

// clearEnv - blanks every variable Load reads
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnv {
		t.Setenv(key, "")
	}
	// an empty list variable means "allow everything", so unset it instead
	if v, ok := os.LookupEnv(envAllowedSchemes); ok {
		require.NoError(t, os.Unsetenv(envAllowedSchemes))
		t.Cleanup(func() { os.Setenv(envAllowedSchemes, v) })
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ModeConsole, cfg.Mode)
	assert.Equal(t, EnginePlaywright, cfg.Browser.Engine)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 10*time.Second, cfg.Browser.Timeout)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(envMode, "REMOTE")
	t.Setenv(envListenAddr, ":9090")
	t.Setenv(envOutputDir, "/tmp/results")
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envLogJSON, "true")
	t.Setenv(envEngine, "selenium")
	t.Setenv(envHeadless, "false")
	t.Setenv(envTimeout, "2.5")
	t.Setenv(envDriverPath, "/usr/bin/chromedriver")
	t.Setenv(envBlockedHosts, "ads.example, tracker.")

	cfg, err := load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, ModeRemote, cfg.Mode)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/results", cfg.OutputDir)
	assert.Equal(t, LogConfig{Level: "debug", JSON: true}, cfg.Log)
	assert.Equal(t, EngineSelenium, cfg.Browser.Engine)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 2500*time.Millisecond, cfg.Browser.Timeout)
	assert.Equal(t, "/usr/bin/chromedriver", cfg.Browser.DriverPath)
	assert.Equal(t, []string{"ads.example", "tracker."}, cfg.Security.BlockedHosts)
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "browser_library.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: remote
output_dir: /var/results
browser:
  engine: selenium
  timeout: 30s
  driver_port: 9600
security:
  blocked_hosts: [evil.test]
`), 0644))
	t.Setenv(envConfigFile, path)
	t.Setenv(envOutputDir, "/override")

	cfg, err := load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, ModeRemote, cfg.Mode)
	assert.Equal(t, "/override", cfg.OutputDir)
	assert.Equal(t, EngineSelenium, cfg.Browser.Engine)
	assert.Equal(t, 30*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, 9600, cfg.Browser.DriverPort)
	assert.True(t, cfg.Browser.Headless, "defaults survive a partial file")
	assert.Equal(t, []string{"evil.test"}, cfg.Security.BlockedHosts)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv(envDriverPath))
	t.Cleanup(func() { os.Unsetenv(envDriverPath) })

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BROWSER_DRIVER_PATH=/opt/chromedriver\n"), 0644))

	cfg, err := load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "/opt/chromedriver", cfg.Browser.DriverPath)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{envMode, "batch"},
		{envEngine, "chromedp"},
		{envLogLevel, "loud"},
		{envHeadless, "maybe"},
		{envTimeout, "soon"},
		{envTimeout, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := load(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestLoadUnknownYAMLField(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("browser:\n  engnie: selenium\n"), 0644))
	t.Setenv(envConfigFile, path)

	_, err := load(missingEnvFile(t))
	assert.ErrorContains(t, err, "engnie")
}

func TestNewLoggerOutputsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogConfig{Level: "warn", JSON: true})
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("dropped")
	logger.WithField("keyword", "Go To").Warn("test message")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "Go To", entry["keyword"])
}
