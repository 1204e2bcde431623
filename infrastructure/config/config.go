// Package config loads library settings from .env, an optional YAML file
// and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"browser_library/infrastructure/security"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	ModeConsole = "console"
	ModeRemote  = "remote"

	EnginePlaywright = "playwright"
	EngineSelenium   = "selenium"

	defaultListenAddr = ":8270"
	defaultOutputDir  = "output"
	defaultLogLevel   = "info"
	defaultTimeout    = 10 * time.Second

	envConfigFile     = "BROWSER_LIBRARY_CONFIG"
	envMode           = "BROWSER_LIBRARY_MODE"
	envListenAddr     = "BROWSER_LIBRARY_LISTEN_ADDR"
	envOutputDir      = "BROWSER_LIBRARY_OUTPUT_DIR"
	envLogLevel       = "BROWSER_LIBRARY_LOG_LEVEL"
	envLogJSON        = "BROWSER_LIBRARY_LOG_JSON"
	envEngine         = "BROWSER_ENGINE"
	envHeadless       = "BROWSER_HEADLESS"
	envTimeout        = "BROWSER_TIMEOUT"
	envInstallDrivers = "BROWSER_INSTALL_DRIVERS"
	envDriverPath     = "BROWSER_DRIVER_PATH"
	envChromeBinary   = "CHROME_BINARY_PATH"
	envAllowedSchemes = "BROWSER_ALLOWED_SCHEMES"
	envBlockedHosts   = "BROWSER_BLOCKED_HOSTS"
)

// Config holds library configuration
type Config struct {
	Mode       string         `yaml:"mode"`
	ListenAddr string         `yaml:"listen_addr"`
	OutputDir  string         `yaml:"output_dir"`
	Log        LogConfig      `yaml:"log"`
	Browser    BrowserConfig  `yaml:"browser"`
	Security   SecurityConfig `yaml:"security"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type BrowserConfig struct {
	Engine         string        `yaml:"engine"`
	Headless       bool          `yaml:"headless"`
	Timeout        time.Duration `yaml:"timeout"`
	InstallDrivers bool          `yaml:"install_drivers"`
	DriverPath     string        `yaml:"driver_path"`
	ChromeBinary   string        `yaml:"chrome_binary"`
	DriverPort     int           `yaml:"driver_port"`
}

type SecurityConfig struct {
	AllowedSchemes []string `yaml:"allowed_schemes"`
	BlockedHosts   []string `yaml:"blocked_hosts"`
}

// Default - returns configuration used when nothing is set
func Default() Config {
	return Config{
		Mode:       ModeConsole,
		ListenAddr: defaultListenAddr,
		OutputDir:  defaultOutputDir,
		Log:        LogConfig{Level: defaultLogLevel},
		Browser: BrowserConfig{
			Engine:   EnginePlaywright,
			Headless: true,
			Timeout:  defaultTimeout,
		},
		Security: SecurityConfig{
			AllowedSchemes: append([]string(nil), security.DefaultAllowedSchemes...),
		},
	}
}

// Load - reads .env from the working directory, then the file named by
// BROWSER_LIBRARY_CONFIG, then environment variables
func Load() (Config, error) {
	return load(".env")
}

func load(envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Default()

	if path := os.Getenv(envConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile - overlays the YAML file at path
func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Mode, envMode)
	setString(&c.ListenAddr, envListenAddr)
	setString(&c.OutputDir, envOutputDir)
	setString(&c.Log.Level, envLogLevel)
	setString(&c.Browser.Engine, envEngine)
	setString(&c.Browser.DriverPath, envDriverPath)
	setString(&c.Browser.ChromeBinary, envChromeBinary)
	setList(&c.Security.AllowedSchemes, envAllowedSchemes)
	setList(&c.Security.BlockedHosts, envBlockedHosts)

	for key, target := range map[string]*bool{
		envLogJSON:        &c.Log.JSON,
		envHeadless:       &c.Browser.Headless,
		envInstallDrivers: &c.Browser.InstallDrivers,
	} {
		if err := setBool(target, key); err != nil {
			return err
		}
	}

	if v := os.Getenv(envTimeout); v != "" {
		timeout, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envTimeout, err)
		}
		c.Browser.Timeout = timeout
	}
	return nil
}

// Validate - checks enumerated settings
func (c *Config) Validate() error {
	c.Mode = strings.ToLower(c.Mode)
	if c.Mode != ModeConsole && c.Mode != ModeRemote {
		return fmt.Errorf("invalid mode %q: must be %s or %s", c.Mode, ModeConsole, ModeRemote)
	}

	c.Browser.Engine = strings.ToLower(c.Browser.Engine)
	if c.Browser.Engine != EnginePlaywright && c.Browser.Engine != EngineSelenium {
		return fmt.Errorf("invalid browser engine %q: must be %s or %s", c.Browser.Engine, EnginePlaywright, EngineSelenium)
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if c.Browser.Timeout <= 0 {
		return fmt.Errorf("browser timeout must be positive, got %s", c.Browser.Timeout)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	return nil
}

// NewLogger - creates logger writing to w
func NewLogger(w io.Writer, cfg LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return logger
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setList(target *[]string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*target = items
}

func setBool(target *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: must be true or false", key, v)
	}
	*target = b
	return nil
}

// parseTimeout - accepts Go durations ("30s") and plain seconds ("30")
func parseTimeout(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	seconds, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a duration", v)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
