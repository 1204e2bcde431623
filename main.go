package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"browser_library/application/library"
	"browser_library/domain/interfaces"
	"browser_library/infrastructure/browser"
	"browser_library/infrastructure/config"
	"browser_library/infrastructure/host"
	"browser_library/infrastructure/security"
	"browser_library/infrastructure/storage"
	"browser_library/presentation/remote"
	"browser_library/presentation/terminal"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(os.Stderr, cfg.Log)

	if err := run(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func engineFactory(cfg config.Config, logger *logrus.Logger) interfaces.EngineFactory {
	opts := browser.Options{
		Timeout:        cfg.Browser.Timeout,
		InstallDrivers: cfg.Browser.InstallDrivers,
		DriverPath:     cfg.Browser.DriverPath,
		ChromeBinary:   cfg.Browser.ChromeBinary,
		DriverPort:     cfg.Browser.DriverPort,
	}
	if cfg.Browser.Engine == config.EngineSelenium {
		return browser.SeleniumFactory(opts, logger)
	}
	return browser.PlaywrightFactory(opts, logger)
}

func run(cfg config.Config, logger *logrus.Logger) (err error) {
	vars := host.NewVariables(cfg.OutputDir)

	lib, err := library.New(library.Options{
		Handle:   browser.NewHandle(engineFactory(cfg, logger)),
		Host:     vars,
		Guard:    security.NewURLPolicy(cfg.Security.AllowedSchemes, cfg.Security.BlockedHosts, logger),
		Storage:  storage.NewBrowserState,
		Headless: cfg.Browser.Headless,
		Timeout:  cfg.Browser.Timeout,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize library: %w", err)
	}
	defer func() {
		err = multierr.Append(err, lib.Close())
	}()

	if cfg.Mode == config.ModeRemote {
		return remote.NewServer(cfg.ListenAddr, lib, vars, logger).Run()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return terminal.NewTerminalInterface(lib, vars, logger, os.Stdin, os.Stdout).Run(ctx)
}
