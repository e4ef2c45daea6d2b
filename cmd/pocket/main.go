package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"pocketkit/internal/app"
	"pocketkit/internal/auth"
	"pocketkit/internal/browser"
	"pocketkit/internal/cli"
	"pocketkit/internal/config"
	"pocketkit/internal/logger"
	"pocketkit/internal/pocket"
	"pocketkit/internal/transport"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes one command and returns the process exit code. Deferred cleanup
// (logger flush, signal handler) has finished by the time it returns.
func run(args []string, stderr io.Writer) int {
	cmd, err := cli.Parse(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.Load(cmd.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing log level: %v\n", err)
		return 1
	}
	appLogger := logger.New(level).With("command", cmd.Name)
	defer func() { _ = appLogger.Sync() }()

	var apiTransport transport.Transport = transport.NewHTTPTransport(cfg.API.Timeout, appLogger)
	registry := prometheus.NewRegistry()
	if cfg.MetricsFile != "" {
		apiTransport = transport.Instrument(apiTransport, transport.NewMetrics(registry))
	}

	// Create Pocket API client
	pocketClient, err := pocket.NewClient(cfg.ConsumerKey, cfg.AccessToken,
		pocket.WithBaseURL(cfg.API.BaseURL),
		pocket.WithTransport(apiTransport),
	)
	if err != nil {
		appLogger.Errorf("Error creating Pocket client: %v", err)
		return 1
	}

	authenticator, err := auth.New(cfg.ConsumerKey,
		auth.WithBaseURL(cfg.API.BaseURL),
		auth.WithTransport(apiTransport),
		auth.WithOpener(browser.NewSystemOpener()),
		auth.WithLogger(appLogger),
		auth.WithPolling(cfg.Login.PollInterval, cfg.Login.PollAttempts),
		auth.WithPollTimeout(cfg.Login.PollTimeout),
		auth.WithCallbackPort(cmd.CallbackPort(cfg.Login.Port)),
		auth.WithBrowserRedirect(cfg.Login.BrowserRedirect),
	)
	if err != nil {
		appLogger.Errorf("Error creating authenticator: %v", err)
		return 1
	}

	// Initialize application
	application := app.NewApp(
		app.WithConfig(cfg, cmd.ConfigPath),
		app.WithPocketClient(pocketClient),
		app.WithAuthenticator(authenticator),
		app.WithLogger(appLogger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := cli.Run(ctx, cmd, application, cfg.Login.Mode)

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, registry); err != nil {
			appLogger.Warnf("Error writing metrics to %s: %v", cfg.MetricsFile, err)
		}
	}

	if runErr != nil {
		appLogger.Errorf("%s failed: %v", cmd.Name, runErr)
		return 1
	}
	return 0
}
