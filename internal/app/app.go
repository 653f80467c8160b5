// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/elicense/internal/config"
	"github.com/law-makers/elicense/internal/engine/postback"
	"github.com/law-makers/elicense/internal/lookup"
	"github.com/law-makers/elicense/internal/ratelimit"
	"github.com/law-makers/elicense/internal/utils/output"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per invocation by the root command.
// Use Close() to release idle connections on shutdown.
type Application struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	HTTPClient *http.Client
	Client     *postback.Client
	Debug      *output.DebugDir
	Pacer      *ratelimit.Pacer
	Lookup     *lookup.Driver
	startTime  time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Initializes the HTTP client with timeout and optional proxy
//   - Creates the postback client on top of resty
//   - Creates the page pacer and the lookup driver
//
// Status lines of the lookup are written to out.
func New(ctx context.Context, cfg *config.Config, out io.Writer) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := setupLogging(cfg)

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	httpClient := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: transport,
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Bool("proxy", cfg.Proxy != "").
		Msg("HTTP client initialized")

	debug := output.NewDebugDir(cfg.OutputDir)
	logger.Debug().Str("dir", debug.Dir()).Msg("Debug artifacts directory")

	client, err := postback.New(resty.NewWithClient(httpClient), postback.Options{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
	}, debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create postback client: %w", err)
	}

	pacer := ratelimit.NewPacer(cfg.PageDelay)
	logger.Debug().Dur("page_delay", cfg.PageDelay).Msg("Pacer initialized")

	var progress io.Writer
	if !cfg.Quiet && !cfg.JSONLog && isatty.IsTerminal(os.Stderr.Fd()) {
		progress = os.Stderr
	}

	driver := lookup.New(client, pacer, debug, out, lookup.Options{
		CookiesPath: cfg.CookiesPath,
		OutputPath:  cfg.OutputPath(),
		Progress:    progress,
	})

	app := &Application{
		Config:     cfg,
		Logger:     &logger,
		HTTPClient: httpClient,
		Client:     client,
		Debug:      debug,
		Pacer:      pacer,
		Lookup:     driver,
		startTime:  time.Now(),
	}

	logger.Info().Str("base_url", cfg.BaseURL).Msg("Application initialized successfully")
	return app, nil
}

func setupLogging(cfg *config.Config) zerolog.Logger {
	var logLevel zerolog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		// "info" and unset: info logs stay hidden, warnings about empty pages
		// and header drift are shown
		logLevel = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	log.Logger = zerolog.New(logWriter).With().Timestamp().Logger()

	log.Logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	return log.Logger
}

// Close gracefully shuts down the application and all its resources.
func (a *Application) Close(ctx context.Context) error {
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
