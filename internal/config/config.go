package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool
	Quiet    bool

	// HTTP
	HTTPTimeout time.Duration
	UserAgent   string
	Proxy       string
	BaseURL     string

	// Lookup
	CookiesPath string
	PageDelay   time.Duration

	// Output
	OutputDir  string
	OutputFile string
}

// OutputPath returns the CSV destination inside OutputDir
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputFile)
}

// Default returns a Config populated with defaults only
func Default() *Config {
	return &Config{
		LogLevel:    DefaultLogLevel,
		JSONLog:     DefaultJSONLog,
		HTTPTimeout: DefaultHTTPTimeout,
		UserAgent:   DefaultUserAgent,
		BaseURL:     DefaultBaseURL,
		PageDelay:   DefaultPageDelay,
		OutputDir:   DefaultOutputDir,
		OutputFile:  DefaultOutputFile,
	}
}

// Load builds a Config by combining defaults, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	if v := os.Getenv("ELICENSE_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("ELICENSE_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("ELICENSE_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("ELICENSE_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	if cmd != nil {
		if f := cmd.Flags().Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if f := cmd.Flags().Lookup("proxy"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Proxy = s
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
			d, err := time.ParseDuration(f.Value.String())
			if err != nil {
				return nil, fmt.Errorf("invalid --timeout: %w", err)
			}
			cfg.HTTPTimeout = d
		}
		if f := cmd.Flags().Lookup("cookies"); f != nil {
			cfg.CookiesPath = f.Value.String()
		}
		if f := cmd.Flags().Lookup("json"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("quiet"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "error"
				cfg.Quiet = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
