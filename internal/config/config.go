package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/martinsuchenak/merakilife/internal/eol"
	"github.com/martinsuchenak/merakilife/internal/meraki"
	"github.com/martinsuchenak/merakilife/internal/report"
	"github.com/paularlott/cli"
)

// Config holds the application configuration
type Config struct {
	APIKey       string
	BaseURL      string
	PerPage      int
	MaxRetries   int
	Timeout      time.Duration
	CatalogURL   string
	CatalogFile  string
	OutputDir    string
	OutputPrefix string
	LogoPath     string
	Concurrency  int
	ListenAddr   string
	APIAuthToken string
	MCPAuthToken string
	Schedule     string
}

const (
	DefaultOutputPrefix = "Lifecycle Report"
	DefaultListenAddr   = ":8080"
	DefaultSchedule     = "0 6 * * 1"
	DefaultLogo         = "cisco-meraki-logo.png"
)

// Load loads configuration with the following priority (highest to lowest):
// 1. Command-line parameters (passed as opts)
// 2. Environment variables (including those loaded from .env)
// 3. Default values
func Load(opts *Config) *Config {
	if opts == nil {
		opts = &Config{}
	}

	cfg := &Config{
		APIKey:       coalesce(opts.APIKey, os.Getenv("MERAKI_DASHBOARD_API_KEY")),
		BaseURL:      coalesce(opts.BaseURL, os.Getenv("MERAKI_BASE_URL"), meraki.DefaultBaseURL),
		CatalogURL:   coalesce(opts.CatalogURL, os.Getenv("MERAKILIFE_CATALOG_URL"), eol.DefaultURL),
		CatalogFile:  coalesce(opts.CatalogFile, os.Getenv("MERAKILIFE_CATALOG_FILE")),
		OutputDir:    coalesce(opts.OutputDir, os.Getenv("MERAKILIFE_OUTPUT_DIR"), "."),
		OutputPrefix: coalesce(opts.OutputPrefix, os.Getenv("MERAKILIFE_OUTPUT_PREFIX"), DefaultOutputPrefix),
		LogoPath:     coalesce(opts.LogoPath, os.Getenv("MERAKILIFE_LOGO"), findLogo()),
		ListenAddr:   coalesce(opts.ListenAddr, os.Getenv("MERAKILIFE_LISTEN_ADDR"), DefaultListenAddr),
		APIAuthToken: coalesce(opts.APIAuthToken, os.Getenv("MERAKILIFE_API_TOKEN")),
		MCPAuthToken: coalesce(opts.MCPAuthToken, os.Getenv("MERAKILIFE_MCP_TOKEN")),
		Schedule:     coalesce(opts.Schedule, os.Getenv("MERAKILIFE_SCHEDULE"), DefaultSchedule),

		PerPage:     coalesceInt(opts.PerPage, envInt("MERAKILIFE_PER_PAGE"), meraki.DefaultPerPage),
		MaxRetries:  retries(opts.MaxRetries, "MERAKILIFE_MAX_RETRIES"),
		Concurrency: coalesceInt(opts.Concurrency, envInt("MERAKILIFE_CONCURRENCY"), report.DefaultConcurrency),
		Timeout:     time.Duration(coalesceInt(int(opts.Timeout/time.Second), envInt("MERAKILIFE_TIMEOUT"), int(meraki.DefaultTimeout/time.Second))) * time.Second,
	}

	if cfg.PerPage > meraki.MaxPerPage {
		cfg.PerPage = meraki.MaxPerPage
	}

	return cfg
}

// FromCommand loads configuration with the flags in GetFlags as overrides
func FromCommand(cmd *cli.Command) *Config {
	return Load(Options(cmd))
}

// Options reads the flags in GetFlags without applying env or defaults.
// Commands with extra flags set more fields before calling Load.
func Options(cmd *cli.Command) *Config {
	return &Config{
		APIKey:      cmd.GetString("api-key"),
		BaseURL:     cmd.GetString("base-url"),
		CatalogURL:  cmd.GetString("catalog-url"),
		CatalogFile: cmd.GetString("catalog-file"),
		Concurrency: cmd.GetInt("concurrency"),
		PerPage:     cmd.GetInt("per-page"),
		MaxRetries:  cmd.GetInt("max-retries"),
		Timeout:     time.Duration(cmd.GetInt("timeout")) * time.Second,
	}
}

// GetFlags returns the flags shared by every command that talks to Meraki.
// Unset flags fall through to the environment, then to defaults.
func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "Meraki Dashboard API key (env MERAKI_DASHBOARD_API_KEY)",
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "Meraki Dashboard API base URL (env MERAKI_BASE_URL)",
		},
		&cli.StringFlag{
			Name:  "catalog-url",
			Usage: "EoL catalog page URL (env MERAKILIFE_CATALOG_URL)",
		},
		&cli.StringFlag{
			Name:  "catalog-file",
			Usage: "Read the EoL catalog from a JSON file instead of the web (env MERAKILIFE_CATALOG_FILE)",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Organizations fetched in parallel (env MERAKILIFE_CONCURRENCY)",
		},
		&cli.IntFlag{
			Name:  "per-page",
			Usage: "Inventory page size, at most 1000 (env MERAKILIFE_PER_PAGE)",
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Retries for rate limited requests, -1 disables (env MERAKILIFE_MAX_RETRIES, 0 disables)",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "HTTP timeout in seconds (env MERAKILIFE_TIMEOUT)",
		},
	}
}

// MerakiConfig returns the Dashboard client configuration
func (c *Config) MerakiConfig(version string) meraki.Config {
	return meraki.Config{
		BaseURL:    c.BaseURL,
		APIKey:     c.APIKey,
		PerPage:    c.PerPage,
		MaxRetries: c.MaxRetries,
		Timeout:    c.Timeout,
		UserAgent:  "merakilife/" + version,
	}
}

// CatalogSource returns the file source when a catalog file is set, the
// web scraper otherwise.
func (c *Config) CatalogSource(version string) eol.Source {
	if c.CatalogFile != "" {
		return &eol.FileSource{Path: c.CatalogFile}
	}
	s := eol.NewScraper(c.CatalogURL)
	s.UserAgent = "merakilife/" + version
	s.HTTPClient.Timeout = c.Timeout
	return s
}

// Validate checks that the configuration can reach Meraki
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("no Meraki API key: set MERAKI_DASHBOARD_API_KEY or pass --api-key")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}
	return nil
}

// IsMCPEnabled checks if MCP authentication is configured
func (c *Config) IsMCPEnabled() bool {
	return c.MCPAuthToken != ""
}

// IsAPIAuthEnabled checks if API authentication is configured
func (c *Config) IsAPIAuthEnabled() bool {
	return c.APIAuthToken != ""
}

// findLogo looks for the logo in the working directory, then in images/
func findLogo() string {
	for _, candidate := range []string{DefaultLogo, "images/" + DefaultLogo} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// coalesce returns the first non-empty string value
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// coalesceInt returns the first positive value
func coalesceInt(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// retries keeps a negative option, which disables retrying. An explicit 0 in
// the environment disables retrying too; the flag cannot tell 0 from unset.
func retries(opt int, key string) int {
	if opt != 0 {
		return opt
	}
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		if v == 0 {
			return -1
		}
		return v
	}
	return meraki.DefaultMaxRetries
}

func envInt(key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return 0
	}
	return v
}
