// Package config exposes strongly typed run configuration loaded from YAML, .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"xrpl-trustcheck/internal/apperr"
)

// App captures process-wide settings such as name, logging and metrics.
type App struct {
	Name        string `yaml:"name"`
	LogLevel    string `yaml:"log_level"`
	LogConsole  bool   `yaml:"log_console"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Token identifies the issued asset every wallet is checked against.
type Token struct {
	Issuer   string `yaml:"issuer"` // may be namespaced, e.g. "xrpl.rIssuer"
	Currency string `yaml:"currency"`
}

// Files names the input address list, the output table and the optional journal.
type Files struct {
	InputCSV    string `yaml:"input_csv"`
	OutputCSV   string `yaml:"output_csv"`
	JournalPath string `yaml:"journal_path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App    App    `yaml:"app"`
	Ledger Ledger `yaml:"ledger"`
	Token  Token  `yaml:"token"`
	Files  Files  `yaml:"files"`
}

const (
	defaultInputCSV  = "wallets.csv"
	defaultOutputCSV = "trustline_status.csv"
)

// Environment variable names understood by ApplyEnv.
const (
	EnvWebsocketURL = "XRPL_WEBSOCKET_URL"
	EnvIssuer       = "TOKEN_ISSUER"
	EnvCurrency     = "TOKEN_CURRENCY"
	EnvInputCSV     = "INPUT_CSV"
	EnvOutputCSV    = "OUTPUT_CSV"
	EnvJournalPath  = "JOURNAL_PATH"
	EnvLogLevel     = "LOG_LEVEL"
	EnvMetricsAddr  = "METRICS_ADDR"
	EnvRequestMs    = "XRPL_REQUEST_TIMEOUT_MS"
)

// ErrMissingSetting is wrapped by Validate for every absent required value.
var ErrMissingSetting = errors.New("missing required setting")

// Default returns a Config with every optional value populated.
// The websocket URL, issuer and currency have no defaults.
func Default() *Config {
	return &Config{
		App: App{
			Name:     "trustcheck",
			LogLevel: "info",
		},
		Ledger: Ledger{
			HandshakeTimeoutMs: defaultHandshakeTimeoutMs,
			PingIntervalMs:     defaultPingIntervalMs,
		},
		Files: Files{
			InputCSV:  defaultInputCSV,
			OutputCSV: defaultOutputCSV,
		},
	}
}

// Load reads a YAML file from disk on top of Default.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	cfg := Default()
	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields with any non-empty value returned by getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Ledger.WebsocketURL, EnvWebsocketURL)
	set(&c.Token.Issuer, EnvIssuer)
	set(&c.Token.Currency, EnvCurrency)
	set(&c.Files.InputCSV, EnvInputCSV)
	set(&c.Files.OutputCSV, EnvOutputCSV)
	set(&c.Files.JournalPath, EnvJournalPath)
	set(&c.App.LogLevel, EnvLogLevel)
	set(&c.App.MetricsAddr, EnvMetricsAddr)
	if v := strings.TrimSpace(getenv(EnvRequestMs)); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			c.Ledger.RequestTimeoutMs = ms
		}
	}
	c.FillDefaults()
}

// Validate checks the settings a run cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Ledger.WebsocketURL) == "" {
		missing = append(missing, EnvWebsocketURL)
	}
	if strings.TrimSpace(c.Token.Issuer) == "" {
		missing = append(missing, EnvIssuer)
	}
	if strings.TrimSpace(c.Token.Currency) == "" {
		missing = append(missing, EnvCurrency)
	}
	if len(missing) > 0 {
		return apperr.E("config.validate", apperr.KindConfiguration,
			fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", ")))
	}
	return nil
}

// FillDefaults restores the default input and output paths when they were blanked.
func (c *Config) FillDefaults() {
	if c.Files.InputCSV == "" {
		c.Files.InputCSV = defaultInputCSV
	}
	if c.Files.OutputCSV == "" {
		c.Files.OutputCSV = defaultOutputCSV
	}
}
