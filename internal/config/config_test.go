package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xrpl-trustcheck/internal/apperr"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "trustcheck-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.LogLevel != "debug" {
		t.Fatalf("unexpected App.LogLevel: %s", cfg.App.LogLevel)
	}
	if cfg.Ledger.WebsocketURL != "wss://s.altnet.rippletest.net:51233" {
		t.Fatalf("unexpected Ledger.WebsocketURL: %s", cfg.Ledger.WebsocketURL)
	}
	if cfg.Ledger.RequestTimeoutMs != 5000 {
		t.Fatalf("unexpected request timeout: %d", cfg.Ledger.RequestTimeoutMs)
	}
	if cfg.Ledger.HandshakeTimeoutMs != defaultHandshakeTimeoutMs {
		t.Fatalf("expected default handshake timeout, got %d", cfg.Ledger.HandshakeTimeoutMs)
	}
	if cfg.Token.Issuer != "xrpl.rTestIssuer123" || cfg.Token.Currency != "USD" {
		t.Fatalf("unexpected token: %+v", cfg.Token)
	}
	if cfg.Files.InputCSV != "in.csv" || cfg.Files.OutputCSV != "out.csv" {
		t.Fatalf("unexpected files: %+v", cfg.Files)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := Default()
	cfg.Token.Currency = "SOLO"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Token.Currency != "SOLO" {
		t.Fatalf("expected SOLO currency, got %s", loaded.Token.Currency)
	}
	if err := Save(path, nil); err == nil {
		t.Fatalf("expected error saving nil config")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvWebsocketURL: "wss://example",
		EnvIssuer:       "rIssuer",
		EnvCurrency:     "EUR",
		EnvOutputCSV:    "result.csv",
		EnvRequestMs:    "250",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Ledger.WebsocketURL != "wss://example" || cfg.Token.Issuer != "rIssuer" || cfg.Token.Currency != "EUR" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Files.InputCSV != defaultInputCSV {
		t.Fatalf("expected default input csv, got %s", cfg.Files.InputCSV)
	}
	if cfg.Files.OutputCSV != "result.csv" {
		t.Fatalf("expected result.csv, got %s", cfg.Files.OutputCSV)
	}
	if cfg.Ledger.RequestTimeout().Milliseconds() != 250 {
		t.Fatalf("expected 250ms request timeout, got %s", cfg.Ledger.RequestTimeout())
	}
}

func TestValidateReportsEveryMissingSetting(t *testing.T) {
	cfg := Default()
	cfg.Token.Currency = "USD"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !errors.Is(err, ErrMissingSetting) {
		t.Fatalf("expected ErrMissingSetting, got %v", err)
	}
	if !apperr.IsKind(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration kind, got %v", err)
	}
	for _, key := range []string{EnvWebsocketURL, EnvIssuer} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %q", key, err.Error())
		}
	}
	if strings.Contains(err.Error(), EnvCurrency) {
		t.Fatalf("currency is set and must not be reported: %q", err.Error())
	}
}

func TestValidateOK(t *testing.T) {
	cfg := Default()
	cfg.Ledger.WebsocketURL = "wss://example"
	cfg.Token = Token{Issuer: "rIssuer", Currency: "USD"}
	cfg.Files.OutputCSV = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if cfg.Files.OutputCSV != "" {
		t.Fatalf("Validate must not modify the config, got output %q", cfg.Files.OutputCSV)
	}
}

func TestFillDefaultsRestoresBlankPaths(t *testing.T) {
	cfg := Default()
	cfg.Files.InputCSV = ""
	cfg.Files.OutputCSV = ""
	cfg.ApplyEnv(func(string) string { return "" })
	if cfg.Files.InputCSV != defaultInputCSV || cfg.Files.OutputCSV != defaultOutputCSV {
		t.Fatalf("expected defaults after ApplyEnv, got %+v", cfg.Files)
	}

	cfg.Files.OutputCSV = ""
	cfg.FillDefaults()
	if cfg.Files.OutputCSV != defaultOutputCSV {
		t.Fatalf("expected output default restored, got %s", cfg.Files.OutputCSV)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TRUSTCHECK_DOTENV_TEST=loaded\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("TRUSTCHECK_DOTENV_TEST") })

	if err := LoadDotEnv(path, filepath.Join(dir, "absent.env")); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	if got := os.Getenv("TRUSTCHECK_DOTENV_TEST"); got != "loaded" {
		t.Fatalf("expected loaded, got %q", got)
	}
}
