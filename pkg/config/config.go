package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"quillcheck/pkg/chains"
	"quillcheck/pkg/device"
)

const ConfigFileName = ".quillcheck.json"

// Environment overrides, applied after the file is read.
const (
	EnvReportAPIURL = "QUILLCHECK_REPORT_API_URL"
	EnvLogLevel     = "QUILLCHECK_LOG_LEVEL"
	EnvLogFile      = "QUILLCHECK_LOG_FILE"
)

// ChainConfig holds per-chain settings for a registered symbol.
type ChainConfig struct {
	Symbol      string   `json:"symbol"`
	RPCURLs     []string `json:"rpc_urls,omitempty"`
	ExplorerURL string   `json:"explorer_url,omitempty"`
}

// Config holds application-wide settings.
type Config struct {
	ReportAPIURL          string        `json:"report_api_url"`
	Chains                []ChainConfig `json:"chains,omitempty"`
	CompactThresholdPx    int           `json:"compact_threshold_px"`
	CellWidthPx           int           `json:"cell_width_px"`
	StrictAddressFormat   bool          `json:"strict_address_format"`
	ResetOnBack           bool          `json:"reset_on_back"`
	DevMode               bool          `json:"dev_mode"`
	LogLevel              string        `json:"log_level"`
	LogFile               string        `json:"log_file,omitempty"`
	RequestTimeoutSeconds int           `json:"request_timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CompactThresholdPx:    device.DefaultThresholdPx,
		CellWidthPx:           device.DefaultCellWidthPx,
		LogLevel:              "info",
		RequestTimeoutSeconds: 30,
	}
}

var defaultExplorers = map[string]string{
	"ETH":  "https://etherscan.io",
	"BSC":  "https://bscscan.com",
	"POL":  "https://polygonscan.com",
	"Base": "https://basescan.org",
	"SOL":  "https://solscan.io",
}

// Starter is the config written by --init: one entry per registered chain.
func Starter(reg *chains.Registry) Config {
	cfg := Default()
	for _, sym := range reg.Symbols() {
		cfg.Chains = append(cfg.Chains, ChainConfig{Symbol: sym, ExplorerURL: defaultExplorers[sym]})
	}
	return cfg
}

// RequestTimeout is the report fetch timeout as a duration.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// RPCURLsByChainID maps registered chain ids to their configured RPC URLs.
func (c Config) RPCURLsByChainID(reg *chains.Registry) map[int64][]string {
	out := make(map[int64][]string)
	for _, ch := range c.Chains {
		rule, err := reg.RuleFor(ch.Symbol)
		if err != nil || rule.Native || len(ch.RPCURLs) == 0 {
			continue
		}
		out[rule.ChainID] = append(out[rule.ChainID], ch.RPCURLs...)
	}
	return out
}

// ChainFor returns the configured entry for symbol, if any.
func (c Config) ChainFor(symbol string) (ChainConfig, bool) {
	for _, ch := range c.Chains {
		if ch.Symbol == symbol {
			return ch, true
		}
	}
	return ChainConfig{}, false
}

// Validate checks the configuration against the registry.
func (c Config) Validate(reg *chains.Registry) []error {
	var errs []error
	seen := make(map[string]bool)
	for i, ch := range c.Chains {
		if strings.TrimSpace(ch.Symbol) == "" {
			errs = append(errs, fmt.Errorf("chain at index %d has no symbol", i))
			continue
		}
		if _, err := reg.RuleFor(ch.Symbol); err != nil {
			errs = append(errs, fmt.Errorf("chain at index %d: %w", i, err))
		}
		if seen[ch.Symbol] {
			errs = append(errs, fmt.Errorf("chain %s is configured twice", ch.Symbol))
		}
		seen[ch.Symbol] = true
	}
	if c.CompactThresholdPx < 0 {
		errs = append(errs, fmt.Errorf("compact_threshold_px must not be negative"))
	}
	if c.CellWidthPx < 0 {
		errs = append(errs, fmt.Errorf("cell_width_px must not be negative"))
	}
	return errs
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

// LoadConfigFromFile reads path; a missing file yields the defaults.
func LoadConfigFromFile(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}

// LoadConfig decodes a config, filling unset fields with defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := Default()
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.CompactThresholdPx == 0 {
		cfg.CompactThresholdPx = device.DefaultThresholdPx
	}
	if cfg.CellWidthPx == 0 {
		cfg.CellWidthPx = device.DefaultCellWidthPx
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the process environment.
func ApplyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv(EnvReportAPIURL)); v != "" {
		cfg.ReportAPIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.LogFile = v
	}
	return cfg
}

// SaveConfig writes cfg to path, keeping a timestamped backup of the old file.
func SaveConfig(cfg Config, reg *chains.Registry, path string) error {
	if errs := cfg.Validate(reg); len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errs[0])
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if len(data) == 0 {
		return fmt.Errorf("validation failed: encoded configuration is empty")
	}

	// Create a backup of the existing file
	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405.000"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to write backup config: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// RestoreLastBackup copies the newest backup over configPath and returns its name.
func RestoreLastBackup(configPath string) (string, error) {
	matches, err := filepath.Glob(configPath + ".*.bak")
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no backup files found")
	}
	sort.Strings(matches)
	lastBackup := matches[len(matches)-1]

	data, err := os.ReadFile(lastBackup)
	if err != nil {
		return "", err
	}
	return lastBackup, os.WriteFile(configPath, data, 0644)
}
