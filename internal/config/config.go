package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL         = "http://127.0.0.1:7433"
	DefaultDBFileName     = ".memoreal.db"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultLocationPolicy = "ignore"
	DefaultLedgerMode     = "local"
	DefaultLedgerTimeout  = 10 * time.Second

	configFileName = ".memoreal.toml"

	configDirEnvKey          = "MEMOREAL_CONFIG_DIR"
	trustProjectConfigEnvKey = "MEMOREAL_TRUST_PROJECT_CONFIG"
	apiURLEnvKey             = "MEMOREAL_API_URL"
	dbPathEnvKey             = "MEMOREAL_DB"
	locationPolicyEnvKey     = "MEMOREAL_LOCATION_POLICY"
	ledgerURLEnvKey          = "MEMOREAL_LEDGER_URL"
	ledgerModeEnvKey         = "MEMOREAL_LEDGER_MODE"

	snapCommonConfigRelativePath = "snap/memoreal/common/.memoreal.toml"
)

// CapsuleConfig controls capsule access rules.
type CapsuleConfig struct {
	LocationPolicy string `toml:"location_policy"`
}

// LedgerConfig selects the token ledger used for minting.
type LedgerConfig struct {
	Mode    string `toml:"mode"`
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

// Config defines runtime configuration for memoreal.
type Config struct {
	APIURL                   string        `toml:"api_url"`
	DBPath                   string        `toml:"db_path"`
	LogLevel                 string        `toml:"log_level"`
	LogFormat                string        `toml:"log_format"`
	MetricsAddr              string        `toml:"metrics_addr"`
	Capsules                 CapsuleConfig `toml:"capsules"`
	Ledger                   LedgerConfig  `toml:"ledger"`
	TrustedProjectConfigPath string        `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		DBPath:   "",
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Capsules: CapsuleConfig{
			LocationPolicy: DefaultLocationPolicy,
		},
		Ledger: LedgerConfig{
			Mode:    DefaultLedgerMode,
			Timeout: DefaultLedgerTimeout.String(),
		},
	}
}

// Env returns the environment overrides that reproduce c in a child process.
// Keys with empty values are omitted.
func (c *Config) Env() []string {
	pairs := [][2]string{
		{apiURLEnvKey, c.APIURL},
		{dbPathEnvKey, c.DBPath},
		{locationPolicyEnvKey, c.Capsules.LocationPolicy},
		{ledgerModeEnvKey, c.Ledger.Mode},
		{ledgerURLEnvKey, c.Ledger.URL},
	}
	env := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if value := strings.TrimSpace(pair[1]); value != "" {
			env = append(env, pair[0]+"="+value)
		}
	}
	return env
}

// LedgerTimeout returns the remote ledger timeout, falling back to the default.
func (c *Config) LedgerTimeout() time.Duration {
	if parsed, ok := parseDuration(c.Ledger.Timeout); ok {
		return parsed
	}
	return DefaultLedgerTimeout
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"api_url",
	"db_path",
	"log_level",
	"log_format",
	"metrics_addr",
	"capsules.location_policy",
	"ledger.mode",
	"ledger.url",
	"ledger.timeout",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "metrics_addr":
		return c.MetricsAddr, nil
	case "capsules.location_policy":
		return c.Capsules.LocationPolicy, nil
	case "ledger.mode":
		return c.Ledger.Mode, nil
	case "ledger.url":
		return c.Ledger.URL, nil
	case "ledger.timeout":
		return c.Ledger.Timeout, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	homePath := filepath.Join(home, configFileName)
	if info, statErr := os.Stat(homePath); statErr == nil && !info.IsDir() {
		return homePath, nil
	} else if statErr != nil && !os.IsNotExist(statErr) {
		return "", statErr
	}

	snapPath := filepath.Join(home, snapCommonConfigRelativePath)
	if info, statErr := os.Stat(snapPath); statErr == nil && !info.IsDir() {
		return snapPath, nil
	} else if statErr != nil && !os.IsNotExist(statErr) {
		return "", statErr
	}

	return homePath, nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			homePath := filepath.Join(home, configFileName)
			homeLoaded, loadErr := loadFileIfExists(homePath, &cfg)
			if loadErr != nil {
				return nil, loadErr
			}
			if !homeLoaded {
				snapPath := filepath.Join(home, snapCommonConfigRelativePath)
				if err := loadFile(snapPath, &cfg); err != nil {
					return nil, err
				}
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}

	if apiURL := os.Getenv(apiURLEnvKey); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv(dbPathEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if policy := strings.TrimSpace(os.Getenv(locationPolicyEnvKey)); policy != "" {
		cfg.Capsules.LocationPolicy = policy
	}
	if ledgerURL := strings.TrimSpace(os.Getenv(ledgerURLEnvKey)); ledgerURL != "" {
		cfg.Ledger.URL = ledgerURL
	}
	if ledgerMode := strings.TrimSpace(os.Getenv(ledgerModeEnvKey)); ledgerMode != "" {
		cfg.Ledger.Mode = ledgerMode
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "log_format":
		normalized := strings.ToLower(value)
		if normalized != "text" && normalized != "json" {
			return nil, fmt.Errorf("%s must be text or json", key)
		}
		return normalized, nil
	case "capsules.location_policy":
		normalized := strings.ToLower(value)
		if normalized != "ignore" && normalized != "enforce" {
			return nil, fmt.Errorf("%s must be ignore or enforce", key)
		}
		return normalized, nil
	case "ledger.mode":
		normalized := strings.ToLower(value)
		if normalized != "local" && normalized != "remote" {
			return nil, fmt.Errorf("%s must be local or remote", key)
		}
		return normalized, nil
	case "ledger.timeout":
		if _, ok := parseDuration(value); !ok {
			return nil, fmt.Errorf("%s must be a positive duration (e.g. 10s)", key)
		}
		return value, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func parseDuration(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed, true
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second, true
	}
	return 0, false
}

func (c *Config) normalizeDefaults() {
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if strings.TrimSpace(c.LogFormat) == "" {
		c.LogFormat = DefaultLogFormat
	}
	if strings.TrimSpace(c.Capsules.LocationPolicy) == "" {
		c.Capsules.LocationPolicy = DefaultLocationPolicy
	}
	if strings.TrimSpace(c.Ledger.Mode) == "" {
		c.Ledger.Mode = DefaultLedgerMode
	}
	if _, ok := parseDuration(c.Ledger.Timeout); !ok {
		c.Ledger.Timeout = DefaultLedgerTimeout.String()
	}
}
