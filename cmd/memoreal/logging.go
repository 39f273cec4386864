package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"memoreal/internal/config"
)

const (
	logLevelEnvKey  = "MEMOREAL_LOG_LEVEL"
	logFormatEnvKey = "MEMOREAL_LOG_FORMAT"
)

// logSetting is one logger option resolved from flag, env and config in
// that order.
type logSetting struct {
	name      string
	flag      string
	envKey    string
	configKey string
	fallback  string
}

func (s logSetting) resolve(configValue string) (value, source string) {
	if v := strings.TrimSpace(s.flag); v != "" {
		return v, "flag"
	}
	if v := strings.TrimSpace(os.Getenv(s.envKey)); v != "" {
		return v, "env"
	}
	if v := strings.TrimSpace(configValue); v != "" {
		return v, "config"
	}
	return s.fallback, "default"
}

// invalid turns a rejected value into an error for flags and a warning
// otherwise.
func (s logSetting) invalid(value, source string) (string, error) {
	switch source {
	case "flag":
		return "", fmt.Errorf("invalid --%s %q", s.name, value)
	case "env":
		return fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", s.envKey, value, s.fallback), nil
	case "config":
		return fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", s.configKey, value, s.fallback), nil
	default:
		return "", nil
	}
}

// configureLoggerForCLI installs the default slog logger used by every
// command, including the server. It returns warnings for bad env or config
// values, which fall back to defaults.
func configureLoggerForCLI(flagLevel, flagFormat string, cfg *config.Config) ([]string, error) {
	return configureLogger(os.Stderr, flagLevel, flagFormat, cfg)
}

func configureLogger(w io.Writer, flagLevel, flagFormat string, cfg *config.Config) ([]string, error) {
	var configLevel, configFormat string
	if cfg != nil {
		configLevel, configFormat = cfg.LogLevel, cfg.LogFormat
	}

	levelSetting := logSetting{name: "log-level", flag: flagLevel, envKey: logLevelEnvKey, configKey: "log_level", fallback: config.DefaultLogLevel}
	formatSetting := logSetting{name: "log-format", flag: flagFormat, envKey: logFormatEnvKey, configKey: "log_format", fallback: config.DefaultLogFormat}

	var warnings []string

	rawLevel, levelSource := levelSetting.resolve(configLevel)
	level, err := parseLogLevel(rawLevel)
	if err != nil {
		warning, flagErr := levelSetting.invalid(rawLevel, levelSource)
		if flagErr != nil {
			return nil, flagErr
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
		level = slog.LevelInfo
	}

	rawFormat, formatSource := formatSetting.resolve(configFormat)
	format, err := parseLogFormat(rawFormat)
	if err != nil {
		warning, flagErr := formatSetting.invalid(rawFormat, formatSource)
		if flagErr != nil {
			return nil, flagErr
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
		format = config.DefaultLogFormat
	}

	slog.SetDefault(newLogger(w, level, format))
	return warnings, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return slog.LevelInfo, nil
	}
	if strings.EqualFold(value, "warning") {
		value = "warn"
	}

	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

func parseLogFormat(raw string) (string, error) {
	switch value := strings.ToLower(strings.TrimSpace(raw)); value {
	case "", "text":
		return "text", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("invalid log format %q", raw)
	}
}

func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
