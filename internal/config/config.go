// Package config loads bridge configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort           = 3000
	defaultSessionTimeout = time.Hour
	defaultSweepInterval  = time.Minute
	defaultClaudeCommand  = "claude"
)

// Config holds all tunables for the bridge process. Values come from the
// environment with sensible defaults; there is no config file for the
// process itself, only an optional workflow rules file.
type Config struct {
	Port           int
	SessionTimeout time.Duration
	SweepInterval  time.Duration
	ClaudeCommand  string
	LogLevel       slog.Level
	// WorkflowRulesPath optionally points at a YAML file overriding the
	// built-in workflow id extraction rules.
	WorkflowRulesPath string
}

// Load reads configuration from the environment. Invalid values fail loudly
// rather than being silently replaced, since a mistyped timeout would
// otherwise change eviction behavior without anyone noticing.
func Load() (Config, error) {
	cfg := Config{
		Port:              defaultPort,
		SessionTimeout:    defaultSessionTimeout,
		SweepInterval:     defaultSweepInterval,
		ClaudeCommand:     defaultClaudeCommand,
		LogLevel:          slog.LevelInfo,
		WorkflowRulesPath: os.Getenv("WORKFLOW_RULES_PATH"),
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := os.Getenv("SESSION_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return Config{}, fmt.Errorf("invalid SESSION_TIMEOUT_MS %q", v)
		}
		cfg.SessionTimeout = time.Duration(ms) * time.Millisecond
	}

	if v := os.Getenv("SWEEP_INTERVAL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return Config{}, fmt.Errorf("invalid SWEEP_INTERVAL_MS %q", v)
		}
		cfg.SweepInterval = time.Duration(ms) * time.Millisecond
	}

	if v := os.Getenv("CLAUDE_COMMAND"); v != "" {
		cfg.ClaudeCommand = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
