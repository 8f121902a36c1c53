package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/mockview/internal/model"
	"github.com/tinytelemetry/mockview/internal/socketrpc"
)

// Terminal widths are measured in cells, not pixels.
const defaultCompactBreakpoint = 100

// cliConfig holds only TUI-relevant configuration.
type cliConfig struct {
	SocketPath        string        `mapstructure:"socket-path"`
	Candidate         string        `mapstructure:"candidate"`
	QuestionDuration  time.Duration `mapstructure:"question-duration"`
	GracePeriod       time.Duration `mapstructure:"grace-period"`
	AutosaveInterval  time.Duration `mapstructure:"autosave-interval"`
	CompactBreakpoint int           `mapstructure:"compact-breakpoint"`
	DraftPath         string        `mapstructure:"draft-path"`
	OutboxPath        string        `mapstructure:"outbox-path"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}
	stateDir := filepath.Join(home, ".local", "state", "mockview")

	v := viper.New()
	v.SetEnvPrefix("MOCKVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("candidate", defaultCandidate())
	v.SetDefault("question-duration", model.DefaultQuestionDuration)
	v.SetDefault("grace-period", model.DefaultGracePeriod)
	v.SetDefault("autosave-interval", model.DefaultAutosaveInterval)
	v.SetDefault("compact-breakpoint", defaultCompactBreakpoint)
	v.SetDefault("draft-path", filepath.Join(stateDir, "drafts.json"))
	v.SetDefault("outbox-path", filepath.Join(stateDir, "outbox.jsonl"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "mockview", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	if cfg.QuestionDuration < time.Second {
		return cfg, fmt.Errorf("invalid question-duration: %v", cfg.QuestionDuration)
	}
	cfg.QuestionDuration = cfg.QuestionDuration.Truncate(time.Second)
	if strings.TrimSpace(cfg.Candidate) == "" {
		cfg.Candidate = model.DefaultCandidate
	}
	cfg.DraftPath = expandHome(home, cfg.DraftPath)
	cfg.OutboxPath = expandHome(home, cfg.OutboxPath)

	return cfg, nil
}

func defaultCandidate() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return model.DefaultCandidate
}

func expandHome(home, path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
