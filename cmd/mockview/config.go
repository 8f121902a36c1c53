package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/mockview/internal/model"
	"github.com/tinytelemetry/mockview/internal/socketrpc"
)

const (
	defaultBindHost       = "127.0.0.1"
	defaultAPIPort        = 3000
	defaultQueryTimeout   = 30 * time.Second
	defaultFuzzyDistance  = 1
	defaultBackupInterval = 6 * time.Hour
	defaultBackupKeepLast = 24
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	DBPath                string        `mapstructure:"db-path"`
	SocketPath            string        `mapstructure:"socket-path"`
	APIEnabled            bool          `mapstructure:"api-enabled"`
	APIPort               int           `mapstructure:"api-port"`
	APIAddr               string        `mapstructure:"api-addr"`
	QueryTimeout          time.Duration `mapstructure:"query-timeout"`
	QuestionsPerInterview int           `mapstructure:"questions-per-interview"`
	SeedQuestions         bool          `mapstructure:"seed-questions"`
	QuestionBank          string        `mapstructure:"question-bank"`
	FuzzyDistance         int           `mapstructure:"fuzzy-distance"`
	BackupEnabled         bool          `mapstructure:"backup-enabled"`
	BackupInterval        time.Duration `mapstructure:"backup-interval"`
	BackupLocalDir        string        `mapstructure:"backup-local-dir"`
	BackupKeepLast        int           `mapstructure:"backup-keep-last"`
	ConfigPath            string        `mapstructure:"-"` // not from config file
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	dataDir := filepath.Join(home, ".local", "share", "mockview")

	v := viper.New()
	v.SetEnvPrefix("MOCKVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("db-path", filepath.Join(dataDir, "mockview.duckdb"))
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("api-enabled", true)
	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("questions-per-interview", model.DefaultQuestionsPerInterview)
	v.SetDefault("seed-questions", true)
	v.SetDefault("question-bank", "")
	v.SetDefault("fuzzy-distance", defaultFuzzyDistance)
	v.SetDefault("backup-enabled", false)
	v.SetDefault("backup-interval", defaultBackupInterval)
	v.SetDefault("backup-local-dir", filepath.Join(dataDir, "backups"))
	v.SetDefault("backup-keep-last", defaultBackupKeepLast)

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
	cfg.ConfigPath = v.ConfigFileUsed()
	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		cfg.ConfigPath = ""
	}

	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	if cfg.QuestionsPerInterview <= 0 {
		return cfg, fmt.Errorf("invalid questions-per-interview: %d", cfg.QuestionsPerInterview)
	}
	if cfg.FuzzyDistance < 0 {
		return cfg, fmt.Errorf("invalid fuzzy-distance: %d", cfg.FuzzyDistance)
	}

	cfg.DBPath = expandHome(home, cfg.DBPath)
	cfg.QuestionBank = expandHome(home, cfg.QuestionBank)
	cfg.BackupLocalDir = expandHome(home, cfg.BackupLocalDir)

	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}

func expandHome(home, path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
