// Package config loads settings shared by the calculator and the crawler from an
// optional YAML file and BOLAN_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	DatabaseURL  string        `mapstructure:"database_url"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"`
	CrawlTimeout time.Duration `mapstructure:"crawl_timeout"`
}

// Load reads path (if not empty) and overlays environment variables such as
// BOLAN_DATABASE_URL on top of it.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("database_url", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")
	v.SetDefault("crawl_timeout", time.Minute)

	v.SetEnvPrefix("bolan")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Logger builds the zap logger described by LogLevel and LogFormat ("console" or "json").
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level '%s': %w", c.LogLevel, err)
	}

	var zc zap.Config
	switch strings.ToLower(c.LogFormat) {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format '%s'", c.LogFormat)
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}

	return zc.Build()
}
