package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/atlekbai/sqlrender/internal/dialect"
	"github.com/atlekbai/sqlrender/internal/query"
)

// Config is loaded with precedence env > config file > defaults.
type Config struct {
	Port        string `mapstructure:"port"`
	Dialect     string `mapstructure:"dialect"`
	Placeholder string `mapstructure:"placeholder"`
	LogLevel    string `mapstructure:"log_level"`
}

// Load reads configuration from SQLRENDER_* variables and, when path is
// set, from that YAML file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SQLRENDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("dialect", string(dialect.ANSI))
	v.SetDefault("placeholder", "question")
	v.SetDefault("log_level", "info")
}

func (c *Config) validate() error {
	if _, err := dialect.ParseTag(c.Dialect); err != nil {
		return fmt.Errorf("config dialect: %w", err)
	}
	if _, err := query.ParsePlaceholder(c.Placeholder); err != nil {
		return fmt.Errorf("config placeholder: %w", err)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("config log_level: %w", err)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}

// DialectTag returns the validated default dialect.
func (c *Config) DialectTag() dialect.Tag {
	tag, _ := dialect.ParseTag(c.Dialect)
	return tag
}

func (c *Config) Level() slog.Level {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl
}

// Defaults are the query document defaults derived from the config.
func (c *Config) Defaults() query.Defaults {
	return query.Defaults{Dialect: c.DialectTag(), Placeholder: c.Placeholder}
}
