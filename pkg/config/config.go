// Package config layers defaults, an optional YAML file, a .env file,
// environment variables and command-line flags into one Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const EnvPrefix = "CONTABILU"

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Import   ImportConfig   `mapstructure:"import"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	YNAB     YNABConfig     `mapstructure:"ynab"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
	// SlowQuery is the threshold, in milliseconds, above which queries are
	// logged as warnings.
	SlowQuery int `mapstructure:"slow_query_ms"`
}

type ImportConfig struct {
	BatchSize         int    `mapstructure:"batch_size"`
	AccountsSheet     string `mapstructure:"accounts_sheet"`
	TransactionsSheet string `mapstructure:"transactions_sheet"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

type YNABConfig struct {
	TokenEnv  string `mapstructure:"token_env"`
	BudgetID  string `mapstructure:"budget_id"`
	AccountID string `mapstructure:"account_id"`
	MatchByID bool   `mapstructure:"match_by_id"`
}

// Token reads the API token from the environment variable named by TokenEnv.
func (c YNABConfig) Token() string {
	return os.Getenv(c.TokenEnv)
}

// ParsedLevel returns the log level, info when unset or invalid.
func (c LogConfig) ParsedLevel() log.Level {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// flag name -> config key
var flagKeys = map[string]string{
	"database-url":       "database.url",
	"batch-size":         "import.batch_size",
	"accounts-sheet":     "import.accounts_sheet",
	"transactions-sheet": "import.transactions_sheet",
	"log-level":          "log.level",
	"addr":               "server.addr",
	"budget-id":          "ynab.budget_id",
	"account-id":         "ynab.account_id",
	"match-by-id":        "ynab.match_by_id",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "sqlite://contabilu.db")
	v.SetDefault("database.slow_query_ms", 200)
	v.SetDefault("import.batch_size", 50)
	v.SetDefault("import.accounts_sheet", "Plano de Contas")
	v.SetDefault("import.transactions_sheet", "Movimentacao Bancaria")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", "0.0.0.0:3000")
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("ynab.token_env", "YNAB_TOKEN")
	v.SetDefault("ynab.match_by_id", true)
}

// Build loads the configuration. cfgFile may be empty, in which case an
// optional config.yaml in the working directory is used. flags may be nil;
// only flags the user actually set override lower layers.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := gotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("import.batch_size must be positive, got %d", c.Import.BatchSize)
	}
	return nil
}
