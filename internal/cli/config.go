package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/Alp4ka/leandb/mongostore"
)

const (
	DriverMongoDB  = "mongodb"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

var _drivers = []string{DriverMongoDB, DriverPostgres, DriverMySQL, DriverSQLite}

// Config is the command line configuration. Every key can be set in the config
// file, through a LEANDB_ environment variable (store.dsn is LEANDB_STORE_DSN)
// or, for the most common ones, a flag.
type Config struct {
	Store StoreConfig
	Log   LogConfig
}

// StoreConfig selects the backend. Database and Collection are used by the
// mongodb driver only; SQL drivers keep notes in the "notes" table of the
// database named in the DSN.
type StoreConfig struct {
	Driver     string
	DSN        string
	Database   string
	Collection string
	Timeout    time.Duration
	Migrate    bool
}

type LogConfig struct {
	Level  string
	Format string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.dsn", "leandb.db")
	v.SetDefault("store.database", "leandb")
	v.SetDefault("store.collection", "notes")
	v.SetDefault("store.timeout", mongostore.DefaultTimeout)
	v.SetDefault("store.migrate", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads the configuration. An empty configPath skips the file and
// leaves defaults, environment and bound flags.
func LoadConfig(v *viper.Viper, configPath string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("LEANDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Store: getStoreConfig(v),
		Log:   getLogConfig(v),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getStoreConfig(v *viper.Viper) StoreConfig {
	return StoreConfig{
		Driver:     strings.ToLower(v.GetString("store.driver")),
		DSN:        v.GetString("store.dsn"),
		Database:   v.GetString("store.database"),
		Collection: v.GetString("store.collection"),
		Timeout:    v.GetDuration("store.timeout"),
		Migrate:    v.GetBool("store.migrate"),
	}
}

func getLogConfig(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  v.GetString("log.level"),
		Format: strings.ToLower(v.GetString("log.format")),
	}
}

func (c *Config) validate() error {
	if !lo.Contains(_drivers, c.Store.Driver) {
		return fmt.Errorf("unknown store driver '%s', expected one of %s", c.Store.Driver, strings.Join(_drivers, ", "))
	} else if c.Store.DSN == "" {
		return fmt.Errorf("store dsn is required")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unknown log format '%s'", c.Log.Format)
	}

	return nil
}

// mongo returns the mongostore connection settings.
func (c StoreConfig) mongo() mongostore.Config {
	return mongostore.Config{
		URI:        c.DSN,
		Database:   c.Database,
		Collection: c.Collection,
		Timeout:    c.Timeout,
	}
}
