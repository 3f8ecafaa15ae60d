package config // package config loads application configuration from environment variables

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/iliyamo/mysql-starter/internal/database"
)

// DBHost is the database host as seen from the service's container network.
// It is deliberately not read from the environment.
const DBHost = "db"

// Config holds all runtime configuration values. The MYSQL_* credentials
// are not validated: a missing one leaves an empty token in the connection
// descriptor and the failure shows up when the database is first reached.
type Config struct {
	Env             string        `env:"APP_ENV" envDefault:"dev"`               // environment label (dev/test/prod)
	Port            string        `env:"APP_PORT" envDefault:"8000"`             // HTTP port to listen on
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"` // graceful shutdown bound

	DBUser    string `env:"MYSQL_USER"`                    // database username
	DBPass    string `env:"MYSQL_PASSWORD"`                // database password
	DBName    string `env:"MYSQL_DATABASE"`                // database name
	DBDialect string `env:"DB_DIALECT" envDefault:"mysql"` // mysql, postgres or sqlite

	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	DBConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	DBReadTimeout     time.Duration `env:"DB_READ_TIMEOUT" envDefault:"30s"`
	DBWriteTimeout    time.Duration `env:"DB_WRITE_TIMEOUT" envDefault:"30s"`
	DBQueryLog        bool          `env:"DB_QUERY_LOG" envDefault:"false"`
	DBSlowQuery       time.Duration `env:"DB_SLOW_QUERY" envDefault:"0s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads the environment into a Config. It only fails when a value is
// present but cannot be parsed (e.g. DB_MAX_OPEN_CONNS=lots).
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// Descriptor builds the connection descriptor. Host and port are fixed;
// the port follows the dialect's default.
func (c Config) Descriptor() database.Descriptor {
	return database.Descriptor{
		Dialect:  c.DBDialect,
		User:     c.DBUser,
		Password: c.DBPass,
		Host:     DBHost,
		Port:     database.DefaultPort(c.DBDialect),
		Database: c.DBName,
	}
}

// Database assembles the connection handle settings.
func (c Config) Database() database.Config {
	return database.Config{
		Descriptor:      c.Descriptor(),
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
		ConnMaxIdleTime: c.DBConnMaxIdleTime,
		Timeouts: database.Timeouts{
			Connect: c.DBConnectTimeout,
			Read:    c.DBReadTimeout,
			Write:   c.DBWriteTimeout,
		},
		QueryLog:      c.DBQueryLog,
		SlowQueryTime: c.DBSlowQuery,
	}
}
