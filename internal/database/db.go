package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// Config describes the connection handle: where it points and how its pool
// behaves.
type Config struct {
	Descriptor      Descriptor
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	Timeouts        Timeouts
	QueryLog        bool
	SlowQueryTime   time.Duration
}

// Open builds the connection handle and verifies it with a ping bounded by
// the connect timeout. Connection errors are returned untouched apart from
// wrapping; there is no retry.
func Open(ctx context.Context, cfg Config, log logrus.FieldLogger) (*bun.DB, error) {
	driver, err := cfg.Descriptor.DriverName()
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.Descriptor.DSN(cfg.Timeouts)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Descriptor.Redacted(), err)
	}

	// Pool settings
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := bun.NewDB(sqlDB, dialectFor(cfg.Descriptor.Dialect))

	if cfg.QueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	if cfg.SlowQueryTime > 0 {
		db.AddQueryHook(newSlowQueryHook(cfg.SlowQueryTime, log))
	}

	// Ping with timeout
	timeout := cfg.Timeouts.Connect
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Descriptor.Redacted(), err)
	}

	if log != nil {
		stats := sqlDB.Stats()
		log.WithFields(logrus.Fields{
			"db":             cfg.Descriptor.Redacted(),
			"max_open_conns": stats.MaxOpenConnections,
		}).Info("database connected")
	}
	return db, nil
}

// dialectFor is only reached after DriverName accepted the dialect.
func dialectFor(name string) schema.Dialect {
	switch name {
	case DialectPostgres:
		return pgdialect.New()
	case DialectSQLite:
		return sqlitedialect.New()
	default:
		return mysqldialect.New()
	}
}
