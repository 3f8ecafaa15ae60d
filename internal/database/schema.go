package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

// SyncSchema makes sure every registered table exists, creating missing ones
// dependency-first and leaving existing ones untouched. Running it again is
// a no-op. It stops at the first failure.
func SyncSchema(ctx context.Context, db bun.IDB, reg *Registry, log logrus.FieldLogger) error {
	tables, err := reg.Ordered()
	if err != nil {
		return fmt.Errorf("order tables: %w", err)
	}
	for _, t := range tables {
		_, err := db.NewCreateTable().
			Model(t.Model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
		if log != nil {
			log.WithField("table", t.Name).Debug("table ensured")
		}
	}
	if log != nil {
		log.WithField("tables", len(tables)).Info("schema synchronized")
	}
	return nil
}
