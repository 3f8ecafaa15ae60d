package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testAuthor struct {
	bun.BaseModel `bun:"table:authors"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

type testBook struct {
	bun.BaseModel `bun:"table:books"`

	ID       int64       `bun:"id,pk,autoincrement"`
	AuthorID int64       `bun:"author_id,notnull"`
	Author   *testAuthor `bun:"rel:belongs-to,join:author_id=id"`
	Title    string      `bun:"title,notnull"`
}

type testNote struct {
	ID   int64 `bun:"id,pk,autoincrement"`
	Body string
}

func openSQLite(t *testing.T) *bun.DB {
	t.Helper()
	cfg := Config{
		Descriptor: Descriptor{
			Dialect:  DialectSQLite,
			Database: filepath.Join(t.TempDir(), "test"),
		},
		MaxOpenConns: 4,
		MaxIdleConns: 4,
		Timeouts:     Timeouts{Connect: 2 * time.Second},
	}
	db, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countTables(t *testing.T, db bun.IDB) int {
	t.Helper()
	var n int
	err := db.NewRaw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'").
		Scan(context.Background(), &n)
	require.NoError(t, err)
	return n
}

func countRows(t *testing.T, db bun.IDB, model any) int {
	t.Helper()
	n, err := db.NewSelect().Model(model).Count(context.Background())
	require.NoError(t, err)
	return n
}
