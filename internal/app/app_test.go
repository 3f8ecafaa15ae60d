package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/iliyamo/mysql-starter/internal/config"
	"github.com/iliyamo/mysql-starter/internal/database"
)

type widget struct {
	bun.BaseModel `bun:"table:widgets"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name"`
}

type gadget struct {
	bun.BaseModel `bun:"table:gadgets"`

	ID       int64 `bun:"id,pk,autoincrement"`
	WidgetID int64 `bun:"widget_id"`
}

func sqliteConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:              "test",
		Port:             "0",
		ShutdownTimeout:  2 * time.Second,
		DBDialect:        database.DialectSQLite,
		DBName:           filepath.Join(t.TempDir(), "app"),
		DBMaxOpenConns:   4,
		DBMaxIdleConns:   4,
		DBConnectTimeout: 2 * time.Second,
	}
}

func newApp(t *testing.T, cfg config.Config, reg *database.Registry) *App {
	t.Helper()
	log, _ := test.NewNullLogger()
	a, err := New(context.Background(), cfg, log, reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())
	return port
}

func TestNewServesGreeting(t *testing.T) {
	a := newApp(t, sqliteConfig(t), database.NewRegistry())

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "FastAPI funcionando con MySQL"}`, rec.Body.String())
}

func TestNewCreatesRegisteredTables(t *testing.T) {
	reg := database.NewRegistry()
	reg.Register((*gadget)(nil), (*widget)(nil))
	reg.Register((*widget)(nil))

	a := newApp(t, sqliteConfig(t), reg)
	ctx := context.Background()

	err := a.Sessions().Run(ctx, func(ctx context.Context, s *database.Session) error {
		s.Add(&widget{Name: "sprocket"})
		return nil
	})
	require.NoError(t, err)

	n, err := a.Sessions().DB().NewSelect().Model((*widget)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewTwiceOnSameDatabase(t *testing.T) {
	cfg := sqliteConfig(t)
	reg := database.NewRegistry()
	reg.Register((*widget)(nil))

	first := newApp(t, cfg, reg)
	require.NoError(t, first.Close())

	second := newApp(t, cfg, reg)
	var tables int
	err := second.Sessions().DB().NewRaw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'widgets'").
		Scan(context.Background(), &tables)
	require.NoError(t, err)
	assert.Equal(t, 1, tables)
}

func TestNewFailsOnUnreachableDatabase(t *testing.T) {
	port := freePort(t)
	cfg := config.Config{
		Port:             port,
		DBDialect:        database.DialectMySQL,
		DBUser:           "app",
		DBPass:           "secret",
		DBName:           "shop",
		DBConnectTimeout: time.Second,
	}
	log, _ := test.NewNullLogger()

	a, err := New(context.Background(), cfg, log, database.NewRegistry())
	require.Error(t, err)
	assert.Nil(t, a)
	assert.ErrorContains(t, err, "connect database")

	// Nothing was bound: the port is still free.
	ln, err := net.Listen("tcp", "127.0.0.1:"+port)
	require.NoError(t, err)
	_ = ln.Close()
}

func TestNewFailsOnSchemaError(t *testing.T) {
	reg := database.NewRegistry()
	reg.Register((*gadget)(nil), (*widget)(nil))
	log, _ := test.NewNullLogger()

	a, err := New(context.Background(), sqliteConfig(t), log, reg)
	require.Error(t, err)
	assert.Nil(t, a)
	assert.ErrorIs(t, err, database.ErrUnknownDependency)
	assert.Equal(t, database.KindSchemaOrder, database.Classify(err))
}

func TestServeStopsOnCancel(t *testing.T) {
	a := newApp(t, sqliteConfig(t), database.NewRegistry())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message": "FastAPI funcionando con MySQL"}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
