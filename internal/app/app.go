// Package app wires the service together: it opens the connection handle,
// brings the schema up to date and only then builds the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/iliyamo/mysql-starter/internal/config"
	"github.com/iliyamo/mysql-starter/internal/database"
	"github.com/iliyamo/mysql-starter/internal/handler"
	"github.com/iliyamo/mysql-starter/internal/router"
)

// App owns the process-wide resources built at startup.
type App struct {
	cfg      config.Config
	log      logrus.FieldLogger
	db       *bun.DB
	sessions *database.SessionFactory
	echo     *echo.Echo
}

// New runs the startup sequence: open the database, ensure every registered
// table exists, register the route. Any failure is returned and nothing has
// been bound to a port yet.
func New(ctx context.Context, cfg config.Config, log logrus.FieldLogger, reg *database.Registry) (*App, error) {
	db, err := database.Open(ctx, cfg.Database(), log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := database.SyncSchema(ctx, db, reg, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sync schema: %w", err)
	}

	sessions := database.NewSessionFactory(db)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.RegisterRoutes(e, handler.New(sessions), log)

	return &App{
		cfg:      cfg,
		log:      log,
		db:       db,
		sessions: sessions,
		echo:     e,
	}, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler { return a.echo }

// Sessions returns the session factory bound to the app's connection handle.
func (a *App) Sessions() *database.SessionFactory { return a.sessions }

// Run listens on the configured address until ctx is cancelled, then shuts
// the server down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Addr(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.echo.Listener = ln
	a.log.WithFields(logrus.Fields{
		"addr": ln.Addr().String(),
		"env":  a.cfg.Env,
	}).Info("listening")

	errCh := make(chan error, 1)
	go func() { errCh <- a.echo.Start("") }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := a.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.log.Info("shutting down")
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the connection handle.
func (a *App) Close() error {
	return a.db.Close()
}
