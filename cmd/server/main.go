package main // Entry point package

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv" // .env loader
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/mysql-starter/internal/app"      // Startup sequence
	"github.com/iliyamo/mysql-starter/internal/config"   // Internal config loader
	"github.com/iliyamo/mysql-starter/internal/database" // Schema registry
	"github.com/iliyamo/mysql-starter/internal/logging"  // Logger construction
	"github.com/iliyamo/mysql-starter/internal/model"    // Table declarations
)

func main() {
	// A .env file is optional; variables already set in the environment win.
	envErr := godotenv.Load()

	cfg, err := config.Load() // Load environment config
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logging.New("server", cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Debug("no .env file loaded, using process environment")
	}

	reg := database.NewRegistry() // Declared tables, created before serving
	model.Register(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, reg)
	if err != nil {
		log.WithError(err).
			WithField("reason", database.Classify(err)).
			WithField("db", cfg.Descriptor().Redacted()).
			Fatal("startup failed")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.WithError(err).Warn("close database")
		}
	}()

	if err := a.Run(ctx); err != nil { // Serve until SIGINT/SIGTERM
		log.WithError(err).Error("server stopped")
		stop()
		_ = a.Close()
		os.Exit(1)
	}
}
