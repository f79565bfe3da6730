package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kioku-app/kioku/internal/activity"
	"github.com/kioku-app/kioku/internal/bootstrap"
	"github.com/kioku-app/kioku/internal/cache"
	"github.com/kioku-app/kioku/internal/card"
	"github.com/kioku-app/kioku/internal/config"
	"github.com/kioku-app/kioku/internal/database"
	"github.com/kioku-app/kioku/internal/forecast"
	"github.com/kioku-app/kioku/internal/review"
	"github.com/kioku-app/kioku/internal/server"
	"github.com/kioku-app/kioku/internal/statistics"
)

var configFile string

func main() {
	// A missing .env file is fine, environment variables still apply.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "kioku-server",
		Short:         "Spaced repetition scheduling HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("newLogger() > %w", err)
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Connect() > %w", err)
	}
	app.AddShutdownHook("database", func(ctx context.Context) error {
		return db.Close()
	})
	if err := database.InitSchema(db); err != nil {
		return fmt.Errorf("database.InitSchema() > %w", err)
	}

	cards := cache.NewCardRepository(
		card.NewDBRepository(db),
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		nil,
	)
	logs := review.NewDBLogRepository(db)
	activities := activity.NewDBRepository(db)

	reviews := review.NewService(cards, logs, nil)
	activitySvc := activity.NewService(activities, nil)
	stats := statistics.NewService(cards, logs, activities, cfg.Dashboard, nil)

	if cfg.Forecast.Enabled {
		job := forecast.NewJob(cards, forecast.NewDBSnapshotRepository(db), cfg.Forecast, logger, nil)
		if err := job.Start(); err != nil {
			return fmt.Errorf("job.Start() > %w", err)
		}
		app.AddShutdownHook("forecast job", job.Stop)
	}

	api := server.New(cards, reviews, activitySvc, stats, logger, nil)
	handler := server.CORSMiddleware(
		server.LoggingMiddleware(h2c.NewHandler(api, &http2.Server{}), logger),
		cfg.Server.CORS.AllowedOrigins,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler,
	}
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		logger.WithField("addr", srv.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logrus.ParseLevel(%q) > %w", cfg.Level, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}
