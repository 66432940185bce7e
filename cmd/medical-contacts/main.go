// Package main Medical Contacts API
//
// @title           Medical Contacts API
// @version         1.0
// @description     API для ведения карточек пациентов частнопрактикующего врача
// @termsOfService  http://swagger.io/terms/

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/medical-contacts/internal/app/medicalcontacts"
	"github.com/magabrotheeeer/medical-contacts/internal/config"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/migrations"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "medical-contacts",
		Short:         "Medical Contacts API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (defaults to CONFIG_PATH)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API and gRPC health servers",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStorage(configPath, func(_ *slog.Logger, db *storage.Storage) error {
					return migrations.Run(db.DB)
				})
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Apply migrations and insert demo users and patients",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStorage(configPath, func(logger *slog.Logger, db *storage.Storage) error {
					if err := migrations.Run(db.DB); err != nil {
						return err
					}
					return medicalcontacts.Seed(cmd.Context(), logger, db)
				})
			},
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("medical-contacts failed", sl.Err(err))
		os.Exit(1)
	}
}

func load(configPath string) (*config.Config, *slog.Logger, error) {
	path, err := config.ResolvePath(configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, setupLogger(cfg.Env), nil
}

func serve(ctx context.Context, configPath string) error {
	cfg, logger, err := load(configPath)
	if err != nil {
		return err
	}

	logger.Info("starting medical-contacts", slog.String("env", cfg.Env))
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	app, err := medicalcontacts.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		return err
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		return err
	}

	logger.Info("medical-contacts stopped gracefully")
	return nil
}

func withStorage(configPath string, fn func(*slog.Logger, *storage.Storage) error) error {
	cfg, logger, err := load(configPath)
	if err != nil {
		return err
	}
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close storage", sl.Err(err))
		}
	}()
	return fn(logger, db)
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
