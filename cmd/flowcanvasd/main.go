// Command flowcanvasd serves the workflow editing API for a canvas
// frontend: editing sessions, the node-type catalog, and palette
// preferences.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/markus41/flowcanvas/internal/canvas"
	"github.com/markus41/flowcanvas/internal/canvas/catalog"
	"github.com/markus41/flowcanvas/internal/canvas/kv"
	"github.com/markus41/flowcanvas/internal/canvas/palette"
	"github.com/markus41/flowcanvas/internal/server/api"
	"github.com/markus41/flowcanvas/internal/server/session"
)

func main() {
	cfg := loadConfig()

	logger := newLogger(cfg.GetString("log_level"))
	logger.Info().Str("version", canvas.Version()).Msg("starting flowcanvasd")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("flowcanvasd failed")
	}
}

func loadConfig() *viper.Viper {
	cfg := viper.New()
	cfg.SetDefault("listen_addr", ":8080")
	cfg.SetDefault("state_dir", defaultStateDir())
	cfg.SetDefault("history_limit", 50)
	cfg.SetDefault("catalog_file", "")
	cfg.SetDefault("palette_backend", "sqlite")
	cfg.SetDefault("log_level", "info")

	cfg.SetEnvPrefix("FLOWCANVAS")
	cfg.AutomaticEnv()

	cfg.SetConfigName("config")
	cfg.SetConfigType("yaml")
	cfg.AddConfigPath(cfg.GetString("state_dir"))
	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "reading config: %v\n", err)
			os.Exit(1)
		}
	}
	return cfg
}

func defaultStateDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".flowcanvas"
	}
	return filepath.Join(homeDir, ".local", "share", "flowcanvas")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}

func run(cfg *viper.Viper, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stateDir := cfg.GetString("state_dir")
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	blob, err := openPaletteBlob(ctx, cfg, stateDir)
	if err != nil {
		return err
	}
	defer blob.Close()

	cat := catalog.New()
	if path := cfg.GetString("catalog_file"); path != "" {
		if err := cat.LoadFile(path); err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
		logger.Info().Int("types", cat.Len()).Msg("catalog loaded")
	}

	pal := palette.New(blob,
		palette.WithCategories(cat.Categories()),
		palette.WithLogger(logger),
	)

	sessions := session.NewManager(
		session.WithHistoryLimit(cfg.GetInt("history_limit")),
		session.WithLogger(logger),
	)
	defer sessions.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Mount("/", api.New(sessions, cat, pal, logger).Routes())

	srv := &http.Server{
		Addr:    cfg.GetString("listen_addr"),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func openPaletteBlob(ctx context.Context, cfg *viper.Viper, stateDir string) (kv.Blob, error) {
	switch backend := cfg.GetString("palette_backend"); backend {
	case "sqlite":
		blob, err := kv.NewSQLite(ctx, filepath.Join(stateDir, "flowcanvas.db"), "palette")
		if err != nil {
			return nil, fmt.Errorf("opening palette store: %w", err)
		}
		return blob, nil
	case "file":
		return kv.NewFile(filepath.Join(stateDir, "palette.json")), nil
	default:
		return nil, fmt.Errorf("unknown palette backend %q", backend)
	}
}
