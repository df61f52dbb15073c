package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/datalens/internal/analysis"
	"github.com/JonMunkholm/datalens/internal/chart"
	"github.com/JonMunkholm/datalens/internal/config"
	"github.com/JonMunkholm/datalens/internal/core"
	"github.com/JonMunkholm/datalens/internal/logging"
	"github.com/JonMunkholm/datalens/internal/store"
	"github.com/JonMunkholm/datalens/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	rows, err := openRowStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open row store", "error", err)
		os.Exit(1)
	}

	renders := chart.NewLimiter(cfg.Render.MaxConcurrent, cfg.Render.MaxWaitTime)
	dispatcher := analysis.NewDispatcher(
		chart.NewGoChart(cfg.Render.Width, cfg.Render.Height),
		renders,
		cfg.Upload.HeadRows,
	)

	opts := core.Options{
		Analyzer:    dispatcher,
		MaxFileSize: cfg.Upload.MaxFileSize,
		SQLEnabled:  cfg.SQL.ExecEnabled,
	}
	if rows != nil {
		opts.Store = rows
	}
	service := core.NewService(opts)
	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		if st := renders.Status(); st.Active > 0 {
			slog.Info("waiting for renders to complete", "active", st.Active)
			if err := renders.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("renders did not complete in time", "error", err)
			}
		}
	}()

	if err := server.Start(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
	} else {
		<-done
	}
	if rows != nil {
		rows.Close()
	}
	slog.Info("server stopped")
}

// openRowStore builds the failover chain: PostgreSQL first when
// DATABASE_URL is set, then the embedded SQLite file. It returns nil when
// the row store is disabled.
func openRowStore(ctx context.Context, cfg *config.Config) (*store.Failover, error) {
	if !cfg.SQL.RowStoreEnabled {
		slog.Info("row store disabled")
		return nil, nil
	}

	var engines []store.Engine
	if cfg.Database.HasPostgres() {
		pg, err := store.OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.PingTimeout)
		if err := pg.Ping(pingCtx); err != nil {
			slog.Warn("postgres unreachable at startup, SQLite will serve until it answers", "error", err)
		} else {
			slog.Info("connected to database", "name", databaseName(cfg.Database.URL))
		}
		cancel()
		engines = append(engines, pg)
	}

	lite, err := store.OpenSQLite(ctx, cfg.SQLite.Path, cfg.SQLite.BusyTimeout)
	if err != nil {
		for _, e := range engines {
			e.Close()
		}
		return nil, err
	}
	slog.Info("sqlite row store ready", "path", cfg.SQLite.Path)
	engines = append(engines, lite)

	return store.NewFailover(cfg.Database.PingTimeout, engines...), nil
}

func databaseName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
