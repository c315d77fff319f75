package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"chatterhub/internal/app"
	"chatterhub/internal/config"
	"chatterhub/internal/handler"
	"chatterhub/internal/middleware"
	"chatterhub/internal/watch"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"db_driver", cfg.DBDriver,
		"table_prefix", cfg.TablePrefix,
		"debug", cfg.Debug,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open application: %v", err)
	}
	defer a.Close()

	if n, err := a.MCPServers.EnsureBuiltins(ctx); err != nil {
		logger.Warn("failed to register builtin MCP servers", "error", err)
	} else if n > 0 {
		logger.Info("builtin MCP servers registered", "count", n)
	}

	// External writers to the SQLite file (another process, a sync tool)
	if cfg.WatchDBFile && cfg.DBDriver == config.DriverSQLite {
		watcher, err := watch.NewFileWatcher(cfg.SQLitePath, a.Engine, logger, watch.DefaultDebounce)
		if err != nil {
			log.Fatalf("Failed to create database watcher: %v", err)
		}
		remove := a.Store.OnWrite(watcher.NoteLocalWrite)
		defer remove()
		if err := watcher.Start(ctx); err != nil {
			log.Fatalf("Failed to start database watcher: %v", err)
		}
		defer watcher.Stop()
	}

	logger.Info("services initialized")

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, a.Handlers())

	// Order: CORS → Recovery → RequestLogger → Routes
	var h http.Handler = mux
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Last-Event-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := a.NewHTTPServer(":"+cfg.Port, h)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
	}
}
