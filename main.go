package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/danielhkuo/votebox/cliparse"
	"github.com/danielhkuo/votebox/db"
	"github.com/danielhkuo/votebox/middleware"
	"github.com/danielhkuo/votebox/router"
)

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// serve runs server on ln until ctx is done, then waits up to timeout
// for in-flight requests before returning.
func serve(ctx context.Context, server *http.Server, ln net.Listener, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server", "timeout", timeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		server.Close()
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	// Connect and create schema
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	cancel()
	if err != nil {
		slog.Error("database setup failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Create router
	mux := router.NewRouter(dbConn, cfg)

	// Create server
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// h2c serves HTTP/2 without TLS
		Handler: h2c.NewHandler(middleware.CORS(mux), &http2.Server{}),
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("listen failed", "addr", server.Addr, "error", err)
		dbConn.Close()
		os.Exit(1)
	}

	// Stop on Ctrl-C or SIGTERM
	quit, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	slog.Info("Listening", "port", cfg.Port)
	serveErr := serve(quit, server, ln, cfg.ShutdownTimeout)
	stop()

	// Requests have drained (or the timeout hit), so no transaction still
	// needs the pool.
	if err := dbConn.Close(); err != nil {
		slog.Error("database close failed", "error", err)
	}

	if serveErr != nil {
		slog.Error("Server closed", "error", serveErr)
		os.Exit(1)
	}
	slog.Info("Server closed")
}
