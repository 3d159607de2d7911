package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tgienger/smartplanner/internal/db"
	"github.com/tgienger/smartplanner/internal/server"
)

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func main() {
	addr := flag.String("addr", envOr("SPLAN_ADDR", ":8000"), "listen address")
	dbPath := flag.String("db", envOr("SPLAN_DB", ""), "SQLite database path (default under $XDG_DATA_HOME)")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	logger := log.New(os.Stderr, "splan-server ", log.LstdFlags|log.Lmsgprefix)

	store, err := db.New(*dbPath)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer store.Close()

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.New(store, logger, server.WithTimeout(*timeout)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Printf("listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
	logger.Printf("bye")
}
