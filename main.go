package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/rankpick/cliparse"
	"github.com/danielhkuo/rankpick/db"
	"github.com/danielhkuo/rankpick/enrich"
	"github.com/danielhkuo/rankpick/middleware"
	"github.com/danielhkuo/rankpick/router"
)

func main() {
	// Local development reads a .env file; deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	var describer enrich.Describer
	if cfg.DescriptionsEnabled() {
		describer = enrich.NewClient(enrich.Config{
			BaseURL: cfg.DescriptionAPIURL,
			APIKey:  cfg.DescriptionAPIKey,
			Model:   cfg.DescriptionModel,
			Timeout: cfg.DescriptionTimeout,
		})
		slog.Info("Candidate descriptions enabled", "model", cfg.DescriptionModel)
	}

	mux := router.NewRouter(dbConn, cfg, describer)

	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("Failed to listen", "addr", server.Addr, "error", err)
		return
	}

	slog.Info("Listening", "port", cfg.Port)
	if err := serve(&server, ln, ctrlc, 10*time.Second); err != nil {
		slog.Error("Server closed", "error", err)
		return
	}
	slog.Info("Server closed")
}

// serve runs server on ln until stop fires, then returns once in-flight
// requests have drained or the drain timeout forced the connections closed.
func serve(server *http.Server, ln net.Listener, stop <-chan os.Signal, drain time.Duration) error {
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), drain)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	err := server.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// Serve returns as soon as Shutdown starts
	<-idle
	return nil
}
