package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog/internal/app"
	"blog/internal/db"
	httpx "blog/internal/http"
	"blog/internal/logging"
)

func main() {
	cfg, err := app.LoadConfig()
	app.Must(err)
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	app.Must(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := db.Open(cfg.DatabaseURL)
	app.Must(err)
	defer d.Close()
	app.Must(db.Migrate(ctx, d))
	log.Info("database ready", "driver", d.DriverName())

	srv, err := httpx.NewServer(d, cfg, log)
	app.Must(err)

	hs := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "err", err)
		}
	}
}
