package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/swelljoe/clima/internal/config"
	"github.com/swelljoe/clima/internal/db"
	"github.com/swelljoe/clima/internal/handlers"
	"github.com/swelljoe/clima/internal/logging"
	"github.com/swelljoe/clima/internal/weather"
)

const serviceName = "clima"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(serviceName, logging.Version(), cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) error {
	var (
		database handlers.Database
		index    weather.PlaceIndex
	)

	if cfg.DBPath != "" {
		gazetteer, err := db.NewDB(cfg.DBPath)
		if err != nil {
			log.Warn().Err(err).Msg("database connection failed, continuing with remote geocoding only")
		} else {
			defer gazetteer.Close()
			database, index = gazetteer, gazetteer
			log.Info().Str("path", cfg.DBPath).Msg("database connected")
		}
	}

	client := weather.NewClient(cfg.URLBuilder(), cfg.HTTPTimeout)
	service := weather.NewService(client, index, log)

	h := handlers.New(database, service, handlers.Options{
		DefaultLocation: cfg.DefaultLocation,
		StaticDir:       cfg.StaticDir,
		SessionOptions: handlers.SessionOptions{
			IconBase:       cfg.IconBase,
			SearchDebounce: cfg.SearchDebounce,
			RenderTimeout:  4 * cfg.HTTPTimeout,
		},
	}, log)
	defer h.Sessions().Close()

	go sweepSessions(ctx, h.Sessions(), cfg.SessionIdle, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newServer(h, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer wraps the routes in tracing and access logging
func newServer(h *handlers.Handlers, log zerolog.Logger) http.Handler {
	return otelhttp.NewHandler(handlers.AccessLog(log, h.Routes()), serviceName)
}

func sweepSessions(ctx context.Context, sessions *handlers.Sessions, maxIdle time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(maxIdle); n > 0 {
				log.Debug().Int("closed", n).Int("open", sessions.Len()).Msg("idle sessions closed")
			}
		}
	}
}
