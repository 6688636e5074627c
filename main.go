package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hilo/apps/go-server/internal/config"
	"github.com/robalobadob/hilo/apps/go-server/internal/history"
	"github.com/robalobadob/hilo/apps/go-server/internal/httpserver"
	"github.com/robalobadob/hilo/apps/go-server/internal/metrics"
	"github.com/robalobadob/hilo/apps/go-server/internal/store"
	"github.com/robalobadob/hilo/apps/go-server/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hist, err := history.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("open history")
	}
	defer hist.Close()

	signer, err := token.NewSigner(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token signer")
	}
	if cfg.JWTSecret == "dev_secret_change_me" {
		log.Warn().Msg("JWT_SECRET not set; using the development secret")
	}

	srv := httpserver.New(store.NewMemoryStore(), hist, signer, metrics.New("hilo"), httpserver.Options{
		ClientOrigin:  cfg.ClientOrigin,
		DefaultMax:    cfg.DefaultMax,
		DailyMax:      cfg.DailyMax,
		DailySalt:     cfg.DailySalt,
		SecureCookies: cfg.CookieSecure,
	})
	go srv.RunSweeper(ctx, cfg.SessionTTL)

	hs := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("starting go-server")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// setupLogging applies LOG_LEVEL and, with LOG_PRETTY, a console writer.
func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown LOG_LEVEL; keeping info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
