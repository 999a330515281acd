// Package server wires the checker service into an HTTP server.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"symptom-checker/internal/checker"
	"symptom-checker/internal/config"
	"symptom-checker/internal/kv"
	"symptom-checker/internal/platform/telegram"
	"symptom-checker/internal/report"
)

const shutdownTimeout = 10 * time.Second

// NewRouter mounts the checker API under /api with request logging,
// panic recovery and permissive CORS.
func NewRouter(h *checker.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS for frontend
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Client-ID")
			if r.Method == "OPTIONS" {
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		checker.RegisterRoutes(r, h)
	})
	return r
}

// Run serves the API until ctx is done or the config file changes, then
// shuts down gracefully.
func Run(ctx context.Context, cfg config.Config) error {
	// 1. Infrastructure
	store, err := kv.Open(ctx, kv.Options{
		Driver:      cfg.StoreDriver,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisAddr:   cfg.RedisAddr,
	})
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info().Str("driver", cfg.StoreDriver).Msg("History store ready")

	// 2. Clients
	var tgClient report.TelegramClient
	if cfg.TelegramToken != "" {
		tgClient = telegram.NewClient(cfg.TelegramToken)
	}
	if cfg.DoctorChatID == 0 {
		log.Warn().Msg("DOCTOR_CHAT_ID is not set or invalid. Urgent alerts will not be sent.")
	}

	// 3. Services
	reportSvc := report.NewService(tgClient, cfg.DoctorChatID)
	checkerSvc := checker.NewService(store, reportSvc, checker.ServiceConfig{
		AnalysisInterval: cfg.AnalysisInterval,
		SessionTTL:       cfg.SessionTTL,
		SweepInterval:    cfg.SweepInterval,
	})

	// 4. Router
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(checker.NewHandler(checkerSvc)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return checkerSvc.Run(ctx)
	})
	if cfg.Path != "" {
		g.Go(func() error {
			return config.Watch(ctx, cfg.Path, func() {
				log.Info().Str("path", cfg.Path).Msg("Config changed, shutting down for restart")
				cancel()
			})
		})
	}

	return g.Wait()
}
