// Package server exposes the timesheet reports and strain chart over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/worklog"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// maxUploadBytes caps multipart uploads held in memory.
const maxUploadBytes = 32 << 20

// Server serves the JSON API on top of the configured stores.
type Server struct {
	cfg    *contract.Config
	mgr    contract.StoreManager
	loader contract.WorklogLoader
	log     zerolog.Logger
	metrics *metrics
	http    *http.Server
}

// New creates a server for cfg. The config is cloned per request, so it is never mutated.
func New(cfg *contract.Config, mgr contract.StoreManager, log zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		mgr:     mgr,
		loader:  worklog.NewLoader(),
		log:     log,
		metrics: newMetrics(),
	}
	s.http = &http.Server{
		Addr:              cfg.ServeAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Router registers every route of the API.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.metrics.middleware)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/snapshots", s.uploadSnapshot).Methods(http.MethodPost)
	api.HandleFunc("/snapshots", s.listSnapshots).Methods(http.MethodGet)
	api.HandleFunc("/snapshots/{id}", s.deleteSnapshot).Methods(http.MethodDelete)
	api.HandleFunc("/strain", s.strainChart).Methods(http.MethodGet)
	api.HandleFunc("/reports/{kind}", s.report).Methods(http.MethodGet)
	api.HandleFunc("/download/{kind}", s.download).Methods(http.MethodGet)
	api.HandleFunc("/holidays", s.getHolidays).Methods(http.MethodGet)
	api.HandleFunc("/holidays", s.putHolidays).Methods(http.MethodPut)
	api.HandleFunc("/holidays/toggle", s.toggleHoliday).Methods(http.MethodPost)
	api.HandleFunc("/holidays/upload", s.uploadHolidays).Methods(http.MethodPost)
	api.HandleFunc("/calendar", s.calendar).Methods(http.MethodGet)
	api.HandleFunc("/preferences/{name}", s.getPreference).Methods(http.MethodGet)
	api.HandleFunc("/preferences/{name}", s.putPreference).Methods(http.MethodPut)

	return r
}

// Handler wraps the router with request logging, CORS and panic recovery.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(panicLogger{log: s.log}),
		handlers.PrintRecoveryStack(false),
	)
	return requestLogger(s.log)(recovery(cors(s.Router())))
}

// Start serves until the server is shut down.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info().Msg("http server stopping")
	return s.http.Shutdown(ctx)
}

// Run serves until ctx is cancelled, then shuts down within ten seconds.
func (s *Server) Run(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)

	group.Go(s.Start)
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	})

	return group.Wait()
}
