package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/slide/pkg/api/handlers"
	"github.com/cbodonnell/slide/pkg/api/middleware"
	"github.com/cbodonnell/slide/pkg/log"
	"github.com/cbodonnell/slide/pkg/repositories"
	"github.com/cbodonnell/slide/pkg/state"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port         int
	TLS          *TLSConfig
	StateManager state.StateManager
	// Repository is optional; without one the run routes are not served.
	Repository repositories.Repository
	// Subscriber is optional; without one the stream route is not served.
	Subscriber handlers.Subscriber
}

// NewAPIServer creates a new http.Server for inspecting a running simulation.
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewRouter(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewRouter returns the routes of the API server.
func NewRouter(opts NewAPIServerOptions) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.NewLoggingMiddleware(), middleware.NewCORSMiddleware())

	r.HandleFunc("/healthz", handlers.HandleHealth()).Methods(http.MethodGet)
	r.HandleFunc("/state", handlers.HandleGetState(opts.StateManager)).Methods(http.MethodGet, http.MethodOptions)

	if opts.Repository != nil {
		r.HandleFunc("/runs", handlers.HandleListRuns(opts.Repository)).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/runs/{runID}", handlers.HandleGetRun(opts.Repository)).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/runs/{runID}/checkpoint", handlers.HandleGetCheckpoint(opts.Repository)).Methods(http.MethodGet, http.MethodOptions)
	}
	if opts.Subscriber != nil {
		r.HandleFunc("/stream", handlers.HandleStream(opts.Subscriber)).Methods(http.MethodGet)
	}

	return r
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
