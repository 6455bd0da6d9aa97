// Package api serves links, folders and the classifier over JSON/HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/user/linkfind/internal/db"
	"github.com/user/linkfind/internal/organizer"
)

// UserHeader carries the acting user. Requests without it act as the
// configured default user.
const UserHeader = "X-User-ID"

// Config contains server configuration
type Config struct {
	Addr        string
	CORSOrigins []string
	DefaultUser string
}

// Server represents the API server
type Server struct {
	store     *db.Store
	organizer *organizer.Organizer
	metrics   *Metrics
	logger    *slog.Logger
	cfg       Config
	router    *mux.Router
	handler   http.Handler
	server    *http.Server
}

// NewServer wires routes and middleware. It does not start listening.
func NewServer(cfg Config, store *db.Store, org *organizer.Organizer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	s := &Server{
		store:     store,
		organizer: org,
		metrics:   NewMetrics(),
		logger:    logger,
		cfg:       cfg,
		router:    mux.NewRouter(),
	}
	s.registerRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", UserHeader},
		MaxAge:         86400,
	})
	s.handler = otelhttp.NewHandler(c.Handler(s.logRequests(s.router)), "linkfind-api")

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(s.metrics.instrument)

	r.HandleFunc("/api/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/api/links", s.handleListLinks).Methods("GET")
	r.HandleFunc("/api/links", s.handleCreateLink).Methods("POST")
	r.HandleFunc("/api/links/{id}", s.handleUpdateLink).Methods("PUT")
	r.HandleFunc("/api/links/{id}", s.handleDeleteLink).Methods("DELETE")

	r.HandleFunc("/api/folders", s.handleListFolders).Methods("GET")
	r.HandleFunc("/api/folders", s.handleCreateFolder).Methods("POST")
	r.HandleFunc("/api/folders/{id}", s.handleUpdateFolder).Methods("PUT")
	r.HandleFunc("/api/folders/{id}", s.handleDeleteFolder).Methods("DELETE")

	r.HandleFunc("/api/ml/analyze", s.handleAnalyze).Methods("POST")
	r.HandleFunc("/api/ml/suggest", s.handleSuggest).Methods("POST")
	r.HandleFunc("/api/ml/categories", s.handleCategories).Methods("GET")

	r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the API server
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.cfg.Addr)
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if r.URL.Path != "/api/health" && r.URL.Path != "/metrics" {
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"user", s.userID(r),
				"duration", time.Since(start),
			)
		}
	})
}

func (s *Server) userID(r *http.Request) string {
	if u := r.Header.Get(UserHeader); u != "" {
		return u
	}
	return s.cfg.DefaultUser
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountLinks(s.userID(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get count")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"links":  count,
		"time":   time.Now(),
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps store and organiser errors to status codes.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrLinkNotFound), errors.Is(err, db.ErrFolderNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, db.ErrLinkExists), errors.Is(err, db.ErrFolderExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, db.ErrFolderDepth), errors.Is(err, organizer.ErrURLRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
