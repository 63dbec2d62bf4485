// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/common"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/copybook"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/decoder"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/sqlite"
)

// Server exposes the copybook compiler and record decoder over HTTP,
// backed by the SQLite catalog.
type Server struct {
	router  chi.Router
	catalog *sqlite.Store
	cfg     Config
}

// Config controls upload limits and decode defaults.
type Config struct {
	MaxUploadBytes  int64
	DefaultCodePage string
}

// DefaultConfig returns the standard configuration used when no
// overrides are provided.
func DefaultConfig() Config {
	return Config{
		MaxUploadBytes:  64 << 20,
		DefaultCodePage: "cp037",
	}
}

// Merge overlays non-zero configuration from the override onto the
// base configuration.
func (c Config) Merge(override Config) Config {
	result := c
	if override.MaxUploadBytes > 0 {
		result.MaxUploadBytes = override.MaxUploadBytes
	}
	if strings.TrimSpace(override.DefaultCodePage) != "" {
		result.DefaultCodePage = strings.TrimSpace(override.DefaultCodePage)
	}
	return result
}

func NewServer(catalog *sqlite.Store, cfg *Config) (*Server, error) {
	logger := common.Logger()
	if catalog == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	configuration := DefaultConfig()
	if cfg != nil {
		configuration = configuration.Merge(*cfg)
	}
	logger.Info("api: building server",
		"max_upload_bytes", configuration.MaxUploadBytes,
		"default_code_page", configuration.DefaultCodePage,
	)
	srv := &Server{
		router:  chi.NewRouter(),
		catalog: catalog,
		cfg:     configuration,
	}
	srv.routes()
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/v1/copybooks", s.handleCompile)
	s.router.Get("/v1/copybooks", s.handleListCopybooks)
	s.router.Get("/v1/copybooks/{id}", s.handleGetCopybook)
	s.router.Get("/v1/copybooks/{id}/runs", s.handleListRuns)
	s.router.Post("/v1/decode", s.handleDecode)
	s.router.Get("/v1/activity", s.handleActivity)
	s.router.Get("/v1/logs", s.handleLogs)
	s.router.Get("/debug/vars", expvar.Handler().ServeHTTP)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps compiler and decoder failures onto HTTP statuses:
// input that cannot be parsed is 400, input that parses but cannot be
// processed is 422.
func statusFor(err error) int {
	var syntaxErr *copybook.SyntaxError
	var encodingErr *decoder.EncodingError
	if errors.As(err, &syntaxErr) || errors.As(err, &encodingErr) {
		return http.StatusBadRequest
	}
	var semanticErr *copybook.SemanticError
	var boundaryErr *decoder.BoundaryError
	var fieldErr *decoder.FieldError
	if errors.As(err, &semanticErr) || errors.As(err, &boundaryErr) || errors.As(err, &fieldErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
