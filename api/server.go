package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"CloudSentry/app"
	"CloudSentry/filter"
	"CloudSentry/internal/logger"
	"CloudSentry/output"
	"CloudSentry/providers"
)

// Server exposes the filtered views, suspicious-activity detection, and
// summary projections as a local read-only JSON API. Each request
// recomputes the full cycle (filter, detect, project) over the cached
// fetch, so the response always reflects the requested criteria.
type Server struct {
	httpServer  *http.Server
	application *app.App
	port        int
	// Resource limiting
	requestSemaphore chan struct{} // Semaphore to limit concurrent requests
	maxConcurrent    int           // Maximum number of concurrent requests
}

// errorResponse is the JSON error body returned by every handler
type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a new API server backed by an initialized application
func NewServer(application *app.App, port int) *Server {
	// Use number of CPUs as a baseline for concurrent requests
	maxConcurrent := runtime.NumCPU() * 2
	if maxConcurrent < 4 {
		maxConcurrent = 4
	}

	return &Server{
		application:      application,
		port:             port,
		requestSemaphore: make(chan struct{}, maxConcurrent),
		maxConcurrent:    maxConcurrent,
	}
}

// routes builds the request router
func (s *Server) routes() *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("/api/providers", s.resourceLimitMiddleware(s.handleProviders))
	router.HandleFunc("/api/logs", s.resourceLimitMiddleware(s.handleLogs))
	router.HandleFunc("/api/suspicious", s.resourceLimitMiddleware(s.handleSuspicious))
	router.HandleFunc("/api/summary", s.resourceLimitMiddleware(s.handleSummary))
	router.HandleFunc("/api/export", s.resourceLimitMiddleware(s.handleExport))

	// Simple health endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	})

	return router
}

// Start starts the API server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:        s.routes(),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Info("Starting CloudSentry API server on http://127.0.0.1:%d", s.port)

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the API server with an optional timeout
func (s *Server) Stop(timeout ...time.Duration) error {
	shutdownTimeout := 10 * time.Second
	if len(timeout) > 0 && timeout[0] > 0 {
		shutdownTimeout = timeout[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server with %v timeout", shutdownTimeout)
	return s.httpServer.Shutdown(ctx)
}

// GetPort returns the server port
func (s *Server) GetPort() int {
	return s.port
}

// resourceLimitMiddleware limits the number of concurrent requests
func (s *Server) resourceLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case s.requestSemaphore <- struct{}{}:
			defer func() {
				<-s.requestSemaphore
			}()
			next(w, r)
		default:
			// No slots available, return 429 Too Many Requests
			w.Header().Set("Retry-After", "5")
			http.Error(w, "Too many requests, please try again later", http.StatusTooManyRequests)
		}
	}
}

// criteriaFromQuery builds filter criteria from the shared query
// parameters: start, end (YYYY-MM-DD), event (repeated), user (repeated),
// sensitive (boolean).
func criteriaFromQuery(r *http.Request) (filter.Criteria, error) {
	var criteria filter.Criteria
	query := r.URL.Query()

	if start := query.Get("start"); start != "" {
		t, err := time.ParseInLocation("2006-01-02", start, time.UTC)
		if err != nil {
			return criteria, fmt.Errorf("invalid start date %q (want YYYY-MM-DD)", start)
		}
		criteria.Start = t
	}
	if end := query.Get("end"); end != "" {
		t, err := time.ParseInLocation("2006-01-02", end, time.UTC)
		if err != nil {
			return criteria, fmt.Errorf("invalid end date %q (want YYYY-MM-DD)", end)
		}
		criteria.End = t
	}

	criteria.EventNames = query["event"]
	criteria.Users = query["user"]

	if sensitive := query.Get("sensitive"); sensitive != "" {
		criteria.SensitiveOnly = sensitive == "true" || sensitive == "1"
	}

	if err := criteria.Validate(); err != nil {
		return criteria, err
	}

	return criteria, nil
}

// providerFromQuery returns the requested provider, defaulting to the
// configured one
func (s *Server) providerFromQuery(r *http.Request) string {
	if provider := r.URL.Query().Get("provider"); provider != "" {
		return strings.ToLower(provider)
	}
	return s.application.Config.Provider
}

// buildView runs the interaction cycle for the request and writes any
// failure as a JSON error. Returns nil if an error was already written.
func (s *Server) buildView(w http.ResponseWriter, r *http.Request) *app.View {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil
	}

	criteria, err := criteriaFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}

	view, err := s.application.BuildView(r.Context(), s.providerFromQuery(r), criteria)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, providers.ErrUnknownProvider) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return nil
	}

	return view
}

// handleProviders lists the registered provider names
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, map[string]interface{}{
		"providers": s.application.Providers(),
		"default":   s.application.Config.Provider,
	})
}

// handleLogs returns the filtered record collection with per-record
// sensitivity flags and fetch metadata
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	view := s.buildView(w, r)
	if view == nil {
		return
	}
	writeJSON(w, view)
}

// handleSuspicious returns the suspicious users for the filtered view
func (s *Server) handleSuspicious(w http.ResponseWriter, r *http.Request) {
	view := s.buildView(w, r)
	if view == nil {
		return
	}

	writeJSON(w, map[string]interface{}{
		"status":     view.Status,
		"provider":   view.Provider,
		"threshold":  s.application.Rules().AlertThreshold(),
		"suspicious": view.Suspicious,
	})
}

// handleSummary returns the three summary projections for the filtered view
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	view := s.buildView(w, r)
	if view == nil {
		return
	}

	writeJSON(w, map[string]interface{}{
		"status":      view.Status,
		"provider":    view.Provider,
		"bySource":    view.BySource,
		"byDay":       view.ByDay,
		"byEventType": view.ByEventType,
	})
}

// handleExport streams the filtered view as a delimited-text download
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" {
		writeError(w, http.StatusBadRequest, "only csv export is available for download")
		return
	}

	view := s.buildView(w, r)
	if view == nil {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered_logs.csv"`)
	w.WriteHeader(http.StatusOK)

	if err := output.WriteCSV(w, view.Records); err != nil {
		// Headers are already sent; all we can do is log
		logger.Error("Failed to stream CSV export: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}
