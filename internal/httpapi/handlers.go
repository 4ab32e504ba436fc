// Package httpapi exposes the analysis pipeline and discovery store over
// HTTP, plus a WebSocket progress feed.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"exoplanet-lab/internal/analysis"
	"exoplanet-lab/internal/observability"
	"exoplanet-lab/internal/storage"
	"exoplanet-lab/internal/tabular"
)

// maxUploadBytes caps one uploaded light curve file (64 MiB).
const maxUploadBytes = 64 << 20

// API wires HTTP routes to the pipeline and stores.
type API struct {
	pipeline *analysis.Pipeline
	store    storage.DiscoveredObjectStore
	hub      *ProgressHub
	logger   *log.Logger
	started  time.Time
}

// Options configures the API.
type Options struct {
	Pipeline *analysis.Pipeline
	Store    storage.DiscoveredObjectStore
	Hub      *ProgressHub
	Logger   *log.Logger
}

// New creates the API.
func New(opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[httpapi] ", log.LstdFlags|log.Lshortfile)
	}
	return &API{
		pipeline: opts.Pipeline,
		store:    opts.Store,
		hub:      opts.Hub,
		logger:   logger,
		started:  time.Now(),
	}
}

// Register installs all routes on the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/analyze", a.handleAnalyze)
	mux.HandleFunc("/api/discoveries", a.handleDiscoveries)
	mux.HandleFunc("/health", a.handleHealth)
	mux.HandleFunc("/status", a.handleStatus)
	mux.Handle("/metrics", observability.Handler())
	if a.hub != nil {
		mux.Handle("/ws/progress", a.hub)
	}
}

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Error            string   `json:"error"`
	AvailableColumns []string `json:"available_columns,omitempty"`
}

// handleAnalyze accepts a multipart upload ("file" part, optional
// "external_id" field), runs the pipeline and returns the structured result.
func (a *API) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse upload: %v", err), nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing \"file\" part", nil)
		return
	}
	defer file.Close()

	scratch, err := saveScratch(file)
	if err != nil {
		a.logger.Printf("scratch file: %v", err)
		writeError(w, http.StatusInternalServerError, "could not buffer upload", nil)
		return
	}
	defer os.Remove(scratch)

	f, err := os.Open(scratch)
	if err != nil {
		a.logger.Printf("open scratch file: %v", err)
		writeError(w, http.StatusInternalServerError, "could not read upload", nil)
		return
	}
	defer f.Close()

	table, err := tabular.ReadTable(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := a.pipeline.Analyze(r.Context(), table, r.FormValue("external_id"))
	if err != nil {
		var ambiguous *tabular.AmbiguousColumnsError
		if errors.As(err, &ambiguous) {
			writeError(w, http.StatusBadRequest, err.Error(), ambiguous.Available)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// saveScratch copies the uploaded part to a temp file and returns its path.
// The caller removes it; an error path here removes it immediately.
func saveScratch(src io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "lightcurve-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), nil
}

// handleDiscoveries lists stored discoveries, newest first. Optional ?limit=N.
func (a *API) handleDiscoveries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required", nil)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", nil)
			return
		}
		limit = n
	}

	objects, err := a.store.List(r.Context(), limit)
	if err != nil {
		a.logger.Printf("list discoveries: %v", err)
		observability.RecordStoreError("list")
		writeError(w, http.StatusInternalServerError, "could not list discoveries", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":       len(objects),
		"discoveries": objects,
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	ProgressClients int    `json:"progress_clients"`
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	clients := 0
	if a.hub != nil {
		clients = a.hub.ClientCount()
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:          "running",
		Uptime:          time.Since(a.started).Round(time.Second).String(),
		ProgressClients: clients,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, columns []string) {
	writeJSON(w, status, errorResponse{Error: msg, AvailableColumns: columns})
}
