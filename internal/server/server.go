// Package server exposes the log store over HTTP and streams training
// progress to websocket clients.
//
// Routes:
//
//	GET    /logs                    headers of every stored log
//	GET    /log/{session}           one log
//	GET    /log/{session}/progress  recorded progress of a session (?limit=n)
//	POST   /log/{session}           create or extend a log
//	DELETE /log/{session}           remove a log and its progress
//	GET    /ws                      progress events
//
// Every response is JSON. Failures carry {"error": "..."}.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/DuncanWalter/combobulate/internal/journal"
	"github.com/DuncanWalter/combobulate/internal/logstore"
)

// Config holds the server configuration.
type Config struct {
	Addr            string           // Listen address (default: ":8081")
	Origin          string           // Client origin allowed by CORS and the websocket; empty allows any
	ShutdownTimeout time.Duration    // Grace period for in-flight requests (default: 5s)
	Logger          *log.Logger      // Default: log.Default()
	Journal         *journal.Journal // Progress history; nil disables the progress route
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8081",
		Origin:          "http://localhost:8080",
		ShutdownTimeout: 5 * time.Second,
		Logger:          log.Default(),
	}
}

// Server serves the log API and the progress feed.
type Server struct {
	config Config
	store  *logstore.Store
	hub    *Hub
	mux    *http.ServeMux
}

// New creates a server over store, broadcasting through hub. Zero fields of
// config take their DefaultConfig values.
func New(store *logstore.Store, hub *Hub, config Config) *Server {
	defaults := DefaultConfig()
	if config.Addr == "" {
		config.Addr = defaults.Addr
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
	if hub == nil {
		hub = NewHub(config.Logger)
	}

	s := &Server{
		config: config,
		store:  store,
		hub:    hub,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /logs", s.handleList)
	s.mux.HandleFunc("GET /log/{session}", s.handleGet)
	s.mux.HandleFunc("GET /log/{session}/progress", s.handleProgress)
	s.mux.HandleFunc("POST /log/{session}", s.handleUpdate)
	s.mux.HandleFunc("DELETE /log/{session}", s.handleDelete)
	s.mux.Handle("GET /ws", hub.Handler(config.Origin))
	s.mux.HandleFunc("/", s.handleNotFound)
	return s
}

// Hub returns the server's progress hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the root handler with CORS applied.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.config.Origin)
		}
		w.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		s.mux.ServeHTTP(w, r)
	})
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.config.Logger.Printf("listening on %s", s.config.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type logsResponse struct {
	Logs []logstore.Header `json:"logs"`
}

type logResponse struct {
	Log logstore.Log `json:"log"`
}

type progressResponse struct {
	Progress []journal.Entry `json:"progress"`
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	headers, err := s.store.List()
	if err != nil {
		s.config.Logger.Printf("list logs: %v", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{"unable to process request for log headers"})
		return
	}
	s.writeJSON(w, http.StatusOK, logsResponse{Logs: headers})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	entry, err := s.store.Get(session)
	if err != nil {
		s.writeError(w, err, fmt.Sprintf("file %s.json not found", session))
		return
	}
	s.writeJSON(w, http.StatusOK, logResponse{Log: entry})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if s.config.Journal == nil {
		s.handleNotFound(w, r)
		return
	}
	session := r.PathValue("session")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{"limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	entries, err := s.config.Journal.History(r.Context(), session, limit)
	if err != nil {
		s.writeError(w, err, fmt.Sprintf("unable to read progress of %s", session))
		return
	}
	s.writeJSON(w, http.StatusOK, progressResponse{Progress: entries})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")

	var update logstore.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{"Malformed request! Unable to process"})
		return
	}

	created, err := s.store.Update(session, update)
	if err != nil {
		s.writeError(w, err, fmt.Sprintf("unable to process update for %s", session))
		return
	}
	verb := "updated"
	if created {
		verb = "created"
	}
	s.writeJSON(w, http.StatusOK, messageResponse{fmt.Sprintf("Successfully %s %s", verb, session)})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	if err := s.store.Delete(session); err != nil {
		s.writeError(w, err, fmt.Sprintf("unable to process delete for %s", session))
		return
	}
	if s.config.Journal != nil {
		if err := s.config.Journal.Forget(r.Context(), session); err != nil {
			s.writeError(w, err, fmt.Sprintf("unable to forget progress of %s", session))
			return
		}
	}
	s.writeJSON(w, http.StatusOK, messageResponse{fmt.Sprintf("Successfully deleted file %s", session)})
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusNotFound, errorResponse{"This is not the endpoint you are looking for"})
}

// writeError maps store errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, logstore.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, logstore.ErrInvalidName), errors.Is(err, logstore.ErrInvalidUpdate):
		status = http.StatusBadRequest
	case errors.Is(err, logstore.ErrMismatch):
		status = http.StatusConflict
	default:
		s.config.Logger.Printf("%s: %v", message, err)
	}
	s.writeJSON(w, status, errorResponse{message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.config.Logger.Printf("failed to write response: %v", err)
	}
}
