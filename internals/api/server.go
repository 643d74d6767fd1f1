// Package api exposes the question-answering system over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/edudocs/coursebot/internals/rag"
	"github.com/edudocs/coursebot/internals/tools"
)

// Assistant is the slice of the RAG system the HTTP layer calls.
type Assistant interface {
	Query(ctx context.Context, query, sessionID string) (string, []tools.Source, error)
	NewSessionID() string
	Stats(ctx context.Context) (rag.CourseStats, error)
}

type Server struct {
	assistant Assistant
	log       *slog.Logger
}

func NewServer(assistant Assistant, log *slog.Logger) *Server {
	return &Server{assistant: assistant, log: log}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/courses", s.handleCourses)
	return mux
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type queryResponse struct {
	Answer    string         `json:"answer"`
	Sources   []tools.Source `json:"sources"`
	SessionID string         `json:"session_id"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.assistant.NewSessionID()
	}

	answer, sources, err := s.assistant.Query(r.Context(), req.Query, sessionID)
	if err != nil {
		s.log.Error("query failed", "session", sessionID, "err", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	if sources == nil {
		sources = []tools.Source{}
	}
	writeJSON(w, s.log, queryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	})
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	stats, err := s.assistant.Stats(r.Context())
	if err != nil {
		s.log.Error("course stats failed", "err", err)
		http.Error(w, "stats failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.log, stats)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("write response", "err", err)
	}
}
