// Package httpapi exposes the tracker over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/Atul17-std/pokemon-tracker/internal/cloudsync"
	"github.com/Atul17-std/pokemon-tracker/internal/progress"
	"github.com/Atul17-std/pokemon-tracker/internal/report"
	"github.com/Atul17-std/pokemon-tracker/internal/tracker"
)

const (
	maxBodyBytes = 64 << 10
	checkTimeout = 2 * time.Second
)

// Check reports whether a dependency is ready.
type Check func(ctx context.Context) error

// Server holds the HTTP handlers.
type Server struct {
	tracker *tracker.Tracker
	live    http.Handler
	metrics http.Handler
	checks  map[string]Check

	transcript func(io.Writer, *progress.StudentRecord, progress.Catalog) error
}

// Option configures a Server.
type Option func(*Server)

// WithLive mounts the websocket hub at /ws.
func WithLive(h http.Handler) Option {
	return func(s *Server) {
		s.live = h
	}
}

// WithMetrics mounts the metrics handler at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithReadinessCheck adds a named check to /readyz.
func WithReadinessCheck(name string, c Check) Option {
	return func(s *Server) {
		s.checks[name] = c
	}
}

// New creates a server over t.
func New(t *tracker.Tracker, opts ...Option) *Server {
	s := &Server{
		tracker:    t,
		checks:     make(map[string]Check),
		transcript: report.Transcript,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/progress", s.handleProgress)
	mux.HandleFunc("POST /api/courses", s.handleAddCourse)
	mux.HandleFunc("PUT /api/courses/{semester}/{code}/subtopics/{index}", s.handleToggleSubTopic)
	mux.HandleFunc("PUT /api/profile", s.handleUpdateProfile)
	mux.HandleFunc("POST /api/sync", s.handleSync)
	mux.HandleFunc("POST /api/sync/restore", s.handleRestore)
	mux.HandleFunc("GET /api/team", s.handleTeam)
	mux.HandleFunc("GET /api/log", s.handleLog)
	mux.HandleFunc("GET /api/transcript.xlsx", s.handleTranscript)
	mux.HandleFunc("GET /api/report.txt", s.handleReport)

	if s.live != nil {
		mux.Handle("GET /ws", s.live)
	}
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	failed := make(map[string]string)
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Summary())
}

type courseRequest struct {
	Semester int    `json:"semester"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Grade    string `json:"grade"`
	Credits  int    `json:"credits"`
}

func (s *Server) handleAddCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if !decode(w, r, &req) {
		return
	}

	grade := progress.GradeNone
	if req.Grade != "" {
		g, err := progress.ParseGrade(req.Grade)
		if err != nil {
			writeError(w, err)
			return
		}
		grade = g
	}

	res, err := s.tracker.AddCourse(r.Context(), progress.CourseInput{
		Semester: req.Semester,
		Code:     req.Code,
		Name:     req.Name,
		Grade:    grade,
		Credits:  req.Credits,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type toggleRequest struct {
	Completed bool `json:"completed"`
}

func (s *Server) handleToggleSubTopic(w http.ResponseWriter, r *http.Request) {
	semester, err := strconv.Atoi(r.PathValue("semester"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "semester must be a number"})
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "index must be a number"})
		return
	}

	var req toggleRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := s.tracker.ToggleSubTopic(r.Context(), semester, r.PathValue("code"), index, req.Completed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p progress.Profile
	if !decode(w, r, &p) {
		return
	}
	res, err := s.tracker.UpdateProfile(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var id cloudsync.Identity
	if !decode(w, r, &id) {
		return
	}
	res, err := s.tracker.Sync(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var id cloudsync.Identity
	if !decode(w, r, &id) {
		return
	}
	res, err := s.tracker.Restore(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Team(r.Context()))
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.TrainingLog())
}

// handleTranscript renders the workbook fully before sending a status, so a
// failed render is a 500 rather than a truncated download.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.transcript(&buf, s.tracker.Record(), s.tracker.Catalog()); err != nil {
		slog.Error("failed to render transcript", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "could not render transcript"})
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="transcript.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to send transcript", "error", err)
	}
}

var reportLanguages = language.NewMatcher([]language.Tag{
	language.English,
	language.German,
	language.French,
	language.Hindi,
})

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	tag, _ := language.MatchStrings(reportLanguages, r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
	var buf bytes.Buffer
	if err := report.Text(&buf, s.tracker.Summary(), tag); err != nil {
		slog.Error("failed to render report", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "could not render report"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to send report", "error", err)
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Notice string `json:"notice,omitempty"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case progress.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case progress.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, cloudsync.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error(), Notice: "Please sign in to sync your progress."})
	case errors.Is(err, tracker.ErrExternal):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error(), Notice: "The cloud service is unavailable. Your progress is still saved on this device."})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}
