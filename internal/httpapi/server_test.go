package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Atul17-std/pokemon-tracker/internal/cloudsync"
	"github.com/Atul17-std/pokemon-tracker/internal/creature"
	"github.com/Atul17-std/pokemon-tracker/internal/progress"
	"github.com/Atul17-std/pokemon-tracker/internal/snapshot"
	"github.com/Atul17-std/pokemon-tracker/internal/tracker"
)

func testCatalog() progress.Catalog {
	return progress.Catalog{Semesters: map[int][]progress.CourseTemplate{
		1: {
			{Code: "CS101", Name: "Programming in C", Credits: 3, Category: progress.CategoryCoding, SubTopics: []string{"Loops", "Pointers"}},
			{Code: "MA101", Name: "Calculus", Credits: 3, Category: progress.CategoryMath},
		},
	}}
}

type stubPusher struct{ err error }

func (p stubPusher) Push(context.Context, *progress.StudentRecord, cloudsync.Identity) error {
	return p.err
}

func newTestServer(t *testing.T, opts ...tracker.Option) http.Handler {
	t.Helper()
	opts = append(opts, tracker.WithPicker(func(int) int { return 1 }))
	tr, err := tracker.New(context.Background(), "ash", testCatalog(), tracker.NewMemoryStore(), opts...)
	if err != nil {
		t.Fatalf("tracker.New() error = %v", err)
	}
	return New(tr,
		WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("metrics")) })),
	).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
		{
			name:       "metrics mounted",
			path:       "/metrics",
			wantStatus: http.StatusOK,
			wantBody:   "metrics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestReadyz_FailingCheck(t *testing.T) {
	tr, err := tracker.New(context.Background(), "ash", testCatalog(), tracker.NewMemoryStore())
	if err != nil {
		t.Fatalf("tracker.New() error = %v", err)
	}
	h := New(tr, WithReadinessCheck("cache", func(context.Context) error {
		return errors.New("connection refused")
	})).Handler()

	rec := do(t, h, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAddCourse(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"graded", `{"semester":1,"code":"cs101","name":"Programming in C","grade":"a","credits":3}`, http.StatusOK},
		{"in progress", `{"semester":1,"code":"MA101","name":"Calculus","credits":3}`, http.StatusOK},
		{"unknown grade", `{"semester":1,"code":"MA101","name":"Calculus","grade":"Z","credits":3}`, http.StatusBadRequest},
		{"zero credits", `{"semester":1,"code":"MA101","name":"Calculus","grade":"A","credits":0}`, http.StatusBadRequest},
		{"bad json", `{"semester":`, http.StatusBadRequest},
		{"unknown field", `{"semester":1,"code":"X","name":"Y","credits":1,"extra":true}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/courses", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	var s tracker.Summary
	rec := do(t, h, http.MethodGet, "/api/progress", "")
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	// 27 points over 6 credits.
	if s.CGPA != "4.50" || s.CreditsEarned != 3 {
		t.Errorf("summary = cgpa %s, earned %d", s.CGPA, s.CreditsEarned)
	}
}

func TestToggleSubTopic(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"ok", "/api/courses/1/CS101/subtopics/0", http.StatusOK},
		{"lowercase code", "/api/courses/1/cs101/subtopics/1", http.StatusOK},
		{"missing course", "/api/courses/1/XX000/subtopics/0", http.StatusNotFound},
		{"missing index", "/api/courses/1/CS101/subtopics/5", http.StatusNotFound},
		{"bad semester", "/api/courses/one/CS101/subtopics/0", http.StatusBadRequest},
		{"bad index", "/api/courses/1/CS101/subtopics/x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPut, tt.path, `{"completed":true}`)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	var res tracker.Result
	rec := do(t, h, http.MethodPut, "/api/courses/1/CS101/subtopics/0", `{"completed":false}`)
	json.NewDecoder(rec.Body).Decode(&res)
	if len(res.Summary.CodingCourses) != 1 || res.Summary.CodingCourses[0].Completion != 50 {
		t.Errorf("coding courses = %+v", res.Summary.CodingCourses)
	}
}

func TestUpdateProfile(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPut, "/api/profile", `{"name":"Ash","enrollment_no":"RA2111","specialization":"AI"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodPut, "/api/profile", `{"name":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want 400", rec.Code)
	}

	var log []tracker.LogEntry
	rec = do(t, h, http.MethodGet, "/api/log", "")
	if err := json.NewDecoder(rec.Body).Decode(&log); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if len(log) != 1 || log[0].Message != "Trainer settings saved for Ash." {
		t.Errorf("log = %+v", log)
	}
}

func TestSync(t *testing.T) {
	tests := []struct {
		name       string
		opts       []tracker.Option
		wantStatus int
		wantNotice bool
	}{
		{"not configured", nil, http.StatusBadGateway, true},
		{"signed out", []tracker.Option{tracker.WithPusher(stubPusher{err: cloudsync.ErrUnauthenticated})}, http.StatusUnauthorized, true},
		{"remote down", []tracker.Option{tracker.WithPusher(stubPusher{err: errors.New("timeout")})}, http.StatusBadGateway, true},
		{"ok", []tracker.Option{tracker.WithPusher(stubPusher{})}, http.StatusOK, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, tt.opts...)
			rec := do(t, h, http.MethodPost, "/api/sync", `{"uid":"ash","token":"t"}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var body errorBody
			json.NewDecoder(rec.Body).Decode(&body)
			if tt.wantNotice && body.Notice == "" {
				t.Error("expected a notice")
			}
		})
	}
}

func TestRestore_NotConfigured(t *testing.T) {
	h := newTestServer(t, tracker.WithPusher(stubPusher{}))
	rec := do(t, h, http.MethodPost, "/api/sync/restore", `{"uid":"ash","token":"t"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestTeam(t *testing.T) {
	h := newTestServer(t)
	var team creature.Team
	rec := do(t, h, http.MethodGet, "/api/team", "")
	if err := json.NewDecoder(rec.Body).Decode(&team); err != nil {
		t.Fatalf("decode team: %v", err)
	}
	if team.Size != 1 || len(team.Slots) != progress.TeamSlots {
		t.Fatalf("team = %+v", team)
	}
	if c := team.Slots[0].Creature; c == nil || c.Name != "Pikachu" {
		t.Errorf("slot 0 = %+v, want fallback Pikachu", c)
	}
}

func TestTranscript(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/transcript.xlsx", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	if got, _ := f.GetCellValue("Semester 1", "A2"); got != "CS101" {
		t.Errorf("Semester 1!A2 = %q, want CS101", got)
	}
}

func TestTranscript_RenderFailure(t *testing.T) {
	tr, err := tracker.New(context.Background(), "ash", testCatalog(), tracker.NewMemoryStore())
	if err != nil {
		t.Fatalf("tracker.New() error = %v", err)
	}
	srv := New(tr)
	srv.transcript = func(w io.Writer, _ *progress.StudentRecord, _ progress.Catalog) error {
		w.Write([]byte("PK\x03\x04partial"))
		return errors.New("disk full")
	}

	rec := do(t, srv.Handler(), http.MethodGet, "/api/transcript.xlsx", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if strings.Contains(rec.Body.String(), "partial") {
		t.Errorf("partial workbook leaked into the response: %q", rec.Body.String())
	}
}

type unreadableStore struct{ *tracker.MemoryStore }

func (s unreadableStore) Load(context.Context, string) (*progress.StudentRecord, bool, error) {
	return nil, false, fmt.Errorf("decode: %w", snapshot.ErrInvalid)
}

func TestProgress_ShowsStartupNotice(t *testing.T) {
	tr, err := tracker.New(context.Background(), "ash", testCatalog(), unreadableStore{tracker.NewMemoryStore()})
	if err != nil {
		t.Fatalf("tracker.New() error = %v", err)
	}
	h := New(tr).Handler()

	rec := do(t, h, http.MethodGet, "/api/progress", "")
	var s tracker.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(s.Notices) != 1 || !strings.Contains(s.Notices[0], "unreadable") {
		t.Errorf("Notices = %v, want the unreadable notice", s.Notices)
	}
}

func TestReport(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/report.txt", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "CGPA: 0.00 (0,0% of scale)") {
		t.Errorf("report = %s", rec.Body.String())
	}
}
