// Package tracker owns the student record: every change is validated,
// recomputed, persisted, logged, and broadcast from here.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Atul17-std/pokemon-tracker/internal/cloudsync"
	"github.com/Atul17-std/pokemon-tracker/internal/creature"
	"github.com/Atul17-std/pokemon-tracker/internal/progress"
	"github.com/Atul17-std/pokemon-tracker/internal/snapshot"
)

// ErrExternal marks failures of collaborators outside the record: storage,
// sync, and lookups.
var ErrExternal = errors.New("external service failure")

// LogLimit is how many training log entries are kept.
const LogLimit = 10

// Mutation results reported to the Recorder.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultUnsaved  = "unsaved"
	ResultError    = "error"
)

// Observer is notified with the settled summary after every change.
// Notify must not block.
type Observer interface {
	Notify(Summary)
}

// Recorder receives operational counters.
type Recorder interface {
	Mutation(op, result string)
	SyncPush(result string)
	CreatureLookup(source string)
	CreditsEarned(credits int)
}

// Puller restores a record from the remote store.
type Puller interface {
	Pull(ctx context.Context, id cloudsync.Identity) (*progress.StudentRecord, bool, error)
}

type nopRecorder struct{}

func (nopRecorder) Mutation(string, string) {}
func (nopRecorder) SyncPush(string)         {}
func (nopRecorder) CreatureLookup(string)   {}
func (nopRecorder) CreditsEarned(int)       {}

// Tracker serializes all access to one profile's record.
type Tracker struct {
	mu        sync.Mutex
	profileID string
	catalog   progress.Catalog
	record    *progress.StudentRecord
	log       []LogEntry

	store     RecordStore
	events    EventLogger
	pusher    cloudsync.Pusher
	lookup    creature.Lookup
	maxID     int
	pick      creature.Picker
	recorder  Recorder
	observers []Observer
	now       func() time.Time

	// pending notices are shown on the next summary and delivered with the
	// next settled mutation.
	pending []string
	// holdSaves is set when an unreadable stored document could not be set
	// aside; saving would overwrite it.
	holdSaves bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithEventLogger sets the analytics event logger.
func WithEventLogger(l EventLogger) Option {
	return func(t *Tracker) {
		t.events = l
	}
}

// WithPusher enables cloud sync.
func WithPusher(p cloudsync.Pusher) Option {
	return func(t *Tracker) {
		t.pusher = p
	}
}

// WithLookup sets the creature lookup used for the team and the id range.
func WithLookup(l creature.Lookup, maxID int) Option {
	return func(t *Tracker) {
		t.lookup = l
		t.maxID = maxID
	}
}

// WithPicker sets the random source for creature ids.
func WithPicker(p creature.Picker) Option {
	return func(t *Tracker) {
		t.pick = p
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(t *Tracker) {
		t.recorder = r
	}
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(t *Tracker) {
		t.observers = append(t.observers, o)
	}
}

// WithClock sets the time source for log entries and events.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New loads the profile's record from store, seeding a fresh one from the
// catalog when none exists or the stored document is unreadable. An
// unreadable document is moved aside when the store supports it; otherwise
// the tracker stops saving so the document survives.
func New(ctx context.Context, profileID string, catalog progress.Catalog, store RecordStore, opts ...Option) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is nil")
	}
	t := &Tracker{
		profileID: profileID,
		catalog:   catalog,
		store:     store,
		events:    NopEventLogger{},
		recorder:  nopRecorder{},
		maxID:     creature.DefaultMaxID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	r, found, err := store.Load(ctx, profileID)
	switch {
	case errors.Is(err, snapshot.ErrInvalid):
		slog.Warn("stored record is invalid, starting fresh", "profile_id", profileID, "error", err)
		found = false
		t.setAsideInvalid(ctx)
	case err != nil:
		return nil, fmt.Errorf("%w: load record: %w", ErrExternal, err)
	}
	if !found {
		r = progress.Seed(catalog)
		slog.Info("seeded new record", "profile_id", profileID, "semesters", len(r.Semesters))
	}
	t.record = r
	t.recorder.CreditsEarned(r.TotalCreditsEarned)
	return t, nil
}

func (t *Tracker) setAsideInvalid(ctx context.Context) {
	q, ok := t.store.(Quarantiner)
	if !ok {
		t.holdSaves = true
		t.pending = append(t.pending, "Stored progress was unreadable; starting fresh. Changes will not be saved until the stored copy is repaired.")
		return
	}
	if err := q.Quarantine(ctx, t.profileID); err != nil {
		slog.Warn("failed to set aside invalid record", "profile_id", t.profileID, "error", err)
		t.holdSaves = true
		t.pending = append(t.pending, "Stored progress was unreadable; starting fresh. Changes will not be saved until the stored copy is repaired.")
		return
	}
	t.pending = append(t.pending, fmt.Sprintf("Stored progress was unreadable; starting fresh. The unreadable copy was kept as %q.", t.profileID+InvalidSuffix))
}

// Catalog returns the catalog the record was seeded from.
func (t *Tracker) Catalog() progress.Catalog {
	return t.catalog
}

// AddCourse records a grade for a course, adding it when absent.
func (t *Tracker) AddCourse(ctx context.Context, in progress.CourseInput) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var tmpl *progress.CourseTemplate
	if ct, ok := t.catalog.Template(in.Semester, in.Code); ok {
		tmpl = &ct
	}
	_, existed := t.record.Course(in.Semester, in.Code)

	if err := progress.AddOrUpdateCourse(t.record, in, tmpl); err != nil {
		t.recorder.Mutation("add_course", ResultRejected)
		return Result{}, err
	}

	c, _ := t.record.Course(in.Semester, in.Code)
	msg := fmt.Sprintf("Captured new course: %s (%s) with grade %s.", c.Name, c.Code, gradeLabel(c.Grade))
	eventType := EventCourseAdded
	if existed {
		msg = fmt.Sprintf("Updated grade for %s (%s) to %s.", c.Name, c.Code, gradeLabel(c.Grade))
		eventType = EventCourseUpdated
	}
	return t.settle(ctx, "add_course", eventType, msg, map[string]any{
		"semester": in.Semester,
		"code":     c.Code,
		"grade":    string(c.Grade),
	}), nil
}

// ToggleSubTopic marks one sub-topic of a course.
func (t *Tracker) ToggleSubTopic(ctx context.Context, semester int, code string, index int, completed bool) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := progress.ToggleSubTopic(t.record, semester, code, index, completed); err != nil {
		t.recorder.Mutation("toggle_subtopic", ResultRejected)
		return Result{}, err
	}

	c, _ := t.record.Course(semester, code)
	state := "incomplete"
	if completed {
		state = "completed"
	}
	msg := fmt.Sprintf("Topic %q in %s marked as %s.", c.SubTopics[index].Name, c.Name, state)
	return t.settle(ctx, "toggle_subtopic", EventSubTopicToggled, msg, map[string]any{
		"semester":  semester,
		"code":      c.Code,
		"index":     index,
		"completed": completed,
	}), nil
}

// UpdateProfile saves the trainer settings.
func (t *Tracker) UpdateProfile(ctx context.Context, p progress.Profile) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := progress.UpdateProfile(t.record, p); err != nil {
		t.recorder.Mutation("update_profile", ResultRejected)
		return Result{}, err
	}

	msg := fmt.Sprintf("Trainer settings saved for %s.", t.record.Profile.Name)
	return t.settle(ctx, "update_profile", EventProfileUpdated, msg, nil), nil
}

// Sync pushes a copy of the record to the remote store. The record itself
// is never changed by a sync, successful or not.
func (t *Tracker) Sync(ctx context.Context, id cloudsync.Identity) (Result, error) {
	if t.pusher == nil {
		t.recorder.SyncPush(ResultError)
		return Result{}, fmt.Errorf("%w: cloud sync is not configured", ErrExternal)
	}

	snap := t.Record()
	if err := t.pusher.Push(ctx, snap, id); err != nil {
		t.recorder.SyncPush(ResultError)
		slog.Warn("cloud sync failed", "profile_id", t.profileID, "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrExternal, err)
	}
	t.recorder.SyncPush(ResultOK)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.appendLog("Cloud sync complete!")
	t.logEvent(EventSynced, map[string]any{"uid": id.UID})
	return Result{Summary: Summarize(t.record, t.catalog)}, nil
}

// Restore replaces the record with the last one pushed for id.
func (t *Tracker) Restore(ctx context.Context, id cloudsync.Identity) (Result, error) {
	puller, ok := t.pusher.(Puller)
	if !ok {
		return Result{}, fmt.Errorf("%w: cloud restore is not configured", ErrExternal)
	}

	r, found, err := puller.Pull(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrExternal, err)
	}
	if !found {
		return Result{}, fmt.Errorf("%w: no synced record for %s", ErrExternal, id.UID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.record = r
	return t.settle(ctx, "restore", EventRestored, "Progress restored from the cloud.", map[string]any{"uid": id.UID}), nil
}

// Summary returns the current dashboard view.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Summarize(t.record, t.catalog)
	if len(t.pending) > 0 {
		s.Notices = append([]string{}, t.pending...)
	}
	return s
}

// Record returns a deep copy of the settled record.
func (t *Tracker) Record() *progress.StudentRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return progress.Clone(t.record)
}

// TrainingLog returns the log, newest first.
func (t *Tracker) TrainingLog() []LogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]LogEntry{}, t.log...)
}

// Team builds the creature team for the current progress. Lookups happen
// outside the lock.
func (t *Tracker) Team(ctx context.Context) creature.Team {
	t.mu.Lock()
	size := progress.TeamSize(t.record, t.catalog)
	t.mu.Unlock()

	lookup := t.lookup
	if lookup == nil {
		lookup = offlineLookup{}
	}
	team := creature.BuildTeam(ctx, lookup, size, progress.TeamSlots, t.maxID, t.pick)
	for _, s := range team.Slots {
		if s.Hatched {
			t.recorder.CreatureLookup(s.Creature.Source)
		}
	}
	return team
}

// settle runs the post-mutation steps. Callers hold t.mu.
func (t *Tracker) settle(ctx context.Context, op, eventType, msg string, data map[string]any) Result {
	var res Result
	res.Notices = append(res.Notices, t.pending...)
	t.pending = nil

	result := ResultOK
	if t.holdSaves {
		result = ResultUnsaved
		res.Notices = append(res.Notices, "Progress could not be saved and will be lost on restart.")
	} else if err := t.store.Save(ctx, t.profileID, t.record); err != nil {
		result = ResultUnsaved
		slog.Warn("failed to save record", "profile_id", t.profileID, "op", op, "error", err)
		res.Notices = append(res.Notices, "Progress could not be saved and will be lost on restart.")
	}
	t.recorder.Mutation(op, result)
	t.recorder.CreditsEarned(t.record.TotalCreditsEarned)

	t.appendLog(msg)
	t.logEvent(eventType, data)

	res.Summary = Summarize(t.record, t.catalog)
	for _, o := range t.observers {
		o.Notify(res.Summary)
	}
	return res
}

func (t *Tracker) appendLog(msg string) {
	entry := LogEntry{At: t.now(), Message: msg}
	t.log = append([]LogEntry{entry}, t.log...)
	if len(t.log) > LogLimit {
		t.log = t.log[:LogLimit]
	}
}

func (t *Tracker) logEvent(eventType string, data map[string]any) {
	err := t.events.LogEvent(Event{
		ProfileID: t.profileID,
		EventType: eventType,
		Data:      data,
		CreatedAt: t.now(),
	})
	if err != nil {
		slog.Warn("failed to log event", "type", eventType, "error", err)
	}
}

func gradeLabel(g progress.Grade) string {
	if g == progress.GradeNone {
		return "in progress"
	}
	return string(g)
}

type offlineLookup struct{}

func (offlineLookup) Fetch(context.Context, int) (creature.Creature, error) {
	return creature.Creature{}, errors.New("creature lookup is not configured")
}
