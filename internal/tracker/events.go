package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event types logged after settled operations.
const (
	EventCourseAdded     = "course_added"
	EventCourseUpdated   = "course_updated"
	EventSubTopicToggled = "subtopic_toggled"
	EventProfileUpdated  = "profile_updated"
	EventSynced          = "synced"
	EventRestored        = "restored"
)

// Event is one analytics row describing a settled operation.
type Event struct {
	ID        string
	ProfileID string
	EventType string
	Data      map[string]any
	CreatedAt time.Time
}

// prepared validates e and fills the generated fields.
func (e Event) prepared(now func() time.Time) (Event, error) {
	if e.EventType == "" {
		return e, fmt.Errorf("event_type is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	return e, nil
}

// EventLogger receives one event per settled operation.
type EventLogger interface {
	LogEvent(event Event) error
}

// NopEventLogger drops every event.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error { return nil }

// MemoryEventLogger keeps events in process.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	ev, err := event.prepared(time.Now)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
	return nil
}

// Events returns the logged events, oldest first. Passing types keeps only
// events of those types.
func (l *MemoryEventLogger) Events(types ...string) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, 0, len(l.events))
	for _, ev := range l.events {
		if len(types) == 0 || slices.Contains(types, ev.EventType) {
			out = append(out, ev)
		}
	}
	return out
}

// PostgresEventLogger appends events to the events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	id, err := checkProfileID(event.ProfileID)
	if err != nil {
		return err
	}
	event.ProfileID = id
	ev, err := event.prepared(time.Now)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if _, err := l.pool.Exec(ctx,
		`INSERT INTO events (id, profile_id, event_type, data, created_at)
		 VALUES ($1::uuid, $2, $3, $4::jsonb, $5)`,
		ev.ID, ev.ProfileID, ev.EventType, string(data), ev.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert %s event: %w", ev.EventType, err)
	}

	slog.Debug("event logged", "type", ev.EventType, "profile_id", ev.ProfileID)
	return nil
}
