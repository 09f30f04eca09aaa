package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Atul17-std/pokemon-tracker/internal/progress"
	"github.com/Atul17-std/pokemon-tracker/internal/snapshot"
)

// RecordStore persists one student record per profile.
type RecordStore interface {
	// Load returns the stored record. The bool is false when the profile has
	// never been saved.
	Load(ctx context.Context, profileID string) (*progress.StudentRecord, bool, error)
	Save(ctx context.Context, profileID string, r *progress.StudentRecord) error
}

// InvalidSuffix is appended to the profile id of a document set aside because
// it could not be decoded.
const InvalidSuffix = ".invalid"

// Quarantiner is implemented by stores that can move an unreadable document
// to profileID+InvalidSuffix so the next Save does not overwrite it.
type Quarantiner interface {
	Quarantine(ctx context.Context, profileID string) error
}

// MemoryStore is an in-memory implementation of RecordStore. Records are kept
// encoded so callers never share state with the store.
type MemoryStore struct {
	docs map[string][]byte
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string][]byte),
	}
}

func (s *MemoryStore) Load(_ context.Context, profileID string) (*progress.StudentRecord, bool, error) {
	profileID, err := checkProfileID(profileID)
	if err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	data, ok := s.docs[profileID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	r, err := snapshot.Decode(data)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

func (s *MemoryStore) Save(_ context.Context, profileID string, r *progress.StudentRecord) error {
	profileID, err := checkProfileID(profileID)
	if err != nil {
		return err
	}
	data, err := snapshot.Encode(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.docs[profileID] = data
	s.mu.Unlock()
	return nil
}

// Quarantine moves the stored document aside. A missing document is not an error.
func (s *MemoryStore) Quarantine(_ context.Context, profileID string) error {
	profileID, err := checkProfileID(profileID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[profileID]
	if !ok {
		return nil
	}
	s.docs[profileID+InvalidSuffix] = data
	delete(s.docs, profileID)
	return nil
}

func checkProfileID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("profile_id is required")
	}
	return id, nil
}
