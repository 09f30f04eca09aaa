// Package snapshot defines the persisted JSON form of a student record.
// Every store and the sync backend read and write records through it.
package snapshot

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Atul17-std/pokemon-tracker/internal/progress"
)

//go:embed schema.json
var schemaJSON string

// ErrInvalid is returned when a stored document does not match the schema.
var ErrInvalid = errors.New("invalid record document")

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiled() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	})
	return schema, schemaErr
}

// Encode serializes a record.
func Encode(r *progress.StudentRecord) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("encode record: record is nil")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

// Decode validates data against the record schema, decodes it, and
// recomputes the derived fields so a restored record is always settled.
func Decode(data []byte) (*progress.StudentRecord, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var r progress.StudentRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if r.Semesters == nil {
		r.Semesters = make(map[int]*progress.SemesterRecord)
	}
	for n, sem := range r.Semesters {
		if sem == nil {
			r.Semesters[n] = &progress.SemesterRecord{}
		}
	}
	progress.Recompute(&r)
	return &r, nil
}

// Validate checks data against the record schema.
func Validate(data []byte) error {
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("compile record schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	return nil
}
