package cloudsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Atul17-std/pokemon-tracker/internal/platform/cache"
	"github.com/Atul17-std/pokemon-tracker/internal/progress"
	"github.com/Atul17-std/pokemon-tracker/internal/snapshot"
)

// ErrCorrupt means a stored envelope does not match its checksum.
var ErrCorrupt = errors.New("sync document checksum mismatch")

// Pusher sends a record to the remote store.
type Pusher interface {
	Push(ctx context.Context, r *progress.StudentRecord, id Identity) error
}

// Envelope is the document stored per trainer.
type Envelope struct {
	UID      string          `json:"uid"`
	PushedAt time.Time       `json:"pushed_at"`
	Checksum string          `json:"checksum"`
	Record   json.RawMessage `json:"record"`
}

// KV is the part of a Redis client the pusher needs.
type KV interface {
	cache.Getter
	cache.Setter
}

// RedisPusher stores envelopes in Redis under trainers:{uid}.
type RedisPusher struct {
	kv     KV
	signer *Signer
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisPusher creates a pusher. A zero ttl keeps documents forever.
func NewRedisPusher(kv KV, signer *Signer, ttl time.Duration) *RedisPusher {
	return &RedisPusher{kv: kv, signer: signer, ttl: ttl, now: time.Now}
}

// Key returns the document key for uid.
func Key(uid string) string {
	return "trainers:" + strings.TrimSpace(uid)
}

// Push verifies the identity and writes the record's envelope.
func (p *RedisPusher) Push(ctx context.Context, r *progress.StudentRecord, id Identity) error {
	if err := p.signer.Verify(id); err != nil {
		return err
	}
	data, err := snapshot.Encode(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	env := Envelope{
		UID:      strings.TrimSpace(id.UID),
		PushedAt: p.now().UTC(),
		Checksum: Checksum(data),
		Record:   data,
	}
	if err := cache.SetJSON(ctx, p.kv, Key(id.UID), env, p.ttl); err != nil {
		return fmt.Errorf("push record: %w", err)
	}
	return nil
}

// Pull fetches the trainer's last pushed record. The bool is false when
// nothing has been pushed yet.
func (p *RedisPusher) Pull(ctx context.Context, id Identity) (*progress.StudentRecord, bool, error) {
	if err := p.signer.Verify(id); err != nil {
		return nil, false, err
	}
	var env Envelope
	err := cache.GetJSON(ctx, p.kv, Key(id.UID), &env)
	if errors.Is(err, cache.ErrMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pull record: %w", err)
	}
	if Checksum(env.Record) != env.Checksum {
		return nil, false, ErrCorrupt
	}
	r, err := snapshot.Decode(env.Record)
	if err != nil {
		return nil, false, fmt.Errorf("decode record: %w", err)
	}
	return r, true, nil
}
