package creature

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubLookup struct {
	calls []int
	err   error
}

func (s *stubLookup) Fetch(_ context.Context, id int) (Creature, error) {
	s.calls = append(s.calls, id)
	if s.err != nil {
		return Creature{}, s.err
	}
	return Creature{ID: id, Name: "Bulbasaur", Source: SourceAPI}, nil
}

// fixedPicker always returns v, clamped to the range.
func fixedPicker(v int) Picker {
	return func(n int) int { return min(v, n-1) }
}

func TestBuildTeam(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		wantHatched int
	}{
		{"one", 1, 1},
		{"three", 3, 3},
		{"full", 6, 6},
		{"over", 9, 6},
		{"negative", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &stubLookup{}
			team := BuildTeam(context.Background(), l, tt.size, 6, 898, fixedPicker(6))

			if len(team.Slots) != 6 {
				t.Fatalf("len(Slots) = %d, want 6", len(team.Slots))
			}
			if team.Size != tt.wantHatched {
				t.Errorf("Size = %d, want %d", team.Size, tt.wantHatched)
			}
			hatched := 0
			for i, s := range team.Slots {
				if s.Hatched {
					hatched++
					if s.Creature == nil {
						t.Fatalf("slot %d hatched without creature", i)
					}
				} else if s.Creature != nil {
					t.Errorf("slot %d is an egg with a creature", i)
				}
			}
			if hatched != tt.wantHatched {
				t.Errorf("hatched = %d, want %d", hatched, tt.wantHatched)
			}
			for _, id := range l.calls {
				if id != 7 {
					t.Errorf("fetched id %d, want 7", id)
				}
			}
		})
	}
}

func TestBuildTeam_FallbackOnError(t *testing.T) {
	l := &stubLookup{err: errors.New("offline")}
	team := BuildTeam(context.Background(), l, 2, 6, 898, fixedPicker(1))

	for i := 0; i < 2; i++ {
		c := team.Slots[i].Creature
		if c == nil || c.Source != SourceFallback {
			t.Fatalf("slot %d = %+v, want fallback creature", i, c)
		}
		if c.Name != "Pikachu" {
			t.Errorf("slot %d name = %q, want Pikachu", i, c.Name)
		}
	}
}

func TestFallback(t *testing.T) {
	if got := Fallback(fixedPicker(0)); got.ID != 0 || got.Name != "Missingno" || got.Types != "Glitch" {
		t.Errorf("Fallback(0) = %+v", got)
	}
	if got := Fallback(fixedPicker(1)); got.ID != 25 || got.Name != "Pikachu" {
		t.Errorf("Fallback(1) = %+v", got)
	}
	if got := Fallback(nil); got.Source != SourceFallback {
		t.Errorf("Fallback(nil).Source = %q", got.Source)
	}

	all := Fallbacks()
	all[0].Name = "changed"
	if Fallbacks()[0].Name != "Missingno" {
		t.Error("Fallbacks() returned shared slice")
	}
}

type memKV struct {
	data map[string]string
}

func (m *memKV) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memKV) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func TestCachedLookup(t *testing.T) {
	next := &stubLookup{}
	kv := &memKV{data: map[string]string{}}
	l := NewCachedLookup(next, kv, time.Hour)
	ctx := context.Background()

	first, err := l.Fetch(ctx, 1)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if first.Source != SourceAPI {
		t.Errorf("first Source = %q, want api", first.Source)
	}
	if _, ok := kv.data["creatures:1"]; !ok {
		t.Fatal("creature was not cached")
	}

	second, err := l.Fetch(ctx, 1)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if second.Source != SourceCache || second.Name != "Bulbasaur" {
		t.Errorf("second = %+v, want cached Bulbasaur", second)
	}
	if len(next.calls) != 1 {
		t.Errorf("next called %d times, want 1", len(next.calls))
	}
}

func TestCachedLookup_PropagatesError(t *testing.T) {
	next := &stubLookup{err: errors.New("offline")}
	l := NewCachedLookup(next, &memKV{data: map[string]string{}}, 0)
	if _, err := l.Fetch(context.Background(), 3); err == nil {
		t.Fatal("Fetch() expected error")
	}
}
