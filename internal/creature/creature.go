// Package creature fetches the creatures shown on the training team.
package creature

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Where a creature came from.
const (
	SourceAPI      = "api"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// DefaultMaxID is the highest creature id drawn at random (generations 1-8).
const DefaultMaxID = 898

const spriteURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/%d.png"

// Creature is a team member as displayed to the trainer.
type Creature struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Types    string  `json:"types"`
	HeightM  float64 `json:"height_m"`
	WeightKg float64 `json:"weight_kg"`
	Source   string  `json:"source,omitempty"`
}

// Lookup resolves a creature by id.
type Lookup interface {
	Fetch(ctx context.Context, id int) (Creature, error)
}

// Picker returns a number in [0, n).
type Picker func(n int) int

func defaultPicker(n int) int {
	return rand.IntN(n)
}

var fallbacks = []Creature{
	{ID: 0, Name: "Missingno", Image: fmt.Sprintf(spriteURL, 0), Types: "Glitch", HeightM: 3.0, WeightKg: 159.0},
	{ID: 25, Name: "Pikachu", Image: fmt.Sprintf(spriteURL, 25), Types: "Electric", HeightM: 0.4, WeightKg: 6.0},
}

// Fallbacks returns the creatures used when a lookup fails.
func Fallbacks() []Creature {
	out := make([]Creature, len(fallbacks))
	copy(out, fallbacks)
	return out
}

// Fallback picks one of the fallback creatures.
func Fallback(pick Picker) Creature {
	if pick == nil {
		pick = defaultPicker
	}
	c := fallbacks[pick(len(fallbacks))]
	c.Source = SourceFallback
	return c
}

// displayName title-cases a hyphenated API name ("mr-mime" -> "Mr-Mime").
// Casers carry state, so each call gets its own.
func displayName(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

// Slot is one of the team's positions. Unhatched slots are mystery eggs.
type Slot struct {
	Hatched  bool      `json:"hatched"`
	Creature *Creature `json:"creature,omitempty"`
}

// Team is the full set of slots shown on the dashboard.
type Team struct {
	Size  int    `json:"size"`
	Slots []Slot `json:"slots"`
}

// BuildTeam fills size slots with creatures drawn at random from ids
// [1, maxID] and the remaining slots up to slots with eggs. A failed
// lookup hatches a fallback creature instead.
func BuildTeam(ctx context.Context, l Lookup, size, slots, maxID int, pick Picker) Team {
	if pick == nil {
		pick = defaultPicker
	}
	if maxID <= 0 {
		maxID = DefaultMaxID
	}
	size = min(max(size, 0), slots)

	team := Team{Size: size, Slots: make([]Slot, 0, slots)}
	for i := 0; i < slots; i++ {
		if i >= size {
			team.Slots = append(team.Slots, Slot{})
			continue
		}
		c, err := l.Fetch(ctx, pick(maxID)+1)
		if err != nil {
			c = Fallback(pick)
		}
		team.Slots = append(team.Slots, Slot{Hatched: true, Creature: &c})
	}
	return team
}
