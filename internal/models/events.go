package models

import (
	"time"

	"github.com/google/uuid"
)

// FightStatus is the lifecycle state of a bout
type FightStatus string

const (
	FightScheduled FightStatus = "scheduled"
	FightCompleted FightStatus = "completed"
	FightCancelled FightStatus = "cancelled"
)

// Event is a fight card (e.g. "UFC 309")
type Event struct {
	ID        uuid.UUID  `json:"event_id"`
	Name      string     `json:"name"`
	Date      *time.Time `json:"date,omitempty"`
	Location  string     `json:"location,omitempty"`
	Promotion string     `json:"promotion,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Fight is a single bout on an event. Fights are cancelled, never deleted.
type Fight struct {
	ID          uuid.UUID   `json:"fight_id"`
	EventID     uuid.UUID   `json:"event_id"`
	FighterA    string      `json:"fighter_a"`
	FighterB    string      `json:"fighter_b"`
	WeightClass string      `json:"weight_class,omitempty"`
	BoutOrder   int         `json:"bout_order"`
	TitleFight  bool        `json:"title_fight"`
	Status      FightStatus `json:"status"`
}

// Label renders the bout as "A vs B"
func (f Fight) Label() string {
	return f.FighterA + " vs " + f.FighterB
}

// FighterAlias maps an alternate spelling to its canonical name
type FighterAlias struct {
	ID            uuid.UUID `json:"alias_id"`
	CanonicalName string    `json:"canonical_name"`
	Alias         string    `json:"alias"`
}
