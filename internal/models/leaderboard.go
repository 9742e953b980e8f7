package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoreFilter narrows which picks are scored. Zero values mean "any";
// all set fields are combined with AND.
type ScoreFilter struct {
	Analyst     string     `json:"analyst,omitempty"`
	WeightClass string     `json:"weight_class,omitempty"`
	TitleOnly   bool       `json:"title_only,omitempty"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
}

// ScoredPick is one pick joined to its fight, event and (optional) result
type ScoredPick struct {
	PickID           uuid.UUID
	AnalystName      string
	PickedFighter    *string
	MethodPrediction Method
	FightID          uuid.UUID
	FightStatus      FightStatus
	WeightClass      string
	TitleFight       bool
	EventDate        *time.Time
	HasResult        bool
	Winner           string
	ResultMethod     Method
}

// MethodAccuracy is prediction accuracy for one predicted-method bucket
type MethodAccuracy struct {
	Method    Method   `json:"method"`
	Predicted int      `json:"predicted"`
	Correct   int      `json:"correct"`
	Accuracy  *float64 `json:"accuracy"`
}

// AnalystRecord is the scored record of one analyst.
// Accuracy is nil when there is no decided pick to score.
type AnalystRecord struct {
	Analyst        string           `json:"analyst"`
	Wins           int              `json:"wins"`
	Losses         int              `json:"losses"`
	NoPick         int              `json:"no_pick"`
	NoContest      int              `json:"no_contest"`
	Accuracy       *float64         `json:"accuracy"`
	MethodAccuracy []MethodAccuracy `json:"method_accuracy"`
}

// Decided is the accuracy denominator
func (r AnalystRecord) Decided() int {
	return r.Wins + r.Losses
}

// Leaderboard is the ranked list of analyst records for a filter
type Leaderboard struct {
	Filter      ScoreFilter     `json:"filter"`
	Analysts    []AnalystRecord `json:"analysts"`
	GeneratedAt time.Time       `json:"generated_at"`
}
