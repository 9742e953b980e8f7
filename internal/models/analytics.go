package models

import "github.com/google/uuid"

// TagCount is a tag and how often it was attached
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ConsensusPick summarizes which side analysts favor for one fight
type ConsensusPick struct {
	FightID             uuid.UUID `json:"fight_id"`
	Fight               string    `json:"fight"`
	FighterA            string    `json:"fighter_a"`
	FighterB            string    `json:"fighter_b"`
	ConsensusFighter    string    `json:"consensus_fighter"`
	ConsensusCount      int       `json:"consensus_count"`
	OpposingCount       int       `json:"opposing_count"`
	TotalPredictions    int       `json:"total_predictions"`
	ConsensusPercentage float64   `json:"consensus_percentage"`
}

// InsideDistancePick lists finish predictions for one fight
type InsideDistancePick struct {
	FightID                uuid.UUID `json:"fight_id"`
	Fight                  string    `json:"fight"`
	FighterA               string    `json:"fighter_a"`
	FighterB               string    `json:"fighter_b"`
	FavoredFighter         string    `json:"favored_fighter"`
	FinishPredictionCount  int       `json:"finish_prediction_count"`
	Methods                []Method  `json:"methods"`
	TotalFinishPredictions int       `json:"total_finish_predictions"`
}

// UnderdogBacker is an analyst who picked the less popular side
type UnderdogBacker struct {
	Name      string `json:"name"`
	Reasoning string `json:"reasoning,omitempty"`
}

// UnderdogPick is a fight where a minority of analysts back the other side
type UnderdogPick struct {
	FightID            uuid.UUID        `json:"fight_id"`
	Fight              string           `json:"fight"`
	FighterA           string           `json:"fighter_a"`
	FighterB           string           `json:"fighter_b"`
	Underdog           string           `json:"underdog"`
	UnderdogCount      int              `json:"underdog_count"`
	FavoriteCount      int              `json:"favorite_count"`
	TotalPredictions   int              `json:"total_predictions"`
	UnderdogPercentage float64          `json:"underdog_percentage"`
	ValueScore         float64          `json:"value_score"`
	Backers            []UnderdogBacker `json:"backers"`
	TopTags            []TagCount       `json:"top_tags"`
}

// SideContext aggregates the picks backing one fighter
type SideContext struct {
	Fighter           string         `json:"fighter"`
	Picks             int            `json:"picks"`
	TopTags           []TagCount     `json:"top_tags"`
	Methods           map[Method]int `json:"methods"`
	ExampleRationales []string       `json:"example_rationales"`
	Analysts          []string       `json:"analysts"`
}

// FightContext aggregates every pick on a fight, split by side
type FightContext struct {
	Fight            Fight       `json:"fight"`
	EventName        string      `json:"event"`
	ResultEntered    bool        `json:"results_entered"`
	TotalPredictions int         `json:"total_predictions"`
	SideA            SideContext `json:"fighter_a_context"`
	SideB            SideContext `json:"fighter_b_context"`
}

// EventConsensus is the consensus view of a card
type EventConsensus struct {
	Event          string          `json:"event"`
	ResultsEntered bool            `json:"results_entered"`
	Picks          []ConsensusPick `json:"consensus_picks"`
}

// EventInsideDistance is the finish-prediction view of a card
type EventInsideDistance struct {
	Event string               `json:"event"`
	Picks []InsideDistancePick `json:"inside_distance_picks"`
}

// EventUnderdogs is the underdog view of a card
type EventUnderdogs struct {
	Event          string         `json:"event"`
	ResultsEntered bool           `json:"results_entered"`
	Picks          []UnderdogPick `json:"underdog_picks"`
}

// AskResponse is the answer to a free-form question about picks
type AskResponse struct {
	QueryType string `json:"query_type"`
	Event     string `json:"event,omitempty"`
	Answer    string `json:"answer"`
}
