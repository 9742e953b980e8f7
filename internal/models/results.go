package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxJudges is the number of scorecards recorded for a decision
const MaxJudges = 3

// JudgeScore is one official's scorecard
type JudgeScore struct {
	Name  string `json:"name" validate:"required"`
	Score string `json:"score" validate:"required"`
}

// Result is the official outcome of a fight. One per fight.
type Result struct {
	ID        uuid.UUID    `json:"result_id"`
	FightID   uuid.UUID    `json:"fight_id"`
	Winner    string       `json:"winner"`
	Method    Method       `json:"method"`
	Round     int          `json:"round"`
	Time      string       `json:"time"`
	Referee   string       `json:"referee,omitempty"`
	Judges    []JudgeScore `json:"judges,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// NoContest reports whether the result has no winner to score against
func (r Result) NoContest() bool {
	return r.Winner == "" || r.Method == MethodNC
}
