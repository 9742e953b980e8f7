package models

import (
	"time"

	"github.com/google/uuid"
)

// ConfidenceTag is the analyst's self-reported conviction on a pick
type ConfidenceTag string

const (
	ConfidenceLean      ConfidenceTag = "lean"
	ConfidenceConfident ConfidenceTag = "confident"
	ConfidenceLock      ConfidenceTag = "lock"
)

// Method is how a fight ended (or is predicted to end)
type Method string

const (
	MethodNone       Method = ""
	MethodKOTKO      Method = "KO/TKO"
	MethodSubmission Method = "Submission"
	MethodDecision   Method = "Decision"
	MethodNC         Method = "NC"
	MethodDQ         Method = "DQ"
)

// IsFinish reports whether the method ends the fight inside the distance
func (m Method) IsFinish() bool {
	return m == MethodKOTKO || m == MethodSubmission
}

// AnalystPick is a confirmed prediction by one analyst for one fight
type AnalystPick struct {
	ID               uuid.UUID     `json:"pick_id"`
	FightID          uuid.UUID     `json:"fight_id"`
	AnalystName      string        `json:"analyst_name"`
	Platform         string        `json:"platform,omitempty"`
	SourceURL        string        `json:"source_url,omitempty"`
	PickedFighter    *string       `json:"picked_fighter"`
	MethodPrediction Method        `json:"method_prediction,omitempty"`
	ConfidenceTag    ConfidenceTag `json:"confidence_tag"`
	ReasoningNotes   string        `json:"reasoning_notes,omitempty"`
	Tags             []string      `json:"tags"`
	CreatedAt        time.Time     `json:"created_at"`
}
