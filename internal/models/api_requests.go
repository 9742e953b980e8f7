package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for event dates
const DateLayout = "2006-01-02"

// ParseEventDate parses an optional YYYY-MM-DD date. Empty input yields nil.
func ParseEventDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected %s", s, DateLayout)
	}
	return &t, nil
}

type CreateEventRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Date      string `json:"date"`
	Location  string `json:"location" validate:"max=200"`
	Promotion string `json:"promotion" validate:"max=100"`
}

type CreateFightRequest struct {
	FighterA    string `json:"fighter_a" validate:"required,max=120"`
	FighterB    string `json:"fighter_b" validate:"required,max=120,nefield=FighterA"`
	WeightClass string `json:"weight_class" validate:"max=60"`
	BoutOrder   int    `json:"bout_order" validate:"gte=0"`
	TitleFight  bool   `json:"title_fight"`
}

type CreatePickRequest struct {
	FightID          uuid.UUID `json:"fight_id" validate:"required"`
	AnalystName      string    `json:"analyst_name" validate:"required,max=120"`
	Platform         string    `json:"platform" validate:"max=120"`
	SourceURL        string    `json:"source_url" validate:"omitempty,url"`
	PickedFighter    *string   `json:"picked_fighter"`
	MethodPrediction string    `json:"method_prediction" validate:"omitempty,oneof=KO/TKO Submission Decision NC DQ"`
	ConfidenceTag    string    `json:"confidence_tag" validate:"omitempty,oneof=lean confident lock"`
	ReasoningNotes   string    `json:"reasoning_notes"`
	Tags             []string  `json:"tags" validate:"dive,required,max=60"`
}

// UpdatePickRequest carries only the fields to change; nil means unchanged
type UpdatePickRequest struct {
	PickedFighter    *string   `json:"picked_fighter"`
	MethodPrediction *string   `json:"method_prediction" validate:"omitempty,oneof=KO/TKO Submission Decision NC DQ"`
	ConfidenceTag    *string   `json:"confidence_tag" validate:"omitempty,oneof=lean confident lock"`
	ReasoningNotes   *string   `json:"reasoning_notes"`
	Tags             *[]string `json:"tags"`
}

type SaveResultRequest struct {
	FightID uuid.UUID    `json:"fight_id"`
	Winner  string       `json:"winner" validate:"max=120"`
	Method  string       `json:"method" validate:"required,oneof=KO/TKO Submission Decision NC DQ"`
	Round   int          `json:"round" validate:"gte=1,lte=5"`
	Time    string       `json:"time" validate:"max=10"`
	Referee string       `json:"referee" validate:"max=120"`
	Judges  []JudgeScore `json:"judges" validate:"max=3,dive"`
}

// ToResult converts the request into a Result for the given fight
func (r SaveResultRequest) ToResult(fightID uuid.UUID) Result {
	return Result{
		FightID: fightID,
		Winner:  strings.TrimSpace(r.Winner),
		Method:  Method(r.Method),
		Round:   r.Round,
		Time:    strings.TrimSpace(r.Time),
		Referee: strings.TrimSpace(r.Referee),
		Judges:  r.Judges,
	}
}

type ResultsCardRequest struct {
	Results []SaveResultRequest `json:"results" validate:"required,min=1,dive"`
}

type ExtractRequest struct {
	URL  string `json:"url" validate:"omitempty,url"`
	Text string `json:"text"`
}

// ResolutionAction is the operator's answer for a name needing confirmation
type ResolutionAction string

const (
	ActionConfirm ResolutionAction = "confirm"
	ActionRemap   ResolutionAction = "remap"
	ActionCreate  ResolutionAction = "create"
)

type ResolutionDecision struct {
	Raw       string           `json:"raw" validate:"required"`
	Action    ResolutionAction `json:"action" validate:"required,oneof=confirm remap create"`
	Canonical string           `json:"canonical" validate:"required_if=Action remap"`
}

type CommitPick struct {
	AnalystName   string   `json:"analyst_name" validate:"required,max=120"`
	FighterA      string   `json:"fighter_a" validate:"required,max=120"`
	FighterB      string   `json:"fighter_b" validate:"required,max=120"`
	WeightClass   string   `json:"weight_class" validate:"max=60"`
	TitleFight    bool     `json:"title_fight"`
	PickedFighter string   `json:"picked_fighter" validate:"max=120"`
	Method        string   `json:"method_prediction" validate:"omitempty,oneof=KO/TKO Submission Decision NC DQ"`
	Confidence    string   `json:"confidence_tag" validate:"omitempty,oneof=lean confident lock"`
	Reasoning     string   `json:"reasoning_notes"`
	Tags          []string `json:"tags" validate:"dive,required,max=60"`
}

type CommitBatchRequest struct {
	EventName     string               `json:"event_name" validate:"required,max=200"`
	EventDate     string               `json:"event_date"`
	EventLocation string               `json:"event_location" validate:"max=200"`
	Promotion     string               `json:"promotion" validate:"max=100"`
	Platform      string               `json:"platform" validate:"max=120"`
	SourceURL     string               `json:"source_url" validate:"omitempty,url"`
	Picks         []CommitPick         `json:"picks" validate:"required,min=1,dive"`
	Decisions     []ResolutionDecision `json:"decisions" validate:"dive"`
}

type CommitBatchResponse struct {
	EventID    uuid.UUID      `json:"event_id"`
	Saved      int            `json:"saved"`
	NewAliases []FighterAlias `json:"new_aliases"`
}

type AskRequest struct {
	Question string `json:"question" validate:"required,max=1000"`
}
