package logic

import (
	"fmt"
	"strings"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// ResolutionState tracks a raw name through human confirmation
type ResolutionState string

const (
	ResolutionPending   ResolutionState = "pending"
	ResolutionConfirmed ResolutionState = "confirmed"
	ResolutionRemapped  ResolutionState = "remapped"
	ResolutionCreated   ResolutionState = "created"
)

// Resolution is the confirm/remap/create state for one raw name.
// Matched verdicts start Confirmed; everything else starts Pending.
type Resolution struct {
	Verdict   models.NameVerdict `json:"verdict"`
	State     ResolutionState    `json:"state"`
	Canonical string             `json:"canonical,omitempty"`
}

func NewResolution(v models.NameVerdict) *Resolution {
	if v.Kind == models.VerdictMatched {
		return &Resolution{Verdict: v, State: ResolutionConfirmed, Canonical: v.Canonical}
	}
	return &Resolution{Verdict: v, State: ResolutionPending}
}

// Settled reports whether the name may be saved
func (r *Resolution) Settled() bool {
	return r.State != ResolutionPending
}

// overridable is true while the operator may still change the outcome:
// pending names, and names the resolver auto-accepted.
func (r *Resolution) overridable() bool {
	return r.State == ResolutionPending ||
		(r.State == ResolutionConfirmed && r.Verdict.Kind == models.VerdictMatched)
}

// Confirm accepts the suggestion. With no suggestion, the raw name becomes a
// new canonical fighter.
func (r *Resolution) Confirm() error {
	switch {
	case r.State == ResolutionConfirmed:
		return nil
	case r.State != ResolutionPending:
		return fmt.Errorf("%w: %q is %s", ErrResolutionSettled, r.Verdict.Raw, r.State)
	case r.Verdict.Kind == models.VerdictAmbiguous:
		r.State = ResolutionConfirmed
		r.Canonical = r.Verdict.Candidate
		return nil
	default:
		return r.Create()
	}
}

// Remap makes the raw name an alias of an existing canonical name
func (r *Resolution) Remap(canonical string) error {
	canonical = strings.TrimSpace(canonical)
	if canonical == "" {
		return fmt.Errorf("%w: remap of %q needs a canonical name", ErrUnknownCanonical, r.Verdict.Raw)
	}
	if !r.overridable() {
		return fmt.Errorf("%w: %q is %s", ErrResolutionSettled, r.Verdict.Raw, r.State)
	}
	r.State = ResolutionRemapped
	r.Canonical = canonical
	return nil
}

// Create registers the raw name as a brand-new canonical fighter
func (r *Resolution) Create() error {
	if !r.overridable() {
		return fmt.Errorf("%w: %q is %s", ErrResolutionSettled, r.Verdict.Raw, r.State)
	}
	r.State = ResolutionCreated
	r.Canonical = strings.TrimSpace(r.Verdict.Raw)
	return nil
}

// Decide applies an operator decision
func (r *Resolution) Decide(d models.ResolutionDecision) error {
	switch d.Action {
	case models.ActionConfirm:
		return r.Confirm()
	case models.ActionRemap:
		return r.Remap(d.Canonical)
	case models.ActionCreate:
		return r.Create()
	default:
		return fmt.Errorf("unknown resolution action %q", d.Action)
	}
}

// NewAlias is the alias row the resolution implies. Remapped adds raw ->
// chosen canonical, Created adds the self-referential raw -> raw.
func (r *Resolution) NewAlias() (models.FighterAlias, bool) {
	switch r.State {
	case ResolutionRemapped, ResolutionCreated:
		return models.FighterAlias{CanonicalName: r.Canonical, Alias: strings.TrimSpace(r.Verdict.Raw)}, true
	default:
		return models.FighterAlias{}, false
	}
}
