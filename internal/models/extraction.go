package models

// ArticleType distinguishes one-analyst articles from staff-pick roundups
type ArticleType string

const (
	ArticleSingle ArticleType = "single"
	ArticleStaff  ArticleType = "staff"
)

// Extraction is the structured payload produced by the LLM extraction step.
// Every field is optional on the wire; see flex_json.go for coercion rules.
type Extraction struct {
	ArticleType   ArticleType        `json:"article_type"`
	Platform      string             `json:"platform"`
	EventLocation string             `json:"event_location"`
	Analysts      []ExtractedAnalyst `json:"analysts"`
}

// ExtractedAnalyst groups the picks attributed to one analyst
type ExtractedAnalyst struct {
	AnalystName string          `json:"analyst_name"`
	Picks       []ExtractedPick `json:"picks"`

	// Malformed is set when the entry was not a JSON object
	Malformed bool `json:"-"`
}

// ExtractedPick is a single raw prediction as returned by the model
type ExtractedPick struct {
	FighterA         string `json:"fighter_a"`
	FighterB         string `json:"fighter_b"`
	WeightClass      string `json:"weight_class"`
	PickedFighter    string `json:"picked_fighter"`
	NicknameUsed     string `json:"nickname_used"`
	AltSpellingNote  string `json:"alt_spelling_note"`
	MethodPrediction string `json:"method_prediction"`
	ConfidenceTag    string `json:"confidence_tag"`
	ReasoningNotes   string `json:"reasoning_notes"`
	FlagForReview    bool   `json:"flag_for_review"`

	// Malformed is set when the entry was not a JSON object
	Malformed bool `json:"-"`
}

// VerdictKind is the outcome of matching a raw name against the alias table
type VerdictKind string

const (
	VerdictMatched     VerdictKind = "matched"
	VerdictAmbiguous   VerdictKind = "ambiguous"
	VerdictNoCandidate VerdictKind = "no_candidate"
)

// NameVerdict is the resolver's answer for one raw name.
// Canonical is set only for matched verdicts; Candidate carries the best
// suggestion otherwise.
type NameVerdict struct {
	Raw       string      `json:"raw"`
	Kind      VerdictKind `json:"kind"`
	Canonical string      `json:"canonical,omitempty"`
	Candidate string      `json:"candidate,omitempty"`
	Score     float64     `json:"score"`
}

// Resolved reports whether the name can be used without confirmation
func (v NameVerdict) Resolved() bool {
	return v.Kind == VerdictMatched
}

// CandidatePick is one normalized (analyst, fight) record awaiting review
type CandidatePick struct {
	Index           int           `json:"index"`
	AnalystName     string        `json:"analyst_name"`
	FighterA        string        `json:"fighter_a"`
	FighterB        string        `json:"fighter_b"`
	WeightClass     string        `json:"weight_class,omitempty"`
	FighterAVerdict NameVerdict   `json:"fighter_a_verdict"`
	FighterBVerdict NameVerdict   `json:"fighter_b_verdict"`
	PickedFighter   string        `json:"picked_fighter,omitempty"`
	PickedVerdict   *NameVerdict  `json:"picked_verdict,omitempty"`
	Method          Method        `json:"method_prediction,omitempty"`
	Confidence      ConfidenceTag `json:"confidence_tag"`
	Reasoning       string        `json:"reasoning_notes,omitempty"`
	NicknameUsed    string        `json:"nickname_used,omitempty"`
	AltSpellingNote string        `json:"alt_spelling_note,omitempty"`
	SourceFlagged   bool          `json:"source_flagged"`
	NeedsReview     bool          `json:"needs_review"`
	Issues          []string      `json:"issues,omitempty"`
}

// ExtractionReview is what the operator sees after extraction
type ExtractionReview struct {
	ArticleType   ArticleType     `json:"article_type"`
	Platform      string          `json:"platform,omitempty"`
	EventLocation string          `json:"event_location,omitempty"`
	SourceURL     string          `json:"source_url,omitempty"`
	Candidates    []CandidatePick `json:"candidates"`
	NeedsReview   int             `json:"needs_review"`
}
