package logic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// ParseExtraction decodes an extraction payload. Only a payload that is not a
// JSON object, or has no analysts array, is rejected; every other field is
// optional.
func ParseExtraction(raw []byte) (*models.Extraction, error) {
	clean := []byte(stripCodeFences(string(raw)))

	var top map[string]json.RawMessage
	if err := json.Unmarshal(clean, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionMalformed, err)
	}
	analysts, ok := top["analysts"]
	if !ok {
		return nil, fmt.Errorf("%w: missing analysts", ErrExtractionMalformed)
	}
	if trimmed := bytes.TrimSpace(analysts); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: analysts is not an array", ErrExtractionMalformed)
	}

	var ext models.Extraction
	if err := json.Unmarshal(clean, &ext); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionMalformed, err)
	}
	return &ext, nil
}

// stripCodeFences removes a ```json ... ``` wrapper if the model added one
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// Normalizer flattens an extraction into reviewable candidate picks
type Normalizer struct {
	resolver *Resolver
}

func NewNormalizer(resolver *Resolver) *Normalizer {
	return &Normalizer{resolver: resolver}
}

// Normalize emits one candidate per (analyst, pick) in input order. Nothing
// is dropped: incomplete entries come back flagged with their issues.
func (n *Normalizer) Normalize(idx *AliasIndex, ext *models.Extraction) *models.ExtractionReview {
	review := &models.ExtractionReview{
		ArticleType:   inferArticleType(ext),
		Platform:      strings.TrimSpace(ext.Platform),
		EventLocation: strings.TrimSpace(ext.EventLocation),
		Candidates:    []models.CandidatePick{},
	}

	for _, analyst := range ext.Analysts {
		name := strings.TrimSpace(analyst.AnalystName)
		if analyst.Malformed {
			review.Candidates = append(review.Candidates, n.placeholder(idx, len(review.Candidates), "", "analyst entry is not an object"))
			continue
		}
		for _, p := range analyst.Picks {
			var c models.CandidatePick
			if p.Malformed {
				c = n.placeholder(idx, len(review.Candidates), name, "pick entry is not an object")
			} else {
				c = n.candidate(idx, len(review.Candidates), name, p)
			}
			review.Candidates = append(review.Candidates, c)
		}
	}

	for _, c := range review.Candidates {
		if c.NeedsReview {
			review.NeedsReview++
		}
	}
	return review
}

func (n *Normalizer) candidate(idx *AliasIndex, index int, analyst string, p models.ExtractedPick) models.CandidatePick {
	c := models.CandidatePick{
		Index:           index,
		AnalystName:     analyst,
		FighterA:        strings.TrimSpace(p.FighterA),
		FighterB:        strings.TrimSpace(p.FighterB),
		WeightClass:     strings.TrimSpace(p.WeightClass),
		PickedFighter:   strings.TrimSpace(p.PickedFighter),
		Method:          NormalizeMethod(p.MethodPrediction),
		Confidence:      NormalizeConfidence(p.ConfidenceTag),
		Reasoning:       strings.TrimSpace(p.ReasoningNotes),
		NicknameUsed:    strings.TrimSpace(p.NicknameUsed),
		AltSpellingNote: strings.TrimSpace(p.AltSpellingNote),
		SourceFlagged:   p.FlagForReview,
	}

	if c.AnalystName == "" {
		c.Issues = append(c.Issues, "missing analyst name")
	}
	if c.FighterA == "" {
		c.Issues = append(c.Issues, "missing fighter_a")
	}
	if c.FighterB == "" {
		c.Issues = append(c.Issues, "missing fighter_b")
	}

	// Each name is resolved on its own; one weak match does not taint the others.
	c.FighterAVerdict = n.resolver.Resolve(idx, c.FighterA)
	c.FighterBVerdict = n.resolver.Resolve(idx, c.FighterB)
	if c.PickedFighter != "" {
		v := n.resolver.Resolve(idx, c.PickedFighter)
		c.PickedVerdict = &v
		if c.FighterA != "" && c.FighterB != "" && !pickedIsOnCard(c) {
			c.Issues = append(c.Issues, "picked fighter is neither fighter_a nor fighter_b")
		}
	} else {
		c.Issues = append(c.Issues, "no picked fighter")
	}

	c.NeedsReview = c.SourceFlagged ||
		!c.FighterAVerdict.Resolved() ||
		!c.FighterBVerdict.Resolved() ||
		c.PickedVerdict == nil ||
		!c.PickedVerdict.Resolved() ||
		len(c.Issues) > 0
	return c
}

func (n *Normalizer) placeholder(idx *AliasIndex, index int, analyst, issue string) models.CandidatePick {
	return models.CandidatePick{
		Index:           index,
		AnalystName:     analyst,
		FighterAVerdict: n.resolver.Resolve(idx, ""),
		FighterBVerdict: n.resolver.Resolve(idx, ""),
		Confidence:      models.ConfidenceLean,
		NeedsReview:     true,
		Issues:          []string{issue},
	}
}

// pickedIsOnCard compares the pick to both fighters by spelling or by
// resolved canonical name.
func pickedIsOnCard(c models.CandidatePick) bool {
	if SameFighter(c.PickedFighter, c.FighterA) || SameFighter(c.PickedFighter, c.FighterB) {
		return true
	}
	picked := c.PickedVerdict.Canonical
	if picked == "" {
		return false
	}
	return picked == c.FighterAVerdict.Canonical || picked == c.FighterBVerdict.Canonical
}

func inferArticleType(ext *models.Extraction) models.ArticleType {
	switch t := models.ArticleType(strings.ToLower(strings.TrimSpace(string(ext.ArticleType)))); t {
	case models.ArticleSingle, models.ArticleStaff:
		return t
	}
	if len(ext.Analysts) > 1 {
		return models.ArticleStaff
	}
	return models.ArticleSingle
}
