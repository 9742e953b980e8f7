package logic

import (
	"sort"
	"strings"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// Scorable reports whether a joined row may enter any scoring output:
// the fight is completed and has a result.
func Scorable(p models.ScoredPick) bool {
	return p.HasResult && p.FightStatus == models.FightCompleted
}

// MatchesFilter applies every set filter field with AND semantics.
// The date range is inclusive; picks on undated events never match a range.
func MatchesFilter(p models.ScoredPick, f models.ScoreFilter) bool {
	if f.Analyst != "" && !strings.EqualFold(strings.TrimSpace(p.AnalystName), strings.TrimSpace(f.Analyst)) {
		return false
	}
	if f.WeightClass != "" && !strings.EqualFold(strings.TrimSpace(p.WeightClass), strings.TrimSpace(f.WeightClass)) {
		return false
	}
	if f.TitleOnly && !p.TitleFight {
		return false
	}
	if f.From != nil || f.To != nil {
		if p.EventDate == nil {
			return false
		}
		if f.From != nil && p.EventDate.Before(*f.From) {
			return false
		}
		if f.To != nil && p.EventDate.After(*f.To) {
			return false
		}
	}
	return true
}

// ComputeRecord scores picks for a single analyst. Winner and method
// accuracy are tallied independently.
func ComputeRecord(analyst string, picks []models.ScoredPick) models.AnalystRecord {
	rec := models.AnalystRecord{Analyst: analyst}
	buckets := make(map[models.Method]*models.MethodAccuracy, len(ScoredMethods))
	for _, m := range ScoredMethods {
		buckets[m] = &models.MethodAccuracy{Method: m}
	}

	for _, p := range picks {
		if !Scorable(p) {
			continue
		}

		if b, ok := buckets[p.MethodPrediction]; ok {
			b.Predicted++
			if p.ResultMethod == p.MethodPrediction {
				b.Correct++
			}
		}

		switch {
		case p.PickedFighter == nil || strings.TrimSpace(*p.PickedFighter) == "":
			rec.NoPick++
		case p.Winner == "" || p.ResultMethod == models.MethodNC:
			rec.NoContest++
		case SameFighter(*p.PickedFighter, p.Winner):
			rec.Wins++
		default:
			rec.Losses++
		}
	}

	rec.Accuracy = percentage(rec.Wins, rec.Decided())
	for _, m := range ScoredMethods {
		b := buckets[m]
		b.Accuracy = percentage(b.Correct, b.Predicted)
		rec.MethodAccuracy = append(rec.MethodAccuracy, *b)
	}
	return rec
}

// ScorePicks filters the joined rows and returns one record per analyst,
// ranked by accuracy, then wins, then name. Analysts with fewer than
// minDecided scored picks are left out.
func ScorePicks(rows []models.ScoredPick, f models.ScoreFilter, minDecided int) []models.AnalystRecord {
	byAnalyst := make(map[string][]models.ScoredPick)
	names := make(map[string]string)
	for _, p := range rows {
		if !Scorable(p) || !MatchesFilter(p, f) {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(p.AnalystName))
		byAnalyst[key] = append(byAnalyst[key], p)
		if existing, ok := names[key]; !ok || p.AnalystName < existing {
			names[key] = strings.TrimSpace(p.AnalystName)
		}
	}

	records := make([]models.AnalystRecord, 0, len(byAnalyst))
	for key, picks := range byAnalyst {
		rec := ComputeRecord(names[key], picks)
		if rec.Decided() < minDecided {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		ai, aj := accuracyOrMinus(records[i]), accuracyOrMinus(records[j])
		if ai != aj {
			return ai > aj
		}
		if records[i].Wins != records[j].Wins {
			return records[i].Wins > records[j].Wins
		}
		return records[i].Analyst < records[j].Analyst
	})
	return records
}

func accuracyOrMinus(r models.AnalystRecord) float64 {
	if r.Accuracy == nil {
		return -1
	}
	return *r.Accuracy
}

// percentage is nil when the denominator is zero ("no data")
func percentage(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	v := float64(num) / float64(den) * 100
	return &v
}
