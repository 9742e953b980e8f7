package logic

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// PickFilter narrows pick listings. Zero values mean "any".
type PickFilter struct {
	FightID *uuid.UUID
	EventID *uuid.UUID
	Analyst string
	Limit   int
}

// queryBuilder accumulates WHERE clauses with numbered Postgres placeholders
type queryBuilder struct {
	where []string
	args  []interface{}
}

func (b *queryBuilder) add(clause string, arg interface{}) {
	b.args = append(b.args, arg)
	b.where = append(b.where, fmt.Sprintf(clause, len(b.args)))
}

func (b *queryBuilder) addRaw(clause string) {
	b.where = append(b.where, clause)
}

func (b *queryBuilder) whereClause() string {
	if len(b.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.where, " AND ")
}

const scoringSelect = `SELECT p.pick_id, p.analyst_name, p.picked_fighter, COALESCE(p.method_prediction, ''),
	f.fight_id, f.status, COALESCE(f.weight_class, ''), f.title_fight, e.date,
	r.result_id IS NOT NULL, COALESCE(r.winner, ''), COALESCE(r.method, '')
FROM analyst_picks p
JOIN fights f ON f.fight_id = p.fight_id
JOIN events e ON e.event_id = f.event_id
JOIN results r ON r.fight_id = f.fight_id`

// BuildScoringQuery selects the scorable pick/result rows matching f.
// The same conditions are re-checked in memory by ScorePicks.
func BuildScoringQuery(f models.ScoreFilter) (string, []interface{}) {
	var b queryBuilder
	b.addRaw("f.status = 'completed'")

	if a := strings.TrimSpace(f.Analyst); a != "" {
		b.add("lower(p.analyst_name) = lower($%d)", a)
	}
	if wc := strings.TrimSpace(f.WeightClass); wc != "" {
		b.add("lower(f.weight_class) = lower($%d)", wc)
	}
	if f.TitleOnly {
		b.addRaw("f.title_fight")
	}
	if f.From != nil {
		b.add("e.date >= $%d", *f.From)
	}
	if f.To != nil {
		b.add("e.date <= $%d", *f.To)
	}

	return scoringSelect + b.whereClause() + " ORDER BY p.created_at, p.pick_id", b.args
}

const pickSelect = `SELECT p.pick_id, p.fight_id, p.analyst_name, COALESCE(p.platform, ''), COALESCE(p.source_url, ''),
	p.picked_fighter, COALESCE(p.method_prediction, ''), p.confidence_tag, COALESCE(p.reasoning_notes, ''),
	COALESCE((SELECT array_agg(t.tag ORDER BY t.tag) FROM pick_tags t WHERE t.pick_id = p.pick_id), '{}'),
	p.created_at
FROM analyst_picks p
JOIN fights f ON f.fight_id = p.fight_id`

// BuildPickListQuery selects picks with their tags
func BuildPickListQuery(f PickFilter) (string, []interface{}) {
	var b queryBuilder
	if f.FightID != nil {
		b.add("p.fight_id = $%d", *f.FightID)
	}
	if f.EventID != nil {
		b.add("f.event_id = $%d", *f.EventID)
	}
	if a := strings.TrimSpace(f.Analyst); a != "" {
		b.add("lower(p.analyst_name) = lower($%d)", a)
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 500
	}
	return pickSelect + b.whereClause() + fmt.Sprintf(" ORDER BY f.bout_order, p.created_at LIMIT %d", limit), b.args
}
