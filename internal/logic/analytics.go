package logic

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chatmma/analyst-tracker/internal/models"
)

const (
	// sideMatchFloor is the token-set score a picked name needs to count for a side
	sideMatchFloor = 60

	minFinishPicks      = 3
	minUnderdogTotal    = 5
	minUnderdogBackers  = 2
	underdogTagLimit    = 3
	contextTagLimit     = 5
	contextRationales   = 3
	contextAnalystLimit = 5
)

type analyticsService struct {
	pg     PgPool
	sim    *WeightedRatio
	logger *zap.SugaredLogger
}

func NewAnalyticsService(pg PgPool, logger *zap.Logger) AnalyticsService {
	return &analyticsService{pg: pg, sim: NewWeightedRatio(), logger: logger.Sugar()}
}

// card is every fight and pick of one event
type card struct {
	event          *models.Event
	fights         []models.Fight
	picks          map[uuid.UUID][]models.AnalystPick
	resultsEntered bool
}

func (s *analyticsService) loadCard(ctx context.Context, eventID uuid.UUID) (*card, error) {
	event, err := getEvent(ctx, s.pg, eventID)
	if err != nil {
		return nil, err
	}
	c := &card{event: event, picks: make(map[uuid.UUID][]models.AnalystPick)}

	var picks []models.AnalystPick
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fights, err := listFights(gctx, s.pg, eventID)
		if err != nil {
			return fmt.Errorf("fights: %w", err)
		}
		c.fights = fights
		return nil
	})
	g.Go(func() error {
		list, err := listPicks(gctx, s.pg, PickFilter{EventID: &eventID, Limit: 1000})
		if err != nil {
			return fmt.Errorf("picks: %w", err)
		}
		picks = list
		return nil
	})
	g.Go(func() error {
		var n int
		err := s.pg.QueryRow(gctx, `
			SELECT count(*) FROM results r
			JOIN fights f ON f.fight_id = r.fight_id
			WHERE f.event_id = $1
		`, eventID).Scan(&n)
		if err != nil {
			return fmt.Errorf("results: %w", err)
		}
		c.resultsEntered = n > 0
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load card %s: %w", eventID, err)
	}

	for _, p := range picks {
		c.picks[p.FightID] = append(c.picks[p.FightID], p)
	}
	return c, nil
}

// classify splits picks by the side their picked name resembles. Picks that
// resemble neither fighter are left out; ties go to fighter A.
func (s *analyticsService) classify(picks []models.AnalystPick, fight models.Fight) (forA, forB []models.AnalystPick) {
	a, b := NormalizeName(fight.FighterA), NormalizeName(fight.FighterB)
	for _, p := range picks {
		if p.PickedFighter == nil {
			continue
		}
		picked := NormalizeName(*p.PickedFighter)
		if picked == "" {
			continue
		}
		scoreA, scoreB := s.sim.tokenSetRatio(picked, a), s.sim.tokenSetRatio(picked, b)
		switch {
		case scoreA >= scoreB && scoreA >= sideMatchFloor:
			forA = append(forA, p)
		case scoreB > scoreA && scoreB >= sideMatchFloor:
			forB = append(forB, p)
		}
	}
	return forA, forB
}

func (s *analyticsService) Consensus(ctx context.Context, eventID uuid.UUID) (*models.EventConsensus, error) {
	c, err := s.loadCard(ctx, eventID)
	if err != nil {
		return nil, err
	}

	out := &models.EventConsensus{Event: c.event.Name, ResultsEntered: c.resultsEntered, Picks: []models.ConsensusPick{}}
	for _, f := range c.fights {
		forA, forB := s.classify(c.picks[f.ID], f)
		total := len(forA) + len(forB)
		if total == 0 {
			continue
		}
		cp := models.ConsensusPick{
			FightID:          f.ID,
			Fight:            f.Label(),
			FighterA:         f.FighterA,
			FighterB:         f.FighterB,
			ConsensusFighter: f.FighterA,
			ConsensusCount:   len(forA),
			OpposingCount:    len(forB),
			TotalPredictions: total,
		}
		if len(forB) > len(forA) {
			cp.ConsensusFighter = f.FighterB
			cp.ConsensusCount, cp.OpposingCount = len(forB), len(forA)
		}
		cp.ConsensusPercentage = float64(cp.ConsensusCount) / float64(total) * 100
		out.Picks = append(out.Picks, cp)
	}

	sort.SliceStable(out.Picks, func(i, j int) bool {
		return out.Picks[i].ConsensusPercentage > out.Picks[j].ConsensusPercentage
	})
	return out, nil
}

func (s *analyticsService) InsideDistance(ctx context.Context, eventID uuid.UUID) (*models.EventInsideDistance, error) {
	c, err := s.loadCard(ctx, eventID)
	if err != nil {
		return nil, err
	}

	out := &models.EventInsideDistance{Event: c.event.Name, Picks: []models.InsideDistancePick{}}
	for _, f := range c.fights {
		var finishes []models.AnalystPick
		for _, p := range c.picks[f.ID] {
			if p.MethodPrediction.IsFinish() {
				finishes = append(finishes, p)
			}
		}
		if len(finishes) < minFinishPicks {
			continue
		}

		forA, forB := s.classify(finishes, f)
		if len(forA) == 0 && len(forB) == 0 {
			continue
		}
		favored, side := f.FighterA, forA
		if len(forB) > len(forA) {
			favored, side = f.FighterB, forB
		}

		methods := make([]models.Method, 0, len(side))
		for _, p := range side {
			methods = append(methods, p.MethodPrediction)
		}
		out.Picks = append(out.Picks, models.InsideDistancePick{
			FightID:                f.ID,
			Fight:                  f.Label(),
			FighterA:               f.FighterA,
			FighterB:               f.FighterB,
			FavoredFighter:         favored,
			FinishPredictionCount:  len(side),
			Methods:                methods,
			TotalFinishPredictions: len(finishes),
		})
	}

	sort.SliceStable(out.Picks, func(i, j int) bool {
		return out.Picks[i].FinishPredictionCount > out.Picks[j].FinishPredictionCount
	})
	return out, nil
}

func (s *analyticsService) Underdogs(ctx context.Context, eventID uuid.UUID) (*models.EventUnderdogs, error) {
	c, err := s.loadCard(ctx, eventID)
	if err != nil {
		return nil, err
	}

	out := &models.EventUnderdogs{Event: c.event.Name, ResultsEntered: c.resultsEntered, Picks: []models.UnderdogPick{}}
	for _, f := range c.fights {
		forA, forB := s.classify(c.picks[f.ID], f)
		total := len(forA) + len(forB)
		if total < minUnderdogTotal {
			continue
		}

		underdog, dogs, favs := f.FighterB, forB, forA
		if len(forA) < len(forB) {
			underdog, dogs, favs = f.FighterA, forA, forB
		}
		if len(dogs) < minUnderdogBackers || float64(len(dogs)) >= float64(total)/2 {
			continue
		}

		backers := make([]models.UnderdogBacker, 0, len(dogs))
		for _, p := range dogs {
			backers = append(backers, models.UnderdogBacker{Name: p.AnalystName, Reasoning: p.ReasoningNotes})
		}
		out.Picks = append(out.Picks, models.UnderdogPick{
			FightID:            f.ID,
			Fight:              f.Label(),
			FighterA:           f.FighterA,
			FighterB:           f.FighterB,
			Underdog:           underdog,
			UnderdogCount:      len(dogs),
			FavoriteCount:      len(favs),
			TotalPredictions:   total,
			UnderdogPercentage: float64(len(dogs)) / float64(total) * 100,
			ValueScore:         float64(len(dogs)) / float64(total),
			Backers:            backers,
			TopTags:            topTags(dogs, underdogTagLimit),
		})
	}

	sort.SliceStable(out.Picks, func(i, j int) bool {
		return out.Picks[i].ValueScore > out.Picks[j].ValueScore
	})
	return out, nil
}

// FightContext aggregates every pick on one fight by side
func (s *analyticsService) FightContext(ctx context.Context, fightID uuid.UUID) (*models.FightContext, error) {
	fight, err := getFight(ctx, s.pg, fightID)
	if err != nil {
		return nil, err
	}

	var event *models.Event
	var picks []models.AnalystPick
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e, err := getEvent(gctx, s.pg, fight.EventID)
		event = e
		return err
	})
	g.Go(func() error {
		list, err := listPicks(gctx, s.pg, PickFilter{FightID: &fightID, Limit: 1000})
		picks = list
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load fight context %s: %w", fightID, err)
	}

	forA, forB := s.classify(picks, *fight)
	return &models.FightContext{
		Fight:            *fight,
		EventName:        event.Name,
		ResultEntered:    fight.Status == models.FightCompleted,
		TotalPredictions: len(picks),
		SideA:            buildSide(fight.FighterA, forA),
		SideB:            buildSide(fight.FighterB, forB),
	}, nil
}

func buildSide(fighter string, picks []models.AnalystPick) models.SideContext {
	side := models.SideContext{
		Fighter:           fighter,
		Picks:             len(picks),
		TopTags:           topTags(picks, contextTagLimit),
		Methods:           map[models.Method]int{},
		ExampleRationales: []string{},
		Analysts:          []string{},
	}
	seen := map[string]bool{}
	for _, p := range picks {
		if p.MethodPrediction != models.MethodNone {
			side.Methods[p.MethodPrediction]++
		}
		if p.ReasoningNotes != "" && len(side.ExampleRationales) < contextRationales {
			side.ExampleRationales = append(side.ExampleRationales, p.ReasoningNotes)
		}
		key := strings.ToLower(p.AnalystName)
		if !seen[key] && len(side.Analysts) < contextAnalystLimit {
			seen[key] = true
			side.Analysts = append(side.Analysts, p.AnalystName)
		}
	}
	return side
}

// topTags counts tags across picks, most common first. Equal counts keep
// first-seen order.
func topTags(picks []models.AnalystPick, limit int) []models.TagCount {
	counts := map[string]int{}
	var order []string
	for _, p := range picks {
		for _, t := range p.Tags {
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}

	out := make([]models.TagCount, 0, len(order))
	for _, t := range order {
		out = append(out, models.TagCount{Tag: t, Count: counts[t]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
