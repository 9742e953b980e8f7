package logic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/chatmma/analyst-tracker/internal/models"
)

const (
	scoringGenKey          = "scoring:gen"
	DefaultScoringCacheTTL = 5 * time.Minute

	// scoringLoadTimeout bounds a shared leaderboard load, which outlives
	// the request that started it.
	scoringLoadTimeout = 30 * time.Second
)

type scoringService struct {
	pg     PgPool
	redis  RedisClient
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.SugaredLogger
}

// NewScoringService computes records on demand from the pick and result
// tables. When cache is nil, nothing is cached.
func NewScoringService(pg PgPool, cache RedisClient, ttl time.Duration, logger *zap.Logger) ScoringService {
	if ttl <= 0 {
		ttl = DefaultScoringCacheTTL
	}
	return &scoringService{pg: pg, redis: cache, ttl: ttl, logger: logger.Sugar()}
}

func (s *scoringService) Leaderboard(ctx context.Context, filter models.ScoreFilter, minPicks int) (*models.Leaderboard, error) {
	key := s.cacheKey(ctx, filter, minPicks)

	if key != "" {
		if cached, ok := s.cached(ctx, key); ok {
			scoringCache.WithLabelValues("hit").Inc()
			return &models.Leaderboard{Filter: filter, Analysts: cached, GeneratedAt: time.Now().UTC()}, nil
		}
		scoringCache.WithLabelValues("miss").Inc()
	}

	flightKey := key
	if flightKey == "" {
		flightKey = filterHash(filter, minPicks)
	}
	ch := s.group.DoChan(flightKey, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), scoringLoadTimeout)
		defer cancel()

		rows, err := s.loadRows(loadCtx, filter)
		if err != nil {
			return nil, err
		}
		records := ScorePicks(rows, filter, minPicks)
		if key != "" {
			s.store(loadCtx, key, records)
		}
		return records, nil
	})

	var v interface{}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		v = res.Val
	}

	return &models.Leaderboard{
		Filter:      filter,
		Analysts:    v.([]models.AnalystRecord),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// AnalystRecord scores one analyst. An analyst with nothing scorable gets an
// empty record with nil accuracy rather than an error.
func (s *scoringService) AnalystRecord(ctx context.Context, analyst string, filter models.ScoreFilter) (*models.AnalystRecord, error) {
	filter.Analyst = strings.TrimSpace(analyst)
	rows, err := s.loadRows(ctx, filter)
	if err != nil {
		return nil, err
	}
	records := ScorePicks(rows, filter, 0)
	if len(records) == 0 {
		rec := ComputeRecord(filter.Analyst, nil)
		return &rec, nil
	}
	return &records[0], nil
}

// Invalidate bumps the cache generation so every cached leaderboard is stale
func (s *scoringService) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Incr(ctx, scoringGenKey).Err(); err != nil {
		s.logger.Warnw("Failed to invalidate scoring cache", "error", err)
	}
}

func (s *scoringService) loadRows(ctx context.Context, filter models.ScoreFilter) ([]models.ScoredPick, error) {
	query, args := BuildScoringQuery(filter)
	rows, err := s.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scoring rows: %w", err)
	}
	defer rows.Close()

	var out []models.ScoredPick
	for rows.Next() {
		var p models.ScoredPick
		var method, status, resultMethod string
		if err := rows.Scan(&p.PickID, &p.AnalystName, &p.PickedFighter, &method,
			&p.FightID, &status, &p.WeightClass, &p.TitleFight, &p.EventDate,
			&p.HasResult, &p.Winner, &resultMethod); err != nil {
			return nil, fmt.Errorf("failed to scan scoring row: %w", err)
		}
		p.MethodPrediction = models.Method(method)
		p.FightStatus = models.FightStatus(status)
		p.ResultMethod = models.Method(resultMethod)
		out = append(out, p)
	}
	return out, rows.Err()
}

// cacheKey embeds the current generation; "" disables caching for this call
func (s *scoringService) cacheKey(ctx context.Context, filter models.ScoreFilter, minPicks int) string {
	if s.redis == nil {
		return ""
	}
	gen, err := s.redis.Get(ctx, scoringGenKey).Result()
	if errors.Is(err, redis.Nil) {
		gen = "0"
	} else if err != nil {
		s.logger.Warnw("Scoring cache unavailable", "error", err)
		scoringCache.WithLabelValues("error").Inc()
		return ""
	}
	return "scoring:leaderboard:" + gen + ":" + filterHash(filter, minPicks)
}

func (s *scoringService) cached(ctx context.Context, key string) ([]models.AnalystRecord, bool) {
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warnw("Scoring cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var records []models.AnalystRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false
	}
	return records, true
}

func (s *scoringService) store(ctx context.Context, key string, records []models.AnalystRecord) {
	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warnw("Scoring cache write failed", "key", key, "error", err)
	}
}

func filterHash(filter models.ScoreFilter, minPicks int) string {
	filter.Analyst = strings.ToLower(strings.TrimSpace(filter.Analyst))
	filter.WeightClass = strings.ToLower(strings.TrimSpace(filter.WeightClass))
	data, _ := json.Marshal(struct {
		models.ScoreFilter
		MinPicks int `json:"min_picks"`
	}{filter, minPicks})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
