package logic

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// MockRedis is a map-backed RedisClient. GetErr fails every read.
type MockRedis struct {
	mu     sync.Mutex
	data   map[string]string
	GetErr error
	Sets   int
}

func newMockRedis() *MockRedis {
	return &MockRedis{data: map[string]string{}}
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return redis.NewStringResult("", m.GetErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *MockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.Sets++
	return redis.NewStatusResult("OK", nil)
}

func (m *MockRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func scoredValues(p models.ScoredPick) []any {
	var picked any
	if p.PickedFighter != nil {
		picked = *p.PickedFighter
	}
	return []any{p.PickID, p.AnalystName, picked, string(p.MethodPrediction), p.FightID, string(p.FightStatus),
		p.WeightClass, p.TitleFight, nil, p.HasResult, p.Winner, string(p.ResultMethod)}
}

func scoringPool(rows []models.ScoredPick) *MockPool {
	return &MockPool{
		QueryFunc: func(tx *MockTx, sql string, args []any) (pgx.Rows, error) {
			out := &MockRows{}
			for _, p := range rows {
				out.Data = append(out.Data, scoredValues(p))
			}
			return out, nil
		},
	}
}

func TestLeaderboardCache(t *testing.T) {
	rows := scored(
		scoredRow{analyst: "Mike Bohn", picked: "Alex Pereira", method: models.MethodKOTKO, winner: "Alex Pereira", result: models.MethodKOTKO},
		scoredRow{analyst: "Nolan King", picked: "Khalil Rountree", method: models.MethodKOTKO, winner: "Alex Pereira", result: models.MethodKOTKO},
	)
	pool := scoringPool(rows)
	cache := newMockRedis()
	svc := NewScoringService(pool, cache, time.Minute, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Leaderboard(ctx, models.ScoreFilter{}, 0)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(first.Analysts) != 2 || first.Analysts[0].Analyst != "Mike Bohn" || first.Analysts[0].Wins != 1 {
		t.Fatalf("Leaderboard() = %+v", first.Analysts)
	}
	if cache.Sets != 1 {
		t.Errorf("cache writes = %d, want 1", cache.Sets)
	}

	second, err := svc.Leaderboard(ctx, models.ScoreFilter{}, 0)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(pool.Statements) != 1 {
		t.Errorf("queries = %d, want the second call served from cache", len(pool.Statements))
	}
	if second.Analysts[1].Analyst != "Nolan King" || second.Analysts[1].Losses != 1 {
		t.Errorf("cached leaderboard = %+v", second.Analysts)
	}

	if _, err := svc.Leaderboard(ctx, models.ScoreFilter{WeightClass: "Light Heavyweight"}, 0); err != nil {
		t.Fatal(err)
	}
	if len(pool.Statements) != 2 {
		t.Errorf("queries = %d, a different filter must miss", len(pool.Statements))
	}

	svc.Invalidate(ctx)
	if cache.data[scoringGenKey] != "1" {
		t.Errorf("generation = %q, want 1", cache.data[scoringGenKey])
	}
	if _, err := svc.Leaderboard(ctx, models.ScoreFilter{}, 0); err != nil {
		t.Fatal(err)
	}
	if len(pool.Statements) != 3 {
		t.Errorf("queries = %d, invalidation should force a recompute", len(pool.Statements))
	}
}

func TestLeaderboardWithoutCache(t *testing.T) {
	tests := []struct {
		name  string
		cache RedisClient
	}{
		{name: "no redis", cache: nil},
		{name: "redis down", cache: &MockRedis{data: map[string]string{}, GetErr: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := scoringPool(scored(scoredRow{analyst: "Mike Bohn", picked: "A", winner: "A", result: models.MethodDecision}))
			svc := NewScoringService(pool, tt.cache, 0, zap.NewNop())
			for i := 0; i < 2; i++ {
				if _, err := svc.Leaderboard(context.Background(), models.ScoreFilter{}, 0); err != nil {
					t.Fatalf("Leaderboard() error = %v", err)
				}
			}
			if len(pool.Statements) != 2 {
				t.Errorf("queries = %d, want every call to hit postgres", len(pool.Statements))
			}
			svc.Invalidate(context.Background())
		})
	}
}

func TestAnalystRecord(t *testing.T) {
	rows := scored(
		scoredRow{analyst: "Mike Bohn", picked: "A", method: models.MethodDecision, winner: "A", result: models.MethodDecision},
		scoredRow{analyst: "Mike Bohn", picked: "A", winner: "B", result: models.MethodKOTKO},
	)
	rec, err := NewScoringService(scoringPool(rows), nil, 0, zap.NewNop()).AnalystRecord(context.Background(), " Mike Bohn ", models.ScoreFilter{})
	if err != nil {
		t.Fatalf("AnalystRecord() error = %v", err)
	}
	if rec.Wins != 1 || rec.Losses != 1 || rec.Accuracy == nil || *rec.Accuracy != 50 {
		t.Errorf("record = %+v", rec)
	}

	empty, err := NewScoringService(scoringPool(nil), nil, 0, zap.NewNop()).AnalystRecord(context.Background(), "Nobody", models.ScoreFilter{})
	if err != nil {
		t.Fatalf("AnalystRecord() error = %v", err)
	}
	if empty.Analyst != "Nobody" || empty.Accuracy != nil || empty.Decided() != 0 {
		t.Errorf("empty record = %+v", empty)
	}
}

func TestLeaderboardSharedLoadOutlivesCaller(t *testing.T) {
	rows := scored(scoredRow{analyst: "Mike Bohn", picked: "A", winner: "A", result: models.MethodDecision})
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	pool := &MockPool{
		QueryFunc: func(tx *MockTx, sql string, args []any) (pgx.Rows, error) {
			once.Do(func() { close(started) })
			<-release
			out := &MockRows{}
			for _, p := range rows {
				out.Data = append(out.Data, scoredValues(p))
			}
			return out, nil
		},
	}
	cache := newMockRedis()
	svc := NewScoringService(pool, cache, time.Minute, zap.NewNop())

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Leaderboard(firstCtx, models.ScoreFilter{}, 0)
		firstErr <- err
	}()
	<-started

	type outcome struct {
		board *models.Leaderboard
		err   error
	}
	second := make(chan outcome, 1)
	go func() {
		board, err := svc.Leaderboard(context.Background(), models.ScoreFilter{}, 0)
		second <- outcome{board, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("cancelled caller error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared load")
	}

	close(release)
	select {
	case got := <-second:
		if got.err != nil {
			t.Fatalf("waiting caller error = %v", got.err)
		}
		if len(got.board.Analysts) != 1 || got.board.Analysts[0].Wins != 1 {
			t.Errorf("Leaderboard() = %+v", got.board.Analysts)
		}
	case <-time.After(time.Second):
		t.Fatal("waiting caller never got the shared result")
	}
	if n := pool.Ran("SELECT"); n != 1 {
		t.Errorf("queries = %d, want one shared load", n)
	}
	if cache.Sets != 1 {
		t.Errorf("cache writes = %d, want 1", cache.Sets)
	}
}
