package logic

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/models"
)

type MockScraper struct {
	Text string
	Err  error
	URL  string
}

func (m *MockScraper) Scrape(ctx context.Context, url string) (string, error) {
	m.URL = url
	return m.Text, m.Err
}

type MockExtractor struct {
	Payload string
	Err     error
	Article string
}

func (m *MockExtractor) Extract(ctx context.Context, article string) ([]byte, error) {
	m.Article = article
	return []byte(m.Payload), m.Err
}

// ingestDB remembers fights inserted during a batch so later picks on the
// same bout find them again.
type ingestDB struct {
	mu        sync.Mutex
	fights    []models.Fight
	cancelled bool
}

func (db *ingestDB) pool() *MockPool {
	return &MockPool{
		QueryRowFunc: func(tx *MockTx, sql string, args []any) pgx.Row {
			db.mu.Lock()
			defer db.mu.Unlock()
			switch {
			case strings.Contains(sql, "INSERT INTO events"), strings.Contains(sql, "INSERT INTO analyst_picks"):
				return row(time.Now())
			case strings.Contains(sql, "INSERT INTO fights"):
				f := models.Fight{
					ID: args[0].(uuid.UUID), EventID: args[1].(uuid.UUID),
					FighterA: args[2].(string), FighterB: args[3].(string),
					BoutOrder: len(db.fights) + 1, Status: models.FightScheduled,
				}
				if db.cancelled {
					f.Status = models.FightCancelled
				}
				db.fights = append(db.fights, f)
				return row(f.BoutOrder)
			case strings.Contains(sql, "FROM fights"):
				a, b := strings.ToLower(args[1].(string)), strings.ToLower(args[2].(string))
				for _, f := range db.fights {
					fa, fb := strings.ToLower(f.FighterA), strings.ToLower(f.FighterB)
					if (fa == a && fb == b) || (fa == b && fb == a) {
						return row(fightValues(f)...)
					}
				}
				if db.cancelled {
					f := models.Fight{ID: uuid.New(), EventID: args[0].(uuid.UUID), FighterA: args[1].(string), FighterB: args[2].(string), Status: models.FightCancelled}
					return row(fightValues(f)...)
				}
			}
			return rowErr(pgx.ErrNoRows)
		},
	}
}

func lightweightAliases() *MockAliasService {
	return &MockAliasService{
		ListAliasesFunc: func(ctx context.Context) ([]models.FighterAlias, error) {
			return []models.FighterAlias{
				{CanonicalName: "Islam Makhachev", Alias: "Islam Makhachev"},
				{CanonicalName: "Charles Oliveira", Alias: "Charles Oliveira"},
			}, nil
		},
	}
}

func newTestIngest(pool TxPool, scraper Scraper, extractor Extractor) IngestService {
	resolver := NewResolver(NewWeightedRatio(), lightweightAliases(), nil, ResolverOptions{}, zap.NewNop())
	return NewIngestService(pool, resolver, scraper, extractor, zap.NewNop())
}

func TestCommitBatch(t *testing.T) {
	db := &ingestDB{}
	pool := db.pool()
	svc := newTestIngest(pool, nil, nil)

	resp, err := svc.Commit(context.Background(), models.CommitBatchRequest{
		EventName: "UFC 311",
		EventDate: "2025-01-18",
		Platform:  "MMA Junkie",
		Picks: []models.CommitPick{
			{AnalystName: "Mike Bohn", FighterA: "Islam Makachev", FighterB: "Charles Oliveira", PickedFighter: "Makhachev", Method: "Submission", Tags: []string{"grappling"}},
			{AnalystName: "Nolan King", FighterA: "Charles Oliveira", FighterB: "Islam Makhachev", PickedFighter: "Charles Oliveira"},
			{AnalystName: "Mike Bohn", FighterA: "Arman Tsarukyan", FighterB: "Islam Makhachev", PickedFighter: "Arman Tsarukyan"},
			{AnalystName: "Nolan King", FighterA: "Arman Tsarukyan", FighterB: "Islam Makhachev"},
		},
		Decisions: []models.ResolutionDecision{{Raw: "Arman Tsarukyan", Action: models.ActionCreate}},
	})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if resp.Saved != 4 {
		t.Errorf("Saved = %d, want 4", resp.Saved)
	}
	if len(resp.NewAliases) != 1 || resp.NewAliases[0].CanonicalName != "Arman Tsarukyan" {
		t.Errorf("NewAliases = %+v", resp.NewAliases)
	}
	if n := pool.Ran("INSERT INTO fighter_aliases"); n != 1 {
		t.Errorf("alias inserts = %d, want 1", n)
	}
	if len(db.fights) != 2 {
		t.Fatalf("fights created = %d, want 2", len(db.fights))
	}
	if db.fights[0].FighterA != "Islam Makhachev" {
		t.Errorf("fight stored with %q, want canonical spelling", db.fights[0].FighterA)
	}
	if pool.Ran("INSERT INTO analyst_picks") != 4 || pool.Ran("INSERT INTO pick_tags") != 1 {
		t.Errorf("statements = %v", pool.Statements)
	}
	if pool.Begins != 1 || pool.Commits != 1 {
		t.Errorf("begins/commits = %d/%d, want one transaction", pool.Begins, pool.Commits)
	}
}

func TestCommitBatchRejected(t *testing.T) {
	tests := []struct {
		name      string
		picks     []models.CommitPick
		decisions []models.ResolutionDecision
		cancelled bool
		wantErr   error
	}{
		{
			name:    "unconfirmed new name",
			picks:   []models.CommitPick{{AnalystName: "Mike Bohn", FighterA: "Arman Tsarukyan", FighterB: "Islam Makhachev"}},
			wantErr: ErrUnresolvedName,
		},
		{
			name: "picked fighter not on the card",
			picks: []models.CommitPick{
				{AnalystName: "Mike Bohn", FighterA: "Islam Makhachev", FighterB: "Charles Oliveira", PickedFighter: "Islam Makhachev"},
				{AnalystName: "Nolan King", FighterA: "Islam Makhachev", FighterB: "Charles Oliveira", PickedFighter: "Khamzat Chimaev"},
			},
			decisions: []models.ResolutionDecision{{Raw: "Khamzat Chimaev", Action: models.ActionCreate}},
			wantErr:   ErrInvalidPick,
		},
		{
			name:    "same fighter in both corners",
			picks:   []models.CommitPick{{AnalystName: "Mike Bohn", FighterA: "Islam Makhachev", FighterB: "Makhachev"}},
			wantErr: ErrInvalidPick,
		},
		{
			name:      "cancelled fight",
			picks:     []models.CommitPick{{AnalystName: "Mike Bohn", FighterA: "Islam Makhachev", FighterB: "Charles Oliveira"}},
			cancelled: true,
			wantErr:   ErrFightCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &ingestDB{cancelled: tt.cancelled}
			pool := db.pool()
			_, err := newTestIngest(pool, nil, nil).Commit(context.Background(), models.CommitBatchRequest{
				EventName: "UFC 311",
				Picks:     tt.picks,
				Decisions: tt.decisions,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Commit() error = %v, want %v", err, tt.wantErr)
			}
			if pool.Commits != 0 || pool.Rollbacks != 1 {
				t.Errorf("commits/rollbacks = %d/%d, want 0/1", pool.Commits, pool.Rollbacks)
			}
		})
	}

	t.Run("invalid date", func(t *testing.T) {
		pool := (&ingestDB{}).pool()
		_, err := newTestIngest(pool, nil, nil).Commit(context.Background(), models.CommitBatchRequest{EventName: "UFC 311", EventDate: "January 18"})
		if err == nil {
			t.Fatal("expected invalid date to fail")
		}
		if pool.Begins != 0 {
			t.Error("transaction opened for an invalid request")
		}
	})
}

func TestPrepare(t *testing.T) {
	payload := `{"platform":"MMA Fighting","analysts":[{"analyst_name":"Mike Heck","picks":[
		{"fighter_a":"Islam Makhachev","fighter_b":"Charles Oliveira","picked_fighter":"Islam Makhachev"}]}]}`

	t.Run("scrapes when no text is given", func(t *testing.T) {
		scraper := &MockScraper{Text: "Mike Heck picks Makhachev"}
		extractor := &MockExtractor{Payload: payload}
		review, err := newTestIngest(&MockPool{}, scraper, extractor).Prepare(context.Background(), " https://example.com/picks ", "")
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if scraper.URL != "https://example.com/picks" || extractor.Article != "Mike Heck picks Makhachev" {
			t.Errorf("scraped %q, extracted %q", scraper.URL, extractor.Article)
		}
		if review.SourceURL != "https://example.com/picks" || review.Platform != "MMA Fighting" {
			t.Errorf("review = %+v", review)
		}
		if len(review.Candidates) != 1 || review.NeedsReview != 0 {
			t.Errorf("candidates = %+v", review.Candidates)
		}
	})

	t.Run("pasted text skips the scraper", func(t *testing.T) {
		scraper := &MockScraper{Err: errors.New("should not be called")}
		extractor := &MockExtractor{Payload: payload}
		if _, err := newTestIngest(&MockPool{}, scraper, extractor).Prepare(context.Background(), "https://example.com", "pasted"); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if scraper.URL != "" || extractor.Article != "pasted" {
			t.Error("pasted text should go straight to extraction")
		}
	})

	tests := []struct {
		name      string
		url, text string
		scraper   Scraper
		extractor Extractor
		wantErr   error
	}{
		{name: "nothing to read", wantErr: ErrScrapeEmpty},
		{name: "url without scraper", url: "https://example.com", wantErr: ErrScrapeEmpty},
		{name: "empty page", url: "https://example.com", scraper: &MockScraper{Err: ErrScrapeEmpty}, wantErr: ErrScrapeEmpty},
		{name: "no extractor", text: "article", wantErr: ErrLLMUnavailable},
		{name: "malformed payload", text: "article", extractor: &MockExtractor{Payload: `{"picks":[]}`}, wantErr: ErrExtractionMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestIngest(&MockPool{}, tt.scraper, tt.extractor).Prepare(context.Background(), tt.url, tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Prepare() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIngestResolve(t *testing.T) {
	v, err := newTestIngest(&MockPool{}, nil, nil).Resolve(context.Background(), "Makhachev")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if v.Kind != models.VerdictMatched || v.Canonical != "Islam Makhachev" || v.Score != 90 {
		t.Errorf("verdict = %+v", v)
	}
}
