package logic

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// PgPool defines the query surface shared by the connection pool and transactions
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TxPool is a PgPool that can open transactions
type TxPool interface {
	PgPool
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RedisClient defines the subset of Redis used for the scoring cache
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// EventService manages cards and bouts
type EventService interface {
	CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	FindEventByName(ctx context.Context, name string) (*models.Event, error)
	LatestEvent(ctx context.Context) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	CreateFight(ctx context.Context, eventID uuid.UUID, req models.CreateFightRequest) (*models.Fight, error)
	GetFight(ctx context.Context, id uuid.UUID) (*models.Fight, error)
	ListFights(ctx context.Context, eventID uuid.UUID) ([]models.Fight, error)
	CancelFight(ctx context.Context, id uuid.UUID) (*models.Fight, error)
}

// AliasService reads the alias table. It only grows through confirmed resolutions.
type AliasService interface {
	ListAliases(ctx context.Context) ([]models.FighterAlias, error)
}

// PickCounter reports how many picks exist per canonical fighter name
type PickCounter interface {
	PickCounts(ctx context.Context) (map[string]int, error)
}

// PickService manages confirmed analyst picks
type PickService interface {
	PickCounter
	CreatePick(ctx context.Context, req models.CreatePickRequest) (*models.AnalystPick, error)
	GetPick(ctx context.Context, id uuid.UUID) (*models.AnalystPick, error)
	ListPicks(ctx context.Context, filter PickFilter) ([]models.AnalystPick, error)
	UpdatePick(ctx context.Context, id uuid.UUID, req models.UpdatePickRequest) (*models.AnalystPick, error)
	DeletePick(ctx context.Context, id uuid.UUID, confirmed bool) error
}

// ResultService records official outcomes
type ResultService interface {
	SaveResult(ctx context.Context, result models.Result) (*models.Result, error)
	SaveResultsCard(ctx context.Context, results []models.Result) ([]models.Result, error)
	GetResult(ctx context.Context, fightID uuid.UUID) (*models.Result, error)
}

// ScoringService computes analyst records on demand
type ScoringService interface {
	Leaderboard(ctx context.Context, filter models.ScoreFilter, minPicks int) (*models.Leaderboard, error)
	AnalystRecord(ctx context.Context, analyst string, filter models.ScoreFilter) (*models.AnalystRecord, error)
	Invalidate(ctx context.Context)
}

// AnalyticsService aggregates picks on a card
type AnalyticsService interface {
	Consensus(ctx context.Context, eventID uuid.UUID) (*models.EventConsensus, error)
	InsideDistance(ctx context.Context, eventID uuid.UUID) (*models.EventInsideDistance, error)
	Underdogs(ctx context.Context, eventID uuid.UUID) (*models.EventUnderdogs, error)
	FightContext(ctx context.Context, fightID uuid.UUID) (*models.FightContext, error)
}

// ExportService renders picks for download
type ExportService interface {
	ExportEventCSV(ctx context.Context, eventID uuid.UUID, full bool, w io.Writer) error
}

// IngestService turns articles into reviewed, persisted picks
type IngestService interface {
	Prepare(ctx context.Context, url, text string) (*models.ExtractionReview, error)
	NormalizeRaw(ctx context.Context, raw []byte) (*models.ExtractionReview, error)
	Resolve(ctx context.Context, name string) (models.NameVerdict, error)
	Commit(ctx context.Context, req models.CommitBatchRequest) (*models.CommitBatchResponse, error)
}

// AskService answers questions about stored picks
type AskService interface {
	Answer(ctx context.Context, question string) (*models.AskResponse, error)
}
