package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/logic"
	"github.com/chatmma/analyst-tracker/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// Database is the slice of the Postgres pool used directly by handlers
type Database interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Pinger is the Redis health check
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// JobQueue runs extractions in the background
type JobQueue interface {
	Enqueue(url, text string) (*models.ExtractionJob, bool)
	Get(id uuid.UUID) (*models.ExtractionJob, bool)
}

type Config struct {
	Postgres Database
	Redis    Pinger
	Logger   *zap.Logger
	// AdminTokenHash is the sha256 hex of the bearer token for write routes
	AdminTokenHash string
	// SchemaPath overrides migrations/postgres/001_initial_schema.sql
	SchemaPath string
	// Services
	Events    logic.EventService
	Aliases   logic.AliasService
	Picks     logic.PickService
	Results   logic.ResultService
	Scoring   logic.ScoringService
	Analytics logic.AnalyticsService
	Export    logic.ExportService
	Ingest    logic.IngestService
	Ask       logic.AskService
	// Jobs is optional; without it the async extraction routes return 503
	Jobs      JobQueue
}

type Handler struct {
	pg         Database
	redis      Pinger
	logger     *zap.SugaredLogger
	validator  *validator.Validate
	adminHash  string
	schemaPath string
	events     logic.EventService
	aliases    logic.AliasService
	picks      logic.PickService
	results    logic.ResultService
	scoring    logic.ScoringService
	analytics  logic.AnalyticsService
	export     logic.ExportService
	ingest     logic.IngestService
	ask        logic.AskService
	jobs       JobQueue
}

func New(cfg Config) *Handler {
	return &Handler{
		pg:         cfg.Postgres,
		redis:      cfg.Redis,
		logger:     cfg.Logger.Sugar(),
		validator:  validator.New(),
		adminHash:  cfg.AdminTokenHash,
		schemaPath: cfg.SchemaPath,
		events:     cfg.Events,
		aliases:    cfg.Aliases,
		picks:      cfg.Picks,
		results:    cfg.Results,
		scoring:    cfg.Scoring,
		analytics:  cfg.Analytics,
		export:     cfg.Export,
		ingest:     cfg.Ingest,
		ask:        cfg.Ask,
		jobs:       cfg.Jobs,
	}
}
