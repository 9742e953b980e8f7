package handlers

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/chatmma/analyst-tracker/internal/logic"
	"github.com/chatmma/analyst-tracker/internal/models"
)

// MockDatabase
type MockDatabase struct {
	PingErr  error
	ExecFunc func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (m *MockDatabase) Ping(ctx context.Context) error { return m.PingErr }

func (m *MockDatabase) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

// MockPinger
type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.Err)
}

// MockEventService
type MockEventService struct {
	logic.EventService
	GetEventFunc    func(ctx context.Context, id uuid.UUID) (*models.Event, error)
	CreateEventFunc func(ctx context.Context, req models.CreateEventRequest) (*models.Event, error)
	ListFightsFunc  func(ctx context.Context, eventID uuid.UUID) ([]models.Fight, error)
	CancelFightFunc func(ctx context.Context, id uuid.UUID) (*models.Fight, error)
}

func (m *MockEventService) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if m.GetEventFunc != nil {
		return m.GetEventFunc(ctx, id)
	}
	return &models.Event{ID: id, Name: "UFC 309"}, nil
}

func (m *MockEventService) CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, req)
	}
	return &models.Event{ID: uuid.New(), Name: req.Name}, nil
}

func (m *MockEventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return nil, nil
}

func (m *MockEventService) ListFights(ctx context.Context, eventID uuid.UUID) ([]models.Fight, error) {
	if m.ListFightsFunc != nil {
		return m.ListFightsFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *MockEventService) CancelFight(ctx context.Context, id uuid.UUID) (*models.Fight, error) {
	if m.CancelFightFunc != nil {
		return m.CancelFightFunc(ctx, id)
	}
	return &models.Fight{ID: id, Status: models.FightCancelled}, nil
}

// MockPickService
type MockPickService struct {
	logic.PickService
	ListPicksFunc  func(ctx context.Context, filter logic.PickFilter) ([]models.AnalystPick, error)
	CreatePickFunc func(ctx context.Context, req models.CreatePickRequest) (*models.AnalystPick, error)
	DeletePickFunc func(ctx context.Context, id uuid.UUID, confirmed bool) error
}

func (m *MockPickService) ListPicks(ctx context.Context, filter logic.PickFilter) ([]models.AnalystPick, error) {
	if m.ListPicksFunc != nil {
		return m.ListPicksFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockPickService) CreatePick(ctx context.Context, req models.CreatePickRequest) (*models.AnalystPick, error) {
	if m.CreatePickFunc != nil {
		return m.CreatePickFunc(ctx, req)
	}
	return &models.AnalystPick{ID: uuid.New(), FightID: req.FightID, AnalystName: req.AnalystName}, nil
}

func (m *MockPickService) DeletePick(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if m.DeletePickFunc != nil {
		return m.DeletePickFunc(ctx, id, confirmed)
	}
	return nil
}

// MockResultService
type MockResultService struct {
	logic.ResultService
	SaveResultFunc      func(ctx context.Context, result models.Result) (*models.Result, error)
	SaveResultsCardFunc func(ctx context.Context, results []models.Result) ([]models.Result, error)
}

func (m *MockResultService) SaveResult(ctx context.Context, result models.Result) (*models.Result, error) {
	if m.SaveResultFunc != nil {
		return m.SaveResultFunc(ctx, result)
	}
	result.ID = uuid.New()
	return &result, nil
}

func (m *MockResultService) SaveResultsCard(ctx context.Context, results []models.Result) ([]models.Result, error) {
	if m.SaveResultsCardFunc != nil {
		return m.SaveResultsCardFunc(ctx, results)
	}
	return results, nil
}

// MockScoringService records invalidations
type MockScoringService struct {
	LeaderboardFunc   func(ctx context.Context, filter models.ScoreFilter, minPicks int) (*models.Leaderboard, error)
	AnalystRecordFunc func(ctx context.Context, analyst string, filter models.ScoreFilter) (*models.AnalystRecord, error)
	Invalidations     int
}

func (m *MockScoringService) Leaderboard(ctx context.Context, filter models.ScoreFilter, minPicks int) (*models.Leaderboard, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, filter, minPicks)
	}
	return &models.Leaderboard{Filter: filter}, nil
}

func (m *MockScoringService) AnalystRecord(ctx context.Context, analyst string, filter models.ScoreFilter) (*models.AnalystRecord, error) {
	if m.AnalystRecordFunc != nil {
		return m.AnalystRecordFunc(ctx, analyst, filter)
	}
	return &models.AnalystRecord{Analyst: analyst}, nil
}

func (m *MockScoringService) Invalidate(ctx context.Context) { m.Invalidations++ }

// MockAnalyticsService
type MockAnalyticsService struct {
	logic.AnalyticsService
	ConsensusFunc func(ctx context.Context, eventID uuid.UUID) (*models.EventConsensus, error)
}

func (m *MockAnalyticsService) Consensus(ctx context.Context, eventID uuid.UUID) (*models.EventConsensus, error) {
	if m.ConsensusFunc != nil {
		return m.ConsensusFunc(ctx, eventID)
	}
	return &models.EventConsensus{}, nil
}

// MockExportService
type MockExportService struct {
	ExportFunc func(ctx context.Context, eventID uuid.UUID, full bool, w io.Writer) error
}

func (m *MockExportService) ExportEventCSV(ctx context.Context, eventID uuid.UUID, full bool, w io.Writer) error {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, eventID, full, w)
	}
	return nil
}

// MockIngestService
type MockIngestService struct {
	PrepareFunc      func(ctx context.Context, url, text string) (*models.ExtractionReview, error)
	NormalizeRawFunc func(ctx context.Context, raw []byte) (*models.ExtractionReview, error)
	ResolveFunc      func(ctx context.Context, name string) (models.NameVerdict, error)
	CommitFunc       func(ctx context.Context, req models.CommitBatchRequest) (*models.CommitBatchResponse, error)
}

func (m *MockIngestService) Prepare(ctx context.Context, url, text string) (*models.ExtractionReview, error) {
	if m.PrepareFunc != nil {
		return m.PrepareFunc(ctx, url, text)
	}
	return &models.ExtractionReview{}, nil
}

func (m *MockIngestService) NormalizeRaw(ctx context.Context, raw []byte) (*models.ExtractionReview, error) {
	if m.NormalizeRawFunc != nil {
		return m.NormalizeRawFunc(ctx, raw)
	}
	return &models.ExtractionReview{}, nil
}

func (m *MockIngestService) Resolve(ctx context.Context, name string) (models.NameVerdict, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, name)
	}
	return models.NameVerdict{Raw: name, Kind: models.VerdictNoCandidate}, nil
}

func (m *MockIngestService) Commit(ctx context.Context, req models.CommitBatchRequest) (*models.CommitBatchResponse, error) {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx, req)
	}
	return &models.CommitBatchResponse{EventID: uuid.New(), Saved: len(req.Picks)}, nil
}

// MockAskService
type MockAskService struct {
	AnswerFunc func(ctx context.Context, question string) (*models.AskResponse, error)
}

func (m *MockAskService) Answer(ctx context.Context, question string) (*models.AskResponse, error) {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, question)
	}
	return &models.AskResponse{QueryType: "general", Answer: "ok"}, nil
}

// MockJobQueue
type MockJobQueue struct {
	Full bool
	Jobs map[uuid.UUID]*models.ExtractionJob
}

func (m *MockJobQueue) Enqueue(url, text string) (*models.ExtractionJob, bool) {
	if m.Full {
		return nil, false
	}
	j := &models.ExtractionJob{ID: uuid.New(), Status: models.JobQueued, SourceURL: url}
	if m.Jobs == nil {
		m.Jobs = map[uuid.UUID]*models.ExtractionJob{}
	}
	m.Jobs[j.ID] = j
	return j, true
}

func (m *MockJobQueue) Get(id uuid.UUID) (*models.ExtractionJob, bool) {
	j, ok := m.Jobs[id]
	return j, ok
}
