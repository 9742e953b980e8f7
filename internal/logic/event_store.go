package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/models"
)

type scanner interface {
	Scan(dest ...any) error
}

const eventColumns = `event_id, name, date, COALESCE(location, ''), COALESCE(promotion, ''), created_at`

const fightColumns = `fight_id, event_id, fighter_a, fighter_b, COALESCE(weight_class, ''), bout_order, title_fight, status`

func scanEvent(row scanner) (*models.Event, error) {
	var e models.Event
	if err := row.Scan(&e.ID, &e.Name, &e.Date, &e.Location, &e.Promotion, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func scanFight(row scanner) (*models.Fight, error) {
	var f models.Fight
	var status string
	if err := row.Scan(&f.ID, &f.EventID, &f.FighterA, &f.FighterB, &f.WeightClass, &f.BoutOrder, &f.TitleFight, &status); err != nil {
		return nil, err
	}
	f.Status = models.FightStatus(status)
	return &f, nil
}

type eventService struct {
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewEventService(pg PgPool, logger *zap.Logger) EventService {
	return &eventService{pg: pg, logger: logger.Sugar()}
}

func (s *eventService) CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	date, err := models.ParseEventDate(req.Date)
	if err != nil {
		return nil, err
	}
	return insertEvent(ctx, s.pg, req.Name, date, req.Location, req.Promotion)
}

func (s *eventService) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return getEvent(ctx, s.pg, id)
}

func (s *eventService) FindEventByName(ctx context.Context, name string) (*models.Event, error) {
	return findEventByName(ctx, s.pg, name)
}

func (s *eventService) LatestEvent(ctx context.Context) (*models.Event, error) {
	e, err := scanEvent(s.pg.QueryRow(ctx, `
		SELECT `+eventColumns+` FROM events
		ORDER BY date DESC NULLS LAST, created_at DESC
		LIMIT 1
	`))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest event: %w", notFound(err))
	}
	return e, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.pg.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date DESC NULLS LAST, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	list := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func (s *eventService) CreateFight(ctx context.Context, eventID uuid.UUID, req models.CreateFightRequest) (*models.Fight, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return insertFight(ctx, s.pg, eventID, req)
}

func (s *eventService) GetFight(ctx context.Context, id uuid.UUID) (*models.Fight, error) {
	return getFight(ctx, s.pg, id)
}

func (s *eventService) ListFights(ctx context.Context, eventID uuid.UUID) ([]models.Fight, error) {
	return listFights(ctx, s.pg, eventID)
}

// CancelFight marks a scheduled fight cancelled. Fights are never deleted.
func (s *eventService) CancelFight(ctx context.Context, id uuid.UUID) (*models.Fight, error) {
	f, err := scanFight(s.pg.QueryRow(ctx, `
		UPDATE fights SET status = 'cancelled'
		WHERE fight_id = $1 AND status <> 'completed'
		RETURNING `+fightColumns, id))
	if err == nil {
		s.logger.Infow("Fight cancelled", "fight_id", id)
		return f, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to cancel fight: %w", err)
	}

	existing, getErr := getFight(ctx, s.pg, id)
	if getErr != nil {
		return nil, getErr
	}
	if existing.Status == models.FightCompleted {
		return nil, ErrFightCompleted
	}
	return existing, nil
}

func getEvent(ctx context.Context, db PgPool, id uuid.UUID) (*models.Event, error) {
	e, err := scanEvent(db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE event_id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, notFound(err))
	}
	return e, nil
}

func getFight(ctx context.Context, db PgPool, id uuid.UUID) (*models.Fight, error) {
	f, err := scanFight(db.QueryRow(ctx, `SELECT `+fightColumns+` FROM fights WHERE fight_id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get fight %s: %w", id, notFound(err))
	}
	return f, nil
}

func listFights(ctx context.Context, db PgPool, eventID uuid.UUID) ([]models.Fight, error) {
	rows, err := db.Query(ctx, `SELECT `+fightColumns+` FROM fights WHERE event_id = $1 ORDER BY bout_order, fighter_a`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fights: %w", err)
	}
	defer rows.Close()

	list := []models.Fight{}
	for rows.Next() {
		f, err := scanFight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fight: %w", err)
		}
		list = append(list, *f)
	}
	return list, rows.Err()
}

func insertEvent(ctx context.Context, db PgPool, name string, date *time.Time, location, promotion string) (*models.Event, error) {
	e := &models.Event{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Date:      date,
		Location:  strings.TrimSpace(location),
		Promotion: strings.TrimSpace(promotion),
	}
	err := db.QueryRow(ctx, `
		INSERT INTO events (event_id, name, date, location, promotion)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
		RETURNING created_at
	`, e.ID, e.Name, e.Date, e.Location, e.Promotion).Scan(&e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return e, nil
}

func findEventByName(ctx context.Context, db PgPool, name string) (*models.Event, error) {
	e, err := scanEvent(db.QueryRow(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE lower(name) = lower($1)
		ORDER BY date DESC NULLS LAST
		LIMIT 1
	`, strings.TrimSpace(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to find event %q: %w", name, notFound(err))
	}
	return e, nil
}

// getOrCreateEvent looks an event up by name, creating it when absent
func getOrCreateEvent(ctx context.Context, db PgPool, name string, date *time.Time, location, promotion string) (*models.Event, error) {
	e, err := findEventByName(ctx, db, name)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return insertEvent(ctx, db, name, date, location, promotion)
}

func insertFight(ctx context.Context, db PgPool, eventID uuid.UUID, req models.CreateFightRequest) (*models.Fight, error) {
	f := &models.Fight{
		ID:          uuid.New(),
		EventID:     eventID,
		FighterA:    strings.TrimSpace(req.FighterA),
		FighterB:    strings.TrimSpace(req.FighterB),
		WeightClass: strings.TrimSpace(req.WeightClass),
		BoutOrder:   req.BoutOrder,
		TitleFight:  req.TitleFight,
		Status:      models.FightScheduled,
	}
	err := db.QueryRow(ctx, `
		INSERT INTO fights (fight_id, event_id, fighter_a, fighter_b, weight_class, bout_order, title_fight, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''),
			CASE WHEN $6 > 0 THEN $6 ELSE (SELECT COALESCE(MAX(bout_order), 0) + 1 FROM fights WHERE event_id = $2) END,
			$7, 'scheduled')
		RETURNING bout_order
	`, f.ID, f.EventID, f.FighterA, f.FighterB, f.WeightClass, f.BoutOrder, f.TitleFight).Scan(&f.BoutOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to insert fight: %w", err)
	}
	return f, nil
}

// getOrCreateFight finds a bout on the event with the same two fighters in
// either corner, creating it when absent.
func getOrCreateFight(ctx context.Context, db PgPool, eventID uuid.UUID, req models.CreateFightRequest) (*models.Fight, error) {
	f, err := scanFight(db.QueryRow(ctx, `
		SELECT `+fightColumns+` FROM fights
		WHERE event_id = $1
		AND ((lower(fighter_a) = lower($2) AND lower(fighter_b) = lower($3))
			OR (lower(fighter_a) = lower($3) AND lower(fighter_b) = lower($2)))
		LIMIT 1
	`, eventID, strings.TrimSpace(req.FighterA), strings.TrimSpace(req.FighterB)))
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up fight: %w", err)
	}
	return insertFight(ctx, db, eventID, req)
}
