package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/models"
)

type pickService struct {
	pg     TxPool
	logger *zap.SugaredLogger
}

func NewPickService(pg TxPool, logger *zap.Logger) PickService {
	return &pickService{pg: pg, logger: logger.Sugar()}
}

func scanPick(row scanner) (*models.AnalystPick, error) {
	var p models.AnalystPick
	var method, confidence string
	if err := row.Scan(&p.ID, &p.FightID, &p.AnalystName, &p.Platform, &p.SourceURL,
		&p.PickedFighter, &method, &confidence, &p.ReasoningNotes, &p.Tags, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.MethodPrediction = models.Method(method)
	p.ConfidenceTag = models.ConfidenceTag(confidence)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func (s *pickService) CreatePick(ctx context.Context, req models.CreatePickRequest) (*models.AnalystPick, error) {
	tx, err := s.pg.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	fight, err := getFight(ctx, tx, req.FightID)
	if err != nil {
		return nil, err
	}
	if fight.Status == models.FightCancelled {
		return nil, ErrFightCancelled
	}
	picked, err := pickedOnCard(req.PickedFighter, fight)
	if err != nil {
		return nil, err
	}

	p := &models.AnalystPick{
		FightID:          req.FightID,
		AnalystName:      strings.TrimSpace(req.AnalystName),
		Platform:         strings.TrimSpace(req.Platform),
		SourceURL:        strings.TrimSpace(req.SourceURL),
		PickedFighter:    picked,
		MethodPrediction: NormalizeMethod(req.MethodPrediction),
		ConfidenceTag:    NormalizeConfidence(req.ConfidenceTag),
		ReasoningNotes:   strings.TrimSpace(req.ReasoningNotes),
		Tags:             cleanTags(req.Tags),
	}
	if err := insertPick(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit pick: %w", err)
	}

	picksSaved.Inc()
	s.logger.Infow("Pick created", "pick_id", p.ID, "fight_id", p.FightID, "analyst", p.AnalystName)
	return p, nil
}

func (s *pickService) GetPick(ctx context.Context, id uuid.UUID) (*models.AnalystPick, error) {
	return getPick(ctx, s.pg, id)
}

func getPick(ctx context.Context, db PgPool, id uuid.UUID) (*models.AnalystPick, error) {
	p, err := scanPick(db.QueryRow(ctx, pickSelect+" WHERE p.pick_id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("failed to get pick %s: %w", id, notFound(err))
	}
	return p, nil
}

func (s *pickService) ListPicks(ctx context.Context, filter PickFilter) ([]models.AnalystPick, error) {
	return listPicks(ctx, s.pg, filter)
}

func listPicks(ctx context.Context, db PgPool, filter PickFilter) ([]models.AnalystPick, error) {
	query, args := BuildPickListQuery(filter)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks: %w", err)
	}
	defer rows.Close()

	list := []models.AnalystPick{}
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func (s *pickService) UpdatePick(ctx context.Context, id uuid.UUID, req models.UpdatePickRequest) (*models.AnalystPick, error) {
	tx, err := s.pg.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := getPick(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if req.PickedFighter != nil {
		picked := trimmedOrNil(req.PickedFighter)
		if picked != nil {
			fight, err := getFight(ctx, tx, p.FightID)
			if err != nil {
				return nil, err
			}
			if picked, err = pickedOnCard(picked, fight); err != nil {
				return nil, err
			}
		}
		p.PickedFighter = picked
	}
	if req.MethodPrediction != nil {
		p.MethodPrediction = NormalizeMethod(*req.MethodPrediction)
	}
	if req.ConfidenceTag != nil {
		p.ConfidenceTag = NormalizeConfidence(*req.ConfidenceTag)
	}
	if req.ReasoningNotes != nil {
		p.ReasoningNotes = strings.TrimSpace(*req.ReasoningNotes)
	}

	_, err = tx.Exec(ctx, `
		UPDATE analyst_picks
		SET picked_fighter = $2, method_prediction = NULLIF($3, ''), confidence_tag = $4, reasoning_notes = NULLIF($5, '')
		WHERE pick_id = $1
	`, p.ID, p.PickedFighter, string(p.MethodPrediction), string(p.ConfidenceTag), p.ReasoningNotes)
	if err != nil {
		return nil, fmt.Errorf("failed to update pick: %w", err)
	}

	if req.Tags != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM pick_tags WHERE pick_id = $1`, p.ID); err != nil {
			return nil, fmt.Errorf("failed to clear tags: %w", err)
		}
		p.Tags = cleanTags(*req.Tags)
		if err := insertTags(ctx, tx, p.ID, p.Tags); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit pick update: %w", err)
	}
	s.logger.Infow("Pick updated", "pick_id", p.ID)
	return p, nil
}

// DeletePick removes a pick and its tags. confirmed must be true.
func (s *pickService) DeletePick(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	tag, err := s.pg.Exec(ctx, `DELETE FROM analyst_picks WHERE pick_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pick: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.logger.Infow("Pick deleted", "pick_id", id)
	return nil
}

// PickCounts returns the number of picks per picked fighter name
func (s *pickService) PickCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT picked_fighter, count(*)
		FROM analyst_picks
		WHERE picked_fighter IS NOT NULL
		GROUP BY picked_fighter
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count picks: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan pick count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// insertPick writes a pick row and its tags, filling ID and CreatedAt
func insertPick(ctx context.Context, db PgPool, p *models.AnalystPick) error {
	p.ID = uuid.New()
	err := db.QueryRow(ctx, `
		INSERT INTO analyst_picks (pick_id, fight_id, analyst_name, platform, source_url, picked_fighter,
			method_prediction, confidence_tag, reasoning_notes)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, NULLIF($7, ''), $8, NULLIF($9, ''))
		RETURNING created_at
	`, p.ID, p.FightID, p.AnalystName, p.Platform, p.SourceURL, p.PickedFighter,
		string(p.MethodPrediction), string(p.ConfidenceTag), p.ReasoningNotes).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pick: %w", err)
	}
	return insertTags(ctx, db, p.ID, p.Tags)
}

func insertTags(ctx context.Context, db PgPool, pickID uuid.UUID, tags []string) error {
	for _, tag := range tags {
		if _, err := db.Exec(ctx,
			`INSERT INTO pick_tags (tag_id, pick_id, tag) VALUES ($1, $2, $3)`,
			uuid.New(), pickID, tag); err != nil {
			return fmt.Errorf("failed to insert tag %q: %w", tag, err)
		}
	}
	return nil
}

// cleanTags trims, drops empties and de-duplicates case-insensitively
func cleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := []string{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// pickedOnCard checks the picked name against both corners and returns the
// fight's own spelling. An empty pick is nil.
func pickedOnCard(raw *string, fight *models.Fight) (*string, error) {
	picked := trimmedOrNil(raw)
	if picked == nil {
		return nil, nil
	}
	switch {
	case SameFighter(*picked, fight.FighterA):
		return &fight.FighterA, nil
	case SameFighter(*picked, fight.FighterB):
		return &fight.FighterB, nil
	}
	return nil, fmt.Errorf("%w: %q is not in %s", ErrInvalidPick, *picked, fight.Label())
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
