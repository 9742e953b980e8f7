package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/models"
)

type resultService struct {
	pg     TxPool
	logger *zap.SugaredLogger
}

func NewResultService(pg TxPool, logger *zap.Logger) ResultService {
	return &resultService{pg: pg, logger: logger.Sugar()}
}

const resultColumns = `result_id, fight_id, COALESCE(winner, ''), method, COALESCE(round, 0), COALESCE(time, ''), COALESCE(referee, ''),
	COALESCE(judge1_name, ''), COALESCE(judge1_score, ''),
	COALESCE(judge2_name, ''), COALESCE(judge2_score, ''),
	COALESCE(judge3_name, ''), COALESCE(judge3_score, ''),
	created_at`

func scanResult(row scanner) (*models.Result, error) {
	var r models.Result
	var method string
	var judges [models.MaxJudges]models.JudgeScore
	if err := row.Scan(&r.ID, &r.FightID, &r.Winner, &method, &r.Round, &r.Time, &r.Referee,
		&judges[0].Name, &judges[0].Score,
		&judges[1].Name, &judges[1].Score,
		&judges[2].Name, &judges[2].Score,
		&r.CreatedAt); err != nil {
		return nil, err
	}
	r.Method = models.Method(method)
	for _, j := range judges {
		if j.Name != "" {
			r.Judges = append(r.Judges, j)
		}
	}
	return &r, nil
}

// SaveResult records the outcome of one fight and marks it completed.
// A fight that already has a result is left untouched.
func (s *resultService) SaveResult(ctx context.Context, result models.Result) (*models.Result, error) {
	tx, err := s.pg.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	saved, err := saveResult(ctx, tx, result)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit result: %w", err)
	}

	s.logger.Infow("Result saved", "fight_id", saved.FightID, "winner", saved.Winner, "method", saved.Method)
	return saved, nil
}

// SaveResultsCard saves every result in one transaction. Any failure,
// including a duplicate, leaves the whole card unsaved.
func (s *resultService) SaveResultsCard(ctx context.Context, results []models.Result) ([]models.Result, error) {
	tx, err := s.pg.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	saved := make([]models.Result, 0, len(results))
	for i, r := range results {
		res, err := saveResult(ctx, tx, r)
		if err != nil {
			return nil, fmt.Errorf("result %d (fight %s): %w", i, r.FightID, err)
		}
		saved = append(saved, *res)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit results card: %w", err)
	}

	s.logger.Infow("Results card saved", "results", len(saved))
	return saved, nil
}

func (s *resultService) GetResult(ctx context.Context, fightID uuid.UUID) (*models.Result, error) {
	r, err := scanResult(s.pg.QueryRow(ctx, `SELECT `+resultColumns+` FROM results WHERE fight_id = $1`, fightID))
	if err != nil {
		return nil, fmt.Errorf("failed to get result for fight %s: %w", fightID, notFound(err))
	}
	return r, nil
}

func saveResult(ctx context.Context, db PgPool, r models.Result) (*models.Result, error) {
	fight, err := getFight(ctx, db, r.FightID)
	if err != nil {
		return nil, err
	}
	if fight.Status == models.FightCancelled {
		return nil, ErrFightCancelled
	}
	if err := validateResult(&r, fight); err != nil {
		return nil, err
	}

	var judges [models.MaxJudges]models.JudgeScore
	copy(judges[:], r.Judges)

	r.ID = uuid.New()
	err = db.QueryRow(ctx, `
		INSERT INTO results (result_id, fight_id, winner, method, round, time, referee,
			judge1_name, judge1_score, judge2_name, judge2_score, judge3_name, judge3_score)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), NULLIF($7, ''),
			NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, ''))
		RETURNING created_at
	`, r.ID, r.FightID, r.Winner, string(r.Method), r.Round, r.Time, r.Referee,
		judges[0].Name, judges[0].Score, judges[1].Name, judges[1].Score, judges[2].Name, judges[2].Score,
	).Scan(&r.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: fight %s", ErrDuplicateResult, r.FightID)
		}
		return nil, fmt.Errorf("failed to insert result: %w", err)
	}

	if _, err := db.Exec(ctx, `UPDATE fights SET status = 'completed' WHERE fight_id = $1`, r.FightID); err != nil {
		return nil, fmt.Errorf("failed to complete fight: %w", err)
	}
	return &r, nil
}

// validateResult normalizes r in place. The winner is stored with the
// fight's own spelling.
func validateResult(r *models.Result, fight *models.Fight) error {
	r.Method = NormalizeMethod(string(r.Method))
	if r.Method == models.MethodNone {
		return fmt.Errorf("%w: unknown method", ErrInvalidResult)
	}

	r.Winner = strings.TrimSpace(r.Winner)
	switch {
	case r.Method == models.MethodNC:
		r.Winner = ""
	case r.Winner == "":
		return fmt.Errorf("%w: winner required for %s", ErrInvalidResult, r.Method)
	case SameFighter(r.Winner, fight.FighterA):
		r.Winner = fight.FighterA
	case SameFighter(r.Winner, fight.FighterB):
		r.Winner = fight.FighterB
	default:
		return fmt.Errorf("%w: winner %q is not in %s", ErrInvalidResult, r.Winner, fight.Label())
	}

	if r.Round < 1 || r.Round > 5 {
		return fmt.Errorf("%w: round must be between 1 and 5", ErrInvalidResult)
	}
	if len(r.Judges) > models.MaxJudges {
		return fmt.Errorf("%w: at most %d judges", ErrInvalidResult, models.MaxJudges)
	}
	if len(r.Judges) > 0 && r.Method != models.MethodDecision {
		return fmt.Errorf("%w: judges apply to decisions only", ErrInvalidResult)
	}
	r.Judges = append([]models.JudgeScore(nil), r.Judges...)
	for i := range r.Judges {
		r.Judges[i].Name = strings.TrimSpace(r.Judges[i].Name)
		r.Judges[i].Score = strings.TrimSpace(r.Judges[i].Score)
		if r.Judges[i].Name == "" {
			return fmt.Errorf("%w: judge %d has no name", ErrInvalidResult, i+1)
		}
	}
	return nil
}
