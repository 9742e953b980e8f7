package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chatmma/analyst-tracker/internal/models"
)

type aliasService struct {
	pg PgPool
}

func NewAliasService(pg PgPool) AliasService {
	return &aliasService{pg: pg}
}

func (s *aliasService) ListAliases(ctx context.Context) ([]models.FighterAlias, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT alias_id, canonical_name, alias
		FROM fighter_aliases
		ORDER BY canonical_name, alias
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query aliases: %w", err)
	}
	defer rows.Close()

	var list []models.FighterAlias
	for rows.Next() {
		var a models.FighterAlias
		if err := rows.Scan(&a.ID, &a.CanonicalName, &a.Alias); err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// insertAlias appends one alias row. db may be a pool or an open transaction.
func insertAlias(ctx context.Context, db PgPool, canonical, alias string) (*models.FighterAlias, error) {
	a := &models.FighterAlias{
		ID:            uuid.New(),
		CanonicalName: strings.TrimSpace(canonical),
		Alias:         strings.TrimSpace(alias),
	}
	_, err := db.Exec(ctx,
		`INSERT INTO fighter_aliases (alias_id, canonical_name, alias) VALUES ($1, $2, $3)`,
		a.ID, a.CanonicalName, a.Alias)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", ErrAliasConflict, a.Alias)
		}
		return nil, fmt.Errorf("failed to insert alias: %w", err)
	}
	return a, nil
}
