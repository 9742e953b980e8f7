package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// AliasRow is one canonical,alias line of the import file
type AliasRow struct {
	Canonical string
	Alias     string
}

// ParseAliasCSV reads canonical,alias rows. A header row is skipped, blank
// lines are ignored and a canonical name is always imported as its own alias.
func ParseAliasCSV(r io.Reader) ([]AliasRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	seen := make(map[string]string)
	var rows []AliasRow
	add := func(canonical, alias string, line int) error {
		key := strings.ToLower(alias)
		if prev, ok := seen[key]; ok {
			if prev != canonical {
				return fmt.Errorf("line %d: alias %q maps to both %q and %q", line, alias, prev, canonical)
			}
			return nil
		}
		seen[key] = canonical
		rows = append(rows, AliasRow{Canonical: canonical, Alias: alias})
		return nil
	}

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: expected canonical,alias", line)
		}
		canonical, alias := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if line == 1 && strings.EqualFold(canonical, "canonical_name") {
			continue
		}
		if canonical == "" || alias == "" {
			return nil, fmt.Errorf("line %d: empty name", line)
		}
		if err := add(canonical, canonical, line); err != nil {
			return nil, err
		}
		if err := add(canonical, alias, line); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// Execer is the part of pgx.Conn the importer needs
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ImportAliases inserts rows in one transaction. Spellings already present
// are left alone. It returns how many rows were inserted.
func ImportAliases(ctx context.Context, db Execer, rows []AliasRow) (int, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, row := range rows {
		tag, err := tx.Exec(ctx,
			`INSERT INTO fighter_aliases (alias_id, canonical_name, alias) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			uuid.New(), row.Canonical, row.Alias)
		if err != nil {
			return 0, fmt.Errorf("insert %q: %w", row.Alias, err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}
