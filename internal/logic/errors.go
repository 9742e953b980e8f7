package logic

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrExtractionMalformed means the extraction payload lacks required structure
	ErrExtractionMalformed = errors.New("extraction malformed")
	// ErrDuplicateResult means the fight already has a result
	ErrDuplicateResult = errors.New("result already recorded for fight")
	// ErrScrapeEmpty means scraping yielded no text; paste the article instead
	ErrScrapeEmpty = errors.New("scrape returned no text")

	ErrNotFound             = errors.New("not found")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrFightCancelled       = errors.New("fight is cancelled")
	ErrFightCompleted       = errors.New("fight is already completed")
	ErrInvalidResult        = errors.New("invalid result")
	ErrInvalidPick          = errors.New("invalid pick")
	ErrUnresolvedName       = errors.New("fighter name needs confirmation")
	ErrUnknownCanonical     = errors.New("unknown canonical name")
	ErrAliasConflict        = errors.New("alias already mapped to another fighter")
	ErrResolutionSettled    = errors.New("resolution already settled")
	ErrLLMUnavailable       = errors.New("llm client not configured")
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique constraint failure
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// notFound maps pgx.ErrNoRows to ErrNotFound and passes anything else through
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
