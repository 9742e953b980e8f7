// Command aliasimport bulk-loads confirmed fighter aliases from a CSV file.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func main() {
	dsn := flag.String("postgres", os.Getenv("TRACKER_POSTGRES_URL"), "Postgres connection URL")
	file := flag.String("file", "aliases.csv", "CSV of canonical_name,alias rows")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	log := logger.Sugar()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalw("Failed to open alias file", "file", *file, "error", err)
	}
	defer f.Close()

	rows, err := ParseAliasCSV(f)
	if err != nil {
		log.Fatalw("Invalid alias file", "error", err)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, *dsn)
	if err != nil {
		log.Fatalw("Failed to connect", "error", err)
	}
	defer conn.Close(ctx)

	inserted, err := ImportAliases(ctx, conn, rows)
	if err != nil {
		log.Fatalw("Import failed", "error", err)
	}
	log.Infow("Aliases imported", "rows", len(rows), "inserted", inserted, "skipped", len(rows)-inserted)
}
