package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
)

// DefaultSchemaPath is the Postgres schema applied by InstallDatabase
var DefaultSchemaPath = filepath.Join("migrations", "postgres", "001_initial_schema.sql")

// InstallDatabase applies the schema. Statements are idempotent.
// @Summary Install Database Schema
// @Description Executes the consolidated PostgreSQL schema
// @Tags System
// @Produce json
// @Security AdminToken
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /system/install [post]
func (h *Handler) InstallDatabase(w http.ResponseWriter, r *http.Request) {
	path := h.schemaPath
	if path == "" {
		path = DefaultSchemaPath
	}

	results := make(map[string]string)
	hasError := false
	if err := h.executePostgresSQL(r.Context(), path); err != nil {
		results["postgres"] = "failed: " + err.Error()
		hasError = true
	} else {
		results["postgres"] = "success"
	}

	statusCode := http.StatusOK
	if hasError {
		statusCode = http.StatusInternalServerError
	}

	h.jsonResponse(w, statusCode, map[string]interface{}{
		"status":  "completed",
		"results": results,
		"error":   hasError,
	})
}

// executePostgresSQL reads a SQL file and executes it on Postgres
func (h *Handler) executePostgresSQL(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		h.logger.Errorw("failed to read schema file", "path", path, "error", err)
		return err
	}

	if _, err := h.pg.Exec(ctx, string(content)); err != nil {
		h.logger.Errorw("failed to execute schema", "error", err)
		return err
	}

	h.logger.Infow("successfully installed schema", "path", path)
	return nil
}
