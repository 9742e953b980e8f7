package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportEvent downloads the picks of a card as CSV
// @Summary Export Event Picks
// @Description Default columns: Event, Fighter Picked, Method, Analyst. With full=true the fight, confidence, tags, reasoning and source are added.
// @Tags Export
// @Produce text/csv
// @Param id path string true "Event ID"
// @Param full query bool false "Include every column"
// @Success 200 {string} string "CSV file"
// @Failure 404 {object} map[string]string
// @Router /events/{id}/export [get]
func (h *Handler) ExportEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	full, _ := strconv.ParseBool(r.URL.Query().Get("full"))

	event, err := h.events.GetEvent(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, "export event")
		return
	}

	var buf bytes.Buffer
	if err := h.export.ExportEventCSV(r.Context(), id, full, &buf); err != nil {
		h.serviceError(w, err, "export event")
		return
	}

	name := strings.Trim(unsafeFilename.ReplaceAllString(event.Name, "_"), "_")
	if name == "" {
		name = "event"
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"_picks.csv"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
