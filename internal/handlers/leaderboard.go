package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// parseScoreFilter reads the leaderboard filters from the query string
func parseScoreFilter(q url.Values) (models.ScoreFilter, error) {
	f := models.ScoreFilter{
		Analyst:     strings.TrimSpace(q.Get("analyst")),
		WeightClass: strings.TrimSpace(q.Get("weight_class")),
	}
	if v := q.Get("title_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, err
		}
		f.TitleOnly = b
	}
	var err error
	if f.From, err = models.ParseEventDate(q.Get("from")); err != nil {
		return f, err
	}
	if f.To, err = models.ParseEventDate(q.Get("to")); err != nil {
		return f, err
	}
	return f, nil
}

// GetLeaderboard ranks analysts by accuracy
// @Summary Analyst Leaderboard
// @Description Accuracy is wins / (wins + losses). Cancelled fights, no contests and no-pick entries are excluded.
// @Tags Scoring
// @Produce json
// @Param analyst query string false "Analyst name"
// @Param weight_class query string false "Weight class"
// @Param title_only query bool false "Title fights only"
// @Param from query string false "Earliest event date (YYYY-MM-DD)"
// @Param to query string false "Latest event date (YYYY-MM-DD)"
// @Param min_picks query int false "Minimum decided picks"
// @Success 200 {object} models.Leaderboard
// @Failure 400 {object} map[string]string
// @Router /scoring/leaderboard [get]
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseScoreFilter(q)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid filter: "+err.Error())
		return
	}

	minPicks := 0
	if v := q.Get("min_picks"); v != "" {
		if minPicks, err = strconv.Atoi(v); err != nil || minPicks < 0 {
			h.errorResponse(w, http.StatusBadRequest, "Invalid min_picks")
			return
		}
	}

	board, err := h.scoring.Leaderboard(r.Context(), filter, minPicks)
	if err != nil {
		h.serviceError(w, err, "compute leaderboard")
		return
	}
	h.jsonResponse(w, http.StatusOK, board)
}

// GetAnalystRecord returns one analyst's record under the same filters
// @Summary Analyst Record
// @Tags Scoring
// @Produce json
// @Param name path string true "Analyst name"
// @Param weight_class query string false "Weight class"
// @Param title_only query bool false "Title fights only"
// @Param from query string false "Earliest event date (YYYY-MM-DD)"
// @Param to query string false "Latest event date (YYYY-MM-DD)"
// @Success 200 {object} models.AnalystRecord
// @Failure 400 {object} map[string]string
// @Router /scoring/analysts/{name} [get]
func (h *Handler) GetAnalystRecord(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || strings.TrimSpace(name) == "" {
		h.errorResponse(w, http.StatusBadRequest, "Analyst name is required")
		return
	}
	filter, err := parseScoreFilter(r.URL.Query())
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid filter: "+err.Error())
		return
	}

	record, err := h.scoring.AnalystRecord(r.Context(), name, filter)
	if err != nil {
		h.serviceError(w, err, "compute analyst record")
		return
	}
	h.jsonResponse(w, http.StatusOK, record)
}
