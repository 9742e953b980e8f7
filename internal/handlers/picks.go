package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/chatmma/analyst-tracker/internal/logic"
	"github.com/chatmma/analyst-tracker/internal/models"
)

// ListPicks lists picks filtered by fight, event or analyst
// @Summary List Picks
// @Tags Picks
// @Produce json
// @Param fight_id query string false "Fight ID"
// @Param event_id query string false "Event ID"
// @Param analyst query string false "Analyst name (case-insensitive)"
// @Param limit query int false "Max rows (default 500, max 1000)"
// @Success 200 {array} models.AnalystPick
// @Failure 400 {object} map[string]string
// @Router /picks [get]
func (h *Handler) ListPicks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := logic.PickFilter{Analyst: strings.TrimSpace(q.Get("analyst"))}

	for param, dst := range map[string]**uuid.UUID{"fight_id": &filter.FightID, "event_id": &filter.EventID} {
		if v := q.Get(param); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				h.errorResponse(w, http.StatusBadRequest, "Invalid "+param)
				return
			}
			*dst = &id
		}
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			h.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = limit
	}

	h.listPicks(w, r, filter)
}

// ListFightPicks lists the picks on one bout
// @Summary List Fight Picks
// @Tags Picks
// @Produce json
// @Param id path string true "Fight ID"
// @Success 200 {array} models.AnalystPick
// @Router /fights/{id}/picks [get]
func (h *Handler) ListFightPicks(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	h.listPicks(w, r, logic.PickFilter{FightID: &id})
}

func (h *Handler) listPicks(w http.ResponseWriter, r *http.Request, filter logic.PickFilter) {
	picks, err := h.picks.ListPicks(r.Context(), filter)
	if err != nil {
		h.serviceError(w, err, "list picks")
		return
	}
	if picks == nil {
		picks = []models.AnalystPick{}
	}
	h.jsonResponse(w, http.StatusOK, picks)
}

// GetPick returns one pick with its tags
// @Summary Get Pick
// @Tags Picks
// @Produce json
// @Param id path string true "Pick ID"
// @Success 200 {object} models.AnalystPick
// @Failure 404 {object} map[string]string
// @Router /picks/{id} [get]
func (h *Handler) GetPick(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	pick, err := h.picks.GetPick(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, "get pick")
		return
	}
	h.jsonResponse(w, http.StatusOK, pick)
}

// CreatePick records one pick against an existing fight
// @Summary Create Pick
// @Tags Picks
// @Accept json
// @Produce json
// @Security AdminToken
// @Param body body models.CreatePickRequest true "Pick"
// @Success 201 {object} models.AnalystPick
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /picks [post]
func (h *Handler) CreatePick(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePickRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	pick, err := h.picks.CreatePick(r.Context(), req)
	if err != nil {
		h.serviceError(w, err, "create pick")
		return
	}
	h.scoring.Invalidate(r.Context())
	h.jsonResponse(w, http.StatusCreated, pick)
}

// UpdatePick changes the supplied fields of a pick
// @Summary Update Pick
// @Tags Picks
// @Accept json
// @Produce json
// @Security AdminToken
// @Param id path string true "Pick ID"
// @Param body body models.UpdatePickRequest true "Changes"
// @Success 200 {object} models.AnalystPick
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /picks/{id} [put]
func (h *Handler) UpdatePick(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdatePickRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	pick, err := h.picks.UpdatePick(r.Context(), id, req)
	if err != nil {
		h.serviceError(w, err, "update pick")
		return
	}
	h.scoring.Invalidate(r.Context())
	h.jsonResponse(w, http.StatusOK, pick)
}

// DeletePick removes a pick. Requires ?confirm=true.
// @Summary Delete Pick
// @Tags Picks
// @Produce json
// @Security AdminToken
// @Param id path string true "Pick ID"
// @Param confirm query bool true "Must be true"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /picks/{id} [delete]
func (h *Handler) DeletePick(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := h.picks.DeletePick(r.Context(), id, confirmed); err != nil {
		h.serviceError(w, err, "delete pick")
		return
	}
	h.scoring.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
