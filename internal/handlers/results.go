package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// GetResult returns the official outcome of a bout
// @Summary Get Result
// @Tags Results
// @Produce json
// @Param id path string true "Fight ID"
// @Success 200 {object} models.Result
// @Failure 404 {object} map[string]string
// @Router /fights/{id}/result [get]
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	result, err := h.results.GetResult(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, "get result")
		return
	}
	h.jsonResponse(w, http.StatusOK, result)
}

// SaveResult records the outcome of one bout. A second result is rejected.
// @Summary Save Result
// @Tags Results
// @Accept json
// @Produce json
// @Security AdminToken
// @Param id path string true "Fight ID"
// @Param body body models.SaveResultRequest true "Result"
// @Success 201 {object} models.Result
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "Result already recorded or fight cancelled"
// @Router /fights/{id}/result [post]
func (h *Handler) SaveResult(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req models.SaveResultRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	saved, err := h.results.SaveResult(r.Context(), req.ToResult(id))
	if err != nil {
		h.serviceError(w, err, "save result")
		return
	}
	h.scoring.Invalidate(r.Context())
	h.jsonResponse(w, http.StatusCreated, saved)
}

// SaveResultsCard records results for a whole card in one transaction
// @Summary Save Card Results
// @Tags Results
// @Accept json
// @Produce json
// @Security AdminToken
// @Param id path string true "Event ID"
// @Param body body models.ResultsCardRequest true "Results"
// @Success 201 {array} models.Result
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /events/{id}/results [post]
func (h *Handler) SaveResultsCard(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req models.ResultsCardRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	card, err := h.events.ListFights(r.Context(), eventID)
	if err != nil {
		h.serviceError(w, err, "save results")
		return
	}
	onCard := make(map[uuid.UUID]bool, len(card))
	for _, f := range card {
		onCard[f.ID] = true
	}

	results := make([]models.Result, 0, len(req.Results))
	for i, res := range req.Results {
		if !onCard[res.FightID] {
			h.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("result %d: fight %s is not on this event", i, res.FightID))
			return
		}
		results = append(results, res.ToResult(res.FightID))
	}

	saved, err := h.results.SaveResultsCard(r.Context(), results)
	if err != nil {
		h.serviceError(w, err, "save results")
		return
	}
	h.scoring.Invalidate(r.Context())
	h.jsonResponse(w, http.StatusCreated, saved)
}
