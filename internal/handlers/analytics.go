package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// eventAggregate serves the per-event analytics endpoints
func (h *Handler) eventAggregate(w http.ResponseWriter, r *http.Request, action string, load func(context.Context, uuid.UUID) (interface{}, error)) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	data, err := load(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, action)
		return
	}
	h.jsonResponse(w, http.StatusOK, data)
}

// GetConsensus returns the majority side of every fight on a card
// @Summary Event Consensus
// @Tags Analytics
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} models.EventConsensus
// @Failure 404 {object} map[string]string
// @Router /events/{id}/consensus [get]
func (h *Handler) GetConsensus(w http.ResponseWriter, r *http.Request) {
	h.eventAggregate(w, r, "compute consensus", func(ctx context.Context, id uuid.UUID) (interface{}, error) {
		return h.analytics.Consensus(ctx, id)
	})
}

// GetInsideDistance returns the fighters most picked to finish
// @Summary Inside The Distance
// @Tags Analytics
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} models.EventInsideDistance
// @Failure 404 {object} map[string]string
// @Router /events/{id}/inside-distance [get]
func (h *Handler) GetInsideDistance(w http.ResponseWriter, r *http.Request) {
	h.eventAggregate(w, r, "compute finish picks", func(ctx context.Context, id uuid.UUID) (interface{}, error) {
		return h.analytics.InsideDistance(ctx, id)
	})
}

// GetUnderdogs returns minority picks with real backing
// @Summary Underdog Picks
// @Tags Analytics
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} models.EventUnderdogs
// @Failure 404 {object} map[string]string
// @Router /events/{id}/underdogs [get]
func (h *Handler) GetUnderdogs(w http.ResponseWriter, r *http.Request) {
	h.eventAggregate(w, r, "compute underdogs", func(ctx context.Context, id uuid.UUID) (interface{}, error) {
		return h.analytics.Underdogs(ctx, id)
	})
}

// GetFightContext summarizes both sides of one bout
// @Summary Fight Context
// @Tags Analytics
// @Produce json
// @Param id path string true "Fight ID"
// @Success 200 {object} models.FightContext
// @Failure 404 {object} map[string]string
// @Router /fights/{id}/context [get]
func (h *Handler) GetFightContext(w http.ResponseWriter, r *http.Request) {
	h.eventAggregate(w, r, "build fight context", func(ctx context.Context, id uuid.UUID) (interface{}, error) {
		return h.analytics.FightContext(ctx, id)
	})
}
