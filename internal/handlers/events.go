package handlers

import (
	"net/http"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// ListEvents returns every card, most recent first
// @Summary List Events
// @Tags Events
// @Produce json
// @Success 200 {array} models.Event
// @Router /events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context())
	if err != nil {
		h.serviceError(w, err, "list events")
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	h.jsonResponse(w, http.StatusOK, events)
}

// GetEvent returns one card
// @Summary Get Event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} models.Event
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	event, err := h.events.GetEvent(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, "get event")
		return
	}
	h.jsonResponse(w, http.StatusOK, event)
}

// CreateEvent adds a card
// @Summary Create Event
// @Tags Events
// @Accept json
// @Produce json
// @Security AdminToken
// @Param body body models.CreateEventRequest true "Event"
// @Success 201 {object} models.Event
// @Failure 400 {object} map[string]string
// @Router /events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if _, err := models.ParseEventDate(req.Date); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	event, err := h.events.CreateEvent(r.Context(), req)
	if err != nil {
		h.serviceError(w, err, "create event")
		return
	}
	h.jsonResponse(w, http.StatusCreated, event)
}

// ListFights returns the bouts on a card in bout order
// @Summary List Fights
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {array} models.Fight
// @Router /events/{id}/fights [get]
func (h *Handler) ListFights(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	fights, err := h.events.ListFights(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, "list fights")
		return
	}
	if fights == nil {
		fights = []models.Fight{}
	}
	h.jsonResponse(w, http.StatusOK, fights)
}

// CreateFight adds a bout to a card
// @Summary Create Fight
// @Tags Events
// @Accept json
// @Produce json
// @Security AdminToken
// @Param id path string true "Event ID"
// @Param body body models.CreateFightRequest true "Fight"
// @Success 201 {object} models.Fight
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /events/{id}/fights [post]
func (h *Handler) CreateFight(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req models.CreateFightRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	fight, err := h.events.CreateFight(r.Context(), id, req)
	if err != nil {
		h.serviceError(w, err, "create fight")
		return
	}
	h.jsonResponse(w, http.StatusCreated, fight)
}

// GetFight returns one bout
// @Summary Get Fight
// @Tags Events
// @Produce json
// @Param id path string true "Fight ID"
// @Success 200 {object} models.Fight
// @Failure 404 {object} map[string]string
// @Router /fights/{id} [get]
func (h *Handler) GetFight(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	fight, err := h.events.GetFight(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, "get fight")
		return
	}
	h.jsonResponse(w, http.StatusOK, fight)
}

// CancelFight marks a bout cancelled. Its picks stay but are never scored.
// @Summary Cancel Fight
// @Tags Events
// @Produce json
// @Security AdminToken
// @Param id path string true "Fight ID"
// @Success 200 {object} models.Fight
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /fights/{id}/cancel [post]
func (h *Handler) CancelFight(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	fight, err := h.events.CancelFight(r.Context(), id)
	if err != nil {
		h.serviceError(w, err, "cancel fight")
		return
	}
	h.scoring.Invalidate(r.Context())
	h.jsonResponse(w, http.StatusOK, fight)
}
