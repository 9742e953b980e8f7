package handlers

import (
	"net/http"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// Ask answers a free-form question from stored picks
// @Summary Ask About Picks
// @Description Detects fight, consensus, finish and underdog questions and answers from stored data only.
// @Tags Ask
// @Accept json
// @Produce json
// @Param body body models.AskRequest true "Question"
// @Success 200 {object} models.AskResponse
// @Failure 400 {object} map[string]string
// @Router /ask [post]
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	resp, err := h.ask.Answer(r.Context(), req.Question)
	if err != nil {
		h.serviceError(w, err, "answer question")
		return
	}
	h.jsonResponse(w, http.StatusOK, resp)
}
