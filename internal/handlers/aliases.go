package handlers

import (
	"net/http"
	"strings"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// ListAliases returns every confirmed spelling and its canonical name
// @Summary List Fighter Aliases
// @Tags Aliases
// @Produce json
// @Success 200 {array} models.FighterAlias
// @Router /aliases [get]
func (h *Handler) ListAliases(w http.ResponseWriter, r *http.Request) {
	aliases, err := h.aliases.ListAliases(r.Context())
	if err != nil {
		h.serviceError(w, err, "list aliases")
		return
	}
	if aliases == nil {
		aliases = []models.FighterAlias{}
	}
	h.jsonResponse(w, http.StatusOK, aliases)
}

// ResolveAlias shows how a raw name would resolve. Nothing is written.
// @Summary Resolve Fighter Name
// @Tags Aliases
// @Produce json
// @Param name query string true "Raw fighter name"
// @Success 200 {object} models.NameVerdict
// @Failure 400 {object} map[string]string
// @Router /aliases/resolve [get]
func (h *Handler) ResolveAlias(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		h.errorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	verdict, err := h.ingest.Resolve(r.Context(), name)
	if err != nil {
		h.serviceError(w, err, "resolve name")
		return
	}
	h.jsonResponse(w, http.StatusOK, verdict)
}
