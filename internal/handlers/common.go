package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/chatmma/analyst-tracker/internal/logic"
)

// hashToken creates a SHA256 hash of a token for comparison with the configured hash
func hashToken(token string) string {
	h := sha256.New()
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]bool{
		"postgres": h.pg != nil && h.pg.Ping(ctx) == nil,
		"redis":    h.redis != nil && h.redis.Ping(ctx).Err() == nil,
	}

	allHealthy := true
	for _, ok := range checks {
		if !ok {
			allHealthy = false
			break
		}
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	h.jsonResponse(w, status, map[string]interface{}{
		"ready":  allHealthy,
		"checks": checks,
	})
}

// AdminAuthMiddleware guards every write route with the admin bearer token
func (h *Handler) AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if token == "" {
			h.errorResponse(w, http.StatusUnauthorized, "Missing admin token")
			return
		}

		if h.adminHash == "" || subtle.ConstantTimeCompare([]byte(hashToken(token)), []byte(strings.ToLower(h.adminHash))) != 1 {
			h.logger.Warnw("Rejected admin request", "path", r.URL.Path, "remote", r.RemoteAddr)
			h.errorResponse(w, http.StatusUnauthorized, "Invalid admin token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// decodeBody reads a size-limited JSON body into dst and validates it.
// It writes the error response itself and returns false on failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation failed"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Namespace()+" failed "+fe.Tag())
	}
	return "Validation failed: " + strings.Join(parts, "; ")
}

// uuidParam parses a chi path parameter as a UUID
func (h *Handler) uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// serviceError maps logic errors to HTTP statuses. Unknown errors are logged
// and reported as 500 with a generic message.
func (h *Handler) serviceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, logic.ErrNotFound):
		h.errorResponse(w, http.StatusNotFound, "Not found")
	case errors.Is(err, logic.ErrScrapeEmpty):
		h.jsonResponse(w, http.StatusUnprocessableEntity, map[string]string{
			"error":    "Could not read the article; paste its text instead",
			"fallback": "paste",
		})
	case errors.Is(err, logic.ErrExtractionMalformed):
		h.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, logic.ErrDuplicateResult),
		errors.Is(err, logic.ErrUnresolvedName),
		errors.Is(err, logic.ErrFightCancelled),
		errors.Is(err, logic.ErrFightCompleted),
		errors.Is(err, logic.ErrAliasConflict),
		errors.Is(err, logic.ErrResolutionSettled):
		h.errorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, logic.ErrConfirmationRequired),
		errors.Is(err, logic.ErrInvalidPick),
		errors.Is(err, logic.ErrInvalidResult),
		errors.Is(err, logic.ErrUnknownCanonical):
		h.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, logic.ErrLLMUnavailable):
		h.errorResponse(w, http.StatusServiceUnavailable, "LLM is not configured")
	default:
		h.logger.Errorw("Failed to "+action, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
