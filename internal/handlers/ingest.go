package handlers

import (
	"io"
	"net/http"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// ExtractArticle scrapes (or takes pasted text), extracts picks with the LLM
// and returns them normalized for review. Nothing is saved.
// @Summary Extract Picks From Article
// @Tags Ingestion
// @Accept json
// @Produce json
// @Security AdminToken
// @Param body body models.ExtractRequest true "Article URL or pasted text"
// @Success 200 {object} models.ExtractionReview
// @Failure 422 {object} map[string]string "Scrape empty (fallback: paste) or malformed extraction"
// @Failure 503 {object} map[string]string "LLM not configured"
// @Router /ingest/extract [post]
func (h *Handler) ExtractArticle(w http.ResponseWriter, r *http.Request) {
	var req models.ExtractRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" && req.Text == "" {
		h.errorResponse(w, http.StatusBadRequest, "url or text is required")
		return
	}

	review, err := h.ingest.Prepare(r.Context(), req.URL, req.Text)
	if err != nil {
		h.serviceError(w, err, "extract article")
		return
	}
	h.jsonResponse(w, http.StatusOK, review)
}

// NormalizeExtraction normalizes an extraction payload supplied by the operator
// @Summary Normalize Extraction JSON
// @Tags Ingestion
// @Accept json
// @Produce json
// @Security AdminToken
// @Param body body models.Extraction true "Extraction payload"
// @Success 200 {object} models.ExtractionReview
// @Failure 422 {object} map[string]string
// @Router /ingest/normalize [post]
func (h *Handler) NormalizeExtraction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	defer r.Body.Close()

	review, err := h.ingest.NormalizeRaw(r.Context(), raw)
	if err != nil {
		h.serviceError(w, err, "normalize extraction")
		return
	}
	h.jsonResponse(w, http.StatusOK, review)
}

// CommitBatch saves a reviewed batch of picks in one transaction
// @Summary Commit Reviewed Picks
// @Tags Ingestion
// @Accept json
// @Produce json
// @Security AdminToken
// @Param body body models.CommitBatchRequest true "Reviewed picks and name decisions"
// @Success 201 {object} models.CommitBatchResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "A name still needs confirmation"
// @Router /ingest/commit [post]
func (h *Handler) CommitBatch(w http.ResponseWriter, r *http.Request) {
	var req models.CommitBatchRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if _, err := models.ParseEventDate(req.EventDate); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.ingest.Commit(r.Context(), req)
	if err != nil {
		h.serviceError(w, err, "commit picks")
		return
	}
	h.scoring.Invalidate(r.Context())
	h.logger.Infow("Picks committed", "event_id", resp.EventID, "saved", resp.Saved, "new_aliases", len(resp.NewAliases))
	h.jsonResponse(w, http.StatusCreated, resp)
}

// EnqueueExtraction starts an extraction in the background and returns the job
// @Summary Queue Article Extraction
// @Tags Ingestion
// @Accept json
// @Produce json
// @Security AdminToken
// @Param body body models.ExtractRequest true "Article URL or pasted text"
// @Success 202 {object} models.ExtractionJob
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string "Queue full or async extraction disabled"
// @Router /ingest/jobs [post]
func (h *Handler) EnqueueExtraction(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		h.errorResponse(w, http.StatusServiceUnavailable, "Async extraction is disabled")
		return
	}
	var req models.ExtractRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" && req.Text == "" {
		h.errorResponse(w, http.StatusBadRequest, "url or text is required")
		return
	}

	job, ok := h.jobs.Enqueue(req.URL, req.Text)
	if !ok {
		w.Header().Set("Retry-After", "30")
		h.errorResponse(w, http.StatusServiceUnavailable, "Extraction queue is full")
		return
	}
	h.jsonResponse(w, http.StatusAccepted, job)
}

// GetExtractionJob reports the state of a queued extraction
// @Summary Get Extraction Job
// @Tags Ingestion
// @Produce json
// @Security AdminToken
// @Param id path string true "Job ID"
// @Success 200 {object} models.ExtractionJob
// @Failure 404 {object} map[string]string
// @Router /ingest/jobs/{id} [get]
func (h *Handler) GetExtractionJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		h.errorResponse(w, http.StatusServiceUnavailable, "Async extraction is disabled")
		return
	}
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	job, found := h.jobs.Get(id)
	if !found {
		h.errorResponse(w, http.StatusNotFound, "Not found")
		return
	}
	h.jsonResponse(w, http.StatusOK, job)
}
