package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIngestBodyLimit(t *testing.T) {
	oversized := `{"text":"` + strings.Repeat("a", MaxBodySize+1) + `"}`

	tests := []struct {
		name    string
		handler func(h *Handler) http.HandlerFunc
	}{
		{"Extract", func(h *Handler) http.HandlerFunc { return h.ExtractArticle }},
		{"Normalize", func(h *Handler) http.HandlerFunc { return h.NormalizeExtraction }},
		{"Commit", func(h *Handler) http.HandlerFunc { return h.CommitBatch }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s := newTestHandler()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(oversized))
			w := httptest.NewRecorder()

			tt.handler(h)(w, req)

			if w.Result().StatusCode != http.StatusRequestEntityTooLarge {
				t.Errorf("StatusCode = %d, want %d", w.Result().StatusCode, http.StatusRequestEntityTooLarge)
			}
			if s.scoring.Invalidations != 0 {
				t.Error("scoring invalidated on a rejected body")
			}
		})
	}
}
