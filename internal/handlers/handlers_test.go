package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/logic"
	"github.com/chatmma/analyst-tracker/internal/models"
)

const testAdminToken = "s3cret-admin"

type testServices struct {
	db        *MockDatabase
	redis     *MockPinger
	events    *MockEventService
	picks     *MockPickService
	results   *MockResultService
	scoring   *MockScoringService
	analytics *MockAnalyticsService
	export    *MockExportService
	ingest    *MockIngestService
	ask       *MockAskService
}

func newTestHandler() (*Handler, *testServices) {
	s := &testServices{
		db:        &MockDatabase{},
		redis:     &MockPinger{},
		events:    &MockEventService{},
		picks:     &MockPickService{},
		results:   &MockResultService{},
		scoring:   &MockScoringService{},
		analytics: &MockAnalyticsService{},
		export:    &MockExportService{},
		ingest:    &MockIngestService{},
		ask:       &MockAskService{},
	}
	h := New(Config{
		Postgres:       s.db,
		Redis:          s.redis,
		Logger:         zap.NewNop(),
		AdminTokenHash: hashToken(testAdminToken),
		Events:         s.events,
		Picks:          s.picks,
		Results:        s.results,
		Scoring:        s.scoring,
		Analytics:      s.analytics,
		Export:         s.export,
		Ingest:         s.ingest,
		Ask:            s.ask,
	})
	return h, s
}

// withURLParams attaches chi path parameters to a request
func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		auth       string
		body       string
		wantStatus int
	}{
		{
			name:       "Public Read Without Token",
			method:     http.MethodGet,
			path:       "/api/v1/events",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Write Without Token",
			method:     http.MethodPost,
			path:       "/api/v1/events",
			body:       `{"name":"UFC 309"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Write With Wrong Token",
			method:     http.MethodPost,
			path:       "/api/v1/events",
			auth:       "Bearer nope",
			body:       `{"name":"UFC 309"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Write With Admin Token",
			method:     http.MethodPost,
			path:       "/api/v1/events",
			auth:       "Bearer " + testAdminToken,
			body:       `{"name":"UFC 309","date":"2024-11-16"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "Install Requires Token",
			method:     http.MethodPost,
			path:       "/api/v1/system/install",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler()
			router := NewRouter(h, RouterOptions{})

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"Not Found", logic.ErrNotFound, http.StatusNotFound},
		{"Wrapped Not Found", fmt.Errorf("get fight: %w", logic.ErrNotFound), http.StatusNotFound},
		{"Duplicate Result", logic.ErrDuplicateResult, http.StatusConflict},
		{"Unresolved Name", fmt.Errorf("%w: Makachev", logic.ErrUnresolvedName), http.StatusConflict},
		{"Cancelled Fight", logic.ErrFightCancelled, http.StatusConflict},
		{"Confirmation Required", logic.ErrConfirmationRequired, http.StatusBadRequest},
		{"Invalid Pick", logic.ErrInvalidPick, http.StatusBadRequest},
		{"Malformed Extraction", logic.ErrExtractionMalformed, http.StatusUnprocessableEntity},
		{"Scrape Empty", logic.ErrScrapeEmpty, http.StatusUnprocessableEntity},
		{"LLM Unavailable", logic.ErrLLMUnavailable, http.StatusServiceUnavailable},
		{"Unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler()
			w := httptest.NewRecorder()
			h.serviceError(w, tt.err, "test")

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("missing error message")
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(body["error"], "connection reset") {
				t.Error("internal error details leaked to client")
			}
		})
	}
}

func TestScrapeEmptySuggestsPaste(t *testing.T) {
	h, _ := newTestHandler()
	w := httptest.NewRecorder()
	h.serviceError(w, logic.ErrScrapeEmpty, "extract")

	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["fallback"] != "paste" {
		t.Errorf("fallback = %q, want paste", body["fallback"])
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		pgErr      error
		redisErr   error
		wantStatus int
	}{
		{"All Healthy", nil, nil, http.StatusOK},
		{"Postgres Down", errors.New("refused"), nil, http.StatusServiceUnavailable},
		{"Redis Down", nil, errors.New("refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s := newTestHandler()
			s.db.PingErr = tt.pgErr
			s.redis.Err = tt.redisErr

			w := httptest.NewRecorder()
			h.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestInvalidUUIDParam(t *testing.T) {
	h, _ := newTestHandler()
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/picks/abc", nil), "id", "abc")
	w := httptest.NewRecorder()
	h.GetPick(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDeletePick(t *testing.T) {
	tests := []struct {
		name              string
		query             string
		wantConfirmed     bool
		wantStatus        int
		wantInvalidations int
	}{
		{"Confirmed", "?confirm=true", true, http.StatusNoContent, 1},
		{"Not Confirmed", "", false, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s := newTestHandler()
			id := uuid.New()
			var gotConfirmed bool
			s.picks.DeletePickFunc = func(ctx context.Context, got uuid.UUID, confirmed bool) error {
				if got != id {
					t.Errorf("id = %s, want %s", got, id)
				}
				gotConfirmed = confirmed
				if !confirmed {
					return logic.ErrConfirmationRequired
				}
				return nil
			}

			req := withURLParams(httptest.NewRequest(http.MethodDelete, "/api/v1/picks/"+id.String()+tt.query, nil), "id", id.String())
			w := httptest.NewRecorder()
			h.DeletePick(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if gotConfirmed != tt.wantConfirmed {
				t.Errorf("confirmed = %v, want %v", gotConfirmed, tt.wantConfirmed)
			}
			if s.scoring.Invalidations != tt.wantInvalidations {
				t.Errorf("invalidations = %d, want %d", s.scoring.Invalidations, tt.wantInvalidations)
			}
		})
	}
}

func TestCreatePickValidation(t *testing.T) {
	fightID := uuid.New()
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "Valid",
			body:       fmt.Sprintf(`{"fight_id":%q,"analyst_name":"Luke Thomas","picked_fighter":"Jon Jones","method_prediction":"KO/TKO","confidence_tag":"lock"}`, fightID),
			wantStatus: http.StatusCreated,
		},
		{
			name:       "Missing Analyst",
			body:       fmt.Sprintf(`{"fight_id":%q}`, fightID),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Unknown Method",
			body:       fmt.Sprintf(`{"fight_id":%q,"analyst_name":"Luke Thomas","method_prediction":"Doctor Stoppage"}`, fightID),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Malformed JSON",
			body:       `{"fight_id":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s := newTestHandler()
			w := httptest.NewRecorder()
			h.CreatePick(w, httptest.NewRequest(http.MethodPost, "/api/v1/picks", strings.NewReader(tt.body)))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusCreated && s.scoring.Invalidations != 1 {
				t.Errorf("invalidations = %d, want 1", s.scoring.Invalidations)
			}
		})
	}
}

func TestSaveResultsCard(t *testing.T) {
	eventID := uuid.New()
	onCard := uuid.New()
	offCard := uuid.New()

	tests := []struct {
		name       string
		fightID    uuid.UUID
		wantStatus int
	}{
		{"Fight On Card", onCard, http.StatusCreated},
		{"Fight On Another Card", offCard, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s := newTestHandler()
			s.events.ListFightsFunc = func(ctx context.Context, id uuid.UUID) ([]models.Fight, error) {
				return []models.Fight{{ID: onCard, EventID: eventID, FighterA: "Jon Jones", FighterB: "Stipe Miocic"}}, nil
			}
			saved := 0
			s.results.SaveResultsCardFunc = func(ctx context.Context, results []models.Result) ([]models.Result, error) {
				saved = len(results)
				return results, nil
			}

			body := fmt.Sprintf(`{"results":[{"fight_id":%q,"winner":"Jon Jones","method":"KO/TKO","round":3,"time":"4:29"}]}`, tt.fightID)
			req := withURLParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), "id", eventID.String())
			w := httptest.NewRecorder()
			h.SaveResultsCard(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusCreated && saved != 1 {
				t.Errorf("saved = %d, want 1", saved)
			}
			if tt.wantStatus != http.StatusCreated && saved != 0 {
				t.Error("results saved despite an off-card fight")
			}
		})
	}
}

func TestSaveResultDuplicate(t *testing.T) {
	h, s := newTestHandler()
	s.results.SaveResultFunc = func(ctx context.Context, result models.Result) (*models.Result, error) {
		return nil, logic.ErrDuplicateResult
	}
	id := uuid.New()
	body := `{"winner":"Jon Jones","method":"KO/TKO","round":3}`
	req := withURLParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), "id", id.String())
	w := httptest.NewRecorder()
	h.SaveResult(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if s.scoring.Invalidations != 0 {
		t.Error("scoring invalidated on a rejected result")
	}
}

func TestExportEvent(t *testing.T) {
	h, s := newTestHandler()
	eventID := uuid.New()
	s.events.GetEventFunc = func(ctx context.Context, id uuid.UUID) (*models.Event, error) {
		return &models.Event{ID: id, Name: "UFC 309: Jones vs Miocic"}, nil
	}
	var gotFull bool
	s.export.ExportFunc = func(ctx context.Context, id uuid.UUID, full bool, w io.Writer) error {
		gotFull = full
		io.WriteString(w, "Event,Fighter Picked,Method,Analyst\n")
		return nil
	}

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/?full=true", nil), "id", eventID.String())
	w := httptest.NewRecorder()
	h.ExportEvent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !gotFull {
		t.Error("full flag not passed through")
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	want := `attachment; filename="UFC_309_Jones_vs_Miocic_picks.csv"`
	if cd := w.Header().Get("Content-Disposition"); cd != want {
		t.Errorf("Content-Disposition = %q, want %q", cd, want)
	}
	if !strings.HasPrefix(w.Body.String(), "Event,Fighter Picked") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestExportUnknownEvent(t *testing.T) {
	h, s := newTestHandler()
	s.events.GetEventFunc = func(ctx context.Context, id uuid.UUID) (*models.Event, error) {
		return nil, logic.ErrNotFound
	}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "id", uuid.NewString())
	w := httptest.NewRecorder()
	h.ExportEvent(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestInstallDatabase(t *testing.T) {
	schema := filepath.Join(t.TempDir(), "schema.sql")
	if err := os.WriteFile(schema, []byte("CREATE TABLE IF NOT EXISTS events (id UUID);"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		path       string
		execErr    error
		wantStatus int
	}{
		{"Success", schema, nil, http.StatusOK},
		{"Missing File", filepath.Join(t.TempDir(), "missing.sql"), nil, http.StatusInternalServerError},
		{"Exec Failure", schema, errors.New("syntax error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s := newTestHandler()
			h.schemaPath = tt.path
			var executed string
			s.db.ExecFunc = func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				executed = sql
				return pgconn.CommandTag{}, tt.execErr
			}

			w := httptest.NewRecorder()
			h.InstallDatabase(w, httptest.NewRequest(http.MethodPost, "/", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.name == "Success" && !strings.Contains(executed, "CREATE TABLE") {
				t.Errorf("schema not executed: %q", executed)
			}
		})
	}
}

func TestAsk(t *testing.T) {
	h, s := newTestHandler()
	var got string
	s.ask.AnswerFunc = func(ctx context.Context, question string) (*models.AskResponse, error) {
		got = question
		return &models.AskResponse{QueryType: "consensus", Event: "UFC 309", Answer: "Jones 5-2"}, nil
	}

	w := httptest.NewRecorder()
	h.Ask(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"question":"who is the consensus at UFC 309?"}`)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got != "who is the consensus at UFC 309?" {
		t.Errorf("question = %q", got)
	}
	var resp models.AskResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.QueryType != "consensus" || resp.Answer != "Jones 5-2" {
		t.Errorf("resp = %+v", resp)
	}

	w = httptest.NewRecorder()
	h.Ask(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"question":""}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty question status = %d, want 400", w.Code)
	}
}

func TestRoutesMounted(t *testing.T) {
	h, _ := newTestHandler()
	router := NewRouter(h, RouterOptions{}).(chi.Routes)

	want := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/scoring/leaderboard"},
		{http.MethodGet, "/api/v1/scoring/analysts/{name}"},
		{http.MethodGet, "/api/v1/events/{id}/consensus"},
		{http.MethodGet, "/api/v1/events/{id}/export"},
		{http.MethodGet, "/api/v1/aliases/resolve"},
		{http.MethodPost, "/api/v1/ingest/commit"},
		{http.MethodPost, "/api/v1/fights/{id}/result"},
		{http.MethodDelete, "/api/v1/picks/{id}"},
		{http.MethodPost, "/api/v1/ask"},
	}

	for _, tt := range want {
		rctx := chi.NewRouteContext()
		if !router.Match(rctx, tt.method, tt.path) {
			t.Errorf("%s %s not mounted", tt.method, tt.path)
		}
	}
}
