package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chatmma/analyst-tracker/internal/models"
)

func TestGetLeaderboard_Filters(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantStatus   int
		wantFilter   models.ScoreFilter
		wantMinPicks int
		wantFrom     string
	}{
		{
			name:       "No Filters",
			query:      "",
			wantStatus: http.StatusOK,
		},
		{
			name:         "Combined Filters",
			query:        "?weight_class=Heavyweight&title_only=true&min_picks=5",
			wantStatus:   http.StatusOK,
			wantFilter:   models.ScoreFilter{WeightClass: "Heavyweight", TitleOnly: true},
			wantMinPicks: 5,
		},
		{
			name:       "Date Range",
			query:      "?from=2024-01-01&to=2024-12-31",
			wantStatus: http.StatusOK,
			wantFrom:   "2024-01-01",
		},
		{
			name:       "Analyst Trimmed",
			query:      "?analyst=%20Luke%20Thomas%20",
			wantStatus: http.StatusOK,
			wantFilter: models.ScoreFilter{Analyst: "Luke Thomas"},
		},
		{
			name:       "Bad Date",
			query:      "?from=01/01/2024",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Bad Title Flag",
			query:      "?title_only=maybe",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Negative Min Picks",
			query:      "?min_picks=-1",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s := newTestHandler()
			var gotFilter models.ScoreFilter
			gotMin := -1
			s.scoring.LeaderboardFunc = func(ctx context.Context, f models.ScoreFilter, minPicks int) (*models.Leaderboard, error) {
				gotFilter = f
				gotMin = minPicks
				return &models.Leaderboard{Filter: f, GeneratedAt: time.Now()}, nil
			}

			w := httptest.NewRecorder()
			h.GetLeaderboard(w, httptest.NewRequest(http.MethodGet, "/api/v1/scoring/leaderboard"+tt.query, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if gotMin != -1 {
					t.Error("scoring called for an invalid request")
				}
				return
			}
			if gotFilter.Analyst != tt.wantFilter.Analyst || gotFilter.WeightClass != tt.wantFilter.WeightClass || gotFilter.TitleOnly != tt.wantFilter.TitleOnly {
				t.Errorf("filter = %+v, want %+v", gotFilter, tt.wantFilter)
			}
			if gotMin != tt.wantMinPicks {
				t.Errorf("minPicks = %d, want %d", gotMin, tt.wantMinPicks)
			}
			if tt.wantFrom != "" {
				if gotFilter.From == nil || gotFilter.From.Format(models.DateLayout) != tt.wantFrom {
					t.Errorf("from = %v, want %s", gotFilter.From, tt.wantFrom)
				}
				if gotFilter.To == nil {
					t.Error("to not parsed")
				}
			}
		})
	}
}

func TestGetAnalystRecord(t *testing.T) {
	h, s := newTestHandler()
	var gotName string
	s.scoring.AnalystRecordFunc = func(ctx context.Context, analyst string, f models.ScoreFilter) (*models.AnalystRecord, error) {
		gotName = analyst
		return &models.AnalystRecord{Analyst: analyst, Wins: 3, Losses: 1}, nil
	}

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/scoring/analysts/Luke%20Thomas", nil), "name", "Luke%20Thomas")
	w := httptest.NewRecorder()
	h.GetAnalystRecord(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotName != "Luke Thomas" {
		t.Errorf("analyst = %q, want Luke Thomas", gotName)
	}
}
