// Command seeder loads a demo card, its picks and its results through the API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/models"
)

type seeder struct {
	baseURL string
	token   string
	client  *http.Client
	log     *zap.SugaredLogger
}

func main() {
	apiURL := flag.String("api", "http://localhost:8080/api/v1", "API base URL")
	token := flag.String("token", os.Getenv("TRACKER_ADMIN_TOKEN"), "admin bearer token")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	log := logger.Sugar()

	if *token == "" {
		log.Fatal("admin token required (-token or TRACKER_ADMIN_TOKEN)")
	}

	s := &seeder{
		baseURL: *apiURL,
		token:   *token,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
	if err := s.run(); err != nil {
		log.Fatalw("Seeding failed", "error", err)
	}
	log.Info("Seeding complete")
}

func (s *seeder) run() error {
	commit := models.CommitBatchRequest{
		EventName:     "UFC 309",
		EventDate:     "2024-11-16",
		EventLocation: "Madison Square Garden, New York",
		Promotion:     "UFC",
		Platform:      "Demo Picks",
		Picks: []models.CommitPick{
			demoPick("Luke Thomas", "Jon Jones", "Stipe Miocic", "Jon Jones", "KO/TKO", "lock"),
			demoPick("Luke Thomas", "Charles Oliveira", "Michael Chandler", "Charles Oliveira", "Submission", "confident"),
			demoPick("Chael Sonnen", "Jon Jones", "Stipe Miocic", "Stipe Miocic", "Decision", "lean"),
			demoPick("Chael Sonnen", "Charles Oliveira", "Michael Chandler", "Charles Oliveira", "Decision", "confident"),
			demoPick("Din Thomas", "Jon Jones", "Stipe Miocic", "Jon Jones", "Submission", "confident"),
			demoPick("Din Thomas", "Charles Oliveira", "Michael Chandler", "Michael Chandler", "KO/TKO", "lean"),
		},
	}
	// The alias table starts empty, so every name needs an explicit create.
	for _, name := range []string{"Jon Jones", "Stipe Miocic", "Charles Oliveira", "Michael Chandler"} {
		commit.Decisions = append(commit.Decisions, models.ResolutionDecision{Raw: name, Action: models.ActionCreate})
	}

	var committed models.CommitBatchResponse
	if err := s.do(http.MethodPost, "/ingest/commit", commit, http.StatusCreated, &committed); err != nil {
		return fmt.Errorf("commit picks: %w", err)
	}
	s.log.Infow("Picks committed", "event_id", committed.EventID, "saved", committed.Saved)

	var fights []models.Fight
	if err := s.do(http.MethodGet, "/events/"+committed.EventID.String()+"/fights", nil, http.StatusOK, &fights); err != nil {
		return fmt.Errorf("list fights: %w", err)
	}

	outcomes := map[string]models.SaveResultRequest{
		"Jon Jones":        {Winner: "Jon Jones", Method: "KO/TKO", Round: 3, Time: "4:29", Referee: "Herb Dean"},
		"Charles Oliveira": {Winner: "Charles Oliveira", Method: "Decision", Round: 5, Time: "5:00", Referee: "Mike Beltran"},
	}
	var card models.ResultsCardRequest
	for _, f := range fights {
		res, ok := outcomes[f.FighterA]
		if !ok {
			res, ok = outcomes[f.FighterB]
		}
		if !ok {
			continue
		}
		res.FightID = f.ID
		card.Results = append(card.Results, res)
	}

	var saved []models.Result
	if err := s.do(http.MethodPost, "/events/"+committed.EventID.String()+"/results", card, http.StatusCreated, &saved); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	s.log.Infow("Results saved", "count", len(saved))
	return nil
}

func demoPick(analyst, a, b, picked, method, confidence string) models.CommitPick {
	return models.CommitPick{
		AnalystName:   analyst,
		FighterA:      a,
		FighterB:      b,
		PickedFighter: picked,
		Method:        method,
		Confidence:    confidence,
	}
}

func (s *seeder) do(method, path string, in interface{}, want int, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: status %s: %s", method, path, resp.Status, raw)
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}
