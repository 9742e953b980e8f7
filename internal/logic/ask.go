package logic

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// QueryType classifies a free-form question
type QueryType string

const (
	QueryInsideDistance QueryType = "inside_distance"
	QueryConsensus      QueryType = "consensus_picks"
	QueryUnderdogs      QueryType = "underdogs"
	QueryFight          QueryType = "fight_specific"
	QueryGeneral        QueryType = "general"

	// outcomes answered without calling the model
	QueryFightNotFound = "fight_not_found"
	QueryNoPredictions = "no_predictions"
	QueryMissingEvent  = "missing_event"
	QueryEventNotFound = "event_not_found"
	QueryNoConsensus   = "no_consensus"
	QueryNoUnderdogs   = "no_underdogs"
)

const (
	chatMaxTokens      = 800
	chatEventMaxTokens = 1000
)

var (
	insideDistanceKeywords = []string{
		"inside the distance", "inside distance", "finish", "knockout", " ko ",
		"submission", "most likely to finish", "not go the distance",
	}
	consensusKeywords = []string{
		"consensus", "top picks", "favorites", "who should win", "most likely to win",
		"best bets", "safest picks", "locks",
	}
	underdogKeywords = []string{
		"underdog", "upset", "dark horse", "value pick", "sleeper", "best underdog",
		"undervalued", "contrarian",
	}
	fightSeparators = []string{" vs ", " vs. ", " versus ", " v ", " against "}

	eventNamePattern = regexp.MustCompile(`ufc\s+(\d+|vegas\s+\d+|fight\s+night\s+\d+)`)
	hintStripPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s']`)
)

// ParsedQuery is what DetectQuery understood from a question
type ParsedQuery struct {
	Type      QueryType
	EventHint string
	FighterA  string
	FighterB  string
}

// DetectQuery classifies a question by keyword. Finish questions win over
// consensus questions, which win over underdog questions; "A vs B" style
// questions are checked last.
func DetectQuery(question string) ParsedQuery {
	q := strings.ToLower(question)

	switch {
	case containsAny(q, insideDistanceKeywords):
		return ParsedQuery{Type: QueryInsideDistance, EventHint: eventHint(q)}
	case containsAny(q, consensusKeywords):
		return ParsedQuery{Type: QueryConsensus, EventHint: eventHint(q)}
	case containsAny(q, underdogKeywords):
		return ParsedQuery{Type: QueryUnderdogs, EventHint: eventHint(q)}
	}

	for _, sep := range fightSeparators {
		parts := strings.SplitN(q, sep, 2)
		if len(parts) < 2 {
			continue
		}
		left, right := strings.Fields(parts[0]), strings.Fields(parts[1])
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		if len(left) > 2 {
			left = left[len(left)-2:]
		}
		if len(right) > 2 {
			right = right[:2]
		}
		return ParsedQuery{Type: QueryFight, FighterA: fighterHint(left), FighterB: fighterHint(right)}
	}
	return ParsedQuery{Type: QueryGeneral}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// eventHint returns "UFC 309" style names mentioned in q, or ""
func eventHint(q string) string {
	m := eventNamePattern.FindStringSubmatch(q)
	if m == nil {
		return ""
	}
	return "UFC " + titleCase(strings.Join(strings.Fields(m[1]), " "))
}

func fighterHint(words []string) string {
	s := hintStripPattern.ReplaceAllString(strings.Join(words, " "), "")
	return titleCase(strings.TrimSpace(s))
}

// titleCase builds a fresh Caser each call; a Caser holds state and is not
// safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

type askService struct {
	pg        PgPool
	events    EventService
	analytics AnalyticsService
	llm       LLM
	logger    *zap.SugaredLogger
}

func NewAskService(pg PgPool, events EventService, analytics AnalyticsService, llm LLM, logger *zap.Logger) AskService {
	return &askService{pg: pg, events: events, analytics: analytics, llm: llm, logger: logger.Sugar()}
}

// Answer builds a context from stored picks for the detected question type
// and asks the chat model to summarize it.
func (s *askService) Answer(ctx context.Context, question string) (*models.AskResponse, error) {
	question = strings.TrimSpace(question)
	q := DetectQuery(question)
	s.logger.Infow("Question received", "query_type", q.Type, "event_hint", q.EventHint)

	switch q.Type {
	case QueryFight:
		return s.answerFight(ctx, question, q)
	case QueryInsideDistance, QueryConsensus, QueryUnderdogs:
		return s.answerEvent(ctx, question, q)
	default:
		return s.complete(ctx, string(QueryGeneral), "", generalPrompt(question), chatMaxTokens)
	}
}

func (s *askService) answerFight(ctx context.Context, question string, q ParsedQuery) (*models.AskResponse, error) {
	fight, err := s.findFight(ctx, q.FighterA, q.FighterB)
	if errors.Is(err, ErrNotFound) {
		return &models.AskResponse{
			QueryType: QueryFightNotFound,
			Answer: fmt.Sprintf("I couldn't find a fight between %s and %s. "+
				"Please check the fighter names or try specifying the event.", q.FighterA, q.FighterB),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	fc, err := s.analytics.FightContext(ctx, fight.ID)
	if err != nil {
		return nil, err
	}
	if fc.TotalPredictions == 0 {
		return &models.AskResponse{
			QueryType: QueryNoPredictions,
			Event:     fc.EventName,
			Answer: fmt.Sprintf("Found the fight, but there are no analyst predictions yet for %s. "+
				"Try ingesting some articles first.", fight.Label()),
		}, nil
	}
	return s.complete(ctx, string(QueryFight), fc.EventName, fightPrompt(fc, question), chatMaxTokens)
}

func (s *askService) answerEvent(ctx context.Context, question string, q ParsedQuery) (*models.AskResponse, error) {
	event, err := s.findEvent(ctx, q.EventHint)
	if errors.Is(err, ErrNotFound) {
		if q.EventHint == "" {
			return &models.AskResponse{
				QueryType: QueryMissingEvent,
				Answer:    "Please specify an event (e.g., 'UFC 309') to get predictions.",
			}, nil
		}
		return &models.AskResponse{
			QueryType: QueryEventNotFound,
			Event:     q.EventHint,
			Answer:    fmt.Sprintf("I don't have predictions for '%s' yet.", q.EventHint),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	switch q.Type {
	case QueryInsideDistance:
		data, err := s.analytics.InsideDistance(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		return s.complete(ctx, string(q.Type), event.Name, insideDistancePrompt(data, question), chatMaxTokens)

	case QueryConsensus:
		data, err := s.analytics.Consensus(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		if len(data.Picks) == 0 {
			return &models.AskResponse{
				QueryType: QueryNoConsensus,
				Event:     event.Name,
				Answer:    fmt.Sprintf("Found '%s', but not enough predictions to determine consensus yet.", event.Name),
			}, nil
		}
		return s.complete(ctx, string(q.Type), event.Name, consensusPrompt(data, question), chatEventMaxTokens)

	default:
		data, err := s.analytics.Underdogs(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		if len(data.Picks) == 0 {
			return &models.AskResponse{
				QueryType: QueryNoUnderdogs,
				Event:     event.Name,
				Answer:    fmt.Sprintf("Found '%s', but no clear underdogs. Consensus is strong across all fights.", event.Name),
			}, nil
		}
		return s.complete(ctx, string(q.Type), event.Name, underdogsPrompt(data, question), chatEventMaxTokens)
	}
}

func (s *askService) complete(ctx context.Context, queryType, event, prompt string, maxTokens int64) (*models.AskResponse, error) {
	if s.llm == nil {
		return nil, ErrLLMUnavailable
	}
	answer, err := s.llm.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return nil, err
	}
	return &models.AskResponse{QueryType: queryType, Event: event, Answer: strings.TrimSpace(answer)}, nil
}

// findEvent matches hint as a name fragment, or returns the latest event
// when there is no hint.
func (s *askService) findEvent(ctx context.Context, hint string) (*models.Event, error) {
	if hint == "" {
		return s.events.LatestEvent(ctx)
	}
	e, err := scanEvent(s.pg.QueryRow(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY date DESC NULLS LAST
		LIMIT 1
	`, hint))
	if err != nil {
		return nil, fmt.Errorf("failed to find event %q: %w", hint, notFound(err))
	}
	return e, nil
}

// findFight matches two name fragments in either corner, most recent card first
func (s *askService) findFight(ctx context.Context, a, b string) (*models.Fight, error) {
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		f, err := scanFight(s.pg.QueryRow(ctx, `
			SELECT `+fightColumns+` FROM fights
			WHERE fighter_a ILIKE '%' || $1 || '%' AND fighter_b ILIKE '%' || $2 || '%'
			ORDER BY (SELECT e.date FROM events e WHERE e.event_id = fights.event_id) DESC NULLS LAST
			LIMIT 1
		`, pair[0], pair[1]))
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to find fight: %w", err)
		}
	}
	return nil, ErrNotFound
}

const promptIntro = "You are ChatMMAPicks, an AI that synthesizes MMA analyst predictions.\n\n"

func fightPrompt(fc *models.FightContext, question string) string {
	var b strings.Builder
	b.WriteString(promptIntro)
	fmt.Fprintf(&b, "USER QUESTION: %s\n\n", question)
	fmt.Fprintf(&b, "FIGHT CONTEXT:\nEvent: %s\nFight: %s\n\n", fc.EventName, fc.Fight.Label())
	fmt.Fprintf(&b, "PREDICTION SUMMARY:\n- Total analysts: %d\n- Picking %s: %d analysts\n- Picking %s: %d analysts\n",
		fc.TotalPredictions, fc.SideA.Fighter, fc.SideA.Picks, fc.SideB.Fighter, fc.SideB.Picks)

	for _, side := range []models.SideContext{fc.SideA, fc.SideB} {
		if len(side.TopTags) > 0 {
			fmt.Fprintf(&b, "\nKEY FACTORS FOR %s:\n", strings.ToUpper(side.Fighter))
			for _, t := range side.TopTags {
				fmt.Fprintf(&b, "- %s: mentioned by %d analysts\n", strings.ReplaceAll(t.Tag, "_", " "), t.Count)
			}
		}
		if len(side.Methods) > 0 {
			fmt.Fprintf(&b, "Expected methods: %s\n", methodCounts(side.Methods))
		}
		if len(side.ExampleRationales) > 0 {
			fmt.Fprintf(&b, "\nExample analyst reasoning for %s:\n", side.Fighter)
			for i, note := range side.ExampleRationales {
				if i == 2 {
					break
				}
				fmt.Fprintf(&b, "%d. %s\n", i+1, truncateRunes(note, 200))
			}
		}
	}

	fmt.Fprintf(&b, "\nTOP ANALYSTS:\nFor %s: %s\nFor %s: %s\n",
		fc.SideA.Fighter, strings.Join(firstN(fc.SideA.Analysts, 3), ", "),
		fc.SideB.Fighter, strings.Join(firstN(fc.SideB.Analysts, 3), ", "))

	b.WriteString(`
INSTRUCTIONS:
1. Answer the user's question based on the consensus and reasoning above
2. Focus on WHY analysts favor each fighter, not just the numbers
3. Mention specific context tags and analyst reasoning
4. If asked about methods, reference the expected finish types
5. Keep response conversational and insightful (2-4 paragraphs)

RESPONSE:
`)
	return b.String()
}

func insideDistancePrompt(data *models.EventInsideDistance, question string) string {
	var b strings.Builder
	b.WriteString(promptIntro)
	fmt.Fprintf(&b, "USER QUESTION: %s\n\nEVENT: %s\n\n", question, data.Event)
	b.WriteString("FIGHTERS MOST LIKELY TO WIN INSIDE THE DISTANCE (KO/TKO/SUB):\n")
	if len(data.Picks) == 0 {
		b.WriteString("\nNo fighters have significant finish predictions for this event.\n")
	}
	for i, p := range firstN(data.Picks, 10) {
		counts := map[models.Method]int{}
		for _, m := range p.Methods {
			counts[m]++
		}
		fmt.Fprintf(&b, "\n%d. %s (%s)\n   - %d analysts predict finish\n   - Methods: %s\n",
			i+1, p.FavoredFighter, p.Fight, p.FinishPredictionCount, methodCounts(counts))
	}
	b.WriteString(`
INSTRUCTIONS:
1. Answer the user's question about which fighters are most likely to win inside the distance
2. Focus on the fighters with the most finish predictions
3. Mention the expected methods (KO, TKO, SUB)
4. Keep response conversational and actionable (2-3 paragraphs)

RESPONSE:
`)
	return b.String()
}

func consensusPrompt(data *models.EventConsensus, question string) string {
	var b strings.Builder
	b.WriteString(promptIntro)
	fmt.Fprintf(&b, "USER QUESTION: %s\n\nEVENT: %s\n\nCONSENSUS PICKS (sorted by strength):\n", question, data.Event)
	for i, p := range data.Picks {
		other := p.FighterB
		if p.ConsensusFighter == p.FighterB {
			other = p.FighterA
		}
		fmt.Fprintf(&b, "\n%d. %s over %s\n   - Consensus: %d-%d (%.0f%%)\n",
			i+1, p.ConsensusFighter, other, p.ConsensusCount, p.OpposingCount, p.ConsensusPercentage)
	}
	b.WriteString(`
INSTRUCTIONS:
1. Answer the user's question about consensus picks
2. Focus on the strongest consensus picks (highest percentages)
3. Highlight interesting patterns or contrarian fights
4. Keep response conversational and actionable (2-3 paragraphs)

RESPONSE:
`)
	return b.String()
}

func underdogsPrompt(data *models.EventUnderdogs, question string) string {
	var b strings.Builder
	b.WriteString(promptIntro)
	fmt.Fprintf(&b, "USER QUESTION: %s\n\nEVENT: %s\n\nBEST UNDERDOG PICKS (sorted by value):\n", question, data.Event)
	for i, p := range firstN(data.Picks, 8) {
		fmt.Fprintf(&b, "\n%d. %s (%s)\n   - Underdog pick: %d-%d (%.0f%%)\n",
			i+1, p.Underdog, p.Fight, p.UnderdogCount, p.FavoriteCount, p.UnderdogPercentage)
		if len(p.TopTags) > 0 {
			tags := make([]string, 0, len(p.TopTags))
			for _, t := range p.TopTags {
				tags = append(tags, strings.ReplaceAll(t.Tag, "_", " "))
			}
			fmt.Fprintf(&b, "   - Key factors: %s\n", strings.Join(tags, ", "))
		}
		if len(p.Backers) > 0 {
			names := make([]string, 0, 3)
			for _, a := range firstN(p.Backers, 3) {
				names = append(names, a.Name)
			}
			fmt.Fprintf(&b, "   - Backed by: %s\n", strings.Join(names, ", "))
		}
	}
	b.WriteString(`
INSTRUCTIONS:
1. Answer the user's question about underdog picks
2. Explain why these underdogs have potential despite being less popular picks
3. Keep response conversational and actionable (2-3 paragraphs)

RESPONSE:
`)
	return b.String()
}

func generalPrompt(question string) string {
	return `You are ChatMMAPicks, an AI assistant for MMA predictions.

The user asked: ` + question + `

This appears to be a general question. Respond helpfully and direct them to ask about
specific fights or events if appropriate. You can answer questions about:
- Specific fights ("who will win Jones vs Miocic?")
- Consensus picks ("what are the top picks for UFC 309?")
- Finish predictions ("who is likely to win inside the distance?")
- Underdogs ("best underdog picks for UFC Vegas 100?")

RESPONSE:
`
}

// methodCounts renders "KO/TKO (2), Submission (1)" in a stable order
func methodCounts(counts map[models.Method]int) string {
	methods := make([]models.Method, 0, len(counts))
	for m := range counts {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool {
		if counts[methods[i]] != counts[methods[j]] {
			return counts[methods[i]] > counts[methods[j]]
		}
		return methods[i] < methods[j]
	})
	parts := make([]string, 0, len(methods))
	for _, m := range methods {
		parts = append(parts, fmt.Sprintf("%s (%d)", m, counts[m]))
	}
	return strings.Join(parts, ", ")
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
