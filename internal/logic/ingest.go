package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/models"
)

type ingestService struct {
	pg         TxPool
	resolver   *Resolver
	normalizer *Normalizer
	scraper    Scraper
	extractor  Extractor
	logger     *zap.SugaredLogger
}

// NewIngestService wires the article pipeline. scraper and extractor may be
// nil; the steps that need them then fail with ErrScrapeEmpty and
// ErrLLMUnavailable respectively.
func NewIngestService(pg TxPool, resolver *Resolver, scraper Scraper, extractor Extractor, logger *zap.Logger) IngestService {
	return &ingestService{
		pg:         pg,
		resolver:   resolver,
		normalizer: NewNormalizer(resolver),
		scraper:    scraper,
		extractor:  extractor,
		logger:     logger.Sugar(),
	}
}

// Prepare scrapes url when text is empty, extracts picks with the LLM and
// returns them normalized for review. Nothing is persisted.
func (s *ingestService) Prepare(ctx context.Context, url, text string) (*models.ExtractionReview, error) {
	url, text = strings.TrimSpace(url), strings.TrimSpace(text)
	if text == "" {
		if url == "" || s.scraper == nil {
			return nil, ErrScrapeEmpty
		}
		scraped, err := s.scraper.Scrape(ctx, url)
		if err != nil {
			return nil, err
		}
		text = scraped
	}
	if s.extractor == nil {
		return nil, ErrLLMUnavailable
	}

	raw, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	review, err := s.NormalizeRaw(ctx, raw)
	if err != nil {
		return nil, err
	}
	review.SourceURL = url

	s.logger.Infow("Article extracted", "url", url, "chars", len(text), "candidates", len(review.Candidates), "needs_review", review.NeedsReview)
	return review, nil
}

// NormalizeRaw normalizes an extraction payload supplied by the operator
func (s *ingestService) NormalizeRaw(ctx context.Context, raw []byte) (*models.ExtractionReview, error) {
	ext, err := ParseExtraction(raw)
	if err != nil {
		extractionFailures.WithLabelValues("parse").Inc()
		return nil, err
	}
	idx, err := s.resolver.LoadIndex(ctx)
	if err != nil {
		return nil, err
	}
	return s.normalizer.Normalize(idx, ext), nil
}

func (s *ingestService) Resolve(ctx context.Context, name string) (models.NameVerdict, error) {
	idx, err := s.resolver.LoadIndex(ctx)
	if err != nil {
		return models.NameVerdict{}, err
	}
	return s.resolver.Resolve(idx, name), nil
}

// batch carries the per-commit resolution state. Names are resolved in pick
// order and every alias written is visible to the names that follow.
type batch struct {
	svc         *ingestService
	db          PgPool
	idx         *AliasIndex
	decisions   map[string]models.ResolutionDecision
	resolutions map[string]*Resolution
	newAliases  []models.FighterAlias
}

func (b *batch) canonical(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if res, ok := b.resolutions[raw]; ok {
		return res.Canonical, nil
	}

	res := NewResolution(b.svc.resolver.Resolve(b.idx, raw))
	if d, ok := b.decisions[raw]; ok {
		if err := res.Decide(d); err != nil {
			return "", err
		}
	}
	alias, err := b.svc.resolver.Apply(ctx, b.db, b.idx, res)
	if err != nil {
		return "", err
	}
	if alias != nil {
		b.newAliases = append(b.newAliases, *alias)
	}
	b.resolutions[raw] = res
	return res.Canonical, nil
}

// Commit saves a reviewed batch in one transaction: the event, any new
// aliases, the fights and the picks with their tags. Any failure leaves the
// database unchanged.
func (s *ingestService) Commit(ctx context.Context, req models.CommitBatchRequest) (*models.CommitBatchResponse, error) {
	date, err := models.ParseEventDate(req.EventDate)
	if err != nil {
		return nil, err
	}
	idx, err := s.resolver.LoadIndex(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.pg.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	event, err := getOrCreateEvent(ctx, tx, req.EventName, date, req.EventLocation, req.Promotion)
	if err != nil {
		return nil, err
	}

	b := &batch{
		svc:         s,
		db:          tx,
		idx:         idx,
		decisions:   make(map[string]models.ResolutionDecision, len(req.Decisions)),
		resolutions: make(map[string]*Resolution),
	}
	for _, d := range req.Decisions {
		b.decisions[strings.TrimSpace(d.Raw)] = d
	}

	for i, cp := range req.Picks {
		if err := s.commitPick(ctx, b, event.ID, cp, req); err != nil {
			return nil, fmt.Errorf("pick %d (%s): %w", i, strings.TrimSpace(cp.AnalystName), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}

	picksSaved.Add(float64(len(req.Picks)))
	s.logger.Infow("Batch committed", "event", event.Name, "picks", len(req.Picks), "new_aliases", len(b.newAliases))

	resp := &models.CommitBatchResponse{EventID: event.ID, Saved: len(req.Picks), NewAliases: b.newAliases}
	if resp.NewAliases == nil {
		resp.NewAliases = []models.FighterAlias{}
	}
	return resp, nil
}

func (s *ingestService) commitPick(ctx context.Context, b *batch, eventID uuid.UUID, cp models.CommitPick, req models.CommitBatchRequest) error {
	fighterA, err := b.canonical(ctx, cp.FighterA)
	if err != nil {
		return err
	}
	fighterB, err := b.canonical(ctx, cp.FighterB)
	if err != nil {
		return err
	}
	if SameFighter(fighterA, fighterB) {
		return fmt.Errorf("%w: %q appears in both corners", ErrInvalidPick, fighterA)
	}

	var picked *string
	if strings.TrimSpace(cp.PickedFighter) != "" {
		name, err := b.canonical(ctx, cp.PickedFighter)
		if err != nil {
			return err
		}
		if !SameFighter(name, fighterA) && !SameFighter(name, fighterB) {
			return fmt.Errorf("%w: %q is not in %s vs %s", ErrInvalidPick, name, fighterA, fighterB)
		}
		picked = &name
	}

	fight, err := getOrCreateFight(ctx, b.db, eventID, models.CreateFightRequest{
		FighterA:    fighterA,
		FighterB:    fighterB,
		WeightClass: cp.WeightClass,
		TitleFight:  cp.TitleFight,
	})
	if err != nil {
		return err
	}
	if fight.Status == models.FightCancelled {
		return ErrFightCancelled
	}

	return insertPick(ctx, b.db, &models.AnalystPick{
		FightID:          fight.ID,
		AnalystName:      strings.TrimSpace(cp.AnalystName),
		Platform:         strings.TrimSpace(req.Platform),
		SourceURL:        strings.TrimSpace(req.SourceURL),
		PickedFighter:    picked,
		MethodPrediction: NormalizeMethod(cp.Method),
		ConfidenceTag:    NormalizeConfidence(cp.Confidence),
		ReasoningNotes:   strings.TrimSpace(cp.Reasoning),
		Tags:             cleanTags(cp.Tags),
	})
}
