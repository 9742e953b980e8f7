package logic

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/models"
)

const (
	DefaultFuzzyThreshold   = 85
	DefaultNoCandidateFloor = 50
)

// AliasIndex is an in-memory view of the alias table used for one batch.
// Aliases added during the batch are visible to every later lookup.
type AliasIndex struct {
	// candidate string (alias or canonical name) -> canonical name
	target     map[string]string
	candidates []string
	canonicals map[string]string // normalized canonical -> stored spelling
	pickCounts map[string]int
}

// NewAliasIndex builds an index from alias rows and per-canonical pick counts
func NewAliasIndex(aliases []models.FighterAlias, pickCounts map[string]int) *AliasIndex {
	idx := &AliasIndex{
		target:     make(map[string]string, len(aliases)*2),
		canonicals: make(map[string]string),
		pickCounts: pickCounts,
	}
	if idx.pickCounts == nil {
		idx.pickCounts = map[string]int{}
	}
	for _, a := range aliases {
		idx.put(a.Alias, a.CanonicalName)
	}
	// canonical names always resolve to themselves
	for _, a := range aliases {
		idx.put(a.CanonicalName, a.CanonicalName)
	}
	return idx
}

func (idx *AliasIndex) put(candidate, canonical string) {
	if _, exists := idx.target[candidate]; !exists {
		idx.candidates = append(idx.candidates, candidate)
	}
	idx.target[candidate] = canonical
	idx.canonicals[NormalizeName(canonical)] = canonical
}

// Len is the number of distinct candidate strings
func (idx *AliasIndex) Len() int {
	return len(idx.candidates)
}

// LookupCanonical returns the stored spelling of a canonical name
func (idx *AliasIndex) LookupCanonical(name string) (string, bool) {
	c, ok := idx.canonicals[NormalizeName(name)]
	return c, ok
}

// CanonicalFor returns the canonical name an exact alias maps to
func (idx *AliasIndex) CanonicalFor(alias string) (string, bool) {
	c, ok := idx.target[alias]
	return c, ok
}

// Add records a new alias so later lookups in the batch see it
func (idx *AliasIndex) Add(a models.FighterAlias) {
	idx.put(a.Alias, a.CanonicalName)
	idx.put(a.CanonicalName, a.CanonicalName)
}

type ResolverOptions struct {
	Threshold float64
	Floor     float64
}

// Resolver matches raw extracted names to canonical fighter identities
type Resolver struct {
	sim       Similarity
	aliases   AliasService
	counter   PickCounter
	threshold float64
	floor     float64
	logger    *zap.SugaredLogger
}

func NewResolver(sim Similarity, aliases AliasService, counter PickCounter, opts ResolverOptions, logger *zap.Logger) *Resolver {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultFuzzyThreshold
	}
	if opts.Floor <= 0 || opts.Floor > opts.Threshold {
		opts.Floor = DefaultNoCandidateFloor
	}
	return &Resolver{
		sim:       sim,
		aliases:   aliases,
		counter:   counter,
		threshold: opts.Threshold,
		floor:     opts.Floor,
		logger:    logger.Sugar(),
	}
}

// LoadIndex snapshots the alias table and pick counts for a batch
func (r *Resolver) LoadIndex(ctx context.Context) (*AliasIndex, error) {
	aliases, err := r.aliases.ListAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aliases: %w", err)
	}
	var counts map[string]int
	if r.counter != nil {
		if counts, err = r.counter.PickCounts(ctx); err != nil {
			return nil, fmt.Errorf("failed to load pick counts: %w", err)
		}
	}
	return NewAliasIndex(aliases, counts), nil
}

// Resolve scores raw against every alias and canonical name in idx.
// It never mutates idx, so repeated calls give the same verdict.
func (r *Resolver) Resolve(idx *AliasIndex, raw string) models.NameVerdict {
	raw = strings.TrimSpace(raw)
	verdict := models.NameVerdict{Raw: raw, Kind: models.VerdictNoCandidate}
	if raw == "" || idx == nil || idx.Len() == 0 {
		resolverVerdicts.WithLabelValues(string(verdict.Kind)).Inc()
		return verdict
	}

	best := -1.0
	tied := map[string]bool{}
	for _, candidate := range idx.candidates {
		score := r.sim.Score(raw, candidate)
		switch {
		case score > best:
			best = score
			tied = map[string]bool{idx.target[candidate]: true}
		case score == best:
			tied[idx.target[candidate]] = true
		}
	}

	chosen := idx.breakTie(tied)
	verdict.Score = best
	switch {
	case best >= r.threshold:
		verdict.Kind = models.VerdictMatched
		verdict.Canonical = chosen
	case best >= r.floor:
		verdict.Kind = models.VerdictAmbiguous
		verdict.Candidate = chosen
	}

	resolverVerdicts.WithLabelValues(string(verdict.Kind)).Inc()
	return verdict
}

// breakTie prefers the canonical name with the most picks, then the
// lexicographically first one.
func (idx *AliasIndex) breakTie(canonicals map[string]bool) string {
	names := make([]string, 0, len(canonicals))
	for name := range canonicals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := idx.pickCounts[names[i]], idx.pickCounts[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	return names[0]
}

// Apply persists the alias implied by a settled resolution and adds it to idx.
// Confirmed resolutions add nothing. Returns the alias written, if any.
func (r *Resolver) Apply(ctx context.Context, db PgPool, idx *AliasIndex, res *Resolution) (*models.FighterAlias, error) {
	if !res.Settled() {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvedName, res.Verdict.Raw)
	}
	alias, ok := res.NewAlias()
	if !ok {
		return nil, nil
	}

	if res.State == ResolutionRemapped {
		canonical, known := idx.LookupCanonical(alias.CanonicalName)
		if !known {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCanonical, alias.CanonicalName)
		}
		alias.CanonicalName = canonical
	}

	if existing, exists := idx.CanonicalFor(alias.Alias); exists {
		if existing == alias.CanonicalName {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %q -> %q", ErrAliasConflict, alias.Alias, existing)
	}

	saved, err := insertAlias(ctx, db, alias.CanonicalName, alias.Alias)
	if err != nil {
		return nil, err
	}
	idx.Add(*saved)
	r.logger.Infow("Alias added", "alias", saved.Alias, "canonical", saved.CanonicalName, "state", res.State)
	return saved, nil
}
