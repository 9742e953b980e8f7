package logic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolverVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_resolver_verdicts_total",
		Help: "Fighter name resolutions by verdict kind",
	}, []string{"kind"})

	extractionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_extraction_failures_total",
		Help: "Extraction attempts that could not be normalized",
	}, []string{"stage"})

	scrapeFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_scrape_fallbacks_total",
		Help: "Scrapes that returned no text and require pasted article text",
	})

	picksSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_picks_saved_total",
		Help: "Analyst picks persisted",
	})

	scoringCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_scoring_cache_total",
		Help: "Leaderboard cache lookups by outcome",
	}, []string{"outcome"})
)
