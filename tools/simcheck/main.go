// Command simcheck shows how raw names score against a set of known names and
// which verdict the resolver would return. Useful when tuning the threshold.
//
//	simcheck -known "Islam Makhachev,Charles Oliveira" "Islam Makachev" "Oliviera"
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/logic"
	"github.com/chatmma/analyst-tracker/internal/models"
)

func main() {
	known := flag.String("known", "", "comma-separated canonical names")
	threshold := flag.Float64("threshold", logic.DefaultFuzzyThreshold, "auto-match threshold")
	floor := flag.Float64("floor", logic.DefaultNoCandidateFloor, "score below which no candidate is suggested")
	flag.Parse()

	if *known == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: simcheck -known \"A,B,...\" <raw name>...")
		os.Exit(2)
	}

	var aliases []models.FighterAlias
	for _, name := range strings.Split(*known, ",") {
		if name = strings.TrimSpace(name); name != "" {
			aliases = append(aliases, models.FighterAlias{CanonicalName: name, Alias: name})
		}
	}

	sim := logic.NewWeightedRatio()
	resolver := logic.NewResolver(sim, nil, nil, logic.ResolverOptions{Threshold: *threshold, Floor: *floor}, zap.NewNop())
	idx := logic.NewAliasIndex(aliases, nil)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, raw := range flag.Args() {
		v := resolver.Resolve(idx, raw)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", raw, v.Kind, v.Canonical+v.Candidate, v.Score)

		scores := make([]models.FighterAlias, len(aliases))
		copy(scores, aliases)
		sort.SliceStable(scores, func(i, j int) bool {
			return sim.Score(raw, scores[i].Alias) > sim.Score(raw, scores[j].Alias)
		})
		for _, a := range scores {
			fmt.Fprintf(tw, "\t\t%s\t%.2f\n", a.Alias, sim.Score(raw, a.Alias))
		}
	}
	tw.Flush()
}
