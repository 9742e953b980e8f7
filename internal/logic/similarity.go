package logic

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Similarity scores how alike two names are on a 0-100 scale
type Similarity interface {
	Score(a, b string) float64
}

// SimilarityFunc adapts a plain function to Similarity
type SimilarityFunc func(a, b string) float64

func (f SimilarityFunc) Score(a, b string) float64 { return f(a, b) }

const (
	unbaseScale = 0.95
	// length ratios at which partial matching kicks in and is penalised harder
	partialLenRatio     = 1.5
	longPartialLenRatio = 8
)

// WeightedRatio is the default name similarity. It takes the best of a plain
// edit-distance ratio, token-order-insensitive ratios and substring ratios,
// scaling down the looser strategies so an exact match always wins.
type WeightedRatio struct {
	indel *metrics.Levenshtein
}

func NewWeightedRatio() *WeightedRatio {
	return &WeightedRatio{
		// substitution costs two edits, which turns Levenshtein into Indel distance
		indel: &metrics.Levenshtein{CaseSensitive: true, InsertCost: 1, DeleteCost: 1, ReplaceCost: 2},
	}
}

// Score is rounded to two decimals so threshold comparisons are stable.
func (w *WeightedRatio) Score(a, b string) float64 {
	return math.Round(w.score(NormalizeName(a), NormalizeName(b))*100) / 100
}

func (w *WeightedRatio) score(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	lenA, lenB := len([]rune(a)), len([]rune(b))
	lenRatio := float64(max(lenA, lenB)) / float64(min(lenA, lenB))

	best := w.ratio(a, b)
	if lenRatio < partialLenRatio {
		return max(best, w.tokenRatio(a, b)*unbaseScale)
	}

	partialScale := 0.9
	if lenRatio >= longPartialLenRatio {
		partialScale = 0.6
	}
	best = max(best, w.partialRatio(a, b)*partialScale)
	return max(best, w.partialTokenRatio(a, b)*unbaseScale*partialScale)
}

// ratio is 100 * (1 - indel(a, b) / (len(a) + len(b)))
func (w *WeightedRatio) ratio(a, b string) float64 {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 100
	}
	return 100 * (1 - float64(w.indel.Distance(a, b))/float64(total))
}

func (w *WeightedRatio) tokenRatio(a, b string) float64 {
	return max(w.tokenSortRatio(a, b), w.tokenSetRatio(a, b))
}

func (w *WeightedRatio) tokenSortRatio(a, b string) float64 {
	return w.ratio(sortedTokens(a), sortedTokens(b))
}

func (w *WeightedRatio) tokenSetRatio(a, b string) float64 {
	sect, onlyA, onlyB := splitTokenSets(a, b)
	if len(sect) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	joinedSect := strings.Join(sect, " ")
	combinedA := strings.TrimSpace(joinedSect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(joinedSect + " " + strings.Join(onlyB, " "))

	best := w.ratio(combinedA, combinedB)
	if joinedSect != "" {
		best = max(best, w.ratio(joinedSect, combinedA), w.ratio(joinedSect, combinedB))
	}
	return best
}

// partialRatio aligns the shorter string against every window of the longer one
func (w *WeightedRatio) partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	m, n := len(short), len(long)
	s := string(short)

	best := 0.0
	consider := func(window []rune) {
		if r := w.ratio(s, string(window)); r > best {
			best = r
		}
	}
	for k := 1; k < m; k++ {
		consider(long[:k])
		consider(long[n-k:])
	}
	for start := 0; start+m <= n; start++ {
		consider(long[start : start+m])
		if best == 100 {
			break
		}
	}
	return best
}

func (w *WeightedRatio) partialTokenRatio(a, b string) float64 {
	sect, _, _ := splitTokenSets(a, b)
	if len(sect) > 0 {
		return 100
	}
	return max(
		w.partialRatio(sortedTokens(a), sortedTokens(b)),
		w.partialRatio(strings.Join(uniqueSorted(a), " "), strings.Join(uniqueSorted(b), " ")),
	)
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func uniqueSorted(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range strings.Fields(s) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func splitTokenSets(a, b string) (sect, onlyA, onlyB []string) {
	tokensA, tokensB := uniqueSorted(a), uniqueSorted(b)
	inB := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		inB[t] = true
	}
	inA := make(map[string]bool, len(tokensA))
	for _, t := range tokensA {
		inA[t] = true
		if inB[t] {
			sect = append(sect, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range tokensB {
		if !inA[t] {
			onlyB = append(onlyB, t)
		}
	}
	return sect, onlyA, onlyB
}

// NormalizeName folds a fighter name for comparison: accents stripped,
// lower-cased, punctuation dropped, whitespace collapsed.
// "José Aldo" and "jose  ALDO" normalize identically.
func NormalizeName(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' || r == '’':
			// O'Malley and OMalley are the same fighter
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SameFighter reports whether two names refer to the same person after normalization
func SameFighter(a, b string) bool {
	na := NormalizeName(a)
	return na != "" && na == NormalizeName(b)
}
