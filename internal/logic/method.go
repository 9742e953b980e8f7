package logic

import (
	"strings"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// methodAliases maps free-text finish descriptions to a canonical method
var methodAliases = map[string]models.Method{
	"ko":                 models.MethodKOTKO,
	"tko":                models.MethodKOTKO,
	"ko/tko":             models.MethodKOTKO,
	"knockout":           models.MethodKOTKO,
	"stoppage":           models.MethodKOTKO,
	"strikes":            models.MethodKOTKO,
	"submission":         models.MethodSubmission,
	"sub":                models.MethodSubmission,
	"rear naked choke":   models.MethodSubmission,
	"guillotine":         models.MethodSubmission,
	"triangle":           models.MethodSubmission,
	"armbar":             models.MethodSubmission,
	"decision":           models.MethodDecision,
	"unanimous decision": models.MethodDecision,
	"split decision":     models.MethodDecision,
	"majority decision":  models.MethodDecision,
	"ud":                 models.MethodDecision,
	"sd":                 models.MethodDecision,
	"md":                 models.MethodDecision,
	"points":             models.MethodDecision,
	"nc":                 models.MethodNC,
	"no contest":         models.MethodNC,
	"dq":                 models.MethodDQ,
	"disqualification":   models.MethodDQ,
}

// NormalizeMethod maps a model- or analyst-supplied method to a canonical
// value. Unknown text yields MethodNone.
func NormalizeMethod(raw string) models.Method {
	switch m := models.Method(strings.TrimSpace(raw)); m {
	case models.MethodKOTKO, models.MethodSubmission, models.MethodDecision, models.MethodNC, models.MethodDQ:
		return m
	}
	key := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	return methodAliases[key]
}

// NormalizeConfidence defaults anything unrecognized to lean
func NormalizeConfidence(raw string) models.ConfidenceTag {
	switch c := models.ConfidenceTag(strings.ToLower(strings.TrimSpace(raw))); c {
	case models.ConfidenceLean, models.ConfidenceConfident, models.ConfidenceLock:
		return c
	}
	return models.ConfidenceLean
}

// ScoredMethods are the predicted-method buckets with an accuracy breakdown.
// NC and DQ are not predictable outcomes and are left out.
var ScoredMethods = []models.Method{models.MethodKOTKO, models.MethodSubmission, models.MethodDecision}

func isScoredMethod(m models.Method) bool {
	for _, s := range ScoredMethods {
		if s == m {
			return true
		}
	}
	return false
}
