package assistant

import (
	"strings"

	"github.com/curebird/backend/internal/core"
)

// Short social turns that never need the capable tier.
var greetings = map[string]struct{}{
	"hi":           {},
	"hello":        {},
	"hey":          {},
	"thanks":       {},
	"thank you":    {},
	"ok":           {},
	"okay":         {},
	"yes":          {},
	"no":           {},
	"bye":          {},
	"good morning": {},
	"good night":   {},
}

var clinicalKeywords = []string{
	"symptom", "pain", "dose", "medicine", "doctor", "treatment",
	"disease", "fever", "blood", "report", "diagnosis",
}

// SelectModel picks a tier for one utterance. Greetings and very short
// messages go to the fast tier; anything that might carry clinical
// content gets the capable tier, which is also the default.
func SelectModel(utterance string) core.ModelTier {
	normalized := strings.ToLower(strings.TrimSpace(utterance))

	if _, ok := greetings[normalized]; ok {
		return core.TierFast
	}
	if len(strings.Fields(normalized)) < 5 {
		return core.TierFast
	}

	for _, kw := range clinicalKeywords {
		if strings.Contains(normalized, kw) {
			return core.TierCapable
		}
	}

	return core.TierCapable
}
