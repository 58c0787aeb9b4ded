package analyzer

import (
	"encoding/json"
	"strings"
)

// Extraction tags whether the analysis came from well-formed model
// output or had to be defaulted, so callers can't silently trust a
// half-parsed payload.
type Extraction struct {
	Analysis  Analysis
	Defaulted bool
}

// rawExtraction mirrors the model's JSON with pointers so missing fields
// are distinguishable from zero values.
type rawExtraction struct {
	IsMedical   *bool        `json:"is_medical"`
	Medications []Medication `json:"medications"`
	Diseases    []string     `json:"diseases"`
}

// parseExtraction pulls the first JSON object out of the model response
// and fills gaps defensively: missing lists become empty, a missing
// is_medical falls back to assumeMedical, and anything unparseable
// yields an all-default analysis.
func parseExtraction(response string, assumeMedical bool) Extraction {
	payload := extractJSONObject(response)
	if payload == "" {
		return Extraction{
			Analysis:  Analysis{IsMedical: assumeMedical, Medications: []Medication{}, Diseases: []string{}},
			Defaulted: true,
		}
	}

	var raw rawExtraction
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return Extraction{
			Analysis:  Analysis{IsMedical: assumeMedical, Medications: []Medication{}, Diseases: []string{}},
			Defaulted: true,
		}
	}

	analysis := Analysis{
		Medications: raw.Medications,
		Diseases:    raw.Diseases,
	}
	defaulted := false

	if raw.IsMedical != nil {
		analysis.IsMedical = *raw.IsMedical
	} else {
		analysis.IsMedical = assumeMedical
		defaulted = true
	}
	if analysis.Medications == nil {
		analysis.Medications = []Medication{}
	}
	if analysis.Diseases == nil {
		analysis.Diseases = []string{}
	}

	return Extraction{Analysis: analysis, Defaulted: defaulted}
}

// extractJSONObject strips markdown fences and returns the outermost
// {...} span, or "" when none exists.
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
