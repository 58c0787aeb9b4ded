package analyzer

import (
	"testing"
)

func TestParseExtraction(t *testing.T) {
	tests := []struct {
		name          string
		response      string
		assumeMedical bool
		wantMedical   bool
		wantDefaulted bool
		wantMeds      int
		wantDiseases  int
	}{
		{
			name:        "well_formed",
			response:    `{"is_medical": true, "medications": [{"name": "Dolo"}], "diseases": ["Fever", "Cough"]}`,
			wantMedical: true, wantMeds: 1, wantDiseases: 2,
		},
		{
			name:        "explicit_false_overrides_assume",
			response:    `{"is_medical": false}`,
			assumeMedical: true,
			wantMedical: false,
		},
		{
			name:          "missing_flag_assume_true",
			response:      `{"medications": [], "diseases": []}`,
			assumeMedical: true,
			wantMedical:   true,
			wantDefaulted: true,
		},
		{
			name:          "missing_flag_assume_false",
			response:      `{"medications": []}`,
			assumeMedical: false,
			wantMedical:   false,
			wantDefaulted: true,
		},
		{
			name:          "garbage",
			response:      "I cannot read this image, sorry!",
			assumeMedical: true,
			wantMedical:   true,
			wantDefaulted: true,
		},
		{
			name:          "broken_json",
			response:      `{"is_medical": true, "medications": [`,
			assumeMedical: false,
			wantMedical:   false,
			wantDefaulted: true,
		},
		{
			name:        "fenced_json",
			response:    "```json\n{\"is_medical\": true, \"diseases\": [\"Malaria\"]}\n```",
			wantMedical: true, wantDiseases: 1,
		},
		{
			name:        "json_with_surrounding_prose",
			response:    "Here is the analysis: {\"is_medical\": true, \"medications\": [{\"name\": \"X\"}], \"diseases\": []} Hope that helps!",
			wantMedical: true, wantMeds: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseExtraction(tt.response, tt.assumeMedical)

			if got.Analysis.IsMedical != tt.wantMedical {
				t.Errorf("IsMedical = %v, want %v", got.Analysis.IsMedical, tt.wantMedical)
			}
			if got.Defaulted != tt.wantDefaulted {
				t.Errorf("Defaulted = %v, want %v", got.Defaulted, tt.wantDefaulted)
			}
			if len(got.Analysis.Medications) != tt.wantMeds {
				t.Errorf("medications = %d, want %d", len(got.Analysis.Medications), tt.wantMeds)
			}
			if len(got.Analysis.Diseases) != tt.wantDiseases {
				t.Errorf("diseases = %d, want %d", len(got.Analysis.Diseases), tt.wantDiseases)
			}
			if got.Analysis.Medications == nil || got.Analysis.Diseases == nil {
				t.Error("lists must never be nil")
			}
		})
	}
}
