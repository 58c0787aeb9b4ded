// Package analyzer runs document understanding over uploaded medical
// images: one vision completion extracts structured findings, a
// classification gate rejects non-medical uploads, and a second
// completion produces a patient-friendly summary.
package analyzer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/curebird/backend/internal/core"
	"github.com/curebird/backend/pkg/log"
)

const refusalSummary = "This does not appear to be a medical document. Please upload a valid medical report or prescription."

const errorSummary = "I apologize, but I couldn't analyze this document right now. Please try again later."

const extractionPrompt = `You are a medical document analyzer. Look at this image and respond with STRICT JSON only, no prose, no markdown fences.

Schema:
{
  "is_medical": true or false,
  "medications": [{"name": "...", "dosage": "...", "frequency": "..."}],
  "diseases": ["..."]
}

Rules:
- is_medical is true only if the image is a medical document (prescription, lab report, discharge summary, medical record).
- Extract every medication with its dosage and frequency where visible; use empty strings when a detail is missing.
- List diseases or conditions mentioned in the document.
- If the image is not a medical document, return {"is_medical": false, "medications": [], "diseases": []}.`

type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

type Analysis struct {
	IsMedical   bool         `json:"is_medical"`
	Medications []Medication `json:"medications"`
	Diseases    []string     `json:"diseases"`
}

func emptyAnalysis() Analysis {
	return Analysis{Medications: []Medication{}, Diseases: []string{}}
}

// Result is the comprehensive pipeline output.
type Result struct {
	Analysis Analysis `json:"analysis"`
	Summary  string   `json:"summary"`
}

// VisionProvider runs the extraction call. It may sit on a different
// API key than the summarizer.
type VisionProvider interface {
	CompleteVision(ctx context.Context, model, prompt, imageDataURL string, opts core.CompletionOptions) (string, error)
}

// SummaryProvider runs the patient-friendly summary call.
type SummaryProvider interface {
	Complete(ctx context.Context, model string, history []core.Message, opts core.CompletionOptions) (string, error)
}

type Pipeline struct {
	vision       VisionProvider
	summarizer   SummaryProvider
	visionModel  string
	summaryModel string

	// What to do when the model omits is_medical entirely.
	assumeMedical bool
}

func NewPipeline(vision VisionProvider, summarizer SummaryProvider, visionModel, summaryModel string, assumeMedical bool) *Pipeline {
	return &Pipeline{
		vision:        vision,
		summarizer:    summarizer,
		visionModel:   visionModel,
		summaryModel:  summaryModel,
		assumeMedical: assumeMedical,
	}
}

// Analyze is the quick single-pass variant: one vision call, parsed
// defensively. Failures yield an empty analysis, never an error.
func (p *Pipeline) Analyze(ctx context.Context, image []byte, mimeType string) Analysis {
	analysis, err := p.extract(ctx, image, mimeType)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("vision extraction failed")
		return emptyAnalysis()
	}
	return analysis
}

// Process runs the full pipeline: extract, gate on the medical
// classification, then summarize. It never propagates an error past its
// boundary; any failure yields the fixed error-safe result.
func (p *Pipeline) Process(ctx context.Context, image []byte, mimeType string) Result {
	logger := log.FromCtx(ctx)

	analysis, err := p.extract(ctx, image, mimeType)
	if err != nil {
		logger.Error().Err(err).Msg("comprehensive analysis failed at extraction")
		return Result{Analysis: emptyAnalysis(), Summary: errorSummary}
	}

	if !analysis.IsMedical {
		logger.Info().Msg("upload classified as non-medical, skipping summary")
		return Result{Analysis: emptyAnalysis(), Summary: refusalSummary}
	}

	summary, err := p.summarize(ctx, analysis)
	if err != nil {
		logger.Error().Err(err).Msg("summary generation failed")
		return Result{Analysis: analysis, Summary: errorSummary}
	}

	return Result{Analysis: analysis, Summary: summary}
}

func (p *Pipeline) extract(ctx context.Context, image []byte, mimeType string) (Analysis, error) {
	if len(image) == 0 {
		return Analysis{}, fmt.Errorf("empty image")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	raw, err := p.vision.CompleteVision(ctx, p.visionModel, extractionPrompt, dataURL, core.CompletionOptions{
		Temperature: 0.1,
		MaxTokens:   1024,
		JSONOnly:    true,
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("vision completion: %w", err)
	}

	extraction := parseExtraction(raw, p.assumeMedical)
	if extraction.Defaulted {
		log.FromCtx(ctx).Warn().Str("raw", truncateForLog(raw)).Msg("malformed extraction output, using defaults")
	}
	return extraction.Analysis, nil
}

func (p *Pipeline) summarize(ctx context.Context, analysis Analysis) (string, error) {
	prompt := buildSummaryPrompt(analysis)

	text, err := p.summarizer.Complete(ctx, p.summaryModel, []core.Message{
		{Role: core.RoleSystem, Content: "You are a compassionate medical translator who explains clinical findings to patients in plain language."},
		{Role: core.RoleUser, Content: prompt},
	}, core.CompletionOptions{
		Temperature: 0.5,
		MaxTokens:   512,
	})
	if err != nil {
		return "", fmt.Errorf("summary completion: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func buildSummaryPrompt(analysis Analysis) string {
	var b strings.Builder
	b.WriteString("Summarize the following findings from a medical document for the patient.\n\n")

	if len(analysis.Medications) == 0 && len(analysis.Diseases) == 0 {
		b.WriteString("No specific medications or conditions were detected in the document.\n")
		b.WriteString("State clearly that nothing specific was detected; do not invent findings.\n")
	} else {
		if len(analysis.Medications) > 0 {
			b.WriteString("Medications:\n")
			for _, m := range analysis.Medications {
				fmt.Fprintf(&b, "- %s", m.Name)
				if m.Dosage != "" {
					fmt.Fprintf(&b, ", dosage: %s", m.Dosage)
				}
				if m.Frequency != "" {
					fmt.Fprintf(&b, ", frequency: %s", m.Frequency)
				}
				b.WriteString("\n")
			}
		}
		if len(analysis.Diseases) > 0 {
			b.WriteString("Conditions:\n")
			for _, d := range analysis.Diseases {
				fmt.Fprintf(&b, "- %s\n", d)
			}
		}
	}

	b.WriteString("\nWrite a short, empathetic summary of at most 3-4 bullet points, translating medical jargon into plain language. End with a one-line disclaimer to consult a qualified doctor.")
	return b.String()
}

func truncateForLog(s string) string {
	const maxLen = 300
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
