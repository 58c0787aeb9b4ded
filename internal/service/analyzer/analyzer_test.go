package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/curebird/backend/internal/core"
)

type fakeProvider struct {
	visionResponse string
	visionErr      error
	summaryText    string
	summaryErr     error

	visionCalls  int
	summaryCalls int
	visionPrompt string
	summaryInput []core.Message
}

func (f *fakeProvider) CompleteVision(ctx context.Context, model, prompt, imageDataURL string, opts core.CompletionOptions) (string, error) {
	f.visionCalls++
	f.visionPrompt = prompt
	return f.visionResponse, f.visionErr
}

func (f *fakeProvider) Complete(ctx context.Context, model string, history []core.Message, opts core.CompletionOptions) (string, error) {
	f.summaryCalls++
	f.summaryInput = history
	return f.summaryText, f.summaryErr
}

type fakeVision struct {
	response string
	calls    int
}

func (f *fakeVision) CompleteVision(ctx context.Context, model, prompt, imageDataURL string, opts core.CompletionOptions) (string, error) {
	f.calls++
	return f.response, nil
}

type fakeSummarizer struct {
	text  string
	calls int
}

func (f *fakeSummarizer) Complete(ctx context.Context, model string, history []core.Message, opts core.CompletionOptions) (string, error) {
	f.calls++
	return f.text, nil
}

var testImage = []byte{0xFF, 0xD8, 0xFF, 0xE0}

// Extraction and summarization may run on different clients (separate
// API keys); each call must land on its own provider.
func TestProcess_SeparateProviders(t *testing.T) {
	vision := &fakeVision{response: `{"is_medical": true, "medications": [], "diseases": ["Fever"]}`}
	summarizer := &fakeSummarizer{text: "- A fever was noted.\nConsult your doctor."}
	p := NewPipeline(vision, summarizer, "vision", "capable", true)

	res := p.Process(context.Background(), testImage, "image/jpeg")

	if vision.calls != 1 {
		t.Errorf("vision calls = %d, want 1", vision.calls)
	}
	if summarizer.calls != 1 {
		t.Errorf("summarizer calls = %d, want 1", summarizer.calls)
	}
	if res.Summary != summarizer.text {
		t.Errorf("summary = %q", res.Summary)
	}
}

func TestProcess_NonMedicalShortCircuits(t *testing.T) {
	provider := &fakeProvider{visionResponse: `{"is_medical": false}`}
	p := NewPipeline(provider, provider, "vision", "capable", true)

	res := p.Process(context.Background(), testImage, "image/jpeg")

	if provider.summaryCalls != 0 {
		t.Error("summarization must not run for non-medical uploads")
	}
	if res.Summary != refusalSummary {
		t.Errorf("summary = %q, want refusal", res.Summary)
	}
	if len(res.Analysis.Medications) != 0 || len(res.Analysis.Diseases) != 0 {
		t.Errorf("refusal must carry empty lists: %+v", res.Analysis)
	}
}

func TestProcess_MedicationFlowsIntoSummaryPrompt(t *testing.T) {
	provider := &fakeProvider{
		visionResponse: `{"is_medical": true, "medications": [{"name": "Metformin", "dosage": "500mg", "frequency": "twice daily"}], "diseases": []}`,
		summaryText:    "- You take Metformin.\nConsult your doctor.",
	}
	p := NewPipeline(provider, provider, "vision", "capable", true)

	res := p.Process(context.Background(), testImage, "image/png")

	if provider.summaryCalls != 1 {
		t.Fatalf("summary calls = %d, want 1", provider.summaryCalls)
	}
	if len(res.Analysis.Medications) != 1 {
		t.Fatalf("medications = %d, want 1", len(res.Analysis.Medications))
	}

	prompt := provider.summaryInput[len(provider.summaryInput)-1].Content
	if !strings.Contains(prompt, "Metformin") || !strings.Contains(prompt, "500mg") {
		t.Errorf("medication not serialized into summary prompt:\n%s", prompt)
	}
	if res.Summary != "- You take Metformin.\nConsult your doctor." {
		t.Errorf("summary = %q", res.Summary)
	}
}

func TestProcess_NothingDetectedPrompt(t *testing.T) {
	provider := &fakeProvider{
		visionResponse: `{"is_medical": true, "medications": [], "diseases": []}`,
		summaryText:    "Nothing specific was detected.",
	}
	p := NewPipeline(provider, provider, "vision", "capable", true)

	p.Process(context.Background(), testImage, "image/jpeg")

	prompt := provider.summaryInput[len(provider.summaryInput)-1].Content
	if !strings.Contains(prompt, "nothing specific was detected") {
		t.Errorf("prompt must forbid fabrication when nothing was extracted:\n%s", prompt)
	}
}

func TestProcess_VisionFailureIsSafe(t *testing.T) {
	provider := &fakeProvider{visionErr: errors.New("model offline")}
	p := NewPipeline(provider, provider, "vision", "capable", true)

	res := p.Process(context.Background(), testImage, "image/jpeg")

	if res.Summary != errorSummary {
		t.Errorf("summary = %q, want error-safe summary", res.Summary)
	}
	if res.Analysis.Medications == nil || res.Analysis.Diseases == nil {
		t.Error("error result must carry empty (non-nil) lists")
	}
	if provider.summaryCalls != 0 {
		t.Error("summary must not run after extraction failure")
	}
}

func TestProcess_SummaryFailureKeepsAnalysis(t *testing.T) {
	provider := &fakeProvider{
		visionResponse: `{"is_medical": true, "medications": [{"name": "Aspirin"}], "diseases": ["Fever"]}`,
		summaryErr:     errors.New("throttled"),
	}
	p := NewPipeline(provider, provider, "vision", "capable", true)

	res := p.Process(context.Background(), testImage, "image/jpeg")

	if res.Summary != errorSummary {
		t.Errorf("summary = %q", res.Summary)
	}
	if len(res.Analysis.Medications) != 1 {
		t.Error("extraction results should survive a failed summary")
	}
}

func TestAnalyze_QuickVariant(t *testing.T) {
	provider := &fakeProvider{
		visionResponse: "```json\n{\"is_medical\": true, \"diseases\": [\"Anemia\"]}\n```",
	}
	p := NewPipeline(provider, provider, "vision", "capable", true)

	analysis := p.Analyze(context.Background(), testImage, "image/jpeg")

	if !analysis.IsMedical {
		t.Error("expected medical classification")
	}
	if len(analysis.Diseases) != 1 || analysis.Diseases[0] != "Anemia" {
		t.Errorf("diseases = %v", analysis.Diseases)
	}
	if analysis.Medications == nil {
		t.Error("missing medications must default to empty list")
	}
	if provider.summaryCalls != 0 {
		t.Error("quick variant never summarizes")
	}
}

func TestAnalyze_EmptyImage(t *testing.T) {
	provider := &fakeProvider{}
	p := NewPipeline(provider, provider, "vision", "capable", true)

	analysis := p.Analyze(context.Background(), nil, "")

	if provider.visionCalls != 0 {
		t.Error("empty upload must not reach the provider")
	}
	if analysis.IsMedical || len(analysis.Medications) != 0 {
		t.Errorf("expected empty analysis, got %+v", analysis)
	}
}
