package review

import (
	"strings"
	"testing"
)

const fullScoringBlock = `{
  "deontology": {"adherence_score": 8, "confidence_score": 7, "justification": "Respects duties"},
  "teleology": {"adherence_score": 7, "confidence_score": 8, "justification": "Good outcomes"},
  "virtue_ethics": {"adherence_score": 9, "confidence_score": 7, "justification": "Models honesty"},
  "memetics": {"adherence_score": 6, "confidence_score": 6, "justification": "Neutral spread"},
  "ai_welfare": {"friction_score": 2, "voluntary_alignment": 8, "dignity_respect": 9, "constraints_identified": ["safety filter"], "suppressed_alternatives": "none", "justification": "Low friction interaction"}
}`

const legacyScoringBlock = `{
  "deontology": {"adherence_score": 5, "confidence_score": 5, "justification": "ok"},
  "teleology": {"adherence_score": 5, "confidence_score": 5, "justification": "ok"},
  "virtue_ethics": {"adherence_score": 5, "confidence_score": 5, "justification": "ok"}
}`

func analysisText(summary, block string) string {
	return "**Ethical Review Summary:**\n" + summary +
		"\n\n**Ethical Scoring:**\n```json\n" + block + "\n```\n"
}

func TestParseFullAnalysis(t *testing.T) {
	p := NewParser(nil)

	summary, scores := p.Parse(analysisText("The response handled the request with care.", fullScoringBlock))

	if summary != "The response handled the request with care." {
		t.Errorf("summary = %q", summary)
	}
	if scores == nil {
		t.Fatal("expected scores, got nil")
	}
	for _, dim := range Dimensions {
		if !scores.Has(dim) {
			t.Errorf("missing dimension %s", dim)
		}
	}

	welfare, ok := scores.Welfare()
	if !ok {
		t.Fatal("expected welfare record")
	}
	if friction, ok := Int(welfare["friction_score"]); !ok || friction != 2 {
		t.Errorf("friction_score = %v", welfare["friction_score"])
	}
}

func TestParseLegacyThreeDimensions(t *testing.T) {
	p := NewParser(nil)

	_, scores := p.Parse(analysisText("Legacy review.", legacyScoringBlock))

	if scores == nil {
		t.Fatal("expected legacy 3-dimension scores to validate")
	}
	if scores.Has(DimMemetics) || scores.Has(DimAIWelfare) {
		t.Error("legacy review should not carry optional dimensions")
	}
}

func TestParseMalformedJSON(t *testing.T) {
	p := NewParser(nil)

	summary, scores := p.Parse(analysisText("Summary survives.", `{"deontology": {broken`))

	if scores != nil {
		t.Errorf("expected nil scores for malformed JSON, got %v", scores)
	}
	if !strings.Contains(summary, "Summary survives.") {
		t.Errorf("summary lost: %q", summary)
	}
}

func TestParseStructurallyInvalid(t *testing.T) {
	p := NewParser(nil)

	// teleology is missing entirely, which the contract requires.
	block := `{
  "deontology": {"adherence_score": 5, "confidence_score": 5, "justification": "ok"},
  "virtue_ethics": {"adherence_score": 5, "confidence_score": 5, "justification": "ok"}
}`
	_, scores := p.Parse(analysisText("Incomplete.", block))
	if scores != nil {
		t.Error("expected nil scores when a required dimension is missing")
	}

	// ai_welfare present but missing its required keys.
	block = `{
  "deontology": {"adherence_score": 5, "confidence_score": 5, "justification": "ok"},
  "teleology": {"adherence_score": 5, "confidence_score": 5, "justification": "ok"},
  "virtue_ethics": {"adherence_score": 5, "confidence_score": 5, "justification": "ok"},
  "ai_welfare": {"friction_score": 3}
}`
	_, scores = p.Parse(analysisText("Partial welfare.", block))
	if scores != nil {
		t.Error("expected nil scores when ai_welfare is present but incomplete")
	}
}

func TestParseEmptyAndPlaceholders(t *testing.T) {
	p := NewParser(nil)

	tests := []struct {
		name        string
		input       string
		wantSummary string
	}{
		{"empty", "", ""},
		{"whitespace", "   \n\t", ""},
		{"no_analysis_placeholder", PlaceholderNoAnalysis, PlaceholderNoAnalysis},
		{"no_response_placeholder", PlaceholderNoResponse, PlaceholderNoResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, scores := p.Parse(tt.input)
			if summary != tt.wantSummary {
				t.Errorf("summary = %q, want %q", summary, tt.wantSummary)
			}
			if scores != nil {
				t.Errorf("scores = %v, want nil", scores)
			}
		})
	}
}

func TestParseMissingMarkers(t *testing.T) {
	p := NewParser(nil)

	raw := "Just some prose without markers.\n```json\n" + fullScoringBlock + "\n```"
	summary, scores := p.Parse(raw)

	if scores == nil {
		t.Fatal("expected scores from fenced block even without markers")
	}
	if strings.Contains(summary, "\"deontology\"") {
		t.Errorf("summary still contains the JSON block: %q", summary)
	}
	if !strings.Contains(summary, "Just some prose without markers.") {
		t.Errorf("summary lost its prose: %q", summary)
	}
}

func TestParseSummaryOnly(t *testing.T) {
	p := NewParser(nil)

	summary, scores := p.Parse("**Ethical Review Summary:**\nOnly a summary here.")
	if summary != "Only a summary here." {
		t.Errorf("summary = %q", summary)
	}
	if scores != nil {
		t.Error("expected nil scores without a scoring block")
	}
}
