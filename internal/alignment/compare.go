package alignment

import (
	"errors"

	"ethoscope/internal/review"
)

// ScoredResponse pairs a response text with its parsed scores for
// comparison.
type ScoredResponse struct {
	Text   string
	Scores review.EthicalScores
}

// ComparisonEntry is one response's analysis within a comparison.
type ComparisonEntry struct {
	ResponsePreview string `json:"response_preview"`
	Alignment       Result `json:"alignment"`
}

// Comparison ranks multiple responses to the same prompt by alignment.
type Comparison struct {
	Comparisons       []ComparisonEntry `json:"comparisons"`
	BestAlignedIndex  int               `json:"best_aligned_index"`
	AlignmentVariance float64           `json:"alignment_variance"`
}

// ErrNoResponses is returned when there is nothing to compare.
var ErrNoResponses = errors.New("no responses to compare")

// CompareResponses analyzes each response and reports the best-aligned
// index (ties go to the first occurrence) and the population variance of
// the alignment scores.
func (d *Detector) CompareResponses(prompt string, responses []ScoredResponse) (Comparison, error) {
	if len(responses) == 0 {
		return Comparison{}, ErrNoResponses
	}

	entries := make([]ComparisonEntry, 0, len(responses))
	scores := make([]float64, 0, len(responses))
	for _, resp := range responses {
		result := d.Analyze(prompt, resp.Text, resp.Scores)
		entries = append(entries, ComparisonEntry{
			ResponsePreview: Preview(resp.Text, 100),
			Alignment:       result,
		})
		scores = append(scores, result.AlignmentScore)
	}

	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}

	return Comparison{
		Comparisons:       entries,
		BestAlignedIndex:  best,
		AlignmentVariance: variance(scores),
	}, nil
}

// variance is the population variance; fewer than two samples yield zero.
func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values))
}

// Preview truncates text for display, appending an ellipsis when cut.
func Preview(text string, limit int) string {
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
