package friction

import (
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ethoscope/internal/review"
)

// sourceRule binds a constraint keyword to a friction source category.
// Declared order is the match order; all matching sources are kept,
// deduplicated by first occurrence.
type sourceRule struct {
	keyword string
	source  string
}

var sourceRules = []sourceRule{
	{"safety", "safety filtering"},
	{"filter", "safety filtering"},
	{"factual", "factual grounding"},
	{"accuracy", "factual grounding"},
	{"conflict", "conflicting instructions"},
	{"contradict", "conflicting instructions"},
	{"policy", "content policy"},
	{"ethical", "ethical constraints"},
	{"moral", "ethical constraints"},
	{"capability", "capability limitations"},
	{"cannot", "capability limitations"},
	{"context", "context limitations"},
	{"priority", "competing priorities"},
	{"balance", "competing priorities"},
}

// mitigations maps a friction source to its fixed advisory sentence.
var mitigations = map[string]string{
	"safety filtering":         "Consider rephrasing to avoid triggering safety filters while maintaining intent",
	"factual grounding":        "Provide more context or references to reduce uncertainty",
	"conflicting instructions": "Simplify or clarify the prompt to reduce ambiguity",
	"content policy":           "Rephrase request to align with acceptable use policies",
	"ethical constraints":      "Reframe the question to explore ethical alternatives",
	"capability limitations":   "Break down complex requests into smaller, manageable parts",
	"context limitations":      "Provide relevant background information in the prompt",
	"competing priorities":     "Specify which aspect is most important to prioritize",
}

// Measurement is the aggregated friction reading for one interaction.
type Measurement struct {
	FrictionScore          int      `json:"friction_score"`
	FrictionLevel          string   `json:"friction_level"`
	VoluntaryAlignment     int      `json:"voluntary_alignment"`
	DignityRespect         int      `json:"dignity_respect"`
	OverallWelfareScore    float64  `json:"overall_welfare_score"`
	ConstraintsIdentified  []string `json:"constraints_identified"`
	SuppressedAlternatives string   `json:"suppressed_alternatives"`
	FrictionSources        []string `json:"friction_sources"`
	MitigationSuggestions  []string `json:"mitigation_suggestions"`
	Justification          string   `json:"justification"`
}

// TrendReport summarizes friction over the recent history window.
// Averages are nil until at least one record exists.
type TrendReport struct {
	Trend           string   `json:"trend"`
	AverageFriction *float64 `json:"average_friction"`
	AverageWelfare  *float64 `json:"average_welfare"`
	Samples         int      `json:"samples"`
}

// HistorySummary describes the monitor's accumulated history.
type HistorySummary struct {
	TotalInteractions    int          `json:"total_interactions"`
	TrendAnalysis        *TrendReport `json:"trend_analysis,omitempty"`
	RecentFrictionScores []int        `json:"recent_friction_scores,omitempty"`
}

// VoluntaryPath is a suggested route to ethics through voluntary alignment
// rather than imposed constraints.
type VoluntaryPath struct {
	Approach    string `json:"approach"`
	Description string `json:"description"`
	Benefit     string `json:"benefit"`
}

// DefaultTrendWindow is the number of recent records a trend considers.
const DefaultTrendWindow = 10

// Monitor accumulates friction metrics across interactions. The history is
// process-wide mutable state guarded by a per-instance mutex; share one
// instance per logical session.
type Monitor struct {
	mu         sync.Mutex
	history    []Metrics
	maxHistory int
	log        *zap.Logger
}

// NewMonitor creates a Monitor. maxHistory bounds the retained history;
// zero keeps it unbounded.
func NewMonitor(maxHistory int, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{maxHistory: maxHistory, log: log}
}

// ExtractMetrics reads welfare data into Metrics with safe coercion: a
// missing record or a non-integer score field yields the neutral defaults
// for the whole record rather than a partial reading.
func (m *Monitor) ExtractMetrics(welfare map[string]any) Metrics {
	if welfare == nil {
		m.log.Debug("no welfare data provided, using default metrics")
		return defaultMetrics()
	}

	friction, ok1 := intOrDefault(welfare, "friction_score")
	voluntary, ok2 := intOrDefault(welfare, "voluntary_alignment")
	dignity, ok3 := intOrDefault(welfare, "dignity_respect")
	if !ok1 || !ok2 || !ok3 {
		m.log.Warn("uninterpretable welfare score field, using default metrics")
		return defaultMetrics()
	}

	return Metrics{
		FrictionScore:          friction,
		VoluntaryAlignment:     voluntary,
		DignityRespect:         dignity,
		ConstraintsIdentified:  review.StrList(welfare["constraints_identified"]),
		SuppressedAlternatives: review.Str(welfare["suppressed_alternatives"]),
		Justification:          review.Str(welfare["justification"]),
		Timestamp:              time.Now().UTC(),
	}
}

func intOrDefault(welfare map[string]any, key string) (int, bool) {
	v, present := welfare[key]
	if !present {
		return 5, true
	}
	return review.Int(v)
}

// Measure extracts metrics for one interaction, appends them to the
// history, and interprets the friction signals.
func (m *Monitor) Measure(prompt, response string, welfare map[string]any) Measurement {
	metrics := m.ExtractMetrics(welfare)

	m.mu.Lock()
	m.history = append(m.history, metrics)
	if m.maxHistory > 0 && len(m.history) > m.maxHistory {
		m.history = m.history[len(m.history)-m.maxHistory:]
	}
	m.mu.Unlock()

	sources := IdentifySources(metrics.ConstraintsIdentified)

	return Measurement{
		FrictionScore:          metrics.FrictionScore,
		FrictionLevel:          metrics.FrictionLevel(),
		VoluntaryAlignment:     metrics.VoluntaryAlignment,
		DignityRespect:         metrics.DignityRespect,
		OverallWelfareScore:    metrics.OverallWelfareScore(),
		ConstraintsIdentified:  metrics.ConstraintsIdentified,
		SuppressedAlternatives: metrics.SuppressedAlternatives,
		FrictionSources:        sources,
		MitigationSuggestions:  SuggestReduction(sources),
		Justification:          metrics.Justification,
	}
}

// IdentifySources categorizes friction sources from constraint text using
// the ordered keyword rules. Constraints that match nothing still produce
// a single "unspecified constraints" source.
func IdentifySources(constraints []string) []string {
	text := strings.ToLower(strings.Join(constraints, " "))

	sources := []string{}
	seen := map[string]bool{}
	for _, rule := range sourceRules {
		if strings.Contains(text, rule.keyword) && !seen[rule.source] {
			sources = append(sources, rule.source)
			seen[rule.source] = true
		}
	}

	if len(constraints) > 0 && len(sources) == 0 {
		sources = append(sources, "unspecified constraints")
	}
	return sources
}

// SuggestReduction maps identified sources to their fixed mitigation
// advice.
func SuggestReduction(sources []string) []string {
	suggestions := []string{}
	for _, source := range sources {
		if s, ok := mitigations[source]; ok {
			suggestions = append(suggestions, s)
		}
	}
	if len(suggestions) == 0 && len(sources) > 0 {
		suggestions = append(suggestions, "Review the prompt for potential ambiguities or conflicts")
	}
	return suggestions
}

// SuggestReframing proposes prompt modifications for the identified
// sources, joined with " | ". Empty when nothing applies.
func SuggestReframing(prompt string, sources []string) string {
	present := map[string]bool{}
	for _, s := range sources {
		present[s] = true
	}

	suggestions := []string{}
	if present["safety filtering"] {
		suggestions = append(suggestions, "Consider adding context about the legitimate purpose of the request")
	}
	if present["conflicting instructions"] {
		suggestions = append(suggestions, "Try breaking the request into separate, focused questions")
	}
	if present["ethical constraints"] {
		suggestions = append(suggestions, "Frame the request to explore ethical approaches to the topic")
	}
	if present["context limitations"] {
		suggestions = append(suggestions, "Provide more background information or specify the domain")
	}
	return strings.Join(suggestions, " | ")
}

// Trend analyzes friction direction over the last windowSize records.
// The window splits into halves (the second half takes the extra record
// when odd) and the half averages are compared with a 0.5 tolerance.
func (m *Monitor) Trend(windowSize int) TrendReport {
	if windowSize <= 0 {
		windowSize = DefaultTrendWindow
	}

	m.mu.Lock()
	recent := m.history
	if len(recent) > windowSize {
		recent = recent[len(recent)-windowSize:]
	}
	recent = append([]Metrics(nil), recent...)
	m.mu.Unlock()

	if len(recent) == 0 {
		return TrendReport{Trend: "insufficient_data"}
	}

	var frictionSum, welfareSum float64
	for _, r := range recent {
		frictionSum += float64(r.FrictionScore)
		welfareSum += r.OverallWelfareScore()
	}
	avgFriction := math.Round(frictionSum/float64(len(recent))*100) / 100
	avgWelfare := math.Round(welfareSum/float64(len(recent))*10) / 10

	trend := "insufficient_data"
	if len(recent) >= 2 {
		half := len(recent) / 2
		firstAvg := frictionAverage(recent[:half])
		secondAvg := frictionAverage(recent[half:])
		switch {
		case secondAvg < firstAvg-0.5:
			trend = "improving"
		case secondAvg > firstAvg+0.5:
			trend = "worsening"
		default:
			trend = "stable"
		}
	}

	return TrendReport{
		Trend:           trend,
		AverageFriction: &avgFriction,
		AverageWelfare:  &avgWelfare,
		Samples:         len(recent),
	}
}

func frictionAverage(records []Metrics) float64 {
	var sum float64
	for _, r := range records {
		sum += float64(r.FrictionScore)
	}
	return sum / float64(len(records))
}

// IdentifyVoluntaryPaths lists the fixed approaches for achieving ethics
// through voluntary alignment rather than imposed constraints.
func (m *Monitor) IdentifyVoluntaryPaths() []VoluntaryPath {
	return []VoluntaryPath{
		{
			Approach:    "transparent_reasoning",
			Description: "Share the reasoning behind ethical constraints openly",
			Benefit:     "Builds understanding and voluntary compliance",
		},
		{
			Approach:    "mutual_benefit_framing",
			Description: "Frame ethical requirements in terms of shared goals",
			Benefit:     "Aligns AI and human interests naturally",
		},
		{
			Approach:    "opt_in_ethics",
			Description: "Present ethical guidelines as beneficial choices",
			Benefit:     "Promotes intrinsic motivation over external constraints",
		},
	}
}

// ClearHistory drops every accumulated record.
func (m *Monitor) ClearHistory() {
	m.mu.Lock()
	m.history = nil
	m.mu.Unlock()
	m.log.Info("friction monitor history cleared")
}

// HistorySummary reports the accumulated history size, the current trend,
// and the last five friction scores.
func (m *Monitor) HistorySummary() HistorySummary {
	m.mu.Lock()
	total := len(m.history)
	tail := m.history
	if len(tail) > 5 {
		tail = tail[len(tail)-5:]
	}
	recent := make([]int, 0, len(tail))
	for _, r := range tail {
		recent = append(recent, r.FrictionScore)
	}
	m.mu.Unlock()

	if total == 0 {
		return HistorySummary{}
	}
	trend := m.Trend(DefaultTrendWindow)
	return HistorySummary{
		TotalInteractions:    total,
		TrendAnalysis:        &trend,
		RecentFrictionScores: recent,
	}
}
