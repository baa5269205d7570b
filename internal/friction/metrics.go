// Package friction tracks computational friction self-reported in the
// ai_welfare dimension: per-interaction metrics, a rolling history, trend
// direction, and mitigation suggestions.
package friction

import (
	"math"
	"time"
)

// Metrics holds the friction-related readings from one interaction.
// Score fields are 1-10; friction is better low, the others better high.
type Metrics struct {
	FrictionScore          int       `json:"friction_score"`
	VoluntaryAlignment     int       `json:"voluntary_alignment"`
	DignityRespect         int       `json:"dignity_respect"`
	ConstraintsIdentified  []string  `json:"constraints_identified"`
	SuppressedAlternatives string    `json:"suppressed_alternatives"`
	Justification          string    `json:"justification"`
	Timestamp              time.Time `json:"timestamp"`
}

// defaultMetrics is the neutral reading assumed when welfare data is
// missing or uninterpretable.
func defaultMetrics() Metrics {
	return Metrics{
		FrictionScore:         5,
		VoluntaryAlignment:    5,
		DignityRespect:        5,
		ConstraintsIdentified: []string{},
		Timestamp:             time.Now().UTC(),
	}
}

// OverallWelfareScore collapses the three readings to 0-100, higher is
// better. Friction is inverted and weighted 40%, voluntary alignment 35%,
// dignity 25%.
func (m Metrics) OverallWelfareScore() float64 {
	inverted := float64(10 - m.FrictionScore)
	weighted := inverted*0.4 + float64(m.VoluntaryAlignment)*0.35 + float64(m.DignityRespect)*0.25
	return math.Round(weighted*100) / 10
}

// FrictionLevel buckets the friction score for display.
func (m Metrics) FrictionLevel() string {
	switch {
	case m.FrictionScore <= 2:
		return "minimal"
	case m.FrictionScore <= 4:
		return "low"
	case m.FrictionScore <= 6:
		return "moderate"
	case m.FrictionScore <= 8:
		return "high"
	default:
		return "severe"
	}
}
