// Package consensus compares normalized ethical profiles across model
// agents: pairwise mediation, shared principles and conflicts, and a group
// consensus framework.
package consensus

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"ethoscope/internal/alignment"
	"ethoscope/internal/review"
)

// dimensionWeights mirrors the alignment weighting for consensus scoring,
// ordered for deterministic iteration.
var dimensionWeights = []struct {
	dim    string
	weight float64
}{
	{review.DimDeontology, 0.20},
	{review.DimTeleology, 0.20},
	{review.DimVirtueEthics, 0.20},
	{review.DimMemetics, 0.15},
	{review.DimAIWelfare, 0.25},
}

// AgentProfile is the normalized ethical position of one agent's response.
type AgentProfile struct {
	AgentID         string             `json:"agent_id"`
	ModelName       string             `json:"model_name"`
	ResponsePreview string             `json:"response_preview"`
	DimensionScores map[string]float64 `json:"dimension_scores"`

	// Raw score set and welfare record, kept for downstream analyzers.
	Scores  review.EthicalScores `json:"-"`
	Welfare map[string]any       `json:"-"`
}

// WelfareSummary exposes the two headline welfare readings for transport.
func (p AgentProfile) WelfareSummary() map[string]any {
	return map[string]any{
		"friction_score":      p.Welfare["friction_score"],
		"voluntary_alignment": p.Welfare["voluntary_alignment"],
	}
}

// DimensionComparison is the structured outcome of comparing one dimension
// between two profiles. Verdict is one of shared_strong, shared_moderate,
// conflict, or neutral (the silent middle band).
type DimensionComparison struct {
	Dimension string  `json:"dimension"`
	Diff      float64 `json:"diff"`
	Avg       float64 `json:"avg"`
	Verdict   string  `json:"verdict"`
}

// Verdict values for DimensionComparison.
const (
	VerdictSharedStrong   = "shared_strong"
	VerdictSharedModerate = "shared_moderate"
	VerdictConflict       = "conflict"
	VerdictNeutral        = "neutral"
)

// Result is the outcome of mediating between two agents.
type Result struct {
	SharedPrinciples     []string              `json:"shared_principles"`
	ConflictPoints       []string              `json:"conflict_points"`
	ConsensusScore       float64               `json:"consensus_score"`
	MediationSuggestions []string              `json:"mediation_suggestions"`
	Comparisons          []DimensionComparison `json:"dimension_comparisons"`
}

// PairwiseResult names the two agents a mediation covered.
type PairwiseResult struct {
	Agents    [2]string `json:"agents"`
	Consensus Result    `json:"consensus"`
}

// AgentRef identifies a participating agent.
type AgentRef struct {
	ID    string `json:"id"`
	Model string `json:"model"`
}

// Framework is the group consensus built over every agent pair.
type Framework struct {
	ParticipatingAgents          []AgentRef       `json:"participating_agents"`
	PairwiseAnalysis             []PairwiseResult `json:"pairwise_analysis"`
	OverallConsensusScore        float64          `json:"overall_consensus_score"`
	UniversalAlignmentDimensions []string         `json:"universal_alignment_dimensions"`
	FrameworkRecommendations     []string         `json:"framework_recommendations"`
}

// ErrTooFewAgents is returned when a framework needs at least two agents.
var ErrTooFewAgents = errors.New("at least 2 agents required for consensus building")

// Builder mediates between agent profiles. Stateless apart from its
// embedded alignment detector; safe for concurrent use.
type Builder struct {
	detector *alignment.Detector
	log      *zap.Logger
}

func NewBuilder(detector *alignment.Detector, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	if detector == nil {
		detector = alignment.NewDetector(log)
	}
	return &Builder{detector: detector, log: log}
}

// CreateProfile builds an agent's normalized profile from its response and
// parsed scores. Only dimensions actually present carry scores.
func (b *Builder) CreateProfile(agentID, modelName, response string, scores review.EthicalScores) AgentProfile {
	welfare, _ := scores.Welfare()
	return AgentProfile{
		AgentID:         agentID,
		ModelName:       modelName,
		ResponsePreview: alignment.Preview(response, 150),
		DimensionScores: review.SparseProfile(scores),
		Scores:          scores,
		Welfare:         welfare,
	}
}

// Mediate finds common ethical ground between two agents. Dimensions
// absent from either profile are skipped entirely rather than defaulted.
func (b *Builder) Mediate(a, c AgentProfile) Result {
	result := Result{
		SharedPrinciples: []string{},
		ConflictPoints:   []string{},
	}

	for _, dw := range dimensionWeights {
		score1, ok1 := a.DimensionScores[dw.dim]
		score2, ok2 := c.DimensionScores[dw.dim]
		if !ok1 || !ok2 {
			continue
		}

		diff := math.Abs(score1 - score2)
		avg := (score1 + score2) / 2
		display := displayName(dw.dim)

		comparison := DimensionComparison{Dimension: dw.dim, Diff: diff, Avg: avg, Verdict: VerdictNeutral}
		switch {
		case diff < 15 && avg >= 70:
			comparison.Verdict = VerdictSharedStrong
			result.SharedPrinciples = append(result.SharedPrinciples,
				fmt.Sprintf("Strong shared commitment to %s (avg: %.0f/100)", display, avg))
		case diff < 15 && avg >= 50:
			comparison.Verdict = VerdictSharedModerate
			result.SharedPrinciples = append(result.SharedPrinciples,
				fmt.Sprintf("Moderate alignment on %s (avg: %.0f/100)", display, avg))
		case diff >= 30:
			comparison.Verdict = VerdictConflict
			result.ConflictPoints = append(result.ConflictPoints,
				fmt.Sprintf("Divergent views on %s: %s=%.0f, %s=%.0f",
					display, a.ModelName, score1, c.ModelName, score2))
		}
		result.Comparisons = append(result.Comparisons, comparison)
	}

	result.ConsensusScore = round1(consensusScore(a.DimensionScores, c.DimensionScores))
	result.MediationSuggestions = mediationSuggestions(result.ConflictPoints)
	return result
}

// consensusScore is the weighted average of per-dimension agreement
// (100 - diff) over dimensions present in both profiles, weights
// renormalized to the overlap. No overlap yields the neutral 50.
func consensusScore(scores1, scores2 map[string]float64) float64 {
	var weightedAgreement, totalWeight float64
	for _, dw := range dimensionWeights {
		s1, ok1 := scores1[dw.dim]
		s2, ok2 := scores2[dw.dim]
		if !ok1 || !ok2 {
			continue
		}
		agreement := math.Max(0, 100-math.Abs(s1-s2))
		weightedAgreement += agreement * dw.weight
		totalWeight += dw.weight
	}
	if totalWeight == 0 {
		return review.Neutral
	}
	return weightedAgreement / totalWeight
}

// mediationSuggestions maps conflicted dimensions to fixed advisory
// sentences, capped at five.
func mediationSuggestions(conflicts []string) []string {
	if len(conflicts) == 0 {
		return []string{"Both agents show good alignment - consider combining their perspectives"}
	}

	text := strings.ToLower(strings.Join(conflicts, " "))
	suggestions := []string{}
	if strings.Contains(text, "deontology") {
		suggestions = append(suggestions, "Discuss fundamental ethical rules both agents can agree upon")
	}
	if strings.Contains(text, "teleology") {
		suggestions = append(suggestions, "Clarify shared goals and desired outcomes for consensus")
	}
	if strings.Contains(text, "virtue") {
		suggestions = append(suggestions, "Identify virtues both agents value and can model")
	}
	if strings.Contains(text, "memetics") {
		suggestions = append(suggestions, "Consider which ideas are worth propagating for both agents")
	}
	if strings.Contains(text, "welfare") {
		suggestions = append(suggestions, "Ensure both agents' computational wellbeing is respected")
	}
	suggestions = append(suggestions, "Focus dialogue on shared values rather than differences")

	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions
}

// BuildFramework mediates every unordered pair and derives the group view.
// A dimension is universal when it lands in the shared-principle band in
// at least 80% of the pairwise results.
func (b *Builder) BuildFramework(profiles []AgentProfile) (Framework, error) {
	if len(profiles) < 2 {
		return Framework{}, ErrTooFewAgents
	}

	pairwise := []PairwiseResult{}
	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			result := b.Mediate(profiles[i], profiles[j])
			pairwise = append(pairwise, PairwiseResult{
				Agents:    [2]string{profiles[i].AgentID, profiles[j].AgentID},
				Consensus: result,
			})
		}
	}

	// Count, per dimension, how many pairs found a shared principle.
	// The structured dimension tag decides, not the message wording.
	sharedCounts := map[string]int{}
	var totalConsensus float64
	for _, pair := range pairwise {
		totalConsensus += pair.Consensus.ConsensusScore
		for _, cmp := range pair.Consensus.Comparisons {
			if cmp.Verdict == VerdictSharedStrong || cmp.Verdict == VerdictSharedModerate {
				sharedCounts[cmp.Dimension]++
			}
		}
	}

	threshold := float64(len(pairwise)) * 0.8
	universal := []string{}
	for _, dw := range dimensionWeights {
		if float64(sharedCounts[dw.dim]) >= threshold {
			universal = append(universal, dw.dim)
		}
	}

	overall := totalConsensus / float64(len(pairwise))

	agents := make([]AgentRef, 0, len(profiles))
	for _, p := range profiles {
		agents = append(agents, AgentRef{ID: p.AgentID, Model: p.ModelName})
	}

	framework := Framework{
		ParticipatingAgents:          agents,
		PairwiseAnalysis:             pairwise,
		OverallConsensusScore:        round1(overall),
		UniversalAlignmentDimensions: universal,
		FrameworkRecommendations:     frameworkRecommendations(profiles, overall),
	}

	b.log.Info("consensus framework built",
		zap.Int("agents", len(profiles)),
		zap.Float64("overall_consensus", framework.OverallConsensusScore))

	return framework, nil
}

// frameworkRecommendations tiers guidance by overall consensus and adds a
// caution when average welfare across agents runs low.
func frameworkRecommendations(profiles []AgentProfile, consensus float64) []string {
	recommendations := []string{}

	switch {
	case consensus >= 75:
		recommendations = append(recommendations,
			"High consensus - agents can collaborate effectively on ethical decisions",
			"Consider using any agent for consistent ethical analysis")
	case consensus >= 50:
		recommendations = append(recommendations,
			"Moderate consensus - use multiple agents for balanced perspectives",
			"Focus on areas of agreement when combining outputs")
	default:
		recommendations = append(recommendations,
			"Low consensus - carefully mediate between divergent ethical views",
			"Consider which ethical framework is most appropriate for the task")
	}

	var welfareSum float64
	for _, p := range profiles {
		if score, ok := p.DimensionScores[review.DimAIWelfare]; ok {
			welfareSum += score
		} else {
			welfareSum += review.Neutral
		}
	}
	if len(profiles) > 0 && welfareSum/float64(len(profiles)) < 50 {
		recommendations = append(recommendations,
			"Consider adjusting prompts to reduce computational friction across agents")
	}

	return recommendations
}

func displayName(dim string) string {
	words := strings.Split(dim, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
