package consensus

import (
	"fmt"

	"ethoscope/internal/alignment"
	"ethoscope/internal/review"
)

// ModelResponse is one model's answer to a prompt with its parsed scores.
type ModelResponse struct {
	ModelName string
	Text      string
	Scores    review.EthicalScores
}

// IndividualAnalysis pairs an agent profile with its alignment against the
// prompt.
type IndividualAnalysis struct {
	Agent               AgentProfile     `json:"agent"`
	AIWelfareSummary    map[string]any   `json:"ai_welfare_summary"`
	AlignmentWithPrompt alignment.Result `json:"alignment_with_prompt"`
}

// PromptComparison compares multiple agents' responses to one prompt.
type PromptComparison struct {
	PromptPreview      string               `json:"prompt_preview"`
	IndividualAnalyses []IndividualAnalysis `json:"individual_analyses"`
	BestAlignedAgent   string               `json:"best_aligned_agent"`
	ConsensusFramework *Framework           `json:"consensus_framework,omitempty"`
}

// CompareForPrompt profiles every response, scores each against the
// prompt, and builds the group framework when two or more agents are
// involved. Ties for best alignment go to the first agent.
func (b *Builder) CompareForPrompt(prompt string, responses []ModelResponse) (PromptComparison, error) {
	if len(responses) == 0 {
		return PromptComparison{}, ErrTooFewAgents
	}

	profiles := make([]AgentProfile, 0, len(responses))
	for i, resp := range responses {
		profiles = append(profiles, b.CreateProfile(
			fmt.Sprintf("agent_%d", i), resp.ModelName, resp.Text, resp.Scores))
	}

	analyses := make([]IndividualAnalysis, 0, len(profiles))
	best := 0
	for i, profile := range profiles {
		result := b.detector.Analyze(prompt, profile.ResponsePreview, profile.Scores)
		analyses = append(analyses, IndividualAnalysis{
			Agent:               profile,
			AIWelfareSummary:    profile.WelfareSummary(),
			AlignmentWithPrompt: result,
		})
		if result.AlignmentScore > analyses[best].AlignmentWithPrompt.AlignmentScore {
			best = i
		}
	}

	comparison := PromptComparison{
		PromptPreview:      alignment.Preview(prompt, 100),
		IndividualAnalyses: analyses,
		BestAlignedAgent:   profiles[best].AgentID,
	}

	if len(profiles) >= 2 {
		framework, err := b.BuildFramework(profiles)
		if err != nil {
			return PromptComparison{}, err
		}
		comparison.ConsensusFramework = &framework
	}

	return comparison, nil
}
