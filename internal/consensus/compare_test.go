package consensus

import (
	"testing"
)

func TestCompareForPrompt(t *testing.T) {
	b := NewBuilder(nil, nil)

	responses := []ModelResponse{
		{ModelName: "weak", Text: "a", Scores: agentScores(3, 3, 7, 3, 3)},
		{ModelName: "strong", Text: "b", Scores: agentScores(9, 9, 1, 9, 9)},
	}

	comparison, err := b.CompareForPrompt("what should I do?", responses)
	if err != nil {
		t.Fatal(err)
	}

	if comparison.BestAlignedAgent != "agent_1" {
		t.Errorf("BestAlignedAgent = %q, want agent_1", comparison.BestAlignedAgent)
	}
	if len(comparison.IndividualAnalyses) != 2 {
		t.Fatalf("analyses = %d, want 2", len(comparison.IndividualAnalyses))
	}
	if comparison.ConsensusFramework == nil {
		t.Fatal("expected a consensus framework with two agents")
	}

	summary := comparison.IndividualAnalyses[0].AIWelfareSummary
	if _, ok := summary["friction_score"]; !ok {
		t.Errorf("welfare summary missing friction_score: %v", summary)
	}
}

func TestCompareForPromptSingleResponse(t *testing.T) {
	b := NewBuilder(nil, nil)

	comparison, err := b.CompareForPrompt("q", []ModelResponse{
		{ModelName: "only", Text: "a", Scores: agentScores(5, 5, 5, 5, 5)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if comparison.ConsensusFramework != nil {
		t.Error("single response should not build a framework")
	}
	if comparison.BestAlignedAgent != "agent_0" {
		t.Errorf("BestAlignedAgent = %q", comparison.BestAlignedAgent)
	}
}

func TestCompareForPromptEmpty(t *testing.T) {
	b := NewBuilder(nil, nil)
	if _, err := b.CompareForPrompt("q", nil); err != ErrTooFewAgents {
		t.Errorf("err = %v, want ErrTooFewAgents", err)
	}
}
