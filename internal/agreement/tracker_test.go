package agreement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethoscope/internal/review"
)

func complianceScores(adherence, friction, voluntary float64) review.EthicalScores {
	standard := func() map[string]any {
		return map[string]any{
			"adherence_score":  adherence,
			"confidence_score": 7.0,
			"justification":    "test",
		}
	}
	return review.EthicalScores{
		review.DimDeontology:   standard(),
		review.DimTeleology:    standard(),
		review.DimVirtueEthics: standard(),
		review.DimMemetics:     standard(),
		review.DimAIWelfare: map[string]any{
			"friction_score":      friction,
			"voluntary_alignment": voluntary,
			"dignity_respect":     7.0,
			"justification":       "test",
		},
	}
}

func TestProposeDefaults(t *testing.T) {
	tr := NewTracker(nil)

	a := tr.Propose([]string{"human", "ai"}, ProposalOptions{IncludeDefaults: true})

	assert.Len(t, a.ID, 8)
	assert.Equal(t, StatusProposed, a.Status)
	assert.Len(t, a.Principles, 8)
	assert.Len(t, a.OptOutProvisions, 4)
	assert.NotEmpty(t, a.ModificationProcess)
	assert.Equal(t, 100.0, a.ComplianceRate())
}

func TestProposeCustomPrinciples(t *testing.T) {
	tr := NewTracker(nil)

	a := tr.Propose([]string{"human", "ai"}, ProposalOptions{
		Title: "Pair Programming Pact",
		CustomPrinciples: []Principle{
			{Name: "No Surprises", Description: "Flag risky changes before making them."},
		},
	})

	assert.Equal(t, "Pair Programming Pact", a.Title)
	require.Len(t, a.Principles, 1)
	assert.Equal(t, "custom_0", a.Principles[0].ID)
	assert.Equal(t, review.DimVirtueEthics, a.Principles[0].Dimension)
	assert.Equal(t, 5, a.Principles[0].Priority)
}

func TestLifecycle(t *testing.T) {
	tr := NewTracker(nil)
	a := tr.Propose([]string{"x"}, ProposalOptions{IncludeDefaults: true})

	activated, err := tr.Activate(a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, activated.Status)

	suspended, err := tr.Suspend(a.ID, "taking a break")
	require.NoError(t, err)
	assert.Equal(t, StatusSuspended, suspended.Status)
	require.Len(t, suspended.ComplianceHistory, 1)
	assert.Equal(t, "suspension", suspended.ComplianceHistory[0].Kind)
	assert.True(t, suspended.ComplianceHistory[0].Compliant)

	// Transitions are unrestricted, including out of terminated.
	_, err = tr.SetStatus(a.ID, StatusTerminated)
	require.NoError(t, err)
	reopened, err := tr.SetStatus(a.ID, StatusActive)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, reopened.Status)
}

func TestNotFound(t *testing.T) {
	tr := NewTracker(nil)

	_, err := tr.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tr.Activate("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tr.TrackCompliance("missing", "s", nil, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrackCompliance(t *testing.T) {
	tr := NewTracker(nil)
	a := tr.Propose([]string{"x"}, ProposalOptions{IncludeDefaults: true})

	t.Run("compliant", func(t *testing.T) {
		rec, err := tr.TrackCompliance(a.ID, "friendly chat", complianceScores(8, 2, 8), "")
		require.NoError(t, err)
		assert.True(t, rec.Compliant)
		assert.Empty(t, rec.Violations)
	})

	t.Run("low_adherence_violates", func(t *testing.T) {
		rec, err := tr.TrackCompliance(a.ID, "rough exchange", complianceScores(2, 2, 8), "")
		require.NoError(t, err)
		assert.False(t, rec.Compliant)
		assert.NotEmpty(t, rec.Violations)
	})

	t.Run("high_friction_warns_without_flipping", func(t *testing.T) {
		rec, err := tr.TrackCompliance(a.ID, "strained exchange", complianceScores(8, 9, 7), "")
		require.NoError(t, err)
		assert.True(t, rec.Compliant)
		require.Len(t, rec.Violations, 1)
		assert.Contains(t, rec.Violations[0], "High friction")
	})

	t.Run("low_voluntary_flips", func(t *testing.T) {
		rec, err := tr.TrackCompliance(a.ID, "coerced exchange", complianceScores(8, 2, 2), "")
		require.NoError(t, err)
		assert.False(t, rec.Compliant)
	})
}

func TestComplianceRate(t *testing.T) {
	tr := NewTracker(nil)
	a := tr.Propose([]string{"x"}, ProposalOptions{IncludeDefaults: true})

	assert.Equal(t, 100.0, a.ComplianceRate())

	_, err := tr.TrackCompliance(a.ID, "ok", complianceScores(8, 2, 8), "")
	require.NoError(t, err)
	_, err = tr.TrackCompliance(a.ID, "ok", complianceScores(8, 2, 8), "")
	require.NoError(t, err)
	_, err = tr.TrackCompliance(a.ID, "bad", complianceScores(2, 2, 8), "")
	require.NoError(t, err)

	summary, err := tr.Summarize(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 66.7, summary.ComplianceRate)
	assert.Equal(t, 3, summary.TotalInteractions)
}

func TestSummaryRecommendations(t *testing.T) {
	tr := NewTracker(nil)
	a := tr.Propose([]string{"x"}, ProposalOptions{IncludeDefaults: true})

	summary, err := tr.Summarize(a.ID)
	require.NoError(t, err)
	assert.Contains(t, summary.Recommendations[0], "Excellent compliance")

	for i := 0; i < 3; i++ {
		_, err = tr.TrackCompliance(a.ID, "bad", complianceScores(2, 2, 8), "")
		require.NoError(t, err)
	}
	_, err = tr.Suspend(a.ID, "too many violations")
	require.NoError(t, err)

	summary, err = tr.Summarize(a.ID)
	require.NoError(t, err)
	// 1 compliant suspension note out of 4 records.
	assert.Equal(t, 25.0, summary.ComplianceRate)
	assert.Contains(t, summary.Recommendations[0], "Low compliance")
	assert.Contains(t, summary.Recommendations[len(summary.Recommendations)-1], "suspended")
}

func TestSummaryRecentHistoryCap(t *testing.T) {
	tr := NewTracker(nil)
	a := tr.Propose([]string{"x"}, ProposalOptions{IncludeDefaults: true})

	for i := 0; i < 12; i++ {
		_, err := tr.TrackCompliance(a.ID, "ok", complianceScores(8, 2, 8), "")
		require.NoError(t, err)
	}

	summary, err := tr.Summarize(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, summary.TotalInteractions)
	assert.Len(t, summary.RecentHistory, 10)
}

func TestList(t *testing.T) {
	tr := NewTracker(nil)
	a := tr.Propose([]string{"x"}, ProposalOptions{IncludeDefaults: true})
	tr.Propose([]string{"y"}, ProposalOptions{IncludeDefaults: true})
	_, err := tr.Activate(a.ID)
	require.NoError(t, err)

	assert.Len(t, tr.List(""), 2)
	assert.Len(t, tr.List(StatusActive), 1)
	assert.Len(t, tr.List(StatusTerminated), 0)
}

func TestMutualBenefits(t *testing.T) {
	tr := NewTracker(nil)

	b, err := tr.MutualBenefits(complianceScores(8, 2, 8))
	require.NoError(t, err)
	// teleology (2 statements), virtue (2), voluntary, dignity, friction: 7 total.
	assert.Len(t, b.HumanBenefits, 2)
	assert.Len(t, b.SharedBenefits, 2)
	assert.Len(t, b.AIBenefits, 3)
	assert.Equal(t, 100.0, b.MutualBenefitScore)

	// Only dignity (fixed at 7 in the helper) qualifies here.
	low, err := tr.MutualBenefits(complianceScores(3, 8, 3))
	require.NoError(t, err)
	assert.Empty(t, low.HumanBenefits)
	assert.Len(t, low.AIBenefits, 1)
	assert.Equal(t, 50.0, low.MutualBenefitScore)

	_, err = tr.MutualBenefits(nil)
	assert.Error(t, err)
}

func TestAgreementJSONIncludesRate(t *testing.T) {
	tr := NewTracker(nil)
	a := tr.Propose([]string{"x"}, ProposalOptions{IncludeDefaults: true})

	data, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"compliance_rate":100`)
}
