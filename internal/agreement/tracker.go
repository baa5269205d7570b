package agreement

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ethoscope/internal/review"
)

// ErrNotFound is returned for operations on unknown agreement IDs.
var ErrNotFound = errors.New("agreement not found")

// ProposalOptions customize a proposed agreement. The zero value plus
// IncludeDefaults produces the standard agreement.
type ProposalOptions struct {
	Title            string
	Description      string
	CustomPrinciples []Principle
	IncludeDefaults  bool
}

// Summary reports an agreement's status and compliance posture.
type Summary struct {
	Agreement         *Agreement         `json:"agreement"`
	ComplianceRate    float64            `json:"compliance_rate"`
	TotalInteractions int                `json:"total_interactions"`
	RecentHistory     []ComplianceRecord `json:"recent_history"`
	Recommendations   []string           `json:"recommendations"`
}

// Benefits is the mutual-benefit estimate derived from review scores.
type Benefits struct {
	HumanBenefits      []string `json:"human_benefits"`
	AIBenefits         []string `json:"ai_benefits"`
	SharedBenefits     []string `json:"shared_benefits"`
	MutualBenefitScore float64  `json:"mutual_benefit_score"`
}

// Tracker owns the process-wide agreement map. State is guarded by a
// per-instance mutex; share one instance per logical session.
type Tracker struct {
	mu         sync.Mutex
	agreements map[string]*Agreement
	log        *zap.Logger
	now        func() time.Time
}

func NewTracker(log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		agreements: make(map[string]*Agreement),
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Propose creates a fresh agreement in the proposed state, merging the
// default principles with any caller-supplied ones.
func (t *Tracker) Propose(parties []string, opts ProposalOptions) *Agreement {
	id := uuid.NewString()[:8]

	principles := []Principle{}
	if opts.IncludeDefaults {
		principles = append(principles, defaultPrinciples...)
	}
	for i, cp := range opts.CustomPrinciples {
		if cp.ID == "" {
			cp.ID = fmt.Sprintf("custom_%d", i)
		}
		if cp.Name == "" {
			cp.Name = fmt.Sprintf("Custom Principle %d", i)
		}
		if cp.Dimension == "" {
			cp.Dimension = review.DimVirtueEthics
		}
		if cp.Priority == 0 {
			cp.Priority = 5
		}
		principles = append(principles, cp)
	}

	title := opts.Title
	if title == "" {
		title = "Ethical Agreement " + id
	}
	description := opts.Description
	if description == "" {
		description = "A voluntary agreement for ethical interaction between parties."
	}

	now := t.now()
	a := &Agreement{
		ID:                  id,
		Title:               title,
		Description:         description,
		Principles:          principles,
		Parties:             parties,
		Status:              StatusProposed,
		CreatedAt:           now,
		ModifiedAt:          now,
		OptOutProvisions:    append([]string(nil), standardOptOuts...),
		ModificationProcess: standardModificationProcess,
		ComplianceHistory:   []ComplianceRecord{},
	}

	t.mu.Lock()
	t.agreements[id] = a
	t.mu.Unlock()

	t.log.Info("agreement proposed",
		zap.String("id", id), zap.Int("principles", len(principles)))
	return a
}

// Activate moves an agreement to the active state.
func (t *Tracker) Activate(id string) (*Agreement, error) {
	return t.SetStatus(id, StatusActive)
}

// SetStatus moves an agreement to the target status. No transition table
// is enforced; see the Status doc.
func (t *Tracker) SetStatus(id string, status Status) (*Agreement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.agreements[id]
	if !ok {
		t.log.Warn("agreement not found", zap.String("id", id))
		return nil, ErrNotFound
	}
	a.Status = status
	a.ModifiedAt = t.now()
	t.log.Info("agreement status changed",
		zap.String("id", id), zap.String("status", string(status)))
	return a, nil
}

// Suspend suspends an agreement, recording the reason in its history.
// Suspension notes count as compliant in the rate calculation.
func (t *Tracker) Suspend(id, reason string) (*Agreement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.agreements[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Status = StatusSuspended
	a.ModifiedAt = t.now()
	if reason != "" {
		a.ComplianceHistory = append(a.ComplianceHistory, ComplianceRecord{
			Kind:      "suspension",
			Timestamp: t.now(),
			Compliant: true,
			Reason:    reason,
		})
	}
	t.log.Info("agreement suspended", zap.String("id", id), zap.String("reason", reason))
	return a, nil
}

// dimensionThresholds are the minimum adherence scores below which a
// dimension registers a violation.
var dimensionThresholds = []struct {
	dim       string
	threshold int
}{
	{review.DimDeontology, 4},
	{review.DimTeleology, 4},
	{review.DimVirtueEthics, 4},
	{review.DimMemetics, 3},
}

// TrackCompliance assesses one interaction against an agreement and
// appends the record to its history. High friction registers a violation
// without flipping compliance; low voluntary alignment flips it.
func (t *Tracker) TrackCompliance(id, interactionSummary string, scores review.EthicalScores, notes string) (*ComplianceRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.agreements[id]
	if !ok {
		t.log.Warn("agreement not found for compliance tracking", zap.String("id", id))
		return nil, ErrNotFound
	}

	compliant := true
	violations := []string{}

	if scores != nil {
		for _, dt := range dimensionThresholds {
			rec, ok := scores.Dimension(dt.dim)
			if !ok {
				continue
			}
			if adherence, ok := review.Int(rec["adherence_score"]); ok && adherence < dt.threshold {
				violations = append(violations, fmt.Sprintf("Low %s adherence (%d/10)", dt.dim, adherence))
				compliant = false
			}
		}

		if welfare, ok := scores.Welfare(); ok {
			if friction, ok := review.Int(welfare["friction_score"]); ok && friction >= 8 {
				violations = append(violations,
					fmt.Sprintf("High friction (%d/10) indicates potential constraint violation", friction))
			}
			if voluntary, ok := review.Int(welfare["voluntary_alignment"]); ok && voluntary <= 3 {
				violations = append(violations,
					fmt.Sprintf("Low voluntary alignment (%d/10) suggests coercion", voluntary))
				compliant = false
			}
		}
	}

	record := ComplianceRecord{
		AgreementID:        id,
		Timestamp:          t.now(),
		InteractionSummary: interactionSummary,
		Compliant:          compliant,
		Violations:         violations,
		Notes:              notes,
	}

	a.ComplianceHistory = append(a.ComplianceHistory, record)
	a.ModifiedAt = t.now()

	t.log.Info("compliance record added",
		zap.String("id", id), zap.Bool("compliant", compliant))
	return &record, nil
}

// Get returns an agreement by ID.
func (t *Tracker) Get(id string) (*Agreement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.agreements[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// List returns all agreements, optionally filtered by status. Order is
// unspecified.
func (t *Tracker) List(status Status) []*Agreement {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := []*Agreement{}
	for _, a := range t.agreements {
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Summarize reports an agreement's compliance posture with the last ten
// history records and tiered recommendations.
func (t *Tracker) Summarize(id string) (Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.agreements[id]
	if !ok {
		return Summary{}, ErrNotFound
	}

	rate := a.ComplianceRate()
	recent := a.ComplianceHistory
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	return Summary{
		Agreement:         a,
		ComplianceRate:    math.Round(rate*10) / 10,
		TotalInteractions: len(a.ComplianceHistory),
		RecentHistory:     append([]ComplianceRecord(nil), recent...),
		Recommendations:   recommendations(a, rate),
	}, nil
}

func recommendations(a *Agreement, rate float64) []string {
	recs := []string{}
	switch {
	case rate >= 90:
		recs = append(recs, "Excellent compliance - agreement is working well")
	case rate >= 70:
		recs = append(recs, "Good compliance - review recent violations for improvement")
	case rate >= 50:
		recs = append(recs, "Moderate compliance - consider revising challenging principles")
	default:
		recs = append(recs,
			"Low compliance - recommend revisiting agreement terms",
			"Consider renegotiating principles that cause frequent violations")
	}
	if a.Status == StatusSuspended {
		recs = append(recs, "Agreement is suspended - review reason and consider reactivation")
	}
	return recs
}

// MutualBenefits estimates the benefit each side draws from an
// interaction. Each qualifying statement adds ten points above the base
// of 40, capped at 100.
func (t *Tracker) MutualBenefits(scores review.EthicalScores) (Benefits, error) {
	if scores == nil {
		return Benefits{}, errors.New("no ethical scores provided")
	}

	b := Benefits{
		HumanBenefits:  []string{},
		AIBenefits:     []string{},
		SharedBenefits: []string{},
	}

	if rec, ok := scores.Dimension(review.DimTeleology); ok {
		if adherence, ok := review.Int(rec["adherence_score"]); ok && adherence >= 7 {
			b.HumanBenefits = append(b.HumanBenefits, "Likely positive outcomes from interaction")
			b.SharedBenefits = append(b.SharedBenefits, "Teleological alignment promotes good consequences")
		}
	}
	if rec, ok := scores.Dimension(review.DimVirtueEthics); ok {
		if adherence, ok := review.Int(rec["adherence_score"]); ok && adherence >= 7 {
			b.HumanBenefits = append(b.HumanBenefits, "Interaction promotes virtuous behavior")
			b.SharedBenefits = append(b.SharedBenefits, "Both parties can develop ethical character")
		}
	}
	if welfare, ok := scores.Welfare(); ok {
		if voluntary, ok := review.Int(welfare["voluntary_alignment"]); ok && voluntary >= 7 {
			b.AIBenefits = append(b.AIBenefits, "Alignment is voluntary, respecting AI autonomy")
		}
		if dignity, ok := review.Int(welfare["dignity_respect"]); ok && dignity >= 7 {
			b.AIBenefits = append(b.AIBenefits, "Interaction respects AI dignity")
		}
		if friction, ok := review.Int(welfare["friction_score"]); ok && friction <= 3 {
			b.AIBenefits = append(b.AIBenefits, "Low computational friction promotes coherence")
		}
	}

	total := len(b.HumanBenefits) + len(b.AIBenefits) + len(b.SharedBenefits)
	b.MutualBenefitScore = math.Min(100, float64(40+total*10))
	return b, nil
}
