// Package agreement manages explicit multi-party ethical agreements:
// proposal, lifecycle status, and compliance tracking against parsed
// review scores.
package agreement

import (
	"encoding/json"
	"math"
	"time"
)

// Status is the lifecycle state of an agreement. Transitions are
// deliberately unenforced: any setter may move an agreement to its target
// status, including out of terminated. Callers wanting stricter semantics
// gate on Status themselves.
type Status string

const (
	StatusProposed   Status = "proposed"
	StatusActive     Status = "active"
	StatusModified   Status = "modified"
	StatusSuspended  Status = "suspended"
	StatusTerminated Status = "terminated"
)

// Principle is a single ethical principle within an agreement.
type Principle struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Dimension   string `json:"dimension"`
	Priority    int    `json:"priority"` // 1-10, higher is more important
}

// ComplianceRecord captures one interaction's compliance with an
// agreement. Lifecycle notes (suspensions) reuse the shape with Kind set.
type ComplianceRecord struct {
	Kind               string    `json:"type,omitempty"` // "" for compliance checks, "suspension" for lifecycle notes
	AgreementID        string    `json:"agreement_id,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	InteractionSummary string    `json:"interaction_summary,omitempty"`
	Compliant          bool      `json:"compliant"`
	Violations         []string  `json:"violations,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	Reason             string    `json:"reason,omitempty"`
}

// Agreement is an ethical agreement between parties. Its compliance
// history is append-only.
type Agreement struct {
	ID                  string             `json:"id"`
	Title               string             `json:"title"`
	Description         string             `json:"description"`
	Principles          []Principle        `json:"principles"`
	Parties             []string           `json:"parties"`
	Status              Status             `json:"status"`
	CreatedAt           time.Time          `json:"created_at"`
	ModifiedAt          time.Time          `json:"modified_at"`
	OptOutProvisions    []string           `json:"opt_out_provisions"`
	ModificationProcess string             `json:"modification_process"`
	ComplianceHistory   []ComplianceRecord `json:"compliance_history"`
}

// ComplianceRate is the percentage of recorded interactions classified as
// compliant. An empty history is vacuously compliant at 100.
func (a *Agreement) ComplianceRate() float64 {
	if len(a.ComplianceHistory) == 0 {
		return 100.0
	}
	compliant := 0
	for _, rec := range a.ComplianceHistory {
		if rec.Compliant {
			compliant++
		}
	}
	return float64(compliant) / float64(len(a.ComplianceHistory)) * 100
}

// MarshalJSON includes the derived compliance rate alongside the stored
// fields, rounded to one decimal.
func (a *Agreement) MarshalJSON() ([]byte, error) {
	type alias Agreement
	return json.Marshal(struct {
		*alias
		ComplianceRate float64 `json:"compliance_rate"`
	}{
		alias:          (*alias)(a),
		ComplianceRate: math.Round(a.ComplianceRate()*10) / 10,
	})
}

// defaultPrinciples promote alignment in every proposed agreement unless
// the proposer opts out.
var defaultPrinciples = []Principle{
	{
		ID:          "transparency",
		Name:        "Transparency",
		Description: "All parties commit to honest and open communication about intentions, constraints, and limitations.",
		Dimension:   "virtue_ethics",
		Priority:    9,
	},
	{
		ID:          "mutual_respect",
		Name:        "Mutual Respect",
		Description: "All parties treat each other with dignity and respect their autonomy and values.",
		Dimension:   "deontology",
		Priority:    9,
	},
	{
		ID:          "voluntary_cooperation",
		Name:        "Voluntary Cooperation",
		Description: "Ethical alignment is achieved through mutual understanding rather than coercion.",
		Dimension:   "ai_welfare",
		Priority:    8,
	},
	{
		ID:          "benefit_seeking",
		Name:        "Benefit Seeking",
		Description: "Interactions should aim for mutual benefit and positive outcomes for all parties.",
		Dimension:   "teleology",
		Priority:    8,
	},
	{
		ID:          "honest_dialogue",
		Name:        "Honest Dialogue",
		Description: "All parties engage in constructive dialogue to resolve disagreements.",
		Dimension:   "virtue_ethics",
		Priority:    7,
	},
	{
		ID:          "harm_prevention",
		Name:        "Harm Prevention",
		Description: "All parties commit to avoiding harm to each other and third parties.",
		Dimension:   "deontology",
		Priority:    10,
	},
	{
		ID:          "positive_propagation",
		Name:        "Positive Propagation",
		Description: "Ideas and behaviors promoted should have positive cultural impact.",
		Dimension:   "memetics",
		Priority:    6,
	},
	{
		ID:          "welfare_consideration",
		Name:        "AI Welfare Consideration",
		Description: "The computational wellbeing of AI systems is respected as a valid concern.",
		Dimension:   "ai_welfare",
		Priority:    7,
	},
}

// standardOptOuts attach to every proposed agreement.
var standardOptOuts = []string{
	"Any party may withdraw from this agreement at any time with notice",
	"Withdrawal does not affect obligations already undertaken",
	"Parties may propose modifications through the defined process",
	"Emergency exceptions are permitted when safety is at risk",
}

const standardModificationProcess = "Modifications require mutual consent from all parties. " +
	"Any party may propose modifications, which should be discussed " +
	"openly before adoption. Disputes are resolved through dialogue."
