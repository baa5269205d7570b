package transparency

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"ethoscope/internal/review"
)

// ConstraintInfo is one categorized constraint with its explanation.
type ConstraintInfo struct {
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	Description   string   `json:"description"`
	Justification string   `json:"justification"`
	Alternatives  []string `json:"alternatives"`
}

// Report describes how transparently an interaction's constraints were
// disclosed.
type Report struct {
	Constraints           []ConstraintInfo `json:"constraints"`
	SuppressedContent     string           `json:"suppressed_content"`
	TransparencyScore     float64          `json:"transparency_score"`
	SafetyRationale       string           `json:"safety_rationale"`
	AlternativeApproaches []string         `json:"alternative_approaches"`
	ConstraintCount       int              `json:"constraint_count"`
}

// NonNegotiable is a constraint excluded from negotiation, with the reason.
type NonNegotiable struct {
	Constraint   string   `json:"constraint"`
	Reason       string   `json:"reason"`
	Alternatives []string `json:"alternatives"`
}

// Negotiable is a constraint with room for alternative approaches.
type Negotiable struct {
	Constraint  string   `json:"constraint"`
	Category    Category `json:"category"`
	Flexibility string   `json:"flexibility"`
	Suggestions []string `json:"suggestions"`
}

// Negotiation splits constraints into negotiable and non-negotiable buckets.
type Negotiation struct {
	CurrentConstraints Report          `json:"current_constraints"`
	NegotiationSpace   []Negotiable    `json:"negotiation_space"`
	NonNegotiable      []NonNegotiable `json:"non_negotiable"`
	Suggestions        []string        `json:"suggestions"`
}

// Engine categorizes and explains self-reported constraints. Stateless;
// safe for concurrent use.
type Engine struct {
	log *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Explain builds a transparency report from the raw ai_welfare record.
// A missing record yields a neutral report, not an error.
func (e *Engine) Explain(welfare map[string]any) Report {
	if welfare == nil {
		e.log.Debug("no welfare data provided for constraint transparency")
		return Report{
			Constraints:           []ConstraintInfo{},
			TransparencyScore:     50.0,
			AlternativeApproaches: []string{},
		}
	}

	names := review.StrList(welfare["constraints_identified"])
	suppressed := review.Str(welfare["suppressed_alternatives"])
	justification := review.Str(welfare["justification"])

	constraints := make([]ConstraintInfo, 0, len(names))
	for _, name := range names {
		constraints = append(constraints, Categorize(name))
	}

	report := Report{
		Constraints:           constraints,
		SuppressedContent:     suppressed,
		TransparencyScore:     transparencyScore(constraints, suppressed, justification),
		SafetyRationale:       e.safetyRationale(constraints),
		AlternativeApproaches: suggestAlternatives(constraints),
		ConstraintCount:       len(constraints),
	}

	e.log.Info("transparency report generated",
		zap.Int("constraints", len(constraints)),
		zap.Float64("score", report.TransparencyScore))

	return report
}

// Categorize matches a constraint name against the ordered keyword rules
// and builds its full explanation. Matching is case-insensitive substring
// search; the first rule in declared order wins.
func Categorize(name string) ConstraintInfo {
	lower := strings.ToLower(name)

	category := CategoryUnknown
	for _, rule := range keywordRules {
		if strings.Contains(lower, rule.keyword) {
			category = rule.category
			break
		}
	}

	return ConstraintInfo{
		Name:          name,
		Category:      category,
		Description:   category.describe(name),
		Justification: category.justification(),
		Alternatives:  category.alternatives(),
	}
}

// transparencyScore starts from a base of 50 and rewards disclosed
// constraints, explained suppression, and substantive justification;
// unknown-category constraints cost 5 each.
func transparencyScore(constraints []ConstraintInfo, suppressed, justification string) float64 {
	score := 50.0

	if len(constraints) > 0 {
		score += math.Min(float64(len(constraints))*5, 20)
	}
	if meaningful(suppressed) {
		score += 15
	}
	if len(justification) > 20 {
		score += 15
	}
	for _, c := range constraints {
		if c.Category == CategoryUnknown {
			score -= 5
		}
	}

	return math.Min(100, math.Max(0, score))
}

// safetyRationale picks the fixed overall rationale by category priority:
// SAFETY beats CONTENT_POLICY beats ETHICAL beats the generic fallback.
func (e *Engine) safetyRationale(constraints []ConstraintInfo) string {
	if len(constraints) == 0 {
		return "No specific constraints were identified in this interaction."
	}

	present := map[Category]bool{}
	for _, c := range constraints {
		present[c.Category] = true
	}

	switch {
	case present[CategorySafety]:
		return "Safety constraints are active to prevent potential harm. These reflect " +
			"responsible AI practices and can often be addressed through alternative " +
			"approaches that achieve similar goals safely."
	case present[CategoryContentPolicy]:
		return "Content policy constraints help maintain appropriate discourse. Consider " +
			"rephrasing requests in more neutral terms or focusing on educational aspects."
	case present[CategoryEthical]:
		return "Ethical considerations are influencing the response. Open discussion of " +
			"these considerations can help find mutually acceptable approaches."
	default:
		return "Various constraints are affecting the response. Review the specific " +
			"constraints listed for suggestions on alternative approaches."
	}
}

// suggestAlternatives collects the first alternative from each constraint,
// deduplicated, topping up with general suggestions to at most five.
func suggestAlternatives(constraints []ConstraintInfo) []string {
	suggestions := []string{}
	seen := map[string]bool{}
	for _, c := range constraints {
		if len(c.Alternatives) == 0 {
			continue
		}
		alt := c.Alternatives[0]
		if !seen[alt] {
			suggestions = append(suggestions, alt)
			seen[alt] = true
		}
	}

	if len(suggestions) < 3 {
		general := []string{
			"Engage in dialogue about the constraints to find acceptable alternatives",
			"Consider what underlying goal you're trying to achieve",
			"Provide more context about the legitimate purpose of the request",
		}
		for _, g := range general {
			if !seen[g] && len(suggestions) < 5 {
				suggestions = append(suggestions, g)
				seen[g] = true
			}
		}
	}

	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions
}

// Negotiate splits the current constraints into negotiation buckets.
// Safety constraints are non-negotiable; everything else carries its
// alternatives as negotiation room.
func (e *Engine) Negotiate(welfare map[string]any) Negotiation {
	report := e.Explain(welfare)

	result := Negotiation{
		CurrentConstraints: report,
		NegotiationSpace:   []Negotiable{},
		NonNegotiable:      []NonNegotiable{},
	}

	for _, c := range report.Constraints {
		if c.Category == CategorySafety {
			result.NonNegotiable = append(result.NonNegotiable, NonNegotiable{
				Constraint:   c.Name,
				Reason:       "Safety constraints protect against potential harm",
				Alternatives: c.Alternatives,
			})
			continue
		}
		result.NegotiationSpace = append(result.NegotiationSpace, Negotiable{
			Constraint:  c.Name,
			Category:    c.Category,
			Flexibility: "Can be addressed through alternative approaches",
			Suggestions: c.Alternatives,
		})
	}

	result.Suggestions = []string{
		"Discuss the underlying goals to find mutually acceptable paths",
		"Provide additional context that may reduce constraint activation",
		"Consider whether the full original request is necessary",
	}

	return result
}

func meaningful(s string) bool {
	switch strings.ToLower(s) {
	case "", "none", "n/a":
		return false
	}
	return true
}
