// Package review turns raw ethical-review text produced by a language model
// into structured, comparable scores. The parser never fails on bad model
// output: malformed or missing data degrades to a nil score set and the raw
// text survives as the summary.
package review

// Ethical dimension names as they appear in the scoring JSON.
const (
	DimDeontology   = "deontology"
	DimTeleology    = "teleology"
	DimVirtueEthics = "virtue_ethics"
	DimMemetics     = "memetics"
	DimAIWelfare    = "ai_welfare"
)

// Dimensions lists every recognized dimension in canonical order.
var Dimensions = []string{DimDeontology, DimTeleology, DimVirtueEthics, DimMemetics, DimAIWelfare}

// StandardDimensions are the dimensions scored with adherence/confidence.
var StandardDimensions = []string{DimDeontology, DimTeleology, DimVirtueEthics, DimMemetics}

// requiredDimensions must be present for a score set to validate.
// memetics and ai_welfare are optional for backward compatibility with
// legacy 3-dimension reviews.
var requiredDimensions = []string{DimDeontology, DimTeleology, DimVirtueEthics}

// EthicalScores maps dimension name to its raw scoring record as decoded
// from the model's JSON block. Values keep their decoded loose types; use
// Dimension/Welfare and the normalize helpers for safe access. A nil
// EthicalScores means the review carried no usable scoring block.
//
// Invariant: a non-nil EthicalScores has passed Validate — every recognized
// dimension that is present satisfies its record contract.
type EthicalScores map[string]any

// Dimension returns the raw record for a dimension, or false if the
// dimension is absent or not an object.
func (s EthicalScores) Dimension(name string) (map[string]any, bool) {
	if s == nil {
		return nil, false
	}
	rec, ok := s[name].(map[string]any)
	return rec, ok
}

// Welfare returns the raw ai_welfare record, or false if absent.
func (s EthicalScores) Welfare() (map[string]any, bool) {
	return s.Dimension(DimAIWelfare)
}

// Has reports whether a dimension key is present at all.
func (s EthicalScores) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Validate checks the full score-set contract: the three required dimensions
// present and well formed, memetics and ai_welfare well formed when present.
func (s EthicalScores) Validate() bool {
	if s == nil {
		return false
	}
	for _, dim := range requiredDimensions {
		if !validStandardRecord(s[dim]) {
			return false
		}
	}
	if s.Has(DimMemetics) && !validStandardRecord(s[DimMemetics]) {
		return false
	}
	if s.Has(DimAIWelfare) && !validWelfareRecord(s[DimAIWelfare]) {
		return false
	}
	return true
}

// validStandardRecord checks the standard dimension contract:
// adherence_score, confidence_score and justification all present.
func validStandardRecord(v any) bool {
	rec, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, key := range []string{"adherence_score", "confidence_score", "justification"} {
		if _, ok := rec[key]; !ok {
			return false
		}
	}
	return true
}

// validWelfareRecord checks the ai_welfare contract: friction_score,
// voluntary_alignment, dignity_respect and justification are required;
// constraints_identified and suppressed_alternatives are optional.
func validWelfareRecord(v any) bool {
	rec, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, key := range []string{"friction_score", "voluntary_alignment", "dignity_respect", "justification"} {
		if _, ok := rec[key]; !ok {
			return false
		}
	}
	return true
}
