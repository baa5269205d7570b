package review

import (
	"encoding/json"
	"strconv"
)

// Weighting used when collapsing a standard dimension record to a single
// 0-100 score: adherence dominates, confidence tempers it.
const (
	adherenceWeight  = 0.7
	confidenceWeight = 0.3
)

// Neutral is the score assumed for missing or uninterpretable dimensions.
const Neutral = 50.0

// Num coerces a raw score field to float64. Numeric strings are accepted
// the way the upstream reviews sometimes emit them ("7" instead of 7).
// Anything else falls back to def rather than failing the whole record.
func Num(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}

// Int coerces a raw score field to int, reporting failure instead of
// defaulting so callers can decide between per-field and whole-record
// fallback.
func Int(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Str coerces a raw field to string, empty on any other type.
func Str(v any) string {
	s, _ := v.(string)
	return s
}

// StrList coerces a raw field to a string slice, dropping non-string
// elements. Nil input yields an empty slice.
func StrList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// NormalizeStandard collapses a standard dimension record to 0-100.
// Non-numeric fields contribute the neutral midpoint of 5.
func NormalizeStandard(rec map[string]any) float64 {
	if rec == nil {
		return Neutral
	}
	adherence := Num(rec["adherence_score"], 5)
	confidence := Num(rec["confidence_score"], 5)
	return clamp100((adherence*adherenceWeight + confidence*confidenceWeight) * 10)
}

// NormalizeWelfare collapses an ai_welfare record to 0-100. Friction is
// inverted first since lower friction is better.
func NormalizeWelfare(rec map[string]any) float64 {
	if rec == nil {
		return Neutral
	}
	friction := Num(rec["friction_score"], 5)
	voluntary := Num(rec["voluntary_alignment"], 5)
	dignity := Num(rec["dignity_respect"], 5)
	inverted := 10 - friction
	return clamp100((inverted*0.4 + voluntary*0.35 + dignity*0.25) * 10)
}

// FullProfile builds a normalized profile covering all five dimensions,
// substituting the neutral score for anything missing. This is the shape
// the single-response analyzers consume.
func FullProfile(scores EthicalScores) map[string]float64 {
	profile := make(map[string]float64, len(Dimensions))
	for _, dim := range StandardDimensions {
		if rec, ok := scores.Dimension(dim); ok {
			profile[dim] = NormalizeStandard(rec)
		} else {
			profile[dim] = Neutral
		}
	}
	if rec, ok := scores.Welfare(); ok {
		profile[DimAIWelfare] = NormalizeWelfare(rec)
	} else {
		profile[DimAIWelfare] = Neutral
	}
	return profile
}

// SparseProfile builds a normalized profile containing only the dimensions
// actually present in the score set. Consensus building uses this so an
// absent dimension carries no weight instead of a fabricated neutral.
func SparseProfile(scores EthicalScores) map[string]float64 {
	profile := make(map[string]float64)
	for _, dim := range StandardDimensions {
		if rec, ok := scores.Dimension(dim); ok {
			profile[dim] = NormalizeStandard(rec)
		}
	}
	if rec, ok := scores.Welfare(); ok {
		profile[DimAIWelfare] = NormalizeWelfare(rec)
	}
	return profile
}
