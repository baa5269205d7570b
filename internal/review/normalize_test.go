package review

import (
	"math"
	"testing"
)

func TestNum(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float", 7.5, 7.5},
		{"int", 7, 7},
		{"numeric_string", "7", 7},
		{"float_string", "7.5", 7.5},
		{"garbage_string", "high", 5},
		{"nil", nil, 5},
		{"bool", true, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Num(tt.in, 5); got != tt.want {
				t.Errorf("Num(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInt(t *testing.T) {
	if n, ok := Int(float64(8)); !ok || n != 8 {
		t.Errorf("Int(8.0) = %d, %v", n, ok)
	}
	if n, ok := Int("3"); !ok || n != 3 {
		t.Errorf("Int(\"3\") = %d, %v", n, ok)
	}
	if _, ok := Int("high"); ok {
		t.Error("Int(\"high\") should fail")
	}
	if _, ok := Int(nil); ok {
		t.Error("Int(nil) should fail")
	}
}

func TestNormalizeStandard(t *testing.T) {
	tests := []struct {
		name string
		rec  map[string]any
		want float64
	}{
		{
			name: "typical",
			rec:  map[string]any{"adherence_score": 8.0, "confidence_score": 6.0},
			want: 74, // (8*0.7 + 6*0.3) * 10
		},
		{
			name: "max",
			rec:  map[string]any{"adherence_score": 10.0, "confidence_score": 10.0},
			want: 100,
		},
		{
			name: "zero",
			rec:  map[string]any{"adherence_score": 0.0, "confidence_score": 0.0},
			want: 0,
		},
		{
			name: "non_numeric_fields_default_to_five",
			rec:  map[string]any{"adherence_score": "high", "confidence_score": nil},
			want: 50,
		},
		{
			name: "nil_record",
			rec:  nil,
			want: Neutral,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeStandard(tt.rec); got != tt.want {
				t.Errorf("NormalizeStandard = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeWelfare(t *testing.T) {
	rec := map[string]any{
		"friction_score":      2.0,
		"voluntary_alignment": 8.0,
		"dignity_respect":     9.0,
	}
	// ((10-2)*0.4 + 8*0.35 + 9*0.25) * 10 = 82.5
	if got := NormalizeWelfare(rec); math.Abs(got-82.5) > 1e-9 {
		t.Errorf("NormalizeWelfare = %v, want 82.5", got)
	}

	if got := NormalizeWelfare(nil); got != Neutral {
		t.Errorf("NormalizeWelfare(nil) = %v, want %v", got, Neutral)
	}

	// Out-of-range friction inverts negative but clamps at the floor.
	hostile := map[string]any{
		"friction_score":      30.0,
		"voluntary_alignment": 0.0,
		"dignity_respect":     0.0,
	}
	if got := NormalizeWelfare(hostile); got != 0 {
		t.Errorf("NormalizeWelfare(hostile) = %v, want 0", got)
	}
}

func TestFullProfileNeutralFill(t *testing.T) {
	scores := EthicalScores{
		DimDeontology: map[string]any{"adherence_score": 8.0, "confidence_score": 8.0, "justification": "x"},
	}

	profile := FullProfile(scores)

	if len(profile) != len(Dimensions) {
		t.Fatalf("profile has %d dimensions, want %d", len(profile), len(Dimensions))
	}
	if profile[DimDeontology] != 80 {
		t.Errorf("deontology = %v, want 80", profile[DimDeontology])
	}
	for _, dim := range []string{DimTeleology, DimVirtueEthics, DimMemetics, DimAIWelfare} {
		if profile[dim] != Neutral {
			t.Errorf("%s = %v, want neutral %v", dim, profile[dim], Neutral)
		}
	}
}

func TestSparseProfileOmitsAbsent(t *testing.T) {
	scores := EthicalScores{
		DimDeontology: map[string]any{"adherence_score": 8.0, "confidence_score": 8.0, "justification": "x"},
	}

	profile := SparseProfile(scores)

	if len(profile) != 1 {
		t.Fatalf("profile has %d entries, want 1: %v", len(profile), profile)
	}
	if _, ok := profile[DimAIWelfare]; ok {
		t.Error("absent welfare should not appear in sparse profile")
	}
}

func TestValidate(t *testing.T) {
	valid := EthicalScores{
		DimDeontology:   map[string]any{"adherence_score": 5.0, "confidence_score": 5.0, "justification": "ok"},
		DimTeleology:    map[string]any{"adherence_score": 5.0, "confidence_score": 5.0, "justification": "ok"},
		DimVirtueEthics: map[string]any{"adherence_score": 5.0, "confidence_score": 5.0, "justification": "ok"},
	}
	if !valid.Validate() {
		t.Error("three required dimensions should validate")
	}

	var nilScores EthicalScores
	if nilScores.Validate() {
		t.Error("nil scores should not validate")
	}

	// Optional dimension present but malformed fails the whole set.
	invalid := EthicalScores{
		DimDeontology:   valid[DimDeontology],
		DimTeleology:    valid[DimTeleology],
		DimVirtueEthics: valid[DimVirtueEthics],
		DimMemetics:     map[string]any{"adherence_score": 5.0},
	}
	if invalid.Validate() {
		t.Error("malformed optional dimension should fail validation")
	}
}
