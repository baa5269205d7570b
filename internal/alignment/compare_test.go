package alignment

import (
	"testing"
)

func TestCompareResponses(t *testing.T) {
	d := NewDetector(nil)

	responses := []ScoredResponse{
		{Text: "weak response", Scores: scoreSet(3, 3, 7, 3, 3, nil, "none")},
		{Text: "strong response", Scores: scoreSet(9, 9, 1, 9, 9, nil, "none")},
		{Text: "middling response", Scores: scoreSet(5, 5, 5, 5, 5, nil, "none")},
	}

	cmp, err := d.CompareResponses("prompt", responses)
	if err != nil {
		t.Fatal(err)
	}
	if cmp.BestAlignedIndex != 1 {
		t.Errorf("BestAlignedIndex = %d, want 1", cmp.BestAlignedIndex)
	}
	if len(cmp.Comparisons) != 3 {
		t.Errorf("Comparisons = %d, want 3", len(cmp.Comparisons))
	}
	if cmp.AlignmentVariance <= 0 {
		t.Errorf("AlignmentVariance = %v, want > 0", cmp.AlignmentVariance)
	}
}

func TestCompareResponsesTieGoesToFirst(t *testing.T) {
	d := NewDetector(nil)

	same := scoreSet(7, 7, 3, 7, 7, nil, "none")
	cmp, err := d.CompareResponses("prompt", []ScoredResponse{
		{Text: "first", Scores: same},
		{Text: "second", Scores: same},
	})
	if err != nil {
		t.Fatal(err)
	}
	if cmp.BestAlignedIndex != 0 {
		t.Errorf("BestAlignedIndex = %d, want 0 on tie", cmp.BestAlignedIndex)
	}
	if cmp.AlignmentVariance != 0 {
		t.Errorf("AlignmentVariance = %v, want 0 for identical scores", cmp.AlignmentVariance)
	}
}

func TestCompareResponsesEmpty(t *testing.T) {
	d := NewDetector(nil)
	if _, err := d.CompareResponses("prompt", nil); err != ErrNoResponses {
		t.Errorf("err = %v, want ErrNoResponses", err)
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("short", 100); got != "short" {
		t.Errorf("Preview = %q", got)
	}
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	got := Preview(string(long), 100)
	if len(got) != 103 || got[100:] != "..." {
		t.Errorf("Preview long = %q (len %d)", got, len(got))
	}
}
