package textsplit

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"short word counts as one", "hi", 1},
		{"exact multiple", "abcdefgh", 2},
		{"long text", strings.Repeat("a", 400), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.text); got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestSplitSingleWindow(t *testing.T) {
	text := "Users want faster checkout and value simplicity."

	pieces, err := Split(text, 100, 20)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(pieces) != 1 {
		t.Fatalf("pieces = %d, want 1", len(pieces))
	}
	if pieces[0].Text != text {
		t.Errorf("single piece must carry the full text, got %q", pieces[0].Text)
	}
	if pieces[0].Index != 0 || pieces[0].TokenStart != 0 {
		t.Errorf("single piece span = (%d, %d), want start at 0", pieces[0].Index, pieces[0].TokenStart)
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("The participant described waiting in line as the worst part of shopping. ", 80)

	first, err := Split(text, 50, 10)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	second, err := Split(text, 50, 10)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("piece counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("piece %d differs between runs", i)
		}
	}
	if len(first) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(first))
	}
}

func TestSplitOverlapCarriesTail(t *testing.T) {
	// No sentence boundaries, so windows cut at exact token positions and the
	// overlap region is shared verbatim between adjacent pieces.
	text := strings.Repeat("abcd", 500)
	overlapTokens := 10

	pieces, err := Split(text, 50, overlapTokens)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}

	overlapChars := overlapTokens * 4
	for i := 0; i < len(pieces)-1; i++ {
		tail := pieces[i].Text[len(pieces[i].Text)-overlapChars:]
		head := pieces[i+1].Text[:overlapChars]
		if tail != head {
			t.Errorf("piece %d tail does not match piece %d head", i, i+1)
		}
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	// One sentence ending inside the last 20% of the first window.
	sentence := strings.Repeat("x", 190) + ". "
	text := sentence + strings.Repeat("y", 400)

	pieces, err := Split(text, 50, 0)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}
	if !strings.HasSuffix(pieces[0].Text, ".") {
		t.Errorf("first piece should end at the sentence boundary, got tail %q", pieces[0].Text[len(pieces[0].Text)-5:])
	}
}

func TestSplitInvalidEncoding(t *testing.T) {
	_, err := Split(string([]byte{0xff, 0xfe, 0xfd}), 100, 10)
	if err != ErrInvalidEncoding {
		t.Errorf("err = %v, want ErrInvalidEncoding", err)
	}
}

func TestSplitEmpty(t *testing.T) {
	pieces, err := Split("", 100, 10)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(pieces) != 0 {
		t.Errorf("empty text should yield no pieces, got %d", len(pieces))
	}
}

func TestSplitProgressWithExcessiveOverlap(t *testing.T) {
	// Overlap larger than the window must still terminate.
	text := strings.Repeat("z", 2000)

	pieces, err := Split(text, 10, 50)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(pieces) == 0 {
		t.Fatal("expected pieces")
	}
	last := pieces[len(pieces)-1]
	if !strings.HasSuffix(text, last.Text) {
		t.Error("final piece must reach the end of the text")
	}
}
