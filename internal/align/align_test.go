package align

import (
	"math"
	"testing"

	"github.com/mgpai22/reelcut/internal/stt"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func assertWords(t *testing.T, got, want []Word) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d words, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Text != want[i].Text {
			t.Errorf("word %d text: got %q, want %q", i, got[i].Text, want[i].Text)
		}
		if !almostEqual(got[i].Start, want[i].Start) || !almostEqual(got[i].End, want[i].End) {
			t.Errorf("word %d %q timing: got [%v, %v], want [%v, %v]",
				i, want[i].Text, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
}

func TestAlignWordsExactMatch(t *testing.T) {
	recognized := []stt.Word{
		{Text: "hello", Start: 0.0, End: 0.5},
		{Text: "world", Start: 0.5, End: 1.0},
	}

	got := AlignWords(recognized, "Hello, WORLD!", 2.0)

	assertWords(t, got, []Word{
		{Text: "Hello,", Start: 0.0, End: 0.5},
		{Text: "WORLD!", Start: 0.5, End: 1.0},
	})
}

func TestAlignWordsReplacedRunUsesEnvelope(t *testing.T) {
	recognized := []stt.Word{
		{Text: "helo", Start: 1.0, End: 1.5},
		{Text: "wrld", Start: 1.5, End: 2.0},
	}

	got := AlignWords(recognized, "hello world", 3.0)

	assertWords(t, got, []Word{
		{Text: "hello", Start: 1.0, End: 1.5},
		{Text: "world", Start: 1.5, End: 2.0},
	})
}

func TestAlignWordsSubdividesUnevenRun(t *testing.T) {
	// one recognized token carries two caption words
	recognized := []stt.Word{
		{Text: "xy", Start: 0.0, End: 2.0},
	}

	got := AlignWords(recognized, "x y", 4.0)

	assertWords(t, got, []Word{
		{Text: "x", Start: 0.0, End: 1.0},
		{Text: "y", Start: 1.0, End: 2.0},
	})
}

func TestAlignWordsMissingWordSqueezedIntoGap(t *testing.T) {
	recognized := []stt.Word{
		{Text: "a", Start: 0.0, End: 1.0},
		{Text: "c", Start: 2.0, End: 3.0},
	}

	got := AlignWords(recognized, "a b c", 3.0)

	assertWords(t, got, []Word{
		{Text: "a", Start: 0.0, End: 1.0},
		{Text: "b", Start: 1.0, End: 1.2},
		{Text: "c", Start: 2.0, End: 3.0},
	})
}

func TestAlignWordsLeadingMissingWord(t *testing.T) {
	recognized := []stt.Word{
		{Text: "b", Start: 1.0, End: 2.0},
	}

	got := AlignWords(recognized, "a b", 4.0)

	assertWords(t, got, []Word{
		{Text: "a", Start: 0.0, End: 0.2},
		{Text: "b", Start: 1.0, End: 2.0},
	})
}

func TestAlignWordsTrailingMissingWordCappedByDuration(t *testing.T) {
	recognized := []stt.Word{
		{Text: "a", Start: 0.0, End: 1.0},
	}

	got := AlignWords(recognized, "a b", 5.0)

	assertWords(t, got, []Word{
		{Text: "a", Start: 0.0, End: 1.0},
		{Text: "b", Start: 1.0, End: 1.2},
	})
}

func TestAlignWordsTinyTrailingGap(t *testing.T) {
	// the squeeze cannot run past the next resolved start
	recognized := []stt.Word{
		{Text: "a", Start: 0.0, End: 1.0},
		{Text: "c", Start: 1.1, End: 2.0},
	}

	got := AlignWords(recognized, "a b c", 2.0)

	assertWords(t, got, []Word{
		{Text: "a", Start: 0.0, End: 1.0},
		{Text: "b", Start: 1.0, End: 1.1},
		{Text: "c", Start: 1.1, End: 2.0},
	})
}

func TestAlignWordsExtraRecognizedWordIgnored(t *testing.T) {
	recognized := []stt.Word{
		{Text: "a", Start: 0.0, End: 1.0},
		{Text: "um", Start: 1.0, End: 2.0},
		{Text: "b", Start: 2.0, End: 3.0},
	}

	got := AlignWords(recognized, "a b", 3.0)

	assertWords(t, got, []Word{
		{Text: "a", Start: 0.0, End: 1.0},
		{Text: "b", Start: 2.0, End: 3.0},
	})
}

func TestAlignWordsPunctuationOnlyRecognitionFallsBack(t *testing.T) {
	recognized := []stt.Word{
		{Text: "?!", Start: 0.0, End: 1.0},
	}

	got := AlignWords(recognized, "a b", 4.0)

	assertWords(t, got, []Word{
		{Text: "a", Start: 0.0, End: 2.0},
		{Text: "b", Start: 2.0, End: 4.0},
	})
}

func TestAlignWordsNoRecognitionFallsBack(t *testing.T) {
	got := AlignWords(nil, "a b c d", 4.0)

	assertWords(t, got, []Word{
		{Text: "a", Start: 0.0, End: 1.0},
		{Text: "b", Start: 1.0, End: 2.0},
		{Text: "c", Start: 2.0, End: 3.0},
		{Text: "d", Start: 3.0, End: 4.0},
	})
}

func TestAlignWordsEmptyText(t *testing.T) {
	recognized := []stt.Word{
		{Text: "a", Start: 0.0, End: 1.0},
	}

	if got := AlignWords(recognized, "", 3.0); len(got) != 0 {
		t.Errorf("expected no words for empty text, got %+v", got)
	}
}

func TestProportionalSpacing(t *testing.T) {
	got := ProportionalSpacing("a b c d", 4.0)

	assertWords(t, got, []Word{
		{Text: "a", Start: 0.0, End: 1.0},
		{Text: "b", Start: 1.0, End: 2.0},
		{Text: "c", Start: 2.0, End: 3.0},
		{Text: "d", Start: 3.0, End: 4.0},
	})

	if got := ProportionalSpacing("   ", 4.0); got != nil {
		t.Errorf("expected nil for blank text, got %+v", got)
	}
}

func TestNormalizeWord(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello,", "hello"},
		{"WORLD!", "world"},
		{"don't", "dont"},
		{"co-op", "coop"},
		{"3.5", "35"},
		{"समझ?", "समझ"},
		{"...", ""},
		{" spaced ", "spaced"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizeWord(tt.in); got != tt.want {
				t.Errorf("normalizeWord(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
