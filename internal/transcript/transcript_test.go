package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFile(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05.500 --> 00:00:08.200
This is a test.
With multiple lines.

00:00:10,000 --> 00:00:12,500
No index line.

3
00:00:14,000 --> 00:00:15,000
`
	tmpDir := t.TempDir()
	srtPath := filepath.Join(tmpDir, "test.srt")
	if err := os.WriteFile(srtPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	segments, err := ParseFile(srtPath)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}

	if segments[0].Start != 1 || segments[0].End != 4 {
		t.Errorf(
			"segment 0: expected 1-4, got %v-%v",
			segments[0].Start,
			segments[0].End,
		)
	}
	if segments[0].Text != "Hello, world!" {
		t.Errorf("segment 0: expected 'Hello, world!', got %q", segments[0].Text)
	}

	if segments[1].Start != 5.5 || segments[1].End != 8.2 {
		t.Errorf(
			"segment 1: expected 5.5-8.2, got %v-%v",
			segments[1].Start,
			segments[1].End,
		)
	}
	if segments[1].Text != "This is a test. With multiple lines." {
		t.Errorf("segment 1: multi-line text not joined, got %q", segments[1].Text)
	}

	if segments[2].Start != 10 || segments[2].Text != "No index line." {
		t.Errorf(
			"segment 2: expected start 10 with text, got %v %q",
			segments[2].Start,
			segments[2].Text,
		)
	}

	for i, seg := range segments {
		if seg.Start >= seg.End {
			t.Errorf("segment %d: start %v not before end %v", i, seg.Start, seg.End)
		}
		if strings.TrimSpace(seg.Text) == "" {
			t.Errorf("segment %d: empty text", i)
		}
	}
}

func TestParseSkipsBlocksWithoutTimestamp(t *testing.T) {
	content := "WEBVTT header junk\nno timestamps here\n\n1\n00:00:01,000 --> 00:00:02,000\nreal text\n"

	segments := Parse(content)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Text != "real text" {
		t.Errorf("expected 'real text', got %q", segments[0].Text)
	}
}

func TestClean(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 2, Text: "[Music]"},
		{Start: 2, End: 5, Text: "  hello   world  "},
		{Start: 5, End: 7, Text: "hi"},
		{Start: 7, End: 9, Text: "HELLO WORLD"},
		{Start: 9, End: 12, Text: "[Applause] something new"},
	}

	cleaned := Clean(segments)
	if len(cleaned) != 2 {
		t.Fatalf("expected 2 segments, got %d: %v", len(cleaned), cleaned)
	}

	if cleaned[0].Text != "hello world" {
		t.Errorf("expected collapsed 'hello world', got %q", cleaned[0].Text)
	}
	if cleaned[1].Text != "something new" {
		t.Errorf("expected 'something new', got %q", cleaned[1].Text)
	}

	for i, seg := range cleaned {
		if len([]rune(seg.Text)) < 3 {
			t.Errorf("segment %d: text shorter than 3 runes: %q", i, seg.Text)
		}
		if strings.Contains(seg.Text, "[") {
			t.Errorf("segment %d: bracket noise survived: %q", i, seg.Text)
		}
	}
}

func TestDedupOverlapping(t *testing.T) {
	tests := []struct {
		name string
		in   []Segment
		want []Segment
	}{
		{
			name: "overlapping duplicates merge",
			in: []Segment{
				{Start: 0, End: 3, Text: "hi"},
				{Start: 2, End: 5, Text: "hi"},
			},
			want: []Segment{
				{Start: 0, End: 5, Text: "hi"},
			},
		},
		{
			name: "distant duplicates preserved",
			in: []Segment{
				{Start: 0, End: 3, Text: "hi"},
				{Start: 50, End: 53, Text: "hi"},
			},
			want: []Segment{
				{Start: 0, End: 3, Text: "hi"},
				{Start: 50, End: 53, Text: "hi"},
			},
		},
		{
			name: "case-insensitive match",
			in: []Segment{
				{Start: 0, End: 3, Text: "Hi There"},
				{Start: 2, End: 5, Text: "hi there"},
			},
			want: []Segment{
				{Start: 0, End: 5, Text: "Hi There"},
			},
		},
		{
			name: "different text kept despite overlap",
			in: []Segment{
				{Start: 0, End: 3, Text: "hi"},
				{Start: 2, End: 5, Text: "bye"},
			},
			want: []Segment{
				{Start: 0, End: 3, Text: "hi"},
				{Start: 2, End: 5, Text: "bye"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupOverlapping(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d segments, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMergeOverlapCollapse(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 2, Text: "[Music]"},
		{Start: 2, End: 5, Text: "hello world"},
		{Start: 5, End: 9, Text: "hello world this is a test"},
	}

	merged := Merge(Clean(segments), DefaultMergeLength)
	if len(merged) != 1 {
		t.Fatalf("expected 1 segment, got %d: %v", len(merged), merged)
	}

	got := merged[0]
	if got.Start != 2 || got.End != 9 {
		t.Errorf("expected span 2-9, got %v-%v", got.Start, got.End)
	}
	if got.Text != "hello world this is a test" {
		t.Errorf("expected collapsed text, got %q", got.Text)
	}
}

func TestMergeShortSegments(t *testing.T) {
	long1 := "this opening line is quite long and easily stands on its own"
	long2 := "another very long stretch of dialogue standing well past the fold"

	segments := []Segment{
		{Start: 0, End: 4, Text: long1},
		{Start: 4, End: 6, Text: "short a"},
		{Start: 6, End: 8, Text: "short b"},
		{Start: 8, End: 12, Text: long2},
		{Start: 12, End: 13, Text: "tail"},
	}

	merged := Merge(segments, DefaultMergeLength)
	if len(merged) != 2 {
		t.Fatalf("expected 2 segments, got %d: %v", len(merged), merged)
	}

	if merged[0].Text != long1 {
		t.Errorf("long segment should stand alone, got %q", merged[0].Text)
	}

	want := "short a short b " + long2 + " tail"
	if merged[1].Text != want {
		t.Errorf("folded text: got %q, want %q", merged[1].Text, want)
	}
	if merged[1].Start != 4 || merged[1].End != 13 {
		t.Errorf(
			"folded span: expected 4-13, got %v-%v",
			merged[1].Start,
			merged[1].End,
		)
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil, DefaultMergeLength); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestFormat(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 35, Text: "Dialogue text here"},
		{Start: 65.4, End: 128.9, Text: "More dialogue"},
	}

	got := Format(segments)
	want := "[0:00–0:35] Dialogue text here\n[1:05–2:08] More dialogue"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatLineStartRoundTrip(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 35, Text: "one"},
		{Start: 422, End: 431, Text: "two"},
		{Start: 3599, End: 3605, Text: "three"},
	}

	lines := strings.Split(Format(segments), "\n")
	if len(lines) != len(segments) {
		t.Fatalf("expected %d lines, got %d", len(segments), len(lines))
	}

	for i, line := range lines {
		start, ok := LineStart(line)
		if !ok {
			t.Fatalf("line %d: no timestamp recovered from %q", i, line)
		}
		want := float64(int(segments[i].Start))
		if start != want {
			t.Errorf("line %d: got start %v, want %v", i, start, want)
		}
	}
}

func TestLineStartRejectsPlainText(t *testing.T) {
	if _, ok := LineStart("no timestamp here"); ok {
		t.Error("expected no timestamp for plain text line")
	}
}

func TestSpan(t *testing.T) {
	segments := []Segment{
		{Start: 3, End: 8, Text: "a"},
		{Start: 8, End: 21, Text: "b"},
	}

	start, end := Span(segments)
	if start != 3 || end != 21 {
		t.Errorf("expected 3-21, got %v-%v", start, end)
	}

	start, end = Span(nil)
	if start != 0 || end != 0 {
		t.Errorf("expected 0-0 for empty input, got %v-%v", start, end)
	}
}
