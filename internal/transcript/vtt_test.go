package transcript

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseVTT(t *testing.T) {
	content := `WEBVTT
Kind: captions
Language: en

00:00:01.250 --> 00:00:03.500 align:start position:0%

welcome<00:00:01.800><c> back</c><00:00:02.100><c> to</c>

00:00:03.500 --> 00:00:03.750 align:start position:0%
welcome back to


00:00:03.750 --> 00:00:05.250 align:start position:0%
welcome back to
the<00:00:03.840><c> channel</c>
`

	segments := ParseVTT(content)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %v", len(segments), segments)
	}

	if segments[0].Start != 1.25 || segments[0].End != 3.5 {
		t.Errorf(
			"segment 0: expected 1.25-3.5, got %v-%v",
			segments[0].Start,
			segments[0].End,
		)
	}
	if segments[0].Text != "welcome back to" {
		t.Errorf("segment 0: cue markup not stripped, got %q", segments[0].Text)
	}

	if segments[1].Text != "welcome back to" {
		t.Errorf("segment 1: got %q", segments[1].Text)
	}

	if segments[2].Text != "welcome back to the channel" {
		t.Errorf("segment 2: multi-line text not joined, got %q", segments[2].Text)
	}
	if segments[2].Start != 3.75 || segments[2].End != 5.25 {
		t.Errorf(
			"segment 2: expected 3.75-5.25, got %v-%v",
			segments[2].Start,
			segments[2].End,
		)
	}
}

func TestParseVTTWhitespacePaddedCue(t *testing.T) {
	content := "WEBVTT\n\n" +
		"00:00:01.000 --> 00:00:02.000\n" +
		" \n" +
		"padded text\n"

	segments := ParseVTT(content)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d: %v", len(segments), segments)
	}
	if segments[0].Text != "padded text" {
		t.Errorf("padding line ended the cue early, got %q", segments[0].Text)
	}
}

func TestParseVTTShortTimestamps(t *testing.T) {
	content := "WEBVTT\n\n01:02.500 --> 01:04.000\nshort form\n"

	segments := ParseVTT(content)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Start != 62.5 || segments[0].End != 64 {
		t.Errorf(
			"expected 62.5-64, got %v-%v",
			segments[0].Start,
			segments[0].End,
		)
	}
}

func TestParseVTTSkipsMetadataBlocks(t *testing.T) {
	content := `WEBVTT

NOTE a comment
spanning two lines

STYLE
::cue { color: red }

intro
00:00:01.000 --> 00:00:02.000
actual text
`

	segments := ParseVTT(content)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d: %v", len(segments), segments)
	}
	if segments[0].Text != "actual text" {
		t.Errorf("expected 'actual text', got %q", segments[0].Text)
	}
}

func TestParseVTTDecodesEntities(t *testing.T) {
	content := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nTom &amp; Jerry &gt;&gt;\n"

	segments := ParseVTT(content)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Text != "Tom & Jerry >>" {
		t.Errorf("entities not decoded, got %q", segments[0].Text)
	}
}

func TestParseFileVTT(t *testing.T) {
	content := "\ufeffWEBVTT\n\n00:00:01.000 --> 00:00:02.000\nhello from vtt\n"

	tmpDir := t.TempDir()
	vttPath := filepath.Join(tmpDir, "video.en.vtt")
	if err := os.WriteFile(vttPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	segments, err := ParseFile(vttPath)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Text != "hello from vtt" {
		t.Errorf("expected 'hello from vtt', got %q", segments[0].Text)
	}
}
