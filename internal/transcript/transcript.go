package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Segment is one timed span of caption text, in seconds from video start.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// DefaultMergeLength is the character threshold below which adjacent
// segments are folded together into one thought.
const DefaultMergeLength = 50

var (
	blockSplitRegex = regexp.MustCompile(`\n\s*\n`)
	timestampRegex  = regexp.MustCompile(
		`^(\d{2}:\d{2}:\d{2}[,.]\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}[,.]\d{3})`,
	)
	noiseRegex      = regexp.MustCompile(`\[.*?\]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	lineStartRegex  = regexp.MustCompile(`^\[(\d+):(\d{2})–`)
)

// ParseFile reads a subtitle file into timed segments. WebVTT files are
// detected by extension; anything else is parsed as SRT.
func ParseFile(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".vtt") {
		return ParseVTT(string(data)), nil
	}
	return Parse(string(data)), nil
}

// Parse splits SRT content into blocks and extracts one segment per
// block. The timestamp line may sit at any position inside a block;
// blocks without one, or with no text after it, are skipped.
func Parse(content string) []Segment {
	content = strings.TrimPrefix(content, "﻿")
	blocks := blockSplitRegex.Split(strings.TrimSpace(content), -1)

	var segments []Segment
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}

		textStart := -1
		var start, end float64
		for i, line := range lines {
			m := timestampRegex.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			s, err := timestampSeconds(m[1])
			if err != nil {
				break
			}
			e, err := timestampSeconds(m[2])
			if err != nil {
				break
			}
			start, end = s, e
			textStart = i + 1
			break
		}

		if textStart < 0 || textStart >= len(lines) {
			continue
		}

		text := strings.TrimSpace(strings.Join(lines[textStart:], " "))
		if text == "" {
			continue
		}

		segments = append(segments, Segment{Start: start, End: end, Text: text})
	}

	return segments
}

// timestampSeconds converts an HH:MM:SS,mmm (or HH:MM:SS.mmm) timestamp
// to float seconds.
func timestampSeconds(ts string) (float64, error) {
	ts = strings.ReplaceAll(strings.TrimSpace(ts), ",", ".")
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}

	h, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	m, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, err
	}
	s, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, err
	}

	return h*3600 + m*60 + s, nil
}

// Clean strips noise markers and duplicates for token-efficient model
// input. Bracketed annotations are removed, whitespace is collapsed,
// segments under 3 characters are dropped, and any text already seen
// earlier (case-insensitive) is skipped. This pass is lossy and must
// not feed the subtitle burn-in path; use DedupOverlapping there.
func Clean(segments []Segment) []Segment {
	cleaned := make([]Segment, 0, len(segments))
	seen := make(map[string]struct{}, len(segments))

	for _, seg := range segments {
		text := noiseRegex.ReplaceAllString(seg.Text, "")
		text = strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))

		if utf8.RuneCountInString(text) < 3 {
			continue
		}

		key := strings.ToLower(text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		cleaned = append(cleaned, Segment{Start: seg.Start, End: seg.End, Text: text})
	}

	return cleaned
}

// DedupOverlapping removes rolling-caption duplicates for the subtitle
// sync path. A segment is dropped only when it overlaps the previous
// kept segment in time and carries the same text after noise-stripping;
// the previous segment's end is extended to the union. Identical text
// at a non-overlapping time is always preserved.
func DedupOverlapping(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))

	for _, seg := range segments {
		text := noiseRegex.ReplaceAllString(seg.Text, "")
		text = strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
		if text == "" {
			continue
		}

		if len(out) > 0 {
			prev := &out[len(out)-1]
			if seg.Start < prev.End && strings.EqualFold(text, prev.Text) {
				if seg.End > prev.End {
					prev.End = seg.End
				}
				continue
			}
		}

		out = append(out, Segment{Start: seg.Start, End: seg.End, Text: text})
	}

	return out
}

// Merge folds short adjacent segments into longer, complete thoughts.
// It first collapses the rolling-window artifact of auto captions,
// where segment N+1 repeats segment N's text plus a few new words; in
// that case segment N+1's text and end time replace segment N's rather
// than concatenating. Remaining segments are folded together while the
// accumulated text is under minLength characters, and a trailing
// segment under 20 characters is folded into its predecessor.
func Merge(segments []Segment, minLength int) []Segment {
	if len(segments) == 0 {
		return nil
	}

	deduped := []Segment{segments[0]}
	for _, seg := range segments[1:] {
		prev := &deduped[len(deduped)-1]
		prevRunes := []rune(prev.Text)

		if len(prevRunes) > 10 &&
			strings.HasPrefix(seg.Text, string(prevRunes[:len(prevRunes)/2])) {
			prev.End = seg.End
			prev.Text = seg.Text
			continue
		}

		deduped = append(deduped, seg)
	}

	merged := []Segment{deduped[0]}
	for _, seg := range deduped[1:] {
		prev := &merged[len(merged)-1]

		if utf8.RuneCountInString(prev.Text) < minLength {
			prev.Text = prev.Text + " " + seg.Text
			prev.End = seg.End
		} else {
			merged = append(merged, seg)
		}
	}

	if n := len(merged); n > 1 && utf8.RuneCountInString(merged[n-1].Text) < 20 {
		merged[n-2].Text += " " + merged[n-1].Text
		merged[n-2].End = merged[n-1].End
		merged = merged[:n-1]
	}

	return merged
}

// Format renders segments as compact timestamped lines for model input:
//
//	[0:00–0:35] Dialogue text here
func Format(segments []Segment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, fmt.Sprintf(
			"[%s–%s] %s",
			secondsToMMSS(seg.Start),
			secondsToMMSS(seg.End),
			seg.Text,
		))
	}
	return strings.Join(lines, "\n")
}

// secondsToMMSS converts seconds to compact M:SS form.
func secondsToMMSS(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// LineStart extracts the starting timestamp, in seconds, from a line
// produced by Format. The second return is false when the line does
// not begin with a bracketed timestamp.
func LineStart(line string) (float64, bool) {
	m := lineStartRegex.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}

	minutes, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}

	return float64(minutes*60 + seconds), true
}

// Span returns the first start and last end of a segment sequence.
func Span(segments []Segment) (start, end float64) {
	if len(segments) == 0 {
		return 0, 0
	}
	return segments[0].Start, segments[len(segments)-1].End
}
