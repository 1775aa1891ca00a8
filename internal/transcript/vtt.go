package transcript

import (
	"bufio"
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	vttTimestampRegex = regexp.MustCompile(
		`(?:(\d{2,}):)?(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(?:(\d{2,}):)?(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttTagRegex = regexp.MustCompile(`<[^>]*>`)
)

// ParseVTT parses WebVTT content into timed segments. Cue identifiers,
// NOTE, STYLE and REGION blocks are skipped, and inline cue markup such
// as <c> classes and per-word timestamps is stripped from the text.
func ParseVTT(content string) []Segment {
	content = strings.TrimPrefix(content, "﻿")

	var (
		segments []Segment
		current  *Segment
		texts    []string
	)
	// a cue is finalized only once it has text: auto captions pad cues
	// with whitespace-only lines before the payload, and those must not
	// end the cue early
	flush := func() {
		if current == nil || len(texts) == 0 {
			return
		}
		current.Text = strings.Join(texts, " ")
		segments = append(segments, *current)
		current = nil
		texts = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	skipBlock := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if skipBlock {
			if line == "" {
				skipBlock = false
			}
			continue
		}
		if strings.HasPrefix(line, "WEBVTT") {
			continue
		}
		if strings.HasPrefix(line, "NOTE") || strings.HasPrefix(line, "STYLE") ||
			strings.HasPrefix(line, "REGION") {
			skipBlock = true
			continue
		}
		if line == "" {
			flush()
			continue
		}

		if m := vttTimestampRegex.FindStringSubmatch(line); m != nil {
			flush()
			current = &Segment{
				Start: vttSeconds(m[1], m[2], m[3], m[4]),
				End:   vttSeconds(m[5], m[6], m[7], m[8]),
			}
			continue
		}

		if current != nil {
			// cue text escapes markup characters as HTML entities
			text := html.UnescapeString(vttTagRegex.ReplaceAllString(line, ""))
			if text = strings.TrimSpace(text); text != "" {
				texts = append(texts, text)
			}
		}
	}
	flush()

	return segments
}

// vttSeconds converts matched timestamp groups to float seconds. The
// hours group is empty in the short MM:SS.mmm form.
func vttSeconds(hours, minutes, seconds, millis string) float64 {
	var h float64
	if hours != "" {
		h, _ = strconv.ParseFloat(hours, 64)
	}
	m, _ := strconv.ParseFloat(minutes, 64)
	s, _ := strconv.ParseFloat(seconds, 64)
	ms, _ := strconv.ParseFloat(millis, 64)
	return h*3600 + m*60 + s + ms/1000
}
