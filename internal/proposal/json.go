package proposal

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	thinkBlockRegex    = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFenceRegex     = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)```")
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON pulls a decodable JSON document out of free-form model
// output. Strategies, in priority order: a fenced code block, the first
// balanced object carrying a "clips" key, the first balanced non-empty
// array of objects, and finally the whole cleaned text. Each candidate
// passes through a light repair before the decode attempt. Returns
// false when no strategy yields valid JSON.
func ExtractJSON(text string) (string, bool) {
	text = stripThinkBlocks(text)

	if m := codeFenceRegex.FindStringSubmatch(text); m != nil {
		candidate := repairJSON(strings.TrimSpace(m[1]))
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}

	for pos := 0; pos < len(text); {
		start := strings.IndexByte(text[pos:], '{')
		if start < 0 {
			break
		}
		start += pos

		if end := balancedEnd(text, start, '{', '}'); end >= 0 {
			candidate := repairJSON(text[start : end+1])
			var obj map[string]json.RawMessage
			if json.Unmarshal([]byte(candidate), &obj) == nil {
				if _, ok := obj["clips"]; ok {
					return candidate, true
				}
			}
		}

		pos = start + 1
	}

	for pos := 0; pos < len(text); {
		start := strings.IndexByte(text[pos:], '[')
		if start < 0 {
			break
		}
		start += pos

		if end := balancedEnd(text, start, '[', ']'); end >= 0 {
			candidate := repairJSON(text[start : end+1])
			var list []json.RawMessage
			if json.Unmarshal([]byte(candidate), &list) == nil && len(list) > 0 {
				var first map[string]json.RawMessage
				if json.Unmarshal(list[0], &first) == nil {
					return candidate, true
				}
			}
		}

		pos = start + 1
	}

	repaired := repairJSON(text)
	if json.Valid([]byte(repaired)) {
		return repaired, true
	}

	return "", false
}

// stripThinkBlocks removes <think>...</think> preambles that some
// models prepend to their answer.
func stripThinkBlocks(text string) string {
	return strings.TrimSpace(thinkBlockRegex.ReplaceAllString(text, ""))
}

// repairJSON fixes common model output defects: trailing commas before
// a closing brace or bracket, and invisible Unicode artifacts.
func repairJSON(text string) string {
	text = trailingCommaRegex.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "\ufeff", "")
	text = strings.ReplaceAll(text, "\u200b", "")
	return text
}

// balancedEnd returns the index of the closing delimiter matching the
// opening one at start, or -1 when the text runs out first.
func balancedEnd(text string, start int, opening, closing byte) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case opening:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

type rawSpan struct {
	Start any `json:"start"`
	End   any `json:"end"`
}

type rawClip struct {
	Title    any             `json:"title"`
	Hook     any             `json:"hook"`
	Start    any             `json:"start"`
	End      any             `json:"end"`
	Segments json.RawMessage `json:"segments"`
}

// DecodeClips decodes extracted JSON into normalized clips. The top
// level may be an object carrying a "clips" array or a bare array of
// clips; anything else is an error so the caller can resample the
// model instead of silently producing nothing.
func DecodeClips(jsonText string) ([]Clip, error) {
	trimmed := strings.TrimSpace(jsonText)

	switch {
	case strings.HasPrefix(trimmed, "{"):
		var wrapper struct {
			Clips []rawClip `json:"clips"`
		}
		if err := json.Unmarshal([]byte(trimmed), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode clips object: %w", err)
		}
		return normalizeClips(wrapper.Clips), nil

	case strings.HasPrefix(trimmed, "["):
		var list []rawClip
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			return nil, fmt.Errorf("failed to decode clips array: %w", err)
		}
		return normalizeClips(list), nil
	}

	return nil, fmt.Errorf(
		"response JSON must be a clip list or an object containing a 'clips' array",
	)
}

// normalizeClips converts raw decoded clips into the uniform shape.
// Both the segments form and the flat single-span form are accepted;
// timestamps are coerced to floats, spans that refuse coercion are
// discarded, and a clip left without spans is dropped entirely.
func normalizeClips(raw []rawClip) []Clip {
	clips := make([]Clip, 0, len(raw))

	for _, rc := range raw {
		title := coerceString(rc.Title, "Untitled")
		hook := coerceString(rc.Hook, "")

		if len(rc.Segments) > 0 && string(rc.Segments) != "null" {
			var spans []rawSpan
			if err := json.Unmarshal(rc.Segments, &spans); err == nil {
				valid := make([]Span, 0, len(spans))
				for _, sp := range spans {
					start, okStart := coerceFloat(sp.Start)
					end, okEnd := coerceFloat(sp.End)
					if okStart && okEnd {
						valid = append(valid, Span{Start: start, End: end})
					}
				}
				if len(valid) > 0 {
					clips = append(clips, Clip{
						Title:    title,
						Hook:     hook,
						Segments: valid,
					})
				}
				continue
			}
		}

		start, okStart := coerceFloat(rc.Start)
		end, okEnd := coerceFloat(rc.End)
		if okStart && okEnd {
			clips = append(clips, Clip{
				Title:    title,
				Hook:     hook,
				Segments: []Span{{Start: start, End: end}},
			})
		}
	}

	return clips
}

func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func coerceString(v any, fallback string) string {
	switch x := v.(type) {
	case nil:
		return fallback
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
