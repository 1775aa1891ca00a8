// Package karaoke groups timed caption words into subtitle display
// entries and renders them as an ASS karaoke track.
package karaoke

import (
	"math"
	"sort"
	"strings"

	"github.com/mgpai22/reelcut/internal/align"
)

const (
	// CanvasWidth and CanvasHeight describe the vertical render canvas.
	CanvasWidth  = 1080
	CanvasHeight = 1920

	// DefaultMaxWords caps words per entry so a line never wraps.
	DefaultMaxWords = 4

	// DefaultMinDisplaySeconds keeps fast speech on screen long enough
	// to read.
	DefaultMinDisplaySeconds = 0.9

	// vertical margin from the bottom edge of the canvas
	marginV = 300

	// entries shorter than this after the non-overlap cap are dropped
	minEntrySeconds = 0.1

	// floor on a single word's highlight duration
	minWordSeconds = 0.01
)

// WordTiming is one word's highlight duration within an entry.
type WordTiming struct {
	Word     string
	Duration float64
}

// Entry is one displayed subtitle line. Entries are non-overlapping and
// sorted by start time.
type Entry struct {
	Start       float64
	End         float64
	Text        string
	WordTimings []WordTiming
}

// Options tune how words group into entries. Zero values select the
// defaults.
type Options struct {
	MaxWords          int
	MinDisplaySeconds float64
}

// Plan groups a chronological word sequence into non-overlapping subtitle
// entries. timeOffset shifts every entry forward, used when a clip is
// assembled from several concatenated segments and the words of a later
// segment are timed relative to that segment's own start.
func Plan(words []align.Word, timeOffset float64, opts Options) []Entry {
	if opts.MaxWords <= 0 {
		opts.MaxWords = DefaultMaxWords
	}
	if opts.MinDisplaySeconds <= 0 {
		opts.MinDisplaySeconds = DefaultMinDisplaySeconds
	}
	if len(words) == 0 {
		return nil
	}

	var raw []Entry
	for i := 0; i < len(words); i += opts.MaxWords {
		hi := i + opts.MaxWords
		if hi > len(words) {
			hi = len(words)
		}
		chunk := words[i:hi]

		start := chunk[0].Start + timeOffset
		end := chunk[len(chunk)-1].End + timeOffset
		end = start + math.Max(end-start, opts.MinDisplaySeconds)

		texts := make([]string, len(chunk))
		timings := make([]WordTiming, len(chunk))
		for j, w := range chunk {
			texts[j] = w.Text
			timings[j] = WordTiming{
				Word:     w.Text,
				Duration: math.Max(minWordSeconds, w.End-w.Start),
			}
		}

		raw = append(raw, Entry{
			Start:       start,
			End:         end,
			Text:        strings.Join(texts, " "),
			WordTimings: timings,
		})
	}

	sort.SliceStable(raw, func(a, b int) bool { return raw[a].Start < raw[b].Start })

	// cap each entry at the next entry's start, dropping anything the
	// cap collapses
	result := make([]Entry, 0, len(raw))
	for i, entry := range raw {
		end := entry.End
		if i+1 < len(raw) {
			end = math.Min(end, raw[i+1].Start)
		}
		if end-entry.Start < minEntrySeconds {
			continue
		}
		entry.End = end
		result = append(result, entry)
	}
	return result
}
