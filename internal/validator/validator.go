package validator

import (
	"math"
	"sort"

	"github.com/mgpai22/reelcut/internal/proposal"
)

// Validated is a clip that passed every timing check, with derived
// convenience fields. Start and End are the first segment's start and
// the last segment's end; Duration is the summed span length.
type Validated struct {
	Title    string
	Hook     string
	Segments []proposal.Span
	Duration float64
	Start    float64
	End      float64
}

// Limits are the configured total-duration bounds for one clip.
type Limits struct {
	MinClipDuration float64 // default 15
	MaxClipDuration float64 // default 150
}

const (
	// minSegmentSeconds is the absolute per-segment floor, independent
	// of the configured clip bounds.
	minSegmentSeconds = 5

	// videoToleranceSeconds allows a segment to run slightly past the
	// probed video duration, which auto captions routinely do.
	videoToleranceSeconds = 1

	// transcriptToleranceSeconds allows a segment to sit slightly
	// outside the transcript's covered range.
	transcriptToleranceSeconds = 2
)

// Validate filters proposed clips down to a sorted, non-overlapping
// set. A failing segment drops its whole clip. Surviving clips are
// ordered by first-segment start and accepted greedily: a clip whose
// segments intersect any already-accepted segment is rejected outright.
// Earlier-starting clips win ties; ties between equal starts keep
// proposal order.
func Validate(
	clips []proposal.Clip,
	limits Limits,
	videoDuration, transcriptStart, transcriptEnd float64,
) []Validated {
	if limits.MinClipDuration <= 0 {
		limits.MinClipDuration = 15
	}
	if limits.MaxClipDuration <= 0 {
		limits.MaxClipDuration = 150
	}

	valid := make([]Validated, 0, len(clips))

	for _, clip := range clips {
		if len(clip.Segments) == 0 {
			continue
		}

		segments := make([]proposal.Span, 0, len(clip.Segments))
		skip := false

		for _, seg := range clip.Segments {
			if seg.Start < 0 || seg.End < 0 || seg.Start >= seg.End {
				skip = true
				break
			}
			if seg.End-seg.Start < minSegmentSeconds {
				skip = true
				break
			}
			if seg.End > videoDuration+videoToleranceSeconds {
				skip = true
				break
			}
			if seg.Start < transcriptStart-transcriptToleranceSeconds ||
				seg.End > transcriptEnd+transcriptToleranceSeconds {
				skip = true
				break
			}

			segments = append(segments, proposal.Span{
				Start: round2(seg.Start),
				End:   round2(seg.End),
			})
		}

		if skip || len(segments) == 0 {
			continue
		}

		sort.SliceStable(segments, func(i, j int) bool {
			return segments[i].Start < segments[j].Start
		})

		var total float64
		for _, seg := range segments {
			total += seg.End - seg.Start
		}
		if total < limits.MinClipDuration || total > limits.MaxClipDuration {
			continue
		}

		valid = append(valid, Validated{
			Title:    clip.Title,
			Hook:     clip.Hook,
			Segments: segments,
			Duration: round2(total),
			Start:    segments[0].Start,
			End:      segments[len(segments)-1].End,
		})
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Start < valid[j].Start
	})

	accepted := make([]Validated, 0, len(valid))
	var usedRanges []proposal.Span

	for _, clip := range valid {
		overlaps := false
		for _, seg := range clip.Segments {
			for _, used := range usedRanges {
				if seg.Start < used.End && seg.End > used.Start {
					overlaps = true
					break
				}
			}
			if overlaps {
				break
			}
		}

		if overlaps {
			continue
		}

		accepted = append(accepted, clip)
		usedRanges = append(usedRanges, clip.Segments...)
	}

	return accepted
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
