// Package align snaps original caption text onto word timings recognized
// from the matching audio. The original wording, punctuation and casing
// win; recognition only contributes the clock.
package align

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/mgpai22/reelcut/internal/logging"
	"github.com/mgpai22/reelcut/internal/stt"
)

// Word is one caption word pinned to a time span, in seconds relative to
// the start of the clip window.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// marks a word the recognizer missed until the interpolation pass runs
const missingMark = -1

var nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Aligner times caption text using a speech recognition engine.
type Aligner struct {
	engine stt.Engine
	log    *logging.Logger
}

func New(engine stt.Engine, log *logging.Logger) *Aligner {
	return &Aligner{engine: engine, log: log}
}

// Align returns one timed word per word of originalText for the audio at
// audioPath. Recognition failures degrade to proportional spacing instead
// of returning an error.
func (a *Aligner) Align(ctx context.Context, audioPath, originalText string, duration float64) []Word {
	recognized, err := a.engine.TranscribeWords(ctx, audioPath)
	if err != nil {
		a.log.Warnf("Word recognition failed (%v). Falling back to proportional spacing.", err)
		return ProportionalSpacing(originalText, duration)
	}
	return AlignWords(recognized, originalText, duration)
}

// AlignWords maps the words of originalText onto recognized word timings.
// Words are matched on a normalized form so punctuation and casing from
// the original text survive into the output. Matched and replaced runs
// share the recognized block's time span evenly; words the recognizer
// missed are squeezed into the surrounding gap in a second pass. With no
// usable recognized words the result is proportional spacing.
func AlignWords(recognized []stt.Word, originalText string, duration float64) []Word {
	type timedWord struct {
		text  string
		start float64
		end   float64
	}

	var recWords []timedWord
	var seqRec []string
	for _, w := range recognized {
		clean := normalizeWord(w.Text)
		if clean == "" {
			continue
		}
		recWords = append(recWords, timedWord{
			text:  strings.TrimSpace(w.Text),
			start: w.Start,
			end:   w.End,
		})
		seqRec = append(seqRec, clean)
	}
	if len(recWords) == 0 {
		return ProportionalSpacing(originalText, duration)
	}

	originalWords := strings.Fields(originalText)
	seqOrig := make([]string, len(originalWords))
	for i, w := range originalWords {
		seqOrig[i] = normalizeWord(w)
	}

	var synced []Word
	for _, op := range opcodes(seqRec, seqOrig) {
		switch op.tag {
		case tagEqual, tagReplace:
			rBlock := recWords[op.i1:op.i2]
			oBlock := originalWords[op.j1:op.j2]
			if len(rBlock) == 0 || len(oBlock) == 0 {
				continue
			}

			blockStart := rBlock[0].start
			blockEnd := rBlock[len(rBlock)-1].end
			timePerWord := (blockEnd - blockStart) / float64(len(oBlock))

			t := blockStart
			for _, text := range oBlock {
				synced = append(synced, Word{Text: text, Start: t, End: t + timePerWord})
				t += timePerWord
			}
		case tagInsert:
			// present in the captions but the recognizer missed it entirely
			for _, text := range originalWords[op.j1:op.j2] {
				synced = append(synced, Word{Text: text, Start: missingMark, End: missingMark})
			}
		}
	}

	// interpolate the missing words into whatever gap surrounds them
	for i := range synced {
		if synced[i].Start != missingMark {
			continue
		}

		prevEnd := 0.0
		if i > 0 {
			prevEnd = synced[i-1].End
		}
		nextStart := duration
		for j := i + 1; j < len(synced); j++ {
			if synced[j].Start != missingMark {
				nextStart = synced[j].Start
				break
			}
		}

		synced[i].Start = prevEnd
		synced[i].End = math.Min(prevEnd+0.2, nextStart)
	}

	return synced
}

// ProportionalSpacing spreads the words of text evenly across duration.
func ProportionalSpacing(text string, duration float64) []Word {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	perWord := duration / float64(len(words))
	out := make([]Word, 0, len(words))
	t := 0.0
	for _, w := range words {
		out = append(out, Word{Text: w, Start: t, End: t + perWord})
		t += perWord
	}
	return out
}

// normalizeWord lowers a word and strips everything except letters,
// digits and underscores so both sides of the match compare cleanly.
func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimSpace(nonWordRegex.ReplaceAllString(w, "")))
}
