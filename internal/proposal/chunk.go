package proposal

import (
	"strings"

	"github.com/mgpai22/reelcut/internal/transcript"
)

// ChunkTranscript splits a formatted transcript into time-based chunks
// of roughly chunkMinutes each, breaking on line boundaries. Lines
// without a leading timestamp are carried along with the current chunk.
// A final chunk spanning less than minLastChunkMinutes is merged into
// the previous one so the model never receives a starved tail.
func ChunkTranscript(formatted string, chunkMinutes, minLastChunkMinutes float64) []string {
	formatted = strings.TrimSpace(formatted)
	if formatted == "" {
		return nil
	}

	var (
		chunks      []string
		chunkStarts []float64
		current     []string
	)
	chunkStart := -1.0

	for _, line := range strings.Split(formatted, "\n") {
		start, ok := transcript.LineStart(line)
		if !ok {
			current = append(current, line)
			continue
		}

		if chunkStart < 0 {
			chunkStart = start
		}

		if start-chunkStart >= chunkMinutes*60 && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			chunkStarts = append(chunkStarts, chunkStart)
			current = []string{line}
			chunkStart = start
		} else {
			current = append(current, line)
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
		if chunkStart < 0 {
			chunkStart = 0
		}
		chunkStarts = append(chunkStarts, chunkStart)
	}

	if len(chunks) >= 2 {
		lastStart := chunkStarts[len(chunkStarts)-1]
		lastEnd := lastStart
		for _, line := range strings.Split(chunks[len(chunks)-1], "\n") {
			if start, ok := transcript.LineStart(line); ok {
				lastEnd = start
			}
		}

		if lastEnd-lastStart < minLastChunkMinutes*60 {
			chunks[len(chunks)-2] += "\n" + chunks[len(chunks)-1]
			chunks = chunks[:len(chunks)-1]
		}
	}

	return chunks
}
