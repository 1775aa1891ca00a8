package proposal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mgpai22/reelcut/internal/llm"
	"github.com/mgpai22/reelcut/internal/logging"
)

// Span is one contiguous source time window, in seconds.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Clip is one proposed short: a title, the opening hook line, and the
// source spans to stitch together.
type Clip struct {
	Title    string `json:"title"`
	Hook     string `json:"hook"`
	Segments []Span `json:"segments"`
}

// Duration returns the summed length of all spans.
func (c Clip) Duration() float64 {
	var total float64
	for _, s := range c.Segments {
		total += s.End - s.Start
	}
	return total
}

const (
	proposalTemperature = 0.2
	proposalMaxTokens   = 4096
)

type Options struct {
	ChunkMinutes        float64 // transcript minutes per model call (default 7)
	MinLastChunkMinutes float64 // trailing chunk below this merges back (default 2.5)
	MaxRetries          int     // attempts per chunk (default 3)
}

// Engine turns a formatted transcript into clip proposals via a
// language model.
type Engine struct {
	client llm.Client
	log    *logging.Logger
	opts   Options
}

func NewEngine(client llm.Client, log *logging.Logger, opts Options) *Engine {
	if opts.ChunkMinutes <= 0 {
		opts.ChunkMinutes = 7
	}
	if opts.MinLastChunkMinutes <= 0 {
		opts.MinLastChunkMinutes = 2.5
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}

	return &Engine{client: client, log: log, opts: opts}
}

// ProposeAll chunks the transcript and submits each chunk to the model,
// concatenating the returned clips. A chunk that still fails after all
// retries aborts the whole stage: partial coverage would silently
// under-represent the video.
func (e *Engine) ProposeAll(
	ctx context.Context,
	formattedTranscript string,
	lang string,
) ([]Clip, error) {
	chunks := ChunkTranscript(
		formattedTranscript,
		e.opts.ChunkMinutes,
		e.opts.MinLastChunkMinutes,
	)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("transcript is empty")
	}

	langLabel := "English"
	if strings.HasPrefix(strings.ToLower(lang), "hi") {
		langLabel = "Hinglish"
	}
	e.log.Infof(
		"Sending %d transcript chunk(s) for clip proposals (titles in %s)",
		len(chunks),
		langLabel,
	)

	var all []Clip
	for i, chunk := range chunks {
		clips, err := e.proposeChunk(ctx, chunk, i, len(chunks), lang)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}

		e.log.Infof("Got %d clip(s) from chunk %d/%d", len(clips), i+1, len(chunks))
		all = append(all, clips...)
	}

	return all, nil
}

// proposeChunk submits one chunk, retrying transport failures and
// undecodable responses with exponential backoff. A decodable response
// containing zero usable clips is a success, not a retry.
func (e *Engine) proposeChunk(
	ctx context.Context,
	chunk string,
	index, total int,
	lang string,
) ([]Clip, error) {
	req := llm.Request{
		System:      BuildSystemPrompt(lang),
		Priming:     PrimingAck,
		User:        BuildUserPrompt(chunk, index, total),
		Temperature: proposalTemperature,
		MaxTokens:   proposalMaxTokens,
		JSONOnly:    true,
	}

	backoff := retry.WithMaxRetries(
		uint64(e.opts.MaxRetries-1),
		retry.NewExponential(2*time.Second),
	)

	var clips []Clip
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		raw, err := e.client.Complete(ctx, req)
		if err != nil {
			e.log.Warnf("Model call failed, retrying: %v", err)
			return retry.RetryableError(err)
		}

		jsonText, ok := ExtractJSON(raw)
		if !ok {
			e.log.Warnf("No JSON found in model response (%d chars), retrying", len(raw))
			return retry.RetryableError(
				fmt.Errorf("could not extract JSON from model response"),
			)
		}

		decoded, err := DecodeClips(jsonText)
		if err != nil {
			e.log.Warnf("Undecodable model response, retrying: %v", err)
			return retry.RetryableError(err)
		}

		clips = decoded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf(
			"no usable model response after %d attempts: %w",
			e.opts.MaxRetries,
			err,
		)
	}

	for _, c := range clips {
		e.log.Debugf(
			"Proposed %q (%d segment(s), %.0fs)",
			c.Title,
			len(c.Segments),
			c.Duration(),
		)
	}

	return clips, nil
}
