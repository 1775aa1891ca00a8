package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// WhisperEngine implements Engine using the OpenAI audio transcription API.
type WhisperEngine struct {
	client   openai.Client
	model    string
	language string
}

// NewWhisperEngine creates a word-level transcriber. The language hint is
// optional and passed through to the API when set.
func NewWhisperEngine(apiKey, model, language string) (*WhisperEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if model == "" {
		model = "whisper-1"
	}

	return &WhisperEngine{
		client:   openai.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		language: language,
	}, nil
}

func (e *WhisperEngine) TranscribeWords(ctx context.Context, audioPath string) ([]Word, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(e.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word"},
	}
	if e.language != "" {
		params.Language = openai.String(e.language)
	}

	resp, err := e.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	return parseWordResponse(resp.RawJSON())
}

// wire shape of the verbose_json response with word granularity
type wordResponse struct {
	Text  string `json:"text"`
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
	Duration float64 `json:"duration"`
}

func parseWordResponse(rawJSON string) ([]Word, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response from transcription API")
	}

	var resp wordResponse
	if err := json.Unmarshal([]byte(rawJSON), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	words := make([]Word, 0, len(resp.Words))
	for _, w := range resp.Words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		words = append(words, Word{Text: text, Start: w.Start, End: w.End})
	}

	return words, nil
}
