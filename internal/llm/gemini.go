package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// implements Client using Google Gemini
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(
	ctx context.Context,
	apiKey string,
	model string,
) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = "gemini-3-flash-preview"
	}

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

// Complete sends the request as a primed multi-turn conversation.
// The system block goes in as the first user turn and the priming
// text as a model turn ahead of the user message.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	var contents []*genai.Content

	if req.System != "" {
		contents = append(contents, genai.NewContentFromParts(
			[]*genai.Part{genai.NewPartFromText(req.System)},
			genai.RoleUser,
		))
	}
	if req.Priming != "" {
		contents = append(contents, genai.NewContentFromParts(
			[]*genai.Part{genai.NewPartFromText(req.Priming)},
			genai.RoleModel,
		))
	}
	contents = append(contents, genai.NewContentFromParts(
		[]*genai.Part{genai.NewPartFromText(req.User)},
		genai.RoleUser,
	))

	config := &genai.GenerateContentConfig{}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONOnly {
		config.ResponseMIMEType = "application/json"
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}

	if responseText == "" {
		return "", fmt.Errorf("no text in Gemini response")
	}

	return responseText, nil
}

func (c *GeminiClient) Close() error {
	return nil
}
