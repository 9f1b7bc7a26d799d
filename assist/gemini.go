package assist

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.0-flash"

// GeminiProvider streams completions through the Gemini GenerateContent API.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiFromEnv builds a provider from GEMINI_API_KEY.
func NewGeminiFromEnv(ctx context.Context) (*GeminiProvider, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("assist: GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("assist: gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// Name identifies this provider in the request's "provider" field.
func (p *GeminiProvider) Name() string { return "gemini" }

// Stream sends system+messages to Gemini and emits each chunk's text parts.
func (p *GeminiProvider) Stream(ctx context.Context, system string, messages []Message, onChunk ChunkFunc) error {
	contents := toGeminiContents(messages)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	}

	var streamErr error
	for resp, err := range p.client.Models.GenerateContentStream(ctx, geminiModel, contents, config) {
		if err != nil {
			streamErr = err
			break
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part.Text == "" {
					continue
				}
				if err := onChunk(part.Text); err != nil {
					return err
				}
			}
		}
	}
	return streamErr
}

func toGeminiContents(messages []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}
