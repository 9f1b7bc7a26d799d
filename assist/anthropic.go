package assist

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicModel = anthropic.ModelClaude3_5HaikuLatest

// AnthropicProvider streams completions through the Claude Messages API.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicFromEnv builds a provider from ANTHROPIC_API_KEY.
func NewAnthropicFromEnv() (*AnthropicProvider, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("assist: ANTHROPIC_API_KEY not set")
	}
	return &AnthropicProvider{client: anthropic.NewClient(option.WithAPIKey(key))}, nil
}

// Name identifies this provider in the request's "provider" field.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Stream sends system+messages to Claude and emits each text delta.
func (p *AnthropicProvider) Stream(ctx context.Context, system string, messages []Message, onChunk ChunkFunc) error {
	params := anthropic.MessageNewParams{
		Model:     anthropicModel,
		MaxTokens: 2048,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  toAnthropicMessages(messages),
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	for stream.Next() {
		event := stream.Current()
		delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		text, ok := delta.Delta.AsAny().(anthropic.TextDelta)
		if !ok {
			continue
		}
		if err := onChunk(text.Text); err != nil {
			return err
		}
	}
	return stream.Err()
}

func toAnthropicMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}
