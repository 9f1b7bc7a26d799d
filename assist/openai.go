package assist

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openAIModel = openai.ChatModelGPT4oMini

// OpenAIProvider streams completions through the Chat Completions API.
type OpenAIProvider struct {
	client openai.Client
}

// NewOpenAIFromEnv builds a provider from OPENAI_API_KEY.
func NewOpenAIFromEnv() (*OpenAIProvider, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("assist: OPENAI_API_KEY not set")
	}
	return &OpenAIProvider{client: openai.NewClient(option.WithAPIKey(key))}, nil
}

// Name identifies this provider in the request's "provider" field.
func (p *OpenAIProvider) Name() string { return "openai" }

// Stream sends system+messages to the Chat Completions API and emits each
// delta's content as it arrives.
func (p *OpenAIProvider) Stream(ctx context.Context, system string, messages []Message, onChunk ChunkFunc) error {
	params := openai.ChatCompletionNewParams{
		Model:    openAIModel,
		Messages: toOpenAIMessages(system, messages),
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		if err := onChunk(content); err != nil {
			return err
		}
	}
	return stream.Err()
}

func toOpenAIMessages(system string, messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	out = append(out, openai.SystemMessage(system))
	for _, m := range messages {
		if m.Role == "assistant" {
			out = append(out, openai.AssistantMessage(m.Content))
		} else {
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
