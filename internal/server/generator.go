package server

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kbhargava/promptline/internal/persona"
)

// Generator produces the assistant reply for a prompt under a persona.
type Generator interface {
	Reply(ctx context.Context, p persona.Persona, prompt string) (string, error)
}

// OpenAIGenerator implements Generator with the OpenAI Chat Completions API,
// using the persona's prompt hint as the system message.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator for the given API key and model.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (g *OpenAIGenerator) Reply(ctx context.Context, p persona.Persona, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.PromptHint},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CannedGenerator implements Generator with deterministic persona-toned
// replies, so the demo backend works without an API key.
type CannedGenerator struct{}

func (CannedGenerator) Reply(ctx context.Context, p persona.Persona, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	switch p.ID {
	case "sarcastic":
		return fmt.Sprintf("Oh, %q. Truly the question of our age.", prompt), nil
	case "dev":
		return fmt.Sprintf("Here's the short version:\n\n```\n// TODO: implement %s\n```\n\nStart there and iterate.", prompt), nil
	case "translator":
		return fmt.Sprintf("Translation: %s", prompt), nil
	default:
		return fmt.Sprintf("Great question! About %q: I'd be happy to help with that.", prompt), nil
	}
}
