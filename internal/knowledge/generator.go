package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/suedenergie/knowledge-backend/internal/apperrors"
)

// SystemInstruction is the fixed persona sent with every generation request.
const SystemInstruction = "Du bist die interne KI der Südenergie Photovoltaik GmbH. " +
	"Antworte professionell und nutze bevorzugt das bereitgestellte Firmenwissen. " +
	"Wenn die Antwort nicht im Firmenwissen enthalten ist, sage das offen."

// PlaceholderAnswer is returned in degraded mode instead of a generated answer.
const PlaceholderAnswer = "Der KI-Assistent ist noch nicht konfiguriert. " +
	"Bitte hinterlegen Sie einen API-Schlüssel für den Sprachmodell-Anbieter."

// Generator produces an answer from a question and the assembled context.
type Generator interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
	Ready() bool
}

// PlaceholderGenerator is the degraded-mode variant used when no provider key
// is configured. It never fails and never fabricates an answer.
type PlaceholderGenerator struct{}

func (p *PlaceholderGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	return PlaceholderAnswer, nil
}

func (p *PlaceholderGenerator) Ready() bool {
	return false
}

// OpenAIGenerator calls the OpenAI chat completions API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator selects the configured or the degraded variant once at
// construction time: a blank API key yields a PlaceholderGenerator.
func NewOpenAIGenerator(apiKey, model string) Generator {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &PlaceholderGenerator{}
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	userMessage := fmt.Sprintf("Frage: %s\n\nFirmenwissen:\n%s", question, contextText)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		return "", apperrors.GenerationProvider(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.GenerationProvider(errors.New("completion response empty"))
	}

	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) Ready() bool {
	return g.client != nil
}
