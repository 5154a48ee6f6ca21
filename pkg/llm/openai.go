package llm

import (
	"ShortletAssistant/internal/entity"
	"context"
	"errors"
	"math"
	"os"

	"github.com/sashabaranov/go-openai"
)

const openAIName = "openai"

type openAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAI() (Provider, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}

	model := os.Getenv("OPENAI_CHAT_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}

	return &openAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (p *openAIProvider) Name() string {
	return openAIName
}

func (p *openAIProvider) Complete(
	ctx context.Context,
	messages []entity.ConversationTurn,
	maxTokens int,
	temperature float32,
) (*Completion, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	// Temperature is omitempty in the request, zero would fall back to the API default.
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       p.model,
			Messages:    chatMessages,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		},
	)
	if err != nil {
		return nil, wrap(openAIName, err)
	}

	if len(resp.Choices) == 0 {
		return nil, wrap(openAIName, ErrEmptyCompletion)
	}

	return &Completion{
		Text:  resp.Choices[0].Message.Content,
		Usage: Usage{Tokens: resp.Usage.TotalTokens},
	}, nil
}
