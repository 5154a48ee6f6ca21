package llm

import (
	"ShortletAssistant/internal/entity"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiName = "gemini"

type geminiProvider struct {
	modelName string
	client    *genai.Client
}

func NewGemini() (Provider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiProvider{
		modelName: modelName,
		client:    client,
	}, nil
}

func (g *geminiProvider) Name() string {
	return geminiName
}

func (g *geminiProvider) Complete(
	ctx context.Context,
	messages []entity.ConversationTurn,
	maxTokens int,
	temperature float32,
) (*Completion, error) {
	system, dialogue := splitSystem(messages)
	if len(dialogue) == 0 || dialogue[len(dialogue)-1].Role != entity.RoleUser {
		return nil, wrap(geminiName, errors.New("last message must come from the user"))
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(maxTokens))
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	chat := model.StartChat()
	for _, msg := range dialogue[:len(dialogue)-1] {
		role := "user"
		if msg.Role == entity.RoleAssistant {
			role = "model"
		}
		chat.History = append(chat.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := chat.SendMessage(ctx, genai.Text(dialogue[len(dialogue)-1].Content))
	if err != nil {
		return nil, wrap(geminiName, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, wrap(geminiName, ErrEmptyCompletion)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return nil, wrap(geminiName, ErrEmptyCompletion)
	}

	completion := &Completion{Text: text.String()}
	if resp.UsageMetadata != nil {
		completion.Usage.Tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return completion, nil
}

func (g *geminiProvider) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
