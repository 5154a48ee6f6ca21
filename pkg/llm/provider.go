package llm

import (
	"ShortletAssistant/internal/entity"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

type Usage struct {
	Tokens int `json:"tokens"`
}

type Completion struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// Provider is a single text-completion call against an external language model.
// Every failure is reported as a *ProviderError.
type Provider interface {
	Complete(ctx context.Context, messages []entity.ConversationTurn, maxTokens int, temperature float32) (*Completion, error)
	Name() string
}

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func IsProviderError(err error) bool {
	var providerErr *ProviderError
	return errors.As(err, &providerErr)
}

var ErrEmptyCompletion = errors.New("no completion returned")

func wrap(provider string, err error) error {
	if err == nil {
		return nil
	}
	if IsProviderError(err) {
		return err
	}
	return &ProviderError{Provider: provider, Err: err}
}

// New builds the provider named by LLM_PROVIDER ("openai" or "gemini").
func New() (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))) {
	case "", "openai":
		return NewOpenAI()
	case "gemini":
		return NewGemini()
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", os.Getenv("LLM_PROVIDER"))
	}
}

// splitSystem separates system turns from the dialogue, keeping dialogue order.
func splitSystem(messages []entity.ConversationTurn) (string, []entity.ConversationTurn) {
	var system []string
	dialogue := make([]entity.ConversationTurn, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == entity.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		dialogue = append(dialogue, msg)
	}
	return strings.Join(system, "\n\n"), dialogue
}
