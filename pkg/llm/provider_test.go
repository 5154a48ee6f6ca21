package llm

import (
	"ShortletAssistant/internal/entity"
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestProviderErrorUnwraps(t *testing.T) {
	cause := context.DeadlineExceeded
	err := wrap("openai", cause)

	if !IsProviderError(err) {
		t.Fatal("expected a provider error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("provider error should unwrap to its cause")
	}

	wrapped := fmt.Errorf("generate: %w", err)
	if !IsProviderError(wrapped) {
		t.Fatal("provider error should survive wrapping")
	}
}

func TestWrapDoesNotDoubleWrap(t *testing.T) {
	first := wrap("gemini", errors.New("quota"))
	second := wrap("openai", first)

	var providerErr *ProviderError
	if !errors.As(second, &providerErr) || providerErr.Provider != "gemini" {
		t.Fatalf("expected original provider error, got %v", second)
	}
}

func TestSplitSystem(t *testing.T) {
	system, dialogue := splitSystem([]entity.ConversationTurn{
		{Role: entity.RoleSystem, Content: "be brief"},
		{Role: entity.RoleUser, Content: "hi"},
		{Role: entity.RoleSystem, Content: "use naira"},
		{Role: entity.RoleAssistant, Content: "hello"},
		{Role: entity.RoleUser, Content: "price?"},
	})

	if system != "be brief\n\nuse naira" {
		t.Fatalf("unexpected system text %q", system)
	}
	if len(dialogue) != 3 || dialogue[2].Content != "price?" {
		t.Fatalf("unexpected dialogue %+v", dialogue)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "mystery")
	if _, err := New(); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}
