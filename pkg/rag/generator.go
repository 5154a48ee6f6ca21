package rag

import (
	"ShortletAssistant/internal/entity"
	"ShortletAssistant/pkg/intent"
	"ShortletAssistant/pkg/llm"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Strategy string

const (
	StrategyExtractive Strategy = "extractive"
	StrategyGenerative Strategy = "generative"
)

func ParseStrategy(value string, fallback Strategy) Strategy {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case StrategyExtractive:
		return StrategyExtractive
	case StrategyGenerative:
		return StrategyGenerative
	default:
		return fallback
	}
}

const (
	EmptyConfidence      = 0.3
	ExtractiveConfidence = 0.9
	GenerativeConfidence = 0.9
	FallbackConfidence   = 0.5

	HistoryTurns        = 6
	GenerateMaxTokens   = 300
	GenerateTemperature = 0.7
	DefaultModelTimeout = 8 * time.Second
)

type Response struct {
	Response   string   `json:"response"`
	Confidence float64  `json:"confidence"`
	Escalate   bool     `json:"escalate"`
	Sources    []string `json:"sources"`
	// Generated is false when the generative strategy fell back to a canned answer.
	Generated bool `json:"-"`
}

type GeneratorConfig struct {
	Strategy     Strategy
	Prompt       PromptConfig
	ModelTimeout time.Duration
}

type Generator struct {
	strategy Strategy
	prompt   PromptConfig
	timeout  time.Duration
	provider llm.Provider
	log      *logrus.Logger
}

func NewGenerator(cfg GeneratorConfig, provider llm.Provider, log *logrus.Logger) *Generator {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyExtractive
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = DefaultModelTimeout
	}
	return &Generator{
		strategy: cfg.Strategy,
		prompt:   cfg.Prompt.withDefaults(),
		timeout:  cfg.ModelTimeout,
		provider: provider,
		log:      log,
	}
}

func (g *Generator) Strategy() Strategy {
	return g.strategy
}

func (g *Generator) Generate(
	ctx context.Context,
	utterance string,
	docs []entity.KnowledgeDocument,
	property *entity.Property,
	history []entity.ConversationTurn,
) Response {
	if len(docs) == 0 {
		return Response{
			Response:   ApologyText,
			Confidence: EmptyConfidence,
			Escalate:   true,
			Sources:    []string{},
		}
	}

	sources := make([]string, len(docs))
	for i, doc := range docs {
		sources[i] = doc.ID
	}

	if g.strategy == StrategyExtractive {
		contents := make([]string, len(docs))
		for i, doc := range docs {
			contents[i] = doc.Content
		}
		return Response{
			Response:   strings.Join(contents, " "),
			Confidence: ExtractiveConfidence,
			Sources:    sources,
			Generated:  true,
		}
	}

	text, err := g.complete(ctx, utterance, docs, property, history)
	if err != nil {
		if g.log != nil {
			g.log.WithFields(logrus.Fields{
				"error":     err.Error(),
				"utterance": utterance,
			}).Warn("Model call failed, answering from fallback")
		}
		return Response{
			Response:   FallbackAnswer(utterance, property, g.prompt.CurrencySymbol),
			Confidence: FallbackConfidence,
			Sources:    sources,
		}
	}

	return Response{
		Response:   text,
		Confidence: GenerativeConfidence,
		Sources:    sources,
		Generated:  true,
	}
}

// BuildMessages lays out system prompt, the recent history and the utterance.
func (g *Generator) BuildMessages(
	utterance string,
	docs []entity.KnowledgeDocument,
	property *entity.Property,
	history []entity.ConversationTurn,
) []entity.ConversationTurn {
	recent := intent.LastTurns(history, HistoryTurns)

	messages := make([]entity.ConversationTurn, 0, len(recent)+2)
	messages = append(messages, entity.ConversationTurn{
		Role:    entity.RoleSystem,
		Content: SystemPrompt(g.prompt, property, docs),
	})
	messages = append(messages, recent...)
	messages = append(messages, entity.ConversationTurn{Role: entity.RoleUser, Content: utterance})
	return messages
}

func (g *Generator) complete(
	ctx context.Context,
	utterance string,
	docs []entity.KnowledgeDocument,
	property *entity.Property,
	history []entity.ConversationTurn,
) (string, error) {
	if g.provider == nil {
		return "", &llm.ProviderError{Provider: "none", Err: fmt.Errorf("no language model configured")}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	completion, err := g.provider.Complete(
		callCtx,
		g.BuildMessages(utterance, docs, property, history),
		GenerateMaxTokens,
		GenerateTemperature,
	)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(completion.Text)
	if text == "" {
		return "", &llm.ProviderError{Provider: g.provider.Name(), Err: llm.ErrEmptyCompletion}
	}
	return text, nil
}

// ShouldEscalate is the only signal the channel adapters use to hand the
// guest over to a human.
func ShouldEscalate(resp Response) bool {
	return resp.Escalate
}
