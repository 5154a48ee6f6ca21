package intent

import (
	"ShortletAssistant/internal/entity"
	"ShortletAssistant/pkg/llm"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	modelConfidence   = 0.85
	classifyMaxTokens = 10
	historyTurns      = 6
)

// ModelClassifier asks the language model to pick one chat label.
type ModelClassifier struct {
	provider llm.Provider
	timeout  time.Duration
	log      *logrus.Logger
}

func NewModelClassifier(provider llm.Provider, timeout time.Duration, log *logrus.Logger) *ModelClassifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ModelClassifier{
		provider: provider,
		timeout:  timeout,
		log:      log,
	}
}

func classificationInstruction() string {
	labels := make([]string, len(ChatLabels))
	for i, label := range ChatLabels {
		labels[i] = string(label)
	}

	return fmt.Sprintf(`You classify guest messages for a short-let apartment booking platform.
Reply with exactly one label from this list and nothing else:
%s

If unsure, reply %s.`, strings.Join(labels, "\n"), GeneralQuestion)
}

func (m *ModelClassifier) Classify(ctx context.Context, utterance string, history []entity.ConversationTurn) Result {
	fallback := Result{Intent: GeneralQuestion, Confidence: DefaultConfidence}
	if m.provider == nil {
		return fallback
	}

	messages := []entity.ConversationTurn{{Role: entity.RoleSystem, Content: classificationInstruction()}}
	messages = append(messages, LastTurns(history, historyTurns)...)
	messages = append(messages, entity.ConversationTurn{Role: entity.RoleUser, Content: utterance})

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	completion, err := m.provider.Complete(callCtx, messages, classifyMaxTokens, 0)
	if err != nil {
		if m.log != nil {
			m.log.WithFields(logrus.Fields{
				"provider": m.provider.Name(),
				"error":    err.Error(),
			}).Warn("Intent classification failed, using default label")
		}
		return fallback
	}

	label, ok := ParseChatLabel(completion.Text)
	if !ok {
		if m.log != nil {
			m.log.WithFields(logrus.Fields{
				"provider": m.provider.Name(),
				"answer":   completion.Text,
			}).Warn("Model answered outside the label set")
		}
		return fallback
	}

	return Result{Intent: label, Confidence: modelConfidence}
}

// ParseChatLabel accepts only an exact label, ignoring case, quotes and
// surrounding punctuation.
func ParseChatLabel(answer string) (Label, bool) {
	cleaned := strings.ToLower(strings.Trim(strings.TrimSpace(answer), "\"'`.:;,\n\r\t "))
	for _, label := range ChatLabels {
		if cleaned == string(label) {
			return label, true
		}
	}
	return "", false
}

// LastTurns keeps the most recent n user and assistant turns. System turns in
// caller-supplied history are dropped so they never reach the model.
func LastTurns(history []entity.ConversationTurn, n int) []entity.ConversationTurn {
	kept := make([]entity.ConversationTurn, 0, len(history))
	for _, turn := range history {
		if turn.Role == entity.RoleUser || turn.Role == entity.RoleAssistant {
			kept = append(kept, turn)
		}
	}
	if len(kept) <= n {
		return kept
	}
	return kept[len(kept)-n:]
}
