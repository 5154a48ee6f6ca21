package rag

import (
	"ShortletAssistant/internal/entity"
	"ShortletAssistant/pkg/intent"
	"ShortletAssistant/pkg/knowledge"
	"context"
	"strings"
	"testing"
	"time"
)

func TestModelBudget(t *testing.T) {
	tests := []struct {
		name         string
		total        time.Duration
		deadline     time.Duration
		wantClassify time.Duration
		wantGenerate time.Duration
	}{
		{name: "fits the deadline", total: 8 * time.Second, deadline: 15 * time.Second, wantClassify: 2 * time.Second, wantGenerate: 6 * time.Second},
		{name: "capped by the deadline", total: 16 * time.Second, deadline: 16 * time.Second, wantClassify: 3 * time.Second, wantGenerate: 9 * time.Second},
		{name: "unset total uses the cap", total: 0, deadline: 8 * time.Second, wantClassify: 1500 * time.Millisecond, wantGenerate: 4500 * time.Millisecond},
		{name: "no deadline", total: 4 * time.Second, wantClassify: time.Second, wantGenerate: 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classify, generate := ModelBudget(tt.total, tt.deadline)
			if classify != tt.wantClassify || generate != tt.wantGenerate {
				t.Fatalf("ModelBudget = (%v, %v), want (%v, %v)", classify, generate, tt.wantClassify, tt.wantGenerate)
			}
			if tt.deadline > 0 && classify+generate >= tt.deadline {
				t.Fatalf("budget %v does not end before the deadline %v", classify+generate, tt.deadline)
			}
		})
	}
}

func TestPipelineHungModelAnswersBeforeDeadline(t *testing.T) {
	const deadline = 800 * time.Millisecond

	store := knowledge.NewStore()
	if err := store.Index("prop-001", []entity.KnowledgeDocument{
		{ID: "kb-001", Category: entity.CategoryPolicies, Content: "Cancellations need 24 hours notice."},
	}); err != nil {
		t.Fatalf("Index: %v", err)
	}

	provider := &fakeProvider{block: true}
	classify, generate := ModelBudget(10*time.Second, deadline)
	pipeline := NewPipeline(
		intent.NewModelClassifier(provider, classify, nil),
		store,
		NewGenerator(GeneratorConfig{Strategy: StrategyGenerative, ModelTimeout: generate}, provider, nil),
	)

	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	result := pipeline.Run(ctx, Query{PropertyID: "prop-001", Utterance: "Can I cancel and get a refund?"})

	if err := ctx.Err(); err != nil {
		t.Fatalf("request deadline passed before the answer was ready: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected classifier and generator calls, got %d", provider.calls)
	}
	if result.Generated || !strings.Contains(result.Response.Response, "full refund") {
		t.Fatalf("expected the refund fallback, got %+v", result.Response)
	}
}
