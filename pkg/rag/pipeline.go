package rag

import (
	"ShortletAssistant/internal/entity"
	"ShortletAssistant/pkg/intent"
	"ShortletAssistant/pkg/knowledge"
	"context"
	"time"
)

// ModelBudget splits one per-query model budget between the classifier and
// the generator. When deadline is set the total is capped at three quarters of
// it, so both calls and the fallback finish while the caller still waits.
func ModelBudget(total, deadline time.Duration) (classify, generate time.Duration) {
	if deadline > 0 {
		if limit := deadline * 3 / 4; total <= 0 || total > limit {
			total = limit
		}
	}
	classify = total / 4
	return classify, total - classify
}

type Query struct {
	PropertyID string
	Utterance  string
	History    []entity.ConversationTurn
	Property   *entity.Property
}

type Result struct {
	Intent         intent.Result
	DocumentsFound int
	Response
}

// Pipeline runs classify, retrieve, generate. It holds no per-request state and
// is safe for concurrent use.
type Pipeline struct {
	classifier intent.Classifier
	retriever  knowledge.IStore
	generator  *Generator
}

func NewPipeline(classifier intent.Classifier, retriever knowledge.IStore, generator *Generator) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		retriever:  retriever,
		generator:  generator,
	}
}

func (p *Pipeline) Run(ctx context.Context, q Query) Result {
	classified := p.classifier.Classify(ctx, q.Utterance, q.History)
	docs := p.retriever.Retrieve(q.PropertyID, classified.Intent.Category())
	resp := p.generator.Generate(ctx, q.Utterance, docs, q.Property, q.History)

	return Result{
		Intent:         classified,
		DocumentsFound: len(docs),
		Response:       resp,
	}
}

func (p *Pipeline) Strategy() Strategy {
	return p.generator.Strategy()
}
