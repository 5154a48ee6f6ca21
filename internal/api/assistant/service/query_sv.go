package assistantService

import (
	"context"
	"errors"
	"strings"
	"time"

	"ShortletAssistant/internal/api/assistant"
	assistantRepository "ShortletAssistant/internal/api/assistant/repository"
	"ShortletAssistant/internal/entity"
	contextPkg "ShortletAssistant/pkg/context"
	"ShortletAssistant/pkg/rag"

	"github.com/sirupsen/logrus"
)

func (s *assistantService) pipelineFor(channel entity.Channel) *rag.Pipeline {
	if channel == entity.ChannelVoice {
		return s.pipelines.Voice
	}
	return s.pipelines.Chat
}

func (s *assistantService) Query(
	ctx context.Context,
	channel entity.Channel,
	req assistant.QueryRequest,
) (*assistant.QueryResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	utterance := strings.TrimSpace(req.Utterance)
	property := s.lookupProperty(ctx, req.PropertyID)

	result := s.pipelineFor(channel).Run(ctx, rag.Query{
		PropertyID: req.PropertyID,
		Utterance:  utterance,
		History:    req.History,
		Property:   property,
	})

	// A passed deadline still has its fallback answer; only a caller that hung
	// up abandons the query.
	if err := ctx.Err(); errors.Is(err, context.Canceled) {
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"property_id": req.PropertyID,
		}).Info("Client went away before the answer was ready")
		return nil, err
	}

	queryID := s.utils.NewID()
	s.recordQuery(ctx, queryID, channel, req.PropertyID, utterance, result)
	if rag.ShouldEscalate(result.Response) {
		s.escalate(ctx, queryID, channel, req.PropertyID, utterance, result, property)
	}

	s.log.WithFields(logrus.Fields{
		"request_id":      requestID,
		"query_id":        queryID,
		"channel":         channel,
		"intent":          result.Intent.Intent,
		"documents_found": result.DocumentsFound,
		"escalate":        result.Escalate,
		"success":         result.Generated,
	}).Info("Assistant query answered")

	return toQueryResponse(queryID, utterance, result), nil
}

func toQueryResponse(queryID, utterance string, result rag.Result) *assistant.QueryResponse {
	sources := result.Sources
	if sources == nil {
		sources = []string{}
	}
	return &assistant.QueryResponse{
		QueryID:        queryID,
		Query:          utterance,
		Intent:         string(result.Intent.Intent),
		DocumentsFound: result.DocumentsFound,
		Response:       result.Response.Response,
		Confidence:     result.Confidence,
		Escalate:       result.Escalate,
		Sources:        sources,
		Success:        result.Generated,
	}
}

// lookupProperty returns nil when the property is unknown; the prompt then
// falls back to defaults.
func (s *assistantService) lookupProperty(ctx context.Context, propertyID string) *entity.Property {
	if propertyID == "" {
		return nil
	}

	if s.repo != nil {
		client, err := s.repo.NewClient(false)
		if err == nil {
			property, err := client.Properties.GetPropertyByID(ctx, propertyID)
			if err == nil {
				return &property
			}
			if !errors.Is(err, assistantRepository.ErrPropertyNotFound) {
				s.log.WithFields(logrus.Fields{
					"request_id":  contextPkg.GetRequestID(ctx),
					"property_id": propertyID,
					"error":       err.Error(),
				}).Debug("Property lookup failed, trying seeded profiles")
			}
		}
	}

	s.profilesMu.RLock()
	defer s.profilesMu.RUnlock()
	if profile, ok := s.profiles[propertyID]; ok {
		return &profile
	}
	return nil
}

// recordQuery writes the audit row. It outlives the request context so a
// disconnect after answering still gets recorded.
func (s *assistantService) recordQuery(
	ctx context.Context,
	queryID string,
	channel entity.Channel,
	propertyID, utterance string,
	result rag.Result,
) {
	if s.repo == nil {
		return
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.RecordTimeout)
	defer cancel()

	client, err := s.repo.NewClient(false)
	if err == nil {
		err = client.Queries.CreateQuery(recordCtx, entity.AssistantQuery{
			ID:             queryID,
			Channel:        channel,
			PropertyID:     propertyID,
			Utterance:      utterance,
			Intent:         string(result.Intent.Intent),
			DocumentsFound: result.DocumentsFound,
			Confidence:     result.Confidence,
			Escalate:       result.Escalate,
			Success:        result.Generated,
			CreatedAt:      time.Now().UTC(),
		})
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"query_id":   queryID,
			"error":      err.Error(),
		}).Warn("Failed to record assistant query")
	}
}

func (s *assistantService) escalate(
	ctx context.Context,
	queryID string,
	channel entity.Channel,
	propertyID, utterance string,
	result rag.Result,
	property *entity.Property,
) {
	event := entity.EscalationEvent{
		QueryID:    queryID,
		Channel:    channel,
		PropertyID: propertyID,
		Utterance:  utterance,
		Intent:     string(result.Intent.Intent),
		Response:   result.Response.Response,
		CreatedAt:  time.Now().UTC(),
	}
	if property != nil {
		event.HostPhone = property.HostPhone
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.NotifyTimeout)
	go func() {
		defer cancel()
		s.notifier.NotifyEscalation(notifyCtx, event)
	}()
}
