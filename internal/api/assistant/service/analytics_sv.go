package assistantService

import (
	"context"
	"fmt"
	"time"

	"ShortletAssistant/internal/api/assistant"
	"ShortletAssistant/internal/entity"
)

func (s *assistantService) GetAnalytics(ctx context.Context, days int) (*entity.AssistantReport, error) {
	if days <= 0 {
		days = s.config.AnalyticsDays
	}
	if s.repo == nil {
		return nil, assistant.ErrAnalyticsFailed
	}

	client, err := s.repo.NewClient(false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", assistant.ErrAnalyticsFailed, err)
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	report, err := client.Queries.GetReport(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", assistant.ErrAnalyticsFailed, err)
	}
	return &report, nil
}
