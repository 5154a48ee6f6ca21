package assistantRepository

import (
	"context"
	"time"

	"ShortletAssistant/internal/entity"
	contextPkg "ShortletAssistant/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *assistantQueryRepository) CreateQuery(ctx context.Context, q entity.AssistantQuery) error {
	query, args, err := sqlx.Named(queryCreateAssistantQuery, q)
	if err != nil {
		return err
	}

	if _, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"query_id":   q.ID,
			"error":      err.Error(),
		}).Error("Database error when recording assistant query")
		return err
	}
	return nil
}

type reportTotalsDB struct {
	Total     int `db:"total"`
	Escalated int `db:"escalated"`
	Fallbacks int `db:"fallbacks"`
}

func (r *assistantQueryRepository) GetReport(ctx context.Context, since time.Time) (entity.AssistantReport, error) {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{"since": since.UTC()}

	query, args, err := sqlx.Named(queryReportTotals, argsKV)
	if err != nil {
		return entity.AssistantReport{}, err
	}

	var totals reportTotalsDB
	if err := r.q.GetContext(ctx, &totals, r.q.Rebind(query), args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when reading report totals")
		return entity.AssistantReport{}, err
	}

	query, args, err = sqlx.Named(queryReportByIntent, argsKV)
	if err != nil {
		return entity.AssistantReport{}, err
	}

	byIntent := []entity.IntentCount{}
	if err := r.q.SelectContext(ctx, &byIntent, r.q.Rebind(query), args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when reading intent counts")
		return entity.AssistantReport{}, err
	}

	report := entity.AssistantReport{
		Total:     totals.Total,
		Escalated: totals.Escalated,
		Fallbacks: totals.Fallbacks,
		ByIntent:  byIntent,
		Since:     since.UTC(),
	}
	if totals.Total > 0 {
		report.EscalationRate = float64(totals.Escalated) / float64(totals.Total)
	}
	return report, nil
}
