package assistantRepository

import (
	"context"
	"time"

	"ShortletAssistant/internal/entity"
	contextPkg "ShortletAssistant/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// ReplaceForProperty deletes the property's rows then inserts docs in order.
// Callers run it inside a transaction client.
func (r *knowledgeRepository) ReplaceForProperty(ctx context.Context, propertyID string, docs []entity.KnowledgeDocument) error {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryDeleteKnowledgeByProperty, map[string]interface{}{
		"property_id": propertyID,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for ReplaceForProperty")
		return err
	}

	if _, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"property_id": propertyID,
			"error":       err.Error(),
		}).Error("Database error when deleting knowledge documents")
		return err
	}

	now := time.Now().UTC()
	for i, doc := range docs {
		createdAt := doc.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		query, args, err := sqlx.Named(queryInsertKnowledge, map[string]interface{}{
			"id":          doc.ID,
			"property_id": propertyID,
			"content":     doc.Content,
			"category":    string(doc.Category),
			"position":    i,
			"created_at":  createdAt,
		})
		if err != nil {
			return err
		}

		if _, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id":  requestID,
				"property_id": propertyID,
				"document_id": doc.ID,
				"error":       err.Error(),
			}).Error("Database error when inserting knowledge document")
			return err
		}
	}

	return nil
}

func (r *knowledgeRepository) GetByProperty(ctx context.Context, propertyID string) ([]entity.KnowledgeDocument, error) {
	query, args, err := sqlx.Named(queryGetKnowledgeByProperty, map[string]interface{}{
		"property_id": propertyID,
	})
	if err != nil {
		return nil, err
	}

	docs := []entity.KnowledgeDocument{}
	if err := r.q.SelectContext(ctx, &docs, r.q.Rebind(query), args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id":  contextPkg.GetRequestID(ctx),
			"property_id": propertyID,
			"error":       err.Error(),
		}).Error("Database error when reading knowledge documents")
		return nil, err
	}
	return docs, nil
}

func (r *knowledgeRepository) GetAll(ctx context.Context) ([]entity.KnowledgeDocument, error) {
	docs := []entity.KnowledgeDocument{}
	if err := r.q.SelectContext(ctx, &docs, queryGetAllKnowledge); err != nil {
		r.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Database error when loading knowledge documents")
		return nil, err
	}
	return docs, nil
}
