package assistantRepository

import (
	"context"
	"errors"
	"time"

	"ShortletAssistant/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

var ErrPropertyNotFound = errors.New("property not found")

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor = r.DB
	commitFunc := func() error { return nil }
	rollbackFunc := func() error { return nil }

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}
		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	}

	return Client{
		Knowledge:  &knowledgeRepository{q: sqlExecutor, log: r.log},
		Properties: &propertyRepository{q: sqlExecutor, log: r.log},
		Queries:    &assistantQueryRepository{q: sqlExecutor, log: r.log},
		Commit:     commitFunc,
		Rollback:   rollbackFunc,
	}, nil
}

type Client struct {
	Knowledge interface {
		ReplaceForProperty(ctx context.Context, propertyID string, docs []entity.KnowledgeDocument) error
		GetByProperty(ctx context.Context, propertyID string) ([]entity.KnowledgeDocument, error)
		GetAll(ctx context.Context) ([]entity.KnowledgeDocument, error)
	}

	Properties interface {
		GetPropertyByID(ctx context.Context, id string) (entity.Property, error)
	}

	Queries interface {
		CreateQuery(ctx context.Context, query entity.AssistantQuery) error
		GetReport(ctx context.Context, since time.Time) (entity.AssistantReport, error)
	}

	Commit   func() error
	Rollback func() error
}

type knowledgeRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type propertyRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type assistantQueryRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
