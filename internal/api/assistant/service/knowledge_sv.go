package assistantService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"ShortletAssistant/internal/api/assistant"
	"ShortletAssistant/internal/entity"
	contextPkg "ShortletAssistant/pkg/context"
	"ShortletAssistant/pkg/knowledge"

	"github.com/sirupsen/logrus"
)

func toDocuments(inputs []assistant.KnowledgeDocumentInput) []entity.KnowledgeDocument {
	docs := make([]entity.KnowledgeDocument, len(inputs))
	for i, in := range inputs {
		docs[i] = entity.KnowledgeDocument{
			ID:       in.ID,
			Content:  in.Content,
			Category: entity.KnowledgeCategory(in.Category),
		}
	}
	return docs
}

// replaceKnowledge persists docs then swaps them into the store. A failed
// write leaves the in-memory snapshot untouched.
func (s *assistantService) replaceKnowledge(ctx context.Context, propertyID string, docs []entity.KnowledgeDocument) error {
	if err := knowledge.Validate(propertyID, docs); err != nil {
		return fmt.Errorf("%w: %v", assistant.ErrInvalidKnowledge, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.repo != nil {
		client, err := s.repo.NewClient(true)
		if err != nil {
			return fmt.Errorf("%w: %v", assistant.ErrPersistKnowledge, err)
		}
		defer client.Rollback()

		if err := client.Knowledge.ReplaceForProperty(ctx, propertyID, docs); err != nil {
			return fmt.Errorf("%w: %v", assistant.ErrPersistKnowledge, err)
		}
		if err := client.Commit(); err != nil {
			return fmt.Errorf("%w: %v", assistant.ErrPersistKnowledge, err)
		}
	}

	return s.store.Index(propertyID, docs)
}

func (s *assistantService) IndexKnowledge(
	ctx context.Context,
	propertyID string,
	req assistant.IndexKnowledgeRequest,
) (*assistant.IndexKnowledgeResponse, error) {
	docs := toDocuments(req.Documents)
	if err := s.replaceKnowledge(ctx, propertyID, docs); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":  contextPkg.GetRequestID(ctx),
			"property_id": propertyID,
			"error":       err.Error(),
		}).Warn("Failed to index knowledge")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  contextPkg.GetRequestID(ctx),
		"property_id": propertyID,
		"documents":   len(docs),
	}).Info("Knowledge re-indexed")

	return &assistant.IndexKnowledgeResponse{PropertyID: propertyID, Indexed: len(docs)}, nil
}

func (s *assistantService) ListKnowledge(ctx context.Context, propertyID string) (*assistant.KnowledgeListResponse, error) {
	return &assistant.KnowledgeListResponse{
		PropertyID: propertyID,
		Documents:  s.store.Retrieve(propertyID, entity.CategoryGeneral),
	}, nil
}

func (s *assistantService) registerProfiles(bundle *knowledge.Bundle) {
	profiles := bundle.Profiles()
	if len(profiles) == 0 {
		return
	}
	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()
	for id, profile := range profiles {
		s.profiles[id] = profile
	}
}

func (s *assistantService) ImportBundle(ctx context.Context, key string) (*assistant.BundleResponse, error) {
	if s.s3Client == nil {
		return nil, assistant.ErrStorageUnavailable
	}

	body, err := s.s3Client.GetObject(ctx, key)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"key":        key,
			"error":      err.Error(),
		}).Warn("Failed to fetch knowledge bundle")
		return nil, fmt.Errorf("%w: %s", assistant.ErrBundleNotFound, key)
	}
	defer body.Close()

	bundle, err := knowledge.DecodeBundle(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", assistant.ErrInvalidBundle, err)
	}

	documents := 0
	for _, property := range bundle.Properties {
		if err := s.replaceKnowledge(ctx, property.PropertyID, property.Documents); err != nil {
			return nil, err
		}
		documents += len(property.Documents)
	}
	s.registerProfiles(bundle)

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"key":        key,
		"properties": len(bundle.Properties),
		"documents":  documents,
	}).Info("Knowledge bundle imported")

	return &assistant.BundleResponse{Key: key, Properties: len(bundle.Properties), Documents: documents}, nil
}

// snapshotBundle renders the store as a bundle, properties in id order.
func (s *assistantService) snapshotBundle() *knowledge.Bundle {
	ids := s.store.Properties()
	sort.Strings(ids)

	s.profilesMu.RLock()
	defer s.profilesMu.RUnlock()

	bundle := &knowledge.Bundle{Properties: make([]knowledge.PropertyDocuments, 0, len(ids))}
	for _, id := range ids {
		entry := knowledge.PropertyDocuments{
			PropertyID: id,
			Documents:  s.store.Retrieve(id, entity.CategoryGeneral),
		}
		if profile, ok := s.profiles[id]; ok {
			profile.ID = ""
			entry.Profile = &profile
		}
		bundle.Properties = append(bundle.Properties, entry)
	}
	return bundle
}

func (s *assistantService) ExportBundle(ctx context.Context, key string) (*assistant.BundleResponse, error) {
	if s.s3Client == nil {
		return nil, assistant.ErrStorageUnavailable
	}

	bundle := s.snapshotBundle()
	var buf bytes.Buffer
	if err := knowledge.EncodeBundle(&buf, bundle); err != nil {
		return nil, err
	}

	location, err := s.s3Client.PutObject(ctx, key, &buf, "application/yaml")
	if err != nil {
		return nil, err
	}

	documents := 0
	for _, property := range bundle.Properties {
		documents += len(property.Documents)
	}
	return &assistant.BundleResponse{Key: key, Location: location, Properties: len(bundle.Properties), Documents: documents}, nil
}

// LoadKnowledge fills the store from the database at boot.
func (s *assistantService) LoadKnowledge(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}

	client, err := s.repo.NewClient(false)
	if err != nil {
		return 0, err
	}
	rows, err := client.Knowledge.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	byProperty := make(map[string][]entity.KnowledgeDocument)
	order := make([]string, 0)
	for _, row := range rows {
		if _, seen := byProperty[row.PropertyID]; !seen {
			order = append(order, row.PropertyID)
		}
		byProperty[row.PropertyID] = append(byProperty[row.PropertyID], row)
	}

	var errs []error
	loaded := 0
	for _, propertyID := range order {
		if err := s.store.Index(propertyID, byProperty[propertyID]); err != nil {
			errs = append(errs, fmt.Errorf("property %s: %w", propertyID, err))
			continue
		}
		loaded += len(byProperty[propertyID])
	}
	return loaded, errors.Join(errs...)
}

// ApplyBundle indexes a seed bundle in memory only. Seeds are not persisted.
func (s *assistantService) ApplyBundle(ctx context.Context, source string, bundle *knowledge.Bundle) error {
	s.writeMu.Lock()
	_, err := bundle.Apply(s.store)
	s.writeMu.Unlock()
	if err != nil {
		return err
	}
	s.registerProfiles(bundle)
	return nil
}

func (s *assistantService) RemoveProperties(ctx context.Context, source string, propertyIDs []string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for _, id := range propertyIDs {
		if err := s.store.Index(id, nil); err != nil {
			return err
		}
	}

	s.profilesMu.Lock()
	for _, id := range propertyIDs {
		delete(s.profiles, id)
	}
	s.profilesMu.Unlock()
	return nil
}
