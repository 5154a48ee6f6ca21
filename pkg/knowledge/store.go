package knowledge

import (
	"ShortletAssistant/internal/entity"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	ErrEmptyContent    = errors.New("knowledge document content is empty")
	ErrInvalidCategory = errors.New("knowledge document category is invalid")
	ErrDuplicateID     = errors.New("knowledge document id is duplicated")
	ErrMissingID       = errors.New("knowledge document id is empty")
)

type IStore interface {
	Index(propertyID string, docs []entity.KnowledgeDocument) error
	QueryByCategory(propertyID string, category entity.KnowledgeCategory) []entity.KnowledgeDocument
	Retrieve(propertyID string, category entity.KnowledgeCategory) []entity.KnowledgeDocument
	Properties() []string
	Count() int
}

// snapshot is never mutated after it has been published.
type snapshot struct {
	byProperty map[string][]entity.KnowledgeDocument
}

type Store struct {
	current atomic.Pointer[snapshot]
	writeMu sync.Mutex
}

func NewStore() *Store {
	s := &Store{}
	s.current.Store(&snapshot{byProperty: map[string][]entity.KnowledgeDocument{}})
	return s
}

func Validate(propertyID string, docs []entity.KnowledgeDocument) error {
	seen := make(map[string]struct{}, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document %d: %w", i, ErrMissingID)
		}
		if _, dup := seen[doc.ID]; dup {
			return fmt.Errorf("document %s: %w", doc.ID, ErrDuplicateID)
		}
		seen[doc.ID] = struct{}{}

		if strings.TrimSpace(doc.Content) == "" {
			return fmt.Errorf("document %s: %w", doc.ID, ErrEmptyContent)
		}
		if !doc.Category.Valid() {
			return fmt.Errorf("document %s category %q: %w", doc.ID, doc.Category, ErrInvalidCategory)
		}
		if doc.PropertyID != "" && doc.PropertyID != propertyID {
			return fmt.Errorf("document %s belongs to property %s, not %s", doc.ID, doc.PropertyID, propertyID)
		}
	}
	return nil
}

// Index replaces every document of propertyID. Readers holding the previous
// snapshot keep seeing it until they call the store again.
func (s *Store) Index(propertyID string, docs []entity.KnowledgeDocument) error {
	if err := Validate(propertyID, docs); err != nil {
		return err
	}

	fresh := make([]entity.KnowledgeDocument, len(docs))
	for i, doc := range docs {
		doc.PropertyID = propertyID
		fresh[i] = doc
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old := s.current.Load()
	next := &snapshot{byProperty: make(map[string][]entity.KnowledgeDocument, len(old.byProperty)+1)}
	for id, existing := range old.byProperty {
		next.byProperty[id] = existing
	}
	if len(fresh) == 0 {
		delete(next.byProperty, propertyID)
	} else {
		next.byProperty[propertyID] = fresh
	}

	s.current.Store(next)
	return nil
}

func (s *Store) QueryByCategory(propertyID string, category entity.KnowledgeCategory) []entity.KnowledgeDocument {
	docs := s.current.Load().byProperty[propertyID]

	result := make([]entity.KnowledgeDocument, 0, len(docs))
	for _, doc := range docs {
		if doc.Category == category {
			result = append(result, doc)
		}
	}
	return result
}

// Retrieve selects the documents answering an intent. General returns every
// document of the property, anything else is an exact category match.
func (s *Store) Retrieve(propertyID string, category entity.KnowledgeCategory) []entity.KnowledgeDocument {
	if category != entity.CategoryGeneral {
		return s.QueryByCategory(propertyID, category)
	}

	docs := s.current.Load().byProperty[propertyID]
	result := make([]entity.KnowledgeDocument, len(docs))
	copy(result, docs)
	return result
}

func (s *Store) Properties() []string {
	snap := s.current.Load()
	ids := make([]string, 0, len(snap.byProperty))
	for id := range snap.byProperty {
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) Count() int {
	total := 0
	for _, docs := range s.current.Load().byProperty {
		total += len(docs)
	}
	return total
}
