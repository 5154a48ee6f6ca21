package entity

import "time"

type KnowledgeCategory string

const (
	CategoryPolicies  KnowledgeCategory = "policies"
	CategoryAmenities KnowledgeCategory = "amenities"
	CategoryUtilities KnowledgeCategory = "utilities"
	CategoryBooking   KnowledgeCategory = "booking"
	CategoryGeneral   KnowledgeCategory = "general"
)

var KnowledgeCategories = []KnowledgeCategory{
	CategoryPolicies,
	CategoryAmenities,
	CategoryUtilities,
	CategoryBooking,
	CategoryGeneral,
}

func (c KnowledgeCategory) String() string {
	return string(c)
}

func (c KnowledgeCategory) Valid() bool {
	for _, known := range KnowledgeCategories {
		if c == known {
			return true
		}
	}
	return false
}

type KnowledgeDocument struct {
	ID         string            `db:"id" json:"id" yaml:"id"`
	PropertyID string            `db:"property_id" json:"property_id" yaml:"property_id,omitempty"`
	Content    string            `db:"content" json:"content" yaml:"content"`
	Category   KnowledgeCategory `db:"category" json:"category" yaml:"category"`
	Position   int               `db:"position" json:"-" yaml:"-"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at" yaml:"-"`
}
