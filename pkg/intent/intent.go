package intent

import (
	"ShortletAssistant/internal/entity"
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Label string

// Voice channel labels. They double as knowledge categories.
const (
	Policies  Label = "policies"
	Amenities Label = "amenities"
	Utilities Label = "utilities"
	Booking   Label = "booking"
	General   Label = "general"
)

// Chat channel labels.
const (
	BookingInquiry      Label = "booking_inquiry"
	PricingQuestion     Label = "pricing_question"
	AmenitiesQuestion   Label = "amenities_question"
	LocationQuestion    Label = "location_question"
	AvailabilityCheck   Label = "availability_check"
	CancellationPolicy  Label = "cancellation_policy"
	CheckInOut          Label = "check_in_out"
	GeneralQuestion     Label = "general_question"
	Complaint           Label = "complaint"
	BookingModification Label = "booking_modification"
)

var ChatLabels = []Label{
	BookingInquiry,
	PricingQuestion,
	AmenitiesQuestion,
	LocationQuestion,
	AvailabilityCheck,
	CancellationPolicy,
	CheckInOut,
	GeneralQuestion,
	Complaint,
	BookingModification,
}

const DefaultConfidence = 0.5

type Result struct {
	Intent     Label   `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Classifier never fails: an ambiguous utterance resolves to the channel's
// default label.
type Classifier interface {
	Classify(ctx context.Context, utterance string, history []entity.ConversationTurn) Result
}

var chatCategories = map[Label]entity.KnowledgeCategory{
	BookingInquiry:      entity.CategoryBooking,
	PricingQuestion:     entity.CategoryBooking,
	AvailabilityCheck:   entity.CategoryBooking,
	BookingModification: entity.CategoryBooking,
	AmenitiesQuestion:   entity.CategoryAmenities,
	CancellationPolicy:  entity.CategoryPolicies,
	CheckInOut:          entity.CategoryPolicies,
	LocationQuestion:    entity.CategoryGeneral,
	GeneralQuestion:     entity.CategoryGeneral,
	Complaint:           entity.CategoryGeneral,
}

// Category maps a label of either channel to the knowledge category it retrieves.
func (l Label) Category() entity.KnowledgeCategory {
	if category, ok := chatCategories[l]; ok {
		return category
	}
	category := entity.KnowledgeCategory(l)
	if category.Valid() {
		return category
	}
	return entity.CategoryGeneral
}

func (l Label) String() string {
	return string(l)
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases text and strips diacritics so "Wí-Fi" and "wi-fi" match.
func Normalize(text string) string {
	folded, _, err := transform.String(foldAccents, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
