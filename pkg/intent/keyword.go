package intent

import (
	"ShortletAssistant/internal/entity"
	"context"
	"strings"
)

type KeywordGroup struct {
	Keywords   []string
	Intent     Label
	Confidence float64
}

// DefaultKeywordGroups is evaluated in order and the first group with a
// matching keyword wins, so a question about "parking time" is a policy question.
var DefaultKeywordGroups = []KeywordGroup{
	{Keywords: []string{"check-in", "check-out", "checkin", "checkout", "check in", "check out", "time"}, Intent: Policies, Confidence: 0.95},
	{Keywords: []string{"parking", "car"}, Intent: Amenities, Confidence: 0.90},
	{Keywords: []string{"power", "electricity", "generator"}, Intent: Utilities, Confidence: 0.90},
	{Keywords: []string{"wifi", "wi-fi", "internet"}, Intent: Amenities, Confidence: 0.92},
	{Keywords: []string{"pool", "gym", "fitness"}, Intent: Amenities, Confidence: 0.88},
	{Keywords: []string{"book", "reserve", "price"}, Intent: Booking, Confidence: 0.90},
}

// ChatKeywordGroups stand in for the model classifier when no provider is
// configured, so the chat channel keeps answering with chat labels.
var ChatKeywordGroups = []KeywordGroup{
	{Keywords: []string{"cancel", "refund"}, Intent: CancellationPolicy, Confidence: 0.85},
	{Keywords: []string{"broken", "not working", "dirty", "noisy", "complain"}, Intent: Complaint, Confidence: 0.80},
	{Keywords: []string{"reschedule", "extend my", "change my booking", "modify"}, Intent: BookingModification, Confidence: 0.80},
	{Keywords: []string{"check-in", "check-out", "checkin", "checkout", "check in", "check out", "arrive"}, Intent: CheckInOut, Confidence: 0.85},
	{Keywords: []string{"price", "cost", "how much", "per night", "discount"}, Intent: PricingQuestion, Confidence: 0.85},
	{Keywords: []string{"available", "availability", "vacant"}, Intent: AvailabilityCheck, Confidence: 0.80},
	{Keywords: []string{"book", "reserve"}, Intent: BookingInquiry, Confidence: 0.80},
	{Keywords: []string{"wifi", "wi-fi", "internet", "parking", "pool", "gym", "amenit", "facilit"}, Intent: AmenitiesQuestion, Confidence: 0.85},
	{Keywords: []string{"where", "address", "location", "direction", "nearby"}, Intent: LocationQuestion, Confidence: 0.80},
}

type KeywordClassifier struct {
	groups   []KeywordGroup
	fallback Label
}

// NewKeywordClassifier classifies with the voice labels. Nil groups means
// DefaultKeywordGroups.
func NewKeywordClassifier(groups []KeywordGroup) *KeywordClassifier {
	if len(groups) == 0 {
		groups = DefaultKeywordGroups
	}
	return &KeywordClassifier{groups: groups, fallback: General}
}

func NewChatKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{groups: ChatKeywordGroups, fallback: GeneralQuestion}
}

func (k *KeywordClassifier) Classify(_ context.Context, utterance string, _ []entity.ConversationTurn) Result {
	text := Normalize(utterance)

	for _, group := range k.groups {
		for _, keyword := range group.Keywords {
			if strings.Contains(text, keyword) {
				return Result{Intent: group.Intent, Confidence: group.Confidence}
			}
		}
	}

	return Result{Intent: k.fallback, Confidence: DefaultConfidence}
}
