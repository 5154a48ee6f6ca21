package rag

import (
	"ShortletAssistant/internal/entity"
	"ShortletAssistant/pkg/intent"
	"fmt"
	"strings"
)

const ApologyText = "I'm sorry, I don't have that information right now. Let me connect you with our support team who can help."

type cannedAnswer struct {
	keywords []string
	answer   func(p *entity.Property, currency string) string
}

// Checked in order, the first match answers.
var cannedAnswers = []cannedAnswer{
	{
		keywords: []string{"price", "cost", "how much"},
		answer: func(p *entity.Property, currency string) string {
			if p == nil || p.PricePerNight <= 0 {
				return "Prices vary by date. Please check the listing for the current nightly rate."
			}
			return fmt.Sprintf("%s costs %s per night. Prices may vary for longer stays or special dates.",
				titleOf(p), FormatPrice(currency, p.PricePerNight))
		},
	},
	{
		keywords: []string{"check-in", "check in", "checkin", "arrive", "arrival"},
		answer: func(p *entity.Property, _ string) string {
			return fmt.Sprintf("Check-in time is %s. Please contact the host if you need an early check-in.", CheckInTime(p))
		},
	},
	{
		keywords: []string{"check-out", "check out", "checkout", "leave", "departure"},
		answer: func(p *entity.Property, _ string) string {
			return fmt.Sprintf("Check-out time is %s. Late check-out may be possible on request.", CheckOutTime(p))
		},
	},
	{
		keywords: []string{"cancel", "refund"},
		answer: func(p *entity.Property, _ string) string {
			answer := "You can cancel free of charge up to 24 hours before check-in and get a full refund."
			if p != nil && strings.TrimSpace(p.CancellationPolicy) != "" {
				answer += " This property's policy: " + p.CancellationPolicy + "."
			}
			return answer
		},
	},
	{
		keywords: []string{"wifi", "wi-fi", "internet"},
		answer: func(p *entity.Property, _ string) string {
			if p != nil && hasAmenity(p, "wifi", "wi-fi", "internet") {
				return "Yes, this property has WiFi. The network details are shared after check-in."
			}
			return "Please check the amenities list on the listing or ask the host about WiFi."
		},
	},
	{
		keywords: []string{"amenit", "facilit", "pool", "gym", "parking"},
		answer: func(p *entity.Property, _ string) string {
			if p == nil || len(p.Amenities) == 0 {
				return "Please see the listing for the full list of amenities."
			}
			return fmt.Sprintf("%s offers: %s.", titleOf(p), strings.Join(p.Amenities, ", "))
		},
	},
}

// FallbackAnswer is the deterministic reply used when the model call fails.
func FallbackAnswer(utterance string, p *entity.Property, currency string) string {
	if currency == "" {
		currency = DefaultCurrencySymbol
	}
	text := intent.Normalize(utterance)
	for _, canned := range cannedAnswers {
		for _, keyword := range canned.keywords {
			if strings.Contains(text, keyword) {
				return canned.answer(p, currency)
			}
		}
	}

	return fmt.Sprintf("Hello! Thanks for reaching out about %s. I can help with prices, check-in and check-out times, amenities and cancellations. What would you like to know?", titleOf(p))
}

func titleOf(p *entity.Property) string {
	if p == nil || strings.TrimSpace(p.Title) == "" {
		return "this property"
	}
	return p.Title
}

func hasAmenity(p *entity.Property, names ...string) bool {
	for _, amenity := range p.Amenities {
		normalized := intent.Normalize(amenity)
		for _, name := range names {
			if strings.Contains(normalized, name) {
				return true
			}
		}
	}
	return false
}
