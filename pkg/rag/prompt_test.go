package rag

import (
	"ShortletAssistant/internal/entity"
	"strings"
	"testing"
)

func TestPropertyContextDefaults(t *testing.T) {
	p := sampleProperty()
	block := PropertyContext(p, "")

	for _, want := range []string{
		"- Name: Lekki Waterfront Loft",
		"- Location: 12 Admiralty Way, Lekki, Lagos",
		"- Price: ₦45,000 per night",
		"- Bedrooms: 2 | Bathrooms: 2 | Max Guests: 4",
		"- Rating: 4.7/5",
		"- Amenities: WiFi, Pool, 24/7 Power",
		"- Check-in: 2:00 PM",
		"- Check-out: 11:00 AM",
		"- Cancellation Policy: " + DefaultCancellationPolicy,
	} {
		if !strings.Contains(block, want) {
			t.Errorf("property context missing %q\n%s", want, block)
		}
	}
	if strings.Contains(block, "House Rules") {
		t.Error("house rules must be omitted when empty")
	}
}

func TestPropertyContextOverrides(t *testing.T) {
	p := sampleProperty()
	p.CheckInTime = "3:00 PM"
	p.CheckOutTime = "12:00 PM"
	p.CancellationPolicy = "Strict - 50% refund up to 7 days before"
	p.HouseRules = "No parties"

	block := PropertyContext(p, "$")

	for _, want := range []string{"- Check-in: 3:00 PM", "- Check-out: 12:00 PM", "Strict - 50% refund", "- House Rules: No parties", "$45,000"} {
		if !strings.Contains(block, want) {
			t.Errorf("property context missing %q", want)
		}
	}
}

func TestPropertyContextWithoutProperty(t *testing.T) {
	block := PropertyContext(nil, "")
	if !strings.Contains(block, DefaultCheckIn) || !strings.Contains(block, DefaultCheckOut) {
		t.Fatalf("defaults missing: %s", block)
	}
}

func TestSystemPromptIncludesIdentityCurrencyAndNotes(t *testing.T) {
	prompt := SystemPrompt(PromptConfig{PlatformName: "StayNaija"}, sampleProperty(), []entity.KnowledgeDocument{
		{ID: "kb-1", Category: entity.CategoryUtilities, Content: "Generator runs all night."},
	})

	for _, want := range []string{"StayNaija", "₦ symbol", "PROPERTY DETAILS", "[utilities] Generator runs all night."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := map[float64]string{
		0:        "₦0",
		999:      "₦999",
		1000:     "₦1,000",
		45000:    "₦45,000",
		1250000:  "₦1,250,000",
		99.6:     "₦100",
		-1000:    "-₦1,000",
		-45000.4: "-₦45,000",
		-0.2:     "₦0",
	}
	for amount, want := range tests {
		if got := FormatPrice("₦", amount); got != want {
			t.Errorf("FormatPrice(%v) = %q, want %q", amount, got, want)
		}
	}
}

func TestFallbackAnswers(t *testing.T) {
	p := sampleProperty()
	tests := []struct {
		utterance string
		contains  string
	}{
		{"How much is it per night?", "₦45,000"},
		{"What time can I check in?", "2:00 PM"},
		{"When is checkout", "11:00 AM"},
		{"I need to cancel", "full refund"},
		{"Do you have wifi", "WiFi"},
		{"what amenities are there", "Pool"},
		{"hello there", "Hello!"},
	}
	for _, tt := range tests {
		if got := FallbackAnswer(tt.utterance, p, ""); !strings.Contains(got, tt.contains) {
			t.Errorf("FallbackAnswer(%q) = %q, want it to contain %q", tt.utterance, got, tt.contains)
		}
	}
}
