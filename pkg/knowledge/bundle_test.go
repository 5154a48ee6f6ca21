package knowledge

import (
	"ShortletAssistant/internal/entity"
	"bytes"
	"strings"
	"testing"
)

const sampleBundle = `
properties:
  - property_id: prop-001
    documents:
      - id: kb-001
        category: policies
        content: Check-in time is 2:00 PM. Early check-in is subject to availability.
      - id: kb-002
        category: amenities
        content: Free Wi-Fi throughout the apartment. The password is on the fridge.
  - property_id: prop-002
    documents:
      - id: kb-101
        category: utilities
        content: The backup generator runs from 7 PM to 7 AM.
`

func TestDecodeBundleAndApply(t *testing.T) {
	bundle, err := DecodeBundle(strings.NewReader(sampleBundle))
	if err != nil {
		t.Fatalf("DecodeBundle: %v", err)
	}
	if len(bundle.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(bundle.Properties))
	}

	store := NewStore()
	indexed, err := bundle.Apply(store)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if indexed != 3 {
		t.Fatalf("expected 3 documents indexed, got %d", indexed)
	}

	docs := store.Retrieve("prop-001", entity.CategoryPolicies)
	if len(docs) != 1 || docs[0].ID != "kb-001" {
		t.Fatalf("unexpected policies documents: %+v", docs)
	}
}

func TestDecodeBundleRejectsUnknownCategory(t *testing.T) {
	input := `
properties:
  - property_id: prop-001
    documents:
      - id: kb-001
        category: spa
        content: Sauna downstairs.
`
	if _, err := DecodeBundle(strings.NewReader(input)); err == nil {
		t.Fatal("expected an error for an unknown category")
	}
}

func TestDecodeBundleRejectsUnknownFields(t *testing.T) {
	input := `
properties:
  - property_id: prop-001
    docs: []
`
	if _, err := DecodeBundle(strings.NewReader(input)); err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}

func TestEncodeBundleRoundTrip(t *testing.T) {
	original, err := DecodeBundle(strings.NewReader(sampleBundle))
	if err != nil {
		t.Fatalf("DecodeBundle: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeBundle(&buf, original); err != nil {
		t.Fatalf("EncodeBundle: %v", err)
	}

	decoded, err := DecodeBundle(&buf)
	if err != nil {
		t.Fatalf("DecodeBundle after encode: %v", err)
	}
	if decoded.Properties[1].Documents[0].Content != original.Properties[1].Documents[0].Content {
		t.Fatal("content changed across encode/decode")
	}
}

func TestBundleProfiles(t *testing.T) {
	input := `
properties:
  - property_id: prop-001
    profile:
      title: Lekki Waterfront Loft
      price_per_night: 45000
      amenities: [WiFi, Pool]
    documents: []
  - property_id: prop-002
    documents: []
`
	bundle, err := DecodeBundle(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeBundle: %v", err)
	}

	profiles := bundle.Profiles()
	if len(profiles) != 1 {
		t.Fatalf("expected one profile, got %d", len(profiles))
	}
	loft := profiles["prop-001"]
	if loft.ID != "prop-001" || loft.Title != "Lekki Waterfront Loft" || loft.PricePerNight != 45000 {
		t.Fatalf("unexpected profile: %+v", loft)
	}
	if len(loft.Amenities) != 2 {
		t.Fatalf("expected 2 amenities, got %v", loft.Amenities)
	}
}
