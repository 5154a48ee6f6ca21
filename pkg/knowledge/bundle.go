package knowledge

import (
	"ShortletAssistant/internal/entity"
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Bundle is the on-disk and object-storage format used to seed the store.
//
//	properties:
//	  - property_id: prop-001
//	    profile:
//	      title: Lekki Waterfront Loft
//	      price_per_night: 45000
//	    documents:
//	      - id: kb-001
//	        category: policies
//	        content: Check-in time is 2:00 PM.
type Bundle struct {
	Properties []PropertyDocuments `yaml:"properties"`
}

type PropertyDocuments struct {
	PropertyID string                     `yaml:"property_id"`
	Profile    *entity.Property           `yaml:"profile,omitempty"`
	Documents  []entity.KnowledgeDocument `yaml:"documents"`
}

func DecodeBundle(r io.Reader) (*Bundle, error) {
	var bundle Bundle
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		if err == io.EOF {
			return &bundle, nil
		}
		return nil, fmt.Errorf("failed to decode knowledge bundle: %w", err)
	}

	for _, property := range bundle.Properties {
		if err := Validate(property.PropertyID, property.Documents); err != nil {
			return nil, fmt.Errorf("property %q: %w", property.PropertyID, err)
		}
	}
	return &bundle, nil
}

func LoadBundleFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeBundle(bytes.NewReader(data))
}

func EncodeBundle(w io.Writer, bundle *Bundle) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(bundle); err != nil {
		return err
	}
	return encoder.Close()
}

// Apply indexes every property of the bundle into the store.
func (b *Bundle) Apply(store IStore) (int, error) {
	indexed := 0
	for _, property := range b.Properties {
		if err := store.Index(property.PropertyID, property.Documents); err != nil {
			return indexed, fmt.Errorf("failed to index property %q: %w", property.PropertyID, err)
		}
		indexed += len(property.Documents)
	}
	return indexed, nil
}

// Profiles returns the property records carried by the bundle, keyed by
// property id.
func (b *Bundle) Profiles() map[string]entity.Property {
	profiles := make(map[string]entity.Property)
	for _, property := range b.Properties {
		if property.Profile == nil {
			continue
		}
		profile := *property.Profile
		profile.ID = property.PropertyID
		profiles[property.PropertyID] = profile
	}
	return profiles
}
