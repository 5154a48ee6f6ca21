package entity

// Property is the subset of a listing the assistant reads. It is owned by the
// listings side of the marketplace.
type Property struct {
	ID                 string   `json:"id" yaml:"id,omitempty"`
	Title              string   `json:"title" yaml:"title,omitempty"`
	Address            string   `json:"address" yaml:"address,omitempty"`
	City               string   `json:"city" yaml:"city,omitempty"`
	State              string   `json:"state" yaml:"state,omitempty"`
	Category           string   `json:"category" yaml:"category,omitempty"`
	PricePerNight      float64  `json:"price_per_night" yaml:"price_per_night,omitempty"`
	Bedrooms           int      `json:"bedrooms" yaml:"bedrooms,omitempty"`
	Bathrooms          int      `json:"bathrooms" yaml:"bathrooms,omitempty"`
	MaxGuests          int      `json:"max_guests" yaml:"max_guests,omitempty"`
	Rating             float64  `json:"rating" yaml:"rating,omitempty"`
	Amenities          []string `json:"amenities" yaml:"amenities,omitempty"`
	CheckInTime        string   `json:"check_in_time" yaml:"check_in_time,omitempty"`
	CheckOutTime       string   `json:"check_out_time" yaml:"check_out_time,omitempty"`
	Description        string   `json:"description" yaml:"description,omitempty"`
	CancellationPolicy string   `json:"cancellation_policy" yaml:"cancellation_policy,omitempty"`
	HouseRules         string   `json:"house_rules" yaml:"house_rules,omitempty"`
	HostPhone          string   `json:"host_phone" yaml:"host_phone,omitempty"`
}
