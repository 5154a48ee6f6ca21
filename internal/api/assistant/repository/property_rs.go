package assistantRepository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"ShortletAssistant/internal/entity"
	contextPkg "ShortletAssistant/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type propertyDB struct {
	ID                 string  `db:"id"`
	Title              string  `db:"title"`
	Address            string  `db:"address"`
	City               string  `db:"city"`
	State              string  `db:"state"`
	Category           string  `db:"category"`
	PricePerNight      float64 `db:"price_per_night"`
	Bedrooms           int     `db:"bedrooms"`
	Bathrooms          int     `db:"bathrooms"`
	MaxGuests          int     `db:"max_guests"`
	Rating             float64 `db:"rating"`
	Amenities          string  `db:"amenities"`
	CheckInTime        string  `db:"check_in_time"`
	CheckOutTime       string  `db:"check_out_time"`
	Description        string  `db:"description"`
	CancellationPolicy string  `db:"cancellation_policy"`
	HouseRules         string  `db:"house_rules"`
	HostPhone          string  `db:"host_phone"`
}

// splitAmenities accepts the comma separated list the listings table stores,
// with or without array braces.
func splitAmenities(raw string) []string {
	raw = strings.Trim(strings.TrimSpace(raw), "{}")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	amenities := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.Trim(strings.TrimSpace(part), `"`); part != "" {
			amenities = append(amenities, part)
		}
	}
	return amenities
}

func (p propertyDB) toEntity() entity.Property {
	return entity.Property{
		ID:                 p.ID,
		Title:              p.Title,
		Address:            p.Address,
		City:               p.City,
		State:              p.State,
		Category:           p.Category,
		PricePerNight:      p.PricePerNight,
		Bedrooms:           p.Bedrooms,
		Bathrooms:          p.Bathrooms,
		MaxGuests:          p.MaxGuests,
		Rating:             p.Rating,
		Amenities:          splitAmenities(p.Amenities),
		CheckInTime:        p.CheckInTime,
		CheckOutTime:       p.CheckOutTime,
		Description:        p.Description,
		CancellationPolicy: p.CancellationPolicy,
		HouseRules:         p.HouseRules,
		HostPhone:          p.HostPhone,
	}
}

func (r *propertyRepository) GetPropertyByID(ctx context.Context, id string) (entity.Property, error) {
	query, args, err := sqlx.Named(queryGetPropertyByID, map[string]interface{}{"id": id})
	if err != nil {
		return entity.Property{}, err
	}

	var row propertyDB
	if err := r.q.GetContext(ctx, &row, r.q.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Property{}, ErrPropertyNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id":  contextPkg.GetRequestID(ctx),
			"property_id": id,
			"error":       err.Error(),
		}).Debug("Property lookup failed")
		return entity.Property{}, err
	}

	return row.toEntity(), nil
}
