package catalog

import (
	"context"
	"strings"
)

// Location is a dimension row created lazily on first reference from a plant.
// Natural key is (city, country).
type Location struct {
	ID        int64
	City      string
	Latitude  float64
	Longitude float64
	CountryID int64
}

// Validate checks required fields and references.
func (l Location) Validate() error {
	if strings.TrimSpace(l.City) == "" {
		return ErrEmptyCity
	}
	if l.CountryID <= 0 {
		return ErrMissingCountryRef
	}
	return nil
}

// LocationRepository resolves locations by natural key.
type LocationRepository interface {
	// Ensure resolves (city, country) to a surrogate id, inserting only when
	// the key is unseen. Existing rows are left unchanged.
	Ensure(ctx context.Context, location Location) (id int64, created bool, err error)
	// GetByKey loads a location by natural key. Returns ErrLocationNotFound on miss.
	GetByKey(ctx context.Context, city string, countryID int64) (*Location, error)
}
