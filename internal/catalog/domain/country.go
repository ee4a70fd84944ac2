package catalog

import (
	"context"
	"strings"
)

// Country is an append-only dimension row created lazily on first reference
// from a location. Never updated or deleted by the pipelines.
type Country struct {
	ID   int64
	Name string
}

// Validate checks required fields.
func (c Country) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCountryName
	}
	return nil
}

// CountryRepository resolves countries by natural key.
type CountryRepository interface {
	// Ensure resolves name to a surrogate id, inserting a new row only when
	// the name is unseen. Existing rows are left unchanged.
	Ensure(ctx context.Context, country Country) (id int64, created bool, err error)
	// GetByName loads a country by natural key. Returns ErrCountryNotFound on miss.
	GetByName(ctx context.Context, name string) (*Country, error)
}
