package memory

import (
	"context"
	"sync"

	catalog "plantwatch-cloud/internal/catalog/domain"
)

// CountryRepository is an in-memory repository for demo/testing.
type CountryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byName map[string]*catalog.Country
}

// NewCountryRepository constructs a repository.
func NewCountryRepository() *CountryRepository {
	return &CountryRepository{byName: make(map[string]*catalog.Country)}
}

// Ensure resolves a country name to an id, inserting at most once.
func (r *CountryRepository) Ensure(ctx context.Context, country catalog.Country) (int64, bool, error) {
	_ = ctx
	if err := country.Validate(); err != nil {
		return 0, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byName[country.Name]; ok {
		return existing.ID, false, nil
	}
	r.nextID++
	country.ID = r.nextID
	r.byName[country.Name] = &country
	return country.ID, true, nil
}

// GetByName loads a country by natural key.
func (r *CountryRepository) GetByName(ctx context.Context, name string) (*catalog.Country, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	country, ok := r.byName[name]
	if !ok {
		return nil, catalog.ErrCountryNotFound
	}
	copied := *country
	return &copied, nil
}

// Get loads a country by surrogate id.
func (r *CountryRepository) Get(ctx context.Context, id int64) (*catalog.Country, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, country := range r.byName {
		if country.ID == id {
			copied := *country
			return &copied, nil
		}
	}
	return nil, catalog.ErrCountryNotFound
}
