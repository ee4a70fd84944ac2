package memory

import (
	"context"
	"fmt"
	"sync"

	catalog "plantwatch-cloud/internal/catalog/domain"
)

// LocationRepository is an in-memory repository for demo/testing.
type LocationRepository struct {
	mu     sync.RWMutex
	nextID int64
	byKey  map[string]*catalog.Location
}

// NewLocationRepository constructs a repository.
func NewLocationRepository() *LocationRepository {
	return &LocationRepository{byKey: make(map[string]*catalog.Location)}
}

func locationKey(city string, countryID int64) string {
	return fmt.Sprintf("%s|%d", city, countryID)
}

// Ensure resolves (city, country) to an id, inserting at most once.
func (r *LocationRepository) Ensure(ctx context.Context, location catalog.Location) (int64, bool, error) {
	_ = ctx
	if err := location.Validate(); err != nil {
		return 0, false, err
	}

	key := locationKey(location.City, location.CountryID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byKey[key]; ok {
		return existing.ID, false, nil
	}
	r.nextID++
	location.ID = r.nextID
	r.byKey[key] = &location
	return location.ID, true, nil
}

// GetByKey loads a location by natural key.
func (r *LocationRepository) GetByKey(ctx context.Context, city string, countryID int64) (*catalog.Location, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	location, ok := r.byKey[locationKey(city, countryID)]
	if !ok {
		return nil, catalog.ErrLocationNotFound
	}
	copied := *location
	return &copied, nil
}

// Get loads a location by surrogate id.
func (r *LocationRepository) Get(ctx context.Context, id int64) (*catalog.Location, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, location := range r.byKey {
		if location.ID == id {
			copied := *location
			return &copied, nil
		}
	}
	return nil, catalog.ErrLocationNotFound
}
