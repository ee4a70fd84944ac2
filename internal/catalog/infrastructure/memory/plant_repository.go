package memory

import (
	"context"
	"sync"

	catalog "plantwatch-cloud/internal/catalog/domain"
)

// PlantRepository is an in-memory repository for demo/testing.
type PlantRepository struct {
	mu   sync.RWMutex
	byID map[int64]*catalog.Plant
}

// NewPlantRepository constructs a repository.
func NewPlantRepository() *PlantRepository {
	return &PlantRepository{byID: make(map[int64]*catalog.Plant)}
}

// Upsert creates on first sight and updates descriptive fields on re-sight.
func (r *PlantRepository) Upsert(ctx context.Context, plant catalog.Plant) (bool, error) {
	_ = ctx
	if err := plant.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.byID[plant.ID]
	r.byID[plant.ID] = &plant
	return !exists, nil
}

// Get loads a plant by external id.
func (r *PlantRepository) Get(ctx context.Context, id int64) (*catalog.Plant, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	plant, ok := r.byID[id]
	if !ok {
		return nil, catalog.ErrPlantNotFound
	}
	copied := *plant
	return &copied, nil
}
