package memory

import (
	"context"
	"fmt"
	"sync"

	catalog "plantwatch-cloud/internal/catalog/domain"
)

// BotanistRepository is an in-memory repository for demo/testing.
type BotanistRepository struct {
	mu     sync.RWMutex
	nextID int64
	byKey  map[string]*catalog.Botanist
}

// NewBotanistRepository constructs a repository.
func NewBotanistRepository() *BotanistRepository {
	return &BotanistRepository{byKey: make(map[string]*catalog.Botanist)}
}

func botanistKey(name, email string) string {
	return fmt.Sprintf("%s|%s", name, email)
}

// Ensure resolves (name, email) to an id, inserting at most once.
func (r *BotanistRepository) Ensure(ctx context.Context, botanist catalog.Botanist) (int64, bool, error) {
	_ = ctx
	if err := botanist.Validate(); err != nil {
		return 0, false, err
	}
	botanist.NormalizePhone()

	key := botanistKey(botanist.Name, botanist.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byKey[key]; ok {
		return existing.ID, false, nil
	}
	r.nextID++
	botanist.ID = r.nextID
	r.byKey[key] = &botanist
	return botanist.ID, true, nil
}

// GetByKey loads a botanist by natural key.
func (r *BotanistRepository) GetByKey(ctx context.Context, name, email string) (*catalog.Botanist, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	botanist, ok := r.byKey[botanistKey(name, email)]
	if !ok {
		return nil, catalog.ErrBotanistNotFound
	}
	copied := *botanist
	return &copied, nil
}

// Get loads a botanist by surrogate id.
func (r *BotanistRepository) Get(ctx context.Context, id int64) (*catalog.Botanist, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, botanist := range r.byKey {
		if botanist.ID == id {
			copied := *botanist
			return &copied, nil
		}
	}
	return nil, catalog.ErrBotanistNotFound
}
