package catalog

import "context"

// Plant identity is the numeric id assigned by the upstream source, stable
// across ingestion runs. Descriptive fields may legitimately change over
// time (a renamed plant), so re-sight updates them in place.
type Plant struct {
	ID             int64
	ScientificName string
	CommonName     string
	LocationID     int64
}

// Validate checks identity and references.
func (p Plant) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidPlantID
	}
	if p.LocationID <= 0 {
		return ErrMissingLocationRef
	}
	return nil
}

// PlantRepository persists plants keyed by external id.
type PlantRepository interface {
	// Upsert creates the plant on first sight and updates descriptive fields
	// on subsequent sight. Returns whether a new row was created.
	Upsert(ctx context.Context, plant Plant) (created bool, err error)
	// Get loads a plant by external id. Returns ErrPlantNotFound on miss.
	Get(ctx context.Context, id int64) (*Plant, error)
}
