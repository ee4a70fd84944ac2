package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	catalog "plantwatch-cloud/internal/catalog/domain"
)

const defaultPlantsTable = "plants"

// PlantRepository is a SQL implementation for plants.
type PlantRepository struct {
	db    DBTX
	table string
}

// NewPlantRepository constructs a repository.
func NewPlantRepository(db DBTX, opts ...PlantOption) *PlantRepository {
	repo := &PlantRepository{db: db, table: defaultPlantsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// PlantOption configures the repository.
type PlantOption func(*PlantRepository)

// WithPlantsTable overrides the default table name.
func WithPlantsTable(table string) PlantOption {
	return func(repo *PlantRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Upsert creates the plant on first sight and updates descriptive fields on
// re-sight (plant metadata may legitimately change upstream).
func (r *PlantRepository) Upsert(ctx context.Context, plant catalog.Plant) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("plant repo: nil db")
	}
	if err := plant.Validate(); err != nil {
		return false, err
	}

	exists := fmt.Sprintf(`SELECT 1 FROM %s WHERE id = $1 LIMIT 1`, r.table)

	var one int
	err := r.db.QueryRowContext(ctx, exists, plant.ID).Scan(&one)
	created := errors.Is(err, sql.ErrNoRows)
	if err != nil && !created {
		return false, err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, scientific_name, common_name, location_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id)
DO UPDATE SET
	scientific_name = EXCLUDED.scientific_name,
	common_name = EXCLUDED.common_name,
	location_id = EXCLUDED.location_id`, r.table)

	if _, err := r.db.ExecContext(ctx, query,
		plant.ID,
		plant.ScientificName,
		plant.CommonName,
		plant.LocationID,
	); err != nil {
		return false, err
	}
	return created, nil
}

// Get loads a plant by external id.
func (r *PlantRepository) Get(ctx context.Context, id int64) (*catalog.Plant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("plant repo: nil db")
	}
	if id <= 0 {
		return nil, catalog.ErrInvalidPlantID
	}

	query := fmt.Sprintf(`
SELECT id, scientific_name, common_name, location_id
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var plant catalog.Plant
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&plant.ID,
		&plant.ScientificName,
		&plant.CommonName,
		&plant.LocationID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrPlantNotFound
		}
		return nil, err
	}
	return &plant, nil
}
