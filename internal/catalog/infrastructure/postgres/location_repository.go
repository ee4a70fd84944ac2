package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	catalog "plantwatch-cloud/internal/catalog/domain"
)

const defaultLocationsTable = "locations"

// LocationRepository is a SQL implementation for locations.
type LocationRepository struct {
	db    DBTX
	table string
}

// NewLocationRepository constructs a repository.
func NewLocationRepository(db DBTX, opts ...LocationOption) *LocationRepository {
	repo := &LocationRepository{db: db, table: defaultLocationsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// LocationOption configures the repository.
type LocationOption func(*LocationRepository)

// WithLocationsTable overrides the default table name.
func WithLocationsTable(table string) LocationOption {
	return func(repo *LocationRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Ensure resolves (city, country) to a surrogate id, inserting at most once.
func (r *LocationRepository) Ensure(ctx context.Context, location catalog.Location) (int64, bool, error) {
	if r == nil || r.db == nil {
		return 0, false, errors.New("location repo: nil db")
	}
	if err := location.Validate(); err != nil {
		return 0, false, err
	}

	lookup := fmt.Sprintf(`SELECT id FROM %s WHERE city = $1 AND country_id = $2 LIMIT 1`, r.table)

	var id int64
	err := r.db.QueryRowContext(ctx, lookup, location.City, location.CountryID).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}

	insert := fmt.Sprintf(`
INSERT INTO %s (city, latitude, longitude, country_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (city, country_id) DO NOTHING
RETURNING id`, r.table)

	err = r.db.QueryRowContext(ctx, insert,
		location.City,
		location.Latitude,
		location.Longitude,
		location.CountryID,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}

	if err := r.db.QueryRowContext(ctx, lookup, location.City, location.CountryID).Scan(&id); err != nil {
		return 0, false, err
	}
	return id, false, nil
}

// GetByKey loads a location by natural key.
func (r *LocationRepository) GetByKey(ctx context.Context, city string, countryID int64) (*catalog.Location, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("location repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, city, latitude, longitude, country_id
FROM %s
WHERE city = $1 AND country_id = $2
LIMIT 1`, r.table)

	var location catalog.Location
	if err := r.db.QueryRowContext(ctx, query, city, countryID).Scan(
		&location.ID,
		&location.City,
		&location.Latitude,
		&location.Longitude,
		&location.CountryID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrLocationNotFound
		}
		return nil, err
	}
	return &location, nil
}
