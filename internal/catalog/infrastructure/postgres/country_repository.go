package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	catalog "plantwatch-cloud/internal/catalog/domain"
)

const defaultCountriesTable = "countries"

// CountryRepository is a SQL implementation for countries.
type CountryRepository struct {
	db    DBTX
	table string
}

// NewCountryRepository constructs a repository.
func NewCountryRepository(db DBTX, opts ...CountryOption) *CountryRepository {
	repo := &CountryRepository{db: db, table: defaultCountriesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// CountryOption configures the repository.
type CountryOption func(*CountryRepository)

// WithCountriesTable overrides the default table name.
func WithCountriesTable(table string) CountryOption {
	return func(repo *CountryRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Ensure resolves a country name to its surrogate id, inserting at most once.
func (r *CountryRepository) Ensure(ctx context.Context, country catalog.Country) (int64, bool, error) {
	if r == nil || r.db == nil {
		return 0, false, errors.New("country repo: nil db")
	}
	if err := country.Validate(); err != nil {
		return 0, false, err
	}

	lookup := fmt.Sprintf(`SELECT id FROM %s WHERE name = $1 LIMIT 1`, r.table)

	var id int64
	err := r.db.QueryRowContext(ctx, lookup, country.Name).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}

	insert := fmt.Sprintf(`
INSERT INTO %s (name)
VALUES ($1)
ON CONFLICT (name) DO NOTHING
RETURNING id`, r.table)

	err = r.db.QueryRowContext(ctx, insert, country.Name).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}

	// Lost an insert race; the row exists now.
	if err := r.db.QueryRowContext(ctx, lookup, country.Name).Scan(&id); err != nil {
		return 0, false, err
	}
	return id, false, nil
}

// GetByName loads a country by natural key.
func (r *CountryRepository) GetByName(ctx context.Context, name string) (*catalog.Country, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("country repo: nil db")
	}

	query := fmt.Sprintf(`SELECT id, name FROM %s WHERE name = $1 LIMIT 1`, r.table)

	var country catalog.Country
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&country.ID, &country.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrCountryNotFound
		}
		return nil, err
	}
	return &country, nil
}
