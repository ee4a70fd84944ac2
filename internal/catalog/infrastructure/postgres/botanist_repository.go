package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	catalog "plantwatch-cloud/internal/catalog/domain"
)

const defaultBotanistsTable = "botanists"

// BotanistRepository is a SQL implementation for botanists.
type BotanistRepository struct {
	db    DBTX
	table string
}

// NewBotanistRepository constructs a repository.
func NewBotanistRepository(db DBTX, opts ...BotanistOption) *BotanistRepository {
	repo := &BotanistRepository{db: db, table: defaultBotanistsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// BotanistOption configures the repository.
type BotanistOption func(*BotanistRepository)

// WithBotanistsTable overrides the default table name.
func WithBotanistsTable(table string) BotanistOption {
	return func(repo *BotanistRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Ensure resolves (name, email) to a surrogate id, inserting at most once.
func (r *BotanistRepository) Ensure(ctx context.Context, botanist catalog.Botanist) (int64, bool, error) {
	if r == nil || r.db == nil {
		return 0, false, errors.New("botanist repo: nil db")
	}
	if err := botanist.Validate(); err != nil {
		return 0, false, err
	}
	botanist.NormalizePhone()

	lookup := fmt.Sprintf(`SELECT id FROM %s WHERE name = $1 AND email = $2 LIMIT 1`, r.table)

	var id int64
	err := r.db.QueryRowContext(ctx, lookup, botanist.Name, botanist.Email).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}

	insert := fmt.Sprintf(`
INSERT INTO %s (name, email, phone)
VALUES ($1, $2, $3)
ON CONFLICT (name, email) DO NOTHING
RETURNING id`, r.table)

	err = r.db.QueryRowContext(ctx, insert, botanist.Name, botanist.Email, botanist.Phone).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}

	if err := r.db.QueryRowContext(ctx, lookup, botanist.Name, botanist.Email).Scan(&id); err != nil {
		return 0, false, err
	}
	return id, false, nil
}

// GetByKey loads a botanist by natural key.
func (r *BotanistRepository) GetByKey(ctx context.Context, name, email string) (*catalog.Botanist, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("botanist repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, email, phone
FROM %s
WHERE name = $1 AND email = $2
LIMIT 1`, r.table)

	var botanist catalog.Botanist
	if err := r.db.QueryRowContext(ctx, query, name, email).Scan(
		&botanist.ID,
		&botanist.Name,
		&botanist.Email,
		&botanist.Phone,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrBotanistNotFound
		}
		return nil, err
	}
	return &botanist, nil
}
