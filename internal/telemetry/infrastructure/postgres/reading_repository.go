package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	telemetry "plantwatch-cloud/internal/telemetry/domain"
)

const (
	defaultReadingsTable = "readings"
	deleteChunkSize      = 500
)

// ReadingRepository is a SQL implementation for readings.
type ReadingRepository struct {
	db    *sql.DB
	table string
}

// NewReadingRepository constructs a repository.
func NewReadingRepository(db *sql.DB, opts ...ReadingOption) *ReadingRepository {
	repo := &ReadingRepository{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ReadingOption configures the repository.
type ReadingOption func(*ReadingRepository)

// WithReadingsTable overrides the default table name.
func WithReadingsTable(table string) ReadingOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Insert writes the reading unless the (plant, recording timestamp) pair is
// already stored. The stored row wins on conflict.
func (r *ReadingRepository) Insert(ctx context.Context, reading telemetry.Reading) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("reading repo: nil db")
	}
	if err := reading.Validate(); err != nil {
		return false, err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	plant_id,
	recording_taken,
	moisture,
	temperature,
	last_watered,
	botanist_id
) VALUES (
	$1, $2, $3, $4, $5, $6
)
ON CONFLICT (plant_id, recording_taken) DO NOTHING`, r.table)

	botanistID := sql.NullInt64{}
	if reading.BotanistID != nil {
		botanistID = sql.NullInt64{Int64: *reading.BotanistID, Valid: true}
	}
	lastWatered := sql.NullTime{}
	if !reading.LastWatered.IsZero() {
		lastWatered = sql.NullTime{Time: reading.LastWatered.UTC(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query,
		reading.PlantID,
		reading.RecordingTaken.UTC(),
		reading.Moisture,
		reading.Temperature,
		lastWatered,
		botanistID,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListWindow returns readings within the half-open window, oldest first.
// Zero bounds widen the window to the full store.
func (r *ReadingRepository) ListWindow(ctx context.Context, startInclusive, endExclusive time.Time) ([]telemetry.Reading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}

	var (
		conds []string
		args  []any
	)
	if !startInclusive.IsZero() {
		args = append(args, startInclusive.UTC())
		conds = append(conds, fmt.Sprintf("recording_taken >= $%d", len(args)))
	}
	if !endExclusive.IsZero() {
		args = append(args, endExclusive.UTC())
		conds = append(conds, fmt.Sprintf("recording_taken < $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
SELECT id, plant_id, recording_taken, moisture, temperature, last_watered, botanist_id
FROM %s
%s
ORDER BY recording_taken, id`, r.table, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []telemetry.Reading
	for rows.Next() {
		var (
			reading     telemetry.Reading
			lastWatered sql.NullTime
			botanistID  sql.NullInt64
		)
		if err := rows.Scan(
			&reading.ID,
			&reading.PlantID,
			&reading.RecordingTaken,
			&reading.Moisture,
			&reading.Temperature,
			&lastWatered,
			&botanistID,
		); err != nil {
			return nil, err
		}
		reading.RecordingTaken = reading.RecordingTaken.UTC()
		if lastWatered.Valid {
			reading.LastWatered = lastWatered.Time.UTC()
		}
		if botanistID.Valid {
			id := botanistID.Int64
			reading.BotanistID = &id
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

// DeleteByIDs removes exactly the given rows, in chunks inside one
// transaction. Absent ids are a no-op, which keeps archive reruns safe.
func (r *ReadingRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("reading repo: nil db")
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	var deleted int64
	for start := 0; start < len(ids); start += deleteChunkSize {
		end := start + deleteChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		placeholders := make([]string, len(chunk))
		args := make([]any, len(chunk))
		for i, id := range chunk {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = id
		}

		query := fmt.Sprintf(`DELETE FROM %s WHERE id IN (%s)`, r.table, strings.Join(placeholders, ", "))
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		deleted += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}
