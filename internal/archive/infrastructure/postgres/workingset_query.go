package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	archive "plantwatch-cloud/internal/archive/domain"
)

// WorkingSetQuery joins readings against the catalog tables into the
// denormalized rows the archival pipeline operates on. All catalog joins are
// outer so a dangling botanist or location reference degrades to empty
// fields rather than dropping the reading.
type WorkingSetQuery struct {
	db *sql.DB
}

// NewWorkingSetQuery constructs the query.
func NewWorkingSetQuery(db *sql.DB) *WorkingSetQuery {
	return &WorkingSetQuery{db: db}
}

// Combine returns the working set over a half-open window, oldest reading
// first. Zero bounds widen the window to the full store.
func (q *WorkingSetQuery) Combine(ctx context.Context, startInclusive, endExclusive time.Time) ([]archive.WorkingRow, error) {
	if q == nil || q.db == nil {
		return nil, errors.New("working set query: nil db")
	}

	var (
		conds []string
		args  []any
	)
	if !startInclusive.IsZero() {
		args = append(args, startInclusive.UTC())
		conds = append(conds, fmt.Sprintf("r.recording_taken >= $%d", len(args)))
	}
	if !endExclusive.IsZero() {
		args = append(args, endExclusive.UTC())
		conds = append(conds, fmt.Sprintf("r.recording_taken < $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
SELECT
	r.id,
	r.plant_id,
	r.recording_taken,
	r.moisture,
	r.temperature,
	r.last_watered,
	COALESCE(p.scientific_name, ''),
	COALESCE(p.common_name, ''),
	COALESCE(l.city, ''),
	COALESCE(c.name, ''),
	COALESCE(l.latitude, 0),
	COALESCE(l.longitude, 0),
	COALESCE(b.name, ''),
	COALESCE(b.email, '')
FROM readings r
LEFT JOIN plants p ON p.id = r.plant_id
LEFT JOIN locations l ON l.id = p.location_id
LEFT JOIN countries c ON c.id = l.country_id
LEFT JOIN botanists b ON b.id = r.botanist_id
%s
ORDER BY r.recording_taken, r.id`, where)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var set []archive.WorkingRow
	for rows.Next() {
		var (
			row         archive.WorkingRow
			lastWatered sql.NullTime
		)
		if err := rows.Scan(
			&row.ReadingID,
			&row.PlantID,
			&row.RecordingTaken,
			&row.Moisture,
			&row.Temperature,
			&lastWatered,
			&row.ScientificName,
			&row.CommonName,
			&row.City,
			&row.Country,
			&row.Latitude,
			&row.Longitude,
			&row.BotanistName,
			&row.BotanistEmail,
		); err != nil {
			return nil, err
		}
		row.RecordingTaken = row.RecordingTaken.UTC()
		if lastWatered.Valid {
			row.LastWatered = lastWatered.Time.UTC()
		}
		set = append(set, row)
	}
	return set, rows.Err()
}
