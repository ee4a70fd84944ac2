package telemetry

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrMissingPlantRef is returned when a reading lacks a plant reference.
	ErrMissingPlantRef = errors.New("telemetry: reading missing plant reference")
	// ErrZeroRecordingTime is returned when a reading has no recording timestamp.
	ErrZeroRecordingTime = errors.New("telemetry: zero recording timestamp")
)

// Reading is one sensor measurement for a plant. Immutable once written,
// except for deletion by the archive pipeline. The pair
// (PlantID, RecordingTaken) is the natural dedup key; ID is the surrogate
// identity assigned by the store.
type Reading struct {
	ID             int64
	PlantID        int64
	RecordingTaken time.Time
	Moisture       float64
	Temperature    float64
	LastWatered    time.Time
	BotanistID     *int64
}

// Validate checks required fields.
func (r Reading) Validate() error {
	if r.PlantID <= 0 {
		return ErrMissingPlantRef
	}
	if r.RecordingTaken.IsZero() {
		return ErrZeroRecordingTime
	}
	return nil
}

// ReadingRepository persists readings with natural-key deduplication.
type ReadingRepository interface {
	// Insert writes the reading unless a row with the same
	// (plant, recording timestamp) already exists. The stored row wins on
	// conflict; the incoming reading is dropped and inserted=false reported.
	Insert(ctx context.Context, reading Reading) (inserted bool, err error)
	// ListWindow returns readings with startInclusive <= recording_taken <
	// endExclusive. Zero bounds mean the full store.
	ListWindow(ctx context.Context, startInclusive, endExclusive time.Time) ([]Reading, error)
	// DeleteByIDs removes exactly the given reading rows. Missing ids are a
	// no-op. Returns the number of rows actually deleted.
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}
