package archive

import (
	"context"
	"time"
)

// WorkingRow is one denormalized reading: the full join of
// Reading→Plant→Location→Country and Reading→Botanist. It exists only in
// memory for the duration of an archival run.
type WorkingRow struct {
	ReadingID      int64
	PlantID        int64
	RecordingTaken time.Time
	Moisture       float64
	Temperature    float64
	LastWatered    time.Time

	ScientificName string
	CommonName     string
	City           string
	Country        string
	Latitude       float64
	Longitude      float64

	// Botanist fields are empty when the reading has no botanist reference;
	// the join is outer, such rows are never dropped.
	BotanistName  string
	BotanistEmail string
}

// WorkingSetQuery produces the denormalized working set over a time window.
// Zero bounds select the full store. Pure read, no mutation.
type WorkingSetQuery interface {
	Combine(ctx context.Context, startInclusive, endExclusive time.Time) ([]WorkingRow, error)
}
