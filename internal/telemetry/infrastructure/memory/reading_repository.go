package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	telemetry "plantwatch-cloud/internal/telemetry/domain"
)

// ReadingRepository is an in-memory repository for demo/testing.
type ReadingRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*telemetry.Reading
	byDedup map[string]int64
}

// NewReadingRepository constructs a repository.
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{
		byID:    make(map[int64]*telemetry.Reading),
		byDedup: make(map[string]int64),
	}
}

func dedupKey(plantID int64, recordingTaken time.Time) string {
	return fmt.Sprintf("%d|%s", plantID, recordingTaken.UTC().Format(time.RFC3339Nano))
}

// Insert writes the reading unless the (plant, recording timestamp) pair is
// already stored.
func (r *ReadingRepository) Insert(ctx context.Context, reading telemetry.Reading) (bool, error) {
	_ = ctx
	if err := reading.Validate(); err != nil {
		return false, err
	}

	key := dedupKey(reading.PlantID, reading.RecordingTaken)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byDedup[key]; ok {
		return false, nil
	}
	r.nextID++
	reading.ID = r.nextID
	reading.RecordingTaken = reading.RecordingTaken.UTC()
	if !reading.LastWatered.IsZero() {
		reading.LastWatered = reading.LastWatered.UTC()
	}
	r.byID[reading.ID] = &reading
	r.byDedup[key] = reading.ID
	return true, nil
}

// ListWindow returns readings within the half-open window, oldest first.
func (r *ReadingRepository) ListWindow(ctx context.Context, startInclusive, endExclusive time.Time) ([]telemetry.Reading, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var readings []telemetry.Reading
	for _, reading := range r.byID {
		at := reading.RecordingTaken
		if !startInclusive.IsZero() && at.Before(startInclusive) {
			continue
		}
		if !endExclusive.IsZero() && !at.Before(endExclusive) {
			continue
		}
		readings = append(readings, *reading)
	}
	sort.Slice(readings, func(i, j int) bool {
		if readings[i].RecordingTaken.Equal(readings[j].RecordingTaken) {
			return readings[i].ID < readings[j].ID
		}
		return readings[i].RecordingTaken.Before(readings[j].RecordingTaken)
	})
	return readings, nil
}

// DeleteByIDs removes exactly the given rows. Absent ids are a no-op.
func (r *ReadingRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		reading, ok := r.byID[id]
		if !ok {
			continue
		}
		delete(r.byID, id)
		delete(r.byDedup, dedupKey(reading.PlantID, reading.RecordingTaken))
		deleted++
	}
	return deleted, nil
}

// Len reports the number of stored readings.
func (r *ReadingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
