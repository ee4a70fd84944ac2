package archive

import (
	"sort"
	"time"
)

// DailySummary is one aggregate row: averages for a single plant over a
// single UTC calendar day, carrying the descriptive fields needed to read
// the archive without the relational store.
type DailySummary struct {
	PlantID        int64
	Day            time.Time
	ScientificName string
	CommonName     string
	City           string
	Country        string
	AvgMoisture    float64
	AvgTemperature float64
	SampleCount    int
}

type dayKey struct {
	plantID int64
	day     time.Time
}

// Aggregate groups surviving rows by (plant, UTC day) and averages moisture
// and temperature per group. A group with no rows produces no summary.
// Output is ordered by plant then day.
func Aggregate(rows []WorkingRow) []DailySummary {
	groups := make(map[dayKey]*DailySummary)
	for _, row := range rows {
		t := row.RecordingTaken.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		key := dayKey{plantID: row.PlantID, day: day}
		summary, ok := groups[key]
		if !ok {
			summary = &DailySummary{
				PlantID:        row.PlantID,
				Day:            day,
				ScientificName: row.ScientificName,
				CommonName:     row.CommonName,
				City:           row.City,
				Country:        row.Country,
			}
			groups[key] = summary
		}
		summary.AvgMoisture += row.Moisture
		summary.AvgTemperature += row.Temperature
		summary.SampleCount++
	}

	out := make([]DailySummary, 0, len(groups))
	for _, summary := range groups {
		n := float64(summary.SampleCount)
		summary.AvgMoisture /= n
		summary.AvgTemperature /= n
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlantID != out[j].PlantID {
			return out[i].PlantID < out[j].PlantID
		}
		return out[i].Day.Before(out[j].Day)
	})
	return out
}
