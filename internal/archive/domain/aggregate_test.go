package archive

import (
	"testing"
	"time"
)

func TestAggregateAveragesPerPlantPerDay(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []WorkingRow{
		{ReadingID: 1, PlantID: 7, RecordingTaken: day.Add(8 * time.Hour), Moisture: 20, Temperature: 18, CommonName: "Venus flytrap", City: "Cardiff", Country: "Wales"},
		{ReadingID: 2, PlantID: 7, RecordingTaken: day.Add(12 * time.Hour), Moisture: 30, Temperature: 20, CommonName: "Venus flytrap", City: "Cardiff", Country: "Wales"},
		{ReadingID: 3, PlantID: 7, RecordingTaken: day.Add(16 * time.Hour), Moisture: 40, Temperature: 22, CommonName: "Venus flytrap", City: "Cardiff", Country: "Wales"},
	}

	summaries := Aggregate(rows)
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	s := summaries[0]
	if s.PlantID != 7 || !s.Day.Equal(day) {
		t.Fatalf("unexpected group %d/%s", s.PlantID, s.Day)
	}
	if s.AvgMoisture != 30.0 {
		t.Fatalf("avg moisture = %v, want 30", s.AvgMoisture)
	}
	if s.AvgTemperature != 20.0 {
		t.Fatalf("avg temperature = %v, want 20", s.AvgTemperature)
	}
	if s.SampleCount != 3 {
		t.Fatalf("sample count = %d, want 3", s.SampleCount)
	}
	if s.CommonName != "Venus flytrap" || s.City != "Cardiff" || s.Country != "Wales" {
		t.Fatalf("descriptive fields not carried: %+v", s)
	}
}

func TestAggregateSplitsOnUTCDayBoundary(t *testing.T) {
	rows := []WorkingRow{
		{ReadingID: 1, PlantID: 3, RecordingTaken: time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC), Moisture: 10, Temperature: 10},
		{ReadingID: 2, PlantID: 3, RecordingTaken: time.Date(2025, 1, 2, 0, 1, 0, 0, time.UTC), Moisture: 50, Temperature: 30},
	}

	summaries := Aggregate(rows)
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(summaries))
	}
	if summaries[0].AvgMoisture != 10 || summaries[1].AvgMoisture != 50 {
		t.Fatalf("boundary readings merged: %+v", summaries)
	}
}

func TestAggregateNonUTCTimestampsFoldIntoUTCDay(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	rows := []WorkingRow{
		// 2025-01-01 22:00 EST is 2025-01-02 03:00 UTC.
		{ReadingID: 1, PlantID: 3, RecordingTaken: time.Date(2025, 1, 1, 22, 0, 0, 0, est), Moisture: 10, Temperature: 10},
		{ReadingID: 2, PlantID: 3, RecordingTaken: time.Date(2025, 1, 2, 3, 30, 0, 0, time.UTC), Moisture: 30, Temperature: 20},
	}

	summaries := Aggregate(rows)
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	if summaries[0].SampleCount != 2 {
		t.Fatalf("sample count = %d, want 2", summaries[0].SampleCount)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Fatalf("summaries = %d, want 0", len(got))
	}
}

func TestAggregateOrdering(t *testing.T) {
	rows := []WorkingRow{
		{ReadingID: 1, PlantID: 9, RecordingTaken: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), Moisture: 1, Temperature: 1},
		{ReadingID: 2, PlantID: 2, RecordingTaken: time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC), Moisture: 1, Temperature: 1},
		{ReadingID: 3, PlantID: 2, RecordingTaken: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), Moisture: 1, Temperature: 1},
	}

	summaries := Aggregate(rows)
	if len(summaries) != 3 {
		t.Fatalf("summaries = %d, want 3", len(summaries))
	}
	if summaries[0].PlantID != 2 || summaries[1].PlantID != 2 || summaries[2].PlantID != 9 {
		t.Fatalf("plant order wrong: %+v", summaries)
	}
	if !summaries[0].Day.Before(summaries[1].Day) {
		t.Fatalf("day order wrong within plant: %+v", summaries)
	}
}
