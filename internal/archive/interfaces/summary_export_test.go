package interfaces

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	archive "plantwatch-cloud/internal/archive/domain"
)

func sampleSummaries() (time.Time, []archive.DailySummary) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return day, []archive.DailySummary{
		{PlantID: 7, Day: day, ScientificName: "Dionaea muscipula", CommonName: "Venus flytrap", City: "Cardiff", Country: "Wales", AvgMoisture: 30, AvgTemperature: 20, SampleCount: 24},
		{PlantID: 9, Day: day, CommonName: "Basil", City: "Lisbon", Country: "Portugal", AvgMoisture: 44.5, AvgTemperature: 23.1, SampleCount: 12},
	}
}

func TestBuildSummaryPDF(t *testing.T) {
	day, summaries := sampleSummaries()
	data, err := BuildSummaryPDF(day, summaries)
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", data[:4])
	}
}

func TestBuildSummaryXLSX(t *testing.T) {
	day, summaries := sampleSummaries()
	data, err := BuildSummaryXLSX(day, summaries)
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen xlsx: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("daily summary", "B2")
	if err != nil {
		t.Fatalf("read day cell: %v", err)
	}
	if got != "2025-01-01" {
		t.Fatalf("day cell = %q, want 2025-01-01", got)
	}
	got, err = f.GetCellValue("daily summary", "C5")
	if err != nil {
		t.Fatalf("read name cell: %v", err)
	}
	if got != "Venus flytrap" {
		t.Fatalf("name cell = %q", got)
	}
}
