package archive

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// csvHeader fixes the archive wire format. Readers of archived objects
// depend on column order, so changes here are format changes.
var csvHeader = []string{
	"plant_id",
	"day",
	"scientific_name",
	"common_name",
	"city",
	"country",
	"avg_moisture",
	"avg_temperature",
	"sample_count",
}

// SummaryKey returns the deterministic object key for one archived day.
// Reruns over the same day overwrite the same object.
func SummaryKey(day time.Time) string {
	return day.UTC().Format("2006/01/02") + "/summary.csv"
}

// ExcludedKey returns the object key for a day's outlier audit trail.
func ExcludedKey(day time.Time) string {
	return day.UTC().Format("2006/01/02") + "/excluded.csv"
}

// excludedHeader is the audit-trail wire format for rows the outlier filter
// removed. Raw values are kept so an excluded reading stays reconstructable.
var excludedHeader = []string{
	"reading_id",
	"plant_id",
	"recording_taken",
	"moisture",
	"temperature",
}

// EncodeExcludedCSV renders excluded readings as the audit CSV object.
func EncodeExcludedCSV(rows []WorkingRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(excludedHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.ReadingID, 10),
			strconv.FormatInt(row.PlantID, 10),
			row.RecordingTaken.UTC().Format(time.RFC3339),
			strconv.FormatFloat(row.Moisture, 'f', -1, 64),
			strconv.FormatFloat(row.Temperature, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeSummaryCSV renders daily summaries as the archival CSV object.
func EncodeSummaryCSV(summaries []DailySummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, s := range summaries {
		record := []string{
			strconv.FormatInt(s.PlantID, 10),
			s.Day.UTC().Format("2006-01-02"),
			s.ScientificName,
			s.CommonName,
			s.City,
			s.Country,
			strconv.FormatFloat(s.AvgMoisture, 'f', -1, 64),
			strconv.FormatFloat(s.AvgTemperature, 'f', -1, 64),
			strconv.Itoa(s.SampleCount),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSummaryCSV parses an archived CSV object back into summaries.
func DecodeSummaryCSV(data []byte) ([]DailySummary, error) {
	r := csv.NewReader(bytes.NewReader(data))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("summary csv: missing header")
	}
	if len(rows[0]) != len(csvHeader) {
		return nil, fmt.Errorf("summary csv: header has %d columns, want %d", len(rows[0]), len(csvHeader))
	}

	summaries := make([]DailySummary, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		plantID, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("summary csv: line %d plant_id: %w", line, err)
		}
		day, err := time.ParseInLocation("2006-01-02", row[1], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("summary csv: line %d day: %w", line, err)
		}
		moisture, err := strconv.ParseFloat(row[6], 64)
		if err != nil {
			return nil, fmt.Errorf("summary csv: line %d avg_moisture: %w", line, err)
		}
		temperature, err := strconv.ParseFloat(row[7], 64)
		if err != nil {
			return nil, fmt.Errorf("summary csv: line %d avg_temperature: %w", line, err)
		}
		count, err := strconv.Atoi(row[8])
		if err != nil {
			return nil, fmt.Errorf("summary csv: line %d sample_count: %w", line, err)
		}
		summaries = append(summaries, DailySummary{
			PlantID:        plantID,
			Day:            day,
			ScientificName: row[2],
			CommonName:     row[3],
			City:           row[4],
			Country:        row[5],
			AvgMoisture:    moisture,
			AvgTemperature: temperature,
			SampleCount:    count,
		})
	}
	return summaries, nil
}
