package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	archive "plantwatch-cloud/internal/archive/domain"
)

// BuildSummaryPDF renders a minimal PDF for one archived day.
func BuildSummaryPDF(day time.Time, summaries []archive.DailySummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Plant Telemetry Archive")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Day: %s", day.UTC().Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Plants: %d", len(summaries)))
	pdf.Ln(8)

	// Summary table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(18, 6, "Plant", "1", 0, "C", false, 0, "")
	pdf.CellFormat(52, 6, "Name", "1", 0, "C", false, 0, "")
	pdf.CellFormat(42, 6, "Location", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Moisture", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Temp (C)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Samples", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, s := range summaries {
		name := s.CommonName
		if name == "" {
			name = s.ScientificName
		}
		location := s.City
		if s.Country != "" {
			location = fmt.Sprintf("%s, %s", s.City, s.Country)
		}
		pdf.CellFormat(18, 6, fmt.Sprintf("%d", s.PlantID), "1", 0, "R", false, 0, "")
		pdf.CellFormat(52, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(42, 6, location, "1", 0, "L", false, 0, "")
		pdf.CellFormat(28, 6, fmt.Sprintf("%.2f", s.AvgMoisture), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, fmt.Sprintf("%.2f", s.AvgTemperature), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", s.SampleCount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSummaryXLSX renders a minimal XLSX for one archived day.
func BuildSummaryXLSX(day time.Time, summaries []archive.DailySummary) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "daily summary"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Plant Telemetry Archive")
	_ = f.SetCellValue(sheet, "A2", "Day")
	_ = f.SetCellValue(sheet, "B2", day.UTC().Format("2006-01-02"))

	_ = f.SetCellValue(sheet, "A4", "Plant")
	_ = f.SetCellValue(sheet, "B4", "Scientific Name")
	_ = f.SetCellValue(sheet, "C4", "Common Name")
	_ = f.SetCellValue(sheet, "D4", "City")
	_ = f.SetCellValue(sheet, "E4", "Country")
	_ = f.SetCellValue(sheet, "F4", "Avg Moisture")
	_ = f.SetCellValue(sheet, "G4", "Avg Temperature")
	_ = f.SetCellValue(sheet, "H4", "Samples")
	for i, s := range summaries {
		row := i + 5
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), s.PlantID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), s.ScientificName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), s.CommonName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), s.City)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), s.Country)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), s.AvgMoisture)
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), s.AvgTemperature)
		_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", row), s.SampleCount)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
