package ingest

import "time"

// RawRecord is one flattened payload from the upstream source: plant,
// location, country, botanist, and reading fields travel together.
type RawRecord struct {
	PlantID        int64
	CommonName     string
	ScientificName []string // upstream sends a list; first element wins
	Moisture       float64
	Temperature    float64
	LastWatered    time.Time
	RecordingTaken time.Time
	BotanistName   string
	BotanistEmail  string
	BotanistPhone  string
	City           string
	Country        string
	Latitude       float64
	Longitude      float64
}

// Valid reports whether the record carries the required fields. Records
// failing this are skipped and counted, never fail the batch.
func (r RawRecord) Valid() bool {
	return r.PlantID > 0 && !r.RecordingTaken.IsZero()
}

// HasBotanist reports whether the payload included botanist info.
func (r RawRecord) HasBotanist() bool {
	return r.BotanistName != "" || r.BotanistEmail != ""
}

// FirstScientificName collapses the upstream list form to a single value.
func (r RawRecord) FirstScientificName() string {
	if len(r.ScientificName) == 0 {
		return ""
	}
	return r.ScientificName[0]
}
