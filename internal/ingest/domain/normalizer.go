package ingest

import "time"

// LocationKey is the natural key of a location before surrogate ids exist.
type LocationKey struct {
	City    string
	Country string
}

// BotanistKey is the natural key of a botanist.
type BotanistKey struct {
	Name  string
	Email string
}

// Location is a normalized location pending id assignment.
type Location struct {
	City      string
	Latitude  float64
	Longitude float64
	Country   string
}

// Plant is a normalized plant; its location is referenced by natural key
// until the write stage resolves surrogate ids.
type Plant struct {
	ID             int64
	ScientificName string
	CommonName     string
	Location       LocationKey
}

// Botanist is a normalized botanist pending id assignment.
type Botanist struct {
	Name  string
	Email string
	Phone string
}

// Reading is a normalized reading. Botanist is nil when the payload carried
// none, an explicit no-reference rather than a fabricated entity.
type Reading struct {
	PlantID        int64
	RecordingTaken time.Time
	Moisture       float64
	Temperature    float64
	LastWatered    time.Time
	Botanist       *BotanistKey
}

// Batch holds the five disjoint entity sets produced from one raw batch.
// Two raw records with the same natural key normalize to the same logical
// entity; first sight wins within the batch.
type Batch struct {
	Countries map[string]struct{}
	Locations map[LocationKey]Location
	Botanists map[BotanistKey]Botanist
	Plants    map[int64]Plant
	Readings  []Reading

	// Skipped counts malformed records excluded from the batch.
	Skipped int
}

// Normalize converts raw flattened records into entity sets keyed by natural
// key. Malformed records (missing plant id or recording timestamp) are
// excluded and counted; processing continues with the remainder.
func Normalize(records []RawRecord) Batch {
	batch := Batch{
		Countries: make(map[string]struct{}),
		Locations: make(map[LocationKey]Location),
		Botanists: make(map[BotanistKey]Botanist),
		Plants:    make(map[int64]Plant),
	}

	for _, record := range records {
		if !record.Valid() {
			batch.Skipped++
			continue
		}

		if record.Country != "" {
			batch.Countries[record.Country] = struct{}{}
		}

		locKey := LocationKey{City: record.City, Country: record.Country}
		if record.City != "" {
			if _, seen := batch.Locations[locKey]; !seen {
				batch.Locations[locKey] = Location{
					City:      record.City,
					Latitude:  record.Latitude,
					Longitude: record.Longitude,
					Country:   record.Country,
				}
			}
		}

		if _, seen := batch.Plants[record.PlantID]; !seen {
			batch.Plants[record.PlantID] = Plant{
				ID:             record.PlantID,
				ScientificName: record.FirstScientificName(),
				CommonName:     record.CommonName,
				Location:       locKey,
			}
		}

		reading := Reading{
			PlantID:        record.PlantID,
			RecordingTaken: record.RecordingTaken.UTC(),
			Moisture:       record.Moisture,
			Temperature:    record.Temperature,
			LastWatered:    record.LastWatered,
		}
		if record.HasBotanist() {
			key := BotanistKey{Name: record.BotanistName, Email: record.BotanistEmail}
			if _, seen := batch.Botanists[key]; !seen {
				batch.Botanists[key] = Botanist{
					Name:  record.BotanistName,
					Email: record.BotanistEmail,
					Phone: record.BotanistPhone,
				}
			}
			reading.Botanist = &key
		}
		batch.Readings = append(batch.Readings, reading)
	}

	return batch
}
