package memory

import (
	"context"
	"time"

	archive "plantwatch-cloud/internal/archive/domain"
	catalogmem "plantwatch-cloud/internal/catalog/infrastructure/memory"
	telemetrymem "plantwatch-cloud/internal/telemetry/infrastructure/memory"
)

// WorkingSetQuery joins the in-memory repositories into denormalized rows,
// mirroring the outer-join semantics of the SQL implementation: a missing
// catalog reference yields empty fields, never a dropped reading.
type WorkingSetQuery struct {
	readings  *telemetrymem.ReadingRepository
	plants    *catalogmem.PlantRepository
	locations *catalogmem.LocationRepository
	countries *catalogmem.CountryRepository
	botanists *catalogmem.BotanistRepository
}

// NewWorkingSetQuery constructs the query over the given repositories.
func NewWorkingSetQuery(
	readings *telemetrymem.ReadingRepository,
	plants *catalogmem.PlantRepository,
	locations *catalogmem.LocationRepository,
	countries *catalogmem.CountryRepository,
	botanists *catalogmem.BotanistRepository,
) *WorkingSetQuery {
	return &WorkingSetQuery{
		readings:  readings,
		plants:    plants,
		locations: locations,
		countries: countries,
		botanists: botanists,
	}
}

// Combine returns the working set over a half-open window, oldest first.
func (q *WorkingSetQuery) Combine(ctx context.Context, startInclusive, endExclusive time.Time) ([]archive.WorkingRow, error) {
	readings, err := q.readings.ListWindow(ctx, startInclusive, endExclusive)
	if err != nil {
		return nil, err
	}

	set := make([]archive.WorkingRow, 0, len(readings))
	for _, reading := range readings {
		row := archive.WorkingRow{
			ReadingID:      reading.ID,
			PlantID:        reading.PlantID,
			RecordingTaken: reading.RecordingTaken,
			Moisture:       reading.Moisture,
			Temperature:    reading.Temperature,
			LastWatered:    reading.LastWatered,
		}
		if plant, err := q.plants.Get(ctx, reading.PlantID); err == nil {
			row.ScientificName = plant.ScientificName
			row.CommonName = plant.CommonName
			if location, err := q.locations.Get(ctx, plant.LocationID); err == nil {
				row.City = location.City
				row.Latitude = location.Latitude
				row.Longitude = location.Longitude
				if country, err := q.countries.Get(ctx, location.CountryID); err == nil {
					row.Country = country.Name
				}
			}
		}
		if reading.BotanistID != nil {
			if botanist, err := q.botanists.Get(ctx, *reading.BotanistID); err == nil {
				row.BotanistName = botanist.Name
				row.BotanistEmail = botanist.Email
			}
		}
		set = append(set, row)
	}
	return set, nil
}
