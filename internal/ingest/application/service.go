package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	catalog "plantwatch-cloud/internal/catalog/domain"
	ingest "plantwatch-cloud/internal/ingest/domain"
	telemetry "plantwatch-cloud/internal/telemetry/domain"
)

// Report carries per-stage counts for one ingest run so an operator can
// diagnose partial completion without re-deriving it from the store.
type Report struct {
	RunID string

	CountriesCreated int
	LocationsCreated int
	BotanistsCreated int
	PlantsCreated    int
	ReadingsInserted int

	ValidationSkipped int // malformed raw records
	DuplicatesSkipped int // idempotence outcome, not an error
	IntegrityErrors   int // entity writes skipped for missing parents
}

// Service runs the ingest pipeline: normalize a raw batch, then upsert the
// entity sets in foreign-key order. Surrogate ids are assigned at write time
// via natural-key resolution, so re-ingesting the same batch is idempotent.
type Service struct {
	countries catalog.CountryRepository
	locations catalog.LocationRepository
	botanists catalog.BotanistRepository
	plants    catalog.PlantRepository
	readings  telemetry.ReadingRepository

	logger       *log.Logger
	storeTimeout time.Duration
}

// NewService constructs an ingest service.
func NewService(
	countries catalog.CountryRepository,
	locations catalog.LocationRepository,
	botanists catalog.BotanistRepository,
	plants catalog.PlantRepository,
	readings telemetry.ReadingRepository,
	logger *log.Logger,
	storeTimeout time.Duration,
) (*Service, error) {
	if countries == nil || locations == nil || botanists == nil || plants == nil || readings == nil {
		return nil, errors.New("ingest: nil repository")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		countries:    countries,
		locations:    locations,
		botanists:    botanists,
		plants:       plants,
		readings:     readings,
		logger:       logger,
		storeTimeout: storeTimeout,
	}, nil
}

// Run ingests one raw batch. A malformed record or an unresolvable reference
// never fails the batch; it is counted and the remainder proceeds. A store
// error does fail the run, and the partial report is returned with it.
func (s *Service) Run(ctx context.Context, records []ingest.RawRecord) (Report, error) {
	report := Report{RunID: uuid.NewString()}

	batch := ingest.Normalize(records)
	report.ValidationSkipped = batch.Skipped

	countryIDs := make(map[string]int64, len(batch.Countries))
	for name := range batch.Countries {
		id, created, err := s.ensureCountry(ctx, name)
		if err != nil {
			return report, err
		}
		if created {
			report.CountriesCreated++
		}
		countryIDs[name] = id
	}

	locationIDs := make(map[ingest.LocationKey]int64, len(batch.Locations))
	for key, loc := range batch.Locations {
		countryID, ok := countryIDs[loc.Country]
		if !ok {
			report.IntegrityErrors++
			continue
		}
		id, created, err := s.ensureLocation(ctx, catalog.Location{
			City:      loc.City,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			CountryID: countryID,
		})
		if err != nil {
			return report, err
		}
		if created {
			report.LocationsCreated++
		}
		locationIDs[key] = id
	}

	plantResolved := make(map[int64]bool, len(batch.Plants))
	for id, plant := range batch.Plants {
		locationID, ok := locationIDs[plant.Location]
		if !ok {
			report.IntegrityErrors++
			continue
		}
		created, err := s.upsertPlant(ctx, catalog.Plant{
			ID:             plant.ID,
			ScientificName: plant.ScientificName,
			CommonName:     plant.CommonName,
			LocationID:     locationID,
		})
		if err != nil {
			return report, err
		}
		if created {
			report.PlantsCreated++
		}
		plantResolved[id] = true
	}

	botanistIDs := make(map[ingest.BotanistKey]int64, len(batch.Botanists))
	for key, botanist := range batch.Botanists {
		id, created, err := s.ensureBotanist(ctx, catalog.Botanist{
			Name:  botanist.Name,
			Email: botanist.Email,
			Phone: botanist.Phone,
		})
		if err != nil {
			return report, err
		}
		if created {
			report.BotanistsCreated++
		}
		botanistIDs[key] = id
	}

	for _, reading := range batch.Readings {
		if !plantResolved[reading.PlantID] {
			report.IntegrityErrors++
			continue
		}
		row := telemetry.Reading{
			PlantID:        reading.PlantID,
			RecordingTaken: reading.RecordingTaken,
			Moisture:       reading.Moisture,
			Temperature:    reading.Temperature,
			LastWatered:    reading.LastWatered,
		}
		if reading.Botanist != nil {
			botanistID, ok := botanistIDs[*reading.Botanist]
			if !ok {
				report.IntegrityErrors++
				continue
			}
			row.BotanistID = &botanistID
		}
		inserted, err := s.insertReading(ctx, row)
		if err != nil {
			return report, err
		}
		if inserted {
			report.ReadingsInserted++
		} else {
			report.DuplicatesSkipped++
		}
	}

	s.logger.Printf("ingest %s: countries=%d locations=%d plants=%d botanists=%d readings=%d dup=%d skipped=%d integrity=%d",
		report.RunID,
		report.CountriesCreated,
		report.LocationsCreated,
		report.PlantsCreated,
		report.BotanistsCreated,
		report.ReadingsInserted,
		report.DuplicatesSkipped,
		report.ValidationSkipped,
		report.IntegrityErrors,
	)
	return report, nil
}

func (s *Service) ensureCountry(ctx context.Context, name string) (int64, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.countries.Ensure(ctx, catalog.Country{Name: name})
}

func (s *Service) ensureLocation(ctx context.Context, location catalog.Location) (int64, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.locations.Ensure(ctx, location)
}

func (s *Service) ensureBotanist(ctx context.Context, botanist catalog.Botanist) (int64, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.botanists.Ensure(ctx, botanist)
}

func (s *Service) upsertPlant(ctx context.Context, plant catalog.Plant) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.plants.Upsert(ctx, plant)
}

func (s *Service) insertReading(ctx context.Context, reading telemetry.Reading) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.readings.Insert(ctx, reading)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout > 0 {
		return context.WithTimeout(ctx, s.storeTimeout)
	}
	return ctx, func() {}
}
