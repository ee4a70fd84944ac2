package application

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	archive "plantwatch-cloud/internal/archive/domain"
	archivemem "plantwatch-cloud/internal/archive/infrastructure/memory"
	"plantwatch-cloud/internal/blob"
	catalog "plantwatch-cloud/internal/catalog/domain"
	catalogmem "plantwatch-cloud/internal/catalog/infrastructure/memory"
	"plantwatch-cloud/internal/retry"
	telemetry "plantwatch-cloud/internal/telemetry/domain"
	telemetrymem "plantwatch-cloud/internal/telemetry/infrastructure/memory"
)

type fixture struct {
	readings *telemetrymem.ReadingRepository
	working  *archivemem.WorkingSetQuery
	store    *blob.MemoryStore
}

// newFixture seeds one plant in Cardiff and returns wired memory backends.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	countries := catalogmem.NewCountryRepository()
	locations := catalogmem.NewLocationRepository()
	botanists := catalogmem.NewBotanistRepository()
	plants := catalogmem.NewPlantRepository()
	readings := telemetrymem.NewReadingRepository()

	countryID, _, err := countries.Ensure(ctx, catalog.Country{Name: "Wales"})
	if err != nil {
		t.Fatalf("ensure country: %v", err)
	}
	locationID, _, err := locations.Ensure(ctx, catalog.Location{City: "Cardiff", Latitude: 51.48, Longitude: -3.18, CountryID: countryID})
	if err != nil {
		t.Fatalf("ensure location: %v", err)
	}
	if _, err := plants.Upsert(ctx, catalog.Plant{ID: 7, ScientificName: "Dionaea muscipula", CommonName: "Venus flytrap", LocationID: locationID}); err != nil {
		t.Fatalf("upsert plant: %v", err)
	}

	return &fixture{
		readings: readings,
		working:  archivemem.NewWorkingSetQuery(readings, plants, locations, countries, botanists),
		store:    blob.NewMemoryStore(),
	}
}

func (f *fixture) seedReadings(t *testing.T, moistures []float64) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	for i, m := range moistures {
		inserted, err := f.readings.Insert(ctx, telemetry.Reading{
			PlantID:        7,
			RecordingTaken: base.Add(time.Duration(i) * time.Minute),
			Moisture:       m,
			Temperature:    20,
		})
		if err != nil {
			t.Fatalf("insert reading: %v", err)
		}
		if !inserted {
			t.Fatalf("reading %d not inserted", i)
		}
	}
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 2, MinInterval: time.Millisecond, MaxInterval: time.Millisecond}
}

func TestRunArchivesAndPrunes(t *testing.T) {
	f := newFixture(t)
	f.seedReadings(t, []float64{20, 30, 40})

	runner, err := NewRunner(f.working, f.readings, f.store, log.New(io.Discard, "", 0), WithRetryPolicy(fastPolicy()))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	report, err := runner.Run(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.ReadingsCombined != 3 || report.OutliersExcluded != 0 {
		t.Fatalf("combined = %d excluded = %d, want 3 and 0", report.ReadingsCombined, report.OutliersExcluded)
	}
	if len(report.ObjectsWritten) != 1 || report.ObjectsWritten[0] != "2025/01/01/summary.csv" {
		t.Fatalf("objects = %v, want one deterministic key", report.ObjectsWritten)
	}
	if report.ReadingsDeleted != 3 || f.readings.Len() != 0 {
		t.Fatalf("deleted = %d remaining = %d, want 3 and 0", report.ReadingsDeleted, f.readings.Len())
	}

	_, rc, err := f.store.Get(context.Background(), "2025/01/01/summary.csv")
	if err != nil {
		t.Fatalf("get object: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	summaries, err := archive.DecodeSummaryCSV(data)
	if err != nil {
		t.Fatalf("decode object: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	s := summaries[0]
	if s.PlantID != 7 || s.AvgMoisture != 30 || s.AvgTemperature != 20 || s.SampleCount != 3 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.City != "Cardiff" || s.Country != "Wales" || s.CommonName != "Venus flytrap" {
		t.Fatalf("descriptive fields missing: %+v", s)
	}
}

func TestRunPrunesOutliersWithoutAggregatingThem(t *testing.T) {
	f := newFixture(t)
	moistures := make([]float64, 0, 16)
	for i := 0; i < 15; i++ {
		moistures = append(moistures, 30+float64(i%3-1))
	}
	moistures = append(moistures, 95)
	f.seedReadings(t, moistures)

	runner, err := NewRunner(f.working, f.readings, f.store, log.New(io.Discard, "", 0), WithRetryPolicy(fastPolicy()))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	report, err := runner.Run(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.OutliersExcluded != 1 {
		t.Fatalf("excluded = %d, want 1", report.OutliersExcluded)
	}
	// The outlier is consumed by the run even though it is not aggregated.
	if report.ReadingsDeleted != 16 || f.readings.Len() != 0 {
		t.Fatalf("deleted = %d remaining = %d, want 16 and 0", report.ReadingsDeleted, f.readings.Len())
	}

	// The excluded reading lands in the day's audit object.
	_, rc, err := f.store.Get(context.Background(), "2025/01/01/excluded.csv")
	if err != nil {
		t.Fatalf("get excluded object: %v", err)
	}
	audit, _ := io.ReadAll(rc)
	rc.Close()
	if !strings.Contains(string(audit), ",95") {
		t.Fatalf("audit object missing outlier row: %q", audit)
	}

	_, rc, err = f.store.Get(context.Background(), "2025/01/01/summary.csv")
	if err != nil {
		t.Fatalf("get object: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	summaries, err := archive.DecodeSummaryCSV(data)
	if err != nil {
		t.Fatalf("decode object: %v", err)
	}
	if summaries[0].SampleCount != 15 {
		t.Fatalf("sample count = %d, want 15", summaries[0].SampleCount)
	}
}

func TestRunEmptyWindow(t *testing.T) {
	f := newFixture(t)

	runner, err := NewRunner(f.working, f.readings, f.store, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	report, err := runner.Run(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.ReadingsCombined != 0 || len(report.ObjectsWritten) != 0 || report.ReadingsDeleted != 0 {
		t.Fatalf("empty run touched something: %+v", report)
	}
}

func TestRunWindowBoundsExcludeOutsideReadings(t *testing.T) {
	f := newFixture(t)
	f.seedReadings(t, []float64{20, 30, 40})
	// One reading on the next day, outside the window.
	if _, err := f.readings.Insert(context.Background(), telemetry.Reading{
		PlantID:        7,
		RecordingTaken: time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC),
		Moisture:       50,
		Temperature:    21,
	}); err != nil {
		t.Fatalf("insert reading: %v", err)
	}

	runner, err := NewRunner(f.working, f.readings, f.store, log.New(io.Discard, "", 0), WithRetryPolicy(fastPolicy()))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	report, err := runner.Run(context.Background(), start, end)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.ReadingsCombined != 3 || report.ReadingsDeleted != 3 {
		t.Fatalf("combined = %d deleted = %d, want 3 and 3", report.ReadingsCombined, report.ReadingsDeleted)
	}
	if f.readings.Len() != 1 {
		t.Fatalf("remaining = %d, want the out-of-window reading", f.readings.Len())
	}
}

type failingStore struct {
	*blob.MemoryStore
}

func (s *failingStore) Put(context.Context, string, io.Reader, blob.PutOptions) (blob.Info, error) {
	return blob.Info{}, errors.New("bucket unavailable")
}

func TestRunFailedWriteLeavesStoreIntact(t *testing.T) {
	f := newFixture(t)
	f.seedReadings(t, []float64{20, 30, 40})

	runner, err := NewRunner(f.working, f.readings, &failingStore{blob.NewMemoryStore()},
		log.New(io.Discard, "", 0), WithRetryPolicy(fastPolicy()))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	report, err := runner.Run(context.Background(), time.Time{}, time.Time{})
	if err == nil {
		t.Fatal("run succeeded, want write failure")
	}
	if report.ReadingsDeleted != 0 || f.readings.Len() != 3 {
		t.Fatalf("deleted = %d remaining = %d, want 0 and 3", report.ReadingsDeleted, f.readings.Len())
	}
}

type failingDeleteRepo struct {
	*telemetrymem.ReadingRepository
}

func (r *failingDeleteRepo) DeleteByIDs(context.Context, []int64) (int64, error) {
	return 0, errors.New("store unavailable")
}

func TestRunPruneFailureIsConsistencyError(t *testing.T) {
	f := newFixture(t)
	f.seedReadings(t, []float64{20, 30, 40})

	runner, err := NewRunner(f.working, &failingDeleteRepo{f.readings}, f.store,
		log.New(io.Discard, "", 0), WithRetryPolicy(fastPolicy()))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	report, err := runner.Run(context.Background(), time.Time{}, time.Time{})
	if !errors.Is(err, ErrArchiveConsistency) {
		t.Fatalf("err = %v, want ErrArchiveConsistency", err)
	}
	// The object is written and remains valid; only the prune is pending.
	if len(report.ObjectsWritten) != 1 {
		t.Fatalf("objects = %v, want 1", report.ObjectsWritten)
	}
	if _, err := f.store.Head(context.Background(), report.ObjectsWritten[0]); err != nil {
		t.Fatalf("head object: %v", err)
	}
}

func TestRunRerunOverwritesSameObject(t *testing.T) {
	f := newFixture(t)
	f.seedReadings(t, []float64{20, 30, 40})

	runner, err := NewRunner(f.working, &failingDeleteRepo{f.readings}, f.store,
		log.New(io.Discard, "", 0), WithRetryPolicy(fastPolicy()))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	// First run writes the object but cannot prune.
	if _, err := runner.Run(context.Background(), time.Time{}, time.Time{}); !errors.Is(err, ErrArchiveConsistency) {
		t.Fatalf("first run err = %v", err)
	}

	// Rerun with a working prune converges: same key, store emptied.
	runner2, err := NewRunner(f.working, f.readings, f.store, log.New(io.Discard, "", 0), WithRetryPolicy(fastPolicy()))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	report, err := runner2.Run(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if len(report.ObjectsWritten) != 1 || report.ObjectsWritten[0] != "2025/01/01/summary.csv" {
		t.Fatalf("objects = %v", report.ObjectsWritten)
	}
	if f.readings.Len() != 0 {
		t.Fatalf("remaining = %d, want 0", f.readings.Len())
	}

	objects, err := f.store.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 1 {
		t.Fatalf("stored objects = %d, want 1", len(objects))
	}
}
