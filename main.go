package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	archiveapp "plantwatch-cloud/internal/archive/application"
	archive "plantwatch-cloud/internal/archive/domain"
	archivepostgres "plantwatch-cloud/internal/archive/infrastructure/postgres"
	archiveinterfaces "plantwatch-cloud/internal/archive/interfaces"
	"plantwatch-cloud/internal/blob"
	catalogpostgres "plantwatch-cloud/internal/catalog/infrastructure/postgres"
	"plantwatch-cloud/internal/config"
	ingestapp "plantwatch-cloud/internal/ingest/application"
	"plantwatch-cloud/internal/ingest/interfaces/source"
	"plantwatch-cloud/internal/observability/metrics"
	"plantwatch-cloud/internal/retry"
	"plantwatch-cloud/internal/store"
	telemetrypostgres "plantwatch-cloud/internal/telemetry/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "modernc.org/sqlite"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	root := &cobra.Command{
		Use:           "plantwatch",
		Short:         "Plant sensor telemetry pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newIngestCmd(logger), newArchiveCmd(logger), newExportCmd(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Fatalf("plantwatch: %v", err)
	}
}

// serveMetrics exposes /metrics while a run is in flight, when configured.
func serveMetrics(addr string, logger *log.Logger) func() {
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("metrics server: %v", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (*sql.DB, error) {
	db, err := store.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Printf("store ready driver=%s", cfg.DBDriver)
	return db, nil
}

func newIngestCmd(logger *log.Logger) *cobra.Command {
	var (
		startID   int64
		maxMisses int
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch plant readings from the source API and load the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.SourceBaseURL == "" {
				return errors.New("SOURCE_BASE_URL is required for ingest")
			}
			if startID > 0 {
				cfg.SourceStartID = startID
			}
			if maxMisses > 0 {
				cfg.SourceMaxMisses = maxMisses
			}

			db, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			m := metrics.New()
			stopMetrics := serveMetrics(cfg.MetricsAddr, logger)
			defer stopMetrics()

			client, err := source.NewClient(cfg.SourceBaseURL)
			if err != nil {
				return err
			}

			service, err := ingestapp.NewService(
				catalogpostgres.NewCountryRepository(db),
				catalogpostgres.NewLocationRepository(db),
				catalogpostgres.NewBotanistRepository(db),
				catalogpostgres.NewPlantRepository(db),
				telemetrypostgres.NewReadingRepository(db),
				logger,
				cfg.StoreTimeout,
			)
			if err != nil {
				return err
			}

			started := time.Now()
			records, err := client.FetchAll(ctx, cfg.SourceStartID, cfg.SourceMaxMisses)
			if err != nil {
				m.IngestRunsTotal.WithLabelValues("error").Inc()
				return fmt.Errorf("fetch source: %w", err)
			}
			logger.Printf("fetched %d records from %s", len(records), cfg.SourceBaseURL)

			report, err := service.Run(ctx, records)
			m.IngestDuration.Observe(time.Since(started).Seconds())
			observeIngest(m, report, err)
			if err != nil {
				return fmt.Errorf("ingest run %s: %w", report.RunID, err)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&startID, "start-id", 0, "first plant id to fetch (overrides SOURCE_START_ID)")
	cmd.Flags().IntVar(&maxMisses, "max-misses", 0, "consecutive missing plants before the sweep stops")
	return cmd
}

func observeIngest(m *metrics.Metrics, report ingestapp.Report, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.IngestRunsTotal.WithLabelValues(result).Inc()
	m.IngestRowsTotal.WithLabelValues("countries").Add(float64(report.CountriesCreated))
	m.IngestRowsTotal.WithLabelValues("locations").Add(float64(report.LocationsCreated))
	m.IngestRowsTotal.WithLabelValues("botanists").Add(float64(report.BotanistsCreated))
	m.IngestRowsTotal.WithLabelValues("plants").Add(float64(report.PlantsCreated))
	m.IngestRowsTotal.WithLabelValues("readings").Add(float64(report.ReadingsInserted))
	m.IngestSkippedTotal.WithLabelValues("validation").Add(float64(report.ValidationSkipped))
	m.IngestSkippedTotal.WithLabelValues("duplicate").Add(float64(report.DuplicatesSkipped))
	m.IngestSkippedTotal.WithLabelValues("integrity").Add(float64(report.IntegrityErrors))
}

func newArchiveCmd(logger *log.Logger) *cobra.Command {
	var (
		startFlag string
		endFlag   string
	)
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Aggregate stored readings into object storage and prune the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			start, end, err := archiveWindow(startFlag, endFlag)
			if err != nil {
				return err
			}

			db, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			objectStore, err := blob.Open(ctx, blob.Options{
				Driver:    blob.Driver(cfg.Blob.Driver),
				Root:      cfg.Blob.Root,
				Bucket:    cfg.Blob.Bucket,
				Region:    cfg.Blob.Region,
				Endpoint:  cfg.Blob.Endpoint,
				PathStyle: cfg.Blob.PathStyle,
			})
			if err != nil {
				return fmt.Errorf("open blob store: %w", err)
			}

			m := metrics.New()
			stopMetrics := serveMetrics(cfg.MetricsAddr, logger)
			defer stopMetrics()

			runner, err := archiveapp.NewRunner(
				archivepostgres.NewWorkingSetQuery(db),
				telemetrypostgres.NewReadingRepository(db),
				objectStore,
				logger,
				archiveapp.WithSigma(cfg.OutlierSigma),
				archiveapp.WithMoistureThresholds(cfg.MoistureLowPct, cfg.MoistureHighPct),
				archiveapp.WithRetryPolicy(retry.Policy{MaxAttempts: cfg.RetryMaxAttempts}),
				archiveapp.WithTimeouts(cfg.StoreTimeout, cfg.BlobTimeout),
			)
			if err != nil {
				return err
			}

			started := time.Now()
			report, err := runner.Run(ctx, start, end)
			m.ArchiveDuration.Observe(time.Since(started).Seconds())
			observeArchive(m, report, err)
			if err != nil {
				return fmt.Errorf("archive run %s: %w", report.RunID, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&startFlag, "start", "", "window start, RFC3339 or YYYY-MM-DD (default: store beginning)")
	cmd.Flags().StringVar(&endFlag, "end", "", "window end, exclusive (default: today 00:00 UTC)")
	return cmd
}

func observeArchive(m *metrics.Metrics, report archiveapp.Report, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.ArchiveRunsTotal.WithLabelValues(result).Inc()
	m.ArchiveReadingsTotal.WithLabelValues("combined").Add(float64(report.ReadingsCombined))
	m.ArchiveReadingsTotal.WithLabelValues("excluded").Add(float64(report.OutliersExcluded))
	m.ArchiveReadingsTotal.WithLabelValues("deleted").Add(float64(report.ReadingsDeleted))
}

// archiveWindow resolves flag values into a half-open [start, end) window.
// The default end is today's UTC midnight so only completed days archive.
func archiveWindow(startFlag, endFlag string) (time.Time, time.Time, error) {
	start, err := parseWindowBound(startFlag)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
	}
	end, err := parseWindowBound(endFlag)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--end: %w", err)
	}
	if end.IsZero() {
		now := time.Now().UTC()
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if !start.IsZero() && !start.Before(end) {
		return time.Time{}, time.Time{}, errors.New("window start must precede end")
	}
	return start, end, nil
}

func parseWindowBound(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("not RFC3339 or YYYY-MM-DD: %q", value)
	}
	return t, nil
}

func newExportCmd(logger *log.Logger) *cobra.Command {
	var (
		dayFlag string
		format  string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render an archived day as XLSX or PDF",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			day, err := time.ParseInLocation("2006-01-02", dayFlag, time.UTC)
			if err != nil {
				return fmt.Errorf("--day: not YYYY-MM-DD: %q", dayFlag)
			}

			objectStore, err := blob.Open(ctx, blob.Options{
				Driver:    blob.Driver(cfg.Blob.Driver),
				Root:      cfg.Blob.Root,
				Bucket:    cfg.Blob.Bucket,
				Region:    cfg.Blob.Region,
				Endpoint:  cfg.Blob.Endpoint,
				PathStyle: cfg.Blob.PathStyle,
			})
			if err != nil {
				return fmt.Errorf("open blob store: %w", err)
			}

			key := archive.SummaryKey(day)
			_, rc, err := objectStore.Get(ctx, key)
			if err != nil {
				return fmt.Errorf("get %s: %w", key, err)
			}
			raw, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return fmt.Errorf("read %s: %w", key, err)
			}
			summaries, err := archive.DecodeSummaryCSV(raw)
			if err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}

			var rendered []byte
			switch format {
			case "xlsx":
				rendered, err = archiveinterfaces.BuildSummaryXLSX(day, summaries)
			case "pdf":
				rendered, err = archiveinterfaces.BuildSummaryPDF(day, summaries)
			default:
				return fmt.Errorf("--format: unknown format %q", format)
			}
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}

			if outPath == "" {
				outPath = "summary-" + day.Format("2006-01-02") + "." + format
			}
			if err := os.WriteFile(outPath, rendered, 0o644); err != nil {
				return err
			}
			logger.Printf("exported %s (%d plants, %d bytes) to %s",
				key, len(summaries), len(rendered), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dayFlag, "day", "", "archived day to export, YYYY-MM-DD")
	cmd.Flags().StringVar(&format, "format", "xlsx", "output format: xlsx or pdf")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default: summary-<day>.<format>)")
	_ = cmd.MarkFlagRequired("day")
	return cmd
}
