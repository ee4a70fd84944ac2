package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	archive "plantwatch-cloud/internal/archive/domain"
	"plantwatch-cloud/internal/blob"
	"plantwatch-cloud/internal/retry"
	telemetry "plantwatch-cloud/internal/telemetry/domain"
)

// ErrArchiveConsistency marks a run that wrote its archive objects but could
// not prune the archived readings from the store. The written objects are
// valid; a rerun over the same window resolves the drift because object keys
// are deterministic and the prune is scoped to reading ids.
var ErrArchiveConsistency = errors.New("archive: prune failed after object write")

// Report carries per-stage counts for one archival run.
type Report struct {
	RunID string

	ReadingsCombined int
	OutliersExcluded int
	SummariesWritten int
	ObjectsWritten   []string
	ReadingsDeleted  int64
}

// Runner executes the archival pipeline: combine the working set, drop
// per-plant outliers, aggregate per plant per UTC day, write one summary CSV
// object per day (plus an excluded-rows audit object for days with
// outliers), then delete exactly the readings that were combined.
type Runner struct {
	working  archive.WorkingSetQuery
	readings telemetry.ReadingRepository
	store    blob.Store

	policy retry.Policy
	logger *log.Logger

	sigma        float64
	moistureLow  float64
	moistureHigh float64

	storeTimeout time.Duration
	blobTimeout  time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSigma overrides the outlier threshold in standard deviations.
func WithSigma(sigma float64) RunnerOption {
	return func(r *Runner) {
		if sigma > 0 {
			r.sigma = sigma
		}
	}
}

// WithMoistureThresholds sets the low/high moisture percentages recorded as
// object metadata for downstream consumers.
func WithMoistureThresholds(low, high float64) RunnerOption {
	return func(r *Runner) {
		r.moistureLow = low
		r.moistureHigh = high
	}
}

// WithRetryPolicy overrides the backoff policy for blob and prune IO.
func WithRetryPolicy(policy retry.Policy) RunnerOption {
	return func(r *Runner) {
		r.policy = policy
	}
}

// WithTimeouts sets per-call deadlines for store and blob IO.
func WithTimeouts(store, blobIO time.Duration) RunnerOption {
	return func(r *Runner) {
		r.storeTimeout = store
		r.blobTimeout = blobIO
	}
}

// NewRunner constructs an archival runner.
func NewRunner(
	working archive.WorkingSetQuery,
	readings telemetry.ReadingRepository,
	store blob.Store,
	logger *log.Logger,
	opts ...RunnerOption,
) (*Runner, error) {
	if working == nil || readings == nil || store == nil {
		return nil, errors.New("archive: nil dependency")
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{
		working:      working,
		readings:     readings,
		store:        store,
		logger:       logger,
		sigma:        3.0,
		moistureLow:  20,
		moistureHigh: 40,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.policy.Logger = logger
	return r, nil
}

// Run archives one window of readings. The prune only happens after every
// object write succeeded, so a failed run leaves the store intact and can be
// re-run as-is. Reruns overwrite the same objects and prune nothing extra.
func (r *Runner) Run(ctx context.Context, startInclusive, endExclusive time.Time) (Report, error) {
	report := Report{RunID: uuid.NewString()}

	rows, err := r.combine(ctx, startInclusive, endExclusive)
	if err != nil {
		return report, fmt.Errorf("combine working set: %w", err)
	}
	report.ReadingsCombined = len(rows)
	if len(rows) == 0 {
		r.logger.Printf("archive run %s: nothing to archive", report.RunID)
		return report, nil
	}

	filtered := archive.FilterOutliers(rows, r.sigma)
	report.OutliersExcluded = len(filtered.Excluded)

	summaries := archive.Aggregate(filtered.Kept)
	report.SummariesWritten = len(summaries)

	for _, day := range summaryDays(summaries) {
		key := archive.SummaryKey(day)
		payload, err := archive.EncodeSummaryCSV(summariesForDay(summaries, day))
		if err != nil {
			return report, fmt.Errorf("encode %s: %w", key, err)
		}
		if err := r.putObject(ctx, report.RunID, key, payload); err != nil {
			return report, fmt.Errorf("write %s: %w", key, err)
		}
		report.ObjectsWritten = append(report.ObjectsWritten, key)
	}

	// Excluded rows stay auditable: each day with outliers gets a raw-value
	// companion object next to its summary.
	for _, day := range excludedDays(filtered.Excluded) {
		key := archive.ExcludedKey(day)
		payload, err := archive.EncodeExcludedCSV(excludedForDay(filtered.Excluded, day))
		if err != nil {
			return report, fmt.Errorf("encode %s: %w", key, err)
		}
		if err := r.putObject(ctx, report.RunID, key, payload); err != nil {
			return report, fmt.Errorf("write %s: %w", key, err)
		}
		report.ObjectsWritten = append(report.ObjectsWritten, key)
	}

	// Prune everything that was combined, outliers included. An outlier is
	// excluded from the aggregates but still consumed by the run.
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ReadingID)
	}
	deleted, err := r.prune(ctx, ids)
	report.ReadingsDeleted = deleted
	if err != nil {
		return report, fmt.Errorf("%w: %v", ErrArchiveConsistency, err)
	}

	r.logger.Printf("archive run %s: combined=%d excluded=%d summaries=%d objects=%d deleted=%d",
		report.RunID, report.ReadingsCombined, report.OutliersExcluded,
		report.SummariesWritten, len(report.ObjectsWritten), report.ReadingsDeleted)
	return report, nil
}

func (r *Runner) combine(ctx context.Context, start, end time.Time) ([]archive.WorkingRow, error) {
	callCtx, cancel := r.withTimeout(ctx, r.storeTimeout)
	defer cancel()
	return r.working.Combine(callCtx, start, end)
}

func (r *Runner) putObject(ctx context.Context, runID, key string, payload []byte) error {
	opts := blob.PutOptions{
		ContentType: "text/csv",
		Metadata: map[string]string{
			"run-id":            runID,
			"moisture-low-pct":  strconv.FormatFloat(r.moistureLow, 'f', -1, 64),
			"moisture-high-pct": strconv.FormatFloat(r.moistureHigh, 'f', -1, 64),
		},
	}
	return r.policy.Do(ctx, "archive put "+key, func(ctx context.Context) (bool, error) {
		callCtx, cancel := r.withTimeout(ctx, r.blobTimeout)
		defer cancel()
		_, err := r.store.Put(callCtx, key, bytes.NewReader(payload), opts)
		return err != nil, err
	})
}

func (r *Runner) prune(ctx context.Context, ids []int64) (int64, error) {
	var deleted int64
	err := r.policy.Do(ctx, "archive prune", func(ctx context.Context) (bool, error) {
		callCtx, cancel := r.withTimeout(ctx, r.storeTimeout)
		defer cancel()
		n, err := r.readings.DeleteByIDs(callCtx, ids)
		if err != nil {
			return true, err
		}
		deleted = n
		return false, nil
	})
	return deleted, err
}

func (r *Runner) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// summaryDays returns the distinct days present, ascending.
func summaryDays(summaries []archive.DailySummary) []time.Time {
	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, s := range summaries {
		if _, ok := seen[s.Day]; ok {
			continue
		}
		seen[s.Day] = struct{}{}
		days = append(days, s.Day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func summariesForDay(summaries []archive.DailySummary, day time.Time) []archive.DailySummary {
	var out []archive.DailySummary
	for _, s := range summaries {
		if s.Day.Equal(day) {
			out = append(out, s)
		}
	}
	return out
}

func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// excludedDays returns the distinct days with excluded rows, ascending.
func excludedDays(rows []archive.WorkingRow) []time.Time {
	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, row := range rows {
		day := dayOf(row.RecordingTaken)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func excludedForDay(rows []archive.WorkingRow, day time.Time) []archive.WorkingRow {
	var out []archive.WorkingRow
	for _, row := range rows {
		if dayOf(row.RecordingTaken).Equal(day) {
			out = append(out, row)
		}
	}
	return out
}
