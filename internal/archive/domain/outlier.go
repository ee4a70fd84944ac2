package archive

import (
	"math"
	"sort"
)

// FilterResult splits a working set into surviving and excluded rows.
// Excluded rows are never deleted from the store by this step; they are
// retained for deletion accounting by the caller.
type FilterResult struct {
	Kept     []WorkingRow
	Excluded []WorkingRow
}

// FilterOutliers removes rows whose moisture or temperature deviates from
// the per-plant mean by more than sigma standard deviations. Each column is
// tested independently; a row is excluded if either column flags it.
// Groups with fewer than two samples pass through untouched since a
// deviation is not defined for them.
func FilterOutliers(rows []WorkingRow, sigma float64) FilterResult {
	groups := make(map[int64][]WorkingRow)
	order := make([]int64, 0)
	for _, row := range rows {
		if _, ok := groups[row.PlantID]; !ok {
			order = append(order, row.PlantID)
		}
		groups[row.PlantID] = append(groups[row.PlantID], row)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var result FilterResult
	for _, plantID := range order {
		group := groups[plantID]
		if len(group) < 2 {
			result.Kept = append(result.Kept, group...)
			continue
		}
		moistMean, moistStd := meanStddev(group, func(r WorkingRow) float64 { return r.Moisture })
		tempMean, tempStd := meanStddev(group, func(r WorkingRow) float64 { return r.Temperature })
		for _, row := range group {
			if exceeds(row.Moisture, moistMean, moistStd, sigma) || exceeds(row.Temperature, tempMean, tempStd, sigma) {
				result.Excluded = append(result.Excluded, row)
				continue
			}
			result.Kept = append(result.Kept, row)
		}
	}
	return result
}

func exceeds(value, mean, stddev, sigma float64) bool {
	if stddev == 0 {
		return false
	}
	return math.Abs(value-mean) > sigma*stddev
}

// meanStddev returns the sample mean and sample standard deviation of a
// column across a group.
func meanStddev(rows []WorkingRow, column func(WorkingRow) float64) (float64, float64) {
	n := float64(len(rows))
	var sum float64
	for _, row := range rows {
		sum += column(row)
	}
	mean := sum / n

	var sq float64
	for _, row := range rows {
		d := column(row) - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / (n - 1))
}
