package klt

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// FrameStats summarizes the tracking of one frame.
type FrameStats struct {
	Counts map[Fault]int
	// Tracked is the number of features that reported FaultSuccess.
	Tracked int
	Total   int

	// Residual statistics over successfully tracked features; zero when none were.
	MeanError   float64
	MedianError float64
	P90Error    float64
}

// SummarizeFrame counts faults by kind and summarizes the residuals of the features that
// were tracked successfully. faults and residuals are indexed alike.
func SummarizeFrame(faults []Fault, residuals []float64) (FrameStats, error) {
	if len(faults) != len(residuals) {
		return FrameStats{}, errors.Errorf("got %d faults but %d residuals", len(faults), len(residuals))
	}
	summary := FrameStats{
		Counts: make(map[Fault]int, len(Faults)),
		Total:  len(faults),
	}
	for _, f := range Faults {
		summary.Counts[f] = 0
	}
	good := make(stats.Float64Data, 0, len(faults))
	for i, f := range faults {
		summary.Counts[f]++
		if f == FaultSuccess && !math.IsInf(residuals[i], 0) && !math.IsNaN(residuals[i]) {
			good = append(good, residuals[i])
		}
	}
	summary.Tracked = summary.Counts[FaultSuccess]
	if len(good) == 0 {
		return summary, nil
	}

	var err error
	if summary.MeanError, err = good.Mean(); err != nil {
		return FrameStats{}, errors.Wrap(err, "mean residual")
	}
	if summary.MedianError, err = good.Median(); err != nil {
		return FrameStats{}, errors.Wrap(err, "median residual")
	}
	if summary.P90Error, err = good.Percentile(90); err != nil {
		return FrameStats{}, errors.Wrap(err, "90th percentile residual")
	}
	return summary, nil
}

// TrackedRatio is the share of features that were tracked, or 0 for an empty frame.
func (fs FrameStats) TrackedRatio() float64 {
	if fs.Total == 0 {
		return 0
	}
	return float64(fs.Tracked) / float64(fs.Total)
}
