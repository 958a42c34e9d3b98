// Package report plots how tracking went over a sequence of frames.
package report

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/klt/rimage"
	"go.viam.com/klt/vision/klt"
)

// File names written by StatsPlotter.Save.
const (
	FaultsPlotFile    = "faults.png"
	ResidualsPlotFile = "residuals.png"
)

// StatsPlotter accumulates per frame statistics. It is safe to record from several
// goroutines.
type StatsPlotter struct {
	mu     sync.Mutex
	frames []int
	stats  []klt.FrameStats
}

// NewStatsPlotter returns an empty plotter.
func NewStatsPlotter() *StatsPlotter {
	return &StatsPlotter{}
}

// Record adds the statistics of one frame.
func (sp *StatsPlotter) Record(frame int, stats klt.FrameStats) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.frames = append(sp.frames, frame)
	sp.stats = append(sp.stats, stats)
}

// NumFrames returns how many frames were recorded.
func (sp *StatsPlotter) NumFrames() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return len(sp.frames)
}

func newLine(pts plotter.XYs, label string, p *plot.Plot, idx, numColors int) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrapf(err, "plotting %s", label)
	}
	line.Color = rimage.Palette(numColors)[idx]
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

func placeLegend(p *plot.Plot) {
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
}

// Save writes the fault count plot and the residual plot into dir and returns their paths.
// Nothing is written when no frame was recorded.
func (sp *StatsPlotter) Save(dir string) ([]string, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if len(sp.frames) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "cannot create plot directory %q", dir)
	}

	pFaults := plot.New()
	pFaults.Title.Text = "Features per outcome"
	pFaults.X.Label.Text = "Frame"
	pFaults.Y.Label.Text = "Features"
	for i, fault := range klt.Faults {
		pts := make(plotter.XYs, len(sp.frames))
		for j, frame := range sp.frames {
			pts[j] = plotter.XY{X: float64(frame), Y: float64(sp.stats[j].Counts[fault])}
		}
		if err := newLine(pts, fault.String(), pFaults, i, len(klt.Faults)); err != nil {
			return nil, err
		}
	}
	placeLegend(pFaults)

	pResiduals := plot.New()
	pResiduals.Title.Text = "Residual of tracked features"
	pResiduals.X.Label.Text = "Frame"
	pResiduals.Y.Label.Text = "Mean absolute error"
	series := []struct {
		label string
		value func(klt.FrameStats) float64
	}{
		{"mean", func(s klt.FrameStats) float64 { return s.MeanError }},
		{"median", func(s klt.FrameStats) float64 { return s.MedianError }},
		{"p90", func(s klt.FrameStats) float64 { return s.P90Error }},
	}
	for i, s := range series {
		pts := make(plotter.XYs, 0, len(sp.frames))
		for j, frame := range sp.frames {
			if sp.stats[j].Tracked == 0 {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(frame), Y: s.value(sp.stats[j])})
		}
		if len(pts) == 0 {
			continue
		}
		if err := newLine(pts, s.label, pResiduals, i, len(series)); err != nil {
			return nil, err
		}
	}
	placeLegend(pResiduals)

	faultsFile := filepath.Join(dir, FaultsPlotFile)
	if err := pFaults.Save(14*vg.Inch, 6*vg.Inch, faultsFile); err != nil {
		return nil, errors.Wrap(err, "saving fault plot")
	}
	residualsFile := filepath.Join(dir, ResidualsPlotFile)
	if err := pResiduals.Save(14*vg.Inch, 6*vg.Inch, residualsFile); err != nil {
		return nil, errors.Wrap(err, "saving residual plot")
	}
	return []string{faultsFile, residualsFile}, nil
}
