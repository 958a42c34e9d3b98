// Package main tracks features through a sequence of frames and writes annotated frames
// and tracking statistics.
package main

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/klt/rimage"
	"go.viam.com/klt/utils"
	"go.viam.com/klt/vision/keypoints"
	"go.viam.com/klt/vision/klt"
	"go.viam.com/klt/vision/klt/report"
)

var logger = golog.NewDevelopmentLogger("klt_track")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	Config   string   `flag:"config,usage=tracker config json file"`
	Detector string   `flag:"detector,usage=detector config json file"`
	Scales   string   `flag:"scales,usage=comma separated pyramid scales; default is 1 2 4"`
	Radius   int      `flag:"radius,default=3,usage=patch radius"`
	Out      string   `flag:"out,default=klt_out,usage=output directory"`
	Frames   []string `flag:"frames,extra"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if len(argsParsed.Frames) == 0 {
		return errors.New("need at least one frame")
	}
	if argsParsed.Radius < 1 {
		return errors.Errorf("radius must be >= 1, got %d", argsParsed.Radius)
	}
	// extra arguments come back unordered
	sort.Strings(argsParsed.Frames)

	config := klt.DefaultConfig()
	if argsParsed.Config != "" {
		var err error
		if config, err = klt.LoadConfig(argsParsed.Config); err != nil {
			return err
		}
	}
	detectorConfig := keypoints.DefaultShiTomasiConfig()
	if argsParsed.Detector != "" {
		var err error
		if detectorConfig, err = keypoints.LoadShiTomasiConfiguration(argsParsed.Detector); err != nil {
			return err
		}
	}
	scales, err := parseScales(argsParsed.Scales)
	if err != nil {
		return err
	}

	seq := &sequence{
		config:         config,
		detectorConfig: detectorConfig,
		scales:         scales,
		radius:         argsParsed.Radius,
		outDir:         argsParsed.Out,
		plotter:        report.NewStatsPlotter(),
		trackedRatio:   utils.NewRollingAverage(trackedRatioWindow),
		logger:         logger,
	}
	return seq.run(ctx, argsParsed.Frames)
}

func parseScales(s string) ([]int, error) {
	if s == "" {
		return rimage.DefaultPyramidScales, nil
	}
	parts := strings.Split(s, ",")
	scales := make([]int, 0, len(parts))
	for _, p := range parts {
		scale, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(err, "bad pyramid scale %q", p)
		}
		scales = append(scales, scale)
	}
	return scales, nil
}

// trackedRatioWindow is the number of frames the logged tracked ratio is averaged over.
const trackedRatioWindow = 5

// track is one feature followed through the sequence.
type track struct {
	id      int
	feature *klt.PyramidFeature
	prevX   float64
	prevY   float64
}

type sequence struct {
	config         klt.Config
	detectorConfig keypoints.ShiTomasiConfig
	scales         []int
	radius         int
	outDir         string
	plotter        *report.StatsPlotter
	trackedRatio   *utils.RollingAverage
	logger         golog.Logger

	tracks []*track
}

func (seq *sequence) newTracker() *klt.PyramidTracker {
	tracker := klt.NewTracker(rimage.NewBilinearInterpolator(), rimage.NewBilinearInterpolator(), seq.config)
	return klt.NewPyramidTracker(tracker, seq.logger)
}

func (seq *sequence) run(ctx context.Context, frames []string) (err error) {
	defer func() {
		files, plotErr := seq.plotter.Save(seq.outDir)
		err = multierr.Combine(err, plotErr)
		if plotErr == nil && len(files) != 0 {
			seq.logger.Infow("wrote statistics", "files", files)
			seq.logger.Info("\n" + seq.plotter.Table())
		}
	}()
	for i, path := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := rimage.ReadImageFromFile(path)
		if err != nil {
			return err
		}
		pyr, err := rimage.NewPyramid(img, seq.scales)
		if err != nil {
			return errors.Wrapf(err, "frame %q", path)
		}
		if i == 0 {
			err = seq.start(ctx, pyr)
		} else {
			err = seq.step(ctx, i, pyr)
		}
		if err != nil {
			return errors.Wrapf(err, "frame %q", path)
		}
		if err := seq.writeFrame(i, img, i > 0); err != nil {
			return err
		}
	}
	return nil
}

// start detects and describes the features of the first frame.
func (seq *sequence) start(ctx context.Context, pyr *rimage.Pyramid) error {
	if err := pyr.ComputeGradients(); err != nil {
		return err
	}
	kps, err := keypoints.ComputeShiTomasi(pyr.DerivX(0), pyr.DerivY(0), seq.detectorConfig)
	if err != nil {
		return err
	}
	features := make([]*klt.PyramidFeature, len(kps))
	for i, kp := range kps {
		features[i] = klt.NewPyramidFeature(pyr.NumLevels(), seq.radius)
		features[i].SetPosition(kp.X, kp.Y)
		features[i].Cookie = i
	}
	accepted, err := klt.DescribeAll(ctx, pyr, features, seq.newTracker)
	if err != nil {
		return err
	}
	for i, ok := range accepted {
		if !ok {
			continue
		}
		pf := features[i]
		seq.tracks = append(seq.tracks, &track{id: pf.Cookie.(int), feature: pf, prevX: pf.X, prevY: pf.Y})
	}
	seq.logger.Infow("detected features", "corners", len(kps), "described", len(seq.tracks))
	return nil
}

// step tracks the surviving features into the next frame and drops the lost ones.
func (seq *sequence) step(ctx context.Context, frame int, pyr *rimage.Pyramid) error {
	features := make([]*klt.PyramidFeature, len(seq.tracks))
	for i, tr := range seq.tracks {
		tr.prevX, tr.prevY = tr.feature.X, tr.feature.Y
		features[i] = tr.feature
	}
	faults, residuals, err := klt.TrackAll(ctx, pyr, features, seq.newTracker)
	if err != nil {
		return err
	}
	stats, err := klt.SummarizeFrame(faults, residuals)
	if err != nil {
		return err
	}
	seq.plotter.Record(frame, stats)

	seq.tracks = lo.Filter(seq.tracks, func(_ *track, i int) bool {
		return faults[i] == klt.FaultSuccess
	})
	seq.trackedRatio.Add(stats.TrackedRatio())

	fields := []interface{}{
		"frame", frame,
		"tracked", stats.Tracked,
		"mean_error", stats.MeanError,
		"rolling_tracked_ratio", seq.trackedRatio.Average(),
	}
	for _, f := range klt.Faults[1:] {
		fields = append(fields, f.String(), stats.Counts[f])
	}
	seq.logger.Infow("tracked frame", fields...)
	return nil
}

func (seq *sequence) writeFrame(frame int, img image.Image, withTrails bool) error {
	markers := make([]rimage.Marker, len(seq.tracks))
	for i, tr := range seq.tracks {
		markers[i] = rimage.Marker{
			X:        tr.feature.X,
			Y:        tr.feature.Y,
			Radius:   seq.radius,
			Group:    tr.id,
			FromX:    tr.prevX,
			FromY:    tr.prevY,
			HasTrail: withTrails,
			Label:    strconv.Itoa(tr.id),
		}
	}
	out := rimage.DrawMarkers(img, markers, rimage.Palette(12))
	return rimage.WriteImageToFile(filepath.Join(seq.outDir, fmt.Sprintf("frame_%04d.png", frame)), out)
}
