package klt

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/klt/rimage"
)

// Pyramid is a multi resolution view of one frame. Level 0 is the finest. Scale(level) is
// the pixel spacing of that level relative to full resolution. The derivative accessors may
// return nil when a pyramid is only used for tracking.
type Pyramid interface {
	NumLevels() int
	Scale(level int) float64
	Level(level int) *rimage.FloatGray
	DerivX(level int) *rimage.FloatGray
	DerivY(level int) *rimage.FloatGray
}

// PyramidTracker runs a Tracker coarse to fine over the levels of a Pyramid. Like the
// Tracker it wraps, it serves one feature at a time.
type PyramidTracker struct {
	tracker *Tracker
	pyr     Pyramid
	logger  golog.Logger
}

// NewPyramidTracker wraps tracker. A nil logger is replaced by the global one.
func NewPyramidTracker(tracker *Tracker, logger golog.Logger) *PyramidTracker {
	if logger == nil {
		logger = golog.Global()
	}
	return &PyramidTracker{tracker: tracker, logger: logger}
}

// SetImage binds the pyramid of the frame to describe or track on.
func (pt *PyramidTracker) SetImage(pyr Pyramid) {
	pt.pyr = pyr
}

// Tracker returns the wrapped single level tracker.
func (pt *PyramidTracker) Tracker() *Tracker {
	return pt.tracker
}

// Error returns the residual of the last level tracked.
func (pt *PyramidTracker) Error() float64 {
	return pt.tracker.Error()
}

func (pt *PyramidTracker) checkLevels(pf *PyramidFeature) {
	if len(pf.Desc) != pt.pyr.NumLevels() {
		panic(errors.Errorf("feature has %d levels but the pyramid has %d", len(pf.Desc), pt.pyr.NumLevels()))
	}
}

// Describe captures the template of pf on every level at its full resolution position.
// It fails as soon as one level cannot be described.
func (pt *PyramidTracker) Describe(pf *PyramidFeature) bool {
	pt.checkLevels(pf)
	for level, f := range pf.Desc {
		scale := pt.pyr.Scale(level)
		f.SetPosition(pf.X/scale, pf.Y/scale)
		pt.tracker.SetImage(pt.pyr.Level(level), pt.pyr.DerivX(level), pt.pyr.DerivY(level))
		if !pt.tracker.Describe(f) {
			pt.logger.Debugw("cannot describe feature", "x", pf.X, "y", pf.Y, "level", level)
			return false
		}
	}
	return true
}

// Track refines the position of pf on the bound pyramid, from the coarsest level down to
// the finest, each level starting from the estimate of the one above. The full resolution
// position is only written on success; a fault stops at the level it occurred on and leaves
// that level's partial progress in its Feature.
func (pt *PyramidTracker) Track(pf *PyramidFeature) Fault {
	pt.checkLevels(pf)
	x, y := pf.X, pf.Y
	for level := len(pf.Desc) - 1; level >= 0; level-- {
		scale := pt.pyr.Scale(level)
		f := pf.Desc[level]
		f.SetPosition(x/scale, y/scale)
		pt.tracker.SetImage(pt.pyr.Level(level), nil, nil)
		if fault := pt.tracker.Track(f); fault != FaultSuccess {
			pt.logger.Debugw("feature lost",
				"fault", fault,
				"level", level,
				"x", f.X*scale,
				"y", f.Y*scale,
				"iterations", pt.tracker.Iterations())
			return fault
		}
		x, y = f.X*scale, f.Y*scale
	}
	pf.SetPosition(x, y)
	return FaultSuccess
}
