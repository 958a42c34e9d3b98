package klt

import (
	"math"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"go.viam.com/klt/rimage"
)

func newTestPyramidTracker(t *testing.T, config Config) *PyramidTracker {
	t.Helper()
	return NewPyramidTracker(newTestTracker(config), golog.NewTestLogger(t))
}

func TestPyramidTrackerDescribe(t *testing.T) {
	pyr := newAnalyticPyramid(t, 160, 128, []int{1, 2, 4}, wideBlobs)
	pt := newTestPyramidTracker(t, DefaultConfig())
	pt.SetImage(pyr)

	pf := NewPyramidFeature(3, 3)
	pf.SetPosition(85, 55)
	test.That(t, pt.Describe(pf), test.ShouldBeTrue)
	test.That(t, pf.Desc[0].X, test.ShouldEqual, 85.0)
	test.That(t, pf.Desc[1].X, test.ShouldEqual, 42.5)
	test.That(t, pf.Desc[2].Y, test.ShouldEqual, 13.75)
	for _, f := range pf.Desc {
		test.That(t, f.IsComplete(), test.ShouldBeTrue)
	}

	// outside the finest level
	pf = NewPyramidFeature(3, 3)
	pf.SetPosition(175, 55)
	test.That(t, pt.Describe(pf), test.ShouldBeFalse)

	flat := newAnalyticPyramid(t, 160, 128, []int{1, 2, 4}, func(x, y float64) float64 { return 50 })
	pt.SetImage(flat)
	pf = NewPyramidFeature(3, 3)
	pf.SetPosition(85, 55)
	test.That(t, pt.Describe(pf), test.ShouldBeFalse)
}

func TestPyramidTrackerLevelMismatch(t *testing.T) {
	pt := newTestPyramidTracker(t, DefaultConfig())
	pt.SetImage(newAnalyticPyramid(t, 160, 128, []int{1, 2, 4}, wideBlobs))
	pf := NewPyramidFeature(2, 3)
	pf.SetPosition(85, 55)
	test.That(t, func() { pt.Describe(pf) }, test.ShouldPanic)
	test.That(t, func() { pt.Track(pf) }, test.ShouldPanic)
}

func TestPyramidTrackerRecoversLargeShift(t *testing.T) {
	const shiftX, shiftY = 10.0, -6.0
	scales := []int{1, 2, 4}
	first := newAnalyticPyramid(t, 160, 128, scales, wideBlobs)
	second := newAnalyticPyramid(t, 160, 128, scales, shifted(wideBlobs, shiftX, shiftY))

	pt := newTestPyramidTracker(t, DefaultConfig())
	pt.SetImage(first)
	pf := NewPyramidFeature(len(scales), 3)
	pf.SetPosition(85, 55)
	pf.Cookie = "keep me"
	test.That(t, pt.Describe(pf), test.ShouldBeTrue)

	pt.SetImage(second)
	test.That(t, pt.Track(pf), test.ShouldEqual, FaultSuccess)
	test.That(t, pf.X, test.ShouldAlmostEqual, 85+shiftX, 0.1)
	test.That(t, pf.Y, test.ShouldAlmostEqual, 55+shiftY, 0.1)
	test.That(t, pf.Cookie, test.ShouldEqual, "keep me")

	// the finest level alone cannot absorb a shift wider than the patch
	tracker := newTestTracker(DefaultConfig())
	f := describedFeature(t, tracker, first.Level(0), 85, 55, 3)
	tracker.SetImage(second.Level(0), nil, nil)
	fault := tracker.Track(f)
	dist := math.Hypot(f.X-(85+shiftX), f.Y-(55+shiftY))
	test.That(t, fault != FaultSuccess || dist > 1, test.ShouldBeTrue)
}

func TestPyramidTrackerFaultKeepsPosition(t *testing.T) {
	scales := []int{1, 2, 4}
	pt := newTestPyramidTracker(t, DefaultConfig())
	pt.SetImage(newAnalyticPyramid(t, 160, 128, scales, wideBlobs))
	pf := NewPyramidFeature(len(scales), 3)
	pf.SetPosition(85, 55)
	test.That(t, pt.Describe(pf), test.ShouldBeTrue)

	pt.SetImage(newAnalyticPyramid(t, 160, 128, scales, func(x, y float64) float64 { return 0 }))
	test.That(t, pt.Track(pf), test.ShouldNotEqual, FaultSuccess)
	test.That(t, pf.X, test.ShouldEqual, 85.0)
	test.That(t, pf.Y, test.ShouldEqual, 55.0)
	coarsest := pf.Desc[len(scales)-1]
	test.That(t, coarsest.X != 85.0/4 || coarsest.Y != 55.0/4, test.ShouldBeTrue)

	pf.SetPosition(-100, -100)
	test.That(t, pt.Track(pf), test.ShouldEqual, FaultOutOfBounds)
	test.That(t, pf.X, test.ShouldEqual, -100.0)
}

func TestPyramidTrackerOnImagePyramid(t *testing.T) {
	const shiftX, shiftY = 10.0, -6.0
	first, err := rimage.NewPyramid(render8(160, 128, wideBlobs), rimage.DefaultPyramidScales)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, first.ComputeGradients(), test.ShouldBeNil)
	second, err := rimage.NewPyramid(render8(160, 128, shifted(wideBlobs, shiftX, shiftY)), rimage.DefaultPyramidScales)
	test.That(t, err, test.ShouldBeNil)

	pt := newTestPyramidTracker(t, DefaultConfig())
	pt.SetImage(first)
	pf := NewPyramidFeature(first.NumLevels(), 3)
	pf.SetPosition(85, 55)
	test.That(t, pt.Describe(pf), test.ShouldBeTrue)

	pt.SetImage(second)
	test.That(t, pt.Track(pf), test.ShouldEqual, FaultSuccess)
	test.That(t, pf.X, test.ShouldAlmostEqual, 85+shiftX, 0.25)
	test.That(t, pf.Y, test.ShouldAlmostEqual, 55+shiftY, 0.25)
}
