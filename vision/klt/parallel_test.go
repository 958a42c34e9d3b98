package klt

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func TestTrackAllMatchesSequential(t *testing.T) {
	scales := []int{1, 2, 4}
	first := newAnalyticPyramid(t, 160, 128, scales, wideBlobs)
	second := newAnalyticPyramid(t, 160, 128, scales, shifted(wideBlobs, 4, 3))
	logger := golog.NewTestLogger(t)
	newTracker := func() *PyramidTracker {
		return NewPyramidTracker(newTestTracker(DefaultConfig()), logger)
	}

	positions := [][2]float64{{47, 33}, {66, 55}, {85, 55}, {104, 77}, {66, 77}, {85, 33}, {-40, 40}}
	makeFeatures := func() []*PyramidFeature {
		features := make([]*PyramidFeature, len(positions))
		for i, p := range positions {
			features[i] = NewPyramidFeature(len(scales), 3)
			features[i].SetPosition(p[0], p[1])
		}
		return features
	}

	parallel := makeFeatures()
	accepted, err := DescribeAll(context.Background(), first, parallel, newTracker)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, accepted, test.ShouldResemble, []bool{true, true, true, true, true, true, false})
	// keep only the described features
	parallel = parallel[:len(parallel)-1]
	faults, residuals, err := TrackAll(context.Background(), second, parallel, newTracker)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, faults, test.ShouldHaveLength, len(parallel))
	test.That(t, residuals, test.ShouldHaveLength, len(parallel))

	sequential := makeFeatures()[:len(parallel)]
	pt := newTracker()
	test.That(t, pt.Tracker().Config(), test.ShouldResemble, DefaultConfig())
	for i, pf := range sequential {
		pt.SetImage(first)
		test.That(t, pt.Describe(pf), test.ShouldBeTrue)
		pt.SetImage(second)
		test.That(t, pt.Track(pf), test.ShouldEqual, faults[i])
		test.That(t, pt.Error(), test.ShouldEqual, residuals[i])
		test.That(t, pt.Tracker().Error(), test.ShouldEqual, residuals[i])
		test.That(t, pf.X, test.ShouldEqual, parallel[i].X)
		test.That(t, pf.Y, test.ShouldEqual, parallel[i].Y)
	}
}

func TestTrackAllCancelled(t *testing.T) {
	pyr := newAnalyticPyramid(t, 160, 128, []int{1, 2}, wideBlobs)
	features := []*PyramidFeature{NewPyramidFeature(2, 3), NewPyramidFeature(2, 3)}
	features[0].SetPosition(66, 55)
	features[1].SetPosition(85, 55)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	faults, _, err := TrackAll(ctx, pyr, features, func() *PyramidTracker {
		return NewPyramidTracker(newTestTracker(DefaultConfig()), golog.NewTestLogger(t))
	})
	test.That(t, err, test.ShouldBeError, context.Canceled)
	test.That(t, faults, test.ShouldResemble, []Fault{FaultFailed, FaultFailed})
	test.That(t, features[0].X, test.ShouldEqual, 66.0)
}

func TestParallelLevelMismatchPanics(t *testing.T) {
	pyr := newAnalyticPyramid(t, 160, 128, []int{1, 2, 4}, wideBlobs)
	newTracker := func() *PyramidTracker {
		return NewPyramidTracker(newTestTracker(DefaultConfig()), golog.NewTestLogger(t))
	}
	newFeatures := func() []*PyramidFeature {
		good := NewPyramidFeature(3, 3)
		good.SetPosition(85, 55)
		bad := NewPyramidFeature(2, 3)
		bad.SetPosition(66, 55)
		return []*PyramidFeature{good, bad}
	}

	test.That(t, func() {
		TrackAll(context.Background(), pyr, newFeatures(), newTracker)
	}, test.ShouldPanic)
	test.That(t, func() {
		DescribeAll(context.Background(), pyr, newFeatures(), newTracker)
	}, test.ShouldPanic)
}

func TestTrackAllEmpty(t *testing.T) {
	faults, residuals, err := TrackAll(context.Background(), nil, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, faults, test.ShouldBeEmpty)
	test.That(t, residuals, test.ShouldBeEmpty)
}
