package klt

import (
	"context"

	"go.viam.com/klt/utils"
)

// TrackAll tracks every feature on pyr, splitting the features over groups that each own a
// PyramidTracker made by newTracker. It returns the fault and the residual of every feature in
// input order. Cancelling ctx stops the groups between features and is reported as the error;
// features that were not reached keep their position and report FaultFailed. Contract
// violations, such as a feature whose level count differs from pyr, panic on the caller's
// goroutine.
func TrackAll(
	ctx context.Context,
	pyr Pyramid,
	features []*PyramidFeature,
	newTracker func() *PyramidTracker,
) ([]Fault, []float64, error) {
	faults := make([]Fault, len(features))
	residuals := make([]float64, len(features))
	for i := range faults {
		faults[i] = FaultFailed
	}
	err := utils.GroupWorkParallel(ctx, len(features), nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			tracker := newTracker()
			tracker.SetImage(pyr)
			return func(memberNum, workNum int) error {
				faults[workNum] = tracker.Track(features[workNum])
				residuals[workNum] = tracker.Error()
				return nil
			}, nil
		})
	return faults, residuals, err
}

// DescribeAll describes every feature on pyr in parallel, reporting which ones were
// accepted. Its grouping matches TrackAll.
func DescribeAll(
	ctx context.Context,
	pyr Pyramid,
	features []*PyramidFeature,
	newTracker func() *PyramidTracker,
) ([]bool, error) {
	accepted := make([]bool, len(features))
	err := utils.GroupWorkParallel(ctx, len(features), nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			tracker := newTracker()
			tracker.SetImage(pyr)
			return func(memberNum, workNum int) error {
				accepted[workNum] = tracker.Describe(features[workNum])
				return nil
			}, nil
		})
	return accepted, err
}
