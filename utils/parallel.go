package utils

import (
	"context"
	"image"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

type (
	// BeforeParallelGroupWorkFunc executes before any work starts with the calculated number of groups.
	BeforeParallelGroupWorkFunc func(numGroups int)
	// MemberWorkFunc runs for each work item (member) of a group.
	MemberWorkFunc func(memberNum, workNum int) error
	// GroupWorkDoneFunc runs when a single group's work is done; helpful for merge stages.
	GroupWorkDoneFunc func()
	// GroupWorkFunc runs to determine what work members should do, if any.
	GroupWorkFunc func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc)
)

// GroupWorkParallel splits totalSize work items into at most ParallelFactor contiguous
// groups and runs each group on its own goroutine. Members of one group run sequentially,
// so per-group state handed out by groupWork never needs locking. A group stops early when
// ctx is done or one of its members fails; the combined errors are returned. A panic in any
// group is raised again on the calling goroutine once every group has stopped.
func GroupWorkParallel(ctx context.Context, totalSize int, before BeforeParallelGroupWorkFunc, groupWork GroupWorkFunc) error {
	if totalSize <= 0 {
		if before != nil {
			before(0)
		}
		return ctx.Err()
	}
	numGroups := ParallelFactor
	if numGroups > totalSize {
		numGroups = totalSize
	}
	groupSize := totalSize / numGroups
	extra := totalSize % numGroups

	if before != nil {
		before(numGroups)
	}

	var (
		wait      sync.WaitGroup
		errMu     sync.Mutex
		allErr    error
		panicked  bool
		recovered interface{}
	)
	storeError := func(err error) {
		errMu.Lock()
		allErr = multierr.Append(allErr, err)
		errMu.Unlock()
	}

	wait.Add(numGroups)
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		from := groupSize * groupNum
		to := from + groupSize
		if groupNum == numGroups-1 {
			to += extra
		}
		groupNum := groupNum
		utils.PanicCapturingGo(func() {
			defer wait.Done()
			defer func() {
				if r := recover(); r != nil {
					errMu.Lock()
					if !panicked {
						panicked, recovered = true, r
					}
					errMu.Unlock()
				}
			}()
			memberWork, groupWorkDone := groupWork(groupNum, to-from, from, to)
			if memberWork != nil {
				for workNum := from; workNum < to; workNum++ {
					if ctx.Err() != nil {
						return
					}
					if err := memberWork(workNum-from, workNum); err != nil {
						storeError(err)
						return
					}
				}
			}
			if groupWorkDone != nil {
				groupWorkDone()
			}
		})
	}
	wait.Wait()
	if panicked {
		panic(recovered)
	}
	return multierr.Combine(allErr, ctx.Err())
}

// ParallelForEachPixel loops through the image and calls f functions for each [x, y] position.
// The image is divided into N * N blocks, where N is the number of available processor threads. For each block a
// parallel Goroutine is started.
func ParallelForEachPixel(size image.Point, f func(x, y int)) {
	procs := runtime.GOMAXPROCS(0)
	var waitGroup sync.WaitGroup
	waitGroup.Add(procs * procs)
	for i := 0; i < procs; i++ {
		startX := i * (size.X / procs)
		endX := size.X
		if i < procs-1 {
			endX = (i + 1) * (size.X / procs)
		}
		for j := 0; j < procs; j++ {
			startY := j * (size.Y / procs)
			endY := size.Y
			if j < procs-1 {
				endY = (j + 1) * (size.Y / procs)
			}
			sX, eX, sY, eY := startX, endX, startY, endY
			utils.PanicCapturingGo(func() {
				defer waitGroup.Done()
				for x := sX; x < eX; x++ {
					for y := sY; y < eY; y++ {
						f(x, y)
					}
				}
			})
		}
	}
	waitGroup.Wait()
}
