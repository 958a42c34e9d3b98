package klt

// Fault is the outcome of one Track call.
type Fault int

const (
	// FaultSuccess means the feature converged with an acceptable residual.
	FaultSuccess Fault = iota
	// FaultOutOfBounds means no pixel of the patch overlaps the image.
	FaultOutOfBounds
	// FaultDrifted means the feature moved further than the drift limit in one call.
	FaultDrifted
	// FaultFailed means the structure tensor was too weak to solve for a step.
	FaultFailed
	// FaultLargeError means the final mean absolute residual was too large.
	FaultLargeError
)

// Faults lists every fault in declaration order.
var Faults = []Fault{FaultSuccess, FaultOutOfBounds, FaultDrifted, FaultFailed, FaultLargeError}

func (f Fault) String() string {
	switch f {
	case FaultSuccess:
		return "success"
	case FaultOutOfBounds:
		return "out_of_bounds"
	case FaultDrifted:
		return "drifted"
	case FaultFailed:
		return "failed"
	case FaultLargeError:
		return "large_error"
	default:
		return "unknown"
	}
}
