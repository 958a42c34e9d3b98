package utils

// RollingAverage is the mean of the last NumSamples values added.
type RollingAverage struct {
	data   []float64
	pos    int
	filled int
}

// NewRollingAverage returns an average over numSamples values, at least one.
func NewRollingAverage(numSamples int) *RollingAverage {
	if numSamples < 1 {
		numSamples = 1
	}
	return &RollingAverage{data: make([]float64, numSamples)}
}

// NumSamples is the window length.
func (ra *RollingAverage) NumSamples() int {
	return len(ra.data)
}

// Add pushes x, evicting the oldest value once the window is full.
func (ra *RollingAverage) Add(x float64) {
	ra.data[ra.pos] = x
	ra.pos++
	if ra.pos >= len(ra.data) {
		ra.pos = 0
	}
	if ra.filled < len(ra.data) {
		ra.filled++
	}
}

// Average of the values currently in the window, or 0 before any was added.
func (ra *RollingAverage) Average() float64 {
	if ra.filled == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range ra.data[:ra.filled] {
		sum += d
	}
	return sum / float64(ra.filled)
}
