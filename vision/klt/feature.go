package klt

// PatchMask marks which samples of a patch buffer hold real pixels.
type PatchMask []bool

// SetAll assigns v to every entry.
func (m PatchMask) SetAll(v bool) {
	for i := range m {
		m[i] = v
	}
}

// Count returns the number of set entries.
func (m PatchMask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// Feature is the appearance of a feature on one image. Buffers are row major squares of side
// 2*Radius+1 sampled around (X, Y) when the feature was described.
type Feature struct {
	// X, Y is the location in the pixel coordinates of the image it belongs to.
	X, Y   float64
	Radius int

	Desc   []float64
	DerivX []float64
	DerivY []float64
	// Valid is false for samples that fell outside the image at description time.
	Valid PatchMask

	// Structure tensor of the template gradients over the valid samples.
	Gxx, Gyy, Gxy float64

	validCount int
}

// NewFeature allocates a feature whose buffers fit radius.
func NewFeature(radius int) *Feature {
	area := (2*radius + 1) * (2*radius + 1)
	return &Feature{
		Radius: radius,
		Desc:   make([]float64, area),
		DerivX: make([]float64, area),
		DerivY: make([]float64, area),
		Valid:  make(PatchMask, area),
	}
}

// Width is the side length of the patch.
func (f *Feature) Width() int {
	return 2*f.Radius + 1
}

// Area is the number of samples in the patch.
func (f *Feature) Area() int {
	return f.Width() * f.Width()
}

// ValidCount is the number of template samples that were inside the image.
func (f *Feature) ValidCount() int {
	return f.validCount
}

// IsComplete reports whether every template sample was inside the image.
func (f *Feature) IsComplete() bool {
	return f.validCount == f.Area()
}

// Determinant of the cached structure tensor.
func (f *Feature) Determinant() float64 {
	return f.Gxx*f.Gyy - f.Gxy*f.Gxy
}

// SetPosition moves the feature without touching its template.
func (f *Feature) SetPosition(x, y float64) {
	f.X, f.Y = x, y
}

// PyramidFeature holds one Feature per pyramid level, level 0 being the finest, plus the
// feature's location at full resolution.
type PyramidFeature struct {
	Desc []*Feature
	// X, Y is the full resolution location.
	X, Y float64
	// Cookie is left untouched by the tracker for the caller's bookkeeping.
	Cookie any
}

// NewPyramidFeature allocates a feature for a pyramid with numLevels levels.
func NewPyramidFeature(numLevels, radius int) *PyramidFeature {
	desc := make([]*Feature, numLevels)
	for i := range desc {
		desc[i] = NewFeature(radius)
	}
	return &PyramidFeature{Desc: desc}
}

// SetPosition sets the full resolution location.
func (pf *PyramidFeature) SetPosition(x, y float64) {
	pf.X, pf.Y = x, y
}

// Radius returns the patch radius shared by every level.
func (pf *PyramidFeature) Radius() int {
	return pf.Desc[0].Radius
}
