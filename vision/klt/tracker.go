package klt

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/klt/rimage"
)

// Tracker aligns single level features with one bound image. It keeps scratch buffers
// between calls, so a Tracker serves one feature at a time on one goroutine. Give every
// worker its own Tracker to track in parallel.
type Tracker struct {
	config      Config
	interp      rimage.Interpolator
	derivInterp rimage.Interpolator

	image  *rimage.FloatGray
	derivX *rimage.FloatGray
	derivY *rimage.FloatGray

	// scratch, overwritten on every call
	current      []float64
	currentValid PatchMask
	region       []float64
	bounds       subImageBounds

	iterations int
	lastError  float64
}

// NewTracker returns a tracker sampling intensities with interp and gradients with
// derivInterp. The interpolators are rebound to every image the tracker is given.
func NewTracker(interp, derivInterp rimage.Interpolator, config Config) *Tracker {
	return &Tracker{
		config:      config,
		interp:      interp,
		derivInterp: derivInterp,
		lastError:   math.Inf(1),
	}
}

// Config returns the thresholds the tracker runs with.
func (t *Tracker) Config() Config {
	return t.config
}

// SetImage binds the image to track on. The derivatives are only needed by Describe and
// may be nil; when given they must match the image size.
func (t *Tracker) SetImage(img, derivX, derivY *rimage.FloatGray) {
	rimage.MustSameImgSize(img, derivX, derivY)
	t.image = img
	t.derivX = derivX
	t.derivY = derivY
	t.interp.SetImage(img)
}

// Iterations returns the number of Newton iterations run by the last Track call.
func (t *Tracker) Iterations() int {
	return t.iterations
}

// Error returns the mean absolute residual computed by the last Track call, or +Inf when
// that call ended before a residual could be measured.
func (t *Tracker) Error() float64 {
	return t.lastError
}

func (t *Tracker) ensureScratch(area int) {
	if cap(t.current) < area {
		t.current = make([]float64, area)
		t.currentValid = make(PatchMask, area)
		t.region = make([]float64, area)
	}
	t.current = t.current[:area]
	t.currentValid = t.currentValid[:area]
	t.region = t.region[:area]
}

// sampleBorder reads the in-image part of a patch, located by t.bounds, into dst with
// interp and zeroes the rest.
func (t *Tracker) sampleBorder(interp rimage.Interpolator, dst []float64, width int) {
	b := t.bounds
	w, h := b.width(), b.height()
	buf := t.region[:w*h]
	interp.Region(b.srcX, b.srcY, buf, w, h)
	for i := range dst {
		dst[i] = 0
	}
	for j := 0; j < h; j++ {
		start := (b.dstY0+j)*width + b.dstX0
		copy(dst[start:start+w], buf[j*w:(j+1)*w])
	}
}

// markBorder sets mask for the samples inside t.bounds only.
func (t *Tracker) markBorder(mask PatchMask, width int) {
	mask.SetAll(false)
	b := t.bounds
	for j := b.dstY0; j < b.dstY1; j++ {
		for i := b.dstX0; i < b.dstX1; i++ {
			mask[j*width+i] = true
		}
	}
}

// Describe captures the template of f at its current position: intensity, both gradients,
// the validity of every sample and the structure tensor. It returns false when the patch is
// fully outside the image or too weakly textured to be tracked. Gradient images must be
// bound.
func (t *Tracker) Describe(f *Feature) bool {
	if t.derivX == nil || t.derivY == nil {
		panic(errors.New("describing a feature requires gradient images"))
	}
	area := f.Area()
	width := f.Width()
	t.ensureScratch(area)
	r := float64(f.Radius)
	tlX, tlY := f.X-r, f.Y-r
	imgW, imgH := t.image.Width(), t.image.Height()

	if isFullyOutside(tlX, tlY, width, imgW, imgH) {
		f.validCount = 0
		f.Gxx, f.Gyy, f.Gxy = 0, 0, 0
		return false
	}
	if isFullyInside(tlX, tlY, width, imgW, imgH) {
		t.interp.Region(tlX, tlY, f.Desc, width, width)
		t.derivInterp.SetImage(t.derivX)
		t.derivInterp.Region(tlX, tlY, f.DerivX, width, width)
		t.derivInterp.SetImage(t.derivY)
		t.derivInterp.Region(tlX, tlY, f.DerivY, width, width)
		f.Valid.SetAll(true)
	} else {
		t.bounds = computeSubImageBounds(tlX, tlY, width, imgW, imgH)
		t.sampleBorder(t.interp, f.Desc, width)
		t.derivInterp.SetImage(t.derivX)
		t.sampleBorder(t.derivInterp, f.DerivX, width)
		t.derivInterp.SetImage(t.derivY)
		t.sampleBorder(t.derivInterp, f.DerivY, width)
		t.markBorder(f.Valid, width)
	}

	f.Gxx, f.Gyy, f.Gxy, f.validCount = structureTensor(f, f.Valid)
	return t.solvable(f.Determinant(), f.validCount)
}

// structureTensor sums the outer products of the template gradients where mask is set.
func structureTensor(f *Feature, mask PatchMask) (gxx, gyy, gxy float64, count int) {
	for i, ok := range mask {
		if !ok {
			continue
		}
		dx, dy := f.DerivX[i], f.DerivY[i]
		gxx += dx * dx
		gyy += dy * dy
		gxy += dx * dy
		count++
	}
	return gxx, gyy, gxy, count
}

// solvable rejects textureless patches. A zero determinant is never solvable, even with a
// zero MinDeterminant.
func (t *Tracker) solvable(det float64, count int) bool {
	if count == 0 || det <= 0 {
		return false
	}
	return det >= t.config.MinDeterminant*float64(count)
}

// sampleCurrent fills t.current and t.currentValid from the bound image at the current
// position of f. The validity is joint: a sample counts only when both the template and the
// current patch have it. It returns the structure tensor over that joint mask, which is the
// cached one when nothing is missing. The position must not be fully outside.
func (t *Tracker) sampleCurrent(f *Feature) (gxx, gyy, gxy float64, count int) {
	width := f.Width()
	r := float64(f.Radius)
	tlX, tlY := f.X-r, f.Y-r
	imgW, imgH := t.image.Width(), t.image.Height()

	if f.IsComplete() && isFullyInside(tlX, tlY, width, imgW, imgH) {
		t.interp.Region(tlX, tlY, t.current, width, width)
		t.currentValid.SetAll(true)
		return f.Gxx, f.Gyy, f.Gxy, f.validCount
	}

	t.bounds = computeSubImageBounds(tlX, tlY, width, imgW, imgH)
	t.sampleBorder(t.interp, t.current, width)
	t.markBorder(t.currentValid, width)
	for i, ok := range f.Valid {
		if !ok {
			t.currentValid[i] = false
		}
	}
	return structureTensor(f, t.currentValid)
}

// residual is the mean absolute difference between the template and t.current over the
// joint mask, or +Inf when no sample is shared.
func (t *Tracker) residual(f *Feature) float64 {
	var sum float64
	count := 0
	for i, ok := range t.currentValid {
		if !ok {
			continue
		}
		sum += math.Abs(f.Desc[i] - t.current[i])
		count++
	}
	if count == 0 {
		return math.Inf(1)
	}
	return sum / float64(count)
}

// Track moves f to where its template best matches the bound image, starting from its
// current position. The position is updated after every iteration, so a feature that faults
// keeps the progress made until then. Only the image needs to be bound.
func (t *Tracker) Track(f *Feature) Fault {
	t.iterations = 0
	t.lastError = math.Inf(1)
	width := f.Width()
	t.ensureScratch(f.Area())
	r := float64(f.Radius)
	imgW, imgH := t.image.Width(), t.image.Height()

	if isFullyOutside(f.X-r, f.Y-r, width, imgW, imgH) {
		return FaultOutOfBounds
	}

	startX, startY := f.X, f.Y
	maxDrift := t.config.DriftFactor * float64(width)
	for t.iterations < t.config.MaxIterations {
		t.iterations++
		gxx, gyy, gxy, count := t.sampleCurrent(f)
		det := gxx*gyy - gxy*gxy
		if !t.solvable(det, count) {
			return FaultFailed
		}

		var ex, ey float64
		for i, ok := range t.currentValid {
			if !ok {
				continue
			}
			diff := f.Desc[i] - t.current[i]
			ex += diff * f.DerivX[i]
			ey += diff * f.DerivY[i]
		}
		dx := (gyy*ex - gxy*ey) / det
		dy := (gxx*ey - gxy*ex) / det
		f.X += dx
		f.Y += dy

		if isFullyOutside(f.X-r, f.Y-r, width, imgW, imgH) {
			return FaultOutOfBounds
		}
		if math.Abs(f.X-startX) > maxDrift || math.Abs(f.Y-startY) > maxDrift {
			return FaultDrifted
		}
		if math.Abs(dx) < t.config.MinPositionDelta && math.Abs(dy) < t.config.MinPositionDelta {
			break
		}
	}

	t.sampleCurrent(f)
	t.lastError = t.residual(f)
	if t.lastError > t.config.MaxPerPixelError {
		return FaultLargeError
	}
	return FaultSuccess
}
