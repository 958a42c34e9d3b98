package klt

import (
	"image"
	"image/color"
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/klt/rimage"
)

// blobs has gradients that turn within a 7x7 patch, so patches are well conditioned.
func blobs(x, y float64) float64 {
	return 128 + 60*math.Sin(x/6)*math.Sin(y/7)
}

// wideBlobs is blobs at twice the size, for pyramids.
func wideBlobs(x, y float64) float64 {
	return 128 + 60*math.Sin(x/12)*math.Sin(y/14)
}

func shifted(f func(x, y float64) float64, dx, dy float64) func(x, y float64) float64 {
	return func(x, y float64) float64 {
		return f(x-dx, y-dy)
	}
}

func render(w, h int, f func(x, y float64) float64) *rimage.FloatGray {
	img := rimage.NewFloatGray(w, h)
	img.Fill(func(x, y int) float64 {
		return f(float64(x), float64(y))
	})
	return img
}

func render8(w, h int, f func(x, y float64) float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := math.Round(f(float64(x), float64(y)))
			img.SetGray(x, y, color.Gray{uint8(math.Max(0, math.Min(255, v)))})
		}
	}
	return img
}

func newTestTracker(config Config) *Tracker {
	return NewTracker(rimage.NewBilinearInterpolator(), rimage.NewBilinearInterpolator(), config)
}

// bindWithGradients binds img and its gradients to tracker.
func bindWithGradients(t *testing.T, tracker *Tracker, img *rimage.FloatGray) {
	t.Helper()
	dx, dy, err := rimage.ComputeGradients(img)
	test.That(t, err, test.ShouldBeNil)
	tracker.SetImage(img, dx, dy)
}

// analyticPyramid samples a function directly at every level instead of resampling an
// image, so levels are exact.
type analyticPyramid struct {
	scales []float64
	levels []*rimage.FloatGray
	derivX []*rimage.FloatGray
	derivY []*rimage.FloatGray
}

func newAnalyticPyramid(t *testing.T, w, h int, scales []int, f func(x, y float64) float64) *analyticPyramid {
	t.Helper()
	pyr := &analyticPyramid{}
	for _, s := range scales {
		scale := float64(s)
		level := render(w/s, h/s, func(x, y float64) float64 {
			return f(x*scale, y*scale)
		})
		dx, dy, err := rimage.ComputeGradients(level)
		test.That(t, err, test.ShouldBeNil)
		pyr.scales = append(pyr.scales, scale)
		pyr.levels = append(pyr.levels, level)
		pyr.derivX = append(pyr.derivX, dx)
		pyr.derivY = append(pyr.derivY, dy)
	}
	return pyr
}

func (p *analyticPyramid) NumLevels() int                     { return len(p.levels) }
func (p *analyticPyramid) Scale(level int) float64            { return p.scales[level] }
func (p *analyticPyramid) Level(level int) *rimage.FloatGray  { return p.levels[level] }
func (p *analyticPyramid) DerivX(level int) *rimage.FloatGray { return p.derivX[level] }
func (p *analyticPyramid) DerivY(level int) *rimage.FloatGray { return p.derivY[level] }
