package rimage

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// DefaultPyramidScales are the downsampling factors used when none are configured.
var DefaultPyramidScales = []int{1, 2, 4}

// Pyramid holds progressively downsampled copies of an image. Level 0 is the finest level.
// Scale(i) is the ratio between the pixel spacing of level i and the full resolution image,
// so a full resolution coordinate c maps to c/Scale(i) on level i.
type Pyramid struct {
	scales []float64
	levels []*FloatGray
	derivX []*FloatGray
	derivY []*FloatGray
}

// NewPyramid builds a pyramid from img. Scales must be strictly increasing and every level
// must keep at least one pixel. Levels other than scale 1 are resampled with a linear filter,
// which also acts as the anti-aliasing blur.
func NewPyramid(img image.Image, scales []int) (*Pyramid, error) {
	if len(scales) == 0 {
		return nil, errors.New("pyramid needs at least one level")
	}
	gray := MakeGray(img)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	pyr := &Pyramid{
		scales: make([]float64, 0, len(scales)),
		levels: make([]*FloatGray, 0, len(scales)),
	}
	for i, s := range scales {
		if s < 1 {
			return nil, errors.Errorf("pyramid scale %d must be >= 1", s)
		}
		if i > 0 && s <= scales[i-1] {
			return nil, errors.Errorf("pyramid scales must be strictly increasing, got %v", scales)
		}
		lw, lh := w/s, h/s
		if lw < 1 || lh < 1 {
			return nil, errors.Errorf("image of size %dx%d is too small for pyramid scale %d", w, h, s)
		}
		var level *FloatGray
		if s == 1 {
			level = NewFloatGrayFromImage(gray)
		} else {
			level = NewFloatGrayFromImage(imaging.Resize(gray, lw, lh, imaging.Linear))
		}
		pyr.scales = append(pyr.scales, float64(s))
		pyr.levels = append(pyr.levels, level)
	}
	return pyr, nil
}

// ComputeGradients fills the derivative images of every level. They are only needed to
// describe features; tracking uses the intensities alone.
func (p *Pyramid) ComputeGradients() error {
	p.derivX = make([]*FloatGray, len(p.levels))
	p.derivY = make([]*FloatGray, len(p.levels))
	for i, level := range p.levels {
		dx, dy, err := ComputeGradients(level)
		if err != nil {
			return errors.Wrapf(err, "computing gradients of level %d", i)
		}
		p.derivX[i], p.derivY[i] = dx, dy
	}
	return nil
}

// NumLevels returns the number of levels.
func (p *Pyramid) NumLevels() int {
	return len(p.levels)
}

// Scale returns the scale factor of level i.
func (p *Pyramid) Scale(i int) float64 {
	return p.scales[i]
}

// Level returns the intensity image of level i.
func (p *Pyramid) Level(i int) *FloatGray {
	return p.levels[i]
}

// DerivX returns the x derivative of level i, or nil before ComputeGradients.
func (p *Pyramid) DerivX(i int) *FloatGray {
	if p.derivX == nil {
		return nil
	}
	return p.derivX[i]
}

// DerivY returns the y derivative of level i, or nil before ComputeGradients.
func (p *Pyramid) DerivY(i int) *FloatGray {
	if p.derivY == nil {
		return nil
	}
	return p.derivY[i]
}
