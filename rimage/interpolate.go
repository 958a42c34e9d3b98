package rimage

import (
	"math"

	"go.viam.com/klt/utils"
)

// Interpolator samples an image at sub-pixel locations. An Interpolator is rebound to a
// new image with SetImage without reallocating, and is not safe for concurrent use.
type Interpolator interface {
	SetImage(img *FloatGray)
	Image() *FloatGray
	// Get returns the value at (x, y), which must lie inside the image.
	Get(x, y float64) float64
	// Region fills dst, a row major width by height buffer, with the samples at
	// (tlX+i, tlY+j). Samples that stray outside the image take the nearest edge value.
	Region(tlX, tlY float64, dst []float64, width, height int)
}

// BilinearInterpolator implements Interpolator with bilinear weights.
type BilinearInterpolator struct {
	img *FloatGray
}

// NewBilinearInterpolator returns an interpolator with no image bound.
func NewBilinearInterpolator() *BilinearInterpolator {
	return &BilinearInterpolator{}
}

// SetImage binds img.
func (bi *BilinearInterpolator) SetImage(img *FloatGray) {
	bi.img = img
}

// Image returns the bound image.
func (bi *BilinearInterpolator) Image() *FloatGray {
	return bi.img
}

// Get returns the bilinear interpolation at (x, y).
func (bi *BilinearInterpolator) Get(x, y float64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	ax, ay := x-x0, y-y0
	w, h := bi.img.Width(), bi.img.Height()
	xi0 := utils.ClampInt(int(x0), 0, w-1)
	yi0 := utils.ClampInt(int(y0), 0, h-1)
	xi1 := utils.MinInt(xi0+1, w-1)
	yi1 := utils.MinInt(yi0+1, h-1)
	top := bi.img.row(yi0)
	bottom := bi.img.row(yi1)
	return (1-ay)*((1-ax)*top[xi0]+ax*top[xi1]) + ay*((1-ax)*bottom[xi0]+ax*bottom[xi1])
}

// Region samples a width by height grid. All samples share the same fractional offset so
// the weights are computed once.
func (bi *BilinearInterpolator) Region(tlX, tlY float64, dst []float64, width, height int) {
	x0, y0 := math.Floor(tlX), math.Floor(tlY)
	ax, ay := tlX-x0, tlY-y0
	w00 := (1 - ax) * (1 - ay)
	w10 := ax * (1 - ay)
	w01 := (1 - ax) * ay
	w11 := ax * ay
	w, h := bi.img.Width(), bi.img.Height()
	ix, iy := int(x0), int(y0)
	for j := 0; j < height; j++ {
		yi0 := utils.ClampInt(iy+j, 0, h-1)
		yi1 := utils.ClampInt(iy+j+1, 0, h-1)
		top := bi.img.row(yi0)
		bottom := bi.img.row(yi1)
		out := dst[j*width : (j+1)*width]
		for i := range out {
			xi0 := utils.ClampInt(ix+i, 0, w-1)
			xi1 := utils.ClampInt(ix+i+1, 0, w-1)
			out[i] = w00*top[xi0] + w10*top[xi1] + w01*bottom[xi0] + w11*bottom[xi1]
		}
	}
}
