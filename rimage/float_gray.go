package rimage

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"

	"go.viam.com/klt/utils"
)

// FloatGray is a single band image of float64 intensities. Pixels are stored in a gonum
// matrix, so the row index is y and the column index is x. Intensities converted from
// 8 bit images keep the 0..255 range.
type FloatGray struct {
	data          *mat.Dense
	width, height int
}

// NewFloatGray returns a zeroed image. Width and height must be positive.
func NewFloatGray(width, height int) *FloatGray {
	return &FloatGray{
		data:   mat.NewDense(height, width, nil),
		width:  width,
		height: height,
	}
}

// NewFloatGrayFromDense wraps m without copying it.
func NewFloatGrayFromDense(m *mat.Dense) *FloatGray {
	h, w := m.Dims()
	return &FloatGray{data: m, width: w, height: h}
}

// NewFloatGrayFromImage converts any image to luminance. The result is always anchored at
// (0, 0) regardless of the source bounds.
func NewFloatGrayFromImage(img image.Image) *FloatGray {
	bounds := img.Bounds()
	out := NewFloatGray(bounds.Dx(), bounds.Dy())
	if gray, ok := img.(*image.Gray); ok {
		for y := 0; y < out.height; y++ {
			row := out.row(y)
			off := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			for x := range row {
				row[x] = float64(gray.Pix[off+x])
			}
		}
		return out
	}
	for y := 0; y < out.height; y++ {
		row := out.row(y)
		for x := range row {
			g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			row[x] = float64(g.Y) / 257
		}
	}
	return out
}

// Width returns the number of columns.
func (fg *FloatGray) Width() int {
	return fg.width
}

// Height returns the number of rows.
func (fg *FloatGray) Height() int {
	return fg.height
}

// Bounds returns the image rectangle, always anchored at the origin.
func (fg *FloatGray) Bounds() image.Rectangle {
	return image.Rect(0, 0, fg.width, fg.height)
}

// In reports whether (x, y) is a pixel of the image.
func (fg *FloatGray) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < fg.width && y < fg.height
}

// GetXY returns the intensity at (x, y).
func (fg *FloatGray) GetXY(x, y int) float64 {
	return fg.data.At(y, x)
}

// SetXY sets the intensity at (x, y).
func (fg *FloatGray) SetXY(x, y int, v float64) {
	fg.data.Set(y, x, v)
}

// Dense exposes the backing matrix.
func (fg *FloatGray) Dense() *mat.Dense {
	return fg.data
}

// SubImage returns a view sharing pixels with fg. The rectangle is clipped to the image
// and the view is re-anchored at the origin. It returns nil if nothing is left.
func (fg *FloatGray) SubImage(r image.Rectangle) *FloatGray {
	r = r.Intersect(fg.Bounds())
	if r.Empty() {
		return nil
	}
	view := fg.data.Slice(r.Min.Y, r.Max.Y, r.Min.X, r.Max.X).(*mat.Dense)
	return &FloatGray{data: view, width: r.Dx(), height: r.Dy()}
}

// Clone returns a deep copy.
func (fg *FloatGray) Clone() *FloatGray {
	return NewFloatGrayFromDense(mat.DenseCopyOf(fg.data))
}

// Fill calls f for every pixel and stores the result.
func (fg *FloatGray) Fill(f func(x, y int) float64) {
	for y := 0; y < fg.height; y++ {
		row := fg.row(y)
		for x := range row {
			row[x] = f(x, y)
		}
	}
}

// ToGray rounds and clamps the intensities into an 8 bit image.
func (fg *FloatGray) ToGray() *image.Gray {
	out := image.NewGray(fg.Bounds())
	for y := 0; y < fg.height; y++ {
		row := fg.row(y)
		for x, v := range row {
			out.Pix[y*out.Stride+x] = uint8(math.Round(utils.ClampF64(v, 0, 255)))
		}
	}
	return out
}

// row returns the pixels of row y. Views created by SubImage share their parent's stride.
func (fg *FloatGray) row(y int) []float64 {
	raw := fg.data.RawMatrix()
	start := y * raw.Stride
	return raw.Data[start : start+fg.width]
}
