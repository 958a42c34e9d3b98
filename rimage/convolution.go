package rimage

import (
	"image"

	"github.com/pkg/errors"

	"go.viam.com/klt/utils"
)

// Kernel is a convolution matrix. Content is indexed [y][x].
type Kernel struct {
	Content [][]float64
	Height  int
	Width   int
}

// At returns the kernel weight at (x, y).
func (k *Kernel) At(x, y int) float64 {
	return k.Content[y][x]
}

// Size returns the kernel dimensions as a point (width, height).
func (k *Kernel) Size() image.Point {
	return image.Point{k.Width, k.Height}
}

// Sum adds every weight of the kernel.
func (k *Kernel) Sum() float64 {
	sum := 0.
	for _, row := range k.Content {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

// Normalize returns a copy of the kernel whose weights sum to one. Kernels that sum to zero
// are returned unchanged.
func (k *Kernel) Normalize() *Kernel {
	sum := k.Sum()
	if sum == 0 {
		return k
	}
	content := make([][]float64, k.Height)
	for y, row := range k.Content {
		content[y] = make([]float64, k.Width)
		for x, v := range row {
			content[y][x] = v / sum
		}
	}
	return &Kernel{content, k.Height, k.Width}
}

// GetSobelX returns the Sobel kernel in the x direction, scaled so that convolving a ramp
// of slope 1 yields 1.
func GetSobelX() Kernel {
	return Kernel{
		[][]float64{
			{-1. / 8, 0, 1. / 8},
			{-2. / 8, 0, 2. / 8},
			{-1. / 8, 0, 1. / 8},
		},
		3,
		3,
	}
}

// GetSobelY returns the Sobel kernel in the y direction, scaled like GetSobelX.
func GetSobelY() Kernel {
	return Kernel{
		[][]float64{
			{-1. / 8, -2. / 8, -1. / 8},
			{0, 0, 0},
			{1. / 8, 2. / 8, 1. / 8},
		},
		3,
		3,
	}
}

// GetGaussian5 returns the binomial approximation of a 5x5 gaussian. Normalize before use.
func GetGaussian5() Kernel {
	return Kernel{
		[][]float64{
			{1, 4, 6, 4, 1},
			{4, 16, 24, 16, 4},
			{6, 24, 36, 24, 6},
			{4, 16, 24, 16, 4},
			{1, 4, 6, 4, 1},
		},
		5,
		5,
	}
}

// ConvolveFloat applies kernel to img. The kernel is centered on each pixel and pixels
// beyond the border are replaced by the nearest edge pixel. There is no clamping of the
// result.
func ConvolveFloat(img *FloatGray, kernel *Kernel) (*FloatGray, error) {
	if kernel.Width%2 == 0 || kernel.Height%2 == 0 {
		return nil, errors.Errorf("kernel size must be odd, got %dx%d", kernel.Width, kernel.Height)
	}
	w, h := img.Width(), img.Height()
	anchor := image.Point{kernel.Width / 2, kernel.Height / 2}
	result := NewFloatGray(w, h)
	utils.ParallelForEachPixel(image.Point{w, h}, func(x, y int) {
		sum := 0.
		for ky := 0; ky < kernel.Height; ky++ {
			sy := utils.ClampInt(y+ky-anchor.Y, 0, h-1)
			for kx := 0; kx < kernel.Width; kx++ {
				sx := utils.ClampInt(x+kx-anchor.X, 0, w-1)
				sum += img.GetXY(sx, sy) * kernel.At(kx, ky)
			}
		}
		result.SetXY(x, y, sum)
	})
	return result, nil
}
