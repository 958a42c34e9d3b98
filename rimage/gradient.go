package rimage

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ComputeGradients returns the x and y derivative images of img using the scaled Sobel
// kernels. Both derivatives have the same size as img.
func ComputeGradients(img *FloatGray) (*FloatGray, *FloatGray, error) {
	sobelX, sobelY := GetSobelX(), GetSobelY()
	dx, err := ConvolveFloat(img, &sobelX)
	if err != nil {
		return nil, nil, err
	}
	dy, err := ConvolveFloat(img, &sobelY)
	if err != nil {
		return nil, nil, err
	}
	return dx, dy, nil
}

// GradientMagnitude returns sqrt(dx^2 + dy^2) per pixel.
func GradientMagnitude(dx, dy *FloatGray) *FloatGray {
	MustSameImgSize(dx, dy)
	var mag mat.Dense
	mag.Apply(func(i, j int, v float64) float64 {
		return math.Hypot(v, dy.data.At(i, j))
	}, dx.data)
	return NewFloatGrayFromDense(&mag)
}
