package rimage

import (
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
)

func TestNewPyramid(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{90})
		}
	}
	img.SetGray(10, 10, color.Gray{255})

	pyr, err := NewPyramid(img, DefaultPyramidScales)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pyr.NumLevels(), test.ShouldEqual, 3)
	sizes := []image.Point{{64, 48}, {32, 24}, {16, 12}}
	for i, size := range sizes {
		test.That(t, pyr.Level(i).Bounds().Size(), test.ShouldResemble, size)
		test.That(t, pyr.Scale(i), test.ShouldEqual, float64(DefaultPyramidScales[i]))
	}
	// the finest level is an exact copy
	test.That(t, pyr.Level(0).GetXY(10, 10), test.ShouldEqual, 255.)
	test.That(t, pyr.Level(0).GetXY(30, 30), test.ShouldEqual, 90.)
	// away from the bright pixel a constant image stays constant
	test.That(t, pyr.Level(2).GetXY(12, 9), test.ShouldAlmostEqual, 90., 1)

	test.That(t, pyr.DerivX(0), test.ShouldBeNil)
	test.That(t, pyr.DerivY(0), test.ShouldBeNil)
	test.That(t, pyr.ComputeGradients(), test.ShouldBeNil)
	for i := 0; i < pyr.NumLevels(); i++ {
		test.That(t, SameImgSize(pyr.DerivX(i), pyr.Level(i)), test.ShouldBeTrue)
		test.That(t, SameImgSize(pyr.DerivY(i), pyr.Level(i)), test.ShouldBeTrue)
	}
	test.That(t, pyr.DerivX(0).GetXY(30, 30), test.ShouldEqual, 0.)
}

func TestNewPyramidErrors(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 10))
	for _, tc := range []struct {
		scales []int
		errStr string
	}{
		{nil, "at least one level"},
		{[]int{0, 2}, ">= 1"},
		{[]int{1, 4, 2}, "strictly increasing"},
		{[]int{1, 2, 16}, "too small"},
	} {
		_, err := NewPyramid(img, tc.scales)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, tc.errStr)
	}
}
