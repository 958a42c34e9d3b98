package rimage

import (
	"image"
	"image/draw"

	"github.com/pkg/errors"
)

// Sized is anything with image bounds; both image.Image and FloatGray qualify.
type Sized interface {
	Bounds() image.Rectangle
}

// SameImgSize compares images to see if they're the same size.
func SameImgSize(g1, g2 Sized) bool {
	return g1.Bounds().Size() == g2.Bounds().Size()
}

// MustSameImgSize panics when any of the images differ in size from the first one.
// Nil images are skipped.
func MustSameImgSize(first *FloatGray, others ...*FloatGray) {
	for _, other := range others {
		if other == nil {
			continue
		}
		if !SameImgSize(first, other) {
			panic(errors.Errorf("these images aren't the same size (%d %d) != (%d %d)",
				first.Width(), first.Height(), other.Width(), other.Height()))
		}
	}
}

// MakeGray converts any image to an 8 bit gray image anchored at the origin.
func MakeGray(pic image.Image) *image.Gray {
	if gray, ok := pic.(*image.Gray); ok && gray.Bounds().Min == (image.Point{}) {
		return gray
	}
	result := image.NewGray(image.Rect(0, 0, pic.Bounds().Dx(), pic.Bounds().Dy()))
	draw.Draw(result, result.Bounds(), pic, pic.Bounds().Min, draw.Src)
	return result
}
