package klt

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// validSpan returns the half open range [lo, hi) of patch offsets i in [0, width) whose
// sample tl+i can be interpolated from an axis of size pixels, meaning 0 <= tl+i <= size-1.
// An empty span is returned as lo == hi. Non finite positions have no valid samples.
func validSpan(tl float64, width, size int) (int, int) {
	lo, hi := 0, 0
	last := float64(size - 1)
	found := false
	for i := 0; i < width; i++ {
		v := tl + float64(i)
		if v >= 0 && v <= last {
			if !found {
				lo = i
				found = true
			}
			hi = i + 1
		}
	}
	if !found {
		return 0, 0
	}
	return lo, hi
}

// isFullyInside reports whether every sample of a width by width patch with top-left
// (tlX, tlY) lies inside an imgW by imgH image.
func isFullyInside(tlX, tlY float64, width, imgW, imgH int) bool {
	x0, x1 := validSpan(tlX, width, imgW)
	y0, y1 := validSpan(tlY, width, imgH)
	return x0 == 0 && x1 == width && y0 == 0 && y1 == width
}

// isFullyOutside reports whether no sample of the patch lies inside the image.
func isFullyOutside(tlX, tlY float64, width, imgW, imgH int) bool {
	x0, x1 := validSpan(tlX, width, imgW)
	y0, y1 := validSpan(tlY, width, imgH)
	return x0 == x1 || y0 == y1
}

// subImageBounds maps the in-image part of a patch that straddles the image border.
// Destination coordinates index the patch; the source is where those samples are read.
type subImageBounds struct {
	dstX0, dstY0 int
	dstX1, dstY1 int
	// srcX, srcY is the sub-pixel location of patch sample (dstX0, dstY0).
	srcX, srcY float64
	// src holds the integer pixels the samples are anchored on; its size matches the
	// destination.
	src image.Rectangle
}

func (b subImageBounds) width() int {
	return b.dstX1 - b.dstX0
}

func (b subImageBounds) height() int {
	return b.dstY1 - b.dstY0
}

// computeSubImageBounds finds the part of a width by width patch with top-left (tlX, tlY)
// that lies inside an imgW by imgH image. Callers must rule out isFullyOutside first; an
// unreachable region panics.
func computeSubImageBounds(tlX, tlY float64, width, imgW, imgH int) subImageBounds {
	x0, x1 := validSpan(tlX, width, imgW)
	y0, y1 := validSpan(tlY, width, imgH)
	if x0 == x1 || y0 == y1 {
		panic(errors.Errorf("patch at (%v, %v) of width %d does not reach the %dx%d image", tlX, tlY, width, imgW, imgH))
	}
	b := subImageBounds{
		dstX0: x0,
		dstY0: y0,
		dstX1: x1,
		dstY1: y1,
		srcX:  tlX + float64(x0),
		srcY:  tlY + float64(y0),
	}
	sx, sy := int(math.Floor(b.srcX)), int(math.Floor(b.srcY))
	b.src = image.Rect(sx, sy, sx+b.width(), sy+b.height())
	return b
}
