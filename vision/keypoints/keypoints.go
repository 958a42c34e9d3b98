// Package keypoints finds image locations worth tracking. For now:
// - Shi-Tomasi minimum eigenvalue corners
package keypoints

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
)

// KeyPoints is a set of sub-pixel image locations, strongest first.
type KeyPoints []r2.Point

// RescaleKeypoints maps keypoints found on a downsampled image back to full resolution.
func RescaleKeypoints(kps KeyPoints, scale float64) KeyPoints {
	out := make(KeyPoints, len(kps))
	for i, kp := range kps {
		out[i] = kp.Mul(scale)
	}
	return out
}

// PlotKeypoints plots keypoints on image.
func PlotKeypoints(img image.Image, kps KeyPoints, outName string) error {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	dc := gg.NewContext(w, h)
	dc.DrawImage(img, -img.Bounds().Min.X, -img.Bounds().Min.Y)

	// draw keypoints on image
	dc.SetRGBA(0, 0, 1, 0.5)
	for _, p := range kps {
		dc.DrawCircle(p.X, p.Y, 3.0)
		dc.Fill()
	}
	return dc.SavePNG(outName)
}
