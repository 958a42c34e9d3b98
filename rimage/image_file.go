package rimage

import (
	"image"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	"go.uber.org/multierr"
)

// ReadImageFromFile decodes the image at path. The format is chosen from the file contents;
// besides the standard formats, PPM and QOI frames are understood.
func ReadImageFromFile(path string) (image.Image, error) {
	img, err := imaging.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read image %q", path)
	}
	return img, nil
}

// ReadFloatGrayFromFile reads an image and converts it to luminance.
func ReadFloatGrayFromFile(path string) (*FloatGray, error) {
	img, err := ReadImageFromFile(path)
	if err != nil {
		return nil, err
	}
	return NewFloatGrayFromImage(img), nil
}

// WriteImageToFile encodes img to path, creating the parent directory. The format follows
// the file extension.
func WriteImageToFile(path string, img image.Image) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrapf(err, "cannot create directory for %q", path)
	}
	var encode func(io.Writer, image.Image) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".qoi":
		encode = qoi.Encode
	case ".ppm":
		encode = func(w io.Writer, frame image.Image) error {
			return ppm.Encode(w, toRGBA(frame))
		}
	default:
		return errors.Wrapf(imaging.Save(img, path), "cannot write image %q", path)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return errors.Wrapf(err, "cannot write image %q", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return errors.Wrapf(encode(f, img), "cannot encode image %q", path)
}

// toRGBA returns img as an RGBA image anchored at the origin, the only model the PPM
// encoder writes.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
