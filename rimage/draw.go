package rimage

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/gofont/goregular"
)

var font *truetype.Font

// init sets up the fonts we want to use.
func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Font returns the font we use for drawing.
func Font() *truetype.Font {
	return font
}

// DrawString writes a string to the given context at a particular point.
func DrawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(Font(), &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, float64(p.X), float64(p.Y), 0, 0, float64(dc.Width()), 1, 0)
}

// DrawRectangleEmpty draws the outline of r into the context.
func DrawRectangleEmpty(dc *gg.Context, r image.Rectangle, c color.Color, width float64) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Stroke()
}

// Marker is one annotated location on a frame.
type Marker struct {
	X, Y   float64
	Radius int
	// Group picks the palette entry.
	Group int
	// FromX, FromY is the previous location; a line is drawn when HasTrail is set.
	FromX, FromY float64
	HasTrail     bool
	Label        string
}

// Palette returns n visually distinct colors.
func Palette(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		out[i] = colorful.Hsv(360*float64(i)/float64(n), 0.85, 0.95)
	}
	return out
}

// DrawMarkers renders img with a square of side 2*Radius+1 around every marker.
func DrawMarkers(img image.Image, markers []Marker, palette []color.Color) image.Image {
	dc := gg.NewContextForImage(img)
	for _, m := range markers {
		c := palette[m.Group%len(palette)]
		if m.HasTrail {
			dc.SetColor(c)
			dc.SetLineWidth(1)
			dc.DrawLine(m.FromX, m.FromY, m.X, m.Y)
			dc.Stroke()
		}
		r := image.Rect(int(m.X)-m.Radius, int(m.Y)-m.Radius, int(m.X)+m.Radius+1, int(m.Y)+m.Radius+1)
		DrawRectangleEmpty(dc, r, c, 1)
		if m.Label != "" {
			DrawString(dc, m.Label, image.Point{r.Max.X + 1, r.Min.Y}, c, 9)
		}
	}
	return dc.Image()
}
