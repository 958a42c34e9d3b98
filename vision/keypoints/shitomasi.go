package keypoints

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/klt/rimage"
	"go.viam.com/klt/utils"
)

// ShiTomasiConfig contains the parameters needed to compute Shi-Tomasi corners.
type ShiTomasiConfig struct {
	// WindowSize is the odd side length of the window the gradients are summed over.
	WindowSize int `json:"window_size"`
	MaxCorners int `json:"max_corners"`
	// MinDistance is the smallest euclidean distance allowed between two corners.
	MinDistance float64 `json:"min_distance"`
	// QualityLevel rejects corners whose response is below this fraction of the best one.
	QualityLevel float64 `json:"quality_level"`
	// Border is the number of pixels along each edge where no corner is reported.
	Border int `json:"border"`
}

// DefaultShiTomasiConfig returns a configuration suited to 7x7 tracking patches.
func DefaultShiTomasiConfig() ShiTomasiConfig {
	return ShiTomasiConfig{
		WindowSize:   5,
		MaxCorners:   200,
		MinDistance:  8,
		QualityLevel: 0.05,
		Border:       4,
	}
}

// LoadShiTomasiConfiguration loads a ShiTomasiConfig from a json file. Absent fields keep
// their default values.
func LoadShiTomasiConfiguration(file string) (ShiTomasiConfig, error) {
	config := DefaultShiTomasiConfig()
	filePath := filepath.Clean(file)
	configFile, err := os.Open(filePath)
	if err != nil {
		return ShiTomasiConfig{}, errors.Wrap(err, "cannot open detector config")
	}
	defer goutils.UncheckedErrorFunc(configFile.Close)
	if err := json.NewDecoder(configFile).Decode(&config); err != nil {
		return ShiTomasiConfig{}, errors.Wrapf(err, "cannot decode detector config %q", file)
	}
	if err := config.Validate(file); err != nil {
		return ShiTomasiConfig{}, err
	}
	return config, nil
}

// Validate ensures all parts of the ShiTomasiConfig are valid.
func (config ShiTomasiConfig) Validate(path string) error {
	if config.WindowSize < 3 || config.WindowSize%2 == 0 {
		return goutils.NewConfigValidationError(path, errors.New("window_size should be odd and >= 3"))
	}
	if config.MaxCorners < 1 {
		return goutils.NewConfigValidationError(path, errors.New("max_corners should be >= 1"))
	}
	if config.MinDistance < 0 {
		return goutils.NewConfigValidationError(path, errors.New("min_distance should be >= 0"))
	}
	if config.QualityLevel <= 0 || config.QualityLevel > 1 {
		return goutils.NewConfigValidationError(path, errors.New("quality_level should be in (0, 1]"))
	}
	if config.Border < 0 {
		return goutils.NewConfigValidationError(path, errors.New("border should be >= 0"))
	}
	return nil
}

func boxKernel(size int) *rimage.Kernel {
	content := make([][]float64, size)
	for i := range content {
		content[i] = make([]float64, size)
		for j := range content[i] {
			content[i][j] = 1
		}
	}
	return &rimage.Kernel{Content: content, Height: size, Width: size}
}

// MinEigenvalueResponse returns, for every pixel, the smallest eigenvalue of the structure
// tensor summed over a window x window neighborhood.
func MinEigenvalueResponse(dx, dy *rimage.FloatGray, window int) (*rimage.FloatGray, error) {
	rimage.MustSameImgSize(dx, dy)
	w, h := dx.Width(), dx.Height()
	xx := rimage.NewFloatGray(w, h)
	yy := rimage.NewFloatGray(w, h)
	xy := rimage.NewFloatGray(w, h)
	xx.Dense().MulElem(dx.Dense(), dx.Dense())
	yy.Dense().MulElem(dy.Dense(), dy.Dense())
	xy.Dense().MulElem(dx.Dense(), dy.Dense())

	box := boxKernel(window)
	sums := make([]*rimage.FloatGray, 3)
	for i, product := range []*rimage.FloatGray{xx, yy, xy} {
		summed, err := rimage.ConvolveFloat(product, box)
		if err != nil {
			return nil, errors.Wrap(err, "summing structure tensor")
		}
		sums[i] = summed
	}

	response := rimage.NewFloatGray(w, h)
	utils.ParallelForEachPixel(response.Bounds().Size(), func(x, y int) {
		a, c, b := sums[0].GetXY(x, y), sums[1].GetXY(x, y), sums[2].GetXY(x, y)
		half := (a - c) / 2
		response.SetXY(x, y, (a+c)/2-math.Sqrt(half*half+b*b))
	})
	return response, nil
}

// ComputeShiTomasi finds up to cfg.MaxCorners corners of img given its gradients. Corners
// are local maxima of the minimum eigenvalue response, at least cfg.MinDistance apart, and
// are returned strongest first.
func ComputeShiTomasi(dx, dy *rimage.FloatGray, cfg ShiTomasiConfig) (KeyPoints, error) {
	if err := cfg.Validate("detector"); err != nil {
		return nil, err
	}
	response, err := MinEigenvalueResponse(dx, dy, cfg.WindowSize)
	if err != nil {
		return nil, err
	}
	w, h := response.Width(), response.Height()
	best := 0.0
	for y := cfg.Border; y < h-cfg.Border; y++ {
		for x := cfg.Border; x < w-cfg.Border; x++ {
			best = math.Max(best, response.GetXY(x, y))
		}
	}
	if best <= 0 {
		return KeyPoints{}, nil
	}
	threshold := cfg.QualityLevel * best

	var (
		scores     []float64
		candidates []r2.Point
	)
	for y := cfg.Border; y < h-cfg.Border; y++ {
		for x := cfg.Border; x < w-cfg.Border; x++ {
			v := response.GetXY(x, y)
			if v < threshold || !isLocalMax(response, x, y) {
				continue
			}
			scores = append(scores, v)
			candidates = append(candidates, r2.Point{X: float64(x), Y: float64(y)})
		}
	}
	order := make([]int, len(scores))
	floats.Argsort(scores, order)

	corners := make(KeyPoints, 0, cfg.MaxCorners)
	minDist2 := cfg.MinDistance * cfg.MinDistance
	for i := len(order) - 1; i >= 0 && len(corners) < cfg.MaxCorners; i-- {
		p := candidates[order[i]]
		if tooClose(corners, p, minDist2) {
			continue
		}
		corners = append(corners, p)
	}
	return corners, nil
}

// ComputeShiTomasiFromImage computes gradients of img and finds its corners.
func ComputeShiTomasiFromImage(img *rimage.FloatGray, cfg ShiTomasiConfig) (KeyPoints, error) {
	dx, dy, err := rimage.ComputeGradients(img)
	if err != nil {
		return nil, err
	}
	return ComputeShiTomasi(dx, dy, cfg)
}

func isLocalMax(response *rimage.FloatGray, x, y int) bool {
	v := response.GetXY(x, y)
	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			if (i != 0 || j != 0) && response.In(x+i, y+j) && response.GetXY(x+i, y+j) > v {
				return false
			}
		}
	}
	return true
}

func tooClose(corners KeyPoints, p r2.Point, minDist2 float64) bool {
	for _, c := range corners {
		d := c.Sub(p)
		if d.Dot(d) < minDist2 {
			return true
		}
	}
	return false
}
