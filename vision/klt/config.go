// Package klt implements a pyramidal Kanade-Lucas-Tomasi feature tracker. A feature's patch
// template is captured once on every pyramid level; each new frame is then aligned coarse to
// fine by Newton iterations on the intensity residual.
package klt

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Config contains the thresholds controlling convergence and rejection.
type Config struct {
	// MaxPerPixelError bounds the mean absolute intensity residual of an accepted track.
	MaxPerPixelError float64 `json:"max_per_pixel_error"`
	// MaxIterations bounds the Newton iterations run on one level.
	MaxIterations int `json:"max_iterations"`
	// MinDeterminant is multiplied by the number of valid patch pixels; the structure
	// tensor determinant must reach the product or the feature is untrackable.
	MinDeterminant float64 `json:"min_determinant"`
	// MinPositionDelta stops iterating once both axes move less than it.
	MinPositionDelta float64 `json:"min_position_delta"`
	// ForbiddenBorder is reserved and has no effect yet.
	ForbiddenBorder int `json:"forbidden_border"`
	// DriftFactor times the patch width is how far a feature may move during one Track
	// call before it is reported as drifted.
	DriftFactor float64 `json:"drift_factor"`
}

// DefaultDriftFactor makes the drift limit equal to the patch width.
const DefaultDriftFactor = 1.0

// DefaultConfig returns the thresholds that work for 8 bit intensity images.
func DefaultConfig() Config {
	return Config{
		MaxPerPixelError: 25,
		MaxIterations:    15,
		MinDeterminant:   0.001,
		MinPositionDelta: 0.01,
		DriftFactor:      DefaultDriftFactor,
	}
}

// LoadConfig reads a Config from a json file. Fields absent from the file keep their
// default values.
func LoadConfig(file string) (Config, error) {
	config := DefaultConfig()
	filePath := filepath.Clean(file)
	configFile, err := os.Open(filePath)
	if err != nil {
		return Config{}, errors.Wrap(err, "cannot open klt config")
	}
	defer utils.UncheckedErrorFunc(configFile.Close)
	if err := json.NewDecoder(configFile).Decode(&config); err != nil {
		return Config{}, errors.Wrapf(err, "cannot decode klt config %q", file)
	}
	if err := config.Validate(file); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate ensures all parts of the Config are valid.
func (config Config) Validate(path string) error {
	if config.MaxPerPixelError <= 0 {
		return utils.NewConfigValidationError(path, errors.New("max_per_pixel_error should be > 0"))
	}
	if config.MaxIterations < 1 {
		return utils.NewConfigValidationError(path, errors.New("max_iterations should be >= 1"))
	}
	if config.MinDeterminant < 0 {
		return utils.NewConfigValidationError(path, errors.New("min_determinant should be >= 0"))
	}
	if config.MinPositionDelta <= 0 {
		return utils.NewConfigValidationError(path, errors.New("min_position_delta should be > 0"))
	}
	if config.ForbiddenBorder < 0 {
		return utils.NewConfigValidationError(path, errors.New("forbidden_border should be >= 0"))
	}
	if config.DriftFactor <= 0 {
		return utils.NewConfigValidationError(path, errors.New("drift_factor should be > 0"))
	}
	return nil
}
