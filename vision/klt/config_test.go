package klt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.viam.com/test"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "klt.json")
	test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	test.That(t, config.Validate("default"), test.ShouldBeNil)
	test.That(t, config.DriftFactor, test.ShouldEqual, DefaultDriftFactor)
	test.That(t, config.ForbiddenBorder, test.ShouldEqual, 0)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{"max_iterations": 30, "min_position_delta": 0.001, "drift_factor": 1.5}`)
	config, err := LoadConfig(path)
	test.That(t, err, test.ShouldBeNil)

	expected := DefaultConfig()
	expected.MaxIterations = 30
	expected.MinPositionDelta = 0.001
	expected.DriftFactor = 1.5
	if diff := cmp.Diff(expected, config); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = LoadConfig(writeConfig(t, `{"max_iterations": `))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot decode")
}

func TestConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"max error", func(c *Config) { c.MaxPerPixelError = 0 }, "max_per_pixel_error"},
		{"iterations", func(c *Config) { c.MaxIterations = 0 }, "max_iterations"},
		{"determinant", func(c *Config) { c.MinDeterminant = -1 }, "min_determinant"},
		{"position delta", func(c *Config) { c.MinPositionDelta = 0 }, "min_position_delta"},
		{"border", func(c *Config) { c.ForbiddenBorder = -2 }, "forbidden_border"},
		{"drift", func(c *Config) { c.DriftFactor = 0 }, "drift_factor"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.modify(&config)
			err := config.Validate("path")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.wantErr)
		})
	}

	config := DefaultConfig()
	config.MinDeterminant = 0
	test.That(t, config.Validate("path"), test.ShouldBeNil)

	_, err := LoadConfig(writeConfig(t, `{"max_iterations": -1}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_iterations")
}
