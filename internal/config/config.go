// Package config loads session settings from YAML or JSON files and applies overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/aretw0/subboxer/pkg/store"
	"github.com/mitchellh/mapstructure"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the settings file read when none is given.
const DefaultPath = "subboxer.yaml"

// Config holds the tunable session settings.
type Config struct {
	// RotationScale is degrees of in-plane rotation per voxel of drag.
	RotationScale float64 `yaml:"rotation_scale" json:"rotation_scale" mapstructure:"rotation_scale"`
	Thickness     float64 `yaml:"thickness" json:"thickness" mapstructure:"thickness"`
	MinThickness  float64 `yaml:"min_thickness" json:"min_thickness" mapstructure:"min_thickness"`
	// PlaneNormal is the axis the plane normal starts along: x, y or z.
	PlaneNormal string `yaml:"plane_normal" json:"plane_normal" mapstructure:"plane_normal"`
	// Reference seeds the default in-plane basis; it is crossed with the z axis.
	Reference []float64 `yaml:"reference" json:"reference" mapstructure:"reference"`
	LogLevel  string    `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	// Workers bounds apply concurrency; zero means one per CPU.
	Workers int `yaml:"workers" json:"workers" mapstructure:"workers"`
}

// Default returns the built-in settings.
func Default() Config {
	ref := store.DefaultReference
	return Config{
		RotationScale: 1.0,
		Thickness:     5,
		MinThickness:  1,
		PlaneNormal:   string(domain.AxisZ),
		Reference:     []float64{ref.X, ref.Y, ref.Z},
		LogLevel:      "info",
	}
}

// Load reads settings from path on top of the defaults. A missing file yields the defaults
// unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Merge decodes map-shaped overrides, such as a session "config" command, onto c.
// Unknown keys are rejected.
func (c Config) Merge(overrides map[string]any) (Config, error) {
	out := c
	// Slices decode element-wise into existing storage, so an override replaces the
	// whole reference rather than patching its leading components.
	if _, ok := overrides["reference"]; ok {
		out.Reference = nil
	} else {
		out.Reference = append([]float64(nil), c.Reference...)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ZeroFields:       false,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(overrides); err != nil {
		return Config{}, fmt.Errorf("config overrides: %w", err)
	}
	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.RotationScale == 0 {
		errs = append(errs, errors.New("rotation_scale must be non-zero"))
	}
	if c.MinThickness <= 0 {
		errs = append(errs, errors.New("min_thickness must be positive"))
	}
	if c.Thickness < c.MinThickness {
		errs = append(errs, fmt.Errorf("thickness %g is below min_thickness %g", c.Thickness, c.MinThickness))
	}
	if _, ok := domain.Axis(c.PlaneNormal).Unit(); !ok {
		errs = append(errs, fmt.Errorf("plane_normal %q is not x, y or z", c.PlaneNormal))
	}
	if len(c.Reference) != 3 {
		errs = append(errs, fmt.Errorf("reference needs 3 components, got %d", len(c.Reference)))
	} else if r3.Norm(c.ReferenceVector()) == 0 {
		errs = append(errs, errors.New("reference must be non-zero"))
	}
	if c.Workers < 0 {
		errs = append(errs, errors.New("workers must not be negative"))
	}
	return errors.Join(errs...)
}

// ReferenceVector returns Reference as a vector, or the zero vector if malformed.
func (c Config) ReferenceVector() r3.Vec {
	if len(c.Reference) != 3 {
		return r3.Vec{}
	}
	return r3.Vec{X: c.Reference[0], Y: c.Reference[1], Z: c.Reference[2]}
}

// Normal returns PlaneNormal as an axis.
func (c Config) Normal() domain.Axis { return domain.Axis(c.PlaneNormal) }
