// Package config loads and validates a single run's configuration, the way
// the teacher's internal/model package carried CutSettings/AppConfig: one
// JSON-tagged struct with a Default constructor and a loader that falls
// back to defaults when no file is given.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vec3Config is the JSON/YAML-friendly rendering of a Vector3 default.
type Vec3Config struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

type ExtrusionConfig struct {
	Epsilon float64 `json:"epsilon" yaml:"epsilon"`
}

type ArcConfig struct {
	Generate       bool    `json:"generate" yaml:"generate"`
	ConstantSpeed  bool    `json:"constant_speed" yaml:"constant_speed"`
	MaxSegments    int     `json:"max_segments" yaml:"max_segments"`
	MaxAngleDeg    float64 `json:"max_angle" yaml:"max_angle"`
	MinAngleDeg    float64 `json:"min_angle" yaml:"min_angle"`
	Radius         float64 `json:"radius" yaml:"radius"`
	TravelRadius   float64 `json:"travel_radius" yaml:"travel_radius"`
	HalveTravels   bool    `json:"halve_travels" yaml:"halve_travels"`
	MinRadius      float64 `json:"min_radius" yaml:"min_radius"`
	ConstrainRadius bool   `json:"constrain_radius" yaml:"constrain_radius"`
}

type RegArcGenConfig struct {
	Enable             bool    `json:"enable" yaml:"enable"`
	MaxSegmentLength   float64 `json:"max_segment_length" yaml:"max_segment_length"`
	MaxAngleDeg        float64 `json:"max_angle" yaml:"max_angle"`
	MaxAngleDivergence float64 `json:"max_angle_divergence" yaml:"max_angle_divergence"`
	MinSegmentCount    int     `json:"min_segment_count" yaml:"min_segment_count"`
	ArcsSupportZ       bool    `json:"arcs_support_z" yaml:"arcs_support_z"`
}

// SmoothingConfig is a reserved extension point (Open Question c): the
// fields are parsed but not validated, and the smoothing pass itself is a
// documented no-op, matching the original's partial implementation.
type SmoothingConfig struct {
	Enable      bool    `json:"enable" yaml:"enable"`
	MinAngleDeg float64 `json:"min_angle" yaml:"min_angle"`
	NewAngleDeg float64 `json:"new_angle" yaml:"new_angle"`
}

type OutputFormat string

const (
	OutputFormatBase     OutputFormat = "base"
	OutputFormatExtended OutputFormat = "extended"
)

type OutputConfig struct {
	Format        OutputFormat `json:"format" yaml:"format"`
	SubdivideArcs bool         `json:"subdivide_arcs" yaml:"subdivide_arcs"`
	GenerateG15   bool         `json:"generate_g15" yaml:"generate_g15"`
	ArcsSupportZ  bool         `json:"arcs_support_z" yaml:"arcs_support_z"`
}

type DefaultsConfig struct {
	Acceleration          Vec3Config `json:"acceleration" yaml:"acceleration"`
	ExtrusionAcceleration float64    `json:"extrusion_acceleration" yaml:"extrusion_acceleration"`
	Feedrate              Vec3Config `json:"feedrate" yaml:"feedrate"`
	ExtrusionFeedrate     float64    `json:"extrusion_feedrate" yaml:"extrusion_feedrate"`
	Jerk                  Vec3Config `json:"jerk" yaml:"jerk"`
	ExtrusionJerk         float64    `json:"extrusion_jerk" yaml:"extrusion_jerk"`
}

type OptionsConfig struct {
	AllNoExtrudeAsTravel bool `json:"all_no_extrude_as_travel" yaml:"all_no_extrude_as_travel"`
	BruteForceFeedrate   bool `json:"brute_force_feedrate" yaml:"brute_force_feedrate"`
}

// Config is the complete run configuration, covering every option listed
// in section 6 of the specification.
type Config struct {
	Extrusion ExtrusionConfig `json:"extrusion" yaml:"extrusion"`
	Arc       ArcConfig       `json:"arc" yaml:"arc"`
	RegArcGen RegArcGenConfig `json:"reg_arc_gen" yaml:"reg_arc_gen"`
	Smoothing SmoothingConfig `json:"smoothing" yaml:"smoothing"`
	Output    OutputConfig    `json:"output" yaml:"output"`
	Defaults  DefaultsConfig  `json:"defaults" yaml:"defaults"`
	Options   OptionsConfig   `json:"options" yaml:"options"`
}

// Default returns the built-in default configuration, mirroring the
// teacher's DefaultSettings()/DefaultAppConfig() constructor pattern.
func Default() Config {
	return Config{
		Extrusion: ExtrusionConfig{Epsilon: 1e-4},
		Arc: ArcConfig{
			Generate:        true,
			ConstantSpeed:   false,
			MaxSegments:     1000,
			MaxAngleDeg:     180,
			MinAngleDeg:     5,
			Radius:          0.4,
			TravelRadius:    1.0,
			HalveTravels:    false,
			MinRadius:       0.05,
			ConstrainRadius: false,
		},
		RegArcGen: RegArcGenConfig{
			Enable:             true,
			MaxSegmentLength:   2.0,
			MaxAngleDeg:        45,
			MaxAngleDivergence: 5,
			MinSegmentCount:    4,
			ArcsSupportZ:       false,
		},
		Smoothing: SmoothingConfig{Enable: false, MinAngleDeg: 5, NewAngleDeg: 2},
		Output: OutputConfig{
			Format:        OutputFormatBase,
			SubdivideArcs: true,
			GenerateG15:   false,
			ArcsSupportZ:  false,
		},
		Defaults: DefaultsConfig{
			Acceleration:          Vec3Config{X: 1500, Y: 1500, Z: 100},
			ExtrusionAcceleration: 1500,
			Feedrate:              Vec3Config{X: 6000, Y: 6000, Z: 600},
			ExtrusionFeedrate:     1800,
			Jerk:                  Vec3Config{X: 10, Y: 10, Z: 0.4},
			ExtrusionJerk:         5,
		},
		Options: OptionsConfig{AllNoExtrudeAsTravel: false, BruteForceFeedrate: false},
	}
}

// Load reads a configuration from path, choosing JSON or YAML by file
// extension, and validates it. An empty path returns the built-in default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read configuration file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse YAML configuration: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse JSON configuration: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations that would make the pipeline's geometry
// or kinematics ill-defined.
func (c Config) Validate() error {
	if c.Arc.Generate && c.Arc.MinRadius <= 0 {
		return fmt.Errorf("arc.min_radius must be positive when arc.generate is set")
	}
	if c.Arc.MaxSegments < 0 {
		return fmt.Errorf("arc.max_segments must not be negative")
	}
	if c.RegArcGen.Enable && c.RegArcGen.MinSegmentCount < 2 {
		return fmt.Errorf("reg_arc_gen.min_segment_count must be at least 2")
	}
	if c.Defaults.Jerk.X < 0 || c.Defaults.Jerk.Y < 0 || c.Defaults.Jerk.Z < 0 {
		return fmt.Errorf("defaults.jerk components must not be negative")
	}
	if c.Defaults.Acceleration.X < 0 || c.Defaults.Acceleration.Y < 0 || c.Defaults.Acceleration.Z < 0 {
		return fmt.Errorf("defaults.acceleration components must not be negative")
	}
	return nil
}
