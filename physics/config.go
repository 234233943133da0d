package physics

import (
	"os"

	"github.com/setanarut/v"
	"gopkg.in/yaml.v3"
)

// Config holds the fixed-timestep and solver parameters of a Scene. It is
// consumed at scene construction; only gravity can be changed afterwards.
type Config struct {
	// Gravity is passed to dynamic bodies when integrating velocity.
	Gravity v.Vec `yaml:"gravity"`
	// Iterations is the number of impulse solver passes per sub-step.
	// Must be at least 1.
	Iterations int `yaml:"iterations"`
	// FixedDt is the fixed simulation timestep in seconds. Must be positive.
	FixedDt float64 `yaml:"fixed_dt"`
	// MaxSubSteps caps catch-up work per Step call after a stall, so a slow
	// frame cannot spiral into ever longer physics updates.
	MaxSubSteps int `yaml:"max_sub_steps"`
	// CollisionSlop is the amount of penetration tolerated before positional
	// correction kicks in. Keeps resting contacts from oscillating.
	CollisionSlop float64 `yaml:"collision_slop"`
	// PositionCorrection is the fraction of remaining penetration removed per
	// sub-step.
	PositionCorrection float64 `yaml:"position_correction"`
	// BroadPhaseCellSize enables the uniform-grid broad-phase when positive.
	// Zero keeps the pairwise scan. Either choice yields identical candidate
	// pairs; this is a performance knob only.
	BroadPhaseCellSize float64 `yaml:"broad_phase_cell_size"`
}

// DefaultConfig returns the config used when nothing is specified: 60 Hz
// steps, downward gravity, ten solver iterations.
func DefaultConfig() Config {
	return Config{
		Gravity:            v.Vec{X: 0, Y: -9.8},
		Iterations:         10,
		FixedDt:            1.0 / 60.0,
		MaxSubSteps:        8,
		CollisionSlop:      0.01,
		PositionCorrection: 0.2,
	}
}

func (c Config) validate() error {
	if c.Iterations < 1 || c.FixedDt <= 0 || c.MaxSubSteps < 1 {
		return ErrInvalidConfig
	}
	if c.CollisionSlop < 0 || c.PositionCorrection < 0 || c.PositionCorrection > 1 {
		return ErrInvalidConfig
	}
	if c.BroadPhaseCellSize < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// LoadConfig reads a Config from a YAML file. A missing or unreadable file
// falls back to DefaultConfig without error; absent keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), nil
	}
	return cfg, nil
}

// SaveConfig writes a Config to a YAML file.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
