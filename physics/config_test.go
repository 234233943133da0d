package physics_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/setanarut/v"

	"github.com/simkit/simkit/physics"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := physics.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != physics.DefaultConfig() {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physics.yaml")

	want := physics.DefaultConfig()
	want.Gravity = v.Vec{X: 1.5, Y: -20}
	want.FixedDt = 1.0 / 120.0
	want.MaxSubSteps = 4
	want.BroadPhaseCellSize = 3

	if err := physics.SaveConfig(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := physics.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physics.yaml")
	if err := os.WriteFile(path, []byte("iterations: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := physics.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Iterations != 4 {
		t.Errorf("iterations = %d, want 4", cfg.Iterations)
	}
	// Unspecified keys keep their defaults.
	if cfg.FixedDt != physics.DefaultConfig().FixedDt {
		t.Errorf("fixed_dt = %v, want default", cfg.FixedDt)
	}
}

func TestNewSceneRejectsBadConfig(t *testing.T) {
	bad := []physics.Config{
		{FixedDt: 0, Iterations: 1, MaxSubSteps: 1},
		{FixedDt: 1.0 / 60, Iterations: 0, MaxSubSteps: 1},
		{FixedDt: 1.0 / 60, Iterations: 1, MaxSubSteps: 0},
		{FixedDt: 1.0 / 60, Iterations: 1, MaxSubSteps: 1, PositionCorrection: 2},
	}
	for i, cfg := range bad {
		if _, err := physics.NewScene(cfg); !errors.Is(err, physics.ErrInvalidConfig) {
			t.Errorf("config %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}
