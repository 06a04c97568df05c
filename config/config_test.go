package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/lakeflow/systems"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Particles.MaxAge != 50 {
		t.Errorf("max_age = %d, want 50", cfg.Particles.MaxAge)
	}
	if cfg.Particles.MaxHistory != 8 {
		t.Errorf("max_history = %d, want 8", cfg.Particles.MaxHistory)
	}
	if cfg.Particles.SpeedScale != 1 {
		t.Errorf("speed_scale = %v, want 1", cfg.Particles.SpeedScale)
	}
	if cfg.Derived.Interpolation != systems.Bilinear {
		t.Errorf("interpolation = %v, want bilinear", cfg.Derived.Interpolation)
	}
	if cfg.Derived.Workers < 1 {
		t.Errorf("derived workers = %d, want >= 1", cfg.Derived.Workers)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := "particles:\n  max_history: 12\nfield:\n  interpolation: bicubic\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Particles.MaxHistory != 12 {
		t.Errorf("max_history = %d, want 12", cfg.Particles.MaxHistory)
	}
	// Untouched keys keep their defaults
	if cfg.Particles.MaxAge != 50 {
		t.Errorf("max_age = %d, want default 50", cfg.Particles.MaxAge)
	}
	if cfg.Derived.Interpolation != systems.Bicubic {
		t.Errorf("interpolation = %v, want bicubic", cfg.Derived.Interpolation)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
	}{
		{"unknown interpolation", "field:\n  interpolation: nearest\n"},
		{"zero history", "particles:\n  max_history: 0\n"},
		{"zero count", "particles:\n  count: 0\n"},
		{"zero max cells", "field:\n  max_cells: 0\n"},
		{"bad yaml", "particles: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFlowConfig(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	fc := cfg.FlowConfig(99)
	if fc.Seed != 99 || fc.Count != cfg.Particles.Count {
		t.Errorf("FlowConfig = %+v", fc)
	}
	if err := fc.Particle.Validate(); err != nil {
		t.Errorf("default particle config invalid: %v", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Particles.Count = 1234

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if back.Particles.Count != 1234 {
		t.Errorf("count = %d, want 1234", back.Particles.Count)
	}
}
