package main

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/pthm-cable/lakeflow/config"
	"github.com/pthm-cable/lakeflow/telemetry"
)

func TestScore(t *testing.T) {
	targets := Targets{ResetRate: 0.02, TrailMean: 8}

	tests := []struct {
		name string
		m    telemetry.WindowStats
		want float64
	}{
		{"on target", telemetry.WindowStats{ResetRate: 0.02, TrailMean: 8}, 0},
		{"double reset rate", telemetry.WindowStats{ResetRate: 0.04, TrailMean: 8}, 1},
		{"half trail", telemetry.WindowStats{ResetRate: 0.02, TrailMean: 4}, 0.25},
		{"speed ignored", telemetry.WindowStats{ResetRate: 0.02, TrailMean: 8, SpeedP50: 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := score(tt.m, targets); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyToConfigClampsAndRounds(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector(cfg)
	pv.ApplyToConfig(cfg, []float64{99, 20.6, 1})

	if cfg.Particles.SpeedScale != 5.0 {
		t.Errorf("SpeedScale = %v, want 5", cfg.Particles.SpeedScale)
	}
	if cfg.Particles.MaxAge != 21 {
		t.Errorf("MaxAge = %d, want 21", cfg.Particles.MaxAge)
	}
	if cfg.Particles.MaxHistory != 2 {
		t.Errorf("MaxHistory = %d, want 2", cfg.Particles.MaxHistory)
	}
	if cfg.Particles.ResetAgeMargin >= cfg.Particles.MaxAge {
		t.Errorf("ResetAgeMargin %d not below MaxAge %d", cfg.Particles.ResetAgeMargin, cfg.Particles.MaxAge)
	}
}

func TestRowWriterHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	write := rowWriter(&buf)
	for i := 1; i <= 3; i++ {
		if err := write(evalRecord{Eval: i}); err != nil {
			t.Fatal(err)
		}
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if !strings.HasPrefix(lines[0], "eval,fitness") {
		t.Errorf("header = %q", lines[0])
	}
}
