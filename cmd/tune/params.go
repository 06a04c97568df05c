package main

import (
	"math"

	"github.com/pthm-cable/lakeflow/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // Rounded when applied
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the particle parameters, defaulting to cfg's values.
func NewParamVector(cfg *config.Config) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "speed_scale", Path: "particles.speed_scale", Min: 0.1, Max: 5.0, Default: cfg.Particles.SpeedScale},
			{Name: "max_age", Path: "particles.max_age", Min: 15, Max: 300, Default: float64(cfg.Particles.MaxAge), Integer: true},
			{Name: "max_history", Path: "particles.max_history", Min: 2, Max: 40, Default: float64(cfg.Particles.MaxHistory), Integer: true},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds, rounding integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := math.Max(spec.Min, math.Min(v[i], spec.Max))
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct. Order must
// match Specs. The reset age margin is kept below max_age.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Particles.SpeedScale = clamped[0]
	cfg.Particles.MaxAge = int(clamped[1])
	cfg.Particles.MaxHistory = int(clamped[2])
	if cfg.Particles.ResetAgeMargin >= cfg.Particles.MaxAge {
		cfg.Particles.ResetAgeMargin = cfg.Particles.MaxAge / 2
	}
}
