// Package main provides CMA-ES optimization for meadow simulation parameters.
package main

import (
	"github.com/pthm-cable/meadow/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Energy economy
			{Name: "initial_energy", Path: "energy.initial", Min: 2, Max: 40, Default: 10},
			{Name: "nutrition", Path: "energy.nutrition", Min: 5, Max: 60, Default: 30},
			{Name: "move_cost", Path: "energy.move_cost", Min: 0.2, Max: 3.0, Default: 1.0},
			{Name: "stay_cost", Path: "energy.stay_cost", Min: 0.05, Max: 1.5, Default: 0.3},
			// Regrowth
			{Name: "spawn_rate", Path: "plants.spawn_rate", Min: 0.001, Max: 0.05, Default: 0.01},
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

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Energy.Initial = clamped[0]
	cfg.Energy.Nutrition = clamped[1]
	cfg.Energy.MoveCost = clamped[2]
	cfg.Energy.StayCost = clamped[3]
	cfg.Plants.SpawnRate = clamped[4]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Energy.Initial,
		cfg.Energy.Nutrition,
		cfg.Energy.MoveCost,
		cfg.Energy.StayCost,
		cfg.Plants.SpawnRate,
	}
}
