// Package main provides CMA-ES search over the fluid simulation tunables.
package main

import (
	"seep/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Config key, also the CSV column name
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tuned parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tuned parameters. Only the
// scalar tunables appear here; the structural flags (enabled, advanced,
// top_down) stay whatever the base config says.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "pressure_weight", Min: 0.0, Max: 0.1, Default: 0.01},
			// stable_amount = 0 would keep every cell awake forever
			{Name: "stable_amount", Min: 0.00001, Max: 0.005, Default: 0.0001},
			{Name: "min_weight", Min: 0.0005, Max: 0.05, Default: 0.005},
			{Name: "mix_factor", Min: 0.0, Max: 1.0, Default: 0.1},
			{Name: "update_interval", Min: 0.01, Max: 0.2, Default: 0.05},
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
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	i := 0
	cfg.Fluid.PressureWeight = clamped[i]; i++
	cfg.Fluid.StableAmount = clamped[i]; i++
	cfg.Fluid.MinWeight = clamped[i]; i++
	cfg.Fluid.MixFactor = clamped[i]; i++
	cfg.Fluid.UpdateInterval = clamped[i]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Fluid.PressureWeight,
		cfg.Fluid.StableAmount,
		cfg.Fluid.MinWeight,
		cfg.Fluid.MixFactor,
		cfg.Fluid.UpdateInterval,
	}
}
