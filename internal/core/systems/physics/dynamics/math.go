package dynamics

import "math"

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// pow1m is (1-damping)^dt, the per-step damping factor.
func pow1m(damping, dt float64) float64 {
	return math.Pow(1-damping, dt)
}
