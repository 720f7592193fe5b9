package stats

import (
	"math"

	"linkmon/internal/models"
	"linkmon/internal/timeseries"
)

// Coverage fraction of expected samples a window needs to be trusted
const coverageThreshold = 0.8

// Average is the latency average of a window together with its data coverage
type Average struct {
	Value       float64 `json:"avg_ms"`
	CoveragePct int     `json:"coverage_pct"`
	Valid       bool    `json:"valid"`
	InWindow    int     `json:"samples"`
	Required    int     `json:"required"`
	Synthetic   int     `json:"synthetic"`
}

// WindowedAverage averages positive latencies per provider inside the window and then
// averages the providers that had data. ref is the newest sample timestamp.
func WindowedAverage(samples []models.PingSample, windowMinutes int, ref int64) Average {
	windowSeconds := int64(windowMinutes) * 60
	required := int(math.Ceil(float64(windowSeconds) / cadence))
	minRequired := int(math.Floor(float64(required) * coverageThreshold))

	in := timeseries.Window(samples, windowSeconds, ref)
	if len(in) == 0 {
		return Average{Required: required}
	}

	var sum float64
	var providers int
	for _, p := range models.Providers(in) {
		var psum float64
		var n int
		for _, s := range in {
			if v, ok := s.Latency(p); ok {
				psum += v
				n++
			}
		}
		if n > 0 {
			sum += psum / float64(n)
			providers++
		}
	}

	avg := Average{
		InWindow:  len(in),
		Required:  required,
		Valid:     len(in) >= minRequired,
		Synthetic: countSynthetic(in),
	}
	if required > 0 {
		avg.CoveragePct = int(math.Round(float64(len(in)) / float64(required) * 100))
	}
	if providers > 0 {
		avg.Value = sum / float64(providers)
	}
	return avg
}

// PooledAverage is the mean of every positive latency in the window, or NaN without data
func PooledAverage(samples []models.PingSample, windowMinutes int, ref int64) float64 {
	pooled := pooledLatencies(timeseries.Window(samples, int64(windowMinutes)*60, ref))
	if len(pooled) == 0 {
		return Insufficient
	}
	return mean(pooled)
}

func countSynthetic(samples []models.PingSample) int {
	n := 0
	for _, s := range samples {
		if s.Synthetic {
			n++
		}
	}
	return n
}
