package stats

import (
	"encoding/json"
	"math"

	"linkmon/internal/models"
	"linkmon/internal/timeseries"
)

// Insufficient is the value reported for a metric that has no data behind it
var Insufficient = math.NaN()

// Metrics describes connection stability over a window
type Metrics struct {
	StdDevMs      float64
	JitterMs      float64
	PacketLossPct float64
	PeakSpikeMs   float64
	Samples       int
	Synthetic     int
}

// Sufficient reports whether the metrics were computed from data
func (m Metrics) Sufficient() bool {
	return !math.IsNaN(m.StdDevMs)
}

// MarshalJSON encodes insufficient fields as null
func (m Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		StdDevMs      *float64 `json:"std_dev_ms"`
		JitterMs      *float64 `json:"jitter_ms"`
		PacketLossPct *float64 `json:"packet_loss_pct"`
		PeakSpikeMs   *float64 `json:"peak_spike_ms"`
		Samples       int      `json:"samples"`
		Synthetic     int      `json:"synthetic"`
	}{
		StdDevMs:      nullable(m.StdDevMs),
		JitterMs:      nullable(m.JitterMs),
		PacketLossPct: nullable(m.PacketLossPct),
		PeakSpikeMs:   nullable(m.PeakSpikeMs),
		Samples:       m.Samples,
		Synthetic:     m.Synthetic,
	})
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func insufficient(samples, synthetic int) Metrics {
	return Metrics{
		StdDevMs:      Insufficient,
		JitterMs:      Insufficient,
		PacketLossPct: Insufficient,
		PeakSpikeMs:   Insufficient,
		Samples:       samples,
		Synthetic:     synthetic,
	}
}

// Stability computes std-dev, jitter, packet loss and peak latency over the window
// ending at ref. All four fields are Insufficient when no provider has a positive latency.
func Stability(samples []models.PingSample, windowMinutes int, ref int64) Metrics {
	windowSeconds := int64(windowMinutes) * 60
	in := timeseries.Window(samples, windowSeconds, ref)

	pooled := pooledLatencies(in)
	if len(pooled) == 0 {
		return insufficient(len(in), countSynthetic(in))
	}

	return Metrics{
		StdDevMs:      stdDev(pooled),
		JitterMs:      jitter(in),
		PacketLossPct: packetLoss(in, windowSeconds),
		PeakSpikeMs:   peak(pooled),
		Samples:       len(in),
		Synthetic:     countSynthetic(in),
	}
}

func pooledLatencies(samples []models.PingSample) []float64 {
	providers := models.Providers(samples)
	var out []float64
	for _, s := range samples {
		for _, p := range providers {
			if v, ok := s.Latency(p); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation
func stdDev(values []float64) float64 {
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// jitter averages |l(t) - l(t-1)| over consecutive samples where a provider succeeded twice
func jitter(samples []models.PingSample) float64 {
	var sum float64
	var n int
	for _, p := range models.Providers(samples) {
		for i := 1; i < len(samples); i++ {
			prev, okPrev := samples[i-1].Latency(p)
			cur, okCur := samples[i].Latency(p)
			if okPrev && okCur {
				sum += math.Abs(cur - prev)
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// packetLoss counts failed and missing 15s segments against the expected count, clamped to [0,100]
func packetLoss(samples []models.PingSample, windowSeconds int64) float64 {
	expected := int(windowSeconds / cadence)
	if expected <= 0 {
		return 0
	}

	failed := 0
	for _, s := range samples {
		if s.Failed() {
			failed++
		}
	}
	missing := expected - len(samples)
	if missing < 0 {
		missing = 0
	}

	loss := float64(failed+missing) / float64(expected) * 100
	return math.Max(0, math.Min(100, loss))
}

func peak(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
