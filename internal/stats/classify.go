package stats

import "math"

// Class grades a stability metric for display
type Class string

const (
	ClassStable   Class = "stable"
	ClassModerate Class = "moderate"
	ClassUnstable Class = "unstable"
	ClassUnknown  Class = "unknown"
)

// threshold pairs are the upper bounds for stable and moderate
var thresholds = map[string][2]float64{
	"stdDev":     {5, 15},
	"jitter":     {5, 20},
	"packetLoss": {0.1, 1},
	"peakSpike":  {100, 300},
}

// Classify grades a metric value by name
func Classify(metric string, value float64) Class {
	t, ok := thresholds[metric]
	if !ok || math.IsNaN(value) {
		return ClassUnknown
	}
	switch {
	case value <= t[0]:
		return ClassStable
	case value <= t[1]:
		return ClassModerate
	default:
		return ClassUnstable
	}
}

// Classes grades every field of m
func (m Metrics) Classes() map[string]Class {
	return map[string]Class{
		"stdDev":     Classify("stdDev", m.StdDevMs),
		"jitter":     Classify("jitter", m.JitterMs),
		"packetLoss": Classify("packetLoss", m.PacketLossPct),
		"peakSpike":  Classify("peakSpike", m.PeakSpikeMs),
	}
}

// SignalBars converts an average latency into a 0-5 bar signal strength
func SignalBars(avgMs float64) int {
	r := math.Round(avgMs)
	switch {
	case math.IsNaN(avgMs):
		return 0
	case r <= 30:
		return 5
	case r <= 50:
		return 4
	case r <= 70:
		return 3
	case r <= 100:
		return 2
	default:
		return 1
	}
}
