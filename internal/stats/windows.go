// Package stats computes windowed latency averages and stability metrics.
package stats

import "linkmon/internal/timeseries"

// Windows maps selectable window ids to their length in minutes
var Windows = map[string]int{
	"3min":  3,
	"5min":  5,
	"15min": 15,
	"60min": 60,
	"1hr":   60,
	"3hr":   180,
	"4hr":   240,
	"12hr":  720,
	"24hr":  1440,
	"3day":  4320,
	"7day":  10080,
	"30day": 43200,
}

// DefaultWindow is used when a window id is unknown
const DefaultWindow = "15min"

// AveragePeriods are the windows reported on the network status panel, shortest first
var AveragePeriods = []string{"15min", "1hr", "4hr", "12hr", "24hr", "7day"}

// WindowMinutes returns the length of a window id, falling back to 15 minutes
func WindowMinutes(id string) int {
	if m, ok := Windows[id]; ok {
		return m
	}
	return Windows[DefaultWindow]
}

const cadence = timeseries.CadenceSeconds
