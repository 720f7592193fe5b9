package monitor

import "linkmon/internal/models"

// Synthesizer produces a placeholder sample when the latency feed is unavailable
type Synthesizer interface {
	Sample(ts int64) models.PingSample
}

// RenderEvent tells presentation which link views need redrawing
type RenderEvent struct {
	Links []models.LinkID `json:"links"`
	// Full redraws every link from retained state instead of a diff
	Full bool `json:"full"`
	// Stats marks recomputed averages and stability
	Stats bool `json:"stats"`
}

// Option configures a Monitor
type Option func(*Monitor)

// WithClock sets the clock driving all timers
func WithClock(c Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

// WithArchive persists real samples, activity and link transitions
func WithArchive(a models.Archive) Option {
	return func(m *Monitor) {
		m.archive = a
	}
}

// WithPlaceholder sets the source of synthetic samples used while the latency feed fails
func WithPlaceholder(s Synthesizer) Option {
	return func(m *Monitor) {
		m.placeholder = s
	}
}

// WithRenderHook registers a callback run on the event loop after link views change
func WithRenderHook(f func(RenderEvent, Snapshot)) Option {
	return func(m *Monitor) {
		m.render = append(m.render, f)
	}
}

// WithSynchronousDispatch runs fetches and completions inline on the calling goroutine.
// Combined with a FakeClock this makes the monitor fully deterministic.
func WithSynchronousDispatch() Option {
	return func(m *Monitor) {
		m.sync = true
		m.spawn = func(f func()) { f() }
		m.post = func(f func()) { f() }
	}
}
