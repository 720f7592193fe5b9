package monitor

import (
	"math"
	"strings"
	"time"

	"linkmon/internal/linkstate"
	"linkmon/internal/metrics"
	"linkmon/internal/models"
	"linkmon/internal/stats"
)

// PeriodAverage is the windowed average latency of one reporting period
type PeriodAverage struct {
	Period string `json:"period"`
	stats.Average
}

// Snapshot is a read-only copy of the monitor state for concurrent readers
type Snapshot struct {
	UpdatedAt        time.Time                                `json:"updated_at"`
	Connected        bool                                     `json:"connected"`
	Links            []linkstate.View                         `json:"links"`
	ChartRange       string                                   `json:"chart_range"`
	Chart            []models.PingSample                      `json:"chart"`
	StatsRange       string                                   `json:"stats_range"`
	Stability        stats.Metrics                            `json:"stability"`
	SignalBars       int                                      `json:"signal_bars"`
	Averages         []PeriodAverage                          `json:"averages"`
	Network          models.NetworkStatus                     `json:"network"`
	Activity         []models.ActivityEntry                   `json:"activity"`
	Schedules        map[models.LinkID]models.RestartSchedule `json:"schedules"`
	SyntheticSamples int                                      `json:"synthetic_samples"`
}

// Snapshot returns the latest published state
func (m *Monitor) Snapshot() Snapshot {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()
	return m.snap
}

// publish rebuilds the snapshot from loop state
func (m *Monitor) publish() {
	if m.chartDirty {
		m.chart = m.store.Chart.Samples()
		m.chartDirty = false
	}
	recomputed := m.statsDirty
	if m.statsDirty {
		m.refreshStats()
		m.statsDirty = false
	}

	schedules := make(map[models.LinkID]models.RestartSchedule, len(m.schedules))
	for id, s := range m.schedules {
		schedules[id] = s
	}

	snap := Snapshot{
		UpdatedAt:        m.clock.Now(),
		Connected:        m.connected,
		Links:            m.links.Views(m.clock.Now()),
		ChartRange:       m.store.ChartRange(),
		Chart:            m.chart,
		StatsRange:       m.statsRange,
		Stability:        m.stability,
		SignalBars:       m.signal,
		Averages:         m.averages,
		Network:          m.network,
		Activity:         m.activity,
		Schedules:        schedules,
		SyntheticSamples: m.store.Chart.SyntheticCount(),
	}

	m.snapMu.Lock()
	m.snap = snap
	m.snapMu.Unlock()

	updateGauges(snap)
	if recomputed {
		m.emit(RenderEvent{Stats: true})
	}
}

// refreshStats recomputes averages, stability and signal strength from the full series
func (m *Monitor) refreshStats() {
	samples := m.store.Full.Samples()
	var ref int64
	if len(samples) > 0 {
		ref = samples[len(samples)-1].Timestamp
	}

	averages := make([]PeriodAverage, 0, len(stats.AveragePeriods))
	for _, period := range stats.AveragePeriods {
		averages = append(averages, PeriodAverage{
			Period:  period,
			Average: stats.WindowedAverage(samples, stats.WindowMinutes(period), ref),
		})
	}
	m.averages = averages

	m.stability = m.stabilityOf(m.statsRange, samples)
	m.signal = stats.SignalBars(stats.PooledAverage(samples, stats.WindowMinutes(m.statsRange), ref))
}

func (m *Monitor) emit(ev RenderEvent) {
	if len(m.render) == 0 {
		return
	}
	snap := m.Snapshot()
	for _, f := range m.render {
		f(ev, snap)
	}
}

func updateGauges(snap Snapshot) {
	if snap.Connected {
		metrics.BackendConnected.Set(1)
	} else {
		metrics.BackendConnected.Set(0)
	}

	for _, v := range snap.Links {
		online := 0.0
		if v.State == "online" {
			online = 1
		}
		metrics.LinkOnline.WithLabelValues(string(v.Link)).Set(online)
		if v.ClockKnown {
			metrics.LinkClockSeconds.WithLabelValues(string(v.Link), strings.ToLower(v.ClockLabel)).Set(float64(v.ClockSeconds))
		}
	}

	metrics.Stability.WithLabelValues("std_dev_ms").Set(snap.Stability.StdDevMs)
	metrics.Stability.WithLabelValues("jitter_ms").Set(snap.Stability.JitterMs)
	metrics.Stability.WithLabelValues("packet_loss_pct").Set(snap.Stability.PacketLossPct)
	metrics.Stability.WithLabelValues("peak_spike_ms").Set(snap.Stability.PeakSpikeMs)

	for _, a := range snap.Averages {
		v := a.Value
		if a.InWindow == 0 {
			v = math.NaN()
		}
		metrics.AverageLatency.WithLabelValues(a.Period).Set(v)
	}
}
