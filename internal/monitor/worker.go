package monitor

import (
	"log"

	"linkmon/internal/metrics"
	"linkmon/internal/models"
	"linkmon/internal/timeseries"
)

// Each poll snapshots what it needs on the loop, fetches on a spawned goroutine
// and posts the result back to the loop.

func (m *Monitor) pollLatency() {
	rows := timeseries.RowsFor(m.store.ChartRange())
	m.spawn(func() {
		batch, err := m.backend.FetchLatencyBatch(m.ctx, rows)
		m.post(func() { m.onLatency(batch, err) })
	})
}

func (m *Monitor) onLatency(batch models.LatencyBatch, err error) {
	if err != nil {
		if m.fetchFailed("latency", err) {
			m.synthesize()
		}
		return
	}

	if added := m.store.Chart.AppendIncoming(batch.Samples); added > 0 {
		metrics.SamplesMerged.WithLabelValues("chart", "backend").Add(float64(added))
		m.chartDirty = true
	}
	m.applyRestartTimes(batch.RestartTimes)
	m.publish()
}

func (m *Monitor) pollFullRange() {
	m.spawn(func() {
		batch, err := m.backend.FetchLatencyBatch(m.ctx, timeseries.FullCapacity)
		m.post(func() { m.onFullRange(batch, err) })
	})
}

func (m *Monitor) onFullRange(batch models.LatencyBatch, err error) {
	if err != nil {
		m.fetchFailed("full_range", err)
		return
	}

	if added := m.store.Full.AppendIncoming(batch.Samples); added > 0 {
		metrics.SamplesMerged.WithLabelValues("full", "backend").Add(float64(added))
		m.statsDirty = true
		if m.archive != nil {
			samples := m.store.Full.Samples()
			if added > len(samples) {
				added = len(samples)
			}
			m.archiveSamples(samples[len(samples)-added:])
		}
	}
	m.applyRestartTimes(batch.RestartTimes)
	m.publish()
}

// synthesize fills both series with a locally pinged placeholder sample
func (m *Monitor) synthesize() {
	if m.placeholder == nil {
		return
	}
	ts := m.clock.Now().Unix()
	m.spawn(func() {
		sample := m.placeholder.Sample(ts)
		sample.Synthetic = true
		m.post(func() {
			batch := []models.PingSample{sample}
			if m.store.Chart.AppendIncoming(batch) > 0 {
				metrics.SamplesMerged.WithLabelValues("chart", "synthetic").Inc()
				m.chartDirty = true
			}
			if m.store.Full.AppendIncoming(batch) > 0 {
				metrics.SamplesMerged.WithLabelValues("full", "synthetic").Inc()
				m.statsDirty = true
			}
			m.publish()
		})
	})
}

func (m *Monitor) applyRestartTimes(times map[models.LinkID]int64) {
	if len(times) == 0 {
		return
	}
	if m.links.ApplyRestartTimes(times) {
		changed := make([]models.LinkID, 0, len(times))
		for _, id := range models.Links {
			if _, ok := times[id]; ok {
				changed = append(changed, id)
			}
		}
		m.publish()
		m.emit(RenderEvent{Links: changed})
	}
}

func (m *Monitor) pollLinkStates() {
	gens := m.generations()
	m.spawn(func() {
		reports, err := m.backend.FetchLinkStates(m.ctx)
		m.post(func() { m.onLinkStates(reports, gens, err) })
	})
}

func (m *Monitor) onLinkStates(reports map[models.LinkID]models.LinkPowerReport, gens map[models.LinkID]uint64, err error) {
	if err != nil {
		m.fetchFailed("link_states", err)
		return
	}

	now := m.clock.Now()
	var changed []models.LinkID
	for _, id := range m.links.Links() {
		rep, ok := reports[id]
		if !ok {
			continue
		}
		if m.suppressed(id, gens) {
			log.Printf("[monitor] Discarding %s link state while a save is settling", id)
			continue
		}
		if m.links.ApplyReport(rep) {
			changed = append(changed, id)
			m.archiveLinkEvent(rep, now)
		}
	}

	reconnected := m.reconnect()
	m.publish()
	switch {
	case reconnected:
		m.emit(RenderEvent{Links: m.links.Links(), Full: true})
	case len(changed) > 0:
		m.emit(RenderEvent{Links: changed})
	}
}

func (m *Monitor) pollSettings() {
	gens := m.generations()
	m.spawn(func() {
		settings, err := m.backend.FetchAutorestartSettings(m.ctx)
		m.post(func() { m.onSettings(settings, gens, err) })
	})
}

func (m *Monitor) onSettings(settings map[models.LinkID]models.RestartSchedule, gens map[models.LinkID]uint64, err error) {
	if err != nil {
		m.fetchFailed("settings", err)
		return
	}

	var changed []models.LinkID
	for _, id := range m.links.Links() {
		s, ok := settings[id]
		if !ok {
			continue
		}
		if m.suppressed(id, gens) {
			log.Printf("[monitor] Discarding %s settings while a save is settling", id)
			continue
		}
		m.schedules[id] = s
		if m.links.SetSchedule(id, s) {
			changed = append(changed, id)
		}
	}

	m.publish()
	if len(changed) > 0 {
		m.emit(RenderEvent{Links: changed})
	}
}

func (m *Monitor) pollNetworkStatus() {
	m.spawn(func() {
		status, err := m.backend.FetchNetworkStatus(m.ctx)
		m.post(func() {
			if err != nil {
				m.fetchFailed("network_status", err)
				return
			}
			m.network = status
			m.publish()
		})
	})
}

func (m *Monitor) pollActivity() {
	limit := m.config.ActivityLimit
	m.spawn(func() {
		entries, err := m.backend.FetchActivityLog(m.ctx, limit)
		m.post(func() {
			if err != nil {
				m.fetchFailed("activity", err)
				return
			}
			m.activity = entries
			m.archiveActivity(entries)
			m.publish()
		})
	})
}

// tick republishes so link clocks advance even without new data
func (m *Monitor) tick() {
	m.publish()
}

// refresh re-renders every link and the statistics so mirrored copies stay current
func (m *Monitor) refresh() {
	m.publish()
	m.emit(RenderEvent{Links: m.links.Links(), Full: true, Stats: true})
}
