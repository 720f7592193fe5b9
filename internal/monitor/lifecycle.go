package monitor

import (
	"errors"
	"log"
	"time"

	"linkmon/internal/metrics"
	"linkmon/internal/models"
	"linkmon/internal/transport"
)

// fetchFailed routes a failed fetch and reports whether it was a transport failure.
// Malformed responses only skip the cycle.
func (m *Monitor) fetchFailed(feed string, err error) bool {
	if m.ctx.Err() != nil {
		return false
	}

	var malformed *transport.MalformedDataError
	if errors.As(err, &malformed) {
		metrics.FetchFailures.WithLabelValues(feed, "malformed").Inc()
		log.Printf("[monitor] Ignoring malformed %s response: %v", feed, err)
		return false
	}

	metrics.FetchFailures.WithLabelValues(feed, "transport").Inc()
	log.Printf("[monitor] Failed to fetch %s: %v", feed, err)
	m.disconnect()
	return true
}

// disconnect marks the backend unreachable and starts retrying the link-state poll
func (m *Monitor) disconnect() {
	if m.connected {
		m.connected = false
		m.links.SetConnected(false)
		log.Println("[monitor] Disconnected from backend")
		m.publish()
		m.emit(RenderEvent{Links: m.links.Links(), Full: true})
	}

	if m.retry == nil {
		m.retry = m.sched.Every(m.config.Intervals.Retry, func() {
			log.Println("[monitor] Attempting to reconnect...")
			m.pollLinkStates()
		})
	}
}

// reconnect clears the retry after a successful link-state poll and reports whether the
// backend was previously unreachable
func (m *Monitor) reconnect() bool {
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	if m.connected {
		return false
	}
	m.connected = true
	m.links.SetConnected(true)
	log.Println("[monitor] Connected to backend")
	return true
}

// warmStart loads archived samples into the full series before polling starts
func (m *Monitor) warmStart() {
	since := m.clock.Now().Add(-m.config.Retention)
	samples, err := m.archive.LoadSamples(since)
	if err != nil {
		log.Printf("Failed to load archived samples: %v", err)
		return
	}
	if added := m.store.Full.AppendIncoming(samples); added > 0 {
		log.Printf("Loaded %d archived samples", added)
		m.statsDirty = true
		m.publish()
	}
}

// performMaintenance prunes archived samples past the retention horizon
func (m *Monitor) performMaintenance() {
	before := m.clock.Now().Add(-m.config.Retention)
	m.spawn(func() {
		log.Println("Running maintenance tasks...")
		if err := m.archive.PruneSamples(before); err != nil {
			log.Printf("Failed to prune samples: %v", err)
			return
		}
		log.Println("Maintenance complete")
	})
}

func (m *Monitor) archiveSamples(samples []models.PingSample) {
	if m.archive == nil || len(samples) == 0 {
		return
	}
	m.spawn(func() {
		if err := m.archive.SaveSamples(samples); err != nil {
			log.Printf("Failed to save samples: %v", err)
		}
	})
}

func (m *Monitor) archiveLinkEvent(rep models.LinkPowerReport, at time.Time) {
	if m.archive == nil {
		return
	}
	m.spawn(func() {
		if err := m.archive.SaveLinkEvent(rep, at); err != nil {
			log.Printf("Failed to save link event: %v", err)
		}
	})
}

func (m *Monitor) archiveActivity(entries []models.ActivityEntry) {
	if m.archive == nil || len(entries) == 0 {
		return
	}
	m.spawn(func() {
		if err := m.archive.SaveActivity(entries); err != nil {
			log.Printf("Failed to save activity: %v", err)
		}
	})
}
