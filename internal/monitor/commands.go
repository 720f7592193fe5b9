package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"linkmon/internal/metrics"
	"linkmon/internal/models"
	"linkmon/internal/stats"
	"linkmon/internal/timeseries"
)

// latch suppresses state and settings polls for a link while a save settles.
// gen moves on every begin and release so responses to polls issued earlier are recognised.
type latch struct {
	inflight int
	gen      uint64
}

func (m *Monitor) generations() map[models.LinkID]uint64 {
	gens := make(map[models.LinkID]uint64, len(m.latches))
	for id, l := range m.latches {
		gens[id] = l.gen
	}
	return gens
}

// suppressed reports whether a poll result for link must be dropped
func (m *Monitor) suppressed(link models.LinkID, issued map[models.LinkID]uint64) bool {
	l, ok := m.latches[link]
	if !ok {
		return false
	}
	return l.inflight > 0 || l.gen != issued[link]
}

func (m *Monitor) engage(link models.LinkID) {
	l := m.latches[link]
	l.inflight++
	l.gen++
}

// settle releases the latch after delay and refreshes the settings
func (m *Monitor) settle(link models.LinkID, delay time.Duration) {
	m.sched.After(delay, func() {
		l := m.latches[link]
		if l.inflight > 0 {
			l.inflight--
		}
		l.gen++
		m.pollSettings()
	})
}

// RequestRestart power-cycles a link now or for a fixed number of minutes
func (m *Monitor) RequestRestart(ctx context.Context, cmd models.RestartCommand) error {
	if !knownLink(cmd.Link) {
		return fmt.Errorf("unknown link %q", cmd.Link)
	}
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := m.backend.SendRestartCommand(ctx, cmd); err != nil {
		return fmt.Errorf("failed to send restart command: %w", err)
	}
	log.Printf("[monitor] Restart (%s) requested for %s", cmd.Mode, cmd.Link)

	m.post(func() {
		m.sched.After(m.config.Intervals.RestartRefresh, func() {
			m.pollLinkStates()
			m.pollActivity()
		})
	})
	return nil
}

// SaveSchedule replaces the restart schedule of a link.
// Polls for the link are ignored until the save has settled.
func (m *Monitor) SaveSchedule(ctx context.Context, upd models.ScheduleUpdate) error {
	if !knownLink(upd.Link) {
		return fmt.Errorf("unknown link %q", upd.Link)
	}
	if err := upd.Schedule.Validate(); err != nil {
		return err
	}
	return m.latched(ctx, upd.Link, m.config.Intervals.ScheduleSettle, func() error {
		return m.backend.SendScheduleUpdate(ctx, upd)
	})
}

// ToggleAutorestart enables or disables automatic restarts of a link
func (m *Monitor) ToggleAutorestart(ctx context.Context, link models.LinkID, enabled bool) error {
	if !knownLink(link) {
		return fmt.Errorf("unknown link %q", link)
	}
	return m.latched(ctx, link, m.config.Intervals.ToggleSettle, func() error {
		return m.backend.SendAutorestartToggle(ctx, link, enabled)
	})
}

func (m *Monitor) latched(ctx context.Context, link models.LinkID, delay time.Duration, send func() error) error {
	if err := m.do(ctx, func() { m.engage(link) }); err != nil {
		// engage is already queued and still runs; this release is queued behind it
		m.post(func() { m.settle(link, delay) })
		return err
	}

	err := send()
	m.post(func() { m.settle(link, delay) })
	if err != nil {
		return fmt.Errorf("failed to save %s settings: %w", link, err)
	}
	log.Printf("[monitor] Saved %s settings, settling for %v", link, delay)
	return nil
}

// SelectChartRange resizes the chart series and refetches it
func (m *Monitor) SelectChartRange(ctx context.Context, rangeID string) error {
	if _, ok := timeseries.ChartRows[rangeID]; !ok {
		return fmt.Errorf("unknown chart range %q", rangeID)
	}
	return m.do(ctx, func() {
		m.store.SelectChartRange(rangeID)
		m.chartDirty = true
		m.publish()
		m.pollLatency()
	})
}

// SelectStatsRange changes the window used for stability and signal strength
func (m *Monitor) SelectStatsRange(ctx context.Context, windowID string) error {
	if _, ok := stats.Windows[windowID]; !ok {
		return fmt.Errorf("unknown stats range %q", windowID)
	}
	return m.do(ctx, func() {
		m.statsRange = windowID
		m.statsDirty = true
		m.publish()
	})
}

// Stability returns stability metrics of the full series over a window
func (m *Monitor) Stability(ctx context.Context, windowID string) (stats.Metrics, error) {
	if _, ok := stats.Windows[windowID]; !ok {
		return stats.Metrics{}, fmt.Errorf("unknown stats range %q", windowID)
	}
	var out stats.Metrics
	err := m.do(ctx, func() {
		out = m.stabilityOf(windowID, m.store.Full.Samples())
	})
	return out, err
}

func (m *Monitor) stabilityOf(windowID string, samples []models.PingSample) stats.Metrics {
	met, hit := stats.Cached(m.cache, windowID, samples)
	if hit {
		metrics.StabilityCacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.StabilityCacheLookups.WithLabelValues("miss").Inc()
	}
	return met
}

func knownLink(link models.LinkID) bool {
	for _, id := range models.Links {
		if id == link {
			return true
		}
	}
	return false
}
