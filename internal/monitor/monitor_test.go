package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"linkmon/internal/linkstate"
	"linkmon/internal/metrics"
	"linkmon/internal/models"
	"linkmon/internal/transport"
)

func TestStartPollsEveryFeed(t *testing.T) {
	b := newFakeBackend()
	m, clock := newTestMonitor(b)
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer m.Stop()

	for _, feed := range []string{"states", "latency", "full", "network", "settings", "activity"} {
		if got := b.count(feed); got != 1 {
			t.Errorf("%s polled %d times, want 1", feed, got)
		}
	}

	snap := m.Snapshot()
	if !snap.Connected {
		t.Error("expected connected after first link-state poll")
	}
	if v := viewOf(t, snap, models.LinkPrimary); v.Status != "ONLINE" {
		t.Errorf("primary Status = %q, want ONLINE", v.Status)
	}
	if s := snap.Schedules[models.LinkPrimary]; s.Frequency != models.Daily || s.Hour != 4 {
		t.Errorf("primary schedule = %+v", s)
	}
	if snap.Network.ActiveConnection != "Primary" {
		t.Errorf("ActiveConnection = %q", snap.Network.ActiveConnection)
	}

	clock.Advance(15 * time.Second)
	if got := b.count("states"); got != 4 {
		t.Errorf("states polled %d times after 15s, want 4", got)
	}
	if got := b.count("latency"); got != 2 {
		t.Errorf("latency polled %d times after 15s, want 2", got)
	}
	if got := b.count("full"); got != 1 {
		t.Errorf("full range polled %d times after 15s, want 1", got)
	}
}

func TestMonitorStartsDisconnected(t *testing.T) {
	m, _ := newTestMonitor(newFakeBackend())
	snap := m.Snapshot()
	if snap.Connected {
		t.Error("expected disconnected before Start")
	}
	for _, v := range snap.Links {
		if v.Status != "UNKNOWN" || v.Clock != linkstate.UnknownClock {
			t.Errorf("%s = %q %q before first report", v.Link, v.Status, v.Clock)
		}
	}
}

func TestDisconnectRetriesLinkStates(t *testing.T) {
	b := newFakeBackend()
	b.statesErr = errRefused
	cfg := testConfig()
	cfg.Intervals.LinkStates = time.Minute

	var renders renderLog
	m, clock := newTestMonitorWith(cfg, b, WithRenderHook(renders.hook))
	m.Start()
	defer m.Stop()

	if m.Snapshot().Connected {
		t.Fatal("expected disconnected after failed link-state poll")
	}
	if got := b.count("states"); got != 1 {
		t.Fatalf("states polled %d times, want 1", got)
	}

	clock.Advance(5 * time.Second)
	if got := b.count("states"); got != 2 {
		t.Errorf("states polled %d times after retry, want 2", got)
	}

	b.set(func(b *fakeBackend) { b.statesErr = nil })
	clock.Advance(5 * time.Second)
	if got := b.count("states"); got != 3 {
		t.Errorf("states polled %d times after second retry, want 3", got)
	}
	if !m.Snapshot().Connected {
		t.Error("expected reconnect after successful retry")
	}
	if m.retry != nil {
		t.Error("retry still armed after reconnect")
	}
	if ev, ok := renders.last(); !ok || !ev.Full {
		t.Errorf("last render = %+v, want full redraw on reconnect", ev)
	}

	clock.Advance(10 * time.Second)
	if got := b.count("states"); got != 3 {
		t.Errorf("states polled %d times once reconnected, want 3", got)
	}
}

func TestTransportFailureSynthesizesPlaceholder(t *testing.T) {
	b := newFakeBackend()
	var renders renderLog
	m, clock := newTestMonitor(b, WithPlaceholder(fakePlaceholder{latency: 42}), WithRenderHook(renders.hook))
	m.Start()
	defer m.Stop()

	failures := testutil.ToFloat64(metrics.FetchFailures.WithLabelValues("latency", "transport"))
	redraws := fullRedraws(&renders)

	b.set(func(b *fakeBackend) { b.latencyErr = errRefused })
	clock.Advance(15 * time.Second)

	if got := testutil.ToFloat64(metrics.FetchFailures.WithLabelValues("latency", "transport")) - failures; got != 1 {
		t.Errorf("latency transport failures = %v, want 1", got)
	}
	// disconnect on the failed latency poll, reconnect on the link-state poll due at the same time
	if got := fullRedraws(&renders) - redraws; got != 2 {
		t.Errorf("full redraws = %d, want 2", got)
	}

	snap := m.Snapshot()
	if snap.SyntheticSamples != 1 {
		t.Fatalf("SyntheticSamples = %d, want 1", snap.SyntheticSamples)
	}
	last := snap.Chart[len(snap.Chart)-1]
	if !last.Synthetic || last.Timestamp != start.Unix()+15 || last.Latencies["cloudflare"] != 42 {
		t.Errorf("placeholder sample = %+v", last)
	}
	if m.store.Full.SyntheticCount() != 1 {
		t.Errorf("full series synthetic count = %d, want 1", m.store.Full.SyntheticCount())
	}

	b.set(func(b *fakeBackend) {
		b.latencyErr = nil
		b.batch = models.LatencyBatch{Samples: []models.PingSample{sample(start.Unix()+20, 30)}}
	})
	clock.Advance(15 * time.Second)

	snap = m.Snapshot()
	if snap.SyntheticSamples != 0 {
		t.Errorf("SyntheticSamples = %d after real data, want 0", snap.SyntheticSamples)
	}
	if len(snap.Chart) != 1 || snap.Chart[0].Timestamp != start.Unix()+20 {
		t.Errorf("chart = %+v, want the real sample only", snap.Chart)
	}
}

func fullRedraws(r *renderLog) int {
	return r.count(func(ev RenderEvent) bool { return ev.Full })
}

func TestSteadyLinksAreRefreshed(t *testing.T) {
	var renders renderLog
	m, clock := newTestMonitor(newFakeBackend(), WithRenderHook(renders.hook))
	m.Start()
	defer m.Stop()

	refreshes := func(ev RenderEvent) bool { return ev.Full && ev.Stats && len(ev.Links) == len(models.Links) }
	before := renders.count(refreshes)
	clock.Advance(5 * time.Minute)

	want := int(5 * time.Minute / testConfig().Intervals.Refresh)
	if got := renders.count(refreshes) - before; got != want {
		t.Errorf("refresh renders over 5 minutes = %d, want %d", got, want)
	}
}

func TestNewFullRangeDataRendersStats(t *testing.T) {
	b := newFakeBackend()
	var renders renderLog
	m, clock := newTestMonitor(b, WithRenderHook(renders.hook))
	m.Start()
	defer m.Stop()

	statsOnly := func(ev RenderEvent) bool { return ev.Stats && !ev.Full && len(ev.Links) == 0 }
	before := renders.count(statsOnly)

	b.set(func(b *fakeBackend) {
		b.full.Samples = []models.PingSample{sample(start.Unix()+10, 20), sample(start.Unix()+25, 22)}
	})
	clock.Advance(30 * time.Second)

	if got := renders.count(statsOnly) - before; got != 1 {
		t.Errorf("stats renders = %d, want 1", got)
	}
	if avg := m.Snapshot().Averages[0]; avg.InWindow != 2 {
		t.Errorf("%s average holds %d samples, want 2", avg.Period, avg.InWindow)
	}
}

func TestMalformedResponseKeepsConnection(t *testing.T) {
	b := newFakeBackend()
	m, clock := newTestMonitor(b, WithPlaceholder(fakePlaceholder{latency: 42}))
	m.Start()
	defer m.Stop()

	b.set(func(b *fakeBackend) {
		b.statesErr = &transport.MalformedDataError{Op: "link states", Field: "PowerState"}
	})
	clock.Advance(5 * time.Second)
	if !m.Snapshot().Connected || m.retry != nil {
		t.Error("malformed link states must not disconnect")
	}

	b.set(func(b *fakeBackend) {
		b.latencyErr = &transport.MalformedDataError{Op: "latency", Field: "ping_data"}
	})
	clock.Advance(10 * time.Second)
	snap := m.Snapshot()
	if !snap.Connected {
		t.Error("malformed latency batch must not disconnect")
	}
	if snap.SyntheticSamples != 0 {
		t.Errorf("SyntheticSamples = %d, want 0", snap.SyntheticSamples)
	}
}

func TestSaveScheduleDiscardsStalePolls(t *testing.T) {
	b := newFakeBackend()
	m, clock := newTestMonitor(b)
	m.Start()
	defer m.Stop()
	ctx := context.Background()

	stale := map[models.LinkID]models.RestartSchedule{
		models.LinkPrimary:   {Enabled: false, Frequency: models.Daily, Hour: 1},
		models.LinkSecondary: {Enabled: true, Frequency: models.Daily, Hour: 5},
	}
	issued := m.generations()

	upd := models.ScheduleUpdate{
		Link:     models.LinkPrimary,
		Schedule: models.RestartSchedule{Enabled: true, Frequency: models.Weekly, DayOfWeek: 2, Hour: 3},
	}
	if err := m.SaveSchedule(ctx, upd); err != nil {
		t.Fatalf("SaveSchedule() error = %v", err)
	}

	// responses to polls issued before the save arrive while it settles
	m.onSettings(stale, issued, nil)
	m.onLinkStates(map[models.LinkID]models.LinkPowerReport{
		models.LinkPrimary: {Link: models.LinkPrimary, Online: false},
	}, issued, nil)

	snap := m.Snapshot()
	if s := snap.Schedules[models.LinkPrimary]; !s.Enabled || s.Hour != 4 {
		t.Errorf("primary schedule = %+v, stale poll should be discarded", s)
	}
	if s := snap.Schedules[models.LinkSecondary]; s.Hour != 5 {
		t.Errorf("secondary schedule = %+v, other links are not latched", s)
	}
	if v := viewOf(t, snap, models.LinkPrimary); v.Status != "ONLINE" {
		t.Errorf("primary Status = %q, stale link state should be discarded", v.Status)
	}

	during := m.generations()
	clock.Advance(3 * time.Second)

	snap = m.Snapshot()
	if s := snap.Schedules[models.LinkPrimary]; s.Frequency != models.Weekly || s.DayOfWeek != 2 {
		t.Errorf("primary schedule after settle = %+v, want saved weekly schedule", s)
	}

	// a poll issued during the latch completing after release is still stale
	m.onSettings(stale, during, nil)
	if s := m.Snapshot().Schedules[models.LinkPrimary]; s.Frequency != models.Weekly {
		t.Errorf("primary schedule = %+v, poll issued while latched was applied", s)
	}
}

func TestToggleSuppressesSettingsUntilSettled(t *testing.T) {
	b := newFakeBackend()
	m, clock := newTestMonitor(b)
	m.Start()
	defer m.Stop()

	if err := m.ToggleAutorestart(context.Background(), models.LinkPrimary, false); err != nil {
		t.Fatalf("ToggleAutorestart() error = %v", err)
	}

	m.pollSettings()
	if !m.Snapshot().Schedules[models.LinkPrimary].Enabled {
		t.Error("settings polled while latched were applied")
	}

	clock.Advance(2 * time.Second)
	if m.Snapshot().Schedules[models.LinkPrimary].Enabled {
		t.Error("expected autorestart disabled after settle")
	}
	if len(b.toggles) != 1 || b.toggles[0] {
		t.Errorf("toggles sent = %v, want [false]", b.toggles)
	}
}

func TestSaveScheduleFailureReleasesLatch(t *testing.T) {
	b := newFakeBackend()
	b.sendErr = errRefused
	m, clock := newTestMonitor(b)
	m.Start()
	defer m.Stop()

	upd := models.ScheduleUpdate{
		Link:     models.LinkPrimary,
		Schedule: models.RestartSchedule{Enabled: true, Frequency: models.Daily, Hour: 2},
	}
	err := m.SaveSchedule(context.Background(), upd)
	var te *transport.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("SaveSchedule() error = %v, want transport error", err)
	}
	if m.latches[models.LinkPrimary].inflight != 1 {
		t.Fatalf("inflight = %d, want 1 while settling", m.latches[models.LinkPrimary].inflight)
	}

	clock.Advance(3 * time.Second)
	if m.latches[models.LinkPrimary].inflight != 0 {
		t.Errorf("inflight = %d after settle, want 0", m.latches[models.LinkPrimary].inflight)
	}
}

func TestCancelledToggleReleasesLatch(t *testing.T) {
	b := newFakeBackend()
	clock := NewFakeClock(start)
	m := New(testConfig(), b, WithClock(clock))
	m.wg.Add(1)
	go m.loop()
	defer func() {
		m.Stop()
		m.Wait()
	}()

	release := make(chan struct{})
	m.post(func() { <-release })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.ToggleAutorestart(ctx, models.LinkPrimary, false); !errors.Is(err, context.Canceled) {
		t.Fatalf("ToggleAutorestart() error = %v, want context.Canceled", err)
	}
	close(release)

	latched := func() (inflight int, suppressed bool) {
		err := m.do(context.Background(), func() {
			inflight = m.latches[models.LinkPrimary].inflight
			suppressed = m.suppressed(models.LinkPrimary, m.generations())
		})
		if err != nil {
			t.Fatalf("do() error = %v", err)
		}
		return inflight, suppressed
	}

	if inflight, _ := latched(); inflight != 1 {
		t.Fatalf("inflight = %d before the settle delay, want 1", inflight)
	}
	var sent int
	b.set(func(b *fakeBackend) { sent = len(b.toggles) })
	if sent != 0 {
		t.Errorf("toggles sent = %d, want 0 for a cancelled request", sent)
	}

	clock.Advance(testConfig().Intervals.ToggleSettle)
	if inflight, suppressed := latched(); inflight != 0 || suppressed {
		t.Errorf("after settle inflight = %d suppressed = %v, want released", inflight, suppressed)
	}
}

func TestCommandsRejectInvalidInput(t *testing.T) {
	b := newFakeBackend()
	m, _ := newTestMonitor(b)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
	}{
		{"unknown link schedule", func() error {
			return m.SaveSchedule(ctx, models.ScheduleUpdate{Link: "tertiary", Schedule: models.RestartSchedule{Frequency: models.Daily}})
		}},
		{"hour out of range", func() error {
			return m.SaveSchedule(ctx, models.ScheduleUpdate{Link: models.LinkPrimary, Schedule: models.RestartSchedule{Frequency: models.Daily, Hour: 25}})
		}},
		{"unknown link toggle", func() error {
			return m.ToggleAutorestart(ctx, "tertiary", true)
		}},
		{"timed restart without duration", func() error {
			return m.RequestRestart(ctx, models.RestartCommand{Link: models.LinkPrimary, Mode: models.RestartTimed})
		}},
		{"unknown restart mode", func() error {
			return m.RequestRestart(ctx, models.RestartCommand{Link: models.LinkPrimary, Mode: "later"})
		}},
		{"unknown chart range", func() error { return m.SelectChartRange(ctx, "2min") }},
		{"unknown stats range", func() error { return m.SelectStatsRange(ctx, "2min") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); err == nil {
				t.Error("expected error")
			}
		})
	}

	if len(b.schedules) != 0 || len(b.toggles) != 0 || len(b.commands) != 0 {
		t.Errorf("invalid commands reached the backend: %d %d %d", len(b.schedules), len(b.toggles), len(b.commands))
	}
}

func TestRestartRefreshesStatesAndActivity(t *testing.T) {
	b := newFakeBackend()
	m, clock := newTestMonitor(b)
	m.Start()
	defer m.Stop()

	states, activity := b.count("states"), b.count("activity")
	cmd := models.RestartCommand{Link: models.LinkSecondary, Mode: models.RestartTimed, DurationMinutes: 30}
	if err := m.RequestRestart(context.Background(), cmd); err != nil {
		t.Fatalf("RequestRestart() error = %v", err)
	}
	if len(b.commands) != 1 || b.commands[0] != cmd {
		t.Errorf("commands sent = %+v", b.commands)
	}
	if b.count("states") != states {
		t.Error("link states refreshed before the refresh delay")
	}

	clock.Advance(time.Second)
	if got := b.count("states"); got != states+1 {
		t.Errorf("states polled %d times, want %d", got, states+1)
	}
	if got := b.count("activity"); got != activity+1 {
		t.Errorf("activity polled %d times, want %d", got, activity+1)
	}
}

func TestRestartTimesSetUptime(t *testing.T) {
	b := newFakeBackend()
	b.batch = models.LatencyBatch{RestartTimes: map[models.LinkID]int64{models.LinkPrimary: start.Unix() - 90061}}
	var renders renderLog
	m, _ := newTestMonitor(b, WithRenderHook(renders.hook))
	m.Start()
	defer m.Stop()

	snap := m.Snapshot()
	if v := viewOf(t, snap, models.LinkPrimary); v.ClockLabel != "Uptime" || v.Clock != "1d 01:01:01" {
		t.Errorf("primary clock = %s %q", v.ClockLabel, v.Clock)
	}
	if v := viewOf(t, snap, models.LinkSecondary); v.Clock != linkstate.UnknownClock {
		t.Errorf("secondary clock = %q, want unknown", v.Clock)
	}

	ev, ok := renders.last()
	if !ok || ev.Full || len(ev.Links) != 1 || ev.Links[0] != models.LinkPrimary {
		t.Errorf("last render = %+v, want primary only", ev)
	}
}

func TestUptimeUnknownAfterOutageUntilFreshRestartTime(t *testing.T) {
	b := newFakeBackend()
	b.states[models.LinkPrimary] = models.LinkPowerReport{Link: models.LinkPrimary, OffRequestedAt: start.Unix() - 60}
	m, clock := newTestMonitor(b)
	m.Start()
	defer m.Stop()

	if v := viewOf(t, m.Snapshot(), models.LinkPrimary); v.ClockLabel != "Downtime" || v.Clock != "00:01:00" {
		t.Errorf("primary clock during outage = %s %q", v.ClockLabel, v.Clock)
	}

	b.set(func(b *fakeBackend) {
		b.states[models.LinkPrimary] = models.LinkPowerReport{Link: models.LinkPrimary, Online: true}
	})
	clock.Advance(5 * time.Second)
	if v := viewOf(t, m.Snapshot(), models.LinkPrimary); v.Clock != linkstate.UnknownClock {
		t.Errorf("primary clock after outage = %q, want unknown", v.Clock)
	}

	b.set(func(b *fakeBackend) {
		b.batch = models.LatencyBatch{RestartTimes: map[models.LinkID]int64{models.LinkPrimary: start.Unix() + 3}}
	})
	clock.Advance(10 * time.Second)
	if v := viewOf(t, m.Snapshot(), models.LinkPrimary); v.ClockLabel != "Uptime" || v.Clock != "00:00:12" {
		t.Errorf("primary clock after fresh restart time = %s %q", v.ClockLabel, v.Clock)
	}
}

func TestSelectRanges(t *testing.T) {
	b := newFakeBackend()
	m, _ := newTestMonitor(b)
	m.Start()
	defer m.Stop()
	ctx := context.Background()

	if err := m.SelectChartRange(ctx, "15min"); err != nil {
		t.Fatalf("SelectChartRange() error = %v", err)
	}
	if got := b.rows[len(b.rows)-1]; got != 60 {
		t.Errorf("rows requested = %d, want 60", got)
	}
	if got := m.Snapshot().ChartRange; got != "15min" {
		t.Errorf("ChartRange = %q", got)
	}
	if got := m.store.Chart.Capacity(); got != 60 {
		t.Errorf("chart capacity = %d, want 60", got)
	}

	if err := m.SelectStatsRange(ctx, "1hr"); err != nil {
		t.Fatalf("SelectStatsRange() error = %v", err)
	}
	if got := m.Snapshot().StatsRange; got != "1hr" {
		t.Errorf("StatsRange = %q", got)
	}
}

func TestStabilityIsCached(t *testing.T) {
	b := newFakeBackend()
	for i := 0; i < 10; i++ {
		b.full.Samples = append(b.full.Samples, sample(start.Unix()-150+int64(i)*15, 20+float64(i)))
	}
	m, _ := newTestMonitor(b)
	m.Start()
	defer m.Stop()
	ctx := context.Background()

	hits := testutil.ToFloat64(metrics.StabilityCacheLookups.WithLabelValues("hit"))
	first, err := m.Stability(ctx, "15min")
	if err != nil {
		t.Fatalf("Stability() error = %v", err)
	}
	second, _ := m.Stability(ctx, "15min")
	if got := testutil.ToFloat64(metrics.StabilityCacheLookups.WithLabelValues("hit")) - hits; got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
	if !first.Sufficient() || first.Samples != 10 {
		t.Errorf("Stability() = %+v", first)
	}
	if first.StdDevMs != second.StdDevMs || first.JitterMs != second.JitterMs {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}

	if _, err := m.Stability(ctx, "2min"); err == nil {
		t.Error("expected error for unknown window")
	}
}

func TestArchiveReceivesRealSamplesOnly(t *testing.T) {
	b := newFakeBackend()
	b.full.Samples = []models.PingSample{
		sample(start.Unix()-45, 20),
		sample(start.Unix()-30, 21),
		sample(start.Unix()-15, 22),
	}
	b.activity = []models.ActivityEntry{{Timestamp: start.Unix() - 600, Reason: "Scheduled restart", Link: models.LinkPrimary}}
	a := &fakeArchive{}
	m, clock := newTestMonitor(b, WithArchive(a), WithPlaceholder(fakePlaceholder{latency: 42}))
	m.Start()
	defer m.Stop()

	if len(a.stored) != 3 {
		t.Fatalf("archived %d samples, want 3", len(a.stored))
	}
	if len(a.events) != 2 {
		t.Errorf("archived %d link events, want 2", len(a.events))
	}
	if len(a.activity) != 1 {
		t.Errorf("archived %d activity entries, want 1", len(a.activity))
	}

	b.set(func(b *fakeBackend) { b.latencyErr = errRefused })
	clock.Advance(15 * time.Second)
	if len(a.stored) != 3 {
		t.Errorf("archived %d samples after placeholder, want 3", len(a.stored))
	}

	b.set(func(b *fakeBackend) {
		b.full.Samples = append(b.full.Samples, sample(start.Unix()+25, 23))
	})
	clock.Advance(15 * time.Second)
	if len(a.stored) != 4 {
		t.Fatalf("archived %d samples, want 4", len(a.stored))
	}
	for _, s := range a.stored {
		if s.Synthetic {
			t.Errorf("synthetic sample %d archived", s.Timestamp)
		}
	}
	if a.stored[3].Timestamp != start.Unix()+25 {
		t.Errorf("last archived = %d, want %d", a.stored[3].Timestamp, start.Unix()+25)
	}
}

func TestWarmStartAndMaintenance(t *testing.T) {
	a := &fakeArchive{stored: []models.PingSample{
		sample(start.Unix()-8*24*3600, 20),
		sample(start.Unix()-3600, 21),
		sample(start.Unix()-1800, 22),
	}}
	cfg := testConfig()
	m, _ := newTestMonitorWith(cfg, newFakeBackend(), WithArchive(a))
	m.Start()
	defer m.Stop()

	if got := m.store.Full.Len(); got != 2 {
		t.Errorf("full series holds %d samples after warm start, want 2", got)
	}
	if len(a.pruned) != 1 || !a.pruned[0].Equal(start.Add(-cfg.Retention)) {
		t.Errorf("pruned = %v, want one prune before %v", a.pruned, start.Add(-cfg.Retention))
	}
}

func TestStopHaltsPolling(t *testing.T) {
	b := newFakeBackend()
	m, clock := newTestMonitor(b)
	m.Start()
	m.Stop()

	states, latency := b.count("states"), b.count("latency")
	clock.Advance(time.Minute)
	if b.count("states") != states || b.count("latency") != latency {
		t.Error("polling continued after Stop")
	}
	if n := clock.Pending(); n != 0 {
		t.Errorf("%d timers armed after Stop", n)
	}
}

func TestEventLoopDispatch(t *testing.T) {
	b := newFakeBackend()
	clock := NewFakeClock(start)
	m := New(testConfig(), b, WithClock(clock))
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !m.Snapshot().Connected {
		if time.Now().After(deadline) {
			t.Fatal("monitor never connected")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.SelectStatsRange(ctx, "1hr"); err != nil {
		t.Fatalf("SelectStatsRange() error = %v", err)
	}
	if got := m.Snapshot().StatsRange; got != "1hr" {
		t.Errorf("StatsRange = %q", got)
	}

	m.Stop()
	m.Wait()

	if err := m.SelectStatsRange(ctx, "4hr"); !errors.Is(err, ErrStopped) {
		t.Errorf("SelectStatsRange() after Stop error = %v, want ErrStopped", err)
	}
}
