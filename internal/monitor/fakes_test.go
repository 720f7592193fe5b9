package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"linkmon/internal/config"
	"linkmon/internal/linkstate"
	"linkmon/internal/models"
	"linkmon/internal/timeseries"
	"linkmon/internal/transport"
)

var start = time.Unix(1700000000, 0)

var errRefused = &transport.TransportError{Op: "test", Err: errors.New("connection refused")}

type fakeBackend struct {
	mu sync.Mutex

	batch      models.LatencyBatch
	latencyErr error
	full       models.LatencyBatch
	fullErr    error
	states     map[models.LinkID]models.LinkPowerReport
	statesErr  error
	settings   map[models.LinkID]models.RestartSchedule
	network    models.NetworkStatus
	activity   []models.ActivityEntry
	sendErr    error

	calls     map[string]int
	rows      []int
	commands  []models.RestartCommand
	schedules []models.ScheduleUpdate
	toggles   []bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		states: map[models.LinkID]models.LinkPowerReport{
			models.LinkPrimary:   {Link: models.LinkPrimary, Online: true},
			models.LinkSecondary: {Link: models.LinkSecondary, Online: true},
		},
		settings: map[models.LinkID]models.RestartSchedule{
			models.LinkPrimary: {Enabled: true, Frequency: models.Daily, Hour: 4},
		},
		network: models.NetworkStatus{ActiveConnection: "Primary"},
		calls:   make(map[string]int),
	}
}

func (b *fakeBackend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *fakeBackend) set(f func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f(b)
}

func (b *fakeBackend) FetchLatencyBatch(ctx context.Context, rows int) (models.LatencyBatch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rows == timeseries.FullCapacity {
		b.calls["full"]++
		return b.full, b.fullErr
	}
	b.calls["latency"]++
	b.rows = append(b.rows, rows)
	return b.batch, b.latencyErr
}

func (b *fakeBackend) FetchLinkStates(ctx context.Context) (map[models.LinkID]models.LinkPowerReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["states"]++
	if b.statesErr != nil {
		return nil, b.statesErr
	}
	out := make(map[models.LinkID]models.LinkPowerReport, len(b.states))
	for k, v := range b.states {
		out[k] = v
	}
	return out, nil
}

func (b *fakeBackend) FetchActivityLog(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["activity"]++
	return b.activity, nil
}

func (b *fakeBackend) FetchAutorestartSettings(ctx context.Context) (map[models.LinkID]models.RestartSchedule, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["settings"]++
	out := make(map[models.LinkID]models.RestartSchedule, len(b.settings))
	for k, v := range b.settings {
		out[k] = v
	}
	return out, nil
}

func (b *fakeBackend) FetchNetworkStatus(ctx context.Context) (models.NetworkStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["network"]++
	return b.network, nil
}

func (b *fakeBackend) SendRestartCommand(ctx context.Context, cmd models.RestartCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands = append(b.commands, cmd)
	return b.sendErr
}

func (b *fakeBackend) SendScheduleUpdate(ctx context.Context, upd models.ScheduleUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.schedules = append(b.schedules, upd)
	if b.sendErr == nil {
		b.settings[upd.Link] = upd.Schedule
	}
	return b.sendErr
}

func (b *fakeBackend) SendAutorestartToggle(ctx context.Context, link models.LinkID, enabled bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toggles = append(b.toggles, enabled)
	if b.sendErr == nil {
		s := b.settings[link]
		s.Enabled = enabled
		b.settings[link] = s
	}
	return b.sendErr
}

type fakeArchive struct {
	mu       sync.Mutex
	stored   []models.PingSample
	events   []models.LinkPowerReport
	activity []models.ActivityEntry
	pruned   []time.Time
}

func (a *fakeArchive) SaveSamples(samples []models.PingSample) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stored = append(a.stored, samples...)
	return nil
}

func (a *fakeArchive) LoadSamples(since time.Time) ([]models.PingSample, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.PingSample
	for _, s := range a.stored {
		if s.Timestamp >= since.Unix() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (a *fakeArchive) SaveLinkEvent(report models.LinkPowerReport, at time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, report)
	return nil
}

func (a *fakeArchive) SaveActivity(entries []models.ActivityEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.activity = append(a.activity, entries...)
	return nil
}

func (a *fakeArchive) PruneSamples(before time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pruned = append(a.pruned, before)
	return nil
}

type fakePlaceholder struct {
	latency float64
}

func (p fakePlaceholder) Sample(ts int64) models.PingSample {
	return models.PingSample{Timestamp: ts, Latencies: map[string]float64{"cloudflare": p.latency}}
}

func sample(ts int64, ms float64) models.PingSample {
	return models.PingSample{Timestamp: ts, Latencies: map[string]float64{"cloudflare": ms, "google": ms + 10}}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.ChartRange = "5min"
	return cfg
}

func newTestMonitor(b *fakeBackend, opts ...Option) (*Monitor, *FakeClock) {
	return newTestMonitorWith(testConfig(), b, opts...)
}

func newTestMonitorWith(cfg config.Config, b *fakeBackend, opts ...Option) (*Monitor, *FakeClock) {
	clock := NewFakeClock(start)
	opts = append([]Option{WithClock(clock), WithSynchronousDispatch()}, opts...)
	return New(cfg, b, opts...), clock
}

func viewOf(t *testing.T, snap Snapshot, id models.LinkID) linkstate.View {
	t.Helper()
	for _, v := range snap.Links {
		if v.Link == id {
			return v
		}
	}
	t.Fatalf("no view for %s", id)
	return linkstate.View{}
}

type renderLog struct {
	mu     sync.Mutex
	events []RenderEvent
}

func (r *renderLog) hook(ev RenderEvent, _ Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *renderLog) last() (RenderEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return RenderEvent{}, false
	}
	return r.events[len(r.events)-1], true
}

func (r *renderLog) count(match func(RenderEvent) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if match(ev) {
			n++
		}
	}
	return n
}
