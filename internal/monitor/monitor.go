// Package monitor drives the periodic polling of the backend and owns all live link and latency state.
package monitor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"linkmon/internal/config"
	"linkmon/internal/linkstate"
	"linkmon/internal/models"
	"linkmon/internal/stats"
	"linkmon/internal/timeseries"
)

// ErrStopped is returned by requests made after the monitor stopped
var ErrStopped = errors.New("monitor stopped")

// Monitor coordinates polling, reconciliation and statistics.
// All state below the event loop marker is owned by the loop goroutine.
type Monitor struct {
	config      config.Config
	backend     models.Backend
	archive     models.Archive
	placeholder Synthesizer
	clock       Clock
	sched       *Scheduler
	render      []func(RenderEvent, Snapshot)

	events chan func()
	spawn  func(func())
	post   func(func())
	sync   bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	snapMu sync.RWMutex
	snap   Snapshot

	// event loop state
	store      *timeseries.Store
	links      *linkstate.Reconciler
	cache      *stats.Cache
	latches    map[models.LinkID]*latch
	connected  bool
	retry      *Task
	tasks      []*Task
	statsRange string
	network    models.NetworkStatus
	activity   []models.ActivityEntry
	schedules  map[models.LinkID]models.RestartSchedule

	chart      []models.PingSample
	chartDirty bool
	statsDirty bool
	averages   []PeriodAverage
	stability  stats.Metrics
	signal     int
}

// New creates a new Monitor
func New(cfg config.Config, backend models.Backend, opts ...Option) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		config:     cfg,
		backend:    backend,
		clock:      RealClock,
		events:     make(chan func(), 64),
		ctx:        ctx,
		cancel:     cancel,
		store:      timeseries.NewStore(cfg.ChartRange),
		links:      linkstate.NewReconciler(models.Links),
		cache:      stats.NewCache(stats.DefaultCacheSize),
		latches:    make(map[models.LinkID]*latch, len(models.Links)),
		statsRange: cfg.StatsRange,
		schedules:  make(map[models.LinkID]models.RestartSchedule, len(models.Links)),
		chartDirty: true,
		statsDirty: true,
	}
	m.spawn = m.goSpawn
	m.post = m.enqueue
	for _, id := range models.Links {
		m.latches[id] = &latch{}
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sched = NewScheduler(m.clock, func(f func()) { m.post(f) })

	// not connected until the first link-state poll answers
	m.links.SetConnected(false)
	m.publish()
	return m
}

// Start begins polling. Every task runs once immediately and then on its period.
func (m *Monitor) Start() error {
	log.Printf("Starting monitor against %s", m.config.APIURL)

	if m.archive != nil {
		m.warmStart()
	}

	if !m.sync {
		m.wg.Add(1)
		go m.loop()
	}

	m.post(func() {
		iv := m.config.Intervals
		m.every(iv.LinkStates, m.pollLinkStates)
		m.every(iv.Latency, m.pollLatency)
		m.every(iv.FullRange, m.pollFullRange)
		m.every(iv.NetworkStatus, m.pollNetworkStatus)
		m.every(iv.Settings, m.pollSettings)
		m.every(iv.Activity, m.pollActivity)
		m.tasks = append(m.tasks, m.sched.Every(iv.Clock, m.tick))
		m.tasks = append(m.tasks, m.sched.Every(iv.Refresh, m.refresh))
		if m.archive != nil {
			m.every(iv.Maintenance, m.performMaintenance)
		}
	})

	log.Printf("Monitor started. Polling link states every %v, latency every %v",
		m.config.Intervals.LinkStates, m.config.Intervals.Latency)
	return nil
}

// Stop gracefully stops the monitor
func (m *Monitor) Stop() {
	log.Println("Stopping monitor...")
	m.cancel()
	if m.sync {
		m.stopTasks()
	}
}

// Wait blocks until all goroutines finish
func (m *Monitor) Wait() {
	m.wg.Wait()
	log.Println("Monitor stopped")
}

// loop runs posted work one closure at a time
func (m *Monitor) loop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			m.stopTasks()
			return
		case fn := <-m.events:
			fn()
		}
	}
}

func (m *Monitor) enqueue(fn func()) {
	select {
	case m.events <- fn:
	case <-m.ctx.Done():
	}
}

func (m *Monitor) goSpawn(fn func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
}

// do runs fn on the event loop and waits for it to finish
func (m *Monitor) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	m.post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
		return nil
	default:
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.ctx.Done():
		return ErrStopped
	}
}

// every runs fn now and then every period
func (m *Monitor) every(period time.Duration, fn func()) {
	fn()
	m.tasks = append(m.tasks, m.sched.Every(period, fn))
}

func (m *Monitor) stopTasks() {
	for _, t := range m.tasks {
		t.Stop()
	}
	m.tasks = nil
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
}
