package models

import (
	"context"
	"time"
)

// LatencyBatch is one response of the latency feed
type LatencyBatch struct {
	Samples []PingSample
	// RestartTimes holds last-restart unix seconds per link; absent links carry no update
	RestartTimes map[LinkID]int64
}

// Backend defines the remote API the monitor polls and commands
type Backend interface {
	FetchLatencyBatch(ctx context.Context, rows int) (LatencyBatch, error)
	FetchLinkStates(ctx context.Context) (map[LinkID]LinkPowerReport, error)
	FetchActivityLog(ctx context.Context, limit int) ([]ActivityEntry, error)
	FetchAutorestartSettings(ctx context.Context) (map[LinkID]RestartSchedule, error)
	FetchNetworkStatus(ctx context.Context) (NetworkStatus, error)
	SendRestartCommand(ctx context.Context, cmd RestartCommand) error
	SendScheduleUpdate(ctx context.Context, upd ScheduleUpdate) error
	SendAutorestartToggle(ctx context.Context, link LinkID, enabled bool) error
}

// Archive defines operations for sample and event persistence
type Archive interface {
	SaveSamples(samples []PingSample) error
	LoadSamples(since time.Time) ([]PingSample, error)
	SaveLinkEvent(report LinkPowerReport, at time.Time) error
	SaveActivity(entries []ActivityEntry) error
	PruneSamples(before time.Time) error
}

// Pinger measures local round-trip times to a host
type Pinger interface {
	Ping(target string, timeout time.Duration) (float64, error)
}
