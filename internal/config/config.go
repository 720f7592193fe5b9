package config

import (
	"fmt"
	"net/url"
	"time"

	"linkmon/internal/models"
	"linkmon/internal/stats"
	"linkmon/internal/timeseries"
)

// Config holds all configuration for the link monitor
type Config struct {
	APIURL         string            `mapstructure:"api_url"`
	Port           int               `mapstructure:"port"`
	DatabasePath   string            `mapstructure:"db"`
	RedisAddr      string            `mapstructure:"redis_addr"`
	RedisTTL       time.Duration     `mapstructure:"redis_ttl"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
	ChartRange     string            `mapstructure:"chart_range"`
	StatsRange     string            `mapstructure:"stats_range"`
	ActivityLimit  int               `mapstructure:"activity_limit"`
	Retention      time.Duration     `mapstructure:"retention"`
	Providers      []string          `mapstructure:"providers"`
	PingTimeout    time.Duration     `mapstructure:"ping_timeout"`
	PingHosts      map[string]string `mapstructure:"ping_hosts"`
	Intervals      Intervals         `mapstructure:"intervals"`
}

// Intervals holds the polling periods and settle delays
type Intervals struct {
	Latency        time.Duration `mapstructure:"latency"`
	FullRange      time.Duration `mapstructure:"full_range"`
	LinkStates     time.Duration `mapstructure:"link_states"`
	NetworkStatus  time.Duration `mapstructure:"network_status"`
	Settings       time.Duration `mapstructure:"settings"`
	Activity       time.Duration `mapstructure:"activity"`
	Clock          time.Duration `mapstructure:"clock"`
	Retry          time.Duration `mapstructure:"retry"`
	Maintenance    time.Duration `mapstructure:"maintenance"`
	ScheduleSettle time.Duration `mapstructure:"schedule_settle"`
	ToggleSettle   time.Duration `mapstructure:"toggle_settle"`
	RestartRefresh time.Duration `mapstructure:"restart_refresh"`
	// Refresh re-renders every link and the statistics even when nothing changed
	Refresh time.Duration `mapstructure:"refresh"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		APIURL:         "http://127.0.0.1:8081/api/ping-data",
		Port:           8080,
		DatabasePath:   "linkmon.db",
		RedisTTL:       time.Minute,
		RequestTimeout: 10 * time.Second,
		ChartRange:     "5min",
		StatsRange:     stats.DefaultWindow,
		ActivityLimit:  10,
		Retention:      7 * 24 * time.Hour,
		Providers:      models.DefaultProviders,
		PingTimeout:    2 * time.Second,
		Intervals: Intervals{
			Latency:        15 * time.Second,
			FullRange:      30 * time.Second,
			LinkStates:     5 * time.Second,
			NetworkStatus:  15 * time.Second,
			Settings:       30 * time.Second,
			Activity:       30 * time.Second,
			Clock:          time.Second,
			Retry:          5 * time.Second,
			Maintenance:    time.Hour,
			ScheduleSettle: 3 * time.Second,
			ToggleSettle:   2 * time.Second,
			RestartRefresh: time.Second,
			Refresh:        30 * time.Second,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api url must be an absolute URL")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if _, ok := timeseries.ChartRows[c.ChartRange]; !ok {
		return fmt.Errorf("unknown chart range %q", c.ChartRange)
	}
	if _, ok := stats.Windows[c.StatsRange]; !ok {
		return fmt.Errorf("unknown stats range %q", c.StatsRange)
	}
	if c.ActivityLimit <= 0 {
		return fmt.Errorf("activity limit must be positive")
	}
	if c.Retention <= 0 {
		return fmt.Errorf("retention must be positive")
	}
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one latency provider is required")
	}
	if c.RedisAddr != "" && c.RedisTTL <= c.Intervals.Refresh {
		return fmt.Errorf("redis ttl must be longer than the refresh interval")
	}
	return c.Intervals.Validate()
}

// Validate checks that every period is positive
func (i Intervals) Validate() error {
	periods := []struct {
		name string
		d    time.Duration
	}{
		{"latency", i.Latency},
		{"full_range", i.FullRange},
		{"link_states", i.LinkStates},
		{"network_status", i.NetworkStatus},
		{"settings", i.Settings},
		{"activity", i.Activity},
		{"clock", i.Clock},
		{"retry", i.Retry},
		{"maintenance", i.Maintenance},
		{"schedule_settle", i.ScheduleSettle},
		{"toggle_settle", i.ToggleSettle},
		{"restart_refresh", i.RestartRefresh},
		{"refresh", i.Refresh},
	}
	for _, p := range periods {
		if p.d <= 0 {
			return fmt.Errorf("interval %s must be positive", p.name)
		}
	}
	return nil
}
