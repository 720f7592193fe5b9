package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from defaults, an optional YAML file and LINKMON_* environment variables.
// An empty path searches the working directory and /etc/linkmon for linkmon.yaml.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("linkmon")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("linkmon")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/linkmon/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		log.Printf("No config file found, using defaults and flags")
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("port", d.Port)
	v.SetDefault("db", d.DatabasePath)
	v.SetDefault("redis_addr", d.RedisAddr)
	v.SetDefault("redis_ttl", d.RedisTTL)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("chart_range", d.ChartRange)
	v.SetDefault("stats_range", d.StatsRange)
	v.SetDefault("activity_limit", d.ActivityLimit)
	v.SetDefault("retention", d.Retention)
	v.SetDefault("providers", d.Providers)
	v.SetDefault("ping_timeout", d.PingTimeout)
	v.SetDefault("ping_hosts", d.PingHosts)

	v.SetDefault("intervals.latency", d.Intervals.Latency)
	v.SetDefault("intervals.full_range", d.Intervals.FullRange)
	v.SetDefault("intervals.link_states", d.Intervals.LinkStates)
	v.SetDefault("intervals.network_status", d.Intervals.NetworkStatus)
	v.SetDefault("intervals.settings", d.Intervals.Settings)
	v.SetDefault("intervals.activity", d.Intervals.Activity)
	v.SetDefault("intervals.clock", d.Intervals.Clock)
	v.SetDefault("intervals.retry", d.Intervals.Retry)
	v.SetDefault("intervals.maintenance", d.Intervals.Maintenance)
	v.SetDefault("intervals.schedule_settle", d.Intervals.ScheduleSettle)
	v.SetDefault("intervals.toggle_settle", d.Intervals.ToggleSettle)
	v.SetDefault("intervals.restart_refresh", d.Intervals.RestartRefresh)
	v.SetDefault("intervals.refresh", d.Intervals.Refresh)
}
