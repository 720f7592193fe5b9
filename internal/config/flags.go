package config

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Flags are the command-line flags shared by the monitor commands
var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a YAML config file",
	},
	&cli.StringFlag{
		Name:  "api-url",
		Usage: "Backend API endpoint",
	},
	&cli.IntFlag{
		Name:  "port",
		Usage: "Web server port",
	},
	&cli.StringFlag{
		Name:  "db",
		Usage: "Database path",
	},
	&cli.StringFlag{
		Name:  "redis",
		Usage: "Redis address for the snapshot mirror, empty disables it",
	},
}

// FromContext loads configuration and applies the flags that were set on the command line
func FromContext(c *cli.Context) (Config, error) {
	cfg, err := Load(c.String("config"))
	if err != nil {
		return Config{}, err
	}

	if c.IsSet("api-url") {
		cfg.APIURL = c.String("api-url")
	}
	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if c.IsSet("db") {
		cfg.DatabasePath = c.String("db")
	}
	if c.IsSet("redis") {
		cfg.RedisAddr = c.String("redis")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
