package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"linkmon/internal/config"
)

const (
	AppName    = "linkmon"
	AppVersion = "1.0.0"
	AppDesc    = "Dual-link latency and restart state monitor"
)

func createCliApp() *cli.App {
	return &cli.App{
		Name:     AppName,
		Version:  AppVersion,
		Usage:    AppDesc,
		Commands: createCommands(),
	}
}

// withConfigFlags returns the shared config flags followed by extra
func withConfigFlags(extra ...cli.Flag) []cli.Flag {
	flags := make([]cli.Flag, 0, len(config.Flags)+len(extra))
	flags = append(flags, config.Flags...)
	return append(flags, extra...)
}

func createCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "run",
			Usage:  "Poll the backend and serve the monitor API",
			Flags:  withConfigFlags(),
			Action: runMonitor,
		},
		{
			Name:  "report",
			Usage: "Render charts and a summary from the archive",
			Flags: withConfigFlags(
				&cli.StringFlag{
					Name:  "out",
					Value: "reports",
					Usage: "Directory reports are written to",
				},
				&cli.IntFlag{
					Name:  "hours",
					Value: 24,
					Usage: "Hours of history to include",
				},
			),
			Action: runReport,
		},
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "Print version information",
			Action: func(c *cli.Context) error {
				fmt.Printf("%s v%s\n", AppName, AppVersion)
				return nil
			},
		},
	}
}
