package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"linkmon/internal/config"
	"linkmon/internal/database"
	"linkmon/internal/report"
)

func runReport(c *cli.Context) error {
	cfg, err := config.FromContext(c)
	if err != nil {
		return err
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	dir, err := report.NewGenerator(db).GenerateReport(c.String("out"), c.Int("hours"))
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", dir)
	return nil
}
