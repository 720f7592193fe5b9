// Package report renders archived latency and link history into charts and a text summary.
package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"linkmon/internal/models"
)

// Source is the archive a report is built from
type Source interface {
	LoadSamples(since time.Time) ([]models.PingSample, error)
	HourlyStats(since time.Time) ([]models.HourlyStat, error)
	LinkEvents(since time.Time) ([]models.LinkEvent, error)
	RecentActivity(limit int) ([]models.ActivityEntry, error)
}

// Generator creates static images and reports of link quality
type Generator struct {
	src Source
	now func() time.Time
}

// NewGenerator creates a new report generator
func NewGenerator(src Source) *Generator {
	return &Generator{src: src, now: time.Now}
}

// GenerateReport creates a report directory with charts and a summary and returns its path
func (g *Generator) GenerateReport(outputDir string, hours int) (string, error) {
	if hours <= 0 {
		return "", fmt.Errorf("hours must be positive")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	now := g.now()
	reportDir := filepath.Join(outputDir, fmt.Sprintf("link_report_%s", now.Format("2006-01-02_15-04-05")))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	since := now.Add(-time.Duration(hours) * time.Hour)
	samples, err := g.src.LoadSamples(since)
	if err != nil {
		return "", fmt.Errorf("failed to load samples: %w", err)
	}
	hourly, err := g.src.HourlyStats(since)
	if err != nil {
		log.Printf("Failed to load hourly stats: %v", err)
	}
	events, err := g.src.LinkEvents(since)
	if err != nil {
		log.Printf("Failed to load link events: %v", err)
	}
	activity, err := g.src.RecentActivity(20)
	if err != nil {
		log.Printf("Failed to load activity: %v", err)
	}

	if err := generateLatencyCharts(reportDir, samples); err != nil {
		log.Printf("Failed to generate latency chart: %v", err)
	}

	if err := generateAvailabilityChart(reportDir, hourly); err != nil {
		log.Printf("Failed to generate availability chart: %v", err)
	}

	if err := generateRestartChart(reportDir, events); err != nil {
		log.Printf("Failed to generate restart chart: %v", err)
	}

	summary := summary{
		generated: now,
		hours:     hours,
		samples:   samples,
		events:    events,
		activity:  activity,
	}
	if err := generateTextReport(reportDir, summary); err != nil {
		return reportDir, fmt.Errorf("failed to generate text report: %w", err)
	}

	log.Printf("Report generated in: %s", reportDir)
	return reportDir, nil
}
