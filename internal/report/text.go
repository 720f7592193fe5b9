package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"linkmon/internal/linkstate"
	"linkmon/internal/models"
	"linkmon/internal/stats"
)

type summary struct {
	generated time.Time
	hours     int
	samples   []models.PingSample
	events    []models.LinkEvent
	activity  []models.ActivityEntry
}

func generateTextReport(outputDir string, s summary) error {
	file, err := os.Create(filepath.Join(outputDir, "summary.txt"))
	if err != nil {
		return err
	}
	defer file.Close()

	writeSummary(file, s)
	return nil
}

func writeSummary(w io.Writer, s summary) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(w, "Link Quality Report\n")
	fmt.Fprintf(w, "Generated: %s\n", s.generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Period: Last %d hours\n\n", s.hours)
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nLATENCY BY PROVIDER")
	if len(s.samples) == 0 {
		fmt.Fprintln(w, "No samples archived for this period.")
	}
	for _, provider := range models.Providers(s.samples) {
		writeProvider(w, provider, s.samples)
	}
	fmt.Fprintln(w, rule)

	var ref int64
	if len(s.samples) > 0 {
		ref = s.samples[len(s.samples)-1].Timestamp
	}

	fmt.Fprintln(w, "\nWINDOWED AVERAGES")
	for _, period := range stats.AveragePeriods {
		minutes := stats.WindowMinutes(period)
		if minutes > s.hours*60 {
			break
		}
		avg := stats.WindowedAverage(s.samples, minutes, ref)
		status := "ok"
		if !avg.Valid {
			status = "insufficient coverage"
		}
		fmt.Fprintf(w, "  %-6s %9s  coverage %3d%%  (%s)\n", period, formatMs(avgValue(avg)), avg.CoveragePct, status)
	}
	fmt.Fprintln(w, rule)

	m := stats.Stability(s.samples, s.hours*60, ref)
	classes := m.Classes()
	fmt.Fprintf(w, "\nSTABILITY (last %d hours, %d samples)\n", s.hours, m.Samples)
	fmt.Fprintf(w, "  Std Dev:     %s (%s)\n", formatMs(m.StdDevMs), classes["stdDev"])
	fmt.Fprintf(w, "  Jitter:      %s (%s)\n", formatMs(m.JitterMs), classes["jitter"])
	if math.IsNaN(m.PacketLossPct) {
		fmt.Fprintf(w, "  Packet Loss: n/a (%s)\n", classes["packetLoss"])
	} else {
		fmt.Fprintf(w, "  Packet Loss: %.2f%% (%s)\n", m.PacketLossPct, classes["packetLoss"])
	}
	fmt.Fprintf(w, "  Peak Spike:  %s (%s)\n", formatMs(m.PeakSpikeMs), classes["peakSpike"])
	bars := stats.SignalBars(stats.PooledAverage(s.samples, s.hours*60, ref))
	fmt.Fprintf(w, "  Signal:      %d/5 bars\n", bars)
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nLINK EVENTS")
	if len(s.events) == 0 {
		fmt.Fprintln(w, "No link state changes recorded.")
	}
	for _, e := range s.events {
		rt := linkstate.Runtime{Report: e.LinkPowerReport, HasReport: true, Connected: true}
		v := linkstate.ViewOf(e.Link, rt, e.ObservedAt)
		fmt.Fprintf(w, "  %s  %-9s %s\n", e.ObservedAt.Format("2006-01-02 15:04:05"), v.Name, v.Status)
	}
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nRECENT ACTIVITY")
	if len(s.activity) == 0 {
		fmt.Fprintln(w, "No activity recorded.")
	}
	for _, a := range s.activity {
		line := fmt.Sprintf("  %s  %-9s %s", time.Unix(a.Timestamp, 0).Format("2006-01-02 15:04:05"), a.Link.Name(), a.Reason)
		if a.DurationMinutes > 0 {
			line += fmt.Sprintf(" (%d min)", a.DurationMinutes)
		}
		if a.ClientIP != "" {
			line += " from " + a.ClientIP
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, rule)
}

func writeProvider(w io.Writer, provider string, samples []models.PingSample) {
	var total, successful int
	var sum, min, max float64
	for _, s := range samples {
		if _, present := s.Latencies[provider]; !present {
			continue
		}
		total++
		v, ok := s.Latency(provider)
		if !ok {
			continue
		}
		if successful == 0 || v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
		successful++
	}
	if total == 0 {
		return
	}

	success := float64(successful) / float64(total) * 100
	fmt.Fprintf(w, "Provider: %s\n", provider)
	fmt.Fprintf(w, "  Total Pings: %d\n", total)
	fmt.Fprintf(w, "  Successful: %d (%.2f%%)\n", successful, success)
	fmt.Fprintf(w, "  Failed: %.2f%%\n", 100-success)
	if successful > 0 {
		fmt.Fprintf(w, "  Average RTT: %.2f ms\n", sum/float64(successful))
		fmt.Fprintf(w, "  Min RTT: %.2f ms\n", min)
		fmt.Fprintf(w, "  Max RTT: %.2f ms\n", max)
	}
	fmt.Fprintln(w)
}

func avgValue(a stats.Average) float64 {
	if a.InWindow == 0 {
		return math.NaN()
	}
	return a.Value
}
