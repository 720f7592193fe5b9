package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"linkmon/internal/models"
)

type points struct {
	timestamps []time.Time
	values     []float64
}

var (
	padding   = chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}}
	axisStyle = chart.Style{StrokeColor: drawing.ColorBlack, FontSize: 10}
	gridStyle = chart.Style{StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255}, StrokeWidth: 1.0}
)

// latencyPoints groups successful pings by provider
func latencyPoints(samples []models.PingSample) map[string]points {
	byProvider := make(map[string]points)
	for _, s := range samples {
		for provider := range s.Latencies {
			v, ok := s.Latency(provider)
			if !ok {
				continue
			}
			data := byProvider[provider]
			data.timestamps = append(data.timestamps, time.Unix(s.Timestamp, 0))
			data.values = append(data.values, v)
			byProvider[provider] = data
		}
	}
	return byProvider
}

func renderPNG(filename string, render func(chart.RendererProvider, io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := render(chart.PNG, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func generateLatencyCharts(outputDir string, samples []models.PingSample) error {
	for provider, data := range latencyPoints(samples) {
		// a time axis needs two distinct points
		if len(data.values) < 2 {
			continue
		}

		graph := chart.Chart{
			Title:      fmt.Sprintf("Latency - %s", provider),
			TitleStyle: chart.Style{FontSize: 16},
			Background: padding,
			Width:      1200,
			Height:     400,
			XAxis: chart.XAxis{
				Name:           "Time",
				NameStyle:      chart.Style{FontSize: 12},
				Style:          axisStyle,
				ValueFormatter: chart.TimeMinuteValueFormatter,
			},
			YAxis: chart.YAxis{
				Name:           "Latency (ms)",
				NameStyle:      chart.Style{FontSize: 12},
				Style:          axisStyle,
				GridMajorStyle: gridStyle,
			},
			Series: []chart.Series{
				chart.TimeSeries{
					Name: provider,
					Style: chart.Style{
						StrokeColor: chart.GetDefaultColor(0),
						StrokeWidth: 2,
					},
					XValues: data.timestamps,
					YValues: data.values,
				},
			},
		}

		// Add moving average
		if len(data.values) > 10 {
			ts := graph.Series[0].(chart.TimeSeries)
			graph.Series = append(graph.Series, chart.SMASeries{
				Name: "Moving Avg",
				Style: chart.Style{
					StrokeColor:     chart.GetDefaultColor(1),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5, 5},
				},
				InnerSeries: ts,
				Period:      10,
			})
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("latency_%s.png", sanitizeFilename(provider)))
		if err := renderPNG(filename, graph.Render); err != nil {
			return err
		}
	}

	return nil
}

func generateAvailabilityChart(outputDir string, hourly []models.HourlyStat) error {
	byProvider := make(map[string]points)
	for _, h := range hourly {
		if h.TotalPings == 0 {
			continue
		}
		data := byProvider[h.Provider]
		data.timestamps = append(data.timestamps, h.Hour)
		data.values = append(data.values, float64(h.Successful)/float64(h.TotalPings)*100)
		byProvider[h.Provider] = data
	}

	providers := make([]string, 0, len(byProvider))
	for p, data := range byProvider {
		if len(data.values) >= 2 {
			providers = append(providers, p)
		}
	}
	if len(providers) == 0 {
		return nil
	}
	sort.Strings(providers)

	var allSeries []chart.Series
	for i, p := range providers {
		data := byProvider[p]
		allSeries = append(allSeries, chart.TimeSeries{
			Name: p,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2,
			},
			XValues: data.timestamps,
			YValues: data.values,
		})
	}

	graph := chart.Chart{
		Title:      "Ping Success (Hourly)",
		TitleStyle: chart.Style{FontSize: 16},
		Background: padding,
		Width:      1200,
		Height:     400,
		XAxis: chart.XAxis{
			Name:           "Time",
			Style:          axisStyle,
			ValueFormatter: chart.TimeHourValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Success %",
			Style:          axisStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: 100},
			GridMajorStyle: gridStyle,
		},
		Series: allSeries,
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	return renderPNG(filepath.Join(outputDir, "availability.png"), graph.Render)
}

// generateRestartChart plots how often each link went down per day
func generateRestartChart(outputDir string, events []models.LinkEvent) error {
	counts := make(map[string]int)
	for _, e := range events {
		if e.Online {
			continue
		}
		label := fmt.Sprintf("%s %s", e.ObservedAt.Format("01-02"), e.Link)
		counts[label]++
	}
	if len(counts) == 0 {
		return nil
	}

	labels := make([]string, 0, len(counts))
	max := 0
	for label, n := range counts {
		labels = append(labels, label)
		if n > max {
			max = n
		}
	}
	sort.Strings(labels)

	values := make([]chart.Value, 0, len(labels))
	for _, label := range labels {
		values = append(values, chart.Value{Label: label, Value: float64(counts[label])})
	}

	graph := chart.BarChart{
		Title:      "Link Outages by Day",
		TitleStyle: chart.Style{FontSize: 16},
		Background: padding,
		Width:      1200,
		Height:     400,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max + 1)},
		},
		Bars:     values,
		BarWidth: 40,
	}

	return renderPNG(filepath.Join(outputDir, "link_outages.png"), graph.Render)
}
