package transport

import (
	"bytes"
	"encoding/json"
	"log"
	"strconv"

	"linkmon/internal/models"
)

type object map[string]json.RawMessage

// number reads a JSON number, boolean or numeric string
func number(raw json.RawMessage) (float64, bool) {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func integer(o object, key string) int {
	n, _ := number(o[key])
	return int(n)
}

// decodeLatencyBatch accepts {ping_data, restart_times} or a bare array of rows.
// Only the listed provider columns become latencies.
func decodeLatencyBatch(body []byte, providers []string) (models.LatencyBatch, error) {
	const op = "fetch latency"
	var batch models.LatencyBatch

	var rows []object
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return batch, &MalformedDataError{Op: op, Field: "body"}
		}
	} else {
		var envelope object
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return batch, &MalformedDataError{Op: op, Field: "body"}
		}
		raw, ok := envelope["ping_data"]
		if !ok || json.Unmarshal(raw, &rows) != nil {
			return batch, &MalformedDataError{Op: op, Field: "ping_data"}
		}
		if raw, ok := envelope["restart_times"]; ok {
			batch.RestartTimes = decodeRestartTimes(raw)
		}
	}

	batch.Samples = make([]models.PingSample, 0, len(rows))
	for _, row := range rows {
		ts, ok := number(row["untimesec"])
		if !ok || ts <= 0 {
			return models.LatencyBatch{}, &MalformedDataError{Op: op, Field: "untimesec"}
		}
		sample := models.PingSample{
			Timestamp: int64(ts),
			Latencies: make(map[string]float64, len(providers)),
		}
		for _, provider := range providers {
			raw, ok := row[provider]
			if !ok {
				continue
			}
			// null or non-numeric values are failed pings
			v, _ := number(raw)
			sample.Latencies[provider] = v
		}
		batch.Samples = append(batch.Samples, sample)
	}
	return batch, nil
}

func decodeRestartTimes(raw json.RawMessage) map[models.LinkID]int64 {
	var o object
	if json.Unmarshal(raw, &o) != nil {
		return nil
	}
	times := make(map[models.LinkID]int64, len(o))
	for key, v := range o {
		id, err := models.ParseLinkID(key)
		if err != nil {
			continue
		}
		if ts, ok := number(v); ok {
			times[id] = int64(ts)
		}
	}
	return times
}

// decodeLinkStates accepts PowerState or powerstate as 0/1 or a boolean.
// A link missing any of its fields is left out so its previous report stays in effect.
func decodeLinkStates(body []byte) (map[models.LinkID]models.LinkPowerReport, error) {
	const op = "fetch link states"
	var links map[string]object
	if err := json.Unmarshal(body, &links); err != nil {
		return nil, &MalformedDataError{Op: op, Field: "body"}
	}

	reports := make(map[models.LinkID]models.LinkPowerReport, len(links))
	for key, o := range links {
		id, err := models.ParseLinkID(key)
		if err != nil || o == nil {
			continue
		}
		raw, ok := o["PowerState"]
		if !ok {
			raw = o["powerstate"]
		}
		power, ok := number(raw)
		if !ok {
			log.Printf("[transport] No power state for %s, keeping previous state", id)
			continue
		}
		offRequested, ok := number(o["uxtimewhenoffrequested"])
		if !ok {
			log.Printf("[transport] No off-request time for %s, keeping previous state", id)
			continue
		}
		offUntil, ok := number(o["offuntiluxtimesec"])
		if !ok {
			log.Printf("[transport] No off-until time for %s, keeping previous state", id)
			continue
		}
		reports[id] = models.LinkPowerReport{
			Link:           id,
			Online:         power != 0,
			OffRequestedAt: int64(offRequested),
			OffUntil:       int64(offUntil),
		}
	}

	if len(reports) == 0 {
		return nil, &MalformedDataError{Op: op, Field: "PowerState"}
	}
	return reports, nil
}

func decodeSettings(body []byte) (map[models.LinkID]models.RestartSchedule, error) {
	const op = "fetch autorestart settings"
	var links map[string]object
	if err := json.Unmarshal(body, &links); err != nil {
		return nil, &MalformedDataError{Op: op, Field: "body"}
	}

	settings := make(map[models.LinkID]models.RestartSchedule, len(links))
	for key, o := range links {
		id, err := models.ParseLinkID(key)
		if err != nil || o == nil {
			continue
		}
		if _, ok := o["autorestart"]; !ok {
			continue
		}
		s := models.RestartSchedule{
			Enabled:     integer(o, "autorestart") == 1,
			DayOfWeek:   integer(o, "dayinweek"),
			WeekOfMonth: integer(o, "weekinmonth"),
			Hour:        integer(o, "hour"),
			Minute:      integer(o, "min"),
			Second:      integer(o, "sec"),
		}
		switch {
		case integer(o, "daily") == 1:
			s.Frequency = models.Daily
		case integer(o, "weekly") == 1:
			s.Frequency = models.Weekly
		case integer(o, "monthly") == 1:
			s.Frequency = models.Monthly
		}
		settings[id] = s
	}

	if len(settings) == 0 {
		return nil, &MalformedDataError{Op: op, Field: "autorestart"}
	}
	return settings, nil
}

type activityRow struct {
	Timestamp       float64  `json:"uxtimesec"`
	Reason          string   `json:"reason"`
	ISPID           *int     `json:"isp_id"`
	ISPName         string   `json:"isp_name"`
	RestartType     string   `json:"restart_type"`
	DurationMinutes *float64 `json:"duration_minutes"`
	ClientIP        string   `json:"client_ip"`
}

func decodeActivity(body []byte) ([]models.ActivityEntry, error) {
	var rows []activityRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &MalformedDataError{Op: "fetch activity log", Field: "body"}
	}

	entries := make([]models.ActivityEntry, 0, len(rows))
	for _, r := range rows {
		e := models.ActivityEntry{
			Timestamp:   int64(r.Timestamp),
			Reason:      r.Reason,
			LinkName:    r.ISPName,
			RestartType: r.RestartType,
			ClientIP:    r.ClientIP,
		}
		if r.ISPID != nil {
			if id, err := models.ParseLinkID(strconv.Itoa(*r.ISPID)); err == nil {
				e.Link = id
			}
		}
		if r.DurationMinutes != nil {
			e.DurationMinutes = int(*r.DurationMinutes)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
