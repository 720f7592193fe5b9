package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"linkmon/internal/models"
)

// SaveSamples archives real samples; synthetic placeholders and replays are skipped
func (db *DB) SaveSamples(samples []models.PingSample) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin failed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO samples (untimesec, latencies) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare failed: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if s.Synthetic {
			continue
		}
		latencies, err := json.Marshal(s.Latencies)
		if err != nil {
			return fmt.Errorf("encode sample %d: %w", s.Timestamp, err)
		}
		if _, err := stmt.Exec(s.Timestamp, string(latencies)); err != nil {
			return fmt.Errorf("insert sample %d: %w", s.Timestamp, err)
		}
	}

	return tx.Commit()
}

// LoadSamples returns archived samples at or after since, oldest first
func (db *DB) LoadSamples(since time.Time) ([]models.PingSample, error) {
	query := `
        SELECT untimesec, latencies
        FROM samples
        WHERE untimesec >= ?
        ORDER BY untimesec
    `

	rows, err := db.Query(query, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.PingSample
	for rows.Next() {
		var s models.PingSample
		var latencies string
		if err := rows.Scan(&s.Timestamp, &latencies); err != nil {
			continue
		}
		if err := json.Unmarshal([]byte(latencies), &s.Latencies); err != nil {
			continue
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// SaveLinkEvent records a changed link power report
func (db *DB) SaveLinkEvent(report models.LinkPowerReport, at time.Time) error {
	query := `
        INSERT INTO link_events (link, online, off_requested_at, off_until, observed_at)
        VALUES (?, ?, ?, ?, ?)
    `
	_, err := db.Exec(query,
		string(report.Link),
		report.Online,
		report.OffRequestedAt,
		report.OffUntil,
		at.Unix(),
	)
	return err
}

// LinkEvents returns link transitions observed since a point in time, newest first
func (db *DB) LinkEvents(since time.Time) ([]models.LinkEvent, error) {
	query := `
        SELECT link, online, off_requested_at, off_until, observed_at
        FROM link_events
        WHERE observed_at >= ?
        ORDER BY observed_at DESC, id DESC
        LIMIT 1000
    `

	rows, err := db.Query(query, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.LinkEvent
	for rows.Next() {
		var e models.LinkEvent
		var link string
		var observed int64
		err := rows.Scan(&link, &e.Online, &e.OffRequestedAt, &e.OffUntil, &observed)
		if err != nil {
			continue
		}
		e.Link = models.LinkID(link)
		e.ObservedAt = time.Unix(observed, 0)
		events = append(events, e)
	}

	return events, rows.Err()
}

// SaveActivity stores activity log entries, ignoring ones already archived
func (db *DB) SaveActivity(entries []models.ActivityEntry) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin failed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
        INSERT OR IGNORE INTO activity_log
            (uxtimesec, isp_id, reason, isp_name, restart_type, duration_minutes, client_ip)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("prepare failed: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.Exec(e.Timestamp, string(e.Link), e.Reason, e.LinkName,
			e.RestartType, e.DurationMinutes, e.ClientIP)
		if err != nil {
			return fmt.Errorf("insert activity %d: %w", e.Timestamp, err)
		}
	}

	return tx.Commit()
}

// RecentActivity returns the newest archived activity entries
func (db *DB) RecentActivity(limit int) ([]models.ActivityEntry, error) {
	query := `
        SELECT uxtimesec, isp_id, reason, isp_name, restart_type, duration_minutes, client_ip
        FROM activity_log
        ORDER BY uxtimesec DESC
        LIMIT ?
    `

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		var link string
		var name, restartType, clientIP sql.NullString
		var duration sql.NullInt64
		err := rows.Scan(&e.Timestamp, &link, &e.Reason, &name, &restartType, &duration, &clientIP)
		if err != nil {
			continue
		}
		e.Link = models.LinkID(link)
		e.LinkName = name.String
		e.RestartType = restartType.String
		e.DurationMinutes = int(duration.Int64)
		e.ClientIP = clientIP.String
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// HourlyStats aggregates archived samples per provider and hour
func (db *DB) HourlyStats(since time.Time) ([]models.HourlyStat, error) {
	query := `
        SELECT
            (s.untimesec / 3600) * 3600 AS hour,
            p.key AS provider,
            COUNT(*) AS total_pings,
            SUM(CASE WHEN p.value > 0 THEN 1 ELSE 0 END) AS successful_pings,
            AVG(CASE WHEN p.value > 0 THEN p.value ELSE NULL END) AS avg_ms,
            MAX(CASE WHEN p.value > 0 THEN p.value ELSE NULL END) AS max_ms
        FROM samples s, json_each(s.latencies) p
        WHERE s.untimesec >= ?
        GROUP BY hour, provider
        ORDER BY hour, provider
    `

	rows, err := db.Query(query, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.HourlyStat
	for rows.Next() {
		var h models.HourlyStat
		var hour int64
		var avgMs, maxMs sql.NullFloat64
		err := rows.Scan(&hour, &h.Provider, &h.TotalPings, &h.Successful, &avgMs, &maxMs)
		if err != nil {
			continue
		}
		h.Hour = time.Unix(hour, 0)
		if avgMs.Valid {
			h.AvgMs = avgMs.Float64
		}
		if maxMs.Valid {
			h.MaxMs = maxMs.Float64
		}
		if h.TotalPings > 0 {
			h.PacketLoss = float64(h.TotalPings-h.Successful) * 100 / float64(h.TotalPings)
		}
		stats = append(stats, h)
	}

	return stats, rows.Err()
}
