package database

import (
	"fmt"
	"time"
)

// PruneSamples deletes samples, link events and activity older than before
func (db *DB) PruneSamples(before time.Time) error {
	cutoff := before.Unix()

	if _, err := db.Exec(`DELETE FROM samples WHERE untimesec < ?`, cutoff); err != nil {
		return fmt.Errorf("prune samples: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM link_events WHERE observed_at < ?`, cutoff); err != nil {
		return fmt.Errorf("prune link events: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM activity_log WHERE uxtimesec < ?`, cutoff); err != nil {
		return fmt.Errorf("prune activity: %w", err)
	}

	// Vacuum to reclaim space (run occasionally)
	if time.Now().Day() == 1 { // Run on first day of month
		_, err := db.Exec("VACUUM")
		return err
	}

	return nil
}
