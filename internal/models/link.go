package models

import "fmt"

// LinkID identifies one of the monitored internet links
type LinkID string

const (
	LinkPrimary   LinkID = "primary"
	LinkSecondary LinkID = "secondary"
)

// Links lists the monitored links in display order
var Links = []LinkID{LinkPrimary, LinkSecondary}

// Index returns the backend isp_id for the link
func (l LinkID) Index() int {
	if l == LinkSecondary {
		return 1
	}
	return 0
}

// Name returns a display name for the link
func (l LinkID) Name() string {
	switch l {
	case LinkPrimary:
		return "Primary"
	case LinkSecondary:
		return "Secondary"
	default:
		return string(l)
	}
}

// ParseLinkID converts a link name or backend index into a LinkID
func ParseLinkID(s string) (LinkID, error) {
	switch s {
	case "primary", "0":
		return LinkPrimary, nil
	case "secondary", "1":
		return LinkSecondary, nil
	}
	return "", fmt.Errorf("unknown link %q", s)
}

// LinkPowerReport is the power state of a link as last reported by the backend
type LinkPowerReport struct {
	Link           LinkID `json:"link"`
	Online         bool   `json:"online"`
	OffRequestedAt int64  `json:"off_requested_at"`
	OffUntil       int64  `json:"off_until"`
}

// RestartMode selects an immediate or a timed restart
type RestartMode string

const (
	RestartNow   RestartMode = "now"
	RestartTimed RestartMode = "timed"
)

// RestartCommand asks the backend to power-cycle a link
type RestartCommand struct {
	Link            LinkID      `json:"link"`
	Mode            RestartMode `json:"mode"`
	DurationMinutes int         `json:"duration_minutes,omitempty"`
}

// Validate checks the restart command
func (c RestartCommand) Validate() error {
	switch c.Mode {
	case RestartNow:
	case RestartTimed:
		if c.DurationMinutes <= 0 {
			return fmt.Errorf("timed restart needs a positive duration")
		}
	default:
		return fmt.Errorf("unknown restart mode %q", c.Mode)
	}
	return nil
}

// NetworkStatus describes the currently active uplink
type NetworkStatus struct {
	ActiveConnection string `json:"active_connection"`
	PublicIP         string `json:"public_ip"`
	Location         string `json:"location"`
}

// ActivityEntry is one line of the backend activity log
type ActivityEntry struct {
	Timestamp       int64  `json:"uxtimesec"`
	Reason          string `json:"reason"`
	Link            LinkID `json:"link,omitempty"`
	LinkName        string `json:"isp_name,omitempty"`
	RestartType     string `json:"restart_type,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	ClientIP        string `json:"client_ip,omitempty"`
}
