// Package linkstate reconciles polled link power reports into uptime and downtime views.
package linkstate

import "linkmon/internal/models"

// State is the power state of a link derived from its last report
type State int

const (
	Unknown State = iota
	Online
	Restarting
	OfflineTimed
)

func (s State) String() string {
	switch s {
	case Online:
		return "online"
	case Restarting:
		return "restarting"
	case OfflineTimed:
		return "offline"
	default:
		return "unknown"
	}
}

// Runtime is everything the reconciler knows about one link
type Runtime struct {
	Report    models.LinkPowerReport
	HasReport bool
	// LastRestart is the unix time of the last restart, 0 when unknown
	LastRestart int64
	// PendingFreshRestart is set after a tracked outage ends and cleared by a fresh restart time
	PendingFreshRestart bool
	Connected           bool
	Schedule            models.RestartSchedule
	HasSchedule         bool
}

// State returns the derived power state
func (r Runtime) State() State {
	switch {
	case !r.HasReport:
		return Unknown
	case r.Report.Online:
		return Online
	case r.Report.OffUntil == 0:
		return Restarting
	default:
		return OfflineTimed
	}
}

// UptimeKnown reports whether LastRestart can be trusted as an uptime reference
func (r Runtime) UptimeKnown() bool {
	return !r.PendingFreshRestart && r.LastRestart != 0
}

// InDowntime reports whether the link is offline in a tracked outage
func (r Runtime) InDowntime() bool {
	return r.HasReport && !r.Report.Online && r.Report.OffRequestedAt > 0
}
