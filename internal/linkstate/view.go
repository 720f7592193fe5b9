package linkstate

import (
	"fmt"
	"time"

	"linkmon/internal/models"
	"linkmon/internal/schedule"
)

// UnknownClock is shown instead of an uptime that cannot be trusted
const UnknownClock = "--:--:--"

// View is the display state of a link at a point in time
type View struct {
	Link   models.LinkID `json:"link"`
	Name   string        `json:"name"`
	State  string        `json:"state"`
	Status string        `json:"status"`
	// Stale marks values kept ticking locally while the backend is unreachable
	Stale bool `json:"stale"`

	ClockLabel   string `json:"clock_label"`
	Clock        string `json:"clock"`
	ClockHours   string `json:"clock_hours"`
	ClockSeconds int64  `json:"clock_seconds"`
	ClockKnown   bool   `json:"clock_known"`

	Schedule    string `json:"schedule,omitempty"`
	NextRestart int64  `json:"next_restart,omitempty"`
	Countdown   string `json:"countdown,omitempty"`
}

// View renders the display state of a link at now
func (r *Reconciler) View(link models.LinkID, now time.Time) (View, bool) {
	rt, ok := r.links[link]
	if !ok {
		return View{}, false
	}
	return ViewOf(link, *rt, now), true
}

// Views renders every link in display order
func (r *Reconciler) Views(now time.Time) []View {
	views := make([]View, 0, len(r.links))
	for _, id := range r.Links() {
		v, _ := r.View(id, now)
		views = append(views, v)
	}
	return views
}

// ViewOf renders a runtime state at now
func ViewOf(link models.LinkID, rt Runtime, now time.Time) View {
	v := View{
		Link:   link,
		Name:   link.Name(),
		State:  rt.State().String(),
		Status: statusText(rt),
		Stale:  !rt.Connected,
	}
	if v.Stale && rt.HasReport {
		v.Status = "ONLINE?"
	}

	unix := now.Unix()
	switch {
	case rt.InDowntime():
		v.ClockLabel = "Downtime"
		v.ClockKnown = true
		v.ClockSeconds = elapsed(unix, rt.Report.OffRequestedAt)
	case rt.UptimeKnown():
		v.ClockLabel = "Uptime"
		v.ClockKnown = true
		v.ClockSeconds = elapsed(unix, rt.LastRestart)
	default:
		v.ClockLabel = "Uptime"
	}
	if v.ClockKnown {
		v.Clock = FormatUptime(v.ClockSeconds)
		v.ClockHours = FormatHours(v.ClockSeconds)
	} else {
		v.Clock = UnknownClock
		v.ClockHours = UnknownClock
	}

	if rt.HasSchedule {
		v.Schedule = schedule.Describe(rt.Schedule)
		if next, ok := schedule.NextOccurrence(rt.Schedule, now); ok {
			v.NextRestart = next.Unix()
			v.Countdown = schedule.FormatCountdown(next.Sub(now))
		}
	}
	return v
}

func statusText(rt Runtime) string {
	switch rt.State() {
	case Online:
		return "ONLINE"
	case Restarting:
		return "RESTARTING"
	case OfflineTimed:
		if rt.Report.OffRequestedAt > 0 && rt.Report.OffUntil > rt.Report.OffRequestedAt {
			planned := time.Duration(rt.Report.OffUntil-rt.Report.OffRequestedAt) * time.Second
			return fmt.Sprintf("OFFLINE (%s)", schedule.FormatCompact(planned))
		}
		return "OFFLINE"
	default:
		return "UNKNOWN"
	}
}

func elapsed(now, since int64) int64 {
	if now < since {
		return 0
	}
	return now - since
}

// FormatUptime renders seconds as "Xd HH:MM:SS", or "HH:MM:SS" below one day
func FormatUptime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / 86400
	h := seconds % 86400 / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatHours renders seconds as total hours "HHH:MM:SS"
func FormatHours(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%03d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
