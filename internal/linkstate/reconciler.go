package linkstate

import (
	"log"

	"linkmon/internal/models"
)

// Reconciler owns the runtime state of every monitored link.
// It is not safe for concurrent use.
type Reconciler struct {
	links map[models.LinkID]*Runtime
}

// NewReconciler creates a reconciler for the given links, all initially connected
func NewReconciler(links []models.LinkID) *Reconciler {
	r := &Reconciler{links: make(map[models.LinkID]*Runtime, len(links))}
	for _, id := range links {
		r.links[id] = &Runtime{Connected: true}
	}
	return r
}

// Links returns the link ids in display order
func (r *Reconciler) Links() []models.LinkID {
	out := make([]models.LinkID, 0, len(r.links))
	for _, id := range models.Links {
		if _, ok := r.links[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Runtime returns a copy of the state of a link
func (r *Reconciler) Runtime(link models.LinkID) (Runtime, bool) {
	rt, ok := r.links[link]
	if !ok {
		return Runtime{}, false
	}
	return *rt, true
}

// ApplyReport stores a new power report and returns whether any displayed field changed.
// Leaving a tracked outage arms the pending fresh restart guard.
func (r *Reconciler) ApplyReport(rep models.LinkPowerReport) bool {
	rt, ok := r.links[rep.Link]
	if !ok {
		return false
	}
	if rep.OffRequestedAt < 0 || rep.OffUntil < 0 {
		log.Printf("[linkstate] Ignoring malformed report for %s: %+v", rep.Link, rep)
		return false
	}

	if !rt.HasReport {
		rt.Report = rep
		rt.HasReport = true
		return true
	}

	prev := rt.Report
	if !prev.Online && rep.Online && (prev.OffRequestedAt > 0 || prev.OffUntil == 0) {
		rt.PendingFreshRestart = true
		log.Printf("[linkstate] %s back online after outage, waiting for fresh restart time", rep.Link)
	}
	rt.Report = rep
	return prev != rep
}

// ApplyRestartTimes adopts restart timestamps from the latency feed.
// A zero value never replaces a pending guard. It returns whether any uptime reference changed.
func (r *Reconciler) ApplyRestartTimes(times map[models.LinkID]int64) bool {
	changed := false
	for link, ts := range times {
		rt, ok := r.links[link]
		if !ok || ts < 0 {
			continue
		}
		switch {
		case ts > 0:
			if rt.PendingFreshRestart {
				log.Printf("[linkstate] Fresh restart time for %s, resuming uptime", link)
			}
			if rt.LastRestart != ts || rt.PendingFreshRestart {
				changed = true
			}
			rt.LastRestart = ts
			rt.PendingFreshRestart = false
		case !rt.PendingFreshRestart:
			if rt.LastRestart != 0 {
				changed = true
			}
			rt.LastRestart = 0
		}
	}
	return changed
}

// SetConnected updates the connected flag of every link and returns whether it changed
func (r *Reconciler) SetConnected(connected bool) bool {
	changed := false
	for _, rt := range r.links {
		if rt.Connected != connected {
			rt.Connected = connected
			changed = true
		}
	}
	return changed
}

// SetSchedule stores the restart schedule of a link and returns whether it changed
func (r *Reconciler) SetSchedule(link models.LinkID, s models.RestartSchedule) bool {
	rt, ok := r.links[link]
	if !ok {
		return false
	}
	changed := !rt.HasSchedule || rt.Schedule != s
	rt.Schedule = s
	rt.HasSchedule = true
	return changed
}
