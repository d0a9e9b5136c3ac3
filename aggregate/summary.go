// Package aggregate derives per-member presence summaries from the loaded
// datasets over a trailing day window.
package aggregate

import (
	"time"

	"factionwatch/dataset"
)

// Entry is one member's derived presence record for the current window. It
// exists only while at least one in-window snapshot contains the member.
type Entry struct {
	Name              string
	Level             int
	DaysInFaction     int
	LastSeenTimestamp int64
	LastSeenRelative  string
	DaysActive        int
	TotalPolls        int
}

// Observation pairs a snapshot instant with the member's record in it.
// Slices of observations keep snapshot order, oldest first.
type Observation struct {
	SnapshotTime time.Time
	Record       dataset.ActivityRecord
}

// Stats carries the dashboard panel numbers. ActiveLast24h is measured
// against wall-clock time at computation, so it can differ between renders
// of identical data. DataLoggedDays spans the full unfiltered snapshot
// sequence regardless of the selected window.
type Stats struct {
	TotalMembers   int
	ActiveLast24h  int
	DataLoggedDays int
	LatestSnapshot time.Time
	HasSnapshots   bool
}

// Summarizer computes summaries over one loaded bundle. All computation is
// synchronous and read-only over the bundle; a reload swaps in a new
// Summarizer rather than mutating this one.
type Summarizer struct {
	bundle *dataset.Bundle
	now    func() time.Time
}

func NewSummarizer(bundle *dataset.Bundle) *Summarizer {
	return newSummarizer(bundle, time.Now)
}

func newSummarizer(bundle *dataset.Bundle, now func() time.Time) *Summarizer {
	return &Summarizer{bundle: bundle, now: now}
}

// Summarize builds the per-member presence summary for a trailing window of
// the given day count. The cutoff uses calendar-day subtraction, not strict
// 24h multiples. Members with no in-window snapshots are omitted entirely.
func (s *Summarizer) Summarize(days int) map[string]Entry {
	out := make(map[string]Entry)
	if s == nil || s.bundle == nil {
		return out
	}
	cutoff := s.now().AddDate(0, 0, -days)
	for id, member := range s.bundle.Roster {
		window := s.windowFor(id, cutoff)
		if len(window) == 0 {
			continue
		}
		// Snapshots are stored oldest-first, so the last element is the
		// most recent in-window poll.
		mostRecent := window[len(window)-1].Record
		entry := Entry{
			Name:              member.Name,
			Level:             member.Level,
			DaysInFaction:     member.DaysInFaction,
			LastSeenTimestamp: mostRecent.LastActionTimestamp,
			LastSeenRelative:  mostRecent.LastActionRelative,
			TotalPolls:        len(window),
		}
		activeDates := make(map[string]struct{})
		for _, obs := range window {
			if obs.Record.LastActionTimestamp == 0 {
				continue
			}
			day := time.Unix(obs.Record.LastActionTimestamp, 0).Format("2006-01-02")
			activeDates[day] = struct{}{}
		}
		entry.DaysActive = len(activeDates)
		out[id] = entry
	}
	return out
}

// MemberWindow re-derives the in-window activity list for one member id,
// oldest first. The timeline view consumes this directly instead of reusing
// the summary.
func (s *Summarizer) MemberWindow(id string, days int) []Observation {
	if s == nil || s.bundle == nil {
		return nil
	}
	return s.windowFor(id, s.now().AddDate(0, 0, -days))
}

func (s *Summarizer) windowFor(id string, cutoff time.Time) []Observation {
	var window []Observation
	for _, snap := range s.bundle.Activity.Snapshots {
		when, ok := snap.Time()
		if !ok || when.Before(cutoff) {
			continue
		}
		record, present := snap.Members[id]
		if !present {
			continue
		}
		window = append(window, Observation{SnapshotTime: when, Record: record})
	}
	return window
}

// Overview computes the stats panel numbers for a summary produced by the
// same Summarizer.
func (s *Summarizer) Overview(summary map[string]Entry) Stats {
	var st Stats
	if s == nil || s.bundle == nil {
		return st
	}
	st.TotalMembers = len(summary)
	now := s.now()
	for _, entry := range summary {
		if entry.LastSeenTimestamp == 0 {
			continue
		}
		if now.Sub(time.Unix(entry.LastSeenTimestamp, 0)) < 24*time.Hour {
			st.ActiveLast24h++
		}
	}
	snapshots := s.bundle.Activity.Snapshots
	st.HasSnapshots = len(snapshots) > 0
	var first, last time.Time
	haveFirst := false
	for _, snap := range snapshots {
		when, ok := snap.Time()
		if !ok {
			continue
		}
		if !haveFirst {
			first = when
			haveFirst = true
		}
		last = when
	}
	if haveFirst {
		st.LatestSnapshot = last
		st.DataLoggedDays = int(last.Sub(first).Hours()/24) + 1
	}
	return st
}
