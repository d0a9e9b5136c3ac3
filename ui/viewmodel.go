// Package ui projects aggregation results into a renderable view model and
// binds it to two presentation adapters: the interactive tview dashboard
// and a plain one-shot console rendering.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"factionwatch/aggregate"
)

const (
	updatedLayout = "Mon Jan 2 2006 15:04"
	seenLayout    = "Jan 2 15:04"
)

// Placeholder texts for the three distinct no-table states.
const (
	placeholderNoData    = "No activity data yet. Waiting for the first snapshot."
	placeholderNoMembers = "No members found in this window."
	placeholderLoadError = "Error loading activity data. Restart to retry."
)

// Stat is one stat card of the dashboard header.
type Stat struct {
	Title string
	Value string
}

// Row is one member line of the table view.
type Row struct {
	ID            string
	Name          string
	Level         int
	DaysInFaction int
	LastSeenUnix  int64
	LastSeen      string
	LastSeenAgo   string
	Presence      aggregate.Presence
	DaysActive    int
	TotalPolls    int
	Visible       bool
}

// View is the renderable projection of one aggregation pass. Both adapters
// consume it unchanged; renders are full replacements, never patches.
type View struct {
	Updated     string
	Stats       []Stat
	Rows        []Row
	Placeholder string
	WindowDays  int
	Query       string
}

// BuildView projects a summary and its stats into the view. Rows sort
// descending by last-seen timestamp with a stable sort; the query only
// toggles row visibility and never reaches the stats.
func BuildView(summary map[string]aggregate.Entry, stats aggregate.Stats, query string, days int, now time.Time) View {
	view := View{WindowDays: days}
	if !stats.HasSnapshots {
		view.Stats = placeholderStats()
		view.Placeholder = placeholderNoData
		return view.Filter(query)
	}
	if !stats.LatestSnapshot.IsZero() {
		view.Updated = stats.LatestSnapshot.Format(updatedLayout)
	}
	view.Stats = statCards(stats)
	view.Rows = make([]Row, 0, len(summary))
	for id, entry := range summary {
		row := Row{
			ID:            id,
			Name:          entry.Name,
			Level:         entry.Level,
			DaysInFaction: entry.DaysInFaction,
			LastSeenUnix:  entry.LastSeenTimestamp,
			LastSeenAgo:   entry.LastSeenRelative,
			Presence:      aggregate.Classify(entry.LastSeenTimestamp, now),
			DaysActive:    entry.DaysActive,
			TotalPolls:    entry.TotalPolls,
			Visible:       true,
		}
		if entry.LastSeenTimestamp > 0 {
			seen := time.Unix(entry.LastSeenTimestamp, 0)
			row.LastSeen = seen.Format(seenLayout)
			if row.LastSeenAgo == "" {
				row.LastSeenAgo = humanize.RelTime(seen, now, "ago", "from now")
			}
		}
		view.Rows = append(view.Rows, row)
	}
	sort.SliceStable(view.Rows, func(i, j int) bool {
		return view.Rows[i].LastSeenUnix > view.Rows[j].LastSeenUnix
	})
	if len(view.Rows) == 0 {
		view.Placeholder = placeholderNoMembers
	}
	return view.Filter(query)
}

// ErrorView is the single user-visible failure state for a load cycle: one
// message in the table area, dashes everywhere else.
func ErrorView(days int) View {
	return View{
		WindowDays:  days,
		Stats:       placeholderStats(),
		Placeholder: placeholderLoadError,
	}
}

// Filter returns a copy of the view with row visibility recomputed for the
// query: a case-insensitive substring test against the name cell only. Row
// order, stats, and the underlying data are untouched.
func (v View) Filter(query string) View {
	q := strings.ToLower(strings.TrimSpace(query))
	v.Query = q
	rows := make([]Row, len(v.Rows))
	copy(rows, v.Rows)
	for i := range rows {
		rows[i].Visible = q == "" || strings.Contains(strings.ToLower(rows[i].Name), q)
	}
	v.Rows = rows
	return v
}

// VisibleRows counts rows the filter left visible.
func (v View) VisibleRows() int {
	n := 0
	for _, row := range v.Rows {
		if row.Visible {
			n++
		}
	}
	return n
}

func statCards(st aggregate.Stats) []Stat {
	lastSnapshot := "-"
	if !st.LatestSnapshot.IsZero() {
		lastSnapshot = st.LatestSnapshot.Format("15:04:05")
	}
	return []Stat{
		{Title: "Members Tracked", Value: humanize.Comma(int64(st.TotalMembers))},
		{Title: "Active Last 24h", Value: humanize.Comma(int64(st.ActiveLast24h))},
		{Title: "Data Logged", Value: fmt.Sprintf("%d days", st.DataLoggedDays)},
		{Title: "Last Snapshot", Value: lastSnapshot},
	}
}

func placeholderStats() []Stat {
	return []Stat{
		{Title: "Members Tracked", Value: "-"},
		{Title: "Active Last 24h", Value: "-"},
		{Title: "Data Logged", Value: "-"},
		{Title: "Last Snapshot", Value: "-"},
	}
}

// TimelineEntry is one rendered poll inside the member detail view.
type TimelineEntry struct {
	When     string
	Relative string
	Status   string
}

// Timeline is the member detail view model, most recent poll first.
type Timeline struct {
	Title       string
	Entries     []TimelineEntry
	Placeholder string
}

// BuildTimeline reverses a member's in-window observation list to
// most-recent-first and formats one entry per poll.
func BuildTimeline(name string, window []aggregate.Observation, now time.Time) Timeline {
	if strings.TrimSpace(name) == "" {
		name = "Member"
	}
	tl := Timeline{Title: name}
	if len(window) == 0 {
		tl.Placeholder = "No activity recorded in this window."
		return tl
	}
	for i := len(window) - 1; i >= 0; i-- {
		obs := window[i]
		entry := TimelineEntry{
			When:     obs.SnapshotTime.Format(updatedLayout),
			Relative: obs.Record.LastActionRelative,
			Status:   obs.Record.Status,
		}
		if entry.Relative == "" && obs.Record.LastActionTimestamp > 0 {
			entry.Relative = humanize.RelTime(time.Unix(obs.Record.LastActionTimestamp, 0), now, "ago", "from now")
		}
		tl.Entries = append(tl.Entries, entry)
	}
	return tl
}
