// Package dataset defines the two collector-produced inputs (activity
// snapshots and member roster) and the one-shot loader that retrieves them
// at startup.
package dataset

import (
	"strings"
	"time"
)

// ActivityRecord is one member's state inside a snapshot. Fields the
// collector could not populate arrive as zero values and render as blanks
// downstream.
type ActivityRecord struct {
	LastActionTimestamp int64  `json:"last_action_timestamp"`
	LastActionRelative  string `json:"last_action_relative"`
	Status              string `json:"status"`
}

// Snapshot is one poll's recorded state across all members at an instant.
type Snapshot struct {
	Timestamp string                    `json:"timestamp"`
	Members   map[string]ActivityRecord `json:"members"`
}

// The collector writes naive local ISO-8601 instants; RFC3339 is accepted
// for producers that include an offset.
var snapshotLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Time parses the snapshot timestamp. Snapshots with unparseable timestamps
// are excluded from windowed aggregation rather than failing the load.
func (s Snapshot) Time() (time.Time, bool) {
	raw := strings.TrimSpace(s.Timestamp)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range snapshotLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ActivityLog is the append-only snapshot sequence, oldest first.
type ActivityLog struct {
	Snapshots []Snapshot `json:"snapshots"`
}

// Member is roster metadata for one member id. The collector rewrites the
// roster on every poll; the dashboard treats it as read-only.
type Member struct {
	Name          string `json:"name"`
	Level         int    `json:"level"`
	DaysInFaction int    `json:"days_in_faction"`
}

// Roster maps member id to metadata.
type Roster map[string]Member

// Bundle holds both loaded datasets for the session. It is owned by the
// top-level controller and only ever replaced wholesale, never mutated.
type Bundle struct {
	Activity ActivityLog
	Roster   Roster
	LoadedAt time.Time
}
