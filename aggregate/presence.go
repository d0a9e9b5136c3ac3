package aggregate

import "time"

// Presence classifies a summary entry by recency of its last-seen
// timestamp. The three states partition elapsed time with boundaries at
// exactly 60 and 1440 minutes.
type Presence int

const (
	Online Presence = iota
	Today
	Offline
)

func (p Presence) String() string {
	switch p {
	case Online:
		return "Online"
	case Today:
		return "Today"
	default:
		return "Offline"
	}
}

// Classify maps a last-seen epoch timestamp to a presence state relative to
// now. A zero timestamp (never observed acting) classifies as Offline.
func Classify(lastSeen int64, now time.Time) Presence {
	elapsed := now.Sub(time.Unix(lastSeen, 0))
	switch {
	case elapsed < time.Hour:
		return Online
	case elapsed < 24*time.Hour:
		return Today
	default:
		return Offline
	}
}
