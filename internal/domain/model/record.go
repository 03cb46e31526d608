package model

import (
	"fmt"
	"strings"
)

// EventType distinguishes the two scored event formats of a season.
type EventType string

const (
	EventRegular EventType = "regular"
	EventSprint  EventType = "sprint"
)

// ParseEventType maps loader labels onto an EventType.
func ParseEventType(s string) (EventType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regular", "race", "grand_prix", "gp", "":
		return EventRegular, nil
	case "sprint":
		return EventSprint, nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}

// ResultRecord is one competitor's outcome in one event.
// Competitor and Team are normalized identifiers.
type ResultRecord struct {
	Competitor string
	Team       string
	Position   Opt[int] // None when not classified or unparseable
	Season     int
	Event      EventType
}

// ScoredRecord is a ResultRecord with its performance score attached.
// It is the row shape of the derived scored-records table.
type ScoredRecord struct {
	ResultRecord
	Score float64
}

// QualifyingTime is one competitor's qualifying entry for a single session.
type QualifyingTime struct {
	Competitor string
	Event      EventType
	Round      string        // free-form label, e.g. the track name
	Segments   []Opt[float64] // segment lap times in seconds, in session order
}

// Best returns the fastest defined segment time.
func (q QualifyingTime) Best() Opt[float64] {
	best := None[float64]()
	for _, seg := range q.Segments {
		v, ok := seg.Get()
		if !ok {
			continue
		}
		if b, has := best.Get(); !has || v < b {
			best = Some(v)
		}
	}
	return best
}
