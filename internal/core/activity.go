package core

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// The two tracked activity kinds. Records with any other name are kept by
// the stores and counted in combined session totals, but fall into the
// Other bucket for per-kind statistics.
const (
	NameColdPlunge = "Cold Plunge"
	NameMeditation = "Meditation"
)

type (
	// Kind is the closed classification of an activity name.
	Kind string

	// Activity is a single logged session of a tracked kind.
	// ID is assigned by the backing store at creation and opaque afterwards.
	// Date carries calendar-day granularity; time-of-day is ignored by all
	// statistics. Duration is whole minutes.
	Activity struct {
		ID       string
		Name     string
		Date     time.Time
		Duration int
	}
)

const (
	KindColdPlunge Kind = "cold_plunge"
	KindMeditation Kind = "meditation"
	KindOther      Kind = "other"
)

var (
	ErrEmptyName       = errors.New("empty activity name")
	ErrInvalidDuration = errors.New("duration must be at least one minute")
	ErrZeroDate        = errors.New("date cannot be zero")
)

// KindOf classifies an activity name. Matching is exact; unknown names map
// to KindOther.
func KindOf(name string) Kind {
	switch name {
	case NameColdPlunge:
		return KindColdPlunge
	case NameMeditation:
		return KindMeditation
	default:
		return KindOther
	}
}

// TrackedName reports whether name is one of the two kinds offered at entry.
func TrackedName(name string) bool {
	return KindOf(name) != KindOther
}

func (a Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.Duration < 1 {
		return ErrInvalidDuration
	}
	if a.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Day returns the activity's calendar day with time-of-day stripped,
// preserving the date's location.
func (a Activity) Day() time.Time {
	return dayOf(a.Date)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SortNewestFirst orders activities for list views: newest date first.
// Stores guarantee no ordering, so callers sort explicitly.
func SortNewestFirst(activities []Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Date.After(activities[j].Date)
	})
}
