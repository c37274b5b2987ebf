package core

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		want Kind
	}{
		{"Cold Plunge", KindColdPlunge},
		{"Meditation", KindMeditation},
		{"Yoga", KindOther},
		{"cold plunge", KindOther}, // matching is exact
		{"", KindOther},
	}
	for _, tc := range cases {
		if got := KindOf(tc.name); got != tc.want {
			t.Errorf("KindOf(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestActivityValidate(t *testing.T) {
	good := Activity{Name: NameColdPlunge, Date: date(2024, 3, 4), Duration: 10}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		a    Activity
		want error
	}{
		{"empty name", Activity{Date: date(2024, 3, 4), Duration: 5}, ErrEmptyName},
		{"zero duration", Activity{Name: NameMeditation, Date: date(2024, 3, 4)}, ErrInvalidDuration},
		{"zero date", Activity{Name: NameMeditation, Duration: 5}, ErrZeroDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.a.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	activities := []Activity{
		{ID: "a", Date: date(2024, 3, 4)},
		{ID: "b", Date: date(2024, 3, 6)},
		{ID: "c", Date: date(2024, 3, 5)},
	}
	SortNewestFirst(activities)
	got := activities[0].ID + activities[1].ID + activities[2].ID
	if got != "bca" {
		t.Fatalf("unexpected order: %s", got)
	}
}
