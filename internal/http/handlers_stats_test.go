package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"habits/internal/core"
)

func decodeStats(t *testing.T, body []byte) dailyStatsResponse {
	t.Helper()
	var resp dailyStatsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	return resp
}

func TestDailyStatsWeek(t *testing.T) {
	s, m := newTestServer(t)
	ctx := context.Background()

	// now is pinned to Wednesday 2024-03-06; the week runs Mon 03-04 to Sun 03-10.
	seed := []core.Activity{
		{Name: core.NameColdPlunge, Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Duration: 10},
		{Name: core.NameMeditation, Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Duration: 20},
		{Name: core.NameColdPlunge, Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Duration: 5},
		{Name: core.NameColdPlunge, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Duration: 99},
	}
	for _, a := range seed {
		if _, err := m.Create(ctx, a); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec := get(s, "/api/statistics/daily?timeframe=week")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeStats(t, rec.Body.Bytes())

	if resp.Timeframe != "week" {
		t.Errorf("timeframe = %q", resp.Timeframe)
	}
	if len(resp.Days) != 7 {
		t.Fatalf("week series has %d buckets, want 7", len(resp.Days))
	}
	if resp.Days[0].Date != "2024-03-04" || resp.Days[6].Date != "2024-03-10" {
		t.Fatalf("week bounds = %s .. %s", resp.Days[0].Date, resp.Days[6].Date)
	}
	if d := resp.Days[0]; d.ColdPlungeMinutes != 10 || d.MeditationMinutes != 20 || d.TotalMinutes != 30 {
		t.Errorf("Monday bucket = %+v", d)
	}
	if d := resp.Days[1]; d.ColdPlungeMinutes != 5 || d.TotalMinutes != 5 {
		t.Errorf("Tuesday bucket = %+v", d)
	}

	// The out-of-week session must not leak into the summary.
	if resp.Summary.ColdPlungeMinutes != 15 || resp.Summary.MeditationMinutes != 20 || resp.Summary.CombinedMinutes != 35 {
		t.Errorf("summary = %+v", resp.Summary)
	}
	if resp.Summary.TotalSessions != 3 {
		t.Errorf("total sessions = %d, want 3", resp.Summary.TotalSessions)
	}
}

func TestDailyStatsAllEmpty(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(s, "/api/statistics/daily?timeframe=all")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats = %d", rec.Code)
	}
	resp := decodeStats(t, rec.Body.Bytes())

	if len(resp.Days) != 31 {
		t.Fatalf("empty all series has %d buckets, want 31", len(resp.Days))
	}
	if resp.Days[len(resp.Days)-1].Date != "2024-03-06" {
		t.Errorf("series should end at the anchor day, got %s", resp.Days[len(resp.Days)-1].Date)
	}
	for _, d := range resp.Days {
		if d.TotalMinutes != 0 {
			t.Errorf("bucket %s not empty: %+v", d.Date, d)
		}
	}
}

func TestDailyStatsBadTimeframe(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(s, "/api/statistics/daily?timeframe=year")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("stats = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Fatalf("error body = %q (%v)", rec.Body.String(), err)
	}
}

func TestDailyStatsMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	rec := postForm(s, "/api/statistics/daily", url.Values{})
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST stats = %d, want 405", rec.Code)
	}
}

func TestDailyStatsCacheInvalidatedByCreate(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(s, "/api/statistics/daily?timeframe=week")
	before := decodeStats(t, rec.Body.Bytes())
	if before.Summary.TotalSessions != 0 {
		t.Fatalf("summary before create = %+v", before.Summary)
	}

	rec = postForm(s, "/activities", url.Values{
		"name":     {core.NameColdPlunge},
		"date":     {"2024-03-06"},
		"duration": {"12"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create = %d", rec.Code)
	}

	rec = get(s, "/api/statistics/daily?timeframe=week")
	after := decodeStats(t, rec.Body.Bytes())
	if after.Summary.ColdPlungeMinutes != 12 || after.Summary.TotalSessions != 1 {
		t.Fatalf("summary after create = %+v", after.Summary)
	}
}

func TestStatisticsPage(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(s, "/statistics?timeframe=month")
	if rec.Code != http.StatusOK {
		t.Fatalf("statistics page = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Cold Plunge", "Meditation", "Combined", `data-timeframe="month"`} {
		if !strings.Contains(body, want) {
			t.Errorf("statistics page missing %q", want)
		}
	}
}

func TestStatisticsPageBadTimeframe(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := get(s, "/statistics?timeframe=decade"); rec.Code != http.StatusBadRequest {
		t.Fatalf("statistics page = %d, want 400", rec.Code)
	}
}
