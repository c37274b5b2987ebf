package http

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"habits/internal/cache"
	"habits/internal/core"
)

type dailyStatsResponse struct {
	Timeframe string        `json:"timeframe"`
	Summary   summaryJSON   `json:"summary"`
	Days      []dailyBucket `json:"days"`
}

type summaryJSON struct {
	ColdPlungeMinutes  int `json:"cold_plunge_minutes"`
	MeditationMinutes  int `json:"meditation_minutes"`
	CombinedMinutes    int `json:"combined_minutes"`
	ColdPlungeSessions int `json:"cold_plunge_sessions"`
	MeditationSessions int `json:"meditation_sessions"`
	TotalSessions      int `json:"total_sessions"`
}

type dailyBucket struct {
	Date              string `json:"date"`
	ColdPlungeMinutes int    `json:"cold_plunge_minutes"`
	MeditationMinutes int    `json:"meditation_minutes"`
	TotalMinutes      int    `json:"total_minutes"`
}

func (s *Server) statsCacheKey(tf core.Timeframe, now time.Time) string {
	// The anchor day is part of the key so cached series roll over at midnight.
	return "daily:" + tf.String() + ":" + now.Format(activityDateLayout)
}

// invalidateStats drops cached series for every timeframe after a mutation.
func (s *Server) invalidateStats() {
	now := s.now()
	for _, tf := range []core.Timeframe{core.TimeframeWeek, core.TimeframeMonth, core.TimeframeAll} {
		s.statsCache.Delete(s.statsCacheKey(tf, now))
	}
}

func (s *Server) computeDailyStats(r *http.Request, tf core.Timeframe) (dailyStatsResponse, error) {
	now := s.now()
	return cache.GetOrCompute[dailyStatsResponse](s.statsCache, s.statsCacheKey(tf, now), func() (dailyStatsResponse, error) {
		activities, err := s.collection.Snapshot(r.Context())
		if err != nil {
			return dailyStatsResponse{}, err
		}

		filtered := core.FilterByTimeframe(activities, tf, now)
		summary := core.ComputeSummary(filtered)
		series := core.DailySeries(activities, tf, now)

		resp := dailyStatsResponse{
			Timeframe: tf.String(),
			Summary: summaryJSON{
				ColdPlungeMinutes:  summary.ColdPlungeMinutes,
				MeditationMinutes:  summary.MeditationMinutes,
				CombinedMinutes:    summary.CombinedMinutes,
				ColdPlungeSessions: summary.ColdPlungeSessions,
				MeditationSessions: summary.MeditationSessions,
				TotalSessions:      summary.TotalSessions,
			},
			Days: make([]dailyBucket, 0, len(series)),
		}
		for _, b := range series {
			resp.Days = append(resp.Days, dailyBucket{
				Date:              b.Day.Format(activityDateLayout),
				ColdPlungeMinutes: b.ColdPlungeMinutes,
				MeditationMinutes: b.MeditationMinutes,
				TotalMinutes:      b.TotalMinutes,
			})
		}
		return resp, nil
	})
}

// handleDailyStats serves the bucketed series consumed by the charts.
func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tf, err := core.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	resp, err := s.computeDailyStats(r, tf)
	if err != nil {
		slog.ErrorContext(r.Context(), "Daily stats error", "error", err, "timeframe", tf)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "could not compute statistics"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(r.Context(), "Encode daily stats error", "error", err)
	}
}

// handleStatisticsPage renders the statistics page with summary cards; the
// chart data is fetched by the page from /api/statistics/daily.
func (s *Server) handleStatisticsPage(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	tf, err := core.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	resp, err := s.computeDailyStats(r, tf)
	if err != nil {
		slog.ErrorContext(r.Context(), "Statistics page error", "error", err, "timeframe", tf)
		http.Error(w, "could not compute statistics", http.StatusInternalServerError)
		return
	}

	data := struct {
		Timeframe  string
		Timeframes []string
		Summary    summaryJSON
	}{
		Timeframe:  tf.String(),
		Timeframes: []string{core.TimeframeWeek.String(), core.TimeframeMonth.String(), core.TimeframeAll.String()},
		Summary:    resp.Summary,
	}

	if err := s.templates.ExecuteTemplate(w, "statistics.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Statistics template execution failed", "error", err, "template", "statistics.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
