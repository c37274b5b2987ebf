package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"habits/internal/core"
	"habits/internal/store"
)

type activityView struct {
	ID       string
	Name     string
	Date     string
	Duration int
}

// activityViews prepares the newest-first list rendering model. Activities
// whose date failed to round-trip render a fallback label instead of
// breaking the page.
func activityViews(activities []core.Activity) []activityView {
	core.SortNewestFirst(activities)
	out := make([]activityView, 0, len(activities))
	for _, a := range activities {
		date := "Invalid date"
		if !a.Date.IsZero() {
			date = a.Date.Format("Jan 2, 2006")
		}
		out = append(out, activityView{
			ID:       a.ID,
			Name:     a.Name,
			Date:     date,
			Duration: a.Duration,
		})
	}
	return out
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	activities, err := s.collection.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Activity list error", "error", err)
	}

	data := struct {
		Today      string
		Names      []string
		Activities []activityView
	}{
		Today:      s.now().Format(activityDateLayout),
		Names:      []string{core.NameColdPlunge, core.NameMeditation},
		Activities: activityViews(activities),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	activity, err := parseActivityForm(r.Form)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	created, err := s.collection.Create(r.Context(), activity)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(err.Error()) + `</div>`))
			return
		}
		slog.ErrorContext(r.Context(), "Activity create error", "error", err, "name", activity.Name)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Could not save activity</div>`))
		return
	}

	s.invalidateStats()
	w.Header().Set("HX-Trigger", `{"activity:created": {"id": "`+template.JSEscapeString(created.ID)+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Logged ` +
		template.HTMLEscapeString(created.Name) + ` on ` +
		template.HTMLEscapeString(created.Date.Format(activityDateLayout)) + `</div>`))
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		w.Header().Set("Allow", "POST, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	id := sanitizeInput(r.Form.Get("id"))
	if id == "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Activity id is required</div>`))
		return
	}

	if err := s.collection.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<div class="error">Activity not found</div>`))
			return
		}
		slog.ErrorContext(r.Context(), "Activity delete error", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Could not delete activity</div>`))
		return
	}

	s.invalidateStats()
	w.Header().Set("HX-Trigger", `{"activity:deleted": {"id": "`+template.JSEscapeString(id)+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Activity deleted</div>`))
}

// handleActivityList renders the activity list partial.
func (s *Server) handleActivityList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	activities, err := s.collection.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Activity list error", "error", err)
		_, _ = w.Write([]byte(`<section id="activity-list" class="activity-list"><div class="placeholder">Could not load activities</div></section>`))
		return
	}

	data := struct {
		Activities []activityView
	}{Activities: activityViews(activities)}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="activity-list" class="activity-list"><div class="placeholder">Templates not loaded</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "activity_list.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "activity_list.html")
		_, _ = w.Write([]byte(`<section id="activity-list" class="activity-list"><div class="placeholder">Could not render activities</div></section>`))
	}
}
