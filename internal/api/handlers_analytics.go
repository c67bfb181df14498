package api

import (
	"net/http"
	"time"

	"github.com/ramitgoyal/zensync/internal/analytics"
	"github.com/ramitgoyal/zensync/internal/store"
)

// AnalyticsHandler serves derived views over the session history. Every
// request recomputes from the full record list; at this data scale caching
// buys nothing.
type AnalyticsHandler struct {
	sessions *store.SessionStore
	now      func() time.Time
}

func NewAnalyticsHandler(sessions *store.SessionStore) *AnalyticsHandler {
	return &AnalyticsHandler{sessions: sessions, now: time.Now}
}

// Stats handles GET /analytics/stats
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	records, err := h.sessions.ListRecords("", "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analytics.Aggregate(records))
}

// Weekly handles GET /analytics/weekly
func (h *AnalyticsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	records, err := h.sessions.ListRecords("", "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days": analytics.WeeklySeries(records, h.now()),
	})
}

// Monthly handles GET /analytics/monthly
func (h *AnalyticsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	records, err := h.sessions.ListRecords("", "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days": analytics.MonthlyGrid(records, h.now()),
	})
}

// Streak handles GET /analytics/streak. The two values are different
// operations: current is the run ending today, longest is the best
// historical run.
func (h *AnalyticsHandler) Streak(w http.ResponseWriter, r *http.Request) {
	records, err := h.sessions.ListRecords("", "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"currentStreak": analytics.CurrentStreak(records, h.now()),
		"longestStreak": analytics.LongestStreak(records),
	})
}

// Today handles GET /analytics/today: the dashboard card data.
func (h *AnalyticsHandler) Today(w http.ResponseWriter, r *http.Request) {
	daily, err := h.sessions.DailyTime()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	records, err := h.sessions.ListRecords("", "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	breakdown := analytics.SubjectBreakdown(records)
	if breakdown == nil {
		breakdown = []analytics.SubjectTotal{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"todaySeconds":     analytics.TodayTime(daily, h.now()),
		"totalSessions":    len(records),
		"currentStreak":    analytics.CurrentStreak(records, h.now()),
		"subjectBreakdown": breakdown,
	})
}
