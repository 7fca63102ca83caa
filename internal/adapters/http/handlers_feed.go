package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"futoconnect/internal/application/listutil"
	"futoconnect/internal/application/projections"
)

// feedResponse is one page of the announcement feed.
type feedResponse struct {
	Items []announcementResponse `json:"items"`
	listutil.PageInfo
}

// handleFeed handles GET /api/feed?view=&category=&tag=&q=&page=&per_page=.
// PRE: view is empty or all, saved, unread, urgent
// POST: 200 with one page of matching announcements; 400 for an unknown view
func (s *server) handleFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := projections.QueryGetAnnouncementFeed(r.Context(), projections.GetAnnouncementFeedQuery{
		View:   q.Get("view"),
		Params: listutil.ParseListParams(q, projections.FeedFilterKeys),
	}, projections.GetAnnouncementFeedDeps{AnnouncementStore: s.deps.Announcements})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedResponse{
		Items:    toResponses(result.Items),
		PageInfo: result.Page,
	})
}

// handleStats handles GET /api/stats.
func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := projections.QueryGetAnnouncementStats(r.Context(), projections.GetAnnouncementStatsDeps{
		AnnouncementStore: s.deps.Announcements,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// defaultPerfWindow is how far back /api/debug/perf looks without ?minutes=.
const defaultPerfWindow = 15 * time.Minute

// handlePerf handles GET /api/debug/perf?minutes=&top=.
func (s *server) handlePerf(w http.ResponseWriter, r *http.Request) {
	window := defaultPerfWindow
	if m, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && m > 0 {
		window = time.Duration(m) * time.Minute
	}
	top := 10
	if n, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && n > 0 {
		top = min(n, 100)
	}
	writeJSON(w, http.StatusOK, s.deps.Perf.Snapshot(time.Now().Add(-window), top))
}

// handleHealth handles GET /healthz.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		if err := s.deps.Ping(r.Context()); err != nil {
			slog.Error("health_check_failed", "error", err.Error())
			writeError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
