package web

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"futoconnect/internal/adapters/http/middleware"
	"futoconnect/internal/adapters/http/perf"
	"futoconnect/internal/adapters/storage/announcement"
	domainAnnouncement "futoconnect/internal/domain/announcement"
)

// Deps holds everything the HTTP surface needs. Nothing is global, so tests
// can build independent routers over independent stores.
type Deps struct {
	Announcements announcement.Store
	Perf          *perf.Collector // nil disables timing and /api/debug/perf
	GenerateID    func() string   // nil uses UUIDv4
	OnUrgent      func(domainAnnouncement.Announcement)
	Ping          func(ctx context.Context) error // nil means always healthy

	StaticDir      string // built client bundle; empty disables static serving
	CSRFKey        []byte // 32 bytes
	SecureCookies  bool
	TrustedOrigins []string
	RateLimit      int // requests per second per client IP; <= 0 disables
	SlowRequestMs  int
}

type server struct {
	deps Deps
}

// NewRouter wires HTTP handlers for the app.
// Background work started here (the rate limiter sweeper) stops when ctx is done.
func NewRouter(ctx context.Context, deps Deps) http.Handler {
	if deps.GenerateID == nil {
		deps.GenerateID = generateID
	}
	s := &server{deps: deps}

	r := mux.NewRouter()
	if deps.Perf != nil {
		r.Use(middleware.Timing(deps.Perf, deps.SlowRequestMs))
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)

	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	api.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	api.HandleFunc("/announcements", s.handleListAnnouncements).Methods(http.MethodGet)
	api.HandleFunc("/announcements", s.handleCreateAnnouncement).Methods(http.MethodPost)
	api.HandleFunc("/announcements/{id}", s.handleGetAnnouncement).Methods(http.MethodGet)
	api.HandleFunc("/announcements/{id}", s.handleUpdateAnnouncement).Methods(http.MethodPatch)
	api.HandleFunc("/announcements/{id}", s.handleDeleteAnnouncement).Methods(http.MethodDelete)
	api.HandleFunc("/announcements/{id}/read", s.handleMarkRead).Methods(http.MethodPatch)
	api.HandleFunc("/announcements/{id}/toggle-save", s.handleToggleSaved).Methods(http.MethodPatch)
	api.HandleFunc("/feed", s.handleFeed).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	if deps.Perf != nil {
		api.HandleFunc("/debug/perf", s.handlePerf).Methods(http.MethodGet)
	}

	if deps.StaticDir != "" {
		r.PathPrefix("/").Handler(spaHandler{dir: deps.StaticDir}).Methods(http.MethodGet, http.MethodHead)
	}

	var h http.Handler = r
	mws := []func(http.Handler) http.Handler{
		middleware.SecurityHeaders,
		middleware.CSRF(deps.CSRFKey, middleware.CSRFOptions{
			Secure:         deps.SecureCookies,
			TrustedOrigins: deps.TrustedOrigins,
		}),
	}
	if deps.RateLimit > 0 {
		// Rate limiter: configurable requests per second per IP (OWASP A04)
		mws = append(mws, middleware.RateLimit(middleware.NewRateLimiter(ctx, deps.RateLimit, time.Second)))
	}
	// Apply middleware: RateLimit -> CSRF -> SecurityHeaders -> Router (Timing)
	return middleware.Chain(h, mws...)
}

// spaHandler serves files from dir, falling back to index.html for client-side routes.
type spaHandler struct {
	dir string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := filepath.Join(h.dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
	if !strings.HasPrefix(p, filepath.Clean(h.dir)) {
		http.NotFound(w, r)
		return
	}
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		http.ServeFile(w, r, p)
		return
	}
	index := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}
