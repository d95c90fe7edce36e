// Package web provides the HTTP handlers of the API server: the search
// endpoints plus the static files of the web application.
package web

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cncf/clotributor/go/httputils"
	"github.com/cncf/clotributor/go/search"
	"github.com/cncf/clotributor/go/sklog"
)

const (
	// staticCacheMaxAge is the cache duration of the fingerprinted assets
	// under /static.
	staticCacheMaxAge = 365 * 24 * 60 * 60

	// apiCacheMaxAge is the cache duration of the API responses and the
	// index document.
	apiCacheMaxAge = 300

	// paginationTotalCountHeader carries the number of items available, for
	// pagination purposes.
	paginationTotalCountHeader = "pagination-total-count"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "clotributor_apiserver_request_duration_seconds",
	Help: "Time spent serving HTTP requests.",
}, []string{"path", "code"})

// Handlers holds the state shared by the HTTP handlers.
type Handlers struct {
	search     search.API
	staticPath string
}

// New returns the Handlers serving the given search API and static files
// directory.
func New(searchAPI search.API, staticPath string) *Handlers {
	return &Handlers{
		search:     searchAPI,
		staticPath: staticPath,
	}
}

// Router returns the router with all the endpoints set up.
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(instrument)
	r.Get("/api/issues/search", h.searchIssues)
	r.Get("/api/filters/issues", h.issuesFilters)
	r.Get("/healthz", httputils.HealthCheckHandler)
	r.Get("/static/*", h.serveStaticFile)
	r.Get("/", h.serveIndex)
	r.NotFound(h.serveIndex)
	return r
}

// searchIssues handles GET /api/issues/search.
func (h *Handlers) searchIssues(w http.ResponseWriter, r *http.Request) {
	input, err := search.ParseSearchIssuesInput(r.URL.Query())
	if err != nil {
		httputils.ReportError(w, err, "invalid search parameters", http.StatusBadRequest)
		return
	}
	count, issues, err := h.search.SearchIssues(r.Context(), input)
	if err != nil {
		httputils.ReportError(w, err, "error searching issues", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", apiCacheMaxAge))
	w.Header().Set(paginationTotalCountHeader, strconv.FormatInt(count, 10))
	if _, err := w.Write([]byte(issues)); err != nil {
		sklog.Errorf("Failed to write search response: %s", err)
	}
}

// issuesFilters handles GET /api/filters/issues.
func (h *Handlers) issuesFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := h.search.GetIssuesFilters(r.Context())
	if err != nil {
		httputils.ReportError(w, err, "error getting issues filters", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", apiCacheMaxAge))
	if _, err := w.Write([]byte(filters)); err != nil {
		sklog.Errorf("Failed to write filters response: %s", err)
	}
}

// serveStaticFile serves the fingerprinted assets of the web application.
func (h *Handlers) serveStaticFile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", staticCacheMaxAge))
	http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
}

// serveIndex serves the index document. It is also the fallback for any
// route not matched elsewhere, since routing happens in the web application.
func (h *Handlers) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", apiCacheMaxAge))
	http.ServeFile(w, r, filepath.Join(h.staticPath, "index.html"))
}

// instrument records the duration of every request.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		requestDuration.WithLabelValues(r.URL.Path, strconv.Itoa(sw.code)).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

// WriteHeader implements http.ResponseWriter.
func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
