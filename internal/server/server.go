// Package server exposes the engine over HTTP with JSON responses.
package server

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/ademuri/taste-engine/internal/catalog"
	"github.com/ademuri/taste-engine/internal/concerts"
	"github.com/ademuri/taste-engine/internal/dashboard"
	"github.com/ademuri/taste-engine/internal/forecast"
	"github.com/ademuri/taste-engine/internal/similarity"
	"github.com/google/uuid"
)

const (
	// Header names for the listener's catalog credentials. A refreshed access
	// token is handed back in AccessTokenHeader.
	RefreshTokenHeader = "X-Refresh-Token"
	AccessTokenHeader  = "X-Access-Token"
	RequestIDHeader    = "X-Request-ID"
)

// Deps are the collaborators the handlers call. Concerts and Forecast may be
// nil, which disables those endpoints' upstream calls.
type Deps struct {
	Catalog   *catalog.Client
	Refresher catalog.Refresher
	Dashboard *dashboard.Service
	Matcher   *similarity.Matcher
	Concerts  *concerts.Aggregator
	Forecast  *forecast.Client
}

// Handler routes the engine's HTTP API.
type Handler struct {
	deps   Deps
	router *http.ServeMux
}

func NewHandler(deps Deps) *Handler {
	if deps.Dashboard == nil {
		deps.Dashboard = dashboard.NewService()
	}
	h := &Handler{
		deps:   deps,
		router: http.NewServeMux(),
	}
	h.routes()
	return h
}

func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.Health)
	h.router.HandleFunc("GET /api/data", h.Data)
	h.router.HandleFunc("GET /api/search", h.Search)
	h.router.HandleFunc("GET /api/world/country", h.Country)
	h.router.HandleFunc("GET /api/concerts", h.Concerts)
	h.router.HandleFunc("POST /api/future", h.Future)
}

// ServeHTTP tags every request with an ID, reusing the caller's if it sent
// one, and logs failed requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)
	r = r.WithContext(withRequestID(r.Context(), id))

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.router.ServeHTTP(rec, r)
	if rec.status >= 500 {
		log.Printf("WARN server: %s %s -> %d (request %s)", r.Method, r.URL.Path, rec.status, id)
	}
}

// session builds a catalog session from the request's credentials.
func (h *Handler) session(r *http.Request) *catalog.Session {
	access := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		access = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	refresh := strings.TrimSpace(r.Header.Get(RefreshTokenHeader))
	return catalog.NewSession(h.deps.Catalog, h.deps.Refresher, access, refresh)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the ID ServeHTTP assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
