package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ademuri/taste-engine/internal/catalog"
	"github.com/ademuri/taste-engine/internal/domain"
	"github.com/ademuri/taste-engine/internal/forecast"
)

const searchLimit = 10

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Data handles GET /api/data: the listener's full dashboard.
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if !s.HasCredential() {
		writeError(w, http.StatusUnauthorized, codeNotAuthenticated, "")
		return
	}

	d, err := h.deps.Dashboard.Load(r.Context(), s)
	handBackToken(w, s)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Search handles GET /api/search?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "no query", "")
		return
	}
	s := h.session(r)
	if !s.HasCredential() {
		writeError(w, http.StatusUnauthorized, codeNotAuthenticated, "")
		return
	}

	var result catalog.SearchResult
	err := s.Run(r.Context(), func(ctx context.Context, token string) error {
		var err error
		result, err = s.Client().Search(ctx, token, q, []string{"track", "artist"}, searchLimit)
		return err
	})
	handBackToken(w, s)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Country handles GET /api/world/country?code=&name=. It always answers 200;
// degraded matches carry a reason.
func (h *Handler) Country(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	s := h.session(r)

	var match domain.CountryMatch
	if h.deps.Matcher == nil {
		match = domain.CountryMatch{Name: name, TopSongs: []domain.ChartEntry{}, Reason: domain.ReasonChartFetchFailed}
	} else {
		match = h.deps.Matcher.Match(r.Context(), code, name, s)
	}
	handBackToken(w, s)
	writeJSON(w, http.StatusOK, match)
}

type concertsResponse struct {
	Events   []domain.ConcertEvent `json:"events"`
	Total    int                   `json:"total"`
	TotalAll int                   `json:"totalAll"`
	Error    string                `json:"error,omitempty"`
}

// Concerts handles GET /api/concerts?artists=a,b&location=. The location
// narrows events; totalAll counts the unfiltered set.
func (h *Handler) Concerts(w http.ResponseWriter, r *http.Request) {
	var artists []string
	for _, a := range strings.Split(r.URL.Query().Get("artists"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			artists = append(artists, a)
		}
	}
	location := strings.TrimSpace(r.URL.Query().Get("location"))

	if len(artists) == 0 {
		writeJSON(w, http.StatusOK, concertsResponse{Events: []domain.ConcertEvent{}})
		return
	}
	if h.deps.Concerts == nil {
		writeJSON(w, http.StatusOK, concertsResponse{Events: []domain.ConcertEvent{}, Error: "Missing API key"})
		return
	}

	res := h.deps.Concerts.FetchEvents(r.Context(), artists, location)
	writeJSON(w, http.StatusOK, concertsResponse{
		Events:   res.Events,
		Total:    res.Total,
		TotalAll: res.TotalAll,
	})
}

// Future handles POST /api/future with a forecast.Payload body.
func (h *Handler) Future(w http.ResponseWriter, r *http.Request) {
	if !h.deps.Forecast.Enabled() {
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": false})
		return
	}

	var payload forecast.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidPayload, "")
		return
	}

	f, err := h.deps.Forecast.Predict(r.Context(), payload)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handBackToken tells the caller about an access token the session had to
// refresh, so it can be reused on the next request.
func handBackToken(w http.ResponseWriter, s *catalog.Session) {
	if token, ok := s.Refreshed(); ok && token != "" {
		w.Header().Set(AccessTokenHeader, token)
	}
}
