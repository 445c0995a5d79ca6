package similarity

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/ademuri/taste-engine/internal/cache"
	"github.com/ademuri/taste-engine/internal/catalog"
	"github.com/ademuri/taste-engine/internal/domain"
)

const (
	// TopSongCount is how many chart songs a match carries.
	TopSongCount = 5
	// FallbackScore is reported when the chart is known but the listener
	// could not be scored against it.
	FallbackScore = 0.15
	DefaultTTL    = 5 * time.Minute
)

type ChartSource interface {
	TopSongs(ctx context.Context, storefront string) ([]domain.ChartEntry, error)
}

// Listener is the catalog view of one listener that matching needs.
// *catalog.Session implements it.
type Listener interface {
	GenreLookup
	ShortTermTaste(ctx context.Context) (catalog.Taste, error)
	HasCredential() bool
	Token() string
}

type Matcher struct {
	charts ChartSource
	scorer *Scorer
	cache  cache.Cache
	ttl    time.Duration
	// fallback is asked for genres the catalog does not know.
	fallback GenreLookup
}

// NewMatcher returns a Matcher. c caches finished matches per listener and
// country; it may be nil. fallback may be nil.
func NewMatcher(charts ChartSource, scorer *Scorer, c cache.Cache, fallback GenreLookup) *Matcher {
	if scorer == nil {
		scorer = NewScorer()
	}
	return &Matcher{
		charts:   charts,
		scorer:   scorer,
		cache:    c,
		ttl:      DefaultTTL,
		fallback: fallback,
	}
}

// Match scores the country given by ISO code or display name against the
// listener. It never fails: problems are reported through the result's
// Reason, and chart songs already fetched are always kept.
func (m *Matcher) Match(ctx context.Context, code, name string, listener Listener) domain.CountryMatch {
	storefront, ok := Storefront(code, name)
	if !ok {
		return domain.CountryMatch{
			Name:     name,
			TopSongs: []domain.ChartEntry{},
			Reason:   domain.ReasonNoStorefrontMapping,
		}
	}

	result := domain.CountryMatch{
		Name:     name,
		Code:     strings.ToUpper(storefront),
		TopSongs: []domain.ChartEntry{},
	}

	var key string
	if listener != nil && listener.Token() != "" {
		key = "country:" + catalog.CacheKey(listener.Token(), storefront)
		if cached, ok := m.cached(key); ok {
			cached.Name = name
			return cached
		}
	}

	chart, err := m.charts.TopSongs(ctx, storefront)
	if err != nil {
		log.Printf("WARN similarity: chart for %s: %v", storefront, err)
		result.Reason = domain.ReasonChartFetchFailed
		return result
	}
	if len(chart) == 0 {
		result.Reason = domain.ReasonEmptyChart
		return result
	}

	top := head(chart, TopSongCount)
	result.TopSongs = append(result.TopSongs, top...)
	result.HasData = true

	if listener == nil || !listener.HasCredential() {
		result.Score = FallbackScore
		result.Reason = domain.ReasonNoCredential
		return result
	}

	taste, err := listener.ShortTermTaste(ctx)
	if err != nil {
		log.Printf("WARN similarity: listener taste for %s: %v", storefront, err)
		result.Score = FallbackScore
		result.Reason = domain.ReasonScoringFailed
		return result
	}

	var lookup GenreLookup = listener
	if m.fallback != nil {
		lookup = LookupChain{listener, m.fallback}
	}
	score, breakdown, err := m.scorer.Score(ctx, chart, taste.Artists, taste.Tracks, lookup)
	if err != nil {
		log.Printf("WARN similarity: scoring %s: %v", storefront, err)
		result.Score = FallbackScore
		result.Reason = domain.ReasonScoringFailed
		return result
	}

	result.Score = score
	result.Breakdown = &breakdown

	// Refreshing may have replaced the token the key was derived from.
	if key == "" && listener.Token() != "" {
		key = "country:" + catalog.CacheKey(listener.Token(), storefront)
	}
	if key != "" {
		m.store(key, result)
	}
	return result
}

func (m *Matcher) cached(key string) (domain.CountryMatch, bool) {
	if m.cache == nil {
		return domain.CountryMatch{}, false
	}
	body, ok := m.cache.Get(key)
	if !ok {
		return domain.CountryMatch{}, false
	}
	var match domain.CountryMatch
	if err := json.Unmarshal(body, &match); err != nil {
		return domain.CountryMatch{}, false
	}
	return match, true
}

func (m *Matcher) store(key string, match domain.CountryMatch) {
	if m.cache == nil {
		return
	}
	body, err := json.Marshal(match)
	if err != nil {
		return
	}
	m.cache.Set(key, body, m.ttl)
}
