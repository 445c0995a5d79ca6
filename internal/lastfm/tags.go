// Package lastfm looks up artist genre tags on last.fm for artists the
// Spotify catalog has no genres for.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
)

const (
	// MaxTags is how many tags an artist lookup returns at most.
	MaxTags = 5
	// MinTagCount drops tags applied by too few listeners to be meaningful.
	MinTagCount = 10

	userAgent = "taste-engine/1.0"
)

// Tags that describe a listener's relationship to the artist, not its sound.
var ignoredTags = map[string]struct{}{
	"seen live":    {},
	"favorites":    {},
	"favourites":   {},
	"favorite":     {},
	"my favorite":  {},
	"albums i own": {},
}

type tag struct {
	Name  string
	Count int
}

// TagLookup resolves artist names to last.fm top tags. Calls are paced to
// one per second across all callers.
type TagLookup struct {
	fetch    func(artist string) ([]tag, error)
	limiter  *rate.Limiter
	attempts uint
	delay    time.Duration
}

func New(apiKey, secret string) *TagLookup {
	client := lastfm.New(apiKey, secret)
	client.SetUserAgent(userAgent)
	return newTagLookup(func(artist string) ([]tag, error) {
		topTags, err := client.Artist.GetTopTags(lastfm.P{
			"artist":      artist,
			"autocorrect": 1,
		})
		if err != nil {
			return nil, err
		}
		tags := make([]tag, 0, len(topTags.Tags))
		for _, t := range topTags.Tags {
			c, _ := strconv.Atoi(t.Count)
			tags = append(tags, tag{Name: t.Name, Count: c})
		}
		return tags, nil
	})
}

func newTagLookup(fetch func(artist string) ([]tag, error)) *TagLookup {
	return &TagLookup{
		fetch:    fetch,
		limiter:  rate.NewLimiter(rate.Every(1*time.Second), 1),
		attempts: 3,
		delay:    500 * time.Millisecond,
	}
}

// ArtistGenres returns the artist's strongest tags, lowercased. An artist
// last.fm does not know yields no tags and no error.
func (l *TagLookup) ArtistGenres(ctx context.Context, name string) ([]string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("lastfm: waiting for rate limiter: %w", err)
	}

	var tags []tag
	err := retry.Do(
		func() error {
			var err error
			tags, err = l.fetch(name)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(l.attempts),
		retry.Delay(l.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var lerr *lastfm.LastfmError
			if errors.As(err, &lerr) && lerr.Code/100 == 5 {
				log.Printf("WARN lastfm: last.fm errored, retrying: %v", lerr)
				return true
			}
			return false
		}),
	)
	if err != nil {
		var lerr *lastfm.LastfmError
		// Error 6: the artist could not be found.
		if errors.As(err, &lerr) && lerr.Code == 6 {
			return nil, nil
		}
		return nil, fmt.Errorf("lastfm: fetching tags for %q: %w", name, err)
	}

	return filterTags(tags), nil
}

func filterTags(tags []tag) []string {
	var genres []string
	seen := make(map[string]struct{})
	for _, t := range tags {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" || t.Count < MinTagCount {
			continue
		}
		if _, ignored := ignoredTags[name]; ignored {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		genres = append(genres, name)
		if len(genres) == MaxTags {
			break
		}
	}
	return genres
}
