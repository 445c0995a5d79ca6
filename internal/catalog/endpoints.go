package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ademuri/taste-engine/internal/domain"
)

// TimeRange selects the listening window of the top-items endpoints.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// MaxAudioFeatureIDs is the most track IDs one audio-features request takes.
const MaxAudioFeatureIDs = 100

// SearchResult holds whichever item types a Search asked for.
type SearchResult struct {
	Artists []domain.Artist `json:"artists"`
	Tracks  []domain.Track  `json:"tracks"`
}

func (c *Client) Me(ctx context.Context, token string) (domain.Profile, error) {
	var p wireProfile
	if err := c.fetchJSON(ctx, "/me", token, &p); err != nil {
		return domain.Profile{}, err
	}
	return mapProfile(p), nil
}

func (c *Client) TopArtists(ctx context.Context, token string, tr TimeRange, limit int) ([]domain.Artist, error) {
	path := fmt.Sprintf("/me/top/artists?time_range=%s&limit=%d", tr, limit)
	var page wirePaging[wireArtist]
	if err := c.fetchJSON(ctx, path, token, &page); err != nil {
		return nil, err
	}
	return mapArtists(page.Items), nil
}

func (c *Client) TopTracks(ctx context.Context, token string, tr TimeRange, limit int) ([]domain.Track, error) {
	path := fmt.Sprintf("/me/top/tracks?time_range=%s&limit=%d", tr, limit)
	var page wirePaging[wireTrack]
	if err := c.fetchJSON(ctx, path, token, &page); err != nil {
		return nil, err
	}
	return mapTracks(page.Items), nil
}

func (c *Client) RecentlyPlayed(ctx context.Context, token string, limit int) ([]domain.Play, error) {
	path := fmt.Sprintf("/me/player/recently-played?limit=%d", limit)
	var page wirePaging[wirePlay]
	if err := c.fetchJSON(ctx, path, token, &page); err != nil {
		return nil, err
	}
	plays := make([]domain.Play, 0, len(page.Items))
	for _, p := range page.Items {
		plays = append(plays, domain.Play{Track: mapTrack(p.Track), PlayedAt: p.PlayedAt})
	}
	return plays, nil
}

// AudioFeatures returns features keyed by track ID. Tracks the catalog has no
// analysis for are absent from the map.
func (c *Client) AudioFeatures(ctx context.Context, token string, ids []string) (map[string]domain.AudioFeatures, error) {
	out := make(map[string]domain.AudioFeatures, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if len(ids) > MaxAudioFeatureIDs {
		return nil, fmt.Errorf("catalog: %d audio feature ids, at most %d allowed", len(ids), MaxAudioFeatureIDs)
	}

	path := "/audio-features?ids=" + url.QueryEscape(strings.Join(ids, ","))
	var resp wireAudioFeatures
	if err := c.fetchJSON(ctx, path, token, &resp); err != nil {
		return nil, err
	}
	for _, f := range resp.AudioFeatures {
		if f == nil || f.ID == "" {
			continue
		}
		out[f.ID] = *f
	}
	return out, nil
}

// Search runs a free-text catalog search over the given item types
// ("artist", "track").
func (c *Client) Search(ctx context.Context, token, query string, types []string, limit int) (SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", strings.Join(types, ","))
	q.Set("limit", strconv.Itoa(limit))

	var resp wireSearch
	if err := c.fetchJSON(ctx, "/search?"+q.Encode(), token, &resp); err != nil {
		return SearchResult{}, err
	}

	result := SearchResult{Artists: []domain.Artist{}, Tracks: []domain.Track{}}
	if resp.Artists != nil {
		result.Artists = mapArtists(resp.Artists.Items)
	}
	if resp.Tracks != nil {
		result.Tracks = mapTracks(resp.Tracks.Items)
	}
	return result, nil
}

// SearchArtist returns the best catalog match for name. ok is false when the
// search came back empty.
func (c *Client) SearchArtist(ctx context.Context, token, name string) (artist domain.Artist, ok bool, err error) {
	result, err := c.Search(ctx, token, name, []string{"artist"}, 1)
	if err != nil {
		return domain.Artist{}, false, err
	}
	if len(result.Artists) == 0 {
		return domain.Artist{}, false, nil
	}
	return result.Artists[0], true, nil
}
