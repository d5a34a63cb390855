// Package lastfm adapts the public audioscrobbler API into the small set of
// normalized records the rest of the service consumes. All counts come back
// display-formatted; any field the API cannot provide degrades to "N/A".
package lastfm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/pdwk/pdwk-dev/internal/httpx"
)

// NA is the sentinel substituted when a metric is unavailable.
const NA = "N/A"

// DefaultBaseURL is the public audioscrobbler endpoint.
const DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

// Client calls the scrobbling API for one user account.
type Client struct {
	// BaseURL may be pointed at a test server.
	BaseURL string

	http     *httpx.Client
	apiKey   string
	username string
}

func New(h *httpx.Client, apiKey, username string) *Client {
	return &Client{
		BaseURL:  DefaultBaseURL,
		http:     h,
		apiKey:   apiKey,
		username: username,
	}
}

// Username returns the configured scrobbling account name.
func (c *Client) Username() string { return c.username }

func (c *Client) endpoint(method string, extra url.Values) string {
	q := url.Values{}
	q.Set("method", method)
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return c.BaseURL + "?" + q.Encode()
}

// RecentTrack returns the most recent scrobble, or nil when the account has
// no listening history to show.
func (c *Client) RecentTrack(ctx context.Context) (*Track, error) {
	var resp recentTracksResponse
	u := c.endpoint("user.getrecenttracks", url.Values{"user": {c.username}, "limit": {"1"}})
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("recent track for %s: %w", c.username, err)
	}
	tracks := resp.RecentTracks.Track
	if len(tracks) == 0 {
		return nil, nil
	}
	t := tracks[0]
	return &Track{
		Name:       t.Name,
		Artist:     t.Artist.Name,
		Album:      t.Album.Name,
		URL:        t.URL,
		CoverArt:   pickImage(t.Image),
		NowPlaying: t.Attr.NowPlaying == "true",
	}, nil
}

// TrackPlayCount returns the user's play count for a track, formatted for
// display. The user-scoped count is preferred over the global one; if
// neither is present the sentinel comes back without an error.
func (c *Client) TrackPlayCount(ctx context.Context, artist, track string) (string, error) {
	var resp trackInfoResponse
	u := c.endpoint("track.getinfo", url.Values{
		"artist":   {artist},
		"track":    {track},
		"username": {c.username},
	})
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return NA, fmt.Errorf("track info for %q: %w", track, err)
	}
	return firstCount(resp.Track.UserPlayCount, resp.Track.PlayCount), nil
}

// ArtistPlayCount returns the user's play count for an artist, formatted for
// display, with the same fallback order as TrackPlayCount.
func (c *Client) ArtistPlayCount(ctx context.Context, artist string) (string, error) {
	var resp artistInfoResponse
	u := c.endpoint("artist.getinfo", url.Values{
		"artist":   {artist},
		"username": {c.username},
	})
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return NA, fmt.Errorf("artist info for %q: %w", artist, err)
	}
	return firstCount(resp.Artist.Stats.UserPlayCount, resp.Artist.Stats.PlayCount), nil
}

// TopArtist returns the user's most played artist, or nil when the listing
// is empty.
func (c *Client) TopArtist(ctx context.Context) (*TopArtist, error) {
	var resp topArtistsResponse
	u := c.endpoint("user.gettopartists", url.Values{"user": {c.username}, "limit": {"1"}})
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("top artists for %s: %w", c.username, err)
	}
	artists := resp.TopArtists.Artist
	if len(artists) == 0 {
		return nil, nil
	}
	return &TopArtist{
		Name:      artists[0].Name,
		PlayCount: formatCount(artists[0].PlayCount),
	}, nil
}

// TopTrack returns the name of the user's most played track, or "" when the
// listing is empty.
func (c *Client) TopTrack(ctx context.Context) (string, error) {
	var resp topTracksResponse
	u := c.endpoint("user.gettoptracks", url.Values{"user": {c.username}, "limit": {"1"}})
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return "", fmt.Errorf("top tracks for %s: %w", c.username, err)
	}
	if len(resp.TopTracks.Track) == 0 {
		return "", nil
	}
	return resp.TopTracks.Track[0].Name, nil
}

// UserInfo returns the account's library counts and avatar. The per-field
// artist and track counts fall back to the top-listing totals when the
// profile omits them.
func (c *Client) UserInfo(ctx context.Context) (*UserInfo, error) {
	var resp userInfoResponse
	u := c.endpoint("user.getinfo", url.Values{"user": {c.username}})
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("user info for %s: %w", c.username, err)
	}

	info := &UserInfo{
		Scrobbles: formatCount(resp.User.PlayCount),
		Artists:   formatCount(resp.User.ArtistCount),
		Tracks:    formatCount(resp.User.TrackCount),
		Avatar:    pickImage(resp.User.Image),
	}

	if info.Artists == NA {
		if total, err := c.topArtistTotal(ctx); err == nil {
			info.Artists = total
		}
	}
	if info.Tracks == NA {
		if total, err := c.topTrackTotal(ctx); err == nil {
			info.Tracks = total
		}
	}
	return info, nil
}

func (c *Client) topArtistTotal(ctx context.Context) (string, error) {
	var resp topArtistsResponse
	u := c.endpoint("user.gettopartists", url.Values{"user": {c.username}, "limit": {"1"}})
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return NA, err
	}
	return formatCount(resp.TopArtists.Attr.Total), nil
}

func (c *Client) topTrackTotal(ctx context.Context) (string, error) {
	var resp topTracksResponse
	u := c.endpoint("user.gettoptracks", url.Values{"user": {c.username}, "limit": {"1"}})
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return NA, err
	}
	return formatCount(resp.TopTracks.Attr.Total), nil
}

// firstCount formats the first parseable count in the fallback chain,
// returning the sentinel when the chain is exhausted.
func firstCount(counts ...string) string {
	for _, c := range counts {
		if formatted := formatCount(c); formatted != NA {
			return formatted
		}
	}
	return NA
}

// formatCount turns the API's stringly numbers into grouped display form
// ("12345" -> "12,345").
func formatCount(s string) string {
	if s == "" {
		return NA
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return NA
	}
	return humanize.Comma(n)
}
