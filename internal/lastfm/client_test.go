package lastfm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdwk/pdwk-dev/internal/httpx"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	h := httpx.New(httpx.Options{
		Name:          "lastfm-test-" + t.Name(),
		UserAgent:     "pdwk-dev-test/1.0",
		Timeout:       2 * time.Second,
		RatePerSecond: 1000,
		RateBurst:     1000,
	})
	c := New(h, "test-key", "pdwk")
	c.BaseURL = srv.URL + "/"
	return c
}

func TestRecentTrackNowPlaying(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "user.getrecenttracks", q.Get("method"))
		assert.Equal(t, "pdwk", q.Get("user"))
		assert.Equal(t, "1", q.Get("limit"))
		w.Write([]byte(`{"recenttracks":{"track":[{
			"name":"Song A",
			"url":"https://last.fm/song-a",
			"artist":{"#text":"Artist X"},
			"album":{"#text":"Album Z"},
			"image":[{"size":"small","#text":"s.png"},{"size":"medium","#text":"m.png"}],
			"@attr":{"nowplaying":"true"}
		}]}}`))
	})

	track, err := c.RecentTrack(context.Background())
	require.NoError(t, err)
	require.NotNil(t, track)
	assert.Equal(t, "Song A", track.Name)
	assert.Equal(t, "Artist X", track.Artist)
	assert.Equal(t, "Album Z", track.Album)
	assert.Equal(t, "https://last.fm/song-a", track.URL)
	assert.Equal(t, "m.png", track.CoverArt)
	assert.True(t, track.NowPlaying)
}

func TestRecentTrackNotPlaying(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recenttracks":{"track":[{
			"name":"Old Song",
			"artist":{"#text":"Artist"},
			"album":{"#text":"Album"},
			"image":[{"size":"large","#text":"l.png"}]
		}]}}`))
	})

	track, err := c.RecentTrack(context.Background())
	require.NoError(t, err)
	require.NotNil(t, track)
	assert.False(t, track.NowPlaying)
	// no medium rendition: first entry wins
	assert.Equal(t, "l.png", track.CoverArt)
}

func TestRecentTrackEmptyHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recenttracks":{"track":[]}}`))
	})

	track, err := c.RecentTrack(context.Background())
	require.NoError(t, err)
	assert.Nil(t, track)
}

func TestTrackPlayCountFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"user count preferred", `{"track":{"userplaycount":"1234","playcount":"999999"}}`, "1,234"},
		{"global count fallback", `{"track":{"playcount":"999999"}}`, "999,999"},
		{"no counts", `{"track":{}}`, NA},
		{"unparseable", `{"track":{"userplaycount":"many"}}`, NA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "track.getinfo", r.URL.Query().Get("method"))
				w.Write([]byte(tt.body))
			})
			got, err := c.TrackPlayCount(context.Background(), "Artist X", "Song A")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrackPlayCountUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	got, err := c.TrackPlayCount(context.Background(), "Artist X", "Song A")
	require.Error(t, err)
	assert.Equal(t, NA, got)
}

func TestArtistPlayCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "artist.getinfo", r.URL.Query().Get("method"))
		assert.Equal(t, "Artist X", r.URL.Query().Get("artist"))
		w.Write([]byte(`{"artist":{"stats":{"userplaycount":"42","playcount":"100000"}}}`))
	})

	got, err := c.ArtistPlayCount(context.Background(), "Artist X")
	require.NoError(t, err)
	assert.Equal(t, "42", got)
}

func TestTopArtist(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"topartists":{"artist":[{"name":"$uicideboy$","playcount":"5120"}],"@attr":{"total":"321"}}}`))
	})

	top, err := c.TopArtist(context.Background())
	require.NoError(t, err)
	require.NotNil(t, top)
	assert.Equal(t, "$uicideboy$", top.Name)
	assert.Equal(t, "5,120", top.PlayCount)
}

func TestTopArtistEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"topartists":{"artist":[]}}`))
	})

	top, err := c.TopArtist(context.Background())
	require.NoError(t, err)
	assert.Nil(t, top)
}

func TestUserInfoCountsFromProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "user.getinfo", r.URL.Query().Get("method"))
		w.Write([]byte(`{"user":{
			"playcount":"123456",
			"artist_count":"789",
			"track_count":"4321",
			"image":[{"size":"medium","#text":"avatar.png"}]
		}}`))
	})

	info, err := c.UserInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123,456", info.Scrobbles)
	assert.Equal(t, "789", info.Artists)
	assert.Equal(t, "4,321", info.Tracks)
	assert.Equal(t, "avatar.png", info.Avatar)
}

func TestUserInfoFallsBackToListingTotals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("method") {
		case "user.getinfo":
			w.Write([]byte(`{"user":{"playcount":"10"}}`))
		case "user.gettopartists":
			w.Write([]byte(`{"topartists":{"artist":[],"@attr":{"total":"55"}}}`))
		case "user.gettoptracks":
			w.Write([]byte(`{"toptracks":{"track":[],"@attr":{"total":"77"}}}`))
		}
	})

	info, err := c.UserInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10", info.Scrobbles)
	assert.Equal(t, "55", info.Artists)
	assert.Equal(t, "77", info.Tracks)
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"999", "999"},
		{"1000", "1,000"},
		{"1234567", "1,234,567"},
		{"", NA},
		{"abc", NA},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCount(tt.in))
	}
}
