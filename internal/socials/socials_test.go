package socials

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdwk/pdwk-dev/internal/httpx"
	"github.com/pdwk/pdwk-dev/internal/lanyard"
	"github.com/pdwk/pdwk-dev/internal/lastfm"
)

func testHTTPClient(t *testing.T, name string) *httpx.Client {
	t.Helper()
	return httpx.New(httpx.Options{
		Name:          name + "-" + t.Name(),
		UserAgent:     "pdwk-dev-test/1.0",
		Timeout:       2 * time.Second,
		RatePerSecond: 1000,
		RateBurst:     1000,
	})
}

func discardLogger() *clog.Logger { return clog.New(io.Discard) }

func TestPlatformIsValid(t *testing.T) {
	for _, p := range []Platform{
		PlatformGitHub, PlatformGitLab, PlatformTikTok, PlatformSpotify,
		PlatformX, PlatformInstagram, PlatformYouTube, PlatformLastfm,
		PlatformSteam, PlatformDiscord, PlatformTelegram,
	} {
		assert.True(t, p.IsValid(), "platform %s", p)
	}
	assert.False(t, Platform("myspace").IsValid())
	assert.False(t, Platform("").IsValid())
}

func TestDisplayNameAndShouldFetch(t *testing.T) {
	r := NewRegistry(Deps{}, discardLogger())

	assert.Equal(t, "GitHub", r.DisplayName(PlatformGitHub))
	assert.Equal(t, "LastFM", r.DisplayName(PlatformLastfm))
	assert.Equal(t, "X", r.DisplayName(PlatformX))
	assert.Equal(t, "Myspace", r.DisplayName(Platform("myspace")))

	assert.True(t, r.ShouldFetch(PlatformGitHub))
	assert.True(t, r.ShouldFetch(PlatformDiscord))
	assert.False(t, r.ShouldFetch(PlatformSteam))
	assert.False(t, r.ShouldFetch(Platform("myspace")))
}

func TestFetchGitHubStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/playfairs":
			w.Write([]byte(`{"followers":1234,"following":56,"public_repos":78,"avatar_url":"https://a/x.png"}`))
		case "/users/playfairs/orgs":
			w.Write([]byte(`[{"login":"one"},{"login":"two"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	r := NewRegistry(Deps{
		GitHub:        testHTTPClient(t, "gh"),
		GitHubBaseURL: srv.URL,
	}, discardLogger())

	stats := r.Fetch(context.Background(), PlatformGitHub, "playfairs")
	assert.Equal(t, "1,234", stats.Followers)
	assert.Equal(t, "56", stats.Following)
	assert.Equal(t, "78", stats.Repos)
	assert.Equal(t, "2", stats.Orgs)
	assert.Equal(t, "https://a/x.png", stats.Avatar)
}

func TestFetchGitHubOrgFailureKeepsProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/playfairs" {
			w.Write([]byte(`{"followers":10,"following":5,"public_repos":3}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRegistry(Deps{
		GitHub:        testHTTPClient(t, "gh"),
		GitHubBaseURL: srv.URL,
	}, discardLogger())

	stats := r.Fetch(context.Background(), PlatformGitHub, "playfairs")
	assert.Equal(t, "10", stats.Followers)
	assert.Empty(t, stats.Orgs)
}

func TestFetchGitHubFailureYieldsSentinels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	r := NewRegistry(Deps{
		GitHub:        testHTTPClient(t, "gh"),
		GitHubBaseURL: srv.URL,
	}, discardLogger())

	stats := r.Fetch(context.Background(), PlatformGitHub, "playfairs")
	assert.Equal(t, NA, stats.Followers)
	assert.Equal(t, NA, stats.Following)
	assert.Equal(t, NA, stats.Repos)
}

func TestFetchGitLabFallbackChain(t *testing.T) {
	t.Run("listing hit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/users", r.URL.Path)
			require.Equal(t, "smezir", r.URL.Query().Get("username"))
			w.Write([]byte(`[{"id":9,"avatar_url":"https://gl/a.png"}]`))
		}))
		defer srv.Close()

		r := NewRegistry(Deps{GitLab: testHTTPClient(t, "gl"), GitLabBaseURL: srv.URL}, discardLogger())
		stats := r.Fetch(context.Background(), PlatformGitLab, "smezir")
		assert.Equal(t, "https://gl/a.png", stats.Avatar)
	})

	t.Run("empty listing falls back to direct lookup", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/users":
				w.Write([]byte(`[]`))
			case "/users/smezir":
				w.Write([]byte(`{"id":9,"avatar_url":"https://gl/direct.png"}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		r := NewRegistry(Deps{GitLab: testHTTPClient(t, "gl"), GitLabBaseURL: srv.URL}, discardLogger())
		stats := r.Fetch(context.Background(), PlatformGitLab, "smezir")
		assert.Equal(t, "https://gl/direct.png", stats.Avatar)
	})

	t.Run("both endpoints failing yields empty stats", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		r := NewRegistry(Deps{GitLab: testHTTPClient(t, "gl"), GitLabBaseURL: srv.URL}, discardLogger())
		stats := r.Fetch(context.Background(), PlatformGitLab, "smezir")
		assert.Empty(t, stats.Avatar)
	})
}

func TestFetchLastfmStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("method") {
		case "user.getinfo":
			w.Write([]byte(`{"user":{"playcount":"54321","artist_count":"800","track_count":"4000",
				"image":[{"size":"small","#text":""},{"size":"large","#text":"https://lfm/u.png"}]}}`))
		case "user.gettopartists":
			w.Write([]byte(`{"topartists":{"artist":[{"name":"Radiohead","playcount":"999"}]}}`))
		case "user.gettoptracks":
			w.Write([]byte(`{"toptracks":{"track":[{"name":"Weird Fishes","artist":{"name":"Radiohead"}}]}}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	lfm := lastfm.New(testHTTPClient(t, "lfm"), "key", "pdwk")
	lfm.BaseURL = srv.URL

	r := NewRegistry(Deps{Lastfm: lfm}, discardLogger())
	stats := r.Fetch(context.Background(), PlatformLastfm, "pdwk")

	assert.Equal(t, "54,321", stats.Scrobbles)
	assert.Equal(t, "800", stats.Artists)
	assert.Equal(t, "4,000", stats.Tracks)
	assert.Equal(t, "Radiohead", stats.TopArtist)
	assert.Equal(t, "999", stats.TopArtistPlays)
	assert.NotEmpty(t, stats.TopTrack)
}

func TestFetchLastfmFailureYieldsSentinels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	lfm := lastfm.New(testHTTPClient(t, "lfm"), "key", "pdwk")
	lfm.BaseURL = srv.URL

	r := NewRegistry(Deps{Lastfm: lfm}, discardLogger())
	stats := r.Fetch(context.Background(), PlatformLastfm, "pdwk")

	assert.Equal(t, NA, stats.Scrobbles)
	assert.Equal(t, NA, stats.Artists)
	assert.Equal(t, NA, stats.Tracks)
}

func TestFetchDiscordStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{
			"discord_user":{"id":"1426711359059394662","username":"pdwk","display_name":"pdwk","avatar":"abc"},
			"discord_status":"dnd",
			"activities":[{"type":0,"name":"Factorio"}]
		}}`))
	}))
	defer srv.Close()

	ln := lanyard.New(testHTTPClient(t, "lanyard"), "1426711359059394662")
	ln.BaseURL = srv.URL

	r := NewRegistry(Deps{Lanyard: ln}, discardLogger())
	stats := r.Fetch(context.Background(), PlatformDiscord, "pdwk")

	assert.Equal(t, "pdwk", stats.Username)
	assert.Equal(t, "dnd", stats.Status)
	assert.Equal(t, "Factorio", stats.Activity)
	assert.Contains(t, stats.Avatar, "?size=256")
}

func TestFetchDiscordFailureReportsOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ln := lanyard.New(testHTTPClient(t, "lanyard"), "1426711359059394662")
	ln.BaseURL = srv.URL

	r := NewRegistry(Deps{Lanyard: ln}, discardLogger())
	stats := r.Fetch(context.Background(), PlatformDiscord, "pdwk")
	assert.Equal(t, "offline", stats.Status)
}

func TestFetchPlatformWithoutFetcher(t *testing.T) {
	r := NewRegistry(Deps{}, discardLogger())
	stats := r.Fetch(context.Background(), PlatformSteam, "whoever")
	assert.Equal(t, NA, stats.Followers)
	assert.Equal(t, NA, stats.Following)
}
