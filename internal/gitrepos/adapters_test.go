package gitrepos

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

func testHTTPClient(t *testing.T) *httpx.Client {
	t.Helper()
	return httpx.New(httpx.Options{
		Name:          "gitrepos-test-" + t.Name(),
		UserAgent:     "pdwk-dev-test/1.0",
		Timeout:       2 * time.Second,
		RatePerSecond: 1000,
		RateBurst:     1000,
	})
}

func TestGitHubUserRepos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "user:playfairs", q.Get("q"))
		assert.Equal(t, "updated", q.Get("sort"))
		assert.Equal(t, "100", q.Get("per_page"))
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Write([]byte(`{"items":[
			{"id":101,"name":"dotfiles","description":"my setup","html_url":"https://github.com/playfairs/dotfiles",
			 "stargazers_count":12,"forks_count":3,"language":"Lua","updated_at":"2026-08-01T10:00:00Z"},
			{"id":102,"name":"empty-desc","description":null,"html_url":"https://github.com/playfairs/empty-desc",
			 "stargazers_count":0,"forks_count":0,"language":null,"updated_at":"2026-07-01T10:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	gh := NewGitHub(testHTTPClient(t))
	gh.BaseURL = srv.URL

	records, err := gh.UserRepos(context.Background(), "playfairs")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "github-101", records[0].ID)
	assert.Equal(t, "dotfiles", records[0].Name)
	assert.Equal(t, "my setup", records[0].Description)
	assert.Equal(t, "https://github.com/playfairs/dotfiles", records[0].URL)
	assert.Equal(t, 12, records[0].Stars)
	assert.Equal(t, 3, records[0].Forks)
	assert.Equal(t, "Lua", records[0].Language)
	assert.Equal(t, PlatformGitHub, records[0].Platform)
	assert.Equal(t, "playfairs", records[0].Owner)

	assert.Equal(t, "No description available", records[1].Description)
	assert.Empty(t, records[1].Language)
}

func TestGitHubUserReposUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden) // rate limited
	}))
	defer srv.Close()

	gh := NewGitHub(testHTTPClient(t))
	gh.BaseURL = srv.URL

	records, err := gh.UserRepos(context.Background(), "playfairs")
	require.Error(t, err)
	assert.Nil(t, records)
}

func TestGitLabUserRepos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/smezir/projects", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		w.Write([]byte(`[
			{"id":55,"name":"scripts","description":"","web_url":"https://gitlab.com/smezir/scripts",
			 "star_count":4,"forks_count":1,"last_activity_at":"2026-06-15T08:30:00Z"}
		]`))
	}))
	defer srv.Close()

	gl := NewGitLab(testHTTPClient(t))
	gl.BaseURL = srv.URL

	records, err := gl.UserRepos(context.Background(), "smezir")
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "gitlab-55", records[0].ID)
	assert.Equal(t, "No description available", records[0].Description)
	assert.Equal(t, "https://gitlab.com/smezir/scripts", records[0].URL)
	assert.Equal(t, 4, records[0].Stars)
	assert.Equal(t, PlatformGitLab, records[0].Platform)
	assert.Equal(t, time.Date(2026, 6, 15, 8, 30, 0, 0, time.UTC), records[0].UpdatedAt)
}

func TestRawUserReposForwardsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/playfairs/repos", r.URL.Path)
		w.Write([]byte(`[{"id":1,"name":"raw"}]`))
	}))
	defer srv.Close()

	gh := NewGitHub(testHTTPClient(t))
	gh.BaseURL = srv.URL

	body, err := gh.RawUserRepos(context.Background(), "playfairs")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"raw"}]`, string(body))
}
