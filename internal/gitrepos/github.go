package gitrepos

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Source lists one platform's repositories for an account.
type Source interface {
	Platform() Platform
	UserRepos(ctx context.Context, account string) ([]Record, error)
	// RawUserRepos returns the platform's listing response untouched, for
	// the CORS-relay endpoint.
	RawUserRepos(ctx context.Context, account string) ([]byte, error)
}

// DefaultGitHubBaseURL is the public GitHub API endpoint.
const DefaultGitHubBaseURL = "https://api.github.com"

// GitHub adapts the GitHub search and listing APIs.
type GitHub struct {
	// BaseURL may be pointed at a test server.
	BaseURL string

	http fetcher
}

func NewGitHub(h fetcher) *GitHub {
	return &GitHub{BaseURL: DefaultGitHubBaseURL, http: h}
}

func (g *GitHub) Platform() Platform { return PlatformGitHub }

// githubHeader carries the media type GitHub's v3 API expects.
var githubHeader = http.Header{"Accept": []string{"application/vnd.github.v3+json"}}

type githubRepo struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Language    string    `json:"language"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserRepos fetches an account's repositories through the search endpoint,
// 100 per page, most recently updated first. Only the first page is
// requested; accounts here do not exceed it.
func (g *GitHub) UserRepos(ctx context.Context, account string) ([]Record, error) {
	u := fmt.Sprintf("%s/search/repositories?q=%s&sort=updated&per_page=100",
		g.BaseURL, url.QueryEscape("user:"+account))

	var resp struct {
		Items []githubRepo `json:"items"`
	}
	if err := g.http.GetJSON(ctx, u, githubHeader, &resp); err != nil {
		return nil, fmt.Errorf("github repos for %s: %w", account, err)
	}

	records := make([]Record, 0, len(resp.Items))
	for _, r := range resp.Items {
		records = append(records, normalizeGitHub(r, account))
	}
	return records, nil
}

// RawUserRepos forwards the plain listing endpoint's body for the relay.
func (g *GitHub) RawUserRepos(ctx context.Context, account string) ([]byte, error) {
	u := fmt.Sprintf("%s/users/%s/repos?sort=updated&per_page=100", g.BaseURL, url.PathEscape(account))
	return g.http.GetRaw(ctx, u, githubHeader)
}

func normalizeGitHub(r githubRepo, account string) Record {
	desc := r.Description
	if desc == "" {
		desc = fallbackDescription
	}
	return Record{
		ID:          "github-" + strconv.FormatInt(r.ID, 10),
		Name:        r.Name,
		Description: desc,
		URL:         r.HTMLURL,
		Stars:       r.Stars,
		Forks:       r.Forks,
		Language:    r.Language,
		UpdatedAt:   r.UpdatedAt,
		Platform:    PlatformGitHub,
		Owner:       account,
	}
}
