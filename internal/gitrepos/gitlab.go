package gitrepos

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// fetcher is the slice of httpx.Client the adapters use.
type fetcher interface {
	GetJSON(ctx context.Context, url string, header http.Header, out any) error
	GetRaw(ctx context.Context, url string, header http.Header) ([]byte, error)
}

// DefaultGitLabBaseURL is the public GitLab API endpoint.
const DefaultGitLabBaseURL = "https://gitlab.com/api/v4"

// GitLab adapts the GitLab projects API to the same Record shape. Project
// listings carry no primary-language field, so Language stays empty.
type GitLab struct {
	// BaseURL may be pointed at a test server.
	BaseURL string

	http fetcher
}

func NewGitLab(h fetcher) *GitLab {
	return &GitLab{BaseURL: DefaultGitLabBaseURL, http: h}
}

func (g *GitLab) Platform() Platform { return PlatformGitLab }

type gitlabProject struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	WebURL         string    `json:"web_url"`
	StarCount      int       `json:"star_count"`
	ForksCount     int       `json:"forks_count"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// UserRepos fetches an account's projects, 100 per page, first page only.
func (g *GitLab) UserRepos(ctx context.Context, account string) ([]Record, error) {
	u := g.listURL(account)

	var projects []gitlabProject
	if err := g.http.GetJSON(ctx, u, nil, &projects); err != nil {
		return nil, fmt.Errorf("gitlab projects for %s: %w", account, err)
	}

	records := make([]Record, 0, len(projects))
	for _, p := range projects {
		desc := p.Description
		if desc == "" {
			desc = fallbackDescription
		}
		records = append(records, Record{
			ID:          "gitlab-" + strconv.FormatInt(p.ID, 10),
			Name:        p.Name,
			Description: desc,
			URL:         p.WebURL,
			Stars:       p.StarCount,
			Forks:       p.ForksCount,
			UpdatedAt:   p.LastActivityAt,
			Platform:    PlatformGitLab,
			Owner:       account,
		})
	}
	return records, nil
}

// RawUserRepos forwards the listing body for the relay.
func (g *GitLab) RawUserRepos(ctx context.Context, account string) ([]byte, error) {
	return g.http.GetRaw(ctx, g.listURL(account), nil)
}

func (g *GitLab) listURL(account string) string {
	return fmt.Sprintf("%s/users/%s/projects?per_page=100", g.BaseURL, url.PathEscape(account))
}
