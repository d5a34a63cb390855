// Package gitrepos aggregates public repositories across several accounts on
// git hosting platforms into one de-duplicated collection, and derives
// filtered/sorted projections from it on demand.
package gitrepos

import "time"

// Platform identifies a git hosting provider.
type Platform string

const (
	PlatformGitHub Platform = "github"
	PlatformGitLab Platform = "gitlab"
)

// IsValid checks if the platform is one of the supported providers.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformGitHub, PlatformGitLab:
		return true
	default:
		return false
	}
}

func (p Platform) String() string { return string(p) }

// Record is one repository, normalized across platforms. The canonical URL
// is the identity used for de-duplication.
type Record struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"html_url"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Language    string    `json:"language,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	Platform    Platform  `json:"platform"`
	Owner       string    `json:"owner"`
}

// SortKey selects the presentation order of a projection.
type SortKey string

const (
	SortByUpdated SortKey = "updated"
	SortByStars   SortKey = "stars"
	SortByForks   SortKey = "forks"
	SortByName    SortKey = "name"
)

// IsValid checks if the sort key is recognized.
func (k SortKey) IsValid() bool {
	switch k {
	case SortByUpdated, SortByStars, SortByForks, SortByName:
		return true
	default:
		return false
	}
}

// Query selects a projection over the aggregated collection. Zero values
// mean "all accounts", "all languages", and the default updated-descending
// order.
type Query struct {
	Account  string
	Language string
	Sort     SortKey
}

// Account names one account to aggregate from.
type Account struct {
	Name     string
	Platform Platform
}

// fallbackDescription substitutes for repositories without a description.
const fallbackDescription = "No description available"
