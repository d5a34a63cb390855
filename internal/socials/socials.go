// Package socials fetches vanity stats for the platforms listed on the
// socials page. Platforms form a closed enum; each entry in the dispatch
// table carries its display name, whether stats are shown at all, and the
// fetch function for platforms that have one. Every upstream failure is
// absorbed into sentinel-filled stats so a broken platform never breaks the
// page.
package socials

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	clog "github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/pdwk/pdwk-dev/internal/httpx"
	"github.com/pdwk/pdwk-dev/internal/lanyard"
	"github.com/pdwk/pdwk-dev/internal/lastfm"
)

// NA mirrors the scrobbling sentinel for unavailable metrics.
const NA = lastfm.NA

// Platform is a social platform in the directory.
type Platform string

const (
	PlatformGitHub    Platform = "github"
	PlatformGitLab    Platform = "gitlab"
	PlatformTikTok    Platform = "tiktok"
	PlatformSpotify   Platform = "spotify"
	PlatformX         Platform = "x"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformLastfm    Platform = "lastfm"
	PlatformSteam     Platform = "steam"
	PlatformDiscord   Platform = "discord"
	PlatformTelegram  Platform = "telegram"
)

// IsValid checks if the platform is part of the closed set.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformGitHub, PlatformGitLab, PlatformTikTok, PlatformSpotify,
		PlatformX, PlatformInstagram, PlatformYouTube, PlatformLastfm,
		PlatformSteam, PlatformDiscord, PlatformTelegram:
		return true
	default:
		return false
	}
}

func (p Platform) String() string { return string(p) }

// Stats holds whichever vanity metrics a platform exposes. Absent metrics
// are empty; fetched-but-unavailable metrics carry the sentinel.
type Stats struct {
	Followers      string `json:"followers,omitempty"`
	Following      string `json:"following,omitempty"`
	Repos          string `json:"repos,omitempty"`
	Orgs           string `json:"orgs,omitempty"`
	Avatar         string `json:"avatar,omitempty"`
	Scrobbles      string `json:"scrobbles,omitempty"`
	Artists        string `json:"artists,omitempty"`
	Tracks         string `json:"tracks,omitempty"`
	TopArtist      string `json:"topArtist,omitempty"`
	TopArtistPlays string `json:"topArtistPlays,omitempty"`
	TopTrack       string `json:"topTrack,omitempty"`
	Status         string `json:"status,omitempty"`
	Username       string `json:"username,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
	Activity       string `json:"activity,omitempty"`
}

// FetchFunc fetches one platform's stats. Implementations return sentinel-
// filled stats alongside the error so callers always have something to show.
type FetchFunc func(ctx context.Context, username string) (*Stats, error)

// Entry is one row of the dispatch table.
type Entry struct {
	DisplayName string
	ShowStats   bool
	fetch       FetchFunc
}

// Registry is the platform-keyed dispatch table.
type Registry struct {
	entries map[Platform]Entry
	log     *clog.Logger
}

// Deps are the upstream adapters the stat fetchers dispatch to.
type Deps struct {
	// GitHub and GitLab serve the user-profile endpoints; base URLs may
	// point at test servers.
	GitHub        *httpx.Client
	GitHubBaseURL string
	GitLab        *httpx.Client
	GitLabBaseURL string
	Lastfm        *lastfm.Client
	Lanyard       *lanyard.Client
}

func NewRegistry(deps Deps, log *clog.Logger) *Registry {
	if deps.GitHubBaseURL == "" {
		deps.GitHubBaseURL = "https://api.github.com"
	}
	if deps.GitLabBaseURL == "" {
		deps.GitLabBaseURL = "https://gitlab.com/api/v4"
	}

	r := &Registry{log: log}
	r.entries = map[Platform]Entry{
		PlatformGitHub:    {DisplayName: "GitHub", ShowStats: true, fetch: githubFetcher(deps)},
		PlatformGitLab:    {DisplayName: "GitLab", ShowStats: true, fetch: gitlabFetcher(deps)},
		PlatformLastfm:    {DisplayName: "LastFM", ShowStats: true, fetch: lastfmFetcher(deps)},
		PlatformDiscord:   {DisplayName: "Discord", ShowStats: true, fetch: discordFetcher(deps)},
		PlatformTikTok:    {DisplayName: "TikTok"},
		PlatformSpotify:   {DisplayName: "Spotify"},
		PlatformX:         {DisplayName: "X"},
		PlatformInstagram: {DisplayName: "Instagram"},
		PlatformYouTube:   {DisplayName: "YouTube"},
		PlatformSteam:     {DisplayName: "Steam"},
		PlatformTelegram:  {DisplayName: "Telegram"},
	}
	return r
}

// DisplayName returns the platform's presentation name, falling back to a
// capitalized form of the raw value for anything outside the table.
func (r *Registry) DisplayName(p Platform) string {
	if e, ok := r.entries[p]; ok {
		return e.DisplayName
	}
	s := p.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ShouldFetch reports whether the platform shows stats and has a fetcher.
func (r *Registry) ShouldFetch(p Platform) bool {
	e, ok := r.entries[p]
	return ok && e.ShowStats && e.fetch != nil
}

// Fetch returns the platform's stats. Platforms without a fetcher get the
// generic sentinel pair; fetch failures are logged and the fetcher's
// sentinel-filled stats are returned.
func (r *Registry) Fetch(ctx context.Context, p Platform, username string) *Stats {
	e, ok := r.entries[p]
	if !ok || e.fetch == nil {
		return &Stats{Followers: NA, Following: NA}
	}
	stats, err := e.fetch(ctx, username)
	if err != nil {
		r.log.Warn("platform stats unavailable", "platform", p, "username", username, "err", err)
	}
	if stats == nil {
		stats = &Stats{Followers: NA, Following: NA}
	}
	return stats
}

func githubFetcher(deps Deps) FetchFunc {
	return func(ctx context.Context, username string) (*Stats, error) {
		sentinel := &Stats{Followers: NA, Following: NA, Repos: NA}

		var user struct {
			Followers   int64  `json:"followers"`
			Following   int64  `json:"following"`
			PublicRepos int64  `json:"public_repos"`
			AvatarURL   string `json:"avatar_url"`
		}
		u := fmt.Sprintf("%s/users/%s", deps.GitHubBaseURL, url.PathEscape(username))
		if err := deps.GitHub.GetJSON(ctx, u, nil, &user); err != nil {
			return sentinel, fmt.Errorf("github stats for %s: %w", username, err)
		}

		stats := &Stats{
			Followers: humanize.Comma(user.Followers),
			Following: humanize.Comma(user.Following),
			Repos:     humanize.Comma(user.PublicRepos),
			Avatar:    user.AvatarURL,
		}

		// Org membership is enrichment; its failure never hides the profile.
		var orgs []struct {
			Login string `json:"login"`
		}
		ou := fmt.Sprintf("%s/users/%s/orgs", deps.GitHubBaseURL, url.PathEscape(username))
		if err := deps.GitHub.GetJSON(ctx, ou, nil, &orgs); err == nil {
			stats.Orgs = humanize.Comma(int64(len(orgs)))
		}
		return stats, nil
	}
}

// gitlabFetcher resolves the avatar through an ordered endpoint fallback
// chain: the username search listing first, the direct user lookup second.
func gitlabFetcher(deps Deps) FetchFunc {
	return func(ctx context.Context, username string) (*Stats, error) {
		var listing []struct {
			ID        int64  `json:"id"`
			AvatarURL string `json:"avatar_url"`
		}
		u := fmt.Sprintf("%s/users?username=%s", deps.GitLabBaseURL, url.QueryEscape(username))
		if err := deps.GitLab.GetJSON(ctx, u, nil, &listing); err == nil && len(listing) > 0 {
			return &Stats{Avatar: listing[0].AvatarURL}, nil
		}

		var user struct {
			ID        int64  `json:"id"`
			AvatarURL string `json:"avatar_url"`
		}
		du := fmt.Sprintf("%s/users/%s", deps.GitLabBaseURL, url.PathEscape(username))
		if err := deps.GitLab.GetJSON(ctx, du, nil, &user); err != nil {
			return &Stats{}, fmt.Errorf("gitlab avatar for %s: %w", username, err)
		}
		return &Stats{Avatar: user.AvatarURL}, nil
	}
}

func lastfmFetcher(deps Deps) FetchFunc {
	return func(ctx context.Context, _ string) (*Stats, error) {
		sentinel := &Stats{Scrobbles: NA, Artists: NA, Tracks: NA}

		info, err := deps.Lastfm.UserInfo(ctx)
		if err != nil {
			return sentinel, fmt.Errorf("lastfm stats: %w", err)
		}

		stats := &Stats{
			Scrobbles: info.Scrobbles,
			Artists:   info.Artists,
			Tracks:    info.Tracks,
			Avatar:    info.Avatar,
			TopArtist: NA, TopArtistPlays: NA, TopTrack: NA,
		}

		if top, err := deps.Lastfm.TopArtist(ctx); err == nil && top != nil {
			stats.TopArtist = top.Name
			stats.TopArtistPlays = top.PlayCount
		}
		if track, err := deps.Lastfm.TopTrack(ctx); err == nil && track != "" {
			stats.TopTrack = track
		}
		return stats, nil
	}
}

func discordFetcher(deps Deps) FetchFunc {
	return func(ctx context.Context, _ string) (*Stats, error) {
		p, err := deps.Lanyard.Fetch(ctx)
		if err != nil {
			return &Stats{Status: "offline"}, fmt.Errorf("discord stats: %w", err)
		}

		stats := &Stats{
			Username:    p.User.Username,
			DisplayName: p.User.DisplayName,
			Status:      p.Status,
		}
		if p.User.AvatarURL != "" {
			stats.Avatar = p.User.AvatarURL + "?size=256"
		}
		if p.Game != nil {
			stats.Activity = p.Game.Name
		} else if p.CustomStatus != nil {
			stats.Activity = p.CustomStatus.State
		}
		return stats, nil
	}
}
