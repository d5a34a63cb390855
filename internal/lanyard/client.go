// Package lanyard adapts the Lanyard presence API, which mirrors a Discord
// user's profile, per-device online status, and activity list.
package lanyard

import (
	"context"
	"fmt"

	"github.com/pdwk/pdwk-dev/internal/httpx"
)

// DefaultBaseURL is the public Lanyard endpoint.
const DefaultBaseURL = "https://api.lanyard.rest/v1"

// Activity type discriminators in the Discord presence payload.
const (
	activityTypeGame         = 0
	activityTypeCustomStatus = 4
)

// Client fetches presence for one numeric Discord user ID.
type Client struct {
	// BaseURL may be pointed at a test server.
	BaseURL string

	http   *httpx.Client
	userID string
}

func New(h *httpx.Client, userID string) *Client {
	return &Client{BaseURL: DefaultBaseURL, http: h, userID: userID}
}

type wireEmoji struct {
	Name string `json:"name"`
}

type wireActivity struct {
	Type    int        `json:"type"`
	Name    string     `json:"name"`
	Details string     `json:"details"`
	State   string     `json:"state"`
	Emoji   *wireEmoji `json:"emoji"`
}

type wireResponse struct {
	Success bool `json:"success"`
	Data    struct {
		DiscordUser struct {
			ID            string `json:"id"`
			Username      string `json:"username"`
			Discriminator string `json:"discriminator"`
			DisplayName   string `json:"display_name"`
			GlobalName    string `json:"global_name"`
			Avatar        string `json:"avatar"`
		} `json:"discord_user"`
		DiscordStatus      string         `json:"discord_status"`
		Activities         []wireActivity `json:"activities"`
		ActiveOnWeb        bool           `json:"active_on_discord_web"`
		ActiveOnDesktop    bool           `json:"active_on_discord_desktop"`
		ActiveOnMobile     bool           `json:"active_on_discord_mobile"`
		ListeningToSpotify bool           `json:"listening_to_spotify"`
		Spotify            *struct {
			Song   string `json:"song"`
			Artist string `json:"artist"`
			Album  string `json:"album"`
		} `json:"spotify"`
	} `json:"data"`
}

// User is the normalized profile.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	DisplayName   string `json:"displayName"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
}

// CustomStatus is the first type-4 activity, when present.
type CustomStatus struct {
	State string `json:"state"`
	Emoji string `json:"emoji,omitempty"`
}

// Game is the first type-0 activity, when present.
type Game struct {
	Name    string `json:"name"`
	Details string `json:"details,omitempty"`
	State   string `json:"state,omitempty"`
}

// Spotify is the currently playing Spotify track, when present.
type Spotify struct {
	Song   string `json:"song"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// Presence is the normalized view of a user's Discord presence.
type Presence struct {
	User            User          `json:"user"`
	Status          string        `json:"status"`
	ActiveOnWeb     bool          `json:"activeOnWeb"`
	ActiveOnDesktop bool          `json:"activeOnDesktop"`
	ActiveOnMobile  bool          `json:"activeOnMobile"`
	CustomStatus    *CustomStatus `json:"customStatus,omitempty"`
	Game            *Game         `json:"game,omitempty"`
	Spotify         *Spotify      `json:"spotify,omitempty"`
}

// Fetch returns the user's presence. The first custom-status activity and
// the first game activity are extracted distinctly; anything else in the
// activity list is ignored.
func (c *Client) Fetch(ctx context.Context) (*Presence, error) {
	var resp wireResponse
	u := fmt.Sprintf("%s/users/%s", c.BaseURL, c.userID)
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("presence for %s: %w", c.userID, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("presence for %s: upstream reported failure", c.userID)
	}

	d := resp.Data
	display := d.DiscordUser.DisplayName
	if display == "" {
		display = d.DiscordUser.GlobalName
	}
	if display == "" {
		display = d.DiscordUser.Username
	}

	p := &Presence{
		User: User{
			ID:            d.DiscordUser.ID,
			Username:      d.DiscordUser.Username,
			Discriminator: d.DiscordUser.Discriminator,
			DisplayName:   display,
		},
		Status:          d.DiscordStatus,
		ActiveOnWeb:     d.ActiveOnWeb,
		ActiveOnDesktop: d.ActiveOnDesktop,
		ActiveOnMobile:  d.ActiveOnMobile,
	}
	if d.DiscordUser.Avatar != "" {
		p.User.AvatarURL = fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png",
			d.DiscordUser.ID, d.DiscordUser.Avatar)
	}

	for _, act := range d.Activities {
		switch act.Type {
		case activityTypeCustomStatus:
			if p.CustomStatus == nil {
				cs := &CustomStatus{State: act.State}
				if act.Emoji != nil {
					cs.Emoji = act.Emoji.Name
				}
				p.CustomStatus = cs
			}
		case activityTypeGame:
			if p.Game == nil {
				p.Game = &Game{Name: act.Name, Details: act.Details, State: act.State}
			}
		}
	}

	if d.ListeningToSpotify && d.Spotify != nil {
		p.Spotify = &Spotify{Song: d.Spotify.Song, Artist: d.Spotify.Artist, Album: d.Spotify.Album}
	}
	return p, nil
}
