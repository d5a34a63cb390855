// Package nowplaying polls the scrobbling API and maintains the current
// listening snapshot. A snapshot is built whole within one poll cycle and
// swapped in atomically; fields from different cycles never mix.
package nowplaying

// Snapshot is one complete, internally consistent result of a poll cycle.
type Snapshot struct {
	Track       string `json:"track"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	URL         string `json:"url,omitempty"`
	CoverArt    string `json:"coverArt,omitempty"`
	IsPlaying   bool   `json:"isPlaying"`
	TrackPlays  string `json:"trackPlays"`
	ArtistPlays string `json:"artistPlays"`
}

// State is the tri-state the presentation layer renders from.
type State string

const (
	// StateLoading means no cycle has completed yet.
	StateLoading State = "loading"
	// StateEmpty means the latest cycle produced nothing to show.
	StateEmpty State = "empty"
	// StatePopulated means the latest cycle produced a snapshot.
	StatePopulated State = "populated"
)

// View is what the API serves: the current state, the latest snapshot when
// populated, and the lower-frequency top-artist signal.
type View struct {
	State       State     `json:"state"`
	Snapshot    *Snapshot `json:"snapshot,omitempty"`
	TopArtist   string    `json:"topArtist,omitempty"`
	IsTopArtist bool      `json:"isTopArtist"`
}
