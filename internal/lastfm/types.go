package lastfm

// Wire shapes for the audioscrobbler 2.0 API. Field names follow the API's
// "#text" and "@attr" conventions; everything numeric arrives as a string.

type image struct {
	Size string `json:"size"`
	URL  string `json:"#text"`
}

// pickImage prefers the medium rendition and falls back to the first entry.
func pickImage(images []image) string {
	for _, img := range images {
		if img.Size == "medium" && img.URL != "" {
			return img.URL
		}
	}
	if len(images) > 0 {
		return images[0].URL
	}
	return ""
}

type recentTracksResponse struct {
	RecentTracks struct {
		Track []struct {
			Name   string `json:"name"`
			URL    string `json:"url"`
			Artist struct {
				Name string `json:"#text"`
			} `json:"artist"`
			Album struct {
				Name string `json:"#text"`
			} `json:"album"`
			Image []image `json:"image"`
			Attr  struct {
				NowPlaying string `json:"nowplaying"`
			} `json:"@attr"`
		} `json:"track"`
	} `json:"recenttracks"`
}

type trackInfoResponse struct {
	Track struct {
		UserPlayCount string `json:"userplaycount"`
		PlayCount     string `json:"playcount"`
	} `json:"track"`
}

type artistInfoResponse struct {
	Artist struct {
		Stats struct {
			UserPlayCount string `json:"userplaycount"`
			PlayCount     string `json:"playcount"`
		} `json:"stats"`
	} `json:"artist"`
}

type topArtistsResponse struct {
	TopArtists struct {
		Artist []struct {
			Name      string `json:"name"`
			PlayCount string `json:"playcount"`
		} `json:"artist"`
		Attr struct {
			Total string `json:"total"`
		} `json:"@attr"`
	} `json:"topartists"`
}

type topTracksResponse struct {
	TopTracks struct {
		Track []struct {
			Name string `json:"name"`
		} `json:"track"`
		Attr struct {
			Total string `json:"total"`
		} `json:"@attr"`
	} `json:"toptracks"`
}

type userInfoResponse struct {
	User struct {
		PlayCount   string  `json:"playcount"`
		ArtistCount string  `json:"artist_count"`
		TrackCount  string  `json:"track_count"`
		Image       []image `json:"image"`
	} `json:"user"`
}

// Track is the normalized shape of the most recent scrobble.
type Track struct {
	Name       string
	Artist     string
	Album      string
	URL        string
	CoverArt   string
	NowPlaying bool
}

// TopArtist is the normalized top-artist signal.
type TopArtist struct {
	Name      string
	PlayCount string
}

// UserInfo is the normalized profile of a scrobbling account. Counts are
// formatted for display; missing values carry the "N/A" sentinel.
type UserInfo struct {
	Scrobbles string
	Artists   string
	Tracks    string
	Avatar    string
}
