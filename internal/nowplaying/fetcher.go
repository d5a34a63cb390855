package nowplaying

import (
	"context"
	"fmt"
	"sync"

	clog "github.com/charmbracelet/log"

	"github.com/pdwk/pdwk-dev/internal/lastfm"
)

// MusicSource is the slice of the scrobbling client the fetcher needs.
// Satisfied by *lastfm.Client.
type MusicSource interface {
	RecentTrack(ctx context.Context) (*lastfm.Track, error)
	TrackPlayCount(ctx context.Context, artist, track string) (string, error)
	ArtistPlayCount(ctx context.Context, artist string) (string, error)
	TopArtist(ctx context.Context) (*lastfm.TopArtist, error)
}

// Fetcher runs one fan-out fetch cycle: the primary recent-track call gates
// two concurrent enrichment calls for play counts. The cycle succeeds iff
// the primary call succeeds; a failed enrichment degrades only its own field
// to the sentinel and is logged on its own.
type Fetcher struct {
	source MusicSource
	log    *clog.Logger
}

func NewFetcher(source MusicSource, log *clog.Logger) *Fetcher {
	return &Fetcher{source: source, log: log}
}

// Fetch returns the cycle's snapshot, nil when there is nothing to show, or
// an error when the primary fetch failed.
func (f *Fetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	track, err := f.source.RecentTrack(ctx)
	if err != nil {
		return nil, fmt.Errorf("primary fetch: %w", err)
	}
	if track == nil {
		return nil, nil
	}

	trackPlays := lastfm.NA
	artistPlays := lastfm.NA

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		plays, err := f.source.TrackPlayCount(ctx, track.Artist, track.Name)
		if err != nil {
			f.log.Warn("track play count unavailable", "track", track.Name, "err", err)
			return
		}
		trackPlays = plays
	}()
	go func() {
		defer wg.Done()
		plays, err := f.source.ArtistPlayCount(ctx, track.Artist)
		if err != nil {
			f.log.Warn("artist play count unavailable", "artist", track.Artist, "err", err)
			return
		}
		artistPlays = plays
	}()
	wg.Wait()

	return &Snapshot{
		Track:       track.Name,
		Artist:      track.Artist,
		Album:       track.Album,
		URL:         track.URL,
		CoverArt:    track.CoverArt,
		IsPlaying:   track.NowPlaying,
		TrackPlays:  trackPlays,
		ArtistPlays: artistPlays,
	}, nil
}
