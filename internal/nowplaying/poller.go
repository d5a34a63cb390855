package nowplaying

import (
	"context"
	"math/rand/v2"
	"time"

	clog "github.com/charmbracelet/log"

	"github.com/pdwk/pdwk-dev/internal/metrics"
)

// Poller drives the fetch cycle: once immediately on start, then on a fixed
// interval until its context is cancelled. The top-artist signal is refreshed
// once at startup and afterwards opportunistically, on a low-probability
// random gate evaluated each tick, so its cadence stays decoupled from the
// primary period. Implements suture's Service.
type Poller struct {
	fetcher  *Fetcher
	source   MusicSource
	store    *Store
	interval time.Duration
	// topChance is the per-tick probability of refreshing the top artist.
	topChance float64
	log       *clog.Logger

	// randFloat is swappable in tests.
	randFloat func() float64
}

func NewPoller(fetcher *Fetcher, source MusicSource, store *Store, interval time.Duration, topChance float64, log *clog.Logger) *Poller {
	return &Poller{
		fetcher:   fetcher,
		source:    source,
		store:     store,
		interval:  interval,
		topChance: topChance,
		log:       log,
		randFloat: rand.Float64,
	}
}

// Serve runs the poll loop until ctx is cancelled. Cycles run in their own
// goroutines so a straggling response cannot stall the cadence; the store's
// sequence guard discards whatever resolves out of order.
func (p *Poller) Serve(ctx context.Context) error {
	p.log.Info("starting now-playing poller", "interval", p.interval)

	p.cycle(ctx)
	p.refreshTopArtist(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("now-playing poller stopped")
			return ctx.Err()
		case <-ticker.C:
			go p.cycle(ctx)
			if p.randFloat() < p.topChance {
				go p.refreshTopArtist(ctx)
			}
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	cycle := p.store.Begin()

	snap, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.log.Warn("now-playing fetch failed", "cycle", cycle, "err", err)
		// No snapshot for this cycle; never leave stale fields showing.
		if p.store.Commit(cycle, nil) {
			metrics.PollCycles.WithLabelValues("error").Inc()
		} else {
			metrics.PollCycles.WithLabelValues("stale").Inc()
		}
		return
	}

	if !p.store.Commit(cycle, snap) {
		metrics.PollCycles.WithLabelValues("stale").Inc()
		return
	}
	switch {
	case snap == nil:
		metrics.PollCycles.WithLabelValues("idle").Inc()
	case snap.IsPlaying:
		metrics.PollCycles.WithLabelValues("playing").Inc()
	default:
		metrics.PollCycles.WithLabelValues("idle").Inc()
	}
}

func (p *Poller) refreshTopArtist(ctx context.Context) {
	top, err := p.source.TopArtist(ctx)
	if err != nil {
		p.log.Warn("top artist refresh failed", "err", err)
		return
	}
	if top != nil {
		p.store.SetTopArtist(top.Name)
	}
}

func (p *Poller) String() string { return "nowplaying-poller" }
