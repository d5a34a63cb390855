package gitrepos

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"

	"github.com/pdwk/pdwk-dev/internal/metrics"
)

// Aggregator fetches every configured account's repositories, merges them,
// and holds the de-duplicated base list. The base list is immutable once
// swapped in; Query and Languages derive projections from it without
// touching it.
type Aggregator struct {
	accounts []Account
	sources  map[Platform]Source
	log      *clog.Logger

	mu      sync.RWMutex
	records []Record
	loaded  bool
}

func NewAggregator(accounts []Account, sources []Source, log *clog.Logger) *Aggregator {
	byPlatform := make(map[Platform]Source, len(sources))
	for _, s := range sources {
		byPlatform[s.Platform()] = s
	}
	return &Aggregator{
		accounts: accounts,
		sources:  byPlatform,
		log:      log,
	}
}

// Refresh fetches all accounts concurrently and swaps in the merged result.
// A failed account contributes zero records. An all-accounts failure yields
// an empty collection, which is a valid outcome and replaces the old list;
// absence of data is not an error state.
func (a *Aggregator) Refresh(ctx context.Context) {
	perAccount := make([][]Record, len(a.accounts))
	failures := 0

	var wg sync.WaitGroup
	var failMu sync.Mutex
	for i, acc := range a.accounts {
		src, ok := a.sources[acc.Platform]
		if !ok {
			a.log.Warn("no source for platform", "platform", acc.Platform)
			continue
		}
		wg.Add(1)
		go func(slot int, acc Account, src Source) {
			defer wg.Done()
			records, err := src.UserRepos(ctx, acc.Name)
			if err != nil {
				a.log.Warn("account fetch failed", "account", acc.Name, "platform", acc.Platform, "err", err)
				failMu.Lock()
				failures++
				failMu.Unlock()
				return
			}
			perAccount[slot] = records
		}(i, acc, src)
	}
	wg.Wait()

	// Merge in account-iteration order so dedup keeps the first occurrence
	// deterministically.
	var merged []Record
	for _, records := range perAccount {
		merged = append(merged, records...)
	}
	merged = dedupeByURL(merged)
	sortRecords(merged, SortByUpdated)

	a.mu.Lock()
	a.records = merged
	a.loaded = true
	a.mu.Unlock()

	switch {
	case len(merged) == 0:
		metrics.RepoRefreshes.WithLabelValues("empty").Inc()
	case failures > 0:
		metrics.RepoRefreshes.WithLabelValues("partial").Inc()
	default:
		metrics.RepoRefreshes.WithLabelValues("ok").Inc()
	}
	a.log.Info("repository aggregation refreshed", "records", len(merged), "failed_accounts", failures)
}

// Loaded reports whether at least one refresh has completed.
func (a *Aggregator) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded
}

// EnsureLoaded runs a refresh if none has completed yet.
func (a *Aggregator) EnsureLoaded(ctx context.Context) {
	if !a.Loaded() {
		a.Refresh(ctx)
	}
}

// Query returns a projection of the base list: filtered by account and
// language, ordered by the requested key. The returned slice is fresh; the
// base list is never reordered or mutated.
func (a *Aggregator) Query(q Query) []Record {
	a.mu.RLock()
	base := a.records
	a.mu.RUnlock()

	out := make([]Record, 0, len(base))
	for _, r := range base {
		if q.Account != "" && r.Owner != q.Account {
			continue
		}
		if q.Language != "" && r.Language != q.Language {
			continue
		}
		out = append(out, r)
	}

	key := q.Sort
	if !key.IsValid() {
		key = SortByUpdated
	}
	sortRecords(out, key)
	return out
}

// Accounts returns the configured account names in iteration order.
func (a *Aggregator) Accounts() []string {
	names := make([]string, 0, len(a.accounts))
	for _, acc := range a.accounts {
		names = append(names, acc.Name)
	}
	return names
}

// Languages returns the distinct languages present in the base list,
// alphabetically.
func (a *Aggregator) Languages() []string {
	a.mu.RLock()
	base := a.records
	a.mu.RUnlock()

	seen := make(map[string]struct{})
	var langs []string
	for _, r := range base {
		if r.Language == "" {
			continue
		}
		if _, ok := seen[r.Language]; ok {
			continue
		}
		seen[r.Language] = struct{}{}
		langs = append(langs, r.Language)
	}
	sort.Strings(langs)
	return langs
}

// dedupeByURL removes records sharing a canonical URL, keeping the first
// occurrence encountered.
func dedupeByURL(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := records[:0:0]
	for _, r := range records {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}

// sortRecords orders records in place: updated/stars/forks descending, name
// ascending case-insensitively. The sort is stable so re-sorting by the same
// key is idempotent.
func sortRecords(records []Record, key SortKey) {
	sort.SliceStable(records, func(i, j int) bool {
		switch key {
		case SortByStars:
			return records[i].Stars > records[j].Stars
		case SortByForks:
			return records[i].Forks > records[j].Forks
		case SortByName:
			return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
		default:
			return records[i].UpdatedAt.After(records[j].UpdatedAt)
		}
	})
}

// Refresher re-runs the aggregation on an interval under supervision.
// Implements suture's Service.
type Refresher struct {
	agg      *Aggregator
	interval time.Duration
	log      *clog.Logger
}

func NewRefresher(agg *Aggregator, interval time.Duration, log *clog.Logger) *Refresher {
	return &Refresher{agg: agg, interval: interval, log: log}
}

func (r *Refresher) Serve(ctx context.Context) error {
	r.log.Info("starting repository refresher", "interval", r.interval)
	r.agg.EnsureLoaded(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("repository refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			r.agg.Refresh(ctx)
		}
	}
}

func (r *Refresher) String() string { return "gitrepos-refresher" }
