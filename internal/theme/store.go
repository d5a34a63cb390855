package theme

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	clog "github.com/charmbracelet/log"

	"github.com/pdwk/pdwk-dev/internal/metrics"
)

// ErrUnknownTheme is returned when a set request names a theme outside the
// closed set.
var ErrUnknownTheme = errors.New("unknown theme")

// Transition describes an applied theme change: the marker classes to strip
// from the document root and the one to attach. Removed always covers every
// known marker so a stale class from an older theme can never linger.
type Transition struct {
	Previous Theme    `json:"previous"`
	Current  Theme    `json:"current"`
	Removed  []string `json:"removed"`
	Applied  string   `json:"applied"`
	Chrome   string   `json:"chrome"`
}

// Store holds the persisted current theme. Selection survives restarts via
// a single settings row; an invalid or missing persisted value falls back to
// the default theme rather than erroring.
type Store struct {
	db  *sql.DB
	log *clog.Logger

	mu        sync.Mutex
	current   Theme
	observers []func(Transition)
}

const settingsKey = "theme"

func NewStore(db *sql.DB, log *clog.Logger) (*Store, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("create settings table: %w", err)
	}

	s := &Store{db: db, log: log, current: Default}

	var persisted string
	err = db.QueryRow(`SELECT value FROM settings WHERE key = ?`, settingsKey).Scan(&persisted)
	switch {
	case err == nil:
		if t := Theme(persisted); t.IsValid() {
			s.current = t
		} else {
			log.Warn("ignoring invalid persisted theme", "value", persisted)
		}
	case errors.Is(err, sql.ErrNoRows):
		// first run, nothing persisted yet
	default:
		return nil, fmt.Errorf("load persisted theme: %w", err)
	}
	return s, nil
}

// Current returns the active theme.
func (s *Store) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers an observer called after every applied transition.
// Observers run synchronously under the store lock and must not call back
// into the store.
func (s *Store) Subscribe(fn func(Transition)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Set switches the active theme, persists the selection, and notifies
// observers. Setting the already-active theme is a no-op transition that
// still reports the full removal list.
func (s *Store) Set(t Theme) (Transition, error) {
	if !t.IsValid() {
		return Transition{}, fmt.Errorf("%w: %q", ErrUnknownTheme, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		settingsKey, string(t))
	if err != nil {
		return Transition{}, fmt.Errorf("persist theme %q: %w", t, err)
	}

	tr := Transition{
		Previous: s.current,
		Current:  t,
		Removed:  removalList(t),
		Applied:  t.MarkerClass(),
		Chrome:   t.ChromeColor(),
	}
	s.current = t
	metrics.ThemeTransitions.WithLabelValues(string(t)).Inc()

	for _, fn := range s.observers {
		fn(tr)
	}
	return tr, nil
}

// removalList is every marker class except the one being applied.
func removalList(applied Theme) []string {
	out := make([]string, 0, len(All())-1)
	for _, t := range All() {
		if t == applied {
			continue
		}
		out = append(out, t.MarkerClass())
	}
	return out
}
