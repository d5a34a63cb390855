package nowplaying

import (
	"sync"
	"sync/atomic"
)

// Store holds the latest committed snapshot. Poll cycles may overlap when the
// network is slow relative to the interval, so every cycle takes a sequence
// number from Begin and the store refuses commits that arrive out of order:
// a straggler from an older cycle can never overwrite newer state.
type Store struct {
	issued atomic.Uint64

	mu        sync.RWMutex
	applied   uint64
	state     State
	snap      *Snapshot
	topArtist string
}

func NewStore() *Store {
	return &Store{state: StateLoading}
}

// Begin allocates the sequence number for a new poll cycle.
func (s *Store) Begin() uint64 {
	return s.issued.Add(1)
}

// Commit installs the cycle's result. A nil snapshot marks the cycle as
// empty (nothing playing, or the primary fetch failed). Returns false when
// the commit is stale, i.e. a newer cycle already applied.
func (s *Store) Commit(cycle uint64, snap *Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cycle <= s.applied {
		return false
	}
	s.applied = cycle
	if snap == nil {
		s.state = StateEmpty
		s.snap = nil
	} else {
		s.state = StatePopulated
		s.snap = snap
	}
	return true
}

// SetTopArtist updates the low-frequency top-artist signal. It is
// independent of the snapshot sequence: the signal is cosmetic and the
// freshest value always wins.
func (s *Store) SetTopArtist(name string) {
	s.mu.Lock()
	s.topArtist = name
	s.mu.Unlock()
}

// View returns the current render state. The snapshot pointer is shared but
// snapshots are immutable once committed.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		State:     s.state,
		Snapshot:  s.snap,
		TopArtist: s.topArtist,
	}
	if s.snap != nil && s.topArtist != "" {
		v.IsTopArtist = s.snap.Artist == s.topArtist
	}
	return v
}
