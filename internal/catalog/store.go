package catalog

import (
	"sync/atomic"
	"time"
)

// Phase is the lifecycle state of the loaded dataset.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseLoaded
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoaded:
		return "loaded"
	case PhaseError:
		return "error"
	default:
		return "loading"
	}
}

// Snapshot is an immutable view of the dataset at one point in time.
type Snapshot struct {
	Phase    Phase
	Catalog  Catalog
	Err      error
	Source   string
	LoadedAt time.Time
}

// Loaded builds a successful snapshot. The catalog is deep-copied.
func Loaded(source string, c Catalog, at time.Time) Snapshot {
	return Snapshot{Phase: PhaseLoaded, Catalog: c.Clone(), Source: source, LoadedAt: at}
}

// Failed builds an error snapshot. The catalog is empty; no partial data is kept.
func Failed(source string, err error, at time.Time) Snapshot {
	return Snapshot{Phase: PhaseError, Err: err, Source: source, LoadedAt: at}
}

// Store holds the current snapshot. Reads are lock-free; Set replaces it wholesale.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store in the Loading phase with empty containers.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{Phase: PhaseLoading})
	return s
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{Phase: PhaseLoading}
	}
	return *s.current.Load()
}

// Set replaces the current snapshot.
func (s *Store) Set(snap Snapshot) {
	s.current.Store(&snap)
}
