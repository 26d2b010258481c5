package state

import (
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/market"
)

// Store shares the bet screen's current query and the latest snapshot
// between the UI goroutine and the background poller.
type Store struct {
	mu       sync.RWMutex
	query    market.Query
	snapshot market.Snapshot
	hasSnap  bool
	decimals map[bet.Token]uint8

	// Statistics (accessed atomically)
	reads  uint64
	writes uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{decimals: make(map[bet.Token]uint8)}
}

// SetQuery records what the bet screen currently shows.
func (s *Store) SetQuery(q market.Query) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.Amount != nil {
		q.Amount = new(big.Int).Set(q.Amount)
	}
	s.query = q
	atomic.AddUint64(&s.writes, 1)
}

// Query returns a copy of the current query. It is safe to call from the
// poller goroutine.
func (s *Store) Query() market.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddUint64(&s.reads, 1)
	q := s.query
	if q.Amount != nil {
		q.Amount = new(big.Int).Set(q.Amount)
	}
	return q
}

// RecordSnapshot keeps snap as the latest and remembers the input token's
// decimals.
func (s *Store) RecordSnapshot(snap market.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snap
	s.hasSnap = true
	if snap.Precision != nil && snap.Query.Side.Valid() {
		s.decimals[snap.Query.Side.InputToken()] = *snap.Precision
	}
	atomic.AddUint64(&s.writes, 1)
}

// Snapshot returns the latest snapshot, if any.
func (s *Store) Snapshot() (market.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddUint64(&s.reads, 1)
	return s.snapshot, s.hasSnap
}

// Decimals returns the known token decimals keyed by symbol.
func (s *Store) Decimals() map[string]uint8 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddUint64(&s.reads, 1)
	out := make(map[string]uint8, len(s.decimals))
	for token, d := range s.decimals {
		out[string(token)] = d
	}
	return out
}

// GetStats returns store statistics
func (s *Store) GetStats() (reads, writes uint64) {
	return atomic.LoadUint64(&s.reads), atomic.LoadUint64(&s.writes)
}
