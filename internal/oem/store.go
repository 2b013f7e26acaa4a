package oem

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/owens3364/coe332midterm/internal/metrics"
)

// DefaultTTL is how long a fetched dataset is served before a refetch.
// Matches the upstream publication cadence: the document changes rarely,
// so 15 minutes keeps requests to NASA infrequent.
const DefaultTTL = 15 * time.Minute

// DocumentSource retrieves the raw OEM XML document.
type DocumentSource interface {
	Fetch(ctx context.Context) ([]byte, error)
	SourceURL() string
}

// Store provides thread-safe access to the current dataset snapshot,
// refetching from the source when the snapshot exceeds the staleness TTL.
// Snapshots are immutable and swapped atomically; concurrent stale readers
// are serialized onto a single upstream request.
type Store struct {
	source  DocumentSource
	ttl     time.Duration
	clock   clockwork.Clock
	cache   *Cache // optional raw-document disk cache
	logger  *slog.Logger
	dataset atomic.Pointer[Dataset]
	mu      sync.Mutex // serializes refetches
}

// NewStore creates a Store. A nil clock selects the real clock; a zero ttl
// selects DefaultTTL; cache may be nil to disable disk persistence.
func NewStore(source DocumentSource, ttl time.Duration, clock clockwork.Clock, cache *Cache, logger *slog.Logger) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		source: source,
		ttl:    ttl,
		clock:  clock,
		cache:  cache,
		logger: logger,
	}
}

// Current returns a fresh dataset snapshot, refetching from the upstream
// source if the held snapshot is absent or older than the TTL. A failed
// refetch is a hard failure: the error is returned rather than silently
// serving stale data.
func (s *Store) Current(ctx context.Context) (*Dataset, error) {
	if ds := s.dataset.Load(); ds != nil && s.clock.Since(ds.FetchedAt) < s.ttl {
		return ds, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have refreshed while we waited for the lock.
	if ds := s.dataset.Load(); ds != nil && s.clock.Since(ds.FetchedAt) < s.ttl {
		return ds, nil
	}

	return s.refresh(ctx)
}

// refresh fetches, parses, and swaps in a new snapshot. Caller holds s.mu.
func (s *Store) refresh(ctx context.Context) (*Dataset, error) {
	raw, err := s.source.Fetch(ctx)
	if err != nil {
		metrics.RecordFetch("fetch_error")
		return nil, err
	}

	ds, err := Parse(bytes.NewReader(raw))
	if err != nil {
		metrics.RecordFetch("parse_error")
		return nil, err
	}

	ds.FetchedAt = s.clock.Now()
	s.dataset.Store(ds)
	metrics.RecordFetch("success")
	metrics.SetDatasetEpochs(len(ds.Epochs))

	if s.cache != nil {
		if err := s.cache.Write(raw, ds.FetchedAt); err != nil {
			s.logger.Warn("failed to write OEM disk cache", "error", err)
		}
	}

	s.logger.Info("OEM dataset refreshed",
		"source", s.source.SourceURL(),
		"epochs", len(ds.Epochs),
		"comments", len(ds.Comments),
	)

	return ds, nil
}

// Seed installs a dataset without fetching, e.g. one recovered from the
// disk cache at startup. FetchedAt must already be set by the caller.
func (s *Store) Seed(ds *Dataset) {
	s.dataset.Store(ds)
	metrics.SetDatasetEpochs(len(ds.Epochs))
}

// Peek returns the held snapshot without freshness checks, or nil.
func (s *Store) Peek() *Dataset {
	return s.dataset.Load()
}

// AgeSeconds returns the age of the held snapshot in seconds, or -1 if
// no snapshot is loaded.
func (s *Store) AgeSeconds() float64 {
	ds := s.dataset.Load()
	if ds == nil {
		return -1
	}
	return s.clock.Since(ds.FetchedAt).Seconds()
}

// Clock returns the store's time source so request handlers share it.
func (s *Store) Clock() clockwork.Clock {
	return s.clock
}
