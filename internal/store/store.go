// Package store holds the portal's record set in memory and derives typed
// views from it. The set is only ever replaced as a whole by Reload.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"barangay/pkg/types"

	"github.com/sirupsen/logrus"
)

type Fetcher interface {
	FetchAll(ctx context.Context) ([]types.Record, error)
}

type Store struct {
	fetcher Fetcher
	logger  *logrus.Logger

	mu         sync.RWMutex
	records    []types.Record
	generation uint64
	loadedAt   time.Time
}

func New(fetcher Fetcher, logger *logrus.Logger) *Store {
	return &Store{fetcher: fetcher, logger: logger}
}

// Reload replaces the record set with a fresh fetch. When the fetch fails
// the previous set is kept untouched.
func (s *Store) Reload(ctx context.Context) error {
	records, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("reload failed, keeping previous records")
		return fmt.Errorf("failed to reload records: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.generation++
	s.loadedAt = time.Now()
	generation := s.generation
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"records":    len(records),
		"generation": generation,
	}).Debug("records reloaded")

	return nil
}

// Generation counts successful reloads.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Records returns copies of every record in fetch order.
func (s *Store) Records() []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Record, 0, len(s.records))
	for _, r := range s.records {
		if clone, err := types.CloneRecord(r); err == nil {
			out = append(out, clone)
		}
	}
	return out
}

// Record looks up a record of the given sheet by id and returns a copy.
func (s *Store) Record(sheet types.SheetType, id string) (types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.Sheet() == sheet && r.RecordID() == id {
			return types.CloneRecord(r)
		}
	}

	return nil, fmt.Errorf("%w: %s %s", types.ErrRecordNotFound, sheet, id)
}

// collect copies every record of type T out of the set, in fetch order.
func collect[T any, P interface {
	*T
	types.Record
}](s *Store) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0)
	for _, r := range s.records {
		if p, ok := r.(P); ok {
			out = append(out, *p)
		}
	}
	return out
}

func find[T any, P interface {
	*T
	types.Record
}](s *Store, match func(P) bool) (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if p, ok := r.(P); ok && match(p) {
			v := *p
			return &v, true
		}
	}
	return nil, false
}
