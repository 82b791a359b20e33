package adapter

import (
	"sort"
	"sync"
	"time"

	m "testpulse/internal/model"
)

// MemoryStore is an in-memory ResultStore with the same contract as the
// badger-backed store. It is the test double for the analytics and report
// paths; nothing survives process exit.
type MemoryStore struct {
	mu      sync.Mutex
	records []m.TestCaseResult
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements ResultStore.
func (s *MemoryStore) Append(result m.TestCaseResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, result)

	return nil
}

// QuerySince implements ResultStore.
func (s *MemoryStore) QuerySince(cutoff time.Time) ([]m.TestCaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Walk backwards so equal timestamps keep reverse insertion order,
	// matching the on-disk key layout.
	results := make([]m.TestCaseResult, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		record := s.records[i]
		if record.Timestamp.Before(cutoff) {
			continue
		}

		results = append(results, record)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[j].Timestamp.Before(results[i].Timestamp)
	})

	return results, nil
}

// Close implements ResultStore.
func (s *MemoryStore) Close() error {
	return nil
}
