package store

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no probe has been recorded for a source.
	ErrNotFound = errors.New("no probe results for source")
)

// ProbeResult is the outcome of one upstream probe.
type ProbeResult struct {
	Source  string        `json:"source"`
	At      time.Time     `json:"at"`
	OK      bool          `json:"ok"`
	Error   string        `json:"error,omitempty"`
	Latency time.Duration `json:"latencyNs"`
}

// ProbeHistory holds a time-ordered list of results for a source.
type ProbeHistory struct {
	Results []ProbeResult
}

// MemoryStore is a concurrency-safe in-memory store of probe results.
type MemoryStore struct {
	mu sync.RWMutex

	// key: source name
	data map[string]*ProbeHistory

	maxHistory int
}

// NewMemoryStore creates a MemoryStore. If maxHistory is <= 0 it is unlimited.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*ProbeHistory),
		maxHistory: maxHistory,
	}
}

// Save appends a result for its source and enforces retention.
func (s *MemoryStore) Save(result ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[result.Source]
	if !ok {
		history = &ProbeHistory{}
		s.data[result.Source] = history
	}

	history.Results = append(history.Results, result)

	if s.maxHistory > 0 && len(history.Results) > s.maxHistory {
		over := len(history.Results) - s.maxHistory
		history.Results = history.Results[over:]
	}
}

// Latest returns the most recent result for a source.
func (s *MemoryStore) Latest(source string) (ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[source]
	if !ok || len(history.Results) == 0 {
		return ProbeResult{}, ErrNotFound
	}
	return history.Results[len(history.Results)-1], nil
}

// LatestAll returns the latest result of every source, sorted by source name.
func (s *MemoryStore) LatestAll() []ProbeResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ProbeResult, 0, len(s.data))
	for _, history := range s.data {
		if len(history.Results) > 0 {
			out = append(out, history.Results[len(history.Results)-1])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}
