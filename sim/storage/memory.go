package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps runs in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string]RunRecord
	trials map[string][]TrialRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:   make(map[string]RunRecord),
		trials: make(map[string][]TrialRecord),
	}
}

func (s *MemoryStore) Init(context.Context) error { return nil }

func (s *MemoryStore) SaveRun(_ context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) SaveTrials(_ context.Context, trials []TrialRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range trials {
		existing := s.trials[t.RunID]
		replaced := false
		for i := range existing {
			if existing[i].Index == t.Index {
				existing[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, t)
		}
		s.trials[t.RunID] = existing
	}
	return nil
}

func (s *MemoryStore) ListTrials(_ context.Context, runID string) ([]TrialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]TrialRecord(nil), s.trials[runID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}
