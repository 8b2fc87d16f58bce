package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/ruphel/neat-python/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	allocators  map[string]model.AllocatorState
	policies    map[string]model.PolicyRecord
	traces      map[string]model.SweepTrace
	traceOrder  []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.allocators = make(map[string]model.AllocatorState)
	s.policies = make(map[string]model.PolicyRecord)
	s.traces = make(map[string]model.SweepTrace)
	s.traceOrder = nil
	return nil
}

func (s *MemoryStore) SaveAllocatorState(_ context.Context, state model.AllocatorState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.allocators[state.Scope] = state
	return nil
}

func (s *MemoryStore) GetAllocatorState(_ context.Context, scope string) (model.AllocatorState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.AllocatorState{}, false, errNotInitialized
	}
	state, ok := s.allocators[scope]
	return state, ok, nil
}

func (s *MemoryStore) SavePolicy(_ context.Context, policy model.PolicyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.policies[policy.Scope] = policy
	return nil
}

func (s *MemoryStore) GetPolicy(_ context.Context, scope string) (model.PolicyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.PolicyRecord{}, false, errNotInitialized
	}
	policy, ok := s.policies[scope]
	return policy, ok, nil
}

func (s *MemoryStore) SaveSweepTrace(_ context.Context, trace model.SweepTrace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	if _, exists := s.traces[trace.RunID]; !exists {
		s.traceOrder = append(s.traceOrder, trace.RunID)
	}
	s.traces[trace.RunID] = cloneTrace(trace)
	return nil
}

func (s *MemoryStore) GetSweepTrace(_ context.Context, runID string) (model.SweepTrace, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.SweepTrace{}, false, errNotInitialized
	}
	trace, ok := s.traces[runID]
	if !ok {
		return model.SweepTrace{}, false, nil
	}
	return cloneTrace(trace), true, nil
}

func (s *MemoryStore) ListSweepTraces(_ context.Context, limit int) ([]model.SweepTrace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	out := make([]model.SweepTrace, 0, len(s.traceOrder))
	for i := len(s.traceOrder) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, cloneTrace(s.traces[s.traceOrder[i]]))
	}
	return out, nil
}

func cloneTrace(trace model.SweepTrace) model.SweepTrace {
	trace.Inputs = cloneValues(trace.Inputs)
	trace.Outputs = cloneValues(trace.Outputs)
	return trace
}

func cloneValues(in map[int]float64) map[int]float64 {
	if in == nil {
		return nil
	}
	out := make(map[int]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
