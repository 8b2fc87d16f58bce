package storage

import (
	"context"

	"github.com/ruphel/neat-python/internal/model"
)

// Store persists the state a host keeps between evaluation sessions: id
// allocator counters, activation policies and sweep traces. Network
// topologies are never stored.
type Store interface {
	Init(ctx context.Context) error
	SaveAllocatorState(ctx context.Context, state model.AllocatorState) error
	GetAllocatorState(ctx context.Context, scope string) (model.AllocatorState, bool, error)
	SavePolicy(ctx context.Context, policy model.PolicyRecord) error
	GetPolicy(ctx context.Context, scope string) (model.PolicyRecord, bool, error)
	SaveSweepTrace(ctx context.Context, trace model.SweepTrace) error
	GetSweepTrace(ctx context.Context, runID string) (model.SweepTrace, bool, error)
	// ListSweepTraces returns traces newest first; limit <= 0 means all.
	ListSweepTraces(ctx context.Context, limit int) ([]model.SweepTrace, error)
}
