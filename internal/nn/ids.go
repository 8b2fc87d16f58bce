package nn

import (
	"fmt"
	"sync/atomic"
)

// IDAllocator hands out neuron ids from a monotonic counter. Ids are never
// reused unless the owner calls Reset or Restore.
type IDAllocator struct {
	counter atomic.Int64
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

var defaultIDs = NewIDAllocator()

// DefaultIDAllocator is shared by every caller in the process.
func DefaultIDAllocator() *IDAllocator {
	return defaultIDs
}

func (a *IDAllocator) Next() int {
	return int(a.counter.Add(1))
}

// Current returns the last id handed out, or 0 if none was.
func (a *IDAllocator) Current() int {
	return int(a.counter.Load())
}

func (a *IDAllocator) Reset() {
	a.counter.Store(0)
}

// Restore resumes the sequence so that the next id is counter+1.
func (a *IDAllocator) Restore(counter int) error {
	if counter < 0 {
		return fmt.Errorf("%w: allocator counter must be >= 0, got %d", ErrInvalidArgument, counter)
	}
	a.counter.Store(int64(counter))
	return nil
}
