// Package metrics tracks in-process counters for query executions.
package metrics

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of the query counters.
type Snapshot struct {
	QueryCount       uint64
	ErrorCount       uint64
	TotalQueryTime   time.Duration
	AverageQueryTime time.Duration
	LastQueryTime    time.Time
}

var (
	mu    sync.Mutex
	state Snapshot
)

// RecordQuery records a completed query execution.
func RecordQuery(duration time.Duration, err error) {
	mu.Lock()
	defer mu.Unlock()

	state.QueryCount++
	if err != nil {
		state.ErrorCount++
	}
	state.TotalQueryTime += duration
	state.AverageQueryTime = state.TotalQueryTime / time.Duration(state.QueryCount)
	state.LastQueryTime = time.Now()
}

// Get returns the current counters.
func Get() Snapshot {
	mu.Lock()
	defer mu.Unlock()
	return state
}

// Reset clears the counters. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	state = Snapshot{}
}
