// Package timing keeps per-operation durations for the end-of-session report.
package timing

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes every recorded run of one operation.
type Summary struct {
	Operation string
	Count     int
	Total     time.Duration
	Mean      time.Duration
	Max       time.Duration
}

type Tracker struct {
	timings map[string][]time.Duration
	mu      sync.RWMutex
}

func NewTracker() *Tracker {
	return &Tracker{timings: make(map[string][]time.Duration)}
}

// Start returns a func that records the time elapsed since Start under
// operation.
func (tt *Tracker) Start(operation string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		d := time.Since(start)
		tt.Record(operation, d)
		return d
	}
}

func (tt *Tracker) Record(operation string, d time.Duration) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.timings[operation] = append(tt.timings[operation], d)
}

// Summaries returns one entry per operation, sorted by name.
func (tt *Tracker) Summaries() []Summary {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	out := make([]Summary, 0, len(tt.timings))
	for operation, timings := range tt.timings {
		values := make([]float64, len(timings))
		for i, d := range timings {
			values[i] = float64(d)
		}
		out = append(out, Summary{
			Operation: operation,
			Count:     len(timings),
			Total:     time.Duration(floats.Sum(values)),
			Mean:      time.Duration(stat.Mean(values, nil)),
			Max:       time.Duration(values[floats.MaxIdx(values)]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}
