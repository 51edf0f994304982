package obfptr

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting pointer lifecycle metrics.
// Implement this interface to integrate with monitoring systems.
//
// RecordLeak is called from the runtime's cleanup goroutine, so
// implementations must be safe for concurrent use.
type MetricsCollector interface {
	// RecordConstruct is called after each construction attempt.
	RecordConstruct(duration time.Duration, err error)

	// RecordAccess is called after each successful access.
	// mutable is true for Update.
	RecordAccess(mutable bool)

	// RecordDestroy is called after each destroy attempt.
	RecordDestroy(duration time.Duration, err error)

	// RecordLeak is called when a pointer dropped without Destroy is reclaimed.
	RecordLeak()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordConstruct(time.Duration, error) {}
func (NoopMetricsCollector) RecordAccess(bool)                    {}
func (NoopMetricsCollector) RecordDestroy(time.Duration, error)   {}
func (NoopMetricsCollector) RecordLeak()                          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	ConstructCount      atomic.Int64
	ConstructErrors     atomic.Int64
	ConstructTotalNanos atomic.Int64
	AccessCount         atomic.Int64
	MutableAccessCount  atomic.Int64
	DestroyCount        atomic.Int64
	DestroyErrors       atomic.Int64
	DestroyTotalNanos   atomic.Int64
	LeakCount           atomic.Int64
}

// RecordConstruct implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConstruct(duration time.Duration, err error) {
	b.ConstructCount.Add(1)
	b.ConstructTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ConstructErrors.Add(1)
	}
}

// RecordAccess implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAccess(mutable bool) {
	b.AccessCount.Add(1)
	if mutable {
		b.MutableAccessCount.Add(1)
	}
}

// RecordDestroy implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDestroy(duration time.Duration, err error) {
	b.DestroyCount.Add(1)
	b.DestroyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DestroyErrors.Add(1)
	}
}

// RecordLeak implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLeak() {
	b.LeakCount.Add(1)
}

// Live returns constructions minus destructions and reclaimed leaks.
func (b *BasicMetricsCollector) Live() int64 {
	ok := b.ConstructCount.Load() - b.ConstructErrors.Load()
	gone := b.DestroyCount.Load() - b.DestroyErrors.Load() + b.LeakCount.Load()
	return ok - gone
}

// AverageConstructLatency returns the mean construction latency.
func (b *BasicMetricsCollector) AverageConstructLatency() time.Duration {
	count := b.ConstructCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(b.ConstructTotalNanos.Load() / count)
}
