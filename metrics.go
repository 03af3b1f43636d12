package rett

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    useAtomCounter prometheus.Counter
//	    removeCounter  prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordUseAtom(duration time.Duration, created bool, err error) {
//	    p.useAtomCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordUseAtom is called after each atom insert-or-resolve.
	// created is false when the value was deduplicated to a live element.
	RecordUseAtom(duration time.Duration, created bool, err error)

	// RecordUseLink is called after each link insert-or-resolve.
	// created is false when the endpoint pair was deduplicated.
	RecordUseLink(duration time.Duration, created bool, err error)

	// RecordCreateEntity is called after each entity creation.
	RecordCreateEntity(duration time.Duration)

	// RecordSetDescription is called after each description update.
	RecordSetDescription(duration time.Duration, err error)

	// RecordRemove is called after each removal attempt.
	RecordRemove(duration time.Duration, err error)

	// RecordSnapshotSave is called after each snapshot save.
	// bytes is the encoded snapshot size (0 when encoding failed).
	RecordSnapshotSave(duration time.Duration, bytes int64, err error)

	// RecordSnapshotLoad is called after each snapshot load.
	// bytes is the snapshot size read, 0 if unknown.
	RecordSnapshotLoad(duration time.Duration, bytes int64, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordUseAtom(time.Duration, bool, error)       {}
func (NoopMetricsCollector) RecordUseLink(time.Duration, bool, error)       {}
func (NoopMetricsCollector) RecordCreateEntity(time.Duration)               {}
func (NoopMetricsCollector) RecordSetDescription(time.Duration, error)      {}
func (NoopMetricsCollector) RecordRemove(time.Duration, error)              {}
func (NoopMetricsCollector) RecordSnapshotSave(time.Duration, int64, error) {}
func (NoopMetricsCollector) RecordSnapshotLoad(time.Duration, int64, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	UseAtomCount      atomic.Int64
	UseAtomHits       atomic.Int64 // deduplicated resolves
	UseAtomErrors     atomic.Int64
	UseAtomTotalNanos atomic.Int64

	UseLinkCount      atomic.Int64
	UseLinkHits       atomic.Int64 // deduplicated resolves
	UseLinkErrors     atomic.Int64
	UseLinkTotalNanos atomic.Int64

	EntityCount atomic.Int64

	SetDescriptionCount  atomic.Int64
	SetDescriptionErrors atomic.Int64

	RemoveCount  atomic.Int64
	RemoveErrors atomic.Int64

	SnapshotSaveCount  atomic.Int64
	SnapshotSaveErrors atomic.Int64
	SnapshotSaveBytes  atomic.Int64

	SnapshotLoadCount  atomic.Int64
	SnapshotLoadErrors atomic.Int64
	SnapshotLoadBytes  atomic.Int64
}

// RecordUseAtom implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUseAtom(duration time.Duration, created bool, err error) {
	b.UseAtomCount.Add(1)
	b.UseAtomTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.UseAtomErrors.Add(1)
	} else if !created {
		b.UseAtomHits.Add(1)
	}
}

// RecordUseLink implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUseLink(duration time.Duration, created bool, err error) {
	b.UseLinkCount.Add(1)
	b.UseLinkTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.UseLinkErrors.Add(1)
	} else if !created {
		b.UseLinkHits.Add(1)
	}
}

// RecordCreateEntity implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCreateEntity(duration time.Duration) {
	b.EntityCount.Add(1)
}

// RecordSetDescription implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSetDescription(duration time.Duration, err error) {
	b.SetDescriptionCount.Add(1)
	if err != nil {
		b.SetDescriptionErrors.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(duration time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordSnapshotSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotSave(duration time.Duration, bytes int64, err error) {
	b.SnapshotSaveCount.Add(1)
	b.SnapshotSaveBytes.Add(bytes)
	if err != nil {
		b.SnapshotSaveErrors.Add(1)
	}
}

// RecordSnapshotLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotLoad(duration time.Duration, bytes int64, err error) {
	b.SnapshotLoadCount.Add(1)
	b.SnapshotLoadBytes.Add(bytes)
	if err != nil {
		b.SnapshotLoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		UseAtomCount:         b.UseAtomCount.Load(),
		UseAtomHits:          b.UseAtomHits.Load(),
		UseAtomErrors:        b.UseAtomErrors.Load(),
		UseAtomAvgNanos:      b.getAvgUseAtomNanos(),
		UseLinkCount:         b.UseLinkCount.Load(),
		UseLinkHits:          b.UseLinkHits.Load(),
		UseLinkErrors:        b.UseLinkErrors.Load(),
		UseLinkAvgNanos:      b.getAvgUseLinkNanos(),
		EntityCount:          b.EntityCount.Load(),
		SetDescriptionCount:  b.SetDescriptionCount.Load(),
		SetDescriptionErrors: b.SetDescriptionErrors.Load(),
		RemoveCount:          b.RemoveCount.Load(),
		RemoveErrors:         b.RemoveErrors.Load(),
		SnapshotSaveCount:    b.SnapshotSaveCount.Load(),
		SnapshotSaveErrors:   b.SnapshotSaveErrors.Load(),
		SnapshotSaveBytes:    b.SnapshotSaveBytes.Load(),
		SnapshotLoadCount:    b.SnapshotLoadCount.Load(),
		SnapshotLoadErrors:   b.SnapshotLoadErrors.Load(),
		SnapshotLoadBytes:    b.SnapshotLoadBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgUseAtomNanos() int64 {
	count := b.UseAtomCount.Load()
	if count == 0 {
		return 0
	}
	return b.UseAtomTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgUseLinkNanos() int64 {
	count := b.UseLinkCount.Load()
	if count == 0 {
		return 0
	}
	return b.UseLinkTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	UseAtomCount         int64
	UseAtomHits          int64
	UseAtomErrors        int64
	UseAtomAvgNanos      int64
	UseLinkCount         int64
	UseLinkHits          int64
	UseLinkErrors        int64
	UseLinkAvgNanos      int64
	EntityCount          int64
	SetDescriptionCount  int64
	SetDescriptionErrors int64
	RemoveCount          int64
	RemoveErrors         int64
	SnapshotSaveCount    int64
	SnapshotSaveErrors   int64
	SnapshotSaveBytes    int64
	SnapshotLoadCount    int64
	SnapshotLoadErrors   int64
	SnapshotLoadBytes    int64
}
