package meshgo

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/meshgo/handle"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    createCounter *prometheus.CounterVec
//	    skinHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordCreate(t handle.Type, count int, d time.Duration, err error) {
//	    p.createCounter.WithLabelValues(t.String()).Add(float64(count))
//	}
type MetricsCollector interface {
	// RecordCreate is called after entities of type t are created, one at
	// a time or as a reserved block.
	RecordCreate(t handle.Type, count int, duration time.Duration, err error)

	// RecordDelete is called after each delete call with the number of
	// entities it was asked to delete.
	RecordDelete(count int, duration time.Duration, err error)

	// RecordTagWrite is called after tag values are written.
	RecordTagWrite(count int, duration time.Duration, err error)

	// RecordSkin is called after each skin computation.
	RecordSkin(inputs, skin int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCreate(handle.Type, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDelete(int, time.Duration, error)              {}
func (NoopMetricsCollector) RecordTagWrite(int, time.Duration, error)            {}
func (NoopMetricsCollector) RecordSkin(int, int, time.Duration, error)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CreateCount      atomic.Int64
	CreateEntities   atomic.Int64
	CreateErrors     atomic.Int64
	CreateTotalNanos atomic.Int64
	DeleteCount      atomic.Int64
	DeleteEntities   atomic.Int64
	DeleteErrors     atomic.Int64
	TagWriteCount    atomic.Int64
	TagWriteValues   atomic.Int64
	TagWriteErrors   atomic.Int64
	SkinCount        atomic.Int64
	SkinInputs       atomic.Int64
	SkinSides        atomic.Int64
	SkinErrors       atomic.Int64
	SkinTotalNanos   atomic.Int64
}

// RecordCreate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCreate(_ handle.Type, count int, duration time.Duration, err error) {
	b.CreateCount.Add(1)
	b.CreateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CreateErrors.Add(1)
		return
	}
	b.CreateEntities.Add(int64(count))
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(count int, duration time.Duration, err error) {
	b.DeleteCount.Add(1)
	b.DeleteEntities.Add(int64(count))
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordTagWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTagWrite(count int, duration time.Duration, err error) {
	b.TagWriteCount.Add(1)
	if err != nil {
		b.TagWriteErrors.Add(1)
		return
	}
	b.TagWriteValues.Add(int64(count))
}

// RecordSkin implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSkin(inputs, skin int, duration time.Duration, err error) {
	b.SkinCount.Add(1)
	b.SkinInputs.Add(int64(inputs))
	b.SkinTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SkinErrors.Add(1)
		return
	}
	b.SkinSides.Add(int64(skin))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CreateCount:    b.CreateCount.Load(),
		CreateEntities: b.CreateEntities.Load(),
		CreateErrors:   b.CreateErrors.Load(),
		CreateAvgNanos: avg(b.CreateTotalNanos.Load(), b.CreateCount.Load()),
		DeleteCount:    b.DeleteCount.Load(),
		DeleteEntities: b.DeleteEntities.Load(),
		DeleteErrors:   b.DeleteErrors.Load(),
		TagWriteCount:  b.TagWriteCount.Load(),
		TagWriteValues: b.TagWriteValues.Load(),
		TagWriteErrors: b.TagWriteErrors.Load(),
		SkinCount:      b.SkinCount.Load(),
		SkinInputs:     b.SkinInputs.Load(),
		SkinSides:      b.SkinSides.Load(),
		SkinErrors:     b.SkinErrors.Load(),
		SkinAvgNanos:   avg(b.SkinTotalNanos.Load(), b.SkinCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CreateCount    int64
	CreateEntities int64
	CreateErrors   int64
	CreateAvgNanos int64
	DeleteCount    int64
	DeleteEntities int64
	DeleteErrors   int64
	TagWriteCount  int64
	TagWriteValues int64
	TagWriteErrors int64
	SkinCount      int64
	SkinInputs     int64
	SkinSides      int64
	SkinErrors     int64
	SkinAvgNanos   int64
}
