package placewalk

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
//	    pageCounter   prometheus.Counter
//	    pageHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordFirstPage(duration time.Duration, fromCache bool) {
//	    p.pageCounter.Inc()
//	    // ... record cache state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordFirstPage is called after each first-page load.
	// fromCache reports whether the page was served without a store call.
	RecordFirstPage(duration time.Duration, fromCache bool)

	// RecordLoadMore is called after each follow-up page load.
	// entries is the number of entries the page carried.
	RecordLoadMore(entries int, duration time.Duration)

	// RecordRefresh is called after each cache refresh.
	RecordRefresh()

	// RecordVisible is called after each filter pipeline run.
	// in and out are the entry counts before and after filtering.
	RecordVisible(in, out int, duration time.Duration)

	// RecordArrival is called when a proximity watch fires.
	RecordArrival(distanceMeters float64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFirstPage(time.Duration, bool)   {}
func (NoopMetricsCollector) RecordLoadMore(int, time.Duration)     {}
func (NoopMetricsCollector) RecordRefresh()                        {}
func (NoopMetricsCollector) RecordVisible(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordArrival(float64)                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FirstPageCount      atomic.Int64
	FirstPageCacheHits  atomic.Int64
	FirstPageTotalNanos atomic.Int64
	LoadMoreCount       atomic.Int64
	LoadMoreEntries     atomic.Int64
	RefreshCount        atomic.Int64
	VisibleCount        atomic.Int64
	VisibleTotalNanos   atomic.Int64
	ArrivalCount        atomic.Int64
}

// RecordFirstPage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFirstPage(duration time.Duration, fromCache bool) {
	b.FirstPageCount.Add(1)
	b.FirstPageTotalNanos.Add(duration.Nanoseconds())
	if fromCache {
		b.FirstPageCacheHits.Add(1)
	}
}

// RecordLoadMore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoadMore(entries int, duration time.Duration) {
	b.LoadMoreCount.Add(1)
	b.LoadMoreEntries.Add(int64(entries))
}

// RecordRefresh implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRefresh() {
	b.RefreshCount.Add(1)
}

// RecordVisible implements MetricsCollector.
func (b *BasicMetricsCollector) RecordVisible(in, out int, duration time.Duration) {
	b.VisibleCount.Add(1)
	b.VisibleTotalNanos.Add(duration.Nanoseconds())
}

// RecordArrival implements MetricsCollector.
func (b *BasicMetricsCollector) RecordArrival(float64) {
	b.ArrivalCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FirstPageCount:     b.FirstPageCount.Load(),
		FirstPageCacheHits: b.FirstPageCacheHits.Load(),
		FirstPageAvgNanos:  b.getAvgFirstPageNanos(),
		LoadMoreCount:      b.LoadMoreCount.Load(),
		LoadMoreEntries:    b.LoadMoreEntries.Load(),
		RefreshCount:       b.RefreshCount.Load(),
		VisibleCount:       b.VisibleCount.Load(),
		VisibleAvgNanos:    b.getAvgVisibleNanos(),
		ArrivalCount:       b.ArrivalCount.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgFirstPageNanos() int64 {
	count := b.FirstPageCount.Load()
	if count == 0 {
		return 0
	}
	return b.FirstPageTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgVisibleNanos() int64 {
	count := b.VisibleCount.Load()
	if count == 0 {
		return 0
	}
	return b.VisibleTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FirstPageCount     int64
	FirstPageCacheHits int64
	FirstPageAvgNanos  int64
	LoadMoreCount      int64
	LoadMoreEntries    int64
	RefreshCount       int64
	VisibleCount       int64
	VisibleAvgNanos    int64
	ArrivalCount       int64
}
