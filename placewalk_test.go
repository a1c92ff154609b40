package placewalk_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placewalk/placewalk"
	"github.com/placewalk/placewalk/filter"
	"github.com/placewalk/placewalk/geo"
	"github.com/placewalk/placewalk/imagestore"
	"github.com/placewalk/placewalk/model"
	"github.com/placewalk/placewalk/proximity"
	"github.com/placewalk/placewalk/snapshot"
	"github.com/placewalk/placewalk/store"
)

func seedEntries(n int) []model.Entry {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := make([]model.Entry, 0, n)
	for i := 0; i < n; i++ {
		category := "museum"
		if i%2 == 1 {
			category = "park"
		}
		entries = append(entries, model.Entry{
			ID:        fmt.Sprintf("e%03d", i),
			Name:      fmt.Sprintf("Place %03d", i),
			Locality:  "Paris",
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
			Coordinate: &geo.Point{
				Lat: 48.85 + float64(i)*0.001,
				Lon: 2.35,
			},
			Facets:   map[string]string{"category": category},
			ImageKey: fmt.Sprintf("images/e%03d.jpg", i),
		})
	}
	return entries
}

func TestCatalog_RequiresStore(t *testing.T) {
	_, err := placewalk.New(nil)
	require.ErrorIs(t, err, placewalk.ErrNilStore)
}

func TestCatalog_Pagination(t *testing.T) {
	ctx := context.Background()
	catalog, err := placewalk.New(store.NewMemory(seedEntries(25)...), placewalk.WithPageSize(10))
	require.NoError(t, err)

	page := catalog.FirstPage(ctx, nil)
	assert.Len(t, page.Entries, 10)
	assert.True(t, catalog.HasMore())

	for catalog.HasMore() {
		catalog.LoadMore(ctx)
	}
	entries := catalog.Entries()
	assert.Len(t, entries, 25)

	// Newest first, no duplicates.
	seen := make(map[string]bool, len(entries))
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].UpdatedAt.After(entries[i-1].UpdatedAt))
	}
	for _, e := range entries {
		assert.False(t, seen[e.ID], "duplicate entry %s", e.ID)
		seen[e.ID] = true
	}

	// Exhausted pagination keeps returning empty pages.
	assert.True(t, catalog.LoadMore(ctx).Empty())
}

func TestCatalog_MetricsAndCache(t *testing.T) {
	ctx := context.Background()
	metrics := &placewalk.BasicMetricsCollector{}
	catalog, err := placewalk.New(store.NewMemory(seedEntries(5)...),
		placewalk.WithMetricsCollector(metrics))
	require.NoError(t, err)

	f := store.Filter{"category": "museum"}
	catalog.FirstPage(ctx, f)
	catalog.FirstPage(ctx, f)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.FirstPageCount)
	assert.Equal(t, int64(1), stats.FirstPageCacheHits)

	catalog.Refresh(ctx, f)
	catalog.FirstPage(ctx, f)

	stats = metrics.GetStats()
	assert.Equal(t, int64(1), stats.RefreshCount)
	assert.Equal(t, int64(1), stats.FirstPageCacheHits, "refresh must force a store call")
}

func TestCatalog_Visible(t *testing.T) {
	ctx := context.Background()
	catalog, err := placewalk.New(store.NewMemory(seedEntries(10)...))
	require.NoError(t, err)

	catalog.FirstPage(ctx, nil)

	visible := catalog.Visible(ctx, filter.Criteria{
		Facets: map[string][]string{"category": {"park"}},
		SortBy: filter.SortByName,
	})
	require.Len(t, visible, 5)
	for i, e := range visible {
		category, ok := e.Facet("category")
		require.True(t, ok)
		assert.Equal(t, "park", category)
		if i > 0 {
			assert.LessOrEqual(t, visible[i-1].Name, e.Name)
		}
	}

	// The accumulated set is untouched.
	assert.Len(t, catalog.Entries(), 10)
}

func TestCatalog_Entry(t *testing.T) {
	ctx := context.Background()
	catalog, err := placewalk.New(store.NewMemory(seedEntries(3)...))
	require.NoError(t, err)

	e, err := catalog.Entry(ctx, "e001")
	require.NoError(t, err)
	assert.Equal(t, "Place 001", e.Name)

	_, err = catalog.Entry(ctx, "ghost")
	require.ErrorIs(t, err, placewalk.ErrNotFound)
}

func TestCatalog_ImageURLs(t *testing.T) {
	ctx := context.Background()
	images := imagestore.NewMemory()
	require.NoError(t, images.Put(ctx, "images/e000.jpg", strings.NewReader("x"), -1, "image/jpeg"))
	require.NoError(t, images.Put(ctx, "images/e001.jpg", strings.NewReader("x"), -1, "image/jpeg"))

	catalog, err := placewalk.New(store.NewMemory(seedEntries(3)...),
		placewalk.WithImageResolver(images))
	require.NoError(t, err)

	catalog.FirstPage(ctx, nil)

	urls, err := catalog.ImageURLs(ctx)
	require.NoError(t, err)
	// e002 has a key but no stored image.
	assert.Equal(t, map[string]string{
		"images/e000.jpg": "memory://images/e000.jpg",
		"images/e001.jpg": "memory://images/e001.jpg",
	}, urls)
}

func TestCatalog_ImageURLs_NoResolver(t *testing.T) {
	catalog, err := placewalk.New(store.NewMemory())
	require.NoError(t, err)

	_, err = catalog.ImageURLs(context.Background())
	require.ErrorIs(t, err, placewalk.ErrNoImageResolver)
}

func TestCatalog_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	catalog, err := placewalk.New(store.NewMemory(seedEntries(8)...))
	require.NoError(t, err)
	catalog.FirstPage(ctx, nil)

	var buf bytes.Buffer
	require.NoError(t, catalog.Snapshot(ctx, &buf, snapshot.CompressionZSTD))

	// Restore into a catalog with an empty store: offline mode.
	restored, err := placewalk.New(store.NewMemory())
	require.NoError(t, err)
	require.NoError(t, restored.Restore(ctx, &buf))

	assert.Equal(t, catalog.Entries(), restored.Entries())
	assert.False(t, restored.HasMore(), "a restored session is terminal")
}

func TestCatalog_Watch(t *testing.T) {
	ctx := context.Background()
	metrics := &placewalk.BasicMetricsCollector{}
	catalog, err := placewalk.New(store.NewMemory(seedEntries(1)...),
		placewalk.WithMetricsCollector(metrics))
	require.NoError(t, err)

	target := &geo.Point{Lat: 48.85, Lon: 2.35}
	stream := proximity.NewSimulatedStream()

	var arrivals atomic.Int32
	arrived := make(chan struct{})
	detector, err := catalog.Watch(ctx, stream, target,
		func(proximity.Position, float64) {
			arrivals.Add(1)
			close(arrived)
		}, nil)
	require.NoError(t, err)
	defer detector.Stop()

	stream.Send(proximity.Position{
		Point:     geo.Point{Lat: 48.85, Lon: 2.35},
		Timestamp: time.Now(),
	})

	select {
	case <-arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("arrival callback never fired")
	}
	assert.Equal(t, int32(1), arrivals.Load())
	assert.Equal(t, int64(1), metrics.GetStats().ArrivalCount)
}

func TestCatalog_Watch_Preconditions(t *testing.T) {
	catalog, err := placewalk.New(store.NewMemory())
	require.NoError(t, err)

	stream := proximity.NewSimulatedStream()
	noop := func(proximity.Position, float64) {}

	_, err = catalog.Watch(context.Background(), stream, nil, noop, nil)
	require.ErrorIs(t, err, placewalk.ErrNoCoordinates)

	_, err = catalog.Watch(context.Background(), stream, &geo.Point{Lat: 200, Lon: 0}, noop, nil)
	require.ErrorIs(t, err, placewalk.ErrNoCoordinates)

	_, err = catalog.Watch(context.Background(), stream, &geo.Point{}, nil, nil)
	require.ErrorIs(t, err, proximity.ErrNilArriveFunc)
}
