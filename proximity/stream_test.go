package proximity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/placewalk/placewalk/geo"
)

func collect(t *testing.T, ch <-chan Sample, n int) []Sample {
	t.Helper()
	out := make([]Sample, 0, n)
	for len(out) < n {
		select {
		case s, ok := <-ch:
			require.True(t, ok, "stream closed before %d samples arrived", n)
			out = append(out, s)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d samples", len(out), n)
		}
	}
	return out
}

func TestThrottle_MinMovement(t *testing.T) {
	defer goleak.VerifyNone(t)

	inner := NewSimulatedStream()
	throttled := NewThrottle(inner, 20, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := throttled.Subscribe(ctx)
	require.NoError(t, err)

	got := make(chan Sample, 16)
	go func() {
		for s := range ch {
			got <- s
		}
	}()

	origin := geo.Point{Lat: 10, Lon: 10}
	// First sample always passes.
	inner.Send(Position{Point: origin})
	// ~5 m shuffle: dropped.
	inner.Send(Position{Point: geo.Point{Lat: 10 + degreesForMeters(5), Lon: 10}})
	// ~50 m: passes.
	inner.Send(Position{Point: geo.Point{Lat: 10 + degreesForMeters(50), Lon: 10}})

	first := <-got
	assert.InDelta(t, 10.0, first.Position.Point.Lat, 1e-9)

	select {
	case s := <-got:
		dist := geo.Haversine(origin, s.Position.Point)
		assert.InDelta(t, 50, dist, 5, "the 5m shuffle should have been dropped")
	case <-time.After(2 * time.Second):
		t.Fatal("50m sample never arrived")
	}
}

func TestThrottle_ErrorsAlwaysPass(t *testing.T) {
	defer goleak.VerifyNone(t)

	inner := NewSimulatedStream()
	throttled := NewThrottle(inner, 1000, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := throttled.Subscribe(ctx)
	require.NoError(t, err)

	done := make(chan Sample, 4)
	go func() {
		for s := range ch {
			done <- s
		}
	}()

	inner.Send(Position{Point: geo.Point{Lat: 1, Lon: 1}})
	inner.Fail(errors.New("gps glitch"))

	samples := []Sample{<-done, <-done}
	require.NoError(t, samples[0].Err)
	assert.EqualError(t, samples[1].Err, "gps glitch")
}

func TestThrottle_MinInterval(t *testing.T) {
	defer goleak.VerifyNone(t)

	inner := NewSimulatedStream()
	// A generous interval so the burst after the first sample is
	// reliably gated.
	throttled := NewThrottle(inner, 0, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := throttled.Subscribe(ctx)
	require.NoError(t, err)

	got := make(chan Sample, 8)
	go func() {
		for s := range ch {
			got <- s
		}
	}()

	inner.Send(Position{Point: geo.Point{Lat: 1, Lon: 1}})
	inner.Send(Position{Point: geo.Point{Lat: 2, Lon: 2}})
	inner.Send(Position{Point: geo.Point{Lat: 3, Lon: 3}})

	<-got
	select {
	case s := <-got:
		t.Fatalf("rate gate let a burst sample through: %+v", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSimulatedStream_SendAfterCancelReportsFalse(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewSimulatedStream()
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.Subscribe(ctx)
	require.NoError(t, err)

	go func() {
		for range ch {
		}
	}()

	require.True(t, s.Send(Position{Point: geo.Point{Lat: 1, Lon: 1}}))
	cancel()

	require.Eventually(t, func() bool {
		return !s.Send(Position{Point: geo.Point{Lat: 1, Lon: 1}})
	}, 2*time.Second, time.Millisecond)
}
