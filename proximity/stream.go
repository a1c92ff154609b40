package proximity

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/placewalk/placewalk/geo"
)

// Position is one device position sample.
type Position struct {
	Point          geo.Point
	AccuracyMeters float64
	Timestamp      time.Time
}

// Sample is one stream delivery: a position or a stream error.
type Sample struct {
	Position Position
	Err      error
}

// Stream delivers device position samples.
//
// Subscribe starts delivery into the returned channel and must close
// it once ctx is canceled. Samples are delivered on whatever goroutine
// the platform uses; consumers must not assume any particular one.
type Stream interface {
	Subscribe(ctx context.Context) (<-chan Sample, error)
}

// Throttle decorates a Stream with a minimum-movement filter and an
// optional minimum-interval rate gate, bounding how often downstream
// consumers run.
//
// The first position always passes. A later position is dropped when
// it moved less than MinMovementMeters from the last forwarded one,
// or when it arrives faster than MinInterval allows. Stream errors
// always pass through.
type Throttle struct {
	inner Stream

	// MinMovementMeters drops samples closer than this to the last
	// forwarded position. Zero disables the movement filter.
	MinMovementMeters float64

	// MinInterval drops samples arriving faster than this. Zero
	// disables the rate gate.
	MinInterval time.Duration
}

// NewThrottle wraps inner with the given movement filter.
func NewThrottle(inner Stream, minMovementMeters float64, minInterval time.Duration) *Throttle {
	return &Throttle{
		inner:             inner,
		MinMovementMeters: minMovementMeters,
		MinInterval:       minInterval,
	}
}

// Subscribe implements Stream.
func (t *Throttle) Subscribe(ctx context.Context) (<-chan Sample, error) {
	in, err := t.inner.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if t.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(t.MinInterval), 1)
	}

	out := make(chan Sample)
	go func() {
		defer close(out)

		var last geo.Point
		seeded := false
		for s := range in {
			if s.Err == nil {
				if seeded && t.MinMovementMeters > 0 &&
					geo.Haversine(last, s.Position.Point) < t.MinMovementMeters {
					continue
				}
				if limiter != nil && !limiter.Allow() {
					continue
				}
				last = s.Position.Point
				seeded = true
			}

			select {
			case out <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// SimulatedStream is a manually fed Stream for tests and examples.
//
// Send and Fail block until the sample is consumed or the
// subscription's context is canceled, which makes test sequences
// deterministic.
type SimulatedStream struct {
	mu     sync.Mutex
	ch     chan Sample
	ctx    context.Context
	closed bool
}

// NewSimulatedStream creates an unsubscribed simulated stream.
func NewSimulatedStream() *SimulatedStream {
	return &SimulatedStream{}
}

// Subscribe implements Stream. Only one subscription at a time is
// supported.
func (s *SimulatedStream) Subscribe(ctx context.Context) (<-chan Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Sample)
	s.ch = ch
	s.ctx = ctx
	s.closed = false

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.ch == ch && !s.closed {
			s.closed = true
			close(ch)
		}
	}()

	return ch, nil
}

// Send delivers a position sample. It reports whether the sample was
// consumed before the subscription ended.
func (s *SimulatedStream) Send(p Position) bool {
	return s.deliver(Sample{Position: p})
}

// Fail delivers a stream error.
func (s *SimulatedStream) Fail(err error) bool {
	return s.deliver(Sample{Err: err})
}

func (s *SimulatedStream) deliver(sample Sample) bool {
	// The lock is held across the send so the watcher goroutine can
	// never close the channel mid-send; deliver always bails out on
	// ctx.Done, at which point the watcher acquires the lock and
	// closes safely.
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch == nil || s.closed || s.ctx == nil {
		return false
	}

	select {
	case s.ch <- sample:
		return true
	case <-s.ctx.Done():
		return false
	}
}
