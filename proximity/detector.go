package proximity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/placewalk/placewalk/geo"
)

const (
	// DefaultThresholdMeters is the arrival distance threshold.
	DefaultThresholdMeters = 200
	// DefaultMinMovementMeters is the minimum movement between
	// processed samples, bounding update frequency.
	DefaultMinMovementMeters = 20
)

var (
	// ErrNilStream is returned by Start when no stream was supplied.
	ErrNilStream = errors.New("position stream is nil")
	// ErrNilArriveFunc is returned by Start when no arrival callback
	// was supplied.
	ErrNilArriveFunc = errors.New("arrival callback is nil")
	// ErrDetectorStopped is returned by Start on a stopped detector;
	// a session is never restarted, a new Detector is.
	ErrDetectorStopped = errors.New("detector already stopped")
)

// ErrInvalidThreshold indicates a non-positive arrival threshold.
type ErrInvalidThreshold struct {
	Meters float64
}

func (e *ErrInvalidThreshold) Error() string {
	return fmt.Sprintf("invalid arrival threshold: %gm", e.Meters)
}

// ErrInvalidTarget indicates a target outside the WGS 84 range.
type ErrInvalidTarget struct {
	Target geo.Point
}

func (e *ErrInvalidTarget) Error() string {
	return fmt.Sprintf("invalid target coordinate: %s", e.Target)
}

// State is a Detector lifecycle state.
type State int

const (
	StateIdle State = iota
	StateListening
	StateTriggered
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateTriggered:
		return "triggered"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ArriveFunc receives the triggering position and its distance to the
// target in meters. It is invoked exactly once per detector.
type ArriveFunc func(pos Position, distanceMeters float64)

// ErrorFunc receives stream errors. A stream error does not change the
// detector's state; the caller decides whether to Stop and start a
// fresh session.
type ErrorFunc func(err error)

// Option configures a Detector.
type Option func(*Detector)

// WithThreshold sets the arrival threshold in meters.
func WithThreshold(meters float64) Option {
	return func(d *Detector) { d.threshold = meters }
}

// WithMinMovement sets the minimum movement between samples. Zero
// disables the movement filter.
func WithMinMovement(meters float64) Option {
	return func(d *Detector) { d.minMovement = meters }
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// Detector is one geofence session against one target coordinate.
// All methods are safe for concurrent use.
type Detector struct {
	target      geo.Point
	threshold   float64
	minMovement float64
	stream      Stream
	logger      *slog.Logger
	session     uuid.UUID

	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	onArrive ArriveFunc
	onError  ErrorFunc
}

// New creates an Idle detector for target over stream.
func New(stream Stream, target geo.Point, opts ...Option) *Detector {
	d := &Detector{
		target:      target,
		threshold:   DefaultThresholdMeters,
		minMovement: DefaultMinMovementMeters,
		stream:      stream,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		session:     uuid.New(),
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current lifecycle state.
func (d *Detector) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Session returns the session ID used in log records.
func (d *Detector) Session() uuid.UUID {
	return d.session
}

// Start subscribes to the position stream and returns immediately.
//
// It is a no-op when the detector is already Listening or has already
// Triggered. Precondition violations (nil stream or callback, bad
// threshold, bad target) are rejected synchronously and the detector
// never enters Listening. ctx bounds the subscription's lifetime in
// addition to Stop.
func (d *Detector) Start(ctx context.Context, onArrive ArriveFunc, onError ErrorFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case StateListening, StateTriggered:
		return nil
	case StateStopped:
		return ErrDetectorStopped
	}

	if d.stream == nil {
		return ErrNilStream
	}
	if onArrive == nil {
		return ErrNilArriveFunc
	}
	if d.threshold <= 0 {
		return &ErrInvalidThreshold{Meters: d.threshold}
	}
	if !d.target.Valid() {
		return &ErrInvalidTarget{Target: d.target}
	}

	src := d.stream
	if d.minMovement > 0 {
		src = NewThrottle(d.stream, d.minMovement, 0)
	}

	subCtx, cancel := context.WithCancel(ctx)
	samples, err := src.Subscribe(subCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to position stream: %w", err)
	}

	d.cancel = cancel
	d.onArrive = onArrive
	d.onError = onError
	d.state = StateListening
	d.logger.Debug("proximity session listening",
		"session", d.session, "target", d.target.String(), "threshold_m", d.threshold)

	go d.consume(samples)
	return nil
}

// Stop cancels the subscription and moves the detector to Stopped.
//
// It is idempotent and safe from any context, including from inside
// the arrival callback (where the state is already Triggered and Stop
// is a no-op). Stop on an Idle detector does nothing.
func (d *Detector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Detector) stopLocked() {
	if d.state != StateListening {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.state = StateStopped
	d.logger.Debug("proximity session stopped", "session", d.session)
}

// consume runs on its own goroutine until the sample channel closes.
func (d *Detector) consume(samples <-chan Sample) {
	for s := range samples {
		if s.Err != nil {
			d.logger.Warn("position stream error", "session", d.session, "error", s.Err)
			if d.onError != nil {
				d.onError(s.Err)
			}
			continue
		}

		dist := geo.Haversine(s.Position.Point, d.target)
		if dist > d.threshold {
			continue
		}

		d.mu.Lock()
		if d.state != StateListening {
			d.mu.Unlock()
			continue
		}
		// Flip to Triggered and drop the subscription before the
		// callback runs: queued updates observe the state change and
		// can never fire a second time.
		d.state = StateTriggered
		if d.cancel != nil {
			d.cancel()
			d.cancel = nil
		}
		d.mu.Unlock()

		d.logger.Info("arrival detected",
			"session", d.session, "distance_m", dist, "threshold_m", d.threshold)
		d.onArrive(s.Position, dist)

		d.mu.Lock()
		d.state = StateStopped
		d.mu.Unlock()
		return
	}
}
