// Package proximity turns a live position stream into an at-most-once
// arrival event against one target coordinate.
//
// A Detector is a single-session state machine:
//
//	Idle → Listening → Triggered → Stopped
//
// Start subscribes to the stream and returns immediately; all work
// happens on stream delivery. The first sample within the threshold
// flips the state to Triggered, cancels the subscription before the
// arrival callback runs (so a slow or re-entrant callback can never
// cause a second trigger from a queued update), fires the callback
// exactly once and lands in Stopped. Stopped is terminal: a detector
// is one session, and a fresh session means a fresh Detector.
//
// A detector that never reaches the threshold simply stays Listening
// until the caller stops it — that is expected, not an error. The
// stream subscription is the only held resource; Stop releases it on
// every path and is safe to call from any goroutine, including from
// inside the arrival callback itself.
package proximity
