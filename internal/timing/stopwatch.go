package timing

import (
	"fmt"
	"time"
)

// TimestampPair records a single instant against both clocks: the wall clock
// for human-readable absolute times and the monotonic elapsed time for
// drift-free duration arithmetic. Both readings are taken back to back with
// no suspension point between them.
type TimestampPair struct {
	Wall    time.Time `json:"wall"`
	Elapsed float64   `json:"elapsed_s"`
}

// Stopwatch anchors a run's timeline. The monotonic anchor never changes
// after creation except through Reset.
type Stopwatch struct {
	startWall time.Time
	startMono time.Time
}

// NewStopwatch captures the wall and monotonic anchors for a run.
func NewStopwatch() *Stopwatch {
	now := time.Now()
	return &Stopwatch{startWall: now, startMono: now}
}

// Reset re-anchors both clocks.
func (s *Stopwatch) Reset() {
	now := time.Now()
	s.startWall = now
	s.startMono = now
}

// StartWall returns the wall-clock time the stopwatch was started.
func (s *Stopwatch) StartWall() time.Time {
	return s.startWall
}

// Elapsed returns seconds since the monotonic anchor. It is always >= 0 and
// non-decreasing between reads.
func (s *Stopwatch) Elapsed() float64 {
	return time.Since(s.startMono).Seconds()
}

// ElapsedMilliseconds returns whole milliseconds since the monotonic anchor.
func (s *Stopwatch) ElapsedMilliseconds() int64 {
	return time.Since(s.startMono).Milliseconds()
}

// Pair samples both clocks for the current instant.
func (s *Stopwatch) Pair() TimestampPair {
	return TimestampPair{Wall: time.Now(), Elapsed: s.Elapsed()}
}

// FormatCountdown renders remaining milliseconds the way the stimulus screen
// displays them, e.g. "05.250s" zero padded to keep the text width stable.
func FormatCountdown(remainingMs int64) string {
	return fmt.Sprintf("%06.3fs", float64(remainingMs)/1000.0)
}
