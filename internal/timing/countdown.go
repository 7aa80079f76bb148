package timing

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultTickInterval paces the cooperative countdown used behind a live
	// display. 50ms keeps the visible text smooth without burning a core.
	DefaultTickInterval = 50 * time.Millisecond

	// DefaultStep paces the blocking countdown's sleep-poll loop.
	DefaultStep = 10 * time.Millisecond

	// CuePollInterval paces the cue-train loop. It bounds how far a cue can
	// land from its scheduled instant.
	CuePollInterval = time.Millisecond
)

// ceilMillis rounds a duration up to whole milliseconds, clamped at zero.
func ceilMillis(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Millisecond - 1) / time.Millisecond)
}

// StartCountdown runs a countdown over duration d on its own goroutine,
// invoking onTick with the remaining whole milliseconds. The first tick fires
// immediately with the full duration rounded up. Remaining time is recomputed
// from the monotonic clock on every tick rather than from tick counts, so the
// display cannot drift. onFinished fires only on natural completion, never
// when ctx is cancelled or the returned stop function is called. Negative d
// is clamped to zero: one tick of 0, then onFinished.
//
// The returned stop function is idempotent and releases the ticker.
func StartCountdown(ctx context.Context, d time.Duration, onTick func(remainingMs int64), onFinished func()) (stop func()) {
	if d < 0 {
		d = 0
	}
	start := time.Now()
	onTick(ceilMillis(d))

	stopCh := make(chan struct{})
	var once sync.Once
	stop = func() { once.Do(func() { close(stopCh) }) }

	go func() {
		ticker := time.NewTicker(DefaultTickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case <-ticker.C:
				remaining := ceilMillis(d - time.Since(start))
				if remaining <= 0 {
					if onFinished != nil {
						onFinished()
					}
					return
				}
				onTick(remaining)
			}
		}
	}()
	return stop
}

// BlockingCountdown drives a countdown with a sleep-poll loop on the calling
// goroutine. onTick is suppressed while the millisecond bucket is unchanged,
// so the display refreshes at most once per millisecond of remaining time.
// shouldAbort is polled on every step; when it reports true the loop exits
// without calling onFinished. A non-positive step falls back to DefaultStep.
func BlockingCountdown(d time.Duration, onTick func(remainingMs int64), onFinished func(), shouldAbort func() bool, step time.Duration) {
	if d < 0 {
		d = 0
	}
	if step <= 0 {
		step = DefaultStep
	}
	end := time.Now().Add(d)
	lastMs := int64(-1)
	for {
		if shouldAbort != nil && shouldAbort() {
			return
		}
		now := time.Now()
		remaining := ceilMillis(end.Sub(now))
		if remaining != lastMs {
			if onTick != nil {
				onTick(remaining)
			}
			lastMs = remaining
		}
		if !now.Before(end) {
			break
		}
		time.Sleep(step)
	}
	if onFinished != nil {
		onFinished()
	}
}

// Wait sleeps for d in short increments, polling shouldAbort between sleeps.
// It returns true when the full duration elapsed, false on abort.
func Wait(d time.Duration, shouldAbort func() bool) bool {
	end := time.Now().Add(d)
	for time.Now().Before(end) {
		if shouldAbort != nil && shouldAbort() {
			return false
		}
		time.Sleep(DefaultStep)
	}
	return shouldAbort == nil || !shouldAbort()
}

// RunCueTrain emits periodic cues at frequencyHz for duration d, calling fire
// for each cue. The schedule is kept by accumulating the next planned fire
// time (next += period) instead of recomputing from elapsed/period, which
// avoids cumulative drift while still catching up after a late poll. A
// non-positive frequency degrades to a plain abortable wait. Returns the
// number of cues fired.
func RunCueTrain(d time.Duration, frequencyHz float64, fire func(), shouldAbort func() bool) int {
	if frequencyHz <= 0 {
		Wait(d, shouldAbort)
		return 0
	}
	period := time.Duration(float64(time.Second) / frequencyHz)
	start := time.Now()
	next := start
	fired := 0
	for time.Since(start) < d {
		if shouldAbort != nil && shouldAbort() {
			break
		}
		if now := time.Now(); !now.Before(next) {
			fire()
			fired++
			next = next.Add(period)
		}
		time.Sleep(CuePollInterval)
	}
	return fired
}
