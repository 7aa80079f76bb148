package timing

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopwatchElapsedNonDecreasing(t *testing.T) {
	sw := NewStopwatch()
	prev := sw.Elapsed()
	require.GreaterOrEqual(t, prev, 0.0)
	for i := 0; i < 100; i++ {
		cur := sw.Elapsed()
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestStopwatchPair(t *testing.T) {
	sw := NewStopwatch()
	time.Sleep(20 * time.Millisecond)
	pair := sw.Pair()
	assert.GreaterOrEqual(t, pair.Elapsed, 0.02)
	assert.Less(t, pair.Elapsed, 1.0)
	assert.WithinDuration(t, time.Now(), pair.Wall, time.Second)
}

func TestStopwatchReset(t *testing.T) {
	sw := NewStopwatch()
	time.Sleep(15 * time.Millisecond)
	sw.Reset()
	assert.Less(t, sw.Elapsed(), 0.010)
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "00.000s", FormatCountdown(0))
	assert.Equal(t, "05.250s", FormatCountdown(5250))
	assert.Equal(t, "30.000s", FormatCountdown(30000))
}

func TestBlockingCountdownZeroDuration(t *testing.T) {
	var ticks []int64
	finished := false
	BlockingCountdown(0, func(ms int64) { ticks = append(ticks, ms) }, func() { finished = true }, nil, 0)
	require.Equal(t, []int64{0}, ticks)
	assert.True(t, finished)
}

func TestBlockingCountdownNegativeDurationClampsToZero(t *testing.T) {
	var ticks []int64
	finished := false
	BlockingCountdown(-time.Second, func(ms int64) { ticks = append(ticks, ms) }, func() { finished = true }, nil, 0)
	require.Equal(t, []int64{0}, ticks)
	assert.True(t, finished)
}

func TestBlockingCountdownTicksMonotone(t *testing.T) {
	var ticks []int64
	finished := false
	BlockingCountdown(120*time.Millisecond, func(ms int64) { ticks = append(ticks, ms) }, func() { finished = true }, nil, 5*time.Millisecond)

	require.NotEmpty(t, ticks)
	assert.Equal(t, int64(120), ticks[0])
	assert.Equal(t, int64(0), ticks[len(ticks)-1])
	for i := 1; i < len(ticks); i++ {
		assert.Less(t, ticks[i], ticks[i-1], "ticks must be strictly decreasing after dedup")
	}
	assert.True(t, finished)
}

func TestBlockingCountdownAbortSkipsFinished(t *testing.T) {
	finished := false
	aborted := atomic.Bool{}
	go func() {
		time.Sleep(30 * time.Millisecond)
		aborted.Store(true)
	}()
	start := time.Now()
	BlockingCountdown(5*time.Second, func(int64) {}, func() { finished = true }, aborted.Load, 0)
	assert.False(t, finished)
	assert.Less(t, time.Since(start), time.Second)
}

func TestStartCountdownImmediateTickAndFinish(t *testing.T) {
	first := make(chan int64, 1)
	done := make(chan struct{})
	stop := StartCountdown(context.Background(), 80*time.Millisecond, func(ms int64) {
		select {
		case first <- ms:
		default:
		}
	}, func() { close(done) })
	defer stop()

	require.Equal(t, int64(80), <-first)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never finished")
	}
}

func TestStartCountdownCancelSuppressesFinished(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	finished := atomic.Bool{}
	stop := StartCountdown(ctx, time.Second, func(int64) {}, func() { finished.Store(true) })
	defer stop()
	cancel()
	time.Sleep(150 * time.Millisecond)
	assert.False(t, finished.Load())
}

func TestWaitReturnsFalseOnAbort(t *testing.T) {
	aborted := atomic.Bool{}
	aborted.Store(true)
	assert.False(t, Wait(time.Second, aborted.Load))
	assert.True(t, Wait(10*time.Millisecond, nil))
}

func TestRunCueTrainSchedule(t *testing.T) {
	sw := NewStopwatch()
	var times []float64
	n := RunCueTrain(1100*time.Millisecond, 2.0, func() {
		times = append(times, sw.Elapsed())
	}, nil)

	// 2 Hz over 1.1s: cues at t = 0, 0.5, 1.0.
	require.Equal(t, 3, n)
	want := []float64{0, 0.5, 1.0}
	for i, got := range times {
		assert.InDelta(t, want[i], got, 0.05, "cue %d off schedule", i)
	}
}

func TestRunCueTrainZeroFrequencyIsPlainWait(t *testing.T) {
	start := time.Now()
	n := RunCueTrain(50*time.Millisecond, 0, func() { t.Fatal("must not fire") }, nil)
	assert.Zero(t, n)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestRunCueTrainAbortStops(t *testing.T) {
	aborted := atomic.Bool{}
	go func() {
		time.Sleep(40 * time.Millisecond)
		aborted.Store(true)
	}()
	start := time.Now()
	RunCueTrain(5*time.Second, 10, func() {}, aborted.Load)
	assert.Less(t, time.Since(start), time.Second)
}
