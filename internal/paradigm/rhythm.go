package paradigm

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"taskui/internal/models"
	"taskui/internal/timing"
)

// ParadigmRhythm names the periodic-cue paradigm in run metadata and API
// responses.
const ParadigmRhythm = "rhythm"

// RhythmRun executes one periodic-cue run on a single goroutine. There is no
// subject input; the run is a fixed train of timed parts with cues delivered
// during the movement parts.
type RhythmRun struct {
	cfg       models.RhythmConfig
	presenter Presenter
	logger    *zap.Logger

	sw  *timing.Stopwatch
	log *models.RhythmLog

	aborted   atomic.Bool
	abortOnce sync.Once

	mu          sync.Mutex
	state       State
	abortReason string
	abortPair   *timing.TimestampPair

	done chan struct{}
}

// NewRhythmRun validates the config and prepares a run. Start must be called
// to begin execution.
func NewRhythmRun(cfg models.RhythmConfig, meta models.Meta, presenter Presenter, logger *zap.Logger) (*RhythmRun, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rhythm config: %w", err)
	}

	sw := timing.NewStopwatch()
	meta.ParadigmName = cfg.FilePrefix()
	meta.CreatedAt = sw.StartWall().Format(time.RFC3339)

	return &RhythmRun{
		cfg:       cfg,
		presenter: presenter,
		logger:    logger,
		sw:        sw,
		log:       models.NewRhythmLog(meta, cfg, sw.Pair()),
		state:     StateRunning,
		done:      make(chan struct{}),
	}, nil
}

func (r *RhythmRun) Paradigm() string { return ParadigmRhythm }

func (r *RhythmRun) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *RhythmRun) Done() <-chan struct{} { return r.done }

// Respond always fails: the rhythmic paradigm records no subject input.
func (r *RhythmRun) Respond(string) error { return ErrNoResponses }

// Abort requests termination; the cue loop notices within one poll interval.
func (r *RhythmRun) Abort(reason string) error {
	if r.State() != StateRunning {
		return ErrRunFinished
	}
	r.abortOnce.Do(func() {
		pair := r.sw.Pair()
		r.mu.Lock()
		r.abortReason = reason
		r.abortPair = &pair
		r.mu.Unlock()
		r.aborted.Store(true)
		r.logger.Info("abort requested",
			zap.String("paradigm", ParadigmRhythm),
			zap.String("reason", reason))
	})
	return nil
}

// Log returns the run record. Call only after Done is closed.
func (r *RhythmRun) Log() *models.RhythmLog { return r.log }

// Start launches the run loop.
func (r *RhythmRun) Start() {
	go r.run()
}

func (r *RhythmRun) run() {
	defer close(r.done)

	r.logger.Info("rhythm run started",
		zap.Int("blocks", r.cfg.NumBlocks),
		zap.Float64("cueFrequencyHz", r.cfg.CueFrequencyHz),
		zap.String("cueType", r.cfg.CueType))

	r.presenter.PlaySequence(SequenceFor(r.cfg.StartSoundType))

	for i := 0; i < r.cfg.NumBlocks && !r.aborted.Load(); i++ {
		r.runBlock(i)
		if i < r.cfg.NumBlocks-1 && !r.aborted.Load() {
			r.log.Blocks[i].IntervalAfter = &models.IntervalRecord{
				Start:           r.sw.Pair(),
				PlannedDuration: r.cfg.InterBlockInterval,
			}
			r.countdownPhase("inter_block", r.cfg.InterBlockInterval)
		}
	}

	r.finish()
}

func (r *RhythmRun) runBlock(index int) {
	block := r.log.Blocks[index]
	start := r.sw.Pair()
	block.BlockStart = &start
	r.logger.Info("block started", zap.Int("block", index))

	for _, key := range models.PartKeys {
		if r.aborted.Load() {
			return
		}
		r.runPart(block, key)
	}
}

// runPart executes one named phase. The cued-movement part drives the cue
// train; every other part is a plain countdown. Transitions into the movement
// parts are announced with the high beep so the subject hears the phase
// change without watching a screen.
func (r *RhythmRun) runPart(block *models.RhythmBlock, key string) {
	duration := r.cfg.PartDuration(key)
	block.Parts[key] = &models.PartRecord{
		Start:           r.sw.Pair(),
		PlannedDuration: duration,
	}

	switch key {
	case models.PartCuedMovement:
		r.presenter.PlaySequence(SequenceFor(SoundHighBeep))
		fired := timing.RunCueTrain(secs(duration), r.cfg.CueFrequencyHz,
			func() {
				block.CueEvents[key] = append(block.CueEvents[key], r.sw.Pair())
				r.presenter.Cue()
			},
			r.aborted.Load)
		r.logger.Debug("cue train finished",
			zap.Int("block", block.BlockIndex),
			zap.Int("cues", fired))
	case models.PartInternalMovement:
		r.presenter.PlaySequence(SequenceFor(SoundHighBeep))
		r.countdownPhase(key, duration)
	default:
		r.countdownPhase(key, duration)
	}
}

func (r *RhythmRun) countdownPhase(phase string, seconds float64) {
	timing.BlockingCountdown(secs(seconds),
		func(remainingMs int64) {
			r.presenter.ShowCountdown(phase, timing.FormatCountdown(remainingMs))
		},
		nil,
		r.aborted.Load,
		timing.DefaultStep)
}

func (r *RhythmRun) finish() {
	end := r.sw.Pair()
	r.log.MarkEnd(end)

	r.mu.Lock()
	if r.aborted.Load() {
		r.state = StateAborted
		r.log.Status = models.RunStatus{
			AbortReason: r.abortReason,
			AbortTime:   r.abortPair,
		}
	} else {
		r.state = StateCompleted
		r.log.Status = models.RunStatus{Completed: true}
	}
	state := r.state
	r.mu.Unlock()

	r.presenter.PlaySequence(SequenceFor(r.cfg.EndSoundType))
	r.presenter.ShowMessage("Run finished")
	r.logger.Info("rhythm run finished",
		zap.String("state", string(state)),
		zap.Float64("elapsedS", end.Elapsed))
}
