package paradigm

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"taskui/internal/metrics"
	"taskui/internal/models"
	"taskui/internal/schedule"
	"taskui/internal/timing"
)

// ParadigmGoNoGo names the discrete-trial paradigm in run metadata and API
// responses.
const ParadigmGoNoGo = "gonogo"

type response struct {
	key  string
	pair timing.TimestampPair
}

// GoNoGoRun executes one discrete-trial run on a single goroutine. The run
// loop has exclusive ownership of the log; the outside world interacts only
// through Respond, Abort, and Done.
type GoNoGoRun struct {
	cfg       models.GoNoGoConfig
	plan      map[int][]schedule.Trial
	goRatio   float64
	presenter Presenter
	logger    *zap.Logger

	sw  *timing.Stopwatch
	log *models.GoNoGoLog

	responses chan response

	aborted   atomic.Bool
	abortOnce sync.Once
	abortCh   chan struct{}

	mu          sync.Mutex
	state       State
	abortReason string
	abortPair   *timing.TimestampPair

	done chan struct{}
}

// NewGoNoGoRun validates the config, builds the trial plan, and prepares a
// run. Start must be called to begin execution.
func NewGoNoGoRun(cfg models.GoNoGoConfig, meta models.Meta, rng *rand.Rand, presenter Presenter, logger *zap.Logger) (*GoNoGoRun, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid go/no-go config: %w", err)
	}
	// An empty weight map means uniform sampling across both digit sets.
	if len(cfg.DigitWeights) == 0 {
		cfg.DigitWeights = make(map[int]float64, len(cfg.GoDigits)+len(cfg.NogoDigits))
		for _, d := range cfg.GoDigits {
			cfg.DigitWeights[d] = 1
		}
		for _, d := range cfg.NogoDigits {
			cfg.DigitWeights[d] = 1
		}
	}
	plan, ratio, err := schedule.BuildSchedule(rng, cfg.GoDigits, cfg.NogoDigits, cfg.DigitWeights, cfg.NumBlocks, cfg.TrialsPerBlock)
	if err != nil {
		return nil, fmt.Errorf("building trial schedule: %w", err)
	}

	sw := timing.NewStopwatch()
	meta.ParadigmName = cfg.FilePrefix()
	meta.CreatedAt = sw.StartWall().Format(time.RFC3339)

	r := &GoNoGoRun{
		cfg:       cfg,
		plan:      plan,
		goRatio:   ratio,
		presenter: presenter,
		logger:    logger,
		sw:        sw,
		log:       models.NewGoNoGoLog(meta, cfg, ratio, plan, sw.Pair()),
		responses: make(chan response, 1),
		abortCh:   make(chan struct{}),
		state:     StateRunning,
		done:      make(chan struct{}),
	}
	return r, nil
}

func (r *GoNoGoRun) Paradigm() string { return ParadigmGoNoGo }

func (r *GoNoGoRun) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *GoNoGoRun) Done() <-chan struct{} { return r.done }

// Respond records a subject keypress. The timestamp pair is captured here, at
// call time, so queueing latency never inflates reaction times. Responses
// outside an open response window are dropped by the run loop.
func (r *GoNoGoRun) Respond(key string) error {
	if r.State() != StateRunning {
		return ErrRunFinished
	}
	resp := response{key: key, pair: r.sw.Pair()}
	select {
	case r.responses <- resp:
	default:
		// Window already has a pending first response; later ones lose.
	}
	return nil
}

// Abort requests termination. The abort timestamp is taken at request time;
// the run loop notices at its next poll point and finalizes the log.
func (r *GoNoGoRun) Abort(reason string) error {
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
		close(r.abortCh)
		r.logger.Info("abort requested",
			zap.String("paradigm", ParadigmGoNoGo),
			zap.String("reason", reason))
	})
	return nil
}

// Log returns the run record. Call only after Done is closed.
func (r *GoNoGoRun) Log() *models.GoNoGoLog { return r.log }

// Start launches the run loop.
func (r *GoNoGoRun) Start() {
	go r.run()
}

func (r *GoNoGoRun) run() {
	defer close(r.done)

	r.logger.Info("go/no-go run started",
		zap.Int("blocks", r.cfg.NumBlocks),
		zap.Int("trialsPerBlock", r.cfg.TrialsPerBlock),
		zap.Float64("goRatio", r.goRatio))

	r.presenter.ShowMessage("Get ready")
	r.presenter.PlaySequence(SequenceFor(SoundStart))
	timing.Wait(time.Second, r.aborted.Load)

	for block := 1; block <= r.cfg.NumBlocks && !r.aborted.Load(); block++ {
		r.runBlock(block)
		if block < r.cfg.NumBlocks && !r.aborted.Load() {
			r.postBlockRest(block)
			if !r.aborted.Load() {
				r.interBlockRest(block)
			}
		}
	}

	r.finish()
}

func (r *GoNoGoRun) runBlock(block int) {
	b := &models.GoNoGoBlock{BlockStart: r.sw.Pair()}
	r.log.Blocks[block] = b
	r.logger.Info("block started", zap.Int("block", block))

	restStart := r.sw.Pair()
	b.RestStart = &restStart
	r.countdownPhase("rest", r.cfg.RestDuration)
	if r.aborted.Load() {
		return
	}

	taskStart := r.sw.Pair()
	b.TaskStart = &taskStart
	// The inter-trial interval separates trials; it never precedes the first
	// trial and never trails the block's last one.
	for idx, tr := range r.plan[block] {
		if r.aborted.Load() {
			return
		}
		if idx > 0 {
			timing.Wait(secs(r.cfg.InterTrialInterval), r.aborted.Load)
			if r.aborted.Load() {
				return
			}
		}
		record := r.runTrial(idx+1, tr)
		b.Trials = append(b.Trials, record)
		r.logger.Debug("trial resolved",
			zap.Int("block", block),
			zap.Int("trial", record.TrialIndex),
			zap.Int("digit", tr.Digit),
			zap.String("outcome", string(record.Outcome)))
	}
}

// postBlockRest runs only between blocks; the final block ends the run right
// after its last trial, leaving PostRestStart unset.
func (r *GoNoGoRun) postBlockRest(block int) {
	b := r.log.Blocks[block]
	postRestStart := r.sw.Pair()
	b.PostRestStart = &postRestStart
	r.countdownPhase("post_rest", r.cfg.PostBlockRest)
}

// runTrial drives one stimulus-response cycle. Stimulus-hide and
// response-window expiry run as independent timers; the first of response,
// expiry, or abort resolves the trial, and Resolve's no-op on a settled record
// makes the race single-winner by construction.
func (r *GoNoGoRun) runTrial(idx int, tr schedule.Trial) *models.TrialRecord {
	r.drainResponses()

	record := &models.TrialRecord{
		TrialIndex:   idx,
		Digit:        tr.Digit,
		IsGoTrial:    tr.IsGo,
		Onset:        r.sw.Pair(),
		Outcome:      models.OutcomePending,
		ReactionTime: math.NaN(),
	}
	r.presenter.ShowStimulus(tr.Digit)
	r.presenter.PlaySequence(SequenceFor(SoundHighBeep))

	stimTimer := time.NewTimer(secs(r.cfg.StimulusDuration))
	respTimer := time.NewTimer(secs(r.cfg.MaxResponseWindow))
	defer stimTimer.Stop()
	defer respTimer.Stop()

	stimC := stimTimer.C
	for {
		select {
		case resp := <-r.responses:
			record.Resolve(&resp.pair, resp.key)
			r.presenter.HideStimulus()
			return record
		case <-stimC:
			r.presenter.HideStimulus()
			stimC = nil
		case <-respTimer.C:
			record.Resolve(nil, "")
			if stimC != nil {
				r.presenter.HideStimulus()
			}
			return record
		case <-r.abortCh:
			record.Resolve(nil, "")
			r.presenter.HideStimulus()
			return record
		}
	}
}

// drainResponses discards keypresses queued between trials so a late press
// from the previous window cannot score against the next stimulus.
func (r *GoNoGoRun) drainResponses() {
	for {
		select {
		case <-r.responses:
		default:
			return
		}
	}
}

func (r *GoNoGoRun) interBlockRest(block int) {
	r.log.InterBlockIntervals[block] = &models.IntervalRecord{
		Start:           r.sw.Pair(),
		PlannedDuration: r.cfg.InterBlockInterval,
	}
	r.countdownPhase("inter_block", r.cfg.InterBlockInterval)
}

// countdownPhase blocks for the phase duration, pushing formatted remaining
// time to the presenter at millisecond granularity.
func (r *GoNoGoRun) countdownPhase(phase string, seconds float64) {
	timing.BlockingCountdown(secs(seconds),
		func(remainingMs int64) {
			r.presenter.ShowCountdown(phase, timing.FormatCountdown(remainingMs))
		},
		nil,
		r.aborted.Load,
		timing.DefaultStep)
}

func (r *GoNoGoRun) finish() {
	end := r.sw.Pair()
	r.log.MarkEnd(end)
	r.log.Metrics = metrics.ComputeGoNoGo(r.log)

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

	r.presenter.PlaySequence(SequenceFor(SoundEnd))
	r.presenter.ShowMessage("Run finished")
	r.logger.Info("go/no-go run finished",
		zap.String("state", string(state)),
		zap.Float64("elapsedS", end.Elapsed))
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
