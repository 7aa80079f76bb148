package models

import (
	"math"

	"taskui/internal/schedule"
	"taskui/internal/timing"
)

// Outcome classifies a finished trial. Determined solely by whether the
// trial was a Go trial and whether a response occurred.
type Outcome string

const (
	OutcomePending            Outcome = "pending"
	OutcomeHit                Outcome = "hit"
	OutcomeMiss               Outcome = "miss"
	OutcomeCommissionError    Outcome = "commission_error"
	OutcomeCorrectWithholding Outcome = "correct_withholding"
)

// ClassifyOutcome applies the response table:
//
//	go  + responded  -> hit
//	go  + no resp    -> miss
//	nogo + responded -> commission_error
//	nogo + no resp   -> correct_withholding
func ClassifyOutcome(isGo, responded bool) Outcome {
	switch {
	case isGo && responded:
		return OutcomeHit
	case isGo && !responded:
		return OutcomeMiss
	case !isGo && responded:
		return OutcomeCommissionError
	default:
		return OutcomeCorrectWithholding
	}
}

// Abort reason codes.
const (
	AbortReasonUserRequested = "user_requested"
	AbortReasonShutdown      = "server_shutdown"
)

// Meta describes the run for the exported log header.
type Meta struct {
	ParadigmName    string `json:"paradigm_name"`
	SoftwareVersion string `json:"software_version"`
	Language        string `json:"language"`
	TestMode        bool   `json:"test_mode"`
	PatientInfo     string `json:"patient_info"`
	ElectrodeInfo   string `json:"electrode_info"`
	Notes           string `json:"notes"`
	CreatedAt       string `json:"created_at"`
}

// RunStatus tracks the terminal state of a run. Completed and aborted are
// mutually exclusive; once either is set the timelines are frozen except for
// the single experiment-end pair.
type RunStatus struct {
	Completed   bool                  `json:"completed"`
	AbortReason string                `json:"abort_reason,omitempty"`
	AbortTime   *timing.TimestampPair `json:"abort_time,omitempty"`
}

// TrialRecord is one trial's log entry. It is created at stimulus onset with
// a pending outcome and mutated exactly once, either when a response arrives
// or when the response window expires.
type TrialRecord struct {
	TrialIndex  int                   `json:"trial_index"`
	Digit       int                   `json:"digit"`
	IsGoTrial   bool                  `json:"is_go_trial"`
	Onset       timing.TimestampPair  `json:"onset"`
	Response    *timing.TimestampPair `json:"response,omitempty"`
	ResponseKey string                `json:"response_key,omitempty"`
	Outcome     Outcome               `json:"outcome"`
	// ReactionTime is response minus onset on the relative clock; NaN when
	// no response occurred.
	ReactionTime float64 `json:"reaction_time_s"`
}

// Resolve fills the trial's terminal fields. response is nil when the window
// expired without input. Resolving an already resolved trial is a no-op so
// the response path and the expiry path cannot double record.
func (t *TrialRecord) Resolve(response *timing.TimestampPair, key string) {
	if t.Outcome != OutcomePending {
		return
	}
	responded := response != nil
	t.Outcome = ClassifyOutcome(t.IsGoTrial, responded)
	t.Response = response
	if responded {
		t.ResponseKey = key
		t.ReactionTime = response.Elapsed - t.Onset.Elapsed
	} else {
		t.ReactionTime = math.NaN()
	}
}

// GoNoGoBlock is one block of the discrete-trial paradigm. Fields are filled
// in strictly increasing temporal order and never revisited.
type GoNoGoBlock struct {
	BlockStart    timing.TimestampPair  `json:"block_start"`
	RestStart     *timing.TimestampPair `json:"rest_start,omitempty"`
	TaskStart     *timing.TimestampPair `json:"task_start,omitempty"`
	PostRestStart *timing.TimestampPair `json:"post_rest_start,omitempty"`
	Trials        []*TrialRecord        `json:"trials"`
}

// IntervalRecord marks the start of an inter-block rest.
type IntervalRecord struct {
	Start           timing.TimestampPair `json:"interval_start"`
	PlannedDuration float64              `json:"planned_duration_s"`
}

// GoNoGoLog is the complete record of a discrete-trial run. The state
// machine owns it exclusively while running; consumers receive it only after
// the run reaches a terminal state.
type GoNoGoLog struct {
	Meta                Meta                     `json:"meta"`
	Config              GoNoGoConfig             `json:"config"`
	GoRatio             float64                  `json:"go_ratio"`
	Schedule            map[int][]schedule.Trial `json:"trial_schedule"`
	ExperimentStart     timing.TimestampPair     `json:"experiment_start"`
	ExperimentEnd       *timing.TimestampPair    `json:"experiment_end,omitempty"`
	Blocks              map[int]*GoNoGoBlock     `json:"blocks"`
	InterBlockIntervals map[int]*IntervalRecord  `json:"inter_block_intervals"`
	Status              RunStatus                `json:"status"`
	// Metrics holds the summary computed at run end. Kept loosely typed so
	// the log stays free of a dependency on the metrics package.
	Metrics any `json:"metrics,omitempty"`
}

// NewGoNoGoLog initializes the log at experiment start.
func NewGoNoGoLog(meta Meta, cfg GoNoGoConfig, ratio float64, plan map[int][]schedule.Trial, start timing.TimestampPair) *GoNoGoLog {
	return &GoNoGoLog{
		Meta:                meta,
		Config:              cfg,
		GoRatio:             ratio,
		Schedule:            plan,
		ExperimentStart:     start,
		Blocks:              make(map[int]*GoNoGoBlock, cfg.NumBlocks),
		InterBlockIntervals: make(map[int]*IntervalRecord),
	}
}

// MarkEnd writes the experiment-end pair. Only the first call takes effect.
func (l *GoNoGoLog) MarkEnd(pair timing.TimestampPair) {
	if l.ExperimentEnd == nil {
		p := pair
		l.ExperimentEnd = &p
	}
}

// AllTrials returns every logged trial across blocks in block order.
func (l *GoNoGoLog) AllTrials() []*TrialRecord {
	var trials []*TrialRecord
	for block := 1; block <= l.Config.NumBlocks; block++ {
		if b, ok := l.Blocks[block]; ok {
			trials = append(trials, b.Trials...)
		}
	}
	return trials
}

// PartRecord marks the start of one named phase within a rhythm block.
type PartRecord struct {
	Start           timing.TimestampPair `json:"start"`
	PlannedDuration float64              `json:"planned_duration_s"`
}

// RhythmBlock is one block of the periodic-cue paradigm: the five ordered
// parts plus the cue timestamps collected during the cued part.
type RhythmBlock struct {
	BlockIndex    int                               `json:"block_index"`
	BlockStart    *timing.TimestampPair             `json:"block_start,omitempty"`
	Parts         map[string]*PartRecord            `json:"parts"`
	CueEvents     map[string][]timing.TimestampPair `json:"cue_events"`
	IntervalAfter *IntervalRecord                   `json:"interval_after_block,omitempty"`
}

// RhythmLog is the complete record of a periodic-cue run.
type RhythmLog struct {
	Meta            Meta                  `json:"meta"`
	Config          RhythmConfig          `json:"config"`
	ExperimentStart timing.TimestampPair  `json:"experiment_start"`
	ExperimentEnd   *timing.TimestampPair `json:"experiment_end,omitempty"`
	Blocks          []*RhythmBlock        `json:"blocks"`
	Status          RunStatus             `json:"status"`
}

// NewRhythmLog initializes the log with one pre-allocated block entry per
// configured block, mirroring the fixed part key set.
func NewRhythmLog(meta Meta, cfg RhythmConfig, start timing.TimestampPair) *RhythmLog {
	blocks := make([]*RhythmBlock, cfg.NumBlocks)
	for i := range blocks {
		blocks[i] = &RhythmBlock{
			BlockIndex: i,
			Parts:      make(map[string]*PartRecord, len(PartKeys)),
			CueEvents:  make(map[string][]timing.TimestampPair, len(PartKeys)),
		}
		for _, key := range PartKeys {
			blocks[i].CueEvents[key] = nil
		}
	}
	return &RhythmLog{
		Meta:            meta,
		Config:          cfg,
		ExperimentStart: start,
		Blocks:          blocks,
	}
}

// MarkEnd writes the experiment-end pair. Only the first call takes effect.
func (l *RhythmLog) MarkEnd(pair timing.TimestampPair) {
	if l.ExperimentEnd == nil {
		p := pair
		l.ExperimentEnd = &p
	}
}
