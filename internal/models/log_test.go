package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskui/internal/timing"
)

func TestClassifyOutcome(t *testing.T) {
	tests := []struct {
		isGo      bool
		responded bool
		want      Outcome
	}{
		{true, true, OutcomeHit},
		{true, false, OutcomeMiss},
		{false, true, OutcomeCommissionError},
		{false, false, OutcomeCorrectWithholding},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyOutcome(tt.isGo, tt.responded))
	}
}

func TestTrialRecordResolveWithResponse(t *testing.T) {
	tr := &TrialRecord{
		TrialIndex: 1,
		Digit:      3,
		IsGoTrial:  true,
		Onset:      timing.TimestampPair{Wall: time.Now(), Elapsed: 1.0},
		Outcome:    OutcomePending,
	}
	resp := &timing.TimestampPair{Wall: time.Now(), Elapsed: 1.35}
	tr.Resolve(resp, "space")

	assert.Equal(t, OutcomeHit, tr.Outcome)
	require.NotNil(t, tr.Response)
	assert.Equal(t, "space", tr.ResponseKey)
	assert.InDelta(t, 0.35, tr.ReactionTime, 1e-9)
}

func TestTrialRecordResolveWithoutResponse(t *testing.T) {
	tr := &TrialRecord{IsGoTrial: false, Outcome: OutcomePending}
	tr.Resolve(nil, "")

	assert.Equal(t, OutcomeCorrectWithholding, tr.Outcome)
	assert.Nil(t, tr.Response)
	assert.True(t, math.IsNaN(tr.ReactionTime))
}

func TestTrialRecordResolveIsFirstWins(t *testing.T) {
	tr := &TrialRecord{
		IsGoTrial: true,
		Onset:     timing.TimestampPair{Elapsed: 0.5},
		Outcome:   OutcomePending,
	}
	tr.Resolve(&timing.TimestampPair{Elapsed: 0.8}, "space")
	// The expiry path firing afterwards must not overwrite the response.
	tr.Resolve(nil, "")

	assert.Equal(t, OutcomeHit, tr.Outcome)
	require.NotNil(t, tr.Response)
	assert.InDelta(t, 0.3, tr.ReactionTime, 1e-9)
}

func TestGoNoGoLogMarkEndExactlyOnce(t *testing.T) {
	cfg := DefaultPresets().GoNoGo
	log := NewGoNoGoLog(Meta{}, cfg, 0.75, nil, timing.TimestampPair{Elapsed: 0})

	first := timing.TimestampPair{Elapsed: 10.0}
	log.MarkEnd(first)
	log.MarkEnd(timing.TimestampPair{Elapsed: 99.0})

	require.NotNil(t, log.ExperimentEnd)
	assert.Equal(t, 10.0, log.ExperimentEnd.Elapsed)
}

func TestRhythmLogPreallocatesBlocks(t *testing.T) {
	cfg := DefaultPresets().Rhythm
	cfg.NumBlocks = 3
	log := NewRhythmLog(Meta{}, cfg, timing.TimestampPair{})

	require.Len(t, log.Blocks, 3)
	for i, block := range log.Blocks {
		assert.Equal(t, i, block.BlockIndex)
		assert.Len(t, block.CueEvents, len(PartKeys))
	}
}

func TestGoNoGoExportParallelTimelines(t *testing.T) {
	cfg := DefaultPresets().GoNoGo
	cfg.NumBlocks = 1
	log := NewGoNoGoLog(Meta{ParadigmName: "GoNoGo"}, cfg, 0.75, nil,
		timing.TimestampPair{Wall: time.Now(), Elapsed: 0})

	block := &GoNoGoBlock{BlockStart: timing.TimestampPair{Wall: time.Now(), Elapsed: 0.1}}
	tr := &TrialRecord{
		TrialIndex: 1, Digit: 4, IsGoTrial: true,
		Onset:   timing.TimestampPair{Wall: time.Now(), Elapsed: 0.2},
		Outcome: OutcomePending,
	}
	tr.Resolve(&timing.TimestampPair{Wall: time.Now(), Elapsed: 0.45}, "space")
	block.Trials = append(block.Trials, tr)
	log.Blocks[1] = block
	log.Status.Completed = true
	log.MarkEnd(timing.TimestampPair{Wall: time.Now(), Elapsed: 1.0})

	doc := log.Export()
	abs := doc["timing_absolute"].(map[string]any)
	rel := doc["timing_relative"].(map[string]any)

	// Identical key sets on both timelines.
	for key := range abs {
		_, ok := rel[key]
		assert.True(t, ok, "relative timeline missing key %q", key)
	}

	relBlocks := rel["blocks"].(map[int]any)
	relBlock := relBlocks[1].(map[string]any)
	relTrials := relBlock["trials"].([]map[string]any)
	require.Len(t, relTrials, 1)
	times := relTrials[0]["times"].([]any)
	require.Len(t, times, 2)
	assert.Equal(t, 0.2, times[0])
	assert.Equal(t, 0.45, times[1])

	assert.Equal(t, 1.0, rel["experiment_end"])
}

func TestGoNoGoConfigValidate(t *testing.T) {
	cfg := DefaultPresets().GoNoGo
	cfg.TestMode = true
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.NumBlocks = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.StimulusDuration = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.InterTrialInterval = -0.5
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.TestMode = false
	bad.OutputFolder = "  "
	assert.Error(t, bad.Validate())
}

func TestRhythmConfigValidate(t *testing.T) {
	cfg := DefaultPresets().Rhythm
	cfg.TestMode = true
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.CueFrequencyHz = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.CueType = "haptic"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.CueType = CueTypeVisual
	bad.VisualColorHex = "red"
	assert.Error(t, bad.Validate())
}
