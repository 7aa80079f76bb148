package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskui/internal/models"
	"taskui/internal/timing"
)

func trial(isGo bool, outcome models.Outcome, rt float64) *models.TrialRecord {
	return &models.TrialRecord{
		IsGoTrial:    isGo,
		Outcome:      outcome,
		ReactionTime: rt,
	}
}

func logWithTrials(trials ...*models.TrialRecord) *models.GoNoGoLog {
	log := models.NewGoNoGoLog(models.Meta{}, models.GoNoGoConfig{NumBlocks: 1}, 0.75, nil, timing.TimestampPair{})
	log.Blocks[1] = &models.GoNoGoBlock{Trials: trials}
	return log
}

func TestComputeGoNoGo(t *testing.T) {
	log := logWithTrials(
		trial(true, models.OutcomeHit, 0.350),
		trial(true, models.OutcomeHit, 0.450),
		trial(true, models.OutcomeMiss, math.NaN()),
		trial(false, models.OutcomeCommissionError, 0.500),
		trial(false, models.OutcomeCorrectWithholding, math.NaN()),
	)

	summary := ComputeGoNoGo(log)

	require.True(t, summary.GoHitPercent.Calculated)
	assert.InDelta(t, 66.666, summary.GoHitPercent.Value, 0.01)
	assert.Equal(t, 3, summary.GoHitPercent.SampleSize)

	require.True(t, summary.NogoCommissionPercent.Calculated)
	assert.InDelta(t, 50.0, summary.NogoCommissionPercent.Value, 1e-9)

	require.True(t, summary.MeanRTGoHit.Calculated)
	assert.InDelta(t, 0.400, summary.MeanRTGoHit.Value, 1e-9)

	require.True(t, summary.MeanRTNogoCommission.Calculated)
	assert.InDelta(t, 0.500, summary.MeanRTNogoCommission.Value, 1e-9)
}

func TestComputeGoNoGoEmptyDenominators(t *testing.T) {
	// All-Go run: no no-go trials feed the commission metrics.
	log := logWithTrials(
		trial(true, models.OutcomeMiss, math.NaN()),
		trial(true, models.OutcomeMiss, math.NaN()),
	)

	summary := ComputeGoNoGo(log)

	assert.True(t, summary.GoHitPercent.Calculated)
	assert.Zero(t, summary.GoHitPercent.Value)
	assert.False(t, summary.NogoCommissionPercent.Calculated)
	assert.False(t, summary.MeanRTGoHit.Calculated)
	assert.False(t, summary.MeanRTNogoCommission.Calculated)
}

func TestComputeGoNoGoNoTrials(t *testing.T) {
	summary := ComputeGoNoGo(logWithTrials())

	assert.False(t, summary.GoHitPercent.Calculated)
	assert.False(t, summary.NogoCommissionPercent.Calculated)
	assert.False(t, summary.MeanRTGoHit.Calculated)
	assert.False(t, summary.MeanRTNogoCommission.Calculated)
}

func TestCountOutcome(t *testing.T) {
	log := logWithTrials(
		trial(true, models.OutcomeHit, 0.3),
		trial(true, models.OutcomeHit, 0.4),
		trial(false, models.OutcomeCorrectWithholding, math.NaN()),
	)

	assert.Equal(t, 2, CountOutcome(log, models.OutcomeHit))
	assert.Equal(t, 1, CountOutcome(log, models.OutcomeCorrectWithholding))
	assert.Equal(t, 0, CountOutcome(log, models.OutcomeCommissionError))
}

func TestReactionTimeSD(t *testing.T) {
	log := logWithTrials(
		trial(true, models.OutcomeHit, 0.300),
		trial(true, models.OutcomeHit, 0.500),
	)

	sd := ReactionTimeSD(log)
	require.True(t, sd.Calculated)
	assert.InDelta(t, 0.100, sd.Value, 1e-9)

	single := ReactionTimeSD(logWithTrials(trial(true, models.OutcomeHit, 0.3)))
	assert.False(t, single.Calculated)
}

func pair(elapsed float64) timing.TimestampPair {
	return timing.TimestampPair{Elapsed: elapsed}
}

func TestComputeRhythm(t *testing.T) {
	log := models.NewRhythmLog(models.Meta{}, models.RhythmConfig{NumBlocks: 2}, timing.TimestampPair{})
	log.Blocks[0].CueEvents[models.PartCuedMovement] = []timing.TimestampPair{
		pair(0.0), pair(1.0), pair(2.0),
	}
	log.Blocks[1].CueEvents[models.PartCuedMovement] = []timing.TimestampPair{
		pair(0.0), pair(1.1),
	}

	summary := ComputeRhythm(log)

	assert.Equal(t, 5, summary.TotalCues)
	assert.Equal(t, 5, summary.CuesPerPart[models.PartCuedMovement])

	require.True(t, summary.MeanIntervalS.Calculated)
	assert.InDelta(t, 1.0333, summary.MeanIntervalS.Value, 0.001)
	assert.True(t, summary.IntervalJitterSD.Calculated)

	partMean, ok := summary.PartIntervals[models.PartCuedMovement]
	require.True(t, ok)
	assert.True(t, partMean.Calculated)
}

func TestComputeRhythmEmpty(t *testing.T) {
	log := models.NewRhythmLog(models.Meta{}, models.RhythmConfig{NumBlocks: 1}, timing.TimestampPair{})

	summary := ComputeRhythm(log)

	assert.Zero(t, summary.TotalCues)
	assert.False(t, summary.MeanIntervalS.Calculated)
	assert.False(t, summary.IntervalJitterSD.Calculated)
}
