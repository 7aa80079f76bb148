package metrics

import (
	"math"

	"taskui/internal/models"
)

// RhythmSummary describes how steady the delivered cue train was. Intervals
// are successive cue onset differences on the relative clock, pooled across
// blocks of the same part.
type RhythmSummary struct {
	TotalCues        int              `json:"total_cues"`
	MeanIntervalS    Value            `json:"mean_interval_s"`
	IntervalJitterSD Value            `json:"interval_jitter_sd"`
	CuesPerPart      map[string]int   `json:"cues_per_part"`
	PartIntervals    map[string]Value `json:"part_mean_interval_s"`
}

// ComputeRhythm summarizes cue delivery for a finished rhythmic run.
func ComputeRhythm(log *models.RhythmLog) RhythmSummary {
	summary := RhythmSummary{
		CuesPerPart:   make(map[string]int),
		PartIntervals: make(map[string]Value),
	}

	var allIntervals []float64
	perPart := make(map[string][]float64)
	for _, block := range log.Blocks {
		for part, cues := range block.CueEvents {
			summary.TotalCues += len(cues)
			summary.CuesPerPart[part] += len(cues)
			for i := 1; i < len(cues); i++ {
				interval := cues[i].Elapsed - cues[i-1].Elapsed
				allIntervals = append(allIntervals, interval)
				perPart[part] = append(perPart[part], interval)
			}
		}
	}

	summary.MeanIntervalS = mean(allIntervals)
	summary.IntervalJitterSD = sd(allIntervals)
	for part, intervals := range perPart {
		summary.PartIntervals[part] = mean(intervals)
	}
	return summary
}

func sd(values []float64) Value {
	if len(values) < 2 {
		return Value{}
	}
	avg := mean(values).Value
	var sumSq float64
	for _, v := range values {
		diff := v - avg
		sumSq += diff * diff
	}
	return Value{
		Value:      math.Sqrt(sumSq / float64(len(values))),
		Calculated: true,
		SampleSize: len(values),
	}
}
