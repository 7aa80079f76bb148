package models

import (
	"time"

	"taskui/internal/timing"
)

// The exported log keeps the absolute and relative timelines as two parallel
// structures with identical keys, so any two events can be subtracted on the
// relative clock even if the wall clock later proves unreliable.

const wallTimeLayout = "2006-01-02 15:04:05.000"

func wallValue(p *timing.TimestampPair) any {
	if p == nil {
		return nil
	}
	return p.Wall.Format(wallTimeLayout)
}

func elapsedValue(p *timing.TimestampPair) any {
	if p == nil {
		return nil
	}
	return p.Elapsed
}

// Export renders the log as the persisted document: meta, config snapshot,
// and the timing_absolute / timing_relative twin timelines.
func (l *GoNoGoLog) Export() map[string]any {
	absBlocks := make(map[int]any, len(l.Blocks))
	relBlocks := make(map[int]any, len(l.Blocks))
	for num, block := range l.Blocks {
		absTrials := make([]map[string]any, 0, len(block.Trials))
		relTrials := make([]map[string]any, 0, len(block.Trials))
		for _, tr := range block.Trials {
			absTrials = append(absTrials, map[string]any{
				"trial_index":   tr.TrialIndex,
				"digit":         tr.Digit,
				"is_go_trial":   tr.IsGoTrial,
				"times":         []any{wallValue(&tr.Onset), wallValue(tr.Response)},
				"response_key":  tr.ResponseKey,
				"outcome":       string(tr.Outcome),
				"response_time": tr.ReactionTime,
			})
			relTrials = append(relTrials, map[string]any{
				"trial_index":   tr.TrialIndex,
				"digit":         tr.Digit,
				"is_go_trial":   tr.IsGoTrial,
				"times":         []any{elapsedValue(&tr.Onset), elapsedValue(tr.Response)},
				"response_key":  tr.ResponseKey,
				"outcome":       string(tr.Outcome),
				"response_time": tr.ReactionTime,
			})
		}
		absBlocks[num] = map[string]any{
			"block_start":     wallValue(&block.BlockStart),
			"rest_start":      wallValue(block.RestStart),
			"task_start":      wallValue(block.TaskStart),
			"post_rest_start": wallValue(block.PostRestStart),
			"trials":          absTrials,
		}
		relBlocks[num] = map[string]any{
			"block_start":     elapsedValue(&block.BlockStart),
			"rest_start":      elapsedValue(block.RestStart),
			"task_start":      elapsedValue(block.TaskStart),
			"post_rest_start": elapsedValue(block.PostRestStart),
			"trials":          relTrials,
		}
	}

	absIntervals := make(map[int]any, len(l.InterBlockIntervals))
	relIntervals := make(map[int]any, len(l.InterBlockIntervals))
	for num, iv := range l.InterBlockIntervals {
		absIntervals[num] = map[string]any{
			"interval_start":     wallValue(&iv.Start),
			"planned_duration_s": iv.PlannedDuration,
		}
		relIntervals[num] = map[string]any{
			"interval_start":     elapsedValue(&iv.Start),
			"planned_duration_s": iv.PlannedDuration,
		}
	}

	doc := map[string]any{
		"meta":     l.Meta,
		"config":   l.Config,
		"go_ratio": l.GoRatio,
		"timing_absolute": map[string]any{
			"experiment_start":      wallValue(&l.ExperimentStart),
			"experiment_end":        wallValue(l.ExperimentEnd),
			"blocks":                absBlocks,
			"inter_block_intervals": absIntervals,
		},
		"timing_relative": map[string]any{
			"experiment_start":      elapsedValue(&l.ExperimentStart),
			"experiment_end":        elapsedValue(l.ExperimentEnd),
			"blocks":                relBlocks,
			"inter_block_intervals": relIntervals,
		},
		"status": l.Status,
	}
	if l.Metrics != nil {
		doc["metrics"] = l.Metrics
	}
	return doc
}

// Export renders the rhythm log in the same twin-timeline document shape.
func (l *RhythmLog) Export() map[string]any {
	absBlocks := make([]map[string]any, 0, len(l.Blocks))
	relBlocks := make([]map[string]any, 0, len(l.Blocks))
	for _, block := range l.Blocks {
		absParts := make(map[string]any, len(block.Parts))
		relParts := make(map[string]any, len(block.Parts))
		for key, part := range block.Parts {
			absParts[key] = map[string]any{
				"start_absolute":     wallValue(&part.Start),
				"planned_duration_s": part.PlannedDuration,
			}
			relParts[key] = map[string]any{
				"start_relative_s":   elapsedValue(&part.Start),
				"planned_duration_s": part.PlannedDuration,
			}
		}

		absCues := make(map[string][]string, len(block.CueEvents))
		relCues := make(map[string][]float64, len(block.CueEvents))
		for key, pairs := range block.CueEvents {
			wall := make([]string, 0, len(pairs))
			rel := make([]float64, 0, len(pairs))
			for _, p := range pairs {
				wall = append(wall, p.Wall.Format(wallTimeLayout))
				rel = append(rel, p.Elapsed)
			}
			absCues[key] = wall
			relCues[key] = rel
		}

		absBlock := map[string]any{
			"block_index": block.BlockIndex,
			"block_start": wallValue(block.BlockStart),
			"parts":       absParts,
			"cue_events":  absCues,
		}
		relBlock := map[string]any{
			"block_index": block.BlockIndex,
			"block_start": elapsedValue(block.BlockStart),
			"parts":       relParts,
			"cue_events":  relCues,
		}
		if iv := block.IntervalAfter; iv != nil {
			absBlock["interval_after_block"] = map[string]any{
				"start_absolute":     wallValue(&iv.Start),
				"planned_duration_s": iv.PlannedDuration,
			}
			relBlock["interval_after_block"] = map[string]any{
				"start_relative_s":   elapsedValue(&iv.Start),
				"planned_duration_s": iv.PlannedDuration,
			}
		}
		absBlocks = append(absBlocks, absBlock)
		relBlocks = append(relBlocks, relBlock)
	}

	return map[string]any{
		"meta":   l.Meta,
		"config": l.Config,
		"timing_absolute": map[string]any{
			"paradigm_start": wallValue(&l.ExperimentStart),
			"paradigm_end":   wallValue(l.ExperimentEnd),
			"blocks":         absBlocks,
		},
		"timing_relative": map[string]any{
			"paradigm_start": elapsedValue(&l.ExperimentStart),
			"paradigm_end":   elapsedValue(l.ExperimentEnd),
			"blocks":         relBlocks,
		},
		"status": l.Status,
	}
}

// StartWallTime returns the wall clock anchor used for export file naming.
func (l *GoNoGoLog) StartWallTime() time.Time { return l.ExperimentStart.Wall }

// StartWallTime returns the wall clock anchor used for export file naming.
func (l *RhythmLog) StartWallTime() time.Time { return l.ExperimentStart.Wall }
