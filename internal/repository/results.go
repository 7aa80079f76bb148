package repository

import (
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"taskui/internal/database"
	"taskui/internal/metrics"
	"taskui/internal/models"
)

func metricPtr(v metrics.Value) *float64 {
	if !v.Calculated {
		return nil
	}
	value := v.Value
	return &value
}

// SaveGoNoGoResult stores the run summary and every trial event in a single
// transaction so a partially written run can never appear in queries.
func SaveGoNoGoResult(log *models.GoNoGoLog, summary metrics.GoNoGoSummary) (int, error) {
	raw, err := json.Marshal(log.Export())
	if err != nil {
		return 0, fmt.Errorf("marshaling run log: %w", err)
	}

	trials := log.AllTrials()
	result := models.GoNoGoResult{
		ParadigmName:          log.Meta.ParadigmName,
		StartedAt:             log.ExperimentStart.Wall,
		Completed:             log.Status.Completed,
		AbortReason:           log.Status.AbortReason,
		GoRatio:               log.GoRatio,
		NumBlocks:             log.Config.NumBlocks,
		TrialsPerBlock:        log.Config.TrialsPerBlock,
		TrialsRecorded:        len(trials),
		GoHitPercent:          metricPtr(summary.GoHitPercent),
		NogoCommissionPercent: metricPtr(summary.NogoCommissionPercent),
		MeanRTGoHit:           metricPtr(summary.MeanRTGoHit),
		MeanRTNogoCommission:  metricPtr(summary.MeanRTNogoCommission),
		ReactionTimeSD:        metricPtr(metrics.ReactionTimeSD(log)),
		RawLog:                raw,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&result).Error; err != nil {
			return err
		}
		for block := 1; block <= log.Config.NumBlocks; block++ {
			b, ok := log.Blocks[block]
			if !ok {
				continue
			}
			for _, tr := range b.Trials {
				event := models.TrialEvent{
					ResultID:     result.ID,
					BlockIndex:   block,
					TrialIndex:   tr.TrialIndex,
					Digit:        tr.Digit,
					IsGoTrial:    tr.IsGoTrial,
					OnsetWall:    tr.Onset.Wall,
					OnsetElapsed: tr.Onset.Elapsed,
					Outcome:      string(tr.Outcome),
				}
				if tr.Response != nil {
					wall := tr.Response.Wall
					elapsed := tr.Response.Elapsed
					rt := tr.ReactionTime
					event.ResponseWall = &wall
					event.ResponseElapsed = &elapsed
					event.ReactionTime = &rt
				}
				if err := tx.Create(&event).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("saving go/no-go result: %w", err)
	}
	return result.ID, nil
}

// SaveRhythmResult stores the run summary and per-part cue arrays in a single
// transaction.
func SaveRhythmResult(log *models.RhythmLog, summary metrics.RhythmSummary) (int, error) {
	raw, err := json.Marshal(log.Export())
	if err != nil {
		return 0, fmt.Errorf("marshaling run log: %w", err)
	}

	result := models.RhythmResult{
		ParadigmName:   log.Meta.ParadigmName,
		StartedAt:      log.ExperimentStart.Wall,
		Completed:      log.Status.Completed,
		AbortReason:    log.Status.AbortReason,
		CueType:        log.Config.CueType,
		CueFrequencyHz: log.Config.CueFrequencyHz,
		NumBlocks:      log.Config.NumBlocks,
		CuesRecorded:   summary.TotalCues,
		RawLog:         raw,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&result).Error; err != nil {
			return err
		}
		for _, block := range log.Blocks {
			for _, key := range models.PartKeys {
				cues := block.CueEvents[key]
				if len(cues) == 0 {
					continue
				}
				times := make(pq.Float64Array, len(cues))
				for i, cue := range cues {
					times[i] = cue.Elapsed
				}
				row := models.CuePartEvents{
					ResultID:   result.ID,
					BlockIndex: block.BlockIndex,
					PartKey:    key,
					CueTimes:   times,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("saving rhythm result: %w", err)
	}
	return result.ID, nil
}

// ListGoNoGoResults returns stored run summaries, newest first.
func ListGoNoGoResults(limit int) ([]models.GoNoGoResult, error) {
	var results []models.GoNoGoResult
	q := database.DB.Order("created_at DESC").Omit("raw_log")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&results).Error
	return results, err
}

// GetGoNoGoResult returns one stored run with its trial events.
func GetGoNoGoResult(id int) (*models.GoNoGoResult, []models.TrialEvent, error) {
	var result models.GoNoGoResult
	if err := database.DB.First(&result, id).Error; err != nil {
		return nil, nil, err
	}
	var events []models.TrialEvent
	err := database.DB.
		Where("result_id = ?", id).
		Order("block_index, trial_index").
		Find(&events).Error
	if err != nil {
		return nil, nil, err
	}
	return &result, events, nil
}

// ListRhythmResults returns stored run summaries, newest first.
func ListRhythmResults(limit int) ([]models.RhythmResult, error) {
	var results []models.RhythmResult
	q := database.DB.Order("created_at DESC").Omit("raw_log")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&results).Error
	return results, err
}

// GetRhythmResult returns one stored run with its cue arrays.
func GetRhythmResult(id int) (*models.RhythmResult, []models.CuePartEvents, error) {
	var result models.RhythmResult
	if err := database.DB.First(&result, id).Error; err != nil {
		return nil, nil, err
	}
	var parts []models.CuePartEvents
	err := database.DB.
		Where("result_id = ?", id).
		Order("block_index, part_key").
		Find(&parts).Error
	if err != nil {
		return nil, nil, err
	}
	return &result, parts, nil
}
