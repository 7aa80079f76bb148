package repository

import (
	"context"
	"fmt"
	"time"

	"taskui/internal/database"
)

type TimelineDataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type ReactionTimePoint struct {
	TrialOrder   int     `json:"trialOrder"`
	ReactionTime float64 `json:"reactionTime"`
	IsGoTrial    bool    `json:"isGoTrial"`
}

// getMetricsCTE flattens the stored go/no-go summaries into
// (result_id, created_at, metric_key, metric_value) rows so the timeline
// query can treat every metric uniformly.
func getMetricsCTE() string {
	return `
	WITH all_metrics AS (
		SELECT id AS result_id, created_at, 'go_hit_percent' AS metric_key, go_hit_percent AS metric_value FROM go_no_go_results UNION ALL
		SELECT id AS result_id, created_at, 'nogo_commission_percent' AS metric_key, nogo_commission_percent AS metric_value FROM go_no_go_results UNION ALL
		SELECT id AS result_id, created_at, 'mean_rt_go_hit' AS metric_key, mean_rt_go_hit AS metric_value FROM go_no_go_results UNION ALL
		SELECT id AS result_id, created_at, 'mean_rt_nogo_commission' AS metric_key, mean_rt_nogo_commission AS metric_value FROM go_no_go_results UNION ALL
		SELECT id AS result_id, created_at, 'reaction_time_sd' AS metric_key, reaction_time_sd AS metric_value FROM go_no_go_results
	)
	`
}

// GetTimelineData returns one summary metric across completed runs, ordered
// by run time, for the session-over-session chart.
func GetTimelineData(ctx context.Context, metricKey string) ([]TimelineDataPoint, error) {
	var data []TimelineDataPoint

	query := fmt.Sprintf(`
		%s
		SELECT
			am.created_at AS date,
			am.metric_value AS value
		FROM all_metrics am
		JOIN go_no_go_results r ON am.result_id = r.id
		WHERE am.metric_key = ? AND am.metric_value IS NOT NULL AND r.completed = true
		ORDER BY am.created_at;
	`, getMetricsCTE())

	err := database.DB.WithContext(ctx).Raw(query, metricKey).Scan(&data).Error

	return data, err
}

// GetReactionTimeSeries returns per-trial reaction times of one run in
// presentation order, for the within-run scatter chart.
func GetReactionTimeSeries(ctx context.Context, resultID int) ([]ReactionTimePoint, error) {
	var data []ReactionTimePoint

	query := `
		SELECT
			ROW_NUMBER() OVER (ORDER BY block_index, trial_index) AS trial_order,
			reaction_time,
			is_go_trial
		FROM trial_events
		WHERE result_id = ? AND reaction_time IS NOT NULL
		ORDER BY block_index, trial_index;
	`

	err := database.DB.WithContext(ctx).Raw(query, resultID).Scan(&data).Error
	return data, err
}
