package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"taskui/internal/models"
	"taskui/internal/repository"
)

var timelineMetrics = map[string]string{
	"go_hit_percent":          "Go Hit Rate (%)",
	"nogo_commission_percent": "No-Go Commission Rate (%)",
	"mean_rt_go_hit":          "Mean RT, Go Hits (s)",
	"mean_rt_nogo_commission": "Mean RT, Commissions (s)",
	"reaction_time_sd":        "Reaction Time SD (s)",
}

// ChartsHandler renders go-echarts option documents for the result views.
type ChartsHandler struct {
	log       *zap.Logger
	dbEnabled bool
}

func NewChartsHandler(log *zap.Logger, dbEnabled bool) *ChartsHandler {
	return &ChartsHandler{log: log, dbEnabled: dbEnabled}
}

// Timeline charts one summary metric across completed runs.
func (h *ChartsHandler) Timeline(c *gin.Context) {
	if !h.dbEnabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "result storage is disabled"})
		return
	}

	metricKey := c.DefaultQuery("metric", "go_hit_percent")
	label, ok := timelineMetrics[metricKey]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown metric"})
		return
	}

	data, err := repository.GetTimelineData(c, metricKey)
	if err != nil {
		h.log.Error("Failed to get timeline data", zap.Error(err), zap.String("metricKey", metricKey))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load timeline data"})
		return
	}

	c.JSON(http.StatusOK, generateTimelineChart(data, label).JSON())
}

// ReactionTimes charts per-trial reaction times of one run.
func (h *ChartsHandler) ReactionTimes(c *gin.Context) {
	if !h.dbEnabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "result storage is disabled"})
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	data, err := repository.GetReactionTimeSeries(c, id)
	if err != nil {
		h.log.Error("Failed to get reaction time series", zap.Error(err), zap.Int("id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reaction times"})
		return
	}

	c.JSON(http.StatusOK, generateReactionTimeChart(data).JSON())
}

// CueIntervals charts successive inter-cue intervals of one rhythm run, the
// quickest way to spot a drifting cue train.
func (h *ChartsHandler) CueIntervals(c *gin.Context) {
	if !h.dbEnabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "result storage is disabled"})
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	_, parts, err := repository.GetRhythmResult(id)
	if err != nil {
		h.log.Error("Failed to get cue events", zap.Error(err), zap.Int("id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cue events"})
		return
	}

	c.JSON(http.StatusOK, generateCueIntervalChart(parts).JSON())
}

func generateTimelineChart(data []repository.TimelineDataPoint, metricLabel string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Metric Over Time",
			Subtitle: metricLabel,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	items := make([]opts.LineData, 0)
	for _, point := range data {
		items = append(items, opts.LineData{Value: []interface{}{point.Date, point.Value}})
	}

	line.AddSeries(metricLabel, items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

func generateReactionTimeChart(data []repository.ReactionTimePoint) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Reaction Times by Trial",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: "trial",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: "reaction time (s)",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	goItems := make([]opts.ScatterData, 0)
	nogoItems := make([]opts.ScatterData, 0)
	for _, point := range data {
		item := opts.ScatterData{Value: []interface{}{point.TrialOrder, point.ReactionTime}}
		if point.IsGoTrial {
			goItems = append(goItems, item)
		} else {
			nogoItems = append(nogoItems, item)
		}
	}

	scatter.AddSeries("Go hits", goItems)
	scatter.AddSeries("Commissions", nogoItems)
	return scatter
}

func generateCueIntervalChart(parts []models.CuePartEvents) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Inter-Cue Intervals",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: "cue",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Name:  "interval (s)",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	for _, part := range parts {
		items := make([]opts.LineData, 0, len(part.CueTimes))
		for i := 1; i < len(part.CueTimes); i++ {
			items = append(items, opts.LineData{
				Value: []interface{}{i, part.CueTimes[i] - part.CueTimes[i-1]},
			})
		}
		if len(items) == 0 {
			continue
		}
		name := fmt.Sprintf("block %d %s", part.BlockIndex, part.PartKey)
		line.AddSeries(name, items)
	}
	return line
}
