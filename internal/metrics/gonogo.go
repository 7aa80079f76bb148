package metrics

import (
	"math"

	"taskui/internal/models"
)

// Value is a metric that may be unavailable when its denominator is zero.
type Value struct {
	Value      float64 `json:"value"`
	Calculated bool    `json:"calculated"`
	SampleSize int     `json:"sampleSize,omitempty"`
}

// GoNoGoSummary are the headline metrics computed over a finished run. Each
// field is unavailable rather than zero when no trial feeds it.
type GoNoGoSummary struct {
	GoHitPercent          Value `json:"go_hit_percent"`
	NogoCommissionPercent Value `json:"nogo_commission_percent"`
	MeanRTGoHit           Value `json:"mean_rt_go_hit"`
	MeanRTNogoCommission  Value `json:"mean_rt_nogo_commission"`
}

// ComputeGoNoGo is a pure function over the finished log: hit and commission
// rates plus mean reaction times on the relative clock. Aborted runs are
// scored over whatever trials exist.
func ComputeGoNoGo(log *models.GoNoGoLog) GoNoGoSummary {
	trials := log.AllTrials()

	var goTrials, nogoTrials int
	var goHitRTs, commissionRTs []float64
	for _, tr := range trials {
		if tr.IsGoTrial {
			goTrials++
			if tr.Outcome == models.OutcomeHit {
				goHitRTs = append(goHitRTs, tr.ReactionTime)
			}
		} else {
			nogoTrials++
			if tr.Outcome == models.OutcomeCommissionError {
				commissionRTs = append(commissionRTs, tr.ReactionTime)
			}
		}
	}

	return GoNoGoSummary{
		GoHitPercent:          percent(len(goHitRTs), goTrials),
		NogoCommissionPercent: percent(len(commissionRTs), nogoTrials),
		MeanRTGoHit:           mean(goHitRTs),
		MeanRTNogoCommission:  mean(commissionRTs),
	}
}

// CountOutcome counts trials with the given outcome.
func CountOutcome(log *models.GoNoGoLog, outcome models.Outcome) int {
	count := 0
	for _, tr := range log.AllTrials() {
		if tr.Outcome == outcome {
			count++
		}
	}
	return count
}

// ReactionTimeSD returns the population standard deviation over Go-hit
// reaction times; unavailable with fewer than two samples.
func ReactionTimeSD(log *models.GoNoGoLog) Value {
	var rts []float64
	for _, tr := range log.AllTrials() {
		if tr.Outcome == models.OutcomeHit {
			rts = append(rts, tr.ReactionTime)
		}
	}
	if len(rts) < 2 {
		return Value{}
	}
	avg := mean(rts).Value
	var sumSq float64
	for _, rt := range rts {
		diff := rt - avg
		sumSq += diff * diff
	}
	return Value{
		Value:      math.Sqrt(sumSq / float64(len(rts))),
		Calculated: true,
		SampleSize: len(rts),
	}
}

func percent(numerator, denominator int) Value {
	if denominator <= 0 {
		return Value{}
	}
	return Value{
		Value:      float64(numerator) / float64(denominator) * 100.0,
		Calculated: true,
		SampleSize: denominator,
	}
}

func mean(values []float64) Value {
	finite := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return Value{}
	}
	var sum float64
	for _, v := range finite {
		sum += v
	}
	return Value{
		Value:      sum / float64(len(finite)),
		Calculated: true,
		SampleSize: len(finite),
	}
}
