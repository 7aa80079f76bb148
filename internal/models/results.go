package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// GoNoGoResult holds the stored summary of a discrete-trial run.
type GoNoGoResult struct {
	ID                    int `gorm:"primaryKey"`
	ParadigmName          string
	StartedAt             time.Time
	Completed             bool
	AbortReason           string
	GoRatio               float64
	NumBlocks             int
	TrialsPerBlock        int
	TrialsRecorded        int
	GoHitPercent          *float64
	NogoCommissionPercent *float64
	MeanRTGoHit           *float64
	MeanRTNogoCommission  *float64
	ReactionTimeSD        *float64
	RawLog                json.RawMessage `gorm:"type:jsonb"`
	CreatedAt             time.Time
}

// TrialEvent is one trial row referencing its run summary.
type TrialEvent struct {
	ID           int `gorm:"primaryKey"`
	ResultID     int `gorm:"index"`
	BlockIndex   int
	TrialIndex   int
	Digit        int
	IsGoTrial    bool
	OnsetWall    time.Time
	OnsetElapsed float64
	// Response fields are pointers so no-response trials store NULL.
	ResponseWall    *time.Time
	ResponseElapsed *float64
	Outcome         string
	ReactionTime    *float64
}

// RhythmResult holds the stored summary of a periodic-cue run.
type RhythmResult struct {
	ID             int `gorm:"primaryKey"`
	ParadigmName   string
	StartedAt      time.Time
	Completed      bool
	AbortReason    string
	CueType        string
	CueFrequencyHz float64
	NumBlocks      int
	CuesRecorded   int
	RawLog         json.RawMessage `gorm:"type:jsonb"`
	CreatedAt      time.Time
}

// CuePartEvents stores the relative cue timestamps of one part of one block
// as a single array column.
type CuePartEvents struct {
	ID         int `gorm:"primaryKey"`
	ResultID   int `gorm:"index"`
	BlockIndex int
	PartKey    string
	CueTimes   pq.Float64Array `gorm:"type:float8[]"`
}
