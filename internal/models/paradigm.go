package models

import (
	"fmt"
	"regexp"
	"strings"
)

// PartKeys is the fixed, ordered phase sequence of a rhythm block. The key
// set is closed; durations come from RhythmConfig.PartDurations.
var PartKeys = []string{
	PartRestPre,
	PartCuedMovement,
	PartRestInstruction,
	PartInternalMovement,
	PartRestPost,
}

const (
	PartRestPre          = "rest_pre"
	PartCuedMovement     = "cued_movement"
	PartRestInstruction  = "rest_instruction"
	PartInternalMovement = "internal_movement"
	PartRestPost         = "rest_post"
)

// Cue types for the rhythm paradigm.
const (
	CueTypeAudio  = "audio"
	CueTypeVisual = "visual"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// GoNoGoConfig is the validated configuration of a discrete-trial run.
type GoNoGoConfig struct {
	ParadigmName       string          `json:"paradigm_name" yaml:"paradigm_name"`
	GoDigits           []int           `json:"go_digits" yaml:"go_digits"`
	NogoDigits         []int           `json:"nogo_digits" yaml:"nogo_digits"`
	DigitWeights       map[int]float64 `json:"digit_weights" yaml:"digit_weights"`
	NumBlocks          int             `json:"n_blocks" yaml:"n_blocks"`
	TrialsPerBlock     int             `json:"n_trials_per_block" yaml:"n_trials_per_block"`
	RestDuration       float64         `json:"rest_duration_s" yaml:"rest_duration_s"`
	PostBlockRest      float64         `json:"post_block_rest_duration_s" yaml:"post_block_rest_duration_s"`
	InterBlockInterval float64         `json:"inter_block_interval_s" yaml:"inter_block_interval_s"`
	StimulusDuration   float64         `json:"stimulus_duration_s" yaml:"stimulus_duration_s"`
	InterTrialInterval float64         `json:"inter_trial_interval_s" yaml:"inter_trial_interval_s"`
	MaxResponseWindow  float64         `json:"max_response_window_s" yaml:"max_response_window_s"`
	OutputFolder       string          `json:"output_folder" yaml:"output_folder"`
	TestMode           bool            `json:"test_mode" yaml:"test_mode"`
}

// Validate checks count and duration fields. The digit-set and weight algebra
// is validated separately by the schedule package when the trial plan is
// built, so a config that passes here can still fail there.
func (c *GoNoGoConfig) Validate() error {
	if c.NumBlocks <= 0 {
		return fmt.Errorf("number of blocks must be positive, got %d", c.NumBlocks)
	}
	if c.TrialsPerBlock <= 0 {
		return fmt.Errorf("trials per block must be positive, got %d", c.TrialsPerBlock)
	}
	if c.StimulusDuration <= 0 {
		return fmt.Errorf("stimulus duration must be positive, got %g", c.StimulusDuration)
	}
	if c.MaxResponseWindow <= 0 {
		return fmt.Errorf("max response window must be positive, got %g", c.MaxResponseWindow)
	}
	durations := map[string]float64{
		"rest_duration_s":            c.RestDuration,
		"post_block_rest_duration_s": c.PostBlockRest,
		"inter_block_interval_s":     c.InterBlockInterval,
		"inter_trial_interval_s":     c.InterTrialInterval,
	}
	for name, v := range durations {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %g", name, v)
		}
	}
	if !c.TestMode && strings.TrimSpace(c.OutputFolder) == "" {
		return fmt.Errorf("output folder is required outside test mode")
	}
	return nil
}

// FilePrefix derives the export file prefix from the paradigm name.
func (c *GoNoGoConfig) FilePrefix() string {
	if name := strings.TrimSpace(c.ParadigmName); name != "" {
		return name
	}
	return "GoNoGo"
}

// RhythmConfig is the validated configuration of a periodic-cue run.
type RhythmConfig struct {
	ParadigmName       string             `json:"paradigm_name" yaml:"paradigm_name"`
	CueType            string             `json:"cue_type" yaml:"cue_type"`
	CueFrequencyHz     float64            `json:"cue_frequency_hz" yaml:"cue_frequency_hz"`
	CueToneHz          float64            `json:"cue_tone_hz" yaml:"cue_tone_hz"`
	CueOnTimeMs        int                `json:"cue_on_time_ms" yaml:"cue_on_time_ms"`
	StartSoundType     string             `json:"start_sound_type" yaml:"start_sound_type"`
	EndSoundType       string             `json:"end_sound_type" yaml:"end_sound_type"`
	VisualColorHex     string             `json:"visual_color_hex" yaml:"visual_color_hex"`
	VisualRadiusPx     int                `json:"visual_radius_px" yaml:"visual_radius_px"`
	NumBlocks          int                `json:"num_blocks" yaml:"num_blocks"`
	InterBlockInterval float64            `json:"inter_block_interval_s" yaml:"inter_block_interval_s"`
	PartDurations      map[string]float64 `json:"part_durations_s" yaml:"part_durations_s"`
	OutputFolder       string             `json:"output_folder" yaml:"output_folder"`
	TestMode           bool               `json:"test_mode" yaml:"test_mode"`
}

// Validate checks the rhythm run configuration.
func (c *RhythmConfig) Validate() error {
	if c.CueType != CueTypeAudio && c.CueType != CueTypeVisual {
		return fmt.Errorf("cue type must be %q or %q, got %q", CueTypeAudio, CueTypeVisual, c.CueType)
	}
	if c.CueFrequencyHz <= 0 {
		return fmt.Errorf("cue frequency must be positive, got %g", c.CueFrequencyHz)
	}
	if c.CueType == CueTypeVisual && !hexColorPattern.MatchString(c.VisualColorHex) {
		return fmt.Errorf("visual color must be in #RRGGBB format, got %q", c.VisualColorHex)
	}
	if c.NumBlocks <= 0 {
		return fmt.Errorf("number of blocks must be positive, got %d", c.NumBlocks)
	}
	if c.InterBlockInterval < 0 {
		return fmt.Errorf("inter-block interval must be non-negative, got %g", c.InterBlockInterval)
	}
	for _, key := range PartKeys {
		if d, ok := c.PartDurations[key]; ok && d < 0 {
			return fmt.Errorf("duration for %s must be non-negative, got %g", key, d)
		}
	}
	if !c.TestMode && strings.TrimSpace(c.OutputFolder) == "" {
		return fmt.Errorf("output folder is required outside test mode")
	}
	return nil
}

// FilePrefix derives the export file prefix from the paradigm name.
func (c *RhythmConfig) FilePrefix() string {
	if name := strings.TrimSpace(c.ParadigmName); name != "" {
		return name
	}
	return "Rhythm"
}

// PartDuration returns the configured duration for a part key, defaulting to
// zero when the preset omits the key.
func (c *RhythmConfig) PartDuration(key string) float64 {
	return c.PartDurations[key]
}
