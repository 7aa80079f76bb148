package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Presets holds the default run configurations for both paradigms, loaded at
// startup from config/paradigms.yaml. Handlers fill unset request fields
// from these before validation.
type Presets struct {
	GoNoGo GoNoGoConfig `yaml:"gonogo"`
	Rhythm RhythmConfig `yaml:"rhythm"`
}

// LoadPresets reads and parses the paradigm presets file.
func LoadPresets(path string) (*Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}
	var presets Presets
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presets YAML: %w", err)
	}
	return &presets, nil
}

// DefaultPresets returns the built-in defaults used when no presets file is
// present.
func DefaultPresets() *Presets {
	return &Presets{
		GoNoGo: GoNoGoConfig{
			ParadigmName: "GoNoGo",
			GoDigits:     []int{0, 1, 2, 3, 4, 5, 6, 7, 8},
			NogoDigits:   []int{9},
			DigitWeights: map[int]float64{
				0: 1, 1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1, 8: 1, 9: 1,
			},
			NumBlocks:          4,
			TrialsPerBlock:     75,
			RestDuration:       10.0,
			PostBlockRest:      10.0,
			InterBlockInterval: 30.0,
			StimulusDuration:   0.3,
			InterTrialInterval: 1.0,
			MaxResponseWindow:  0.8,
		},
		Rhythm: RhythmConfig{
			ParadigmName:       "Rhythm",
			CueType:            CueTypeAudio,
			CueFrequencyHz:     1.0,
			CueToneHz:          880.0,
			CueOnTimeMs:        300,
			StartSoundType:     "start",
			EndSoundType:       "end",
			VisualColorHex:     "#FF0000",
			VisualRadiusPx:     160,
			NumBlocks:          4,
			InterBlockInterval: 30.0,
			PartDurations: map[string]float64{
				PartRestPre:          10.0,
				PartCuedMovement:     30.0,
				PartRestInstruction:  5.0,
				PartInternalMovement: 30.0,
				PartRestPost:         10.0,
			},
		},
	}
}
