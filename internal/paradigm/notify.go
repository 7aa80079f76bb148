package paradigm

// Tone is one entry of a notification sequence: a pitch held for DurationMs
// followed by GapMs of silence before the next entry.
type Tone struct {
	FrequencyHz float64 `json:"frequency_hz"`
	DurationMs  int     `json:"duration_ms"`
	GapMs       int     `json:"gap_ms"`
}

// Notification sequence names accepted in paradigm presets.
const (
	SoundStart    = "start"
	SoundEnd      = "end"
	SoundHighBeep = "high_beep"
)

// SequenceFor maps a preset sound name to its tone sequence. Unknown names
// fall back to a single mid-range beep.
func SequenceFor(name string) []Tone {
	switch name {
	case SoundStart:
		return []Tone{
			{FrequencyHz: 800, DurationMs: 180, GapMs: 80},
			{FrequencyHz: 1000, DurationMs: 180, GapMs: 80},
			{FrequencyHz: 1200, DurationMs: 180},
		}
	case SoundEnd:
		return []Tone{
			{FrequencyHz: 900, DurationMs: 180, GapMs: 80},
			{FrequencyHz: 700, DurationMs: 180, GapMs: 80},
			{FrequencyHz: 500, DurationMs: 180},
		}
	case SoundHighBeep:
		return []Tone{{FrequencyHz: 1000, DurationMs: 300}}
	default:
		return []Tone{{FrequencyHz: 500, DurationMs: 300}}
	}
}
