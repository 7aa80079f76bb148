package paradigm

import (
	"go.uber.org/zap"
)

// Presenter receives stimulus and feedback side effects from a running
// paradigm. Implementations must return quickly; the state machines call these
// from their timing-critical loop and never wait on them.
type Presenter interface {
	// ShowStimulus displays the trial digit.
	ShowStimulus(digit int)
	// HideStimulus blanks the stimulus display.
	HideStimulus()
	// ShowCountdown updates the phase countdown text, pre-formatted.
	ShowCountdown(phase string, text string)
	// ShowMessage displays a free-form status line.
	ShowMessage(text string)
	// Cue delivers one rhythmic cue pulse.
	Cue()
	// PlaySequence plays a notification tone sequence.
	PlaySequence(tones []Tone)
}

// NopPresenter discards all presentation calls. Used for headless and test
// runs.
type NopPresenter struct{}

func (NopPresenter) ShowStimulus(int)          {}
func (NopPresenter) HideStimulus()             {}
func (NopPresenter) ShowCountdown(_, _ string) {}
func (NopPresenter) ShowMessage(string)        {}
func (NopPresenter) Cue()                      {}
func (NopPresenter) PlaySequence([]Tone)       {}

// LogPresenter writes presentation events to the structured log so a headless
// deployment still produces a readable trace of what the subject would see.
type LogPresenter struct {
	log *zap.Logger
}

func NewLogPresenter(log *zap.Logger) *LogPresenter {
	return &LogPresenter{log: log}
}

func (p *LogPresenter) ShowStimulus(digit int) {
	p.log.Debug("stimulus shown", zap.Int("digit", digit))
}

func (p *LogPresenter) HideStimulus() {
	p.log.Debug("stimulus hidden")
}

func (p *LogPresenter) ShowCountdown(phase, text string) {
	p.log.Debug("countdown", zap.String("phase", phase), zap.String("remaining", text))
}

func (p *LogPresenter) ShowMessage(text string) {
	p.log.Info("display message", zap.String("text", text))
}

func (p *LogPresenter) Cue() {
	p.log.Debug("cue fired")
}

func (p *LogPresenter) PlaySequence(tones []Tone) {
	p.log.Debug("notification sequence", zap.Int("tones", len(tones)))
}
