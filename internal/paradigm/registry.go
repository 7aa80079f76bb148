package paradigm

import (
	"errors"
	"sync"
)

var (
	// ErrRunActive is returned when a start request arrives while another run
	// holds the registry.
	ErrRunActive = errors.New("a run is already active")
	// ErrNoActiveRun is returned for control requests with no run in progress.
	ErrNoActiveRun = errors.New("no active run")
	// ErrRunFinished is returned for control requests against a run that has
	// already reached a terminal state.
	ErrRunFinished = errors.New("run already finished")
	// ErrNoResponses is returned when a response is posted to a paradigm that
	// takes none.
	ErrNoResponses = errors.New("paradigm does not accept responses")
)

// State is the lifecycle phase of a run.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// ActiveRun is the control surface the HTTP layer holds while a run is in
// progress. All methods are safe for concurrent use.
type ActiveRun interface {
	Paradigm() string
	State() State
	// Respond records a subject response timestamped at the moment of the
	// call, not when the run loop consumes it.
	Respond(key string) error
	// Abort requests termination. The first call wins; the run drains to its
	// terminal state shortly after.
	Abort(reason string) error
	// Done is closed once the run has reached a terminal state and its log is
	// final.
	Done() <-chan struct{}
}

// Registry enforces the single-active-run invariant.
type Registry struct {
	mu     sync.Mutex
	active ActiveRun
	// last keeps the most recently finished run so its results stay readable
	// until the next run starts.
	last ActiveRun
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Begin installs run as the active run. Fails with ErrRunActive while a
// previous run is still in progress.
func (r *Registry) Begin(run ActiveRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		select {
		case <-r.active.Done():
			r.last = r.active
		default:
			return ErrRunActive
		}
	}
	r.active = run
	return nil
}

// Active returns the run currently in progress.
func (r *Registry) Active() (ActiveRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return nil, ErrNoActiveRun
	}
	select {
	case <-r.active.Done():
		return nil, ErrNoActiveRun
	default:
		return r.active, nil
	}
}

// Latest returns the active run, or the most recently finished one when
// nothing is running.
func (r *Registry) Latest() (ActiveRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return r.active, nil
	}
	if r.last != nil {
		return r.last, nil
	}
	return nil, ErrNoActiveRun
}
