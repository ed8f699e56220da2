package buildengine

import (
	"sync"

	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
)

// Observers is the engine's event subscription surface (spec §4.6, §6):
// an observer registry holding typed callback lists, replacing the
// original's multicast delegates per spec §9's design note. Dispatch
// iterates a snapshot of each list, holding no lock during callback
// execution, so an observer may itself call back into the engine (e.g. to
// submit a follow-up build) without deadlocking.
type Observers struct {
	mu sync.Mutex

	onRequestComplete         []func(*buildmodel.BuildRequest, *buildmodel.BuildResult)
	onRequestResumed          []func(*buildmodel.BuildRequest)
	onRequestBlocked          []func(*buildmodel.BuildRequest)
	onNewConfigurationRequest []func(*buildmodel.BuildRequestConfiguration)
	onStatusChanged           []func(Status)
	onEngineException         []func(error)
}

// NewObservers returns an empty registry.
func NewObservers() *Observers { return &Observers{} }

// OnRequestComplete registers a callback for onRequestComplete (spec §4.6).
func (o *Observers) OnRequestComplete(f func(*buildmodel.BuildRequest, *buildmodel.BuildResult)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onRequestComplete = append(o.onRequestComplete, f)
}

// OnRequestResumed registers a callback for onRequestResumed.
func (o *Observers) OnRequestResumed(f func(*buildmodel.BuildRequest)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onRequestResumed = append(o.onRequestResumed, f)
}

// OnRequestBlocked registers a callback for onRequestBlocked.
func (o *Observers) OnRequestBlocked(f func(*buildmodel.BuildRequest)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onRequestBlocked = append(o.onRequestBlocked, f)
}

// OnNewConfigurationRequest registers a callback for onNewConfigurationRequest.
func (o *Observers) OnNewConfigurationRequest(f func(*buildmodel.BuildRequestConfiguration)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onNewConfigurationRequest = append(o.onNewConfigurationRequest, f)
}

// OnStatusChanged registers a callback for onStatusChanged.
func (o *Observers) OnStatusChanged(f func(Status)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onStatusChanged = append(o.onStatusChanged, f)
}

// OnEngineException registers a callback for onEngineException.
func (o *Observers) OnEngineException(f func(error)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onEngineException = append(o.onEngineException, f)
}

// snapshot copies s under the registry's lock and returns the copy, so
// callers can iterate and invoke callbacks without holding the lock.
func snapshot[T any](o *Observers, s []T) []T {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func (o *Observers) fireRequestComplete(req *buildmodel.BuildRequest, res *buildmodel.BuildResult) {
	for _, f := range snapshot(o, o.onRequestComplete) {
		f(req, res)
	}
}

func (o *Observers) fireRequestResumed(req *buildmodel.BuildRequest) {
	for _, f := range snapshot(o, o.onRequestResumed) {
		f(req)
	}
}

func (o *Observers) fireRequestBlocked(req *buildmodel.BuildRequest) {
	for _, f := range snapshot(o, o.onRequestBlocked) {
		f(req)
	}
}

func (o *Observers) fireNewConfigurationRequest(cfg *buildmodel.BuildRequestConfiguration) {
	for _, f := range snapshot(o, o.onNewConfigurationRequest) {
		f(cfg)
	}
}

func (o *Observers) fireStatusChanged(status Status) {
	for _, f := range snapshot(o, o.onStatusChanged) {
		f(status)
	}
}

func (o *Observers) fireEngineException(err error) {
	for _, f := range snapshot(o, o.onEngineException) {
		f(err)
	}
}
