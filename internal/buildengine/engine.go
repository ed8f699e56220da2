// Package buildengine implements the Build Request Engine (spec §4.6): the
// component that owns the engine lifecycle state machine, dispatches build
// requests to a per-configuration Target Builder, short-circuits through the
// Results Cache, and drives nested build requests raised mid-build. Grounded
// on the teacher's internal/dag.Executor (internal/dag/executor.go), which
// runs independent units of work with a goroutine-per-unit,
// sync.WaitGroup-barrier shape; generalized here from "run one level of
// plugins" to "run one build request, possibly fanning out into nested
// requests that must themselves complete before the parent resumes".
package buildengine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/buildcore/internal/buildlogger"
	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
	"github.com/alexisbeaulieu97/buildcore/internal/configcache"
	"github.com/alexisbeaulieu97/buildcore/internal/resultscache"
	"github.com/alexisbeaulieu97/buildcore/pkg/builderrors"
)

var validate = validator.New()

// SubmitRequest is the engine's public submission shape (spec §4.6
// "BeginBuild"). Validated the way the teacher validates config structs
// (internal/config/validation_helpers.go): go-playground/validator tags,
// converted to a ProjectFileError on failure instead of a raw
// validator.ValidationErrors.
type SubmitRequest struct {
	ProjectPath      string `validate:"required"`
	ToolsVersion     string `validate:"required"`
	GlobalProperties map[string]string
	Targets          []string `validate:"required,min=1,dive,required"`
	Flags            buildmodel.BuildRequestFlags
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}
	if ves, ok := err.(validator.ValidationErrors); ok {
		fe := ves[0]
		return builderrors.NewProjectFileError(builderrors.CodeEngineFailure, fe.Namespace(),
			fmt.Sprintf("field %q failed validation for tag %q", fe.Field(), fe.Tag()), err)
	}
	return builderrors.NewProjectFileError(builderrors.CodeEngineFailure, "", err.Error(), err)
}

// RequestBuilder is what a per-configuration Target Builder must support so
// the engine can drive it (spec §4.5/§4.6 boundary). *targetbuilder.Builder
// satisfies this directly.
type RequestBuilder interface {
	Build(ctx context.Context, req *buildmodel.BuildRequest, evCtx buildlogger.EventContext) (*buildmodel.BuildResult, error)
}

// BuilderFactory resolves (creating or looking up, at the caller's
// discretion) the RequestBuilder responsible for a configuration.
type BuilderFactory func(cfg *buildmodel.BuildRequestConfiguration) (RequestBuilder, error)

// NestedRequest describes one sub-build a caller wants the engine to run to
// completion before a parent request resumes (spec §4.6 steps 1-3, "nested
// build requests").
type NestedRequest struct {
	ProjectPath      string
	ToolsVersion     string
	GlobalProperties map[string]string
	Targets          []string
	Flags            buildmodel.BuildRequestFlags
}

// Engine is the Build Request Engine (spec §4.6). One Engine serves any
// number of top-level submissions and their nested requests; configuration
// identity and cached results persist across submissions within the same
// Engine, matching the original's "process-wide build manager" scope.
type Engine struct {
	mu      sync.Mutex
	status  Status
	configs *configcache.Cache
	results *resultscache.Cache
	builder BuilderFactory

	observers *Observers

	nextSubmission int32
	nextGlobal     int32
}

// New constructs an Engine wired to configs, results, and a BuilderFactory
// (spec §4.6 "The engine owns no target-execution logic itself; it delegates
// to one Target Builder per configuration").
func New(configs *configcache.Cache, results *resultscache.Cache, builder BuilderFactory) *Engine {
	return &Engine{
		configs:        configs,
		results:        results,
		builder:        builder,
		observers:      NewObservers(),
		nextSubmission: 0,
		nextGlobal:     0,
	}
}

// Observers returns the registry callers use to subscribe to engine events
// (spec §4.6, §6).
func (e *Engine) Observers() *Observers { return e.observers }

// Status returns the engine's current lifecycle state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	changed := e.status != s
	e.status = s
	e.mu.Unlock()
	if changed {
		e.observers.fireStatusChanged(s)
	}
}

func (e *Engine) nextSubmissionID() int {
	return int(atomic.AddInt32(&e.nextSubmission, 1))
}

func (e *Engine) nextGlobalRequestID() int {
	return int(atomic.AddInt32(&e.nextGlobal, 1))
}

// Submit is the top-level entry point (spec §4.6 "BeginBuild / Submit"): it
// resolves or creates a configuration, builds a BuildRequest, and dispatches
// it. Uninitialized engines transition to Active on first use; the caller is
// expected to call CleanupForBuild between independent build sessions.
func (e *Engine) Submit(ctx context.Context, sr SubmitRequest) (*buildmodel.BuildResult, error) {
	if err := validate.Struct(sr); err != nil {
		return nil, convertValidationError(err)
	}

	if e.Status() == StatusUninitialized {
		e.setStatus(StatusActive)
	}

	configID := e.configs.AddOrGet(sr.ProjectPath, sr.ToolsVersion, sr.GlobalProperties)
	req := &buildmodel.BuildRequest{
		SubmissionID:    e.nextSubmissionID(),
		GlobalRequestID: e.nextGlobalRequestID(),
		ConfigurationID: configID,
		Targets:         sr.Targets,
		Flags:           sr.Flags,
	}
	return e.dispatch(ctx, req)
}

// dispatch runs a single BuildRequest: a Results Cache hit short-circuits
// straight to onRequestComplete (spec §4.2, §4.6 "Results Cache consultation
// happens once per request, at dispatch"); otherwise the request goes to the
// configuration's Target Builder.
func (e *Engine) dispatch(ctx context.Context, req *buildmodel.BuildRequest) (*buildmodel.BuildResult, error) {
	if cached := e.results.Get(req); cached != nil {
		e.observers.fireRequestComplete(req, cached)
		return cached, nil
	}

	cfg, err := e.configs.Resolve(req.ConfigurationID)
	if err != nil {
		return nil, e.fail(err)
	}

	builder, err := e.builder(cfg)
	if err != nil {
		return nil, e.fail(err)
	}

	e.setStatus(StatusActive)
	evCtx := buildlogger.EventContext{SubmissionID: req.SubmissionID, NodeID: req.GlobalRequestID}

	result, err := builder.Build(ctx, req, evCtx)
	if err != nil {
		return nil, e.fail(err)
	}

	e.results.Put(req.ConfigurationID, result)
	e.observers.fireRequestComplete(req, result)
	e.setStatus(StatusIdle)
	return result, nil
}

// fail records an engine-internal exception and transitions to Shutdown
// (spec §4.6 "onEngineException", §7.6). Submit does not refuse work while
// Shutdown: a later dispatch that reaches a Target Builder sets the status
// back to Active, and CleanupForBuild sets it to Uninitialized. There is no
// separate reset operation.
func (e *Engine) fail(err error) error {
	wrapped := builderrors.NewEngineError(err)
	e.observers.fireEngineException(wrapped)
	e.setStatus(StatusShutdown)
	return wrapped
}

// SubmitNested runs requests as nested build requests of parent, blocking
// until every one completes (spec §4.6 "a request may raise further build
// requests mid-build and suspend until they resolve"). The engine fires
// onRequestBlocked before dispatch and onRequestResumed once every nested
// request has a result, transitioning through Waiting in between. Nested
// requests run concurrently, mirroring the teacher's goroutine-per-unit,
// WaitGroup-barrier shape generalized from dag levels to build requests.
func (e *Engine) SubmitNested(ctx context.Context, parent *buildmodel.BuildRequest, requests []NestedRequest) (map[int]*buildmodel.BuildResult, error) {
	if len(requests) == 0 {
		return map[int]*buildmodel.BuildResult{}, nil
	}

	e.observers.fireRequestBlocked(parent)
	e.setStatus(StatusWaiting)

	children := make([]*buildmodel.BuildRequest, len(requests))
	for i, nr := range requests {
		configID := e.configs.AddOrGet(nr.ProjectPath, nr.ToolsVersion, nr.GlobalProperties)
		cfg, err := e.configs.Resolve(configID)
		if err != nil {
			return nil, e.fail(err)
		}
		e.observers.fireNewConfigurationRequest(cfg)

		children[i] = &buildmodel.BuildRequest{
			SubmissionID:    parent.SubmissionID,
			GlobalRequestID: e.nextGlobalRequestID(),
			ConfigurationID: configID,
			ParentGlobalID:  parent.GlobalRequestID,
			Targets:         nr.Targets,
			Flags:           nr.Flags,
		}
	}

	results := make([]*buildmodel.BuildResult, len(children))
	errs := make([]error, len(children))
	var wg sync.WaitGroup
	for i, child := range children {
		wg.Add(1)
		go func(i int, child *buildmodel.BuildRequest) {
			defer wg.Done()
			res, err := e.dispatch(ctx, child)
			results[i] = res
			errs[i] = err
		}(i, child)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	e.observers.fireRequestResumed(parent)
	e.setStatus(StatusActive)

	out := make(map[int]*buildmodel.BuildResult, len(children))
	for i, child := range children {
		out[child.ConfigurationID] = results[i]
	}
	return out, nil
}

// CleanupForBuild releases a build session's state back to Uninitialized
// (spec §4.6 "cleanupForBuild"). The Config Cache and Results Cache are left
// untouched — cross-session reuse of resolved configurations is the whole
// point of keeping them as separate components the engine only coordinates.
func (e *Engine) CleanupForBuild() {
	e.setStatus(StatusUninitialized)
}
