package targetbuilder

import (
	"context"

	"github.com/alexisbeaulieu97/buildcore/internal/buildlogger"
	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
	"github.com/alexisbeaulieu97/buildcore/internal/project"
	"github.com/alexisbeaulieu97/buildcore/internal/resultscache"
	"github.com/alexisbeaulieu97/buildcore/internal/taskhost"
	"github.com/alexisbeaulieu97/buildcore/pkg/builderrors"
)

// Builder walks one project's target graph for a single configuration
// (spec §4.5). A Builder is scoped to one project instance; the edges it
// precomputes are reused across every request the engine dispatches to it.
type Builder struct {
	proj  project.Instance
	host  *taskhost.Host
	cache *resultscache.Cache
	sink  buildlogger.EventSink
	edges edges
}

// New constructs a Builder for proj, precomputing its before/after edges.
func New(proj project.Instance, host *taskhost.Host, cache *resultscache.Cache, sink buildlogger.EventSink) *Builder {
	if sink == nil {
		sink = buildlogger.NullSink{}
	}
	return &Builder{
		proj:  proj,
		host:  host,
		cache: cache,
		sink:  sink,
		edges: buildEdges(proj),
	}
}

// Build runs req.Targets against b's project and configuration, committing
// every executed target (requested, dependency, before/after-triggered) to
// the Results Cache, per spec §4.5.
func (b *Builder) Build(ctx context.Context, req *buildmodel.BuildRequest, evCtx buildlogger.EventContext) (*buildmodel.BuildResult, error) {
	ex := &execution{
		b:               b,
		configurationID: req.ConfigurationID,
		evCtx:           evCtx,
		skipNonexistent: req.Flags.SkipNonexistentTargets,
		onStack:         make(map[string]bool),
	}

	result := buildmodel.NewBuildResult(req.GlobalRequestID)
	for _, name := range req.Targets {
		tr, err := ex.run(ctx, name)
		if err != nil {
			result.OverallResult = buildmodel.BuildFailure
			result.Exception = err
			b.sink.Error(evCtx, "", err.Error())
			return result, nil
		}
		if tr == nil {
			continue // SkipNonexistentTargets: name absent, nothing to report
		}
		result.PerTargetResults[name] = tr
		if tr.Code == buildmodel.TargetFailure {
			result.OverallResult = buildmodel.BuildFailure
		}
	}
	return result, nil
}

// execution is the per-request traversal state: the active target stack for
// cycle detection (spec §9). The inferred-skip exactly-once rule needs no
// state here: it rests on the Results Cache write made at the point of
// inference (see tryInferredSkip).
type execution struct {
	b               *Builder
	configurationID int
	evCtx           buildlogger.EventContext
	skipNonexistent bool

	onStack    map[string]bool
	stackOrder []string
}

func (ex *execution) run(ctx context.Context, name string) (*buildmodel.TargetResult, error) {
	if cached, ok := ex.b.cache.TargetResult(ex.configurationID, name); ok {
		return cached, nil
	}

	target, declared := ex.b.proj.Target(name)
	if !declared && ex.skipNonexistent {
		return nil, nil
	}

	if ex.onStack[name] {
		idx := indexOf(ex.stackOrder, name)
		cycle := append(append([]string{}, ex.stackOrder[idx:]...), name)
		return nil, builderrors.NewCycleError(cycle)
	}

	ex.onStack[name] = true
	ex.stackOrder = append(ex.stackOrder, name)
	defer func() {
		delete(ex.onStack, name)
		ex.stackOrder = ex.stackOrder[:len(ex.stackOrder)-1]
	}()

	if !declared {
		return ex.runVirtual(ctx, name)
	}
	return ex.runDeclared(ctx, name, target)
}

// runVirtual handles a name with no declared target definition: it still
// participates in the before/after graph as a pure anchor (spec §4.5
// scenario 3 relies on this — a request target that is never itself
// declared but is named by another target's afterTargets).
func (ex *execution) runVirtual(ctx context.Context, name string) (*buildmodel.TargetResult, error) {
	for _, beforeName := range ex.b.edges.before[name] {
		if _, err := ex.run(ctx, beforeName); err != nil {
			return nil, err
		}
	}

	tr := &buildmodel.TargetResult{TargetName: name, Code: buildmodel.TargetSuccess}
	ex.b.cache.PutTarget(ex.configurationID, tr)

	if err := ex.runAfter(ctx, name, tr); err != nil {
		return nil, err
	}
	return tr, nil
}

func (ex *execution) runDeclared(ctx context.Context, name string, target *buildmodel.ProjectTarget) (*buildmodel.TargetResult, error) {
	ok, err := ex.b.proj.EvaluateCondition(target.Condition)
	if err != nil {
		return nil, err
	}
	if !ok {
		for _, beforeName := range ex.b.edges.before[name] {
			if _, err := ex.run(ctx, beforeName); err != nil {
				return nil, err
			}
		}
		tr := &buildmodel.TargetResult{TargetName: name, Code: buildmodel.TargetSkipped}
		ex.b.cache.PutTarget(ex.configurationID, tr)
		return tr, nil
	}

	for _, dep := range target.DependsOn {
		depResult, err := ex.run(ctx, dep)
		if err != nil {
			return nil, err
		}
		if depResult != nil && depResult.Code == buildmodel.TargetFailure {
			tr := &buildmodel.TargetResult{TargetName: name, Code: buildmodel.TargetFailure}
			ex.b.cache.PutTarget(ex.configurationID, tr)
			return tr, nil
		}
	}

	for _, beforeName := range ex.b.edges.before[name] {
		if _, err := ex.run(ctx, beforeName); err != nil {
			return nil, err
		}
	}

	ex.b.sink.TargetStarted(ex.evCtx, name)

	if tr, ok, err := ex.tryInferredSkip(target); err != nil {
		return nil, err
	} else if ok {
		ex.b.cache.PutTarget(ex.configurationID, tr)
		ex.b.sink.TargetFinished(ex.evCtx, name, true)
		if err := ex.runAfter(ctx, name, tr); err != nil {
			return nil, err
		}
		return tr, nil
	}

	tr, err := ex.runTasks(ctx, target)
	if err != nil {
		return nil, err
	}
	ex.b.cache.PutTarget(ex.configurationID, tr)
	ex.b.sink.TargetFinished(ex.evCtx, name, tr.Code != buildmodel.TargetFailure)

	if err := ex.runAfter(ctx, name, tr); err != nil {
		return nil, err
	}
	return tr, nil
}

// tryInferredSkip implements spec §4.5 "Inputs/outputs up-to-date check".
// Because this runs exactly once per target per Builder.Build call (guarded
// by the Results Cache write that immediately follows, which makes every
// later ex.run for the same name return at the cache check above), the
// inference contributes outputs at most once, satisfying property P2.
func (ex *execution) tryInferredSkip(target *buildmodel.ProjectTarget) (*buildmodel.TargetResult, bool, error) {
	if len(target.Inputs) == 0 || len(target.Outputs) == 0 {
		return nil, false, nil
	}
	upToDate, err := ex.b.proj.IsUpToDate(target.Inputs, target.Outputs)
	if err != nil {
		return nil, false, err
	}
	if !upToDate {
		return nil, false, nil
	}
	items := make([]buildmodel.TaskItem, len(target.Outputs))
	for i, out := range target.Outputs {
		items[i] = buildmodel.TaskItem{ItemSpec: out}
	}
	return &buildmodel.TargetResult{TargetName: target.Name, Code: buildmodel.TargetSuccess, Items: items}, true, nil
}

// runTasks executes target's task list in declared order, honoring
// continueOnError and OnError handler dispatch (spec §4.5 "Task execution
// inside a target", §7.2).
func (ex *execution) runTasks(ctx context.Context, target *buildmodel.ProjectTarget) (*buildmodel.TargetResult, error) {
	tr := &buildmodel.TargetResult{TargetName: target.Name, Code: buildmodel.TargetSuccess}

	for _, task := range target.Tasks {
		outcome, err := ex.b.host.Run(ctx, task, ex.b.proj.Scope(), ex.evCtx, ex.b.sink)
		if err != nil {
			return nil, err
		}
		if outcome.Succeeded {
			ex.applyOutcome(outcome)
			continue
		}

		tr.Code = buildmodel.TargetFailure
		if task.ContinueOnError == buildmodel.ContinueWarnAndContinue || task.ContinueOnError == buildmodel.ContinueErrorAndContinue {
			continue
		}

		for _, handler := range target.OnErrorHandlers {
			for _, handlerTarget := range handler.Targets {
				if _, err := ex.run(ctx, handlerTarget); err != nil {
					return nil, err
				}
			}
		}
		break
	}

	return tr, nil
}

func (ex *execution) applyOutcome(outcome taskhost.Outcome) {
	for name, value := range outcome.PropertyUpdates {
		ex.b.proj.SetProperty(name, value)
	}
	for name, items := range outcome.ItemUpdates {
		ex.b.proj.AddItems(name, items)
	}
}

// runAfter runs name's pending after-targets and folds their failure state
// into tr.AfterTargetsHaveFailed without altering tr.Code (spec §4.5
// "After-target failures", property P4).
func (ex *execution) runAfter(ctx context.Context, name string, tr *buildmodel.TargetResult) error {
	failed := false
	for _, afterName := range ex.b.edges.after[name] {
		afterResult, err := ex.run(ctx, afterName)
		if err != nil {
			return err
		}
		if afterResult != nil && (afterResult.Code == buildmodel.TargetFailure || afterResult.AfterTargetsHaveFailed) {
			failed = true
		}
	}
	if failed {
		tr.AfterTargetsHaveFailed = true
	}
	return nil
}
