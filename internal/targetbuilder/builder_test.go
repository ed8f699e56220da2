package targetbuilder

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alexisbeaulieu97/buildcore/internal/buildlogger"
	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
	"github.com/alexisbeaulieu97/buildcore/internal/project"
	"github.com/alexisbeaulieu97/buildcore/internal/resultscache"
	"github.com/alexisbeaulieu97/buildcore/internal/taskhost"
)

func echoFactory(names ...string) *taskhost.StaticTaskFactory {
	builders := make(map[string]func() taskhost.Task, len(names))
	for _, n := range names {
		builders[n] = taskhost.NewEchoTask
	}
	return taskhost.NewStaticTaskFactory(builders)
}

func newBuilder(t *testing.T, proj project.Instance, factory *taskhost.StaticTaskFactory, sink buildlogger.EventSink) (*Builder, *resultscache.Cache) {
	t.Helper()
	cache := resultscache.New()
	host := taskhost.New(factory)
	return New(proj, host, cache, sink), cache
}

// TestSimpleTarget implements spec §8 scenario 1.
func TestSimpleTarget(t *testing.T) {
	proj := project.NewStaticProject("p.proj", []*buildmodel.ProjectTarget{
		{Name: "Empty"},
	}, nil, nil)
	sink := buildlogger.NewRecordingSink()
	b, _ := newBuilder(t, proj, echoFactory(), sink)

	req := &buildmodel.BuildRequest{ConfigurationID: 1, Targets: []string{"Empty"}}
	result, err := b.Build(context.Background(), req, buildlogger.EventContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OverallResult != buildmodel.BuildSuccess {
		t.Fatalf("expected success, got %+v", result)
	}
	tr := result.PerTargetResults["Empty"]
	if tr == nil || tr.Code != buildmodel.TargetSuccess || len(tr.Items) != 0 {
		t.Fatalf("expected Empty=Success with no items, got %+v", tr)
	}

	started, finished := 0, 0
	for _, e := range sink.Snapshot() {
		if e.Kind == "TargetStarted" && e.Name == "Empty" {
			started++
		}
		if e.Kind == "TargetFinished" && e.Name == "Empty" {
			finished++
		}
	}
	if started != 1 || finished != 1 {
		t.Fatalf("expected exactly one started/finished pair, got %d/%d", started, finished)
	}
}

// TestDependencyBuild implements spec §8 scenario 2 and property P3.
func TestDependencyBuild(t *testing.T) {
	proj := project.NewStaticProject("p.proj", []*buildmodel.ProjectTarget{
		{Name: "Baz", DependsOn: []string{"Bar"}},
		{Name: "Bar"},
	}, nil, nil)
	sink := buildlogger.NewRecordingSink()
	b, cache := newBuilder(t, proj, echoFactory(), sink)

	req := &buildmodel.BuildRequest{ConfigurationID: 1, Targets: []string{"Baz"}}
	result, err := b.Build(context.Background(), req, buildlogger.EventContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.PerTargetResults["Bar"]; ok {
		t.Fatalf("expected only Baz exposed in the request result, got %v", result.PerTargetResults)
	}
	if _, ok := result.PerTargetResults["Baz"]; !ok {
		t.Fatalf("expected Baz exposed in the request result")
	}
	if !cache.Has(1, "Bar") || !cache.Has(1, "Baz") {
		t.Fatalf("expected both Bar and Baz cached")
	}

	events := sink.Snapshot()
	barFinished, bazStarted := -1, -1
	for i, e := range events {
		if e.Kind == "TargetFinished" && e.Name == "Bar" && barFinished == -1 {
			barFinished = i
		}
		if e.Kind == "TargetStarted" && e.Name == "Baz" && bazStarted == -1 {
			bazStarted = i
		}
	}
	if barFinished == -1 || bazStarted == -1 || barFinished > bazStarted {
		t.Fatalf("expected Bar completion before Baz start, events: %+v", events)
	}
}

// TestCycleDetection implements spec §8 scenario 3.
func TestCycleDetection(t *testing.T) {
	proj := project.NewStaticProject("p.proj", []*buildmodel.ProjectTarget{
		{Name: "A", AfterTargets: []string{"Build"}, DependsOn: []string{"B"}},
		{Name: "B", DependsOn: []string{"C"}},
		{Name: "C", DependsOn: []string{"A"}},
	}, nil, nil)
	sink := buildlogger.NewRecordingSink()
	b, _ := newBuilder(t, proj, echoFactory(), sink)

	req := &buildmodel.BuildRequest{ConfigurationID: 1, Targets: []string{"Build"}}
	result, err := b.Build(context.Background(), req, buildlogger.EventContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OverallResult != buildmodel.BuildFailure || result.Exception == nil {
		t.Fatalf("expected a failure carrying the cycle error, got %+v", result)
	}
	if !strings.Contains(result.Exception.Error(), "A <- C <- B <- A") {
		t.Fatalf("expected cycle message naming A <- C <- B <- A, got %q", result.Exception.Error())
	}

	errorEvents := 0
	for _, e := range sink.Snapshot() {
		if e.Kind == "Error" {
			errorEvents++
		}
	}
	if errorEvents != 1 {
		t.Fatalf("expected exactly one error event, got %d", errorEvents)
	}
}

// TestAfterTargetsFailure implements spec §8 scenario 4 and property P4.
func TestAfterTargetsFailure(t *testing.T) {
	proj := project.NewStaticProject("p.proj", []*buildmodel.ProjectTarget{
		{
			Name: "Build",
			Tasks: []buildmodel.TaskInstance{
				{Name: "BuildTask"},
			},
		},
		{
			Name:         "After",
			AfterTargets: []string{"Build"},
			Tasks: []buildmodel.TaskInstance{
				{Name: "ErrorTask1"},
				{Name: "ErrorTask2", Parameters: map[string]buildmodel.RawParameter{
					"Fail": {RawValue: "true"},
				}},
			},
		},
	}, nil, nil)
	sink := buildlogger.NewRecordingSink()
	b, _ := newBuilder(t, proj, echoFactory("BuildTask", "ErrorTask1", "ErrorTask2"), sink)

	req := &buildmodel.BuildRequest{ConfigurationID: 1, Targets: []string{"Build"}}
	result, err := b.Build(context.Background(), req, buildlogger.EventContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := result.PerTargetResults["Build"]
	if tr == nil || tr.Code != buildmodel.TargetSuccess {
		t.Fatalf("expected Build=Success, got %+v", tr)
	}
	if !tr.AfterTargetsHaveFailed {
		t.Fatalf("expected Build.afterTargetsHaveFailed=true")
	}
}

// TestSkipByCondition implements spec §8 scenario 5.
func TestSkipByCondition(t *testing.T) {
	proj := project.NewStaticProject("p.proj", []*buildmodel.ProjectTarget{
		{
			Name:      "Build",
			Condition: "'0'=='1'",
			Tasks: []buildmodel.TaskInstance{
				{Name: "BuildTask"},
			},
		},
		{
			Name:          "Before",
			BeforeTargets: []string{"Build"},
			Tasks: []buildmodel.TaskInstance{
				{Name: "BeforeTask"},
			},
		},
	}, nil, nil)
	sink := buildlogger.NewRecordingSink()
	b, _ := newBuilder(t, proj, echoFactory("BuildTask", "BeforeTask"), sink)

	req := &buildmodel.BuildRequest{ConfigurationID: 1, Targets: []string{"Build"}}
	result, err := b.Build(context.Background(), req, buildlogger.EventContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := result.PerTargetResults["Build"]
	if tr == nil || tr.Code != buildmodel.TargetSkipped {
		t.Fatalf("expected Build=Skipped, got %+v", tr)
	}

	ranBuildTask, ranBeforeTask := false, false
	for _, e := range sink.Snapshot() {
		if e.Kind == "TaskStarted" && e.Name == "BuildTask" {
			ranBuildTask = true
		}
		if e.Kind == "TaskStarted" && e.Name == "BeforeTask" {
			ranBeforeTask = true
		}
	}
	if ranBuildTask {
		t.Fatalf("expected BuildTask to not run when the condition is false")
	}
	if !ranBeforeTask {
		t.Fatalf("expected BeforeTask to run regardless of Build's condition")
	}
}

// TestMissingBeforeAfterTargetIsNotAnError is property P9.
func TestMissingBeforeAfterTargetIsNotAnError(t *testing.T) {
	proj := project.NewStaticProject("p.proj", []*buildmodel.ProjectTarget{
		{Name: "Real", BeforeTargets: []string{"Nonexistent"}, AfterTargets: []string{"AlsoMissing"}},
	}, nil, nil)
	sink := buildlogger.NewRecordingSink()
	b, _ := newBuilder(t, proj, echoFactory(), sink)

	req := &buildmodel.BuildRequest{ConfigurationID: 1, Targets: []string{"Real"}}
	result, err := b.Build(context.Background(), req, buildlogger.EventContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OverallResult != buildmodel.BuildSuccess {
		t.Fatalf("expected success, got %+v", result)
	}
	for _, e := range sink.Snapshot() {
		if e.Kind == "Error" {
			t.Fatalf("expected no error events, got %+v", e)
		}
	}
}

// TestInferredSkipContributesOutputsOnce is property P2.
func TestInferredSkipContributesOutputsOnce(t *testing.T) {
	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	proj := project.NewStaticProject("p.proj", []*buildmodel.ProjectTarget{
		{
			Name:    "Compile",
			Inputs:  []string{"a.go"},
			Outputs: []string{"a.o"},
			Tasks:   []buildmodel.TaskInstance{{Name: "BuildTask"}},
		},
	}, nil, project.StaticFileTimes{"a.go": early, "a.o": late})
	sink := buildlogger.NewRecordingSink()
	b, _ := newBuilder(t, proj, echoFactory("BuildTask"), sink)

	req := &buildmodel.BuildRequest{ConfigurationID: 1, Targets: []string{"Compile", "Compile"}}
	result, err := b.Build(context.Background(), req, buildlogger.EventContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := result.PerTargetResults["Compile"]
	if tr == nil || tr.Code != buildmodel.TargetSuccess || len(tr.Items) != 1 || tr.Items[0].ItemSpec != "a.o" {
		t.Fatalf("expected inferred-skip to contribute declared outputs, got %+v", tr)
	}

	taskStarted := 0
	for _, e := range sink.Snapshot() {
		if e.Kind == "TaskStarted" {
			taskStarted++
		}
	}
	if taskStarted != 0 {
		t.Fatalf("expected no tasks to run for an up-to-date target, got %d", taskStarted)
	}
}
