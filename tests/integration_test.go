// Package tests holds cross-component integration coverage, grounded on the
// teacher's tests/ package (tests/integration_plugin_dependency_test.go):
// unit packages test one component in isolation; this package wires several
// together the way a real build session would.
package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/buildcore/internal/buildengine"
	"github.com/alexisbeaulieu97/buildcore/internal/buildlogger"
	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
	"github.com/alexisbeaulieu97/buildcore/internal/configcache"
	"github.com/alexisbeaulieu97/buildcore/internal/project"
	"github.com/alexisbeaulieu97/buildcore/internal/resultscache"
	"github.com/alexisbeaulieu97/buildcore/internal/sdkresolver"
	"github.com/alexisbeaulieu97/buildcore/internal/targetbuilder"
	"github.com/alexisbeaulieu97/buildcore/internal/taskhost"
)

func echoFactory(names ...string) *taskhost.StaticTaskFactory {
	builders := make(map[string]func() taskhost.Task, len(names))
	for _, n := range names {
		builders[n] = taskhost.NewEchoTask
	}
	return taskhost.NewStaticTaskFactory(builders)
}

// TestFullBuildSessionDependencyChain wires Config Cache, Results Cache,
// Task Execution Host, and Target Builder behind a Build Request Engine
// across a three-target dependency chain, then resubmits to confirm the
// Results Cache short-circuit skips every task on the second pass.
func TestFullBuildSessionDependencyChain(t *testing.T) {
	proj := project.NewStaticProject("app.proj", []*buildmodel.ProjectTarget{
		{Name: "Clean", Tasks: []buildmodel.TaskInstance{{Name: "BuildTask"}}},
		{Name: "Compile", DependsOn: []string{"Clean"}, Tasks: []buildmodel.TaskInstance{{Name: "BuildTask"}}},
		{Name: "Package", DependsOn: []string{"Compile"}, Tasks: []buildmodel.TaskInstance{{Name: "BuildTask"}}},
	}, nil, nil)

	sink := buildlogger.NewRecordingSink()
	results := resultscache.New()
	host := taskhost.New(echoFactory("BuildTask"))
	builder := targetbuilder.New(proj, host, results, sink)

	engine := buildengine.New(configcache.New(nil), results, func(*buildmodel.BuildRequestConfiguration) (buildengine.RequestBuilder, error) {
		return builder, nil
	})

	sr := buildengine.SubmitRequest{ProjectPath: "app.proj", ToolsVersion: "Current", Targets: []string{"Package"}}

	res, err := engine.Submit(context.Background(), sr)
	require.NoError(t, err)
	require.Equal(t, buildmodel.BuildSuccess, res.OverallResult)
	require.True(t, results.Has(1, "Clean"))
	require.True(t, results.Has(1, "Compile"))
	require.True(t, results.Has(1, "Package"))

	firstPassTasks := 0
	for _, e := range sink.Snapshot() {
		if e.Kind == "TaskStarted" {
			firstPassTasks++
		}
	}
	require.Equal(t, 3, firstPassTasks, "expected one BuildTask run per target on the first pass")

	var completed []*buildmodel.BuildRequest
	engine.Observers().OnRequestComplete(func(req *buildmodel.BuildRequest, _ *buildmodel.BuildResult) {
		completed = append(completed, req)
	})

	res2, err := engine.Submit(context.Background(), sr)
	require.NoError(t, err)
	require.Equal(t, buildmodel.BuildSuccess, res2.OverallResult)
	require.Len(t, completed, 1, "expected the resubmission to short-circuit through the Results Cache exactly once")

	secondPassTasks := 0
	for _, e := range sink.Snapshot() {
		if e.Kind == "TaskStarted" {
			secondPassTasks++
		}
	}
	require.Equal(t, 3, secondPassTasks, "expected no additional tasks to run on the cached resubmission")
}

// TestNestedBuildRequestAcrossTwoProjects exercises the engine's nested
// build request path (spec §4.6) against a second, independently configured
// project, confirming onRequestBlocked/onRequestResumed bracket the nested
// dispatch and the parent's own configuration is untouched by it.
func TestNestedBuildRequestAcrossTwoProjects(t *testing.T) {
	parentProj := project.NewStaticProject("parent.proj", []*buildmodel.ProjectTarget{
		{Name: "Build", Tasks: []buildmodel.TaskInstance{{Name: "BuildTask"}}},
	}, nil, nil)
	childProj := project.NewStaticProject("child.proj", []*buildmodel.ProjectTarget{
		{Name: "Build", Tasks: []buildmodel.TaskInstance{{Name: "BuildTask"}}},
	}, nil, nil)

	sink := buildlogger.NewRecordingSink()
	results := resultscache.New()
	host := taskhost.New(echoFactory("BuildTask"))
	configs := configcache.New(nil)
	parentID := configs.AddOrGet("parent.proj", "Current", nil)

	engine := buildengine.New(configs, results, func(cfg *buildmodel.BuildRequestConfiguration) (buildengine.RequestBuilder, error) {
		if cfg.ProjectPath == "child.proj" {
			return targetbuilder.New(childProj, host, results, sink), nil
		}
		return targetbuilder.New(parentProj, host, results, sink), nil
	})

	var order []string
	engine.Observers().OnRequestBlocked(func(*buildmodel.BuildRequest) { order = append(order, "blocked") })
	engine.Observers().OnRequestResumed(func(*buildmodel.BuildRequest) { order = append(order, "resumed") })

	parent := &buildmodel.BuildRequest{SubmissionID: 1, GlobalRequestID: 1, ConfigurationID: parentID, Targets: []string{"Build"}}
	out, err := engine.SubmitNested(context.Background(), parent, []buildengine.NestedRequest{
		{ProjectPath: "child.proj", ToolsVersion: "Current", Targets: []string{"Build"}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"blocked", "resumed"}, order)
	require.Len(t, out, 1)
	for _, r := range out {
		require.Equal(t, buildmodel.BuildSuccess, r.OverallResult)
	}

	require.False(t, results.Has(parentID, "Build"), "the nested dispatch must not pollute the parent's own configuration id")
}

// TestSdkResolutionThroughYAMLManifest exercises the SDK Resolver Service
// loaded from a YAML manifest document (gopkg.in/yaml.v3) wrapped by the
// caching service, confirming a caching hit for a repeat request returns the
// same result without invoking the resolver twice.
func TestSdkResolutionThroughYAMLManifest(t *testing.T) {
	const manifest = `
deploymentStyle: framework
resolvers:
  - name: vendored
    priority: 1
`
	invocations := 0
	factory := func(name, loadPath string) (sdkresolver.Resolver, error) {
		return stubResolver{name: name, fn: func(ref buildmodel.SdkReference) (*buildmodel.SdkResult, error) {
			invocations++
			return buildmodel.NewSdkSuccess("/vendor/"+ref.Name, "2.0.0"), nil
		}}, nil
	}

	loader, err := sdkresolver.NewYAMLManifestLoader([]byte(manifest), factory, nil)
	require.NoError(t, err)

	caching := sdkresolver.NewCaching(sdkresolver.New(loader))
	ref := buildmodel.SdkReference{Name: "Contoso.Build", ReferencedVersion: "2.0.0"}

	res1, err := caching.Resolve(context.Background(), 1, ref, sdkresolver.Context{}, true)
	require.NoError(t, err)
	require.True(t, res1.Success)
	require.Equal(t, "/vendor/Contoso.Build", res1.Path)

	res2, err := caching.Resolve(context.Background(), 1, ref, sdkresolver.Context{}, true)
	require.NoError(t, err)
	require.Same(t, res1, res2)
	require.Equal(t, 1, invocations, "expected the resolver to run exactly once across both requests")
}

type stubResolver struct {
	name string
	fn   func(buildmodel.SdkReference) (*buildmodel.SdkResult, error)
}

func (s stubResolver) Name() string { return s.name }

func (s stubResolver) Resolve(_ context.Context, _ sdkresolver.Context, ref buildmodel.SdkReference) (*buildmodel.SdkResult, error) {
	return s.fn(ref)
}
