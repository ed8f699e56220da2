package main

import (
	"time"

	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
	"github.com/alexisbeaulieu97/buildcore/internal/project"
	"github.com/alexisbeaulieu97/buildcore/internal/taskhost"
)

// newDemoProject builds the in-memory project the CLI drives, standing in
// for the XML project file a real host would load and evaluate (spec §1
// explicit non-goal). It exercises dependsOn, a before-target, an
// after-target, a condition, and an inputs/outputs inferred skip so a single
// `buildcore build` invocation can show most of the Target Builder's
// behavior at once.
func newDemoProject() *project.StaticProject {
	targets := []*buildmodel.ProjectTarget{
		{
			Name:  "Clean",
			Tasks: []buildmodel.TaskInstance{{Name: "Echo", Parameters: map[string]buildmodel.RawParameter{"Message": {RawValue: "cleaning output directory"}}}},
		},
		{
			Name:      "Compile",
			DependsOn: []string{"Clean"},
			Inputs:    []string{"src/main.go"},
			Outputs:   []string{"bin/app"},
			Tasks:     []buildmodel.TaskInstance{{Name: "Echo", Parameters: map[string]buildmodel.RawParameter{"Message": {RawValue: "compiling sources"}}}},
		},
		{
			Name:      "Test",
			DependsOn: []string{"Compile"},
			Condition: "'$(SkipTests)'!='true'",
			Tasks:     []buildmodel.TaskInstance{{Name: "Echo", Parameters: map[string]buildmodel.RawParameter{"Message": {RawValue: "running tests"}}}},
		},
		{
			Name:      "Package",
			DependsOn: []string{"Test"},
			Tasks:     []buildmodel.TaskInstance{{Name: "Echo", Parameters: map[string]buildmodel.RawParameter{"Message": {RawValue: "packaging artifacts"}}}},
		},
		{
			Name:         "Notify",
			AfterTargets: []string{"Package"},
			Tasks:        []buildmodel.TaskInstance{{Name: "Echo", Parameters: map[string]buildmodel.RawParameter{"Message": {RawValue: "notifying downstream systems"}}}},
		},
	}

	scope := &taskhost.StaticScope{Properties: map[string]string{"$(SkipTests)": "false"}}
	times := project.StaticFileTimes{
		"src/main.go": time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		"bin/app":     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	return project.NewStaticProject("demo.proj", targets, scope, times)
}

func newDemoTaskFactory() *taskhost.StaticTaskFactory {
	return taskhost.NewStaticTaskFactory(map[string]func() taskhost.Task{
		"Echo": taskhost.NewEchoTask,
	})
}
