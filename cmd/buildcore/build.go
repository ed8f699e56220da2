package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/buildcore/internal/buildengine"
	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
)

type buildOptions struct {
	skipNonexistent bool
	skipTests       bool
	repeat          int
}

func newBuildCmd(root *rootFlags) *cobra.Command {
	opts := buildOptions{repeat: 1}

	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Submit a build request for the demo project against the build engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"Package"}
			}
			return runBuild(cmd, root, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.skipNonexistent, "skip-nonexistent-targets", false, "treat an undeclared requested target as a no-op instead of a virtual anchor")
	cmd.Flags().BoolVar(&opts.skipTests, "skip-tests", false, "set the SkipTests property so the Test target's condition evaluates to false")
	cmd.Flags().IntVar(&opts.repeat, "repeat", 1, "submit the same request this many times, demonstrating the Results Cache short-circuit on repeats after the first")

	return cmd
}

func runBuild(cmd *cobra.Command, root *rootFlags, opts buildOptions, targets []string) error {
	app := newAppContext(cmd.OutOrStdout(), root.json)

	if opts.skipTests {
		app.Project.SetProperty("SkipTests", "true")
	}

	var completions int
	app.Engine.Observers().OnRequestComplete(func(*buildmodel.BuildRequest, *buildmodel.BuildResult) { completions++ })
	app.Engine.Observers().OnEngineException(func(err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "engine exception: %v\n", err)
	})

	sr := buildengine.SubmitRequest{
		ProjectPath:  app.Project.Path(),
		ToolsVersion: "Current",
		Targets:      targets,
		Flags:        buildmodel.BuildRequestFlags{SkipNonexistentTargets: opts.skipNonexistent},
	}

	ctx := context.Background()
	var last *buildmodel.BuildResult
	for i := 0; i < opts.repeat; i++ {
		res, err := app.Engine.Submit(ctx, sr)
		if err != nil {
			return err
		}
		last = res
	}

	fmt.Fprintf(cmd.OutOrStdout(), "overall result: %s (requests completed: %d)\n", last.OverallResult, completions)
	if last.OverallResult != buildmodel.BuildSuccess {
		return fmt.Errorf("build failed: %v", last.Exception)
	}
	return nil
}
