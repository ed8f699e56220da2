package main

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/alexisbeaulieu97/buildcore/internal/buildengine"
	"github.com/alexisbeaulieu97/buildcore/internal/buildlogger"
	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
	"github.com/alexisbeaulieu97/buildcore/internal/configcache"
	"github.com/alexisbeaulieu97/buildcore/internal/project"
	"github.com/alexisbeaulieu97/buildcore/internal/resultscache"
	"github.com/alexisbeaulieu97/buildcore/internal/targetbuilder"
	"github.com/alexisbeaulieu97/buildcore/internal/taskhost"
)

// AppContext bundles the long-lived services the CLI's subcommands share,
// grounded on the teacher's cmd/streamy/app_context.go.
type AppContext struct {
	Engine  *buildengine.Engine
	Results *resultscache.Cache
	Configs *configcache.Cache
	Sink    buildlogger.EventSink
	Project *project.StaticProject
}

// newAppContext wires the demo project behind a single Target Builder and
// selects a console or JSON event sink depending on whether stdout is a
// terminal (golang.org/x/term), the same decision the teacher's apply
// command makes for interactive vs. non-interactive rendering.
func newAppContext(out io.Writer, forceJSON bool) *AppContext {
	var sink buildlogger.EventSink
	if forceJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		sink = buildlogger.NewJSONSink(out)
	} else {
		sink = buildlogger.NewConsoleSink(out)
	}

	proj := newDemoProject()
	host := taskhost.New(newDemoTaskFactory())
	results := resultscache.New()
	builder := targetbuilder.New(proj, host, results, sink)
	configs := configcache.New(nil)

	engine := buildengine.New(configs, results, func(*buildmodel.BuildRequestConfiguration) (buildengine.RequestBuilder, error) {
		return builder, nil
	})

	return &AppContext{Engine: engine, Results: results, Configs: configs, Sink: sink, Project: proj}
}
