// Package targetbuilder implements the Target Builder (spec §4.5):
// topological traversal of one project's target graph with depends/before/
// after edges, condition evaluation, inferred skip, and error-handler
// dispatch. Grounded on the teacher's internal/dag.Graph
// (internal/dag/graph.go) Kahn's-algorithm leveling, generalized here from
// "level-parallel plugin steps" to "dependency- and anchor-driven target
// traversal" with an explicit active-stack cycle check per spec §9's design
// note, since before/after anchoring make a pure topological level
// computation insufficient.
package targetbuilder

import (
	"strings"

	"github.com/alexisbeaulieu97/buildcore/internal/project"
)

// decodeName un-escapes a "%3B" sequence inside a single before/after
// target name back to a literal ';' (spec §4.5 "Escaped separators").
func decodeName(name string) string {
	return strings.ReplaceAll(name, "%3B", ";")
}

// edges holds the before/after anchor maps precomputed once per project
// (spec §9: "Before/after-target graph must be precomputed before any
// target runs; building it lazily invites duplicate inferred-skip
// contributions").
type edges struct {
	before map[string][]string // anchor -> targets that must run before it
	after  map[string][]string // anchor -> targets that must run after it
}

// buildEdges scans every declared target and records the before/after
// anchors it names. A name that matches no declared target is simply never
// looked up later, which is how "missing target names... are silently
// ignored" (spec §4.5) falls out without a special case — except the
// literal request target itself, which targetbuilder treats as a virtual
// anchor even when undeclared (see runVirtual).
func buildEdges(proj project.Instance) edges {
	e := edges{before: make(map[string][]string), after: make(map[string][]string)}
	for _, name := range proj.TargetNames() {
		t, ok := proj.Target(name)
		if !ok {
			continue
		}
		for _, anchor := range t.BeforeTargets {
			anchor = decodeName(anchor)
			e.before[anchor] = append(e.before[anchor], name)
		}
		for _, anchor := range t.AfterTargets {
			anchor = decodeName(anchor)
			e.after[anchor] = append(e.after[anchor], name)
		}
	}
	return e
}

func indexOf(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}
