package buildmodel

import (
	"sort"
	"strings"
)

// BuildRequestFlags carries request-scoped execution flags (spec §3).
type BuildRequestFlags struct {
	SkipNonexistentTargets bool
}

// BuildRequest demands a target list against a configuration (spec §3).
type BuildRequest struct {
	SubmissionID    int
	NodeRequestID   int
	GlobalRequestID int
	ConfigurationID int
	Targets         []string
	ParentGlobalID  int // 0 when there is no parent (top-level submission)
	Flags           BuildRequestFlags
}

// BuildRequestConfiguration identifies a project build under a normalized
// (projectPath, toolsVersion, globalProperties) key (spec §3, §4.1).
type BuildRequestConfiguration struct {
	ConfigurationID    int
	ProjectPath        string
	ToolsVersion       string
	GlobalProperties   map[string]string
	WasGeneratedByNode bool

	// Project is attached lazily once the evaluator has produced a
	// ProjectInstance for this configuration.
	Project any
}

// CacheKey returns the case-insensitive-on-path, exact-elsewhere identity
// used by the Config Cache to de-duplicate configurations (spec §4.1).
func (c *BuildRequestConfiguration) CacheKey() string {
	return cacheKey(c.ProjectPath, c.ToolsVersion, c.GlobalProperties)
}

func cacheKey(projectPath, toolsVersion string, globalProperties map[string]string) string {
	keys := make([]string, 0, len(globalProperties))
	for k := range globalProperties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	key := strings.ToLower(projectPath) + "\x00" + toolsVersion
	for _, k := range keys {
		key += "\x00" + k + "=" + globalProperties[k]
	}
	return key
}
