// Package configcache implements the Config Cache (spec §4.1): a
// process-wide registry of project configurations keyed by
// (projectPath, toolsVersion, globalProperties), with monotonically
// assigned integer ids. Grounded on the teacher's internal/registry.Registry
// (internal/registry/registry.go), which applies the same single
// sync.RWMutex-guarded slice-plus-lookup shape to a different persisted
// collection.
package configcache

import (
	"sync"

	"dario.cat/mergo"

	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
	"github.com/alexisbeaulieu97/buildcore/pkg/builderrors"
)

// Cache is the process-wide configuration registry (spec §4.1).
type Cache struct {
	mu             sync.RWMutex
	byKey          map[string]int
	byID           map[int]*buildmodel.BuildRequestConfiguration
	nextID         int
	defaultGlobals map[string]string
}

// New creates an empty Cache. defaultGlobalProperties, if non-nil, are
// merged (via dario.cat/mergo, mirroring the teacher's settings-merge
// idiom) into every configuration's GlobalProperties before it is keyed, so
// two requests that differ only in properties already covered by the
// defaults still dedupe to the same configuration.
func New(defaultGlobalProperties map[string]string) *Cache {
	return &Cache{
		byKey:          make(map[string]int),
		byID:           make(map[int]*buildmodel.BuildRequestConfiguration),
		nextID:         1,
		defaultGlobals: defaultGlobalProperties,
	}
}

func (c *Cache) normalize(globalProperties map[string]string) map[string]string {
	merged := make(map[string]string, len(c.defaultGlobals)+len(globalProperties))
	for k, v := range globalProperties {
		merged[k] = v
	}
	if len(c.defaultGlobals) > 0 {
		_ = mergo.Merge(&merged, c.defaultGlobals)
	}
	return merged
}

// AddOrGet returns the configuration id for (projectPath, toolsVersion,
// globalProperties), creating a new entry if none exists yet (spec §4.1).
func (c *Cache) AddOrGet(projectPath, toolsVersion string, globalProperties map[string]string) int {
	merged := c.normalize(globalProperties)
	cfg := &buildmodel.BuildRequestConfiguration{
		ProjectPath:      projectPath,
		ToolsVersion:     toolsVersion,
		GlobalProperties: merged,
	}
	key := cfg.CacheKey()

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.byKey[key]; ok {
		return id
	}

	id := c.nextID
	c.nextID++
	cfg.ConfigurationID = id
	c.byKey[key] = id
	c.byID[id] = cfg
	return id
}

// AssignID registers a configuration synthesized by a node before the
// canonical id is known, returning the locally assigned id and flagging
// WasGeneratedByNode (spec §4.1).
func (c *Cache) AssignID(cfg *buildmodel.BuildRequestConfiguration) int {
	merged := c.normalize(cfg.GlobalProperties)
	normalized := &buildmodel.BuildRequestConfiguration{
		ProjectPath:        cfg.ProjectPath,
		ToolsVersion:       cfg.ToolsVersion,
		GlobalProperties:   merged,
		WasGeneratedByNode: true,
		Project:            cfg.Project,
	}
	key := normalized.CacheKey()

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.byKey[key]; ok {
		return id
	}

	id := c.nextID
	c.nextID++
	normalized.ConfigurationID = id
	c.byKey[key] = id
	c.byID[id] = normalized
	return id
}

// Resolve returns the configuration registered under id.
func (c *Cache) Resolve(id int) (*buildmodel.BuildRequestConfiguration, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cfg, ok := c.byID[id]
	if !ok {
		return nil, builderrors.NewProjectFileError(builderrors.CodeEngineFailure, "", "unknown configuration id", nil)
	}
	return cfg, nil
}

// RewriteID re-keys a locally node-generated configuration under the
// canonical id the authority assigned, without losing the attached project
// instance or any cache entries keyed by the old id (spec §4.1).
func (c *Cache) RewriteID(oldID, newID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg, ok := c.byID[oldID]
	if !ok {
		return
	}
	if oldID == newID {
		cfg.WasGeneratedByNode = false
		return
	}

	delete(c.byID, oldID)
	cfg.ConfigurationID = newID
	cfg.WasGeneratedByNode = false
	c.byID[newID] = cfg

	for key, id := range c.byKey {
		if id == oldID {
			c.byKey[key] = newID
		}
	}

	if newID >= c.nextID {
		c.nextID = newID + 1
	}
}

// AttachProject sets the evaluated project instance on a configuration once
// the evaluator has produced one (spec §3 "Lifecycles").
func (c *Cache) AttachProject(id int, project any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg, ok := c.byID[id]; ok {
		cfg.Project = project
	}
}
