// Package resultscache implements the Results Cache (spec §4.2): a
// per-configuration memo of target outcomes, shaped after the same
// sync.RWMutex-guarded-map idiom as internal/configcache, grounded on the
// teacher's internal/registry.Registry.
package resultscache

import (
	"sync"

	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
)

// Cache maps configurationId -> targetName -> TargetResult (spec §4.2).
type Cache struct {
	mu       sync.RWMutex
	byConfig map[int]map[string]*buildmodel.TargetResult
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{byConfig: make(map[int]map[string]*buildmodel.TargetResult)}
}

// PutTarget records the outcome of a single target under configurationID,
// overwriting any result already stored for that target name. The
// write-once rule for a target within a request is kept by the Target
// Builder, which checks the cache before running a target, not by this
// method.
func (c *Cache) PutTarget(configurationID int, result *buildmodel.TargetResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	targets, ok := c.byConfig[configurationID]
	if !ok {
		targets = make(map[string]*buildmodel.TargetResult)
		c.byConfig[configurationID] = targets
	}
	targets[result.TargetName] = result
}

// Put records every per-target result carried by a BuildResult under
// configurationID, used when an entire request completes at once.
func (c *Cache) Put(configurationID int, result *buildmodel.BuildResult) {
	if result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	targets, ok := c.byConfig[configurationID]
	if !ok {
		targets = make(map[string]*buildmodel.TargetResult)
		c.byConfig[configurationID] = targets
	}
	for name, r := range result.PerTargetResults {
		targets[name] = r
	}
}

// Has reports whether targetName has a recorded result for configurationID.
func (c *Cache) Has(configurationID int, targetName string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	targets, ok := c.byConfig[configurationID]
	if !ok {
		return false
	}
	_, ok = targets[targetName]
	return ok
}

// TargetResult returns the recorded result for targetName under
// configurationID, if any.
func (c *Cache) TargetResult(configurationID int, targetName string) (*buildmodel.TargetResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	targets, ok := c.byConfig[configurationID]
	if !ok {
		return nil, false
	}
	r, ok := targets[targetName]
	return r, ok
}

// Get returns a BuildResult covering request.Targets only if every named
// target already has a recorded result under request.ConfigurationID; it
// returns nil otherwise, per spec §4.2 ("get returns a result only if it
// covers every target named by the request"). This lets callers distinguish
// a fully-cached hit from a partial one without guessing: a nil return means
// "dispatch to the Target Builder", not "some targets are missing, start
// from scratch" — the builder itself consults the cache per-target.
func (c *Cache) Get(request *buildmodel.BuildRequest) *buildmodel.BuildResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	targets, ok := c.byConfig[request.ConfigurationID]
	if !ok {
		return nil
	}

	result := buildmodel.NewBuildResult(request.GlobalRequestID)
	for _, name := range request.Targets {
		r, ok := targets[name]
		if !ok {
			return nil
		}
		result.PerTargetResults[name] = r
		if r.Code == buildmodel.TargetFailure {
			result.OverallResult = buildmodel.BuildFailure
		}
	}
	return result
}
