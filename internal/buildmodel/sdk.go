// Package buildmodel holds the data types shared across the build engine
// core: SDK references/results, build requests and configurations, target
// and task results. Grounded on the teacher's internal/model package, which
// plays the same "plain data, no behaviour" role for step results and
// evaluation results.
package buildmodel

import "strings"

// SdkReference identifies a named SDK, optionally pinned to a referenced
// version and/or a minimum acceptable version (spec §3).
type SdkReference struct {
	Name              string `validate:"required"`
	ReferencedVersion string
	MinimumVersion    string
}

// SameVersion implements the "same version" rule from spec §3: two
// references are the same version iff both versions are absent, or both are
// absent of patch components and case-insensitively equal, or an exact
// case-insensitive string match.
func SameVersion(a, b string) bool {
	if a == "" && b == "" {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}
	return stripPatch(a) != "" && strings.EqualFold(stripPatch(a), stripPatch(b))
}

// stripPatch returns the major.minor prefix of a version string when it has
// no patch component beyond major.minor (e.g. "1.0" -> "1.0", "1.0.0" ->
// "" since it does carry a patch component).
func stripPatch(v string) string {
	parts := strings.Split(v, ".")
	if len(parts) != 2 {
		return ""
	}
	return parts[0] + "." + parts[1]
}

// SdkResult is the outcome of a single resolver invocation or of the chain
// as a whole (spec §3).
type SdkResult struct {
	Success  bool
	Errors   []string
	Warnings []string

	Path            string
	AdditionalPaths []string
	Version         string
	PropertiesToAdd map[string]string
	ItemsToAdd      map[string][]SdkItem
	EnvToAdd        map[string]string

	// State is opaque resolver-specific state preserved across resolutions
	// sharing the same submission (spec §3 "Lifecycles", §4.3 step 5).
	State any
}

// SdkItem is one item contributed by a resolver under a given item name.
type SdkItem struct {
	ItemSpec string
	Metadata map[string]string
}

// Paths returns the primary path followed by any additional paths.
func (r *SdkResult) Paths() []string {
	if r == nil || r.Path == "" {
		return nil
	}
	out := make([]string, 0, 1+len(r.AdditionalPaths))
	out = append(out, r.Path)
	out = append(out, r.AdditionalPaths...)
	return out
}

// NewSdkFailure builds a failed SdkResult carrying errors/warnings.
func NewSdkFailure(errs, warnings []string) *SdkResult {
	return &SdkResult{Success: false, Errors: errs, Warnings: warnings}
}

// NewSdkSuccess builds a successful SdkResult for the given primary path.
func NewSdkSuccess(path, version string) *SdkResult {
	return &SdkResult{Success: true, Path: path, Version: version}
}
