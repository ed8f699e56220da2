package sdkresolver

import (
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/buildcore/pkg/builderrors"
)

// manifestEntry is the on-disk shape of one resolver registration.
type manifestEntry struct {
	Name     string `yaml:"name"`
	LoadPath string `yaml:"loadPath"`
	Pattern  string `yaml:"pattern"`
	Priority int    `yaml:"priority"`
	Default  bool   `yaml:"default"`
}

type manifestDocument struct {
	DeploymentStyle string          `yaml:"deploymentStyle"`
	Resolvers       []manifestEntry `yaml:"resolvers"`
}

// ResolverFactory materializes a Resolver from its manifest name, deferring
// the actual construction until the resolver is selected (spec §4.3 step 3
// "load it lazily").
type ResolverFactory func(name, loadPath string) (Resolver, error)

// YAMLManifestLoader implements Loader by reading a YAML document listing
// resolver manifests in priority order, grounded on the teacher's
// config.LoadConfig (internal/config/config.go), which parses a declarative
// YAML document into the same strongly typed registration shape, here
// generalized from pipeline steps to SDK resolvers.
type YAMLManifestLoader struct {
	manifests []Manifest
	factory   ResolverFactory
	defaults  []Resolver
	style     DeploymentStyle
}

// NewYAMLManifestLoader parses data and builds a loader. factory is called
// each time a resolver is selected during a resolution, not at load time;
// the loader does not cache the resolvers it returns. defaultResolvers are consulted per the document's declared deployment
// style ("core" or "framework"; anything else defaults to "framework").
func NewYAMLManifestLoader(data []byte, factory ResolverFactory, defaultResolvers []Resolver) (*YAMLManifestLoader, error) {
	var doc manifestDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, builderrors.NewProjectFileError(builderrors.CodeEngineFailure, "sdk-resolver-manifest", "failed to parse resolver manifest document", err)
	}

	sort.SliceStable(doc.Resolvers, func(i, j int) bool {
		return doc.Resolvers[i].Priority < doc.Resolvers[j].Priority
	})

	manifests := make([]Manifest, 0, len(doc.Resolvers))
	for _, entry := range doc.Resolvers {
		m := Manifest{Name: entry.Name, LoadPath: entry.LoadPath}
		if entry.Pattern != "" {
			re, err := regexp.Compile(entry.Pattern)
			if err != nil {
				return nil, builderrors.NewProjectFileError(builderrors.CodeEngineFailure, entry.Name, "invalid resolver name pattern", err)
			}
			m.Pattern = re
		}
		manifests = append(manifests, m)
	}

	style := DeploymentFramework
	if doc.DeploymentStyle == "core" {
		style = DeploymentCore
	}

	return &YAMLManifestLoader{
		manifests: manifests,
		factory:   factory,
		defaults:  defaultResolvers,
		style:     style,
	}, nil
}

// Manifests returns the ascending-priority manifest list.
func (l *YAMLManifestLoader) Manifests() []Manifest { return l.manifests }

// Resolver lazily materializes the resolver named by m.
func (l *YAMLManifestLoader) Resolver(m Manifest) (Resolver, error) {
	return l.factory(m.Name, m.LoadPath)
}

// DefaultResolvers returns the fallback chain.
func (l *YAMLManifestLoader) DefaultResolvers() []Resolver { return l.defaults }

// DeploymentStyle reports how the document placed the default chain.
func (l *YAMLManifestLoader) DeploymentStyle() DeploymentStyle { return l.style }

var _ Loader = (*YAMLManifestLoader)(nil)
