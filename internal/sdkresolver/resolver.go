// Package sdkresolver implements the SDK Resolver Service (spec §4.3): an
// ordered chain of named resolvers mapping an SDK reference to paths,
// properties and items, plus a caching wrapper guaranteeing at-most-once
// execution per SDK name per build. Grounded on the teacher's
// internal/plugin.Registry (dependency-ordered, lazily-invoked components)
// generalized from "plugins applied to a pipeline" to "resolvers applied to
// one SDK reference".
package sdkresolver

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
	"github.com/alexisbeaulieu97/buildcore/pkg/builderrors"
)

// InvalidSubmissionID marks a resolution that does not belong to a tracked
// submission; resolver state is never preserved for it (spec §3 Lifecycles).
const InvalidSubmissionID = 0

// Logger is the narrow slice of buildlogger.EventSink the resolver chain
// needs; callers typically adapt a buildlogger.EventSink into one.
type Logger interface {
	Message(message string)
	Warning(code, message string)
	Error(code, message string)
}

// Context carries per-resolution state handed to each resolver (spec §4.3
// step 3).
type Context struct {
	Interactive  bool
	RunningInIDE bool
	State        any
	Logger       Logger
}

// Resolver maps an SDK reference to an SdkResult, or returns (nil, nil) to
// mean "no opinion" (spec §4.3 step 4).
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, rc Context, ref buildmodel.SdkReference) (*buildmodel.SdkResult, error)
}

// Manifest describes a registered resolver before it is loaded: a display
// name, an optional lazy-load path, and an optional name-matching pattern
// (spec §4.3 step 1-2).
type Manifest struct {
	Name     string
	LoadPath string
	Pattern  Matcher
}

// Matcher reports whether an SDK name is "specific" to a resolver.
// Satisfied by *regexp.Regexp.
type Matcher interface {
	MatchString(string) bool
}

// DeploymentStyle governs when the loader's default/fallback resolvers run
// relative to the regular chain (spec §4.3 "Default/fallback resolvers").
type DeploymentStyle int

const (
	// DeploymentCore runs default resolvers before the regular chain; if any
	// succeeds, the regular chain is never loaded.
	DeploymentCore DeploymentStyle = iota
	// DeploymentFramework runs default resolvers only after the regular
	// chain is exhausted.
	DeploymentFramework
)

// Loader is the required external contract (spec §6): it supplies the
// ordered manifest list, lazily materializes a Resolver from a manifest, and
// supplies the default/fallback resolver list.
type Loader interface {
	Manifests() []Manifest
	Resolver(m Manifest) (Resolver, error)
	DefaultResolvers() []Resolver
	DeploymentStyle() DeploymentStyle
}

// selectManifests partitions manifests into SDK-specific (pattern matches,
// in priority order) followed by general (patternless, in priority order),
// per spec §4.3 step 2.
func selectManifests(manifests []Manifest, sdkName string) []Manifest {
	var specific, general []Manifest
	for _, m := range manifests {
		switch {
		case m.Pattern == nil:
			general = append(general, m)
		case m.Pattern.MatchString(sdkName):
			specific = append(specific, m)
		}
	}
	return append(specific, general...)
}

// Service is the non-caching resolver chain (spec §4.3 steps 1-7).
type Service struct {
	loader Loader
	states *stateStore
}

// New constructs a Service backed by loader.
func New(loader Loader) *Service {
	return &Service{loader: loader, states: newStateStore()}
}

// Resolve runs the resolver chain for ref, per spec §4.3.
func (s *Service) Resolve(ctx context.Context, submissionID int, ref buildmodel.SdkReference, rc Context, failOnUnresolved bool) (*buildmodel.SdkResult, error) {
	if res, ok, err := s.tryDefaults(ctx, submissionID, ref, rc, DeploymentCore); err != nil {
		return nil, err
	} else if ok {
		return res, nil
	}

	selected := selectManifests(s.loader.Manifests(), ref.Name)

	var tried []string
	var accErrors, accWarnings []string
	for _, m := range selected {
		resolver, err := s.loader.Resolver(m)
		if err != nil {
			return nil, builderrors.NewResolverExceptionError(ref.Name, m.Name, err)
		}
		tried = append(tried, m.Name)

		res, err := s.invoke(ctx, resolver, ref, rc, submissionID)
		if err != nil {
			return nil, builderrors.NewResolverExceptionError(ref.Name, m.Name, err)
		}
		if res == nil {
			if rc.Logger != nil {
				rc.Logger.Message(fmt.Sprintf("SDK resolver %q returned null for %q", m.Name, ref.Name))
			}
			continue
		}
		if !res.Success {
			accErrors = append(accErrors, res.Errors...)
			accWarnings = append(accWarnings, res.Warnings...)
			continue
		}

		s.logVersionDifference(rc, ref, res)
		s.states.save(submissionID, m.Name, res.State)
		return res, nil
	}

	if res, ok, err := s.tryDefaults(ctx, submissionID, ref, rc, DeploymentFramework); err != nil {
		return nil, err
	} else if ok {
		return res, nil
	}

	for _, w := range accWarnings {
		if rc.Logger != nil {
			rc.Logger.Warning(builderrors.CodeSdkResolutionFailed, w)
		}
	}

	var resolutionErr error
	switch len(tried) {
	case 0:
		resolutionErr = builderrors.NewSingleResolverError(ref.Name, "", []string{"no resolver registered for this SDK"}, nil)
	case 1:
		resolutionErr = builderrors.NewSingleResolverError(ref.Name, tried[0], accErrors, accWarnings)
	default:
		resolutionErr = builderrors.NewMultiResolverError(ref.Name, tried, accErrors, accWarnings)
	}

	if rc.Logger != nil {
		rc.Logger.Error(builderrors.CodeSdkResolutionFailed, resolutionErr.Error())
	}
	if failOnUnresolved {
		return nil, resolutionErr
	}
	return buildmodel.NewSdkFailure(accErrors, accWarnings), nil
}

func (s *Service) tryDefaults(ctx context.Context, submissionID int, ref buildmodel.SdkReference, rc Context, style DeploymentStyle) (*buildmodel.SdkResult, bool, error) {
	if s.loader.DeploymentStyle() != style {
		return nil, false, nil
	}
	for _, resolver := range s.loader.DefaultResolvers() {
		res, err := s.invoke(ctx, resolver, ref, rc, submissionID)
		if err != nil {
			return nil, false, builderrors.NewResolverExceptionError(ref.Name, resolver.Name(), err)
		}
		if res != nil && res.Success {
			s.logVersionDifference(rc, ref, res)
			s.states.save(submissionID, resolver.Name(), res.State)
			return res, true, nil
		}
	}
	return nil, false, nil
}

func (s *Service) invoke(ctx context.Context, resolver Resolver, ref buildmodel.SdkReference, rc Context, submissionID int) (res *buildmodel.SdkResult, err error) {
	rc.State = s.states.load(submissionID, resolver.Name())
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("resolver %q panicked: %v", resolver.Name(), p)
		}
	}()
	return resolver.Resolve(ctx, rc, ref)
}

func (s *Service) logVersionDifference(rc Context, ref buildmodel.SdkReference, res *buildmodel.SdkResult) {
	if rc.Logger == nil {
		return
	}
	if !buildmodel.SameVersion(ref.ReferencedVersion, res.Version) {
		rc.Logger.Warning(builderrors.CodeSdkVersionMismatch, fmt.Sprintf(
			"resolved version %q of SDK %q differs from referenced version %q", res.Version, ref.Name, ref.ReferencedVersion))
	}
}

var _ UnderlyingResolver = (*Service)(nil)
