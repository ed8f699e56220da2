package sdkresolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
	"github.com/alexisbeaulieu97/buildcore/pkg/builderrors"
)

// UnderlyingResolver is the interface CachingSdkResolverService wraps; it is
// satisfied by *Service and by test doubles.
type UnderlyingResolver interface {
	Resolve(ctx context.Context, submissionID int, ref buildmodel.SdkReference, rc Context, failOnUnresolved bool) (*buildmodel.SdkResult, error)
}

// sdkFuture is the "reserve slot, compute once, wake waiters" primitive
// named in spec §9 design notes, used in place of a coarse lock so
// concurrent callers for the same SDK name block on, rather than
// serialize through, a single in-flight resolution.
type sdkFuture struct {
	done   chan struct{}
	ref    buildmodel.SdkReference
	result *buildmodel.SdkResult
	err    error
}

// CachingSdkResolverService guarantees at-most-once execution of the
// underlying resolver chain per SDK name for the lifetime of the service
// instance (one build), per spec §4.3 "Caching wrapper".
type CachingSdkResolverService struct {
	underlying UnderlyingResolver

	mu      sync.Mutex
	futures map[string]*sdkFuture
}

// NewCaching wraps underlying with at-most-once-per-SDK-name caching.
func NewCaching(underlying UnderlyingResolver) *CachingSdkResolverService {
	return &CachingSdkResolverService{
		underlying: underlying,
		futures:    make(map[string]*sdkFuture),
	}
}

// Resolve satisfies UnderlyingResolver, and is what callers use.
func (c *CachingSdkResolverService) Resolve(ctx context.Context, submissionID int, ref buildmodel.SdkReference, rc Context, failOnUnresolved bool) (*buildmodel.SdkResult, error) {
	c.mu.Lock()
	if f, ok := c.futures[ref.Name]; ok {
		c.mu.Unlock()
		<-f.done
		if !buildmodel.SameVersion(ref.ReferencedVersion, f.ref.ReferencedVersion) && rc.Logger != nil {
			rc.Logger.Warning(builderrors.CodeMultipleSdkVersions, fmt.Sprintf(
				"multiple versions of SDK %q referenced (%q and %q); using the first resolved",
				ref.Name, f.ref.ReferencedVersion, ref.ReferencedVersion))
		}
		return f.result, f.err
	}

	f := &sdkFuture{done: make(chan struct{}), ref: ref}
	c.futures[ref.Name] = f
	c.mu.Unlock()

	f.result, f.err = c.underlying.Resolve(ctx, submissionID, ref, rc, failOnUnresolved)
	close(f.done)
	return f.result, f.err
}

var _ UnderlyingResolver = (*CachingSdkResolverService)(nil)
