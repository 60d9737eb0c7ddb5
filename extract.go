package enshrine

import (
	"context"
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// BoundaryPolicy decides what happens when the first author commit sits too
// close to the repository root for a grandparent boundary to exist.
type BoundaryPolicy int

const (
	// BoundaryFallbackRoot extracts from the repository root instead. The
	// default.
	BoundaryFallbackRoot BoundaryPolicy = iota
	// BoundaryStrict fails with [ErrInsufficientHistory].
	BoundaryStrict
)

var ErrUnknownBoundaryPolicy = errors.New("unknown boundary policy")

// ParseBoundaryPolicy parses "root" or "strict".
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch s {
	case "", "root":
		return BoundaryFallbackRoot, nil
	case "strict":
		return BoundaryStrict, nil
	default:
		return BoundaryFallbackRoot, fmt.Errorf("%w: %s", ErrUnknownBoundaryPolicy, s)
	}
}

// rangeStart computes the exclusion boundary for the segment: the grandparent
// of the first author commit, so that the extracted history keeps exactly one
// context commit before the segment and the first author commit does not
// appear as a root that materializes every tracked file at once.
//
// When no grandparent exists the policy decides between falling back to the
// repository root (zero hash, nothing excluded) and failing.
func rangeStart(seg *Segment, policy BoundaryPolicy) (plumbing.Hash, error) {
	parent, err := seg.First.Parent(0)
	if err != nil {
		return boundaryFallback(seg, policy, err)
	}

	grandparent, err := parent.Parent(0)
	if err != nil {
		return boundaryFallback(seg, policy, err)
	}

	return grandparent.Hash, nil
}

func boundaryFallback(seg *Segment, policy BoundaryPolicy, cause error) (plumbing.Hash, error) {
	if !errors.Is(cause, object.ErrParentNotFound) {
		return plumbing.ZeroHash, fmt.Errorf("cannot walk ancestors of %s: %w", seg.First.Hash.String(), cause)
	}

	if policy == BoundaryStrict {
		return plumbing.ZeroHash, fmt.Errorf("%w: first commit %s", ErrInsufficientHistory, seg.First.Hash.String())
	}

	logger.Info("first author commit is root-adjacent, extracting from repository root", "first", seg.First.Hash)

	return plumbing.ZeroHash, nil
}

// Extract clones the commit range spanning the located segment, plus one
// context commit before it, into dst. It installs transient marker references
// in src to hand the range to the clone primitive and removes them again on
// every exit path.
//
// Clone primitive failures are wrapped in [ErrCloneFailed]; dst is then in an
// undefined partial state and the caller must not rely on it.
func Extract(
	ctx context.Context,
	src *git.Repository,
	seg *Segment,
	dst storer.Storer,
	policy BoundaryPolicy,
) ([]*object.Commit, error) {
	start, err := rangeStart(seg, policy)
	if err != nil {
		return nil, err
	}

	markers, err := AcquireMarkers(src, start, seg.Last.Hash)
	if err != nil {
		return nil, err
	}
	defer markers.Release()

	hist, err := CloneRange(ctx, src, markers, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCloneFailed, err)
	}

	logger.Info("extracted segment", "commits", len(hist), "start", start, "last", seg.Last.Hash)

	return hist, nil
}
