package enshrine

import (
	"context"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Segment is the contiguous run of history from the first to the last commit
// by the target author, inclusive, reachable from a reference.
type Segment struct {
	// First is the least recent commit by the author.
	First *object.Commit
	// Last is the most recent commit by the author.
	Last *object.Commit
}

// ResolveRef resolves ref as a branch name, then a tag name, then a raw
// commit hash, and returns the commit it points at.
func ResolveRef(repo *git.Repository, ref string) (*object.Commit, error) {
	if r, err := repo.Reference(plumbing.NewBranchReferenceName(ref), true); err == nil {
		return repo.CommitObject(r.Hash())
	}

	if r, err := repo.Reference(plumbing.NewTagReferenceName(ref), true); err == nil {
		return repo.CommitObject(r.Hash())
	}

	hash, err := DecodeHashHex(ref)
	if err != nil {
		return nil, fmt.Errorf("%s is neither a branch, a tag, nor a commit hash: %w", ref, err)
	}

	return repo.CommitObject(hash)
}

// LocateSegment finds the first and last commits by the target author in the
// first-parent history reachable from ref. Recency follows the history's
// topological order, not commit timestamps, since rewritten histories carry
// author intent in their topology rather than their clocks.
//
// Returns [ErrNoMatchingCommits] when no reachable commit matches. Read-only:
// no references are created or moved.
func LocateSegment(
	ctx context.Context,
	repo *git.Repository,
	matcher *AuthorMatcher,
	ref string,
) (*Segment, error) {
	head, err := ResolveRef(repo, ref)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve ref %s: %w", ref, err)
	}

	hist, err := GetFirstParentHistory(ctx, head, nil)
	if err != nil {
		return nil, err
	}

	seg := &Segment{}

	for _, c := range hist {
		if !matcher.MatchSignature(c.Author) {
			continue
		}
		if seg.First == nil {
			seg.First = c
		}
		seg.Last = c
	}

	if seg.First == nil {
		return nil, fmt.Errorf("%w: author %s, ref %s", ErrNoMatchingCommits, matcher, ref)
	}

	logger.Debug("located segment",
		"author", matcher.String(),
		"first", seg.First.Hash,
		"last", seg.Last.Hash,
		"reachable", len(hist))

	return seg, nil
}
