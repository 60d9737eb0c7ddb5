package enshrine

import (
	"context"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// CloneRange copies the first-parent history reachable from the last marker,
// excluding the start marker and all of its ancestors, into dst.
//
//   - The oldest surviving commit is recreated without parents and becomes
//     the root of the new history.
//   - Every other commit is recreated with its parent relinked to the
//     previous new commit. GPG signatures are dropped in the process.
//   - Tree and blob objects are copied verbatim, so every new commit carries
//     the exact file tree of the commit it was cloned from.
//
// No working tree is checked out and no tags or unrelated references are
// carried over. The result is the new history, oldest-first.
func CloneRange(
	ctx context.Context,
	src *git.Repository,
	markers *Markers,
	dst storer.Storer,
) ([]*object.Commit, error) {
	start, last, err := markers.resolve()
	if err != nil {
		return nil, err
	}

	var exclude HashSet
	if !start.IsZero() {
		exclude, err = ancestorSet(ctx, src.Storer, start)
		if err != nil {
			return nil, fmt.Errorf("cannot collect excluded ancestors of %s: %w", start.String(), err)
		}
	}

	lastCommit, err := object.GetCommit(src.Storer, last)
	if err != nil {
		return nil, fmt.Errorf("cannot read range head %s: %w", last.String(), err)
	}

	hist, err := GetFirstParentHistory(ctx, lastCommit, exclude)
	if err != nil {
		return nil, err
	}
	if len(hist) == 0 {
		return nil, ErrEmptyHistory
	}

	newpath := make([]*object.Commit, 0, len(hist))
	n := len(hist)

	for i, c := range hist {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := copyTreeObjects(ctx, src.Storer, dst, c.TreeHash); err != nil {
			return nil, fmt.Errorf("cannot copy tree for commit %s: %w", c.Hash.String(), err)
		}

		var parents []plumbing.Hash
		if len(newpath) > 0 {
			parents = []plumbing.Hash{newpath[len(newpath)-1].Hash}
		}

		newcommit := &object.Commit{
			Author:       c.Author,
			Committer:    c.Committer,
			Message:      c.Message,
			TreeHash:     c.TreeHash,
			ParentHashes: parents,
		}

		if err := saveCommit(dst, newcommit); err != nil {
			return nil, fmt.Errorf("cannot save commit %d for %s: %w", i, c.Hash.String(), err)
		}

		logger.Debug("cloned commit", "id", i, "total", n, "hash", c.Hash, "newcommit", newcommit.Hash)

		newpath = append(newpath, newcommit)
	}

	return newpath, nil
}
