package enshrine

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Options control one enshrine run.
type Options struct {
	// Author is the target author, "Name" or "Name <email>".
	Author string
	// Ref is the branch, tag or commit hash to walk back from.
	Ref string
	// Boundary picks the behavior when the first author commit has no
	// grandparent. Defaults to [BoundaryFallbackRoot].
	Boundary BoundaryPolicy
	// Branch is the name of the shrine's branch. Defaults to "master".
	Branch string
}

// Result reports what one enshrine run produced.
type Result struct {
	Segment   *Segment
	Extracted int
	Picks     int
	Head      plumbing.Hash
}

// PlanRewriteEditor returns the plan editor that applies [RewritePlan] for
// the target author to an edit-plan file in place.
func PlanRewriteEditor(target *AuthorMatcher) PlanEditor {
	return func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCallbackIO, err)
		}

		entries, err := ParsePlan(string(data))
		if err != nil {
			return err
		}

		entries = RewritePlan(entries, target)

		if err := os.WriteFile(path, []byte(FormatPlan(entries)), 0o600); err != nil {
			return fmt.Errorf("%w: %w", ErrCallbackIO, err)
		}

		return nil
	}
}

// Enshrine builds a shrine repository at shrinePath for the author's commits
// reachable from the ref in the repository at originalPath.
//
// The pipeline is strictly sequential: locate the segment, extract it plus
// one context commit into a fresh bare repository, rewrite the extracted
// history so that every non-author run collapses into its joiner commit, and
// point the shrine's branch and HEAD at the new head.
//
// Destructive: any prior content at shrinePath is removed first. The caller
// confirms the path is expendable before calling.
func Enshrine(ctx context.Context, originalPath, shrinePath string, opts *Options) (*Result, error) {
	matcher, err := ParseAuthorMatcher(opts.Author)
	if err != nil {
		return nil, err
	}

	src, err := git.PlainOpen(originalPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open repository at %s: %w", originalPath, err)
	}

	seg, err := LocateSegment(ctx, src, matcher, opts.Ref)
	if err != nil {
		return nil, err
	}

	if err := os.RemoveAll(shrinePath); err != nil {
		return nil, fmt.Errorf("cannot clear shrine path %s: %w", shrinePath, err)
	}

	dst, err := git.PlainInit(shrinePath, true)
	if err != nil {
		return nil, fmt.Errorf("cannot init shrine repository at %s: %w", shrinePath, err)
	}

	hist, err := Extract(ctx, src, seg, dst.Storer, opts.Boundary)
	if err != nil {
		return nil, err
	}

	head, err := RewriteHistory(ctx, dst.Storer, hist, PlanRewriteEditor(matcher), nil)
	if err != nil {
		return nil, err
	}

	branch := plumbing.Master
	if opts.Branch != "" {
		branch = plumbing.NewBranchReferenceName(opts.Branch)
	}

	if err := dst.Storer.SetReference(plumbing.NewHashReference(branch, head.Hash)); err != nil {
		return nil, fmt.Errorf("cannot set shrine branch %s: %w", branch, err)
	}
	if err := dst.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branch)); err != nil {
		return nil, fmt.Errorf("cannot set shrine HEAD: %w", err)
	}

	picks, err := countFirstParentChain(ctx, dst, head.Hash)
	if err != nil {
		return nil, err
	}

	logger.Info("shrine built",
		"author", matcher.String(),
		"path", shrinePath,
		"extracted", len(hist),
		"picks", picks,
		"head", head.Hash)

	return &Result{
		Segment:   seg,
		Extracted: len(hist),
		Picks:     picks,
		Head:      head.Hash,
	}, nil
}

func countFirstParentChain(ctx context.Context, repo *git.Repository, head plumbing.Hash) (int, error) {
	c, err := repo.CommitObject(head)
	if err != nil {
		return 0, fmt.Errorf("cannot read shrine head %s: %w", head.String(), err)
	}

	hist, err := GetFirstParentHistory(ctx, c, nil)
	if err != nil {
		return 0, err
	}

	return len(hist), nil
}
