package enshrine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// PlanEditor rewrites an edit-plan file in place. It is invoked once per
// rewrite with the path to the plan, must be non-interactive, and must leave
// the same commits in the same order, changing only actions.
type PlanEditor func(path string) error

// MessageEditor may rewrite a squash commit-message file in place. A nil
// editor accepts the concatenated default message unmodified.
type MessageEditor func(path string) error

// RewriteHistory replays a linear history, oldest-first, under the direction
// of an edit plan. The initial plan picks every commit; the plan editor
// callback decides what gets squashed.
//
//   - A pick recreates the commit with its original tree, author and message,
//     reparented onto the previous new commit.
//   - A squash folds the commit into the previous new commit: the previous
//     commit is replaced by one carrying the squashed commit's tree, the
//     previous commit's author, and the two messages concatenated. The
//     merged message round-trips through the message editor.
//
// Plan and message files live in a private temporary directory that is
// removed when the rewrite finishes. Returns the new head commit.
func RewriteHistory(
	ctx context.Context,
	s storer.EncodedObjectStorer,
	hist []*object.Commit,
	planEditor PlanEditor,
	messageEditor MessageEditor,
) (*object.Commit, error) {
	if len(hist) == 0 {
		return nil, ErrEmptyHistory
	}

	dir, err := os.MkdirTemp("", "enshrine-rewrite-")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCallbackIO, err)
	}
	defer os.RemoveAll(dir)

	plan, err := editPlan(dir, hist, planEditor)
	if err != nil {
		return nil, err
	}

	newpath := make([]*object.Commit, 0, len(plan))
	n := len(plan)

	for i, e := range plan {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		orig := hist[i]

		switch e.Action {
		case ActionPick:
			var parents []plumbing.Hash
			if len(newpath) > 0 {
				parents = []plumbing.Hash{newpath[len(newpath)-1].Hash}
			}

			newcommit := &object.Commit{
				Author:       orig.Author,
				Committer:    orig.Committer,
				Message:      orig.Message,
				TreeHash:     orig.TreeHash,
				ParentHashes: parents,
			}

			if err := saveCommit(s, newcommit); err != nil {
				return nil, fmt.Errorf("cannot pick commit %s: %w", orig.Hash.String(), err)
			}

			logger.Debug("picked commit", "id", i, "total", n, "hash", orig.Hash, "newcommit", newcommit.Hash)

			newpath = append(newpath, newcommit)

		case ActionSquash:
			if len(newpath) == 0 {
				return nil, ErrPlanLeadingSquash
			}

			prev := newpath[len(newpath)-1]

			message, err := editSquashMessage(dir, messageEditor, prev.Message, orig.Message)
			if err != nil {
				return nil, err
			}

			// the squashed commit's tree already contains every change of
			// the run applied so far, so the folded commit takes it whole.
			folded := &object.Commit{
				Author:       prev.Author,
				Committer:    orig.Committer,
				Message:      message,
				TreeHash:     orig.TreeHash,
				ParentHashes: prev.ParentHashes,
			}

			if err := saveCommit(s, folded); err != nil {
				return nil, fmt.Errorf("cannot squash commit %s: %w", orig.Hash.String(), err)
			}

			logger.Debug("squashed commit", "id", i, "total", n, "hash", orig.Hash, "into", folded.Hash)

			newpath[len(newpath)-1] = folded

		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownAction, e.Action)
		}
	}

	head := newpath[len(newpath)-1]

	logger.Info("rewrote history", "commits", n, "surviving", len(newpath), "head", head.Hash)

	return head, nil
}

// editPlan materializes the initial plan, hands it to the editor, and reads
// the edited plan back, verifying the editor changed only actions.
func editPlan(dir string, hist []*object.Commit, planEditor PlanEditor) ([]PlanEntry, error) {
	initial := NewPlan(hist)

	path := filepath.Join(dir, "edit-plan")
	if err := os.WriteFile(path, []byte(FormatPlan(initial)), 0o600); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCallbackIO, err)
	}

	if planEditor != nil {
		if err := planEditor(path); err != nil {
			return nil, fmt.Errorf("plan editor failed: %w", err)
		}
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCallbackIO, err)
	}

	plan, err := ParsePlan(string(edited))
	if err != nil {
		return nil, err
	}

	if len(plan) != len(initial) {
		return nil, fmt.Errorf("%w: %d entries, want %d", ErrPlanLengthChanged, len(plan), len(initial))
	}
	for i := range plan {
		if plan[i].Hash != initial[i].Hash {
			return nil, fmt.Errorf("%w: entry %d is %s, want %s",
				ErrPlanReordered, i, plan[i].Hash.String(), initial[i].Hash.String())
		}
	}
	if plan[0].Action == ActionSquash {
		return nil, ErrPlanLeadingSquash
	}

	return plan, nil
}

// editSquashMessage builds the default concatenated message for a squash and
// round-trips it through the message editor.
func editSquashMessage(dir string, messageEditor MessageEditor, prev, current string) (string, error) {
	message := strings.TrimRight(prev, "\n") + "\n\n" + current

	path := filepath.Join(dir, "squash-message")
	if err := os.WriteFile(path, []byte(message), 0o600); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCallbackIO, err)
	}

	if messageEditor != nil {
		if err := messageEditor(path); err != nil {
			return "", fmt.Errorf("message editor failed: %w", err)
		}
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCallbackIO, err)
	}

	return string(edited), nil
}
