package enshrine

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// GetFirstParentHistory walks the first-parent chain from head and returns
// the commits oldest-first, head last. This is the history git shows with
// "--first-parent".
//
// stop can optionally be set so the walk ends before any commit in the set:
// commits in stop and their ancestors are excluded from the result. The walk
// also ends at a root commit.
func GetFirstParentHistory(
	ctx context.Context,
	head *object.Commit,
	stop HashSet,
) ([]*object.Commit, error) {
	if head == nil {
		return nil, ErrEmptyHistory
	}

	if stop == nil {
		stop = make(HashSet)
	}

	result := make([]*object.Commit, 0)

	current := head
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if _, isstop := stop[current.Hash]; isstop {
			break
		}

		result = append(result, current)

		if current.NumParents() == 0 {
			break
		}

		p, err := current.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("cannot get first parent for %s: %w", current.Hash.String(), err)
		}

		current = p
	}

	// reverse into oldest-first order.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return result, nil
}
