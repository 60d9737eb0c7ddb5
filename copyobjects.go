package enshrine

import (
	"context"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// copyEncodedObject copies one object verbatim between storers, preserving
// its hash. Objects already present in dst are skipped.
func copyEncodedObject(src, dst storer.EncodedObjectStorer, h plumbing.Hash) error {
	if err := dst.HasEncodedObject(h); err == nil {
		return nil
	}

	obj, err := src.EncodedObject(plumbing.AnyObject, h)
	if err != nil {
		return fmt.Errorf("cannot read object %s: %w", h.String(), err)
	}

	n := dst.NewEncodedObject()
	n.SetType(obj.Type())
	n.SetSize(obj.Size())

	r, err := obj.Reader()
	if err != nil {
		return fmt.Errorf("cannot open reader for %s: %w", h.String(), err)
	}
	defer r.Close()

	w, err := n.Writer()
	if err != nil {
		return fmt.Errorf("cannot open writer for %s: %w", h.String(), err)
	}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("cannot copy object %s: %w", h.String(), err)
	}
	if err := w.Close(); err != nil {
		return err
	}

	if _, err := dst.SetEncodedObject(n); err != nil {
		return fmt.Errorf("cannot store object %s: %w", h.String(), err)
	}

	return nil
}

// copyTreeObjects copies a tree and everything below it into dst. Submodule
// entries are carried as-is since they reference nothing in the object store.
func copyTreeObjects(ctx context.Context, src, dst storer.EncodedObjectStorer, treeHash plumbing.Hash) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := dst.HasEncodedObject(treeHash); err == nil {
		return nil
	}

	tree, err := object.GetTree(src, treeHash)
	if err != nil {
		return fmt.Errorf("cannot read tree %s: %w", treeHash.String(), err)
	}

	for _, entry := range tree.Entries {
		switch {
		case entry.Mode == filemode.Submodule:
			continue
		case entry.Mode == filemode.Dir:
			if err := copyTreeObjects(ctx, src, dst, entry.Hash); err != nil {
				return err
			}
		default:
			if err := copyEncodedObject(src, dst, entry.Hash); err != nil {
				return err
			}
		}
	}

	return copyEncodedObject(src, dst, treeHash)
}

// saveCommit encodes the commit into the storer and stamps the resulting
// hash onto it.
func saveCommit(s storer.EncodedObjectStorer, c *object.Commit) error {
	obj := s.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		return fmt.Errorf("cannot encode commit: %w", err)
	}

	h, err := s.SetEncodedObject(obj)
	if err != nil {
		return fmt.Errorf("cannot store commit: %w", err)
	}

	c.Hash = h

	return nil
}

// ancestorSet collects head and every commit reachable from it, across all
// parents.
func ancestorSet(ctx context.Context, s storer.EncodedObjectStorer, head plumbing.Hash) (HashSet, error) {
	result := NewHashSet()
	queue := []plumbing.Hash{head}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		h := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if _, seen := result[h]; seen {
			continue
		}
		result[h] = empty{}

		c, err := object.GetCommit(s, h)
		if err != nil {
			return nil, fmt.Errorf("cannot read commit %s: %w", h.String(), err)
		}

		queue = append(queue, c.ParentHashes...)
	}

	return result, nil
}
