package enshrine

import (
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const (
	// markerStartName excludes itself and its ancestors from the clone range.
	markerStartName = "refs/enshrine/range-start"
	// markerLastName is the head of the clone range.
	markerLastName = "refs/enshrine/range-last"
)

// Markers are transient references installed in the source repository to hand
// a commit range to the clone primitive. They live in a shared namespace, so
// concurrent invocations against the same repository are unsafe; callers
// serialize externally.
//
// Acquire with [AcquireMarkers], release with [Markers.Release] on every exit
// path.
type Markers struct {
	s storer.ReferenceStorer

	// Start is the exclusion boundary. Zero when the range extends to the
	// repository root, in which case no start marker is installed.
	Start plumbing.Hash
	// Last is the inclusive head of the range.
	Last plumbing.Hash
}

// AcquireMarkers installs the range markers in the repository's reference
// store, overwriting leftovers from an earlier crashed run.
func AcquireMarkers(repo *git.Repository, start, last plumbing.Hash) (*Markers, error) {
	m := &Markers{
		s:     repo.Storer,
		Start: start,
		Last:  last,
	}

	if !start.IsZero() {
		if err := m.s.SetReference(plumbing.NewHashReference(markerStartName, start)); err != nil {
			return nil, fmt.Errorf("cannot install start marker: %w", err)
		}
	}

	if err := m.s.SetReference(plumbing.NewHashReference(markerLastName, last)); err != nil {
		m.Release()
		return nil, fmt.Errorf("cannot install last marker: %w", err)
	}

	logger.Debug("installed range markers", "start", start, "last", last)

	return m, nil
}

// Release removes the marker references. Best effort: a marker that is
// already gone is not an error. Safe to call more than once.
func (m *Markers) Release() {
	if m == nil || m.s == nil {
		return
	}

	for _, name := range []plumbing.ReferenceName{markerStartName, markerLastName} {
		err := m.s.RemoveReference(name)
		if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
			logger.Warn("cannot remove marker reference", "name", name, "error", err)
		}
	}
}

// resolve reads the marker references back from the store. The clone
// primitive consumes the range through the markers rather than raw hashes so
// that a stale or tampered marker surfaces as a loud failure.
func (m *Markers) resolve() (start, last plumbing.Hash, err error) {
	if !m.Start.IsZero() {
		r, err := m.s.Reference(markerStartName)
		if err != nil {
			return plumbing.ZeroHash, plumbing.ZeroHash, fmt.Errorf("start marker missing: %w", err)
		}
		start = r.Hash()
	}

	r, err := m.s.Reference(markerLastName)
	if err != nil {
		return plumbing.ZeroHash, plumbing.ZeroHash, fmt.Errorf("last marker missing: %w", err)
	}

	return start, r.Hash(), nil
}
