// errors

package enshrine

import "errors"

var (
	ErrEmptyAuthor         = errors.New("empty author")
	ErrNoMatchingCommits   = errors.New("no commits by author reachable from ref")
	ErrInsufficientHistory = errors.New("first author commit has no grandparent")
	ErrCloneFailed         = errors.New("range clone failed")
	ErrCallbackIO          = errors.New("callback file i/o failed")
	ErrEmptyHistory        = errors.New("empty history")
	ErrPlanLengthChanged   = errors.New("edited plan changed length")
	ErrPlanReordered       = errors.New("edited plan reordered or replaced commits")
	ErrPlanLeadingSquash   = errors.New("plan starts with a squash action")
	ErrUnknownAction       = errors.New("unknown plan action")
	ErrMalformedPlanLine   = errors.New("malformed plan line")
)
