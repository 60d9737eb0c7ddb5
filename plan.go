package enshrine

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Action is the edit-plan instruction for one commit.
type Action int

const (
	// ActionPick keeps the commit as a first-class history point.
	ActionPick Action = iota
	// ActionSquash merges the commit into the previous plan entry's commit.
	ActionSquash
)

func (a Action) String() string {
	switch a {
	case ActionPick:
		return "pick"
	case ActionSquash:
		return "squash"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction parses "pick" or "squash".
func ParseAction(s string) (Action, error) {
	switch s {
	case "pick":
		return ActionPick, nil
	case "squash":
		return ActionSquash, nil
	default:
		return ActionPick, fmt.Errorf("%w: %s", ErrUnknownAction, s)
	}
}

// PlanEntry is one line of an edit plan: an action, the commit it refers to,
// the commit's summary line, and the commit's author identity. Entries stay
// in the order the history-rewrite primitive presents them; rewriting changes
// only the action.
type PlanEntry struct {
	Action  Action
	Hash    plumbing.Hash
	Summary string
	Author  string
}

// NewPlan builds the initial all-pick edit plan for a history, one entry per
// commit, in the order given.
func NewPlan(hist []*object.Commit) []PlanEntry {
	result := make([]PlanEntry, 0, len(hist))

	for _, c := range hist {
		if c == nil {
			continue
		}

		summary, _, _ := strings.Cut(c.Message, "\n")

		result = append(result, PlanEntry{
			Action:  ActionPick,
			Hash:    c.Hash,
			Summary: strings.TrimSpace(summary),
			Author:  IdentityOf(c.Author),
		})
	}

	return result
}

// FormatPlan renders a plan in the edit-plan file format, one entry per line,
// the author identity appended after a tab:
//
//	<action> <hash> <summary>\t<author>
//
// The tab keeps the author field unambiguous: identities may contain spaces
// and parentheses, but never tabs or newlines (any that slip through are
// flattened to spaces here).
func FormatPlan(entries []PlanEntry) string {
	var b strings.Builder

	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s %s\t%s\n", e.Action, e.Hash.String(), e.Summary, flattenField(e.Author))
	}

	return b.String()
}

func flattenField(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return ' '
		default:
			return r
		}
	}, s)
}

// ParsePlan parses the edit-plan file format produced by [FormatPlan]. Blank
// lines and lines starting with "#" are skipped, matching what rewrite
// editors tolerate.
func ParsePlan(text string) ([]PlanEntry, error) {
	var result []PlanEntry

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parsePlanLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		result = append(result, entry)
	}

	return result, nil
}

func parsePlanLine(line string) (PlanEntry, error) {
	actionstr, rest, found := strings.Cut(line, " ")
	if !found {
		return PlanEntry{}, fmt.Errorf("%w: %s", ErrMalformedPlanLine, line)
	}

	action, err := ParseAction(actionstr)
	if err != nil {
		return PlanEntry{}, err
	}

	hashstr, rest, found := strings.Cut(rest, " ")
	if !found {
		return PlanEntry{}, fmt.Errorf("%w: %s", ErrMalformedPlanLine, line)
	}

	hash, err := DecodeHashHex(hashstr)
	if err != nil {
		return PlanEntry{}, fmt.Errorf("%w: bad hash %s: %w", ErrMalformedPlanLine, hashstr, err)
	}

	// the author identity follows the last tab; the summary never contains
	// one after formatting.
	tab := strings.LastIndex(rest, "\t")
	if tab < 0 {
		return PlanEntry{}, fmt.Errorf("%w: missing author field: %s", ErrMalformedPlanLine, line)
	}

	return PlanEntry{
		Action:  action,
		Hash:    hash,
		Summary: strings.TrimSpace(rest[:tab]),
		Author:  strings.TrimSpace(rest[tab+1:]),
	}, nil
}
