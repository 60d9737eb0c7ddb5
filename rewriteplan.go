package enshrine

// RewritePlan rewrites an edit plan so that every run of consecutive
// non-author commits collapses into its leading commit, while commits by the
// target author stay first-class.
//
// The transformation is pure and preserves length and order; only actions
// change. An entry becomes squash if and only if its author is not the target
// author and it is not the first entry of its run. The very first entry of
// the plan is never squashed regardless of author: it anchors the new
// history's root and has no predecessor to merge into.
//
// The rewrite is applied exactly once per extraction. Once a rebase consumes
// the plan, the squash operation discards the per-run author information
// needed to derive the runs again.
func RewritePlan(entries []PlanEntry, target *AuthorMatcher) []PlanEntry {
	result := make([]PlanEntry, len(entries))

	squashing := false

	for i, e := range entries {
		switch {
		case target.MatchIdentity(e.Author):
			squashing = false
		case !squashing:
			// leading commit of a non-author run survives as the joiner.
			squashing = true
		default:
			e.Action = ActionSquash
		}

		result[i] = e
	}

	return result
}
