// enshrine builds a shrine repository for a single author: the minimal
// contiguous segment of a linear history that spans every commit by that
// author, with each interleaving run of other-author commits squashed into a
// single joiner commit.
//
// See [Enshrine] for the full pipeline, and [LocateSegment], [Extract] and
// [RewritePlan] for the individual stages.
package enshrine
