// Package layout drives the whole layout of a set of categories.
//
// # Overview
//
// A [Category] is one rooted tree that owns an angular sector of a shared
// disk. The [Engine] lays out each category independently:
//
//  1. Build the candidate grid for the category's sector ([grid.Generator]).
//  2. Place roots, grow the tree breadth-first and assign orphans
//     ([growth.Placer]).
//  3. Refine: barycenter reordering, sitter nudge, shape conformity and the
//     density stretch ([refine]).
//
// Each step is a [Stage]. Stages are logged at debug level and reported to
// the registered [observability.LayoutHooks].
//
// # Determinism
//
// Every category draws from its own random stream seeded with
// [rng.CategorySeed](seed, name), and every run builds a fresh grid and a
// fresh position map. Categories share no mutable state, so [Options.Parallel]
// only changes how fast a result is produced, never the result itself.
//
// # Degradation
//
// Layout never fails on bad geometry. Unknown shapes and behaviors fall back
// to the neutral ones with a warning; an empty category yields an empty
// result; an exhausted grid yields interpolated or overflow positions. Only
// an invalid [config.Layout] or a cancelled context produce an error.
package layout
