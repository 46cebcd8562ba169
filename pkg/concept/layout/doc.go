// Package layout positions concept graphs using a deterministic
// hierarchical (rank-based) algorithm.
//
// The pipeline has three stages:
//
//  1. Rank assignment: longest path from the roots via topological
//     traversal. Roots (in-degree 0) sit at rank 0; every node is pushed
//     one rank below its deepest parent.
//  2. In-rank ordering: repeated median sweeps reduce edge crossings
//     between adjacent ranks. Crossings are counted with a Fenwick tree.
//  3. Coordinates: x from in-rank position, y from rank, using a fixed
//     240×120 node footprint and the spacing preset of the chosen mode.
//
// Two presets exist: [ModeCompact] for normal generation and [ModeSpread]
// for the explicit organize action. Spread additionally switches edges to
// straight-line rendering. The whole computation is deterministic for a
// fixed input, which is what makes snapshot-based undo ([Format]) exact.
package layout
