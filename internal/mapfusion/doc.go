// Package mapfusion implements the map fusion optimizer pass: it finds linear
// chains of per-element map nodes in a dataset graph and replaces each chain
// with a single node whose function is the composition of the chain's
// functions.
//
// # Pipeline
//
// Each round of the pass runs four stages over a private clone of the graph:
//
//	graphindex.Build ──▶ chain detection ──▶ composition + rewrite ──▶ prune
//	       ▲                                                            │
//	       └──────────────── until no chain is fused ───────────────────┘
//
//   - **Detection** (chains.go) walks single-consumer edges between map nodes
//     of the same variant and yields maximal, disjoint chains.
//   - **Composition** (compose.go) builds h = g∘f structurally: f's body and
//     g's body with fresh per-stage prefixes, f's outputs wired into g's
//     element arguments, captured arguments concatenated.
//   - **Rewrite** (rewrite.go) adds the fused node, repoints the tail's
//     consumers and drops the chain.
//   - **Prune** (prune.go) removes nodes that lost their last reference and,
//     once the rounds are done, every function no remaining node reaches.
//
// # Failure Policy
//
// Fusion is best-effort. Ineligible pairs and chains whose functions cannot
// be composed are skipped and reported at debug level. Only a malformed input
// graph fails the pass, and a failed pass leaves the caller's graph
// untouched because all rewriting happens on a clone.
package mapfusion
