// Package rendergraph defines the boundary between the layering engine and the
// media render graph.
//
// The engine never decodes, mixes or renders media. It only needs two
// capabilities from the graph:
//   - Node: an opaque element carrying an integer priority (lower renders on top)
//   - Container: a composition-level element that nodes are added to and
//     removed from, and that forwards pad negotiation events upward
//
// Priority is pushed one way, from the engine to the node. The engine keeps its
// own copy and never reads the node back as the source of truth.
//
// Bin and Element are in-memory implementations used by the CLI, the scenario
// harness and tests. Element records every priority write so callers can observe
// transient values (for example the excursion made while a source is moved).
package rendergraph
