// Package costing computes the bill of materials of a bakery job.
//
// A ScalingResolver converts reference-size recipes into absolute amounts
// for a requested size, layer count and order quantity. An Aggregator runs
// the resolver over the cake body, the filling, packaging, baking overhead,
// custom extras and adjustments, merges repeated inventory items into one
// line, compares consumption against stock, and totals the cost to bake,
// the cost to restock and the profit into a ProductionSummary.
//
// The package is a pure computation over in-memory records. It performs no
// I/O, never mutates stock and keeps no global state.
package costing
