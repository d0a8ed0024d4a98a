// Package sr implements the search engine of a symbolic-regression system:
// a byte-code program representation (Code), a batched evaluator (Machine),
// loss kernels, a population of stochastic hill-climbers, and the
// mutation/initialization operators that drive the search.
//
// A Code is a straight-line arithmetic program over a fixed set of input
// columns and a constant pool; Solver.Fit searches the space of Codes for
// one that minimizes a configured loss against a target vector, using a
// tiered accept/reject strategy (pretest -> sample -> full) so that most
// candidate neighbours are rejected cheaply.
//
// Callers typically do not construct a Solver directly — see the sibling
// engine package, which fans a Fit call out across numThreads independent
// Solvers and keeps the global best.
package sr
