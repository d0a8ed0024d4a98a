// Package loss holds the per-batch loss kernels and the worst-batch result
// accumulator the Processor/Machine drives its search against. Every kernel
// here takes a true/predicted pair of equal, Batch-sized slices and returns
// a score where lower is always better. Every kernel except PseudoKendall
// returns a raw (unnormalized) sum the caller divides by sample count to
// get a mean; PseudoKendall returns a per-batch value already in [0,1].
package loss
