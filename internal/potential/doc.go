// Package potential implements pairwise energy landscapes.
//
// [PairPotential] sums an [Interaction] over particle pairs in ascending
// index order, taking separations from a [boundary.Model]. The supplied law
// is [HSWCA], a hard-sphere core with a smoothed repulsive shell; [Harmonic]
// is a trivial single-center well used for testing minimizers.
//
// Analytic gradients and Hessians are assembled from the law's first and
// second derivatives with respect to r², which keeps the pair block formula
// independent of the spatial dimension.
package potential
