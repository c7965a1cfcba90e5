// Package frozen holds a subset of coordinates fixed while a landscape is
// explored over the remaining ones.
//
// A [Reducer] owns the frozen indices and their reference values and maps
// coordinates, gradients and Hessians between the full and the reduced
// space. An [Adapter] composes a Reducer with any landscape.Landscape and
// exposes the same contract over the reduced space only:
//
//	ad, _ := frozen.NewHSWCA(1, 1.2, radii, 3, x0, []int{0, 3, 4})
//	xr, _ := ad.Reducer().ReduceCoords(x0)
//	e, _ := ad.Energy(xr) // equals the full energy at x0
//
// Reduction of gradients and Hessians is exact: the inclusion of the mobile
// subspace is linear, so derivatives restrict without correction terms.
package frozen
