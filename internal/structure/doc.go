// Package structure models atomic structures: a lattice, an ordered atom
// list with per-axis relaxation flags, and the conversions between
// fractional and cartesian coordinates.
//
// It owns the POSCAR-dialect codec used for both structural-model inputs
// (*.vasp) and generated structural artifacts, minimum-image distance
// computation, and the overlap check applied to interpolated images.
package structure
