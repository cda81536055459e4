// Command vaspflow generates consistent bundles of simulation-input
// artifacts for a selected calculation type: the parameter file, the
// k-point specification, the pseudopotential file, and the scheduler
// submission script, plus interpolated image paths for elastic-band runs
// and chained multi-stage submission scripts.
package main
