// Package calc is the generation core: one variant tag per calculation
// type, a flat override-rule table applied on top of the resolved parameter
// template, the orchestrator that walks the fixed pipeline state sequence,
// the image-path generator for elastic-band runs, and the chainer that
// extends a submission script with failure-gated follow-up stages.
//
// Override precedence is strictly last-write-wins: correction injection,
// then the variant table, then flag-driven overrides.
package calc
