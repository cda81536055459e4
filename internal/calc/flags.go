package calc

// Flags carries the orthogonal generation switches. Flag-driven overrides
// are applied after the variant's own table, so an explicit flag always
// wins over a variant default.
type Flags struct {
	// Low requests a coarse first optimization pass before the full one.
	Low bool
	// VDW enables the dispersion correction.
	VDW bool
	// Sol enables implicit solvation.
	Sol bool
	// Gamma forces the single-point k-mesh.
	Gamma bool
	// Mag enables spin polarization.
	Mag bool
	// HSE switches to the screened hybrid functional; mutually exclusive
	// with the localized-correction injection.
	HSE bool
	// Static freezes the ions for a single-step run.
	Static bool
	// Continuous restarts from the most recent relaxed-structure output
	// instead of the structural model, carrying forward recorded spin.
	Continuous bool
	// Analysis appends the charge-partitioning post-run stage.
	Analysis bool
	// CheckOverlap validates interatomic distances over every image.
	CheckOverlap bool

	// HasNElect and NElectOffset set an explicit charge offset relative to
	// the neutral electron count derived from the potential artifact.
	HasNElect    bool
	NElectOffset float64

	// Method selects the image interpolation scheme: linear or idpp.
	Method string
	// Images is the interior image count for elastic-band paths.
	Images int
	// Spring is the elastic-band spring constant; zero takes the configured
	// value.
	Spring float64
	// Points is the per-segment sampling density for band-structure paths.
	Points int
}
