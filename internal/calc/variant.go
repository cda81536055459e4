package calc

import (
	"fmt"

	"vaspflow/internal/params"
)

// Variant identifies one calculation type.
type Variant int

const (
	Opt Variant = iota
	Charge
	DOS
	Band
	Freq
	MD
	STM
	ConTS
	Dimer
	WorkFunc
	NEB
)

var variantNames = map[Variant]string{
	Opt:      "opt",
	Charge:   "charge",
	DOS:      "dos",
	Band:     "band",
	Freq:     "freq",
	MD:       "md",
	STM:      "stm",
	ConTS:    "con-ts",
	Dimer:    "dimer",
	WorkFunc: "workfunc",
	NEB:      "neb",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// ParseVariant resolves a variant from its command name.
func ParseVariant(name string) (Variant, bool) {
	for v, n := range variantNames {
		if n == name {
			return v, true
		}
	}
	return 0, false
}

// Capabilities is the explicit capability set callers query instead of the
// variant's concrete type.
type Capabilities struct {
	// ProducesTrajectory marks variants whose runs can be rendered into an
	// animation file.
	ProducesTrajectory bool
	// RequiresConstraintPair marks variants needing exactly two pinned atoms.
	RequiresConstraintPair bool
	// LinePath marks variants whose k-mesh is always an explicit path.
	LinePath bool
	// MultiImage marks variants generating one directory per path image.
	MultiImage bool
}

// Capabilities returns the variant's capability set.
func (v Variant) Capabilities() Capabilities {
	switch v {
	case Opt, Freq, MD, Dimer:
		return Capabilities{ProducesTrajectory: true}
	case ConTS:
		return Capabilities{ProducesTrajectory: true, RequiresConstraintPair: true}
	case Band:
		return Capabilities{LinePath: true}
	case NEB:
		return Capabilities{ProducesTrajectory: true, MultiImage: true}
	default:
		return Capabilities{}
	}
}

// overrideFunc mutates a parameter set for one variant. Later writes always
// win over earlier ones.
type overrideFunc func(set *params.Set, f Flags)

// overrides is the per-variant rule table, applied after the correction
// injection and before the flag-driven overrides.
var overrides = map[Variant]overrideFunc{
	Opt: func(set *params.Set, f Flags) {},
	Charge: func(set *params.Set, f Flags) {
		set.Set("IBRION", params.Int(1))
		set.Set("LAECHG", params.Bool(true))
		set.Set("LCHARG", params.Bool(true))
	},
	DOS: func(set *params.Set, f Flags) {
		set.Set("ISTART", params.Int(1))
		set.Set("ICHARG", params.Int(11))
		set.Set("IBRION", params.Int(-1))
		set.Set("NSW", params.Int(1))
		set.Set("LORBIT", params.Int(12))
		set.Set("NEDOS", params.Int(2000))
		set.Set("LCHARG", params.Bool(false))
		set.Delete("LAECHG")
	},
	Band: func(set *params.Set, f Flags) {
		set.Set("ISTART", params.Int(1))
		set.Set("ICHARG", params.Int(11))
		set.Set("IBRION", params.Int(-1))
		set.Set("LCHARG", params.Bool(false))
		set.Delete("LAECHG")
	},
	Freq: func(set *params.Set, f Flags) {
		set.Set("IBRION", params.Int(5))
		set.Set("ISYM", params.Int(0))
		set.Set("NSW", params.Int(1))
		set.Set("NFREE", params.Int(2))
		set.Set("POTIM", params.Float(0.015))
	},
	MD: func(set *params.Set, f Flags) {
		set.Set("IBRION", params.Int(0))
		set.Set("NSW", params.Int(100000))
		set.Set("POTIM", params.Float(0.5))
		set.Set("SMASS", params.Float(2.0))
		set.Set("MDALGO", params.Int(2))
		set.Set("TEBEG", params.Float(300))
		set.Set("TEEND", params.Float(300))
	},
	STM: func(set *params.Set, f Flags) {
		set.Set("ISTART", params.Int(1))
		set.Set("IBRION", params.Int(-1))
		set.Set("NSW", params.Int(0))
		set.Set("LPARD", params.Bool(true))
		set.Set("NBMOD", params.Int(-3))
		set.Set("EINT", params.Float(5.0))
		set.Set("LSEPB", params.Bool(false))
		set.Set("LSEPK", params.Bool(false))
	},
	ConTS: func(set *params.Set, f Flags) {
		set.Set("IBRION", params.Int(1))
	},
	Dimer: func(set *params.Set, f Flags) {
		set.Set("IBRION", params.Int(3))
		set.Set("POTIM", params.Float(0))
		set.Set("ISYM", params.Int(0))
		set.Set("ICHAIN", params.Int(2))
		set.Set("DdR", params.Float(0.005))
		set.Set("DRotMax", params.Int(10))
		set.Set("DFNMax", params.Float(1.0))
		set.Set("DFNMin", params.Float(0.01))
		set.Set("IOPT", params.Int(2))
	},
	WorkFunc: func(set *params.Set, f Flags) {
		set.Set("IBRION", params.Int(-1))
		set.Set("NSW", params.Int(1))
		set.Set("LVHAR", params.Bool(true))
	},
	NEB: func(set *params.Set, f Flags) {
		set.Set("IBRION", params.Int(3))
		set.Set("POTIM", params.Float(0))
		set.Set("SPRING", params.Float(f.Spring))
		set.Set("LCLIMB", params.Bool(false))
		set.Set("ICHAIN", params.Int(0))
		set.Set("IOPT", params.Int(3))
		set.Set("MAXMOVE", params.Float(0.03))
		set.Set("IMAGES", params.Int(int64(f.Images)))
	},
}

// applyFlagOverrides applies the flag-driven mutations after the variant
// table. NELECT needs the potential artifact's valences, so it is handled
// by the orchestrator once those are known.
func applyFlagOverrides(set *params.Set, f Flags, atomCount int) {
	if f.VDW {
		set.Set("IVDW", params.Int(12))
	}
	if f.Sol {
		set.Set("LSOL", params.Bool(true))
		set.Set("EB_K", params.Float(80.0))
	}
	if f.Mag {
		set.Set("ISPIN", params.Int(2))
		if !set.Has("MAGMOM") {
			set.Set("MAGMOM", params.String(fmt.Sprintf("%d*0.6", atomCount)))
		}
	}
	if f.HSE {
		set.Set("LHFCALC", params.Bool(true))
		set.Set("HFSCREEN", params.Float(0.2))
		set.Set("ALGO", params.String("Damped"))
	}
	if f.Static {
		set.Set("IBRION", params.Int(-1))
		set.Set("NSW", params.Int(1))
	}
}
