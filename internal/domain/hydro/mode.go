// Package hydro prepares structure hydrogens before detection: shifting
// them to ideal bond lengths, stripping them, or rebuilding them from a
// CCP4-style monomer dictionary.
package hydro

import (
	"github.com/turtacn/xpid/pkg/errors"
)

// Mode selects the hydrogen treatment applied to a structure before
// detection. The numeric values are the CLI contract.
type Mode int

const (
	// ModeNoChange leaves the structure untouched.
	ModeNoChange Mode = 0
	// ModeShift moves existing hydrogens to the ideal bond length along
	// their current bond direction.
	ModeShift Mode = 1
	// ModeRemove strips all hydrogens and deuteriums.
	ModeRemove Mode = 2
	// ModeReAdd strips hydrogens and rebuilds them from the monomer
	// dictionary for every residue.
	ModeReAdd Mode = 3
	// ModeReAddButWater is ModeReAdd except water residues keep their
	// original hydrogens.
	ModeReAddButWater Mode = 4
	// ModeReAddKnown rebuilds hydrogens only for residues the monomer
	// dictionary knows; unknown residues are left untouched.
	ModeReAddKnown Mode = 5
)

// ParseMode validates the CLI integer form of a mode.
func ParseMode(v int) (Mode, error) {
	if v < int(ModeNoChange) || v > int(ModeReAddKnown) {
		return 0, errors.Newf(errors.CodeValidation, "hydrogen mode must be 0..5, got %d", v)
	}
	return Mode(v), nil
}

// NeedsLibrary reports whether the mode requires a monomer dictionary.
func (m Mode) NeedsLibrary() bool {
	switch m {
	case ModeShift, ModeReAdd, ModeReAddButWater, ModeReAddKnown:
		return true
	}
	return false
}

func (m Mode) String() string {
	switch m {
	case ModeNoChange:
		return "no-change"
	case ModeShift:
		return "shift"
	case ModeRemove:
		return "remove"
	case ModeReAdd:
		return "re-add"
	case ModeReAddButWater:
		return "re-add-but-water"
	case ModeReAddKnown:
		return "re-add-known"
	}
	return "unknown"
}
