// Package structure holds the in-memory macromolecular model used by the
// detection pipeline: Structure → Model → Chain → Residue → Atom, plus the
// crystallographic cell, resolution and secondary-structure annotations.
// Instances are built once by the parsers in this package and treated as
// read-only by every later stage.
package structure

import (
	"strconv"
	"strings"

	"github.com/turtacn/xpid/internal/domain/geometry"
)

// Element is a canonical upper-case element symbol ("C", "N", "FE", ...).
type Element string

// Donor heavy-atom elements and the hydrogen isotopes accepted as attached
// hydrogens (deuterium supports neutron structures).
const (
	Carbon    Element = "C"
	Nitrogen  Element = "N"
	Oxygen    Element = "O"
	Sulfur    Element = "S"
	Hydrogen  Element = "H"
	Deuterium Element = "D"
)

// IsHydrogen reports whether e is hydrogen or deuterium.
func (e Element) IsHydrogen() bool {
	return e == Hydrogen || e == Deuterium
}

// IsDonorElement reports whether e is one of the XH···π donor heavy-atom
// elements C, N, O, S.
func (e Element) IsDonorElement() bool {
	switch e {
	case Carbon, Nitrogen, Oxygen, Sulfur:
		return true
	}
	return false
}

// ElementFromString canonicalises an element symbol. Empty input yields the
// empty Element.
func ElementFromString(s string) Element {
	return Element(strings.ToUpper(strings.TrimSpace(s)))
}

// guessElement infers the element from an atom name when the element column
// is absent, as in many older PDB files. Leading digits are part of
// hydrogen naming conventions (e.g. "1HB2"), so they are stripped first.
func guessElement(atomName string) Element {
	name := strings.TrimLeft(strings.TrimSpace(atomName), "0123456789")
	if name == "" {
		return ""
	}
	// Two-letter symbols for common hetero elements seen in ATOM/HETATM
	// names; everything else resolves to its first letter.
	upper := strings.ToUpper(name)
	for _, two := range []string{"FE", "ZN", "MG", "MN", "CL", "BR", "NA", "CA", "SE"} {
		if strings.HasPrefix(upper, two) && len(strings.TrimSpace(atomName)) > 3 {
			return Element(two)
		}
	}
	return Element(upper[:1])
}

// Atom is a single atom with its coordinates and crystallographic metadata.
type Atom struct {
	Serial    int
	Name      string
	AltLoc    string // empty when the atom has a single conformation
	Element   Element
	Pos       geometry.Vec3
	Occupancy float64
	BFactor   float64
}

// Residue is a named monomer with its ordered atom list.
type Residue struct {
	Name   string
	SeqNum int
	Atoms  []*Atom
}

// FindAtoms returns all atoms whose name is in the wanted set, in residue
// order. Duplicate names (alternate conformers) yield multiple entries.
func (r *Residue) FindAtoms(wanted map[string]struct{}) []*Atom {
	var out []*Atom
	for _, a := range r.Atoms {
		if _, ok := wanted[a.Name]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Chain is an ordered list of residues sharing a chain identifier.
type Chain struct {
	Name     string
	Residues []*Residue
}

// Model is one coordinate set. NMR ensembles carry several models per
// structure; crystal structures carry one.
type Model struct {
	// Name is the model identifier from the source file (e.g. the MODEL
	// record serial). Empty when the format omits model names.
	Name   string
	Chains []*Chain
}

// UnitCell holds the crystallographic cell parameters.
type UnitCell struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
}

// Helix is one helix annotation. Class is the PDB helix class code
// (1 = alpha, 3 = pi, 5 = 3/10); the secondary-structure indexer maps it
// to a type letter.
type Helix struct {
	ChainName string
	StartSeq  int
	EndSeq    int
	Class     int
}

// Strand is one sheet-strand annotation.
type Strand struct {
	ChainName string
	StartSeq  int
	EndSeq    int
}

// Structure is the root of the hierarchy for one input file.
type Structure struct {
	// ID is the PDB identifier derived from the source file name.
	ID string

	// Resolution in Ångström; 0 when the file does not state one
	// (e.g. NMR structures).
	Resolution float64

	Cell    UnitCell
	Models  []*Model
	Helices []Helix
	Strands []Strand
}

// ModelID resolves the output identifier for the model at index idx:
// the model's own name when present, else the decimal string of the
// 1-based index. This rule is part of the output contract and must not
// change, or result files stop being comparable across formats.
func (s *Structure) ModelID(idx int) string {
	if idx < 0 || idx >= len(s.Models) {
		return ""
	}
	if name := s.Models[idx].Name; name != "" {
		return name
	}
	return strconv.Itoa(idx + 1)
}
