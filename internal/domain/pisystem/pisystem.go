// Package pisystem defines the aromatic and imidazole ring systems that can
// accept an XH···π interaction, and builds their fitted planes from residue
// coordinates.
package pisystem

import (
	"github.com/turtacn/xpid/internal/domain/geometry"
	"github.com/turtacn/xpid/internal/domain/structure"
)

// Variant tags one ring system of a residue type. Tryptophan contributes
// two variants, every other aromatic residue exactly one.
type Variant string

const (
	// VariantTrpMain is the six-membered ring of tryptophan.
	VariantTrpMain Variant = "trp-main"
	// VariantTrpA is the five-membered pyrrole ring of tryptophan.
	VariantTrpA Variant = "trp-a"
	// VariantTyr is the tyrosine phenol ring.
	VariantTyr Variant = "tyr"
	// VariantPtr is the phosphotyrosine phenol ring.
	VariantPtr Variant = "ptr"
	// VariantPhe is the phenylalanine benzene ring.
	VariantPhe Variant = "phe"
	// VariantHis is the histidine imidazole ring.
	VariantHis Variant = "his"
)

// Definition is one ring system as data: the residue name it applies to,
// the exact atom-name set that must be present, and the Hudson projection
// threshold in Å. ProjDist is nil for rings the Hudson criterion does not
// cover (phosphotyrosine is classified by the Plevin criterion only).
type Definition struct {
	Variant     Variant
	ResidueName string
	AtomNames   map[string]struct{}
	// Remark is carried into the output record; non-empty only for the
	// two tryptophan rings.
	Remark   string
	ProjDist *float64
}

func threshold(v float64) *float64 { return &v }

// sixRing is the shared phenyl atom set of TYR, PTR and PHE.
func sixRing() map[string]struct{} {
	return atomSet("CG", "CD1", "CD2", "CE1", "CE2", "CZ")
}

func atomSet(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Definitions is the closed enumeration of supported ring systems, in the
// order residues are tested against them.
var Definitions = []Definition{
	{
		Variant:     VariantTrpMain,
		ResidueName: "TRP",
		AtomNames:   atomSet("CD2", "CE2", "CE3", "CZ2", "CZ3", "CH2"),
		Remark:      "6-ring",
		ProjDist:    threshold(2.0),
	},
	{
		Variant:     VariantTrpA,
		ResidueName: "TRP",
		AtomNames:   atomSet("CG", "CD1", "CD2", "NE1", "CE2"),
		Remark:      "5-ring",
		ProjDist:    threshold(1.6),
	},
	{
		Variant:     VariantTyr,
		ResidueName: "TYR",
		AtomNames:   sixRing(),
		ProjDist:    threshold(2.0),
	},
	{
		Variant:     VariantPtr,
		ResidueName: "PTR",
		AtomNames:   sixRing(),
	},
	{
		Variant:     VariantPhe,
		ResidueName: "PHE",
		AtomNames:   sixRing(),
		ProjDist:    threshold(2.0),
	},
	{
		Variant:     VariantHis,
		ResidueName: "HIS",
		AtomNames:   atomSet("CG", "ND1", "CD2", "CE1", "NE2"),
		ProjDist:    threshold(1.6),
	},
}

// DefinitionsFor returns the definitions applicable to a residue name.
func DefinitionsFor(resName string) []Definition {
	var defs []Definition
	for _, d := range Definitions {
		if d.ResidueName == resName {
			defs = append(defs, d)
		}
	}
	return defs
}

// IsPiResidue reports whether any ring definition applies to resName.
func IsPiResidue(resName string) bool {
	return len(DefinitionsFor(resName)) > 0
}

// PiSystem is a ring plane fitted to one qualifying residue. Normal has
// unit length but unspecified sign; angle formulas downstream must be
// sign-tolerant where orientation does not matter.
type PiSystem struct {
	Def    Definition
	Center geometry.Vec3
	Normal geometry.Vec3
	MeanB  float64
	AltLoc string
}

// Build fits the ring plane of def to res. The residue qualifies only when
// the number of atoms matching the required names equals the set size
// exactly; a missing atom or an altloc duplicate disqualifies it. A
// non-qualifying residue or a degenerate ring returns nil: it contributes
// no hits rather than an error.
func Build(res *structure.Residue, def Definition) *PiSystem {
	if res == nil {
		return nil
	}
	atoms := res.FindAtoms(def.AtomNames)
	if len(atoms) != len(def.AtomNames) {
		return nil
	}
	points := make([]geometry.Vec3, len(atoms))
	var sumB float64
	for i, a := range atoms {
		points[i] = a.Pos
		sumB += a.BFactor
	}
	center, normal, err := geometry.PlaneFit(points)
	if err != nil || normal.IsZero() {
		return nil
	}
	return &PiSystem{
		Def:    def,
		Center: center,
		Normal: normal,
		MeanB:  sumB / float64(len(atoms)),
		AltLoc: atoms[0].AltLoc,
	}
}
