package hydro

import (
	"github.com/turtacn/xpid/internal/domain/geometry"
	"github.com/turtacn/xpid/internal/domain/structure"
	"github.com/turtacn/xpid/internal/infrastructure/monitoring/logging"
)

// defaultBondLength holds fallback X–H distances in Å by parent element,
// used when the dictionary does not provide one.
var defaultBondLength = map[structure.Element]float64{
	structure.Carbon:   1.09,
	structure.Nitrogen: 1.01,
	structure.Oxygen:   0.96,
	structure.Sulfur:   1.34,
}

const fallbackBondLength = 1.0

// waterNames are residue names treated as water by ModeReAddButWater.
var waterNames = map[string]struct{}{
	"HOH": {}, "WAT": {}, "DOD": {}, "H2O": {},
}

// Preparer applies a hydrogen Mode to structures, loading monomer
// topologies through a shared Cache.
type Preparer struct {
	cache *Cache
	log   logging.Logger
}

// NewPreparer wires a Preparer. cache may be shared across batch workers.
func NewPreparer(cache *Cache, log logging.Logger) *Preparer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Preparer{cache: cache, log: log.Named("prep")}
}

// Prepare mutates s in place according to mode. Modes that rebuild or
// shift hydrogens need libPath to point at a monomer dictionary; with no
// path configured those modes leave the structure untouched rather than
// stripping hydrogens they cannot re-place. Residues the dictionary does
// not know degrade per mode semantics rather than failing the structure.
func (p *Preparer) Prepare(s *structure.Structure, mode Mode, libPath string) error {
	if s == nil || mode == ModeNoChange {
		return nil
	}
	var lib *Library
	if mode.NeedsLibrary() {
		if libPath == "" {
			p.log.Warn("no monomer library configured, skipping hydrogen preparation",
				logging.String("mode", mode.String()))
			return nil
		}
		lib = p.cache.Library(libPath)
	}

	for _, model := range s.Models {
		for _, chain := range model.Chains {
			for _, res := range chain.Residues {
				if err := p.prepareResidue(res, mode, lib); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (p *Preparer) prepareResidue(res *structure.Residue, mode Mode, lib *Library) error {
	switch mode {
	case ModeRemove:
		stripHydrogens(res)
		return nil
	case ModeShift:
		m, err := lib.Monomer(res.Name)
		if err != nil {
			return err
		}
		shiftHydrogens(res, m)
		return nil
	case ModeReAdd, ModeReAddButWater, ModeReAddKnown:
		if mode == ModeReAddButWater {
			if _, isWater := waterNames[res.Name]; isWater {
				return nil
			}
		}
		m, err := lib.Monomer(res.Name)
		if err != nil {
			return err
		}
		if m == nil {
			if mode == ModeReAddKnown {
				return nil
			}
			// No topology: the rebuild degenerates to a strip.
			p.log.Debug("no monomer entry, stripping hydrogens",
				logging.String("residue", res.Name))
			stripHydrogens(res)
			return nil
		}
		stripHydrogens(res)
		rebuildHydrogens(res, m)
		return nil
	}
	return nil
}

func stripHydrogens(res *structure.Residue) {
	kept := res.Atoms[:0]
	for _, a := range res.Atoms {
		if !a.Element.IsHydrogen() {
			kept = append(kept, a)
		}
	}
	res.Atoms = kept
}

// shiftHydrogens moves each hydrogen to the ideal bond length along its
// current direction from the nearest compatible heavy atom. Hydrogens with
// no heavy atom within plausible bonding range are left in place.
func shiftHydrogens(res *structure.Residue, m *Monomer) {
	for _, h := range res.Atoms {
		if !h.Element.IsHydrogen() {
			continue
		}
		parent := nearestHeavy(res, h)
		if parent == nil {
			continue
		}
		dir := h.Pos.Sub(parent.Pos)
		n := dir.Norm()
		if n == 0 {
			continue
		}
		h.Pos = parent.Pos.Add(dir.Scale(bondLength(m, h.Name, parent) / n))
	}
}

// nearestHeavy returns the closest altloc-compatible heavy atom within
// 2.0 Å, the loose upper bound for any X–H covalent bond.
func nearestHeavy(res *structure.Residue, h *structure.Atom) *structure.Atom {
	const maxBond = 2.0
	var best *structure.Atom
	bestDist := maxBond
	for _, a := range res.Atoms {
		if a.Element.IsHydrogen() || !altlocCompatible(a.AltLoc, h.AltLoc) {
			continue
		}
		if d := geometry.Distance(a.Pos, h.Pos); d < bestDist {
			best, bestDist = a, d
		}
	}
	return best
}

func altlocCompatible(a, b string) bool {
	return a == "" || b == "" || a == b
}

// bondLength resolves the ideal length for the bond between hName and its
// parent: dictionary value first, element default second.
func bondLength(m *Monomer, hName string, parent *structure.Atom) float64 {
	if m != nil {
		for _, b := range m.BondsOf(hName) {
			other := b.Atom1
			if other == hName {
				other = b.Atom2
			}
			if other == parent.Name && b.Dist > 0 {
				return b.Dist
			}
		}
	}
	if d, ok := defaultBondLength[parent.Element]; ok {
		return d
	}
	return fallbackBondLength
}

// rebuildHydrogens places each topology hydrogen at the ideal bond length
// from its parent, directed away from the mean of the parent's bonded
// heavy neighbours. A parent with no located neighbours gives the
// hydrogen no defined direction and it is skipped. One hydrogen is placed
// per parent conformer, inheriting the parent's altloc, occupancy and B.
func rebuildHydrogens(res *structure.Residue, m *Monomer) {
	heavyNeighbors := func(parentName string) []string {
		var names []string
		for _, b := range m.BondsOf(parentName) {
			other := b.Atom1
			if other == parentName {
				other = b.Atom2
			}
			if a := m.atom(other); a != nil && !a.Element.IsHydrogen() {
				names = append(names, other)
			}
		}
		return names
	}

	for _, site := range m.Hydrogens() {
		for _, parent := range res.Atoms {
			if parent.Name != site.Parent || parent.Element.IsHydrogen() {
				continue
			}
			var sum geometry.Vec3
			for _, nb := range heavyNeighbors(site.Parent) {
				for _, a := range res.Atoms {
					if a.Name != nb || !altlocCompatible(a.AltLoc, parent.AltLoc) {
						continue
					}
					d := a.Pos.Sub(parent.Pos)
					if n := d.Norm(); n > 0 {
						sum = sum.Add(d.Scale(1 / n))
					}
					break
				}
			}
			n := sum.Norm()
			if n == 0 {
				continue
			}
			length := site.Dist
			if length <= 0 {
				length = bondLength(m, site.Name, parent)
			}
			res.Atoms = append(res.Atoms, &structure.Atom{
				Name:      site.Name,
				AltLoc:    parent.AltLoc,
				Element:   structure.Hydrogen,
				Pos:       parent.Pos.Add(sum.Scale(-length / n)),
				Occupancy: parent.Occupancy,
				BFactor:   parent.BFactor,
			})
		}
	}
}
