// Package neighbor provides a cell-list spatial index over the atoms of one
// model. It is built once per processed model and answers radius queries
// with alternate-location filtering, replicating the contract the detection
// engine needs: deterministic result order (model traversal order within
// the scanned cell range) and inclusive distance comparison.
package neighbor

import (
	"math"

	"github.com/turtacn/xpid/internal/domain/geometry"
	"github.com/turtacn/xpid/internal/domain/structure"
)

// AtomRef locates an atom together with its residue and chain context,
// which the result assembler needs for every candidate.
type AtomRef struct {
	Atom    *structure.Atom
	Residue *structure.Residue
	Chain   *structure.Chain
}

type cellKey [3]int

// Index is an immutable spatial grid over one model's atoms.
type Index struct {
	cellSize float64
	cells    map[cellKey][]AtomRef
}

// NewIndex builds the grid with the given cell size, which should be the
// largest radius commonly queried (the π-center search cutoff). Larger
// query radii still work; they just scan more cells. Hydrogens are indexed
// along with heavy atoms, as the 1.3 Å X–H query depends on them.
func NewIndex(m *structure.Model, cellSize float64) *Index {
	if cellSize <= 0 {
		cellSize = 1
	}
	ix := &Index{
		cellSize: cellSize,
		cells:    make(map[cellKey][]AtomRef),
	}
	if m == nil {
		return ix
	}
	for _, ch := range m.Chains {
		for _, res := range ch.Residues {
			for _, a := range res.Atoms {
				k := ix.keyFor(a.Pos)
				ix.cells[k] = append(ix.cells[k], AtomRef{Atom: a, Residue: res, Chain: ch})
			}
		}
	}
	return ix
}

func (ix *Index) keyFor(p geometry.Vec3) cellKey {
	return cellKey{
		int(math.Floor(p.X / ix.cellSize)),
		int(math.Floor(p.Y / ix.cellSize)),
		int(math.Floor(p.Z / ix.cellSize)),
	}
}

// altlocMatches implements the conformer filter: an atom with no altloc
// matches every query, and an empty query altloc matches every atom.
func altlocMatches(atomAlt, queryAlt string) bool {
	return atomAlt == "" || queryAlt == "" || atomAlt == queryAlt
}

// FindAtoms returns every indexed atom within radius (inclusive) of center
// whose altloc is compatible with queryAlt. The scan visits cells in fixed
// coordinate order, so the result order is deterministic for a given model.
func (ix *Index) FindAtoms(center geometry.Vec3, queryAlt string, radius float64) []AtomRef {
	if radius < 0 {
		return nil
	}
	lo := ix.keyFor(center.Sub(geometry.Vec3{X: radius, Y: radius, Z: radius}))
	hi := ix.keyFor(center.Add(geometry.Vec3{X: radius, Y: radius, Z: radius}))

	var out []AtomRef
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				for _, ref := range ix.cells[cellKey{x, y, z}] {
					if !altlocMatches(ref.Atom.AltLoc, queryAlt) {
						continue
					}
					if geometry.Distance(ref.Atom.Pos, center) <= radius {
						out = append(out, ref)
					}
				}
			}
		}
	}
	return out
}
