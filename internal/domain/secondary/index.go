// Package secondary maps residues to secondary-structure annotations.
// It builds a per-chain interval index from a structure's helix and strand
// records and answers point queries with a (type, region id) pair.
package secondary

import (
	"github.com/turtacn/xpid/internal/domain/structure"
)

// Secondary-structure type letters, DSSP-style.
const (
	Type310    = "G" // 3/10 helix (PDB helix class 5)
	TypePi     = "I" // π helix (PDB helix class 3)
	TypeAlpha  = "H" // α helix and any other helix class
	TypeStrand = "E"
	TypeCoil   = "C"
)

// NoRegion is the region id reported for coil residues.
const NoRegion = -1

// Region is one contiguous secondary-structure element. ID is unique
// across the whole structure, assigned in annotation source order.
type Region struct {
	ChainName string
	StartSeq  int
	EndSeq    int
	Type      string
	ID        int
}

// Index answers residue → secondary-structure queries for one structure.
// It is immutable after construction.
type Index struct {
	byChain map[string][]Region
}

// BuildIndex enumerates helix annotations first, then strands, assigning a
// strictly increasing region id starting at 1. That traversal order is the
// tie-break when ranges overlap: Lookup returns the first matching region.
// The index is rebuilt for every processed model; callers must not cache it
// across detect invocations.
func BuildIndex(s *structure.Structure) *Index {
	ix := &Index{byChain: make(map[string][]Region)}
	if s == nil {
		return ix
	}
	uid := 1
	for _, h := range s.Helices {
		t := TypeAlpha
		switch h.Class {
		case 5:
			t = Type310
		case 3:
			t = TypePi
		}
		ix.add(Region{
			ChainName: h.ChainName, StartSeq: h.StartSeq, EndSeq: h.EndSeq,
			Type: t, ID: uid,
		})
		uid++
	}
	for _, st := range s.Strands {
		ix.add(Region{
			ChainName: st.ChainName, StartSeq: st.StartSeq, EndSeq: st.EndSeq,
			Type: TypeStrand, ID: uid,
		})
		uid++
	}
	return ix
}

func (ix *Index) add(r Region) {
	ix.byChain[r.ChainName] = append(ix.byChain[r.ChainName], r)
}

// Lookup returns the type letter and region id for the residue at seqNum
// on the named chain. The scan is linear in insertion order and returns
// the first region whose inclusive [start, end] range contains seqNum;
// residues outside every region are coil: (TypeCoil, NoRegion).
func (ix *Index) Lookup(chain string, seqNum int) (string, int) {
	for _, r := range ix.byChain[chain] {
		if r.StartSeq <= seqNum && seqNum <= r.EndSeq {
			return r.Type, r.ID
		}
	}
	return TypeCoil, NoRegion
}
