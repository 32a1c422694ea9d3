package neighbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/xpid/internal/domain/geometry"
	"github.com/turtacn/xpid/internal/domain/structure"
)

func modelWithAtoms(atoms []*structure.Atom) *structure.Model {
	res := &structure.Residue{Name: "ALA", SeqNum: 1, Atoms: atoms}
	ch := &structure.Chain{Name: "A", Residues: []*structure.Residue{res}}
	return &structure.Model{Chains: []*structure.Chain{ch}}
}

func atomAt(name string, x, y, z float64, alt string) *structure.Atom {
	a := &structure.Atom{Name: name, AltLoc: alt, Element: structure.Carbon}
	a.Pos = geometry.Vec3{X: x, Y: y, Z: z}
	return a
}

func TestFindAtoms_RadiusInclusive(t *testing.T) {
	m := modelWithAtoms([]*structure.Atom{
		atomAt("C1", 0, 0, 0, ""),
		atomAt("C2", 3, 0, 0, ""),
		atomAt("C3", 6.001, 0, 0, ""),
		atomAt("C4", 6.0, 0, 0, ""), // exactly at the cutoff
	})
	ix := NewIndex(m, 6.0)

	got := ix.FindAtoms(geometry.Vec3{}, "", 6.0)
	names := make([]string, 0, len(got))
	for _, ref := range got {
		names = append(names, ref.Atom.Name)
	}
	assert.ElementsMatch(t, []string{"C1", "C2", "C4"}, names)
}

func TestFindAtoms_AltlocFilter(t *testing.T) {
	m := modelWithAtoms([]*structure.Atom{
		atomAt("CA", 0, 0, 0, ""),
		atomAt("CB", 1, 0, 0, "A"),
		atomAt("CG", 2, 0, 0, "B"),
	})
	ix := NewIndex(m, 6.0)

	// Query altloc A: plain atoms and A conformers only.
	got := ix.FindAtoms(geometry.Vec3{}, "A", 6.0)
	require.Len(t, got, 2)
	assert.Equal(t, "CA", got[0].Atom.Name)
	assert.Equal(t, "CB", got[1].Atom.Name)

	// Empty query altloc matches everything.
	assert.Len(t, ix.FindAtoms(geometry.Vec3{}, "", 6.0), 3)
}

func TestFindAtoms_CrossesCellBoundaries(t *testing.T) {
	// Atoms straddling negative/positive cells around the origin.
	m := modelWithAtoms([]*structure.Atom{
		atomAt("N1", -0.5, -0.5, -0.5, ""),
		atomAt("N2", 0.5, 0.5, 0.5, ""),
		atomAt("N3", -5.9, 0, 0, ""),
	})
	ix := NewIndex(m, 6.0)
	assert.Len(t, ix.FindAtoms(geometry.Vec3{}, "", 6.0), 3)
	assert.Len(t, ix.FindAtoms(geometry.Vec3{}, "", 1.0), 2)
}

func TestFindAtoms_CarriesContext(t *testing.T) {
	m := modelWithAtoms([]*structure.Atom{atomAt("CA", 0, 0, 0, "")})
	ix := NewIndex(m, 6.0)
	got := ix.FindAtoms(geometry.Vec3{}, "", 1.0)
	require.Len(t, got, 1)
	assert.Equal(t, "ALA", got[0].Residue.Name)
	assert.Equal(t, "A", got[0].Chain.Name)
}

func TestFindAtoms_Deterministic(t *testing.T) {
	m := modelWithAtoms([]*structure.Atom{
		atomAt("C1", 1, 1, 1, ""),
		atomAt("C2", 1.1, 1, 1, ""),
		atomAt("C3", -1, -1, -1, ""),
	})
	ix := NewIndex(m, 6.0)
	first := ix.FindAtoms(geometry.Vec3{}, "", 6.0)
	for i := 0; i < 10; i++ {
		again := ix.FindAtoms(geometry.Vec3{}, "", 6.0)
		require.Equal(t, first, again)
	}
}

func TestNewIndex_NilModel(t *testing.T) {
	ix := NewIndex(nil, 6.0)
	assert.Empty(t, ix.FindAtoms(geometry.Vec3{}, "", 6.0))
}
