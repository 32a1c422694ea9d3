package structure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCIF = `data_1ABC
#
_refine.ls_d_res_high 2.10
_cell.length_a 40.0
_cell.length_b 41.0
_cell.length_c 42.0
_cell.angle_alpha 90.0
_cell.angle_beta 95.5
_cell.angle_gamma 90.0
#
loop_
_struct_conf.conf_type_id
_struct_conf.id
_struct_conf.beg_auth_asym_id
_struct_conf.beg_auth_seq_id
_struct_conf.end_auth_seq_id
_struct_conf.pdbx_PDB_helix_class
HELX_P H1 A 4 12 1
HELX_P H2 A 20 24 5
TURN_P T1 A 30 31 .
#
loop_
_struct_sheet_range.sheet_id
_struct_sheet_range.id
_struct_sheet_range.beg_auth_asym_id
_struct_sheet_range.beg_auth_seq_id
_struct_sheet_range.end_auth_seq_id
S1 1 B 40 45
S1 2 B ? 55
#
loop_
_atom_site.group_PDB
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_alt_id
_atom_site.label_comp_id
_atom_site.auth_asym_id
_atom_site.auth_seq_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.occupancy
_atom_site.B_iso_or_equiv
_atom_site.pdbx_PDB_model_num
ATOM 1 N N . TRP A 4 1.000 2.000 3.000 1.00 18.50 1
ATOM 2 C CA . TRP A 4 2.000 2.100 3.000 1.00 19.00 1
ATOM 3 C CA A TYR A 5 3.000 2.000 3.000 0.50 20.00 1
ATOM 4 N N . TRP A 4 1.050 2.000 3.000 1.00 18.00 2
`

func TestParseCIF_Basic(t *testing.T) {
	s, err := ParseCIF(strings.NewReader(sampleCIF), "1abc")
	require.NoError(t, err)

	assert.Equal(t, 2.10, s.Resolution)
	assert.Equal(t, 40.0, s.Cell.A)
	assert.Equal(t, 95.5, s.Cell.Beta)

	// Only HELX_* rows become helices; the TURN_P row is ignored.
	require.Len(t, s.Helices, 2)
	assert.Equal(t, Helix{ChainName: "A", StartSeq: 4, EndSeq: 12, Class: 1}, s.Helices[0])
	assert.Equal(t, 5, s.Helices[1].Class)

	// The strand with a null start seq is dropped silently.
	require.Len(t, s.Strands, 1)
	assert.Equal(t, Strand{ChainName: "B", StartSeq: 40, EndSeq: 45}, s.Strands[0])

	require.Len(t, s.Models, 2)
	assert.Equal(t, "1", s.Models[0].Name)
	assert.Equal(t, "2", s.Models[1].Name)

	chA := s.Models[0].Chains[0]
	require.Len(t, chA.Residues, 2)
	assert.Equal(t, "TRP", chA.Residues[0].Name)
	assert.Equal(t, 4, chA.Residues[0].SeqNum)
	assert.Len(t, chA.Residues[0].Atoms, 2)

	alt := chA.Residues[1].Atoms[0]
	assert.Equal(t, "A", alt.AltLoc)
	assert.Equal(t, 0.5, alt.Occupancy)

	// Second model carries the shifted coordinate.
	assert.Equal(t, 1.05, s.Models[1].Chains[0].Residues[0].Atoms[0].Pos.X)
}

func TestParseCIF_QuotedValuesAndComments(t *testing.T) {
	cif := `data_X
_struct.title 'A test  structure' # trailing comment
loop_
_atom_site.id
_atom_site.label_atom_id
_atom_site.label_comp_id
_atom_site.auth_asym_id
_atom_site.auth_seq_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.type_symbol
1 "C1'" LIG A 1 0.0 0.0 0.0 C
`
	s, err := ParseCIF(strings.NewReader(cif), "xxxx")
	require.NoError(t, err)
	require.Len(t, s.Models, 1)
	atom := s.Models[0].Chains[0].Residues[0].Atoms[0]
	assert.Equal(t, "C1'", atom.Name)
	assert.Equal(t, Carbon, atom.Element)
}

func TestParseCIF_NoAtomSite(t *testing.T) {
	s, err := ParseCIF(strings.NewReader("data_E\n_cell.length_a 10.0\n"), "0000")
	require.NoError(t, err)
	assert.Empty(t, s.Models)
	assert.Equal(t, 10.0, s.Cell.A)
}
