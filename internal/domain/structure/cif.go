package structure

import (
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/xpid/internal/domain/cif"
)

// ParseCIF reads an mmCIF structure. Only the categories the pipeline needs
// are interpreted: _atom_site (coordinates, grouped per model), _struct_conf
// (helices), _struct_sheet_range (strands), _cell and _refine resolution.
// Unknown categories are skipped, and rows with unparsable mandatory fields
// are dropped silently like their PDB-format counterparts.
func ParseCIF(r io.Reader, id string) (*Structure, error) {
	doc, err := cif.Parse(r)
	if err != nil {
		return nil, err
	}

	s := &Structure{ID: id}
	s.Resolution, _ = strconv.ParseFloat(doc.Item("_refine.ls_d_res_high"), 64)
	s.Cell.A, _ = strconv.ParseFloat(doc.Item("_cell.length_a"), 64)
	s.Cell.B, _ = strconv.ParseFloat(doc.Item("_cell.length_b"), 64)
	s.Cell.C, _ = strconv.ParseFloat(doc.Item("_cell.length_c"), 64)
	s.Cell.Alpha, _ = strconv.ParseFloat(doc.Item("_cell.angle_alpha"), 64)
	s.Cell.Beta, _ = strconv.ParseFloat(doc.Item("_cell.angle_beta"), 64)
	s.Cell.Gamma, _ = strconv.ParseFloat(doc.Item("_cell.angle_gamma"), 64)

	parseAtomSiteLoop(doc, s)
	parseStructConfLoop(doc, s)
	parseSheetRangeLoop(doc, s)
	return s, nil
}

func parseAtomSiteLoop(doc *cif.Document, s *Structure) {
	l := doc.LoopFor("_atom_site.id")
	if l == nil {
		l = doc.LoopFor("_atom_site.cartn_x")
	}
	if l == nil {
		return
	}

	cX := l.Col("_atom_site.cartn_x")
	cY := l.Col("_atom_site.cartn_y")
	cZ := l.Col("_atom_site.cartn_z")
	if cX < 0 || cY < 0 || cZ < 0 {
		return
	}
	cSerial := l.Col("_atom_site.id")
	cName := l.Pick("_atom_site.auth_atom_id", "_atom_site.label_atom_id")
	cAlt := l.Col("_atom_site.label_alt_id")
	cComp := l.Pick("_atom_site.auth_comp_id", "_atom_site.label_comp_id")
	cAsym := l.Pick("_atom_site.auth_asym_id", "_atom_site.label_asym_id")
	cSeq := l.Pick("_atom_site.auth_seq_id", "_atom_site.label_seq_id")
	cOcc := l.Col("_atom_site.occupancy")
	cB := l.Col("_atom_site.b_iso_or_equiv")
	cElem := l.Col("_atom_site.type_symbol")
	cModel := l.Col("_atom_site.pdbx_pdb_model_num")

	b := newModelBuilder()
	curModel := ""
	for _, row := range l.Rows {
		modelNum := l.Get(row, cModel)
		if modelNum != curModel {
			b.flushInto(s)
			b = newModelBuilder()
			b.name = modelNum
			curModel = modelNum
		}

		x, errX := strconv.ParseFloat(l.Get(row, cX), 64)
		y, errY := strconv.ParseFloat(l.Get(row, cY), 64)
		z, errZ := strconv.ParseFloat(l.Get(row, cZ), 64)
		seq, errSeq := strconv.Atoi(l.Get(row, cSeq))
		if errX != nil || errY != nil || errZ != nil || errSeq != nil {
			continue
		}

		serial, _ := strconv.Atoi(l.Get(row, cSerial))
		occ, _ := strconv.ParseFloat(l.Get(row, cOcc), 64)
		bf, _ := strconv.ParseFloat(l.Get(row, cB), 64)

		name := l.Get(row, cName)
		elem := ElementFromString(l.Get(row, cElem))
		if elem == "" {
			elem = guessElement(name)
		}

		atom := &Atom{
			Serial:    serial,
			Name:      name,
			AltLoc:    l.Get(row, cAlt),
			Element:   elem,
			Occupancy: occ,
			BFactor:   bf,
		}
		atom.Pos.X, atom.Pos.Y, atom.Pos.Z = x, y, z
		b.add(l.Get(row, cAsym), l.Get(row, cComp), seq, atom)
	}
	b.flushInto(s)
}

// parseStructConfLoop extracts helix annotations. pdbx_PDB_helix_class
// reuses the PDB helix class numbering.
func parseStructConfLoop(doc *cif.Document, s *Structure) {
	l := doc.LoopFor("_struct_conf.conf_type_id")
	if l == nil {
		return
	}
	cType := l.Col("_struct_conf.conf_type_id")
	cChain := l.Pick("_struct_conf.beg_auth_asym_id", "_struct_conf.beg_label_asym_id")
	cStart := l.Pick("_struct_conf.beg_auth_seq_id", "_struct_conf.beg_label_seq_id")
	cEnd := l.Pick("_struct_conf.end_auth_seq_id", "_struct_conf.end_label_seq_id")
	cClass := l.Col("_struct_conf.pdbx_pdb_helix_class")

	for _, row := range l.Rows {
		if !strings.HasPrefix(strings.ToUpper(l.Get(row, cType)), "HELX") {
			continue
		}
		start, err1 := strconv.Atoi(l.Get(row, cStart))
		end, err2 := strconv.Atoi(l.Get(row, cEnd))
		chain := l.Get(row, cChain)
		if err1 != nil || err2 != nil || chain == "" {
			continue
		}
		class, _ := strconv.Atoi(l.Get(row, cClass))
		s.Helices = append(s.Helices, Helix{
			ChainName: chain, StartSeq: start, EndSeq: end, Class: class,
		})
	}
}

func parseSheetRangeLoop(doc *cif.Document, s *Structure) {
	l := doc.LoopFor("_struct_sheet_range.sheet_id")
	if l == nil {
		return
	}
	cChain := l.Pick("_struct_sheet_range.beg_auth_asym_id", "_struct_sheet_range.beg_label_asym_id")
	cStart := l.Pick("_struct_sheet_range.beg_auth_seq_id", "_struct_sheet_range.beg_label_seq_id")
	cEnd := l.Pick("_struct_sheet_range.end_auth_seq_id", "_struct_sheet_range.end_label_seq_id")

	for _, row := range l.Rows {
		start, err1 := strconv.Atoi(l.Get(row, cStart))
		end, err2 := strconv.Atoi(l.Get(row, cEnd))
		chain := l.Get(row, cChain)
		if err1 != nil || err2 != nil || chain == "" {
			continue
		}
		s.Strands = append(s.Strands, Strand{ChainName: chain, StartSeq: start, EndSeq: end})
	}
}
