package structure

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/xpid/pkg/errors"
)

// ParsePDB reads a legacy PDB-format structure. Atoms are grouped into
// residues and chains in file order; MODEL/ENDMDL records delimit models,
// and a file without MODEL records yields a single unnamed model. Malformed
// individual records are skipped; only an unreadable stream is an error.
func ParsePDB(r io.Reader, id string) (*Structure, error) {
	s := &Structure{ID: id}
	b := newModelBuilder()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MODEL"):
			b.flushInto(s)
			b = newModelBuilder()
			if len(line) > 10 {
				b.name = strings.TrimSpace(line[10:])
			}
		case strings.HasPrefix(line, "ENDMDL"):
			b.flushInto(s)
			b = newModelBuilder()
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			if atom, chain, resName, resSeq, ok := parseAtomRecord(line); ok {
				b.add(chain, resName, resSeq, atom)
			}
		case strings.HasPrefix(line, "HELIX"):
			if h, ok := parseHelixRecord(line); ok {
				s.Helices = append(s.Helices, h)
			}
		case strings.HasPrefix(line, "SHEET"):
			if st, ok := parseSheetRecord(line); ok {
				s.Strands = append(s.Strands, st)
			}
		case strings.HasPrefix(line, "CRYST1"):
			s.Cell = parseCryst1(line)
		case strings.HasPrefix(line, "REMARK   2 RESOLUTION."):
			if res, ok := parseResolutionRemark(line); ok {
				s.Resolution = res
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeParse, "reading PDB stream")
	}
	b.flushInto(s)
	return s, nil
}

// modelBuilder accumulates atoms into chains/residues preserving file order.
type modelBuilder struct {
	name    string
	chains  []*Chain
	byName  map[string]*Chain
	lastRes map[string]*Residue
}

func newModelBuilder() *modelBuilder {
	return &modelBuilder{
		byName:  make(map[string]*Chain),
		lastRes: make(map[string]*Residue),
	}
}

func (b *modelBuilder) add(chainName, resName string, resSeq int, atom *Atom) {
	ch, ok := b.byName[chainName]
	if !ok {
		ch = &Chain{Name: chainName}
		b.byName[chainName] = ch
		b.chains = append(b.chains, ch)
	}
	// A residue break is any change of name or number relative to the last
	// atom of this chain; out-of-order files simply produce a new residue.
	last := b.lastRes[chainName]
	if last == nil || last.Name != resName || last.SeqNum != resSeq {
		last = &Residue{Name: resName, SeqNum: resSeq}
		ch.Residues = append(ch.Residues, last)
		b.lastRes[chainName] = last
	}
	last.Atoms = append(last.Atoms, atom)
}

func (b *modelBuilder) flushInto(s *Structure) {
	if len(b.chains) == 0 {
		return
	}
	s.Models = append(s.Models, &Model{Name: b.name, Chains: b.chains})
}

// field extracts a trimmed column slice, tolerant of short lines.
func field(line string, from, to int) string {
	if len(line) < from {
		return ""
	}
	if len(line) < to {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

func parseAtomRecord(line string) (atom *Atom, chain, resName string, resSeq int, ok bool) {
	if len(line) < 54 {
		return nil, "", "", 0, false
	}
	x, errX := strconv.ParseFloat(field(line, 30, 38), 64)
	y, errY := strconv.ParseFloat(field(line, 38, 46), 64)
	z, errZ := strconv.ParseFloat(field(line, 46, 54), 64)
	if errX != nil || errY != nil || errZ != nil {
		return nil, "", "", 0, false
	}
	resSeq, err := strconv.Atoi(field(line, 22, 26))
	if err != nil {
		return nil, "", "", 0, false
	}

	serial, _ := strconv.Atoi(field(line, 6, 11))
	occ, _ := strconv.ParseFloat(field(line, 54, 60), 64)
	bf, _ := strconv.ParseFloat(field(line, 60, 66), 64)

	name := field(line, 12, 16)
	elem := ElementFromString(field(line, 76, 78))
	if elem == "" {
		elem = guessElement(name)
	}

	atom = &Atom{
		Serial:    serial,
		Name:      name,
		AltLoc:    field(line, 16, 17),
		Element:   elem,
		Occupancy: occ,
		BFactor:   bf,
	}
	atom.Pos.X, atom.Pos.Y, atom.Pos.Z = x, y, z
	return atom, field(line, 21, 22), field(line, 17, 20), resSeq, true
}

func parseHelixRecord(line string) (Helix, bool) {
	start, err1 := strconv.Atoi(field(line, 21, 25))
	end, err2 := strconv.Atoi(field(line, 33, 37))
	chain := field(line, 19, 20)
	if err1 != nil || err2 != nil || chain == "" {
		return Helix{}, false
	}
	class, _ := strconv.Atoi(field(line, 38, 40))
	return Helix{ChainName: chain, StartSeq: start, EndSeq: end, Class: class}, true
}

func parseSheetRecord(line string) (Strand, bool) {
	start, err1 := strconv.Atoi(field(line, 22, 26))
	end, err2 := strconv.Atoi(field(line, 33, 37))
	chain := field(line, 21, 22)
	if err1 != nil || err2 != nil || chain == "" {
		return Strand{}, false
	}
	return Strand{ChainName: chain, StartSeq: start, EndSeq: end}, true
}

func parseCryst1(line string) UnitCell {
	var c UnitCell
	c.A, _ = strconv.ParseFloat(field(line, 6, 15), 64)
	c.B, _ = strconv.ParseFloat(field(line, 15, 24), 64)
	c.C, _ = strconv.ParseFloat(field(line, 24, 33), 64)
	c.Alpha, _ = strconv.ParseFloat(field(line, 33, 40), 64)
	c.Beta, _ = strconv.ParseFloat(field(line, 40, 47), 64)
	c.Gamma, _ = strconv.ParseFloat(field(line, 47, 54), 64)
	return c
}

// parseResolutionRemark handles "REMARK   2 RESOLUTION.    1.74 ANGSTROMS."
// and the "NOT APPLICABLE" variant found in NMR entries.
func parseResolutionRemark(line string) (float64, bool) {
	rest := strings.TrimSpace(line[len("REMARK   2 RESOLUTION."):])
	tok := strings.Fields(rest)
	if len(tok) == 0 {
		return 0, false
	}
	res, err := strconv.ParseFloat(tok[0], 64)
	if err != nil {
		return 0, false
	}
	return res, true
}
