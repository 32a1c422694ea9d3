package hydro

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/turtacn/xpid/internal/domain/cif"
	"github.com/turtacn/xpid/internal/domain/structure"
	"github.com/turtacn/xpid/pkg/errors"
)

// MonomerAtom is one atom of a monomer topology.
type MonomerAtom struct {
	Name    string
	Element structure.Element
}

// MonomerBond is one covalent bond of a monomer topology. Dist is the
// ideal bond length in Å, 0 when the dictionary omits it.
type MonomerBond struct {
	Atom1 string
	Atom2 string
	Dist  float64
}

// Monomer is the chemical topology of one residue type, as described by a
// CCP4 monomer dictionary entry.
type Monomer struct {
	Name  string
	Atoms []MonomerAtom
	Bonds []MonomerBond
}

// atom returns the named atom entry, or nil.
func (m *Monomer) atom(name string) *MonomerAtom {
	for i := range m.Atoms {
		if m.Atoms[i].Name == name {
			return &m.Atoms[i]
		}
	}
	return nil
}

// BondsOf returns every bond touching the named atom.
func (m *Monomer) BondsOf(name string) []MonomerBond {
	var out []MonomerBond
	for _, b := range m.Bonds {
		if b.Atom1 == name || b.Atom2 == name {
			out = append(out, b)
		}
	}
	return out
}

// Hydrogens returns the hydrogen atom entries paired with their parent
// heavy atom and the ideal bond length (0 when unknown). Hydrogens with no
// bonded heavy parent are skipped.
func (m *Monomer) Hydrogens() []HydrogenSite {
	var out []HydrogenSite
	for _, a := range m.Atoms {
		if !a.Element.IsHydrogen() {
			continue
		}
		for _, b := range m.BondsOf(a.Name) {
			other := b.Atom1
			if other == a.Name {
				other = b.Atom2
			}
			parent := m.atom(other)
			if parent == nil || parent.Element.IsHydrogen() {
				continue
			}
			out = append(out, HydrogenSite{
				Name: a.Name, Parent: parent.Name, Dist: b.Dist,
			})
			break
		}
	}
	return out
}

// HydrogenSite names one hydrogen of a topology, its parent heavy atom and
// the ideal bond length.
type HydrogenSite struct {
	Name   string
	Parent string
	Dist   float64
}

// Library lazily loads monomer dictionary entries. The path is either a
// CCP4 monomer library root (entries under <root>/<first letter>/<NAME>.cif)
// or a single .cif file carrying one or more entries.
type Library struct {
	path string

	mu    sync.Mutex
	comps map[string]*Monomer
	// loaded marks names already looked up, including misses, so a batch
	// does not re-stat absent files per residue.
	loaded map[string]bool
	// filesParsed marks dictionary files already consumed wholesale, for
	// the single-file layout.
	filesParsed map[string]bool
}

// NewLibrary points a Library at path without touching the filesystem;
// entries load on first use.
func NewLibrary(path string) *Library {
	return &Library{
		path:        path,
		comps:       make(map[string]*Monomer),
		loaded:      make(map[string]bool),
		filesParsed: make(map[string]bool),
	}
}

// Path returns the dictionary location this library reads from.
func (lib *Library) Path() string { return lib.path }

// Monomer returns the topology for a residue name, or (nil, nil) when the
// dictionary has no entry for it. IO or parse failures are returned once
// and then cached as misses.
func (lib *Library) Monomer(name string) (*Monomer, error) {
	name = strings.ToUpper(name)
	if name == "" {
		return nil, nil
	}
	lib.mu.Lock()
	defer lib.mu.Unlock()

	if lib.loaded[name] {
		return lib.comps[name], nil
	}
	lib.loaded[name] = true

	file := lib.path
	if !strings.HasSuffix(strings.ToLower(lib.path), ".cif") {
		file = filepath.Join(lib.path, strings.ToLower(name[:1]), name+".cif")
	}
	if lib.filesParsed[file] {
		return nil, nil
	}
	lib.filesParsed[file] = true
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CodeMonomerLib, "opening monomer entry "+file)
	}
	defer f.Close()

	doc, err := cif.Parse(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMonomerLib, "parsing monomer entry "+file)
	}
	for compName, m := range parseMonomers(doc) {
		lib.comps[compName] = m
		lib.loaded[compName] = true
	}
	return lib.comps[name], nil
}

// parseMonomers interprets every _chem_comp_atom / _chem_comp_bond loop of
// a dictionary document, keyed by comp_id.
func parseMonomers(doc *cif.Document) map[string]*Monomer {
	comps := make(map[string]*Monomer)
	get := func(name string) *Monomer {
		name = strings.ToUpper(name)
		if m, ok := comps[name]; ok {
			return m
		}
		m := &Monomer{Name: name}
		comps[name] = m
		return m
	}

	for _, l := range doc.Loops() {
		if c := l.Col("_chem_comp_atom.atom_id"); c >= 0 {
			cComp := l.Col("_chem_comp_atom.comp_id")
			cElem := l.Col("_chem_comp_atom.type_symbol")
			for _, row := range l.Rows {
				comp := l.Get(row, cComp)
				id := l.Get(row, c)
				if comp == "" || id == "" {
					continue
				}
				get(comp).Atoms = append(get(comp).Atoms, MonomerAtom{
					Name:    id,
					Element: structure.ElementFromString(l.Get(row, cElem)),
				})
			}
		}
		if c1 := l.Col("_chem_comp_bond.atom_id_1"); c1 >= 0 {
			cComp := l.Col("_chem_comp_bond.comp_id")
			c2 := l.Col("_chem_comp_bond.atom_id_2")
			cDist := l.Col("_chem_comp_bond.value_dist")
			for _, row := range l.Rows {
				comp := l.Get(row, cComp)
				a1 := l.Get(row, c1)
				a2 := l.Get(row, c2)
				if comp == "" || a1 == "" || a2 == "" {
					continue
				}
				dist, _ := strconv.ParseFloat(l.Get(row, cDist), 64)
				get(comp).Bonds = append(get(comp).Bonds, MonomerBond{
					Atom1: a1, Atom2: a2, Dist: dist,
				})
			}
		}
	}
	return comps
}

// Cache owns at most one loaded Library, keyed by dictionary path. It is
// passed by reference into preparation calls; changing the path drops the
// previously loaded entries.
type Cache struct {
	mu  sync.Mutex
	lib *Library
}

// Library returns the cached Library for path, invalidating the cache when
// the path differs from the cached one.
func (c *Cache) Library(path string) *Library {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lib == nil || c.lib.path != path {
		c.lib = NewLibrary(path)
	}
	return c.lib
}
