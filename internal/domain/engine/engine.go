// Package engine implements XH···π interaction detection: for every
// qualifying ring system in the selected models it enumerates nearby
// donor/hydrogen pairs and classifies each triple against the Plevin and
// Hudson criteria.
package engine

import (
	"strconv"

	apperrors "github.com/turtacn/xpid/pkg/errors"
	"github.com/turtacn/xpid/pkg/types/interaction"

	"github.com/turtacn/xpid/internal/domain/geometry"
	"github.com/turtacn/xpid/internal/domain/neighbor"
	"github.com/turtacn/xpid/internal/domain/pisystem"
	"github.com/turtacn/xpid/internal/domain/secondary"
	"github.com/turtacn/xpid/internal/domain/structure"
)

const (
	// piSearchRadius bounds the π-center neighbor query in Å.
	piSearchRadius = 6.0
	// covalentHCutoff is the X–H bond distance cutoff in Å.
	covalentHCutoff = 1.3
	// hudsonDistBound is the loosest of the two criteria's distance
	// bounds and therefore gates candidate enumeration.
	hudsonDistBound = 4.5

	plevinDistBound  = 4.3
	plevinXHPiMin    = 120.0
	plevinXPCNMax    = 25.0
	hudsonThetaBound = 40.0
)

// ModelSelector chooses which models of a structure to process: all of
// them, or a single zero-based index.
type ModelSelector struct {
	All   bool
	Index int
}

// AllModels selects every model.
func AllModels() ModelSelector { return ModelSelector{All: true} }

// ModelAt selects the model at the given zero-based index. An out-of-range
// index produces an empty result, not an error.
func ModelAt(i int) ModelSelector { return ModelSelector{Index: i} }

// ParseModelSelector parses the CLI form of a selector: "all" or a
// non-negative decimal index.
func ParseModelSelector(s string) (ModelSelector, error) {
	if s == "" || s == "all" {
		return AllModels(), nil
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return ModelSelector{}, apperrors.Newf(apperrors.CodeValidation,
			"model selector must be \"all\" or a non-negative integer, got %q", s)
	}
	return ModelAt(i), nil
}

// Filters holds the optional allow-lists restricting the search. A nil or
// empty list leaves its dimension unrestricted. Element symbols must come
// from the donor set {C, N, O, S}; that is validated at the interface
// layer, not here.
type Filters struct {
	PiResidues    []string
	DonorResidues []string
	DonorElements []string
}

func toSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func allowed(set map[string]struct{}, name string) bool {
	if set == nil {
		return true
	}
	_, ok := set[name]
	return ok
}

// Detect runs detection over the selected models of s and returns all hits
// in deterministic order: models, then chains, then residues, then ring
// variants in definition order, then neighbor-scan order. It never mutates
// the structure. Numeric hit fields carry full precision; display rounding
// is the output sink's concern.
func Detect(s *structure.Structure, pdbID string, sel ModelSelector, f Filters) []interaction.Hit {
	hits := []interaction.Hit{}
	if s == nil {
		return hits
	}

	piSet := toSet(f.PiResidues)
	donorResSet := toSet(f.DonorResidues)
	donorElemSet := toSet(f.DonorElements)

	for idx, model := range s.Models {
		if !sel.All && idx != sel.Index {
			continue
		}
		modelID := s.ModelID(idx)
		atoms := neighbor.NewIndex(model, piSearchRadius)
		ss := secondary.BuildIndex(s)

		for _, chain := range model.Chains {
			for _, res := range chain.Residues {
				if !allowed(piSet, res.Name) {
					continue
				}
				for _, def := range pisystem.DefinitionsFor(res.Name) {
					ps := pisystem.Build(res, def)
					if ps == nil {
						continue
					}
					hits = append(hits, detectForSystem(
						s, pdbID, modelID, atoms, ss,
						chain, res, ps, donorResSet, donorElemSet,
					)...)
				}
			}
		}
	}
	return hits
}

// detectForSystem enumerates and classifies donor/hydrogen pairs around
// one fitted ring system.
func detectForSystem(
	s *structure.Structure, pdbID, modelID string,
	atoms *neighbor.Index, ss *secondary.Index,
	piChain *structure.Chain, piRes *structure.Residue, ps *pisystem.PiSystem,
	donorResSet, donorElemSet map[string]struct{},
) []interaction.Hit {
	var hits []interaction.Hit

	for _, x := range atoms.FindAtoms(ps.Center, ps.AltLoc, piSearchRadius) {
		if !x.Atom.Element.IsDonorElement() {
			continue
		}
		if !allowed(donorResSet, x.Residue.Name) {
			continue
		}
		if !allowed(donorElemSet, string(x.Atom.Element)) {
			continue
		}
		distXPi := geometry.Distance(x.Atom.Pos, ps.Center)
		if distXPi > hudsonDistBound {
			continue
		}

		// Each attached hydrogen is evaluated independently; a donor
		// with several hydrogens can yield several hits.
		for _, h := range atoms.FindAtoms(x.Atom.Pos, x.Atom.AltLoc, covalentHCutoff) {
			if !h.Atom.Element.IsHydrogen() || h.Atom == x.Atom {
				continue
			}
			hit, ok := classify(ps, x, h, distXPi)
			if !ok {
				continue
			}

			hit.PDB = pdbID
			hit.Model = modelID
			hit.Resolution = s.Resolution
			hit.PiChain = piChain.Name
			hit.PiRes = piRes.Name
			hit.PiID = piRes.SeqNum
			hit.PiSSType, hit.PiSSID = ss.Lookup(piChain.Name, piRes.SeqNum)
			hit.XSSType, hit.XSSID = ss.Lookup(x.Chain.Name, x.Residue.SeqNum)
			hit.SeqSep = -1
			if piChain.Name == x.Chain.Name {
				hit.SeqSep = absInt(piRes.SeqNum - x.Residue.SeqNum)
			}
			hits = append(hits, hit)
		}
	}
	return hits
}

// classify evaluates one (π-system, X, H) triple. A triple whose geometry
// leaves any required angle undefined is dropped; a defined triple is kept
// only when at least one criterion holds.
func classify(ps *pisystem.PiSystem, x, h neighbor.AtomRef, distXPi float64) (interaction.Hit, bool) {
	xpcn, ok := geometry.XPCNAngle(x.Atom.Pos, ps.Center, ps.Normal)
	if !ok {
		return interaction.Hit{}, false
	}
	xhPi, ok := geometry.XHPiAngle(ps.Center, x.Atom.Pos, h.Atom.Pos)
	if !ok {
		return interaction.Hit{}, false
	}
	theta, ok := geometry.HudsonTheta(ps.Center, x.Atom.Pos, h.Atom.Pos, ps.Normal)
	if !ok {
		return interaction.Hit{}, false
	}

	plevin := distXPi < plevinDistBound && xhPi > plevinXHPiMin && xpcn < plevinXPCNMax

	hudson := false
	var projDist *float64
	if ps.Def.ProjDist != nil {
		if pd, defined := geometry.ProjectionDistance(ps.Normal, ps.Center, x.Atom.Pos); defined {
			projDist = &pd
			hudson = theta <= hudsonThetaBound &&
				distXPi <= hudsonDistBound &&
				pd <= *ps.Def.ProjDist
		}
	}
	if !plevin && !hudson {
		return interaction.Hit{}, false
	}

	hit := interaction.Hit{
		XChain:    x.Chain.Name,
		XRes:      x.Residue.Name,
		XID:       x.Residue.SeqNum,
		XAtom:     x.Atom.Name,
		HAtom:     h.Atom.Name,
		DistXPi:   distXPi,
		Remark:    ps.Def.Remark,
		PiAvgB:    ps.MeanB,
		PiCenterX: ps.Center.X,
		PiCenterY: ps.Center.Y,
		PiCenterZ: ps.Center.Z,
		XB:        x.Atom.BFactor,
		XXyzX:     x.Atom.Pos.X,
		XXyzY:     x.Atom.Pos.Y,
		XXyzZ:     x.Atom.Pos.Z,
		Theta:     theta,
		AngleXHPi: xhPi,
		AngleXPCN: xpcn,
		ProjDist:  projDist,
	}
	if plevin {
		hit.IsPlevin = 1
	}
	if hudson {
		hit.IsHudson = 1
	}
	return hit, true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
