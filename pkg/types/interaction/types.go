// Package interaction defines the XH···π interaction result record shared
// between the detection engine and the output sink. The struct field order
// is the wire column order for both CSV and JSON output.
package interaction

import (
	"math"
	"strconv"
)

// Hit is one detected XH···π interaction: a (π-system, X donor, H) triple
// that satisfies the Plevin criterion, the Hudson criterion, or both.
//
// Numeric fields hold full precision; display rounding is applied by
// Rounded / CSVRow so downstream recomputation can use the exact values.
type Hit struct {
	PDB        string  `json:"pdb"`
	Model      string  `json:"model"`
	Resolution float64 `json:"resolution"`

	PiChain string `json:"pi_chain"`
	PiRes   string `json:"pi_res"`
	PiID    int    `json:"pi_id"`

	XChain string  `json:"X_chain"`
	XRes   string  `json:"X_res"`
	XID    int     `json:"X_id"`
	XAtom  string  `json:"X_atom"`
	HAtom  string  `json:"H_atom"`
	DistXPi float64 `json:"dist_X_Pi"`

	IsPlevin int    `json:"is_plevin"`
	IsHudson int    `json:"is_hudson"`
	Remark   string `json:"remark"`

	PiSSType  string  `json:"pi_ss_type"`
	PiSSID    int     `json:"pi_ss_id"`
	XSSType   string  `json:"X_ss_type"`
	XSSID     int     `json:"X_ss_id"`
	PiAvgB    float64 `json:"pi_avg_b"`
	PiCenterX float64 `json:"pi_center_x"`
	PiCenterY float64 `json:"pi_center_y"`
	PiCenterZ float64 `json:"pi_center_z"`
	XB        float64 `json:"X_b"`
	XXyzX     float64 `json:"X_xyz_x"`
	XXyzY     float64 `json:"X_xyz_y"`
	XXyzZ     float64 `json:"X_xyz_z"`
	SeqSep    int     `json:"seq_sep"`
	Theta     float64 `json:"theta"`
	AngleXHPi float64 `json:"angle_XH_Pi"`
	AngleXPCN float64 `json:"angle_XPCN"`

	// ProjDist is nil when no Hudson projection threshold applies to the
	// ring type (e.g. phosphotyrosine), in which case IsHudson is 0.
	ProjDist *float64 `json:"proj_dist"`
}

// Columns is the full wire column order, matching the Hit JSON tags.
var Columns = []string{
	"pdb", "model", "resolution",
	"pi_chain", "pi_res", "pi_id",
	"X_chain", "X_res", "X_id", "X_atom", "H_atom", "dist_X_Pi",
	"is_plevin", "is_hudson", "remark",
	"pi_ss_type", "pi_ss_id", "X_ss_type", "X_ss_id",
	"pi_avg_b", "pi_center_x", "pi_center_y", "pi_center_z",
	"X_b", "X_xyz_x", "X_xyz_y", "X_xyz_z",
	"seq_sep", "theta", "angle_XH_Pi", "angle_XPCN", "proj_dist",
}

// SimpleColumns is the reduced column subset for compact output modes.
var SimpleColumns = []string{
	"pdb", "resolution",
	"pi_chain", "pi_res", "pi_id",
	"X_chain", "X_res", "X_id", "X_atom", "H_atom",
	"dist_X_Pi", "is_plevin", "is_hudson", "remark",
}

// roundTo rounds v to n decimal places.
func roundTo(v float64, n int) float64 {
	p := math.Pow10(n)
	return math.Round(v*p) / p
}

// Rounded returns a display copy of the hit: distances and coordinates to
// 3 decimals, angles and B-factors to 2.
func (h Hit) Rounded() Hit {
	h.DistXPi = roundTo(h.DistXPi, 3)
	h.PiAvgB = roundTo(h.PiAvgB, 2)
	h.PiCenterX = roundTo(h.PiCenterX, 3)
	h.PiCenterY = roundTo(h.PiCenterY, 3)
	h.PiCenterZ = roundTo(h.PiCenterZ, 3)
	h.XB = roundTo(h.XB, 2)
	h.XXyzX = roundTo(h.XXyzX, 3)
	h.XXyzY = roundTo(h.XXyzY, 3)
	h.XXyzZ = roundTo(h.XXyzZ, 3)
	h.Theta = roundTo(h.Theta, 2)
	h.AngleXHPi = roundTo(h.AngleXHPi, 2)
	h.AngleXPCN = roundTo(h.AngleXPCN, 2)
	if h.ProjDist != nil {
		pd := roundTo(*h.ProjDist, 3)
		h.ProjDist = &pd
	}
	return h
}

// SimpleHit is the reduced record written in compact output modes.
type SimpleHit struct {
	PDB        string  `json:"pdb"`
	Resolution float64 `json:"resolution"`
	PiChain    string  `json:"pi_chain"`
	PiRes      string  `json:"pi_res"`
	PiID       int     `json:"pi_id"`
	XChain     string  `json:"X_chain"`
	XRes       string  `json:"X_res"`
	XID        int     `json:"X_id"`
	XAtom      string  `json:"X_atom"`
	HAtom      string  `json:"H_atom"`
	DistXPi    float64 `json:"dist_X_Pi"`
	IsPlevin   int     `json:"is_plevin"`
	IsHudson   int     `json:"is_hudson"`
	Remark     string  `json:"remark"`
}

// Simple projects the hit onto the reduced column subset, with display
// rounding applied.
func (h Hit) Simple() SimpleHit {
	r := h.Rounded()
	return SimpleHit{
		PDB:        r.PDB,
		Resolution: r.Resolution,
		PiChain:    r.PiChain,
		PiRes:      r.PiRes,
		PiID:       r.PiID,
		XChain:     r.XChain,
		XRes:       r.XRes,
		XID:        r.XID,
		XAtom:      r.XAtom,
		HAtom:      r.HAtom,
		DistXPi:    r.DistXPi,
		IsPlevin:   r.IsPlevin,
		IsHudson:   r.IsHudson,
		Remark:     r.Remark,
	}
}

func formatFloat(v float64, decimals int) string {
	return strconv.FormatFloat(roundTo(v, decimals), 'g', -1, 64)
}

// CSVRow renders the hit as CSV cells. With simple set, only the
// SimpleColumns subset is emitted; otherwise all Columns.
func (h Hit) CSVRow(simple bool) []string {
	projDist := ""
	if h.ProjDist != nil {
		projDist = formatFloat(*h.ProjDist, 3)
	}
	full := []string{
		h.PDB, h.Model, formatFloat(h.Resolution, 4),
		h.PiChain, h.PiRes, strconv.Itoa(h.PiID),
		h.XChain, h.XRes, strconv.Itoa(h.XID), h.XAtom, h.HAtom,
		formatFloat(h.DistXPi, 3),
		strconv.Itoa(h.IsPlevin), strconv.Itoa(h.IsHudson), h.Remark,
		h.PiSSType, strconv.Itoa(h.PiSSID), h.XSSType, strconv.Itoa(h.XSSID),
		formatFloat(h.PiAvgB, 2),
		formatFloat(h.PiCenterX, 3), formatFloat(h.PiCenterY, 3), formatFloat(h.PiCenterZ, 3),
		formatFloat(h.XB, 2),
		formatFloat(h.XXyzX, 3), formatFloat(h.XXyzY, 3), formatFloat(h.XXyzZ, 3),
		strconv.Itoa(h.SeqSep),
		formatFloat(h.Theta, 2), formatFloat(h.AngleXHPi, 2), formatFloat(h.AngleXPCN, 2),
		projDist,
	}
	if !simple {
		return full
	}
	// SimpleColumns drops "model" and everything after "remark".
	row := make([]string, 0, len(SimpleColumns))
	row = append(row, full[0])
	row = append(row, full[2:15]...)
	return row
}
