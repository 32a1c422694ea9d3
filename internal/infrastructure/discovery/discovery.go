// Package discovery resolves CLI input arguments into the list of
// structure files to process.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/turtacn/xpid/pkg/errors"
)

// entryPattern matches file names picked up by a directory scan: a
// four-character PDB-style code with a structure extension, optionally
// gzipped. Explicitly named files bypass this filter.
var entryPattern = regexp.MustCompile(`(?i)^[a-zA-Z0-9]{4}\.(cif|pdb)(\.gz)?$`)

// FindInputs expands each argument: a file is accepted as given, a
// directory is walked recursively for names matching the standard
// <code>.<cif|pdb>[.gz] pattern. The result is deduplicated and sorted so
// a batch run is reproducible regardless of argument order.
func FindInputs(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeIO, "inspecting input "+arg)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && entryPattern.MatchString(d.Name()) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeIO, "scanning directory "+arg)
		}
	}

	sort.Strings(out)
	return out, nil
}

// PDBID derives the structure identifier from a file path: the base name
// stripped of .gz and the format extension. For scanned inputs this is the
// four-character PDB code; explicit files keep their stem verbatim.
func PDBID(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	return strings.TrimSuffix(name, filepath.Ext(name))
}
