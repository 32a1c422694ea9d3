package structure

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/turtacn/xpid/pkg/errors"
)

// ReadFile parses the structure file at path, choosing the parser from the
// extension (.pdb/.ent → PDB format, .cif → mmCIF) and decompressing
// transparently when the name carries a trailing .gz.
func ReadFile(path, id string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "open structure file").WithDetail(path)
	}
	defer f.Close()

	var r io.Reader = f
	name := path
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeParse, "open gzip stream").WithDetail(path)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".cif":
		return ParseCIF(r, id)
	case ".pdb", ".ent":
		return ParsePDB(r, id)
	default:
		return nil, errors.Newf(errors.CodeParse,
			"unsupported structure format %q", filepath.Ext(name)).WithDetail(path)
	}
}
