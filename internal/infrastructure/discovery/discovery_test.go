package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func TestFindInputs_DirectoryScan(t *testing.T) {
	dir := t.TempDir()
	touch(t,
		filepath.Join(dir, "1abc.pdb"),
		filepath.Join(dir, "2XYZ.cif"),
		filepath.Join(dir, "4GHI.CIF"),
		filepath.Join(dir, "5jkl.PDB.gz"),
		filepath.Join(dir, "sub", "3def.cif.gz"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "toolong1.pdb"),
		filepath.Join(dir, "1ab.pdb"),
	)

	got, err := FindInputs([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "1abc.pdb"),
		filepath.Join(dir, "2XYZ.cif"),
		filepath.Join(dir, "4GHI.CIF"),
		filepath.Join(dir, "5jkl.PDB.gz"),
		filepath.Join(dir, "sub", "3def.cif.gz"),
	}, got)
}

func TestFindInputs_ExplicitFileBypassesPattern(t *testing.T) {
	dir := t.TempDir()
	odd := filepath.Join(dir, "my_structure.pdb")
	touch(t, odd)

	got, err := FindInputs([]string{odd})
	require.NoError(t, err)
	assert.Equal(t, []string{odd}, got)
}

func TestFindInputs_DeduplicatesAndSorts(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "1abc.pdb")
	b := filepath.Join(dir, "2abc.pdb")
	touch(t, a, b)

	got, err := FindInputs([]string{b, a, dir})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, got)
}

func TestFindInputs_MissingInput(t *testing.T) {
	_, err := FindInputs([]string{filepath.Join(t.TempDir(), "absent.pdb")})
	assert.Error(t, err)
}

func TestPDBID(t *testing.T) {
	assert.Equal(t, "1abc", PDBID("/data/pdb/1abc.pdb"))
	assert.Equal(t, "2xyz", PDBID("2xyz.cif.gz"))
	assert.Equal(t, "my_structure", PDBID("in/my_structure.pdb"))
	assert.Equal(t, "model7", PDBID("model7.cif"))
}
