package structure

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string, compress bool) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	if compress {
		gz := gzip.NewWriter(f)
		_, err = gz.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, gz.Close())
	} else {
		_, err = f.WriteString(content)
		require.NoError(t, err)
	}
	return path
}

func TestReadFile_PDB(t *testing.T) {
	dir := t.TempDir()
	pdb := atomLine("ATOM", 1, "CA", "", "ALA", "A", 1, 0, 0, 0, 1, 10, "C")
	path := writeFile(t, dir, "1abc.pdb", pdb, false)

	s, err := ReadFile(path, "1abc")
	require.NoError(t, err)
	assert.Equal(t, "1abc", s.ID)
	require.Len(t, s.Models, 1)
}

func TestReadFile_GzippedCIF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "1abc.cif.gz", sampleCIF, true)

	s, err := ReadFile(path, "1abc")
	require.NoError(t, err)
	assert.Equal(t, 2.10, s.Resolution)
	assert.Len(t, s.Models, 2)
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "hello", false)

	_, err := ReadFile(path, "note")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.pdb"), "nope")
	require.Error(t, err)
}

func TestReadFile_CorruptGzip(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "1bad.pdb.gz", strings.Repeat("x", 64), false)
	_, err := ReadFile(path, "1bad")
	require.Error(t, err)
}
