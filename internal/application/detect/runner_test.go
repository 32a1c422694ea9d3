package detect

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/xpid/internal/domain/engine"
	"github.com/turtacn/xpid/internal/domain/hydro"
	"github.com/turtacn/xpid/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/xpid/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/turtacn/xpid/pkg/errors"
)

func atomLine(serial int, name, res, chain string, seq int, x, y, z float64, elem string) string {
	return fmt.Sprintf("%-6s%5d %-4s%1s%3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s",
		"ATOM", serial, name, "", res, chain, seq, x, y, z, 1.0, 20.0, elem)
}

// interactingPDB holds a PHE ring in the z=0 plane and an N–H donor
// pointing at its center, a geometry satisfying both criteria.
func interactingPDB() string {
	ringNames := []string{"CG", "CD1", "CD2", "CE1", "CE2", "CZ"}
	lines := []string{"HEADER    TEST"}
	for i, n := range ringNames {
		ang := 2 * math.Pi * float64(i) / 6
		lines = append(lines, atomLine(i+1, n, "PHE", "A", 10,
			1.4*math.Cos(ang), 1.4*math.Sin(ang), 0, "C"))
	}
	lines = append(lines,
		atomLine(7, "N", "GLY", "A", 14, 0, 0, 3.5, "N"),
		atomLine(8, "H", "GLY", "A", 14, 0, 0, 2.5, "H"),
		"END",
	)
	return strings.Join(lines, "\n")
}

func writePDB(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newService() *Service {
	prep := hydro.NewPreparer(&hydro.Cache{}, logging.NewNop())
	return NewService(prep, logging.NewNop())
}

func defaultOptions() FileOptions {
	return FileOptions{Mode: hydro.ModeNoChange, Selector: engine.AllModels()}
}

func TestService_ProcessFile(t *testing.T) {
	path := writePDB(t, t.TempDir(), "1abc.pdb", interactingPDB())

	hits, err := newService().ProcessFile(context.Background(), path, defaultOptions())
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "1abc", hits[0].PDB)
	assert.Equal(t, "PHE", hits[0].PiRes)
	assert.Equal(t, 1, hits[0].IsPlevin)
	assert.Equal(t, 1, hits[0].IsHudson)
}

func TestService_ProcessFile_ParseFailure(t *testing.T) {
	path := writePDB(t, t.TempDir(), "bad.xyz", "not a structure")

	_, err := newService().ProcessFile(context.Background(), path, defaultOptions())
	assert.Error(t, err)
}

func TestService_ProcessFile_PrepFailureCode(t *testing.T) {
	dir := t.TempDir()
	path := writePDB(t, dir, "1abc.pdb", interactingPDB())
	// A directory masquerading as a single-file dictionary fails to parse.
	badLib := filepath.Join(dir, "lib.cif")
	require.NoError(t, os.Mkdir(badLib, 0o755))

	opts := FileOptions{
		Mode:           hydro.ModeReAdd,
		MonomerLibrary: badLib,
		Selector:       engine.AllModels(),
	}
	_, err := newService().ProcessFile(context.Background(), path, opts)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodePrep))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeMonomerLib))
}

func TestService_ProcessFile_CancelledContext(t *testing.T) {
	path := writePDB(t, t.TempDir(), "1abc.pdb", interactingPDB())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newService().ProcessFile(ctx, path, defaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_DeliversInInputOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"1aaa.pdb", "2bbb.pdb", "3ccc.pdb", "4ddd.pdb"} {
		paths = append(paths, writePDB(t, dir, name, interactingPDB()))
	}

	runner := NewRunner(newService(), nil, logging.NewNop())
	var got []string
	sum, err := runner.Run(context.Background(), paths,
		RunOptions{FileOptions: defaultOptions(), Jobs: 4},
		func(res FileResult) error {
			require.NoError(t, res.Err)
			got = append(got, res.Path)
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, paths, got)
	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 4, sum.Files)
	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, 4, sum.Hits)
}

func TestRunner_IsolatesFileFailures(t *testing.T) {
	dir := t.TempDir()
	good := writePDB(t, dir, "1aaa.pdb", interactingPDB())
	bad := filepath.Join(dir, "missing.pdb")

	runner := NewRunner(newService(), nil, logging.NewNop())
	var errs, oks int
	sum, err := runner.Run(context.Background(), []string{bad, good},
		RunOptions{FileOptions: defaultOptions(), Jobs: 2},
		func(res FileResult) error {
			if res.Err != nil {
				errs++
			} else {
				oks++
			}
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, oks)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Hits)
}

func TestRunner_SinkErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePDB(t, dir, "1aaa.pdb", interactingPDB()),
		writePDB(t, dir, "2bbb.pdb", interactingPDB()),
	}

	runner := NewRunner(newService(), nil, logging.NewNop())
	boom := fmt.Errorf("disk full")
	_, err := runner.Run(context.Background(), paths,
		RunOptions{FileOptions: defaultOptions(), Jobs: 1},
		func(FileResult) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRunner_RecordsMetrics(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writePDB(t, dir, "1aaa.pdb", interactingPDB())}

	collector := prometheus.NewMetricsCollector(
		prometheus.CollectorConfig{Namespace: "runner_test"}, logging.NewNop())
	metrics := prometheus.NewBatchMetrics(collector)

	runner := NewRunner(newService(), metrics, logging.NewNop())
	sum, err := runner.Run(context.Background(), paths,
		RunOptions{FileOptions: defaultOptions(), Jobs: 1},
		func(FileResult) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Hits)
}
