// Package detect drives detection runs: the per-file pipeline
// (read → prepare hydrogens → detect) and a bounded-concurrency batch
// runner with per-file error isolation.
package detect

import (
	"context"

	"github.com/turtacn/xpid/pkg/errors"
	"github.com/turtacn/xpid/pkg/types/interaction"

	"github.com/turtacn/xpid/internal/domain/engine"
	"github.com/turtacn/xpid/internal/domain/hydro"
	"github.com/turtacn/xpid/internal/domain/structure"
	"github.com/turtacn/xpid/internal/infrastructure/discovery"
	"github.com/turtacn/xpid/internal/infrastructure/monitoring/logging"
)

// FileOptions carries the per-file processing parameters of a run.
type FileOptions struct {
	Mode           hydro.Mode
	MonomerLibrary string
	Selector       engine.ModelSelector
	Filters        engine.Filters
}

// Service processes one structure file end to end. It is safe for
// concurrent use: the hydrogen preparer owns the only shared state (the
// monomer cache) and guards it internally.
type Service struct {
	prep *hydro.Preparer
	log  logging.Logger
}

// NewService wires a Service.
func NewService(prep *hydro.Preparer, log logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{prep: prep, log: log.Named("detect")}
}

// ProcessFile reads, prepares and scans a single structure file, returning
// its hits in deterministic order. Any failure is a per-structure failure;
// the caller decides whether it aborts the run.
func (s *Service) ProcessFile(ctx context.Context, path string, opts FileOptions) ([]interaction.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := discovery.PDBID(path)
	st, err := structure.ReadFile(path, id)
	if err != nil {
		return nil, err
	}
	if err := s.prep.Prepare(st, opts.Mode, opts.MonomerLibrary); err != nil {
		return nil, errors.Wrap(err, errors.CodePrep, "preparing hydrogens for "+path)
	}

	hits := engine.Detect(st, id, opts.Selector, opts.Filters)
	s.log.Debug("file processed",
		logging.String("path", path),
		logging.Int("models", len(st.Models)),
		logging.Int("hits", len(hits)))
	return hits, nil
}
