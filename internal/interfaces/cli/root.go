// Package cli wires the xpid command line: flag registration, configuration
// layering (flags over environment over file over defaults), logger and
// metrics initialization, and the batch run itself.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/xpid/internal/application/detect"
	"github.com/turtacn/xpid/internal/config"
	"github.com/turtacn/xpid/internal/domain/engine"
	"github.com/turtacn/xpid/internal/domain/hydro"
	"github.com/turtacn/xpid/internal/infrastructure/discovery"
	"github.com/turtacn/xpid/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/xpid/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/xpid/internal/infrastructure/output"
	"github.com/turtacn/xpid/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// donorElements are the heavy-atom symbols accepted by --donor-atom.
var donorElements = map[string]struct{}{"C": {}, "N": {}, "O": {}, "S": {}}

// RootOptions holds every CLI flag. Values are overlaid onto the loaded
// configuration only when the corresponding flag was set explicitly.
type RootOptions struct {
	ConfigPath string

	OutDir     string
	OutputName string
	FileType   string
	Verbose    bool
	Separate   bool

	LogPath  string
	LogLevel string

	HydrogenMode   int
	Jobs           int
	Model          string
	MonomerLibrary string
	SetMonomerLib  string

	PiResidues    []string
	DonorResidues []string
	DonorAtoms    []string

	MetricsAddr string
}

// NewRootCommand creates the xpid root command with all flags registered.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "xpid [inputs...]",
		Short: "xpid — detect XH···π interactions in macromolecular structures",
		Long: "xpid scans CIF/PDB structure files (optionally gzipped) for XH···π\n" +
			"interactions between C/N/O/S donors and aromatic or imidazole π-systems,\n" +
			"classifying each contact by the Plevin and Hudson geometric criteria.\n" +
			"Inputs may be individual files or directories to scan recursively.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (YAML)")
	f.StringVar(&opts.OutDir, "out-dir", "", "directory for result files (default: working directory)")
	f.StringVar(&opts.OutputName, "output-name", config.DefaultOutputName, "base name of the result file")
	f.StringVar(&opts.FileType, "file-type", config.DefaultOutputFormat, "result format (csv, json)")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "write the full column schema instead of the compact subset")
	f.BoolVar(&opts.Separate, "separate", false, "write one result file per input structure")
	f.StringVar(&opts.LogPath, "log", "", "also write the run log to this file")
	f.StringVar(&opts.LogLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	f.IntVar(&opts.HydrogenMode, "h-mode", config.DefaultHydrogenMode,
		"hydrogen preparation mode: 0 no-change, 1 shift, 2 remove, 3 re-add, 4 re-add-but-water, 5 re-add-known")
	f.IntVarP(&opts.Jobs, "jobs", "j", config.DefaultJobs, "number of structures processed concurrently")
	f.StringVar(&opts.Model, "model", config.DefaultModel, `model selection: "all" or a 0-based index`)
	f.StringVar(&opts.MonomerLibrary, "mon-lib", "", "CCP4-style monomer dictionary path")
	f.StringVar(&opts.SetMonomerLib, "set-mon-lib", "", "persist a monomer dictionary path for future runs")
	f.StringSliceVar(&opts.PiResidues, "pi-res", nil, "restrict π-systems to these residue names (comma-separated)")
	f.StringSliceVar(&opts.DonorResidues, "donor-res", nil, "restrict donors to these residue names (comma-separated)")
	f.StringSliceVar(&opts.DonorAtoms, "donor-atom", nil, "restrict donor elements (subset of C,N,O,S)")
	f.StringVar(&opts.MetricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address, e.g. 127.0.0.1:9090")

	return cmd
}

// Execute is the entry point used by cmd/xpid.
func Execute() error {
	return NewRootCommand().Execute()
}

func run(cmd *cobra.Command, opts *RootOptions, args []string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if opts.SetMonomerLib != "" {
		if err := config.SaveMonomerLibraryPath(opts.SetMonomerLib); err != nil {
			return err
		}
		cfg.Run.MonomerLibrary = opts.SetMonomerLib
		if len(args) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "monomer library path saved: %s\n", opts.SetMonomerLib)
			return nil
		}
	}
	if len(args) == 0 {
		return errors.New(errors.CodeValidation, "no input files or directories given")
	}

	runOpts, err := buildRunOptions(cfg, opts)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, opts)
	if err != nil {
		return err
	}

	paths, err := discovery.FindInputs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New(errors.CodeValidation, "no structure files found under the given inputs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *prometheus.BatchMetrics
	if cfg.Metrics.Addr != "" {
		collector := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            "xpid",
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, log)
		metrics = prometheus.NewBatchMetrics(collector)
		prometheus.Serve(ctx, cfg.Metrics.Addr, collector, log)
	}

	prep := hydro.NewPreparer(&hydro.Cache{}, log)
	runner := detect.NewRunner(detect.NewService(prep, log), metrics, log)

	sink, closeSink, err := newSink(cfg, format)
	if err != nil {
		return err
	}

	sum, runErr := runner.Run(ctx, paths, runOpts, sink)
	if closeErr := closeSink(); runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "processed %d file(s): %d hit(s), %d failure(s) in %s\n",
		sum.Files, sum.Hits, sum.Failed, sum.Duration.Round(time.Millisecond))
	if sum.Failed == sum.Files {
		return errors.New(errors.CodeUnknown, "every input file failed; see the log for details")
	}
	return nil
}

// loadConfig reads the config file when --config was given, otherwise
// environment variables and defaults.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}
	return config.LoadFromEnv()
}

// applyFlags overlays explicitly-set flags onto cfg. Unset flags leave the
// loaded values alone so config file and environment keep working.
func applyFlags(cmd *cobra.Command, opts *RootOptions, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("out-dir") {
		cfg.Output.Dir = opts.OutDir
	}
	if f.Changed("output-name") {
		cfg.Output.Name = opts.OutputName
	}
	if f.Changed("file-type") {
		cfg.Output.Format = opts.FileType
	}
	if f.Changed("verbose") {
		cfg.Output.Verbose = opts.Verbose
	}
	if f.Changed("separate") {
		cfg.Output.Separate = opts.Separate
	}
	if f.Changed("log-level") {
		cfg.Log.Level = opts.LogLevel
	}
	if f.Changed("h-mode") {
		cfg.Run.HydrogenMode = opts.HydrogenMode
	}
	if f.Changed("jobs") {
		cfg.Run.Jobs = opts.Jobs
	}
	if f.Changed("model") {
		cfg.Run.Model = opts.Model
	}
	if f.Changed("mon-lib") {
		cfg.Run.MonomerLibrary = opts.MonomerLibrary
	}
	if f.Changed("metrics-addr") {
		cfg.Metrics.Addr = opts.MetricsAddr
	}
}

// buildRunOptions validates and converts the run-level settings into the
// types the batch runner consumes.
func buildRunOptions(cfg *config.Config, opts *RootOptions) (detect.RunOptions, error) {
	mode, err := hydro.ParseMode(cfg.Run.HydrogenMode)
	if err != nil {
		return detect.RunOptions{}, err
	}

	sel, err := engine.ParseModelSelector(cfg.Run.Model)
	if err != nil {
		return detect.RunOptions{}, err
	}

	donorAtoms := normalizeNames(opts.DonorAtoms)
	for _, e := range donorAtoms {
		if _, ok := donorElements[e]; !ok {
			return detect.RunOptions{}, errors.Newf(errors.CodeValidation,
				"donor element %q is not one of C, N, O, S", e)
		}
	}

	lib := cfg.Run.MonomerLibrary
	if lib == "" && mode.NeedsLibrary() {
		saved, err := config.LoadMonomerLibraryPath()
		if err != nil {
			return detect.RunOptions{}, err
		}
		lib = saved
	}
	if lib == "" && mode.NeedsLibrary() {
		// CCP4 convention: CLIBD_MON points at the installed dictionary.
		lib = os.Getenv("CLIBD_MON")
	}

	return detect.RunOptions{
		FileOptions: detect.FileOptions{
			Mode:           mode,
			MonomerLibrary: lib,
			Selector:       sel,
			Filters: engine.Filters{
				PiResidues:    normalizeNames(opts.PiResidues),
				DonorResidues: normalizeNames(opts.DonorResidues),
				DonorElements: donorAtoms,
			},
		},
		Jobs: cfg.Run.Jobs,
	}, nil
}

// normalizeNames upper-cases and trims a list of residue or element names,
// dropping empties.
func normalizeNames(names []string) []string {
	var out []string
	for _, n := range names {
		n = strings.ToUpper(strings.TrimSpace(n))
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// newLogger builds the run logger from configuration, adding the --log file
// as a second destination when given.
func newLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	paths := []string{cfg.Log.Output}
	if opts.LogPath != "" {
		paths = append(paths, opts.LogPath)
	}
	log, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: paths,
	})
	if err != nil {
		return nil, err
	}
	return log.Named("xpid"), nil
}

// newSink returns the result sink for the run and its close function. In
// combined mode one writer receives every file's hits; in separate mode a
// fresh file named <pdbid>_xpid.<ext> is created per input.
func newSink(cfg *config.Config, format output.Format) (func(detect.FileResult) error, func() error, error) {
	verbose := cfg.Output.Verbose

	if !cfg.Output.Separate {
		path := output.FilePath(cfg.Output.Dir, cfg.Output.Name, format)
		w, file, err := output.CreateFile(path, format, verbose)
		if err != nil {
			return nil, nil, err
		}
		sink := func(res detect.FileResult) error {
			if res.Err != nil {
				return nil
			}
			return w.Write(res.Hits)
		}
		closer := func() error {
			if err := w.Close(); err != nil {
				file.Close()
				return err
			}
			return file.Close()
		}
		return sink, closer, nil
	}

	sink := func(res detect.FileResult) error {
		if res.Err != nil {
			return nil
		}
		name := discovery.PDBID(res.Path) + "_xpid"
		path := output.FilePath(cfg.Output.Dir, name, format)
		w, file, err := output.CreateFile(path, format, verbose)
		if err != nil {
			return err
		}
		if err := w.Write(res.Hits); err != nil {
			file.Close()
			return err
		}
		if err := w.Close(); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	}
	return sink, func() error { return nil }, nil
}
