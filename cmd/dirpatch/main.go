package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"dirpatch/internal/config"
	"dirpatch/internal/fingerprint"
	"dirpatch/internal/hash"
	"dirpatch/internal/logging"
	"dirpatch/internal/progress"
	"dirpatch/internal/reconcile"
	"dirpatch/internal/record"
	"dirpatch/internal/render"
	"dirpatch/internal/report"
	"dirpatch/internal/walker"
)

var version = "dev"

type options struct {
	configPath      string
	output          string
	workers         int
	excludes        []string
	ignoreUnchanged bool
	ignoreModTime   bool
	verbose         bool
	quiet           bool
	algorithms      map[hash.Algorithm]*bool
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	opts := &options{algorithms: make(map[hash.Algorithm]*bool)}

	cmd := &cobra.Command{
		Use:   "dirpatch [flags] <dirA> <dirB>",
		Short: "Reconcile two directory trees into a patch report",
		Long: `dirpatch scans two directory trees, digests every file and writes a report
listing, for each side, the files it lacks (+), the files both share unchanged (=)
and the files present on both sides with different content (!).

Neither tree is modified.`,
		Version:       version,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0], args[1], stderr)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.ignoreUnchanged, "ignore-unchanged", "u", false, "Ignore unchanged files in the final output")
	flags.BoolVar(&opts.ignoreModTime, "ignore-mtime", false, "Treat files with equal path, digest and size as unchanged regardless of modification time")
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Config file path")
	flags.StringVarP(&opts.output, "output", "o", report.DefaultFileName, "Report file path")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Number of hashing goroutines per directory (default GOMAXPROCS*2)")
	flags.StringSliceVar(&opts.excludes, "exclude", nil, "Exclude patterns (multiple allowed)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every hashed file")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Only log warnings and errors")

	for _, alg := range hash.Algorithms() {
		usage := fmt.Sprintf("%s checksum", alg)
		if alg == hash.DefaultAlgorithm {
			usage += " (default)"
		}
		opts.algorithms[alg] = flags.Bool(alg.String(), false, usage)
	}

	return cmd
}

// resolveConfig merges the config file with explicitly set flags.
func resolveConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	selected, err := selectedAlgorithm(opts.algorithms)
	if err != nil {
		return nil, err
	}
	if selected != "" {
		cfg.Algorithm = selected.String()
	}
	if flags.Changed("ignore-unchanged") {
		cfg.IgnoreUnchanged = opts.ignoreUnchanged
	}
	if flags.Changed("ignore-mtime") {
		cfg.IgnoreModTime = opts.ignoreModTime
	}
	if flags.Changed("output") {
		cfg.OutputFile = opts.output
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, opts.excludes...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// selectedAlgorithm returns the algorithm whose flag is set to true, or ""
// when none is. Flags explicitly set to false do not count.
func selectedAlgorithm(flags map[hash.Algorithm]*bool) (hash.Algorithm, error) {
	var selected []hash.Algorithm
	for _, alg := range hash.Algorithms() {
		if set := flags[alg]; set != nil && *set {
			selected = append(selected, alg)
		}
	}
	switch len(selected) {
	case 0:
		return "", nil
	case 1:
		return selected[0], nil
	}

	names := make([]string, 0, len(selected))
	for _, alg := range selected {
		names = append(names, "--"+alg.String())
	}
	return "", fmt.Errorf("checksum flags are mutually exclusive: %s", strings.Join(names, ", "))
}

func checkDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	return nil
}

func run(cmd *cobra.Command, opts *options, dirA, dirB string, stderr io.Writer) error {
	logger := logging.New(stderr, logging.Level(opts.verbose, opts.quiet))
	defer logger.Sync()

	undo, err := maxprocs.Set(maxprocs.Logger(logging.Printf(logger)))
	defer undo()
	if err != nil {
		logger.Warn("failed to set GOMAXPROCS", zap.Error(err))
	}

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	rootA := filepath.Clean(dirA)
	rootB := filepath.Clean(dirB)
	for _, root := range []string{rootA, rootB} {
		if err := checkDirectory(root); err != nil {
			return fmt.Errorf("invalid directory argument: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	started := time.Now()
	alg, err := cfg.HashAlgorithm()
	if err != nil {
		return err
	}
	logger.Info("starting diff",
		zap.String("a", rootA),
		zap.String("b", rootB),
		zap.String("algorithm", alg.String()))

	bar := progress.New(stderr, !opts.quiet && isTerminal(stderr))
	scanA, scanB, err := walker.ScanPair(ctx, rootA, rootB, walker.ScanOptions{
		Algorithm:  alg,
		Workers:    cfg.Workers,
		Exclusions: cfg.Exclude,
		Progress:   bar,
		Logger:     logger,
	})
	bar.Finish()
	if err != nil {
		return err
	}

	logFingerprints(logger, rootA, rootB, scanA, scanB)

	patchA, patchB := reconcile.Reconcile(scanA, scanB, reconcile.WithIgnoreModTime(cfg.IgnoreModTime))

	sink, name, err := report.ForPath(cfg.OutputFile)
	if err != nil {
		return err
	}
	header := render.Header{Generated: started, RootA: rootA, RootB: rootB}
	if err := sink.Write(name, header,
		render.Render(rootA, patchA, cfg.IgnoreUnchanged),
		render.Render(rootB, patchB, cfg.IgnoreUnchanged),
	); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	for _, side := range []struct {
		root  string
		patch reconcile.PatchResult
	}{{rootA, patchA}, {rootB, patchB}} {
		summary := side.patch.Summary()
		logger.Info("patch summary",
			zap.String("root", side.root),
			zap.Int("add", summary.Added),
			zap.Int("unchanged", summary.Unchanged),
			zap.Int("conflict", summary.Conflicts),
			zap.String("add_size", logging.FormatSize(summary.AddedBytes)))
	}

	logger.Info("finished diff",
		zap.String("report", sink.Path(name)),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}

// logFingerprints logs a content fingerprint per root. Equal fingerprints
// mean both trees hold the same paths with the same digests and sizes.
func logFingerprints(logger *zap.Logger, rootA, rootB string, scanA, scanB record.ScanResult) {
	fpA, errA := fingerprint.Compute(scanA)
	fpB, errB := fingerprint.Compute(scanB)
	if err := errors.Join(errA, errB); err != nil {
		logger.Warn("failed to fingerprint scans", zap.Error(err))
		return
	}

	logger.Info("fingerprints",
		zap.String("a", rootA),
		zap.String("a_fingerprint", fpA),
		zap.String("b", rootB),
		zap.String("b_fingerprint", fpB),
		zap.Bool("identical_content", fpA == fpB))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && progress.IsTerminal(f)
}

func main() {
	cmd := newRootCmd(os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
