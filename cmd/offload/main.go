package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bitrook/offload/internal/config"
	"github.com/bitrook/offload/internal/engine"
	"github.com/bitrook/offload/internal/event"
	"github.com/bitrook/offload/internal/filter"
	"github.com/bitrook/offload/internal/report"
	"github.com/bitrook/offload/internal/safepath"
	"github.com/bitrook/offload/internal/stats"
	"github.com/bitrook/offload/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "string" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: main CLI entry point orchestrates all flag parsing and mode selection
func run() int {
	var (
		workers           int
		verbose           bool
		quiet             bool
		showVersion       bool
		noProgress        bool
		noVerify          bool
		hashName          string
		excludeFile       string
		noDefaultExcludes bool
		minSizeStr        string
		maxSizeStr        string
		bwLimitStr        string
		logFile           string
		resumeFlag        bool
		flatFlag          bool
		yesFlag           bool
		benchmarkFlag     bool
	)

	chain := filter.NewChain()

	rootCmd := &cobra.Command{
		Use:   "offload [flags] [source] [destination]",
		Short: "Back up memory cards into verified, timestamped folders",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.MaximumNArgs(2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "offload %s\n", version)
				return nil
			}

			// Load optional config file.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			ui.ApplyTheme(cfg.Theme)

			// Apply config defaults for flags not explicitly set on CLI.
			applyConfigDefaults(cmd, cfg.Defaults,
				&noVerify, &workers, &hashName, &logFile, &noDefaultExcludes)

			// Apply bwlimit from config if not set on CLI.
			if !cmd.Flags().Changed("bwlimit") && cfg.Defaults.BWLimit != nil {
				bwLimitStr = *cfg.Defaults.BWLimit
			}

			// Configure logging.
			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if !quiet {
				logLevel = slog.LevelInfo
			}
			textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			var logHandler slog.Handler = textHandler
			if logFile != "" {
				lf, lfErr := os.Create(logFile)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
			}
			logger := slog.New(logHandler)
			slog.SetDefault(logger)

			// Validate cheap inputs before any prompting.
			algo, err := engine.ParseAlgorithm(hashName)
			if err != nil {
				return fmt.Errorf("invalid --hash: %w", err)
			}

			var bwLimit int64
			if bwLimitStr != "" {
				bwLimit, err = filter.ParseSize(bwLimitStr)
				if err != nil {
					return fmt.Errorf("invalid --bwlimit: %w", err)
				}
			}

			// Filter rules: CLI rules were appended during flag parsing,
			// so file and config rules land after them and explicit flags
			// win on first match.
			if excludeFile != "" {
				if err := chain.LoadFile(excludeFile); err != nil {
					return fmt.Errorf("load exclude file: %w", err)
				}
			}
			for _, pat := range cfg.Defaults.Excludes {
				if err := chain.AddExclude(pat); err != nil {
					return fmt.Errorf("config exclude %q: %w", pat, err)
				}
			}
			if !noDefaultExcludes {
				for _, pat := range filter.DefaultExcludes() {
					if err := chain.AddExclude(pat); err != nil {
						return fmt.Errorf("default exclude %q: %w", pat, err)
					}
				}
			}

			if minSizeStr != "" {
				n, err := filter.ParseSize(minSizeStr)
				if err != nil {
					return fmt.Errorf("invalid --min-size: %w", err)
				}
				chain.SetMinSize(n)
			}
			if maxSizeStr != "" {
				n, err := filter.ParseSize(maxSizeStr)
				if err != nil {
					return fmt.Errorf("invalid --max-size: %w", err)
				}
				chain.SetMaxSize(n)
			}

			// Default workers.
			workersExplicit := cmd.Flags().Changed("workers")
			if workers <= 0 {
				workers = min(runtime.NumCPU(), 4)
			}

			// Resolve the source: positional path, or pick a removable
			// volume interactively.
			var src, volName string
			if len(args) > 0 {
				src = args[0]
				volName = filepath.Base(filepath.Clean(args[0]))
			} else {
				if !ui.IsTTY(os.Stdin.Fd()) {
					return errors.New(
						"no source given; pass SOURCE [DEST] or run from a terminal to pick a volume",
					)
				}
				dev, pickErr := pickRemovable()
				if pickErr != nil {
					return pickErr
				}
				src = dev.MountPoint
				volName = dev.Name
			}

			// Resolve the destination root.
			var destRoot string
			if len(args) == 2 {
				destRoot = args[1]
			} else {
				destRoot = defaultDestRoot(cfg.Defaults)
				if len(args) == 0 && !yesFlag {
					destRoot, err = promptDestRoot(destRoot)
					if err != nil {
						return err
					}
				}
			}

			backupDir := destRoot
			if !flatFlag {
				backupDir = filepath.Join(destRoot, safepath.BackupDirName(volName, time.Now()))
			}

			// Explicit source+destination runs without asking.
			if len(args) < 2 && !yesFlag && ui.IsTTY(os.Stdin.Fd()) {
				ok, cErr := confirm(fmt.Sprintf("Back up %s to %s?", src, backupDir))
				if cErr != nil {
					return cErr
				}
				if !ok {
					return errors.New("aborted")
				}
			}

			// Benchmark mode: measure throughput and auto-tune workers.
			if benchmarkFlag {
				if mkErr := os.MkdirAll(destRoot, 0o755); mkErr != nil {
					return fmt.Errorf("create destination root: %w", mkErr)
				}
				bench, benchErr := engine.RunBenchmark(context.Background(), src, destRoot)
				if benchErr != nil {
					slog.Warn("benchmark failed", "error", benchErr)
				} else {
					fmt.Fprintf(os.Stderr, "benchmark: read %s/s  write %s/s  suggested workers %d\n",
						humanize.IBytes(uint64(bench.ReadBytesPerSec)),
						humanize.IBytes(uint64(bench.WriteBytesPerSec)),
						bench.SuggestedWorkers)
					if !workersExplicit {
						workers = bench.SuggestedWorkers
					}
				}
			}

			// Set up context with signal handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Create stats collector.
			collector := stats.NewCollector()

			// Create events channel.
			events := make(chan event.Event, 256)

			// When --log is set, tee events through a logging goroutine
			// that writes structured records before forwarding to the presenter.
			presenterEvents := (<-chan event.Event)(events)
			if logFile != "" {
				teed := make(chan event.Event, 256)
				go func() {
					for ev := range events {
						attrs := []slog.Attr{
							slog.String("type", ev.Type.String()),
							slog.String("path", ev.Path),
							slog.Int64("size", ev.Size),
							slog.Int("worker", ev.WorkerID),
						}
						if ev.Error != nil {
							attrs = append(attrs, slog.String("error", ev.Error.Error()))
						}
						slog.LogAttrs(context.Background(), slog.LevelInfo, "offload.event", attrs...)
						teed <- ev
					}
					close(teed)
				}()
				presenterEvents = teed
			}

			// Create presenter.
			presenter := ui.NewPresenter(ui.Config{
				Writer:     os.Stdout,
				ErrWriter:  os.Stderr,
				Stats:      collector,
				Workers:    workers,
				IsTTY:      ui.IsTTY(os.Stderr.Fd()),
				Quiet:      quiet,
				NoProgress: noProgress,
			})

			engineCfg := engine.Config{
				Source:  src,
				Dest:    backupDir,
				Workers: workers,
				Hash:    algo,
				Verify:  !noVerify,
				BWLimit: bwLimit,
				Resume:  resumeFlag,
				Events:  events,
				Stats:   collector,
				Logger:  logger,
			}

			// Only set filter if it has rules/size constraints.
			if !chain.Empty() {
				engineCfg.Filter = chain
			}

			eng, err := engine.New(engineCfg)
			if err != nil {
				return err
			}

			slog.Debug("starting backup",
				"source", src,
				"dest", backupDir,
				"workers", workers,
				"hash", string(algo),
				"verify", !noVerify,
			)

			// Run presenter in background, engine in foreground.
			var presenterErr error
			var presenterWg sync.WaitGroup
			presenterWg.Add(1)
			go func() {
				defer presenterWg.Done()
				presenterErr = presenter.Run(presenterEvents)
			}()

			res := eng.Run(ctx)
			stop()
			close(events)
			presenterWg.Wait()
			if presenterErr != nil {
				fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
			}

			if !quiet {
				summary := presenter.Summary()
				if summary != "" {
					fmt.Fprintln(os.Stderr, summary)
				}
			}

			// Reports land in the backup folder, which exists for every
			// run that survived preflight.
			if res.Status != engine.StatusFailed {
				if rErr := report.Write(backupDir, res); rErr != nil {
					slog.Warn("write report", "error", rErr)
				}
			}

			if res.Err != nil {
				slog.Error("backup failed", "error", res.Err)
				return &exitError{code: 2}
			}
			if res.FilesFailed > 0 || res.VerifyFailures() > 0 {
				return &exitError{code: 1} // partial: some files failed or mismatched
			}
			return nil
		},
	}

	// Version flag handled in RunE, but also register the flag.
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	rootCmd.Flags().
		IntVarP(&workers, "workers", "n", 0, "number of copy workers (default: min(NumCPU, 4))")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable progress display")
	rootCmd.Flags().
		BoolVar(&noVerify, "no-verify", false, "skip the post-copy checksum verification pass")
	rootCmd.Flags().
		StringVar(&hashName, "hash", "blake3", "verification hash (blake3, sha256, xxh64)")

	// Filter flags — use custom pflag.Value to preserve CLI ordering.
	rootCmd.Flags().
		VarP(&filterFlag{chain: chain, include: false}, "exclude", "", "exclude files matching PATTERN (repeatable)")
	rootCmd.Flags().
		VarP(&filterFlag{chain: chain, include: true}, "include", "", "include files matching PATTERN (repeatable)")
	rootCmd.Flags().
		StringVar(&excludeFile, "exclude-from", "", "read filter rules from FILE")
	rootCmd.Flags().
		BoolVar(&noDefaultExcludes, "no-default-excludes", false, "copy OS metadata files that are excluded by default")
	rootCmd.Flags().
		StringVar(&minSizeStr, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	rootCmd.Flags().
		StringVar(&maxSizeStr, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")
	rootCmd.Flags().
		StringVar(&bwLimitStr, "bwlimit", "", "read rate limit, gentle on flaky cards (e.g. 20M)")
	rootCmd.Flags().
		StringVar(&logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.Flags().
		BoolVar(&resumeFlag, "resume", false, "skip files already copied by an interrupted run")
	rootCmd.Flags().
		BoolVar(&flatFlag, "flat", false, "copy into DEST itself, without a timestamped backup folder")
	rootCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "skip interactive prompts")
	rootCmd.Flags().
		BoolVar(&benchmarkFlag, "benchmark", false, "measure throughput before copy and auto-tune workers")

	// Register subcommands.
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(docsCmd)

	// Mark --exclude and --include as allowing repeated use.
	if err := rootCmd.Flags().
		SetAnnotation("exclude", "cobra_annotation_one_required", nil); err != nil {
		panic(fmt.Sprintf("set flag annotation: %v", err))
	}
	if err := rootCmd.Flags().
		SetAnnotation("include", "cobra_annotation_one_required", nil); err != nil {
		panic(fmt.Sprintf("set flag annotation: %v", err))
	}
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "exclude" || f.Name == "include" {
			f.NoOptDefVal = ""
		}
	})

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	return 0
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.Defaults,
	noVerify *bool,
	workers *int,
	hashName *string,
	logFile *string,
	noDefaultExcludes *bool,
) {
	if !cmd.Flags().Changed("no-verify") && defaults.Verify != nil {
		*noVerify = !*defaults.Verify
	}
	if !cmd.Flags().Changed("workers") && defaults.Workers != nil {
		*workers = *defaults.Workers
	}
	if !cmd.Flags().Changed("hash") && defaults.Hash != nil {
		*hashName = *defaults.Hash
	}
	if !cmd.Flags().Changed("log") && defaults.LogFile != nil {
		*logFile = *defaults.LogFile
	}
	if !cmd.Flags().Changed("no-default-excludes") && defaults.NoDefaultExcludes != nil {
		*noDefaultExcludes = *defaults.NoDefaultExcludes
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
