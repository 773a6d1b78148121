package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wavmirror/wavmirror/internal/config"
	"github.com/wavmirror/wavmirror/internal/engine"
	"github.com/wavmirror/wavmirror/internal/event"
	"github.com/wavmirror/wavmirror/internal/faillog"
	"github.com/wavmirror/wavmirror/internal/filter"
	"github.com/wavmirror/wavmirror/internal/stats"
	"github.com/wavmirror/wavmirror/internal/transcode"
	"github.com/wavmirror/wavmirror/internal/ui"
	"github.com/wavmirror/wavmirror/internal/volume"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// excludeFlag is a pflag.Value that appends --exclude patterns to a
// shared filter.Chain, preserving CLI ordering.
type excludeFlag struct {
	chain *filter.Chain
}

var _ pflag.Value = (*excludeFlag)(nil)

func (*excludeFlag) String() string { return "" }
func (*excludeFlag) Type() string   { return "string" }

func (f *excludeFlag) Set(val string) error {
	return f.chain.Add(val)
}

//nolint:gocyclo // main CLI entry point orchestrates flag parsing and run setup
func run() int {
	var (
		configPath      string
		workers         int
		storageLimitStr string
		csvPath         string
		ffmpegPath      string
		ffprobePath     string
		verbose         bool
		quiet           bool
		noProgress      bool
		logFile         string
		showVersion     bool
	)

	chain := filter.NewChain()

	rootCmd := &cobra.Command{
		Use:           "wavmirror [flags]",
		Short:         "Mirror field-recorder drives, converting WAV to FLAC along the way",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "wavmirror %s\n", version)
				return nil
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// CLI flags override the config file.
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("storage-limit") {
				cfg.StorageLimit = storageLimitStr
			}
			if cmd.Flags().Changed("csv") {
				cfg.CSVFilePath = csvPath
			}
			if cmd.Flags().Changed("ffmpeg") {
				cfg.FFmpeg = ffmpegPath
			}
			if cmd.Flags().Changed("ffprobe") {
				cfg.FFprobe = ffprobePath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			storageLimit, err := cfg.StorageLimitBytes()
			if err != nil {
				return fmt.Errorf("invalid --storage-limit: %w", err)
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
			slog.SetDefault(slog.New(logHandler))

			for _, pattern := range cfg.Exclude {
				if err := chain.Add(pattern); err != nil {
					return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
				}
			}

			resolver := volume.Detect()

			failLog := faillog.New(cfg.CSVFilePath, resolver)
			defer failLog.Close()

			transcoder := transcode.New()
			transcoder.FFmpeg = cfg.FFmpeg
			transcoder.FFprobe = cfg.FFprobe
			transcoder.CompressionLevel = cfg.CompressionLevel

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
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
						slog.LogAttrs(context.Background(), slog.LevelInfo, "wavmirror.event", attrs...)
						teed <- ev
					}
					close(teed)
				}()
				presenterEvents = teed
			}

			presenter := ui.NewPresenter(ui.Config{
				Writer:     os.Stdout,
				ErrWriter:  os.Stderr,
				Stats:      collector,
				IsTTY:      ui.IsTTY(os.Stderr.Fd()),
				Quiet:      quiet,
				Verbose:    verbose,
				NoProgress: noProgress,
			})

			var presenterErr error
			var presenterWg sync.WaitGroup
			presenterWg.Add(1)
			go func() {
				defer presenterWg.Done()
				presenterErr = presenter.Run(presenterEvents)
			}()

			engineCfg := engine.Config{
				Source:       cfg.SourceDir,
				Dest:         cfg.DestinationDir,
				Workers:      cfg.Workers,
				StorageLimit: storageLimit,
				Transcoder:   transcoder,
				FailLog:      failLog,
				Resolver:     resolver,
				Stats:        collector,
				Events:       events,
			}
			if !chain.Empty() {
				engineCfg.Exclude = chain
			}

			slog.Debug("starting mirror",
				"source", cfg.SourceDir,
				"dest", cfg.DestinationDir,
				"workers", cfg.Workers,
				"storage_limit", storageLimit,
			)

			result := engine.Run(ctx, engineCfg)
			stop()
			close(events)
			presenterWg.Wait()
			if presenterErr != nil {
				fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
			}

			if !quiet {
				if summary := presenter.Summary(); summary != "" {
					fmt.Fprintln(os.Stderr, summary)
				}
			}

			switch {
			case errors.Is(result.Err, engine.ErrStorageLimit):
				// A budget stop is an intentional early exit, not a failure.
				fmt.Fprintln(os.Stderr,
					"storage limit reached; rerun with a higher --storage-limit to continue")
			case result.Err != nil:
				slog.Error("mirror failed", "error", result.Err)
				return &exitError{code: 2}
			}

			if result.Stats.FilesFailed > 0 {
				return &exitError{code: 1}
			}

			if !quiet && result.Err == nil {
				fmt.Fprintf(os.Stderr, "successfully mirrored %s to %s\n",
					cfg.SourceDir, result.MirrorDir)
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.Flags().
		StringVarP(&configPath, "config", "c", "config.json", "path to config file")
	rootCmd.Flags().
		IntVarP(&workers, "workers", "n", 0, "number of file workers (default from config)")
	rootCmd.Flags().
		StringVar(&storageLimitStr, "storage-limit", "", "cumulative copy budget (e.g. 500G, 18T)")
	rootCmd.Flags().StringVar(&csvPath, "csv", "", "failure log CSV path")
	rootCmd.Flags().StringVar(&ffmpegPath, "ffmpeg", "", "ffmpeg binary path")
	rootCmd.Flags().StringVar(&ffprobePath, "ffprobe", "", "ffprobe binary path")
	rootCmd.Flags().
		Var(&excludeFlag{chain: chain}, "exclude", "exclude files matching PATTERN (repeatable)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable periodic progress output")
	rootCmd.Flags().StringVar(&logFile, "log", "", "write structured JSON log to FILE")

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
