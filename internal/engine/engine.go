// Package engine implements the synchronization/transcode core: resume
// detection, the pruning tree walk with mirror building, the per-file
// decision state machine, and the storage budget guard.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/wavmirror/wavmirror/internal/event"
	"github.com/wavmirror/wavmirror/internal/filter"
	"github.com/wavmirror/wavmirror/internal/stats"
	"github.com/wavmirror/wavmirror/internal/volume"
)

// ErrStorageLimit is the cause used to halt a run once the cumulative
// copy budget is exhausted. It is a clean, intentional early stop, not
// a per-file failure.
var ErrStorageLimit = errors.New("storage limit reached")

// Config describes a mirror run.
type Config struct {
	Source       string
	Dest         string
	Workers      int   // 0 means sequential (one worker)
	StorageLimit int64 // bytes; 0 means unlimited
	Exclude      *filter.Chain
	Transcoder   Transcoder
	FailLog      FailureRecorder
	Resolver     volume.Resolver
	Stats        *stats.Collector
	Events       chan<- event.Event
}

// Result is the outcome of a mirror run.
type Result struct {
	Stats     stats.Snapshot
	Mode      Mode
	MirrorDir string
	Err       error
}

// Run executes a mirror run, blocking until complete. Fatal conditions
// (bad source, directory creation failure, scanner mkdir failure) abort
// the run; per-file failures are recorded and the run continues; budget
// exhaustion surfaces as ErrStorageLimit.
func Run(ctx context.Context, cfg Config) Result {
	srcInfo, err := os.Stat(cfg.Source)
	if err != nil {
		return Result{Err: fmt.Errorf("source: %w", err)}
	}
	if !srcInfo.IsDir() {
		return Result{Err: fmt.Errorf("source %s is not a directory", cfg.Source)}
	}

	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = volume.Detect()
	}

	mode, mirror, err := DetectMode(cfg.Source, cfg.Dest, cfg.Resolver)
	if err != nil {
		return Result{Err: err}
	}

	emit(cfg.Events, event.Event{Type: event.RunStarted, Timestamp: time.Now()})

	runCtx, halt := context.WithCancelCause(ctx)
	defer halt(nil)

	scanner := NewScanner(ScannerConfig{
		SrcRoot:    cfg.Source,
		MirrorRoot: mirror,
		Exclude:    cfg.Exclude,
		Stats:      cfg.Stats,
		Events:     cfg.Events,
	})
	tasks := scanner.Scan(runCtx)

	pool := NewPool(PoolConfig{
		Workers:    cfg.Workers,
		Mode:       mode,
		SrcRoot:    cfg.Source,
		Transcoder: cfg.Transcoder,
		Budget:     NewGuard(cfg.StorageLimit),
		FailLog:    cfg.FailLog,
		Stats:      cfg.Stats,
		Events:     cfg.Events,
	})
	pool.Run(runCtx, halt, tasks)

	// Workers may have stopped consuming; drain so the scanner can exit.
	for range tasks {
	}

	CleanupTmpFiles()

	res := Result{
		Stats:     cfg.Stats.Snapshot(),
		Mode:      mode,
		MirrorDir: mirror,
	}

	switch cause := context.Cause(runCtx); {
	case errors.Is(cause, ErrStorageLimit):
		emit(cfg.Events, event.Event{
			Type:      event.RunHalted,
			Timestamp: time.Now(),
			Error:     ErrStorageLimit,
		})
		res.Err = ErrStorageLimit
	case ctx.Err() != nil:
		res.Err = ctx.Err()
	default:
		res.Err = scanner.Err()
	}
	return res
}

func emit(events chan<- event.Event, ev event.Event) {
	if events != nil {
		events <- ev
	}
}
