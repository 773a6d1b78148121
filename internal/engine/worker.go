package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wavmirror/wavmirror/internal/event"
	"github.com/wavmirror/wavmirror/internal/platform"
	"github.com/wavmirror/wavmirror/internal/stats"
)

// Transcoder re-encodes one audio file and reports its channel count.
type Transcoder interface {
	Transcode(ctx context.Context, src, dst string) (channels int, err error)
}

// FailureRecorder persists one row per failed file.
type FailureRecorder interface {
	Record(fileName string, ts time.Time, driveRoot, directory string) error
}

// PoolConfig controls the worker pool.
type PoolConfig struct {
	Workers    int
	Mode       Mode
	SrcRoot    string
	Transcoder Transcoder
	Budget     *Guard
	FailLog    FailureRecorder
	Stats      *stats.Collector
	Events     chan<- event.Event
	FreeSpace  func(path string) (int64, error) // defaults to platform.FreeSpace
}

// Pool runs the per-file decision state machine over scanner tasks.
// Files are disjoint, so workers share nothing but the budget guard,
// the stats collector, and the failure recorder.
type Pool struct {
	cfg PoolConfig
}

// NewPool creates a pool with the given config.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.FreeSpace == nil {
		cfg.FreeSpace = platform.FreeSpace
	}
	return &Pool{cfg: cfg}
}

// Run consumes tasks until the channel closes or the context is
// cancelled. A budget refusal cancels the whole run through halt.
func (p *Pool) Run(ctx context.Context, halt context.CancelCauseFunc, tasks <-chan Task) {
	var wg sync.WaitGroup
	for id := 0; id < p.cfg.Workers; id++ {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				select {
				case <-ctx.Done():
					return
				default:
				}
				p.process(ctx, halt, id, task)
			}
		}()
	}
	wg.Wait()
}

// process drives one file to its terminal outcome.
func (p *Pool) process(ctx context.Context, halt context.CancelCauseFunc, workerID int, task Task) {
	switch task.Kind {
	case AudioSource:
		p.transcodeFile(ctx, workerID, task)
	default:
		p.copyFile(ctx, halt, workerID, task)
	}
}

// transcodeFile handles an audio source: skip when the converted target
// already exists, otherwise invoke the transcoder. Transcoded bytes are
// never charged to the budget, and transcode failure never halts the run.
func (p *Pool) transcodeFile(ctx context.Context, workerID int, task Task) {
	if _, err := os.Lstat(task.DstPath); err == nil {
		p.skip(workerID, task, p.resumeReason("already converted"))
		return
	}

	channels, err := p.cfg.Transcoder.Transcode(ctx, task.SrcPath, task.DstPath)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.fail(workerID, task, fmt.Errorf("transcode %s: %w", task.SrcPath, err))
		return
	}

	p.cfg.Stats.AddFilesTranscoded(1)
	p.emit(event.Event{
		Type:      event.FileTranscoded,
		Timestamp: time.Now(),
		Path:      task.RelPath,
		Channels:  channels,
		WorkerID:  workerID,
	})
}

// copyFile handles an opaque file: skip existing targets without
// charging the budget, decline files the destination has no room for,
// reserve the file's size, then copy through a temporary sibling and
// rename. A budget refusal halts the entire run; an I/O failure is
// recorded and the run continues.
func (p *Pool) copyFile(ctx context.Context, halt context.CancelCauseFunc, workerID int, task Task) {
	if _, err := os.Lstat(task.DstPath); err == nil {
		p.skip(workerID, task, "exists")
		return
	}

	// Declined files are a skip, not a failure, and charge nothing.
	// When free space cannot be determined the copy itself decides.
	if free, err := p.cfg.FreeSpace(filepath.Dir(task.DstPath)); err == nil && task.Size > free {
		p.skip(workerID, task, "insufficient space")
		return
	}

	if !p.cfg.Budget.TryAdmit(task.Size) {
		halt(ErrStorageLimit)
		return
	}

	if err := p.copyData(task); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.fail(workerID, task, fmt.Errorf("copy %s: %w", task.SrcPath, err))
		return
	}

	p.cfg.Stats.AddFilesCopied(1)
	p.cfg.Stats.AddBytesCopied(task.Size)
	p.emit(event.Event{
		Type:      event.FileCopied,
		Timestamp: time.Now(),
		Path:      task.RelPath,
		Size:      task.Size,
		WorkerID:  workerID,
	})
}

// copyData writes the destination through a registered temporary file
// so an interrupted run never leaves a partial file the next run would
// treat as complete.
func (p *Pool) copyData(task Task) error {
	dir := filepath.Dir(task.DstPath)
	base := filepath.Base(task.DstPath)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.wavmirror-tmp", base, uuid.New().String()[:8]))

	RegisterTmp(tmpPath)
	defer func() {
		DeregisterTmp(tmpPath)
		_ = os.Remove(tmpPath) // no-op if rename succeeded
	}()

	perm := task.Mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	tmpFd, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("create tmp %s: %w", tmpPath, err)
	}

	if _, err := platform.CopyFile(tmpFd, task.SrcPath, task.Size); err != nil {
		tmpFd.Close()
		return err
	}
	if err := tmpFd.Close(); err != nil {
		return fmt.Errorf("close tmp %s: %w", tmpPath, err)
	}
	return os.Rename(tmpPath, task.DstPath)
}

func (p *Pool) skip(workerID int, task Task, reason string) {
	p.cfg.Stats.AddFilesSkipped(1)
	p.emit(event.Event{
		Type:      event.FileSkipped,
		Timestamp: time.Now(),
		Path:      task.RelPath,
		Size:      task.Size,
		Reason:    reason,
		WorkerID:  workerID,
	})
}

// resumeReason annotates skips only in resume mode; fresh-mode skips
// are announced without a distinct reason.
func (p *Pool) resumeReason(reason string) string {
	if p.cfg.Mode == Resume {
		return reason
	}
	return ""
}

// fail records a locally-recovered per-file failure: one event, one
// failure-log row, then the run moves on.
func (p *Pool) fail(workerID int, task Task, err error) {
	p.cfg.Stats.AddFilesFailed(1)
	p.emit(event.Event{
		Type:      event.FileFailed,
		Timestamp: time.Now(),
		Path:      task.RelPath,
		Size:      task.Size,
		Error:     err,
		WorkerID:  workerID,
	})

	if p.cfg.FailLog == nil {
		return
	}
	rerr := p.cfg.FailLog.Record(
		filepath.Base(task.SrcPath),
		time.Now(),
		p.cfg.SrcRoot,
		filepath.Dir(task.SrcPath),
	)
	if rerr != nil {
		slog.Warn("failed to append failure record", "file", task.RelPath, "error", rerr)
	}
}

func (p *Pool) emit(ev event.Event) {
	if p.cfg.Events != nil {
		p.cfg.Events <- ev
	}
}
