package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wavmirror/wavmirror/internal/event"
	"github.com/wavmirror/wavmirror/internal/filter"
	"github.com/wavmirror/wavmirror/internal/stats"
)

// reservedDir is the maintenance-metadata folder NTFS keeps at volume
// roots; it is never mirrored or descended into.
const reservedDir = "system volume information"

// ScannerConfig controls scanner behavior.
type ScannerConfig struct {
	SrcRoot    string
	MirrorRoot string
	Exclude    *filter.Chain // optional user excludes
	Stats      *stats.Collector
	Events     chan<- event.Event
}

// Scanner walks the source tree in a single depth-first pass, building
// the mirrored directory skeleton as it goes. Every mirrored directory
// is created before any file inside it is emitted, so workers can rely
// on their write target existing. Each run rewalks the whole tree.
type Scanner struct {
	cfg   ScannerConfig
	tasks chan Task

	mu    sync.Mutex
	fatal error
}

// NewScanner creates a scanner with the given config.
func NewScanner(cfg ScannerConfig) *Scanner {
	return &Scanner{
		cfg:   cfg,
		tasks: make(chan Task, 64),
	}
}

// Scan starts the traversal and returns the task channel. The channel
// closes when the walk finishes, is cancelled, or hits a fatal error;
// callers must check Err afterwards.
func (s *Scanner) Scan(ctx context.Context) <-chan Task {
	go func() {
		defer close(s.tasks)
		if err := s.walk(ctx, s.cfg.SrcRoot, ""); err != nil && ctx.Err() == nil {
			s.setFatal(err)
		}
	}()
	return s.tasks
}

// Err returns the fatal error that stopped the walk, if any. Valid once
// the task channel has closed.
func (s *Scanner) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatal
}

func (s *Scanner) setFatal(err error) {
	s.mu.Lock()
	s.fatal = err
	s.mu.Unlock()
}

// walk processes one source directory: prunes unwanted subdirectories,
// mirrors surviving ones, emits regular files, and recurses. relDir is
// "" for the source root.
func (s *Scanner) walk(ctx context.Context, srcDir, relDir string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		// Unreadable source directories are skipped; nothing below
		// them can be mirrored.
		slog.Warn("skipping unreadable directory", "dir", srcDir, "error", err)
		return nil
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name := entry.Name()
		rel := filepath.Join(relDir, name)

		if entry.IsDir() {
			if pruned(name) || s.cfg.Exclude.Excluded(rel, true) {
				continue
			}
			if err := s.mirrorDir(rel); err != nil {
				return err
			}
			if err := s.walk(ctx, filepath.Join(srcDir, name), rel); err != nil {
				return err
			}
			continue
		}

		if !entry.Type().IsRegular() {
			// Symlinks and special files are not part of the mirror.
			continue
		}
		if s.cfg.Exclude.Excluded(rel, false) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			slog.Warn("skipping unstattable file", "file", rel, "error", err)
			continue
		}

		task := Task{
			SrcPath: filepath.Join(srcDir, name),
			RelPath: rel,
			Kind:    classify(name),
			Size:    info.Size(),
			Mode:    info.Mode(),
		}
		task.DstPath = filepath.Join(s.cfg.MirrorRoot, rel)
		if task.Kind == AudioSource {
			task.DstPath = swapAudioExt(task.DstPath)
		}

		select {
		case s.tasks <- task:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// mirrorDir creates the mirrored directory for rel. Failure here is
// fatal: files below it could never be written.
func (s *Scanner) mirrorDir(rel string) error {
	path := filepath.Join(s.cfg.MirrorRoot, rel)
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("mirror path %s exists and is not a directory", path)
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		return fmt.Errorf("create mirror dir %s: %w", path, err)
	}
	if s.cfg.Stats != nil {
		s.cfg.Stats.AddDirsCreated(1)
	}
	s.emit(event.Event{Type: event.DirCreated, Timestamp: time.Now(), Path: rel})
	return nil
}

func (s *Scanner) emit(ev event.Event) {
	if s.cfg.Events != nil {
		s.cfg.Events <- ev
	}
}

// pruned reports whether a directory name is excluded from traversal:
// hidden directories and the reserved maintenance folder.
func pruned(name string) bool {
	return strings.HasPrefix(name, ".") || strings.EqualFold(name, reservedDir)
}
