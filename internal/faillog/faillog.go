// Package faillog persists per-file failure records to an append-only
// CSV log. The log accumulates across runs and is never truncated or
// rewritten; callers replay it to find files needing manual attention.
package faillog

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/user"
	"sync"
	"time"

	"github.com/wavmirror/wavmirror/internal/volume"
)

// TimestampLayout is the timestamp format written to the log.
const TimestampLayout = "2006-01-02 15:04:05"

// Recorder appends one row per failed file. The log file is created
// lazily on the first failure, so a clean run leaves no file behind.
// Appends are serialized with a mutex so concurrent workers never
// interleave rows.
type Recorder struct {
	mu       sync.Mutex
	path     string
	f        *os.File
	w        *csv.Writer
	resolver volume.Resolver
	user     string
}

// New prepares a recorder for the failure log at path. Nothing touches
// the filesystem until the first Record call. The acting user identity
// is captured once up front.
func New(path string, resolver volume.Resolver) *Recorder {
	return &Recorder{
		path:     path,
		resolver: resolver,
		user:     currentUser(),
	}
}

// Record appends one row: file name, timestamp, acting user, resolved
// drive label, original containing directory. Each call is flushed so a
// later crash cannot lose the record.
func (r *Recorder) Record(fileName string, ts time.Time, driveRoot, directory string) error {
	label := volume.LabelOrFallback(r.resolver, driveRoot)
	row := []string{fileName, ts.Format(TimestampLayout), r.user, label, directory}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.f == nil {
		f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open failure log %s: %w", r.path, err)
		}
		r.f = f
		r.w = csv.NewWriter(f)
	}

	if err := r.w.Write(row); err != nil {
		return fmt.Errorf("append failure record: %w", err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("flush failure record: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file, if one was ever opened.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	r.w.Flush()
	return r.f.Close()
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
