package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Collector tracks run statistics using lock-free atomic counters.
type Collector struct {
	filesCopied     atomic.Int64
	filesTranscoded atomic.Int64
	filesSkipped    atomic.Int64
	filesFailed     atomic.Int64
	bytesCopied     atomic.Int64
	dirsCreated     atomic.Int64
	startTime       time.Time

	// Ring buffer — written only by the presenter's Tick(), not workers.
	mu         sync.Mutex
	throughput [ringSize]int64 // bytes delta per second
	ringIdx    int
	ringCount  int
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Reader is the read-only view presenters use.
type Reader interface {
	Snapshot() Snapshot
	Elapsed() time.Duration
}

// ReadTicker adds throughput sampling to the read-only view.
type ReadTicker interface {
	Reader
	Tick()
	RollingSpeed(seconds int) float64
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesCopied     int64
	FilesTranscoded int64
	FilesSkipped    int64
	FilesFailed     int64
	BytesCopied     int64
	DirsCreated     int64
	Elapsed         time.Duration
}

func (c *Collector) AddFilesCopied(n int64)     { c.filesCopied.Add(n) }
func (c *Collector) AddFilesTranscoded(n int64) { c.filesTranscoded.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)    { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesFailed(n int64)     { c.filesFailed.Add(n) }
func (c *Collector) AddBytesCopied(n int64)     { c.bytesCopied.Add(n) }
func (c *Collector) AddDirsCreated(n int64)     { c.dirsCreated.Add(n) }

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesCopied:     c.filesCopied.Load(),
		FilesTranscoded: c.filesTranscoded.Load(),
		FilesSkipped:    c.filesSkipped.Load(),
		FilesFailed:     c.filesFailed.Load(),
		BytesCopied:     c.bytesCopied.Load(),
		DirsCreated:     c.dirsCreated.Load(),
		Elapsed:         c.Elapsed(),
	}
}

// Tick snapshots the byte delta into the ring buffer. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	currentBytes := c.bytesCopied.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = currentBytes - c.lastBytes
	c.lastBytes = currentBytes
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := seconds
	if count > c.ringCount {
		count = c.ringCount
	}
	if count == 0 {
		return 0
	}
	var sum int64
	for i := 0; i < count; i++ {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"copied=%d transcoded=%d skipped=%d failed=%d bytes=%d dirs=%d",
		s.FilesCopied, s.FilesTranscoded, s.FilesSkipped, s.FilesFailed,
		s.BytesCopied, s.DirsCreated,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
