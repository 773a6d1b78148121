package stats_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wavmirror/wavmirror/internal/stats"
)

func TestCollector_Counters(t *testing.T) {
	c := stats.NewCollector()

	c.AddFilesCopied(2)
	c.AddFilesTranscoded(3)
	c.AddFilesSkipped(1)
	c.AddFilesFailed(1)
	c.AddBytesCopied(4096)
	c.AddDirsCreated(5)

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap.FilesCopied)
	assert.Equal(t, int64(3), snap.FilesTranscoded)
	assert.Equal(t, int64(1), snap.FilesSkipped)
	assert.Equal(t, int64(1), snap.FilesFailed)
	assert.Equal(t, int64(4096), snap.BytesCopied)
	assert.Equal(t, int64(5), snap.DirsCreated)
}

func TestCollector_ConcurrentAdds(t *testing.T) {
	c := stats.NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.AddFilesCopied(1)
				c.AddBytesCopied(10)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, int64(5000), snap.FilesCopied)
	assert.Equal(t, int64(50000), snap.BytesCopied)
}

func TestCollector_RollingSpeed(t *testing.T) {
	c := stats.NewCollector()

	// No samples yet.
	assert.Equal(t, float64(0), c.RollingSpeed(10))

	c.AddBytesCopied(1000)
	c.Tick()
	c.AddBytesCopied(3000)
	c.Tick()

	// Two samples: 1000 and 3000 bytes/sec.
	assert.InDelta(t, 2000, c.RollingSpeed(2), 0.1)
	assert.InDelta(t, 3000, c.RollingSpeed(1), 0.1)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", stats.FormatBytes(512))
	assert.Equal(t, "1.0 KiB", stats.FormatBytes(1024))
	assert.Equal(t, "1.5 MiB", stats.FormatBytes(1536*1024))
	assert.Equal(t, "2.0 GiB", stats.FormatBytes(2*1024*1024*1024))
}

func TestSnapshotString(t *testing.T) {
	c := stats.NewCollector()
	c.AddFilesCopied(1)
	c.AddFilesTranscoded(2)
	assert.Contains(t, c.Snapshot().String(), "copied=1 transcoded=2")
}
