package faillog_test

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavmirror/wavmirror/internal/faillog"
	"github.com/wavmirror/wavmirror/internal/volume"
)

func fixedResolver(label string) volume.Resolver {
	return volume.ResolverFunc(func(string) (string, error) {
		return label, nil
	})
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRecorder_RowShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copy_failures.csv")

	r := faillog.New(path, fixedResolver("FIELD_DRIVE"))

	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	require.NoError(t, r.Record("notes.txt", ts, "/mnt/sd0", "/mnt/sd0/session1"))
	require.NoError(t, r.Close())

	rows := readRows(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{
		"notes.txt", "2026-03-14 09:26:53", rows[0][2], "FIELD_DRIVE", "/mnt/sd0/session1",
	}, rows[0])
	assert.NotEmpty(t, rows[0][2], "acting user must be recorded")
}

func TestRecorder_NoFileWithoutFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copy_failures.csv")

	r := faillog.New(path, fixedResolver("D"))
	require.NoError(t, r.Close())

	// A failure-free run leaves no log file behind.
	assert.NoFileExists(t, path)
}

func TestRecorder_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copy_failures.csv")
	ts := time.Now()

	for run := 0; run < 3; run++ {
		r := faillog.New(path, fixedResolver("D"))
		require.NoError(t, r.Record(fmt.Sprintf("file%d.bin", run), ts, "/src", "/src/dir"))
		require.NoError(t, r.Close())
	}

	rows := readRows(t, path)
	// Never truncated: one row per run, earlier rows intact.
	require.Len(t, rows, 3)
	assert.Equal(t, "file0.bin", rows[0][0])
	assert.Equal(t, "file2.bin", rows[2][0])
}

func TestRecorder_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copy_failures.csv")

	r := faillog.New(path, fixedResolver("D"))

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Record(fmt.Sprintf("f%d.bin", i), time.Now(), "/src", "/src"))
		}()
	}
	wg.Wait()
	require.NoError(t, r.Close())

	// Every row parses cleanly: no interleaved writes.
	rows := readRows(t, path)
	assert.Len(t, rows, n)
	for _, row := range rows {
		assert.Len(t, row, 5)
	}
}

func TestRecorder_FallbackLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copy_failures.csv")

	r := faillog.New(path, volume.ResolverFunc(func(string) (string, error) {
		return "", volume.ErrNoLabel
	}))
	require.NoError(t, r.Record("a.wav", time.Now(), "/mnt/sd0", "/mnt/sd0"))
	require.NoError(t, r.Close())

	rows := readRows(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, "sd0", rows[0][3])
}

func TestRecord_BadPath(t *testing.T) {
	r := faillog.New(filepath.Join(t.TempDir(), "missing", "log.csv"), nil)
	err := r.Record("a.wav", time.Now(), "/src", "/src")
	assert.Error(t, err)
	assert.NoError(t, r.Close())
}
