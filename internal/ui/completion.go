package ui

import (
	"fmt"

	"github.com/wavmirror/wavmirror/internal/stats"
)

// completionSummary builds a final summary line from a snapshot.
// Format: done ✓  copied 48,917  converted 312  skipped 4  size 2.1 GiB  time 3m 17s  errors 0
func completionSummary(snap stats.Snapshot) string {
	icon := "✓"
	if snap.FilesFailed > 0 {
		icon = "✗"
	}

	return fmt.Sprintf("done %s  copied %s  converted %s  skipped %s  size %s  time %s  errors %d",
		icon,
		FormatCount(snap.FilesCopied),
		FormatCount(snap.FilesTranscoded),
		FormatCount(snap.FilesSkipped),
		FormatBytes(snap.BytesCopied),
		FormatDuration(snap.Elapsed),
		snap.FilesFailed,
	)
}
