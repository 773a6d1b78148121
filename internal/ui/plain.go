package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/wavmirror/wavmirror/internal/stats"
)

// plainPresenter outputs one line per completed file to stdout,
// and periodic progress to stderr.
type plainPresenter struct {
	w          io.Writer
	errW       io.Writer
	stats      stats.ReadTicker
	verbose    bool
	noProgress bool
}

func (p *plainPresenter) Run(events <-chan Event) error {
	sample := time.NewTicker(time.Second)
	defer sample.Stop()
	progress := time.NewTicker(5 * time.Second)
	defer progress.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-sample.C:
			p.stats.Tick()
		case <-progress.C:
			if !p.noProgress {
				p.printProgress()
			}
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case RunStarted:
		// silent; the summary line closes the run instead
	case DirCreated:
		if p.verbose {
			fmt.Fprintf(p.w, "created %s/\n", ev.Path)
		}
	case FileCopied:
		speed := p.stats.RollingSpeed(5)
		fmt.Fprintf(p.w, "%s  %s  %s\n", ev.Path, FormatBytes(ev.Size), FormatRate(speed))
	case FileTranscoded:
		fmt.Fprintf(p.w, "converted %s to FLAC with %d channels\n", ev.Path, ev.Channels)
	case FileSkipped:
		if ev.Reason != "" {
			fmt.Fprintf(p.w, "%s  skipped (%s)\n", ev.Path, ev.Reason)
		} else {
			fmt.Fprintf(p.w, "%s  skipped\n", ev.Path)
		}
	case FileFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s\n", ev.Path, errMsg)
	case RunHalted:
		fmt.Fprintln(p.errW, "storage limit reached, stopping")
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	fmt.Fprintf(p.errW, "progress: %s copied %s files %s converted %s\n",
		FormatBytes(snap.BytesCopied),
		FormatCount(snap.FilesCopied),
		FormatCount(snap.FilesTranscoded),
		FormatRate(p.stats.RollingSpeed(10)),
	)
}

func (p *plainPresenter) Summary() string {
	return completionSummary(p.stats.Snapshot())
}
