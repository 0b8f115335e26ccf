package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bitrook/offload/internal/stats"
)

// plainPresenter outputs one line per file to stdout and periodic
// progress to stderr. Used when stdout is not a terminal.
type plainPresenter struct {
	w     io.Writer
	errW  io.Writer
	stats stats.ReadTicker

	ticks int
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			p.ticks++
			if p.ticks%5 == 0 {
				p.printProgress()
			}
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case ScanComplete:
		fmt.Fprintf(p.errW, "scanned %s files (%s)\n",
			FormatCount(ev.Total), FormatBytes(ev.TotalSize))
	case FileCompleted:
		speed := p.stats.RollingSpeed(5)
		fmt.Fprintf(p.w, "%s  %s  %s\n", ev.Path, FormatBytes(ev.Size), FormatRate(speed))
	case FileFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s  %s\n", ev.Path, FormatBytes(ev.Size), errMsg)
	case FileSkipped:
		fmt.Fprintf(p.w, "%s  skipped\n", ev.Path)
	case VerifyStarted:
		fmt.Fprintln(p.w, "verifying...")
	case VerifyFailed:
		fmt.Fprintf(p.w, "MISMATCH: %s\n", ev.Path)
	case VerifyOK:
		// silent in plain mode
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.BytesTotal > 0 {
		pct := float64(snap.BytesCopied) / float64(snap.BytesTotal) * 100
		speed := p.stats.RollingSpeed(10)
		eta := p.stats.ETA()
		fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s/%s files %s eta %s\n",
			pct,
			FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesTotal),
			FormatCount(snap.FilesCopied), FormatCount(snap.FilesTotal),
			FormatRate(speed),
			FormatETA(eta),
		)
	} else {
		fmt.Fprintf(p.errW, "progress: %s copied %s files\n",
			FormatBytes(snap.BytesCopied),
			FormatCount(snap.FilesCopied),
		)
	}
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
