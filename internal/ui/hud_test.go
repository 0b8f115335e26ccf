package ui

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitrook/offload/internal/stats"
)

func TestHudPresenterFileCompleted(t *testing.T) {
	var out bytes.Buffer
	collector := stats.NewCollector()
	collector.SetTotals(10, 10240)

	p := &hudPresenter{
		w:           &out,
		stats:       collector,
		workers:     4,
		busyWorkers: make(map[int]bool),
	}

	events := make(chan Event, 10)
	events <- Event{Type: ScanComplete, Total: 10, TotalSize: 10240}
	events <- Event{Type: FileCompleted, Path: "test/file.txt", Size: 1024, WorkerID: 0}
	close(events)

	err := p.Run(events)
	require.NoError(t, err)

	// Should contain the checkmark and file path.
	assert.Contains(t, out.String(), "file.txt")
	assert.Contains(t, out.String(), "✓")
}

func TestHudPresenterFileCompletedStyledPath(t *testing.T) {
	var out bytes.Buffer
	collector := stats.NewCollector()
	collector.SetTotals(10, 10240)

	p := &hudPresenter{
		w:           &out,
		stats:       collector,
		workers:     4,
		busyWorkers: make(map[int]bool),
	}

	events := make(chan Event, 10)
	events <- Event{Type: ScanComplete, Total: 10, TotalSize: 10240}
	events <- Event{Type: FileCompleted, Path: "some/dir/file.txt", Size: 1024, WorkerID: 0}
	close(events)

	err := p.Run(events)
	require.NoError(t, err)

	output := out.String()
	// Directory should be dimmed (ANSI dim code present).
	assert.Contains(t, output, ansiDim)
	// Filename should be present after reset.
	assert.Contains(t, output, "file.txt")
}

func TestHudPresenterSummary(t *testing.T) {
	collector := stats.NewCollector()
	collector.AddFilesCopied(500)
	collector.AddBytesCopied(1024 * 1024 * 100)

	p := &hudPresenter{stats: collector, workers: 4}
	s := p.Summary()
	assert.Contains(t, s, "done")
	assert.Contains(t, s, "files 500")
}

func TestHudPresenterSummaryWithVerify(t *testing.T) {
	collector := stats.NewCollector()
	collector.AddFilesCopied(100)
	collector.AddBytesCopied(1024 * 1024)
	collector.AddFilesVerified(100)

	p := &hudPresenter{stats: collector, workers: 4}
	s := p.Summary()
	assert.Contains(t, s, "verified 100")
	assert.Contains(t, s, "errors 0")
}

func TestStyledPath(t *testing.T) {
	p := &hudPresenter{}

	// File without directory — no dim prefix.
	assert.Equal(t, "file.txt", p.styledPath("file.txt"))

	// File with directory — directory is dimmed.
	styled := p.styledPath("some/dir/file.txt")
	assert.Contains(t, styled, ansiDim+"some/dir/"+ansiReset+"file.txt")

	// Single directory level.
	styled = p.styledPath("dir/file.txt")
	assert.Contains(t, styled, ansiDim+"dir/"+ansiReset+"file.txt")
}

func TestHudClearHUDSequence(t *testing.T) {
	var out bytes.Buffer
	p := &hudPresenter{
		w:           &out,
		stats:       stats.NewCollector(),
		workers:     2,
		busyWorkers: make(map[int]bool),
	}

	// Draw HUD then clear it.
	p.drawHUD()
	assert.True(t, p.hudDrawn)
	assert.Equal(t, 2, p.hudLineCount) // 2 lines in non-rate mode

	out.Reset()
	p.clearHUD()
	// Should contain ANSI escape for cursor up.
	assert.Contains(t, out.String(), "\033[")
	assert.False(t, p.hudDrawn)
}

func TestHudClearHUDRateMode(t *testing.T) {
	var out bytes.Buffer
	p := &hudPresenter{
		w:           &out,
		stats:       stats.NewCollector(),
		workers:     2,
		busyWorkers: make(map[int]bool),
		rateMode:    true,
	}

	p.drawHUD()
	assert.True(t, p.hudDrawn)
	assert.Equal(t, 3, p.hudLineCount) // 3 lines in rate mode (sparkline + 2 HUD)

	out.Reset()
	p.clearHUD()
	// Should move up 3 lines.
	assert.Contains(t, out.String(), "\033[3A")
}

func TestHudVerifyProgressLine(t *testing.T) {
	var out bytes.Buffer
	collector := stats.NewCollector()
	collector.SetVerifyTotal(4)
	collector.AddFilesVerified(2)

	p := &hudPresenter{
		w:           &out,
		stats:       collector,
		workers:     2,
		busyWorkers: make(map[int]bool),
	}

	p.drawHUD()
	assert.Equal(t, 3, p.hudLineCount) // extra hash line during verify
	assert.Contains(t, out.String(), "2 / 4 checked")

	out.Reset()
	p.clearHUD()
	assert.Contains(t, out.String(), "\033[3A")
}

func TestHudWorkerIndicator(t *testing.T) {
	var out bytes.Buffer
	p := &hudPresenter{
		w:       &out,
		stats:   stats.NewCollector(),
		workers: 2,
		busyWorkers: map[int]bool{
			0: true,
		},
	}

	p.drawHUD()
	// One busy, one idle worker.
	assert.Contains(t, out.String(), "▪□")
}

func TestHudAlwaysRedrawsAfterFeedLine(t *testing.T) {
	var out bytes.Buffer
	collector := stats.NewCollector()
	collector.SetTotals(10, 10240)

	p := &hudPresenter{
		w:           &out,
		stats:       collector,
		workers:     4,
		busyWorkers: make(map[int]bool),
	}

	events := make(chan Event, 10)
	events <- Event{Type: ScanComplete, Total: 10, TotalSize: 10240}
	events <- Event{Type: FileCompleted, Path: "a.txt", Size: 100, WorkerID: 0}
	events <- Event{Type: FileCompleted, Path: "b.txt", Size: 200, WorkerID: 1}
	close(events)

	err := p.Run(events)
	require.NoError(t, err)

	output := out.String()
	// Both files should appear.
	assert.Contains(t, output, "a.txt")
	assert.Contains(t, output, "b.txt")
	// The progress bar character should appear (HUD was drawn).
	assert.Contains(t, output, "□")
}

func TestHudPresenterVerifyStarted(t *testing.T) {
	var out bytes.Buffer
	collector := stats.NewCollector()
	collector.SetTotals(10, 10240)

	p := &hudPresenter{
		w:           &out,
		stats:       collector,
		workers:     4,
		busyWorkers: make(map[int]bool),
	}

	events := make(chan Event, 10)
	events <- Event{Type: VerifyStarted}
	close(events)

	err := p.Run(events)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "verifying checksums...")
}

func TestHudPresenterVerifyFailed(t *testing.T) {
	var out bytes.Buffer
	collector := stats.NewCollector()
	collector.SetTotals(10, 10240)

	p := &hudPresenter{
		w:           &out,
		stats:       collector,
		workers:     4,
		busyWorkers: make(map[int]bool),
	}

	events := make(chan Event, 10)
	events <- Event{Type: VerifyFailed, Path: "bad/file.txt"}
	close(events)

	err := p.Run(events)
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "✗")
	assert.Contains(t, output, "file.txt")
	assert.Contains(t, output, "CHECKSUM MISMATCH")
}

func TestHudRateSwitchNotice(t *testing.T) {
	var out bytes.Buffer
	// Verify the notice format.
	fmt.Fprintf(&out, "↯ rate view (%s files/s)\n", FormatCount(int64(612)))
	assert.Contains(t, out.String(), "↯ rate view")
	assert.Contains(t, out.String(), "612 files/s")
}
