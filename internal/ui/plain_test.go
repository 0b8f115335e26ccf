package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitrook/offload/internal/stats"
)

func TestPlainPresenterFileCompleted(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer
	collector := stats.NewCollector()

	p := &plainPresenter{w: &out, errW: &errOut, stats: collector}

	events := make(chan Event, 10)
	events <- Event{Type: FileCompleted, Path: "dir/file.txt", Size: 1024}
	events <- Event{Type: FileCompleted, Path: "dir/big.bin", Size: 1024 * 1024 * 100}
	close(events)

	err := p.Run(events)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "dir/file.txt")
	assert.Contains(t, lines[1], "dir/big.bin")
}

func TestPlainPresenterFileFailed(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer
	collector := stats.NewCollector()

	p := &plainPresenter{w: &out, errW: &errOut, stats: collector}

	events := make(chan Event, 5)
	events <- Event{Type: FileFailed, Path: "fail.txt", Size: 512, Error: assert.AnError}
	close(events)

	err := p.Run(events)
	assert.NoError(t, err)

	assert.Contains(t, out.String(), "fail.txt")
	assert.Contains(t, out.String(), assert.AnError.Error())
}

func TestPlainPresenterFileSkipped(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer
	collector := stats.NewCollector()

	p := &plainPresenter{w: &out, errW: &errOut, stats: collector}

	events := make(chan Event, 5)
	events <- Event{Type: FileSkipped, Path: "skip.txt"}
	close(events)

	err := p.Run(events)
	assert.NoError(t, err)

	assert.Contains(t, out.String(), "skip.txt")
	assert.Contains(t, out.String(), "skipped")
}

func TestPlainPresenterScanComplete(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer
	collector := stats.NewCollector()

	p := &plainPresenter{w: &out, errW: &errOut, stats: collector}

	events := make(chan Event, 5)
	events <- Event{Type: ScanComplete, Total: 1500, TotalSize: 10 * 1024 * 1024}
	close(events)

	err := p.Run(events)
	assert.NoError(t, err)

	// Scan summary goes to stderr, not the per-file feed.
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "1,500 files")
	assert.Contains(t, errOut.String(), "10 MiB")
}

func TestPlainPresenterVerifyStarted(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer
	collector := stats.NewCollector()

	p := &plainPresenter{w: &out, errW: &errOut, stats: collector}

	events := make(chan Event, 5)
	events <- Event{Type: VerifyStarted}
	close(events)

	err := p.Run(events)
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "verifying...")
}

func TestPlainPresenterVerifyFailed(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer
	collector := stats.NewCollector()

	p := &plainPresenter{w: &out, errW: &errOut, stats: collector}

	events := make(chan Event, 5)
	events <- Event{Type: VerifyFailed, Path: "bad/file.txt"}
	close(events)

	err := p.Run(events)
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "MISMATCH: bad/file.txt")
}

func TestPlainPresenterVerifyOKSilent(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer
	collector := stats.NewCollector()

	p := &plainPresenter{w: &out, errW: &errOut, stats: collector}

	events := make(chan Event, 5)
	events <- Event{Type: VerifyOK, Path: "good/file.txt"}
	close(events)

	err := p.Run(events)
	assert.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestPlainPresenterSummary(t *testing.T) {
	collector := stats.NewCollector()
	collector.AddFilesCopied(100)
	collector.AddBytesCopied(1024 * 1024)

	p := &plainPresenter{stats: collector}
	s := p.Summary()
	assert.Contains(t, s, "files 100")
	assert.Contains(t, s, "errors 0")
}
