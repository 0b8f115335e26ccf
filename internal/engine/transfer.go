package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bitrook/offload/internal/event"
	"github.com/bitrook/offload/internal/platform"
	"github.com/bitrook/offload/internal/safepath"
)

// transferOne copies a single file into the backup folder. Data lands
// in a temporary file first and is renamed into place only when
// complete, so an interrupted run never leaves a half-written file
// under a final name.
func (e *Engine) transferOne(ctx context.Context, entry FileEntry, workerID int) TransferOutcome {
	out := TransferOutcome{
		RelPath:    entry.RelPath,
		SourcePath: entry.AbsPath,
		Size:       entry.Size,
	}

	dstPath, err := safepath.Resolve(e.dest, entry.RelPath)
	if err != nil {
		return e.failTransfer(out, workerID, fmt.Errorf("resolve destination: %w", err))
	}
	out.DestinationPath = dstPath

	// Resume: files recorded by an earlier run are carried over as
	// successful transfers without touching the card again.
	if e.ckpt != nil && e.ckpt.Has(entry.RelPath, entry.Size, entry.ModTime.UnixNano()) {
		out.Success = true
		out.Skipped = true
		if e.cfg.Stats != nil {
			e.cfg.Stats.AddFilesSkipped(1)
			e.cfg.Stats.AddBytesCopied(entry.Size)
		}
		e.emit(event.Event{Type: event.FileSkipped, Path: entry.RelPath, Size: entry.Size, WorkerID: workerID})
		return out
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return e.failTransfer(out, workerID, fmt.Errorf("create parent dir: %w", err))
	}

	e.emit(event.Event{Type: event.FileStarted, Path: entry.RelPath, Size: entry.Size, WorkerID: workerID})

	tmpPath := filepath.Join(
		filepath.Dir(dstPath),
		fmt.Sprintf(".%s.%s.offload-tmp", filepath.Base(dstPath), uuid.New().String()[:8]),
	)
	e.tmps.register(tmpPath)
	defer func() {
		e.tmps.deregister(tmpPath)
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	written, err := e.copyData(ctx, entry, tmpPath)
	if err != nil {
		return e.failTransfer(out, workerID, fmt.Errorf("copy data: %w", err))
	}

	// Carry the card's timestamp so the backup mirrors the source.
	if err := os.Chtimes(tmpPath, entry.ModTime, entry.ModTime); err != nil {
		return e.failTransfer(out, workerID, fmt.Errorf("set mtime: %w", err))
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		return e.failTransfer(out, workerID, fmt.Errorf("rename into place: %w", err))
	}

	// Length check against the source as it is now, not as scanned:
	// a file still being written by the camera shows up here.
	want := entry.Size
	if srcInfo, statErr := os.Stat(entry.AbsPath); statErr == nil {
		want = srcInfo.Size()
	}
	dstInfo, err := os.Stat(dstPath)
	if err != nil {
		return e.failTransfer(out, workerID, fmt.Errorf("stat destination: %w", err))
	}
	if dstInfo.Size() != want {
		return e.failTransfer(out, workerID, &SizeMismatchError{
			Path:    entry.RelPath,
			SrcSize: want,
			DstSize: dstInfo.Size(),
		})
	}

	if e.ckpt != nil {
		if err := e.ckpt.Mark(entry.RelPath, entry.Size, entry.ModTime.UnixNano()); err != nil {
			e.log.Warn("checkpoint mark failed", "path", entry.RelPath, "error", err)
		}
	}

	out.Success = true
	if e.cfg.Stats != nil {
		e.cfg.Stats.AddFilesCopied(1)
		e.cfg.Stats.AddBytesCopied(written)
	}
	e.emit(event.Event{Type: event.FileCompleted, Path: entry.RelPath, Size: written, WorkerID: workerID})
	return out
}

// copyData moves the bytes. Unthrottled runs use the platform's best
// copy path; a bandwidth cap forces the plain read/write loop because
// kernel-assisted copies bypass the limiter.
func (e *Engine) copyData(ctx context.Context, entry FileEntry, tmpPath string) (int64, error) {
	if e.limiter == nil {
		res, err := platform.CopyFile(platform.CopyFileParams{
			SrcPath: entry.AbsPath,
			DstPath: tmpPath,
			SrcSize: entry.Size,
			Mode:    entry.Mode,
		})
		if err != nil {
			return res.BytesWritten, err
		}
		e.log.Debug("copied", "path", entry.RelPath, "method", res.Method.String(), "bytes", res.BytesWritten)
		return res.BytesWritten, nil
	}

	src, err := os.Open(entry.AbsPath)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	perm := entry.Mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	dst, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return 0, err
	}

	reader := newRateLimitedReader(ctx, io.LimitReader(src, entry.Size), e.limiter)
	buf := make([]byte, 256*1024)
	n, err := io.CopyBuffer(dst, reader, buf)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func (e *Engine) failTransfer(out TransferOutcome, workerID int, err error) TransferOutcome {
	out.Error = err.Error()
	if e.cfg.Stats != nil {
		e.cfg.Stats.AddFilesFailed(1)
	}
	e.log.Error("transfer failed", "path", out.RelPath, "error", err)
	e.emit(event.Event{Type: event.FileFailed, Path: out.RelPath, Size: out.Size, Error: err, WorkerID: workerID})
	return out
}
