// Package engine implements the backup pipeline: scan the source
// volume into a flat inventory, copy every file into the destination
// folder through temp-and-rename, then re-read both sides and compare
// digests. Per-file trouble is recorded and reported; only run-level
// trouble (bad configuration, cancellation) aborts.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitrook/offload/internal/event"
	"github.com/bitrook/offload/internal/filter"
	"github.com/bitrook/offload/internal/stats"
)

// Config describes a backup run.
type Config struct {
	// Source is the mounted volume (or any directory) to back up.
	Source string
	// Dest is the backup folder files land in.
	Dest string
	// Workers sizes the copy and verify pools. Defaults to
	// min(NumCPU, 4); a single card rewards modest parallelism.
	Workers int
	// Hash picks the verification digest. Defaults to Blake3.
	Hash Algorithm
	// ChunkSize is the hashing read size. Defaults to DefaultChunkSize.
	ChunkSize int
	// Verify enables the post-copy comparison pass.
	Verify bool
	// Filter prunes the scan. Nil copies everything.
	Filter *filter.Chain
	// BWLimit caps read throughput in bytes/sec. Zero means unlimited.
	BWLimit int64
	// Resume consults the checkpoint database and skips files already
	// copied by an interrupted run.
	Resume bool
	// Digest overrides the hasher built from Hash and ChunkSize.
	// Tests inject failures here; normal callers leave it nil.
	Digest DigestFunc
	// Events receives progress events. Sends never block: a slow
	// consumer loses events rather than stalling a worker.
	Events chan<- event.Event
	// Stats receives counter updates for live presentation.
	Stats *stats.Collector
	// Logger defaults to discard.
	Logger *slog.Logger
}

// Engine runs one backup. An Engine is single-use: construct, Run,
// read the Result.
type Engine struct {
	cfg     Config
	log     *slog.Logger
	src     string
	dest    string
	workers int
	digest  DigestFunc
	limiter *rate.Limiter
	tmps    *tmpRegistry
	ckpt    *Checkpoint
}

// New validates the configuration shape and builds an engine.
// Filesystem checks wait until Run so the Result can report them.
func New(cfg Config) (*Engine, error) {
	if cfg.Source == "" {
		return nil, &ValidationError{Field: "source", Reason: "not set"}
	}
	if cfg.Dest == "" {
		return nil, &ValidationError{Field: "destination", Reason: "not set"}
	}

	algo, err := ParseAlgorithm(string(cfg.Hash))
	if err != nil {
		return nil, &ValidationError{Field: "hash", Reason: err.Error()}
	}
	cfg.Hash = algo

	e := &Engine{
		cfg:     cfg,
		log:     cfg.Logger,
		src:     cfg.Source,
		dest:    cfg.Dest,
		workers: cfg.Workers,
		digest:  cfg.Digest,
		tmps:    newTmpRegistry(),
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	if e.workers <= 0 {
		e.workers = defaultWorkers()
	}
	if e.digest == nil {
		e.digest = NewHasher(cfg.Hash, cfg.ChunkSize).Sum
	}
	if cfg.BWLimit > 0 {
		e.limiter = NewBWLimiter(cfg.BWLimit)
	}
	return e, nil
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 4 {
		n = 4
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Run executes the backup, blocking until done. The Result is never
// nil. Cancellation is honored between files, never inside one.
func (e *Engine) Run(ctx context.Context) *Result {
	res := &Result{
		Status:    StatusIdle,
		Source:    e.cfg.Source,
		Dest:      e.cfg.Dest,
		StartTime: time.Now(),
	}
	defer func() {
		res.EndTime = time.Now()
		res.Duration = res.EndTime.Sub(res.StartTime)
	}()
	defer e.tmps.cleanup()

	if err := e.preflight(); err != nil {
		return e.fail(res, err)
	}
	if e.ckpt != nil {
		defer e.closeCheckpoint(res)
	}

	res.Status = StatusScanning
	e.log.Info("scanning", "source", e.src)
	inv, err := e.scan(ctx)
	if err != nil {
		return e.cancel(res)
	}
	res.FilesScanned = len(inv.Files)
	res.ScanIssues = inv.Issues
	if e.cfg.Stats != nil {
		e.cfg.Stats.SetTotals(int64(len(inv.Files)), inv.TotalBytes)
	}
	e.log.Info("scan complete", "files", len(inv.Files), "bytes", inv.TotalBytes, "issues", len(inv.Issues))

	res.Status = StatusCopying
	transferred, failed, complete := e.copyPhase(ctx, inv.Files)
	res.Transferred = transferred
	res.Failed = failed
	res.tally()
	if !complete || ctx.Err() != nil {
		return e.cancel(res)
	}

	if e.cfg.Verify && len(transferred) > 0 {
		res.Status = StatusVerifying
		res.Verifications = e.verifyPhase(ctx, transferred)
		if ctx.Err() != nil {
			return e.cancel(res)
		}
	}

	res.Status = StatusCompleted
	res.Success = true
	e.log.Info("backup complete",
		"copied", res.FilesCopied,
		"skipped", res.FilesSkipped,
		"failed", res.FilesFailed,
		"bytes", res.BytesCopied,
		"mismatches", res.VerifyFailures(),
	)
	return res
}

// preflight runs the filesystem-dependent validation and sets up
// resume state.
func (e *Engine) preflight() error {
	info, err := os.Stat(e.cfg.Source)
	if err != nil {
		if os.IsNotExist(err) {
			return &ValidationError{Field: "source", Reason: fmt.Sprintf("%s does not exist", e.cfg.Source)}
		}
		return &ValidationError{Field: "source", Reason: err.Error()}
	}
	if !info.IsDir() {
		return &ValidationError{Field: "source", Reason: fmt.Sprintf("%s is not a directory", e.cfg.Source)}
	}

	absSrc, err := filepath.Abs(e.cfg.Source)
	if err != nil {
		return &ValidationError{Field: "source", Reason: err.Error()}
	}
	absDst, err := filepath.Abs(e.cfg.Dest)
	if err != nil {
		return &ValidationError{Field: "destination", Reason: err.Error()}
	}
	if destInsideSource(absSrc, absDst) {
		return &ValidationError{Field: "destination", Reason: "inside the source tree"}
	}
	e.src = absSrc
	e.dest = absDst

	if err := os.MkdirAll(absDst, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if e.cfg.Resume {
		ckpt, err := OpenCheckpoint(absSrc, absDst)
		if err != nil {
			e.log.Warn("checkpoint unavailable, running without resume", "error", err)
		} else {
			e.ckpt = ckpt
		}
	}
	return nil
}

// destInsideSource rejects a destination under the source root, which
// would make the backup feed on its own output.
func destInsideSource(absSrc, absDst string) bool {
	rel, err := filepath.Rel(absSrc, absDst)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (e *Engine) scan(ctx context.Context) (*Inventory, error) {
	sc := NewScanner(ScannerConfig{
		Root:   e.src,
		Filter: e.cfg.Filter,
		Events: e.cfg.Events,
		Stats:  e.cfg.Stats,
		Logger: e.log,
	})
	return sc.Scan(ctx)
}

func (e *Engine) fail(res *Result, err error) *Result {
	res.Status = StatusFailed
	res.Err = err
	e.log.Error("backup failed", "error", err)
	return res
}

func (e *Engine) cancel(res *Result) *Result {
	res.Status = StatusCancelled
	res.Err = ErrCancelled
	e.log.Warn("backup cancelled")
	return res
}

func (e *Engine) closeCheckpoint(res *Result) {
	if err := e.ckpt.Close(); err != nil {
		e.log.Warn("close checkpoint", "error", err)
	}
	// A finished run with nothing left to retry has no further use for
	// resume state. Keep it when failures or a cancellation remain.
	if res.Status == StatusCompleted && res.FilesFailed == 0 {
		_ = e.ckpt.Remove()
	}
}

func (r *Result) tally() {
	for _, t := range r.Transferred {
		if t.Skipped {
			r.FilesSkipped++
			continue
		}
		r.FilesCopied++
		r.BytesCopied += t.Size
	}
	r.FilesFailed = len(r.Failed)
}

func (e *Engine) emit(ev event.Event) {
	emit(e.cfg.Events, ev)
}

// emit stamps and sends an event without ever blocking the caller.
func emit(ch chan<- event.Event, ev event.Event) {
	if ch == nil {
		return
	}
	ev.Timestamp = time.Now()
	select {
	case ch <- ev:
	default:
	}
}
