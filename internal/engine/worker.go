package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/bitrook/offload/internal/event"
)

// copyPhase fans the inventory out to the worker pool. Outcomes land
// in a slice indexed by scan order, so the split into transferred and
// failed lists stays deterministic no matter which worker finished
// first. complete is false when cancellation left files unattempted.
func (e *Engine) copyPhase(ctx context.Context, files []FileEntry) (transferred, failed []TransferOutcome, complete bool) {
	type job struct {
		idx   int
		entry FileEntry
	}

	outcomes := make([]TransferOutcome, len(files))
	attempted := make([]bool, len(files))

	jobs := make(chan job)
	var wg sync.WaitGroup
	for id := range e.workers {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobs {
				// A cancelled run stops before the next file, never
				// in the middle of one.
				if ctx.Err() != nil {
					return
				}
				outcomes[j.idx] = e.transferOne(ctx, j.entry, workerID)
				attempted[j.idx] = true
			}
		}(id)
	}

feed:
	for i, entry := range files {
		select {
		case jobs <- job{idx: i, entry: entry}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	complete = true
	for i := range files {
		if !attempted[i] {
			complete = false
			continue
		}
		if outcomes[i].Success {
			transferred = append(transferred, outcomes[i])
		} else {
			failed = append(failed, outcomes[i])
		}
	}
	return transferred, failed, complete
}

// verifyPhase re-reads every transferred file on both sides and
// compares digests, keying outcomes by absolute source path. Only
// transferred files are visited: a failed copy has nothing on disk
// worth comparing.
func (e *Engine) verifyPhase(ctx context.Context, transferred []TransferOutcome) map[string]VerificationOutcome {
	verifier := NewVerifier(e.digest)
	results := make(map[string]VerificationOutcome, len(transferred))

	if e.cfg.Stats != nil {
		e.cfg.Stats.SetVerifyTotal(int64(len(transferred)))
	}
	e.emit(event.Event{Type: event.VerifyStarted, Total: int64(len(transferred))})

	jobs := make(chan TransferOutcome)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for range e.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				if ctx.Err() != nil {
					return
				}
				out := verifier.Compare(t.SourcePath, t.DestinationPath)

				mu.Lock()
				results[t.SourcePath] = out
				mu.Unlock()

				if out.Matched {
					if e.cfg.Stats != nil {
						e.cfg.Stats.AddFilesVerified(1)
					}
					e.emit(event.Event{Type: event.VerifyOK, Path: t.RelPath, Size: t.Size})
				} else {
					if e.cfg.Stats != nil {
						e.cfg.Stats.AddFilesVerifyFailed(1)
					}
					e.log.Error("verification failed", "path", t.RelPath, "reason", out.Error)
					e.emit(event.Event{Type: event.VerifyFailed, Path: t.RelPath, Size: t.Size, Error: errors.New(out.Error)})
				}
			}
		}()
	}

feed:
	for _, t := range transferred {
		select {
		case jobs <- t:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return results
}
