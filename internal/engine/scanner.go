package engine

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/bitrook/offload/internal/event"
	"github.com/bitrook/offload/internal/filter"
	"github.com/bitrook/offload/internal/stats"
)

// FileEntry is one regular file found under the source root.
type FileEntry struct {
	RelPath string // slash-separated, relative to the root
	AbsPath string
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
}

// ScanIssue records a path the scanner could not inventory. Issues are
// never fatal; the file simply does not make it into the run.
type ScanIssue struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// Inventory is the flat result of scanning a source tree.
type Inventory struct {
	Files      []FileEntry
	TotalBytes int64
	Issues     []ScanIssue
}

// ScannerConfig controls a source scan.
type ScannerConfig struct {
	Root   string
	Filter *filter.Chain
	Events chan<- event.Event
	Stats  *stats.Collector
	Logger *slog.Logger
}

// Scanner walks the source tree in parallel and builds a flat file
// inventory. Symlinks are not followed: a card that somehow carries
// one gets its payload files, not a traversal loop.
type Scanner struct {
	cfg ScannerConfig
}

// NewScanner creates a scanner for the given root.
func NewScanner(cfg ScannerConfig) *Scanner {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{cfg: cfg}
}

// Scan inventories every regular file under the root. Unreadable
// entries are recorded as issues and skipped. The only error returned
// is context cancellation.
func (s *Scanner) Scan(ctx context.Context) (*Inventory, error) {
	emit(s.cfg.Events, event.Event{Type: event.ScanStarted, Path: s.cfg.Root})

	inv := &Inventory{}
	var mu sync.Mutex

	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, s.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		if err != nil {
			s.recordIssue(inv, &mu, path, err)
			return nil
		}

		rel, err := filepath.Rel(s.cfg.Root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if !s.cfg.Filter.Match(rel, true, 0) {
				return fastwalk.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.recordIssue(inv, &mu, path, err)
			return nil
		}
		if !s.cfg.Filter.Match(rel, false, info.Size()) {
			return nil
		}

		mu.Lock()
		inv.Files = append(inv.Files, FileEntry{
			RelPath: rel,
			AbsPath: path,
			Size:    info.Size(),
			Mode:    info.Mode(),
			ModTime: info.ModTime(),
		})
		inv.TotalBytes += info.Size()
		count := len(inv.Files)
		mu.Unlock()

		if s.cfg.Stats != nil {
			s.cfg.Stats.AddFilesScanned(1)
		}
		if count%100 == 0 {
			emit(s.cfg.Events, event.Event{Type: event.ScanProgress, Total: int64(count)})
		}
		return nil
	})

	if walkErr != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if walkErr != nil {
		// fastwalk surfaces root-level trouble here; per-entry errors
		// already landed in Issues.
		s.recordIssue(inv, &mu, s.cfg.Root, walkErr)
	}

	// The walk is parallel, so impose a stable order.
	sort.Slice(inv.Files, func(i, j int) bool {
		return inv.Files[i].RelPath < inv.Files[j].RelPath
	})

	emit(s.cfg.Events, event.Event{
		Type:      event.ScanComplete,
		Total:     int64(len(inv.Files)),
		TotalSize: inv.TotalBytes,
	})
	return inv, nil
}

func (s *Scanner) recordIssue(inv *Inventory, mu *sync.Mutex, path string, err error) {
	s.cfg.Logger.Warn("scan issue", "path", path, "error", err)
	mu.Lock()
	inv.Issues = append(inv.Issues, ScanIssue{Path: path, Err: err.Error()})
	mu.Unlock()
}
