package engine

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"
)

// Checkpoint is SQLite-backed resume state for interrupted backups.
// Each completed file is recorded by relative path, size, and source
// mtime; a later run with --resume skips files whose record still
// matches the card.
type Checkpoint struct {
	db   *sql.DB
	path string

	// Batch buffer for Mark calls.
	mu      sync.Mutex
	batch   []checkpointEntry
	done    chan struct{}
	stopped bool
}

type checkpointEntry struct {
	relPath   string
	size      int64
	mtimeNano int64
}

// OpenCheckpoint opens (or creates) the checkpoint database for a
// source/destination pair, stored under the XDG state directory.
func OpenCheckpoint(src, dst string) (*Checkpoint, error) {
	dbPath, err := xdg.StateFile(filepath.Join("offload", "checkpoints", checkpointJobID(src, dst)+".db"))
	if err != nil {
		return nil, fmt.Errorf("locate checkpoint dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db: %w", err)
	}

	c := &Checkpoint{
		db:   db,
		path: dbPath,
		done: make(chan struct{}),
	}

	if err := c.init(src, dst); err != nil {
		db.Close()
		return nil, err
	}

	go c.flushLoop()
	return c, nil
}

func (c *Checkpoint) init(src, dst string) error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS completed (
			path  TEXT PRIMARY KEY,
			size  INTEGER NOT NULL,
			mtime INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	// Validate or store the roots; a hash collision across different
	// runs must not silently mix state.
	var storedSrc string
	row := c.db.QueryRow("SELECT value FROM meta WHERE key = 'src_root'")
	if err := row.Scan(&storedSrc); err == nil {
		var storedDst string
		row2 := c.db.QueryRow("SELECT value FROM meta WHERE key = 'dst_root'")
		if err := row2.Scan(&storedDst); err == nil {
			if storedSrc != src || storedDst != dst {
				return fmt.Errorf("checkpoint roots mismatch: stored %s->%s, got %s->%s",
					storedSrc, storedDst, src, dst)
			}
		}
	} else {
		_, err = c.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('src_root', ?), ('dst_root', ?)", src, dst)
		if err != nil {
			return fmt.Errorf("store meta: %w", err)
		}
	}

	return nil
}

// Has returns true if the given file (by relative path, size, and
// source mtime) is recorded as already copied.
func (c *Checkpoint) Has(relPath string, size, mtimeNano int64) bool {
	var storedSize, storedMtime int64
	err := c.db.QueryRow(
		"SELECT size, mtime FROM completed WHERE path = ?", relPath,
	).Scan(&storedSize, &storedMtime)
	if err != nil {
		return false
	}
	return storedSize == size && storedMtime == mtimeNano
}

// Mark records a file as successfully copied. Writes are batched and
// flushed periodically.
func (c *Checkpoint) Mark(relPath string, size, mtimeNano int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.batch = append(c.batch, checkpointEntry{
		relPath:   relPath,
		size:      size,
		mtimeNano: mtimeNano,
	})

	if len(c.batch) >= 100 {
		return c.flushLocked()
	}
	return nil
}

// Flush writes any pending batch entries to the database.
func (c *Checkpoint) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

func (c *Checkpoint) flushLocked() error {
	if len(c.batch) == 0 {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO completed (path, size, mtime) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range c.batch {
		if _, err := stmt.Exec(e.relPath, e.size, e.mtimeNano); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", e.relPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	c.batch = c.batch[:0]
	return nil
}

func (c *Checkpoint) flushLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			_ = c.flushLocked()
			c.mu.Unlock()
		}
	}
}

// Close flushes any pending writes and closes the database.
func (c *Checkpoint) Close() error {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.done)
	}
	_ = c.flushLocked()
	c.mu.Unlock()
	return c.db.Close()
}

// Remove deletes the checkpoint database file.
func (c *Checkpoint) Remove() error {
	return os.Remove(c.path)
}

// Path returns the path to the checkpoint database file.
func (c *Checkpoint) Path() string {
	return c.path
}

// checkpointJobID derives a stable ID from the source/destination pair.
func checkpointJobID(src, dst string) string {
	h := blake3.New()
	h.Write([]byte(src))
	h.Write([]byte{0})
	h.Write([]byte(dst))
	digest := h.Sum(nil)
	return hex.EncodeToString(digest[:8])
}
