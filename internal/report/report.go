// Package report renders a finished backup into the report files that
// live alongside the backed-up data: backup_report.json for machines,
// backup_report.txt for the person opening the folder years later.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bitrook/offload/internal/engine"
)

const (
	JSONName = "backup_report.json"
	TextName = "backup_report.txt"
)

// Document is the serialized form of a backup run.
type Document struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Backup      Backup     `json:"backup"`
	Statistics  Statistics `json:"statistics"`

	FailedFiles  []engine.TransferOutcome              `json:"failed_files,omitempty"`
	Verification map[string]engine.VerificationOutcome `json:"verification,omitempty"`
	ScanIssues   []string                              `json:"scan_issues,omitempty"`
}

// Backup identifies the run itself.
type Backup struct {
	Source          string    `json:"source"`
	Destination     string    `json:"destination"`
	Status          string    `json:"status"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// Statistics aggregates the per-file outcomes.
type Statistics struct {
	FilesScanned     int   `json:"files_scanned"`
	FilesCopied      int   `json:"files_copied"`
	FilesSkipped     int   `json:"files_skipped"`
	FilesFailed      int   `json:"files_failed"`
	BytesCopied      int64 `json:"bytes_copied"`
	FilesVerified    int   `json:"files_verified"`
	VerifyMismatches int   `json:"verify_mismatches"`
}

// Build assembles a Document from a run result.
func Build(res *engine.Result) *Document {
	doc := &Document{
		GeneratedAt: time.Now(),
		Backup: Backup{
			Source:          res.Source,
			Destination:     res.Dest,
			Status:          string(res.Status),
			StartTime:       res.StartTime,
			EndTime:         res.EndTime,
			DurationSeconds: res.Duration.Seconds(),
		},
		Statistics: Statistics{
			FilesScanned:     res.FilesScanned,
			FilesCopied:      res.FilesCopied,
			FilesSkipped:     res.FilesSkipped,
			FilesFailed:      res.FilesFailed,
			BytesCopied:      res.BytesCopied,
			FilesVerified:    len(res.Verifications),
			VerifyMismatches: res.VerifyFailures(),
		},
		FailedFiles:  res.Failed,
		Verification: res.Verifications,
	}
	for _, issue := range res.ScanIssues {
		doc.ScanIssues = append(doc.ScanIssues, fmt.Sprintf("%s: %v", issue.Path, issue.Err))
	}
	return doc
}

// Write renders both report files into dir. The directory is normally
// the backup folder itself, so the report travels with the data.
func Write(dir string, res *engine.Result) error {
	doc := Build(res)
	if err := writeJSON(filepath.Join(dir, JSONName), doc); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, TextName), []byte(renderText(doc))); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	return nil
}

func writeJSON(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(path, append(data, '\n'))
}

// writeAtomic lands content via temp file + rename so a crash never
// leaves a half-written report next to a good backup.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// mismatches returns the verification failures sorted by source path.
func mismatches(doc *Document) []string {
	var paths []string
	for path, v := range doc.Verification {
		if !v.Matched {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}
