package engine

import "time"

// Status tracks which phase a backup run is in. Terminal states are
// Completed, Failed, and Cancelled.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusScanning  Status = "scanning"
	StatusCopying   Status = "copying"
	StatusVerifying Status = "verifying"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// TransferOutcome records the fate of one file in the copy phase.
type TransferOutcome struct {
	RelPath         string `json:"relative_path"`
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
	Size            int64  `json:"size"`
	Success         bool   `json:"success"`
	Skipped         bool   `json:"skipped,omitempty"`
	Error           string `json:"error,omitempty"`
}

// VerificationOutcome records one source/destination comparison.
// Matched is authoritative; Error explains any false.
type VerificationOutcome struct {
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
	SourceHash      string `json:"source_hash,omitempty"`
	DestinationHash string `json:"destination_hash,omitempty"`
	SourceSize      int64  `json:"source_size"`
	DestinationSize int64  `json:"destination_size"`
	Matched         bool   `json:"matched"`
	Error           string `json:"error,omitempty"`
}

// Result is the complete outcome of a backup run.
//
// Success stays true when individual files failed: per-file trouble is
// visible in Failed and in the counters, while Success reports whether
// the run itself carried through. Err is set only for run-level
// failures (validation, cancellation). Verifications is keyed by the
// file's absolute source path.
type Result struct {
	Status    Status
	Success   bool
	Source    string
	Dest      string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	FilesScanned int
	FilesSkipped int
	FilesCopied  int
	FilesFailed  int
	BytesCopied  int64

	Transferred   []TransferOutcome
	Failed        []TransferOutcome
	Verifications map[string]VerificationOutcome
	ScanIssues    []ScanIssue

	Err error
}

// VerifyFailures counts verifications that did not match.
func (r *Result) VerifyFailures() int {
	n := 0
	for _, v := range r.Verifications {
		if !v.Matched {
			n++
		}
	}
	return n
}

// Clean reports whether every scanned file was copied and every
// verification matched.
func (r *Result) Clean() bool {
	return r.Success && r.FilesFailed == 0 && len(r.ScanIssues) == 0 && r.VerifyFailures() == 0
}
