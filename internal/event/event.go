package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ScanStarted Type = iota + 1
	ScanProgress
	ScanComplete
	FileStarted
	FileCompleted
	FileFailed
	FileSkipped
	VerifyStarted
	VerifyOK
	VerifyFailed
)

var typeNames = [...]string{
	ScanStarted:   "ScanStarted",
	ScanProgress:  "ScanProgress",
	ScanComplete:  "ScanComplete",
	FileStarted:   "FileStarted",
	FileCompleted: "FileCompleted",
	FileFailed:    "FileFailed",
	FileSkipped:   "FileSkipped",
	VerifyStarted: "VerifyStarted",
	VerifyOK:      "VerifyOK",
	VerifyFailed:  "VerifyFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a single progress event from the backup engine.
//
// ScanComplete carries Total (file count) and TotalSize (byte count) for
// the whole inventory; VerifyStarted carries Total for the verify pass.
// FileSkipped marks a file satisfied from a resume checkpoint.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // relative path within the source
	Size      int64
	Total     int64
	TotalSize int64
	Error     error
	WorkerID  int
}
