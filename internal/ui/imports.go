package ui

import "github.com/bitrook/offload/internal/event"

// Event is re-exported so presenters read naturally.
type Event = event.Event

// Re-export event types for convenience.
const (
	ScanStarted   = event.ScanStarted
	ScanProgress  = event.ScanProgress
	ScanComplete  = event.ScanComplete
	FileStarted   = event.FileStarted
	FileCompleted = event.FileCompleted
	FileFailed    = event.FileFailed
	FileSkipped   = event.FileSkipped
	VerifyStarted = event.VerifyStarted
	VerifyOK      = event.VerifyOK
	VerifyFailed  = event.VerifyFailed
)
