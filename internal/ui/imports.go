package ui

import "github.com/wavmirror/wavmirror/internal/event"

// Event is re-exported for presenter signatures.
type Event = event.Event

// Re-export event types for convenience.
const (
	RunStarted     = event.RunStarted
	DirCreated     = event.DirCreated
	FileCopied     = event.FileCopied
	FileTranscoded = event.FileTranscoded
	FileSkipped    = event.FileSkipped
	FileFailed     = event.FileFailed
	RunHalted      = event.RunHalted
)
