package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	RunStarted Type = iota + 1
	DirCreated
	FileCopied
	FileTranscoded
	FileSkipped
	FileFailed
	RunHalted
)

var typeNames = [...]string{
	RunStarted:     "RunStarted",
	DirCreated:     "DirCreated",
	FileCopied:     "FileCopied",
	FileTranscoded: "FileTranscoded",
	FileSkipped:    "FileSkipped",
	FileFailed:     "FileFailed",
	RunHalted:      "RunHalted",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single status notification from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // path relative to the source root
	Size      int64  // file size in bytes (FileCopied, FileSkipped)
	Channels  int    // probed channel count (FileTranscoded)
	Reason    string // skip reason (FileSkipped), empty for a plain skip
	Error     error  // failure cause (FileFailed, RunHalted)
	WorkerID  int
}
