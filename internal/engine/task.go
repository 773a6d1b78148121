package engine

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Kind classifies a discovered source file. Classification is by
// extension only; file contents are never sniffed.
type Kind int

const (
	Opaque Kind = iota // copied byte-for-byte
	AudioSource        // re-encoded to the compressed lossless format
)

func (k Kind) String() string {
	if k == AudioSource {
		return "audio"
	}
	return "opaque"
}

const (
	audioExt  = ".wav"
	targetExt = ".flac"
)

// Task describes one file to synchronize. For audio sources DstPath
// already carries the swapped extension.
type Task struct {
	SrcPath string
	RelPath string
	DstPath string
	Kind    Kind
	Size    int64
	Mode    fs.FileMode
}

// classify returns the kind for a file name.
func classify(name string) Kind {
	if strings.EqualFold(filepath.Ext(name), audioExt) {
		return AudioSource
	}
	return Opaque
}

// swapAudioExt replaces the audio extension with the compressed one,
// preserving the original base name's case.
func swapAudioExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))] + targetExt
}
