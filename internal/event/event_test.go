package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wavmirror/wavmirror/internal/event"
)

func TestTypeString(t *testing.T) {
	assert.Equal(t, "FileCopied", event.FileCopied.String())
	assert.Equal(t, "FileTranscoded", event.FileTranscoded.String())
	assert.Equal(t, "RunHalted", event.RunHalted.String())
	assert.Equal(t, "Unknown", event.Type(0).String())
	assert.Equal(t, "Unknown", event.Type(99).String())
}
