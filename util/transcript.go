package util

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Transcript appends every command line sent and every raw reply block
// received to a size-rotated log file.  A nil *Transcript is a valid
// no-op receiver, so callers never need to nil-check.
type Transcript struct {
	mu  sync.Mutex
	out *lumberjack.Logger
}

// NewTranscript opens a rotating transcript at path.  Rotation keeps
// maxSizeMB per file and up to maxBackups old files.
func NewTranscript(path string, maxSizeMB, maxBackups int) *Transcript {
	return &Transcript{
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		},
	}
}

// Sent records a command line as it went over the wire.
func (t *Transcript) Sent(line string) {
	t.append(">>", strings.TrimRight(line, "\n"))
}

// Received records the raw text of a reply block.
func (t *Transcript) Received(raw string) {
	t.append("<<", raw)
}

// Close flushes and closes the underlying file.
func (t *Transcript) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.Close()
}

func (t *Transcript) append(dir, text string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ts := time.Now().Format(time.RFC3339)
	fmt.Fprintf(t.out, "%s %s %s\n", ts, dir, text) //nolint:errcheck
}
