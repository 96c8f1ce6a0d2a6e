package session

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Transcript writes terminal output to the terminal and an optional file simultaneously.
// Without a file it is a plain pass-through writer.
type Transcript struct {
	mu      sync.Mutex
	out     io.Writer
	file    *os.File
	writers []io.Writer
}

// NewTranscript creates a transcript that writes to out only
func NewTranscript(out io.Writer) *Transcript {
	return &Transcript{
		out:     out,
		writers: []io.Writer{out},
	}
}

// OpenFile appends everything written from now on to path as well
func (t *Transcript) OpenFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.file = f
	t.writers = []io.Writer{t.out, f}
	return nil
}

// Write implements io.Writer for all destinations
func (t *Transcript) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, w := range t.writers {
		if _, err := w.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Record writes a line to the file only, e.g. the user's input the terminal already echoed
func (t *Transcript) Record(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file != nil {
		fmt.Fprintln(t.file, line)
	}
}

// Close syncs and closes the file (if any) and reverts to out only
func (t *Transcript) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	t.file.Sync()
	err := t.file.Close()
	t.file = nil
	t.writers = []io.Writer{t.out}
	return err
}
