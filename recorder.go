package stdoutchan

import (
	"bytes"
	"sync"
)

// Recorder is an io.Writer that captures complete lines for test assertions.
// Pass it to WithWriters in place of a real stream. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	lines   []string
	pending bytes.Buffer
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Write buffers p and records a line for every newline encountered.
// Always succeeds.
func (r *Recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending.Write(p)
	for {
		data := r.pending.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return len(p), nil
		}
		r.lines = append(r.lines, string(data[:i]))
		r.pending.Next(i + 1)
	}
}

// Lines returns a copy of the complete lines recorded so far, without newlines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Len returns the number of complete lines recorded so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}
