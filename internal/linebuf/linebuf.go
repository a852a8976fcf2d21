// Package linebuf renders values one per line into a reusable byte buffer.
package linebuf

import "fmt"

// maxRetainedCapacity caps the buffer size kept between lines, so a single
// huge line does not pin memory for the rest of the stream's lifetime.
const maxRetainedCapacity = 4096

// Buffer is a reusable line-rendering buffer. The zero value is ready to use.
// Not safe for concurrent use.
type Buffer struct {
	buf []byte
}

// WriteLine renders v followed by a newline and returns the backing bytes.
// The returned slice is valid only until the next WriteLine call.
func (b *Buffer) WriteLine(v any) []byte {
	if cap(b.buf) > maxRetainedCapacity {
		b.buf = nil
	}
	b.buf = fmt.Appendln(b.buf[:0], v)
	return b.buf
}
