package request

import "io"

// Cursor feeds a byte slice to the transport in pieces no larger than the
// caller asks for. It backs PUT bodies.
type Cursor struct {
	data      []byte
	remaining int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data, remaining: len(data)}
}

// Read copies min(remaining, len(p)) bytes and advances the cursor.
func (c *Cursor) Read(p []byte) (int, error) {
	if c.remaining == 0 {
		return 0, io.EOF
	}

	off := len(c.data) - c.remaining
	n := copy(p, c.data[off:])
	c.remaining -= n
	return n, nil
}

// Remaining reports how many bytes are still to be read.
func (c *Cursor) Remaining() int {
	return c.remaining
}
