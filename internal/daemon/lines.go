package daemon

import (
	"bytes"
	"fmt"

	"golang.org/x/sys/unix"
)

// LineReader reads newline-terminated lines from a descriptor without
// hiding buffered input from the readiness wait: Buffered reports a
// complete line that is already available.
type LineReader struct {
	fd  int
	buf []byte
	eof bool
}

// NewLineReader reads from fd
func NewLineReader(fd int) *LineReader {
	return &LineReader{fd: fd}
}

// Fd returns the descriptor
func (r *LineReader) Fd() int {
	return r.fd
}

// Buffered reports whether Next would return a line without reading
func (r *LineReader) Buffered() bool {
	return bytes.IndexByte(r.buf, '\n') >= 0 || (r.eof && len(r.buf) > 0)
}

// Fill performs one read into the buffer
func (r *LineReader) Fill() error {
	if r.eof {
		return nil
	}
	chunk := make([]byte, 4096)
	for {
		n, err := unix.Read(r.fd, chunk)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return nil
		case err != nil:
			return fmt.Errorf("failed to read control channel: %w", err)
		case n == 0:
			r.eof = true
			return nil
		}
		r.buf = append(r.buf, chunk[:n]...)
		return nil
	}
}

// Next returns the next complete line without its newline. At end of
// input an unterminated remainder is returned as the last line.
func (r *LineReader) Next() (string, bool) {
	if i := bytes.IndexByte(r.buf, '\n'); i >= 0 {
		line := string(r.buf[:i])
		r.buf = r.buf[i+1:]
		return line, true
	}
	if r.eof && len(r.buf) > 0 {
		line := string(r.buf)
		r.buf = nil
		return line, true
	}
	return "", false
}

// Done reports end of input with nothing left to return
func (r *LineReader) Done() bool {
	return r.eof && len(r.buf) == 0
}
