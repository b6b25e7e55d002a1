// Package wayland is a wire-level Wayland client covering the objects the
// toplevel monitor needs: wl_display, wl_registry, wl_callback, wl_seat and
// the wlr foreign toplevel management protocol.
package wayland

import (
	"encoding/binary"
	"errors"
)

const (
	wordSize   = 4
	headerSize = 2 * wordSize

	// serverIDStart is the first id the compositor allocates
	serverIDStart = 0xff000000
)

var errTruncated = errors.New("truncated message")

type message struct {
	sender uint32
	opcode uint16
	body   []byte
}

// parseHeader reads the sender id, opcode and total size of a message
func parseHeader(b []byte) (sender uint32, opcode uint16, size int) {
	sender = binary.LittleEndian.Uint32(b[0:])
	sizeOpcode := binary.LittleEndian.Uint32(b[4:])
	return sender, uint16(sizeOpcode & 0xffff), int(sizeOpcode >> 16)
}

func padded(n int) int {
	return (n + wordSize - 1) &^ (wordSize - 1)
}

type decoder struct {
	b   []byte
	err error
}

func (d *decoder) uint() uint32 {
	if d.err != nil {
		return 0
	}
	if len(d.b) < wordSize {
		d.err = errTruncated
		return 0
	}
	v := binary.LittleEndian.Uint32(d.b)
	d.b = d.b[wordSize:]
	return v
}

// array returns the raw bytes of an array argument
func (d *decoder) array() []byte {
	n := int(d.uint())
	if d.err != nil {
		return nil
	}
	if len(d.b) < padded(n) {
		d.err = errTruncated
		return nil
	}
	v := d.b[:n]
	d.b = d.b[padded(n):]
	return v
}

// string returns a string argument without its NUL terminator. A null
// string decodes as "".
func (d *decoder) string() string {
	v := d.array()
	if len(v) == 0 {
		return ""
	}
	return string(v[:len(v)-1])
}

// uints decodes an array of 32-bit values
func (d *decoder) uints() []uint32 {
	raw := d.array()
	values := make([]uint32, 0, len(raw)/wordSize)
	for len(raw) >= wordSize {
		values = append(values, binary.LittleEndian.Uint32(raw))
		raw = raw[wordSize:]
	}
	return values
}

type encoder struct {
	b []byte
}

// newMessage starts a message from object with the given opcode
func newMessage(object uint32, opcode uint16) *encoder {
	e := &encoder{b: make([]byte, headerSize, 32)}
	binary.LittleEndian.PutUint32(e.b[0:], object)
	binary.LittleEndian.PutUint16(e.b[4:], opcode)
	return e
}

func (e *encoder) uint(v uint32) *encoder {
	e.b = binary.LittleEndian.AppendUint32(e.b, v)
	return e
}

func (e *encoder) string(s string) *encoder {
	n := len(s) + 1
	e.b = binary.LittleEndian.AppendUint32(e.b, uint32(n))
	e.b = append(e.b, s...)
	for i := len(s); i < padded(n); i++ {
		e.b = append(e.b, 0)
	}
	return e
}

func (e *encoder) array(raw []byte) *encoder {
	e.b = binary.LittleEndian.AppendUint32(e.b, uint32(len(raw)))
	e.b = append(e.b, raw...)
	for i := len(raw); i < padded(len(raw)); i++ {
		e.b = append(e.b, 0)
	}
	return e
}

// bytes finalizes the size field and returns the encoded message
func (e *encoder) bytes() []byte {
	binary.LittleEndian.PutUint16(e.b[6:], uint16(len(e.b)))
	return e.b
}
