package dexread

import (
	"encoding/binary"
)

// Cursor reads little-endian values out of an immutable DEX buffer.
// Positions are absolute file offsets. Nothing is checked against the
// buffer length; reading past the end panics.
type Cursor struct {
	buf []byte
	pos uint32
}

func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

func (c *Cursor) Seek(off uint32) {
	c.pos = off
}

func (c *Cursor) Tell() uint32 {
	return c.pos
}

func (c *Cursor) ReadU8() uint8 {
	v := c.buf[c.pos]
	c.pos++
	return v
}

func (c *Cursor) ReadU16() uint16 {
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v
}

func (c *Cursor) ReadU32() uint32 {
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v
}

// AlignUp moves the cursor to the next multiple of unit, if it is not
// already sitting on one.
func (c *Cursor) AlignUp(unit uint32) {
	if r := c.pos % unit; r != 0 {
		c.pos += unit - r
	}
}

// ReadULEB128At decodes a ULEB128 value at off and reports how many
// bytes it took. The cursor position is left alone.
func (c *Cursor) ReadULEB128At(off uint32) (uint32, uint32) {
	v, n := decodeULEB128(c.buf[off:])
	return v, uint32(n)
}

// ReadMUTF8String decodes nchars MUTF-8 characters at off, plus the NUL
// that must follow them, and leaves the cursor just past the NUL.
func (c *Cursor) ReadMUTF8String(nchars, off uint32) (string, error) {
	s, end, err := decodeMUTF8(c.buf, off, nchars)
	if err != nil {
		return "", err
	}
	c.pos = end
	return s, nil
}

// fit clamps count to the number of size-byte items that could follow
// off inside the buffer.
func (c *Cursor) fit(off, count, size uint32) int {
	if uint64(off) >= uint64(len(c.buf)) {
		return 0
	}
	room := (uint64(len(c.buf)) - uint64(off)) / uint64(size)
	if uint64(count) < room {
		return int(count)
	}
	return int(room)
}
