package dexread

import (
	"sync"
)

// StringTable resolves string_ids entries to their string_data_item
// contents. Decoding happens on first access; when caching is on each
// index is decoded at most once, even across goroutines.
type StringTable struct {
	buf     []byte
	offsets []uint32
	slots   []stringSlot
}

type stringSlot struct {
	once sync.Once
	s    string
	err  error
}

func newStringTable(buf []byte, offsets []uint32, cache bool) *StringTable {
	st := &StringTable{buf: buf, offsets: offsets}
	if cache {
		st.slots = make([]stringSlot, len(offsets))
	}
	return st
}

func (st *StringTable) Len() int {
	return len(st.offsets)
}

// Offset returns the string_data_off stored for string i.
func (st *StringTable) Offset(i uint32) uint32 {
	return st.offsets[i]
}

func (st *StringTable) Get(i uint32) (string, error) {
	if st.slots == nil {
		return st.decode(i)
	}
	slot := &st.slots[i]
	slot.once.Do(func() {
		slot.s, slot.err = st.decode(i)
	})
	return slot.s, slot.err
}

// string_data_item: uleb128 utf16_size, then MUTF-8 bytes, then NUL.
func (st *StringTable) decode(i uint32) (string, error) {
	c := NewCursor(st.buf)
	off := st.offsets[i]
	sl, n := c.ReadULEB128At(off)
	return c.ReadMUTF8String(sl, off+n)
}
