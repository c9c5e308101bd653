package dexread

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorReads(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x34, 0x12, 0x78, 0x56, 0x34, 0x12, 0xff})
	require.Equal(t, uint8(0x01), c.ReadU8())
	require.Equal(t, uint16(0x1234), c.ReadU16())
	require.Equal(t, uint32(0x12345678), c.ReadU32())
	require.Equal(t, uint32(7), c.Tell())

	c.Seek(3)
	require.Equal(t, uint16(0x5678), c.ReadU16())
}

func TestCursorAlignUp(t *testing.T) {
	c := NewCursor(nil)
	for _, tt := range []struct{ from, want uint32 }{
		{0, 0}, {1, 4}, {3, 4}, {4, 4}, {5, 8}, {7, 8},
	} {
		c.Seek(tt.from)
		c.AlignUp(4)
		require.Equal(t, tt.want, c.Tell(), "from %d", tt.from)
	}
}

func TestCursorPastEndPanics(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02})
	c.Seek(1)
	require.Panics(t, func() { c.ReadU32() })
}

func TestCursorFit(t *testing.T) {
	c := NewCursor(make([]byte, 100))
	require.Equal(t, 3, c.fit(10, 3, 8))
	require.Equal(t, 11, c.fit(10, 0xffffffff, 8))
	require.Equal(t, 0, c.fit(100, 5, 4))
	require.Equal(t, 0, c.fit(0xffffffff, 5, 4))
}
