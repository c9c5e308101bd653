package dexread

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thanm/go-dex-query/dexapktest"
)

func TestULEB128RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 300, 1<<31 - 1} {
		enc := dexapktest.AppendULEB128(nil, v)
		got, n := decodeULEB128(enc)
		require.Equal(t, v, got, "value for %d", v)
		require.Equal(t, len(enc), n, "length for %d", v)
	}
}

func TestULEB128KnownEncodings(t *testing.T) {
	tests := []struct {
		raw  []byte
		want uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xac, 0x02}, 300},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x07}, 1<<31 - 1},
	}
	for _, tt := range tests {
		// trailing junk must not be consumed
		got, n := decodeULEB128(append(tt.raw, 0xff))
		require.Equal(t, tt.want, got)
		require.Equal(t, len(tt.raw), n)
	}
}

func TestReadULEB128AtLeavesPosition(t *testing.T) {
	c := NewCursor([]byte{0x11, 0x22, 0xac, 0x02, 0x33})
	c.Seek(1)
	v, n := c.ReadULEB128At(2)
	require.Equal(t, uint32(300), v)
	require.Equal(t, uint32(2), n)
	require.Equal(t, uint32(1), c.Tell())
}

func TestULEBHelperTruncated(t *testing.T) {
	h := ulebHelper{data: []byte{0x05, 0x80}}
	require.Equal(t, uint32(5), h.grabULEB128())
	require.NoError(t, h.err)
	require.Equal(t, uint32(0), h.grabULEB128())
	require.ErrorIs(t, h.err, errBadULEB128)
	require.Equal(t, uint32(0), h.grabULEB128())
}
