package dexread

import (
	"encoding/binary"
	"errors"
	"math"
)

var errBadULEB128 = errors.New("truncated or overlong uleb128 value")

//
// ULEB128: seven payload bits per byte, least significant group first,
// high bit set on every byte except the last. DEX only uses it for
// 32-bit quantities, so at most five bytes are meaningful.
//
// https://source.android.com/devices/tech/dalvik/dex-format.html#leb128
//

// decodeULEB128 decodes the value starting at data[0], returning the
// value and the number of bytes consumed. Running off the end of data
// is a bounds panic; callers hand in trusted section bytes.
func decodeULEB128(data []byte) (uint32, int) {
	var result uint32
	var shift uint
	pos := 0
	for {
		b := data[pos]
		pos++
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result, pos
}

// ulebHelper walks a run of back-to-back ULEB128 values (class_data_item
// and friends). Unlike decodeULEB128 it never panics: a truncated or
// overlong value sets err and every later grab returns zero.
type ulebHelper struct {
	data []byte
	err  error
}

func (a *ulebHelper) grabULEB128() uint32 {
	if a.err != nil {
		return 0
	}
	v, size := binary.Uvarint(a.data)
	if size <= 0 || v > math.MaxUint32 {
		a.err = errBadULEB128
		return 0
	}
	a.data = a.data[size:]
	return uint32(v)
}
