package dexread

import (
	"unicode/utf16"
)

//
// DEX file strings use a somewhat peculiar "Modified" UTF-8 encoding, details
// in https://source.android.com/devices/tech/dalvik/dex-format.html#mutf-8
//
// Each decoded "character" is one UTF-16 code unit, which is what the
// utf16_size prefix counts. Supplementary characters arrive as two
// three-byte surrogates and are paired up when the Go string is built.
//

// decodeMUTF8 decodes nchars code units starting at buf[off] and checks
// the trailing NUL. It returns the string and the offset just past the
// terminator.
func decodeMUTF8(buf []byte, off, nchars uint32) (string, uint32, error) {
	fail := func(r DecodeReason) (string, uint32, error) {
		return "", 0, &StringDecodeError{Offset: off, ExpectedLength: nchars, Reason: r}
	}

	// Reading past the end of buf is reported as a decode failure rather
	// than a panic, since a truncated string is the common case here.
	n := uint64(len(buf))
	pos := uint64(off)
	cont := func() (uint16, DecodeReason) {
		if pos >= n {
			return 0, EarlyTermination
		}
		b := buf[pos]
		pos++
		if b&0xc0 != 0x80 {
			return 0, MalformedContinuationByte
		}
		return uint16(b & 0x3f), 0
	}

	// nchars comes from the file; every unit takes at least one byte.
	capacity := uint64(nchars)
	if pos >= n {
		capacity = 0
	} else if rest := n - pos; capacity > rest {
		capacity = rest
	}
	units := make([]uint16, 0, capacity)
	for i := uint32(0); i < nchars; i++ {
		if pos >= n {
			return fail(EarlyTermination)
		}
		a := buf[pos]
		pos++
		switch {
		case a == 0:
			return fail(EarlyTermination)
		case a < 0x80:
			units = append(units, uint16(a))
		case a&0xe0 == 0xc0:
			b, r := cont()
			if r != 0 {
				return fail(r)
			}
			units = append(units, uint16(a&0x1f)<<6|b)
		case a&0xf0 == 0xe0:
			b, r := cont()
			if r != 0 {
				return fail(r)
			}
			c, r := cont()
			if r != 0 {
				return fail(r)
			}
			units = append(units, uint16(a&0x0f)<<12|b<<6|c)
		default:
			// stray continuation byte or a four-byte lead
			return fail(MalformedContinuationByte)
		}
	}

	if pos >= n || buf[pos] != 0 {
		return fail(MissingTerminator)
	}
	pos++

	return string(utf16.Decode(units)), uint32(pos), nil
}
