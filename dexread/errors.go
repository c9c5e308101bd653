package dexread

import (
	"fmt"
)

// DecodeReason says why a string_data_item could not be decoded.
type DecodeReason int

const (
	// A 0x00 byte showed up before the declared number of characters.
	EarlyTermination DecodeReason = iota + 1
	// A lead or continuation byte does not fit the MUTF-8 bit patterns.
	MalformedContinuationByte
	// The byte after the last character is not 0x00.
	MissingTerminator
)

func (r DecodeReason) String() string {
	switch r {
	case EarlyTermination:
		return "early termination"
	case MalformedContinuationByte:
		return "malformed continuation byte"
	case MissingTerminator:
		return "missing terminator"
	}
	return fmt.Sprintf("DecodeReason(%d)", int(r))
}

// StringDecodeError is returned when the MUTF-8 payload of a string
// does not match its declared utf16_size. Offset is the position of the
// first payload byte (just past the ULEB128 length prefix).
type StringDecodeError struct {
	Offset         uint32
	ExpectedLength uint32
	Reason         DecodeReason
}

func (e *StringDecodeError) Error() string {
	return fmt.Sprintf("string decode error at offset %#x (expected %d chars): %s",
		e.Offset, e.ExpectedLength, e.Reason)
}

// BoundsError reports an index or offset outside of its target. Index
// checks only happen WithStrict(true); offset lookups that cannot be
// satisfied (type lists, class data) report it in either mode.
type BoundsError struct {
	Section string
	Value   uint64
	Limit   uint64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s: %d out of bounds (limit %d)", e.Section, e.Value, e.Limit)
}
