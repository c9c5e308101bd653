package dexread

import (
	"strings"
)

//
// For the rules on how type descriptors are encoded, see
// https://source.android.com/devices/tech/dalvik/dex-format.html#typedescriptor
//
// PrettyDescriptor turns a descriptor into Java source notation, e.g.
// "[Ljava/lang/Object;" becomes "java.lang.Object[]". Anything it does
// not recognize is returned unchanged.
//
func PrettyDescriptor(d string) string {
	// count array dimensions
	dims := 0
	for dims < len(d) && d[dims] == '[' {
		dims++
	}
	if dims == len(d) {
		return d
	}

	var base string
	rest := d[dims:]
	if rest[0] == 'L' {
		// reference
		if !strings.HasSuffix(rest, ";") {
			return d
		}
		base = strings.ReplaceAll(rest[1:len(rest)-1], "/", ".")
	} else {
		if len(rest) != 1 {
			return d
		}
		// primitive
		switch rest[0] {
		case 'B':
			base = "byte"
		case 'C':
			base = "char"
		case 'D':
			base = "double"
		case 'F':
			base = "float"
		case 'I':
			base = "int"
		case 'J':
			base = "long"
		case 'S':
			base = "short"
		case 'Z':
			base = "boolean"
		case 'V':
			base = "void"
		default:
			// something went wrong, punt...
			return d
		}
	}

	return base + strings.Repeat("[]", dims)
}
