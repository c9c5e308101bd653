package dexread

// Class access flags.
// https://source.android.com/devices/tech/dalvik/dex-format.html#access-flags
const (
	AccPublic     = 0x1
	AccPrivate    = 0x2
	AccProtected  = 0x4
	AccStatic     = 0x8
	AccFinal      = 0x10
	AccInterface  = 0x200
	AccAbstract   = 0x400
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
)

// Order matters: names come out in this order, not bit order.
var classAccessFlags = []struct {
	bit  uint32
	name string
}{
	{AccPublic, "public"},
	{AccPrivate, "private"},
	{AccProtected, "protected"},
	{AccStatic, "static"},
	{AccFinal, "final"},
	{AccInterface, "interface"},
	{AccAbstract, "abstract"},
	{AccSynthetic, "synthetic"},
	{AccAnnotation, "annotation"},
	{AccEnum, "enum"},
}

// ResolveClassAccessFlags returns the modifier names whose bits are set
// in flags. Unknown bits are ignored.
func ResolveClassAccessFlags(flags uint32) []string {
	ret := []string{}
	for _, f := range classAccessFlags {
		if flags&f.bit != 0 {
			ret = append(ret, f.name)
		}
	}
	return ret
}
