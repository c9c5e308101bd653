package dexapktest

// FibonacciDex mirrors a small hand-written class:
//
//	public final class fibonacci implements Runnable {
//	    fibonacci() {}
//	    static int ifibonacci(int n) { ... }
//	    public static void main(String[] args) { ... }
//	    public void run() { ... }
//	}
//
// Protos 1 and 3 have identical parameter lists and share one type_list.
func FibonacciDex() *Builder {
	return &Builder{
		Strings: []string{
			"<init>",               // 0
			"I",                    // 1
			"II",                   // 2
			"Lfibonacci;",          // 3
			"Ljava/lang/Object;",   // 4
			"V",                    // 5
			"ifibonacci",           // 6
			"main",                 // 7
			"[Ljava/lang/String;",  // 8
			"fibonacci.java",       // 9
			"VL",                   // 10
			"Ljava/lang/Runnable;", // 11
			"run",                  // 12
		},
		Types: []uint32{1, 3, 4, 5, 8, 11},
		Protos: []Proto{
			{ShortyIdx: 5, ReturnTypeIdx: 3},
			{ShortyIdx: 2, ReturnTypeIdx: 0, Params: []uint16{0}},
			{ShortyIdx: 10, ReturnTypeIdx: 3, Params: []uint16{4}},
			{ShortyIdx: 2, ReturnTypeIdx: 0, Params: []uint16{0}},
		},
		Methods: []Method{
			{TypeIdx: 1, ProtoIdx: 0, NameIdx: 0},
			{TypeIdx: 1, ProtoIdx: 1, NameIdx: 6},
			{TypeIdx: 1, ProtoIdx: 2, NameIdx: 7},
			{TypeIdx: 2, ProtoIdx: 0, NameIdx: 0},
			{TypeIdx: 1, ProtoIdx: 0, NameIdx: 12},
		},
		Classes: []Class{{
			ClassIdx:      1,
			AccessFlags:   0x1 | 0x10,
			SuperclassIdx: 2,
			Interfaces:    []uint16{5},
			SourceFileIdx: 9,
			Data: &ClassData{
				DirectMethods: []MethodDef{
					{Idx: 0, Flags: 0x10000, CodeOff: 256},
					{Idx: 1, Flags: 0x8, CodeOff: 288},
					{Idx: 2, Flags: 0x9, CodeOff: 320},
				},
				VirtualMethods: []MethodDef{
					{Idx: 4, Flags: 0x1, CodeOff: 352},
				},
			},
		}},
	}
}
