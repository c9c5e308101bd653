// Package dexapkvisit defines the callback interface used by
// dexread.ReadDEX, dexread.Walk and apkread.ReadAPK.
package dexapkvisit

//
// Callbacks arrive top-down: one VisitAPK per container (skipped for a
// bare .dex file), then for each DEX file a VisitDEX followed by its
// classes, each class followed by its direct and then virtual methods:
//
//        VisitAPK("mumble.apk")
//          VisitDEX("classes.dex", sha1)
//            VisitClass("foo", ["public"], 1)
//              VisitMethod("foomethod1", 0, 400)
//            VisitClass("bar", ["public", "final"], 2)
//              VisitMethod("barmethod1", 1, 500)
//              VisitMethod("barmethod2", 2, 0)
//          VisitDEX("classes2.dex", sha1)
//           ...
//
// Fields, annotations and code items are decoded by dexread but not
// reported here.
//
type DexApkVisitor interface {
	VisitAPK(apk string)
	VisitDEX(dexname string, sha1signature [20]byte)
	// classname is already prettified ("java.lang.Object"); accessFlags
	// are in dexread.ResolveClassAccessFlags order.
	VisitClass(classname string, accessFlags []string, nmethods uint32)
	// codeOffset is zero for abstract and native methods.
	VisitMethod(methodname string, methodIdx uint64, codeOffset uint64)
	Verbose(vlevel int, s string, a ...interface{})
}
