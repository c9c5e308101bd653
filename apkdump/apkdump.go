package apkdump

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

//
// This implementation of the DexApkVisitor interface dumps
// out information about the APK/DEX contents to W (normally stdout).
// Verbose output goes to Log.
//
type DexApkDumper struct {
	W      io.Writer
	Vlevel int
	Log    *zap.SugaredLogger
}

func (d *DexApkDumper) VisitAPK(apk string) {
	fmt.Fprintf(d.W, "APK %s\n", apk)
}

func (d *DexApkDumper) VisitDEX(dexname string, sha1signature [20]byte) {
	fmt.Fprintf(d.W, " DEX %s sha1 %x\n", dexname, sha1signature)
}

func (d *DexApkDumper) VisitClass(classname string, accessFlags []string, nmethods uint32) {
	if len(accessFlags) == 0 {
		fmt.Fprintf(d.W, "  class %s methods: %d\n", classname, nmethods)
		return
	}
	fmt.Fprintf(d.W, "  class %s %s methods: %d\n", strings.Join(accessFlags, " "), classname, nmethods)
}

func (d *DexApkDumper) VisitMethod(methodname string, methodIdx uint64, codeOffset uint64) {
	fmt.Fprintf(d.W, "   method id %d name '%s' code offset %d\n",
		methodIdx, methodname, codeOffset)
}

func (d *DexApkDumper) Verbose(vlevel int, s string, a ...interface{}) {
	if d.Vlevel >= vlevel && d.Log != nil {
		d.Log.Debugf(s, a...)
	}
}
