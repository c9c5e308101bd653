package dexread

//
// Visitor-driven walk over a DEX file: you pass ReadDEX a visitor object
// and it will invoke interfaces on the visitor for each DEX class and
// DEX method in the DEX file of interest.
//

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"

	"github.com/thanm/go-dex-query/dexapkvisit"
)

// ErrNotDex is returned by ReadDEX when the magic bytes are wrong.
var ErrNotDex = errors.New("not a DEX file")

type dexState struct {
	apk     *string
	dexName string
	file    *DexFile
	visitor dexapkvisit.DexApkVisitor
}

func (state *dexState) errorf(fmtstring string, a ...interface{}) error {
	apkPre := ""
	if state.apk != nil {
		apkPre = fmt.Sprintf("apk %s ", *state.apk)
	}
	return fmt.Errorf("reading %sdex %s: %w", apkPre, state.dexName, fmt.Errorf(fmtstring, a...))
}

// HasDexMagic reports whether b starts with "dex\n", three version
// digits and a NUL. Checking it is up to the caller; New does not.
func HasDexMagic(b []byte) bool {
	if len(b) < 8 || string(b[:4]) != "dex\n" || b[7] != 0 {
		return false
	}
	for _, c := range b[4:7] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ReadDEXFile maps the DEX file at dexFilePath and walks it with visitor.
func ReadDEXFile(dexFilePath string, visitor dexapkvisit.DexApkVisitor, opts ...Option) error {
	state := dexState{dexName: dexFilePath}
	if _, err := os.Stat(dexFilePath); err != nil {
		return state.errorf("os.Stat failed(): %w", err)
	}
	r, err := mmap.Open(dexFilePath)
	if err != nil {
		return state.errorf("unable to map: %w", err)
	}
	defer r.Close()
	return ReadDEX(nil, dexFilePath, io.NewSectionReader(r, 0, int64(r.Len())),
		uint64(r.Len()), visitor, opts...)
}

// Examine the contents of the DEX file that is pointed to by the reader
// 'reader'. In the case that the DEX file is embedded within an APK file,
// 'apk' will point to the APK name (for error reporting purposes).
func ReadDEX(apk *string, dexName string, reader io.Reader, expectedSize uint64,
	visitor dexapkvisit.DexApkVisitor, opts ...Option) error {
	state := dexState{apk: apk, dexName: dexName, visitor: visitor}

	// Read in the whole enchilada
	var b bytes.Buffer
	nread, err := io.Copy(&b, reader)
	if err != nil {
		return state.errorf("%w", err)
	}
	if uint64(nread) != expectedSize {
		return state.errorf("expected %d bytes read %d", expectedSize, nread)
	}
	if !HasDexMagic(b.Bytes()) {
		return state.errorf("%w", ErrNotDex)
	}

	state.file, err = New(b.Bytes(), opts...)
	if err != nil {
		return state.errorf("%w", err)
	}
	if err := Walk(state.file, dexName, visitor); err != nil {
		return state.errorf("%w", err)
	}
	return nil
}

// Walk makes the visitor callbacks for an already decoded file.
func Walk(f *DexFile, dexName string, visitor dexapkvisit.DexApkVisitor) error {
	h := f.Header()

	// Invoke visitor callback
	visitor.VisitDEX(dexName, h.Sha1Sig)

	// Dive into each class
	for cl := range f.classDefs {
		cd := &f.classDefs[cl]
		visitor.Verbose(1, "class %d type idx is %d", cl, cd.ClassIdx)
		if err := examineClass(f, cd, visitor); err != nil {
			return err
		}
	}
	return nil
}

func getClassName(f *DexFile, cd *ClassDefEntry) (string, error) {
	typename, err := f.ClassName(cd)
	if err != nil {
		return "", err
	}
	return PrettyDescriptor(typename), nil
}

func examineClass(f *DexFile, cd *ClassDefEntry, visitor dexapkvisit.DexApkVisitor) error {
	name, err := getClassName(f, cd)
	if err != nil {
		return err
	}
	flags := ResolveClassAccessFlags(cd.AccessFlags)

	data, err := f.ClassData(cd)
	if err != nil {
		return err
	}

	// invoke visitor callback
	visitor.VisitClass(name, flags, data.NumMethods())

	visitor.Verbose(1, "num static fields is %d", len(data.StaticFields))
	visitor.Verbose(1, "num instance fields is %d", len(data.InstanceFields))
	visitor.Verbose(1, "num direct methods is %d", len(data.DirectMethods))
	visitor.Verbose(1, "num virtual methods is %d", len(data.VirtualMethods))

	for _, list := range [][]EncodedMethod{data.DirectMethods, data.VirtualMethods} {
		for i, m := range list {
			visitor.Verbose(1, "method %d idx %d off %d", i, m.MethodIdx, m.CodeOff)
			if err := examineMethod(f, m, visitor); err != nil {
				return err
			}
		}
	}
	return nil
}

func examineMethod(f *DexFile, m EncodedMethod, visitor dexapkvisit.DexApkVisitor) error {
	if err := f.checkIndex("method_ids", m.MethodIdx, len(f.methodIds)); err != nil {
		return err
	}

	// Look up method name from method ID
	name, err := f.String(f.methodIds[m.MethodIdx].NameIdx)
	if err != nil {
		return err
	}

	visitor.VisitMethod(name, uint64(m.MethodIdx), uint64(m.CodeOff))
	return nil
}
