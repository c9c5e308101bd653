package apkdump

import (
	"fmt"
	"io"
	"strings"

	"github.com/thanm/go-dex-query/apkread"
	"github.com/thanm/go-dex-query/dexread"
)

// DumpKind selects what Dump prints.
type DumpKind int

const (
	DumpSummary DumpKind = iota
	DumpMethods
	DumpStrings
	DumpClasses
)

var dumpKindNames = []string{
	DumpSummary: "summary",
	DumpMethods: "methods",
	DumpStrings: "strings",
	DumpClasses: "classes",
}

func (k DumpKind) String() string {
	if k >= 0 && int(k) < len(dumpKindNames) {
		return dumpKindNames[k]
	}
	return fmt.Sprintf("DumpKind(%d)", int(k))
}

// ParseDumpKind maps a name such as "methods" to its DumpKind.
func ParseDumpKind(s string) (DumpKind, error) {
	for k, n := range dumpKindNames {
		if n == s {
			return DumpKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown dump kind %q (want one of: %s)", s, strings.Join(dumpKindNames, ", "))
}

// Dump writes one report section per DEX file in a.
func Dump(w io.Writer, kind DumpKind, a *apkread.Archive) error {
	for _, d := range a.Dexes {
		var err error
		switch kind {
		case DumpSummary:
			err = dumpSummary(w, d)
		case DumpMethods:
			err = dumpMethods(w, d)
		case DumpStrings:
			err = dumpStrings(w, d)
		case DumpClasses:
			err = dumpClasses(w, d)
		default:
			return fmt.Errorf("unknown dump kind %v", kind)
		}
		if err != nil {
			return fmt.Errorf("dumping %s: %w", d.Name, err)
		}
	}
	return nil
}

func dumpSummary(w io.Writer, d apkread.Dex) error {
	h := d.File.Header()
	fmt.Fprintf(w, "DEX %s version %s size %d sha1 %x\n", d.Name, h.Version(), h.FileSize, h.Sha1Sig)
	fmt.Fprintf(w, "  strings: %d types: %d protos: %d fields: %d methods: %d classes: %d\n",
		h.StringIdsSize, h.TypeIdsSize, h.ProtoIdsSize, h.FieldIdsSize, h.MethodIdsSize, h.ClassDefsSize)
	for _, e := range d.File.MapList().Entries() {
		fmt.Fprintf(w, "  %-28s count %6d offset %#08x\n", dexread.MapTypeName(e.Type), e.Size, e.Offset)
	}
	return nil
}

func dumpMethods(w io.Writer, d apkread.Dex) error {
	fmt.Fprintf(w, "DEX %s\n", d.Name)
	for sig, err := range d.File.MethodSignatureParts() {
		if err != nil {
			return err
		}
		params := make([]string, len(sig.ParamTypes))
		for i, p := range sig.ParamTypes {
			params[i] = dexread.PrettyDescriptor(p)
		}
		fmt.Fprintf(w, "  %s %s.%s(%s)\n",
			dexread.PrettyDescriptor(sig.ReturnType),
			dexread.PrettyDescriptor(sig.ClassName),
			sig.MethodName,
			strings.Join(params, ", "))
	}
	return nil
}

func dumpStrings(w io.Writer, d apkread.Dex) error {
	fmt.Fprintf(w, "DEX %s\n", d.Name)
	for i := 0; i < d.File.Strings().Len(); i++ {
		s, err := d.File.String(uint32(i))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %d: %q\n", i, s)
	}
	return nil
}

func dumpClasses(w io.Writer, d apkread.Dex) error {
	fmt.Fprintf(w, "DEX %s\n", d.Name)
	f := d.File
	for i := range f.ClassDefs() {
		cd := &f.ClassDefs()[i]
		name, err := f.ClassName(cd)
		if err != nil {
			return err
		}
		line := dexread.PrettyDescriptor(name)
		if flags := f.ResolveClassAccessFlags(cd.AccessFlags); len(flags) > 0 {
			line = strings.Join(flags, " ") + " " + line
		}
		super, ok, err := f.SuperclassName(cd)
		if err != nil {
			return err
		}
		if ok {
			line += " extends " + dexread.PrettyDescriptor(super)
		}
		ifaces, err := f.Interfaces(cd)
		if err != nil {
			return err
		}
		if len(ifaces) > 0 {
			for j := range ifaces {
				ifaces[j] = dexread.PrettyDescriptor(ifaces[j])
			}
			line += " implements " + strings.Join(ifaces, ", ")
		}
		if src, ok, err := f.SourceFile(cd); err != nil {
			return err
		} else if ok {
			line += " (" + src + ")"
		}
		fmt.Fprintf(w, "  %s\n", line)
	}
	return nil
}

// Walk drives a visitor such as DexApkDumper over every DEX file in a.
// A bare .dex archive gets no VisitAPK.
func Walk(a *apkread.Archive, d *DexApkDumper) error {
	if !a.BareDex {
		d.VisitAPK(a.Path)
	}
	for _, dex := range a.Dexes {
		if err := dexread.Walk(dex.File, dex.Name, d); err != nil {
			return fmt.Errorf("walking %s: %w", dex.Name, err)
		}
	}
	return nil
}
