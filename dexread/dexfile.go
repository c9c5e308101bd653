package dexread

//
// Package dexread decodes the structural metadata of an Android DEX
// file. See:
//
//   https://source.android.com/devices/tech/dalvik/dex-format.html
//
// for a specification of the DEX file format.
//
// New decodes the header, the map list, the fixed id arrays and the
// type_list section of an in-memory classes.dex image into a DexFile;
// strings are decoded on demand. A DexFile is never modified after New
// returns and may be queried from any number of goroutines.
//

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"iter"

	"go.uber.org/zap"
)

type DexFile struct {
	buf       []byte
	opts      options
	log       *zap.Logger
	header    Header
	mapList   *MapList
	typeIds   []TypeIdEntry
	protoIds  []ProtoIdEntry
	methodIds []MethodIdEntry
	classDefs []ClassDefEntry
	strings   *StringTable
	typeLists *TypeListTable
}

// MethodSignature is one method_id_item with every reference resolved
// to descriptor strings.
type MethodSignature struct {
	ClassName  string
	ReturnType string
	MethodName string
	ParamTypes []string
}

// New decodes buf, which must hold exactly one DEX file. buf is
// retained and must not be modified afterwards.
func New(buf []byte, opts ...Option) (*DexFile, error) {
	f := &DexFile{buf: buf, opts: defaultOptions()}
	for _, o := range opts {
		o(&f.opts)
	}
	f.log = f.opts.logger

	// Populate the header file struct
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &f.header); err != nil {
		return nil, fmt.Errorf("unable to decode DEX header: %w", err)
	}
	h := &f.header
	f.log.Debug("decoded header",
		zap.String("version", h.Version()),
		zap.Uint32("file_size", h.FileSize),
		zap.Uint32("map_off", h.MapOff))

	if f.opts.strict {
		if err := checkLayout(h, buf); err != nil {
			return nil, err
		}
	}

	c := NewCursor(buf)
	f.mapList = unpackMapList(c, h.MapOff)
	f.log.Debug("decoded section", zap.String("section", "map_list"),
		zap.Int("count", len(f.mapList.entries)), zap.Uint32("offset", h.MapOff))

	f.typeIds = unpackRecords(c, h.TypeIdsOff, h.TypeIdsSize, typeIdItemSize, readTypeId)
	f.traceSection("type_ids", h.TypeIdsSize, h.TypeIdsOff)
	f.protoIds = unpackRecords(c, h.ProtoIdsOff, h.ProtoIdsSize, protoIdItemSize, readProtoId)
	f.traceSection("proto_ids", h.ProtoIdsSize, h.ProtoIdsOff)
	f.methodIds = unpackRecords(c, h.MethodIdsOff, h.MethodIdsSize, methodIdItemSize, readMethodId)
	f.traceSection("method_ids", h.MethodIdsSize, h.MethodIdsOff)
	f.classDefs = unpackRecords(c, h.ClassDefsOff, h.ClassDefsSize, dexClassHeaderSize, readClassDef)
	f.traceSection("class_defs", h.ClassDefsSize, h.ClassDefsOff)
	offsets := unpackRecords(c, h.StringIdsOff, h.StringIdsSize, stringIdItemSize, readU32)
	f.strings = newStringTable(buf, offsets, f.opts.cacheStrings)
	f.traceSection("string_ids", h.StringIdsSize, h.StringIdsOff)

	// The type_list section has no header slot; only the map knows where
	// it lives.
	tl, _ := f.mapList.Lookup(TypeTypeList)
	if f.opts.strict {
		if err := checkTypeListSection(buf, tl.Offset, tl.Size); err != nil {
			return nil, err
		}
	}
	f.typeLists = unpackTypeLists(c, tl.Offset, tl.Size)
	f.traceSection("type_lists", tl.Size, tl.Offset)

	if f.opts.strict {
		if err := f.checkReferences(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *DexFile) traceSection(name string, count, off uint32) {
	f.log.Debug("decoded section", zap.String("section", name),
		zap.Uint32("count", count), zap.Uint32("offset", off))
}

func (f *DexFile) Header() Header {
	return f.header
}

func (f *DexFile) MapList() *MapList {
	return f.mapList
}

func (f *DexFile) Strings() *StringTable {
	return f.strings
}

func (f *DexFile) TypeLists() *TypeListTable {
	return f.typeLists
}

func (f *DexFile) TypeIds() []TypeIdEntry {
	return f.typeIds
}

func (f *DexFile) ProtoIds() []ProtoIdEntry {
	return f.protoIds
}

func (f *DexFile) MethodIds() []MethodIdEntry {
	return f.methodIds
}

func (f *DexFile) ClassDefs() []ClassDefEntry {
	return f.classDefs
}

// checkIndex is a no-op unless the file was opened in strict mode.
func (f *DexFile) checkIndex(section string, idx uint32, n int) error {
	if f.opts.strict && uint64(idx) >= uint64(n) {
		return &BoundsError{Section: section, Value: uint64(idx), Limit: uint64(n)}
	}
	return nil
}

// StringOffset returns the string_data_off of string idx.
func (f *DexFile) StringOffset(idx uint32) (uint32, error) {
	if err := f.checkIndex("string_ids", idx, f.strings.Len()); err != nil {
		return 0, err
	}
	return f.strings.Offset(idx), nil
}

func (f *DexFile) String(idx uint32) (string, error) {
	if err := f.checkIndex("string_ids", idx, f.strings.Len()); err != nil {
		return "", err
	}
	return f.strings.Get(idx)
}

// TypeString returns the descriptor of type idx, e.g. "Ljava/lang/String;".
func (f *DexFile) TypeString(typeIdx uint32) (string, error) {
	if err := f.checkIndex("type_ids", typeIdx, len(f.typeIds)); err != nil {
		return "", err
	}
	return f.String(f.typeIds[typeIdx].DescriptorIdx)
}

// TypeListStringsByOffset resolves the type_list at off to descriptors.
// Offset zero is the empty list. Each call builds a fresh slice.
func (f *DexFile) TypeListStringsByOffset(off uint32) ([]string, error) {
	if off == 0 {
		return []string{}, nil
	}
	tl, ok := f.typeLists.Lookup(off)
	if !ok {
		return nil, &BoundsError{Section: "type_list offset", Value: uint64(off), Limit: uint64(len(f.buf))}
	}
	ret := make([]string, len(tl.TypeIdxs))
	for i, ti := range tl.TypeIdxs {
		s, err := f.TypeString(uint32(ti))
		if err != nil {
			return nil, err
		}
		ret[i] = s
	}
	return ret, nil
}

func (f *DexFile) ResolveClassAccessFlags(flags uint32) []string {
	return ResolveClassAccessFlags(flags)
}

// MethodSignature resolves method_ids[idx].
func (f *DexFile) MethodSignature(idx uint32) (MethodSignature, error) {
	if err := f.checkIndex("method_ids", idx, len(f.methodIds)); err != nil {
		return MethodSignature{}, err
	}
	m := f.methodIds[idx]
	if err := f.checkIndex("proto_ids", uint32(m.ProtoIdx), len(f.protoIds)); err != nil {
		return MethodSignature{}, err
	}
	p := f.protoIds[m.ProtoIdx]

	var sig MethodSignature
	var err error
	if sig.ClassName, err = f.TypeString(uint32(m.TypeIdx)); err != nil {
		return MethodSignature{}, err
	}
	if sig.ReturnType, err = f.TypeString(p.ReturnTypeIdx); err != nil {
		return MethodSignature{}, err
	}
	if sig.MethodName, err = f.String(m.NameIdx); err != nil {
		return MethodSignature{}, err
	}
	if sig.ParamTypes, err = f.TypeListStringsByOffset(p.ParametersOff); err != nil {
		return MethodSignature{}, err
	}
	return sig, nil
}

// MethodSignatureParts yields every method_id_item in declaration order.
// Each range over the result starts again from the first method. On
// error the failing method is yielded with the error and iteration stops.
func (f *DexFile) MethodSignatureParts() iter.Seq2[MethodSignature, error] {
	return func(yield func(MethodSignature, error) bool) {
		for i := range f.methodIds {
			sig, err := f.MethodSignature(uint32(i))
			if !yield(sig, err) || err != nil {
				return
			}
		}
	}
}

// MethodSignatures collects MethodSignatureParts.
func (f *DexFile) MethodSignatures() ([]MethodSignature, error) {
	ret := make([]MethodSignature, 0, len(f.methodIds))
	for sig, err := range f.MethodSignatureParts() {
		if err != nil {
			return nil, err
		}
		ret = append(ret, sig)
	}
	return ret, nil
}
