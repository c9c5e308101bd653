package dexapktest

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"unicode/utf16"
)

const (
	headerSize = 0x70
	noIndex    = 0xffffffff
)

type Proto struct {
	ShortyIdx     uint32
	ReturnTypeIdx uint32
	Params        []uint16
}

type Method struct {
	TypeIdx  uint16
	ProtoIdx uint16
	NameIdx  uint32
}

type Field struct {
	Idx   uint32
	Flags uint32
}

type MethodDef struct {
	Idx     uint32
	Flags   uint32
	CodeOff uint32
}

type ClassData struct {
	StaticFields   []Field
	InstanceFields []Field
	DirectMethods  []MethodDef
	VirtualMethods []MethodDef
}

// Class describes one class_def_item. A zero SuperclassIdx or
// SourceFileIdx really means index 0; use NoSuper/NoSource for absent.
type Class struct {
	ClassIdx      uint32
	AccessFlags   uint32
	SuperclassIdx uint32
	NoSuper       bool
	Interfaces    []uint16
	SourceFileIdx uint32
	NoSource      bool
	Data          *ClassData
}

//
// Builder lays out a DEX image: header, id arrays, then a data area
// holding type lists, string data, class data and finally the map
// list. Identical parameter/interface lists are emitted once and
// shared by offset, the way dx/d8 do it.
//
type Builder struct {
	Strings []string
	Types   []uint32
	Protos  []Proto
	Methods []Method
	Classes []Class

	// RawStrings replaces the encoded string_data_item for an index.
	RawStrings map[int][]byte
	// Version defaults to "035".
	Version string
	// OmitMap leaves map_off at zero.
	OmitMap bool
}

// MinimalDex is one string "foo", one type, one proto, one method named
// "bar" and one class.
func MinimalDex() *Builder {
	return &Builder{
		Strings: []string{"bar", "foo"},
		Types:   []uint32{1},
		Protos:  []Proto{{ShortyIdx: 1, ReturnTypeIdx: 0}},
		Methods: []Method{{TypeIdx: 0, ProtoIdx: 0, NameIdx: 0}},
		Classes: []Class{{ClassIdx: 0, AccessFlags: 0x1, NoSuper: true, NoSource: true}},
	}
}

type mapItem struct {
	typ       uint16
	size, off uint32
}

func (b *Builder) Build() []byte {
	le := binary.LittleEndian

	stringIdsOff := uint32(headerSize)
	typeIdsOff := stringIdsOff + 4*uint32(len(b.Strings))
	protoIdsOff := typeIdsOff + 4*uint32(len(b.Types))
	methodIdsOff := protoIdsOff + 12*uint32(len(b.Protos))
	classDefsOff := methodIdsOff + 8*uint32(len(b.Methods))
	dataOff := classDefsOff + 32*uint32(len(b.Classes))

	buf := make([]byte, dataOff)

	// type lists
	listOffs := map[string]uint32{}
	var firstList uint32
	addList := func(l []uint16) uint32 {
		if len(l) == 0 {
			return 0
		}
		key := fmt.Sprint(l)
		if off, ok := listOffs[key]; ok {
			return off
		}
		buf = align4(buf)
		off := uint32(len(buf))
		if len(listOffs) == 0 {
			firstList = off
		}
		buf = le.AppendUint32(buf, uint32(len(l)))
		for _, t := range l {
			buf = le.AppendUint16(buf, t)
		}
		listOffs[key] = off
		return off
	}
	paramOffs := make([]uint32, len(b.Protos))
	for i, p := range b.Protos {
		paramOffs[i] = addList(p.Params)
	}
	ifaceOffs := make([]uint32, len(b.Classes))
	for i, c := range b.Classes {
		ifaceOffs[i] = addList(c.Interfaces)
	}
	buf = align4(buf)

	// string data
	stringDataOff := uint32(len(buf))
	strOffs := make([]uint32, len(b.Strings))
	for i, s := range b.Strings {
		strOffs[i] = uint32(len(buf))
		if raw, ok := b.RawStrings[i]; ok {
			buf = append(buf, raw...)
			continue
		}
		enc, n := EncodeMUTF8(s)
		buf = AppendULEB128(buf, n)
		buf = append(buf, enc...)
		buf = append(buf, 0)
	}

	// class data
	classDataOff := uint32(len(buf))
	dataOffs := make([]uint32, len(b.Classes))
	numData := uint32(0)
	for i, c := range b.Classes {
		if c.Data == nil {
			continue
		}
		numData++
		dataOffs[i] = uint32(len(buf))
		buf = appendClassData(buf, c.Data)
	}

	// id arrays
	for i, off := range strOffs {
		le.PutUint32(buf[stringIdsOff+4*uint32(i):], off)
	}
	for i, t := range b.Types {
		le.PutUint32(buf[typeIdsOff+4*uint32(i):], t)
	}
	for i, p := range b.Protos {
		o := protoIdsOff + 12*uint32(i)
		le.PutUint32(buf[o:], p.ShortyIdx)
		le.PutUint32(buf[o+4:], p.ReturnTypeIdx)
		le.PutUint32(buf[o+8:], paramOffs[i])
	}
	for i, m := range b.Methods {
		o := methodIdsOff + 8*uint32(i)
		le.PutUint16(buf[o:], m.TypeIdx)
		le.PutUint16(buf[o+2:], m.ProtoIdx)
		le.PutUint32(buf[o+4:], m.NameIdx)
	}
	for i, c := range b.Classes {
		o := classDefsOff + 32*uint32(i)
		super, source := c.SuperclassIdx, c.SourceFileIdx
		if c.NoSuper {
			super = noIndex
		}
		if c.NoSource {
			source = noIndex
		}
		for j, v := range []uint32{c.ClassIdx, c.AccessFlags, super, ifaceOffs[i], source, 0, dataOffs[i], 0} {
			le.PutUint32(buf[o+4*uint32(j):], v)
		}
	}

	// map list
	var mapOff uint32
	if !b.OmitMap {
		buf = align4(buf)
		mapOff = uint32(len(buf))
		items := []mapItem{{0x0000, 1, 0}}
		add := func(typ uint16, size, off uint32) {
			if size != 0 {
				items = append(items, mapItem{typ, size, off})
			}
		}
		add(0x0001, uint32(len(b.Strings)), stringIdsOff)
		add(0x0002, uint32(len(b.Types)), typeIdsOff)
		add(0x0003, uint32(len(b.Protos)), protoIdsOff)
		add(0x0005, uint32(len(b.Methods)), methodIdsOff)
		add(0x0006, uint32(len(b.Classes)), classDefsOff)
		add(0x1001, uint32(len(listOffs)), firstList)
		add(0x2002, uint32(len(b.Strings)), stringDataOff)
		add(0x2000, numData, classDataOff)
		add(0x1000, 1, mapOff)
		buf = le.AppendUint32(buf, uint32(len(items)))
		for _, it := range items {
			buf = le.AppendUint16(buf, it.typ)
			buf = le.AppendUint16(buf, 0)
			buf = le.AppendUint32(buf, it.size)
			buf = le.AppendUint32(buf, it.off)
		}
	}

	// header
	version := b.Version
	if version == "" {
		version = "035"
	}
	copy(buf, "dex\n"+version+"\x00")
	hdr := []uint32{
		uint32(len(buf)), headerSize, 0x12345678, 0, 0, mapOff,
		uint32(len(b.Strings)), offIf(len(b.Strings), stringIdsOff),
		uint32(len(b.Types)), offIf(len(b.Types), typeIdsOff),
		uint32(len(b.Protos)), offIf(len(b.Protos), protoIdsOff),
		0, 0,
		uint32(len(b.Methods)), offIf(len(b.Methods), methodIdsOff),
		uint32(len(b.Classes)), offIf(len(b.Classes), classDefsOff),
		uint32(len(buf)) - dataOff, dataOff,
	}
	for i, v := range hdr {
		le.PutUint32(buf[32+4*i:], v)
	}
	sig := sha1.Sum(buf[32:])
	copy(buf[12:32], sig[:])
	le.PutUint32(buf[8:], adler32.Checksum(buf[12:]))
	return buf
}

func offIf(n int, off uint32) uint32 {
	if n == 0 {
		return 0
	}
	return off
}

func align4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

func appendClassData(buf []byte, cd *ClassData) []byte {
	buf = AppendULEB128(buf, uint32(len(cd.StaticFields)))
	buf = AppendULEB128(buf, uint32(len(cd.InstanceFields)))
	buf = AppendULEB128(buf, uint32(len(cd.DirectMethods)))
	buf = AppendULEB128(buf, uint32(len(cd.VirtualMethods)))
	for _, fields := range [][]Field{cd.StaticFields, cd.InstanceFields} {
		prev := uint32(0)
		for _, f := range fields {
			buf = AppendULEB128(buf, f.Idx-prev)
			buf = AppendULEB128(buf, f.Flags)
			prev = f.Idx
		}
	}
	for _, methods := range [][]MethodDef{cd.DirectMethods, cd.VirtualMethods} {
		prev := uint32(0)
		for _, m := range methods {
			buf = AppendULEB128(buf, m.Idx-prev)
			buf = AppendULEB128(buf, m.Flags)
			buf = AppendULEB128(buf, m.CodeOff)
			prev = m.Idx
		}
	}
	return buf
}

// AppendULEB128 appends the ULEB128 encoding of v.
func AppendULEB128(dst []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}

// EncodeMUTF8 returns the MUTF-8 bytes of s, without the trailing NUL,
// and its length in UTF-16 code units.
func EncodeMUTF8(s string) ([]byte, uint32) {
	units := utf16.Encode([]rune(s))
	var out []byte
	for _, u := range units {
		switch {
		case u != 0 && u < 0x80:
			out = append(out, byte(u))
		case u < 0x800:
			out = append(out, 0xc0|byte(u>>6), 0x80|byte(u&0x3f))
		default:
			out = append(out, 0xe0|byte(u>>12), 0x80|byte((u>>6)&0x3f), 0x80|byte(u&0x3f))
		}
	}
	return out, uint32(len(units))
}
