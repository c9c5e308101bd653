package dexread

import (
	"encoding/binary"
	"fmt"
)

//
// Strict-mode validation. None of this runs by default; a DEX file
// produced by d8/dx is trusted as written. With WithStrict(true) the
// checks below run once inside New, after which every stored index and
// offset is known to be usable.
//

func checkRange(section string, off, count, itemSize uint32, limit int) error {
	if count == 0 {
		return nil
	}
	end := uint64(off) + uint64(count)*uint64(itemSize)
	if end > uint64(limit) {
		return &BoundsError{Section: section, Value: end, Limit: uint64(limit)}
	}
	return nil
}

func checkLayout(h *Header, buf []byte) error {
	switch h.EndianTag {
	case endianConstant:
	case reverseEndianConst:
		return fmt.Errorf("byte-swapped DEX files are not supported")
	default:
		return fmt.Errorf("bad endian tag %#x", h.EndianTag)
	}
	sections := []struct {
		name            string
		off, count, esz uint32
	}{
		{"string_ids", h.StringIdsOff, h.StringIdsSize, stringIdItemSize},
		{"type_ids", h.TypeIdsOff, h.TypeIdsSize, typeIdItemSize},
		{"proto_ids", h.ProtoIdsOff, h.ProtoIdsSize, protoIdItemSize},
		{"method_ids", h.MethodIdsOff, h.MethodIdsSize, methodIdItemSize},
		{"class_defs", h.ClassDefsOff, h.ClassDefsSize, dexClassHeaderSize},
	}
	for _, s := range sections {
		if err := checkRange(s.name, s.off, s.count, s.esz, len(buf)); err != nil {
			return err
		}
	}
	if h.MapOff == 0 {
		return nil
	}
	if err := checkRange("map_list", h.MapOff, 1, 4, len(buf)); err != nil {
		return err
	}
	// count-prefixed, so the extent is only known once the prefix is in bounds
	n := binary.LittleEndian.Uint32(buf[h.MapOff:])
	return checkRange("map_list", h.MapOff+4, n, mapItemSize, len(buf))
}

// checkTypeListSection walks the type_list section with bounds checks
// before the unchecked decode runs over it.
func checkTypeListSection(buf []byte, off, count uint32) error {
	limit := uint64(len(buf))
	pos := uint64(off)
	for i := uint32(0); i < count; i++ {
		if pos+4 > limit {
			return &BoundsError{Section: "type_list", Value: pos + 4, Limit: limit}
		}
		n := uint64(binary.LittleEndian.Uint32(buf[pos:]))
		pos += 4 + 2*n
		if pos > limit {
			return &BoundsError{Section: "type_list", Value: pos, Limit: limit}
		}
		pos = (pos + 3) &^ 3
	}
	return nil
}

func (f *DexFile) checkReferences() error {
	limit := uint64(len(f.buf))
	nstrings := f.strings.Len()
	ntypes := len(f.typeIds)

	for _, off := range f.strings.offsets {
		// The MUTF-8 decoder checks its own bounds; only the length
		// prefix needs to be known to end inside the buffer.
		pos := uint64(off)
		for {
			if pos >= limit {
				return &BoundsError{Section: "string_data", Value: uint64(off), Limit: limit}
			}
			b := f.buf[pos]
			pos++
			if b&0x80 == 0 {
				break
			}
		}
	}
	for _, t := range f.typeIds {
		if err := f.checkIndex("type_ids.descriptor_idx", t.DescriptorIdx, nstrings); err != nil {
			return err
		}
	}
	for _, tl := range f.typeLists.lists {
		for _, ti := range tl.TypeIdxs {
			if err := f.checkIndex("type_list.type_idx", uint32(ti), ntypes); err != nil {
				return err
			}
		}
	}
	for _, p := range f.protoIds {
		if err := f.checkIndex("proto_ids.shorty_idx", p.ShortyIdx, nstrings); err != nil {
			return err
		}
		if err := f.checkIndex("proto_ids.return_type_idx", p.ReturnTypeIdx, ntypes); err != nil {
			return err
		}
		if err := f.checkTypeListRef("proto_ids.parameters_off", p.ParametersOff); err != nil {
			return err
		}
	}
	for _, m := range f.methodIds {
		if err := f.checkIndex("method_ids.type_idx", uint32(m.TypeIdx), ntypes); err != nil {
			return err
		}
		if err := f.checkIndex("method_ids.proto_idx", uint32(m.ProtoIdx), len(f.protoIds)); err != nil {
			return err
		}
		if err := f.checkIndex("method_ids.name_idx", m.NameIdx, nstrings); err != nil {
			return err
		}
	}
	for _, cd := range f.classDefs {
		if err := f.checkIndex("class_defs.class_idx", cd.ClassIdx, ntypes); err != nil {
			return err
		}
		if cd.SuperclassIdx != NoIndex {
			if err := f.checkIndex("class_defs.superclass_idx", cd.SuperclassIdx, ntypes); err != nil {
				return err
			}
		}
		if cd.SourceFileIdx != NoIndex {
			if err := f.checkIndex("class_defs.source_file_idx", cd.SourceFileIdx, nstrings); err != nil {
				return err
			}
		}
		if err := f.checkTypeListRef("class_defs.interfaces_off", cd.InterfacesOff); err != nil {
			return err
		}
		if uint64(cd.ClassDataOff) >= limit {
			return &BoundsError{Section: "class_defs.class_data_off", Value: uint64(cd.ClassDataOff), Limit: limit}
		}
	}
	return nil
}

func (f *DexFile) checkTypeListRef(section string, off uint32) error {
	if off == 0 {
		return nil
	}
	if _, ok := f.typeLists.Lookup(off); !ok {
		return &BoundsError{Section: section, Value: uint64(off), Limit: uint64(len(f.buf))}
	}
	return nil
}
