package dexread

import (
	"fmt"
)

// Map item type codes.
// https://source.android.com/devices/tech/dalvik/dex-format.html#type-codes
const (
	TypeHeaderItem               = 0x0000
	TypeStringIdItem             = 0x0001
	TypeTypeIdItem               = 0x0002
	TypeProtoIdItem              = 0x0003
	TypeFieldIdItem              = 0x0004
	TypeMethodIdItem             = 0x0005
	TypeClassDefItem             = 0x0006
	TypeCallSiteIdItem           = 0x0007
	TypeMethodHandleItem         = 0x0008
	TypeMapList                  = 0x1000
	TypeTypeList                 = 0x1001
	TypeAnnotationSetRefList     = 0x1002
	TypeAnnotationSetItem        = 0x1003
	TypeClassDataItem            = 0x2000
	TypeCodeItem                 = 0x2001
	TypeStringDataItem           = 0x2002
	TypeDebugInfoItem            = 0x2003
	TypeAnnotationItem           = 0x2004
	TypeEncodedArrayItem         = 0x2005
	TypeAnnotationsDirectoryItem = 0x2006
	TypeHiddenapiClassDataItem   = 0xF000
)

var mapTypeNames = map[uint16]string{
	TypeHeaderItem:               "header_item",
	TypeStringIdItem:             "string_id_item",
	TypeTypeIdItem:               "type_id_item",
	TypeProtoIdItem:              "proto_id_item",
	TypeFieldIdItem:              "field_id_item",
	TypeMethodIdItem:             "method_id_item",
	TypeClassDefItem:             "class_def_item",
	TypeCallSiteIdItem:           "call_site_id_item",
	TypeMethodHandleItem:         "method_handle_item",
	TypeMapList:                  "map_list",
	TypeTypeList:                 "type_list",
	TypeAnnotationSetRefList:     "annotation_set_ref_list",
	TypeAnnotationSetItem:        "annotation_set_item",
	TypeClassDataItem:            "class_data_item",
	TypeCodeItem:                 "code_item",
	TypeStringDataItem:           "string_data_item",
	TypeDebugInfoItem:            "debug_info_item",
	TypeAnnotationItem:           "annotation_item",
	TypeEncodedArrayItem:         "encoded_array_item",
	TypeAnnotationsDirectoryItem: "annotations_directory_item",
	TypeHiddenapiClassDataItem:   "hiddenapi_class_data_item",
}

// MapTypeName returns the format's name for a map item type code.
func MapTypeName(code uint16) string {
	if n, ok := mapTypeNames[code]; ok {
		return n
	}
	return fmt.Sprintf("unknown_%#04x", code)
}

type MapEntry struct {
	Type   uint16
	Unused uint16
	Size   uint32
	Offset uint32
}

// MapList is the section directory found at header.map_off.
type MapList struct {
	entries []MapEntry
	byType  map[uint16]int
}

func unpackMapList(c *Cursor, off uint32) *MapList {
	ml := &MapList{byType: make(map[uint16]int)}
	if off == 0 {
		return ml
	}
	c.Seek(off)
	count := c.ReadU32()
	ml.entries = unpackRecords(c, off+4, count, mapItemSize, func(c *Cursor) MapEntry {
		return MapEntry{
			Type:   c.ReadU16(),
			Unused: c.ReadU16(),
			Size:   c.ReadU32(),
			Offset: c.ReadU32(),
		}
	})
	for i, e := range ml.entries {
		ml.byType[e.Type] = i
	}
	return ml
}

// Lookup returns the entry for a type code, if the file has one.
func (ml *MapList) Lookup(code uint16) (MapEntry, bool) {
	i, ok := ml.byType[code]
	if !ok {
		return MapEntry{}, false
	}
	return ml.entries[i], true
}

// Entries returns the map items in file order.
func (ml *MapList) Entries() []MapEntry {
	return ml.entries
}
