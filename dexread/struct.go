package dexread

const (
	// https://source.android.com/devices/tech/dalvik/dex-format.html#endian-constant
	endianConstant     = 0x12345678
	reverseEndianConst = 0x78563412
	dexFileHeaderSize  = 112
	dexClassHeaderSize = 32

	typeIdItemSize   = 4
	protoIdItemSize  = 12
	methodIdItemSize = 8
	stringIdItemSize = 4
	mapItemSize      = 12

	// NoIndex marks an absent optional index (superclass, source file).
	NoIndex = 0xffffffff
)

//
// Upper case fields are intentional (to allow filling in the contents
// of this struct via reflection).
//
type Header struct {
	// https://source.android.com/devices/tech/dalvik/dex-format.html#header-item
	Magic         [8]byte
	Checksum      uint32
	Sha1Sig       [20]byte
	FileSize      uint32
	HeaderSize    uint32
	EndianTag     uint32
	LinkSize      uint32
	LinkOff       uint32
	MapOff        uint32
	StringIdsSize uint32
	StringIdsOff  uint32
	TypeIdsSize   uint32
	TypeIdsOff    uint32
	ProtoIdsSize  uint32
	ProtoIdsOff   uint32
	FieldIdsSize  uint32
	FieldIdsOff   uint32
	MethodIdsSize uint32
	MethodIdsOff  uint32
	ClassDefsSize uint32
	ClassDefsOff  uint32
	DataSize      uint32
	DataOff       uint32
}

// Version returns the three digit format version embedded in the magic.
func (h *Header) Version() string {
	return string(h.Magic[4:7])
}

type TypeIdEntry struct {
	DescriptorIdx uint32
}

// ParametersOff of zero means the prototype takes no parameters.
type ProtoIdEntry struct {
	ShortyIdx     uint32
	ReturnTypeIdx uint32
	ParametersOff uint32
}

type MethodIdEntry struct {
	TypeIdx  uint16
	ProtoIdx uint16
	NameIdx  uint32
}

type ClassDefEntry struct {
	// https://source.android.com/devices/tech/dalvik/dex-format.html#class-def-item
	ClassIdx        uint32
	AccessFlags     uint32
	SuperclassIdx   uint32
	InterfacesOff   uint32
	SourceFileIdx   uint32
	AnnotationsOff  uint32
	ClassDataOff    uint32
	StaticValuesOff uint32
}

//
// Note that within the DEX file, these fields are ULEB128 encoded; the
// structs below hold the decoded values. Field and method indices have
// already had their deltas applied.
//
type ClassData struct {
	// https://source.android.com/devices/tech/dalvik/dex-format.html#class-data-item
	StaticFields   []EncodedField
	InstanceFields []EncodedField
	DirectMethods  []EncodedMethod
	VirtualMethods []EncodedMethod
}

type EncodedField struct {
	FieldIdx    uint32
	AccessFlags uint32
}

type EncodedMethod struct {
	MethodIdx   uint32
	AccessFlags uint32
	CodeOff     uint32
}

// NumMethods returns the direct plus virtual method count.
func (cd *ClassData) NumMethods() uint32 {
	return uint32(len(cd.DirectMethods) + len(cd.VirtualMethods))
}
