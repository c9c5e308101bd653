package dexread

// unpackRecords reads count records of size bytes back to back starting
// at off. The fixed id arrays are naturally aligned, so no padding is
// skipped between or after them. A count larger than the buffer can hold
// ends in a bounds panic from the reads, not a huge allocation.
func unpackRecords[T any](c *Cursor, off, count, size uint32, read func(*Cursor) T) []T {
	ret := make([]T, 0, c.fit(off, count, size))
	c.Seek(off)
	for i := uint32(0); i < count; i++ {
		ret = append(ret, read(c))
	}
	return ret
}

func readTypeId(c *Cursor) TypeIdEntry {
	return TypeIdEntry{DescriptorIdx: c.ReadU32()}
}

func readProtoId(c *Cursor) ProtoIdEntry {
	return ProtoIdEntry{
		ShortyIdx:     c.ReadU32(),
		ReturnTypeIdx: c.ReadU32(),
		ParametersOff: c.ReadU32(),
	}
}

func readMethodId(c *Cursor) MethodIdEntry {
	return MethodIdEntry{
		TypeIdx:  c.ReadU16(),
		ProtoIdx: c.ReadU16(),
		NameIdx:  c.ReadU32(),
	}
}

func readClassDef(c *Cursor) ClassDefEntry {
	return ClassDefEntry{
		ClassIdx:        c.ReadU32(),
		AccessFlags:     c.ReadU32(),
		SuperclassIdx:   c.ReadU32(),
		InterfacesOff:   c.ReadU32(),
		SourceFileIdx:   c.ReadU32(),
		AnnotationsOff:  c.ReadU32(),
		ClassDataOff:    c.ReadU32(),
		StaticValuesOff: c.ReadU32(),
	}
}

func readU32(c *Cursor) uint32 {
	return c.ReadU32()
}
