package dexread

// TypeList is one type_list item: the type indices of a method's
// parameters or a class's interfaces.
type TypeList struct {
	Offset   uint32
	TypeIdxs []uint16
}

//
// TypeListTable holds every type_list in the file, keyed by the offset
// of its size field. Protos and classes refer to lists by offset and
// frequently share them, so each list is decoded once and looked up
// through the index.
//
type TypeListTable struct {
	lists    []TypeList
	byOffset map[uint32]int
}

func unpackTypeLists(c *Cursor, off, count uint32) *TypeListTable {
	// each list is at least its four byte size field
	n := c.fit(off, count, 4)
	tlt := &TypeListTable{
		lists:    make([]TypeList, 0, n),
		byOffset: make(map[uint32]int, n),
	}
	if count == 0 {
		return tlt
	}
	c.Seek(off)
	for i := uint32(0); i < count; i++ {
		start := c.Tell()
		size := c.ReadU32()
		idxs := make([]uint16, 0, c.fit(c.Tell(), size, 2))
		for j := uint32(0); j < size; j++ {
			idxs = append(idxs, c.ReadU16())
		}
		c.AlignUp(4)
		tlt.byOffset[start] = len(tlt.lists)
		tlt.lists = append(tlt.lists, TypeList{Offset: start, TypeIdxs: idxs})
	}
	return tlt
}

func (tlt *TypeListTable) Len() int {
	return len(tlt.lists)
}

// Lookup finds the list whose size field sits at off. Offset zero is
// never present.
func (tlt *TypeListTable) Lookup(off uint32) (TypeList, bool) {
	i, ok := tlt.byOffset[off]
	if !ok {
		return TypeList{}, false
	}
	return tlt.lists[i], true
}

func (tlt *TypeListTable) Lists() []TypeList {
	return tlt.lists
}
