package dexread

import (
	"fmt"
)

// ClassName returns the descriptor of the class defined by cd.
func (f *DexFile) ClassName(cd *ClassDefEntry) (string, error) {
	return f.TypeString(cd.ClassIdx)
}

// SuperclassName returns the superclass descriptor; ok is false for
// classes with no superclass (java.lang.Object).
func (f *DexFile) SuperclassName(cd *ClassDefEntry) (name string, ok bool, err error) {
	if cd.SuperclassIdx == NoIndex {
		return "", false, nil
	}
	name, err = f.TypeString(cd.SuperclassIdx)
	return name, err == nil, err
}

func (f *DexFile) Interfaces(cd *ClassDefEntry) ([]string, error) {
	return f.TypeListStringsByOffset(cd.InterfacesOff)
}

func (f *DexFile) SourceFile(cd *ClassDefEntry) (name string, ok bool, err error) {
	if cd.SourceFileIdx == NoIndex {
		return "", false, nil
	}
	name, err = f.String(cd.SourceFileIdx)
	return name, err == nil, err
}

// ClassData decodes the class_data_item of cd. A class without one
// (ClassDataOff == 0, e.g. a marker interface) gets an empty ClassData.
func (f *DexFile) ClassData(cd *ClassDefEntry) (*ClassData, error) {
	ret := &ClassData{}
	if cd.ClassDataOff == 0 {
		return ret, nil
	}
	if uint64(cd.ClassDataOff) >= uint64(len(f.buf)) {
		return nil, &BoundsError{Section: "class_data_off", Value: uint64(cd.ClassDataOff), Limit: uint64(len(f.buf))}
	}

	// Create new slice pointing to correct spot in buffer for class data
	helper := ulebHelper{data: f.buf[cd.ClassDataOff:]}

	// Read four ULEB128 encoded counts
	numStaticFields := helper.grabULEB128()
	numInstanceFields := helper.grabULEB128()
	numDirectMethods := helper.grabULEB128()
	numVirtualMethods := helper.grabULEB128()
	if helper.err != nil {
		return nil, fmt.Errorf("class_data_item at %#x: %w", cd.ClassDataOff, helper.err)
	}

	//
	// Field and method ids are stored as a difference from the previous
	// element of the same list; the first element holds the index itself.
	//
	ret.StaticFields = grabFields(&helper, numStaticFields)
	ret.InstanceFields = grabFields(&helper, numInstanceFields)
	ret.DirectMethods = grabMethods(&helper, numDirectMethods)
	ret.VirtualMethods = grabMethods(&helper, numVirtualMethods)
	if helper.err != nil {
		return nil, fmt.Errorf("class_data_item at %#x: %w", cd.ClassDataOff, helper.err)
	}
	return ret, nil
}

func grabFields(helper *ulebHelper, n uint32) []EncodedField {
	var ret []EncodedField
	var idx uint32
	for i := uint32(0); i < n && helper.err == nil; i++ {
		idx += helper.grabULEB128()
		ret = append(ret, EncodedField{FieldIdx: idx, AccessFlags: helper.grabULEB128()})
	}
	return ret
}

func grabMethods(helper *ulebHelper, n uint32) []EncodedMethod {
	var ret []EncodedMethod
	var idx uint32
	for i := uint32(0); i < n && helper.err == nil; i++ {
		idx += helper.grabULEB128()
		flags := helper.grabULEB128()
		codeOff := helper.grabULEB128()
		ret = append(ret, EncodedMethod{MethodIdx: idx, AccessFlags: flags, CodeOff: codeOff})
	}
	return ret
}
