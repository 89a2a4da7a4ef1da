package uasset

import (
	"fmt"
	"io"

	"exile-core/memory"
	"exile-core/ue"
)

// PropertyKind discriminates the tagged union carried by a property's
// type name.
type PropertyKind uint8

const (
	KindOther PropertyKind = iota
	KindByte
	KindEnum
	KindBool
	KindArray
	KindStruct
	KindSet
	KindMap
)

// PropertyTag is the per-property header of a serialized object body.
type PropertyTag struct {
	Name       NameRef
	Kind       PropertyKind
	TypeName   NameRef
	Size       uint32
	ArrayIndex uint32

	// Populated per kind.
	EnumName   NameRef // Byte, Enum
	InnerType  NameRef // Array, Set
	StructName NameRef // Struct
	KeyType    NameRef // Map
	ValueType  NameRef // Map
	BoolValue  bool    // Bool; no value body follows

	HasGuid bool
	Guid    ue.Guid

	// SkipOffset is the body-relative position just past this
	// property's value.
	SkipOffset int64
}

// PropertyReader decodes the tagged property stream of one export body.
type PropertyReader struct {
	pkg *Package
	r   *memory.Section
}

func NewPropertyReader(pkg *Package, r *ExportReader) *PropertyReader {
	return &PropertyReader{pkg: pkg, r: r.Section}
}

// ReadTag reads the next property tag. A nil tag (with nil error) marks
// the end of the property list; the stream is then positioned right
// after the terminator.
func (pr *PropertyReader) ReadTag() (*PropertyTag, error) {
	name, err := pr.pkg.readNameRef(pr.r)
	if err != nil {
		return nil, fmt.Errorf("property name: %w", err)
	}
	if name.Name.Equal(ue.NameNone) {
		return nil, nil
	}

	tag := &PropertyTag{Name: name}
	if tag.TypeName, err = pr.pkg.readNameRef(pr.r); err != nil {
		return nil, fmt.Errorf("property type: %w", err)
	}
	if tag.Size, err = memory.ReadInt[uint32](pr.r); err != nil {
		return nil, err
	}
	if tag.ArrayIndex, err = memory.ReadInt[uint32](pr.r); err != nil {
		return nil, err
	}

	switch {
	case tag.TypeName.Name.Equal(ue.NameByteProperty):
		tag.Kind = KindByte
		tag.EnumName, err = pr.pkg.readNameRef(pr.r)
	case tag.TypeName.Name.Equal(ue.NameEnumProperty):
		tag.Kind = KindEnum
		tag.EnumName, err = pr.pkg.readNameRef(pr.r)
	case tag.TypeName.Name.Equal(ue.NameBoolProperty):
		tag.Kind = KindBool
		var b uint8
		b, err = memory.ReadInt[uint8](pr.r)
		tag.BoolValue = b != 0
	case tag.TypeName.Name.Equal(ue.NameArrayProperty):
		tag.Kind = KindArray
		tag.InnerType, err = pr.pkg.readNameRef(pr.r)
	case tag.TypeName.Name.Equal(ue.NameSetProperty):
		tag.Kind = KindSet
		tag.InnerType, err = pr.pkg.readNameRef(pr.r)
	case tag.TypeName.Name.Equal(ue.NameStructProperty):
		tag.Kind = KindStruct
		tag.StructName, err = pr.pkg.readNameRef(pr.r)
	case tag.TypeName.Name.Equal(ue.NameMapProperty):
		tag.Kind = KindMap
		if tag.KeyType, err = pr.pkg.readNameRef(pr.r); err == nil {
			tag.ValueType, err = pr.pkg.readNameRef(pr.r)
		}
	default:
		tag.Kind = KindOther
	}
	if err != nil {
		return nil, fmt.Errorf("property %q header: %w", name.Text(), err)
	}

	hasGuid, err := memory.ReadInt[uint8](pr.r)
	if err != nil {
		return nil, err
	}
	if hasGuid != 0 {
		tag.HasGuid = true
		if tag.Guid, err = ue.ReadGuid(pr.r); err != nil {
			return nil, err
		}
	}

	pos, err := pr.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	tag.SkipOffset = pos + int64(tag.Size)
	return tag, nil
}

// Skip positions the stream past the property's value body.
func (pr *PropertyReader) Skip(tag *PropertyTag) error {
	_, err := pr.r.Seek(tag.SkipOffset, io.SeekStart)
	return err
}

// Value readers. Decoding a property's value is the caller's business;
// these cover the bodies the extractors care about.

func (pr *PropertyReader) ReadString() (string, error) {
	return ue.ReadUString(pr.r)
}

func (pr *PropertyReader) ReadNameRef() (NameRef, error) {
	return pr.pkg.readNameRef(pr.r)
}

func (pr *PropertyReader) ReadResourceIndex() (ResourceIndex, error) {
	v, err := memory.ReadInt[int32](pr.r)
	return ResourceIndex(v), err
}

func (pr *PropertyReader) ReadUint32() (uint32, error) {
	return memory.ReadInt[uint32](pr.r)
}

func (pr *PropertyReader) SkipBytes(n int64) error {
	return memory.Skip(pr.r, n)
}
