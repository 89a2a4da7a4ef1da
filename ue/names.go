package ue

import (
	"encoding/binary"
	"hash/crc32"
)

// NameKind discriminates the three ways a Name can be held by a registry.
type NameKind uint8

const (
	NameHardcoded NameKind = iota
	NameInterred
	NameAdHoc
)

// Name is an interned engine string. Hardcoded and interred names compare
// by identity within one registry; ad-hoc names compare by text.
type Name struct {
	kind  NameKind
	index uint32
	text  string
}

func (n Name) Kind() NameKind { return n.kind }
func (n Name) Text() string   { return n.text }

// Equal compares two names: by identity when both are registry-held,
// by text when either side is ad-hoc.
func (n Name) Equal(other Name) bool {
	if n.kind != NameAdHoc && other.kind != NameAdHoc {
		return n.kind == other.kind && n.index == other.index
	}
	return n.text == other.text
}

// Is reports whether the name's text matches s.
func (n Name) Is(s string) bool { return n.text == s }

// The closed set of engine-builtin names every registry pre-interns.
var hardcodedNames = [...]string{
	"None",
	"ByteProperty",
	"BoolProperty",
	"ArrayProperty",
	"StructProperty",
	"MapProperty",
	"SetProperty",
	"EnumProperty",
}

var (
	NameNone           = Name{NameHardcoded, 0, "None"}
	NameByteProperty   = Name{NameHardcoded, 1, "ByteProperty"}
	NameBoolProperty   = Name{NameHardcoded, 2, "BoolProperty"}
	NameArrayProperty  = Name{NameHardcoded, 3, "ArrayProperty"}
	NameStructProperty = Name{NameHardcoded, 4, "StructProperty"}
	NameMapProperty    = Name{NameHardcoded, 5, "MapProperty"}
	NameSetProperty    = Name{NameHardcoded, 6, "SetProperty"}
	NameEnumProperty   = Name{NameHardcoded, 7, "EnumProperty"}
)

// NameRegistry is a process-lifetime interning pool for engine string
// constants. It is not safe for concurrent use; each archive owns one.
type NameRegistry struct {
	interred []string
	byText   map[string]Name
}

func NewNameRegistry() *NameRegistry {
	r := &NameRegistry{
		byText: make(map[string]Name, len(hardcodedNames)),
	}
	for i, text := range hardcodedNames {
		r.byText[text] = Name{NameHardcoded, uint32(i), text}
	}
	return r
}

// Inter returns the existing Name when text is already known, otherwise
// retains the entry under the next dense index. Idempotent.
func (r *NameRegistry) Inter(text string) Name {
	if n, ok := r.byText[text]; ok {
		return n
	}
	n := Name{NameInterred, uint32(len(r.interred)), text}
	r.interred = append(r.interred, text)
	r.byText[text] = n
	return n
}

// Lookup maps a wire name-table entry to a Name without retaining it:
// known text yields the hardcoded or interred Name, anything else an
// ad-hoc one.
func (r *NameRegistry) Lookup(text string) Name {
	if n, ok := r.byText[text]; ok {
		return n
	}
	return Name{NameAdHoc, 0, text}
}

func (r *NameRegistry) Text(n Name) string { return n.text }

// HashName computes the 16-bit hash stored per entry in package name
// tables: CRC32 over the little-endian UTF-32 encoding of the text,
// truncated to the low 16 bits.
func HashName(text string) uint16 {
	var buf [4]byte
	h := crc32.NewIEEE()
	for _, ch := range text {
		binary.LittleEndian.PutUint32(buf[:], uint32(ch))
		h.Write(buf[:])
	}
	return uint16(h.Sum32() & 0xFFFF)
}
