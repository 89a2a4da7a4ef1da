// Package uetest builds synthetic pak archives and object packages for
// tests. Nothing outside _test files should import it.
package uetest

import (
	"bytes"
	"encoding/binary"
	"os"
	"strings"

	"exile-core/ue"
)

const (
	pakMagic     = 0x5A6F12E1
	pakVersion   = 4
	inlineHeader = 57
	packageTag   = 0x9E2A83C1
)

func le(w *bytes.Buffer, v any) {
	binary.Write(w, binary.LittleEndian, v)
}

// WriteString appends a Latin-1 length-prefixed string.
func WriteString(w *bytes.Buffer, s string) {
	le(w, int32(len(s)+1))
	w.WriteString(s)
	w.WriteByte(0)
}

// PakBuilder assembles an uncompressed pak archive.
type PakBuilder struct {
	data  bytes.Buffer
	index bytes.Buffer
	count uint32
}

func (p *PakBuilder) Add(path string, payload []byte) {
	offset := uint64(p.data.Len())
	p.data.Write(make([]byte, inlineHeader))
	p.data.Write(payload)

	WriteString(&p.index, path)
	le(&p.index, offset)
	le(&p.index, uint64(len(payload)))
	le(&p.index, uint64(len(payload)))
	le(&p.index, uint32(0))         // compression tag
	p.index.Write(make([]byte, 20)) // sha1
	le(&p.index, uint8(0))          // encrypted
	le(&p.index, uint32(0x10000))   // compression block size
	p.index.Write(make([]byte, 4))  // trailer
	p.count++
}

// AddPackage adds the pair of entries for a built package at assetPath
// (no extension).
func (p *PakBuilder) AddPackage(assetPath string, pkg *PackageBuilder) {
	uasset, uexp := pkg.Build()
	p.Add(assetPath+".uasset", uasset)
	p.Add(assetPath+".uexp", uexp)
}

func (p *PakBuilder) Bytes() []byte {
	var out bytes.Buffer
	out.Write(p.data.Bytes())
	indexOffset := uint64(out.Len())
	WriteString(&out, "../../../")
	le(&out, p.count)
	out.Write(p.index.Bytes())
	indexSize := uint64(out.Len()) - indexOffset

	le(&out, uint32(pakMagic))
	le(&out, uint32(pakVersion))
	le(&out, indexOffset)
	le(&out, indexSize)
	out.Write(make([]byte, 20))
	return out.Bytes()
}

func (p *PakBuilder) WriteFile(path string) error {
	return os.WriteFile(path, p.Bytes(), 0644)
}

type importSpec struct {
	packageName, className int32
	outer                  int32
	objectName             int32
}

type exportSpec struct {
	class      int32
	objectName int32
	body       []byte
}

// PackageBuilder assembles a .uasset/.uexp pair with a name table,
// imports, and exports.
type PackageBuilder struct {
	names   []string
	nameIdx map[string]int32
	imports []importSpec
	exports []exportSpec
}

func NewPackage() *PackageBuilder {
	return &PackageBuilder{nameIdx: make(map[string]int32)}
}

func (b *PackageBuilder) name(text string) int32 {
	if i, ok := b.nameIdx[text]; ok {
		return i
	}
	i := int32(len(b.names))
	b.names = append(b.names, text)
	b.nameIdx[text] = i
	return i
}

// NameRef encodes the 8-byte wire reference for text, interning it in
// the package's name table.
func (b *PackageBuilder) NameRef(text string) []byte {
	var buf bytes.Buffer
	le(&buf, b.name(text))
	le(&buf, int32(0))
	return buf.Bytes()
}

// AddImport appends an import row and returns its zero-based index.
// outer is the raw resource index (0 for none).
func (b *PackageBuilder) AddImport(packageName, className string, outer int32, objectName string) int {
	b.imports = append(b.imports, importSpec{
		packageName: b.name(packageName),
		className:   b.name(className),
		outer:       outer,
		objectName:  b.name(objectName),
	})
	return len(b.imports) - 1
}

// AddExport appends an export row whose class is the raw resource index
// class and whose serialized body is body. Returns the zero-based index.
func (b *PackageBuilder) AddExport(class int32, objectName string, body []byte) int {
	b.exports = append(b.exports, exportSpec{
		class:      class,
		objectName: b.name(objectName),
		body:       body,
	})
	return len(b.exports) - 1
}

// Build lays out the .uasset header plus tables and the .uexp bodies.
func (b *PackageBuilder) Build() (uasset, uexp []byte) {
	var names bytes.Buffer
	for _, text := range b.names {
		WriteString(&names, text)
		le(&names, ue.HashName(strings.ToLower(text)))
		le(&names, ue.HashName(text))
	}

	var bodies bytes.Buffer
	bodyOffsets := make([]int64, len(b.exports))
	for i, exp := range b.exports {
		bodyOffsets[i] = int64(bodies.Len())
		bodies.Write(exp.body)
	}

	// Fixed part of the summary: tag, legacy version, three discarded
	// versions, custom-version count, header size, folder name, flags,
	// then the six table counts/offsets.
	const folder = "None"
	fixed := 4 + 4 + 12 + 4 + 4 + (4 + len(folder) + 1) + 4 + 6*4
	nameOffset := fixed
	importOffset := nameOffset + names.Len()
	exportOffset := importOffset + 28*len(b.imports)
	headerSize := exportOffset + 104*len(b.exports)

	var out bytes.Buffer
	le(&out, uint32(packageTag))
	le(&out, int32(-7))
	out.Write(make([]byte, 12))
	le(&out, uint32(0)) // custom versions
	le(&out, uint32(headerSize))
	WriteString(&out, folder)
	le(&out, uint32(0)) // package flags
	le(&out, uint32(len(b.names)))
	le(&out, uint32(nameOffset))
	le(&out, uint32(len(b.exports)))
	le(&out, uint32(exportOffset))
	le(&out, uint32(len(b.imports)))
	le(&out, uint32(importOffset))

	out.Write(names.Bytes())

	for _, imp := range b.imports {
		le(&out, imp.packageName)
		le(&out, int32(0))
		le(&out, imp.className)
		le(&out, int32(0))
		le(&out, imp.outer)
		le(&out, imp.objectName)
		le(&out, int32(0))
	}

	for i, exp := range b.exports {
		le(&out, exp.class)
		le(&out, int32(0)) // super
		le(&out, int32(0)) // template
		le(&out, int32(0)) // outer
		le(&out, exp.objectName)
		le(&out, int32(0)) // name number
		le(&out, uint32(0))
		le(&out, int64(len(exp.body)))
		le(&out, int64(headerSize)+bodyOffsets[i])
		out.Write(make([]byte, 60))
	}

	return out.Bytes(), bodies.Bytes()
}

// Body assembles one export's serialized property stream.
type Body struct {
	pkg *PackageBuilder
	buf bytes.Buffer
}

func (b *PackageBuilder) NewBody() *Body {
	return &Body{pkg: b}
}

// Property appends a full tag: name, type, size, array index, the
// type-specific header bytes, a zero has-guid flag, and the value body.
func (w *Body) Property(name, typeName string, header, value []byte) *Body {
	w.buf.Write(w.pkg.NameRef(name))
	w.buf.Write(w.pkg.NameRef(typeName))
	le(&w.buf, uint32(len(value)))
	le(&w.buf, uint32(0))
	w.buf.Write(header)
	w.buf.WriteByte(0)
	w.buf.Write(value)
	return w
}

// StrProperty appends a StrProperty whose value is a Latin-1 string.
func (w *Body) StrProperty(name, value string) *Body {
	var val bytes.Buffer
	WriteString(&val, value)
	return w.Property(name, "StrProperty", nil, val.Bytes())
}

// NameProperty appends a NameProperty whose value is a name reference.
func (w *Body) NameProperty(name, value string) *Body {
	return w.Property(name, "NameProperty", nil, w.pkg.NameRef(value))
}

// ObjectProperty appends an ObjectProperty holding a raw resource index.
func (w *Body) ObjectProperty(name string, index int32) *Body {
	var val bytes.Buffer
	le(&val, index)
	return w.Property(name, "ObjectProperty", nil, val.Bytes())
}

// Terminator appends the None name closing the property list.
func (w *Body) Terminator() *Body {
	w.buf.Write(w.pkg.NameRef("None"))
	return w
}

// Raw appends arbitrary post-property bytes.
func (w *Body) Raw(data []byte) *Body {
	w.buf.Write(data)
	return w
}

func (w *Body) U32(v uint32) *Body {
	le(&w.buf, v)
	return w
}

func (w *Body) Bytes() []byte {
	return w.buf.Bytes()
}
