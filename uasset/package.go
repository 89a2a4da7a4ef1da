// Package uasset reads serialized-object packages stored as paired
// .uasset/.uexp entries inside a pak archive: the .uasset carries the
// name, import, and export tables, the .uexp the export bodies.
package uasset

import (
	"errors"
	"fmt"
	"io"

	"exile-core/memory"
	"exile-core/pak"
	"exile-core/ue"
)

const (
	packageTag = 0x9E2A83C1

	customVersionSize = 20
	exportTailSize    = 60
)

var (
	ErrBadHeader           = errors.New("uasset: bad package header")
	ErrNameIndexOutOfRange = errors.New("uasset: name index out of range")
	ErrResourceOutOfRange  = errors.New("uasset: resource index out of range")
)

// ResourceIndex is the signed on-wire reference: positive values index
// the export table (1-based), negative the import table (1-based),
// zero means none.
type ResourceIndex int32

func ImportIndex(i int) ResourceIndex { return ResourceIndex(-(i + 1)) }
func ExportIndex(i int) ResourceIndex { return ResourceIndex(i + 1) }

func (r ResourceIndex) IsNone() bool   { return r == 0 }
func (r ResourceIndex) IsImport() bool { return r < 0 }
func (r ResourceIndex) IsExport() bool { return r > 0 }

// Import returns the zero-based import-table index.
func (r ResourceIndex) Import() int { return int(-r) - 1 }

// Export returns the zero-based export-table index.
func (r ResourceIndex) Export() int { return int(r) - 1 }

// NameRef is a resolved name reference: a pool name plus the numeric
// suffix carried on the wire.
type NameRef struct {
	Name   ue.Name
	Number int32
}

func (n NameRef) Text() string { return n.Name.Text() }

// Import is one row of the import table.
type Import struct {
	PackageName NameRef
	ClassName   NameRef
	Outer       ResourceIndex
	ObjectName  NameRef
}

// Export is one row of the export table.
type Export struct {
	Class        ResourceIndex
	Super        ResourceIndex
	Template     ResourceIndex
	Outer        ResourceIndex
	ObjectName   NameRef
	Flags        uint32
	SerialSize   int64
	SerialOffset int64
}

// Package is a parsed object package. The name pool borrows from the
// archive's registry for the package's lifetime.
type Package struct {
	Names      []ue.Name
	Imports    []Import
	Exports    []Export
	HeaderSize uint32

	archive  *pak.Archive
	uexpPath string
}

// OpenPackage parses the package at assetPath (no extension) inside the
// archive. The .uasset header is read into memory and its entry reader
// released before returning; the .uexp is opened per export on demand.
func OpenPackage(a *pak.Archive, assetPath string) (*Package, error) {
	r, err := a.OpenEntry(assetPath + ".uasset")
	if err != nil {
		return nil, err
	}
	defer r.Close()

	pkg := &Package{archive: a, uexpPath: assetPath + ".uexp"}
	if err := pkg.readSummary(r); err != nil {
		return nil, fmt.Errorf("%q: %w", assetPath, err)
	}
	return pkg, nil
}

type summary struct {
	nameCount, nameOffset     uint32
	exportCount, exportOffset uint32
	importCount, importOffset uint32
}

func (p *Package) readSummary(r io.ReadSeeker) error {
	tag, err := memory.ReadInt[uint32](r)
	if err != nil {
		return err
	}
	if tag != packageTag {
		return fmt.Errorf("%w: file tag %#x", ErrBadHeader, tag)
	}
	legacyVersion, err := memory.ReadInt[int32](r)
	if err != nil {
		return err
	}
	if legacyVersion >= 0 {
		return fmt.Errorf("%w: legacy version %d", ErrBadHeader, legacyVersion)
	}
	// Legacy UE3 version and the two engine file versions, discarded.
	if err := memory.Skip(r, 4*3); err != nil {
		return err
	}
	customVersions, err := memory.ReadInt[uint32](r)
	if err != nil {
		return err
	}
	if err := memory.Skip(r, int64(customVersions)*customVersionSize); err != nil {
		return err
	}
	if p.HeaderSize, err = memory.ReadInt[uint32](r); err != nil {
		return err
	}
	if _, err := ue.ReadUString(r); err != nil { // folder name
		return fmt.Errorf("%w: folder name: %v", ErrBadHeader, err)
	}
	if err := memory.Skip(r, 4); err != nil { // package flags
		return err
	}

	var s summary
	for _, field := range []*uint32{
		&s.nameCount, &s.nameOffset,
		&s.exportCount, &s.exportOffset,
		&s.importCount, &s.importOffset,
	} {
		if *field, err = memory.ReadInt[uint32](r); err != nil {
			return err
		}
	}

	if err := p.readNames(r, s); err != nil {
		return err
	}
	if err := p.readImports(r, s); err != nil {
		return err
	}
	return p.readExports(r, s)
}

func (p *Package) readNames(r io.ReadSeeker, s summary) error {
	if _, err := r.Seek(int64(s.nameOffset), io.SeekStart); err != nil {
		return err
	}
	p.Names = make([]ue.Name, s.nameCount)
	for i := range p.Names {
		entry, err := ue.ReadNameEntry(r)
		if err != nil {
			return fmt.Errorf("name %d: %w", i, err)
		}
		p.Names[i] = p.archive.Names.Lookup(entry.Text)
	}
	return nil
}

func (p *Package) readImports(r io.ReadSeeker, s summary) error {
	if _, err := r.Seek(int64(s.importOffset), io.SeekStart); err != nil {
		return err
	}
	p.Imports = make([]Import, s.importCount)
	for i := range p.Imports {
		imp := &p.Imports[i]
		var err error
		if imp.PackageName, err = p.readNameRef(r); err != nil {
			return fmt.Errorf("import %d: %w", i, err)
		}
		if imp.ClassName, err = p.readNameRef(r); err != nil {
			return fmt.Errorf("import %d: %w", i, err)
		}
		outer, err := memory.ReadInt[int32](r)
		if err != nil {
			return fmt.Errorf("import %d: %w", i, err)
		}
		imp.Outer = ResourceIndex(outer)
		if imp.ObjectName, err = p.readNameRef(r); err != nil {
			return fmt.Errorf("import %d: %w", i, err)
		}
	}
	return nil
}

func (p *Package) readExports(r io.ReadSeeker, s summary) error {
	if _, err := r.Seek(int64(s.exportOffset), io.SeekStart); err != nil {
		return err
	}
	p.Exports = make([]Export, s.exportCount)
	for i := range p.Exports {
		exp := &p.Exports[i]
		for _, idx := range []*ResourceIndex{&exp.Class, &exp.Super, &exp.Template, &exp.Outer} {
			v, err := memory.ReadInt[int32](r)
			if err != nil {
				return fmt.Errorf("export %d: %w", i, err)
			}
			*idx = ResourceIndex(v)
		}
		var err error
		if exp.ObjectName, err = p.readNameRef(r); err != nil {
			return fmt.Errorf("export %d: %w", i, err)
		}
		if exp.Flags, err = memory.ReadInt[uint32](r); err != nil {
			return fmt.Errorf("export %d: %w", i, err)
		}
		if exp.SerialSize, err = memory.ReadInt[int64](r); err != nil {
			return fmt.Errorf("export %d: %w", i, err)
		}
		if exp.SerialOffset, err = memory.ReadInt[int64](r); err != nil {
			return fmt.Errorf("export %d: %w", i, err)
		}
		if err := memory.Skip(r, exportTailSize); err != nil {
			return fmt.Errorf("export %d: %w", i, err)
		}
	}
	return nil
}

// readNameRef reads the 8-byte wire reference (pool index + numeric
// suffix) and resolves it against the package's name pool. Out-of-range
// indices are hard failures.
func (p *Package) readNameRef(r io.Reader) (NameRef, error) {
	index, err := memory.ReadInt[int32](r)
	if err != nil {
		return NameRef{}, err
	}
	number, err := memory.ReadInt[int32](r)
	if err != nil {
		return NameRef{}, err
	}
	if index < 0 || int(index) >= len(p.Names) {
		return NameRef{}, fmt.Errorf("%w: %d of %d", ErrNameIndexOutOfRange, index, len(p.Names))
	}
	return NameRef{Name: p.Names[index], Number: number}, nil
}

// Import returns the import referenced by idx, or an error when idx is
// not an in-range import reference.
func (p *Package) Import(idx ResourceIndex) (*Import, error) {
	if !idx.IsImport() || idx.Import() >= len(p.Imports) {
		return nil, fmt.Errorf("%w: %d", ErrResourceOutOfRange, idx)
	}
	return &p.Imports[idx.Import()], nil
}

// Export returns the export referenced by idx, or an error when idx is
// not an in-range export reference.
func (p *Package) Export(idx ResourceIndex) (*Export, error) {
	if !idx.IsExport() || idx.Export() >= len(p.Exports) {
		return nil, fmt.Errorf("%w: %d", ErrResourceOutOfRange, idx)
	}
	return &p.Exports[idx.Export()], nil
}

// OpenExport opens the serialized body of export i. Serial offsets live
// in a virtual file that concatenates the header with the .uexp, so the
// body starts at SerialOffset - HeaderSize within the .uexp entry.
func (p *Package) OpenExport(i int) (*ExportReader, error) {
	if i < 0 || i >= len(p.Exports) {
		return nil, fmt.Errorf("%w: export %d", ErrResourceOutOfRange, i)
	}
	exp := &p.Exports[i]
	if exp.SerialOffset < int64(p.HeaderSize) {
		return nil, fmt.Errorf("%w: export %d offset %d before header end", ErrBadHeader, i, exp.SerialOffset)
	}
	entry, err := p.archive.OpenEntry(p.uexpPath)
	if err != nil {
		return nil, err
	}
	return &ExportReader{
		Section: memory.NewSection(entry, exp.SerialOffset-int64(p.HeaderSize), exp.SerialSize),
		entry:   entry,
	}, nil
}

// ExportReader is a bounded reader over one export's serialized body.
// Closing it releases the underlying .uexp entry reader.
type ExportReader struct {
	*memory.Section
	entry io.Closer
}

func (r *ExportReader) Close() error {
	return r.entry.Close()
}
