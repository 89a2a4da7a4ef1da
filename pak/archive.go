// Package pak reads the game's package-archive container: a flat file
// with per-entry inline headers and a trailing index located through a
// fixed-size footer.
package pak

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"exile-core/memory"
	"exile-core/ue"
)

const (
	Magic         = 0x5A6F12E1
	Version       = 4
	footerSize    = 44
	inlineHeader  = 57 // per-entry header duplicating index metadata
	sha1Size      = 20
	indexHashSize = 20
)

// Compression tags as stored in the index.
const (
	CompressionNone uint32 = 0
	CompressionZlib uint32 = 1
)

var (
	ErrBadMagic               = errors.New("pak: bad magic")
	ErrBadVersion             = errors.New("pak: unsupported version")
	ErrBadIndex               = errors.New("pak: malformed index")
	ErrNotFound               = errors.New("pak: entry not found")
	ErrEncrypted              = errors.New("pak: entry is encrypted")
	ErrUnsupportedCompression = errors.New("pak: unsupported compression")
)

// Block is one compressed region, as absolute [Start, End) file offsets.
type Block struct {
	Start uint64
	End   uint64
}

// Entry is one archived file as described by the index.
type Entry struct {
	Path   string
	Offset uint64
	// CompressedSize is read but unused; kept because future compression
	// modes may make it authoritative.
	CompressedSize uint64
	Size           uint64
	Compression    uint32
	Blocks         []Block
	Encrypted      bool
}

// Archive is an open container file. The primary file handle is guarded
// by a lease; see OpenEntry.
type Archive struct {
	Path string
	// Names is the per-archive interning registry used by packages
	// opened from this archive.
	Names *ue.NameRegistry

	file    *os.File
	size    int64
	lease   sync.Mutex
	entries map[string]*Entry
}

// Open reads the footer and index of the archive at path.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	a := &Archive{
		Path:    path,
		Names:   ue.NewNameRegistry(),
		file:    file,
		entries: make(map[string]*Entry),
	}
	if err := a.readIndex(); err != nil {
		file.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) Close() error {
	return a.file.Close()
}

// Entry returns the entry at path, or nil when absent.
func (a *Archive) Entry(path string) *Entry {
	return a.entries[path]
}

// Entries returns the archive's entries in unspecified order.
func (a *Archive) Entries() []*Entry {
	entries := make([]*Entry, 0, len(a.entries))
	for _, e := range a.entries {
		entries = append(entries, e)
	}
	return entries
}

func (a *Archive) readIndex() error {
	info, err := a.file.Stat()
	if err != nil {
		return err
	}
	a.size = info.Size()
	if a.size < footerSize {
		return fmt.Errorf("%w: file too small", ErrBadIndex)
	}

	footer := memory.NewSection(a.file, a.size-footerSize, footerSize)
	magic, err := memory.ReadInt[uint32](footer)
	if err != nil {
		return err
	}
	if magic != Magic {
		return fmt.Errorf("%w: %#x", ErrBadMagic, magic)
	}
	version, err := memory.ReadInt[uint32](footer)
	if err != nil {
		return err
	}
	if version != Version {
		return fmt.Errorf("%w: %d", ErrBadVersion, version)
	}
	indexOffset, err := memory.ReadInt[uint64](footer)
	if err != nil {
		return err
	}
	indexSize, err := memory.ReadInt[uint64](footer)
	if err != nil {
		return err
	}
	if indexOffset+indexSize > uint64(a.size) {
		return fmt.Errorf("%w: index out of bounds", ErrBadIndex)
	}

	index := memory.NewSection(a.file, int64(indexOffset), int64(indexSize))
	// Mount point, unused.
	if _, err := ue.ReadUString(index); err != nil {
		return fmt.Errorf("%w: mount point: %v", ErrBadIndex, err)
	}
	count, err := memory.ReadInt[uint32](index)
	if err != nil {
		return fmt.Errorf("%w: entry count: %v", ErrBadIndex, err)
	}
	for i := uint32(0); i < count; i++ {
		entry, err := a.readEntry(index)
		if err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrBadIndex, i, err)
		}
		if _, dup := a.entries[entry.Path]; dup {
			return fmt.Errorf("%w: duplicate path %q", ErrBadIndex, entry.Path)
		}
		a.entries[entry.Path] = entry
	}
	return nil
}

func (a *Archive) readEntry(r io.ReadSeeker) (*Entry, error) {
	path, err := ue.ReadUString(r)
	if err != nil {
		return nil, err
	}
	entry := &Entry{Path: path}

	if entry.Offset, err = memory.ReadInt[uint64](r); err != nil {
		return nil, err
	}
	if entry.CompressedSize, err = memory.ReadInt[uint64](r); err != nil {
		return nil, err
	}
	if entry.Size, err = memory.ReadInt[uint64](r); err != nil {
		return nil, err
	}
	if entry.Compression, err = memory.ReadInt[uint32](r); err != nil {
		return nil, err
	}
	if entry.Offset > uint64(a.size) {
		return nil, fmt.Errorf("offset %d out of bounds", entry.Offset)
	}
	if err := memory.Skip(r, sha1Size); err != nil {
		return nil, err
	}

	if entry.Compression != CompressionNone {
		blockCount, err := memory.ReadInt[uint32](r)
		if err != nil {
			return nil, err
		}
		if entry.Compression == CompressionZlib {
			entry.Blocks = make([]Block, blockCount)
			for i := range entry.Blocks {
				if entry.Blocks[i].Start, err = memory.ReadInt[uint64](r); err != nil {
					return nil, err
				}
				if entry.Blocks[i].End, err = memory.ReadInt[uint64](r); err != nil {
					return nil, err
				}
				b := entry.Blocks[i]
				if b.Start > b.End || b.End > uint64(a.size) {
					return nil, fmt.Errorf("block %d out of bounds", i)
				}
			}
		} else {
			// Unknown compression carries 16-byte block records.
			if err := memory.Skip(r, int64(blockCount)*16); err != nil {
				return nil, err
			}
		}
	}

	encrypted, err := memory.ReadInt[uint8](r)
	if err != nil {
		return nil, err
	}
	entry.Encrypted = encrypted != 0

	// Compression-block size and archive-specific trailer, unused.
	if err := memory.Skip(r, 4+4); err != nil {
		return nil, err
	}
	return entry, nil
}
