package pak

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"

	"exile-core/memory"
)

// EntryReader is a positioned view of one entry's uncompressed bytes.
type EntryReader interface {
	io.ReadSeeker
	io.ReaderAt
	io.Closer
	Size() int64
}

// OpenEntry opens the entry at path for reading. Uncompressed entries
// stream straight from the archive file; zlib entries are inflated into
// memory up front. The primary file handle is leased to the first
// concurrent reader; further readers open their own handle.
func (a *Archive) OpenEntry(path string) (EntryReader, error) {
	entry := a.entries[path]
	if entry == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	if entry.Encrypted {
		return nil, fmt.Errorf("%w: %q", ErrEncrypted, path)
	}

	switch entry.Compression {
	case CompressionNone:
		handle, release, err := a.acquireHandle()
		if err != nil {
			return nil, err
		}
		return &fileEntryReader{
			Section: memory.NewSection(handle, int64(entry.Offset)+inlineHeader, int64(entry.Size)),
			release: release,
		}, nil

	case CompressionZlib:
		data, err := a.inflateEntry(entry)
		if err != nil {
			return nil, err
		}
		return &memEntryReader{Reader: bytes.NewReader(data)}, nil

	default:
		return nil, fmt.Errorf("%w: tag %d in %q", ErrUnsupportedCompression, entry.Compression, path)
	}
}

// acquireHandle leases the primary handle, falling back to a fresh one
// when it is already held.
func (a *Archive) acquireHandle() (io.ReaderAt, func() error, error) {
	if a.lease.TryLock() {
		return a.file, func() error {
			a.lease.Unlock()
			return nil
		}, nil
	}
	extra, err := os.Open(a.Path)
	if err != nil {
		return nil, nil, err
	}
	return extra, extra.Close, nil
}

func (a *Archive) inflateEntry(entry *Entry) ([]byte, error) {
	handle, release, err := a.acquireHandle()
	if err != nil {
		return nil, err
	}
	defer release()

	out := make([]byte, 0, entry.Size)
	buf := bytes.NewBuffer(out)
	for i, block := range entry.Blocks {
		section := memory.NewSection(handle, int64(block.Start), int64(block.End-block.Start))
		zr, err := zlib.NewReader(section)
		if err != nil {
			return nil, fmt.Errorf("pak: %q block %d: %w", entry.Path, i, err)
		}
		_, err = io.Copy(buf, io.LimitReader(zr, int64(entry.Size)-int64(buf.Len())))
		zr.Close()
		if err != nil {
			return nil, fmt.Errorf("pak: %q block %d: %w", entry.Path, i, err)
		}
	}
	if uint64(buf.Len()) != entry.Size {
		return nil, fmt.Errorf("pak: %q inflated to %d bytes, want %d", entry.Path, buf.Len(), entry.Size)
	}
	return buf.Bytes(), nil
}

type fileEntryReader struct {
	*memory.Section
	release func() error
}

func (r *fileEntryReader) Close() error {
	if r.release == nil {
		return nil
	}
	release := r.release
	r.release = nil
	return release()
}

type memEntryReader struct {
	*bytes.Reader
}

func (r *memEntryReader) Close() error { return nil }
