package memory

import (
	"fmt"
	"io"
)

// Section is a bounded view over a random-access stream. Positions are
// reported relative to the section start. Seeks past either end clamp;
// reads past the end short-read and return io.EOF when fully past.
type Section struct {
	r    io.ReaderAt
	off  int64
	size int64
	pos  int64
}

func NewSection(r io.ReaderAt, off, size int64) *Section {
	return &Section{r: r, off: off, size: size}
}

func (s *Section) Size() int64 {
	return s.size
}

func (s *Section) Read(p []byte) (int, error) {
	if s.pos >= s.size {
		return 0, io.EOF
	}
	if max := s.size - s.pos; int64(len(p)) > max {
		p = p[:max]
	}
	n, err := s.r.ReadAt(p, s.off+s.pos)
	s.pos += int64(n)
	return n, err
}

func (s *Section) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= s.size {
		return 0, io.EOF
	}
	if max := s.size - off; int64(len(p)) > max {
		n, err := s.r.ReadAt(p[:max], s.off+off)
		if err == nil {
			err = io.EOF
		}
		return n, err
	}
	return s.r.ReadAt(p, s.off+off)
}

func (s *Section) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = s.pos + offset
	case io.SeekEnd:
		pos = s.size + offset
	default:
		return 0, fmt.Errorf("section: invalid whence %d", whence)
	}
	if pos < 0 {
		pos = 0
	}
	if pos > s.size {
		pos = s.size
	}
	s.pos = pos
	return pos, nil
}
