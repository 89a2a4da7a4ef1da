package memory

import (
	"bytes"
	"io"
	"testing"
)

func TestSectionRead(t *testing.T) {
	data := []byte("0123456789abcdef")
	s := NewSection(bytes.NewReader(data), 4, 6)

	got, err := io.ReadAll(s)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "456789" {
		t.Fatalf("got %q, want %q", got, "456789")
	}
}

func TestSectionSeekClamps(t *testing.T) {
	s := NewSection(bytes.NewReader(make([]byte, 32)), 8, 10)

	cases := []struct {
		offset int64
		whence int
		want   int64
	}{
		{0, io.SeekStart, 0},
		{5, io.SeekStart, 5},
		{10, io.SeekStart, 10},
		{15, io.SeekStart, 10},
		{-3, io.SeekStart, 0},
		{-100, io.SeekCurrent, 0},
		{100, io.SeekCurrent, 10},
		{0, io.SeekEnd, 10},
		{-4, io.SeekEnd, 6},
	}
	for _, c := range cases {
		pos, err := s.Seek(c.offset, c.whence)
		if err != nil {
			t.Fatalf("seek(%d, %d): %v", c.offset, c.whence, err)
		}
		if pos != c.want {
			t.Errorf("seek(%d, %d) = %d, want %d", c.offset, c.whence, pos, c.want)
		}
	}
}

func TestSectionShortRead(t *testing.T) {
	s := NewSection(bytes.NewReader([]byte("abcdef")), 2, 4)
	if _, err := s.Seek(2, io.SeekStart); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 8)
	n, _ := s.Read(buf)
	if n != 2 || string(buf[:2]) != "ef" {
		t.Fatalf("short read got %d %q", n, buf[:n])
	}

	n, err := s.Read(buf)
	if n != 0 || err != io.EOF {
		t.Fatalf("read past end got %d, %v; want 0, EOF", n, err)
	}
}

func TestSectionReadAt(t *testing.T) {
	s := NewSection(bytes.NewReader([]byte("0123456789")), 3, 4)

	buf := make([]byte, 2)
	if _, err := s.ReadAt(buf, 1); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "45" {
		t.Fatalf("got %q", buf)
	}
	if _, err := s.ReadAt(buf, 4); err != io.EOF {
		t.Fatalf("want EOF, got %v", err)
	}
}
