package ue

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"

	"exile-core/memory"
)

var ErrBadString = errors.New("ue: bad string length")

// Longest real strings are asset paths, far below this. Anything
// larger is a corrupt length prefix, rejected before allocating.
const maxUStringLength = 1 << 20

// NameEntry is one record of a package name table.
type NameEntry struct {
	Text                string
	CaseInsensitiveHash uint16
	CaseSensitiveHash   uint16
}

type Guid [16]byte

func ReadGuid(r io.Reader) (Guid, error) {
	var g Guid
	_, err := io.ReadFull(r, g[:])
	return g, err
}

// ReadUString reads a length-prefixed engine string. Length 0 is the
// empty string; a positive length n is n-1 Latin-1 bytes plus a NUL;
// a negative length -n is n-1 little-endian UTF-16 code units plus a
// U+0000 terminator, decoded lossily on malformed surrogates.
func ReadUString(r io.Reader) (string, error) {
	length, err := memory.ReadInt[int32](r)
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}

	// Negation in 64 bits: -math.MinInt32 does not fit an int32.
	n := int64(length)
	if n < 0 {
		n = -n
	}
	if n > maxUStringLength {
		return "", fmt.Errorf("%w: %d", ErrBadString, length)
	}

	if length > 0 {
		data, err := memory.ReadBytes(r, int(n))
		if err != nil {
			return "", fmt.Errorf("ustring: %w", err)
		}
		if data[n-1] != 0 {
			return "", fmt.Errorf("ustring: missing terminator")
		}
		return decodeLatin1(data[:n-1]), nil
	}

	units := make([]uint16, n)
	for i := range units {
		units[i], err = memory.ReadInt[uint16](r)
		if err != nil {
			return "", fmt.Errorf("ustring: %w", err)
		}
	}
	if units[len(units)-1] != 0 {
		return "", fmt.Errorf("ustring: missing terminator")
	}
	return string(utf16.Decode(units[:len(units)-1])), nil
}

func decodeLatin1(data []byte) string {
	ascii := true
	for _, b := range data {
		if b >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// ReadNameEntry reads one name-table record: text plus the two 16-bit
// hashes (case-insensitive, then case-sensitive).
func ReadNameEntry(r io.Reader) (NameEntry, error) {
	text, err := ReadUString(r)
	if err != nil {
		return NameEntry{}, err
	}
	ci, err := memory.ReadInt[uint16](r)
	if err != nil {
		return NameEntry{}, err
	}
	cs, err := memory.ReadInt[uint16](r)
	if err != nil {
		return NameEntry{}, err
	}
	return NameEntry{Text: text, CaseInsensitiveHash: ci, CaseSensitiveHash: cs}, nil
}
