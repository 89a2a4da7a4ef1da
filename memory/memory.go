package memory

import (
	"encoding/binary"
	"io"
)

type Int interface {
	int | uint | int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64
}

func ReadInt[T Int](r io.Reader) (T, error) {
	var value T
	err := binary.Read(r, binary.LittleEndian, &value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

func ReadBytes(r io.Reader, n int) ([]byte, error) {
	data := make([]byte, n)
	_, err := io.ReadFull(r, data)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func Skip(r io.Seeker, n int64) error {
	_, err := r.Seek(n, io.SeekCurrent)
	return err
}
