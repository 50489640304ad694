package utils

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/fatih/color"
)

func Fatal(v any) {
	fmt.Fprintf(os.Stderr, "ebpatch: %s %v\n", color.RedString("fatal:"), v)
	os.Exit(1)
}

func MustNo(err error) {
	if err != nil {
		Fatal(err.Error())
	}
}

// Read decodes a big-endian T from the start of data.
func Read[T any](data []byte) (val T) {
	reader := bytes.NewReader(data)
	err := binary.Read(reader, binary.BigEndian, &val)

	MustNo(err)

	return val
}

// Write encodes e big-endian at the start of data.
func Write[T any](data []byte, e T) {
	buf := &bytes.Buffer{}
	err := binary.Write(buf, binary.BigEndian, e)
	MustNo(err)
	copy(data, buf.Bytes())
}

func Assert(condition bool) {
	if !condition {
		Fatal("Assert Failed")
	}
}

// AlignTo rounds val up to a multiple of align. An align of 0 or 1 is a no-op.
func AlignTo(val, align uint64) uint64 {
	if align <= 1 {
		return val
	}
	return (val + align - 1) / align * align
}

// AlignPast rounds val up to the next multiple of align strictly greater
// than val.
func AlignPast(val, align uint64) uint64 {
	return val + align - val%align
}

// Grow extends buf with zero bytes until it is at least size bytes long.
func Grow(buf []byte, size uint64) []byte {
	if uint64(len(buf)) >= size {
		return buf
	}
	return append(buf, make([]byte, size-uint64(len(buf)))...)
}

func RemovePrefix(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return s, false
}
