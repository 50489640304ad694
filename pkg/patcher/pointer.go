package patcher

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/go-kit/log/level"
)

type SearchStatus uint8

const (
	NotFound SearchStatus = iota
	Found
	Ambiguous
)

func (s SearchStatus) String() string {
	switch s {
	case Found:
		return "found"
	case Ambiguous:
		return "ambiguous"
	}
	return "not found"
}

type SearchResult struct {
	Status SearchStatus
	// Offset of the pointer, valid when Status is Found.
	Offset uint64
	// VirtAddr is the translated address that was searched for.
	VirtAddr uint64
}

// FindPointer looks for the 4-byte big-endian reference to the string at
// file offset addr. Only 4-aligned occurrences at or after the end of the
// program header table are considered. Unless unsafe is set, a second
// occurrence makes the result Ambiguous.
func FindPointer(ctx *Context, buf []byte, addr uint64, unsafe bool) SearchResult {
	seg := FindSegment(ctx, addr)
	if seg == nil {
		return SearchResult{Status: NotFound}
	}

	vaddr := seg.ToVirtAddr(addr)
	res := SearchResult{Status: NotFound, VirtAddr: vaddr}
	if vaddr > math.MaxUint32 {
		level.Warn(ctx.Logger).Log("msg", "address does not fit in a 32-bit pointer", "address", hex(vaddr))
		return res
	}

	var needle [4]byte
	binary.BigEndian.PutUint32(needle[:], uint32(vaddr))

	first, ok := nextAligned(buf, needle[:], ctx.ProgramStart)
	if !ok {
		return res
	}
	res.Status = Found
	res.Offset = first

	if unsafe {
		return res
	}

	next, ok := nextAligned(buf, needle[:], first+4)
	if !ok {
		return res
	}

	res.Status = Ambiguous
	level.Warn(ctx.Logger).Log("msg", "found duplicate address", "address", hex(vaddr), "offset", hex(first))
	for ok {
		level.Warn(ctx.Logger).Log("msg", "found duplicate address", "address", hex(vaddr), "offset", hex(next))
		next, ok = nextAligned(buf, needle[:], next+4)
	}
	return res
}

func nextAligned(buf, needle []byte, from uint64) (uint64, bool) {
	for from < uint64(len(buf)) {
		idx := bytes.Index(buf[from:], needle)
		if idx < 0 {
			return 0, false
		}

		pos := from + uint64(idx)
		if pos%4 == 0 {
			return pos, true
		}
		from = pos + 4 - pos%4
	}
	return 0, false
}
