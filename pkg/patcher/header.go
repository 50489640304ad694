package patcher

import (
	"debug/elf"
	"ebpatch/pkg/utils"
	"unsafe"

	"github.com/go-kit/log/level"
)

const (
	ELFHeaderSize     = uint64(unsafe.Sizeof(elf.Header64{}))
	ProgramHeaderSize = uint64(unsafe.Sizeof(elf.Prog64{}))

	shoffOffset     = 0x28
	shentsizeOffset = 0x3a
)

type Header struct {
	Phoff     uint64
	Phentsize uint16
	Phnum     uint16
	Shoff     uint64
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

func (h *Header) HasSectionTable() bool {
	return h.Shentsize != 0 || h.Shnum != 0 || h.Shstrndx != 0
}

// ReadHeader validates the executable header and loads the program header
// table into ctx.Segments.
func ReadHeader(ctx *Context) error {
	if uint64(len(ctx.Buf)) < ELFHeaderSize {
		return formatErrorf("file too small (%d bytes)", len(ctx.Buf))
	}
	if !CheckMagic(ctx.Buf) {
		return formatErrorf("invalid magic, make sure the file was decrypted into an ELF")
	}
	if !IsBigEndian(ctx.Buf) {
		return formatErrorf("unexpected endianness, expected big endian")
	}

	ehdr := utils.Read[elf.Header64](ctx.Buf)
	if uint64(ehdr.Phentsize) != ProgramHeaderSize {
		return formatErrorf("unknown program header entry size %#x", ehdr.Phentsize)
	}

	ctx.Ehdr = Header{
		Phoff:     ehdr.Phoff,
		Phentsize: ehdr.Phentsize,
		Phnum:     ehdr.Phnum,
		Shoff:     ehdr.Shoff,
		Shentsize: ehdr.Shentsize,
		Shnum:     ehdr.Shnum,
		Shstrndx:  ehdr.Shstrndx,
	}

	end := ehdr.Phoff + uint64(ehdr.Phnum)*ProgramHeaderSize
	if end < ehdr.Phoff || end > uint64(len(ctx.Buf)) {
		return formatErrorf("program header table out of range: %#x", ehdr.Phoff)
	}

	if ctx.Ehdr.Shoff != 0 && ctx.Ehdr.Shoff < end && ctx.Ehdr.HasSectionTable() {
		return formatErrorf("section header table overlaps program headers: %#x", ehdr.Shoff)
	}

	ctx.Segments = ctx.Segments[:0]
	contents := ctx.Buf[ehdr.Phoff:end]
	for i := 0; i < int(ehdr.Phnum); i++ {
		p := utils.Read[elf.Prog64](contents)
		contents = contents[ProgramHeaderSize:]

		if p.Paddr != p.Vaddr {
			level.Warn(ctx.Logger).Log("msg", "skipped segment, physical address does not match virtual address", "segment", i)
			continue
		}
		ctx.Segments = append(ctx.Segments, NewSegment(i, p))
	}

	ctx.ProgramStart = end
	return nil
}
