package patcher

import (
	"debug/elf"
	"ebpatch/pkg/utils"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	textVaddr = 0x10000
	imageSize = 0x800
)

type testImage struct {
	size   int
	phdrs  []elf.Prog64
	shoff  uint64
	shdesc [3]uint16
	data   map[uint64][]byte
	ptrs   map[uint64]uint32
}

func textSegment() elf.Prog64 {
	return elf.Prog64{
		Type:   uint32(elf.PT_LOAD),
		Flags:  uint32(elf.PF_R | elf.PF_X),
		Off:    0,
		Vaddr:  textVaddr,
		Paddr:  textVaddr,
		Filesz: imageSize,
		Memsz:  imageSize,
		Align:  0x10000,
	}
}

func placeholderSegment() elf.Prog64 {
	return elf.Prog64{
		Type:  uint32(elf.PT_LOAD),
		Flags: uint32(elf.PF_R),
		Align: 0x10000,
	}
}

// newTestImage lays out a text segment holding "Hello", "World" and "Third"
// 8 bytes apart at 0x400, one pointer to each at 0x200, and an empty
// placeholder segment.
func newTestImage() *testImage {
	return &testImage{
		size:  imageSize,
		phdrs: []elf.Prog64{textSegment(), placeholderSegment()},
		data: map[uint64][]byte{
			0x400: []byte("Hello\x00"),
			0x408: []byte("World\x00"),
			0x410: []byte("Third\x00"),
		},
		ptrs: map[uint64]uint32{
			0x200: textVaddr + 0x400,
			0x204: textVaddr + 0x408,
			0x208: textVaddr + 0x410,
		},
	}
}

func (img *testImage) build(t *testing.T) []byte {
	t.Helper()

	buf := make([]byte, img.size)
	ehdr := elf.Header64{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_PPC64),
		Version:   uint32(elf.EV_CURRENT),
		Phoff:     ELFHeaderSize,
		Shoff:     img.shoff,
		Ehsize:    uint16(ELFHeaderSize),
		Phentsize: uint16(ProgramHeaderSize),
		Phnum:     uint16(len(img.phdrs)),
		Shentsize: img.shdesc[0],
		Shnum:     img.shdesc[1],
		Shstrndx:  img.shdesc[2],
	}
	copy(ehdr.Ident[:], elf.ELFMAG)
	ehdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	ehdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	ehdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	utils.Write(buf, ehdr)

	for i, p := range img.phdrs {
		utils.Write(buf[ELFHeaderSize+uint64(i)*ProgramHeaderSize:], p)
	}
	for off, b := range img.data {
		copy(buf[off:], b)
	}
	for off, v := range img.ptrs {
		binary.BigEndian.PutUint32(buf[off:], v)
	}

	require.Len(t, buf, img.size)
	return buf
}

func u32At(buf []byte, off uint64) uint32 {
	return binary.BigEndian.Uint32(buf[off:])
}

func mustParse(t *testing.T, buf []byte) *Context {
	t.Helper()
	ctx := NewContext(buf, ContextArgs{}, nil)
	require.NoError(t, ReadHeader(ctx))
	return ctx
}

func explicit(text string, addr uint64) StringRecord {
	return StringRecord{Text: []byte(text), Address: Address{Kind: AddressHex, Value: addr}}
}

func implicit(text string) StringRecord {
	return StringRecord{Text: []byte(text)}
}
