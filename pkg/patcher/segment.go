package patcher

import "debug/elf"

type Segment struct {
	// Index is the entry's position in the program header table.
	Index int

	Loadable bool
	Readable bool

	FileAddr uint64
	VirtAddr uint64
	FileSize uint64
	MemSize  uint64
	Align    uint64
}

func NewSegment(index int, p elf.Prog64) *Segment {
	return &Segment{
		Index: index,
		// only the low byte of the type is compared
		Loadable: uint8(p.Type) == uint8(elf.PT_LOAD),
		Readable: p.Flags&uint32(elf.PF_R) != 0,
		FileAddr: p.Off,
		VirtAddr: p.Vaddr,
		FileSize: p.Filesz,
		MemSize:  p.Memsz,
		Align:    p.Align,
	}
}

func (s *Segment) ContainsFileAddr(addr uint64) bool {
	return addr > s.FileAddr && addr < s.FileAddr+s.FileSize
}

func (s *Segment) ToVirtAddr(addr uint64) uint64 {
	return addr - s.FileAddr + s.VirtAddr
}

func (s *Segment) IsPlaceholder() bool {
	return s.Loadable && s.Readable &&
		s.VirtAddr == 0 && s.FileSize == 0 && s.MemSize == 0
}

func FindSegment(ctx *Context, addr uint64) *Segment {
	for _, seg := range ctx.Segments {
		if seg.ContainsFileAddr(addr) {
			return seg
		}
	}
	return nil
}
