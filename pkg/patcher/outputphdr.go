package patcher

import (
	"debug/elf"
	"ebpatch/pkg/utils"

	"github.com/go-kit/log/level"
)

// OutputPhdr is the program header entry of the extension segment.
type OutputPhdr struct {
	Chunk

	Seg *Segment
}

func NewOutputPhdr(ctx *Context) *OutputPhdr {
	return &OutputPhdr{
		Chunk: NewChunk("phdr.ext", ctx.Ehdr.Phoff+uint64(ctx.Ext.Index)*ProgramHeaderSize),
		Seg:   ctx.Ext,
	}
}

func (o *OutputPhdr) UpdateShdr(ctx *Context) {
	utils.Assert(o.Seg.FileAddr <= uint64(len(ctx.Buf)))

	o.Seg.FileSize = uint64(len(ctx.Buf)) - o.Seg.FileAddr
	o.Seg.MemSize = o.Seg.FileSize
}

// CopyBuf rewrites the entry and pads the file to the segment alignment, so
// it must run last.
func (o *OutputPhdr) CopyBuf(ctx *Context) {
	p := utils.Read[elf.Prog64](ctx.Buf[o.Offset:])
	p.Off = o.Seg.FileAddr
	p.Vaddr = o.Seg.VirtAddr
	p.Paddr = o.Seg.VirtAddr
	p.Filesz = o.Seg.FileSize
	p.Memsz = o.Seg.MemSize
	utils.Write(ctx.Buf[o.Offset:], p)

	ctx.Buf = utils.Grow(ctx.Buf, utils.AlignTo(uint64(len(ctx.Buf)), o.Seg.Align))

	level.Debug(ctx.Logger).Log("msg", "updated extension segment", "segment", o.Seg.Index,
		"offset", hex(o.Seg.FileAddr), "vaddr", hex(o.Seg.VirtAddr), "size", hex(o.Seg.FileSize))
}
