package patcher

import (
	"ebpatch/pkg/utils"

	"github.com/go-kit/log/level"
)

const SectionTableAlign = 0x10000

// OutputShdr is the section header table. The loader never reads it, so it
// is cut off the end of the file and its descriptors are zeroed. A table
// whose descriptors are already zero was dropped by an earlier run.
type OutputShdr struct {
	Chunk

	dropped bool
}

func NewOutputShdr(ctx *Context) *OutputShdr {
	return &OutputShdr{Chunk: NewChunk("shdr", ctx.Ehdr.Shoff)}
}

func (o *OutputShdr) UpdateShdr(ctx *Context) {
	if o.Offset == 0 {
		return
	}

	if !ctx.Ehdr.HasSectionTable() {
		ctx.Trimmed = true
		return
	}

	level.Info(ctx.Logger).Log("msg", "trimming section table", "offset", o.Offset)

	if o.Offset < uint64(len(ctx.Buf)) {
		ctx.Buf = ctx.Buf[:o.Offset]
	}
	ctx.Buf = utils.Grow(ctx.Buf, utils.AlignTo(uint64(len(ctx.Buf)), SectionTableAlign))

	ctx.Ehdr.Shentsize = 0
	ctx.Ehdr.Shnum = 0
	ctx.Ehdr.Shstrndx = 0
	o.dropped = true
}

func (o *OutputShdr) CopyBuf(ctx *Context) {
	if o.dropped {
		utils.Write(ctx.Buf[shentsizeOffset:], [3]uint16{})
	}
}

func DisposeSectionTable(ctx *Context) {
	shdr := NewOutputShdr(ctx)
	shdr.UpdateShdr(ctx)
	shdr.CopyBuf(ctx)
}
