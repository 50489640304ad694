package patcher

import "ebpatch/pkg/utils"

// OutputEhdr is the section header offset field. It points at the extension
// segment: with the section descriptors zeroed the loader ignores it, and an
// update run uses it to find the segment again.
type OutputEhdr struct {
	Chunk
}

func NewOutputEhdr() *OutputEhdr {
	return &OutputEhdr{Chunk: NewChunk("ehdr.shoff", shoffOffset)}
}

func (o *OutputEhdr) UpdateShdr(ctx *Context) {
	ctx.Ehdr.Shoff = ctx.Ext.FileAddr
}

func (o *OutputEhdr) CopyBuf(ctx *Context) {
	utils.Write(ctx.Buf[o.Offset:], ctx.Ehdr.Shoff)
}
