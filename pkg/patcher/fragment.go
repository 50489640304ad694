package patcher

import "ebpatch/pkg/utils"

type Fragment struct {
	Offset   uint64
	VirtAddr uint64
	// Size includes the terminator but not the alignment padding.
	Size uint64
}

func NewFragment(ext *Segment, offset uint64, size uint64) *Fragment {
	return &Fragment{
		Offset:   offset,
		VirtAddr: offset - ext.FileAddr + ext.VirtAddr,
		Size:     size,
	}
}

// WriteFragment stores text and its terminator at offset, zero-pads up to
// the next StringAlign boundary relative to the segment start and returns
// the offset following the padding.
func WriteFragment(ctx *Context, offset uint64, text []byte) (*Fragment, uint64) {
	utils.Assert(offset >= ctx.Ext.FileAddr)

	frag := NewFragment(ctx.Ext, offset, uint64(len(text))+1)

	end := offset + frag.Size
	next := ctx.Ext.FileAddr + utils.AlignTo(end-ctx.Ext.FileAddr, StringAlign)

	ctx.Buf = utils.Grow(ctx.Buf, next)
	copy(ctx.Buf[offset:], text)
	clear(ctx.Buf[offset+uint64(len(text)) : next])

	ctx.Fragments = append(ctx.Fragments, frag)
	return frag, next
}
