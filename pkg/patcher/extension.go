package patcher

import (
	"ebpatch/pkg/utils"
	"fmt"
	"math"

	"github.com/go-kit/log/level"
)

// SelectExtension picks the segment that receives relocated strings: the one
// a previous run marked through the section header offset, or else the first
// empty placeholder, moved past the highest virtual address and to the end of
// the file.
func SelectExtension(ctx *Context) error {
	if ctx.Trimmed {
		for _, seg := range ctx.Segments {
			if seg.FileAddr == ctx.Ehdr.Shoff {
				ctx.Ext = seg
			}
		}
		if ctx.Ext != nil {
			level.Info(ctx.Logger).Log("msg", "found extension segment from previous run", "segment", ctx.Ext.Index)
			return checkExtension(ctx)
		}
	}

	level.Debug(ctx.Logger).Log("msg", "looking for a suitable empty segment")
	for _, seg := range ctx.Segments {
		if seg.IsPlaceholder() {
			ctx.Ext = seg
			break
		}
	}
	if ctx.Ext == nil {
		return &ConfigError{Msg: "no extension segment available"}
	}

	var base uint64
	for _, seg := range ctx.Segments {
		if end := seg.VirtAddr + seg.MemSize; end > base {
			base = end
		}
	}

	vaddr := utils.AlignPast(base, ctx.Args.Align)
	if vaddr <= base {
		return &ConfigError{Msg: fmt.Sprintf("no virtual address left after %s", hex(base))}
	}
	ctx.Ext.VirtAddr = vaddr
	ctx.Ext.FileAddr = uint64(len(ctx.Buf))

	level.Info(ctx.Logger).Log("msg", "found empty segment", "segment", ctx.Ext.Index,
		"vaddr", hex(ctx.Ext.VirtAddr), "offset", hex(ctx.Ext.FileAddr))
	return checkExtension(ctx)
}

func checkExtension(ctx *Context) error {
	ext := ctx.Ext
	if ext.FileAddr > uint64(len(ctx.Buf)) {
		return &ConfigError{Msg: fmt.Sprintf("extension segment %d starts at %s, past the end of the file", ext.Index, hex(ext.FileAddr))}
	}
	if ext.VirtAddr > math.MaxUint32 {
		return &ConfigError{Msg: fmt.Sprintf("extension segment %d address %s does not fit in a 32-bit pointer", ext.Index, hex(ext.VirtAddr))}
	}
	return nil
}
