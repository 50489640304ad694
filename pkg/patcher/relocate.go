package patcher

import (
	"bytes"
	"ebpatch/pkg/utils"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// StringRecord is one replacement: the new text, already encoded for the
// image, and the file offset of the string it replaces.
type StringRecord struct {
	Text    []byte
	Address Address
	// Display is a readable form of Text for diagnostics. Text is used when
	// it is empty.
	Display string
}

func (r *StringRecord) preview() string {
	if r.Display != "" {
		return Preview(r.Display)
	}
	return Preview(string(r.Text))
}

// RelocateStrings writes every record into the extension segment and
// repoints its reference. Records that cannot be applied are skipped and
// reported; they never undo earlier patches.
func RelocateStrings(ctx *Context, records []StringRecord) *Report {
	ext := ctx.Ext
	report := &Report{Outcomes: make([]Outcome, 0, len(records))}

	cursor := ext.FileAddr
	if ctx.Args.Update {
		// continue after the previous run and drop its trailing padding
		cursor = ext.FileAddr + ext.FileSize
		if cursor <= uint64(len(ctx.Buf)) {
			ctx.Buf = ctx.Buf[:cursor]
		}
	}

	var existing []byte
	if ext.FileAddr < uint64(len(ctx.Snapshot)) {
		existing = ctx.Snapshot[ext.FileAddr:]
	}

	var (
		prev    uint64
		hasPrev bool
	)
	for i := range records {
		rec := &records[i]
		logger := log.With(ctx.Logger, "index", i, "text", rec.preview())
		out := Outcome{Index: i}

		if len(rec.Text) == 0 {
			level.Warn(logger).Log("msg", "skipped string", "reason", SkipEmptyText)
			out.Reason = SkipEmptyText
			report.add(out)
			continue
		}

		if ctx.Args.Update && bytes.Contains(existing, rec.Text) {
			level.Debug(logger).Log("msg", "skipped string", "reason", SkipAlreadyPresent)
			out.Reason = SkipAlreadyPresent
			report.add(out)
			continue
		}

		var addr uint64
		switch {
		case !rec.Address.IsImplicit():
			addr = rec.Address.Value
		case !hasPrev:
			level.Warn(logger).Log("msg", "skipped string", "reason", SkipNoAnchor)
			out.Reason = SkipNoAnchor
			report.add(out)
			continue
		default:
			next, err := NextStringAddr(ctx.Snapshot, prev)
			if err != nil {
				level.Warn(logger).Log("msg", "skipped string", "reason", SkipUnresolved, "err", err)
				out.Reason = SkipUnresolved
				report.add(out)
				continue
			}
			addr = next
		}

		prev, hasPrev = addr, true
		out.Address = addr

		res := FindPointer(ctx, ctx.Snapshot, addr, ctx.Args.Unsafe)
		switch res.Status {
		case NotFound:
			level.Warn(logger).Log("msg", "skipped string", "reason", SkipNotFound, "address", hex(addr))
			out.Reason = SkipNotFound
			report.add(out)
			continue
		case Ambiguous:
			level.Warn(logger).Log("msg", "skipped string", "reason", SkipAmbiguous, "address", hex(addr))
			out.Reason = SkipAmbiguous
			report.add(out)
			continue
		}

		if cursor-ext.FileAddr+ext.VirtAddr > math.MaxUint32 {
			level.Warn(logger).Log("msg", "skipped string", "reason", SkipOutOfRange, "offset", hex(cursor))
			out.Reason = SkipOutOfRange
			report.add(out)
			continue
		}

		frag, next := WriteFragment(ctx, cursor, rec.Text)
		cursor = next

		ctx.Buf = utils.Grow(ctx.Buf, res.Offset+4)
		utils.Write(ctx.Buf[res.Offset:], uint32(frag.VirtAddr))

		out.Pointer = res.Offset
		out.Fragment = frag
		report.add(out)

		level.Debug(logger).Log("msg", "patched string", "address", hex(addr),
			"pointer", hex(res.Offset), "new_address", hex(frag.VirtAddr))
	}

	return report
}
