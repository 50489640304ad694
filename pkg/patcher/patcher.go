// Package patcher relocates string literals of a big-endian 64-bit ELF
// executable into an extension segment and repoints their references, so
// replacement strings are not limited to the size of the originals.
package patcher

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

type Result struct {
	Buf       []byte
	Report    *Report
	Extension Segment
}

// Patch applies records to a copy of buf. Format and configuration problems
// are returned as *FormatError or *ConfigError and produce no output;
// records that cannot be applied are skipped and listed in the report.
func Patch(buf []byte, records []StringRecord, args ContextArgs, logger log.Logger) (*Result, error) {
	ctx := NewContext(buf, args, logger)

	if err := ReadHeader(ctx); err != nil {
		return nil, errors.Wrap(err, "reading header")
	}

	DisposeSectionTable(ctx)

	if err := SelectExtension(ctx); err != nil {
		return nil, errors.Wrap(err, "selecting extension segment")
	}

	ctx.Snapshot = append([]byte(nil), ctx.Buf...)

	report := RelocateStrings(ctx, records)

	chunks := []Chunker{NewOutputEhdr(), NewOutputPhdr(ctx)}
	for _, chunk := range chunks {
		chunk.UpdateShdr(ctx)
	}
	for _, chunk := range chunks {
		level.Debug(ctx.Logger).Log("msg", "writing", "chunk", chunk.GetName())
		chunk.CopyBuf(ctx)
	}

	return &Result{
		Buf:       ctx.Buf,
		Report:    report,
		Extension: *ctx.Ext,
	}, nil
}
