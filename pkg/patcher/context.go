package patcher

import (
	"github.com/go-kit/log"
)

const DefaultAlign = 0x10000

type ContextArgs struct {
	Update bool
	Unsafe bool
	// Align of a synthesized extension segment, DefaultAlign when zero.
	Align uint64
}

// Context is the state of one patch run. Nothing in it outlives the run.
type Context struct {
	Args   ContextArgs
	Logger log.Logger

	Buf  []byte
	Ehdr Header

	Segments     []*Segment
	ProgramStart uint64

	Ext *Segment
	// Trimmed reports that the section table had already been disposed of
	// by an earlier run.
	Trimmed bool

	// Snapshot is the buffer as it was before any string was written. All
	// searches run against it.
	Snapshot []byte

	Fragments []*Fragment
}

func NewContext(buf []byte, args ContextArgs, logger log.Logger) *Context {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if args.Align == 0 {
		args.Align = DefaultAlign
	}

	return &Context{
		Args:   args,
		Logger: logger,
		Buf:    append([]byte(nil), buf...),
	}
}
