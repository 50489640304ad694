package patcher

import (
	"unicode/utf8"
)

type SkipReason uint8

const (
	Patched SkipReason = iota
	SkipEmptyText
	SkipAlreadyPresent
	SkipNoAnchor
	SkipUnresolved
	SkipNotFound
	SkipAmbiguous
	SkipOutOfRange
)

func (r SkipReason) String() string {
	switch r {
	case Patched:
		return "patched"
	case SkipEmptyText:
		return "empty text"
	case SkipAlreadyPresent:
		return "previously added"
	case SkipNoAnchor:
		return "address was not given"
	case SkipUnresolved:
		return "address could not be found from the previous string"
	case SkipNotFound:
		return "address was not found"
	case SkipAmbiguous:
		return "address was found multiple times"
	case SkipOutOfRange:
		return "new address does not fit in a 32-bit pointer"
	}
	return "unknown"
}

type Outcome struct {
	Index  int
	Reason SkipReason
	// Address is the resolved file offset of the original string, zero when
	// resolution did not happen.
	Address uint64
	// Pointer is the offset of the rewritten reference.
	Pointer  uint64
	Fragment *Fragment
}

func (o Outcome) Patched() bool {
	return o.Reason == Patched
}

type Report struct {
	Outcomes []Outcome
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

func (r *Report) Patched() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Patched() {
			n++
		}
	}
	return n
}

func (r *Report) Skipped() int {
	return len(r.Outcomes) - r.Patched()
}

const previewLen = 20

func Preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLen {
		return `"` + s + `"`
	}
	runes := []rune(s)
	return `"` + string(runes[:previewLen]) + `..."`
}
