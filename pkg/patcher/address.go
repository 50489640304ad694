package patcher

import (
	"bytes"
	"ebpatch/pkg/utils"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type AddressKind uint8

const (
	AddressImplicit AddressKind = iota
	AddressDecimal
	AddressHex
)

type Address struct {
	Kind  AddressKind
	Value uint64
}

func ExplicitAddress(v uint64) Address {
	return Address{Kind: AddressDecimal, Value: v}
}

func (a Address) IsImplicit() bool {
	return a.Kind == AddressImplicit
}

func (a Address) String() string {
	switch a.Kind {
	case AddressHex:
		return hex(a.Value)
	case AddressDecimal:
		return strconv.FormatUint(a.Value, 10)
	}
	return "implicit"
}

// ParseAddress parses a textual address, hex when prefixed with "0x" and
// decimal otherwise. An empty string is an implicit address.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, nil
	}

	kind, base, digits := AddressDecimal, 10, s
	if rest, ok := utils.RemovePrefix(strings.ToLower(s), "0x"); ok {
		kind, base, digits = AddressHex, 16, rest
	}

	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return Address{}, errors.Wrapf(err, "invalid address %q", s)
	}
	return Address{Kind: kind, Value: v}, nil
}

const StringAlign = 8

// NextStringAddr guesses where the string following the one at prev starts:
// the first 8-aligned offset past its terminator. The guess is rejected when
// the byte found there is zero.
func NextStringAddr(buf []byte, prev uint64) (uint64, error) {
	if prev >= uint64(len(buf)) {
		return 0, fmt.Errorf("previous address %s is outside the file", hex(prev))
	}

	idx := bytes.IndexByte(buf[prev:], 0)
	if idx < 0 {
		return 0, fmt.Errorf("no terminator after %s", hex(prev))
	}

	next := utils.AlignPast(prev+uint64(idx), StringAlign)
	if next >= uint64(len(buf)) || buf[next] == 0 {
		return 0, fmt.Errorf("no string found at %s", hex(next))
	}
	return next, nil
}

func hex(v uint64) string {
	return fmt.Sprintf("%#x", v)
}
