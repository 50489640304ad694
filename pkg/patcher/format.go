package patcher

import (
	"bytes"
	"debug/elf"
)

// CheckMagic reports whether contents carry the "ELF" signature. Only bytes
// 1 to 3 are compared; the leading 0x7f is not checked.
func CheckMagic(contents []byte) bool {
	return len(contents) >= 4 && bytes.Equal(contents[1:4], []byte(elf.ELFMAG[1:]))
}

func IsBigEndian(contents []byte) bool {
	return len(contents) > elf.EI_DATA && elf.Data(contents[elf.EI_DATA]) == elf.ELFDATA2MSB
}
