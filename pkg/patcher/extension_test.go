package patcher

import (
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSectionTable(img *testImage) *testImage {
	img.shoff = 0x700
	img.shdesc = [3]uint16{0x40, 2, 1}
	return img
}

func TestDisposeSectionTable(t *testing.T) {
	ctx := mustParse(t, withSectionTable(newTestImage()).build(t))

	DisposeSectionTable(ctx)

	assert.False(t, ctx.Trimmed)
	assert.Len(t, ctx.Buf, SectionTableAlign)
	assert.False(t, ctx.Ehdr.HasSectionTable())
	assert.Equal(t, make([]byte, 6), ctx.Buf[shentsizeOffset:shentsizeOffset+6])
	assert.Equal(t, make([]byte, SectionTableAlign-0x700), ctx.Buf[0x700:])
}

func TestDisposeSectionTableIdempotent(t *testing.T) {
	ctx := mustParse(t, withSectionTable(newTestImage()).build(t))
	DisposeSectionTable(ctx)
	once := append([]byte(nil), ctx.Buf...)

	again := mustParse(t, once)
	DisposeSectionTable(again)

	assert.True(t, again.Trimmed)
	assert.Equal(t, once, again.Buf)
}

func TestDisposeSectionTableWithoutTable(t *testing.T) {
	buf := newTestImage().build(t)
	ctx := mustParse(t, buf)

	DisposeSectionTable(ctx)

	assert.False(t, ctx.Trimmed)
	assert.Equal(t, buf, ctx.Buf)
}

func TestSelectExtensionPlaceholder(t *testing.T) {
	ctx := mustParse(t, newTestImage().build(t))
	ctx.Args.Align = DefaultAlign

	require.NoError(t, SelectExtension(ctx))

	require.Same(t, ctx.Segments[1], ctx.Ext)
	assert.Equal(t, uint64(0x20000), ctx.Ext.VirtAddr)
	assert.Equal(t, uint64(imageSize), ctx.Ext.FileAddr)
}

func TestSelectExtensionAlignment(t *testing.T) {
	for _, tc := range []struct {
		name   string
		memsz  uint64
		align  uint64
		expect uint64
	}{
		{"unaligned end", 0x800, 0x1000, 0x11000},
		{"aligned end moves a full step", 0x1000, 0x1000, 0x12000},
		{"default", 0x800, DefaultAlign, 0x20000},
	} {
		t.Run(tc.name, func(t *testing.T) {
			img := newTestImage()
			img.phdrs[0].Memsz = tc.memsz
			ctx := mustParse(t, img.build(t))
			ctx.Args.Align = tc.align

			require.NoError(t, SelectExtension(ctx))
			assert.Equal(t, tc.expect, ctx.Ext.VirtAddr)
		})
	}
}

func TestSelectExtensionNone(t *testing.T) {
	img := newTestImage()
	img.phdrs = []elf.Prog64{textSegment()}
	ctx := mustParse(t, img.build(t))
	ctx.Args.Align = DefaultAlign

	err := SelectExtension(ctx)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)

	_, err = Patch(img.build(t), nil, ContextArgs{}, nil)
	require.ErrorAs(t, err, &ce)
}

func TestSelectExtensionIgnoresNonReadablePlaceholder(t *testing.T) {
	img := newTestImage()
	hidden := placeholderSegment()
	hidden.Flags = uint32(elf.PF_W)
	img.phdrs = []elf.Prog64{textSegment(), hidden, placeholderSegment()}
	ctx := mustParse(t, img.build(t))
	ctx.Args.Align = DefaultAlign

	require.NoError(t, SelectExtension(ctx))
	assert.Equal(t, 2, ctx.Ext.Index)
}

func TestSelectExtensionFromMarker(t *testing.T) {
	img := newTestImage()
	ext := placeholderSegment()
	ext.Off = imageSize
	ext.Vaddr = 0x20000
	ext.Paddr = 0x20000
	ext.Filesz = 0x10
	ext.Memsz = 0x10
	img.phdrs = []elf.Prog64{textSegment(), ext, placeholderSegment()}
	img.shoff = imageSize
	ctx := mustParse(t, img.build(t))

	DisposeSectionTable(ctx)
	require.True(t, ctx.Trimmed)
	require.NoError(t, SelectExtension(ctx))

	assert.Equal(t, 1, ctx.Ext.Index)
	assert.Equal(t, uint64(0x20000), ctx.Ext.VirtAddr)
}

func TestSelectExtensionMarkerPastEOF(t *testing.T) {
	img := newTestImage()
	ext := placeholderSegment()
	ext.Off = 0x900
	ext.Vaddr = 0x20000
	ext.Paddr = 0x20000
	ext.Filesz = 0x10
	ext.Memsz = 0x10
	img.phdrs = []elf.Prog64{textSegment(), ext}
	img.shoff = 0x900

	res, err := Patch(img.build(t), nil, ContextArgs{}, nil)
	require.Nil(t, res)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "past the end of the file")
}

func TestSelectExtensionAddressOver32Bits(t *testing.T) {
	img := newTestImage()
	img.phdrs[0].Vaddr = 0x1_0001_0000
	img.phdrs[0].Paddr = 0x1_0001_0000

	res, err := Patch(img.build(t), []StringRecord{explicit("Hi", 0x400)}, ContextArgs{}, nil)
	require.Nil(t, res)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "32-bit")
}
