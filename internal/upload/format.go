// Package upload converts guest texture memory into linear, row-aligned
// buffers a host graphics API can consume.
package upload

import "github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"

// Class selects the conversion applied to a format.
type Class uint8

const (
	ClassPacked Class = iota // byte copy per element
	ClassBlock  // opaque fixed-size blocks, never swizzled
	ClassD16    // big-endian unorm16 to little-endian
	ClassD16F   // half float depth to unorm16
	ClassD24S8  // D24 high, S8 low, repacked to host D24S8
	ClassD24F   // 24-bit float depth to unorm16
)

// FormatInfo describes the memory footprint of a texture format.
type FormatInfo struct {
	Name  string
	Class Class

	BlockW, BlockH int // texels per block, 1x1 for non-block formats
	SrcBytes       int // guest bytes per block or element
	DstBytes       int // output bytes per block or element
}

// Compressed reports whether the format is stored as opaque blocks.
func (f FormatInfo) Compressed() bool { return f.Class == ClassBlock }

func packedFormat(name string, n int) FormatInfo {
	return FormatInfo{Name: name, Class: ClassPacked, BlockW: 1, BlockH: 1, SrcBytes: n, DstBytes: n}
}

var formats = map[uint8]FormatInfo{
	gcm.TexFormatB8:                packedFormat("B8", 1),
	gcm.TexFormatA1R5G5B5:          packedFormat("A1R5G5B5", 2),
	gcm.TexFormatA4R4G4B4:          packedFormat("A4R4G4B4", 2),
	gcm.TexFormatR5G6B5:            packedFormat("R5G6B5", 2),
	gcm.TexFormatA8R8G8B8:          packedFormat("A8R8G8B8", 4),
	gcm.TexFormatG8B8:              packedFormat("G8B8", 2),
	gcm.TexFormatR6G5B5:            packedFormat("R6G5B5", 2),
	gcm.TexFormatX16:               packedFormat("X16", 2),
	gcm.TexFormatY16X16:            packedFormat("Y16X16", 4),
	gcm.TexFormatR5G5B5A1:          packedFormat("R5G5B5A1", 2),
	gcm.TexFormatCompressedHILO8:   packedFormat("HILO8", 2),
	gcm.TexFormatCompressedHILOS8:  packedFormat("HILO_S8", 2),
	gcm.TexFormatW16Z16Y16X16Float: packedFormat("W16Z16Y16X16_FLOAT", 8),
	gcm.TexFormatW32Z32Y32X32Float: packedFormat("W32Z32Y32X32_FLOAT", 16),
	gcm.TexFormatX32Float:          packedFormat("X32_FLOAT", 4),
	gcm.TexFormatD1R5G5B5:          packedFormat("D1R5G5B5", 2),
	gcm.TexFormatD8R8G8B8:          packedFormat("D8R8G8B8", 4),
	gcm.TexFormatY16X16Float:       packedFormat("Y16X16_FLOAT", 4),

	gcm.TexFormatCompressedDXT1:  {Name: "DXT1", Class: ClassBlock, BlockW: 4, BlockH: 4, SrcBytes: 8, DstBytes: 8},
	gcm.TexFormatCompressedDXT23: {Name: "DXT23", Class: ClassBlock, BlockW: 4, BlockH: 4, SrcBytes: 16, DstBytes: 16},
	gcm.TexFormatCompressedDXT45: {Name: "DXT45", Class: ClassBlock, BlockW: 4, BlockH: 4, SrcBytes: 16, DstBytes: 16},

	// 4:2:2 formats: two texels share one word.
	gcm.TexFormatCompressedB8R8G8R8: {Name: "B8R8_G8R8", Class: ClassBlock, BlockW: 2, BlockH: 1, SrcBytes: 4, DstBytes: 4},
	gcm.TexFormatCompressedR8B8R8G8: {Name: "R8B8_R8G8", Class: ClassBlock, BlockW: 2, BlockH: 1, SrcBytes: 4, DstBytes: 4},

	gcm.TexFormatDepth16:        {Name: "DEPTH16", Class: ClassD16, BlockW: 1, BlockH: 1, SrcBytes: 2, DstBytes: 2},
	gcm.TexFormatDepth16Float:   {Name: "DEPTH16_FLOAT", Class: ClassD16F, BlockW: 1, BlockH: 1, SrcBytes: 2, DstBytes: 2},
	gcm.TexFormatDepth24D8:      {Name: "DEPTH24_D8", Class: ClassD24S8, BlockW: 1, BlockH: 1, SrcBytes: 4, DstBytes: 4},
	gcm.TexFormatDepth24D8Float: {Name: "DEPTH24_D8_FLOAT", Class: ClassD24F, BlockW: 1, BlockH: 1, SrcBytes: 4, DstBytes: 2},
}

// Lookup returns the footprint of a format byte. LN and UN flags are
// ignored.
func Lookup(format uint8) (FormatInfo, bool) {
	f, ok := formats[gcm.BaseFormat(format)]
	return f, ok
}

// FormatName names a format byte for diagnostics.
func FormatName(format uint8) string {
	if f, ok := Lookup(format); ok {
		return f.Name
	}
	return "UNKNOWN"
}
