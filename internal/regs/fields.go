package regs

func bits(v uint32, off, n uint) uint32 { return (v >> off) & (1<<n - 1) }

func put(v uint32, off, n uint) uint32 { return (v & (1<<n - 1)) << off }

// Bool decodes an enable register: any non-zero value is true.
func Bool(v uint32) bool { return v != 0 }

func EncodeBool(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Span is a horizontal or vertical origin/size pair (viewport, scissor,
// surface clip, clear rect).
type Span uint32

func (v Span) Origin() uint16 { return uint16(bits(uint32(v), 0, 16)) }
func (v Span) Size() uint16   { return uint16(bits(uint32(v), 16, 16)) }

func EncodeSpan(origin, size uint16) Span {
	return Span(put(uint32(origin), 0, 16) | put(uint32(size), 16, 16))
}

// SurfaceFormat is NV4097_SET_SURFACE_FORMAT.
type SurfaceFormat uint32

func (v SurfaceFormat) Color() uint8     { return uint8(bits(uint32(v), 0, 5)) }
func (v SurfaceFormat) Depth() uint8     { return uint8(bits(uint32(v), 5, 3)) }
func (v SurfaceFormat) Type() uint8      { return uint8(bits(uint32(v), 8, 4)) }
func (v SurfaceFormat) Antialias() uint8 { return uint8(bits(uint32(v), 12, 4)) }
func (v SurfaceFormat) LogWidth() uint8  { return uint8(bits(uint32(v), 16, 8)) }
func (v SurfaceFormat) LogHeight() uint8 { return uint8(bits(uint32(v), 24, 8)) }

func EncodeSurfaceFormat(color, depth, typ, aa, logW, logH uint8) SurfaceFormat {
	return SurfaceFormat(put(uint32(color), 0, 5) | put(uint32(depth), 5, 3) |
		put(uint32(typ), 8, 4) | put(uint32(aa), 12, 4) |
		put(uint32(logW), 16, 8) | put(uint32(logH), 24, 8))
}

// ColorTarget is NV4097_SET_SURFACE_COLOR_TARGET.
type ColorTarget uint32

const (
	TargetNone ColorTarget = 0
	Target0    ColorTarget = 1
	Target1    ColorTarget = 2
	TargetMRT1 ColorTarget = 0x13
	TargetMRT2 ColorTarget = 0x17
	TargetMRT3 ColorTarget = 0x1f
)

// Indices returns the color surfaces written by the target selection.
func (v ColorTarget) Indices() []int {
	switch v {
	case Target0:
		return []int{0}
	case Target1:
		return []int{1}
	case TargetMRT1:
		return []int{0, 1}
	case TargetMRT2:
		return []int{0, 1, 2}
	case TargetMRT3:
		return []int{0, 1, 2, 3}
	}
	return nil
}

// Pair holds an RGB value in the low half and an alpha value in the high
// half (blend factors, blend equation).
type Pair uint32

func (v Pair) RGB() uint16   { return uint16(bits(uint32(v), 0, 16)) }
func (v Pair) Alpha() uint16 { return uint16(bits(uint32(v), 16, 16)) }

func EncodePair(rgb, alpha uint16) Pair {
	return Pair(put(uint32(rgb), 0, 16) | put(uint32(alpha), 16, 16))
}

// ColorMask is NV4097_SET_COLOR_MASK: one byte per channel in B, G, R, A
// order from the low byte.
type ColorMask uint32

func (v ColorMask) B() bool { return bits(uint32(v), 0, 8) != 0 }
func (v ColorMask) G() bool { return bits(uint32(v), 8, 8) != 0 }
func (v ColorMask) R() bool { return bits(uint32(v), 16, 8) != 0 }
func (v ColorMask) A() bool { return bits(uint32(v), 24, 8) != 0 }

func EncodeColorMask(r, g, b, a bool) ColorMask {
	return ColorMask(EncodeBool(b) | EncodeBool(g)<<8 | EncodeBool(r)<<16 | EncodeBool(a)<<24)
}

// ShaderProgram is NV4097_SET_SHADER_PROGRAM: location+1 in the low two
// bits, offset in the rest.
type ShaderProgram uint32

func (v ShaderProgram) Location() uint8 { return uint8(v&3) - 1 }
func (v ShaderProgram) Offset() uint32  { return uint32(v) &^ 3 }

func EncodeShaderProgram(location uint8, offset uint32) ShaderProgram {
	return ShaderProgram(offset&^3 | uint32(location+1)&3)
}

// VertexFormat is NV4097_SET_VERTEX_DATA_ARRAY_FORMAT. Size 0 disables the
// attribute.
type VertexFormat uint32

func (v VertexFormat) Type() uint8       { return uint8(bits(uint32(v), 0, 3)) }
func (v VertexFormat) Size() uint8       { return uint8(bits(uint32(v), 4, 4)) }
func (v VertexFormat) Stride() uint8     { return uint8(bits(uint32(v), 8, 8)) }
func (v VertexFormat) Frequency() uint16 { return uint16(bits(uint32(v), 16, 16)) }
func (v VertexFormat) Enabled() bool     { return v.Size() != 0 }

func EncodeVertexFormat(typ, size, stride uint8, freq uint16) VertexFormat {
	return VertexFormat(put(uint32(typ), 0, 3) | put(uint32(size), 4, 4) |
		put(uint32(stride), 8, 8) | put(uint32(freq), 16, 16))
}

// VertexOffset is NV4097_SET_VERTEX_DATA_ARRAY_OFFSET.
type VertexOffset uint32

func (v VertexOffset) Location() uint8 { return uint8(bits(uint32(v), 31, 1)) }
func (v VertexOffset) Offset() uint32  { return bits(uint32(v), 0, 31) }

func EncodeVertexOffset(location uint8, offset uint32) VertexOffset {
	return VertexOffset(put(uint32(location), 31, 1) | put(offset, 0, 31))
}

// DrawRange is the argument of NV4097_DRAW_ARRAYS and DRAW_INDEX_ARRAY:
// 24-bit first element and an 8-bit count minus one.
type DrawRange uint32

func (v DrawRange) First() uint32 { return bits(uint32(v), 0, 24) }
func (v DrawRange) Count() uint32 { return bits(uint32(v), 24, 8) + 1 }

// EncodeDrawRange packs a range of 1..256 elements.
func EncodeDrawRange(first, count uint32) DrawRange {
	return DrawRange(put(first, 0, 24) | put(count-1, 24, 8))
}

// IndexDMA is NV4097_SET_INDEX_ARRAY_DMA.
type IndexDMA uint32

func (v IndexDMA) Location() uint8 { return uint8(bits(uint32(v), 0, 4)) }
func (v IndexDMA) Type() uint8     { return uint8(bits(uint32(v), 4, 8)) }

func EncodeIndexDMA(location, typ uint8) IndexDMA {
	return IndexDMA(put(uint32(location), 0, 4) | put(uint32(typ), 4, 8))
}

// ZStencilClear is NV4097_SET_ZSTENCIL_CLEAR_VALUE.
type ZStencilClear uint32

func (v ZStencilClear) Stencil() uint8 { return uint8(bits(uint32(v), 0, 8)) }
func (v ZStencilClear) Z24() uint32    { return bits(uint32(v), 8, 24) }
func (v ZStencilClear) Z16() uint16    { return uint16(bits(uint32(v), 0, 16)) }

// ClearMask is the argument of NV4097_CLEAR_SURFACE.
type ClearMask uint32

func (v ClearMask) Depth() bool   { return v&1 != 0 }
func (v ClearMask) Stencil() bool { return v&2 != 0 }
func (v ClearMask) Color() bool   { return v&0xf0 != 0 }

// Point is an x/y pair of 16-bit halves (NV308A point, NV308A sizes).
type Point uint32

func (v Point) X() uint16 { return uint16(bits(uint32(v), 0, 16)) }
func (v Point) Y() uint16 { return uint16(bits(uint32(v), 16, 16)) }

func EncodePoint(x, y uint16) Point { return Point(put(uint32(x), 0, 16) | put(uint32(y), 16, 16)) }

// Surface2DPitch is NV3062_SET_PITCH.
type Surface2DPitch uint32

func (v Surface2DPitch) Source() uint16 { return uint16(bits(uint32(v), 0, 16)) }
func (v Surface2DPitch) Destin() uint16 { return uint16(bits(uint32(v), 16, 16)) }

func EncodeSurface2DPitch(src, dst uint16) Surface2DPitch {
	return Surface2DPitch(put(uint32(src), 0, 16) | put(uint32(dst), 16, 16))
}

// TransferFormat is NV0039_FORMAT: input and output element sizes.
type TransferFormat uint32

func (v TransferFormat) In() uint8  { return uint8(bits(uint32(v), 0, 8)) }
func (v TransferFormat) Out() uint8 { return uint8(bits(uint32(v), 8, 8)) }

// BackEndSemaphoreValue reorders the value written by
// NV4097_BACK_END_WRITE_SEMAPHORE_RELEASE: bytes 0 and 2 are exchanged.
func BackEndSemaphoreValue(v uint32) uint32 {
	return v&0xff00ff00 | (v&0xff)<<16 | (v>>16)&0xff
}
