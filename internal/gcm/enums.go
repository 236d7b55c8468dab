package gcm

// Texture format byte (bits 8..15 of the texture FORMAT word). The base
// format lives in the low bits; LN and UN are modifier flags.
const (
	TexFormatB8                 = 0x81
	TexFormatA1R5G5B5           = 0x82
	TexFormatA4R4G4B4           = 0x83
	TexFormatR5G6B5             = 0x84
	TexFormatA8R8G8B8           = 0x85
	TexFormatCompressedDXT1     = 0x86
	TexFormatCompressedDXT23    = 0x87
	TexFormatCompressedDXT45    = 0x88
	TexFormatG8B8               = 0x8B
	TexFormatR6G5B5             = 0x8F
	TexFormatDepth24D8          = 0x90
	TexFormatDepth24D8Float     = 0x91
	TexFormatDepth16            = 0x92
	TexFormatDepth16Float       = 0x93
	TexFormatX16                = 0x94
	TexFormatY16X16             = 0x95
	TexFormatR5G5B5A1           = 0x97
	TexFormatCompressedHILO8    = 0x98
	TexFormatCompressedHILOS8   = 0x99
	TexFormatW16Z16Y16X16Float  = 0x9A
	TexFormatW32Z32Y32X32Float  = 0x9B
	TexFormatX32Float           = 0x9C
	TexFormatD1R5G5B5           = 0x9D
	TexFormatD8R8G8B8           = 0x9E
	TexFormatY16X16Float        = 0x9F
	TexFormatCompressedB8R8G8R8 = 0x8D
	TexFormatCompressedR8B8R8G8 = 0x8E

	TexFormatLN = 0x20 // linear layout, otherwise swizzled
	TexFormatUN = 0x40 // unnormalized coordinates
)

// BaseFormat strips the LN and UN modifiers from a texture format byte.
func BaseFormat(f uint8) uint8 { return f &^ (TexFormatLN | TexFormatUN) }

// Texture dimension field (bits 4..7 of FORMAT).
const (
	TexDimension1D = 1
	TexDimension2D = 2
	TexDimension3D = 3
)

// Texture address (wrap) modes.
const (
	TexWrap                  = 1
	TexMirror                = 2
	TexClampToEdge           = 3
	TexBorder                = 4
	TexClamp                 = 5
	TexMirrorOnceClampToEdge = 6
	TexMirrorOnceBorder      = 7
	TexMirrorOnceClamp       = 8
)

// Texture minification filters.
const (
	TexMinNearest           = 1
	TexMinLinear            = 2
	TexMinNearestMipNearest = 3
	TexMinLinearMipNearest  = 4
	TexMinNearestMipLinear  = 5
	TexMinLinearMipLinear   = 6
	TexMinConvolution       = 7
)

// Texture magnification filters.
const (
	TexMagNearest     = 1
	TexMagLinear      = 2
	TexMagConvolution = 4
)

// Remap control selectors (CONTROL1 bits 8..15, 2 bits per channel).
const (
	RemapZero Remap = 0
	RemapOne  Remap = 1
	RemapPass Remap = 2
)

// Remap is a per-channel remap control selector.
type Remap uint8

// Remap source channel indices (CONTROL1 bits 0..7).
const (
	ChannelA = 0
	ChannelR = 1
	ChannelG = 2
	ChannelB = 3
)

// Memory location of a buffer.
const (
	LocationLocal = 0
	LocationMain  = 1
)

// DMA context handles used on the wire to name a location.
const (
	ContextDMAMemoryFrameBuffer   = 0xfeed0000
	ContextDMAMemoryHostBuffer    = 0xfeed0001
	ContextDMAReportLocationLocal = 0x66626660
	ContextDMAReportLocationMain  = 0xbad68000
	ContextDMANotifyMainBase      = 0x6660420f
	ContextDMASemaphoreRW         = 0x66606660
	ContextDMASemaphoreR          = 0x66616661
)

// Comparison functions (depth, alpha, stencil). The wire values are the
// OpenGL enums.
const (
	FuncNever    = 0x0200
	FuncLess     = 0x0201
	FuncEqual    = 0x0202
	FuncLEqual   = 0x0203
	FuncGreater  = 0x0204
	FuncNotEqual = 0x0205
	FuncGEqual   = 0x0206
	FuncAlways   = 0x0207
)

// Texture depth compare functions (ADDRESS bits 28..31).
const (
	TexZFuncNever = iota
	TexZFuncLess
	TexZFuncEqual
	TexZFuncLEqual
	TexZFuncGreater
	TexZFuncNotEqual
	TexZFuncGEqual
	TexZFuncAlways
)

// Stencil operations.
const (
	StencilKeep     = 0x1e00
	StencilReplace  = 0x1e01
	StencilIncr     = 0x1e02
	StencilDecr     = 0x1e03
	StencilZero     = 0x0000
	StencilInvert   = 0x150a
	StencilIncrWrap = 0x8507
	StencilDecrWrap = 0x8508
)

// Blend factors.
const (
	BlendZero                  = 0
	BlendOne                   = 1
	BlendSrcColor              = 0x0300
	BlendOneMinusSrcColor      = 0x0301
	BlendSrcAlpha              = 0x0302
	BlendOneMinusSrcAlpha      = 0x0303
	BlendDstAlpha              = 0x0304
	BlendOneMinusDstAlpha      = 0x0305
	BlendDstColor              = 0x0306
	BlendOneMinusDstColor      = 0x0307
	BlendSrcAlphaSaturate      = 0x0308
	BlendConstantColor         = 0x8001
	BlendOneMinusConstantColor = 0x8002
	BlendConstantAlpha         = 0x8003
	BlendOneMinusConstantAlpha = 0x8004
)

// Blend equations.
const (
	BlendEquationAdd             = 0x8006
	BlendEquationMin             = 0x8007
	BlendEquationMax             = 0x8008
	BlendEquationSubtract        = 0x800a
	BlendEquationReverseSubtract = 0x800b

	BlendEquationAddSigned             = 0xf005
	BlendEquationReverseAddSigned      = 0xf006
	BlendEquationReverseSubtractSigned = 0xf007
)

// Primitive types carried by SET_BEGIN_END. Zero ends the batch.
const (
	PrimitiveNone          = 0
	PrimitivePoints        = 1
	PrimitiveLines         = 2
	PrimitiveLineLoop      = 3
	PrimitiveLineStrip     = 4
	PrimitiveTriangles     = 5
	PrimitiveTriangleStrip = 6
	PrimitiveTriangleFan   = 7
	PrimitiveQuads         = 8
	PrimitiveQuadStrip     = 9
	PrimitivePolygon       = 10
)

// Index array element types (bit 4 of INDEX_ARRAY_DMA).
const (
	IndexType32 = 0
	IndexType16 = 1
)

// Vertex attribute base types (bits 0..3 of VERTEX_DATA_ARRAY_FORMAT).
const (
	VertexTypeS1    = 1 // signed normalized 16-bit
	VertexTypeF     = 2
	VertexTypeSF    = 3 // half float
	VertexTypeUB    = 4
	VertexTypeS32K  = 5
	VertexTypeCMP   = 6
	VertexTypeUB256 = 7
)

// Cull faces and front face winding.
const (
	CullFront        = 0x0404
	CullBack         = 0x0405
	CullFrontAndBack = 0x0408

	FrontFaceCW  = 0x0900
	FrontFaceCCW = 0x0901
)

// Surface color and depth formats (SET_SURFACE_FORMAT).
const (
	SurfaceColorX1R5G5B5Z1R5G5B5 = 1
	SurfaceColorR5G6B5           = 3
	SurfaceColorX8R8G8B8Z8R8G8B8 = 4
	SurfaceColorA8R8G8B8         = 8
	SurfaceColorB8               = 9
	SurfaceColorG8B8             = 10
	SurfaceColorFW16Z16Y16X16    = 11
	SurfaceColorFW32Z32Y32X32    = 12
	SurfaceColorFX32             = 13
	SurfaceColorA8B8G8R8         = 16

	SurfaceDepthZ16   = 1
	SurfaceDepthZ24S8 = 2
)

// CLEAR_SURFACE mask bits.
const (
	ClearZ       = 1 << 0
	ClearStencil = 1 << 1
	ClearR       = 1 << 4
	ClearG       = 1 << 5
	ClearB       = 1 << 6
	ClearA       = 1 << 7
	ClearColor   = ClearR | ClearG | ClearB | ClearA
)

// NV0039 and NV3062 color formats.
const (
	Transfer2DFormatR5G6B5   = 4
	Transfer2DFormatA8R8G8B8 = 0xa
	Transfer2DFormatY32      = 0xb
)
