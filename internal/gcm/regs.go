package gcm

// Reg is a register index: the byte method address of a command header
// shifted right by 2. The index space covers 0x10000 bytes of methods.
type Reg uint16

// RegCount is the number of addressable registers.
const RegCount = 0x10000 / 4

// Subchannel returns the object subchannel encoded in bits 13..15 of the
// method byte address.
func (r Reg) Subchannel() int { return int(r>>11) & 7 }

// Addr returns the byte method address of the register.
func (r Reg) Addr() uint32 { return uint32(r) << 2 }

// SetObject binds an object to a subchannel. It sits at method 0 of each
// subchannel: SetObject + Reg(s<<11).
const SetObject Reg = 0

// NV406E: FIFO channel object.
const (
	SetReference           Reg = 0x0050 >> 2
	SetContextDMASemaphore Reg = 0x0060 >> 2
	SemaphoreOffset        Reg = 0x0064 >> 2
	SemaphoreAcquire       Reg = 0x0068 >> 2
	SemaphoreRelease       Reg = 0x006c >> 2
)

// NV4097: 3D engine, subchannel 0.
const (
	NoOperation Reg = 0x0100 >> 2
	Notify      Reg = 0x0104 >> 2
	WaitForIdle Reg = 0x0110 >> 2

	SetContextDMAColorA Reg = 0x0184 >> 2
	SetContextDMAColorB Reg = 0x018c >> 2
	SetContextDMAZeta   Reg = 0x0194 >> 2
	SetContextDMAReport Reg = 0x01a8 >> 2
	SetContextDMAColorC Reg = 0x01b4 >> 2
	SetContextDMAColorD Reg = 0x01b8 >> 2

	SetSurfaceClipHorizontal Reg = 0x0200 >> 2
	SetSurfaceClipVertical   Reg = 0x0204 >> 2
	SetSurfaceFormat         Reg = 0x0208 >> 2
	SetSurfacePitchA         Reg = 0x020c >> 2
	SetSurfaceColorAOffset   Reg = 0x0210 >> 2
	SetSurfaceZetaOffset     Reg = 0x0214 >> 2
	SetSurfaceColorBOffset   Reg = 0x0218 >> 2
	SetSurfacePitchB         Reg = 0x021c >> 2
	SetSurfaceColorTarget    Reg = 0x0220 >> 2
	SetSurfacePitchZ         Reg = 0x022c >> 2
	SetSurfacePitchC         Reg = 0x0280 >> 2
	SetSurfacePitchD         Reg = 0x0284 >> 2
	SetSurfaceColorCOffset   Reg = 0x0288 >> 2
	SetSurfaceColorDOffset   Reg = 0x028c >> 2
	SetWindowOffset          Reg = 0x02b8 >> 2

	SetDitherEnable              Reg = 0x0300 >> 2
	SetAlphaTestEnable           Reg = 0x0304 >> 2
	SetAlphaFunc                 Reg = 0x0308 >> 2
	SetAlphaRef                  Reg = 0x030c >> 2
	SetBlendEnable               Reg = 0x0310 >> 2
	SetBlendFuncSFactor          Reg = 0x0314 >> 2
	SetBlendFuncDFactor          Reg = 0x0318 >> 2
	SetBlendColor                Reg = 0x031c >> 2
	SetBlendEquation             Reg = 0x0320 >> 2
	SetColorMask                 Reg = 0x0324 >> 2
	SetStencilTestEnable         Reg = 0x0328 >> 2
	SetStencilMask               Reg = 0x032c >> 2
	SetStencilFunc               Reg = 0x0330 >> 2
	SetStencilFuncRef            Reg = 0x0334 >> 2
	SetStencilFuncMask           Reg = 0x0338 >> 2
	SetStencilOpFail             Reg = 0x033c >> 2
	SetStencilOpZFail            Reg = 0x0340 >> 2
	SetStencilOpZPass            Reg = 0x0344 >> 2
	SetTwoSidedStencilTestEnable Reg = 0x0348 >> 2
	SetBackStencilMask           Reg = 0x034c >> 2
	SetBackStencilFunc           Reg = 0x0350 >> 2
	SetBackStencilFuncRef        Reg = 0x0354 >> 2
	SetBackStencilFuncMask       Reg = 0x0358 >> 2
	SetBackStencilOpFail         Reg = 0x035c >> 2
	SetBackStencilOpZFail        Reg = 0x0360 >> 2
	SetBackStencilOpZPass        Reg = 0x0364 >> 2
	SetShadeMode                 Reg = 0x0368 >> 2
	SetBlendEnableMRT            Reg = 0x036c >> 2
	SetColorMaskMRT              Reg = 0x0370 >> 2
	SetLogicOpEnable             Reg = 0x0374 >> 2
	SetLogicOp                   Reg = 0x0378 >> 2
	SetBlendColor2               Reg = 0x037c >> 2
	SetDepthBoundsTestEnable     Reg = 0x0380 >> 2
	SetDepthBoundsMin            Reg = 0x0384 >> 2
	SetDepthBoundsMax            Reg = 0x0388 >> 2
	SetClipMin                   Reg = 0x0394 >> 2
	SetClipMax                   Reg = 0x0398 >> 2
	SetLineWidth                 Reg = 0x03b8 >> 2

	SetScissorHorizontal Reg = 0x08c0 >> 2
	SetScissorVertical   Reg = 0x08c4 >> 2
	SetFogMode           Reg = 0x08cc >> 2
	SetFogParams         Reg = 0x08d0 >> 2 // 2 words
	SetShaderProgram     Reg = 0x08e4 >> 2

	SetVertexTextureOffset Reg = 0x0900 >> 2 // 4 units, 8 words each

	SetViewportHorizontal Reg = 0x0a00 >> 2
	SetViewportVertical   Reg = 0x0a04 >> 2
	SetViewportOffset     Reg = 0x0a20 >> 2 // 4 words
	SetViewportScale      Reg = 0x0a30 >> 2 // 4 words

	SetPolyOffsetPointEnable    Reg = 0x0a60 >> 2
	SetPolyOffsetLineEnable     Reg = 0x0a64 >> 2
	SetPolyOffsetFillEnable     Reg = 0x0a68 >> 2
	SetDepthFunc                Reg = 0x0a6c >> 2
	SetDepthMask                Reg = 0x0a70 >> 2
	SetDepthTestEnable          Reg = 0x0a74 >> 2
	SetPolygonOffsetScaleFactor Reg = 0x0a78 >> 2
	SetPolygonOffsetBias        Reg = 0x0a7c >> 2

	SetTextureControl2  Reg = 0x0b00 >> 2 // 16 words
	SetTexCoordControl  Reg = 0x0b40 >> 2 // 10 words
	SetTransformProgram Reg = 0x0b80 >> 2 // 32 words

	SetVertexDataArrayOffset  Reg = 0x1680 >> 2 // 16 words
	InvalidateVertexCacheFile Reg = 0x1710 >> 2
	InvalidateVertexFile      Reg = 0x1714 >> 2
	SetVertexDataBaseOffset   Reg = 0x1738 >> 2
	SetVertexDataBaseIndex    Reg = 0x173c >> 2
	SetVertexDataArrayFormat  Reg = 0x1740 >> 2 // 16 words

	SetBeginEnd         Reg = 0x1808 >> 2
	ArrayElement16      Reg = 0x180c >> 2
	ArrayElement32      Reg = 0x1810 >> 2
	DrawArrays          Reg = 0x1814 >> 2
	InlineArray         Reg = 0x1818 >> 2
	SetIndexArrayAddr   Reg = 0x181c >> 2
	SetIndexArrayDMA    Reg = 0x1820 >> 2
	DrawIndexArray      Reg = 0x1824 >> 2
	SetFrontPolygonMode Reg = 0x1828 >> 2
	SetBackPolygonMode  Reg = 0x182c >> 2
	SetCullFace         Reg = 0x1830 >> 2
	SetFrontFace        Reg = 0x1834 >> 2
	SetPolySmoothEnable Reg = 0x1838 >> 2
	SetCullFaceEnable   Reg = 0x183c >> 2
	SetTextureControl3  Reg = 0x1840 >> 2 // 16 words
	SetVertexData2FM    Reg = 0x1880 >> 2 // 16 attributes, 2 words each
	SetVertexData4UBM   Reg = 0x1940 >> 2 // 16 words
	SetTextureOffset    Reg = 0x1a00 >> 2 // 16 units, 8 words each
	SetVertexData4FM    Reg = 0x1c00 >> 2 // 16 attributes, 4 words each

	SetShaderControl             Reg = 0x1d60 >> 2
	SetSemaphoreOffset           Reg = 0x1d6c >> 2
	BackEndWriteSemaphoreRelease Reg = 0x1d70 >> 2
	TextureReadSemaphoreRelease  Reg = 0x1d74 >> 2
	SetZStencilClearValue        Reg = 0x1d8c >> 2
	SetColorClearValue           Reg = 0x1d90 >> 2
	ClearSurface                 Reg = 0x1d94 >> 2
	SetClearRectHorizontal       Reg = 0x1d98 >> 2
	SetClearRectVertical         Reg = 0x1d9c >> 2
	SetRestartIndexEnable        Reg = 0x1dac >> 2
	SetRestartIndex              Reg = 0x1db0 >> 2
	SetTransformProgramLoad      Reg = 0x1e9c >> 2
	SetTransformProgramStart     Reg = 0x1ea0 >> 2
	SetTransformConstantLoad     Reg = 0x1efc >> 2
	SetTransformConstant         Reg = 0x1f00 >> 2 // 32 words
	InvalidateL2                 Reg = 0x1fd8 >> 2
	SetVertexAttribInputMask     Reg = 0x1ff0 >> 2
	SetVertexAttribOutputMask    Reg = 0x1ff4 >> 2
	SetTransformTimeout          Reg = 0x1ff8 >> 2
)

// NV0039: memory to memory format, subchannel 1.
const (
	M2MSetContextDMABufferIn  Reg = 0x2184 >> 2
	M2MSetContextDMABufferOut Reg = 0x2188 >> 2
	M2MOffsetIn               Reg = 0x230c >> 2
	M2MOffsetOut              Reg = 0x2310 >> 2
	M2MPitchIn                Reg = 0x2314 >> 2
	M2MPitchOut               Reg = 0x2318 >> 2
	M2MLineLengthIn           Reg = 0x231c >> 2
	M2MLineCount              Reg = 0x2320 >> 2
	M2MFormat                 Reg = 0x2324 >> 2
	M2MBufferNotify           Reg = 0x2328 >> 2
)

// NV3062: 2D surface, subchannel 3.
const (
	Surf2DSetContextDMADestin Reg = 0x6188 >> 2
	Surf2DSetColorFormat      Reg = 0x6300 >> 2
	Surf2DSetPitch            Reg = 0x6304 >> 2
	Surf2DSetOffsetSource     Reg = 0x6308 >> 2
	Surf2DSetOffsetDestin     Reg = 0x630c >> 2
)

// NV308A: image from CPU, subchannel 5.
const (
	ImageSetColorFormat Reg = 0xa300 >> 2
	ImagePoint          Reg = 0xa304 >> 2
	ImageSizeOut        Reg = 0xa308 >> 2
	ImageSizeIn         Reg = 0xa30c >> 2
	ImageColor          Reg = 0xa400 >> 2 // ImageColorCount words
)

// Driver-side flip methods, subchannel 7.
const (
	FlipHead    Reg = 0xe920 >> 2 // 2 words
	FlipCommand Reg = 0xfeac >> 2
)

// Sizes of register arrays.
const (
	TextureUnits        = 16
	VertexTextureUnits  = 4
	TextureUnitWords    = 8
	VertexAttributes    = 16
	TransformWords      = 32
	ImageColorCount     = 0x700
	TexCoordControls    = 10
	TransformProgramMax = 512 // instructions, 4 words each
	TransformConstMax   = 468 // vec4 constants
)
