package gcm

import (
	"fmt"
	"sync"
)

var names = map[Reg]string{
	SetReference:           "NV406E_SET_REFERENCE",
	SetContextDMASemaphore: "NV406E_SET_CONTEXT_DMA_SEMAPHORE",
	SemaphoreOffset:        "NV406E_SEMAPHORE_OFFSET",
	SemaphoreAcquire:       "NV406E_SEMAPHORE_ACQUIRE",
	SemaphoreRelease:       "NV406E_SEMAPHORE_RELEASE",

	NoOperation:         "NV4097_NO_OPERATION",
	Notify:              "NV4097_NOTIFY",
	WaitForIdle:         "NV4097_WAIT_FOR_IDLE",
	SetContextDMAColorA: "NV4097_SET_CONTEXT_DMA_COLOR_A",
	SetContextDMAColorB: "NV4097_SET_CONTEXT_DMA_COLOR_B",
	SetContextDMAZeta:   "NV4097_SET_CONTEXT_DMA_ZETA",
	SetContextDMAReport: "NV4097_SET_CONTEXT_DMA_REPORT",
	SetContextDMAColorC: "NV4097_SET_CONTEXT_DMA_COLOR_C",
	SetContextDMAColorD: "NV4097_SET_CONTEXT_DMA_COLOR_D",

	SetSurfaceClipHorizontal: "NV4097_SET_SURFACE_CLIP_HORIZONTAL",
	SetSurfaceClipVertical:   "NV4097_SET_SURFACE_CLIP_VERTICAL",
	SetSurfaceFormat:         "NV4097_SET_SURFACE_FORMAT",
	SetSurfacePitchA:         "NV4097_SET_SURFACE_PITCH_A",
	SetSurfaceColorAOffset:   "NV4097_SET_SURFACE_COLOR_AOFFSET",
	SetSurfaceZetaOffset:     "NV4097_SET_SURFACE_ZETA_OFFSET",
	SetSurfaceColorBOffset:   "NV4097_SET_SURFACE_COLOR_BOFFSET",
	SetSurfacePitchB:         "NV4097_SET_SURFACE_PITCH_B",
	SetSurfaceColorTarget:    "NV4097_SET_SURFACE_COLOR_TARGET",
	SetSurfacePitchZ:         "NV4097_SET_SURFACE_PITCH_Z",
	SetSurfacePitchC:         "NV4097_SET_SURFACE_PITCH_C",
	SetSurfacePitchD:         "NV4097_SET_SURFACE_PITCH_D",
	SetSurfaceColorCOffset:   "NV4097_SET_SURFACE_COLOR_COFFSET",
	SetSurfaceColorDOffset:   "NV4097_SET_SURFACE_COLOR_DOFFSET",
	SetWindowOffset:          "NV4097_SET_WINDOW_OFFSET",

	SetDitherEnable:              "NV4097_SET_DITHER_ENABLE",
	SetAlphaTestEnable:           "NV4097_SET_ALPHA_TEST_ENABLE",
	SetAlphaFunc:                 "NV4097_SET_ALPHA_FUNC",
	SetAlphaRef:                  "NV4097_SET_ALPHA_REF",
	SetBlendEnable:               "NV4097_SET_BLEND_ENABLE",
	SetBlendFuncSFactor:          "NV4097_SET_BLEND_FUNC_SFACTOR",
	SetBlendFuncDFactor:          "NV4097_SET_BLEND_FUNC_DFACTOR",
	SetBlendColor:                "NV4097_SET_BLEND_COLOR",
	SetBlendEquation:             "NV4097_SET_BLEND_EQUATION",
	SetColorMask:                 "NV4097_SET_COLOR_MASK",
	SetStencilTestEnable:         "NV4097_SET_STENCIL_TEST_ENABLE",
	SetStencilMask:               "NV4097_SET_STENCIL_MASK",
	SetStencilFunc:               "NV4097_SET_STENCIL_FUNC",
	SetStencilFuncRef:            "NV4097_SET_STENCIL_FUNC_REF",
	SetStencilFuncMask:           "NV4097_SET_STENCIL_FUNC_MASK",
	SetStencilOpFail:             "NV4097_SET_STENCIL_OP_FAIL",
	SetStencilOpZFail:            "NV4097_SET_STENCIL_OP_ZFAIL",
	SetStencilOpZPass:            "NV4097_SET_STENCIL_OP_ZPASS",
	SetTwoSidedStencilTestEnable: "NV4097_SET_TWO_SIDED_STENCIL_TEST_ENABLE",
	SetBackStencilMask:           "NV4097_SET_BACK_STENCIL_MASK",
	SetBackStencilFunc:           "NV4097_SET_BACK_STENCIL_FUNC",
	SetBackStencilFuncRef:        "NV4097_SET_BACK_STENCIL_FUNC_REF",
	SetBackStencilFuncMask:       "NV4097_SET_BACK_STENCIL_FUNC_MASK",
	SetBackStencilOpFail:         "NV4097_SET_BACK_STENCIL_OP_FAIL",
	SetBackStencilOpZFail:        "NV4097_SET_BACK_STENCIL_OP_ZFAIL",
	SetBackStencilOpZPass:        "NV4097_SET_BACK_STENCIL_OP_ZPASS",
	SetShadeMode:                 "NV4097_SET_SHADE_MODE",
	SetBlendEnableMRT:            "NV4097_SET_BLEND_ENABLE_MRT",
	SetColorMaskMRT:              "NV4097_SET_COLOR_MASK_MRT",
	SetLogicOpEnable:             "NV4097_SET_LOGIC_OP_ENABLE",
	SetLogicOp:                   "NV4097_SET_LOGIC_OP",
	SetBlendColor2:               "NV4097_SET_BLEND_COLOR2",
	SetDepthBoundsTestEnable:     "NV4097_SET_DEPTH_BOUNDS_TEST_ENABLE",
	SetDepthBoundsMin:            "NV4097_SET_DEPTH_BOUNDS_MIN",
	SetDepthBoundsMax:            "NV4097_SET_DEPTH_BOUNDS_MAX",
	SetClipMin:                   "NV4097_SET_CLIP_MIN",
	SetClipMax:                   "NV4097_SET_CLIP_MAX",
	SetLineWidth:                 "NV4097_SET_LINE_WIDTH",

	SetScissorHorizontal: "NV4097_SET_SCISSOR_HORIZONTAL",
	SetScissorVertical:   "NV4097_SET_SCISSOR_VERTICAL",
	SetFogMode:           "NV4097_SET_FOG_MODE",
	SetShaderProgram:     "NV4097_SET_SHADER_PROGRAM",

	SetViewportHorizontal:       "NV4097_SET_VIEWPORT_HORIZONTAL",
	SetViewportVertical:         "NV4097_SET_VIEWPORT_VERTICAL",
	SetPolyOffsetPointEnable:    "NV4097_SET_POLY_OFFSET_POINT_ENABLE",
	SetPolyOffsetLineEnable:     "NV4097_SET_POLY_OFFSET_LINE_ENABLE",
	SetPolyOffsetFillEnable:     "NV4097_SET_POLY_OFFSET_FILL_ENABLE",
	SetDepthFunc:                "NV4097_SET_DEPTH_FUNC",
	SetDepthMask:                "NV4097_SET_DEPTH_MASK",
	SetDepthTestEnable:          "NV4097_SET_DEPTH_TEST_ENABLE",
	SetPolygonOffsetScaleFactor: "NV4097_SET_POLYGON_OFFSET_SCALE_FACTOR",
	SetPolygonOffsetBias:        "NV4097_SET_POLYGON_OFFSET_BIAS",

	InvalidateVertexCacheFile: "NV4097_INVALIDATE_VERTEX_CACHE_FILE",
	InvalidateVertexFile:      "NV4097_INVALIDATE_VERTEX_FILE",
	SetVertexDataBaseOffset:   "NV4097_SET_VERTEX_DATA_BASE_OFFSET",
	SetVertexDataBaseIndex:    "NV4097_SET_VERTEX_DATA_BASE_INDEX",

	SetBeginEnd:         "NV4097_SET_BEGIN_END",
	ArrayElement16:      "NV4097_ARRAY_ELEMENT16",
	ArrayElement32:      "NV4097_ARRAY_ELEMENT32",
	DrawArrays:          "NV4097_DRAW_ARRAYS",
	InlineArray:         "NV4097_INLINE_ARRAY",
	SetIndexArrayAddr:   "NV4097_SET_INDEX_ARRAY_ADDRESS",
	SetIndexArrayDMA:    "NV4097_SET_INDEX_ARRAY_DMA",
	DrawIndexArray:      "NV4097_DRAW_INDEX_ARRAY",
	SetFrontPolygonMode: "NV4097_SET_FRONT_POLYGON_MODE",
	SetBackPolygonMode:  "NV4097_SET_BACK_POLYGON_MODE",
	SetCullFace:         "NV4097_SET_CULL_FACE",
	SetFrontFace:        "NV4097_SET_FRONT_FACE",
	SetPolySmoothEnable: "NV4097_SET_POLY_SMOOTH_ENABLE",
	SetCullFaceEnable:   "NV4097_SET_CULL_FACE_ENABLE",

	SetShaderControl:             "NV4097_SET_SHADER_CONTROL",
	SetSemaphoreOffset:           "NV4097_SET_SEMAPHORE_OFFSET",
	BackEndWriteSemaphoreRelease: "NV4097_BACK_END_WRITE_SEMAPHORE_RELEASE",
	TextureReadSemaphoreRelease:  "NV4097_TEXTURE_READ_SEMAPHORE_RELEASE",
	SetZStencilClearValue:        "NV4097_SET_ZSTENCIL_CLEAR_VALUE",
	SetColorClearValue:           "NV4097_SET_COLOR_CLEAR_VALUE",
	ClearSurface:                 "NV4097_CLEAR_SURFACE",
	SetClearRectHorizontal:       "NV4097_SET_CLEAR_RECT_HORIZONTAL",
	SetClearRectVertical:         "NV4097_SET_CLEAR_RECT_VERTICAL",
	SetRestartIndexEnable:        "NV4097_SET_RESTART_INDEX_ENABLE",
	SetRestartIndex:              "NV4097_SET_RESTART_INDEX",
	SetTransformProgramLoad:      "NV4097_SET_TRANSFORM_PROGRAM_LOAD",
	SetTransformProgramStart:     "NV4097_SET_TRANSFORM_PROGRAM_START",
	SetTransformConstantLoad:     "NV4097_SET_TRANSFORM_CONSTANT_LOAD",
	InvalidateL2:                 "NV4097_INVALIDATE_L2",
	SetVertexAttribInputMask:     "NV4097_SET_VERTEX_ATTRIB_INPUT_MASK",
	SetVertexAttribOutputMask:    "NV4097_SET_VERTEX_ATTRIB_OUTPUT_MASK",
	SetTransformTimeout:          "NV4097_SET_TRANSFORM_TIMEOUT",

	M2MSetContextDMABufferIn:  "NV0039_SET_CONTEXT_DMA_BUFFER_IN",
	M2MSetContextDMABufferOut: "NV0039_SET_CONTEXT_DMA_BUFFER_OUT",
	M2MOffsetIn:               "NV0039_OFFSET_IN",
	M2MOffsetOut:              "NV0039_OFFSET_OUT",
	M2MPitchIn:                "NV0039_PITCH_IN",
	M2MPitchOut:               "NV0039_PITCH_OUT",
	M2MLineLengthIn:           "NV0039_LINE_LENGTH_IN",
	M2MLineCount:              "NV0039_LINE_COUNT",
	M2MFormat:                 "NV0039_FORMAT",
	M2MBufferNotify:           "NV0039_BUFFER_NOTIFY",

	Surf2DSetContextDMADestin: "NV3062_SET_CONTEXT_DMA_IMAGE_DESTIN",
	Surf2DSetColorFormat:      "NV3062_SET_COLOR_FORMAT",
	Surf2DSetPitch:            "NV3062_SET_PITCH",
	Surf2DSetOffsetSource:     "NV3062_SET_OFFSET_SOURCE",
	Surf2DSetOffsetDestin:     "NV3062_SET_OFFSET_DESTIN",

	ImageSetColorFormat: "NV308A_SET_COLOR_FORMAT",
	ImagePoint:          "NV308A_POINT",
	ImageSizeOut:        "NV308A_SIZE_OUT",
	ImageSizeIn:         "NV308A_SIZE_IN",

	FlipCommand: "GCM_FLIP_COMMAND",
}

// array describes a run of registers sharing one name.
type array struct {
	base   Reg
	count  int // elements
	stride int // words per element
	name   string
	fields []string // per-word names inside an element, if any
}

var arrays = []array{
	{SetFogParams, 2, 1, "NV4097_SET_FOG_PARAMS", nil},
	{SetViewportOffset, 4, 1, "NV4097_SET_VIEWPORT_OFFSET", nil},
	{SetViewportScale, 4, 1, "NV4097_SET_VIEWPORT_SCALE", nil},
	{SetTextureControl2, TextureUnits, 1, "NV4097_SET_TEXTURE_CONTROL2", nil},
	{SetTexCoordControl, TexCoordControls, 1, "NV4097_SET_TEX_COORD_CONTROL", nil},
	{SetTransformProgram, TransformWords, 1, "NV4097_SET_TRANSFORM_PROGRAM", nil},
	{SetVertexDataArrayOffset, VertexAttributes, 1, "NV4097_SET_VERTEX_DATA_ARRAY_OFFSET", nil},
	{SetVertexDataArrayFormat, VertexAttributes, 1, "NV4097_SET_VERTEX_DATA_ARRAY_FORMAT", nil},
	{SetTextureControl3, TextureUnits, 1, "NV4097_SET_TEXTURE_CONTROL3", nil},
	{SetVertexData2FM, VertexAttributes * 2, 1, "NV4097_SET_VERTEX_DATA2F_M", nil},
	{SetVertexData4UBM, VertexAttributes, 1, "NV4097_SET_VERTEX_DATA4UB_M", nil},
	{SetVertexData4FM, VertexAttributes * 4, 1, "NV4097_SET_VERTEX_DATA4F_M", nil},
	{SetTransformConstant, TransformWords, 1, "NV4097_SET_TRANSFORM_CONSTANT", nil},
	{ImageColor, ImageColorCount, 1, "NV308A_COLOR", nil},
	{FlipHead, 2, 1, "GCM_FLIP_HEAD", nil},
	{SetTextureOffset, TextureUnits, TextureUnitWords, "NV4097_SET_TEXTURE", []string{
		"OFFSET", "FORMAT", "ADDRESS", "CONTROL0", "CONTROL1", "FILTER", "IMAGE_RECT", "BORDER_COLOR",
	}},
	{SetVertexTextureOffset, VertexTextureUnits, TextureUnitWords, "NV4097_SET_VERTEX_TEXTURE", []string{
		"OFFSET", "FORMAT", "ADDRESS", "CONTROL0", "CONTROL3", "FILTER", "IMAGE_RECT", "BORDER_COLOR",
	}},
}

// Name returns a mnemonic for a register id. Array members carry an index
// suffix; texture unit words carry the unit in brackets.
func Name(r Reg) string {
	if n, ok := names[r]; ok {
		return n
	}
	if r&0x7ff == 0 {
		return fmt.Sprintf("SET_OBJECT[%d]", r.Subchannel())
	}
	for _, a := range arrays {
		if r < a.base || int(r-a.base) >= a.count*a.stride {
			continue
		}
		off := int(r - a.base)
		if a.fields != nil {
			return fmt.Sprintf("%s_%s[%d]", a.name, a.fields[off%a.stride], off/a.stride)
		}
		if off == 0 {
			return a.name
		}
		return fmt.Sprintf("%s+%d", a.name, off)
	}
	return fmt.Sprintf("METHOD_%04X", r.Addr())
}

// Known reports whether the register has a defined meaning.
func Known(r Reg) bool {
	if _, ok := names[r]; ok || r&0x7ff == 0 {
		return true
	}
	for _, a := range arrays {
		if r >= a.base && int(r-a.base) < a.count*a.stride {
			return true
		}
	}
	return false
}

var byName = sync.OnceValue(func() map[string]Reg {
	m := make(map[string]Reg)
	for r := 0; r < RegCount; r++ {
		if Known(Reg(r)) && Reg(r)&0x7ff != 0 {
			m[Name(Reg(r))] = Reg(r)
		}
	}
	return m
})

// Lookup is the inverse of Name for registers with a defined meaning.
func Lookup(name string) (Reg, bool) {
	r, ok := byName()[name]
	return r, ok
}
