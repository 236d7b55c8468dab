package method

import "github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"

// group selects the handler for a register.
type group uint8

const (
	groupUnknown group = iota
	groupPlain   // stored, no side effect
	groupState   // write-then-compare, marks a Dirty category
	groupFragmentTexture
	groupVertexTexture
	groupFlush
	groupBeginEnd
	groupDrawArrays
	groupDrawIndex
	groupInlineArray
	groupElement16
	groupElement32
	groupProgramLoad
	groupProgram
	groupConstantLoad
	groupConstant
	groupReference
	groupSemaphoreAcquire
	groupSemaphoreRelease
	groupBackEndRelease
	groupTextureReadRelease
	groupClear
	groupCopy // NV0039 buffer notify starts the copy
	groupImageColor
	groupFlip
)

type entry struct {
	group group
	dirty Dirty
	unit  uint8 // texture unit for per-unit groups
}

// table maps every register id to its handler entry. Built once, read-only
// afterwards.
type table [gcm.RegCount]entry

func (t *table) set(r gcm.Reg, e entry) { t[r] = e }

func (t *table) span(base gcm.Reg, n int, e entry) {
	for i := 0; i < n; i++ {
		t[base+gcm.Reg(i)] = e
	}
}

func (t *table) state(d Dirty, regs ...gcm.Reg) {
	for _, r := range regs {
		t[r] = entry{group: groupState, dirty: d}
	}
}

var (
	packed   = buildPacked()
	expanded = buildExpanded()
)

// lookup picks the table by subchannel: the 3D and channel objects use
// packed multi-field words, the 2D, transfer and flip objects sit on the
// other subchannels with one field per word.
func lookup(r gcm.Reg) entry {
	if int(r) >= gcm.RegCount {
		return entry{}
	}
	if r.Subchannel() == 0 {
		return packed[r]
	}
	return expanded[r]
}

func buildPacked() *table {
	t := new(table)
	plain := entry{group: groupPlain}

	t.set(gcm.SetObject, plain)
	t.set(gcm.SetReference, entry{group: groupReference})
	t.set(gcm.SetContextDMASemaphore, plain)
	t.set(gcm.SemaphoreOffset, plain)
	t.set(gcm.SemaphoreAcquire, entry{group: groupSemaphoreAcquire})
	t.set(gcm.SemaphoreRelease, entry{group: groupSemaphoreRelease})

	t.set(gcm.NoOperation, plain)
	t.set(gcm.Notify, plain)
	t.set(gcm.WaitForIdle, entry{group: groupFlush})

	t.state(DirtySurface,
		gcm.SetContextDMAColorA, gcm.SetContextDMAColorB, gcm.SetContextDMAColorC,
		gcm.SetContextDMAColorD, gcm.SetContextDMAZeta, gcm.SetSurfaceClipHorizontal,
		gcm.SetSurfaceClipVertical, gcm.SetSurfaceFormat, gcm.SetSurfacePitchA,
		gcm.SetSurfacePitchB, gcm.SetSurfacePitchC, gcm.SetSurfacePitchD,
		gcm.SetSurfacePitchZ, gcm.SetSurfaceColorAOffset, gcm.SetSurfaceColorBOffset,
		gcm.SetSurfaceColorCOffset, gcm.SetSurfaceColorDOffset, gcm.SetSurfaceZetaOffset,
		gcm.SetSurfaceColorTarget, gcm.SetWindowOffset)
	t.set(gcm.SetContextDMAReport, plain)

	t.state(DirtyAlphaTest, gcm.SetAlphaTestEnable, gcm.SetAlphaFunc, gcm.SetAlphaRef)
	t.state(DirtyBlend,
		gcm.SetDitherEnable, gcm.SetBlendEnable, gcm.SetBlendFuncSFactor,
		gcm.SetBlendFuncDFactor, gcm.SetBlendColor, gcm.SetBlendColor2,
		gcm.SetBlendEquation, gcm.SetColorMask, gcm.SetBlendEnableMRT,
		gcm.SetColorMaskMRT, gcm.SetLogicOpEnable, gcm.SetLogicOp)
	t.state(DirtyDepthStencil,
		gcm.SetStencilTestEnable, gcm.SetStencilMask, gcm.SetStencilFunc,
		gcm.SetStencilFuncRef, gcm.SetStencilFuncMask, gcm.SetStencilOpFail,
		gcm.SetStencilOpZFail, gcm.SetStencilOpZPass, gcm.SetTwoSidedStencilTestEnable,
		gcm.SetBackStencilMask, gcm.SetBackStencilFunc, gcm.SetBackStencilFuncRef,
		gcm.SetBackStencilFuncMask, gcm.SetBackStencilOpFail, gcm.SetBackStencilOpZFail,
		gcm.SetBackStencilOpZPass, gcm.SetDepthBoundsTestEnable, gcm.SetDepthBoundsMin,
		gcm.SetDepthBoundsMax, gcm.SetDepthFunc, gcm.SetDepthMask, gcm.SetDepthTestEnable)
	t.state(DirtyRaster,
		gcm.SetShadeMode, gcm.SetLineWidth, gcm.SetPolyOffsetPointEnable,
		gcm.SetPolyOffsetLineEnable, gcm.SetPolyOffsetFillEnable,
		gcm.SetPolygonOffsetScaleFactor, gcm.SetPolygonOffsetBias,
		gcm.SetFrontPolygonMode, gcm.SetBackPolygonMode, gcm.SetCullFace,
		gcm.SetFrontFace, gcm.SetPolySmoothEnable, gcm.SetCullFaceEnable)
	t.state(DirtyViewport,
		gcm.SetClipMin, gcm.SetClipMax, gcm.SetScissorHorizontal, gcm.SetScissorVertical,
		gcm.SetViewportHorizontal, gcm.SetViewportVertical)
	t.span(gcm.SetViewportOffset, 4, entry{group: groupState, dirty: DirtyViewport})
	t.span(gcm.SetViewportScale, 4, entry{group: groupState, dirty: DirtyViewport})
	t.state(DirtyFog, gcm.SetFogMode)
	t.span(gcm.SetFogParams, 2, entry{group: groupState, dirty: DirtyFog})

	t.state(DirtyShader,
		gcm.SetShaderProgram, gcm.SetShaderControl, gcm.SetTransformProgramStart,
		gcm.SetVertexAttribInputMask, gcm.SetVertexAttribOutputMask)
	t.span(gcm.SetTexCoordControl, gcm.TexCoordControls, entry{group: groupState, dirty: DirtyShader})

	for u := 0; u < gcm.TextureUnits; u++ {
		e := entry{group: groupFragmentTexture, dirty: DirtyFragmentTexture, unit: uint8(u)}
		t.span(gcm.SetTextureOffset+gcm.Reg(u*gcm.TextureUnitWords), gcm.TextureUnitWords, e)
		t.set(gcm.SetTextureControl2+gcm.Reg(u), e)
		t.set(gcm.SetTextureControl3+gcm.Reg(u), e)
	}
	for u := 0; u < gcm.VertexTextureUnits; u++ {
		e := entry{group: groupVertexTexture, dirty: DirtyVertexTexture, unit: uint8(u)}
		t.span(gcm.SetVertexTextureOffset+gcm.Reg(u*gcm.TextureUnitWords), gcm.TextureUnitWords, e)
	}

	va := entry{group: groupState, dirty: DirtyVertexArrays}
	t.span(gcm.SetVertexDataArrayOffset, gcm.VertexAttributes, va)
	t.span(gcm.SetVertexDataArrayFormat, gcm.VertexAttributes, va)
	t.state(DirtyVertexArrays,
		gcm.SetVertexDataBaseOffset, gcm.SetVertexDataBaseIndex, gcm.SetIndexArrayAddr,
		gcm.SetIndexArrayDMA, gcm.SetRestartIndexEnable, gcm.SetRestartIndex)
	t.set(gcm.InvalidateVertexCacheFile, plain)
	t.set(gcm.InvalidateVertexFile, plain)
	t.span(gcm.SetVertexData2FM, gcm.VertexAttributes*2, plain)
	t.span(gcm.SetVertexData4UBM, gcm.VertexAttributes, plain)
	t.span(gcm.SetVertexData4FM, gcm.VertexAttributes*4, plain)

	t.set(gcm.SetBeginEnd, entry{group: groupBeginEnd})
	t.set(gcm.DrawArrays, entry{group: groupDrawArrays})
	t.set(gcm.DrawIndexArray, entry{group: groupDrawIndex})
	t.set(gcm.InlineArray, entry{group: groupInlineArray})
	t.set(gcm.ArrayElement16, entry{group: groupElement16})
	t.set(gcm.ArrayElement32, entry{group: groupElement32})

	t.set(gcm.SetTransformProgramLoad, entry{group: groupProgramLoad})
	t.span(gcm.SetTransformProgram, gcm.TransformWords, entry{group: groupProgram})
	t.set(gcm.SetTransformConstantLoad, entry{group: groupConstantLoad})
	t.span(gcm.SetTransformConstant, gcm.TransformWords, entry{group: groupConstant})
	t.set(gcm.SetTransformTimeout, plain)
	t.set(gcm.InvalidateL2, plain)

	t.set(gcm.SetSemaphoreOffset, plain)
	t.set(gcm.BackEndWriteSemaphoreRelease, entry{group: groupBackEndRelease})
	t.set(gcm.TextureReadSemaphoreRelease, entry{group: groupTextureReadRelease})

	t.set(gcm.SetZStencilClearValue, plain)
	t.set(gcm.SetColorClearValue, plain)
	t.set(gcm.SetClearRectHorizontal, plain)
	t.set(gcm.SetClearRectVertical, plain)
	t.set(gcm.ClearSurface, entry{group: groupClear})
	return t
}

func buildExpanded() *table {
	t := new(table)
	plain := entry{group: groupPlain}
	for s := 1; s < 8; s++ {
		t.set(gcm.SetObject+gcm.Reg(s<<11), plain)
	}

	t.set(gcm.M2MSetContextDMABufferIn, plain)
	t.set(gcm.M2MSetContextDMABufferOut, plain)
	t.span(gcm.M2MOffsetIn, int(gcm.M2MBufferNotify-gcm.M2MOffsetIn), plain)
	t.set(gcm.M2MBufferNotify, entry{group: groupCopy})

	t.set(gcm.Surf2DSetContextDMADestin, plain)
	t.span(gcm.Surf2DSetColorFormat, 4, plain)

	t.span(gcm.ImageSetColorFormat, 4, plain)
	t.span(gcm.ImageColor, gcm.ImageColorCount, entry{group: groupImageColor})

	t.span(gcm.FlipHead, 2, plain)
	t.set(gcm.FlipCommand, entry{group: groupFlip})
	return t
}
