package backend

import (
	"github.com/gogpu/gputypes"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/method"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/texture"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/upload"
)

// TextureFormat maps a texture format byte onto a host format. Formats the
// host cannot sample directly (the 16-bit packed colours, HILO, 4:2:2)
// return TextureFormatUndefined; renderers expand them with DecodeRGBA.
// srgb selects the sRGB variant where one exists.
func TextureFormat(format uint8, srgb bool) gputypes.TextureFormat {
	switch gcm.BaseFormat(format) {
	case gcm.TexFormatA8R8G8B8, gcm.TexFormatD8R8G8B8:
		if srgb {
			return gputypes.TextureFormatBGRA8UnormSrgb
		}
		return gputypes.TextureFormatBGRA8Unorm
	case gcm.TexFormatB8:
		return gputypes.TextureFormatR8Unorm
	case gcm.TexFormatG8B8:
		return gputypes.TextureFormatRG8Unorm
	case gcm.TexFormatX32Float:
		return gputypes.TextureFormatR32Float
	case gcm.TexFormatY16X16Float:
		return gputypes.TextureFormatRG16Float
	case gcm.TexFormatW16Z16Y16X16Float:
		return gputypes.TextureFormatRGBA16Float
	case gcm.TexFormatW32Z32Y32X32Float:
		return gputypes.TextureFormatRGBA32Float
	case gcm.TexFormatCompressedDXT1:
		if srgb {
			return gputypes.TextureFormatBC1RGBAUnormSrgb
		}
		return gputypes.TextureFormatBC1RGBAUnorm
	case gcm.TexFormatCompressedDXT23:
		if srgb {
			return gputypes.TextureFormatBC2RGBAUnormSrgb
		}
		return gputypes.TextureFormatBC2RGBAUnorm
	case gcm.TexFormatCompressedDXT45:
		if srgb {
			return gputypes.TextureFormatBC3RGBAUnormSrgb
		}
		return gputypes.TextureFormatBC3RGBAUnorm
	case gcm.TexFormatDepth16, gcm.TexFormatDepth16Float, gcm.TexFormatDepth24D8Float:
		return gputypes.TextureFormatDepth16Unorm
	case gcm.TexFormatDepth24D8:
		return gputypes.TextureFormatDepth24PlusStencil8
	}
	return gputypes.TextureFormatUndefined
}

// AddressMode maps a wrap mode. The border and mirror-once modes have no
// host equivalent and clamp.
func AddressMode(wrap uint8) gputypes.AddressMode {
	switch wrap {
	case gcm.TexWrap:
		return gputypes.AddressModeRepeat
	case gcm.TexMirror:
		return gputypes.AddressModeMirrorRepeat
	}
	return gputypes.AddressModeClampToEdge
}

// MinFilter splits a minification filter into its texel and mip filters.
func MinFilter(f uint8) (minf, mip gputypes.FilterMode) {
	switch f {
	case gcm.TexMinNearest, gcm.TexMinNearestMipNearest:
		return gputypes.FilterModeNearest, gputypes.FilterModeNearest
	case gcm.TexMinLinearMipNearest:
		return gputypes.FilterModeLinear, gputypes.FilterModeNearest
	case gcm.TexMinNearestMipLinear:
		return gputypes.FilterModeNearest, gputypes.FilterModeLinear
	}
	return gputypes.FilterModeLinear, gputypes.FilterModeLinear
}

func MagFilter(f uint8) gputypes.FilterMode {
	if f == gcm.TexMagNearest {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}

// TextureCompare maps the ADDRESS depth compare function.
func TextureCompare(zfunc uint8) gputypes.CompareFunction {
	switch zfunc {
	case gcm.TexZFuncNever:
		return gputypes.CompareFunctionNever
	case gcm.TexZFuncLess:
		return gputypes.CompareFunctionLess
	case gcm.TexZFuncEqual:
		return gputypes.CompareFunctionEqual
	case gcm.TexZFuncLEqual:
		return gputypes.CompareFunctionLessEqual
	case gcm.TexZFuncGreater:
		return gputypes.CompareFunctionGreater
	case gcm.TexZFuncNotEqual:
		return gputypes.CompareFunctionNotEqual
	case gcm.TexZFuncGEqual:
		return gputypes.CompareFunctionGreaterEqual
	}
	return gputypes.CompareFunctionAlways
}

// CompareFunc maps the depth, alpha and stencil function enums.
func CompareFunc(v uint32) gputypes.CompareFunction {
	if v >= gcm.FuncNever && v <= gcm.FuncAlways {
		return TextureCompare(uint8(v - gcm.FuncNever))
	}
	return gputypes.CompareFunctionAlways
}

// Topology maps a primitive. native is false when the host has no such
// topology and the renderer must expand the vertex stream.
func Topology(prim uint32) (t gputypes.PrimitiveTopology, native bool) {
	switch prim {
	case gcm.PrimitivePoints:
		return gputypes.PrimitiveTopologyPointList, true
	case gcm.PrimitiveLines:
		return gputypes.PrimitiveTopologyLineList, true
	case gcm.PrimitiveLineStrip:
		return gputypes.PrimitiveTopologyLineStrip, true
	case gcm.PrimitiveTriangles:
		return gputypes.PrimitiveTopologyTriangleList, true
	case gcm.PrimitiveTriangleStrip, gcm.PrimitiveQuadStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, true
	case gcm.PrimitiveLineLoop:
		return gputypes.PrimitiveTopologyLineStrip, false
	}
	return gputypes.PrimitiveTopologyTriangleList, false
}

func CullMode(enabled bool, face uint32) gputypes.CullMode {
	if !enabled {
		return gputypes.CullModeNone
	}
	switch face {
	case gcm.CullFront:
		return gputypes.CullModeFront
	case gcm.CullBack:
		return gputypes.CullModeBack
	}
	// Front and back culls everything; the renderer drops the draw.
	return gputypes.CullModeNone
}

func FrontFace(v uint32) gputypes.FrontFace {
	if v == gcm.FrontFaceCW {
		return gputypes.FrontFaceCW
	}
	return gputypes.FrontFaceCCW
}

func IndexFormat(typ uint8) gputypes.IndexFormat {
	if typ == gcm.IndexType16 {
		return gputypes.IndexFormatUint16
	}
	return gputypes.IndexFormatUint32
}

// Dimensions returns the texture and view dimensions of a descriptor.
func Dimensions(d texture.Dimension) (gputypes.TextureDimension, gputypes.TextureViewDimension) {
	switch d {
	case texture.Dim1D:
		return gputypes.TextureDimension1D, gputypes.TextureViewDimension1D
	case texture.Dim3D:
		return gputypes.TextureDimension3D, gputypes.TextureViewDimension3D
	case texture.DimCube:
		return gputypes.TextureDimension2D, gputypes.TextureViewDimensionCube
	}
	return gputypes.TextureDimension2D, gputypes.TextureViewDimension2D
}

// SamplerFor resolves the sampler state of a unit.
func SamplerFor(d texture.Descriptor) Sampler {
	a := d.Address()
	f := d.Filter()
	c := d.Control0()
	minf, mip := MinFilter(f.Min)
	s := Sampler{
		AddressU:      AddressMode(a.WrapS),
		AddressV:      AddressMode(a.WrapT),
		AddressW:      AddressMode(a.WrapR),
		MagFilter:     MagFilter(f.Mag),
		MinFilter:     minf,
		MipFilter:     mip,
		Compare:       TextureCompare(a.ZFunc),
		LODMin:        regs.Fixed48(c.MinLOD),
		LODMax:        regs.Fixed48(c.MaxLOD),
		LODBias:       regs.Bias58(f.Bias),
		MaxAnisotropy: 1 << min(c.MaxAniso, 4),
	}
	return s
}

// KeyFor identifies the texture a descriptor refers to.
func KeyFor(d texture.Descriptor) TextureKey {
	p := d.Params()
	return TextureKey{
		Location: d.Location(),
		Offset:   d.Offset(),
		Format:   d.Format(),
		Width:    p.Width,
		Height:   p.Height,
		Depth:    p.Depth,
		Layers:   p.Layers,
		Levels:   p.Levels,
	}
}

// UploadFor wraps a transcoded texture for the renderer.
func UploadFor(d texture.Descriptor, res *upload.Result, placeholder bool) *TextureUpload {
	dim, view := Dimensions(d.Dimension())
	p := res.Params
	format := TextureFormat(p.Format, d.Address().Gamma != 0)
	if placeholder {
		dim, view = gputypes.TextureDimension2D, gputypes.TextureViewDimension2D
		format = gputypes.TextureFormatBGRA8Unorm
	}
	layers := max(p.Depth, p.Layers)
	return &TextureUpload{
		Key:           KeyFor(d),
		Format:        format,
		Dimension:     dim,
		ViewDimension: view,
		Size: gputypes.Extent3D{
			Width:              uint32(p.Width),
			Height:             uint32(p.Height),
			DepthOrArrayLayers: uint32(layers),
		},
		MipLevelCount: uint32(p.Levels),
		Data:          res.Data,
		Levels:        res.Levels,
		Result:        res,
		Placeholder:   placeholder,
	}
}

// ClearFor decodes the clear values against the bound surface format.
func ClearFor(c *method.Clear) *ClearRequest {
	col := c.Color
	req := &ClearRequest{
		Clear: c,
		Color: [4]float32{
			float32(col>>16&0xff) / 255,
			float32(col>>8&0xff) / 255,
			float32(col&0xff) / 255,
			float32(col>>24) / 255,
		},
	}
	if c.Surface.Depth() == gcm.SurfaceDepthZ16 {
		req.Depth = float32(c.ZS.Z16()) / 0xffff
	} else {
		req.Depth = float32(c.ZS.Z24()) / 0xffffff
		req.Stencil = c.ZS.Stencil()
	}
	return req
}

// DrawFor resolves the pipeline state of a draw from its register
// snapshot. Bindings are left to the caller.
func DrawFor(d *method.Draw) *DrawRequest {
	r := d.Regs
	topo, native := Topology(d.Primitive)
	req := &DrawRequest{
		Draw:      d,
		Topology:  topo,
		Emulated:  !native,
		CullMode:  CullMode(regs.Bool(r.Get(gcm.SetCullFaceEnable)), r.Get(gcm.SetCullFace)),
		FrontFace: FrontFace(r.Get(gcm.SetFrontFace)),
		IndexFmt:  IndexFormat(d.IndexType),
		DepthFunc: gputypes.CompareFunctionAlways,
	}
	if regs.Bool(r.Get(gcm.SetDepthTestEnable)) {
		req.DepthFunc = CompareFunc(r.Get(gcm.SetDepthFunc))
	}
	return req
}
