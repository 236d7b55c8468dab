// Package backend defines what the GPU core hands to a host renderer and
// the host-side encodings of guest state.
package backend

import (
	"github.com/gogpu/gputypes"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/method"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/upload"
)

// Renderer consumes resolved work. Calls are fire-and-forget and arrive in
// command order; an implementation may execute them later but must keep
// that order.
type Renderer interface {
	Draw(r *DrawRequest)
	UploadTexture(u *TextureUpload)
	Clear(c *ClearRequest)
	Flip(buffer uint32)
}

// TextureKey identifies a texture by what was transcoded.
type TextureKey struct {
	Location uint8
	Offset   uint32
	Format   uint8
	Width    int
	Height   int
	Depth    int
	Layers   int
	Levels   int
}

// Sampler is the host sampler state of one unit.
type Sampler struct {
	AddressU, AddressV, AddressW gputypes.AddressMode
	MagFilter, MinFilter         gputypes.FilterMode
	MipFilter                    gputypes.FilterMode
	Compare                      gputypes.CompareFunction
	LODMin, LODMax               float32
	LODBias                      float32
	MaxAnisotropy                uint16
}

// Binding is a texture unit in use by a draw.
type Binding struct {
	Unit    int
	Vertex  bool
	Key     TextureKey
	Sampler Sampler
}

// DrawRequest is a closed batch with host pipeline state resolved.
type DrawRequest struct {
	*method.Draw

	Topology gputypes.PrimitiveTopology
	// Emulated is set when the guest primitive has no host topology and the
	// renderer must expand it (fans, quads, polygons, line loops).
	Emulated  bool
	CullMode  gputypes.CullMode
	FrontFace gputypes.FrontFace
	IndexFmt  gputypes.IndexFormat
	DepthFunc gputypes.CompareFunction
	Bindings  []Binding
}

// TextureUpload carries a fully transcoded texture. Data and Levels follow
// the upload layout; Levels[i].Offset indexes Data.
type TextureUpload struct {
	Key           TextureKey
	Format        gputypes.TextureFormat
	Dimension     gputypes.TextureDimension
	ViewDimension gputypes.TextureViewDimension
	Size          gputypes.Extent3D
	MipLevelCount uint32
	Data          []byte
	Levels        []upload.Level

	// Result keeps the source layout for previews.
	Result *upload.Result
	// Placeholder marks the diagnostic texture used for unsupported input.
	Placeholder bool
}

// ClearRequest is a surface clear with the clear values decoded.
type ClearRequest struct {
	*method.Clear
	Color   [4]float32 // r, g, b, a
	Depth   float32
	Stencil uint8
}

// Null drops everything.
type Null struct{}

func (Null) Draw(*DrawRequest)           {}
func (Null) UploadTexture(*TextureUpload) {}
func (Null) Clear(*ClearRequest)         {}
func (Null) Flip(uint32)                 {}
