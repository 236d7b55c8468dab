// Package texture exposes typed views of the fragment and vertex texture
// units held in the register file. Views are computed from the live words on
// every call.
package texture

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/upload"
)

// Kind selects the register bank of a unit.
type Kind uint8

const (
	FragmentUnit Kind = iota
	VertexUnit
)

func (k Kind) String() string {
	if k == VertexUnit {
		return "vertex"
	}
	return "fragment"
}

// Word indices inside a unit block.
const (
	wordOffset = iota
	wordFormat
	wordAddress
	wordControl0
	wordControl1 // remap on fragment units, CONTROL3 on vertex units
	wordFilter
	wordImageRect
	wordBorderColor
)

// Dimension is the extended dimension: the FORMAT dimension field combined
// with the cubemap bit.
type Dimension uint8

const (
	DimUnknown Dimension = iota
	Dim1D
	Dim2D
	Dim3D
	DimCube
)

func (d Dimension) String() string {
	switch d {
	case Dim1D:
		return "1D"
	case Dim2D:
		return "2D"
	case Dim3D:
		return "3D"
	case DimCube:
		return "cube"
	}
	return fmt.Sprintf("dim(%d)", uint8(d))
}

// Descriptor is a read-only copy of one unit's registers.
type Descriptor struct {
	Kind Kind
	Unit int

	words    [gcm.TextureUnitWords]uint32
	control3 uint32
}

func unitBase(k Kind, unit int) gcm.Reg {
	if k == VertexUnit {
		return gcm.SetVertexTextureOffset + gcm.Reg(unit*gcm.TextureUnitWords)
	}
	return gcm.SetTextureOffset + gcm.Reg(unit*gcm.TextureUnitWords)
}

// Fragment reads fragment unit 0..15.
func Fragment(f *regs.File, unit int) Descriptor {
	d := Descriptor{Kind: FragmentUnit, Unit: unit}
	copy(d.words[:], f.Block(unitBase(FragmentUnit, unit), gcm.TextureUnitWords))
	d.control3 = f.Get(gcm.SetTextureControl3 + gcm.Reg(unit))
	return d
}

// Vertex reads vertex unit 0..3.
func Vertex(f *regs.File, unit int) Descriptor {
	d := Descriptor{Kind: VertexUnit, Unit: unit}
	copy(d.words[:], f.Block(unitBase(VertexUnit, unit), gcm.TextureUnitWords))
	d.control3 = d.words[wordControl1]
	return d
}

// Words returns the raw unit block.
func (d Descriptor) Words() [gcm.TextureUnitWords]uint32 { return d.words }

func (d Descriptor) format() regs.TexFormat      { return regs.TexFormat(d.words[wordFormat]) }
func (d Descriptor) control3w() regs.TexControl3 { return regs.TexControl3(d.control3) }

func (d Descriptor) Offset() uint32      { return d.words[wordOffset] }
func (d Descriptor) Location() uint8     { return d.format().Location() }
func (d Descriptor) Format() uint8       { return d.format().Format() }
func (d Descriptor) Cubemap() bool       { return d.format().Cubemap() }
func (d Descriptor) Border() uint8       { return d.format().Border() }
func (d Descriptor) BorderColor() uint32 { return d.words[wordBorderColor] }

// BaseFormat strips the LN and UN flags.
func (d Descriptor) BaseFormat() uint8 { return gcm.BaseFormat(d.Format()) }

// Linear reports a row-major texture; otherwise the texture is swizzled.
func (d Descriptor) Linear() bool       { return d.Format()&gcm.TexFormatLN != 0 }
func (d Descriptor) Unnormalized() bool { return d.Format()&gcm.TexFormatUN != 0 }

func (d Descriptor) Dimension() Dimension {
	switch d.format().Dimension() {
	case gcm.TexDimension1D:
		return Dim1D
	case gcm.TexDimension2D:
		if d.Cubemap() {
			return DimCube
		}
		return Dim2D
	case gcm.TexDimension3D:
		return Dim3D
	}
	return DimUnknown
}

func (d Descriptor) Width() int {
	return int(regs.ImageRect(d.words[wordImageRect]).Width())
}

// Height is 1 for 1D textures regardless of the register.
func (d Descriptor) Height() int {
	if d.Dimension() == Dim1D {
		return 1
	}
	return int(regs.ImageRect(d.words[wordImageRect]).Height())
}

// Depth is the slice count of a 3D texture and 1 otherwise.
func (d Descriptor) Depth() int {
	if d.Dimension() != Dim3D {
		return 1
	}
	return max(int(d.control3w().Depth()), 1)
}

// Pitch is the guest row pitch of a linear texture.
func (d Descriptor) Pitch() int { return int(d.control3w().Pitch()) }

// RawMipMaps is the unvalidated level count.
func (d Descriptor) RawMipMaps() uint16 { return d.format().MipMaps() }

// MipMaps is the level count clamped to the chain the image size allows.
// A raw count of 0 is treated as 1.
func (d Descriptor) MipMaps() int {
	n := max(int(d.RawMipMaps()), 1)
	return min(n, upload.MaxLevels(d.Width(), d.Height()))
}

func (d Descriptor) Address() regs.TexAddressFields {
	return regs.TexAddress(d.words[wordAddress]).Fields()
}

func (d Descriptor) Control0() regs.TexControl0Fields {
	return regs.TexControl0(d.words[wordControl0]).Fields()
}

func (d Descriptor) Enabled() bool { return regs.TexControl0(d.words[wordControl0]).Enabled() }

func (d Descriptor) MinLOD() float32 { return regs.Fixed48(d.Control0().MinLOD) }
func (d Descriptor) MaxLOD() float32 { return regs.Fixed48(d.Control0().MaxLOD) }

func (d Descriptor) Filter() regs.TexFilterFields {
	return regs.TexFilter(d.words[wordFilter]).Fields()
}

// Bias is the signed 5.8 LOD bias.
func (d Descriptor) Bias() float32 { return regs.Bias58(d.Filter().Bias) }

// Remap returns the raw CONTROL1 entries. Vertex units have no remap word
// and always pass channels through.
func (d Descriptor) Remap() [4]regs.RemapEntry {
	if d.Kind == VertexUnit {
		return regs.IdentityRemap.Entries()
	}
	return regs.TexRemap(d.words[wordControl1]).Entries()
}

// Swizzle is a resolved output channel.
type Swizzle struct {
	Const  bool  // output is Value instead of a source channel
	Value  uint8 // 0 or 1
	Source uint8 // gcm.ChannelA..ChannelB
}

func (s Swizzle) String() string {
	if s.Const {
		return fmt.Sprint(s.Value)
	}
	return string("argb"[s.Source&3])
}

// Channels resolves the remap table into the final mapping, in A, R, G, B
// output order.
func (d Descriptor) Channels() [4]Swizzle {
	var out [4]Swizzle
	for i, e := range d.Remap() {
		switch gcm.Remap(e.Control) {
		case gcm.RemapZero:
			out[i] = Swizzle{Const: true, Value: 0}
		case gcm.RemapOne:
			out[i] = Swizzle{Const: true, Value: 1}
		default:
			out[i] = Swizzle{Source: e.Source}
		}
	}
	return out
}

// Params describes the texture for the transcoding pipeline.
func (d Descriptor) Params() upload.Params {
	p := upload.Params{
		Format:  d.Format(),
		Width:   d.Width(),
		Height:  d.Height(),
		Depth:   d.Depth(),
		Layers:  1,
		Levels:  d.MipMaps(),
		Swizzle: !d.Linear(),
	}
	if d.Dimension() == DimCube {
		p.Layers = 6
	}
	if d.Linear() {
		p.Pitch = d.Pitch()
	}
	return p
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s[%d] %s %s %dx%dx%d mips=%d off=%#x loc=%d",
		d.Kind, d.Unit, upload.FormatName(d.Format()), d.Dimension(),
		d.Width(), d.Height(), d.Depth(), d.MipMaps(), d.Offset(), d.Location())
}
