package texture

import (
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
)

// Fields is the decoded content of a texture unit.
type Fields struct {
	Offset    uint32
	Location  uint8
	Cubemap   bool
	Border    uint8
	Dimension uint8 // raw FORMAT dimension
	Format    uint8
	MipMaps   uint16 // raw level count

	Address  regs.TexAddressFields
	Control0 regs.TexControl0Fields
	Remap    [4]regs.RemapEntry
	Filter   regs.TexFilterFields

	Width, Height uint16
	BorderColor   uint32

	Pitch uint32
	Depth uint16
}

func (d Descriptor) Fields() Fields {
	fm := d.format()
	r := regs.ImageRect(d.words[wordImageRect])
	return Fields{
		Offset:      d.Offset(),
		Location:    fm.Location(),
		Cubemap:     fm.Cubemap(),
		Border:      fm.Border(),
		Dimension:   fm.Dimension(),
		Format:      fm.Format(),
		MipMaps:     fm.MipMaps(),
		Address:     d.Address(),
		Control0:    d.Control0(),
		Remap:       d.Remap(),
		Filter:      d.Filter(),
		Width:       r.Width(),
		Height:      r.Height(),
		BorderColor: d.BorderColor(),
		Pitch:       d.control3w().Pitch(),
		Depth:       d.control3w().Depth(),
	}
}

// Encode packs the fields into a unit block and its CONTROL3 word. For
// vertex units CONTROL3 also lands in the block and Remap is ignored.
func (f Fields) Encode(k Kind) (block [gcm.TextureUnitWords]uint32, control3 uint32) {
	block[wordOffset] = f.Offset
	block[wordFormat] = uint32(regs.EncodeTexFormat(f.Location, f.Cubemap, f.Border, f.Dimension, f.Format, f.MipMaps))
	block[wordAddress] = uint32(f.Address.Encode())
	block[wordControl0] = uint32(f.Control0.Encode())
	block[wordFilter] = uint32(f.Filter.Encode())
	block[wordImageRect] = uint32(regs.EncodeImageRect(f.Width, f.Height))
	block[wordBorderColor] = f.BorderColor
	control3 = uint32(regs.EncodeTexControl3(f.Pitch, f.Depth))
	if k == VertexUnit {
		block[wordControl1] = control3
	} else {
		block[wordControl1] = uint32(regs.EncodeTexRemap(f.Remap))
	}
	return block, control3
}

// Store writes the fields of one unit directly into the register file.
func (f Fields) Store(file *regs.File, k Kind, unit int) {
	block, c3 := f.Encode(k)
	base := unitBase(k, unit)
	for i, w := range block {
		file.Set(base+gcm.Reg(i), w)
	}
	if k == FragmentUnit {
		file.Set(gcm.SetTextureControl3+gcm.Reg(unit), c3)
	}
}

// Registers lists the (register, value) writes that program a unit, in the
// order a command buffer would issue them.
func (f Fields) Registers(k Kind, unit int) []RegValue {
	block, c3 := f.Encode(k)
	base := unitBase(k, unit)
	out := make([]RegValue, 0, len(block)+1)
	for i, w := range block {
		out = append(out, RegValue{base + gcm.Reg(i), w})
	}
	if k == FragmentUnit {
		out = append(out, RegValue{gcm.SetTextureControl3 + gcm.Reg(unit), c3})
	}
	return out
}

type RegValue struct {
	Reg   gcm.Reg
	Value uint32
}
