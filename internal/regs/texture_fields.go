package regs

// TexFormat is the FORMAT word of a texture unit.
type TexFormat uint32

// Location decodes the low two bits, which hold location+1.
func (v TexFormat) Location() uint8 { return uint8(bits(uint32(v), 0, 2)) - 1 }
func (v TexFormat) Cubemap() bool   { return bits(uint32(v), 2, 1) != 0 }
func (v TexFormat) Border() uint8   { return uint8(bits(uint32(v), 3, 1)) }
func (v TexFormat) Dimension() uint8 {
	return uint8(bits(uint32(v), 4, 4))
}
func (v TexFormat) Format() uint8   { return uint8(bits(uint32(v), 8, 8)) }
func (v TexFormat) MipMaps() uint16 { return uint16(bits(uint32(v), 16, 16)) }

func EncodeTexFormat(location uint8, cubemap bool, border, dim, format uint8, mips uint16) TexFormat {
	return TexFormat(put(uint32(location+1), 0, 2) | put(EncodeBool(cubemap), 2, 1) |
		put(uint32(border), 3, 1) | put(uint32(dim), 4, 4) |
		put(uint32(format), 8, 8) | put(uint32(mips), 16, 16))
}

// TexAddress is the ADDRESS word: wrap modes, remap order and depth compare.
type TexAddress uint32

type TexAddressFields struct {
	WrapS, WrapT, WrapR uint8
	AnisoBias           uint8
	UnsignedRemap       uint8
	SignedRemap         uint8
	Gamma               uint8 // per-channel sRGB mask
	ZFunc               uint8
}

func (v TexAddress) Fields() TexAddressFields {
	w := uint32(v)
	return TexAddressFields{
		WrapS:         uint8(bits(w, 0, 4)),
		AnisoBias:     uint8(bits(w, 4, 4)),
		WrapT:         uint8(bits(w, 8, 4)),
		UnsignedRemap: uint8(bits(w, 12, 4)),
		WrapR:         uint8(bits(w, 16, 4)),
		Gamma:         uint8(bits(w, 20, 4)),
		SignedRemap:   uint8(bits(w, 24, 4)),
		ZFunc:         uint8(bits(w, 28, 4)),
	}
}

func (f TexAddressFields) Encode() TexAddress {
	return TexAddress(put(uint32(f.WrapS), 0, 4) | put(uint32(f.AnisoBias), 4, 4) |
		put(uint32(f.WrapT), 8, 4) | put(uint32(f.UnsignedRemap), 12, 4) |
		put(uint32(f.WrapR), 16, 4) | put(uint32(f.Gamma), 20, 4) |
		put(uint32(f.SignedRemap), 24, 4) | put(uint32(f.ZFunc), 28, 4))
}

// TexControl0 is the CONTROL0 word. LOD bounds are unsigned 4.8 fixed
// point.
type TexControl0 uint32

type TexControl0Fields struct {
	Enabled   bool
	MinLOD    uint16 // raw 12-bit
	MaxLOD    uint16 // raw 12-bit
	MaxAniso  uint8
	AlphaKill bool
}

func (v TexControl0) Fields() TexControl0Fields {
	w := uint32(v)
	return TexControl0Fields{
		Enabled:   bits(w, 31, 1) != 0,
		MinLOD:    uint16(bits(w, 19, 12)),
		MaxLOD:    uint16(bits(w, 7, 12)),
		MaxAniso:  uint8(bits(w, 4, 3)),
		AlphaKill: bits(w, 2, 1) != 0,
	}
}

func (f TexControl0Fields) Encode() TexControl0 {
	return TexControl0(put(EncodeBool(f.Enabled), 31, 1) | put(uint32(f.MinLOD), 19, 12) |
		put(uint32(f.MaxLOD), 7, 12) | put(uint32(f.MaxAniso), 4, 3) |
		put(EncodeBool(f.AlphaKill), 2, 1))
}

func (v TexControl0) Enabled() bool { return bits(uint32(v), 31, 1) != 0 }

// Fixed48 converts an unsigned 4.8 fixed point value.
func Fixed48(raw uint16) float32 { return float32(raw&0xfff) / 256 }

// TexRemap is the CONTROL1 word. Bits 0..7 select a source channel for
// each output channel in A, R, G, B order; bits 8..15 select zero, one or
// the remapped source, in the same order.
type TexRemap uint32

// RemapEntry describes one output channel.
type RemapEntry struct {
	Source  uint8 // channel index A=0 R=1 G=2 B=3
	Control uint8 // 0 zero, 1 one, 2 remap
}

func (v TexRemap) Entry(ch int) RemapEntry {
	w := uint32(v)
	return RemapEntry{
		Source:  uint8(bits(w, uint(2*ch), 2)),
		Control: uint8(bits(w, uint(8+2*ch), 2)),
	}
}

func (v TexRemap) Entries() [4]RemapEntry {
	return [4]RemapEntry{v.Entry(0), v.Entry(1), v.Entry(2), v.Entry(3)}
}

func EncodeTexRemap(e [4]RemapEntry) TexRemap {
	var w uint32
	for ch, x := range e {
		w |= put(uint32(x.Source), uint(2*ch), 2) | put(uint32(x.Control), uint(8+2*ch), 2)
	}
	return TexRemap(w)
}

// IdentityRemap passes every channel through from itself.
const IdentityRemap TexRemap = 0xaae4

// TexFilter is the FILTER word.
type TexFilter uint32

type TexFilterFields struct {
	Bias    uint16 // raw 13-bit signed 5.8 fixed point
	Conv    uint8
	Min     uint8
	Mag     uint8
	ASigned bool
	RSigned bool
	GSigned bool
	BSigned bool
}

func (v TexFilter) Fields() TexFilterFields {
	w := uint32(v)
	return TexFilterFields{
		Bias:    uint16(bits(w, 0, 13)),
		Conv:    uint8(bits(w, 13, 3)),
		Min:     uint8(bits(w, 16, 3)),
		Mag:     uint8(bits(w, 24, 3)),
		ASigned: bits(w, 28, 1) != 0,
		RSigned: bits(w, 29, 1) != 0,
		GSigned: bits(w, 30, 1) != 0,
		BSigned: bits(w, 31, 1) != 0,
	}
}

func (f TexFilterFields) Encode() TexFilter {
	return TexFilter(put(uint32(f.Bias), 0, 13) | put(uint32(f.Conv), 13, 3) |
		put(uint32(f.Min), 16, 3) | put(uint32(f.Mag), 24, 3) |
		put(EncodeBool(f.ASigned), 28, 1) | put(EncodeBool(f.RSigned), 29, 1) |
		put(EncodeBool(f.GSigned), 30, 1) | put(EncodeBool(f.BSigned), 31, 1))
}

// Bias58 converts the 13-bit signed 5.8 fixed point LOD bias.
func Bias58(raw uint16) float32 {
	v := int32(raw&0x1fff) << 19 >> 19
	return float32(v) / 256
}

// ImageRect is the IMAGE_RECT word.
type ImageRect uint32

func (v ImageRect) Height() uint16 { return uint16(bits(uint32(v), 0, 16)) }
func (v ImageRect) Width() uint16  { return uint16(bits(uint32(v), 16, 16)) }

func EncodeImageRect(w, h uint16) ImageRect {
	return ImageRect(put(uint32(h), 0, 16) | put(uint32(w), 16, 16))
}

// TexControl3 carries the linear pitch and the 3D depth of a texture unit.
type TexControl3 uint32

func (v TexControl3) Pitch() uint32 { return bits(uint32(v), 0, 16) }
func (v TexControl3) Depth() uint16 { return uint16(bits(uint32(v), 20, 12)) }

func EncodeTexControl3(pitch uint32, depth uint16) TexControl3 {
	return TexControl3(put(pitch, 0, 16) | put(uint32(depth), 20, 12))
}
