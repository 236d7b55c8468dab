package upload

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
)

// Result is a transcoded texture. Data is complete when Transcode
// returns; no level is visible before all have been converted.
type Result struct {
	*Layout
	Data []byte
}

// LevelData returns the bytes of subresource i.
func (r *Result) LevelData(i int) []byte {
	l := r.Levels[i]
	return r.Data[l.Offset : l.Offset+l.Size]
}

// Transcode converts guest bytes, starting at the texture offset, into the
// destination layout. It is deterministic for identical input.
func Transcode(p Params, src []byte, o Options) (*Result, error) {
	o.Defaults()
	l, err := Compute(p, o)
	if err != nil {
		return nil, err
	}
	if len(src) < l.SrcSize {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortSource, l.SrcSize, len(src))
	}
	res := &Result{Layout: l, Data: make([]byte, l.Size)}

	if o.Workers <= 1 || len(l.Levels) == 1 {
		for _, sub := range l.Levels {
			convertLevel(l, sub, src, res.Data)
		}
		return res, nil
	}
	var g errgroup.Group
	g.SetLimit(o.Workers)
	for _, sub := range l.Levels {
		g.Go(func() error {
			convertLevel(l, sub, src, res.Data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// convertLevel fills one subresource. Levels own disjoint ranges of dst.
func convertLevel(l *Layout, sub Level, src, dst []byte) {
	f := l.Format
	in := src[sub.SrcOffset : sub.SrcOffset+sub.SrcSize]
	out := dst[sub.Offset : sub.Offset+sub.Size]
	srcPitch := sub.SrcPitch

	if l.Params.Swizzle {
		bpp := f.SrcBytes
		if f.Class == ClassPacked && (bpp == 2 || bpp == 4) {
			// Fused de-swizzle and row repack.
			Deswizzle(out, in, sub.Width, sub.Height, sub.Depth, bpp, sub.RowPitch)
			return
		}
		scratch := make([]byte, sub.Width*sub.Height*sub.Depth*bpp)
		Deswizzle(scratch, in, sub.Width, sub.Height, sub.Depth, bpp, sub.Width*bpp)
		in, srcPitch = scratch, sub.Width*bpp
	}

	rowBytes := ceilDiv(sub.Width, f.BlockW) * f.SrcBytes
	for r := 0; r < sub.Rows*sub.Depth; r++ {
		s := in[r*srcPitch : r*srcPitch+rowBytes]
		convertRow(f.Class, out[r*sub.RowPitch:], s)
	}
}

func convertRow(c Class, dst, src []byte) {
	switch c {
	case ClassPacked, ClassBlock:
		copy(dst, src)
	case ClassD16:
		for i := 0; i+1 < len(src); i += 2 {
			dst[i], dst[i+1] = src[i+1], src[i]
		}
	case ClassD16F:
		for i := 0; i+1 < len(src); i += 2 {
			h := binary.BigEndian.Uint16(src[i:])
			binary.LittleEndian.PutUint16(dst[i:], unorm16(halfToFloat(h)))
		}
	case ClassD24S8:
		for i := 0; i+3 < len(src); i += 4 {
			v := binary.BigEndian.Uint32(src[i:])
			binary.LittleEndian.PutUint32(dst[i:], v>>8|(v&0xff)<<24)
		}
	case ClassD24F:
		for i, o := 0, 0; i+3 < len(src); i, o = i+4, o+2 {
			v := binary.BigEndian.Uint32(src[i:])
			binary.LittleEndian.PutUint16(dst[o:], unorm16(float24ToFloat(v>>8)))
		}
	}
}

func unorm16(f float32) uint16 {
	switch {
	case !(f > 0): // also NaN
		return 0
	case f >= 1:
		return 0xffff
	}
	return uint16(f*65535 + 0.5)
}

// halfToFloat decodes an IEEE 754 binary16 value.
func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	man := uint32(h) & 0x3ff
	switch {
	case exp == 0 && man == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// subnormal
		f := float32(man) / (1 << 24)
		if sign != 0 {
			f = -f
		}
		return f
	case exp == 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | man<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | man<<13)
}

// float24ToFloat decodes the unsigned depth float: 8-bit exponent biased
// like binary32 and a 16-bit mantissa.
func float24ToFloat(v uint32) float32 {
	return math.Float32frombits((v & 0xffffff) << 7)
}

// PlaceholderMax bounds each side of the placeholder texture.
const PlaceholderMax = 256

// Placeholder is the diagnostic texture substituted for unsupported
// formats: an 8x8 magenta and black checkerboard in A8R8G8B8, clamped to
// PlaceholderMax per side.
func Placeholder(w, h int) *Result {
	w, h = min(max(w, 1), PlaceholderMax), min(max(h, 1), PlaceholderMax)
	l, _ := Compute(Params{Format: gcm.TexFormatA8R8G8B8 | gcm.TexFormatLN, Width: w, Height: h, Levels: 1}, Options{})
	res := &Result{Layout: l, Data: make([]byte, l.Size)}
	pitch := l.Levels[0].RowPitch
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := res.Data[y*pitch+x*4:]
			p[0] = 0xff
			if (x/8+y/8)%2 == 0 {
				p[1], p[2], p[3] = 0xff, 0x00, 0xff
			}
		}
	}
	return res
}
