package upload

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
)

// DecodeRGBA expands the first slice of subresource i into an NRGBA image
// for previews and dumps. Depth formats decode as grey.
func (r *Result) DecodeRGBA(i int) (*image.NRGBA, error) {
	l := r.Levels[i]
	img := image.NewNRGBA(image.Rect(0, 0, l.Width, l.Height))
	data := r.LevelData(i)

	if r.Format.Class == ClassBlock {
		if err := decodeBlocks(img, r.Format, data, l.RowPitch); err != nil {
			return nil, err
		}
		return img, nil
	}
	px, ok := pixelDecoder(r.Format)
	if !ok {
		return nil, &UnsupportedFormatError{Format: r.Params.Format, Reason: "no preview decoder"}
	}
	n := r.Format.DstBytes
	for y := 0; y < l.Height; y++ {
		row := data[y*l.RowPitch:]
		for x := 0; x < l.Width; x++ {
			img.SetNRGBA(x, y, px(row[x*n:x*n+n]))
		}
	}
	return img, nil
}

func expand(v uint32, n uint) uint8 {
	m := uint32(1)<<n - 1
	return uint8((v & m) * 255 / m)
}

func grey(v uint8) color.NRGBA { return color.NRGBA{v, v, v, 0xff} }

func pixelDecoder(f FormatInfo) (func([]byte) color.NRGBA, bool) {
	switch f.Class {
	case ClassD16, ClassD16F, ClassD24F:
		return func(p []byte) color.NRGBA { return grey(p[1]) }, true
	case ClassD24S8:
		return func(p []byte) color.NRGBA { return grey(p[2]) }, true
	}
	switch f.Name {
	case "A8R8G8B8":
		return func(p []byte) color.NRGBA { return color.NRGBA{p[1], p[2], p[3], p[0]} }, true
	case "D8R8G8B8":
		return func(p []byte) color.NRGBA { return color.NRGBA{p[1], p[2], p[3], 0xff} }, true
	case "B8":
		return func(p []byte) color.NRGBA { return grey(p[0]) }, true
	case "G8B8":
		return func(p []byte) color.NRGBA { return color.NRGBA{0, p[0], p[1], 0xff} }, true
	case "R5G6B5":
		return func(p []byte) color.NRGBA {
			v := uint32(binary.BigEndian.Uint16(p))
			return color.NRGBA{expand(v>>11, 5), expand(v>>5, 6), expand(v, 5), 0xff}
		}, true
	case "A1R5G5B5", "D1R5G5B5":
		opaque := f.Name == "D1R5G5B5"
		return func(p []byte) color.NRGBA {
			v := uint32(binary.BigEndian.Uint16(p))
			a := expand(v>>15, 1)
			if opaque {
				a = 0xff
			}
			return color.NRGBA{expand(v>>10, 5), expand(v>>5, 5), expand(v, 5), a}
		}, true
	case "R5G5B5A1":
		return func(p []byte) color.NRGBA {
			v := uint32(binary.BigEndian.Uint16(p))
			return color.NRGBA{expand(v>>11, 5), expand(v>>6, 5), expand(v>>1, 5), expand(v, 1)}
		}, true
	case "A4R4G4B4":
		return func(p []byte) color.NRGBA {
			v := uint32(binary.BigEndian.Uint16(p))
			return color.NRGBA{expand(v>>8, 4), expand(v>>4, 4), expand(v, 4), expand(v>>12, 4)}
		}, true
	}
	return nil, false
}

// decodeBlocks handles the S3TC families. Block words are little-endian in
// guest memory.
func decodeBlocks(img *image.NRGBA, f FormatInfo, data []byte, pitch int) error {
	if f.BlockW != 4 {
		return fmt.Errorf("%w: no preview decoder for %s", ErrUnsupported, f.Name)
	}
	b := img.Bounds()
	bw, bh := ceilDiv(b.Dx(), 4), ceilDiv(b.Dy(), 4)
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			blk := data[by*pitch+bx*f.SrcBytes:]
			var alpha [16]uint8
			colorBlk := blk
			switch f.Name {
			case "DXT1":
				for i := range alpha {
					alpha[i] = 0xff
				}
			case "DXT23":
				a := binary.LittleEndian.Uint64(blk)
				for i := range alpha {
					alpha[i] = expand(uint32(a>>(4*i)), 4)
				}
				colorBlk = blk[8:]
			case "DXT45":
				alpha = dxt5Alpha(blk)
				colorBlk = blk[8:]
			default:
				return fmt.Errorf("%w: no preview decoder for %s", ErrUnsupported, f.Name)
			}
			texels := dxtColor(colorBlk, f.Name == "DXT1")
			for i, c := range texels {
				x, y := bx*4+i%4, by*4+i/4
				if x >= b.Dx() || y >= b.Dy() {
					continue
				}
				if f.Name != "DXT1" {
					c.A = alpha[i]
				}
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return nil
}

func rgb565(v uint16) color.NRGBA {
	return color.NRGBA{expand(uint32(v>>11), 5), expand(uint32(v>>5), 6), expand(uint32(v), 5), 0xff}
}

func dxtColor(blk []byte, punch bool) [16]color.NRGBA {
	c0v, c1v := binary.LittleEndian.Uint16(blk), binary.LittleEndian.Uint16(blk[2:])
	c0, c1 := rgb565(c0v), rgb565(c1v)
	mix := func(a, b color.NRGBA, wa, wb, d int) color.NRGBA {
		return color.NRGBA{
			uint8((int(a.R)*wa + int(b.R)*wb) / d),
			uint8((int(a.G)*wa + int(b.G)*wb) / d),
			uint8((int(a.B)*wa + int(b.B)*wb) / d),
			0xff,
		}
	}
	pal := [4]color.NRGBA{c0, c1}
	if c0v > c1v || !punch {
		pal[2] = mix(c0, c1, 2, 1, 3)
		pal[3] = mix(c0, c1, 1, 2, 3)
	} else {
		pal[2] = mix(c0, c1, 1, 1, 2)
		pal[3] = color.NRGBA{}
	}
	idx := binary.LittleEndian.Uint32(blk[4:])
	var out [16]color.NRGBA
	for i := range out {
		out[i] = pal[idx>>(2*i)&3]
	}
	return out
}

func dxt5Alpha(blk []byte) [16]uint8 {
	a0, a1 := int(blk[0]), int(blk[1])
	var pal [8]int
	pal[0], pal[1] = a0, a1
	if a0 > a1 {
		for i := 1; i < 7; i++ {
			pal[i+1] = ((7-i)*a0 + i*a1) / 7
		}
	} else {
		for i := 1; i < 5; i++ {
			pal[i+1] = ((5-i)*a0 + i*a1) / 5
		}
		pal[6], pal[7] = 0, 255
	}
	var idx uint64
	for i := 0; i < 6; i++ {
		idx |= uint64(blk[2+i]) << (8 * i)
	}
	var out [16]uint8
	for i := range out {
		out[i] = uint8(pal[idx>>(3*i)&7])
	}
	return out
}
