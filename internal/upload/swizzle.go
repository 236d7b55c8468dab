package upload

// morton holds per-axis offset tables: the element index of (x, y, z) in a
// swizzled image is x[x] | y[y] | z[z]. Bits are interleaved round-robin
// starting with x; an axis that runs out of bits drops out.
type morton struct {
	x, y, z []uint32
}

func newMorton(w, h, d int) morton {
	lw, lh, ld := log2Ceil(w), log2Ceil(h), log2Ceil(d)
	m := morton{
		x: make([]uint32, 1<<lw),
		y: make([]uint32, 1<<lh),
		z: make([]uint32, 1<<ld),
	}
	var xb, yb, zb [32]uint32 // output bit for each axis bit
	out := uint32(0)
	for i := 0; i < lw || i < lh || i < ld; i++ {
		if i < lw {
			xb[i] = 1 << out
			out++
		}
		if i < lh {
			yb[i] = 1 << out
			out++
		}
		if i < ld {
			zb[i] = 1 << out
			out++
		}
	}
	fill := func(t []uint32, b *[32]uint32) {
		for v := range t {
			var o uint32
			for i := 0; v>>i != 0; i++ {
				if v>>i&1 != 0 {
					o |= b[i]
				}
			}
			t[v] = o
		}
	}
	fill(m.x, &xb)
	fill(m.y, &yb)
	fill(m.z, &zb)
	return m
}

// SwizzledSize is the byte size of a swizzled w x h x d image.
func SwizzledSize(w, h, d, bpp int) int {
	return (1 << log2Ceil(w)) * (1 << log2Ceil(h)) * (1 << log2Ceil(max(d, 1))) * bpp
}

// Deswizzle converts a Morton-ordered image into row-major order with the
// given destination row pitch. dst must hold pitch*h*d bytes.
func Deswizzle(dst, src []byte, w, h, d, bpp, pitch int) {
	d = max(d, 1)
	m := newMorton(w, h, d)
	switch bpp {
	case 2:
		for z := 0; z < d; z++ {
			for y := 0; y < h; y++ {
				row := dst[(z*h+y)*pitch:]
				base := m.y[y] | m.z[z]
				for x := 0; x < w; x++ {
					s := int(m.x[x]|base) * 2
					row[x*2] = src[s]
					row[x*2+1] = src[s+1]
				}
			}
		}
	case 4:
		for z := 0; z < d; z++ {
			for y := 0; y < h; y++ {
				row := dst[(z*h+y)*pitch:]
				base := m.y[y] | m.z[z]
				for x := 0; x < w; x++ {
					s := int(m.x[x]|base) * 4
					copy(row[x*4:x*4+4], src[s:s+4])
				}
			}
		}
	default:
		for z := 0; z < d; z++ {
			for y := 0; y < h; y++ {
				row := dst[(z*h+y)*pitch:]
				base := m.y[y] | m.z[z]
				for x := 0; x < w; x++ {
					s := int(m.x[x]|base) * bpp
					copy(row[x*bpp:(x+1)*bpp], src[s:s+bpp])
				}
			}
		}
	}
}

// Swizzle is the inverse of Deswizzle for a tightly packed row-major
// source.
func Swizzle(dst, src []byte, w, h, d, bpp int) {
	d = max(d, 1)
	m := newMorton(w, h, d)
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			base := m.y[y] | m.z[z]
			for x := 0; x < w; x++ {
				s := ((z*h+y)*w + x) * bpp
				o := int(m.x[x]|base) * bpp
				copy(dst[o:o+bpp], src[s:s+bpp])
			}
		}
	}
}
