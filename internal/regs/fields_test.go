package regs

import "testing"

func TestSpanAndPoint(t *testing.T) {
	s := EncodeSpan(16, 1280)
	if s.Origin() != 16 || s.Size() != 1280 {
		t.Fatalf("span got %d,%d", s.Origin(), s.Size())
	}
	p := EncodePoint(3, 7)
	if uint32(p) != 0x00070003 {
		t.Fatalf("point encoding got %08x", uint32(p))
	}
}

func TestSurfaceFormatRoundTrip(t *testing.T) {
	v := EncodeSurfaceFormat(8, 2, 1, 0, 10, 9)
	if v.Color() != 8 || v.Depth() != 2 || v.Type() != 1 || v.Antialias() != 0 || v.LogWidth() != 10 || v.LogHeight() != 9 {
		t.Fatalf("surface format decode mismatch: %08x", uint32(v))
	}
}

func TestColorMask(t *testing.T) {
	m := EncodeColorMask(true, false, true, false)
	if !m.R() || m.G() || !m.B() || m.A() {
		t.Fatalf("mask decode got r=%v g=%v b=%v a=%v", m.R(), m.G(), m.B(), m.A())
	}
	if uint32(m) != 0x00010001 {
		t.Fatalf("mask encoding got %08x", uint32(m))
	}
}

func TestShaderProgram(t *testing.T) {
	v := EncodeShaderProgram(1, 0x1000)
	if uint32(v) != 0x1002 {
		t.Fatalf("encoding got %#x", uint32(v))
	}
	if v.Location() != 1 || v.Offset() != 0x1000 {
		t.Fatalf("decode got loc=%d off=%#x", v.Location(), v.Offset())
	}
}

func TestDrawRange(t *testing.T) {
	cases := []struct{ first, count uint32 }{{0, 1}, {12, 3}, {0xffffff, 256}}
	for _, c := range cases {
		r := EncodeDrawRange(c.first, c.count)
		if r.First() != c.first || r.Count() != c.count {
			t.Errorf("range %v decoded as %d,%d", c, r.First(), r.Count())
		}
	}
	if DrawRange(0x02000010).Count() != 3 {
		t.Fatal("raw count byte 2 should mean 3 elements")
	}
}

func TestVertexFormat(t *testing.T) {
	v := EncodeVertexFormat(2, 4, 16, 0)
	if v.Type() != 2 || v.Size() != 4 || v.Stride() != 16 || !v.Enabled() {
		t.Fatalf("vertex format decode mismatch: %08x", uint32(v))
	}
	if EncodeVertexFormat(2, 0, 16, 0).Enabled() {
		t.Fatal("size 0 must disable the attribute")
	}
	o := EncodeVertexOffset(1, 0x100)
	if o.Location() != 1 || o.Offset() != 0x100 {
		t.Fatalf("vertex offset decode got %d,%#x", o.Location(), o.Offset())
	}
}

func TestIndexDMAAndClear(t *testing.T) {
	d := EncodeIndexDMA(1, 1)
	if d.Location() != 1 || d.Type() != 1 {
		t.Fatalf("index dma got %d,%d", d.Location(), d.Type())
	}
	z := ZStencilClear(0xffffff07)
	if z.Stencil() != 7 || z.Z24() != 0xffffff {
		t.Fatalf("zstencil got %d,%#x", z.Stencil(), z.Z24())
	}
	m := ClearMask(0xf1)
	if !m.Depth() || m.Stencil() || !m.Color() {
		t.Fatal("clear mask decode mismatch")
	}
}

func TestBackEndSemaphoreValue(t *testing.T) {
	if got := BackEndSemaphoreValue(0x11223344); got != 0x11443322 {
		t.Fatalf("swizzle got %08x", got)
	}
}
