package regs

import "testing"

func TestTexFormatRoundTrip(t *testing.T) {
	v := EncodeTexFormat(1, true, 1, 2, 0x85, 7)
	if v.Location() != 1 || !v.Cubemap() || v.Border() != 1 || v.Dimension() != 2 || v.Format() != 0x85 || v.MipMaps() != 7 {
		t.Fatalf("format decode mismatch: %08x", uint32(v))
	}
	if EncodeTexFormat(0, false, 0, 2, 0x85, 1)&3 != 1 {
		t.Fatal("local memory must encode as 1 in the low bits")
	}
}

func TestTexAddressRoundTrip(t *testing.T) {
	in := TexAddressFields{WrapS: 1, WrapT: 3, WrapR: 5, AnisoBias: 2, UnsignedRemap: 1, SignedRemap: 0, Gamma: 0xf, ZFunc: 7}
	if got := in.Encode().Fields(); got != in {
		t.Fatalf("address round trip got %+v want %+v", got, in)
	}
}

func TestTexControl0RoundTrip(t *testing.T) {
	in := TexControl0Fields{Enabled: true, MinLOD: 0x100, MaxLOD: 0xc00, MaxAniso: 3, AlphaKill: true}
	out := in.Encode()
	if got := out.Fields(); got != in {
		t.Fatalf("control0 round trip got %+v want %+v", got, in)
	}
	if !out.Enabled() {
		t.Fatal("Enabled mismatch")
	}
	if Fixed48(0x100) != 1 || Fixed48(0xc00) != 12 {
		t.Fatalf("fixed point decode got %v %v", Fixed48(0x100), Fixed48(0xc00))
	}
}

func TestTexFilterRoundTrip(t *testing.T) {
	in := TexFilterFields{Bias: 0x1f00, Conv: 1, Min: 6, Mag: 2, RSigned: true, BSigned: true}
	if got := in.Encode().Fields(); got != in {
		t.Fatalf("filter round trip got %+v want %+v", got, in)
	}
	if Bias58(0x1f00) != -1 {
		t.Fatalf("bias -1 decoded as %v", Bias58(0x1f00))
	}
	if Bias58(0x0080) != 0.5 {
		t.Fatalf("bias 0.5 decoded as %v", Bias58(0x0080))
	}
}

func TestRemap(t *testing.T) {
	e := IdentityRemap.Entries()
	for ch, x := range e {
		if int(x.Source) != ch || x.Control != 2 {
			t.Fatalf("identity channel %d got %+v", ch, x)
		}
	}
	in := [4]RemapEntry{{Source: 3, Control: 1}, {Source: 0, Control: 2}, {Source: 2, Control: 0}, {Source: 1, Control: 2}}
	if got := EncodeTexRemap(in).Entries(); got != in {
		t.Fatalf("remap round trip got %+v", got)
	}
}

func TestImageRectAndControl3(t *testing.T) {
	r := EncodeImageRect(640, 480)
	if r.Width() != 640 || r.Height() != 480 {
		t.Fatalf("rect got %dx%d", r.Width(), r.Height())
	}
	c := EncodeTexControl3(2560, 16)
	if c.Pitch() != 2560 || c.Depth() != 16 {
		t.Fatalf("control3 got pitch=%d depth=%d", c.Pitch(), c.Depth())
	}
}
