package texture

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
)

func sampleFields() Fields {
	return Fields{
		Offset:    0x0012_3400,
		Location:  gcm.LocationMain,
		Dimension: gcm.TexDimension2D,
		Format:    gcm.TexFormatA8R8G8B8 | gcm.TexFormatLN,
		MipMaps:   3,
		Address: regs.TexAddressFields{
			WrapS: gcm.TexWrap, WrapT: gcm.TexClampToEdge, WrapR: gcm.TexMirror,
			AnisoBias: 2, UnsignedRemap: 1, SignedRemap: 0, Gamma: 0x5, ZFunc: gcm.TexZFuncLEqual,
		},
		Control0: regs.TexControl0Fields{Enabled: true, MinLOD: 0x040, MaxLOD: 0xc00, MaxAniso: 3, AlphaKill: true},
		Remap: [4]regs.RemapEntry{
			{Source: gcm.ChannelA, Control: uint8(gcm.RemapOne)},
			{Source: gcm.ChannelB, Control: uint8(gcm.RemapPass)},
			{Source: gcm.ChannelG, Control: uint8(gcm.RemapPass)},
			{Source: gcm.ChannelR, Control: uint8(gcm.RemapZero)},
		},
		Filter:      regs.TexFilterFields{Bias: 0x1f00, Conv: 1, Min: gcm.TexMinLinearMipLinear, Mag: gcm.TexMagLinear, RSigned: true},
		Width:       128,
		Height:      32,
		BorderColor: 0xff00ff00,
		Pitch:       512,
		Depth:       1,
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	f := regs.New()
	want := sampleFields()
	for unit := 0; unit < gcm.TextureUnits; unit += 5 {
		want.Store(f, FragmentUnit, unit)
		if got := Fragment(f, unit).Fields(); got != want {
			t.Fatalf("unit %d:\n got %+v\nwant %+v", unit, got, want)
		}
	}
}

func TestUnitsAreIndependent(t *testing.T) {
	f := regs.New()
	a := sampleFields()
	b := sampleFields()
	b.Width, b.Offset = 4, 0x40
	a.Store(f, FragmentUnit, 2)
	b.Store(f, FragmentUnit, 3)
	if got := Fragment(f, 2).Fields(); got != a {
		t.Fatalf("unit 2 disturbed by unit 3: %+v", got)
	}
	if Fragment(f, 1).Fields().Width != 0 {
		t.Fatal("unit 1 picked up neighbour state")
	}
}

func TestVertexUnit(t *testing.T) {
	f := regs.New()
	want := sampleFields()
	want.Store(f, VertexUnit, 1)
	d := Vertex(f, 1)
	got := d.Fields()
	want.Remap = regs.IdentityRemap.Entries()
	if got != want {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
	if d.Pitch() != 512 {
		t.Fatalf("vertex pitch %d", d.Pitch())
	}
	if f.Get(gcm.SetTextureControl3+1) != 0 {
		t.Fatal("vertex unit wrote fragment CONTROL3")
	}
}

func TestExtendedDimension(t *testing.T) {
	cases := []struct {
		dim  uint8
		cube bool
		want Dimension
	}{
		{gcm.TexDimension1D, false, Dim1D},
		{gcm.TexDimension2D, false, Dim2D},
		{gcm.TexDimension2D, true, DimCube},
		{gcm.TexDimension3D, false, Dim3D},
		{0, false, DimUnknown},
	}
	f := regs.New()
	for _, c := range cases {
		fl := sampleFields()
		fl.Dimension, fl.Cubemap = c.dim, c.cube
		fl.Store(f, FragmentUnit, 0)
		if got := Fragment(f, 0).Dimension(); got != c.want {
			t.Fatalf("dim=%d cube=%v got %s, want %s", c.dim, c.cube, got, c.want)
		}
	}
}

func TestMipMapsClamped(t *testing.T) {
	f := regs.New()
	fl := sampleFields()
	fl.Format = gcm.TexFormatR5G6B5
	fl.Width, fl.Height, fl.MipMaps = 64, 64, 8
	fl.Store(f, FragmentUnit, 4)
	d := Fragment(f, 4)
	if d.RawMipMaps() != 8 {
		t.Fatalf("raw mipmaps %d", d.RawMipMaps())
	}
	if d.MipMaps() != 7 {
		t.Fatalf("effective mipmaps %d, want 7", d.MipMaps())
	}
	p := d.Params()
	if !p.Swizzle || p.Levels != 7 || p.Pitch != 0 {
		t.Fatalf("params %+v", p)
	}

	fl.MipMaps = 0
	fl.Store(f, FragmentUnit, 4)
	if n := Fragment(f, 4).MipMaps(); n != 1 {
		t.Fatalf("raw 0 gave %d levels", n)
	}
}

func TestChannels(t *testing.T) {
	f := regs.New()
	sampleFields().Store(f, FragmentUnit, 0)
	ch := Fragment(f, 0).Channels()
	got := ch[0].String() + ch[1].String() + ch[2].String() + ch[3].String()
	if got != "1bg0" {
		t.Fatalf("channels %q", got)
	}
	f.Set(gcm.SetTextureOffset+wordControl1, uint32(regs.IdentityRemap))
	ch = Fragment(f, 0).Channels()
	if got := ch[0].String() + ch[1].String() + ch[2].String() + ch[3].String(); got != "argb" {
		t.Fatalf("identity remap %q", got)
	}
}

func TestFixedPointConversions(t *testing.T) {
	f := regs.New()
	sampleFields().Store(f, FragmentUnit, 0)
	d := Fragment(f, 0)
	if d.MinLOD() != 0.25 || d.MaxLOD() != 12 {
		t.Fatalf("lod %v..%v", d.MinLOD(), d.MaxLOD())
	}
	// 0x1f00 is -1.0 in signed 5.8.
	if d.Bias() != -1 {
		t.Fatalf("bias %v", d.Bias())
	}
}

func TestCubeAndVolumeParams(t *testing.T) {
	f := regs.New()
	fl := sampleFields()
	fl.Cubemap = true
	fl.Store(f, FragmentUnit, 0)
	p := Fragment(f, 0).Params()
	if p.Layers != 6 || p.Depth != 1 || p.Pitch != 512 || p.Swizzle {
		t.Fatalf("cube params %+v", p)
	}

	fl = sampleFields()
	fl.Dimension, fl.Depth = gcm.TexDimension3D, 8
	fl.Store(f, FragmentUnit, 1)
	p = Fragment(f, 1).Params()
	if p.Layers != 1 || p.Depth != 8 {
		t.Fatalf("volume params %+v", p)
	}
}

func TestRegistersMatchStore(t *testing.T) {
	a, b := regs.New(), regs.New()
	fl := sampleFields()
	fl.Store(a, FragmentUnit, 7)
	for _, rv := range fl.Registers(FragmentUnit, 7) {
		b.Set(rv.Reg, rv.Value)
	}
	if Fragment(a, 7).Fields() != Fragment(b, 7).Fields() {
		t.Fatal("Registers and Store disagree")
	}
}
