package script

import (
	"strings"
	"testing"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/fifo"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/memory"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/regs"
	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/texture"
)

// replay applies the script's capture and decodes it into a register file.
func replay(t *testing.T, src string) (*regs.File, *memory.Bus, *fifo.Decoder) {
	t.Helper()
	c, err := Build(src, "test.lua")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	bus := memory.New()
	ctrl := fifo.NewControl()
	if err := c.Apply(bus, ctrl); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	file := regs.New()
	dec := fifo.NewDecoder(bus, fifo.DispatchFunc(func(r gcm.Reg, v uint32) { file.Set(r, v) }), nil)
	if _, err := dec.RunUntilIdle(ctrl.Get(), ctrl.Put(), 1000); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return file, bus, dec
}

func TestBuildMethods(t *testing.T) {
	file, _, dec := replay(t, `
		method("NV4097_SET_COLOR_CLEAR_VALUE", 0x00ff00ff)
		method_ni(reg("NV4097_SET_TRANSFORM_PROGRAM"), 1, 2, 3)
		method(reg("NV4097_SET_VIEWPORT_OFFSET"), 10, 20, 30, 40)
		nop(4)
		local idle = here()
		jump(idle)
	`)
	if got := file.Get(gcm.SetColorClearValue); got != 0x00ff00ff {
		t.Fatalf("clear color %#x", got)
	}
	if got := file.Get(gcm.SetTransformProgram); got != 3 {
		t.Fatalf("non-increment target %d", got)
	}
	if got := file.Get(gcm.SetViewportOffset + 3); got != 40 {
		t.Fatalf("viewport offset w %d", got)
	}
	if !dec.Spinning() {
		t.Fatal("stream did not park on the idle jump")
	}
}

func TestBuildCallAndPatch(t *testing.T) {
	file, _, dec := replay(t, `
		word(0x12345678)          -- 0x00, patched to a nop below
		jump(0x14)                -- 0x04
		method("NV4097_SET_DEPTH_FUNC", 0x0203)
		ret()                     -- 0x10
		call(0x08)                -- 0x14
		local idle = here()
		jump(idle)
		patch(0, 0)
	`)
	if got := file.Get(gcm.SetDepthFunc); got != 0x0203 {
		t.Fatalf("depth func %#x", got)
	}
	if dec.CallDepth() != 0 {
		t.Fatalf("call depth %d after return", dec.CallDepth())
	}
}

func TestBuildSetPut(t *testing.T) {
	file, _, _ := replay(t, `
		method("NV4097_SET_DEPTH_FUNC", 0x0201)
		local stop = here()
		method("NV4097_SET_COLOR_CLEAR_VALUE", 7)
		set_put(stop)
	`)
	if file.Get(gcm.SetDepthFunc) != 0x0201 {
		t.Fatalf("depth func %#x", file.Get(gcm.SetDepthFunc))
	}
	if file.Get(gcm.SetColorClearValue) != 0 {
		t.Fatal("method past put executed")
	}
}

func TestBuildPokeAndTexture(t *testing.T) {
	file, bus, _ := replay(t, `
		poke32(rsx.LOCAL_BASE + 0x100, 0xdeadbeef, 0x01020304)
		fill(rsx.LOCAL_BASE + 0x200, 16, 0xab)
		texture(2, {offset = 0x100, format = rsx.A8R8G8B8 + rsx.LN, width = 2, height = 1, pitch = 8})
	`)
	if v, _ := bus.Read32(memory.LocalBase + 0x104); v != 0x01020304 {
		t.Fatalf("poke32 word %#x", v)
	}
	if p, _ := bus.Read(memory.LocalBase+0x20f, 1); p[0] != 0xab {
		t.Fatalf("fill byte %#x", p[0])
	}
	d := texture.Fragment(file, 2)
	if d.Offset() != 0x100 || d.Width() != 2 || !d.Linear() || d.Pitch() != 8 || !d.Enabled() {
		t.Fatalf("texture unit: %s", d)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`method("NV4097_NOT_A_REGISTER", 1)`, "unknown register"},
		{`method(0x10000, 1)`, "out of range"},
		{`word(-1)`, "not a 32-bit word"},
		{`patch(0x40, 1)`, "outside the buffer"},
		{`method(`, "script test.lua"},
		{`os.exit(1)`, "script test.lua"},
	}
	for _, c := range cases {
		_, err := Build(c.src, "test.lua")
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Fatalf("%q: err = %v, want %q", c.src, err, c.want)
		}
	}
}
